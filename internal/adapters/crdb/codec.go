package crdb

import (
	"encoding/json"

	"github.com/saveabite/reservations/internal/domain"
)

// Content lines live in JSONB columns. The convention is strict: a surprise
// package (no itemized content) is SQL NULL and decodes to a nil slice; an
// itemized package is a JSON array, and an empty array decodes to an empty
// non-nil slice. The two never collapse into each other on a round trip.

func encodeContent(lines []domain.ContentLine) ([]byte, error) {
	if lines == nil {
		return nil, nil
	}
	return json.Marshal(lines)
}

func decodeContent(data []byte) ([]domain.ContentLine, error) {
	if data == nil {
		return nil, nil
	}
	lines := []domain.ContentLine{}
	if err := json.Unmarshal(data, &lines); err != nil {
		return nil, err
	}
	return lines, nil
}
