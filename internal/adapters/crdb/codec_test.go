package crdb

import (
	"testing"

	"github.com/saveabite/reservations/internal/domain"
)

func TestContentCodecRoundTrip(t *testing.T) {
	cases := []struct {
		name  string
		lines []domain.ContentLine
	}{
		{"surprise package is NULL", nil},
		{"itemized but emptied", []domain.ContentLine{}},
		{"single line", []domain.ContentLine{{Name: "Bread", Quantity: 2}}},
		{"multiple lines", []domain.ContentLine{{Name: "Bread", Quantity: 2}, {Name: "Soup", Quantity: 1}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			encoded, err := encodeContent(tc.lines)
			if err != nil {
				t.Fatal(err)
			}
			if tc.lines == nil && encoded != nil {
				t.Fatal("nil lines must encode to SQL NULL")
			}
			if tc.lines != nil && encoded == nil {
				t.Fatal("non-nil lines must not encode to SQL NULL")
			}

			decoded, err := decodeContent(encoded)
			if err != nil {
				t.Fatal(err)
			}
			if (decoded == nil) != (tc.lines == nil) {
				t.Fatalf("nil-ness lost in round trip: in=%v out=%v", tc.lines, decoded)
			}
			if len(decoded) != len(tc.lines) {
				t.Fatalf("expected %d lines, got %d", len(tc.lines), len(decoded))
			}
			for i := range decoded {
				if decoded[i] != tc.lines[i] {
					t.Errorf("line %d: expected %+v, got %+v", i, tc.lines[i], decoded[i])
				}
			}
		})
	}
}

func TestDecodeContentRejectsGarbage(t *testing.T) {
	if _, err := decodeContent([]byte(`{"not":"an array"}`)); err == nil {
		t.Error("expected error for non-array content")
	}
}
