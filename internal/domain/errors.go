package domain

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

var (
	ErrSerializationFailure = errors.New("serialization failure")
	ErrNotFound             = errors.New("not found")
	ErrConflict             = errors.New("conflict")
	ErrInvalidInput         = errors.New("invalid input")
)

// UnavailablePackagesError reports which requested packages could not be
// claimed. It is a recoverable outcome, not a storage failure: the caller
// prunes the listed ids and retries. errors.Is(err, ErrConflict) holds.
type UnavailablePackagesError struct {
	IDs []int64
}

func (e *UnavailablePackagesError) Error() string {
	return fmt.Sprintf("packages unavailable: %v", e.IDs)
}

func (e *UnavailablePackagesError) Is(target error) bool {
	return target == ErrConflict
}

// UnavailableIDs extracts the conflicting package ids from err, if err wraps
// an UnavailablePackagesError.
func UnavailableIDs(err error) ([]int64, bool) {
	var u *UnavailablePackagesError
	if errors.As(err, &u) {
		return u.IDs, true
	}
	return nil, false
}
