package domain

import "github.com/cockroachdb/errors"

// BookingRequest is the validated input of the reservation coordinator:
// the package ids to claim and, index-aligned, the content snapshot chosen
// for each package.
type BookingRequest struct {
	UserID     int64
	PackageIDs []int64
	Snapshots  [][]ContentLine
}

// NewBookingRequest validates the parallel sequences before any storage is
// touched. The ids must be non-empty, distinct and matched one-to-one by a
// snapshot entry (nil for surprise packages).
func NewBookingRequest(userID int64, packageIDs []int64, snapshots [][]ContentLine) (BookingRequest, error) {
	if len(packageIDs) == 0 {
		return BookingRequest{}, errors.WithDetail(ErrInvalidInput, "no packages requested")
	}
	if len(packageIDs) != len(snapshots) {
		return BookingRequest{}, errors.WithDetailf(ErrInvalidInput,
			"got %d package ids but %d content snapshots", len(packageIDs), len(snapshots))
	}
	seen := make(map[int64]struct{}, len(packageIDs))
	for _, id := range packageIDs {
		if _, dup := seen[id]; dup {
			return BookingRequest{}, errors.WithDetailf(ErrInvalidInput, "duplicate package id %d", id)
		}
		seen[id] = struct{}{}
	}
	return BookingRequest{UserID: userID, PackageIDs: packageIDs, Snapshots: snapshots}, nil
}
