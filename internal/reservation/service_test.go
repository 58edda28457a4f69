package reservation_test

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/saveabite/reservations/internal/domain"
	"github.com/saveabite/reservations/internal/observability"
	"github.com/saveabite/reservations/internal/reservation"
)

// fakeStore keeps engine state in memory so coordinator behavior can be
// tested without a database. Compound operations are trivially atomic here.
type fakeStore struct {
	available map[int64]bool
	bookings  map[int64]domain.BookingRequest
	nextID    int64
	failWith  error
}

func newFakeStore(availableIDs ...int64) *fakeStore {
	available := make(map[int64]bool)
	for _, id := range availableIDs {
		available[id] = true
	}
	return &fakeStore{available: available, bookings: make(map[int64]domain.BookingRequest), nextID: 1}
}

func (f *fakeStore) CheckAvailability(ctx context.Context, packageIDs []int64) ([]int64, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	var unavailable []int64
	for _, id := range packageIDs {
		if !f.available[id] {
			unavailable = append(unavailable, id)
		}
	}
	return unavailable, nil
}

func (f *fakeStore) CreateBooking(ctx context.Context, req domain.BookingRequest) (int64, error) {
	if f.failWith != nil {
		return 0, f.failWith
	}
	unavailable, _ := f.CheckAvailability(ctx, req.PackageIDs)
	if len(unavailable) > 0 {
		return 0, &domain.UnavailablePackagesError{IDs: unavailable}
	}
	for _, id := range req.PackageIDs {
		f.available[id] = false
	}
	id := f.nextID
	f.nextID++
	f.bookings[id] = req
	return id, nil
}

func (f *fakeStore) ListBookings(ctx context.Context, userID int64) ([]domain.Booking, error) {
	bookings := []domain.Booking{}
	for id, req := range f.bookings {
		if req.UserID != userID {
			continue
		}
		b := domain.Booking{ID: id, UserID: userID}
		for i, pkgID := range req.PackageIDs {
			b.Packages = append(b.Packages, domain.BookedPackage{PackageID: pkgID, Snapshot: req.Snapshots[i]})
		}
		bookings = append(bookings, b)
	}
	return bookings, nil
}

func (f *fakeStore) DeleteBooking(ctx context.Context, bookingID, userID int64) (int64, error) {
	req, ok := f.bookings[bookingID]
	if !ok || req.UserID != userID {
		return 0, domain.ErrNotFound
	}
	for _, id := range req.PackageIDs {
		f.available[id] = true
	}
	delete(f.bookings, bookingID)
	return 1, nil
}

func newService(store reservation.Store) *reservation.Service {
	return reservation.NewService(store, observability.NewLogger())
}

func TestServiceRejectsMismatchedInput(t *testing.T) {
	store := newFakeStore(7)
	svc := newService(store)

	_, err := svc.CreateBooking(context.Background(), 1, []int64{7}, nil)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if len(store.bookings) != 0 {
		t.Error("validation failure must not reach the store")
	}
	if !store.available[7] {
		t.Error("validation failure must not claim packages")
	}
}

func TestServiceConflictCarriesIDs(t *testing.T) {
	svc := newService(newFakeStore(8)) // 7 not claimable

	_, err := svc.CreateBooking(context.Background(), 2, []int64{7, 8}, [][]domain.ContentLine{nil, nil})
	unavailable, ok := domain.UnavailableIDs(err)
	if !ok {
		t.Fatalf("expected unavailable-packages error, got %v", err)
	}
	if len(unavailable) != 1 || unavailable[0] != 7 {
		t.Errorf("expected [7], got %v", unavailable)
	}
}

func TestServiceBookCancelRoundTrip(t *testing.T) {
	store := newFakeStore(7)
	svc := newService(store)
	ctx := context.Background()

	snapshot := []domain.ContentLine{{Name: "Bread", Quantity: 2}}
	bookingID, err := svc.CreateBooking(ctx, 1, []int64{7}, [][]domain.ContentLine{snapshot})
	if err != nil {
		t.Fatal(err)
	}

	bookings, err := svc.ListBookings(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(bookings) != 1 || bookings[0].Packages[0].Snapshot[0].Name != "Bread" {
		t.Fatalf("unexpected bookings %+v", bookings)
	}

	removed, err := svc.CancelBooking(ctx, bookingID, 1)
	if err != nil || removed != 1 {
		t.Fatalf("expected clean cancel, got removed=%d err=%v", removed, err)
	}
	if !store.available[7] {
		t.Error("cancel must restore availability")
	}

	removed, err = svc.CancelBooking(ctx, bookingID, 1)
	if !errors.Is(err, domain.ErrNotFound) || removed != 0 {
		t.Fatalf("expected (0, ErrNotFound), got (%d, %v)", removed, err)
	}
}

func TestServiceWrapsStorageFailures(t *testing.T) {
	store := newFakeStore(7)
	store.failWith = errors.New("connection reset")
	svc := newService(store)

	_, err := svc.CreateBooking(context.Background(), 1, []int64{7}, [][]domain.ContentLine{nil})
	if err == nil || errors.Is(err, domain.ErrConflict) || errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected opaque storage failure, got %v", err)
	}
}

func TestServiceCheckAvailabilityRejectsEmpty(t *testing.T) {
	svc := newService(newFakeStore())
	if _, err := svc.CheckAvailability(context.Background(), nil); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
