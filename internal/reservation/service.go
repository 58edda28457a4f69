// Package reservation is the consistency engine behind booking endpoints:
// it checks availability against concurrent demand, claims packages, reads
// bookings back and releases packages on cancellation. Storage atomicity
// lives in the store; this layer owns validation and result classification.
package reservation

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/saveabite/reservations/internal/domain"
	"github.com/saveabite/reservations/internal/observability"
)

// Store is the durable state the engine coordinates over. Implemented by
// crdb.Repository; the compound operations (CreateBooking, DeleteBooking)
// must be all-or-nothing.
type Store interface {
	CheckAvailability(ctx context.Context, packageIDs []int64) ([]int64, error)
	CreateBooking(ctx context.Context, req domain.BookingRequest) (int64, error)
	ListBookings(ctx context.Context, userID int64) ([]domain.Booking, error)
	DeleteBooking(ctx context.Context, bookingID, userID int64) (int64, error)
}

type Service struct {
	store  Store
	logger observability.Logger
}

func NewService(store Store, logger observability.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// CheckAvailability returns the requested ids that are not claimable right
// now. Empty means all claimable. Ids with no package behind them count as
// unavailable.
func (s *Service) CheckAvailability(ctx context.Context, packageIDs []int64) ([]int64, error) {
	if len(packageIDs) == 0 {
		return nil, errors.WithDetail(domain.ErrInvalidInput, "no packages requested")
	}
	return s.store.CheckAvailability(ctx, packageIDs)
}

// CreateBooking claims the packages for the user and returns the new booking
// id. On contention the error wraps an UnavailablePackagesError carrying the
// ids to prune; no state has changed in that case.
func (s *Service) CreateBooking(ctx context.Context, userID int64, packageIDs []int64, snapshots [][]domain.ContentLine) (int64, error) {
	req, err := domain.NewBookingRequest(userID, packageIDs, snapshots)
	if err != nil {
		observability.BookingsTotal.WithLabelValues("invalid").Inc()
		return 0, err
	}

	bookingID, err := s.store.CreateBooking(ctx, req)
	switch {
	case err == nil:
		observability.BookingsTotal.WithLabelValues("created").Inc()
		s.logger.WithField("booking_id", bookingID).WithField("user_id", userID).Info("booking created")
		return bookingID, nil
	case errors.Is(err, domain.ErrConflict):
		observability.BookingsTotal.WithLabelValues("conflict").Inc()
		return 0, err
	default:
		observability.BookingsTotal.WithLabelValues("error").Inc()
		return 0, errors.Wrap(err, "create booking")
	}
}

// ListBookings returns the user's bookings oldest first, hydrated with the
// content snapshots taken at booking time. A user with no bookings gets an
// empty slice.
func (s *Service) ListBookings(ctx context.Context, userID int64) ([]domain.Booking, error) {
	bookings, err := s.store.ListBookings(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "list bookings")
	}
	return bookings, nil
}

// CancelBooking releases the booking's packages and removes it. Returns the
// number of bookings removed; (0, ErrNotFound) when the booking does not
// exist for the user, so repeated cancels mutate nothing.
func (s *Service) CancelBooking(ctx context.Context, bookingID, userID int64) (int64, error) {
	removed, err := s.store.DeleteBooking(ctx, bookingID, userID)
	switch {
	case err == nil:
		observability.CancellationsTotal.WithLabelValues("cancelled").Inc()
		s.logger.WithField("booking_id", bookingID).WithField("user_id", userID).Info("booking cancelled")
		return removed, nil
	case errors.Is(err, domain.ErrNotFound):
		observability.CancellationsTotal.WithLabelValues("not_found").Inc()
		return 0, err
	default:
		observability.CancellationsTotal.WithLabelValues("error").Inc()
		return 0, errors.Wrap(err, "cancel booking")
	}
}
