package crdb

import (
	"context"
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/saveabite/reservations/internal/domain"
)

// newBookingEvent builds the outbox record committed alongside a booking
// mutation, so downstream consumers see exactly the state that committed.
func newBookingEvent(eventType string, bookingID, userID int64, packageIDs []int64) OutboxRecord {
	payload, _ := json.Marshal(map[string]interface{}{
		"booking_id":  bookingID,
		"user_id":     userID,
		"package_ids": packageIDs,
	})
	return OutboxRecord{
		ID:            uuid.New(),
		AggregateType: "booking",
		AggregateID:   bookingID,
		EventType:     eventType,
		Payload:       payload,
		DedupeKey:     uuid.New().String(),
	}
}

// CreateBooking claims every requested package and persists the booking with
// its paired content snapshots as one serializable transaction. Either the
// whole booking commits with all packages marked unavailable, or nothing
// changes and the conflicting ids come back as an UnavailablePackagesError.
func (r *Repository) CreateBooking(ctx context.Context, req domain.BookingRequest) (int64, error) {
	var bookingID int64
	err := r.WithTx(ctx, func(tx pgx.Tx) error {
		unavailable, err := availableDiff(ctx, tx, req.PackageIDs, true)
		if err != nil {
			return err
		}
		if len(unavailable) > 0 {
			return &domain.UnavailablePackagesError{IDs: unavailable}
		}

		err = tx.QueryRow(ctx, `
			INSERT INTO bookings (user_id) VALUES ($1) RETURNING id
		`, req.UserID).Scan(&bookingID)
		if err != nil {
			return err
		}

		for i, packageID := range req.PackageIDs {
			snapshot, err := encodeContent(req.Snapshots[i])
			if err != nil {
				return errors.Wrapf(err, "snapshot for package %d", packageID)
			}
			_, err = tx.Exec(ctx, `
				INSERT INTO booking_packages (booking_id, position, package_id, content_snapshot)
				VALUES ($1, $2, $3, $4)
			`, bookingID, i, packageID, snapshot)
			if err != nil {
				return err
			}
		}

		// Guarded update: rows already claimed since the locked read would
		// not match, which the row count exposes.
		result, err := tx.Exec(ctx, `
			UPDATE packages SET available = false WHERE id = ANY($1) AND available
		`, req.PackageIDs)
		if err != nil {
			return err
		}
		if result.RowsAffected() != int64(len(req.PackageIDs)) {
			return domain.ErrConflict
		}

		return r.InsertOutbox(ctx, tx, newBookingEvent("booking.created", bookingID, req.UserID, req.PackageIDs))
	})
	if err != nil {
		return 0, err
	}
	return bookingID, nil
}

// ListBookings reconstructs all bookings of a user, oldest first, each with
// its packages in submission order and the content snapshot taken at booking
// time rather than the live package content.
func (r *Repository) ListBookings(ctx context.Context, userID int64) ([]domain.Booking, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT b.id, b.user_id, bp.package_id, bp.content_snapshot,
		       p.restaurant_name, p.surprise, p.price, p.size, p.start_time, p.end_time
		FROM bookings b
		JOIN booking_packages bp ON bp.booking_id = b.id
		JOIN packages p ON p.id = bp.package_id
		WHERE b.user_id = $1
		ORDER BY b.id ASC, bp.position ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := []domain.Booking{}
	var current *domain.Booking

	for rows.Next() {
		var (
			bookingID, bookingUserID int64
			bp                       domain.BookedPackage
			snapshot                 []byte
		)
		if err := rows.Scan(&bookingID, &bookingUserID, &bp.PackageID, &snapshot,
			&bp.RestaurantName, &bp.Surprise, &bp.Price, &bp.Size, &bp.StartTime, &bp.EndTime); err != nil {
			return nil, err
		}
		bp.Snapshot, err = decodeContent(snapshot)
		if err != nil {
			return nil, errors.Wrapf(err, "booking %d package %d snapshot", bookingID, bp.PackageID)
		}

		if current == nil || current.ID != bookingID {
			bookings = append(bookings, domain.Booking{ID: bookingID, UserID: bookingUserID})
			current = &bookings[len(bookings)-1]
		}
		current.Packages = append(current.Packages, bp)
	}
	return bookings, rows.Err()
}

// DeleteBooking cancels a booking: it restores availability of every claimed
// package and removes the ledger rows, all in one transaction. Returns the
// number of bookings removed (1), or (0, ErrNotFound) when no booking with
// that id belongs to the user, so a repeated cancel never restores
// availability twice.
func (r *Repository) DeleteBooking(ctx context.Context, bookingID, userID int64) (int64, error) {
	var removed int64
	err := r.WithTx(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
			SELECT bp.package_id
			FROM bookings b
			JOIN booking_packages bp ON bp.booking_id = b.id
			WHERE b.id = $1 AND b.user_id = $2
			ORDER BY bp.position ASC
		`, bookingID, userID)
		if err != nil {
			return err
		}
		var packageIDs []int64
		for rows.Next() {
			var id int64
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return err
			}
			packageIDs = append(packageIDs, id)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}
		if len(packageIDs) == 0 {
			return domain.ErrNotFound
		}

		_, err = tx.Exec(ctx, `
			UPDATE packages SET available = true WHERE id = ANY($1)
		`, packageIDs)
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `DELETE FROM booking_packages WHERE booking_id = $1`, bookingID)
		if err != nil {
			return err
		}
		result, err := tx.Exec(ctx, `DELETE FROM bookings WHERE id = $1`, bookingID)
		if err != nil {
			return err
		}
		removed = result.RowsAffected()

		return r.InsertOutbox(ctx, tx, newBookingEvent("booking.cancelled", bookingID, userID, packageIDs))
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}
