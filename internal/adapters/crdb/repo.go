package crdb

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/saveabite/reservations/internal/domain"
	"github.com/saveabite/reservations/internal/observability"
)

const (
	SerializationFailureCode = "40001"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// WithTx runs fn inside a serializable transaction. Every compound mutation
// of the engine (check+claim+persist, restore+delete) goes through here so
// the availability flag transitions stay linearizable with respect to
// availability reads.
func (r *Repository) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	start := time.Now()
	defer func() {
		observability.DBTxDuration.Observe(time.Since(start).Seconds())
	}()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, "SET TRANSACTION ISOLATION LEVEL SERIALIZABLE")
	if err != nil {
		return err
	}

	err = fn(tx)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == SerializationFailureCode {
			return domain.ErrSerializationFailure
		}
		return err
	}

	return tx.Commit(ctx)
}

// ListRestaurants returns the whole restaurant catalog.
func (r *Repository) ListRestaurants(ctx context.Context) ([]domain.Restaurant, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, address, phone_number, cuisine_type, food_category
		FROM restaurants ORDER BY id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var restaurants []domain.Restaurant
	for rows.Next() {
		var rest domain.Restaurant
		if err := rows.Scan(&rest.ID, &rest.Name, &rest.Address, &rest.PhoneNumber, &rest.CuisineType, &rest.FoodCategory); err != nil {
			return nil, err
		}
		restaurants = append(restaurants, rest)
	}
	return restaurants, rows.Err()
}

// ListPackagesByRestaurant returns all packages of one restaurant, including
// currently claimed ones, with their live availability flag.
func (r *Repository) ListPackagesByRestaurant(ctx context.Context, restaurantID int64) ([]domain.Package, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, restaurant_id, restaurant_name, surprise, content, price, size, start_time, end_time, available
		FROM packages WHERE restaurant_id = $1 ORDER BY id ASC
	`, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var packages []domain.Package
	for rows.Next() {
		var p domain.Package
		var content []byte
		if err := rows.Scan(&p.ID, &p.RestaurantID, &p.RestaurantName, &p.Surprise, &content,
			&p.Price, &p.Size, &p.StartTime, &p.EndTime, &p.Available); err != nil {
			return nil, err
		}
		p.Content, err = decodeContent(content)
		if err != nil {
			return nil, errors.Wrapf(err, "package %d content", p.ID)
		}
		packages = append(packages, p)
	}
	return packages, rows.Err()
}

// CheckAvailability returns the subset of ids that cannot be claimed right
// now. An id with no package row behind it is unavailable by absence.
// Read-only; safe to call outside a transaction for UI purposes, but the
// authoritative check happens again inside CreateBooking's transaction.
func (r *Repository) CheckAvailability(ctx context.Context, packageIDs []int64) ([]int64, error) {
	return availableDiff(ctx, r.pool, packageIDs, false)
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// availableDiff selects the available subset of packageIDs (locking the rows
// when forUpdate is set) and returns the requested ids missing from it, in
// request order.
func availableDiff(ctx context.Context, q querier, packageIDs []int64, forUpdate bool) ([]int64, error) {
	sql := `SELECT id FROM packages WHERE id = ANY($1) AND available`
	if forUpdate {
		sql += ` FOR UPDATE`
	}
	rows, err := q.Query(ctx, sql, packageIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	available := make(map[int64]struct{}, len(packageIDs))
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		available[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var unavailable []int64
	for _, id := range packageIDs {
		if _, ok := available[id]; !ok {
			unavailable = append(unavailable, id)
		}
	}
	return unavailable, nil
}

// SetAvailability flips the availability flag of a single package. Browse
// and read paths never call this; it exists for operational fixes.
func (r *Repository) SetAvailability(ctx context.Context, packageID int64, available bool) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE packages SET available = $2 WHERE id = $1
	`, packageID, available)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
