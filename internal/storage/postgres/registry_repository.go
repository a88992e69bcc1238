package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/veralda/slotbook/internal/app"
	"github.com/veralda/slotbook/internal/domain"
)

type RegistryRepository struct {
	pool *pgxpool.Pool
}

func NewRegistryRepository(pool *pgxpool.Pool) *RegistryRepository {
	return &RegistryRepository{pool: pool}
}

func (r *RegistryRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *RegistryRepository) CreateResource(ctx context.Context, res *domain.Resource) error {
	const stmt = `
INSERT INTO resources (name, kind, rate_cents, rate_unit, capacity, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id`

	err := r.queryRow(ctx, stmt,
		res.Name, res.Kind, res.RateCents, res.RateUnit, res.Capacity, res.Status, res.CreatedAt,
	).Scan(&res.ID)
	if err != nil {
		return fmt.Errorf("create resource: %w", err)
	}
	return nil
}

func (r *RegistryRepository) GetResource(ctx context.Context, id int64) (domain.Resource, error) {
	return scanResource(r.queryRow(ctx, selectResource+` WHERE id = $1`, id))
}

func (r *RegistryRepository) GetResourceForUpdate(ctx context.Context, id int64) (domain.Resource, error) {
	return scanResource(r.queryRow(ctx, selectResource+` WHERE id = $1 FOR UPDATE`, id))
}

func (r *RegistryRepository) ListResources(ctx context.Context) ([]domain.Resource, error) {
	rows, err := r.query(ctx, selectResource+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list resources: %w", err)
	}
	defer rows.Close()

	var out []domain.Resource
	for rows.Next() {
		res, err := scanResource(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

func (r *RegistryRepository) UpdateResourceStatus(ctx context.Context, id int64, status domain.ResourceStatus) error {
	tag, err := r.exec(ctx, `UPDATE resources SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("update resource status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrResourceNotFound
	}
	return nil
}

func (r *RegistryRepository) CreateRequester(ctx context.Context, req *domain.Requester) error {
	const stmt = `
INSERT INTO requesters (name, email, created_at)
VALUES ($1, $2, $3)
RETURNING id`

	err := r.queryRow(ctx, stmt, req.Name, req.Email, req.CreatedAt).Scan(&req.ID)
	if err != nil {
		return fmt.Errorf("create requester: %w", err)
	}
	return nil
}

// ListReservations applies only the filter fields that are set. The day
// filter matches any reservation whose half-open range overlaps the UTC
// calendar day.
func (r *RegistryRepository) ListReservations(ctx context.Context, f app.ReservationFilter) ([]domain.Reservation, error) {
	query := selectReservation
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.ResourceID != 0 {
		add(`resource_id = $%d`, f.ResourceID)
	}
	if f.RequesterID != 0 {
		add(`requester_id = $%d`, f.RequesterID)
	}
	if f.Status != "" {
		add(`status = $%d`, f.Status)
	}
	if f.Day != nil {
		day := f.Day.UTC().Truncate(24 * time.Hour)
		add(`start_at < $%d`, day.Add(24*time.Hour))
		add(`end_at > $%d`, day)
	}
	for i, c := range conds {
		if i == 0 {
			query += ` WHERE ` + c
		} else {
			query += ` AND ` + c
		}
	}
	query += ` ORDER BY id`

	rows, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	defer rows.Close()

	var out []domain.Reservation
	for rows.Next() {
		resv, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, resv)
	}
	return out, rows.Err()
}

// CountReservationsByStatus feeds the metrics collector.
func (r *RegistryRepository) CountReservationsByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.query(ctx, `SELECT status, COUNT(*) FROM reservations GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count reservations: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		out[status] = n
	}
	return out, rows.Err()
}

func (r *RegistryRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *RegistryRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}

func (r *RegistryRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}
