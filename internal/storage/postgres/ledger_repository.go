package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/veralda/slotbook/internal/domain"
)

// LedgerRepository backs the booking and lifecycle services. The row
// returned by GetResourceForUpdate is locked for the rest of the
// transaction, which makes it the per-resource critical section for
// the conflict scan and for every status transition.
type LedgerRepository struct {
	pool *pgxpool.Pool
}

func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{pool: pool}
}

func (r *LedgerRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *LedgerRepository) GetResourceForUpdate(ctx context.Context, id int64) (domain.Resource, error) {
	return scanResource(r.queryRow(ctx, selectResource+` WHERE id = $1 FOR UPDATE`, id))
}

func (r *LedgerRepository) GetRequester(ctx context.Context, id int64) (domain.Requester, error) {
	const query = `SELECT id, name, email, created_at FROM requesters WHERE id = $1`
	var req domain.Requester
	err := r.queryRow(ctx, query, id).Scan(&req.ID, &req.Name, &req.Email, &req.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Requester{}, domain.ErrRequesterNotFound
		}
		return domain.Requester{}, fmt.Errorf("get requester: %w", err)
	}
	req.CreatedAt = req.CreatedAt.UTC()
	return req, nil
}

// ListBlockingReservations returns every reservation on the resource
// that still occupies its range, in creation order, so the caller can
// scan all of them for overlap.
func (r *LedgerRepository) ListBlockingReservations(ctx context.Context, resourceID int64) ([]domain.Reservation, error) {
	const query = selectReservation + `
WHERE resource_id = $1 AND status IN ('booked', 'active')
ORDER BY id`

	rows, err := r.query(ctx, query, resourceID)
	if err != nil {
		return nil, fmt.Errorf("list blocking reservations: %w", err)
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

func (r *LedgerRepository) CreateReservation(ctx context.Context, resv *domain.Reservation) error {
	const stmt = `
INSERT INTO reservations (resource_id, requester_id, start_at, end_at, status,
                          base_cents, deposit_cents, total_cents, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id`

	err := r.queryRow(ctx, stmt,
		resv.ResourceID, resv.RequesterID, resv.Range.Start, resv.Range.End,
		resv.Status, resv.BaseCents, resv.DepositCents, resv.TotalCents, resv.CreatedAt,
	).Scan(&resv.ID)
	if err != nil {
		if isExclusionViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("create reservation: %w", err)
	}
	return nil
}

func (r *LedgerRepository) GetReservationForUpdate(ctx context.Context, id int64) (domain.Reservation, error) {
	return scanReservation(r.queryRow(ctx, selectReservation+` WHERE id = $1 FOR UPDATE`, id))
}

func (r *LedgerRepository) UpdateReservation(ctx context.Context, resv domain.Reservation) error {
	const stmt = `
UPDATE reservations
SET status = $1, base_cents = $2, deposit_cents = $3, total_cents = $4
WHERE id = $5`

	tag, err := r.exec(ctx, stmt,
		resv.Status, resv.BaseCents, resv.DepositCents, resv.TotalCents, resv.ID)
	if err != nil {
		return fmt.Errorf("update reservation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrReservationNotFound
	}
	return nil
}

func (r *LedgerRepository) UpdateResourceStatus(ctx context.Context, id int64, status domain.ResourceStatus) error {
	tag, err := r.exec(ctx, `UPDATE resources SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("update resource status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrResourceNotFound
	}
	return nil
}

func (r *LedgerRepository) ListLineItems(ctx context.Context, reservationID int64) ([]domain.LineItem, error) {
	const query = `
SELECT id, reservation_id, description, quantity, unit_cents, created_at
FROM line_items
WHERE reservation_id = $1
ORDER BY id`

	rows, err := r.query(ctx, query, reservationID)
	if err != nil {
		return nil, fmt.Errorf("list line items: %w", err)
	}
	defer rows.Close()

	var out []domain.LineItem
	for rows.Next() {
		li, err := scanLineItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, li)
	}
	return out, rows.Err()
}

func (r *LedgerRepository) CreateLineItem(ctx context.Context, li *domain.LineItem) error {
	const stmt = `
INSERT INTO line_items (reservation_id, description, quantity, unit_cents, created_at)
VALUES ($1, $2, $3, $4, $5)
RETURNING id`

	err := r.queryRow(ctx, stmt,
		li.ReservationID, li.Description, li.Quantity, li.UnitCents, li.CreatedAt,
	).Scan(&li.ID)
	if err != nil {
		return fmt.Errorf("create line item: %w", err)
	}
	return nil
}

func (r *LedgerRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *LedgerRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}

func (r *LedgerRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}
