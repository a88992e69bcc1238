package postgres

import (
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/veralda/slotbook/internal/domain"
)

const (
	selectResource = `
SELECT id, name, kind, rate_cents, rate_unit, capacity, status, created_at
FROM resources`

	selectReservation = `
SELECT id, resource_id, requester_id, start_at, end_at, status,
       base_cents, deposit_cents, total_cents, created_at
FROM reservations`
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResource(row rowScanner) (domain.Resource, error) {
	var res domain.Resource
	err := row.Scan(&res.ID, &res.Name, &res.Kind, &res.RateCents,
		&res.RateUnit, &res.Capacity, &res.Status, &res.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Resource{}, domain.ErrResourceNotFound
		}
		return domain.Resource{}, fmt.Errorf("scan resource: %w", err)
	}
	res.CreatedAt = res.CreatedAt.UTC()
	return res, nil
}

func scanReservation(row rowScanner) (domain.Reservation, error) {
	var resv domain.Reservation
	err := row.Scan(&resv.ID, &resv.ResourceID, &resv.RequesterID,
		&resv.Range.Start, &resv.Range.End, &resv.Status,
		&resv.BaseCents, &resv.DepositCents, &resv.TotalCents, &resv.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Reservation{}, domain.ErrReservationNotFound
		}
		return domain.Reservation{}, fmt.Errorf("scan reservation: %w", err)
	}
	resv.Range.Start = resv.Range.Start.UTC()
	resv.Range.End = resv.Range.End.UTC()
	resv.CreatedAt = resv.CreatedAt.UTC()
	return resv, nil
}

func scanLineItem(row rowScanner) (domain.LineItem, error) {
	var li domain.LineItem
	err := row.Scan(&li.ID, &li.ReservationID, &li.Description,
		&li.Quantity, &li.UnitCents, &li.CreatedAt)
	if err != nil {
		return domain.LineItem{}, fmt.Errorf("scan line item: %w", err)
	}
	li.CreatedAt = li.CreatedAt.UTC()
	return li, nil
}
