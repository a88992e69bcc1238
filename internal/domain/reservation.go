package domain

import "time"

// Reservation is a time-bounded claim on one resource by one requester.
// Reservations are never deleted; Cancelled and NoShow are soft ends.
// BaseCents is quoted at creation, TotalCents is settled when the
// reservation reaches a billed terminal state.
type Reservation struct {
	ID           int64
	ResourceID   int64
	RequesterID  int64
	Range        TimeRange
	Status       ReservationStatus
	BaseCents    int64
	DepositCents int64
	TotalCents   int64
	CreatedAt    time.Time
}

// LineItem is an add-on charge registered against an Active reservation,
// for example room service or a fuel surcharge.
type LineItem struct {
	ID            int64
	ReservationID int64
	Description   string
	Quantity      int
	UnitCents     int64
	CreatedAt     time.Time
}

func (li LineItem) TotalCents() int64 {
	return int64(li.Quantity) * li.UnitCents
}
