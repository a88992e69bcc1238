package domain

import "time"

// RateUnit is the billing granularity of a resource. A partial unit
// charges as a whole one.
type RateUnit string

const (
	RatePerNight RateUnit = "night"
	RatePerHour  RateUnit = "hour"
)

func (u RateUnit) Valid() bool {
	return u == RatePerNight || u == RatePerHour
}

// Span is the wall-clock length of one billing unit.
func (u RateUnit) Span() time.Duration {
	if u == RatePerHour {
		return time.Hour
	}
	return 24 * time.Hour
}

// Resource is a bookable entity: a room, a vehicle, a practitioner slot.
// Identifiers are assigned sequentially by storage.
type Resource struct {
	ID        int64
	Name      string
	Kind      string
	RateCents int64
	RateUnit  RateUnit
	Capacity  int
	Status    ResourceStatus
	CreatedAt time.Time
}

// Requester is whoever claims a resource: a guest, a patient, a driver.
type Requester struct {
	ID        int64
	Name      string
	Email     string
	CreatedAt time.Time
}
