package domain

// ResourceStatus is the closed set of states a bookable resource can be in.
// Available and InUse are driven by the reservation lifecycle; the
// maintenance states are set by explicit registry operations.
type ResourceStatus string

const (
	ResourceAvailable        ResourceStatus = "available"
	ResourceInUse            ResourceStatus = "in_use"
	ResourceUnderMaintenance ResourceStatus = "maintenance"
	ResourceOutOfService     ResourceStatus = "out_of_service"
)

var resourceStatusLabels = map[ResourceStatus]string{
	ResourceAvailable:        "Available",
	ResourceInUse:            "In Use",
	ResourceUnderMaintenance: "Under Maintenance",
	ResourceOutOfService:     "Out of Service",
}

func (s ResourceStatus) Valid() bool {
	_, ok := resourceStatusLabels[s]
	return ok
}

// Label returns the display name shared by every resource kind.
func (s ResourceStatus) Label() string {
	if l, ok := resourceStatusLabels[s]; ok {
		return l
	}
	return "Unknown"
}

// Bookable reports whether new reservations may be taken against a
// resource in this status. InUse stays bookable: a Booked reservation
// does not occupy the resource, only an Active one does, and overlap
// checking guards the time ranges.
func (s ResourceStatus) Bookable() bool {
	return s == ResourceAvailable || s == ResourceInUse
}

// ReservationStatus is the lifecycle state of a reservation.
type ReservationStatus string

const (
	ReservationBooked    ReservationStatus = "booked"
	ReservationActive    ReservationStatus = "active"
	ReservationCompleted ReservationStatus = "completed"
	ReservationCancelled ReservationStatus = "cancelled"
	ReservationNoShow    ReservationStatus = "no_show"
)

var reservationStatusLabels = map[ReservationStatus]string{
	ReservationBooked:    "Booked",
	ReservationActive:    "Active",
	ReservationCompleted: "Completed",
	ReservationCancelled: "Cancelled",
	ReservationNoShow:    "No Show",
}

func (s ReservationStatus) Valid() bool {
	_, ok := reservationStatusLabels[s]
	return ok
}

func (s ReservationStatus) Label() string {
	if l, ok := reservationStatusLabels[s]; ok {
		return l
	}
	return "Unknown"
}

// Terminal reports whether no further transition is legal from s.
func (s ReservationStatus) Terminal() bool {
	switch s {
	case ReservationCompleted, ReservationCancelled, ReservationNoShow:
		return true
	}
	return false
}

// Blocking reports whether a reservation in this status counts against a
// resource's availability for overlap checking.
func (s ReservationStatus) Blocking() bool {
	return s == ReservationBooked || s == ReservationActive
}

var legalTransitions = map[ReservationStatus][]ReservationStatus{
	ReservationBooked: {ReservationActive, ReservationCancelled, ReservationNoShow},
	ReservationActive: {ReservationCompleted, ReservationCancelled},
}

// CheckTransition validates a lifecycle move. Terminal origins fail with
// ErrAlreadyFinal, everything else not in the table with
// ErrInvalidTransition. Time-dependent conditions (activation window,
// no-show after start) are enforced by the lifecycle service on top.
func CheckTransition(from, to ReservationStatus) error {
	if from.Terminal() {
		return ErrAlreadyFinal
	}
	for _, next := range legalTransitions[from] {
		if next == to {
			return nil
		}
	}
	return ErrInvalidTransition
}
