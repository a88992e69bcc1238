package domain

import "errors"

var (
	ErrResourceNotFound     = errors.New("resource not found")
	ErrRequesterNotFound    = errors.New("requester not found")
	ErrReservationNotFound  = errors.New("reservation not found")
	ErrInvalidRange         = errors.New("end must be after start")
	ErrResourceUnavailable  = errors.New("resource not bookable")
	ErrConflict             = errors.New("overlapping reservation")
	ErrInvalidTransition    = errors.New("illegal status transition")
	ErrAlreadyFinal         = errors.New("reservation already final")
	ErrReservationNotActive = errors.New("reservation not active")
	ErrStorageFailure       = errors.New("storage failure")
	ErrNameRequired         = errors.New("name required")
	ErrInvalidRate          = errors.New("invalid rate")
	ErrInvalidRateUnit      = errors.New("invalid rate unit")
	ErrInvalidDeposit       = errors.New("invalid deposit")
	ErrInvalidCapacity      = errors.New("invalid capacity")
	ErrInvalidQuantity      = errors.New("invalid quantity")
	ErrInvalidStatus        = errors.New("invalid status")
	ErrInvalidID            = errors.New("invalid id")
)
