package app

import (
	"github.com/google/uuid"
	"github.com/veralda/slotbook/internal/domain"
)

// reservationEvent builds the published payload for a lifecycle event.
// The event_id lets consumers deduplicate redelivered messages.
func reservationEvent(r domain.Reservation) map[string]any {
	return map[string]any{
		"event_id":       uuid.NewString(),
		"reservation_id": r.ID,
		"resource_id":    r.ResourceID,
		"requester_id":   r.RequesterID,
		"status":         string(r.Status),
		"start":          r.Range.Start.Unix(),
		"end":            r.Range.End.Unix(),
		"base_cents":     r.BaseCents,
		"total_cents":    r.TotalCents,
	}
}
