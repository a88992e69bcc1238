// Package event publishes reservation lifecycle notifications to a
// topic exchange so downstream consumers (notifications, reporting) can
// react without being called inline.
package event

import "context"

// Routing keys for reservation lifecycle events.
const (
	KeyReservationCreated   = "reservation.created"
	KeyReservationActivated = "reservation.activated"
	KeyReservationCompleted = "reservation.completed"
	KeyReservationCancelled = "reservation.cancelled"
	KeyReservationNoShow    = "reservation.no_show"
)

type Publisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
	Close() error
}

// Noop drops every event. Used when no broker is configured and in tests.
type Noop struct{}

func (Noop) PublishJSON(context.Context, string, any) error { return nil }
func (Noop) Close() error                                   { return nil }
