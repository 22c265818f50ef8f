package repository

import (
	"context"

	"vr-tour-telemetry/backend/internal/tracking/domain"
)

// Repository defines persistence for tracking events.
type Repository interface {
	// Insert persists a single event, normalizing its timestamp first.
	Insert(ctx context.Context, e *domain.Event) error
	// InsertBatch persists the events, preferring one bulk write and degrading to
	// per-event inserts when the bulk write fails. It returns the number of events
	// persisted, between 0 and len(events); by construction it cannot fail outright.
	InsertBatch(ctx context.Context, events []*domain.Event) int
	// ListBySession returns the session's events in chronological order.
	ListBySession(ctx context.Context, sessionID string) ([]*domain.Event, error)
}
