package repository

import (
	"context"
	"time"

	"vr-tour-telemetry/backend/internal/session/domain"
)

// Repository defines persistence for VR tour sessions.
type Repository interface {
	// GetByID returns the session for id, or (nil, nil) when no such session exists.
	GetByID(ctx context.Context, id string) (*domain.Session, error)
	// Create persists the session. The session must have ID and StartedAt set.
	Create(ctx context.Context, s *domain.Session) error
	// Complete marks the session completed with the given end time and duration.
	// Returns the updated session, or (nil, nil) when no row matched.
	Complete(ctx context.Context, id string, endedAt time.Time, durationSeconds int64) (*domain.Session, error)
}
