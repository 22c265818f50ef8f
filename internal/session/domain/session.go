package domain

import (
	"errors"
	"time"
)

// Status is the lifecycle state of a VR tour session.
type Status string

const (
	// StatusActive is a session whose tour is still running.
	StatusActive Status = "active"
	// StatusCompleted is a session with a recorded end time and duration.
	StatusCompleted Status = "completed"
)

// Session represents one VR property tour from start to finish.
type Session struct {
	ID              string
	StartedAt       time.Time
	EndedAt         *time.Time // nil while active
	Status          Status
	DurationSeconds *int64 // nil while active
	CustomerID      *string
	PropertyID      *string
	CreatedAt       time.Time
}

// Validate checks the session invariants: completed sessions carry an end time
// and duration, active sessions carry neither.
func (s *Session) Validate() error {
	if s.ID == "" {
		return errors.New("session: id is required")
	}
	if s.StartedAt.IsZero() {
		return errors.New("session: started_at is required")
	}
	switch s.Status {
	case StatusActive:
		if s.EndedAt != nil || s.DurationSeconds != nil {
			return errors.New("session: active session must not have ended_at or duration")
		}
	case StatusCompleted:
		if s.EndedAt == nil || s.DurationSeconds == nil {
			return errors.New("session: completed session requires ended_at and duration")
		}
	default:
		return errors.New("session: unknown status")
	}
	return nil
}
