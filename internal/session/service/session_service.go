// Package service implements the VR session lifecycle: sessions start active,
// complete exactly once, and may be imported pre-resolved when both endpoints
// are already known.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"

	"vr-tour-telemetry/backend/internal/session/domain"
	"vr-tour-telemetry/backend/internal/session/repository"
	"vr-tour-telemetry/backend/internal/timefmt"
)

// ErrSessionNotFound is the one caller-recoverable session error; the HTTP
// layer maps it to a not-found response instead of a generic failure.
var ErrSessionNotFound = errors.New("session not found")

// SessionService manages the session lifecycle against a session repository.
type SessionService struct {
	repo repository.Repository
}

// NewSessionService returns a SessionService backed by repo.
func NewSessionService(repo repository.Repository) *SessionService {
	return &SessionService{repo: repo}
}

// StartSession creates a new active session with a generated ID and the current
// time as its start. A persistence failure is propagated: an undetected failed
// create would leave all subsequent events orphaned.
func (s *SessionService) StartSession(ctx context.Context, customerID, propertyID *string) (*domain.Session, error) {
	now := time.Now().UTC()
	ses := &domain.Session{
		ID:         uuid.New().String(),
		StartedAt:  now,
		Status:     domain.StatusActive,
		CustomerID: customerID,
		PropertyID: propertyID,
		CreatedAt:  now,
	}
	if err := ses.Validate(); err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	if err := s.repo.Create(ctx, ses); err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	log.Printf("session: started %s customer=%v property=%v", ses.ID, deref(customerID), deref(propertyID))
	return ses, nil
}

// EndSession transitions an active session to completed, computing its duration
// as floor(endedAt - startedAt) in seconds. A nil endedAt means now. Returns
// ErrSessionNotFound when no session exists for id. A negative duration (end
// before start) is recorded as-is.
func (s *SessionService) EndSession(ctx context.Context, id string, endedAt *time.Time) (*domain.Session, error) {
	ses, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("end session %s: %w", id, err)
	}
	if ses == nil {
		return nil, fmt.Errorf("end session %s: %w", id, ErrSessionNotFound)
	}

	end := time.Now().UTC()
	if endedAt != nil {
		end = endedAt.UTC()
	}
	duration := durationSeconds(ses.StartedAt, end)

	updated, err := s.repo.Complete(ctx, id, end, duration)
	if err != nil {
		return nil, fmt.Errorf("end session %s: %w", id, err)
	}
	if updated == nil {
		return nil, fmt.Errorf("end session %s: update matched no row", id)
	}
	log.Printf("session: ended %s duration=%ds", id, duration)
	return updated, nil
}

// ProcessPreResolvedSession creates a session directly in the completed state
// from start and end epoch-second strings, for offline tours synced after the
// fact. Unlike the general timestamp normalizer, this path requires numeric
// input; either string failing to parse yields a *timefmt.FormatError.
func (s *SessionService) ProcessPreResolvedSession(ctx context.Context, startTS, endTS string, customerID, propertyID *string) (*domain.Session, error) {
	start, err := parseEpoch(startTS)
	if err != nil {
		return nil, err
	}
	end, err := parseEpoch(endTS)
	if err != nil {
		return nil, err
	}

	duration := durationSeconds(start, end)
	now := time.Now().UTC()
	ses := &domain.Session{
		ID:              uuid.New().String(),
		StartedAt:       start,
		EndedAt:         &end,
		Status:          domain.StatusCompleted,
		DurationSeconds: &duration,
		CustomerID:      customerID,
		PropertyID:      propertyID,
		CreatedAt:       now,
	}
	if err := ses.Validate(); err != nil {
		return nil, fmt.Errorf("import session: %w", err)
	}
	if err := s.repo.Create(ctx, ses); err != nil {
		return nil, fmt.Errorf("import session: %w", err)
	}
	log.Printf("session: imported %s duration=%ds", ses.ID, duration)
	return ses, nil
}

// GetSession is a read-through to the repository. Repository errors degrade to
// nil: callers treat a missing session and a failed lookup the same way.
func (s *SessionService) GetSession(ctx context.Context, id string) *domain.Session {
	ses, err := s.repo.GetByID(ctx, id)
	if err != nil {
		log.Printf("session: get %s failed: %v", id, err)
		return nil
	}
	return ses
}

func durationSeconds(start, end time.Time) int64 {
	return int64(math.Floor(end.Sub(start).Seconds()))
}

func parseEpoch(s string) (time.Time, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return time.Time{}, &timefmt.FormatError{Value: s, Err: err}
	}
	ns := int64(math.Round(f * float64(time.Second)))
	return time.Unix(0, ns).UTC(), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
