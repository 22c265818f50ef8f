// Package service handles tracking events captured during VR tours. It is a
// defensive boundary: tracking failures degrade to reduced-count results and
// must never interrupt the client experience generating the events.
package service

import (
	"context"
	"log"
	"time"

	"vr-tour-telemetry/backend/internal/telemetry"
	"vr-tour-telemetry/backend/internal/tracking/domain"
	"vr-tour-telemetry/backend/internal/tracking/repository"
)

// TrackingService stores and retrieves tracking events.
//
// The single-event path always requires an event type. The batch path persists
// untyped events with a warning unless strictEventTypes is set; the two paths
// reflect different trust levels and are deliberately not unified.
type TrackingService struct {
	repo             repository.Repository
	emitter          telemetry.Emitter // may be nil
	strictEventTypes bool
}

// NewTrackingService returns a TrackingService backed by repo. emitter may be
// nil to disable ingest auditing.
func NewTrackingService(repo repository.Repository, emitter telemetry.Emitter, strictEventTypes bool) *TrackingService {
	return &TrackingService{repo: repo, emitter: emitter, strictEventTypes: strictEventTypes}
}

// LogEvent stores a single tracking event. It validates the event but never
// returns an error: any failure is logged and reported as false so a bad event
// cannot abort a session-ending flow.
func (s *TrackingService) LogEvent(ctx context.Context, sessionID string, e *domain.Event) bool {
	if e == nil {
		return false
	}
	if e.EventType == "" {
		log.Printf("tracking: missing event_type for session %s, skipping event", sessionID)
		return false
	}
	if e.SessionID == "" {
		e.SessionID = sessionID
	}
	if err := s.repo.Insert(ctx, e); err != nil {
		log.Printf("tracking: insert failed for session %s type=%s: %v", sessionID, e.EventType, err)
		return false
	}
	return true
}

// LogEventsBatch stores a batch of events and reports the outcome. It never
// fails: an empty batch yields a zero result immediately, and every internal
// failure degrades to a reduced or zero success count.
//
// Events without a session ID are stamped with sessionID; an event that already
// carries a different session ID is left untouched, so batches may mix sessions.
func (s *TrackingService) LogEventsBatch(ctx context.Context, sessionID string, events []*domain.Event) domain.BatchResult {
	if len(events) == 0 {
		log.Printf("tracking: empty batch for session %s", sessionID)
		return domain.BatchResult{}
	}

	toInsert := make([]*domain.Event, 0, len(events))
	for _, e := range events {
		if e == nil {
			continue
		}
		if e.SessionID == "" {
			e.SessionID = sessionID
		}
		if e.EventType == "" {
			if s.strictEventTypes {
				log.Printf("tracking: dropping untyped event in session %s (strict validation)", sessionID)
				continue
			}
			log.Printf("tracking: event missing event_type in session %s, storing anyway", sessionID)
		}
		toInsert = append(toInsert, e)
	}

	var result domain.BatchResult
	if len(toInsert) == 0 {
		// Every event was dropped before reaching the store.
		result = domain.ZeroBatchResult(len(events))
	} else {
		successful := s.repo.InsertBatch(ctx, toInsert)
		result = domain.NewBatchResult(len(events), successful)
	}

	log.Printf("tracking: batch for session %s: %d/%d stored (%.1f%% success)",
		sessionID, result.SuccessfulCount, result.TotalEvents, result.SuccessRate)

	telemetry.EmitAsync(s.emitter, ctx, &telemetry.IngestAudit{
		SessionID:   sessionID,
		Kind:        telemetry.KindBatchIngest,
		Total:       result.TotalEvents,
		Successful:  result.SuccessfulCount,
		Failed:      result.FailedCount,
		SuccessRate: result.SuccessRate,
		CreatedAt:   time.Now().UTC(),
	})
	return result
}

// GetSessionEvents returns the session's events in chronological order,
// optionally filtered by event type. Returns an empty slice on any error.
func (s *TrackingService) GetSessionEvents(ctx context.Context, sessionID, eventType string) []*domain.Event {
	events, err := s.repo.ListBySession(ctx, sessionID)
	if err != nil {
		log.Printf("tracking: list events for session %s failed: %v", sessionID, err)
		return []*domain.Event{}
	}
	if eventType == "" {
		return events
	}
	filtered := make([]*domain.Event, 0, len(events))
	for _, e := range events {
		if e.EventType == eventType {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// GetZoneEvents returns the session's events that occurred in the named zone.
// Returns an empty slice on any error.
func (s *TrackingService) GetZoneEvents(ctx context.Context, sessionID, zoneName string) []*domain.Event {
	events, err := s.repo.ListBySession(ctx, sessionID)
	if err != nil {
		log.Printf("tracking: list zone events for session %s failed: %v", sessionID, err)
		return []*domain.Event{}
	}
	filtered := make([]*domain.Event, 0, len(events))
	for _, e := range events {
		if e.ZoneName != nil && *e.ZoneName == zoneName {
			filtered = append(filtered, e)
		}
	}
	return filtered
}
