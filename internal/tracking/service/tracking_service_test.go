package service

import (
	"context"
	"errors"
	"testing"

	"vr-tour-telemetry/backend/internal/tracking/domain"
)

// mockEventRepo implements repository.Repository for tests.
type mockEventRepo struct {
	inserted    []*domain.Event
	insertErr   error
	bulkFails   bool
	singleFails func(e *domain.Event) bool
	listEvents  []*domain.Event
	listErr     error
	listCalls   int
	batchCalls  int
}

func (m *mockEventRepo) Insert(ctx context.Context, e *domain.Event) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.inserted = append(m.inserted, e)
	return nil
}

func (m *mockEventRepo) InsertBatch(ctx context.Context, events []*domain.Event) int {
	m.batchCalls++
	if !m.bulkFails {
		m.inserted = append(m.inserted, events...)
		return len(events)
	}
	// bulk tier failed; individual tier
	successful := 0
	for _, e := range events {
		if m.singleFails != nil && m.singleFails(e) {
			continue
		}
		m.inserted = append(m.inserted, e)
		successful++
	}
	return successful
}

func (m *mockEventRepo) ListBySession(ctx context.Context, sessionID string) ([]*domain.Event, error) {
	m.listCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.listEvents, nil
}

func strPtr(s string) *string { return &s }

func TestLogEvent_Success(t *testing.T) {
	repo := &mockEventRepo{}
	svc := NewTrackingService(repo, nil, false)

	ok := svc.LogEvent(context.Background(), "s1", &domain.Event{
		EventType:  domain.EventTypeGaze,
		Timestamp:  1727653850.125,
		GazeTarget: strPtr("granite_countertop"),
	})
	if !ok {
		t.Fatal("LogEvent = false, want true")
	}
	if len(repo.inserted) != 1 {
		t.Fatalf("inserted = %d events, want 1", len(repo.inserted))
	}
	if repo.inserted[0].SessionID != "s1" {
		t.Errorf("session_id = %q, want stamped %q", repo.inserted[0].SessionID, "s1")
	}
}

func TestLogEvent_MissingEventTypeRejected(t *testing.T) {
	repo := &mockEventRepo{}
	svc := NewTrackingService(repo, nil, false)

	ok := svc.LogEvent(context.Background(), "s1", &domain.Event{Timestamp: 1727653850.0})
	if ok {
		t.Error("LogEvent = true, want false for missing event_type")
	}
	if len(repo.inserted) != 0 {
		t.Errorf("inserted = %d events, want 0", len(repo.inserted))
	}
}

func TestLogEvent_InsertFailureSwallowed(t *testing.T) {
	repo := &mockEventRepo{insertErr: errors.New("db down")}
	svc := NewTrackingService(repo, nil, false)

	ok := svc.LogEvent(context.Background(), "s1", &domain.Event{EventType: domain.EventTypeGaze})
	if ok {
		t.Error("LogEvent = true, want false on insert failure")
	}
}

func TestLogEventsBatch_Empty(t *testing.T) {
	repo := &mockEventRepo{}
	svc := NewTrackingService(repo, nil, false)

	res := svc.LogEventsBatch(context.Background(), "s1", nil)
	want := domain.BatchResult{}
	if res != want {
		t.Errorf("result = %+v, want %+v", res, want)
	}
	if repo.batchCalls != 0 {
		t.Errorf("batch calls = %d, want 0 for empty batch", repo.batchCalls)
	}
}

func TestLogEventsBatch_AllSucceed(t *testing.T) {
	repo := &mockEventRepo{}
	svc := NewTrackingService(repo, nil, false)

	events := []*domain.Event{
		{EventType: domain.EventTypeGaze},
		{EventType: domain.EventTypeZoneEnter},
		{EventType: domain.EventTypeInteraction},
	}
	res := svc.LogEventsBatch(context.Background(), "s1", events)
	if res.SuccessfulCount != 3 || res.FailedCount != 0 {
		t.Errorf("result = %+v, want 3 successful", res)
	}
	if res.SuccessRate != 100.0 {
		t.Errorf("success rate = %v, want 100.0", res.SuccessRate)
	}
}

func TestLogEventsBatch_StampsMissingSessionID(t *testing.T) {
	repo := &mockEventRepo{}
	svc := NewTrackingService(repo, nil, false)

	events := []*domain.Event{
		{EventType: domain.EventTypeGaze},
		{EventType: domain.EventTypeGaze, SessionID: "other"},
	}
	svc.LogEventsBatch(context.Background(), "s1", events)
	if events[0].SessionID != "s1" {
		t.Errorf("missing session_id stamped as %q, want %q", events[0].SessionID, "s1")
	}
	if events[1].SessionID != "other" {
		t.Errorf("existing session_id = %q, want untouched %q", events[1].SessionID, "other")
	}
}

func TestLogEventsBatch_UntypedEventStoredByDefault(t *testing.T) {
	repo := &mockEventRepo{bulkFails: true}
	svc := NewTrackingService(repo, nil, false)

	events := []*domain.Event{
		{EventType: domain.EventTypeGaze},
		{}, // missing event_type
		{EventType: domain.EventTypeInteraction},
	}
	res := svc.LogEventsBatch(context.Background(), "s1", events)
	if res.TotalEvents != 3 || res.SuccessfulCount != 3 || res.FailedCount != 0 {
		t.Errorf("result = %+v, want all 3 stored", res)
	}
	if res.SuccessRate != 100.0 {
		t.Errorf("success rate = %v, want 100.0", res.SuccessRate)
	}
}

func TestLogEventsBatch_StrictDropsUntypedEvents(t *testing.T) {
	repo := &mockEventRepo{}
	svc := NewTrackingService(repo, nil, true)

	events := []*domain.Event{
		{EventType: domain.EventTypeGaze},
		{},
	}
	res := svc.LogEventsBatch(context.Background(), "s1", events)
	if res.TotalEvents != 2 || res.SuccessfulCount != 1 || res.FailedCount != 1 {
		t.Errorf("result = %+v, want 1/2 stored under strict validation", res)
	}
	if len(repo.inserted) != 1 {
		t.Errorf("inserted = %d events, want 1", len(repo.inserted))
	}
}

func TestLogEventsBatch_AllDroppedSkipsStore(t *testing.T) {
	repo := &mockEventRepo{}
	svc := NewTrackingService(repo, nil, true)

	events := []*domain.Event{{}, nil, {}}
	res := svc.LogEventsBatch(context.Background(), "s1", events)
	if res.TotalEvents != 3 || res.SuccessfulCount != 0 || res.FailedCount != 3 {
		t.Errorf("result = %+v, want 0/3 stored", res)
	}
	if res.SuccessRate != 0.0 {
		t.Errorf("success rate = %v, want 0.0", res.SuccessRate)
	}
	if repo.batchCalls != 0 {
		t.Errorf("batch calls = %d, want 0 when nothing survives validation", repo.batchCalls)
	}
}

func TestLogEventsBatch_PartialIndividualSuccess(t *testing.T) {
	repo := &mockEventRepo{
		bulkFails: true,
		singleFails: func(e *domain.Event) bool {
			return e.EventType == domain.EventTypeZoneExit
		},
	}
	svc := NewTrackingService(repo, nil, false)

	events := []*domain.Event{
		{EventType: domain.EventTypeGaze},
		{EventType: domain.EventTypeZoneExit},
		{EventType: domain.EventTypeGaze},
		{EventType: domain.EventTypeZoneExit},
	}
	res := svc.LogEventsBatch(context.Background(), "s1", events)
	if res.SuccessfulCount != 2 || res.FailedCount != 2 {
		t.Errorf("result = %+v, want 2 successful, 2 failed", res)
	}
	if res.SuccessRate != 50.0 {
		t.Errorf("success rate = %v, want 50.0", res.SuccessRate)
	}
}

func TestGetSessionEvents_FilterByType(t *testing.T) {
	repo := &mockEventRepo{listEvents: []*domain.Event{
		{EventType: domain.EventTypeGaze},
		{EventType: domain.EventTypeZoneEnter},
		{EventType: domain.EventTypeGaze},
	}}
	svc := NewTrackingService(repo, nil, false)

	all := svc.GetSessionEvents(context.Background(), "s1", "")
	if len(all) != 3 {
		t.Errorf("all events = %d, want 3", len(all))
	}
	gaze := svc.GetSessionEvents(context.Background(), "s1", domain.EventTypeGaze)
	if len(gaze) != 2 {
		t.Errorf("gaze events = %d, want 2", len(gaze))
	}
}

func TestGetSessionEvents_EmptyOnError(t *testing.T) {
	repo := &mockEventRepo{listErr: errors.New("db down")}
	svc := NewTrackingService(repo, nil, false)

	got := svc.GetSessionEvents(context.Background(), "s1", "")
	if got == nil || len(got) != 0 {
		t.Errorf("events = %v, want empty slice", got)
	}
}

func TestGetZoneEvents(t *testing.T) {
	repo := &mockEventRepo{listEvents: []*domain.Event{
		{EventType: domain.EventTypeGaze, ZoneName: strPtr("kitchen")},
		{EventType: domain.EventTypeZoneEnter, ZoneName: strPtr("master_bedroom")},
		{EventType: domain.EventTypeInteraction, ZoneName: strPtr("kitchen")},
		{EventType: domain.EventTypeGaze},
	}}
	svc := NewTrackingService(repo, nil, false)

	got := svc.GetZoneEvents(context.Background(), "s1", "kitchen")
	if len(got) != 2 {
		t.Errorf("kitchen events = %d, want 2", len(got))
	}
}
