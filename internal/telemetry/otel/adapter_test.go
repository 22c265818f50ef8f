package otel

import (
	"context"
	"testing"
	"time"

	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"vr-tour-telemetry/backend/internal/telemetry"
)

func TestNewEmitter_NilProvider_ReturnsNoop(t *testing.T) {
	em := NewEmitter(nil)
	if em == nil {
		t.Fatal("NewEmitter(nil) returned nil")
	}
	if err := em.Emit(context.Background(), nil); err != nil {
		t.Errorf("noop Emit(ctx, nil): %v", err)
	}
	if err := em.Emit(context.Background(), &telemetry.IngestAudit{SessionID: "s1"}); err != nil {
		t.Errorf("noop Emit(ctx, audit): %v", err)
	}
}

func TestEmit_NilAudit_ReturnsNil(t *testing.T) {
	provider := sdklog.NewLoggerProvider()
	defer func() { _ = provider.Shutdown(context.Background()) }()
	em := NewEmitter(provider)
	if err := em.Emit(context.Background(), nil); err != nil {
		t.Errorf("Emit(ctx, nil): %v", err)
	}
}

// recordCapture stores the last Record passed to Emit for assertion.
type recordCapture struct {
	rec otellog.Record
}

func (r *recordCapture) Emit(ctx context.Context, rec otellog.Record) {
	r.rec = rec
}

func TestEmit_AttributeAndBodyMapping(t *testing.T) {
	cap := &recordCapture{}
	em := NewEmitterWithLogger(cap)
	now := time.Now().UTC()
	audit := &telemetry.IngestAudit{
		SessionID:   "sess1",
		Kind:        telemetry.KindBatchIngest,
		Total:       10,
		Successful:  8,
		Failed:      2,
		SuccessRate: 80.0,
		CreatedAt:   now,
	}
	if err := em.Emit(context.Background(), audit); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	rec := cap.rec

	// Body
	if rec.Body().Empty() {
		t.Error("body should carry the audit kind")
	}
	if got := rec.Body().AsString(); got != telemetry.KindBatchIngest {
		t.Errorf("body = %q, want %q", got, telemetry.KindBatchIngest)
	}

	// Timestamp
	if rec.Timestamp().Unix() != now.Unix() {
		t.Errorf("timestamp = %v, want %v", rec.Timestamp(), now)
	}

	// Attributes
	attrs := make(map[string]otellog.Value)
	rec.WalkAttributes(func(kv otellog.KeyValue) bool {
		attrs[kv.Key] = kv.Value
		return true
	})
	if got := attrs["session_id"].AsString(); got != "sess1" {
		t.Errorf("session_id = %q, want %q", got, "sess1")
	}
	if got := attrs["total"].AsInt64(); got != 10 {
		t.Errorf("total = %d, want 10", got)
	}
	if got := attrs["successful"].AsInt64(); got != 8 {
		t.Errorf("successful = %d, want 8", got)
	}
	if got := attrs["failed"].AsInt64(); got != 2 {
		t.Errorf("failed = %d, want 2", got)
	}
	if got := attrs["success_rate"].AsFloat64(); got != 80.0 {
		t.Errorf("success_rate = %v, want 80.0", got)
	}
}

func TestEmit_EmptySessionID_NoAttribute(t *testing.T) {
	cap := &recordCapture{}
	em := NewEmitterWithLogger(cap)
	audit := &telemetry.IngestAudit{
		Kind:  telemetry.KindSessionImport,
		Total: 1,
	}
	if err := em.Emit(context.Background(), audit); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	found := false
	cap.rec.WalkAttributes(func(kv otellog.KeyValue) bool {
		if kv.Key == "session_id" {
			found = true
		}
		return true
	})
	if found {
		t.Error("session_id should not be set for empty string")
	}
}

func TestEmit_ZeroCreatedAt_SetsCurrentTime(t *testing.T) {
	cap := &recordCapture{}
	em := NewEmitterWithLogger(cap)
	audit := &telemetry.IngestAudit{
		SessionID: "sess1",
		Kind:      telemetry.KindBatchIngest,
	}
	before := time.Now().UTC()
	if err := em.Emit(context.Background(), audit); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	after := time.Now().UTC()
	timestamp := cap.rec.Timestamp()
	if timestamp.IsZero() {
		t.Error("timestamp should be set when CreatedAt is zero")
	}
	if timestamp.Before(before) || timestamp.After(after) {
		t.Errorf("timestamp = %v, should be between %v and %v", timestamp, before, after)
	}
}
