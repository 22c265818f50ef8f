package otel

import (
	"context"
	"time"

	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"vr-tour-telemetry/backend/internal/telemetry"
)

// NewEmitter returns an Emitter that sends ingest-audit records as OTel log
// records via the given LoggerProvider. If provider is nil, returns a no-op emitter.
func NewEmitter(provider *sdklog.LoggerProvider) telemetry.Emitter {
	if provider == nil {
		return noopEmitter{}
	}
	return &otelEmitter{logger: provider.Logger("vrtour.ingest")}
}

// recordLogger is the subset of otellog.Logger the emitter needs.
type recordLogger interface {
	Emit(ctx context.Context, rec otellog.Record)
}

// NewEmitterWithLogger returns an Emitter backed by the given logger. Intended
// for tests and callers that manage their own Logger.
func NewEmitterWithLogger(logger recordLogger) telemetry.Emitter {
	return &otelEmitter{logger: logger}
}

type noopEmitter struct{}

func (noopEmitter) Emit(context.Context, *telemetry.IngestAudit) error { return nil }

type otelEmitter struct {
	logger recordLogger
}

// Emit converts the audit record to an OTel log record and emits it. Best-effort.
func (e *otelEmitter) Emit(ctx context.Context, a *telemetry.IngestAudit) error {
	if a == nil {
		return nil
	}
	rec := otellog.Record{}
	if !a.CreatedAt.IsZero() {
		rec.SetTimestamp(a.CreatedAt)
	} else {
		rec.SetTimestamp(time.Now().UTC())
	}
	rec.SetBody(otellog.StringValue(a.Kind))
	if a.SessionID != "" {
		rec.AddAttributes(otellog.String("session_id", a.SessionID))
	}
	rec.AddAttributes(
		otellog.Int("total", a.Total),
		otellog.Int("successful", a.Successful),
		otellog.Int("failed", a.Failed),
		otellog.Float64("success_rate", a.SuccessRate),
	)
	e.logger.Emit(ctx, rec)
	return nil
}
