// Package producer defines the interface for publishing ingest-audit records (e.g. to Kafka).
package producer

import (
	"context"

	"vr-tour-telemetry/backend/internal/telemetry"
)

// Producer publishes ingest-audit records. Callers use it best-effort: log and ignore errors.
type Producer interface {
	// Publish sends a single audit record. Implementations may block briefly; call from a goroutine if needed.
	// Returns an error only on write failure; callers typically log and ignore.
	Publish(ctx context.Context, a *telemetry.IngestAudit) error
	// Close releases resources (e.g. Kafka writer). Safe to call if already closed.
	Close() error
}
