// Package telemetry emits ingest-audit records describing what the pipeline did
// with each submission (e.g. to OTel Logs or Kafka). Best-effort; callers log
// and ignore errors so audit failures never affect request outcomes.
package telemetry

import (
	"context"
	"time"
)

// Audit record kinds.
const (
	KindBatchIngest   = "batch_ingest"
	KindSessionImport = "session_import"
)

// IngestAudit describes the outcome of one ingestion operation.
type IngestAudit struct {
	SessionID   string    `json:"session_id,omitempty"`
	Kind        string    `json:"kind"`
	Total       int       `json:"total"`
	Successful  int       `json:"successful"`
	Failed      int       `json:"failed"`
	SuccessRate float64   `json:"success_rate"`
	CreatedAt   time.Time `json:"created_at"`
}

// Emitter emits ingest-audit records. Best-effort; callers log and ignore errors.
type Emitter interface {
	Emit(ctx context.Context, a *IngestAudit) error
}
