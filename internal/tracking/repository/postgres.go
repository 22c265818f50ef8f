package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"vr-tour-telemetry/backend/internal/timefmt"
	"vr-tour-telemetry/backend/internal/tracking/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a tracking-event repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Insert persists a single event, normalizing its timestamp first.
func (r *PostgresRepository) Insert(ctx context.Context, e *domain.Event) error {
	ts, payload, err := eventRow(e)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO tracking_events (session_id, event_type, ts, payload) VALUES ($1, $2, $3, $4)`,
		e.SessionID, e.EventType, ts, payload)
	return err
}

// InsertBatch persists the events with a two-tier strategy: one multi-row INSERT
// for the whole batch, and when that fails for any reason, per-event inserts that
// continue past individual failures. Bulk writes are fast but all-or-nothing;
// individual inserts salvage what they can from a partially bad batch.
// Returns the number of events that ended up persisted.
func (r *PostgresRepository) InsertBatch(ctx context.Context, events []*domain.Event) int {
	if len(events) == 0 {
		return 0
	}

	// Normalize all timestamps and build payloads up front so both tiers insert
	// identical rows.
	type row struct {
		event   *domain.Event
		ts      sql.NullString
		payload []byte
	}
	rows := make([]row, 0, len(events))
	for _, e := range events {
		ts, payload, err := eventRow(e)
		if err != nil {
			log.Printf("tracking: marshal event for session %s failed: %v", e.SessionID, err)
			continue
		}
		rows = append(rows, row{event: e, ts: ts, payload: payload})
	}
	if len(rows) == 0 {
		return 0
	}

	var (
		sb   strings.Builder
		args = make([]any, 0, len(rows)*4)
	)
	sb.WriteString(`INSERT INTO tracking_events (session_id, event_type, ts, payload) VALUES `)
	for i, rw := range rows {
		if i > 0 {
			sb.WriteString(", ")
		}
		n := i * 4
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d)", n+1, n+2, n+3, n+4)
		args = append(args, rw.event.SessionID, rw.event.EventType, rw.ts, rw.payload)
	}

	if _, err := r.db.ExecContext(ctx, sb.String(), args...); err == nil {
		log.Printf("tracking: bulk inserted %d events", len(rows))
		return len(rows)
	} else {
		log.Printf("tracking: bulk insert failed, trying individual inserts: %v", err)
	}

	successful := 0
	for _, rw := range rows {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO tracking_events (session_id, event_type, ts, payload) VALUES ($1, $2, $3, $4)`,
			rw.event.SessionID, rw.event.EventType, rw.ts, rw.payload)
		if err != nil {
			log.Printf("tracking: individual insert failed: %v", err)
			continue
		}
		successful++
	}
	log.Printf("tracking: individually inserted %d/%d events", successful, len(rows))
	return successful
}

// ListBySession returns the session's events ordered by timestamp.
func (r *PostgresRepository) ListBySession(ctx context.Context, sessionID string) ([]*domain.Event, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT session_id, event_type, ts, payload FROM tracking_events WHERE session_id = $1 ORDER BY ts ASC`,
		sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Event
	for rows.Next() {
		var (
			e       domain.Event
			ts      sql.NullString
			payload []byte
		)
		if err := rows.Scan(&e.SessionID, &e.EventType, &ts, &payload); err != nil {
			return nil, err
		}
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &e); err != nil {
				return nil, fmt.Errorf("tracking: decode event payload: %w", err)
			}
		}
		if ts.Valid {
			e.Timestamp = ts.String
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

// eventRow normalizes the event's timestamp and marshals its descriptive fields
// into the JSONB payload. A timestamp that fails to normalize is stored as NULL
// so a single odd value cannot sink the whole row.
func eventRow(e *domain.Event) (sql.NullString, []byte, error) {
	var ts sql.NullString
	if e.Timestamp != nil {
		s, err := timefmt.Normalize(e.Timestamp)
		if err != nil {
			log.Printf("tracking: timestamp normalize failed: %v", err)
		} else if s != "" {
			ts = sql.NullString{String: s, Valid: true}
		}
	}
	payload, err := json.Marshal(payloadFields{
		ZoneName:        e.ZoneName,
		ObjectName:      e.ObjectName,
		Position:        e.Position,
		Rotation:        e.Rotation,
		GazeTarget:      e.GazeTarget,
		DwellTimeMS:     e.DwellTimeMS,
		InteractionType: e.InteractionType,
		Metadata:        e.Metadata,
	})
	if err != nil {
		return ts, nil, err
	}
	return ts, payload, nil
}

// payloadFields is the JSONB shape for the optional descriptive fields.
// Session ID, event type, and timestamp live in typed columns.
type payloadFields struct {
	ZoneName        *string          `json:"zone_name,omitempty"`
	ObjectName      *string          `json:"object_name,omitempty"`
	Position        *domain.Position `json:"position,omitempty"`
	Rotation        *domain.Rotation `json:"rotation,omitempty"`
	GazeTarget      *string          `json:"gaze_target,omitempty"`
	DwellTimeMS     *int64           `json:"dwell_time_ms,omitempty"`
	InteractionType *string          `json:"interaction_type,omitempty"`
	Metadata        map[string]any   `json:"metadata,omitempty"`
}
