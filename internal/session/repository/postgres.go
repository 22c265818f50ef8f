package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"vr-tour-telemetry/backend/internal/session/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a session repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const sessionColumns = `id, started_at, ended_at, status, duration_seconds, customer_id, property_id, created_at`

// GetByID returns the session for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM vr_sessions WHERE id = $1`, id)
	s, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return s, nil
}

// Create persists the session. The session must have ID and StartedAt set.
func (r *PostgresRepository) Create(ctx context.Context, s *domain.Session) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO vr_sessions (id, started_at, ended_at, status, duration_seconds, customer_id, property_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		s.ID,
		s.StartedAt,
		timeToNullTime(s.EndedAt),
		string(s.Status),
		int64ToNullInt64(s.DurationSeconds),
		strToNullString(s.CustomerID),
		strToNullString(s.PropertyID),
		s.CreatedAt,
	)
	return err
}

// Complete marks the session completed with the given end time and duration,
// returning the updated row. Returns (nil, nil) when no row matched.
func (r *PostgresRepository) Complete(ctx context.Context, id string, endedAt time.Time, durationSeconds int64) (*domain.Session, error) {
	row := r.db.QueryRowContext(ctx,
		`UPDATE vr_sessions
		 SET ended_at = $2, duration_seconds = $3, status = $4
		 WHERE id = $1
		 RETURNING `+sessionColumns,
		id, endedAt, durationSeconds, string(domain.StatusCompleted))
	s, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return s, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*domain.Session, error) {
	var (
		s        domain.Session
		status   string
		endedAt  sql.NullTime
		duration sql.NullInt64
		customer sql.NullString
		property sql.NullString
	)
	if err := row.Scan(&s.ID, &s.StartedAt, &endedAt, &status, &duration, &customer, &property, &s.CreatedAt); err != nil {
		return nil, err
	}
	s.Status = domain.Status(status)
	s.EndedAt = nullTimeToPtr(endedAt)
	s.DurationSeconds = nullInt64ToPtr(duration)
	s.CustomerID = nullStringToPtr(customer)
	s.PropertyID = nullStringToPtr(property)
	return &s, nil
}

func timeToNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullTimeToPtr(n sql.NullTime) *time.Time {
	if !n.Valid {
		return nil
	}
	return &n.Time
}

func strToNullString(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullStringToPtr(n sql.NullString) *string {
	if !n.Valid {
		return nil
	}
	return &n.String
}

func int64ToNullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func nullInt64ToPtr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	return &n.Int64
}
