package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"vr-tour-telemetry/backend/internal/tracking/domain"
)

// The fake driver below lets the repository run against a scripted connection,
// so the bulk and individual insert tiers are exercised end to end.

type fakeConnector struct {
	conn *fakeConn
}

func (c fakeConnector) Connect(context.Context) (driver.Conn, error) { return c.conn, nil }
func (c fakeConnector) Driver() driver.Driver                        { return fakeDriver{} }

type fakeDriver struct{}

func (fakeDriver) Open(string) (driver.Conn, error) {
	return nil, errors.New("open not supported")
}

// fakeConn records every ExecContext call and delegates the outcome to exec.
type fakeConn struct {
	execs [][]driver.NamedValue
	sqls  []string
	exec  func(query string, args []driver.NamedValue) error
}

func (c *fakeConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("prepare not supported")
}
func (c *fakeConn) Close() error { return nil }
func (c *fakeConn) Begin() (driver.Tx, error) {
	return nil, errors.New("transactions not supported")
}

func (c *fakeConn) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	c.sqls = append(c.sqls, query)
	c.execs = append(c.execs, args)
	if c.exec != nil {
		if err := c.exec(query, args); err != nil {
			return nil, err
		}
	}
	return driver.RowsAffected(1), nil
}

func newFakeDB(t *testing.T, exec func(query string, args []driver.NamedValue) error) (*sql.DB, *fakeConn) {
	t.Helper()
	conn := &fakeConn{exec: exec}
	db := sql.OpenDB(fakeConnector{conn: conn})
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db, conn
}

// isBulk reports whether the statement is the multi-row insert tier.
func isBulk(args []driver.NamedValue) bool { return len(args) > 4 }

func testEvents() []*domain.Event {
	kitchen := "kitchen"
	return []*domain.Event{
		{SessionID: "sess1", EventType: "e1", Timestamp: float64(1727653850), ZoneName: &kitchen},
		{SessionID: "sess1", EventType: "e2", Timestamp: float64(1727653855)},
		{SessionID: "sess1", EventType: "e3", Timestamp: float64(1727653860)},
	}
}

func TestInsertBatch_BulkTierSucceeds(t *testing.T) {
	db, conn := newFakeDB(t, nil)
	r := NewPostgresRepository(db)

	got := r.InsertBatch(context.Background(), testEvents())

	if got != 3 {
		t.Errorf("InsertBatch = %d, want 3", got)
	}
	if len(conn.execs) != 1 {
		t.Fatalf("exec calls = %d, want 1 (bulk only)", len(conn.execs))
	}
	if !isBulk(conn.execs[0]) {
		t.Error("single statement should be the multi-row insert")
	}
}

func TestInsertBatch_BulkFailureFallsBackToIndividual(t *testing.T) {
	db, conn := newFakeDB(t, func(query string, args []driver.NamedValue) error {
		if isBulk(args) {
			return errors.New("bulk rejected")
		}
		return nil
	})
	r := NewPostgresRepository(db)

	got := r.InsertBatch(context.Background(), testEvents())

	if got != 3 {
		t.Errorf("InsertBatch = %d, want 3 (all salvaged individually)", got)
	}
	if len(conn.execs) != 4 {
		t.Fatalf("exec calls = %d, want 4 (1 bulk + 3 individual)", len(conn.execs))
	}
	for i, args := range conn.execs[1:] {
		if isBulk(args) {
			t.Errorf("fallback call %d should be a single-row insert", i+1)
		}
	}
}

func TestInsertBatch_IndividualFailuresReduceCount(t *testing.T) {
	db, conn := newFakeDB(t, func(query string, args []driver.NamedValue) error {
		if isBulk(args) {
			return errors.New("bulk rejected")
		}
		if args[1].Value == "e2" {
			return errors.New("row rejected")
		}
		return nil
	})
	r := NewPostgresRepository(db)

	got := r.InsertBatch(context.Background(), testEvents())

	if got != 2 {
		t.Errorf("InsertBatch = %d, want 2 (one individual insert failed)", got)
	}
	// The failing row must not stop the remaining inserts.
	if len(conn.execs) != 4 {
		t.Errorf("exec calls = %d, want 4 (failure did not continue past e2)", len(conn.execs))
	}
}

func TestInsertBatch_Empty(t *testing.T) {
	db, conn := newFakeDB(t, nil)
	r := NewPostgresRepository(db)

	if got := r.InsertBatch(context.Background(), nil); got != 0 {
		t.Errorf("InsertBatch(nil) = %d, want 0", got)
	}
	if len(conn.execs) != 0 {
		t.Errorf("exec calls = %d, want 0", len(conn.execs))
	}
}

func TestInsert_RowShape(t *testing.T) {
	db, conn := newFakeDB(t, nil)
	r := NewPostgresRepository(db)

	kitchen := "kitchen"
	dwell := int64(2500)
	err := r.Insert(context.Background(), &domain.Event{
		SessionID:   "sess1",
		EventType:   "gaze",
		Timestamp:   float64(1727653800),
		ZoneName:    &kitchen,
		DwellTimeMS: &dwell,
	})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if len(conn.execs) != 1 {
		t.Fatalf("exec calls = %d, want 1", len(conn.execs))
	}
	args := conn.execs[0]
	if args[0].Value != "sess1" || args[1].Value != "gaze" {
		t.Errorf("typed columns = %v, %v, want sess1, gaze", args[0].Value, args[1].Value)
	}
	ts, _ := args[2].Value.(string)
	if !strings.HasPrefix(ts, "2024-09-29T23:50:00") {
		t.Errorf("ts = %q, want normalized 2024-09-29T23:50:00Z", ts)
	}
	payload, _ := args[3].Value.([]byte)
	var fields map[string]any
	if err := json.Unmarshal(payload, &fields); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if fields["zone_name"] != "kitchen" || fields["dwell_time_ms"] != float64(2500) {
		t.Errorf("payload = %v, want zone_name and dwell_time_ms set", fields)
	}
}
