// seed inserts development sample data for local testing. Run via ./scripts/seed.sh.
// Idempotent: skips inserts if the demo session already exists.
package main

import (
	"context"
	"log"
	"os"
	"time"

	"vr-tour-telemetry/backend/internal/config"
	"vr-tour-telemetry/backend/internal/db"
	sessiondomain "vr-tour-telemetry/backend/internal/session/domain"
	sessionrepo "vr-tour-telemetry/backend/internal/session/repository"
	trackingdomain "vr-tour-telemetry/backend/internal/tracking/domain"
	trackingrepo "vr-tour-telemetry/backend/internal/tracking/repository"
)

const (
	demoSessionID  = "demo-session-001"
	demoCustomerID = "cust_demo"
	demoPropertyID = "prop_demo"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	ctx := context.Background()
	sessions := sessionrepo.NewPostgresRepository(conn)
	events := trackingrepo.NewPostgresRepository(conn)

	existing, err := sessions.GetByID(ctx, demoSessionID)
	if err != nil {
		log.Fatalf("seed check: %v", err)
	}
	if existing != nil {
		log.Println("Seed already applied (demo session exists). Skipping.")
		os.Exit(0)
	}

	started := time.Now().UTC().Add(-10 * time.Minute)
	ended := started.Add(5 * time.Minute)
	duration := int64(300)
	customer, property := demoCustomerID, demoPropertyID

	if err := sessions.Create(ctx, &sessiondomain.Session{
		ID:              demoSessionID,
		StartedAt:       started,
		EndedAt:         &ended,
		Status:          sessiondomain.StatusCompleted,
		DurationSeconds: &duration,
		CustomerID:      &customer,
		PropertyID:      &property,
	}); err != nil {
		log.Fatalf("create demo session: %v", err)
	}

	kitchen, bedroom := "kitchen", "master_bedroom"
	countertop := "granite_countertop"
	blinds := "window_blinds"
	click := "click"
	dwell := int64(2500)

	batch := []*trackingdomain.Event{
		{
			SessionID:   demoSessionID,
			EventType:   trackingdomain.EventTypeGaze,
			Timestamp:   float64(started.Add(50 * time.Second).Unix()),
			ZoneName:    &kitchen,
			GazeTarget:  &countertop,
			DwellTimeMS: &dwell,
		},
		{
			SessionID: demoSessionID,
			EventType: trackingdomain.EventTypeZoneEnter,
			Timestamp: float64(started.Add(55 * time.Second).Unix()),
			ZoneName:  &bedroom,
			Position:  &trackingdomain.Position{X: 10.5, Y: 2.0, Z: -5.3},
			Rotation:  &trackingdomain.Rotation{Pitch: 0, Yaw: 90, Roll: 0},
		},
		{
			SessionID:       demoSessionID,
			EventType:       trackingdomain.EventTypeInteraction,
			Timestamp:       float64(started.Add(60 * time.Second).Unix()),
			ZoneName:        &kitchen,
			ObjectName:      &blinds,
			InteractionType: &click,
			Position:        &trackingdomain.Position{X: 15.2, Y: 3.5, Z: -2.1},
		},
	}

	if stored := events.InsertBatch(ctx, batch); stored != len(batch) {
		log.Fatalf("seed events: stored %d/%d", stored, len(batch))
	}

	log.Println("Seed completed successfully.")
	log.Printf("Demo session: %s (customer %s, property %s)", demoSessionID, demoCustomerID, demoPropertyID)
}
