package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vr-tour-telemetry/backend/internal/config"
	"vr-tour-telemetry/backend/internal/db"
	"vr-tour-telemetry/backend/internal/server"
	sessionrepo "vr-tour-telemetry/backend/internal/session/repository"
	sessionservice "vr-tour-telemetry/backend/internal/session/service"
	"vr-tour-telemetry/backend/internal/telemetry"
	otelsetup "vr-tour-telemetry/backend/internal/telemetry/otel"
	"vr-tour-telemetry/backend/internal/telemetry/producer"
	trackingrepo "vr-tour-telemetry/backend/internal/tracking/repository"
	trackingservice "vr-tour-telemetry/backend/internal/tracking/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	ctx := context.Background()

	providers, err := otelsetup.NewProviders(ctx, cfg.OTLPEndpoint, "vr-tour-telemetry", cfg.OTLPInsecure)
	if err != nil {
		log.Fatalf("otel: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			log.Printf("otel shutdown: %v", err)
		}
	}()

	var emitter telemetry.Emitter = otelsetup.NewEmitter(providers.LoggerProvider)
	if brokers := cfg.IngestKafkaBrokersList(); len(brokers) > 0 {
		kp, err := producer.NewKafkaProducer(brokers, cfg.IngestKafkaTopic)
		if err != nil {
			log.Fatalf("kafka: %v", err)
		}
		if kp != nil {
			defer kp.Close()
			emitter = fanoutEmitter{emitter, producerEmitter{kp}}
			log.Printf("ingest audit: kafka enabled (topic %s)", cfg.IngestKafkaTopic)
		}
	}

	sessions := sessionservice.NewSessionService(sessionrepo.NewPostgresRepository(conn))
	tracking := trackingservice.NewTrackingService(
		trackingrepo.NewPostgresRepository(conn), emitter, cfg.StrictEventTypeValidation)

	srv := server.New(cfg, server.Deps{
		Sessions: sessions,
		Tracking: tracking,
		DB:       conn,
		Emitter:  emitter,
	})

	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	// Let in-flight async audit emits finish before providers shut down.
	time.Sleep(telemetry.ShutdownDrainDuration)
	log.Println("HTTP server stopped")
}

// producerEmitter adapts a Kafka producer to the Emitter interface.
type producerEmitter struct {
	p producer.Producer
}

func (e producerEmitter) Emit(ctx context.Context, a *telemetry.IngestAudit) error {
	return e.p.Publish(ctx, a)
}

// fanoutEmitter sends each audit record to every underlying emitter. Best-effort:
// the first error is returned but all emitters are attempted.
type fanoutEmitter []telemetry.Emitter

func (f fanoutEmitter) Emit(ctx context.Context, a *telemetry.IngestAudit) error {
	var first error
	for _, e := range f {
		if err := e.Emit(ctx, a); err != nil && first == nil {
			first = err
		}
	}
	return first
}
