// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP server listens on (e.g. :8000).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// DatabaseURL is the Postgres DSN; empty until DB is wired.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// CORSOrigins is a comma-separated list of allowed origins; "*" allows all (dev default).
	CORSOrigins string `mapstructure:"CORS_ORIGINS"`
	// StrictEventTypeValidation, when true, makes the batch ingest path drop events
	// without an event_type instead of persisting them with a warning. The single-event
	// path always requires event_type regardless of this flag.
	StrictEventTypeValidation bool `mapstructure:"STRICT_EVENT_TYPE_VALIDATION"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`

	// OTLPEndpoint is the OTLP gRPC collector endpoint for ingest-audit records
	// (e.g. http://localhost:4317). Empty disables OTel export.
	OTLPEndpoint string `mapstructure:"OTLP_ENDPOINT"`
	// OTLPInsecure forces plaintext OTLP even for https endpoints.
	OTLPInsecure bool `mapstructure:"OTLP_INSECURE"`

	// IngestKafkaBrokers is a comma-separated list of Kafka broker addresses
	// (e.g. "localhost:9092"). When set, the server emits ingest-audit events to Kafka.
	IngestKafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	// IngestKafkaTopic is the Kafka topic for ingest-audit events.
	IngestKafkaTopic string `mapstructure:"INGEST_KAFKA_TOPIC"`

	// Worker-only: Loki URL for the ingest-audit worker to push logs (e.g. http://localhost:3100).
	LokiURL string `mapstructure:"LOKI_URL"`
	// KafkaGroupID is the consumer group ID for the ingest-audit worker.
	KafkaGroupID string `mapstructure:"KAFKA_GROUP_ID"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8000")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("STRICT_EVENT_TYPE_VALIDATION", false)
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("OTLP_ENDPOINT", "")
	v.SetDefault("OTLP_INSECURE", false)
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("INGEST_KAFKA_TOPIC", "vr-ingest-audit")
	v.SetDefault("LOKI_URL", "")
	v.SetDefault("KAFKA_GROUP_ID", "vr-ingest-audit-worker")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}

	return &cfg, nil
}

// CORSOriginsList returns allowed origins from the comma-separated config.
// Returns ["*"] when the config is empty or set to "*".
func (c *Config) CORSOriginsList() []string {
	if c == nil || c.CORSOrigins == "" || c.CORSOrigins == "*" {
		return []string{"*"}
	}
	parts := strings.Split(c.CORSOrigins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

// IngestKafkaBrokersList returns Kafka broker addresses from the comma-separated config.
// Used to decide if Kafka audit is enabled (non-empty list) and to create the producer.
func (c *Config) IngestKafkaBrokersList() []string {
	if c == nil || c.IngestKafkaBrokers == "" {
		return nil
	}
	parts := strings.Split(c.IngestKafkaBrokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
