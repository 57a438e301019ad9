package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        string
	DatabaseURL string

	// Sweeper: how often to scan for expired sessions and how long past a
	// window's end to wait before auto-closing it.
	SweepInterval     time.Duration
	SessionCloseGrace time.Duration

	// Broadcaster: outbox poll cadence and per-poll batch size.
	OutboxInterval  time.Duration
	OutboxBatchSize int

	RateLimitPerMinute       int
	RateLimitBurst           int
	ClinicRateLimitPerMinute int
	ClinicRateLimitBurst     int

	OTLPEndpoint string
	ServiceName  string
}

func Load() Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	serviceName := os.Getenv("SERVICE_NAME")
	if serviceName == "" {
		serviceName = "curaflow"
	}

	return Config{
		Port:                     port,
		DatabaseURL:              os.Getenv("DB_DSN"),
		SweepInterval:            readDurationSeconds("SESSION_SWEEP_INTERVAL_SECONDS", 60),
		SessionCloseGrace:        readDurationSeconds("SESSION_CLOSE_GRACE_SECONDS", 900),
		OutboxInterval:           readDurationSeconds("OUTBOX_POLL_INTERVAL_SECONDS", 2),
		OutboxBatchSize:          readInt("OUTBOX_BATCH_SIZE", 100),
		RateLimitPerMinute:       readInt("RATE_LIMIT_PER_MIN", 120),
		RateLimitBurst:           readInt("RATE_LIMIT_BURST", 30),
		ClinicRateLimitPerMinute: readInt("CLINIC_RATE_LIMIT_PER_MIN", 600),
		ClinicRateLimitBurst:     readInt("CLINIC_RATE_LIMIT_BURST", 120),
		OTLPEndpoint:             os.Getenv("OTLP_ENDPOINT"),
		ServiceName:              serviceName,
	}
}

func readDurationSeconds(key string, fallback int) time.Duration {
	value := readInt(key, fallback)
	if value <= 0 {
		return 0
	}
	return time.Duration(value) * time.Second
}

func readInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
