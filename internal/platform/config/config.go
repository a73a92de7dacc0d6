// Package config builds runtime configuration from the environment so main
// stays lean and nothing below the composition root reads env vars.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures everything the server needs at construction time. Secrets
// and TTLs are injected into services from here; handlers never consult the
// environment themselves.
type Config struct {
	Addr string

	// Upload grants.
	GrantSecret    string
	GrantTTL       time.Duration
	MaxUploadBytes int64
	StorageRoot    string

	// Sessions and tokens.
	SessionTTL    time.Duration
	TokenTTL      time.Duration
	JWTSigningKey string
	JWTIssuer     string

	// Optional backing services; empty means in-memory.
	RedisURL    string
	PostgresDSN string

	// Optional audit sink; empty brokers means in-process only.
	KafkaBrokers []string
	AuditTopic   string
}

// FromEnv builds a Config from environment variables with development defaults.
func FromEnv() Config {
	return Config{
		Addr: getString("PROVET_ADDR", ":8080"),

		GrantSecret:    getString("PROVET_GRANT_SECRET", "dev-grant-secret-change-in-production"),
		GrantTTL:       getDuration("PROVET_GRANT_TTL", 15*time.Minute),
		MaxUploadBytes: getInt64("PROVET_MAX_UPLOAD_BYTES", 10<<20),
		StorageRoot:    getString("PROVET_STORAGE_ROOT", "data/uploads"),

		// The session TTL is 24h in the reference deployment; configurable for tests.
		SessionTTL:    getDuration("PROVET_SESSION_TTL", 24*time.Hour),
		TokenTTL:      getDuration("PROVET_TOKEN_TTL", time.Hour),
		JWTSigningKey: getString("PROVET_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		JWTIssuer:     getString("PROVET_JWT_ISSUER", "provet"),

		RedisURL:    os.Getenv("PROVET_REDIS_URL"),
		PostgresDSN: os.Getenv("PROVET_POSTGRES_DSN"),

		KafkaBrokers: getList("PROVET_KAFKA_BROKERS"),
		AuditTopic:   getString("PROVET_AUDIT_TOPIC", "provet.audit"),
	}
}

func getString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func getList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
