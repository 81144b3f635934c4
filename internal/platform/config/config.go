package config

import (
	"os"
	"strconv"
	"time"
)

// Server captures process-level configuration. Everything comes from the
// environment so main stays lean and deployments stay twelve-factor.
type Server struct {
	Addr          string
	JWTSigningKey string
	JWTIssuer     string
	SessionTTL    time.Duration

	// Registration token lifecycle.
	TokenTTL      time.Duration
	SweepInterval time.Duration

	// Optional backends. Empty means the in-memory implementation is used.
	RedisURL    string
	PostgresURL string

	SMTP SMTPConfig

	// FixedVerificationCode switches the verifier comparator into
	// deterministic mode for local development. Must be empty in production.
	FixedVerificationCode string

	LogLevel string
}

// SMTPConfig holds the mail dispatch channel settings. Host empty means codes
// are logged instead of mailed.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	return Server{
		Addr:          envOr("TABLEGENIE_ADDR", ":8080"),
		JWTSigningKey: envOr("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		JWTIssuer:     envOr("JWT_ISSUER", "tablegenie"),
		SessionTTL:    envDuration("SESSION_TTL", 7*24*time.Hour),
		TokenTTL:      envDuration("REGISTRATION_TOKEN_TTL", 30*time.Minute),
		SweepInterval: envDuration("TOKEN_SWEEP_INTERVAL", time.Hour),
		RedisURL:      os.Getenv("REDIS_URL"),
		PostgresURL:   os.Getenv("DATABASE_URL"),
		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     envInt("SMTP_PORT", 587),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     envOr("SMTP_FROM", "no-reply@tablegenie.app"),
		},
		FixedVerificationCode: os.Getenv("VERIFICATION_FIXED_CODE"),
		LogLevel:              envOr("LOG_LEVEL", "info"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
