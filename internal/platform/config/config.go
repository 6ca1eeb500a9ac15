package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures everything the server binary needs from the environment.
type Config struct {
	Addr string

	// PostgresDSN is optional; when empty the server runs on in-memory stores.
	PostgresDSN string
	// RedisURL is optional; when empty OTP challenges and the token
	// revocation list stay in memory.
	RedisURL string
	// KafkaBrokers is optional; when empty security alerts are not fanned
	// out to the audit topic.
	KafkaBrokers []string
	// KafkaAlertTopic receives published security alerts.
	KafkaAlertTopic string

	JWTSigningKey string
	JWTIssuer     string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration

	// Trust engine knobs. Defaults mirror the production policy: step-up
	// below 40, alert threshold at 50, five failures in ten minutes.
	StepUpFloor       int
	AlertThreshold    int
	FailureWindow     time.Duration
	FailuresPerWindow int

	OTPTTL time.Duration
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	cfg := Config{
		Addr:              envOr("TRUSTGATE_ADDR", ":8080"),
		PostgresDSN:       os.Getenv("TRUSTGATE_POSTGRES_DSN"),
		RedisURL:          os.Getenv("TRUSTGATE_REDIS_URL"),
		KafkaAlertTopic:   envOr("TRUSTGATE_KAFKA_ALERT_TOPIC", "trustgate.security-alerts"),
		JWTSigningKey:     envOr("TRUSTGATE_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		JWTIssuer:         envOr("TRUSTGATE_JWT_ISSUER", "trustgate"),
		AccessTTL:         envDurationOr("TRUSTGATE_ACCESS_TTL", 15*time.Minute),
		RefreshTTL:        envDurationOr("TRUSTGATE_REFRESH_TTL", 7*24*time.Hour),
		StepUpFloor:       envIntOr("TRUSTGATE_STEP_UP_FLOOR", 40),
		AlertThreshold:    envIntOr("TRUSTGATE_ALERT_THRESHOLD", 50),
		FailureWindow:     envDurationOr("TRUSTGATE_FAILURE_WINDOW", 10*time.Minute),
		FailuresPerWindow: envIntOr("TRUSTGATE_FAILURES_PER_WINDOW", 5),
		OTPTTL:            envDurationOr("TRUSTGATE_OTP_TTL", 5*time.Minute),
	}
	if brokers := os.Getenv("TRUSTGATE_KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
