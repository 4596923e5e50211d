package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"sync"
	"time"
)

// const dsn = "host=localhost user=postgres password=password dbname=ticketsdb port=5432 sslmode=disable TimeZone=UTC"

func GetDSN() string {
	DATABASE_HOST := os.Getenv("DATABASE_HOST")
	DATABASE_PORT := os.Getenv("DATABASE_PORT")
	DATABASE_SSLMODE := os.Getenv("DATABASE_SSLMODE")
	DATABASE_TIMEZONE := os.Getenv("DATABASE_TIMEZONE")
	DATABASE_USER := os.Getenv("DATABASE_USER")
	DATABASE_PASSWORD := os.Getenv("DATABASE_PASSWORD")
	DATABASE_NAME := os.Getenv("DATABASE_NAME")
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s", DATABASE_HOST, DATABASE_USER, DATABASE_PASSWORD, DATABASE_NAME, DATABASE_PORT, DATABASE_SSLMODE, DATABASE_TIMEZONE)
	return dsn
}

const (
	BROKER_KAFKA = "kafka"
	BROKER_SNS   = "sns"
)

const (
	DEFAULT_PORT               = "8080"
	DEFAULT_TOKEN_TTL          = 24 * time.Hour
	DEFAULT_MAX_ATTEMPTS       = 3
	DEFAULT_RETRY_BACKOFF      = 25 * time.Millisecond
	DEFAULT_RECONCILE_INTERVAL = 5 * time.Minute
	DEFAULT_ACTIVITY_TOPIC     = "ticket-activity"
)

func GetEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func GetIntEnv(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil || i < 1 {
		log.Printf("[config] Invalid value for %s: %q, using %d\n", key, v, fallback)
		return fallback
	}
	return i
}

func GetDurationEnv(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Printf("[config] Invalid duration for %s: %q, using %s\n", key, v, fallback)
		return fallback
	}
	return d
}

func APIEnv() string {
	return os.Getenv("API_ENV")
}

func IsLocal() bool {
	return APIEnv() == "local"
}

func Port() string {
	return GetEnv("PORT", DEFAULT_PORT)
}

func TokenTTL() time.Duration {
	return GetDurationEnv("TOKEN_TTL", DEFAULT_TOKEN_TTL)
}

func AllocatorMaxAttempts() int {
	return GetIntEnv("ALLOCATOR_MAX_ATTEMPTS", DEFAULT_MAX_ATTEMPTS)
}

func ReconcileInterval() time.Duration {
	return GetDurationEnv("RECONCILE_INTERVAL", DEFAULT_RECONCILE_INTERVAL)
}

func Broker() string {
	return os.Getenv("BROKER")
}

func ActivityTopic() string {
	return GetEnv("ACTIVITY_TOPIC", DEFAULT_ACTIVITY_TOPIC)
}

func SMTPFrom() string {
	return GetEnv("SMTP_FROM", "no-reply@localhost")
}

var (
	jwtKeyMu sync.RWMutex
	jwtKey   []byte
)

// JWTSecret returns the signing key set by SetJWTSecret, or JWT_SECRET when none was set.
func JWTSecret() []byte {
	jwtKeyMu.RLock()
	defer jwtKeyMu.RUnlock()
	if len(jwtKey) > 0 {
		return jwtKey
	}
	return []byte(os.Getenv("JWT_SECRET"))
}

func SetJWTSecret(secret []byte) {
	jwtKeyMu.Lock()
	defer jwtKeyMu.Unlock()
	jwtKey = secret
}
