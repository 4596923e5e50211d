package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetDSN(t *testing.T) {
	t.Setenv("DATABASE_HOST", "db")
	t.Setenv("DATABASE_PORT", "5432")
	t.Setenv("DATABASE_SSLMODE", "disable")
	t.Setenv("DATABASE_TIMEZONE", "UTC")
	t.Setenv("DATABASE_USER", "postgres")
	t.Setenv("DATABASE_PASSWORD", "password")
	t.Setenv("DATABASE_NAME", "ticketsdb")

	assert.Equal(t, "host=db user=postgres password=password dbname=ticketsdb port=5432 sslmode=disable TimeZone=UTC", GetDSN())
}

func TestEnvFallbacks(t *testing.T) {
	t.Setenv("ALLOCATOR_MAX_ATTEMPTS", "")
	t.Setenv("RECONCILE_INTERVAL", "")
	t.Setenv("PORT", "")
	assert.Equal(t, DEFAULT_MAX_ATTEMPTS, AllocatorMaxAttempts())
	assert.Equal(t, DEFAULT_RECONCILE_INTERVAL, ReconcileInterval())
	assert.Equal(t, DEFAULT_PORT, Port())

	t.Setenv("ALLOCATOR_MAX_ATTEMPTS", "5")
	t.Setenv("RECONCILE_INTERVAL", "30s")
	t.Setenv("PORT", "9090")
	assert.Equal(t, 5, AllocatorMaxAttempts())
	assert.Equal(t, 30*time.Second, ReconcileInterval())
	assert.Equal(t, "9090", Port())

	t.Setenv("ALLOCATOR_MAX_ATTEMPTS", "0")
	t.Setenv("RECONCILE_INTERVAL", "soon")
	assert.Equal(t, DEFAULT_MAX_ATTEMPTS, AllocatorMaxAttempts())
	assert.Equal(t, DEFAULT_RECONCILE_INTERVAL, ReconcileInterval())
}

func TestJWTSecretOverride(t *testing.T) {
	t.Setenv("JWT_SECRET", "from-env")
	defer SetJWTSecret(nil)

	assert.Equal(t, []byte("from-env"), JWTSecret())
	SetJWTSecret([]byte("from-secrets-manager"))
	assert.Equal(t, []byte("from-secrets-manager"), JWTSecret())
}
