package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Integration tests for database operations. They need a reachable
// Postgres instance and are skipped unless RAINBALL_TEST_DB is set, e.g.:
//
//	RAINBALL_TEST_DB=1 go test ./internal/repository/...

func testEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func setupTestDB(t *testing.T) (*Database, context.Context) {
	if os.Getenv("RAINBALL_TEST_DB") == "" {
		t.Skip("RAINBALL_TEST_DB not set; skipping integration test")
	}

	ctx := context.Background()

	cfg := Config{
		Host:     testEnv("RAINBALL_TEST_DB_HOST", "localhost"),
		Port:     testEnv("RAINBALL_TEST_DB_PORT", "5432"),
		Database: testEnv("RAINBALL_TEST_DB_NAME", "rainball_test"),
		User:     testEnv("RAINBALL_TEST_DB_USER", "rainball_user"),
		Password: testEnv("RAINBALL_TEST_DB_PASSWORD", "rainball_password"),
		SSLMode:  "disable",
	}

	db, err := NewDatabase(ctx, cfg)
	require.NoError(t, err, "Failed to connect to test database")

	return db, ctx
}

func teardownTestDB(t *testing.T, db *Database) {
	db.Close()
}

func TestDatabaseConnection(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	// Test health check
	err := db.Health(ctx)
	assert.NoError(t, err, "Database health check should pass")

	// Test stats
	stats := db.PoolStats()
	assert.NotNil(t, stats, "Should return connection pool stats")
	assert.GreaterOrEqual(t, stats["max_conns"].(int32), int32(1), "Should have at least 1 max connection")
}

func TestDatabasePing(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	// Ping with timeout
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := db.Pool.Ping(ctx)
	assert.NoError(t, err, "Should successfully ping database")
}
