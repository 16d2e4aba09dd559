//go:build integration

package services

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"quizgen/internal/config"
	"quizgen/internal/database"
	"quizgen/internal/observability"

	"github.com/stretchr/testify/require"
)

// SharedTestDBSetup provides a clean, isolated database for each integration
// test. TEST_DATABASE_URL must point at a disposable postgres database.
func SharedTestDBSetup(t *testing.T) *sql.DB {
	logger := observability.NewLogger(&config.OpenTelemetryConfig{EnableLogging: false})
	dbManager := database.NewManager(logger)

	databaseURL := os.Getenv("TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Fatal("TEST_DATABASE_URL environment variable must be set for integration tests")
	}

	db, err := dbManager.InitDB(config.DatabaseConfig{URL: databaseURL})
	require.NoError(t, err)

	CleanupTestDatabase(db, t)

	return db
}

// CleanupTestDatabase truncates all quiz service tables and resets their
// sequences.
func CleanupTestDatabase(db *sql.DB, t *testing.T) {
	ctx := context.Background()

	cleanupQueries := []string{
		"TRUNCATE TABLE results CASCADE",
		"TRUNCATE TABLE quizzes CASCADE",
		"TRUNCATE TABLE users CASCADE",
		"ALTER SEQUENCE users_id_seq RESTART WITH 1",
		"ALTER SEQUENCE quizzes_id_seq RESTART WITH 1",
		"ALTER SEQUENCE results_id_seq RESTART WITH 1",
	}

	for _, query := range cleanupQueries {
		if _, err := db.ExecContext(ctx, query); err != nil {
			t.Logf("cleanup query failed: %s: %v", query, err)
		}
	}
}
