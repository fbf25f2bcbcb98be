package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"coin-guardian/internal/storage/migrations"
)

const (
	testImage    = "postgres:15-alpine"
	testDatabase = "guardian_test"
)

// setupTestDB starts a throwaway PostgreSQL, applies the embedded schema
// through the migration runner, and returns a pool plus its cleanup.
// Skipped under -short.
func setupTestDB(t *testing.T) (*Pool, func()) {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres store tests need docker; skipped in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := tcpostgres.Run(ctx, testImage,
		tcpostgres.WithDatabase(testDatabase),
		tcpostgres.WithUsername("guardian"),
		tcpostgres.WithPassword("guardian"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	require.NoError(t, err, "start postgres container")

	terminate := func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("terminate postgres container: %v", err)
		}
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		terminate()
		require.NoError(t, err, "postgres connection string")
	}

	pool, err := NewPool(ctx, dsn)
	if err != nil {
		terminate()
		require.NoError(t, err, "open pool")
	}

	applied, err := migrations.RunPostgresMigrations(ctx, pool, nil)
	if err != nil {
		pool.Close()
		terminate()
		require.NoError(t, err, "apply migrations")
	}
	require.NotEmpty(t, applied, "no embedded migrations applied")

	return pool, func() {
		pool.Close()
		terminate()
	}
}
