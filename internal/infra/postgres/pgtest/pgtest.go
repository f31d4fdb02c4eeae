// Package pgtest starts a throwaway Postgres for repository tests.
package pgtest

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/beforest/brandvoice/internal/infra/config"
	"github.com/beforest/brandvoice/internal/infra/postgres"
)

// NewPool returns a migrated pool backed by a container. The test is skipped
// under -short or when no container runtime is reachable.
func NewPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	ctr, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("brandvoice"),
		tcpostgres.WithUsername("brandvoice"),
		tcpostgres.WithPassword("brandvoice"),
		tcpostgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := postgres.Open(ctx, config.PostgresConfig{DSN: dsn, MaxConns: 4})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, postgres.Migrate(ctx, pool))
	return pool
}

// CreateUser inserts a bare user row and returns its id.
func CreateUser(t *testing.T, pool *pgxpool.Pool, email string) int64 {
	t.Helper()
	var id int64
	err := pool.QueryRow(context.Background(), `
		INSERT INTO users (email, username, display_name, password_hash)
		VALUES ($1, $1, $1, 'x')
		RETURNING id
	`, email).Scan(&id)
	require.NoError(t, err)
	return id
}
