// Package testutils starts disposable databases for integration tests.
//
// Containers are terminated when the test finishes. Tests using them are
// skipped in -short mode and when no container provider is available.
package testutils

import (
	"context"
	"fmt"
	"testing"
	"time"

	tc "github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
)

// SkipIfNoContainers skips integration tests that need docker.
func SkipIfNoContainers(t *testing.T) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	tc.SkipIfProviderIsNotHealthy(t)
}

// StartPostgres runs a PostgreSQL container and returns its DSN.
func StartPostgres(t *testing.T) string {
	t.Helper()
	SkipIfNoContainers(t)

	ctx := context.Background()

	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("tinyurl"),
		tcpostgres.WithUsername("tinyurl"),
		tcpostgres.WithPassword("tinyurl"),
		tc.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	t.Cleanup(func() {
		_ = pgContainer.Terminate(context.Background())
	})

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get postgres connection string: %v", err)
	}

	return dsn
}

// StartRedis runs a Redis container and returns its redis:// URL.
func StartRedis(t *testing.T) string {
	t.Helper()
	SkipIfNoContainers(t)

	ctx := context.Background()

	redisContainer, err := tcredis.Run(ctx, "redis:7-alpine")
	if err != nil {
		t.Fatalf("failed to start redis container: %v", err)
	}
	t.Cleanup(func() {
		_ = redisContainer.Terminate(context.Background())
	})

	endpoint, err := redisContainer.Endpoint(ctx, "")
	if err != nil {
		t.Fatalf("failed to get redis endpoint: %v", err)
	}

	return fmt.Sprintf("redis://%s/0", endpoint)
}
