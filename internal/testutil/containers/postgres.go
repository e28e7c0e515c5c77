//go:build integration

// Package containers starts throwaway backing services for integration tests.
package containers

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	appMigrations "github.com/yigit/careernest/internal/app/migrations"
	"github.com/yigit/careernest/internal/db"
	"github.com/yigit/careernest/internal/pkg/logger"
)

// PostgresContainer wraps a migrated Postgres instance
type PostgresContainer struct {
	Container testcontainers.Container
	URL       string
	DB        *db.PostgresDB
}

// NewPostgresContainer starts Postgres, applies every migration and
// registers cleanup on t.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("careernest"),
		tcpostgres.WithUsername("careernest"),
		tcpostgres.WithPassword("careernest"),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	url, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get postgres connection string: %v", err)
	}

	if err := appMigrations.RunMigrations(url, logger.Component("migrations")); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		t.Fatalf("failed to open pool: %v", err)
	}
	t.Cleanup(pool.Close)

	return &PostgresContainer{
		Container: container,
		URL:       url,
		DB:        &db.PostgresDB{Pool: pool},
	}
}

// Truncate empties the application tables between tests
func (p *PostgresContainer) Truncate(t *testing.T) {
	t.Helper()

	_, err := p.DB.Pool.Exec(context.Background(),
		`TRUNCATE college_verifications, profiles, users, departments, colleges, college_onboarding_requests RESTART IDENTITY CASCADE`)
	if err != nil {
		t.Fatalf("failed to truncate: %v", err)
	}
}
