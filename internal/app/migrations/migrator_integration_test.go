//go:build integration

package migrations_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appMigrations "github.com/yigit/careernest/internal/app/migrations"
	"github.com/yigit/careernest/internal/pkg/logger"
	"github.com/yigit/careernest/internal/testutil/containers"
)

func TestMigrator_UpDownUp(t *testing.T) {
	pg := containers.NewPostgresContainer(t)
	ctx := context.Background()

	m, err := appMigrations.NewMigrator(pg.URL, logger.Component("migrations"))
	require.NoError(t, err)
	defer m.Close()

	version, dirty, err := m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)

	require.NoError(t, m.Up(), "re-applying is a no-op")

	_, err = pg.DB.Pool.Exec(ctx,
		`INSERT INTO users (email, password_hash, role, full_name) VALUES ('x@y.z', 'h', 'Admin', 'X')`)
	assert.Error(t, err, "role check constraint")

	require.NoError(t, m.Down(1))
	version, _, err = m.Version()
	require.NoError(t, err)
	assert.Zero(t, version)

	var exists bool
	require.NoError(t, pg.DB.Pool.QueryRow(ctx, `SELECT to_regclass('public.profiles') IS NOT NULL`).Scan(&exists))
	assert.False(t, exists)

	require.NoError(t, m.Up())
}
