package migrate_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aerocode/internal/db"
	"aerocode/internal/migrate"
)

func TestMigrateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	conn, err := db.Open(ctx, db.Config{Workspace: t.TempDir()})
	require.NoError(t, err)
	defer conn.Close()

	v, err := migrate.Current(ctx, conn)
	require.NoError(t, err)
	assert.Equal(t, 0, v)

	applied, err := migrate.Migrate(ctx, conn)
	require.NoError(t, err)
	assert.Contains(t, applied, "0001_init.sql")

	latest, err := migrate.Latest()
	require.NoError(t, err)
	v, err = migrate.Current(ctx, conn)
	require.NoError(t, err)
	assert.Equal(t, latest, v)

	applied, err = migrate.Migrate(ctx, conn)
	require.NoError(t, err)
	assert.Empty(t, applied)
}

func TestMigrateRefusesNewerSchema(t *testing.T) {
	ctx := context.Background()
	conn, err := db.Open(ctx, db.Config{InMemory: true})
	require.NoError(t, err)
	defer conn.Close()

	_, err = migrate.Migrate(ctx, conn)
	require.NoError(t, err)
	_, err = conn.ExecContext(ctx, `UPDATE schema_version SET version=999`)
	require.NoError(t, err)

	_, err = migrate.Migrate(ctx, conn)
	require.ErrorContains(t, err, "newer")
}
