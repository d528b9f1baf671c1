package migrate_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"habline/internal/db"
	"habline/internal/migrate"
)

func TestMigrateIsIdempotent(t *testing.T) {
	conn, err := db.Open(db.Config{Workspace: t.TempDir()})
	require.NoError(t, err)
	defer conn.Close()
	ctx := context.Background()

	first, err := migrate.Migrate(ctx, conn)
	require.NoError(t, err)
	second, err := migrate.Migrate(ctx, conn)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 2, first)

	var n int
	require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM cache`).Scan(&n))
	assert.Zero(t, n)
}
