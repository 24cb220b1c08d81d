package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestPool(t *testing.T) *ConnectionPool {
	t.Helper()
	pool, err := NewConnectionPool(context.Background(), &Config{
		Driver: DriverSQLite,
		DSN:    "file:" + filepath.Join(t.TempDir(), "test.db"),
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })
	return pool
}

func TestMigrateAndSeedAreIdempotent(t *testing.T) {
	ctx := context.Background()
	db := openTestPool(t).GetDB()

	for i := 0; i < 2; i++ {
		require.NoError(t, Migrate(ctx, db))
		require.NoError(t, Seed(ctx, db))
	}

	var stages int
	require.NoError(t, db.Get(&stages, "SELECT COUNT(*) FROM pipeline_stages"))
	assert.Equal(t, len(defaultStages), stages)

	var users int
	require.NoError(t, db.Get(&users, "SELECT COUNT(*) FROM users"))
	assert.Equal(t, 1, users)

	var outcome string
	require.NoError(t, db.Get(&outcome, "SELECT outcome FROM pipeline_stages WHERE name = 'Closed Won'"))
	assert.Equal(t, "won", outcome)
}

func TestSeedKeepsCustomizedPipeline(t *testing.T) {
	ctx := context.Background()
	db := openTestPool(t).GetDB()
	require.NoError(t, Migrate(ctx, db))
	require.NoError(t, Seed(ctx, db))

	_, err := db.Exec("DELETE FROM pipeline_stages WHERE id = 'stage_2'")
	require.NoError(t, err)
	require.NoError(t, Seed(ctx, db))

	var n int
	require.NoError(t, db.Get(&n, "SELECT COUNT(*) FROM pipeline_stages WHERE id = 'stage_2'"))
	assert.Zero(t, n)
}

func TestUnsupportedDriver(t *testing.T) {
	_, err := NewConnectionPool(context.Background(), &Config{Driver: "mysql"}, nil)
	assert.Error(t, err)
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "file:a.db?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", sqliteDSN("file:a.db"))
	assert.Equal(t, "file:a.db?mode=rwc&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", sqliteDSN("file:a.db?mode=rwc"))
	assert.Equal(t, "file:a.db?_pragma=foreign_keys(1)", sqliteDSN("file:a.db?_pragma=foreign_keys(1)"))
}

func TestHealth(t *testing.T) {
	pool := openTestPool(t)
	assert.NoError(t, pool.Health(context.Background()))
}
