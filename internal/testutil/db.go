// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/aryan0dhankhar/crm/internal/infrastructure/logger"
	"github.com/aryan0dhankhar/crm/pkg/database"
)

// NewDB opens a migrated and seeded sqlite database in a temp directory.
// It is closed when the test ends.
func NewDB(t *testing.T) *sqlx.DB {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := database.NewConnectionPool(ctx, &database.Config{
		Driver: database.DriverSQLite,
		DSN:    "file:" + filepath.Join(t.TempDir(), "crm.db"),
	}, logger.Discard())
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { pool.Close() })

	db := pool.GetDB()
	if err := database.Migrate(ctx, db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := database.Seed(ctx, db); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return db
}

// FixedClock returns a clock pinned at t, advanced with the returned func
func FixedClock(t time.Time) (func() time.Time, func(time.Duration)) {
	now := t
	return func() time.Time { return now }, func(d time.Duration) { now = now.Add(d) }
}
