package db_test

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/fretlog/internal/db"
)

func TestMigrate_CreatesSchema(t *testing.T) {
	sqlDB, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	require.NoError(t, err)
	defer sqlDB.Close()

	require.NoError(t, db.Migrate(context.Background(), sqlDB))

	for _, table := range []string{"songs", "practices", "decks", "deck_memberships", "sync_queue", "sync_state"} {
		var name string
		err := sqlDB.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		assert.NoError(t, err, "table %s should exist", table)
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	sqlDB, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	require.NoError(t, err)
	defer sqlDB.Close()

	ctx := context.Background()
	require.NoError(t, db.Migrate(ctx, sqlDB))
	require.NoError(t, db.Migrate(ctx, sqlDB), "a second run must be a no-op")

	var count int
	require.NoError(t, sqlDB.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&count))
	assert.Equal(t, 5, count, "each version recorded exactly once")
}
