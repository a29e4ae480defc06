package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vytor/fretlog/internal/db"
)

// NewTestDB opens an in-memory SQLite database with all migrations
// applied. Foreign keys are enabled, matching production.
func NewTestDB(t *testing.T) *db.DB {
	t.Helper()

	database, err := db.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	return database
}

// MustClose closes a resource and fails the test on error.
func MustClose(t *testing.T, closer interface{ Close() error }) {
	require.NoError(t, closer.Close())
}
