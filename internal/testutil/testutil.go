package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vytor/betterank/internal/db"
)

// NewTestDB opens an in-memory credential store with all migrations applied.
func NewTestDB(t *testing.T) *db.DB {
	t.Helper()
	store, err := db.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// MustClose closes a resource and fails the test on error.
func MustClose(t *testing.T, closer interface{ Close() error }) {
	t.Helper()
	require.NoError(t, closer.Close())
}
