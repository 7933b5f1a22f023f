package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInitDBWithPath_CreatesSchemaAndSurvivesReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "cache.db")

	db, err := InitDBWithPath(dbPath)
	require.NoError(t, err)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM cache_entries`).Scan(&n))
	require.Zero(t, n)
	require.NoError(t, db.Close())

	// Re-running migrations against an existing database is a no-op.
	db, err = InitDBWithPath(dbPath)
	require.NoError(t, err)
	require.NoError(t, db.Close())
}

func TestNormalizeSQLiteDSN(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/tmp/cache.db", "file:/tmp/cache.db?mode=rwc"},
		{":memory:", "file::memory:?cache=shared"},
		{"file:/tmp/x.db?mode=ro", "file:/tmp/x.db?mode=ro"},
	}
	for _, tt := range tests {
		if got := normalizeSQLiteDSN(tt.in); got != tt.want {
			t.Errorf("normalizeSQLiteDSN(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
