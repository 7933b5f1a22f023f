package app

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func resetSettingsStateForTest() {
	settingsOnce = sync.Once{}
	settings = Settings{}
	settingsErr = nil
	SetCacheDBOverride("")
}

func TestCacheDBPath_PrioritizesCLIOverride(t *testing.T) {
	resetSettingsStateForTest()
	t.Cleanup(resetSettingsStateForTest)

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("RATCHET_CACHE_DB", filepath.Join(home, "env", "cache.db"))

	overridePath := filepath.Join(home, "cli", "cache.db")
	SetCacheDBOverride(overridePath)

	resolved, err := CacheDBPath("/src/project")
	require.NoError(t, err)
	require.Equal(t, overridePath, resolved)
}

func TestCacheDBPath_UsesEnvWithoutOverride(t *testing.T) {
	resetSettingsStateForTest()
	t.Cleanup(resetSettingsStateForTest)

	home := t.TempDir()
	t.Setenv("HOME", home)

	envPath := filepath.Join(home, "env", "cache.db")
	t.Setenv("RATCHET_CACHE_DB", envPath)

	resolved, err := CacheDBPath("/src/project")
	require.NoError(t, err)
	require.Equal(t, envPath, resolved)
}

func TestCacheDBPath_DefaultIsKeyedByProjectSlug(t *testing.T) {
	resetSettingsStateForTest()
	t.Cleanup(resetSettingsStateForTest)

	home := t.TempDir()
	t.Setenv("HOME", home)

	resolved, err := CacheDBPath("/src/my.project")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, ".config", "ratchet", "cache", "-src-my-project.db"), resolved)
	require.DirExists(t, filepath.Dir(resolved))
}

func TestEnsureDBDir_CreatesParentDirectories(t *testing.T) {
	base := t.TempDir()
	dbPath := filepath.Join(base, "nested", "deep", "cache.db")

	resolved, err := EnsureDBDir(dbPath)
	require.NoError(t, err)
	require.Equal(t, dbPath, resolved)
	require.DirExists(t, filepath.Dir(dbPath))
}

func TestProjectSlug(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/Users/me/src/app", "-Users-me-src-app"},
		{"/src/github.com/org/repo", "-src-github-com-org-repo"},
		{"", "-"},
	}
	for _, tt := range tests {
		if got := ProjectSlug(tt.path); got != tt.want {
			t.Errorf("ProjectSlug(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
