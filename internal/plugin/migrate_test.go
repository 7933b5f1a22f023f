package plugin

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMigrateSettingsFile_RewritesLegacyIdentifiers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := "# my config\nmax_concurrency: 8\nplugins:\n  - jutsu-typescript\n  - languages/go\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	changed, err := MigrateSettingsFile(path)
	require.NoError(t, err)
	require.True(t, changed)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(b), "languages/typescript")
	require.NotContains(t, string(b), "jutsu-typescript")
	require.Contains(t, string(b), "languages/go")
	require.Contains(t, string(b), "max_concurrency: 8")
	require.Contains(t, string(b), "# my config")
}

func TestMigrateSettingsFile_SecondRunProducesNoDiff(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := "plugins:\n  - jutsu-typescript\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	changed, err := MigrateSettingsFile(path)
	require.NoError(t, err)
	require.True(t, changed)

	first, err := os.ReadFile(path)
	require.NoError(t, err)

	changed, err = MigrateSettingsFile(path)
	require.NoError(t, err)
	require.False(t, changed)

	second, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, string(first), string(second))
}

func TestMigrateSettingsFile_MissingFileIsNotAnError(t *testing.T) {
	changed, err := MigrateSettingsFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.False(t, changed)
}

func TestMigrateSettingsFile_NoLegacyReferencesIsNoOp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := "plugins:\n  - languages/rust\nfail_fast: true\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	changed, err := MigrateSettingsFile(path)
	require.NoError(t, err)
	require.False(t, changed)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, doc, string(b))
}
