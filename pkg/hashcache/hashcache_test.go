package hashcache

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSumFile_MatchesDirectHash(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.txt")
	content := []byte("hello hooks\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	c := New(0)
	sum, err := c.SumFile(path)
	require.NoError(t, err)

	want := sha256.Sum256(content)
	require.Equal(t, hex.EncodeToString(want[:]), sum)
	require.Equal(t, 1, c.Len())
}

func TestSumFile_RevalidatesOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.txt")
	require.NoError(t, os.WriteFile(path, []byte("one"), 0o600))

	c := New(0)
	first, err := c.SumFile(path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("two!"), 0o600))
	// Ensure a distinct mtime even on coarse-grained filesystems.
	future := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, future, future))

	second, err := c.SumFile(path)
	require.NoError(t, err)
	require.NotEqual(t, first, second)
}

func TestSumFile_EvictsLeastRecentlyUsed(t *testing.T) {
	dir := t.TempDir()
	c := New(2)

	var paths []string
	for _, name := range []string{"a", "b", "c"} {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(name), 0o600))
		paths = append(paths, p)
		_, err := c.SumFile(p)
		require.NoError(t, err)
	}

	require.Equal(t, 2, c.Len())
}

func TestSumFile_MissingFile(t *testing.T) {
	c := New(0)
	_, err := c.SumFile(filepath.Join(t.TempDir(), "absent"))
	require.Error(t, err)
}
