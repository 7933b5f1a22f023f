package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ratchet-run/ratchet/pkg/hashcache"
)

func TestComputeFingerprint_StableForIdenticalInputs(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "app.ts", "export {}\n")
	hook := testHook("languages/typescript", "typecheck", "tsc --noEmit")

	fp1, err := ComputeFingerprint(hook, dir, []string{input}, hashcache.New(0))
	require.NoError(t, err)
	fp2, err := ComputeFingerprint(hook, dir, []string{input}, hashcache.New(0))
	require.NoError(t, err)
	require.Equal(t, fp1.Sum, fp2.Sum)
	require.Equal(t, fp1.CommandHash, fp2.CommandHash)
}

func TestComputeFingerprint_FileOrderDoesNotMatter(t *testing.T) {
	dir := t.TempDir()
	a := writeInput(t, dir, "a.ts", "a")
	b := writeInput(t, dir, "b.ts", "b")
	hook := testHook("languages/typescript", "typecheck", "tsc --noEmit")

	fp1, err := ComputeFingerprint(hook, dir, []string{a, b}, hashcache.New(0))
	require.NoError(t, err)
	fp2, err := ComputeFingerprint(hook, dir, []string{b, a}, hashcache.New(0))
	require.NoError(t, err)
	require.Equal(t, fp1.Sum, fp2.Sum)
}

func TestComputeFingerprint_PluginProvenanceDistinguishesIdenticalCommands(t *testing.T) {
	// Same command text, different declaring plugin: must not collide.
	dir := t.TempDir()
	a := testHook("languages/typescript", "check", "npx validate")
	b := testHook("tools/eslint", "check", "npx validate")

	fpA, err := ComputeFingerprint(a, dir, nil, hashcache.New(0))
	require.NoError(t, err)
	fpB, err := ComputeFingerprint(b, dir, nil, hashcache.New(0))
	require.NoError(t, err)
	require.NotEqual(t, fpA.Sum, fpB.Sum)
	require.Equal(t, fpA.CommandHash, fpB.CommandHash)
}

func TestComputeFingerprint_CommandChangesKey(t *testing.T) {
	dir := t.TempDir()
	fp1, err := ComputeFingerprint(testHook("p", "h", "cmd one"), dir, nil, hashcache.New(0))
	require.NoError(t, err)
	fp2, err := ComputeFingerprint(testHook("p", "h", "cmd two"), dir, nil, hashcache.New(0))
	require.NoError(t, err)
	require.NotEqual(t, fp1.Sum, fp2.Sum)
}

func TestComputeFingerprint_NoFilesUsesMarkerListing(t *testing.T) {
	dir := t.TempDir()
	hook := testHook("languages/go", "build", "go build ./...")

	fp1, err := ComputeFingerprint(hook, dir, nil, hashcache.New(0))
	require.NoError(t, err)

	// A new top-level entry churns the key; file contents do not factor in.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.sum"), nil, 0o600))
	fp2, err := ComputeFingerprint(hook, dir, nil, hashcache.New(0))
	require.NoError(t, err)
	require.NotEqual(t, fp1.Sum, fp2.Sum)
}

func TestComputeFingerprint_UnreadableInputIsAnError(t *testing.T) {
	dir := t.TempDir()
	hook := testHook("languages/go", "vet", "go vet")
	_, err := ComputeFingerprint(hook, dir, []string{filepath.Join(dir, "absent.go")}, hashcache.New(0))
	require.Error(t, err)
}
