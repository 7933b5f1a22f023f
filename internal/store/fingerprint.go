package store

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ratchet-run/ratchet/internal/models"
	"github.com/ratchet-run/ratchet/pkg/hashcache"
)

// Fingerprint identifies one hook invocation's full input set. Two
// invocations with an equal Sum are equivalent regardless of wall-clock
// time between them.
type Fingerprint struct {
	// Sum is the cache key: a hash over plugin name, hook name, command
	// template, directory, and either the input files' content hashes or
	// the directory's marker listing.
	Sum string
	// CommandHash is recorded alongside entries so the indexer can group
	// validations by command revision.
	CommandHash string
	// Files maps each input path to its content hash.
	Files map[string]string
}

// ComputeFingerprint derives the cache key for running def against files in
// dir. Plugin name is part of the key: two hooks with identical command text
// but different declaring plugins must not collide. With no file inputs the
// directory's marker-file listing stands in for content.
func ComputeFingerprint(def *models.HookDefinition, dir string, files []string, hashes *hashcache.Cache) (*Fingerprint, error) {
	commandHash := sha256Hex([]byte(def.Command))

	h := sha256.New()
	write := func(parts ...string) {
		for _, p := range parts {
			h.Write([]byte(p))
			h.Write([]byte{0})
		}
	}
	write(def.PluginName, def.Name, commandHash, dir)

	fileHashes := make(map[string]string, len(files))
	if len(files) > 0 {
		sorted := append([]string(nil), files...)
		sort.Strings(sorted)
		for _, path := range sorted {
			sum, err := hashes.SumFile(path)
			if err != nil {
				return nil, fmt.Errorf("hash input %s: %w", path, err)
			}
			fileHashes[path] = sum
			write(path, sum)
		}
	} else {
		listing, err := markerListing(dir)
		if err != nil {
			return nil, fmt.Errorf("list directory %s: %w", dir, err)
		}
		write(listing)
	}

	return &Fingerprint{
		Sum:         hex.EncodeToString(h.Sum(nil)),
		CommandHash: commandHash,
		Files:       fileHashes,
	}, nil
}

// markerListing produces a stable description of a directory's top-level
// contents: entry names with a directory marker, sorted. Enough churn signal
// for no-file-input hooks without hashing the whole tree.
func markerListing(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() {
			name += "/"
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, "\n"), nil
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
