package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ratchet-run/ratchet/internal/models"
)

// ErrCacheMiss is returned by Lookup when no entry exists for a fingerprint.
var ErrCacheMiss = errors.New("cache miss")

// CacheEntry is one recorded hook result, written once per distinct
// fingerprint and never mutated by lookups.
type CacheEntry struct {
	Fingerprint string    `json:"fingerprint"`
	Plugin      string    `json:"plugin"`
	Hook        string    `json:"hook"`
	Directory   string    `json:"directory"`
	CommandHash string    `json:"command_hash"`
	ExitCode    int       `json:"exit_code"`
	Stdout      string    `json:"stdout"`
	Stderr      string    `json:"stderr"`
	DurationMS  int64     `json:"duration_ms"`
	RecordedAt  time.Time `json:"recorded_at"`
}

// Lookup returns the entry recorded under fp, or ErrCacheMiss. The entry's
// payload is returned byte-identical to what Record stored; only the
// last_used_at column is touched.
func Lookup(db *sql.DB, fp *Fingerprint) (*CacheEntry, error) {
	var e CacheEntry
	var recordedAt string
	err := db.QueryRowContext(context.Background(), `
		SELECT fingerprint, plugin, hook, directory, command_hash,
		       exit_code, stdout, stderr, duration_ms, recorded_at
		FROM cache_entries WHERE fingerprint = ?
	`, fp.Sum).Scan(
		&e.Fingerprint, &e.Plugin, &e.Hook, &e.Directory, &e.CommandHash,
		&e.ExitCode, &e.Stdout, &e.Stderr, &e.DurationMS, &recordedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("cache lookup: %w", err)
	}
	if t, perr := time.Parse(time.RFC3339Nano, recordedAt); perr == nil {
		e.RecordedAt = t
	} else if t, perr := time.Parse("2006-01-02 15:04:05", recordedAt); perr == nil {
		e.RecordedAt = t
	}

	// Best-effort recency touch for the GC's LRU ordering.
	_, _ = db.ExecContext(context.Background(),
		`UPDATE cache_entries SET last_used_at = ? WHERE fingerprint = ?`,
		time.Now().UTC().Format(time.RFC3339Nano), fp.Sum)

	return &e, nil
}

// Record stores a hook result under fp. Concurrent records for the same
// fingerprint are idempotent: the key encodes command and inputs, so the
// payloads are identical by construction and last writer wins.
func Record(db *sql.DB, fp *Fingerprint, dir string, result *models.HookResult) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	return Transact(db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(context.Background(), `
			INSERT OR REPLACE INTO cache_entries
				(fingerprint, plugin, hook, directory, command_hash,
				 exit_code, stdout, stderr, duration_ms, recorded_at, last_used_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, fp.Sum, result.Hook.PluginName, result.Hook.Name, dir, fp.CommandHash,
			result.ExitCode, result.Stdout, result.Stderr, result.DurationMS, now, now)
		if err != nil {
			return fmt.Errorf("cache record: %w", err)
		}
		return nil
	})
}

// GC prunes entries older than maxAge, then trims to maxEntries by least
// recent use. Either bound may be zero to skip that pass. Pruning is always
// safe; a missing entry only costs a re-run.
func GC(db *sql.DB, maxAge time.Duration, maxEntries int) (pruned int64, err error) {
	if maxAge > 0 {
		cutoff := time.Now().UTC().Add(-maxAge).Format(time.RFC3339Nano)
		res, err := db.ExecContext(context.Background(),
			`DELETE FROM cache_entries WHERE last_used_at < ?`, cutoff)
		if err != nil {
			return pruned, fmt.Errorf("cache gc by age: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil {
			pruned += n
		}
	}

	if maxEntries > 0 {
		res, err := db.ExecContext(context.Background(), `
			DELETE FROM cache_entries WHERE fingerprint NOT IN (
				SELECT fingerprint FROM cache_entries
				ORDER BY last_used_at DESC LIMIT ?
			)
		`, maxEntries)
		if err != nil {
			return pruned, fmt.Errorf("cache gc by count: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil {
			pruned += n
		}
	}

	return pruned, nil
}

// Clear removes every cache entry.
func Clear(db *sql.DB) error {
	_, err := db.ExecContext(context.Background(), `DELETE FROM cache_entries`)
	if err != nil {
		return fmt.Errorf("cache clear: %w", err)
	}
	return nil
}

// CacheStats summarizes the backing store for the CLI.
type CacheStats struct {
	Entries      int64  `json:"entries"`
	PayloadBytes int64  `json:"payload_bytes"`
	OldestEntry  string `json:"oldest_entry,omitempty"`
}

// Stats reports entry count, total stdout/stderr payload size, and the
// oldest recorded_at timestamp.
func Stats(db *sql.DB) (*CacheStats, error) {
	var s CacheStats
	var oldest sql.NullString
	err := db.QueryRowContext(context.Background(), `
		SELECT COUNT(*),
		       COALESCE(SUM(LENGTH(stdout) + LENGTH(stderr)), 0),
		       MIN(recorded_at)
		FROM cache_entries
	`).Scan(&s.Entries, &s.PayloadBytes, &oldest)
	if err != nil {
		return nil, fmt.Errorf("cache stats: %w", err)
	}
	if oldest.Valid {
		s.OldestEntry = oldest.String
	}
	return &s, nil
}
