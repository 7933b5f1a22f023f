package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// CacheDBPath resolves the cache database path for a working tree.
// Order of precedence:
// 1) CLI override (e.g. --cache-db)
// 2) Environment variable: RATCHET_CACHE_DB
// 3) config.yaml: cache_db_path
// 4) Default: ~/.config/ratchet/cache/<project-slug>.db
// Returns the path and ensures the parent directory exists. The default is
// keyed by the slugified working-tree path so each project gets its own
// cache scope.
func CacheDBPath(cwd string) (string, error) {
	if override := getCacheDBOverride(); override != "" {
		return EnsureDBDir(override)
	}

	if envPath := os.Getenv("RATCHET_CACHE_DB"); envPath != "" {
		return EnsureDBDir(envPath)
	}

	cfg, err := LoadSettings()
	if err != nil {
		return "", fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.CacheDBPath != "" {
		return EnsureDBDir(cfg.CacheDBPath)
	}

	configDir, err := ConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine config directory: %w", err)
	}
	return EnsureDBDir(filepath.Join(configDir, "cache", ProjectSlug(cwd)+".db"))
}

// EnsureDBDir creates the parent directory of dbPath if needed.
func EnsureDBDir(dbPath string) (string, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create database directory: %w", err)
	}
	return dbPath, nil
}
