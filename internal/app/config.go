package app

import (
	"os"
	"path/filepath"
)

// ConfigDir returns ~/.config/ratchet/ on all platforms.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "ratchet"), nil
}

// EnsureConfigDir creates the config directory and default config.yaml if missing.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	configFile := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		return os.WriteFile(configFile, []byte(defaultConfig), 0600)
	}
	return nil
}

const defaultConfig = `# ratchet configuration
# Run: ratchet --help

# Plugin roots scanned for hooks.yaml declarations. Defaults to
# ~/.config/ratchet/plugins when unset.
# plugin_dirs:
#   - ~/.config/ratchet/plugins

# Enabled plugins. Legacy identifiers are rewritten to their canonical
# {category}/{name} form on startup.
# plugins:
#   - languages/typescript

# Scheduler policy.
# max_concurrency: 4
# fail_fast: false

# Optional: override the per-project cache database location.
# Can also be set via RATCHET_CACHE_DB or --cache-db.
# cache_db_path: ~/.config/ratchet/cache/project.db

# Event log flush coalescing delay in milliseconds.
# flush_delay_ms: 100
`
