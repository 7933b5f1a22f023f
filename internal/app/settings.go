package app

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Settings represents configuration loaded from config.yaml.
// Field names match snake_case YAML keys. The Plugins list is the persisted
// settings document the alias migration rewrites in place on startup.
type Settings struct {
	CacheDBPath    string   `yaml:"cache_db_path"`
	PluginDirs     []string `yaml:"plugin_dirs"`
	Plugins        []string `yaml:"plugins"`
	MaxConcurrency int      `yaml:"max_concurrency"`
	FailFast       bool     `yaml:"fail_fast"`
	FlushDelayMS   int      `yaml:"flush_delay_ms"`
}

// SchedulerSettings are effective runtime values for the execution scheduler.
type SchedulerSettings struct {
	MaxConcurrency int  `json:"max_concurrency"`
	FailFast       bool `json:"fail_fast"`
}

const (
	defaultMaxConcurrency = 4
	maxMaxConcurrency     = 64
	defaultFlushDelayMS   = 100
)

// EffectiveSchedulerSettings returns validated scheduler settings with defaults.
// Invalid or missing config values fall back to safe defaults.
func EffectiveSchedulerSettings() SchedulerSettings {
	cfg := SchedulerSettings{
		MaxConcurrency: defaultMaxConcurrency,
	}

	s, err := LoadSettings()
	if err != nil {
		return cfg
	}

	if s.MaxConcurrency > 0 {
		cfg.MaxConcurrency = s.MaxConcurrency
	}
	if cfg.MaxConcurrency > maxMaxConcurrency {
		cfg.MaxConcurrency = maxMaxConcurrency
	}
	cfg.FailFast = s.FailFast
	return cfg
}

// EffectivePluginDirs returns the plugin roots to scan, defaulting to
// ~/.config/ratchet/plugins when config.yaml names none.
func EffectivePluginDirs() []string {
	if s, err := LoadSettings(); err == nil && len(s.PluginDirs) > 0 {
		out := make([]string, 0, len(s.PluginDirs))
		for _, d := range s.PluginDirs {
			out = append(out, expandHome(d))
		}
		return out
	}
	dir, err := ConfigDir()
	if err != nil {
		return nil
	}
	return []string{filepath.Join(dir, "plugins")}
}

// EnabledPlugins returns the configured plugin allowlist. Empty means every
// discovered plugin loads.
func EnabledPlugins() []string {
	s, err := LoadSettings()
	if err != nil {
		return nil
	}
	return s.Plugins
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

// EffectiveFlushDelayMS returns the event-log coalescing delay with defaults.
func EffectiveFlushDelayMS() int {
	s, err := LoadSettings()
	if err != nil || s.FlushDelayMS <= 0 {
		return defaultFlushDelayMS
	}
	return s.FlushDelayMS
}

// settingsOnce, settings, settingsErr implement the sync.Once lazy-load singleton for config.
// cacheDBOverrideMu and cacheDBOverride implement a mutex-protected process-wide override for CLI --cache-db.
//
//nolint:gochecknoglobals // sync.Once singleton + RWMutex override are intentional process-wide state
var (
	settingsOnce sync.Once
	settings     Settings
	settingsErr  error

	cacheDBOverrideMu sync.RWMutex
	cacheDBOverride   string
)

// SetCacheDBOverride sets a process-wide cache database path override.
// Intended for CLI flag support (e.g. --cache-db).
func SetCacheDBOverride(path string) {
	cacheDBOverrideMu.Lock()
	cacheDBOverride = path
	cacheDBOverrideMu.Unlock()
}

func getCacheDBOverride() string {
	cacheDBOverrideMu.RLock()
	v := cacheDBOverride
	cacheDBOverrideMu.RUnlock()
	return v
}

// LoadSettings loads configuration once using the documented lookup order.
// Lookup order (first found wins):
// 1) ~/.config/ratchet/config.yaml
// 2) /etc/ratchet/config.yaml
// 3) ./config.yaml (lowest priority; allows repo-local overrides if desired)
// Environment variables are handled separately.
func LoadSettings() (Settings, error) {
	settingsOnce.Do(func() {
		settings = Settings{}

		for _, path := range settingsPaths() {
			s, err := loadSettingsFile(path)
			if err == nil {
				settings = s
				return
			}
			if !errors.Is(err, os.ErrNotExist) {
				settingsErr = err
				return
			}
		}
	})

	return settings, settingsErr
}

// SettingsPath returns the path of the settings file that would be loaded,
// or the user config path when none exists yet.
func SettingsPath() (string, error) {
	paths := settingsPaths()
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return paths[0], nil
}

func settingsPaths() []string {
	var paths []string
	if dir, err := ConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, "config.yaml"))
	}
	paths = append(paths,
		filepath.Join(string(os.PathSeparator), "etc", "ratchet", "config.yaml"),
		"config.yaml",
	)
	return paths
}

func loadSettingsFile(path string) (Settings, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, err
	}

	var s Settings
	if err := yaml.Unmarshal(b, &s); err != nil {
		return Settings{}, err
	}
	return s, nil
}
