package commands

import (
	"database/sql"
	"errors"
	"log/slog"
	"os"

	"github.com/ratchet-run/ratchet/internal/app"
	"github.com/ratchet-run/ratchet/internal/plugin"
	"github.com/ratchet-run/ratchet/internal/store"
)

// DB is an alias so command code doesn't need to import database/sql.
type DB = sql.DB

type printedError struct {
	err error
}

func (e printedError) Error() string {
	// Intentionally hide the original error: the JSON error response is the output.
	return "error already printed"
}

// openCacheDB opens the per-project cache database for the current working
// directory, honoring the --cache-db / RATCHET_CACHE_DB overrides.
func openCacheDB() (*DB, func(), error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, nil, err
	}

	db, err := store.InitDB(cwd)
	if err != nil {
		return nil, nil, err
	}

	return db, func() { _ = db.Close() }, nil
}

func withCacheDB(fn func(db *DB) error) error {
	db, closeDB, err := openCacheDB()
	if err != nil {
		return cmdErr(err)
	}
	defer closeDB()

	if err := fn(db); err != nil {
		return cmdErr(err)
	}
	return nil
}

// cmdErr logs err once via slog and returns a sentinel so the root handler
// does not log it a second time. Errors carrying structured context add
// their own attributes.
func cmdErr(err error) error {
	if err == nil {
		return nil
	}
	attrs := []any{"error", err.Error()}
	var recoverable interface {
		ErrorCode() string
		SuggestedAction() string
	}
	if errors.As(err, &recoverable) {
		attrs = append(attrs, "code", recoverable.ErrorCode(), "action", recoverable.SuggestedAction())
	}
	slog.Error("command error", attrs...)
	return printedError{err: err}
}

// loadRegistry builds the hook registry from the configured plugin roots.
func loadRegistry() (*plugin.Registry, error) {
	return plugin.Load(app.EffectivePluginDirs(), app.EnabledPlugins())
}
