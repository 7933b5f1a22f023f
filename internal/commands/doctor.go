package commands

import (
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/ratchet-run/ratchet/internal/app"
	"github.com/ratchet-run/ratchet/internal/output"
)

// NewDoctorCmd creates the doctor command.
func NewDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration, cache database, and plugin health",
		RunE: func(cmd *cobra.Command, args []string) error {
			type resp struct {
				ConfigDir    string   `json:"config_dir"`
				SettingsPath string   `json:"settings_path"`
				CacheDBPath  string   `json:"cache_db_path"`
				CacheOK      bool     `json:"cache_ok"`
				CacheErr     string   `json:"cache_error,omitempty"`
				PluginRoots  []string `json:"plugin_roots"`
				PluginCount  int      `json:"plugin_count"`
				HookCount    int      `json:"hook_count"`
				PluginErr    string   `json:"plugin_error,omitempty"`
				ShellOK      bool     `json:"shell_ok"`
				Hint         string   `json:"hint,omitempty"`
			}

			out := resp{PluginRoots: app.EffectivePluginDirs()}

			if dir, err := app.ConfigDir(); err == nil {
				out.ConfigDir = dir
			}
			if path, err := app.SettingsPath(); err == nil {
				out.SettingsPath = path
			}

			cwd, err := os.Getwd()
			if err != nil {
				return cmdErr(err)
			}
			if path, err := app.CacheDBPath(cwd); err == nil {
				out.CacheDBPath = path
			}

			db, closeDB, err := openCacheDB()
			if err != nil {
				out.CacheErr = err.Error()
				out.Hint = "If this environment is sandboxed, point --cache-db or RATCHET_CACHE_DB at a writable location."
			} else {
				var one int
				if qerr := db.QueryRow("SELECT 1").Scan(&one); qerr != nil {
					out.CacheErr = qerr.Error()
				} else {
					out.CacheOK = true
				}
				closeDB()
			}

			reg, err := loadRegistry()
			if err != nil {
				out.PluginErr = err.Error()
			} else {
				out.PluginCount = len(reg.Plugins())
				out.HookCount = reg.Len()
			}

			_, shErr := exec.LookPath("sh")
			out.ShellOK = shErr == nil

			return output.PrintSuccess(out)
		},
	}
}
