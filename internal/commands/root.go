package commands

import (
	"errors"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ratchet-run/ratchet/internal/app"
	"github.com/ratchet-run/ratchet/internal/output"
	"github.com/ratchet-run/ratchet/internal/plugin"
)

// Execute runs the CLI application.
func Execute(version string) error {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	root := &cobra.Command{
		Use:           "ratchet",
		Short:         "Hook orchestration for coding agents (match, cache, run, log)",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			showVersion, _ := cmd.Flags().GetBool("version")
			if showVersion {
				type resp struct {
					Version string `json:"version"`
				}
				return output.PrintSuccess(resp{Version: version})
			}
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := app.EnsureConfigDir(); err != nil {
				return err
			}

			// Wire --cache-db into app-level resolver.
			if dbPath, err := cmd.Flags().GetString("cache-db"); err == nil && dbPath != "" {
				app.SetCacheDBOverride(dbPath)
			}

			migrateSettingsAliases()
			return nil
		},
	}

	// Accept snake_case flag spellings from host configs.
	root.PersistentFlags().SetNormalizeFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})
	root.PersistentFlags().String("cache-db", "", "Override cache database path")
	root.Flags().BoolP("version", "v", false, "version for ratchet")

	root.AddCommand(NewRunCmd())
	root.AddCommand(NewHookCmd())
	root.AddCommand(NewPluginsCmd())
	root.AddCommand(NewCacheCmd())
	root.AddCommand(NewEventsCmd())
	root.AddCommand(NewDoctorCmd())

	err := root.Execute()
	if err != nil {
		var pe printedError
		var ec exitCodeError
		// Blocking exit codes are host protocol, not failures.
		if !errors.As(err, &pe) && !errors.As(err, &ec) {
			slog.Error("command failed", "error", err.Error())
		}
	}
	return err
}

// migrateSettingsAliases rewrites legacy plugin identifiers in config.yaml
// to their canonical form. Best-effort: a failure never stops a command.
func migrateSettingsAliases() {
	path, err := app.SettingsPath()
	if err != nil {
		return
	}
	changed, err := plugin.MigrateSettingsFile(path)
	if err != nil {
		slog.Warn("settings alias migration failed", "path", path, "error", err)
		return
	}
	if changed {
		slog.Info("migrated legacy plugin identifiers", "path", path)
	}
}
