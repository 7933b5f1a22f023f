package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/ratchet-run/ratchet/internal/output"
	"github.com/ratchet-run/ratchet/internal/store"
)

// Default GC bounds. The cache is correctness-free by contract, so these
// only trade disk for re-runs.
const (
	defaultGCMaxAgeDays = 30
	defaultGCMaxEntries = 10000
)

// NewCacheCmd creates the cache command group.
func NewCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and maintain the hook result cache",
	}
	cmd.AddCommand(newCacheStatsCmd())
	cmd.AddCommand(newCacheGCCmd())
	cmd.AddCommand(newCacheClearCmd())
	return cmd
}

func newCacheStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cache entry count, payload size, and oldest entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCacheDB(func(db *DB) error {
				stats, err := store.Stats(db)
				if err != nil {
					return err
				}
				return output.PrintSuccess(stats)
			})
		},
	}
}

func newCacheGCCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gc",
		Short: "Prune cache entries by age and count",
		RunE: func(cmd *cobra.Command, args []string) error {
			maxAgeDays, _ := cmd.Flags().GetInt("max-age-days")
			maxEntries, _ := cmd.Flags().GetInt("max-entries")

			return withCacheDB(func(db *DB) error {
				pruned, err := store.GC(db, time.Duration(maxAgeDays)*24*time.Hour, maxEntries)
				if err != nil {
					return err
				}
				type resp struct {
					Pruned     int64 `json:"pruned"`
					MaxAgeDays int   `json:"max_age_days"`
					MaxEntries int   `json:"max_entries"`
				}
				return output.PrintSuccess(resp{Pruned: pruned, MaxAgeDays: maxAgeDays, MaxEntries: maxEntries})
			})
		},
	}
	cmd.Flags().Int("max-age-days", defaultGCMaxAgeDays, "Prune entries older than this many days")
	cmd.Flags().Int("max-entries", defaultGCMaxEntries, "Keep at most this many entries (LRU)")
	return cmd
}

func newCacheClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cache entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCacheDB(func(db *DB) error {
				if err := store.Clear(db); err != nil {
					return err
				}
				type resp struct {
					Cleared bool `json:"cleared"`
				}
				return output.PrintSuccess(resp{Cleared: true})
			})
		},
	}
}
