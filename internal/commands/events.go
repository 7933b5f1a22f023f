package commands

import (
	"bufio"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ratchet-run/ratchet/internal/adapter"
	"github.com/ratchet-run/ratchet/internal/events"
	"github.com/ratchet-run/ratchet/internal/output"
)

// NewEventsCmd creates the events command group.
func NewEventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Locate and follow per-session event logs",
	}
	cmd.AddCommand(newEventsPathCmd())
	cmd.AddCommand(newEventsTailCmd())
	return cmd
}

func newEventsPathCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "path <session-id>",
		Short: "Print the event log path for a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			provider, _ := cmd.Flags().GetString("provider")
			cwd, err := os.Getwd()
			if err != nil {
				return cmdErr(err)
			}

			path, err := events.LogPath(provider, cwd, args[0])
			if err != nil {
				return cmdErr(err)
			}

			type resp struct {
				Path   string `json:"path"`
				Exists bool   `json:"exists"`
			}
			_, statErr := os.Stat(path)
			return output.PrintSuccess(resp{Path: path, Exists: statErr == nil})
		},
	}
	cmd.Flags().String("provider", adapter.ProviderClaude, "Host provider")
	return cmd
}

func newEventsTailCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tail <session-id>",
		Short: "Follow a session's event log as it grows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			provider, _ := cmd.Flags().GetString("provider")
			follow, _ := cmd.Flags().GetBool("follow")
			cwd, err := os.Getwd()
			if err != nil {
				return cmdErr(err)
			}

			path, err := events.LogPath(provider, cwd, args[0])
			if err != nil {
				return cmdErr(err)
			}
			return tailFile(cmd, path, follow)
		},
	}
	cmd.Flags().String("provider", adapter.ProviderClaude, "Host provider")
	cmd.Flags().BoolP("follow", "f", false, "Keep reading as the log grows")
	return cmd
}

// tailFile streams path to stdout line by line. With follow, it polls for
// appended data the way the downstream indexer does, tolerating partially
// written trailing lines by only emitting newline-terminated records.
func tailFile(cmd *cobra.Command, path string, follow bool) error {
	f, err := os.Open(path)
	if err != nil {
		return cmdErr(err)
	}
	defer f.Close()

	reader := bufio.NewReader(f)
	for {
		line, err := reader.ReadString('\n')
		if err == nil {
			fmt.Fprint(cmd.OutOrStdout(), line)
			continue
		}
		if !follow {
			if line != "" {
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		}
		select {
		case <-cmd.Context().Done():
			return nil
		case <-time.After(200 * time.Millisecond):
		}
		// Partial line: back up so the next read retries the full record.
		if line != "" {
			if _, serr := f.Seek(-int64(len(line)), 1); serr == nil {
				reader.Reset(f)
			}
		}
	}
}
