package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ratchet-run/ratchet/internal/adapter"
	"github.com/ratchet-run/ratchet/internal/app"
	"github.com/ratchet-run/ratchet/internal/engine"
	"github.com/ratchet-run/ratchet/internal/events"
	"github.com/ratchet-run/ratchet/internal/models"
	"github.com/ratchet-run/ratchet/internal/store"
)

// maxPayloadBytes bounds the host payload read from stdin.
const maxPayloadBytes = 1 << 20

// exitCodeError carries a specific process exit code out of a command,
// used to preserve the blocking convention through cobra.
type exitCodeError struct {
	code int
}

func (e exitCodeError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

func (e exitCodeError) ExitCode() int { return e.code }

// NewRunCmd creates the hook handler command hosts invoke. It reads the
// native payload on stdin, runs the matched hooks, and answers in the
// host's convention (exit code for pre-action, JSON summary otherwise).
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:    "run [event]",
		Short:  "Handle a host hook event from stdin",
		Hidden: true,
		Args:   cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			provider, _ := cmd.Flags().GetString("provider")
			eventName := ""
			if len(args) == 1 {
				eventName = args[0]
			}

			ad, err := adapter.ForProvider(provider)
			if err != nil {
				return cmdErr(err)
			}

			payload, err := io.ReadAll(io.LimitReader(cmd.InOrStdin(), maxPayloadBytes))
			if err != nil {
				return cmdErr(fmt.Errorf("read host payload: %w", err))
			}

			trigger, err := parseTrigger(ad, provider, eventName, payload)
			if err != nil {
				return cmdErr(err)
			}

			code, err := handleTrigger(cmd.Context(), provider, trigger)
			if err != nil {
				return cmdErr(err)
			}
			if code != 0 {
				return exitCodeError{code: code}
			}
			return nil
		},
	}

	cmd.Flags().String("provider", adapter.ProviderClaude, "Host provider (claude, opencode, kiro)")
	return cmd
}

// parseTrigger decodes the payload, retrying with the positional event name
// merged in for install entries that pass the event out of band.
func parseTrigger(ad adapter.Adapter, provider, eventName string, payload []byte) (*models.Trigger, error) {
	trigger, err := ad.ParseTrigger(payload)
	if err == nil || eventName == "" {
		return trigger, err
	}

	merged, mergeErr := injectEvent(provider, eventName, payload)
	if mergeErr != nil {
		return nil, err
	}
	return ad.ParseTrigger(merged)
}

// injectEvent sets the provider's event field on the raw payload.
func injectEvent(provider, eventName string, payload []byte) ([]byte, error) {
	doc := map[string]any{}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &doc); err != nil {
			return nil, err
		}
	}
	switch provider {
	case adapter.ProviderOpenCode:
		doc["event"] = eventName
	case adapter.ProviderKiro:
		doc["action"] = eventName
	default:
		doc["hook_event_name"] = eventName
	}
	return json.Marshal(doc)
}

// handleTrigger runs the engine for one trigger and writes the host
// response. Returns the process exit code for the host.
func handleTrigger(ctx context.Context, provider string, trigger *models.Trigger) (int, error) {
	reg, err := loadRegistry()
	if err != nil {
		return 0, err
	}

	logger, err := events.NewLogger(provider, trigger.CWD, trigger.SessionID)
	if err != nil {
		// Log-directory creation failure is the one hard stop here.
		return 0, err
	}
	defer logger.Close()

	if trigger.EventType == models.EventToolPost {
		for _, path := range trigger.Files {
			logger.LogFileChange(&models.FileChangeData{Tool: trigger.ToolName, Path: path})
		}
	}

	sched := app.EffectiveSchedulerSettings()
	opts := []engine.Option{engine.WithEventSink(logger)}

	db, err := store.InitDB(trigger.CWD)
	if err != nil {
		slog.Warn("cache unavailable, running without it", "error", err)
	} else {
		defer db.Close()
		opts = append(opts, engine.WithCacheDB(db))
	}

	eng := engine.New(engine.Policy{
		MaxConcurrency: sched.MaxConcurrency,
		FailFast:       sched.FailFast,
	}, opts...)

	report, err := eng.Run(ctx, trigger, reg.Definitions())
	if err != nil {
		return 0, err
	}

	logger.Flush()
	return adapter.Respond(os.Stdout, os.Stderr, trigger, report.Results), nil
}
