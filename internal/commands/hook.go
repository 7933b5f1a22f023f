package commands

import (
	"github.com/spf13/cobra"

	"github.com/ratchet-run/ratchet/internal/commands/hookcmd"
)

// NewHookCmd creates the hook lifecycle command group.
func NewHookCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hook",
		Short: "Install or remove ratchet hooks in host settings",
	}
	cmd.AddCommand(hookcmd.NewInstallCmd())
	cmd.AddCommand(hookcmd.NewUninstallCmd())
	cmd.AddCommand(hookcmd.NewStatusCmd())
	return cmd
}
