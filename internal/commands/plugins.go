package commands

import (
	"github.com/spf13/cobra"

	"github.com/ratchet-run/ratchet/internal/app"
	"github.com/ratchet-run/ratchet/internal/output"
	"github.com/ratchet-run/ratchet/internal/plugin"
)

// NewPluginsCmd creates the plugins command group.
func NewPluginsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plugins",
		Short: "Inspect loaded plugins and resolve identifiers",
	}
	cmd.AddCommand(newPluginsListCmd())
	cmd.AddCommand(newPluginsResolveCmd())
	cmd.AddCommand(newPluginsAliasesCmd())
	return cmd
}

func newPluginsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List loaded plugins and their hooks",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := loadRegistry()
			if err != nil {
				return cmdErr(err)
			}

			type hookInfo struct {
				Name    string   `json:"name"`
				Events  []string `json:"events"`
				Command string   `json:"command"`
			}
			type pluginInfo struct {
				Plugin string     `json:"plugin"`
				Root   string     `json:"root"`
				Hooks  []hookInfo `json:"hooks"`
			}
			type resp struct {
				Roots   []string     `json:"roots"`
				Plugins []pluginInfo `json:"plugins"`
				Hooks   int          `json:"hook_count"`
			}

			byPlugin := map[string]*pluginInfo{}
			var order []string
			for _, def := range reg.Definitions() {
				info, ok := byPlugin[def.PluginName]
				if !ok {
					info = &pluginInfo{Plugin: def.PluginName, Root: def.PluginRoot}
					byPlugin[def.PluginName] = info
					order = append(order, def.PluginName)
				}
				events := make([]string, 0, len(def.Events))
				for _, e := range def.Events {
					events = append(events, string(e))
				}
				info.Hooks = append(info.Hooks, hookInfo{Name: def.Name, Events: events, Command: def.Command})
			}

			out := resp{Roots: app.EffectivePluginDirs(), Hooks: reg.Len()}
			for _, name := range order {
				out.Plugins = append(out.Plugins, *byPlugin[name])
			}
			return output.PrintSuccess(out)
		},
	}
}

func newPluginsResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <name>",
		Short: "Print the canonical identifier for a plugin name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			type resp struct {
				Input     string `json:"input"`
				Canonical string `json:"canonical"`
				Aliased   bool   `json:"aliased"`
			}
			canonical := plugin.Resolve(args[0])
			return output.PrintSuccess(resp{
				Input:     args[0],
				Canonical: canonical,
				Aliased:   canonical != args[0],
			})
		},
	}
}

func newPluginsAliasesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "aliases",
		Short: "Print the legacy-to-canonical identifier table",
		RunE: func(cmd *cobra.Command, args []string) error {
			return output.PrintSuccess(plugin.Aliases())
		},
	}
}
