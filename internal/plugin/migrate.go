package plugin

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// MigrateSettingsFile rewrites legacy plugin identifiers in the persisted
// settings document at path to their canonical form, in place. Every field
// other than the plugin references is preserved byte-for-byte (the rewrite
// operates on the YAML node tree, so comments and ordering survive).
//
// The operation is idempotent: a document with no legacy references is left
// untouched and reports changed=false. A missing settings file is not an
// error; there is nothing to migrate.
func MigrateSettingsFile(path string) (changed bool, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("read settings %s: %w", path, err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return false, fmt.Errorf("parse settings %s: %w", path, err)
	}

	rewritten := rewritePluginRefs(&doc)
	if len(rewritten) == 0 {
		return false, nil
	}

	out, err := yaml.Marshal(&doc)
	if err != nil {
		return false, fmt.Errorf("marshal settings %s: %w", path, err)
	}
	if err := os.WriteFile(path, out, 0600); err != nil {
		return false, fmt.Errorf("write settings %s: %w", path, err)
	}

	for legacy, canonical := range rewritten {
		slog.Info("migrated legacy plugin reference",
			"settings", path, "from", legacy, "to", canonical)
	}
	return true, nil
}

// rewritePluginRefs walks the document and maps every scalar under a
// "plugins" sequence through Resolve. Returns legacy -> canonical pairs that
// were actually rewritten.
func rewritePluginRefs(n *yaml.Node) map[string]string {
	rewritten := map[string]string{}
	walkPluginRefs(n, false, rewritten)
	return rewritten
}

func walkPluginRefs(n *yaml.Node, inPlugins bool, rewritten map[string]string) {
	if n == nil {
		return
	}

	switch n.Kind {
	case yaml.DocumentNode:
		for _, c := range n.Content {
			walkPluginRefs(c, inPlugins, rewritten)
		}
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			key, val := n.Content[i], n.Content[i+1]
			walkPluginRefs(val, key.Value == "plugins", rewritten)
		}
	case yaml.SequenceNode:
		for _, c := range n.Content {
			walkPluginRefs(c, inPlugins, rewritten)
		}
	case yaml.ScalarNode:
		if !inPlugins {
			return
		}
		if canonical := Resolve(n.Value); canonical != n.Value {
			rewritten[n.Value] = canonical
			n.Value = canonical
		}
	}
}
