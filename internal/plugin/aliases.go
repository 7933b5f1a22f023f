// Package plugin loads hook declarations from installed plugins and resolves
// legacy plugin identifiers to their canonical {category}/{name} form.
package plugin

// aliases maps legacy plugin identifiers to canonical {category}/{name}
// paths. The table is versioned with the binary and consulted once per
// resolution call; it carries no mutable state.
//
//nolint:gochecknoglobals // immutable lookup table, injected nowhere else
var aliases = map[string]string{
	"jutsu-typescript": "languages/typescript",
	"jutsu-javascript": "languages/javascript",
	"jutsu-go":         "languages/go",
	"jutsu-python":     "languages/python",
	"jutsu-rust":       "languages/rust",
	"jutsu-shell":      "languages/shell",
	"jutsu-biome":      "tools/biome",
	"jutsu-prettier":   "tools/prettier",
	"jutsu-eslint":     "tools/eslint",
	"jutsu-shellcheck": "tools/shellcheck",
	"ratchet-validate": "core/validate",
}

// Resolve rewrites a legacy plugin identifier to its canonical form. Unknown
// and already-canonical names pass through unchanged, which keeps the
// function total and idempotent: Resolve(Resolve(x)) == Resolve(x).
func Resolve(name string) string {
	if canonical, ok := aliases[name]; ok {
		return canonical
	}
	return name
}

// Aliases returns a copy of the legacy -> canonical table, for CLI listing
// and host-equivalence tests.
func Aliases() map[string]string {
	out := make(map[string]string, len(aliases))
	for k, v := range aliases {
		out[k] = v
	}
	return out
}
