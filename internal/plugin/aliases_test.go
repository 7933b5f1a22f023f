package plugin

import "testing"

func TestResolve_Idempotent(t *testing.T) {
	for legacy, canonical := range Aliases() {
		got := Resolve(legacy)
		if got != canonical {
			t.Errorf("Resolve(%q) = %q, want %q", legacy, got, canonical)
		}
		if again := Resolve(got); again != got {
			t.Errorf("Resolve not idempotent for %q: %q -> %q", legacy, got, again)
		}
	}
}

func TestResolve_PassesThroughUnknownNames(t *testing.T) {
	for _, name := range []string{"languages/typescript", "not-a-plugin", ""} {
		if got := Resolve(name); got != name {
			t.Errorf("Resolve(%q) = %q, want passthrough", name, got)
		}
	}
}
