package app

import "strings"

// ProjectSlug converts an absolute project path into the directory-safe slug
// used to key per-project state (cache database, event-log directory).
// Path separators and dots collapse to dashes, matching the layout the
// downstream indexer expects: /Users/me/src/app -> -Users-me-src-app.
func ProjectSlug(path string) string {
	if path == "" {
		return "-"
	}

	var b strings.Builder
	b.Grow(len(path))
	for _, r := range path {
		switch {
		case r == '/' || r == '\\' || r == '.':
			b.WriteByte('-')
		case r == ':': // windows drive letters
			b.WriteByte('-')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
