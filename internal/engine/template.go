package engine

import "strings"

// FilesToken is the placeholder a hook command uses to receive the matched
// file list. Both ${RATCHET_FILES} and the bare $RATCHET_FILES form are
// recognized.
const FilesToken = "RATCHET_FILES"

// RenderCommand substitutes the matched file list into a command template.
// Paths are shell-quoted and space-joined; an empty list expands to nothing.
// Rendering is pure string work, no environment access.
func RenderCommand(command string, files []string) string {
	joined := shellJoin(files)
	out := strings.ReplaceAll(command, "${"+FilesToken+"}", joined)
	out = strings.ReplaceAll(out, "$"+FilesToken, joined)
	return out
}

func shellJoin(files []string) string {
	if len(files) == 0 {
		return ""
	}
	quoted := make([]string, 0, len(files))
	for _, f := range files {
		quoted = append(quoted, shellQuote(f))
	}
	return strings.Join(quoted, " ")
}

// shellQuote single-quotes a path unless it is plainly safe. Embedded single
// quotes use the '\'' idiom so the result survives `sh -c`.
func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsAny(s, " \t\n\"'\\$`&|;<>()*?[]{}~#!") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
