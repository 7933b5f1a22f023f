// Package output prints the versioned JSON envelope every command emits on
// stdout. Hook responses for hosts bypass this package; only CLI commands
// for humans and agents use the envelope.
package output

import (
	"encoding/json"
	"os"
)

// Response is the stdout envelope for command results.
type Response struct {
	SchemaVersion string `json:"schema_version"`
	Success       bool   `json:"success"`
	Data          any    `json:"data,omitempty"`
	Error         string `json:"error,omitempty"`
}

// Success wraps data in a successful envelope.
func Success(data any) Response {
	return Response{
		SchemaVersion: "v1",
		Success:       true,
		Data:          data,
	}
}

// Error wraps err in a failed envelope.
func Error(err error) Response {
	return Response{
		SchemaVersion: "v1",
		Success:       false,
		Error:         err.Error(),
	}
}

// Print writes v as JSON to stdout. Output is compact by default to keep
// agent-consumed bytes small; RATCHET_PRETTY_JSON=1 indents for humans.
func Print(v any) error {
	enc := json.NewEncoder(os.Stdout)
	if os.Getenv("RATCHET_PRETTY_JSON") == "1" || os.Getenv("RATCHET_PRETTY_JSON") == "true" {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

// PrintSuccess prints a success envelope around data.
func PrintSuccess(data any) error {
	return Print(Success(data))
}

// PrintError prints a failed envelope for err.
func PrintError(err error) error {
	return Print(Error(err))
}
