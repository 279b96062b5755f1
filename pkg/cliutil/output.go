package cliutil

import (
	"encoding/json"
	"io"
)

// WriteJSON writes the given value as JSON to the writer.
// If verbose is true, it pretty-prints with indentation.
func WriteJSON(w io.Writer, v any, verbose bool) error {
	encoder := json.NewEncoder(w)
	if verbose {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(v)
}
