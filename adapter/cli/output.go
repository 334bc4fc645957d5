package cli

import (
	"encoding/json"
	"io"
)

// WriteJSON writes v as indented JSON, for --json output.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
