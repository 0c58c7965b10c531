package format

import (
	"encoding/json"
	"io"

	"github.com/sabrish/power-platform-solution-blueprint-sub000/pkg/blueprint"
)

// WriteJSON renders the blueprint as indented JSON. Map keys marshal in
// sorted order, so output is stable across runs.
func WriteJSON(w io.Writer, bp *blueprint.Blueprint) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(bp)
}
