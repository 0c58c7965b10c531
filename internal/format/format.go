// Package format renders completed blueprints as JSON, YAML, or a readable
// markdown document. Writers are pure functions of the blueprint: the same
// input always renders the same bytes.
package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/sabrish/power-platform-solution-blueprint-sub000/pkg/blueprint"
)

// Writer renders one blueprint to w.
type Writer func(w io.Writer, bp *blueprint.Blueprint) error

// ByName resolves a format name to its writer and file extension. Supported
// names are "json", "yaml" ("yml") and "markdown" ("md").
func ByName(name string) (Writer, string, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "json":
		return WriteJSON, "json", nil
	case "yaml", "yml":
		return WriteYAML, "yaml", nil
	case "markdown", "md":
		return WriteMarkdown, "md", nil
	default:
		return nil, "", fmt.Errorf("unknown output format %q (supported: json, yaml, markdown)", name)
	}
}
