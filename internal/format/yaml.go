package format

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/sabrish/power-platform-solution-blueprint-sub000/pkg/blueprint"
)

// WriteYAML renders the blueprint as YAML with two-space indentation. Struct
// fields carry yaml tags mirroring their JSON names and map keys marshal
// sorted, so both machine formats agree on naming and ordering.
func WriteYAML(w io.Writer, bp *blueprint.Blueprint) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(bp); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}
