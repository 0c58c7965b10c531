package definition

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/sabrish/power-platform-solution-blueprint-sub000/pkg/blueprint"
)

// flowMessageNames maps the record-change subscription message code carried
// in a flow's trigger parameters to a display phrase.
var flowMessageNames = map[int]string{
	1: "Create",
	2: "Delete",
	3: "Update",
	4: "Create or Update",
	5: "Create or Delete",
	6: "Update or Delete",
	7: "Create, Update or Delete",
}

type flowClientData struct {
	Properties struct {
		Definition struct {
			Triggers map[string]struct {
				Type   string `json:"type"`
				Inputs struct {
					Parameters map[string]any `json:"parameters"`
				} `json:"inputs"`
			} `json:"triggers"`
		} `json:"definition"`
	} `json:"properties"`
}

// ParseFlowTrigger decodes a modern flow's client data and returns its
// trigger metadata. Flows without decodable record-change trigger metadata
// yield a zero FlowTrigger; they are still documented, just not bound to an
// entity.
func ParseFlowTrigger(clientData string) blueprint.FlowTrigger {
	if strings.TrimSpace(clientData) == "" {
		return blueprint.FlowTrigger{}
	}
	var data flowClientData
	if err := json.Unmarshal([]byte(clientData), &data); err != nil {
		return blueprint.FlowTrigger{}
	}
	triggers := data.Properties.Definition.Triggers
	if len(triggers) == 0 {
		return blueprint.FlowTrigger{}
	}

	names := make([]string, 0, len(triggers))
	for name := range triggers {
		names = append(names, name)
	}
	sort.Strings(names)

	out := blueprint.FlowTrigger{Kind: triggers[names[0]].Type}
	for _, name := range names {
		trig := triggers[name]
		params := trig.Inputs.Parameters
		entity, _ := params["subscriptionRequest/entityname"].(string)
		if entity == "" {
			continue
		}
		out.Kind = trig.Type
		out.Entity = strings.ToLower(entity)
		if code, ok := params["subscriptionRequest/message"].(float64); ok {
			out.Message = flowMessageNames[int(code)]
		}
		break
	}
	return out
}
