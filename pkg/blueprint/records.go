package blueprint

// Trigger is a record-change-bound automation step registered against an
// entity message, with a pipeline stage and an execution rank.
type Trigger struct {
	ID                  string   `json:"id" yaml:"id"`
	Name                string   `json:"name" yaml:"name"`
	Message             string   `json:"message" yaml:"message"`
	Entity              string   `json:"entity" yaml:"entity"`
	Stage               int      `json:"stage" yaml:"stage"`
	Rank                int      `json:"rank" yaml:"rank"`
	Mode                int      `json:"mode" yaml:"mode"`
	FilteringAttributes []string `json:"filtering_attributes,omitempty" yaml:"filtering_attributes,omitempty"`
	State               string   `json:"state,omitempty" yaml:"state,omitempty"`
	Description         string   `json:"description,omitempty" yaml:"description,omitempty"`
}

// Trigger pipeline stages.
const (
	StagePreValidation = 10
	StagePreOperation  = 20
	StagePostOperation = 40
)

// StageName returns the display name of the trigger's pipeline stage.
func (t Trigger) StageName() string {
	switch t.Stage {
	case StagePreValidation:
		return "Pre-validation"
	case StagePreOperation:
		return "Pre-operation"
	case StagePostOperation:
		return "Post-operation"
	default:
		return "Unknown"
	}
}

// ModeName returns the display name of the trigger's execution mode.
func (t Trigger) ModeName() string {
	if t.Mode == 1 {
		return "Asynchronous"
	}
	return "Synchronous"
}

// Flow is a modern, trigger-based automated process. Entity is the logical
// name of the record-change trigger's table, empty when the flow is not
// record-change bound.
type Flow struct {
	ID             string `json:"id" yaml:"id"`
	Name           string `json:"name" yaml:"name"`
	Description    string `json:"description,omitempty" yaml:"description,omitempty"`
	State          string `json:"state,omitempty" yaml:"state,omitempty"`
	Entity         string `json:"entity,omitempty" yaml:"entity,omitempty"`
	TriggerKind    string `json:"trigger_kind,omitempty" yaml:"trigger_kind,omitempty"`
	TriggerMessage string `json:"trigger_message,omitempty" yaml:"trigger_message,omitempty"`

	RawClientData string `json:"-" yaml:"-"`
}

// BusinessRule is a declarative condition/action automation scoped to an
// entity or form. Definition carries the decoded markup; its ParseError field
// flags degraded confidence without invalidating the rest of the record.
type BusinessRule struct {
	ID          string         `json:"id" yaml:"id"`
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	Entity      string         `json:"entity" yaml:"entity"`
	State       string         `json:"state,omitempty" yaml:"state,omitempty"`
	Definition  RuleDefinition `json:"definition" yaml:"definition"`

	RawDefinition string `json:"-" yaml:"-"`
}

// LegacyWorkflow is a deprecated process type kept visible for migration
// guidance.
type LegacyWorkflow struct {
	ID                string   `json:"id" yaml:"id"`
	Name              string   `json:"name" yaml:"name"`
	Description       string   `json:"description,omitempty" yaml:"description,omitempty"`
	Entity            string   `json:"entity" yaml:"entity"`
	State             string   `json:"state,omitempty" yaml:"state,omitempty"`
	Mode              string   `json:"mode,omitempty" yaml:"mode,omitempty"`
	OnDemand          bool     `json:"on_demand" yaml:"on_demand"`
	TriggerOnCreate   bool     `json:"trigger_on_create" yaml:"trigger_on_create"`
	TriggerOnDelete   bool     `json:"trigger_on_delete" yaml:"trigger_on_delete"`
	TriggerOnUpdateOf []string `json:"trigger_on_update_of,omitempty" yaml:"trigger_on_update_of,omitempty"`
}

// GuidedProcess is a multi-stage process definition anchored on a primary
// entity; its stages may span further entities.
type GuidedProcess struct {
	ID            string            `json:"id" yaml:"id"`
	Name          string            `json:"name" yaml:"name"`
	Description   string            `json:"description,omitempty" yaml:"description,omitempty"`
	PrimaryEntity string            `json:"primary_entity" yaml:"primary_entity"`
	State         string            `json:"state,omitempty" yaml:"state,omitempty"`
	Definition    ProcessDefinition `json:"definition" yaml:"definition"`

	RawDefinition string `json:"-" yaml:"-"`
}

// Entities returns the distinct entities referenced by the process stages,
// in stage order.
func (p GuidedProcess) Entities() []string {
	seen := make(map[string]struct{}, len(p.Definition.Stages))
	var out []string
	for _, st := range p.Definition.Stages {
		if st.Entity == "" {
			continue
		}
		if _, ok := seen[st.Entity]; ok {
			continue
		}
		seen[st.Entity] = struct{}{}
		out = append(out, st.Entity)
	}
	return out
}

// WebResource is a script, markup, or image file shipped in the scope.
type WebResource struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	DisplayName string `json:"display_name,omitempty" yaml:"display_name,omitempty"`
	Type        string `json:"type" yaml:"type"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Form is one form definition of an entity.
type Form struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Type        string `json:"type" yaml:"type"`
	Entity      string `json:"entity" yaml:"entity"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}
