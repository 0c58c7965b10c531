// Package blueprint defines the result model assembled by the generation pipeline.
package blueprint

import (
	"time"
)

// Blueprint is the immutable snapshot returned by a completed generation run.
// Map keys are lowercased entity logical names; list ordering is deterministic
// and established during cross-reference aggregation.
type Blueprint struct {
	ID          string    `json:"id" yaml:"id"`
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`
	Scope       Scope     `json:"scope" yaml:"scope"`

	Inventory ComponentInventory `json:"inventory" yaml:"inventory"`
	Workflows WorkflowInventory  `json:"workflows" yaml:"workflows"`

	Entities []*EntityBlueprint `json:"entities" yaml:"entities"`

	Triggers        []Trigger        `json:"triggers" yaml:"triggers"`
	Flows           []Flow           `json:"flows" yaml:"flows"`
	Rules           []BusinessRule   `json:"rules" yaml:"rules"`
	LegacyWorkflows []LegacyWorkflow `json:"legacy_workflows" yaml:"legacy_workflows"`
	Processes       []GuidedProcess  `json:"processes" yaml:"processes"`
	Files           []WebResource    `json:"files" yaml:"files"`

	TriggersByEntity        map[string][]Trigger        `json:"triggers_by_entity" yaml:"triggers_by_entity"`
	FlowsByEntity           map[string][]Flow           `json:"flows_by_entity" yaml:"flows_by_entity"`
	RulesByEntity           map[string][]BusinessRule   `json:"rules_by_entity" yaml:"rules_by_entity"`
	LegacyWorkflowsByEntity map[string][]LegacyWorkflow `json:"legacy_workflows_by_entity" yaml:"legacy_workflows_by_entity"`
	ProcessesByEntity       map[string][]GuidedProcess  `json:"processes_by_entity" yaml:"processes_by_entity"`
	FilesByType             map[string][]WebResource    `json:"files_by_type" yaml:"files_by_type"`

	Summary Summary `json:"summary" yaml:"summary"`
}

// Summary reports per-category counts for one run. Categories that failed
// peripherally and were substituted with an empty list are named in
// DegradedCategories.
type Summary struct {
	Entities           int      `json:"entities" yaml:"entities"`
	Attributes         int      `json:"attributes" yaml:"attributes"`
	Triggers           int      `json:"triggers" yaml:"triggers"`
	Flows              int      `json:"flows" yaml:"flows"`
	Rules              int      `json:"rules" yaml:"rules"`
	LegacyWorkflows    int      `json:"legacy_workflows" yaml:"legacy_workflows"`
	Processes          int      `json:"processes" yaml:"processes"`
	Files              int      `json:"files" yaml:"files"`
	Forms              int      `json:"forms" yaml:"forms"`
	DegradedCategories []string `json:"degraded_categories,omitempty" yaml:"degraded_categories,omitempty"`
}

// EntityBlueprint aggregates one entity's schema with the automation and
// forms attached to it. The four attachment lists are filled only after every
// category has been fetched.
type EntityBlueprint struct {
	MetadataID  string `json:"metadata_id" yaml:"metadata_id"`
	LogicalName string `json:"logical_name" yaml:"logical_name"`
	DisplayName string `json:"display_name" yaml:"display_name"`
	SchemaName  string `json:"schema_name" yaml:"schema_name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	IsCustom    bool   `json:"is_custom" yaml:"is_custom"`
	Ownership   string `json:"ownership,omitempty" yaml:"ownership,omitempty"`

	Attributes []Attribute `json:"attributes" yaml:"attributes"`

	Triggers []Trigger      `json:"triggers" yaml:"triggers"`
	Flows    []Flow         `json:"flows" yaml:"flows"`
	Rules    []BusinessRule `json:"rules" yaml:"rules"`
	Forms    []Form         `json:"forms" yaml:"forms"`
}

// Attribute is one field of an entity schema.
type Attribute struct {
	MetadataID    string `json:"metadata_id" yaml:"metadata_id"`
	LogicalName   string `json:"logical_name" yaml:"logical_name"`
	SchemaName    string `json:"schema_name,omitempty" yaml:"schema_name,omitempty"`
	DisplayName   string `json:"display_name" yaml:"display_name"`
	Type          string `json:"type" yaml:"type"`
	RequiredLevel string `json:"required_level,omitempty" yaml:"required_level,omitempty"`
	IsCustom      bool   `json:"is_custom" yaml:"is_custom"`
	Description   string `json:"description,omitempty" yaml:"description,omitempty"`
}
