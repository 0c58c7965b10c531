package blueprint

// ComponentInventory is the category-partitioned set of component ids
// discovered for a scope. It is produced once per run and never mutated
// after discovery.
type ComponentInventory struct {
	Entities             []string `json:"entities" yaml:"entities"`
	Attributes           []string `json:"attributes" yaml:"attributes"`
	PluginSteps          []string `json:"plugin_steps" yaml:"plugin_steps"`
	Workflows            []string `json:"workflows" yaml:"workflows"`
	WebResources         []string `json:"web_resources" yaml:"web_resources"`
	CustomOperations     []string `json:"custom_operations" yaml:"custom_operations"`
	EnvironmentVariables []string `json:"environment_variables" yaml:"environment_variables"`
	ConnectionReferences []string `json:"connection_references" yaml:"connection_references"`
	ChoiceSets           []string `json:"choice_sets" yaml:"choice_sets"`
	Connectors           []string `json:"connectors" yaml:"connectors"`
	Pages                []string `json:"pages" yaml:"pages"`
}

// Counts returns the number of discovered ids per category.
func (ci ComponentInventory) Counts() map[string]int {
	return map[string]int{
		"entities":              len(ci.Entities),
		"attributes":            len(ci.Attributes),
		"plugin_steps":          len(ci.PluginSteps),
		"workflows":             len(ci.Workflows),
		"web_resources":         len(ci.WebResources),
		"custom_operations":     len(ci.CustomOperations),
		"environment_variables": len(ci.EnvironmentVariables),
		"connection_references": len(ci.ConnectionReferences),
		"choice_sets":           len(ci.ChoiceSets),
		"connectors":            len(ci.Connectors),
		"pages":                 len(ci.Pages),
	}
}

// Total returns the number of discovered ids across all categories.
func (ci ComponentInventory) Total() int {
	n := 0
	for _, c := range ci.Counts() {
		n += c
	}
	return n
}

// WorkflowInventory partitions the generic workflow id set into the four
// typed automation buckets. Every generic workflow id appears in exactly
// one bucket.
type WorkflowInventory struct {
	Flows           []string `json:"flows" yaml:"flows"`
	BusinessRules   []string `json:"business_rules" yaml:"business_rules"`
	LegacyWorkflows []string `json:"legacy_workflows" yaml:"legacy_workflows"`
	GuidedProcesses []string `json:"guided_processes" yaml:"guided_processes"`
}

// Total returns the number of classified workflow ids.
func (wi WorkflowInventory) Total() int {
	return len(wi.Flows) + len(wi.BusinessRules) + len(wi.LegacyWorkflows) + len(wi.GuidedProcesses)
}
