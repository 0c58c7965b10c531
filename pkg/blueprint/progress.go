package blueprint

// Phase identifies one step of the generation pipeline. Phases always run in
// the order the constants are declared in.
type Phase string

const (
	PhaseDiscovering     Phase = "discovering"
	PhaseSchema          Phase = "schema"
	PhaseTriggers        Phase = "triggers"
	PhaseFlows           Phase = "flows"
	PhaseRules           Phase = "rules"
	PhaseLegacyWorkflows Phase = "legacy-workflows"
	PhaseProcesses       Phase = "processes"
	PhaseFiles           Phase = "files"
	PhaseForms           Phase = "forms"
	PhaseComplete        Phase = "complete"
)

// Progress is a point-in-time snapshot emitted on every observable pipeline
// step. Consumers must copy what they need; a snapshot is not a subscription
// to further state.
type Progress struct {
	Phase      Phase  `json:"phase"`
	Current    int    `json:"current"`
	Total      int    `json:"total"`
	EntityName string `json:"entity_name,omitempty"`
	Message    string `json:"message"`
}

// ProgressFunc receives Progress snapshots. Callbacks are invoked
// synchronously; implementations must not block.
type ProgressFunc func(Progress)
