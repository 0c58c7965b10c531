package blueprint

// ActionType enumerates the actions a declarative rule may perform.
// Unrecognized raw tokens map to ActionSetValue.
type ActionType string

const (
	ActionShowField   ActionType = "ShowField"
	ActionHideField   ActionType = "HideField"
	ActionSetValue    ActionType = "SetValue"
	ActionSetRequired ActionType = "SetRequired"
	ActionLockField   ActionType = "LockField"
	ActionUnlockField ActionType = "UnlockField"
	ActionShowError   ActionType = "ShowError"
)

// ExecutionContext tells where a declarative rule runs: purely visual rules
// run on the client, data-affecting rules on the server, mixed rules on both.
type ExecutionContext string

const (
	ContextClient ExecutionContext = "Client"
	ContextServer ExecutionContext = "Server"
	ContextBoth   ExecutionContext = "Both"
)

// RuleCondition is one decoded condition clause. Connective is the logical
// operator joining the clause to its predecessor ("AND" or "OR"); it is empty
// on the first clause.
type RuleCondition struct {
	Field      string `json:"field" yaml:"field"`
	Operator   string `json:"operator" yaml:"operator"`
	Value      string `json:"value" yaml:"value"`
	Connective string `json:"connective,omitempty" yaml:"connective,omitempty"`
}

// RuleAction is one decoded action clause.
type RuleAction struct {
	Type  ActionType `json:"type" yaml:"type"`
	Field string     `json:"field,omitempty" yaml:"field,omitempty"`
	Value string     `json:"value,omitempty" yaml:"value,omitempty"`
}

// RuleDefinition is the structured form of a declarative rule's embedded
// markup. A populated ParseError flags degraded decoding confidence; it never
// invalidates the fields that were decoded.
type RuleDefinition struct {
	Conditions       []RuleCondition  `json:"conditions" yaml:"conditions"`
	Actions          []RuleAction     `json:"actions" yaml:"actions"`
	ExecutionContext ExecutionContext `json:"execution_context" yaml:"execution_context"`
	ConditionLogic   string           `json:"condition_logic" yaml:"condition_logic"`
	ParseError       string           `json:"parse_error,omitempty" yaml:"parse_error,omitempty"`
}

// ProcessStage is one stage of a guided multi-stage process.
type ProcessStage struct {
	Name   string   `json:"name" yaml:"name"`
	Entity string   `json:"entity,omitempty" yaml:"entity,omitempty"`
	Steps  []string `json:"steps,omitempty" yaml:"steps,omitempty"`
}

// ProcessDefinition is the structured form of a guided process's embedded
// markup.
type ProcessDefinition struct {
	Stages     []ProcessStage `json:"stages" yaml:"stages"`
	ParseError string         `json:"parse_error,omitempty" yaml:"parse_error,omitempty"`
}

// FlowTrigger is the decoded trigger metadata of a modern flow.
type FlowTrigger struct {
	Kind    string `json:"kind,omitempty" yaml:"kind,omitempty"`
	Entity  string `json:"entity,omitempty" yaml:"entity,omitempty"`
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
}
