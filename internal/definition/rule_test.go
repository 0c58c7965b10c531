package definition

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sabrish/power-platform-solution-blueprint-sub000/pkg/blueprint"
)

func TestParseRuleEmptyMarkup(t *testing.T) {
	for _, markup := range []string{"", "   ", "\n\t"} {
		def := ParseRule(markup)
		assert.Empty(t, def.Conditions)
		assert.Empty(t, def.Actions)
		assert.Equal(t, blueprint.ContextClient, def.ExecutionContext)
		assert.Equal(t, "No conditions defined", def.ConditionLogic)
		assert.Empty(t, def.ParseError)
	}
}

func TestParseRuleSingleCondition(t *testing.T) {
	markup := `<mxsw:Workflow>
		<mxsw:Condition Field="revenue" Operator="gt" Value="1000" />
	</mxsw:Workflow>`

	def := ParseRule(markup)
	assert.Equal(t, "IF revenue greater than '1000'", def.ConditionLogic)
	assert.Len(t, def.Conditions, 1)
	assert.Equal(t, "revenue", def.Conditions[0].Field)
	assert.Equal(t, "greater than", def.Conditions[0].Operator)
	assert.Equal(t, "1000", def.Conditions[0].Value)
	assert.Empty(t, def.Conditions[0].Connective)
}

func TestParseRuleConnectives(t *testing.T) {
	markup := `<mxsw:Workflow>
		<mxsw:Condition Field="status" Operator="eq" Value="active" />
		<mxsw:LogicalGroup Operator="Or">
			<mxsw:Condition Field="priority" Operator="eq" Value="high" />
		</mxsw:LogicalGroup>
	</mxsw:Workflow>`

	def := ParseRule(markup)
	assert.Len(t, def.Conditions, 2)
	assert.Equal(t, "OR", def.Conditions[1].Connective)
	assert.Equal(t, "IF status equals 'active' OR priority equals 'high'", def.ConditionLogic)

	// No enclosing group joins conjunctively.
	markup = `<mxsw:Condition Field="a" Operator="eq" Value="1" />
		<mxsw:Condition Field="b" Operator="eq" Value="2" />`
	def = ParseRule(markup)
	assert.Len(t, def.Conditions, 2)
	assert.Equal(t, "AND", def.Conditions[1].Connective)
	assert.Equal(t, "IF a equals '1' AND b equals '2'", def.ConditionLogic)

	// An explicit conjunction group stays conjunctive.
	markup = `<mxsw:Condition Field="a" Operator="eq" Value="1" />
		<mxsw:LogicalGroup Operator="And">
			<mxsw:Condition Field="b" Operator="eq" Value="2" />
		</mxsw:LogicalGroup>`
	def = ParseRule(markup)
	assert.Equal(t, "AND", def.Conditions[1].Connective)
}

func TestParseRuleOperatorTable(t *testing.T) {
	markup := `<mxsw:Condition Field="f" Operator="custom-op" Value="v" />`
	def := ParseRule(markup)
	// Tokens absent from the display table pass through unchanged.
	assert.Equal(t, "custom-op", def.Conditions[0].Operator)
	assert.Equal(t, "IF f custom-op 'v'", def.ConditionLogic)
}

func TestParseRuleExecutionContext(t *testing.T) {
	cases := []struct {
		name    string
		actions string
		want    blueprint.ExecutionContext
	}{
		{"visual only", `<mxsw:Action Type="hide" Field="a" /><mxsw:Action Type="lock" Field="b" />`, blueprint.ContextClient},
		{"data only", `<mxsw:Action Type="setvalue" Field="a" Value="1" />`, blueprint.ContextServer},
		{"mixed", `<mxsw:Action Type="hide" Field="a" /><mxsw:Action Type="setvalue" Field="b" Value="1" />`, blueprint.ContextBoth},
		{"no actions", ``, blueprint.ContextClient},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			def := ParseRule(`<mxsw:Workflow><mxsw:Condition Field="f" Operator="eq" Value="v" />` + tc.actions + `</mxsw:Workflow>`)
			assert.Equal(t, tc.want, def.ExecutionContext)
		})
	}
}

func TestParseRuleUnknownActionFallsBackToSetValue(t *testing.T) {
	markup := `<mxsw:Action Type="teleport" Field="a" Value="1" />`
	def := ParseRule(markup)
	assert.Len(t, def.Actions, 1)
	assert.Equal(t, blueprint.ActionSetValue, def.Actions[0].Type)
}

func TestParseRuleActionTokens(t *testing.T) {
	markup := `<mxsw:Action Type="show" Field="a" />
		<mxsw:Action Type="HIDE" Field="b" />
		<mxsw:Action Type="setrequired" Field="c" />
		<mxsw:Action Type="unlock" Field="d" />
		<mxsw:Action Type="showerror" Field="e" Value="bad" />`
	def := ParseRule(markup)
	assert.Len(t, def.Actions, 5)
	assert.Equal(t, blueprint.ActionShowField, def.Actions[0].Type)
	assert.Equal(t, blueprint.ActionHideField, def.Actions[1].Type)
	assert.Equal(t, blueprint.ActionSetRequired, def.Actions[2].Type)
	assert.Equal(t, blueprint.ActionUnlockField, def.Actions[3].Type)
	assert.Equal(t, blueprint.ActionShowError, def.Actions[4].Type)
	assert.Equal(t, "bad", def.Actions[4].Value)
}

func TestParseRuleNoConditionMatches(t *testing.T) {
	def := ParseRule(`<mxsw:Workflow><mxsw:Metadata /></mxsw:Workflow>`)
	assert.Empty(t, def.Conditions)
	assert.Equal(t, "No conditions defined", def.ConditionLogic)
	assert.Empty(t, def.ParseError)
}

func TestParseRuleLargeMarkupStaysContained(t *testing.T) {
	// A pathological blob must never panic out of the parser.
	markup := strings.Repeat(`<mxsw:Condition Field="f" Operator="eq" Value="v" />`, 500)
	def := ParseRule(markup)
	assert.Len(t, def.Conditions, 500)
	assert.Empty(t, def.ParseError)
}
