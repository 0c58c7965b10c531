package blueprint

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScopeValidate(t *testing.T) {
	valid := Scope{Kind: ScopeKindPublisher, PublisherPrefix: "acme"}
	assert.NoError(t, valid.Validate())

	valid = Scope{Kind: ScopeKindSolutions, SolutionIDs: []string{"a1b2"}}
	assert.NoError(t, valid.Validate())

	assert.Error(t, Scope{Kind: ScopeKindPublisher}.Validate())
	assert.Error(t, Scope{Kind: ScopeKindPublisher, PublisherPrefix: "   "}.Validate())
	assert.Error(t, Scope{Kind: ScopeKindSolutions}.Validate())
	assert.Error(t, Scope{Kind: ScopeKindSolutions, SolutionIDs: []string{"a1b2", " "}}.Validate())
	assert.Error(t, Scope{Kind: "environment"}.Validate())
	assert.Error(t, Scope{}.Validate())
}

func TestTriggerStageAndModeNames(t *testing.T) {
	assert.Equal(t, "Pre-validation", Trigger{Stage: StagePreValidation}.StageName())
	assert.Equal(t, "Pre-operation", Trigger{Stage: StagePreOperation}.StageName())
	assert.Equal(t, "Post-operation", Trigger{Stage: StagePostOperation}.StageName())
	assert.Equal(t, "Unknown", Trigger{Stage: 30}.StageName())

	assert.Equal(t, "Synchronous", Trigger{Mode: 0}.ModeName())
	assert.Equal(t, "Asynchronous", Trigger{Mode: 1}.ModeName())
}

func TestGuidedProcessEntities(t *testing.T) {
	p := GuidedProcess{
		Definition: ProcessDefinition{
			Stages: []ProcessStage{
				{Name: "Qualify", Entity: "lead"},
				{Name: "Develop", Entity: "opportunity"},
				{Name: "Review", Entity: ""},
				{Name: "Close", Entity: "opportunity"},
			},
		},
	}
	assert.Equal(t, []string{"lead", "opportunity"}, p.Entities())
}

func TestInventoryCounts(t *testing.T) {
	ci := ComponentInventory{
		Entities:    []string{"e1", "e2"},
		Attributes:  []string{"a1"},
		PluginSteps: []string{"s1", "s2", "s3"},
	}
	counts := ci.Counts()
	assert.Equal(t, 2, counts["entities"])
	assert.Equal(t, 1, counts["attributes"])
	assert.Equal(t, 3, counts["plugin_steps"])
	assert.Equal(t, 0, counts["pages"])
	assert.Equal(t, 6, ci.Total())

	wi := WorkflowInventory{
		Flows:           []string{"f1"},
		BusinessRules:   []string{"b1", "b2"},
		GuidedProcesses: []string{"g1"},
	}
	assert.Equal(t, 4, wi.Total())
}
