package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sabrish/power-platform-solution-blueprint-sub000/pkg/blueprint"
)

func TestAggregateTriggersOrdering(t *testing.T) {
	triggers := []blueprint.Trigger{
		{ID: "t1", Name: "Zeta", Entity: "contact", Stage: 10, Rank: 1},
		{ID: "t2", Name: "Audit", Entity: "account", Stage: 40, Rank: 2},
		{ID: "t3", Name: "Validate", Entity: "account", Stage: 10, Rank: 5},
		{ID: "t4", Name: "Enrich", Entity: "account", Stage: 10, Rank: 1},
		{ID: "t5", Name: "beta", Entity: "account", Stage: 10, Rank: 1},
	}

	byEntity := AggregateTriggers(triggers)

	// Flat list: entity, then stage, then rank, then name.
	ids := make([]string, len(triggers))
	for i, trg := range triggers {
		ids[i] = trg.ID
	}
	assert.Equal(t, []string{"t5", "t4", "t3", "t2", "t1"}, ids)

	require.Len(t, byEntity, 2)
	require.Len(t, byEntity["account"], 4)
	assert.Equal(t, "t5", byEntity["account"][0].ID)
	assert.Equal(t, "t2", byEntity["account"][3].ID)
	require.Len(t, byEntity["contact"], 1)
}

func TestAggregateFlowsNameOrderingAndGrouping(t *testing.T) {
	flows := []blueprint.Flow{
		{ID: "f1", Name: "zeta flow", Entity: "Account"},
		{ID: "f2", Name: "Alpha Flow", Entity: "account"},
		{ID: "f3", Name: "alpha flow", Entity: "account"},
		{ID: "f4", Name: "Orphan Flow"},
	}

	byEntity := AggregateFlows(flows)

	// Case does not split alphabetical order; exact ties fall back to id.
	assert.Equal(t, "f2", flows[0].ID)
	assert.Equal(t, "f3", flows[1].ID)
	assert.Equal(t, "f4", flows[2].ID)
	assert.Equal(t, "f1", flows[3].ID)

	// Keys are lowercased; flows without an entity stay out of the index.
	require.Len(t, byEntity, 1)
	assert.Len(t, byEntity["account"], 3)
}

func TestAggregateProcessesGroupByPrimaryEntityOnly(t *testing.T) {
	processes := []blueprint.GuidedProcess{
		{
			ID:            "p1",
			Name:          "Sales Process",
			PrimaryEntity: "lead",
			Definition: blueprint.ProcessDefinition{Stages: []blueprint.ProcessStage{
				{Name: "Qualify", Entity: "lead"},
				{Name: "Close", Entity: "opportunity"},
			}},
		},
		{ID: "p2", Name: "Detached Process"},
	}

	byEntity := AggregateProcesses(processes)

	// Anchored on the primary entity even when stages span further tables.
	require.Len(t, byEntity, 1)
	assert.Len(t, byEntity["lead"], 1)
	assert.Empty(t, byEntity["opportunity"])
}

func TestAggregateFilesGroupsByType(t *testing.T) {
	files := []blueprint.WebResource{
		{ID: "r1", Name: "new_/z.js", Type: "Script (JScript)"},
		{ID: "r2", Name: "new_/a.js", Type: "Script (JScript)"},
		{ID: "r3", Name: "new_/logo.png", Type: "PNG"},
	}

	byType := AggregateFiles(files)

	require.Len(t, byType, 2)
	scripts := byType["Script (JScript)"]
	require.Len(t, scripts, 2)
	assert.Equal(t, "new_/a.js", scripts[0].Name)
	assert.Equal(t, "new_/z.js", scripts[1].Name)
	assert.Len(t, byType["PNG"], 1)
}

func TestAggregateRulesLowercasesKeys(t *testing.T) {
	rules := []blueprint.BusinessRule{
		{ID: "b1", Name: "Rule A", Entity: "Account"},
		{ID: "b2", Name: "Rule B", Entity: "ACCOUNT"},
	}

	byEntity := AggregateRules(rules)
	require.Len(t, byEntity, 1)
	assert.Len(t, byEntity["account"], 2)
}

func TestAggregateEmptyInputs(t *testing.T) {
	assert.Empty(t, AggregateTriggers(nil))
	assert.Empty(t, AggregateFlows([]blueprint.Flow{}))
	assert.Empty(t, AggregateFiles(nil))
}

func TestDisplayLess(t *testing.T) {
	// Case-insensitive first, then raw bytes, then id.
	assert.True(t, displayLess("alpha", "1", "Beta", "2"))
	assert.True(t, displayLess("Alpha", "1", "alpha", "2"))
	assert.False(t, displayLess("alpha", "1", "Alpha", "2"))
	assert.True(t, displayLess("same", "1", "same", "2"))
	assert.False(t, displayLess("same", "2", "same", "1"))
}
