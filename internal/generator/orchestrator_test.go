package generator

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sabrish/power-platform-solution-blueprint-sub000/internal/dataverse"
	"github.com/sabrish/power-platform-solution-blueprint-sub000/pkg/blueprint"
)

// NoOpLogger for testing
type NoOpLogger struct{}

func (l *NoOpLogger) Debug(msg string, args ...any) {}
func (l *NoOpLogger) Info(msg string, args ...any)  {}
func (l *NoOpLogger) Warn(msg string, args ...any)  {}
func (l *NoOpLogger) Error(msg string, args ...any) {}

// MockMetadataClient satisfies dataverse.MetadataClient
type MockMetadataClient struct {
	mock.Mock
}

func (m *MockMetadataClient) DiscoverInventory(ctx context.Context, scope blueprint.Scope) (*blueprint.ComponentInventory, error) {
	args := m.Called(ctx, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*blueprint.ComponentInventory), args.Error(1)
}

func (m *MockMetadataClient) ListWorkflowKinds(ctx context.Context, ids []string) ([]dataverse.WorkflowKind, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dataverse.WorkflowKind), args.Error(1)
}

func (m *MockMetadataClient) ListEntities(ctx context.Context, ids []string) ([]*blueprint.EntityBlueprint, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*blueprint.EntityBlueprint), args.Error(1)
}

func (m *MockMetadataClient) GetEntitySchema(ctx context.Context, logicalName string) (*blueprint.EntityBlueprint, error) {
	args := m.Called(ctx, logicalName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*blueprint.EntityBlueprint), args.Error(1)
}

func (m *MockMetadataClient) ListPluginSteps(ctx context.Context, ids []string) ([]blueprint.Trigger, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]blueprint.Trigger), args.Error(1)
}

func (m *MockMetadataClient) ListFlows(ctx context.Context, ids []string) ([]blueprint.Flow, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]blueprint.Flow), args.Error(1)
}

func (m *MockMetadataClient) ListBusinessRules(ctx context.Context, ids []string) ([]blueprint.BusinessRule, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]blueprint.BusinessRule), args.Error(1)
}

func (m *MockMetadataClient) ListLegacyWorkflows(ctx context.Context, ids []string) ([]blueprint.LegacyWorkflow, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]blueprint.LegacyWorkflow), args.Error(1)
}

func (m *MockMetadataClient) ListGuidedProcesses(ctx context.Context, ids []string) ([]blueprint.GuidedProcess, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]blueprint.GuidedProcess), args.Error(1)
}

func (m *MockMetadataClient) ListWebResources(ctx context.Context, ids []string) ([]blueprint.WebResource, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]blueprint.WebResource), args.Error(1)
}

func (m *MockMetadataClient) ListEntityForms(ctx context.Context, logicalName string) ([]blueprint.Form, error) {
	args := m.Called(ctx, logicalName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]blueprint.Form), args.Error(1)
}

func (m *MockMetadataClient) ListSolutions(ctx context.Context) ([]dataverse.Solution, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dataverse.Solution), args.Error(1)
}

const notifyFlowClientData = `{
	"properties": {
		"definition": {
			"triggers": {
				"When_a_record_is_updated": {
					"type": "OpenApiConnectionWebhook",
					"inputs": {
						"parameters": {
							"subscriptionRequest/entityname": "Account",
							"subscriptionRequest/message": 3
						}
					}
				}
			}
		}
	}
}`

const requirePhoneRuleMarkup = `<mxsw:Workflow>
	<mxsw:Condition Field="telephone1" Operator="null" Value="" />
	<mxsw:Action Type="SetRequired" Field="telephone1" />
</mxsw:Workflow>`

const onboardingProcessMarkup = `<mxsw:Process>
	<mxsw:Stage Name="Intake" Entity="new_gadget">
		<mxsw:Step Name="Record Serial" />
	</mxsw:Stage>
	<mxsw:Stage Name="Review" Entity="new_gadget" />
</mxsw:Process>`

// fixtureInventory is the discovery result shared by the pipeline tests.
func fixtureInventory() *blueprint.ComponentInventory {
	return &blueprint.ComponentInventory{
		Entities:     []string{"E-ACC", "E-GAD"},
		Attributes:   []string{"{A1B2}", "C3-D4"},
		PluginSteps:  []string{"S1", "S2", "S3"},
		Workflows:    []string{"W1", "W2", "W3", "W4"},
		WebResources: []string{"R1", "R2"},
	}
}

func fixtureKinds() []dataverse.WorkflowKind {
	return []dataverse.WorkflowKind{
		{ID: "W1", Category: dataverse.CategoryModernFlow},
		{ID: "W2", Category: dataverse.CategoryBusinessRule},
		{ID: "W3", Category: dataverse.CategoryLegacyWorkflow},
		{ID: "W4", Category: dataverse.CategoryGuidedProcess},
	}
}

func fixtureAccountSchema() *blueprint.EntityBlueprint {
	return &blueprint.EntityBlueprint{
		MetadataID:  "E-ACC",
		LogicalName: "account",
		DisplayName: "Account",
		IsCustom:    false,
		Attributes: []blueprint.Attribute{
			// In the solution's attribute set after id normalization.
			{MetadataID: "{A1-B2}", LogicalName: "name", DisplayName: "Account Name", Type: "String"},
			// Shipped by the solution but dropped by the system-field pass.
			{MetadataID: "c3d4", LogicalName: "createdon", DisplayName: "Created On", Type: "DateTime"},
			// Not shipped by the solution.
			{MetadataID: "ZZZ", LogicalName: "industrycode", DisplayName: "Industry", Type: "Picklist"},
		},
	}
}

func fixtureGadgetSchema() *blueprint.EntityBlueprint {
	return &blueprint.EntityBlueprint{
		MetadataID:  "E-GAD",
		LogicalName: "new_gadget",
		DisplayName: "Gadget",
		IsCustom:    true,
		Attributes: []blueprint.Attribute{
			{MetadataID: "P1", LogicalName: "new_price", DisplayName: "Price", Type: "Money"},
			{MetadataID: "P2", LogicalName: "createdon", DisplayName: "Created On", Type: "DateTime"},
			{MetadataID: "P3", LogicalName: "new_name", DisplayName: "Name", Type: "String"},
		},
	}
}

// newHappyClient wires a mock that satisfies every phase of a full run over
// one system entity (account) and one custom entity (new_gadget).
func newHappyClient() *MockMetadataClient {
	client := new(MockMetadataClient)
	client.On("DiscoverInventory", mock.Anything, mock.Anything).Return(fixtureInventory(), nil)
	client.On("ListWorkflowKinds", mock.Anything, []string{"W1", "W2", "W3", "W4"}).Return(fixtureKinds(), nil)
	// Returned unsorted to prove the pipeline orders entities itself.
	client.On("ListEntities", mock.Anything, []string{"E-ACC", "E-GAD"}).Return([]*blueprint.EntityBlueprint{
		{MetadataID: "E-GAD", LogicalName: "new_gadget", IsCustom: true},
		{MetadataID: "E-ACC", LogicalName: "account", IsCustom: false},
	}, nil)
	client.On("GetEntitySchema", mock.Anything, "account").Return(fixtureAccountSchema(), nil)
	client.On("GetEntitySchema", mock.Anything, "new_gadget").Return(fixtureGadgetSchema(), nil)
	// Returned out of order to prove stage/rank sorting.
	client.On("ListPluginSteps", mock.Anything, []string{"S1", "S2", "S3"}).Return([]blueprint.Trigger{
		{ID: "S1", Name: "Audit Account", Message: "Update", Entity: "account", Stage: 40, Rank: 2},
		{ID: "S2", Name: "Validate Account", Message: "Create", Entity: "account", Stage: 10, Rank: 5},
		{ID: "S3", Name: "Enrich Account", Message: "Create", Entity: "account", Stage: 10, Rank: 1},
	}, nil)
	client.On("ListFlows", mock.Anything, []string{"W1"}).Return([]blueprint.Flow{
		{ID: "W1", Name: "Notify Team", State: "Activated", RawClientData: notifyFlowClientData},
	}, nil)
	client.On("ListBusinessRules", mock.Anything, []string{"W2"}).Return([]blueprint.BusinessRule{
		{ID: "W2", Name: "Require Phone", Entity: "account", RawDefinition: requirePhoneRuleMarkup},
	}, nil)
	client.On("ListLegacyWorkflows", mock.Anything, []string{"W3"}).Return([]blueprint.LegacyWorkflow{
		{ID: "W3", Name: "Old Escalation", Entity: "account", OnDemand: true},
	}, nil)
	client.On("ListGuidedProcesses", mock.Anything, []string{"W4"}).Return([]blueprint.GuidedProcess{
		{ID: "W4", Name: "Gadget Onboarding", PrimaryEntity: "new_gadget", RawDefinition: onboardingProcessMarkup},
	}, nil)
	client.On("ListWebResources", mock.Anything, []string{"R1", "R2"}).Return([]blueprint.WebResource{
		{ID: "R1", Name: "new_/scripts/account.js", Type: "Script (JScript)"},
		{ID: "R2", Name: "new_/img/logo.png", Type: "PNG"},
	}, nil)
	client.On("ListEntityForms", mock.Anything, "account").Return([]blueprint.Form{
		{ID: "F1", Name: "Account Main", Type: "Main", Entity: "account"},
	}, nil)
	client.On("ListEntityForms", mock.Anything, "new_gadget").Return([]blueprint.Form{}, nil)
	return client
}

func publisherScope() blueprint.Scope {
	return blueprint.Scope{
		Kind:                  blueprint.ScopeKindPublisher,
		PublisherPrefix:       "new",
		IncludeSystemEntities: true,
		ExcludeSystemFields:   true,
	}
}

func TestGenerateHappyPath(t *testing.T) {
	// 1. Setup mock client and progress capture
	client := newHappyClient()
	var progress []blueprint.Progress
	gen := New(client, &NoOpLogger{}, Options{
		OnProgress: func(p blueprint.Progress) { progress = append(progress, p) },
	})

	// 2. Run the pipeline
	bp, err := gen.Generate(context.Background(), publisherScope())
	require.NoError(t, err)
	require.NotNil(t, bp)

	// 3. Identity and scope travel on the result
	assert.NotEmpty(t, bp.ID)
	assert.False(t, bp.GeneratedAt.IsZero())
	assert.Equal(t, "new", bp.Scope.PublisherPrefix)

	// 4. Workflow ids were partitioned into their typed buckets
	assert.Equal(t, []string{"W1"}, bp.Workflows.Flows)
	assert.Equal(t, []string{"W2"}, bp.Workflows.BusinessRules)
	assert.Equal(t, []string{"W3"}, bp.Workflows.LegacyWorkflows)
	assert.Equal(t, []string{"W4"}, bp.Workflows.GuidedProcesses)

	// 5. Entities come back sorted with filtered attribute lists
	require.Len(t, bp.Entities, 2)
	account, gadget := bp.Entities[0], bp.Entities[1]
	assert.Equal(t, "account", account.LogicalName)
	assert.Equal(t, "new_gadget", gadget.LogicalName)
	require.Len(t, account.Attributes, 1)
	assert.Equal(t, "name", account.Attributes[0].LogicalName)
	require.Len(t, gadget.Attributes, 2)
	assert.Equal(t, "new_price", gadget.Attributes[0].LogicalName)
	assert.Equal(t, "new_name", gadget.Attributes[1].LogicalName)

	// 6. Triggers are ordered by stage then rank
	require.Len(t, bp.Triggers, 3)
	assert.Equal(t, []string{"S3", "S2", "S1"}, []string{bp.Triggers[0].ID, bp.Triggers[1].ID, bp.Triggers[2].ID})
	assert.Equal(t, bp.Triggers, bp.TriggersByEntity["account"])
	assert.Equal(t, bp.Triggers, account.Triggers)

	// 7. The flow got its entity binding from its client data
	require.Len(t, bp.Flows, 1)
	assert.Equal(t, "account", bp.Flows[0].Entity)
	assert.Equal(t, "OpenApiConnectionWebhook", bp.Flows[0].TriggerKind)
	assert.Equal(t, "Update", bp.Flows[0].TriggerMessage)
	assert.Equal(t, bp.Flows, account.Flows)

	// 8. The rule definition was decoded and attached
	require.Len(t, bp.Rules, 1)
	assert.Empty(t, bp.Rules[0].Definition.ParseError)
	require.Len(t, bp.Rules[0].Definition.Conditions, 1)
	assert.Equal(t, "telephone1", bp.Rules[0].Definition.Conditions[0].Field)
	require.Len(t, bp.Rules[0].Definition.Actions, 1)
	assert.Equal(t, blueprint.ActionSetRequired, bp.Rules[0].Definition.Actions[0].Type)
	assert.Equal(t, bp.Rules, account.Rules)

	// 9. Peripheral categories landed in the flat lists and their indexes
	require.Len(t, bp.LegacyWorkflows, 1)
	assert.Equal(t, "Old Escalation", bp.LegacyWorkflows[0].Name)
	require.Len(t, bp.Processes, 1)
	require.Len(t, bp.Processes[0].Definition.Stages, 2)
	assert.Equal(t, "Intake", bp.Processes[0].Definition.Stages[0].Name)
	assert.Len(t, bp.ProcessesByEntity["new_gadget"], 1)
	assert.Len(t, bp.FilesByType, 2)
	assert.Len(t, bp.FilesByType["PNG"], 1)
	require.Len(t, account.Forms, 1)
	assert.Empty(t, gadget.Forms)

	// 10. Summary counts every category, nothing degraded
	assert.Equal(t, 2, bp.Summary.Entities)
	assert.Equal(t, 3, bp.Summary.Attributes)
	assert.Equal(t, 3, bp.Summary.Triggers)
	assert.Equal(t, 1, bp.Summary.Flows)
	assert.Equal(t, 1, bp.Summary.Rules)
	assert.Equal(t, 1, bp.Summary.LegacyWorkflows)
	assert.Equal(t, 1, bp.Summary.Processes)
	assert.Equal(t, 2, bp.Summary.Files)
	assert.Equal(t, 1, bp.Summary.Forms)
	assert.Empty(t, bp.Summary.DegradedCategories)

	// 11. Progress ran the phases in pipeline order and named each entity
	require.NotEmpty(t, progress)
	assert.Equal(t, blueprint.PhaseDiscovering, progress[0].Phase)
	assert.Equal(t, blueprint.PhaseComplete, progress[len(progress)-1].Phase)
	assertPhaseOrder(t, progress)
	var milestones []blueprint.Progress
	for _, p := range progress {
		if p.Phase == blueprint.PhaseSchema && p.EntityName != "" {
			milestones = append(milestones, p)
		}
	}
	require.Len(t, milestones, 2)
	assert.Equal(t, "account", milestones[0].EntityName)
	assert.Equal(t, 1, milestones[0].Current)
	assert.Equal(t, 2, milestones[0].Total)
	assert.Equal(t, "new_gadget", milestones[1].EntityName)
	assert.Equal(t, 2, milestones[1].Current)

	client.AssertExpectations(t)
}

// assertPhaseOrder verifies the snapshots never step backwards through the
// pipeline's phase sequence.
func assertPhaseOrder(t *testing.T, progress []blueprint.Progress) {
	t.Helper()
	order := map[blueprint.Phase]int{
		blueprint.PhaseDiscovering:     0,
		blueprint.PhaseSchema:          1,
		blueprint.PhaseTriggers:        2,
		blueprint.PhaseFlows:           3,
		blueprint.PhaseRules:           4,
		blueprint.PhaseLegacyWorkflows: 5,
		blueprint.PhaseProcesses:       6,
		blueprint.PhaseFiles:           7,
		blueprint.PhaseForms:           8,
		blueprint.PhaseComplete:        9,
	}
	last := -1
	for _, p := range progress {
		rank, ok := order[p.Phase]
		require.True(t, ok, "unknown phase %q", p.Phase)
		assert.GreaterOrEqual(t, rank, last, "phase %q arrived after a later phase", p.Phase)
		if rank > last {
			last = rank
		}
	}
}

func TestGenerateInvalidScope(t *testing.T) {
	// No expectations registered: validation must fail before any client call.
	client := new(MockMetadataClient)
	gen := New(client, &NoOpLogger{}, Options{})

	bp, err := gen.Generate(context.Background(), blueprint.Scope{Kind: blueprint.ScopeKindPublisher})
	require.Error(t, err)
	assert.Nil(t, bp)
	assert.Contains(t, err.Error(), "publisher prefix")
	// Configuration errors are not run failures.
	assert.NotContains(t, err.Error(), "generation failed")
	client.AssertExpectations(t)
}

func TestGenerateSkipsSystemEntities(t *testing.T) {
	client := newHappyClient()
	gen := New(client, &NoOpLogger{}, Options{})

	scope := publisherScope()
	scope.IncludeSystemEntities = false
	bp, err := gen.Generate(context.Background(), scope)
	require.NoError(t, err)

	require.Len(t, bp.Entities, 1)
	assert.Equal(t, "new_gadget", bp.Entities[0].LogicalName)
	client.AssertNotCalled(t, "GetEntitySchema", mock.Anything, "account")
	client.AssertNotCalled(t, "ListEntityForms", mock.Anything, "account")

	// Account automation still documents in the flat lists even though the
	// entity's schema was skipped.
	assert.Len(t, bp.Triggers, 3)
	assert.Len(t, bp.TriggersByEntity["account"], 3)
}

func TestGenerateCoreFailureAborts(t *testing.T) {
	// The trigger fetch is core: its failure must abort the run.
	client := new(MockMetadataClient)
	client.On("DiscoverInventory", mock.Anything, mock.Anything).Return(fixtureInventory(), nil)
	client.On("ListWorkflowKinds", mock.Anything, mock.Anything).Return(fixtureKinds(), nil)
	client.On("ListEntities", mock.Anything, mock.Anything).Return([]*blueprint.EntityBlueprint{
		{MetadataID: "E-GAD", LogicalName: "new_gadget", IsCustom: true},
	}, nil)
	client.On("GetEntitySchema", mock.Anything, "new_gadget").Return(fixtureGadgetSchema(), nil)
	client.On("ListPluginSteps", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("service unavailable"))
	gen := New(client, &NoOpLogger{}, Options{})

	bp, err := gen.Generate(context.Background(), publisherScope())
	require.Error(t, err)
	assert.Nil(t, bp)
	assert.Contains(t, err.Error(), "generation failed")
	assert.Contains(t, err.Error(), "triggers")
	assert.Contains(t, err.Error(), "service unavailable")
	// The run aborted before the flow phase.
	client.AssertNotCalled(t, "ListFlows", mock.Anything, mock.Anything)
}

func TestGeneratePeripheralFailureDegrades(t *testing.T) {
	// 1. Core categories succeed, every peripheral category fails
	client := new(MockMetadataClient)
	client.On("DiscoverInventory", mock.Anything, mock.Anything).Return(fixtureInventory(), nil)
	client.On("ListWorkflowKinds", mock.Anything, mock.Anything).Return(fixtureKinds(), nil)
	client.On("ListEntities", mock.Anything, mock.Anything).Return([]*blueprint.EntityBlueprint{
		{MetadataID: "E-ACC", LogicalName: "account", IsCustom: false},
	}, nil)
	client.On("GetEntitySchema", mock.Anything, "account").Return(fixtureAccountSchema(), nil)
	client.On("ListPluginSteps", mock.Anything, mock.Anything).Return([]blueprint.Trigger{
		{ID: "S1", Name: "Audit Account", Entity: "account", Stage: 40, Rank: 1},
	}, nil)
	client.On("ListFlows", mock.Anything, mock.Anything).Return([]blueprint.Flow{
		{ID: "W1", Name: "Notify Team"},
	}, nil)
	client.On("ListBusinessRules", mock.Anything, mock.Anything).Return([]blueprint.BusinessRule{
		{ID: "W2", Name: "Require Phone", Entity: "account"},
	}, nil)
	client.On("ListLegacyWorkflows", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("timeout"))
	client.On("ListGuidedProcesses", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("timeout"))
	client.On("ListWebResources", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("timeout"))
	client.On("ListEntityForms", mock.Anything, "account").Return(nil, fmt.Errorf("timeout"))
	gen := New(client, &NoOpLogger{}, Options{})

	// 2. The run still completes
	bp, err := gen.Generate(context.Background(), publisherScope())
	require.NoError(t, err)
	require.NotNil(t, bp)

	// 3. Core results are present, failed categories are empty but non-nil
	assert.Len(t, bp.Triggers, 1)
	assert.Len(t, bp.Flows, 1)
	assert.Len(t, bp.Rules, 1)
	assert.NotNil(t, bp.LegacyWorkflows)
	assert.Empty(t, bp.LegacyWorkflows)
	assert.NotNil(t, bp.Processes)
	assert.Empty(t, bp.Processes)
	assert.NotNil(t, bp.Files)
	assert.Empty(t, bp.Files)
	assert.Empty(t, bp.Entities[0].Forms)

	// 4. Every degraded category is named once in the summary
	assert.ElementsMatch(t,
		[]string{"legacy workflows", "guided processes", "files", "forms"},
		bp.Summary.DegradedCategories)
	client.AssertExpectations(t)
}

func TestGenerateCancellationMidSchema(t *testing.T) {
	// 1. Five custom entities so the schema phase has room to abort
	ids := []string{"E1", "E2", "E3", "E4", "E5"}
	stubs := make([]*blueprint.EntityBlueprint, len(ids))
	for i, id := range ids {
		stubs[i] = &blueprint.EntityBlueprint{
			MetadataID:  id,
			LogicalName: fmt.Sprintf("new_thing%d", i+1),
			IsCustom:    true,
		}
	}
	client := new(MockMetadataClient)
	client.On("DiscoverInventory", mock.Anything, mock.Anything).Return(&blueprint.ComponentInventory{Entities: ids}, nil)
	client.On("ListWorkflowKinds", mock.Anything, mock.Anything).Return([]dataverse.WorkflowKind{}, nil)
	client.On("ListEntities", mock.Anything, mock.Anything).Return(stubs, nil)
	for i := range ids {
		name := fmt.Sprintf("new_thing%d", i+1)
		client.On("GetEntitySchema", mock.Anything, name).Return(&blueprint.EntityBlueprint{
			MetadataID:  ids[i],
			LogicalName: name,
			IsCustom:    true,
			Attributes:  []blueprint.Attribute{},
		}, nil)
	}

	// 2. Cancel from the progress callback at the second entity milestone
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	gen := New(client, &NoOpLogger{}, Options{
		OnProgress: func(p blueprint.Progress) {
			if p.Phase == blueprint.PhaseSchema && p.Current == 2 && p.EntityName != "" {
				cancel()
			}
		},
	})

	// 3. The run fails with the context's cancellation cause intact
	bp, err := gen.Generate(ctx, publisherScope())
	require.Error(t, err)
	assert.Nil(t, bp)
	assert.True(t, errors.Is(err, context.Canceled), "cancellation must survive wrapping, got: %v", err)
	assert.Contains(t, err.Error(), "generation failed")

	// 4. The in-flight entity finished, nothing further was fetched
	client.AssertNumberOfCalls(t, "GetEntitySchema", 2)
	client.AssertNotCalled(t, "ListPluginSteps", mock.Anything, mock.Anything)
}

func TestGenerateCancellationInPeripheralPhaseIsFatal(t *testing.T) {
	// A cancelled context surfacing through a peripheral fetch must abort the
	// run rather than degrade the category.
	client := new(MockMetadataClient)
	client.On("DiscoverInventory", mock.Anything, mock.Anything).Return(fixtureInventory(), nil)
	client.On("ListWorkflowKinds", mock.Anything, mock.Anything).Return(fixtureKinds(), nil)
	client.On("ListEntities", mock.Anything, mock.Anything).Return([]*blueprint.EntityBlueprint{}, nil)
	client.On("ListPluginSteps", mock.Anything, mock.Anything).Return([]blueprint.Trigger{}, nil)
	client.On("ListFlows", mock.Anything, mock.Anything).Return([]blueprint.Flow{}, nil)
	client.On("ListBusinessRules", mock.Anything, mock.Anything).Return([]blueprint.BusinessRule{}, nil)
	client.On("ListLegacyWorkflows", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("fetch aborted: %w", context.Canceled))
	gen := New(client, &NoOpLogger{}, Options{})

	bp, err := gen.Generate(context.Background(), publisherScope())
	require.Error(t, err)
	assert.Nil(t, bp)
	assert.True(t, errors.Is(err, context.Canceled))
	client.AssertNotCalled(t, "ListGuidedProcesses", mock.Anything, mock.Anything)
}

func TestGenerateSchemaFailureNamesEntity(t *testing.T) {
	client := new(MockMetadataClient)
	client.On("DiscoverInventory", mock.Anything, mock.Anything).Return(&blueprint.ComponentInventory{Entities: []string{"E1"}}, nil)
	client.On("ListWorkflowKinds", mock.Anything, mock.Anything).Return([]dataverse.WorkflowKind{}, nil)
	client.On("ListEntities", mock.Anything, mock.Anything).Return([]*blueprint.EntityBlueprint{
		{MetadataID: "E1", LogicalName: "new_widget", IsCustom: true},
	}, nil)
	client.On("GetEntitySchema", mock.Anything, "new_widget").Return(nil, fmt.Errorf("metadata query rejected"))
	gen := New(client, &NoOpLogger{}, Options{})

	bp, err := gen.Generate(context.Background(), publisherScope())
	require.Error(t, err)
	assert.Nil(t, bp)
	assert.Contains(t, err.Error(), "new_widget")
	assert.Contains(t, err.Error(), "metadata query rejected")
}
