// Package dataverse is the read-only boundary to the platform's metadata
// surface. The generation pipeline consumes the MetadataClient interface
// only; the bundled implementation speaks the environment's OData Web API.
package dataverse

import (
	"context"

	"github.com/sabrish/power-platform-solution-blueprint-sub000/pkg/blueprint"
)

// WorkflowCategory is the discriminator code carried on generic workflow
// records.
type WorkflowCategory int

const (
	CategoryLegacyWorkflow WorkflowCategory = 0
	CategoryDialog         WorkflowCategory = 1
	CategoryBusinessRule   WorkflowCategory = 2
	CategoryAction         WorkflowCategory = 3
	CategoryGuidedProcess  WorkflowCategory = 4
	CategoryModernFlow     WorkflowCategory = 5
	CategoryDesktopFlow    WorkflowCategory = 6
)

// WorkflowKind is one row of the batched workflow classification query.
type WorkflowKind struct {
	ID       string
	Category WorkflowCategory
}

// Solution describes one installed solution of the target environment.
type Solution struct {
	ID           string `json:"id"`
	UniqueName   string `json:"unique_name"`
	FriendlyName string `json:"friendly_name"`
	Version      string `json:"version"`
	Publisher    string `json:"publisher,omitempty"`
	Prefix       string `json:"prefix,omitempty"`
}

// MetadataClient issues read-only metadata queries against the target
// platform. All operations honor the passed context and surface transport
// or service failures as errors; the caller decides which failures are
// fatal for a run.
type MetadataClient interface {
	// DiscoverInventory resolves a scope into category-partitioned
	// component id sets.
	DiscoverInventory(ctx context.Context, scope blueprint.Scope) (*blueprint.ComponentInventory, error)
	// ListWorkflowKinds returns the category discriminator for each given
	// workflow id in one batched query.
	ListWorkflowKinds(ctx context.Context, ids []string) ([]WorkflowKind, error)
	// ListEntities resolves entity component ids into basic entity records,
	// attributes excluded.
	ListEntities(ctx context.Context, ids []string) ([]*blueprint.EntityBlueprint, error)
	// GetEntitySchema fetches one entity's full schema by logical name,
	// attributes included.
	GetEntitySchema(ctx context.Context, logicalName string) (*blueprint.EntityBlueprint, error)
	// ListPluginSteps resolves trigger registration ids into full records.
	ListPluginSteps(ctx context.Context, ids []string) ([]blueprint.Trigger, error)
	// ListFlows resolves modern flow ids into records carrying their raw
	// client data.
	ListFlows(ctx context.Context, ids []string) ([]blueprint.Flow, error)
	// ListBusinessRules resolves rule ids into records carrying their raw
	// definition markup.
	ListBusinessRules(ctx context.Context, ids []string) ([]blueprint.BusinessRule, error)
	// ListLegacyWorkflows resolves classic workflow ids into full records.
	ListLegacyWorkflows(ctx context.Context, ids []string) ([]blueprint.LegacyWorkflow, error)
	// ListGuidedProcesses resolves guided process ids into records carrying
	// their raw definition markup.
	ListGuidedProcesses(ctx context.Context, ids []string) ([]blueprint.GuidedProcess, error)
	// ListWebResources resolves file ids into full records.
	ListWebResources(ctx context.Context, ids []string) ([]blueprint.WebResource, error)
	// ListEntityForms fetches the active forms of one entity.
	ListEntityForms(ctx context.Context, logicalName string) ([]blueprint.Form, error)
	// ListSolutions lists the visible solutions of the environment.
	ListSolutions(ctx context.Context) ([]Solution, error)
}
