package dataverse

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/sabrish/power-platform-solution-blueprint-sub000/internal/definition"
	"github.com/sabrish/power-platform-solution-blueprint-sub000/pkg/blueprint"
)

type workflowRow struct {
	ID              string `json:"workflowid"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	Category        int    `json:"category"`
	PrimaryEntity   string `json:"primaryentity"`
	StateCode       int    `json:"statecode"`
	Mode            int    `json:"mode"`
	OnDemand        bool   `json:"ondemand"`
	TriggerOnCreate bool   `json:"triggeroncreate"`
	TriggerOnDelete bool   `json:"triggerondelete"`
	TriggerOnUpdate string `json:"triggeronupdateattributelist"`
	XAML            string `json:"xaml"`
	ClientData      string `json:"clientdata"`
}

// primaryEntity normalizes the workflow table's primary entity column; the
// service reports "none" for records not bound to an entity.
func (row workflowRow) primaryEntity() string {
	entity := strings.ToLower(row.PrimaryEntity)
	if entity == "none" {
		return ""
	}
	return entity
}

func (row workflowRow) stateName() string {
	if row.StateCode == 1 {
		return "Activated"
	}
	return "Draft"
}

// ListWorkflowKinds returns the category discriminator of each workflow id.
func (c *WebAPIClient) ListWorkflowKinds(ctx context.Context, ids []string) ([]WorkflowKind, error) {
	rows, err := listByIDs[workflowRow](ctx, c, "workflows", "workflowid", "workflowid,category", ids)
	if err != nil {
		return nil, fmt.Errorf("failed to classify workflows: %w", err)
	}
	out := make([]WorkflowKind, 0, len(rows))
	for _, row := range rows {
		out = append(out, WorkflowKind{ID: row.ID, Category: WorkflowCategory(row.Category)})
	}
	return out, nil
}

// ListFlows resolves modern flow ids. The raw client data blob rides along
// for trigger metadata decoding; it is not part of the result contract.
func (c *WebAPIClient) ListFlows(ctx context.Context, ids []string) ([]blueprint.Flow, error) {
	selects := "workflowid,name,description,statecode,primaryentity,clientdata"
	rows, err := listByIDs[workflowRow](ctx, c, "workflows", "workflowid", selects, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch flows: %w", err)
	}
	out := make([]blueprint.Flow, 0, len(rows))
	for _, row := range rows {
		out = append(out, blueprint.Flow{
			ID:            row.ID,
			Name:          row.Name,
			Description:   row.Description,
			State:         row.stateName(),
			Entity:        row.primaryEntity(),
			RawClientData: row.ClientData,
		})
	}
	return out, nil
}

// ListBusinessRules resolves declarative rule ids. Definitions stay raw;
// decoding them is the pipeline's job.
func (c *WebAPIClient) ListBusinessRules(ctx context.Context, ids []string) ([]blueprint.BusinessRule, error) {
	selects := "workflowid,name,description,statecode,primaryentity,xaml"
	rows, err := listByIDs[workflowRow](ctx, c, "workflows", "workflowid", selects, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch business rules: %w", err)
	}
	out := make([]blueprint.BusinessRule, 0, len(rows))
	for _, row := range rows {
		out = append(out, blueprint.BusinessRule{
			ID:            row.ID,
			Name:          row.Name,
			Description:   row.Description,
			Entity:        row.primaryEntity(),
			State:         row.stateName(),
			RawDefinition: row.XAML,
		})
	}
	return out, nil
}

// ListLegacyWorkflows resolves classic workflow ids.
func (c *WebAPIClient) ListLegacyWorkflows(ctx context.Context, ids []string) ([]blueprint.LegacyWorkflow, error) {
	selects := "workflowid,name,description,statecode,primaryentity,mode,ondemand,triggeroncreate,triggerondelete,triggeronupdateattributelist"
	rows, err := listByIDs[workflowRow](ctx, c, "workflows", "workflowid", selects, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch legacy workflows: %w", err)
	}
	out := make([]blueprint.LegacyWorkflow, 0, len(rows))
	for _, row := range rows {
		mode := "Background"
		if row.Mode == 1 {
			mode = "Real-time"
		}
		out = append(out, blueprint.LegacyWorkflow{
			ID:                row.ID,
			Name:              row.Name,
			Description:       row.Description,
			Entity:            row.primaryEntity(),
			State:             row.stateName(),
			Mode:              mode,
			OnDemand:          row.OnDemand,
			TriggerOnCreate:   row.TriggerOnCreate,
			TriggerOnDelete:   row.TriggerOnDelete,
			TriggerOnUpdateOf: definition.SplitAttributeList(row.TriggerOnUpdate),
		})
	}
	return out, nil
}

// ListGuidedProcesses resolves guided process ids. Definitions stay raw.
func (c *WebAPIClient) ListGuidedProcesses(ctx context.Context, ids []string) ([]blueprint.GuidedProcess, error) {
	selects := "workflowid,name,description,statecode,primaryentity,xaml"
	rows, err := listByIDs[workflowRow](ctx, c, "workflows", "workflowid", selects, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch guided processes: %w", err)
	}
	out := make([]blueprint.GuidedProcess, 0, len(rows))
	for _, row := range rows {
		out = append(out, blueprint.GuidedProcess{
			ID:            row.ID,
			Name:          row.Name,
			Description:   row.Description,
			PrimaryEntity: row.primaryEntity(),
			State:         row.stateName(),
			RawDefinition: row.XAML,
		})
	}
	return out, nil
}

type stepRow struct {
	ID                  string `json:"sdkmessageprocessingstepid"`
	Name                string `json:"name"`
	Stage               int    `json:"stage"`
	Rank                int    `json:"rank"`
	Mode                int    `json:"mode"`
	FilteringAttributes string `json:"filteringattributes"`
	Description         string `json:"description"`
	StateCode           int    `json:"statecode"`
	Message             *struct {
		Name string `json:"name"`
	} `json:"sdkmessageid"`
	Filter *struct {
		PrimaryEntity string `json:"primaryobjecttypecode"`
	} `json:"sdkmessagefilterid"`
}

// ListPluginSteps resolves trigger registration ids into full records,
// expanding the registered message and the primary entity filter.
func (c *WebAPIClient) ListPluginSteps(ctx context.Context, ids []string) ([]blueprint.Trigger, error) {
	var out []blueprint.Trigger
	for _, part := range chunkIDs(ids, idFilterChunk) {
		q := url.Values{}
		q.Set("$select", "sdkmessageprocessingstepid,name,stage,rank,mode,filteringattributes,description,statecode")
		q.Set("$expand", "sdkmessageid($select=name),sdkmessagefilterid($select=primaryobjecttypecode)")
		q.Set("$filter", idFilter("sdkmessageprocessingstepid", part))
		rows, err := listAll[stepRow](ctx, c, c.collection("sdkmessageprocessingsteps", q))
		if err != nil {
			return nil, fmt.Errorf("failed to fetch plugin steps: %w", err)
		}
		for _, row := range rows {
			trigger := blueprint.Trigger{
				ID:                  row.ID,
				Name:                row.Name,
				Stage:               row.Stage,
				Rank:                row.Rank,
				Mode:                row.Mode,
				FilteringAttributes: definition.SplitAttributeList(row.FilteringAttributes),
				Description:         row.Description,
				State:               "Enabled",
			}
			if row.StateCode == 1 {
				trigger.State = "Disabled"
			}
			if row.Message != nil {
				trigger.Message = row.Message.Name
			}
			if row.Filter != nil {
				trigger.Entity = strings.ToLower(row.Filter.PrimaryEntity)
			}
			out = append(out, trigger)
		}
	}
	return out, nil
}
