package generator

import (
	"sort"

	"github.com/sabrish/power-platform-solution-blueprint-sub000/internal/dataverse"
	"github.com/sabrish/power-platform-solution-blueprint-sub000/pkg/blueprint"
)

// ClassifyWorkflows partitions a generic workflow id set into the four typed
// automation buckets using the batched classification rows. Every input id
// lands in exactly one bucket: dialogs, actions and desktop flows are folded
// into the legacy bucket, and ids with an unrecognized category code, or
// missing from the classification response entirely, fall back to the legacy
// bucket as well so they surface in migration guidance instead of vanishing.
// Buckets come back sorted.
func ClassifyWorkflows(ids []string, kinds []dataverse.WorkflowKind, log Logger) blueprint.WorkflowInventory {
	categories := make(map[string]dataverse.WorkflowCategory, len(kinds))
	for _, kind := range kinds {
		categories[kind.ID] = kind.Category
	}

	var inv blueprint.WorkflowInventory
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		category, known := categories[id]
		if !known {
			log.Debug("workflow missing from classification response, treating as legacy", "workflow_id", id)
			inv.LegacyWorkflows = append(inv.LegacyWorkflows, id)
			continue
		}
		switch category {
		case dataverse.CategoryModernFlow:
			inv.Flows = append(inv.Flows, id)
		case dataverse.CategoryBusinessRule:
			inv.BusinessRules = append(inv.BusinessRules, id)
		case dataverse.CategoryGuidedProcess:
			inv.GuidedProcesses = append(inv.GuidedProcesses, id)
		case dataverse.CategoryLegacyWorkflow, dataverse.CategoryDialog,
			dataverse.CategoryAction, dataverse.CategoryDesktopFlow:
			inv.LegacyWorkflows = append(inv.LegacyWorkflows, id)
		default:
			log.Debug("unrecognized workflow category, treating as legacy",
				"workflow_id", id, "category", int(category))
			inv.LegacyWorkflows = append(inv.LegacyWorkflows, id)
		}
	}

	sort.Strings(inv.Flows)
	sort.Strings(inv.BusinessRules)
	sort.Strings(inv.LegacyWorkflows)
	sort.Strings(inv.GuidedProcesses)
	return inv
}
