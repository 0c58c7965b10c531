package generator

import (
	"sort"
	"strings"

	"github.com/sabrish/power-platform-solution-blueprint-sub000/pkg/blueprint"
)

// The aggregation helpers establish the result's deterministic display order
// and index each automation list by its owning entity. Map keys are
// lowercased entity logical names; records not bound to an entity stay in the
// flat lists only.

// AggregateTriggers sorts triggers by owning entity, then pipeline stage,
// then execution rank, and groups them per entity.
func AggregateTriggers(triggers []blueprint.Trigger) map[string][]blueprint.Trigger {
	sort.SliceStable(triggers, func(i, j int) bool {
		a, b := triggers[i], triggers[j]
		if a.Entity != b.Entity {
			return a.Entity < b.Entity
		}
		if a.Stage != b.Stage {
			return a.Stage < b.Stage
		}
		if a.Rank != b.Rank {
			return a.Rank < b.Rank
		}
		return displayLess(a.Name, a.ID, b.Name, b.ID)
	})
	return groupByEntity(triggers, func(t blueprint.Trigger) string { return t.Entity })
}

// AggregateFlows sorts flows alphabetically by display name and groups them
// by the entity their trigger is bound to.
func AggregateFlows(flows []blueprint.Flow) map[string][]blueprint.Flow {
	sort.SliceStable(flows, func(i, j int) bool {
		return displayLess(flows[i].Name, flows[i].ID, flows[j].Name, flows[j].ID)
	})
	return groupByEntity(flows, func(f blueprint.Flow) string { return f.Entity })
}

// AggregateRules sorts business rules alphabetically by display name and
// groups them by owning entity.
func AggregateRules(rules []blueprint.BusinessRule) map[string][]blueprint.BusinessRule {
	sort.SliceStable(rules, func(i, j int) bool {
		return displayLess(rules[i].Name, rules[i].ID, rules[j].Name, rules[j].ID)
	})
	return groupByEntity(rules, func(r blueprint.BusinessRule) string { return r.Entity })
}

// AggregateLegacyWorkflows sorts legacy workflows alphabetically by display
// name and groups them by owning entity.
func AggregateLegacyWorkflows(workflows []blueprint.LegacyWorkflow) map[string][]blueprint.LegacyWorkflow {
	sort.SliceStable(workflows, func(i, j int) bool {
		return displayLess(workflows[i].Name, workflows[i].ID, workflows[j].Name, workflows[j].ID)
	})
	return groupByEntity(workflows, func(w blueprint.LegacyWorkflow) string { return w.Entity })
}

// AggregateProcesses sorts guided processes alphabetically by display name
// and groups them by primary entity only. A process may touch further
// entities through its stages, but it is anchored where it starts; processes
// without a primary entity are not grouped at all.
func AggregateProcesses(processes []blueprint.GuidedProcess) map[string][]blueprint.GuidedProcess {
	sort.SliceStable(processes, func(i, j int) bool {
		return displayLess(processes[i].Name, processes[i].ID, processes[j].Name, processes[j].ID)
	})
	return groupByEntity(processes, func(p blueprint.GuidedProcess) string { return p.PrimaryEntity })
}

// AggregateFiles sorts files by name within their type and groups them by
// type.
func AggregateFiles(files []blueprint.WebResource) map[string][]blueprint.WebResource {
	sort.SliceStable(files, func(i, j int) bool {
		a, b := files[i], files[j]
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		return displayLess(a.Name, a.ID, b.Name, b.ID)
	})
	groups := make(map[string][]blueprint.WebResource)
	for _, f := range files {
		groups[f.Type] = append(groups[f.Type], f)
	}
	return groups
}

// groupByEntity buckets items under their lowercased owning-entity name,
// preserving the order they arrive in. Items without an owning entity are
// skipped.
func groupByEntity[T any](items []T, entityOf func(T) string) map[string][]T {
	groups := make(map[string][]T)
	for _, item := range items {
		key := strings.ToLower(entityOf(item))
		if key == "" {
			continue
		}
		groups[key] = append(groups[key], item)
	}
	return groups
}

// displayLess orders records alphabetically by display name without letting
// case split the ordering; ties fall back to byte order, then record id, so
// the result is total.
func displayLess(aName, aID, bName, bID string) bool {
	la, lb := strings.ToLower(aName), strings.ToLower(bName)
	if la != lb {
		return la < lb
	}
	if aName != bName {
		return aName < bName
	}
	return aID < bID
}
