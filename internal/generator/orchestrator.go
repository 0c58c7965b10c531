// Package generator implements the blueprint generation pipeline: a strictly
// sequential orchestrator that discovers a scope's components, classifies its
// automation, fetches per-category detail, scopes entity schemas, and
// assembles the final cross-referenced blueprint.
//
// Core categories (entities, triggers, flows, rules) abort the run when they
// cannot be fetched. Peripheral categories (legacy workflows, guided
// processes, files, forms) degrade to empty lists so a flaky extra never
// blocks documentation of the data model.
package generator

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/sabrish/power-platform-solution-blueprint-sub000/internal/dataverse"
	"github.com/sabrish/power-platform-solution-blueprint-sub000/internal/definition"
	"github.com/sabrish/power-platform-solution-blueprint-sub000/pkg/blueprint"
)

// Logger defines the logging interface compatible with the application logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Options adjust how generation runs execute.
type Options struct {
	// OnProgress receives a snapshot at every phase boundary and at each
	// entity milestone of the schema phase. Callbacks run synchronously on
	// the pipeline goroutine and must not block. Nil disables reporting.
	OnProgress blueprint.ProgressFunc

	// SchemaDelay is the fixed spacing between per-entity schema fetches,
	// pacing load on the metadata service. Zero disables pacing.
	SchemaDelay time.Duration
}

// Generator runs generation pipelines against one metadata client. It holds
// no per-run state, so one Generator may serve successive runs.
type Generator struct {
	client dataverse.MetadataClient
	log    Logger
	opts   Options
}

// New creates a Generator over the given metadata client.
func New(client dataverse.MetadataClient, log Logger, opts Options) *Generator {
	return &Generator{client: client, log: log, opts: opts}
}

// Generate executes one pipeline run for the scope and returns the assembled
// blueprint. Scope validation happens before any network activity. Errors
// that abort a started run are wrapped as "generation failed"; callers
// distinguish cancellation with errors.Is(err, context.Canceled) rather than
// by message text.
func (g *Generator) Generate(ctx context.Context, scope blueprint.Scope) (*blueprint.Blueprint, error) {
	start := time.Now()

	if err := scope.Validate(); err != nil {
		recordGeneration(ctx, time.Since(start), "invalid_scope")
		return nil, err
	}

	r := &run{
		Generator: g,
		scope:     scope,
		bp: &blueprint.Blueprint{
			ID:          uuid.New().String(),
			GeneratedAt: time.Now().UTC(),
			Scope:       scope,
		},
	}
	if g.opts.SchemaDelay > 0 {
		r.limiter = rate.NewLimiter(rate.Every(g.opts.SchemaDelay), 1)
	}

	bp, err := r.execute(ctx)
	if err != nil {
		result := "failed"
		if isCancellation(err) {
			result = "cancelled"
		}
		recordGeneration(ctx, time.Since(start), result)
		return nil, fmt.Errorf("generation failed: %w", err)
	}
	recordGeneration(ctx, time.Since(start), "ok")
	return bp, nil
}

// run owns the in-progress result of a single generation. All mutation
// happens on the one goroutine executing the pipeline; nothing else may
// write to bp until execute returns it.
type run struct {
	*Generator
	scope    blueprint.Scope
	bp       *blueprint.Blueprint
	limiter  *rate.Limiter
	degraded []string
}

func (r *run) execute(ctx context.Context) (*blueprint.Blueprint, error) {
	if err := r.discover(ctx); err != nil {
		return nil, err
	}
	if err := r.fetchSchemas(ctx); err != nil {
		return nil, err
	}
	if err := r.fetchAutomation(ctx); err != nil {
		return nil, err
	}
	if err := r.fetchForms(ctx); err != nil {
		return nil, err
	}
	r.attach()
	r.summarize()

	r.emit(blueprint.PhaseComplete, 1, 1, "",
		fmt.Sprintf("Blueprint complete: %d entities, %d triggers, %d flows, %d rules documented",
			r.bp.Summary.Entities, r.bp.Summary.Triggers, r.bp.Summary.Flows, r.bp.Summary.Rules))
	return r.bp, nil
}

// discover resolves the scope into the component inventory and partitions
// the generic workflow ids into their typed buckets. Both queries are core:
// without them there is nothing to document.
func (r *run) discover(ctx context.Context) error {
	r.emit(blueprint.PhaseDiscovering, 0, 0, "", "Discovering components for "+r.scope.String())

	inventory, err := category(r, tierCore, "component inventory", func() (*blueprint.ComponentInventory, error) {
		return r.client.DiscoverInventory(ctx, r.scope)
	})
	if err != nil {
		return err
	}
	r.bp.Inventory = *inventory

	kinds, err := category(r, tierCore, "workflow classification", func() ([]dataverse.WorkflowKind, error) {
		return r.client.ListWorkflowKinds(ctx, inventory.Workflows)
	})
	if err != nil {
		return err
	}
	r.bp.Workflows = ClassifyWorkflows(inventory.Workflows, kinds, r.log)

	total := inventory.Total()
	r.emit(blueprint.PhaseDiscovering, total, total, "",
		fmt.Sprintf("Discovered %d components, %d workflows classified", total, r.bp.Workflows.Total()))
	return nil
}

// fetchSchemas resolves the discovered entity ids, drops system entities
// unless the scope includes them, then fetches each remaining entity's full
// schema one at a time. Cancellation is checked at the top of every entity
// iteration and the limiter paces successive fetches.
func (r *run) fetchSchemas(ctx context.Context) error {
	stubs, err := category(r, tierCore, "entities", func() ([]*blueprint.EntityBlueprint, error) {
		return r.client.ListEntities(ctx, r.bp.Inventory.Entities)
	})
	if err != nil {
		return err
	}

	kept := make([]*blueprint.EntityBlueprint, 0, len(stubs))
	for _, stub := range stubs {
		if !stub.IsCustom && !r.scope.IncludeSystemEntities {
			r.log.Debug("skipping system entity", "entity", stub.LogicalName)
			continue
		}
		kept = append(kept, stub)
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i].LogicalName < kept[j].LogicalName })

	total := len(kept)
	r.emit(blueprint.PhaseSchema, 0, total, "", fmt.Sprintf("Fetching schemas for %d entities", total))

	filter := NewAttributeFilter(r.bp.Inventory.Attributes, r.scope.ExcludeSystemFields)
	r.bp.Entities = make([]*blueprint.EntityBlueprint, 0, total)
	for i, stub := range kept {
		// Cooperative cancellation: checked once per entity, never
		// mid-request.
		if err := ctx.Err(); err != nil {
			return err
		}
		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				return err
			}
		}
		r.emit(blueprint.PhaseSchema, i+1, total, stub.LogicalName, "Fetching schema for "+stub.LogicalName)

		entity, err := r.client.GetEntitySchema(ctx, stub.LogicalName)
		if err != nil {
			return fmt.Errorf("schema of %s: %w", stub.LogicalName, err)
		}
		entity.Attributes = filter.Apply(entity)
		entity.Triggers = []blueprint.Trigger{}
		entity.Flows = []blueprint.Flow{}
		entity.Rules = []blueprint.BusinessRule{}
		entity.Forms = []blueprint.Form{}
		r.bp.Entities = append(r.bp.Entities, entity)
	}

	r.emit(blueprint.PhaseSchema, total, total, "", fmt.Sprintf("Fetched %d entity schemas", total))
	return nil
}

// fetchAutomation runs the batched detail phases in their fixed order:
// triggers, flows and rules are core; legacy workflows, guided processes and
// files degrade on failure.
func (r *run) fetchAutomation(ctx context.Context) error {
	inventory, workflows := r.bp.Inventory, r.bp.Workflows

	r.emit(blueprint.PhaseTriggers, 0, len(inventory.PluginSteps), "",
		fmt.Sprintf("Fetching %d triggers", len(inventory.PluginSteps)))
	triggers, err := category(r, tierCore, "triggers", func() ([]blueprint.Trigger, error) {
		return r.client.ListPluginSteps(ctx, inventory.PluginSteps)
	})
	if err != nil {
		return err
	}
	r.bp.Triggers = triggers
	r.emit(blueprint.PhaseTriggers, len(triggers), len(triggers), "",
		fmt.Sprintf("Fetched %d triggers", len(triggers)))

	r.emit(blueprint.PhaseFlows, 0, len(workflows.Flows), "",
		fmt.Sprintf("Fetching %d flows", len(workflows.Flows)))
	flows, err := category(r, tierCore, "flows", func() ([]blueprint.Flow, error) {
		return r.client.ListFlows(ctx, workflows.Flows)
	})
	if err != nil {
		return err
	}
	for i := range flows {
		trigger := definition.ParseFlowTrigger(flows[i].RawClientData)
		if trigger.Entity != "" {
			flows[i].Entity = trigger.Entity
		}
		flows[i].TriggerKind = trigger.Kind
		flows[i].TriggerMessage = trigger.Message
	}
	r.bp.Flows = flows
	r.emit(blueprint.PhaseFlows, len(flows), len(flows), "",
		fmt.Sprintf("Fetched %d flows", len(flows)))

	r.emit(blueprint.PhaseRules, 0, len(workflows.BusinessRules), "",
		fmt.Sprintf("Fetching %d business rules", len(workflows.BusinessRules)))
	rules, err := category(r, tierCore, "rules", func() ([]blueprint.BusinessRule, error) {
		return r.client.ListBusinessRules(ctx, workflows.BusinessRules)
	})
	if err != nil {
		return err
	}
	for i := range rules {
		rules[i].Definition = definition.ParseRule(rules[i].RawDefinition)
		if rules[i].Definition.ParseError != "" {
			r.log.Debug("rule definition degraded", "rule", rules[i].Name, "error", rules[i].Definition.ParseError)
		}
	}
	r.bp.Rules = rules
	r.emit(blueprint.PhaseRules, len(rules), len(rules), "",
		fmt.Sprintf("Fetched %d business rules", len(rules)))

	r.emit(blueprint.PhaseLegacyWorkflows, 0, len(workflows.LegacyWorkflows), "",
		fmt.Sprintf("Fetching %d legacy workflows", len(workflows.LegacyWorkflows)))
	legacy, err := category(r, tierPeripheral, "legacy workflows", func() ([]blueprint.LegacyWorkflow, error) {
		return r.client.ListLegacyWorkflows(ctx, workflows.LegacyWorkflows)
	})
	if err != nil {
		return err
	}
	r.bp.LegacyWorkflows = legacy
	r.emit(blueprint.PhaseLegacyWorkflows, len(legacy), len(legacy), "",
		fmt.Sprintf("Fetched %d legacy workflows", len(legacy)))

	r.emit(blueprint.PhaseProcesses, 0, len(workflows.GuidedProcesses), "",
		fmt.Sprintf("Fetching %d guided processes", len(workflows.GuidedProcesses)))
	processes, err := category(r, tierPeripheral, "guided processes", func() ([]blueprint.GuidedProcess, error) {
		return r.client.ListGuidedProcesses(ctx, workflows.GuidedProcesses)
	})
	if err != nil {
		return err
	}
	for i := range processes {
		processes[i].Definition = definition.ParseProcess(processes[i].RawDefinition)
		if processes[i].Definition.ParseError != "" {
			r.log.Debug("process definition degraded", "process", processes[i].Name, "error", processes[i].Definition.ParseError)
		}
	}
	r.bp.Processes = processes
	r.emit(blueprint.PhaseProcesses, len(processes), len(processes), "",
		fmt.Sprintf("Fetched %d guided processes", len(processes)))

	r.emit(blueprint.PhaseFiles, 0, len(inventory.WebResources), "",
		fmt.Sprintf("Fetching %d files", len(inventory.WebResources)))
	files, err := category(r, tierPeripheral, "files", func() ([]blueprint.WebResource, error) {
		return r.client.ListWebResources(ctx, inventory.WebResources)
	})
	if err != nil {
		return err
	}
	r.bp.Files = files
	r.emit(blueprint.PhaseFiles, len(files), len(files), "",
		fmt.Sprintf("Fetched %d files", len(files)))

	return nil
}

// fetchForms loads each discovered entity's forms. Forms are peripheral: a
// failing entity logs, keeps an empty list and the phase moves on.
func (r *run) fetchForms(ctx context.Context) error {
	total := len(r.bp.Entities)
	r.emit(blueprint.PhaseForms, 0, total, "", fmt.Sprintf("Fetching forms for %d entities", total))

	count := 0
	for _, entity := range r.bp.Entities {
		forms, err := category(r, tierPeripheral, "forms", func() ([]blueprint.Form, error) {
			return r.client.ListEntityForms(ctx, entity.LogicalName)
		})
		if err != nil {
			return err
		}
		sort.SliceStable(forms, func(i, j int) bool {
			return displayLess(forms[i].Name, forms[i].ID, forms[j].Name, forms[j].ID)
		})
		entity.Forms = orEmpty(forms)
		count += len(forms)
	}

	r.emit(blueprint.PhaseForms, total, total, "", fmt.Sprintf("Fetched %d forms", count))
	return nil
}

// attach cross-references every fetched category by owning entity and fills
// each entity blueprint's automation lists. It runs only after every fetch
// phase so each category's list is final.
func (r *run) attach() {
	bp := r.bp
	bp.Triggers = orEmpty(bp.Triggers)
	bp.Flows = orEmpty(bp.Flows)
	bp.Rules = orEmpty(bp.Rules)
	bp.LegacyWorkflows = orEmpty(bp.LegacyWorkflows)
	bp.Processes = orEmpty(bp.Processes)
	bp.Files = orEmpty(bp.Files)

	bp.TriggersByEntity = AggregateTriggers(bp.Triggers)
	bp.FlowsByEntity = AggregateFlows(bp.Flows)
	bp.RulesByEntity = AggregateRules(bp.Rules)
	bp.LegacyWorkflowsByEntity = AggregateLegacyWorkflows(bp.LegacyWorkflows)
	bp.ProcessesByEntity = AggregateProcesses(bp.Processes)
	bp.FilesByType = AggregateFiles(bp.Files)

	for _, process := range bp.Processes {
		if process.PrimaryEntity == "" {
			r.log.Debug("guided process has no primary entity, left ungrouped", "process", process.Name)
		}
	}

	for _, entity := range bp.Entities {
		key := strings.ToLower(entity.LogicalName)
		entity.Triggers = orEmpty(bp.TriggersByEntity[key])
		entity.Flows = orEmpty(bp.FlowsByEntity[key])
		entity.Rules = orEmpty(bp.RulesByEntity[key])
	}
}

func (r *run) summarize() {
	bp := r.bp
	summary := blueprint.Summary{
		Entities:           len(bp.Entities),
		Triggers:           len(bp.Triggers),
		Flows:              len(bp.Flows),
		Rules:              len(bp.Rules),
		LegacyWorkflows:    len(bp.LegacyWorkflows),
		Processes:          len(bp.Processes),
		Files:              len(bp.Files),
		DegradedCategories: r.degraded,
	}
	for _, entity := range bp.Entities {
		summary.Attributes += len(entity.Attributes)
		summary.Forms += len(entity.Forms)
	}
	bp.Summary = summary
}

// emit delivers one progress snapshot. The callback runs synchronously; the
// pipeline does not wait on anything it kicks off.
func (r *run) emit(phase blueprint.Phase, current, total int, entityName, message string) {
	if r.opts.OnProgress == nil {
		return
	}
	r.opts.OnProgress(blueprint.Progress{
		Phase:      phase,
		Current:    current,
		Total:      total,
		EntityName: entityName,
		Message:    message,
	})
}

func (r *run) markDegraded(name string) {
	for _, existing := range r.degraded {
		if existing == name {
			return
		}
	}
	r.degraded = append(r.degraded, name)
}

// category runs one category fetch under the two-tier partial-failure policy
// and applies the outcome to the run: degraded categories are logged and
// recorded in the summary, fatal errors abort with the category named in the
// cause.
func category[T any](r *run, t tier, name string, fn func() (T, error)) (T, error) {
	o := runFetch(t, fn)
	switch o.state {
	case outcomeFatal:
		return o.value, fmt.Errorf("%s: %w", name, o.err)
	case outcomeDegraded:
		r.log.Warn("category fetch failed, continuing with empty list", "category", name, "error", o.err)
		r.markDegraded(name)
	}
	return o.value, nil
}

func orEmpty[T any](list []T) []T {
	if list == nil {
		return []T{}
	}
	return list
}
