package format

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sabrish/power-platform-solution-blueprint-sub000/pkg/blueprint"
)

// WriteMarkdown renders the blueprint as a readable solution document:
// summary first, then one section per entity with its attributes and attached
// automation, then the categories that live outside any single entity.
func WriteMarkdown(w io.Writer, bp *blueprint.Blueprint) error {
	var b strings.Builder

	b.WriteString("# Solution Blueprint\n\n")
	fmt.Fprintf(&b, "Generated %s for %s.\n\n", bp.GeneratedAt.Format("2006-01-02 15:04:05 MST"), bp.Scope.String())

	writeSummary(&b, bp.Summary)
	writeEntities(&b, bp)
	writeUnboundFlows(&b, bp.Flows)
	writeLegacyWorkflows(&b, bp.LegacyWorkflows)
	writeProcesses(&b, bp.Processes)
	writeFiles(&b, bp.FilesByType)

	_, err := io.WriteString(w, b.String())
	return err
}

func writeSummary(b *strings.Builder, s blueprint.Summary) {
	b.WriteString("## Summary\n\n")
	b.WriteString("| Category | Count |\n|---|---|\n")
	fmt.Fprintf(b, "| Entities | %d |\n", s.Entities)
	fmt.Fprintf(b, "| Attributes | %d |\n", s.Attributes)
	fmt.Fprintf(b, "| Plugin triggers | %d |\n", s.Triggers)
	fmt.Fprintf(b, "| Flows | %d |\n", s.Flows)
	fmt.Fprintf(b, "| Business rules | %d |\n", s.Rules)
	fmt.Fprintf(b, "| Legacy workflows | %d |\n", s.LegacyWorkflows)
	fmt.Fprintf(b, "| Guided processes | %d |\n", s.Processes)
	fmt.Fprintf(b, "| Files | %d |\n", s.Files)
	fmt.Fprintf(b, "| Forms | %d |\n", s.Forms)
	b.WriteString("\n")
	if len(s.DegradedCategories) > 0 {
		fmt.Fprintf(b, "> Degraded categories (fetch failed, documented as empty): %s.\n\n",
			strings.Join(s.DegradedCategories, ", "))
	}
}

func writeEntities(b *strings.Builder, bp *blueprint.Blueprint) {
	if len(bp.Entities) == 0 {
		return
	}
	b.WriteString("## Entities\n\n")
	for _, e := range bp.Entities {
		title := e.DisplayName
		if title == "" {
			title = e.LogicalName
		}
		fmt.Fprintf(b, "### %s (`%s`)\n\n", escapeCell(title), e.LogicalName)
		if e.Description != "" {
			fmt.Fprintf(b, "%s\n\n", e.Description)
		}
		kind := "System entity"
		if e.IsCustom {
			kind = "Custom entity"
		}
		if e.Ownership != "" {
			fmt.Fprintf(b, "%s, %s ownership.\n\n", kind, strings.ToLower(e.Ownership))
		} else {
			fmt.Fprintf(b, "%s.\n\n", kind)
		}

		writeAttributes(b, e.Attributes)
		writeTriggers(b, e.Triggers)
		writeFlows(b, "Flows", e.Flows)
		writeRules(b, e.Rules)
		writeForms(b, e.Forms)
	}
}

func writeAttributes(b *strings.Builder, attrs []blueprint.Attribute) {
	if len(attrs) == 0 {
		return
	}
	b.WriteString("#### Attributes\n\n")
	b.WriteString("| Display Name | Logical Name | Type | Required |\n|---|---|---|---|\n")
	for _, a := range attrs {
		fmt.Fprintf(b, "| %s | `%s` | %s | %s |\n",
			escapeCell(a.DisplayName), a.LogicalName, escapeCell(a.Type), escapeCell(a.RequiredLevel))
	}
	b.WriteString("\n")
}

func writeTriggers(b *strings.Builder, triggers []blueprint.Trigger) {
	if len(triggers) == 0 {
		return
	}
	b.WriteString("#### Plugin Triggers\n\n")
	b.WriteString("| Name | Message | Stage | Mode | Rank |\n|---|---|---|---|---|\n")
	for _, t := range triggers {
		fmt.Fprintf(b, "| %s | %s | %s | %s | %d |\n",
			escapeCell(t.Name), escapeCell(t.Message), t.StageName(), t.ModeName(), t.Rank)
	}
	b.WriteString("\n")
}

func writeFlows(b *strings.Builder, heading string, flows []blueprint.Flow) {
	if len(flows) == 0 {
		return
	}
	fmt.Fprintf(b, "#### %s\n\n", heading)
	b.WriteString("| Name | Trigger | State |\n|---|---|---|\n")
	for _, f := range flows {
		fmt.Fprintf(b, "| %s | %s | %s |\n",
			escapeCell(f.Name), escapeCell(flowTriggerPhrase(f)), escapeCell(f.State))
	}
	b.WriteString("\n")
}

func flowTriggerPhrase(f blueprint.Flow) string {
	switch {
	case f.TriggerMessage != "" && f.Entity != "":
		return fmt.Sprintf("%s of %s", f.TriggerMessage, f.Entity)
	case f.TriggerKind != "":
		return f.TriggerKind
	default:
		return ""
	}
}

func writeRules(b *strings.Builder, rules []blueprint.BusinessRule) {
	if len(rules) == 0 {
		return
	}
	b.WriteString("#### Business Rules\n\n")
	for _, r := range rules {
		fmt.Fprintf(b, "**%s**", escapeCell(r.Name))
		if r.State != "" {
			fmt.Fprintf(b, " (%s)", r.State)
		}
		b.WriteString("\n\n")
		if r.Description != "" {
			fmt.Fprintf(b, "%s\n\n", r.Description)
		}
		fmt.Fprintf(b, "- Runs on: %s\n", r.Definition.ExecutionContext)
		fmt.Fprintf(b, "- Logic: %s\n", r.Definition.ConditionLogic)
		for _, a := range r.Definition.Actions {
			if a.Field != "" {
				fmt.Fprintf(b, "- Action: %s `%s`\n", a.Type, a.Field)
			} else {
				fmt.Fprintf(b, "- Action: %s\n", a.Type)
			}
		}
		if r.Definition.ParseError != "" {
			fmt.Fprintf(b, "- Note: %s\n", r.Definition.ParseError)
		}
		b.WriteString("\n")
	}
}

func writeForms(b *strings.Builder, forms []blueprint.Form) {
	if len(forms) == 0 {
		return
	}
	b.WriteString("#### Forms\n\n")
	b.WriteString("| Name | Type |\n|---|---|\n")
	for _, f := range forms {
		fmt.Fprintf(b, "| %s | %s |\n", escapeCell(f.Name), escapeCell(f.Type))
	}
	b.WriteString("\n")
}

// writeUnboundFlows documents flows that are not bound to a record-change
// trigger; these never appear under an entity section.
func writeUnboundFlows(b *strings.Builder, flows []blueprint.Flow) {
	var unbound []blueprint.Flow
	for _, f := range flows {
		if f.Entity == "" {
			unbound = append(unbound, f)
		}
	}
	if len(unbound) == 0 {
		return
	}
	b.WriteString("## Flows Without an Entity Binding\n\n")
	b.WriteString("| Name | Trigger | State |\n|---|---|---|\n")
	for _, f := range unbound {
		fmt.Fprintf(b, "| %s | %s | %s |\n",
			escapeCell(f.Name), escapeCell(flowTriggerPhrase(f)), escapeCell(f.State))
	}
	b.WriteString("\n")
}

func writeLegacyWorkflows(b *strings.Builder, workflows []blueprint.LegacyWorkflow) {
	if len(workflows) == 0 {
		return
	}
	b.WriteString("## Legacy Workflows\n\n")
	b.WriteString("| Name | Entity | Mode | Triggers | State |\n|---|---|---|---|---|\n")
	for _, wf := range workflows {
		fmt.Fprintf(b, "| %s | %s | %s | %s | %s |\n",
			escapeCell(wf.Name), escapeCell(wf.Entity), escapeCell(wf.Mode),
			escapeCell(legacyTriggerPhrase(wf)), escapeCell(wf.State))
	}
	b.WriteString("\n")
}

func legacyTriggerPhrase(wf blueprint.LegacyWorkflow) string {
	var parts []string
	if wf.TriggerOnCreate {
		parts = append(parts, "Create")
	}
	if len(wf.TriggerOnUpdateOf) > 0 {
		parts = append(parts, "Update of "+strings.Join(wf.TriggerOnUpdateOf, ", "))
	}
	if wf.TriggerOnDelete {
		parts = append(parts, "Delete")
	}
	if wf.OnDemand {
		parts = append(parts, "On demand")
	}
	return strings.Join(parts, "; ")
}

func writeProcesses(b *strings.Builder, processes []blueprint.GuidedProcess) {
	if len(processes) == 0 {
		return
	}
	b.WriteString("## Guided Processes\n\n")
	for _, p := range processes {
		fmt.Fprintf(b, "### %s\n\n", escapeCell(p.Name))
		if p.Description != "" {
			fmt.Fprintf(b, "%s\n\n", p.Description)
		}
		if p.PrimaryEntity != "" {
			fmt.Fprintf(b, "Primary entity: `%s`\n\n", p.PrimaryEntity)
		}
		for i, stage := range p.Definition.Stages {
			fmt.Fprintf(b, "%d. **%s**", i+1, escapeCell(stage.Name))
			if stage.Entity != "" {
				fmt.Fprintf(b, " (`%s`)", stage.Entity)
			}
			if len(stage.Steps) > 0 {
				fmt.Fprintf(b, ": %s", strings.Join(stage.Steps, ", "))
			}
			b.WriteString("\n")
		}
		if len(p.Definition.Stages) > 0 {
			b.WriteString("\n")
		}
		if p.Definition.ParseError != "" {
			fmt.Fprintf(b, "> %s\n\n", p.Definition.ParseError)
		}
	}
}

func writeFiles(b *strings.Builder, byType map[string][]blueprint.WebResource) {
	if len(byType) == 0 {
		return
	}
	b.WriteString("## Files\n\n")
	for _, kind := range sortedKeys(byType) {
		fmt.Fprintf(b, "### %s\n\n", escapeCell(kind))
		for _, f := range byType[kind] {
			if f.DisplayName != "" && f.DisplayName != f.Name {
				fmt.Fprintf(b, "- `%s` (%s)\n", f.Name, escapeCell(f.DisplayName))
			} else {
				fmt.Fprintf(b, "- `%s`\n", f.Name)
			}
		}
		b.WriteString("\n")
	}
}

func sortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// escapeCell keeps user-supplied names from breaking table and heading
// structure.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}
