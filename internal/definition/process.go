package definition

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/sabrish/power-platform-solution-blueprint-sub000/pkg/blueprint"
)

var (
	stageTagRe = regexp.MustCompile(`(?is)<(?:\w+:)?Stage\b[^>]*>`)
	stepTagRe  = regexp.MustCompile(`(?is)<(?:\w+:)?Step\b[^>]*>`)

	nameAttrRe   = regexp.MustCompile(`(?i)\bName\s*=\s*"([^"]*)"`)
	entityAttrRe = regexp.MustCompile(`(?i)\bEntity\s*=\s*"([^"]*)"`)
)

// ParseProcess decodes a guided process's markup blob into its ordered
// stages. A blank blob yields an empty stage list; a decoding failure yields
// an empty stage list with ParseError populated.
func ParseProcess(markup string) (def blueprint.ProcessDefinition) {
	def = blueprint.ProcessDefinition{Stages: []blueprint.ProcessStage{}}
	if strings.TrimSpace(markup) == "" {
		return def
	}
	defer func() {
		if r := recover(); r != nil {
			def = blueprint.ProcessDefinition{
				Stages:     []blueprint.ProcessStage{},
				ParseError: fmt.Sprintf("process markup decoding failed: %v", r),
			}
		}
	}()

	locs := stageTagRe.FindAllStringIndex(markup, -1)
	for i, loc := range locs {
		tag := markup[loc[0]:loc[1]]
		end := len(markup)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		stage := blueprint.ProcessStage{
			Name:   tagAttr(tag, nameAttrRe),
			Entity: strings.ToLower(tagAttr(tag, entityAttrRe)),
		}
		for _, step := range stepTagRe.FindAllString(markup[loc[1]:end], -1) {
			if name := tagAttr(step, nameAttrRe); name != "" {
				stage.Steps = append(stage.Steps, name)
			}
		}
		def.Stages = append(def.Stages, stage)
	}
	return def
}

// SplitAttributeList splits a comma-separated attribute list, as carried on
// trigger registrations, into normalized logical names.
func SplitAttributeList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
			out = append(out, part)
		}
	}
	return out
}
