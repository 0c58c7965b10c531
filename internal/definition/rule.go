// Package definition decodes the semi-structured markup embedded in
// automation records into structured domain objects. Parsers are pure
// functions: decoding failures degrade into data (a ParseError field or a
// zero value), never into an error return, so one undecodable record can
// never abort a generation run.
package definition

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/sabrish/power-platform-solution-blueprint-sub000/pkg/blueprint"
)

var (
	conditionTagRe = regexp.MustCompile(`(?is)<(?:\w+:)?Condition\b[^>]*>`)
	actionTagRe    = regexp.MustCompile(`(?is)<(?:\w+:)?Action\b[^>]*>`)
	groupTagRe     = regexp.MustCompile(`(?is)<(?:\w+:)?LogicalGroup\b[^>]*>`)

	fieldAttrRe    = regexp.MustCompile(`(?i)\bField\s*=\s*"([^"]*)"`)
	operatorAttrRe = regexp.MustCompile(`(?i)\bOperator\s*=\s*"([^"]*)"`)
	valueAttrRe    = regexp.MustCompile(`(?i)\bValue\s*=\s*"([^"]*)"`)
	typeAttrRe     = regexp.MustCompile(`(?i)\bType\s*=\s*"([^"]*)"`)
)

// operatorNames maps raw comparison tokens to display phrases. Tokens absent
// from the table pass through unchanged.
var operatorNames = map[string]string{
	"eq":       "equals",
	"ne":       "not equals",
	"gt":       "greater than",
	"ge":       "greater than or equal",
	"lt":       "less than",
	"le":       "less than or equal",
	"like":     "contains",
	"not-like": "does not contain",
	"null":     "is empty",
	"not-null": "is not empty",
}

// actionTypes maps raw action tokens to the fixed action enumeration.
// Unrecognized tokens fall back to SetValue so no decoded action is lost.
var actionTypes = map[string]blueprint.ActionType{
	"show":        blueprint.ActionShowField,
	"showfield":   blueprint.ActionShowField,
	"hide":        blueprint.ActionHideField,
	"hidefield":   blueprint.ActionHideField,
	"setvalue":    blueprint.ActionSetValue,
	"setrequired": blueprint.ActionSetRequired,
	"lock":        blueprint.ActionLockField,
	"lockfield":   blueprint.ActionLockField,
	"unlock":      blueprint.ActionUnlockField,
	"unlockfield": blueprint.ActionUnlockField,
	"showerror":   blueprint.ActionShowError,
}

// emptyRule is the shape returned for blank markup and for contained
// decoding failures.
func emptyRule() blueprint.RuleDefinition {
	return blueprint.RuleDefinition{
		Conditions:       []blueprint.RuleCondition{},
		Actions:          []blueprint.RuleAction{},
		ExecutionContext: blueprint.ContextClient,
		ConditionLogic:   "No conditions defined",
	}
}

// ParseRule decodes a declarative rule's markup blob. A blank blob yields the
// empty definition. Any failure while decoding a non-blank blob yields the
// empty definition with ParseError describing the failure.
func ParseRule(markup string) (def blueprint.RuleDefinition) {
	if strings.TrimSpace(markup) == "" {
		return emptyRule()
	}
	defer func() {
		if r := recover(); r != nil {
			def = emptyRule()
			def.ParseError = fmt.Sprintf("rule markup decoding failed: %v", r)
		}
	}()
	return decodeRule(markup)
}

func decodeRule(markup string) blueprint.RuleDefinition {
	conditions := decodeConditions(markup)
	actions := decodeActions(markup)
	return blueprint.RuleDefinition{
		Conditions:       conditions,
		Actions:          actions,
		ExecutionContext: deriveExecutionContext(actions),
		ConditionLogic:   renderConditionLogic(conditions),
	}
}

func decodeConditions(markup string) []blueprint.RuleCondition {
	conditions := []blueprint.RuleCondition{}
	for i, loc := range conditionTagRe.FindAllStringIndex(markup, -1) {
		tag := markup[loc[0]:loc[1]]
		cond := blueprint.RuleCondition{
			Field:    tagAttr(tag, fieldAttrRe),
			Operator: operatorName(tagAttr(tag, operatorAttrRe)),
			Value:    tagAttr(tag, valueAttrRe),
		}
		if i > 0 {
			cond.Connective = connectiveBefore(markup, loc[0])
		}
		conditions = append(conditions, cond)
	}
	return conditions
}

// connectiveBefore scans backward from a clause position for the nearest
// enclosing logical group and returns the connective it dictates. Clauses
// outside any group join conjunctively.
func connectiveBefore(markup string, pos int) string {
	groups := groupTagRe.FindAllStringIndex(markup[:pos], -1)
	if len(groups) == 0 {
		return "AND"
	}
	nearest := markup[groups[len(groups)-1][0]:groups[len(groups)-1][1]]
	if strings.EqualFold(tagAttr(nearest, operatorAttrRe), "or") {
		return "OR"
	}
	return "AND"
}

func decodeActions(markup string) []blueprint.RuleAction {
	actions := []blueprint.RuleAction{}
	for _, tag := range actionTagRe.FindAllString(markup, -1) {
		raw := strings.ToLower(strings.TrimSpace(tagAttr(tag, typeAttrRe)))
		typ, ok := actionTypes[raw]
		if !ok {
			typ = blueprint.ActionSetValue
		}
		actions = append(actions, blueprint.RuleAction{
			Type:  typ,
			Field: tagAttr(tag, fieldAttrRe),
			Value: tagAttr(tag, valueAttrRe),
		})
	}
	return actions
}

// deriveExecutionContext classifies the decoded actions: visual-only rules
// run on the client, data-affecting rules on the server, mixed rules on both.
func deriveExecutionContext(actions []blueprint.RuleAction) blueprint.ExecutionContext {
	var visual, data bool
	for _, a := range actions {
		switch a.Type {
		case blueprint.ActionShowField, blueprint.ActionHideField,
			blueprint.ActionLockField, blueprint.ActionUnlockField:
			visual = true
		default:
			data = true
		}
	}
	switch {
	case visual && data:
		return blueprint.ContextBoth
	case data:
		return blueprint.ContextServer
	default:
		return blueprint.ContextClient
	}
}

// renderConditionLogic builds the human-readable logic string, e.g.
// "IF revenue greater than '1000' AND status equals 'active'".
func renderConditionLogic(conditions []blueprint.RuleCondition) string {
	if len(conditions) == 0 {
		return "No conditions defined"
	}
	var b strings.Builder
	b.WriteString("IF ")
	for i, c := range conditions {
		if i > 0 {
			b.WriteString(" " + c.Connective + " ")
		}
		fmt.Fprintf(&b, "%s %s '%s'", c.Field, c.Operator, c.Value)
	}
	return b.String()
}

func operatorName(token string) string {
	if name, ok := operatorNames[strings.ToLower(strings.TrimSpace(token))]; ok {
		return name
	}
	return token
}

func tagAttr(tag string, re *regexp.Regexp) string {
	m := re.FindStringSubmatch(tag)
	if m == nil {
		return ""
	}
	return m[1]
}
