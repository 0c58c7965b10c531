package generator

import (
	"strings"
	"unicode"

	"github.com/sabrish/power-platform-solution-blueprint-sub000/pkg/blueprint"
)

// systemFieldNames is the framework-owned bookkeeping dropped by the
// system-field exclusion: audit, ownership, versioning and import metadata.
var systemFieldNames = map[string]struct{}{
	"createdby":                 {},
	"createdon":                 {},
	"createdonbehalfby":         {},
	"modifiedby":                {},
	"modifiedon":                {},
	"modifiedonbehalfby":        {},
	"overriddencreatedon":       {},
	"importsequencenumber":      {},
	"ownerid":                   {},
	"owningbusinessunit":        {},
	"owningteam":                {},
	"owninguser":                {},
	"timezoneruleversionnumber": {},
	"utcconversiontimezonecode": {},
	"versionnumber":             {},
}

// AttributeFilter narrows entity schemas to the attributes in scope for one
// run. Custom entities keep their full attribute list; system entities keep
// only the attributes the solution actually ships. An optional second pass
// drops framework-owned system fields from every entity.
type AttributeFilter struct {
	solutionAttrs map[string]struct{}
	excludeSystem bool
}

// NewAttributeFilter builds the per-run filter from the discovered attribute
// id set and the scope's system-field exclusion flag.
func NewAttributeFilter(solutionAttributeIDs []string, excludeSystemFields bool) *AttributeFilter {
	ids := make(map[string]struct{}, len(solutionAttributeIDs))
	for _, id := range solutionAttributeIDs {
		ids[NormalizeID(id)] = struct{}{}
	}
	return &AttributeFilter{solutionAttrs: ids, excludeSystem: excludeSystemFields}
}

// Apply returns the attributes of e that survive filtering. Solution scoping
// runs first and system-field exclusion second: a system field the caller
// asked to exclude is dropped even when the solution happens to ship it.
func (f *AttributeFilter) Apply(e *blueprint.EntityBlueprint) []blueprint.Attribute {
	attrs := e.Attributes
	if !e.IsCustom {
		attrs = f.scopeToSolution(attrs)
	}
	if f.excludeSystem {
		attrs = dropSystemFields(attrs)
	}
	if attrs == nil {
		attrs = []blueprint.Attribute{}
	}
	return attrs
}

func (f *AttributeFilter) scopeToSolution(attrs []blueprint.Attribute) []blueprint.Attribute {
	kept := make([]blueprint.Attribute, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := f.solutionAttrs[NormalizeID(attr.MetadataID)]; ok {
			kept = append(kept, attr)
		}
	}
	return kept
}

func dropSystemFields(attrs []blueprint.Attribute) []blueprint.Attribute {
	kept := make([]blueprint.Attribute, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := systemFieldNames[strings.ToLower(attr.LogicalName)]; ok {
			continue
		}
		kept = append(kept, attr)
	}
	return kept
}

// NormalizeID lowercases an identifier and strips delimiter punctuation so
// that ids rendered with different decoration conventions, such as braced
// uppercase GUIDs against bare lowercase ones, compare equal.
func NormalizeID(id string) string {
	var b strings.Builder
	b.Grow(len(id))
	for _, r := range id {
		switch r {
		case '{', '}', '-', '_', '.', ' ':
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
