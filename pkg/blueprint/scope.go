package blueprint

import (
	"fmt"
	"strings"
)

// ScopeKind selects how the component boundary of a run is resolved.
type ScopeKind string

const (
	// ScopeKindPublisher selects every solution owned by a publisher prefix.
	ScopeKindPublisher ScopeKind = "publisher"
	// ScopeKindSolutions selects an explicit set of solution ids.
	ScopeKindSolutions ScopeKind = "solutions"
)

// Scope is the publisher- or solution-based boundary for one generation run.
// It is immutable for the lifetime of the run.
type Scope struct {
	Kind            ScopeKind `json:"kind" yaml:"kind"`
	PublisherPrefix string    `json:"publisher_prefix,omitempty" yaml:"publisher_prefix,omitempty"`
	SolutionIDs     []string  `json:"solution_ids,omitempty" yaml:"solution_ids,omitempty"`

	IncludeSystemEntities bool `json:"include_system_entities" yaml:"include_system_entities"`
	ExcludeSystemFields   bool `json:"exclude_system_fields" yaml:"exclude_system_fields"`
}

// Validate reports configuration errors before any network activity happens.
func (s Scope) Validate() error {
	switch s.Kind {
	case ScopeKindPublisher:
		if strings.TrimSpace(s.PublisherPrefix) == "" {
			return fmt.Errorf("publisher scope requires a publisher prefix")
		}
	case ScopeKindSolutions:
		if len(s.SolutionIDs) == 0 {
			return fmt.Errorf("solution scope requires at least one solution id")
		}
		for _, id := range s.SolutionIDs {
			if strings.TrimSpace(id) == "" {
				return fmt.Errorf("solution scope contains an empty solution id")
			}
		}
	default:
		return fmt.Errorf("unknown scope kind %q", s.Kind)
	}
	return nil
}

// String renders the scope for progress and log messages.
func (s Scope) String() string {
	switch s.Kind {
	case ScopeKindPublisher:
		return fmt.Sprintf("publisher %q", s.PublisherPrefix)
	case ScopeKindSolutions:
		return fmt.Sprintf("%d solution(s)", len(s.SolutionIDs))
	default:
		return string(s.Kind)
	}
}
