// Package component maps changed paths to affected components via a
// declarative prefix-rule table.
package component

import (
	"fmt"
	"sort"
	"strings"

	"git.home.luguber.info/inful/shipwright/internal/changeset"
)

// Spec pairs a stable component identifier with its path-prefix
// predicates. Declared once at startup, immutable thereafter.
type Spec struct {
	ID       string
	Prefixes []string
}

// AffectedSet maps component IDs to "is affected", derived once per run.
type AffectedSet map[string]bool

// Affected reports whether the given component is affected.
func (a AffectedSet) Affected(id string) bool { return a[id] }

// Any reports whether at least one component is affected.
func (a AffectedSet) Any() bool {
	for _, affected := range a {
		if affected {
			return true
		}
	}
	return false
}

// AffectedIDs returns the affected component IDs in sorted order.
func (a AffectedSet) AffectedIDs() []string {
	ids := make([]string, 0, len(a))
	for id, affected := range a {
		if affected {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// SpecError reports a malformed component table. Table errors indicate a
// setup defect and are fatal to the whole run before any lane starts.
type SpecError struct {
	ID     string
	Reason string
}

func (e *SpecError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("component spec: %s", e.Reason)
	}
	return fmt.Sprintf("component spec %q: %s", e.ID, e.Reason)
}

// ValidateSpecs checks the component table for setup defects: empty IDs,
// duplicate IDs, missing or blank prefixes.
func ValidateSpecs(specs []Spec) error {
	if len(specs) == 0 {
		return &SpecError{Reason: "no components declared"}
	}
	seen := make(map[string]struct{}, len(specs))
	for _, spec := range specs {
		if strings.TrimSpace(spec.ID) == "" {
			return &SpecError{Reason: "empty component id"}
		}
		if _, dup := seen[spec.ID]; dup {
			return &SpecError{ID: spec.ID, Reason: "duplicate component id"}
		}
		seen[spec.ID] = struct{}{}
		if len(spec.Prefixes) == 0 {
			return &SpecError{ID: spec.ID, Reason: "no path prefixes declared"}
		}
		for _, p := range spec.Prefixes {
			if strings.TrimSpace(p) == "" {
				return &SpecError{ID: spec.ID, Reason: "blank path prefix"}
			}
		}
	}
	return nil
}

// Classify derives the affected set for a change set. A component is
// affected iff the change set is the All sentinel or at least one changed
// path starts with one of its prefixes. Matching is case-sensitive over
// slash-normalized, whitespace-trimmed paths. Pure: no I/O, same inputs
// always yield the same result.
func Classify(cs changeset.ChangeSet, specs []Spec) AffectedSet {
	affected := make(AffectedSet, len(specs))
	for _, spec := range specs {
		affected[spec.ID] = cs.IsAll() || matchesAny(cs.Paths(), spec.Prefixes)
	}
	return affected
}

func matchesAny(paths, prefixes []string) bool {
	for _, path := range paths {
		path = strings.ReplaceAll(strings.TrimSpace(path), "\\", "/")
		for _, prefix := range prefixes {
			if strings.HasPrefix(path, prefix) {
				return true
			}
		}
	}
	return false
}
