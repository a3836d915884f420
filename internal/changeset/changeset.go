// Package changeset turns a commit range into the set of changed file paths.
//
// The set has two mutually exclusive representations: a concrete list of
// repository-relative paths, or the All sentinel meaning "treat everything
// as changed". All is used whenever the diff cannot be computed, on the
// principle that an uncertain change set is safer treated as "rebuild
// everything" than as "rebuild nothing".
package changeset

import (
	"sort"
	"strings"
)

// ChangeSet is the set of file paths that differ between two commits,
// or the All sentinel. Values are immutable once constructed.
type ChangeSet struct {
	all   bool
	paths []string
}

// All returns the sentinel change set where every path counts as changed.
func All() ChangeSet {
	return ChangeSet{all: true}
}

// FromPaths builds a concrete change set. Paths are trimmed, normalized to
// forward slashes, deduplicated and sorted; empty entries are dropped.
// Raw diff output tends to carry trailing whitespace, so normalization
// happens here rather than in every consumer.
func FromPaths(paths []string) ChangeSet {
	seen := make(map[string]struct{}, len(paths))
	normalized := make([]string, 0, len(paths))
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		p = strings.ReplaceAll(p, "\\", "/")
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		normalized = append(normalized, p)
	}
	sort.Strings(normalized)
	return ChangeSet{paths: normalized}
}

// IsAll reports whether this is the "everything changed" sentinel.
func (cs ChangeSet) IsAll() bool { return cs.all }

// IsEmpty reports whether the set is a concrete, zero-path set. An empty
// set is a legitimate no-op run, distinct from All.
func (cs ChangeSet) IsEmpty() bool { return !cs.all && len(cs.paths) == 0 }

// Paths returns the concrete path list. It is nil for the All sentinel.
// Callers must not mutate the returned slice.
func (cs ChangeSet) Paths() []string { return cs.paths }

func (cs ChangeSet) String() string {
	if cs.all {
		return "ALL"
	}
	return strings.Join(cs.paths, ",")
}
