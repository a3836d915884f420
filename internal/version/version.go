// Package version derives a semantic version for the current commit by
// delegating to an external versioning oracle, with a deterministic
// build-counter fallback when the oracle is unreachable or returns
// garbage. A fallback version is still a valid image tag; it is flagged
// so reporting can surface that it is not traceable to source history.
package version

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"

	"git.home.luguber.info/inful/shipwright/internal/logfields"
)

// ResolvedVersion is the per-run version value. Created once, consumed
// read-only by every lane, never mutated afterward.
type ResolvedVersion struct {
	Value    string
	Branch   string
	Fallback bool
}

// OracleResult is the structured output of the versioning oracle.
type OracleResult struct {
	FullSemVer    string `json:"FullSemVer"`
	BranchName    string `json:"BranchName"`
	PreReleaseTag string `json:"PreReleaseTag"`
}

// IsPrerelease reports whether the oracle computed a prerelease version.
func (r OracleResult) IsPrerelease() bool { return r.PreReleaseTag != "" }

// Oracle is the external semantic-version collaborator. VerboseInfo is a
// diagnostics-only query; its output is logged, never parsed for
// decisions.
type Oracle interface {
	Resolve(ctx context.Context) (OracleResult, error)
	VerboseInfo(ctx context.Context) (string, error)
}

// OracleError wraps an oracle invocation failure with any captured
// collaborator output.
type OracleError struct {
	Op     string
	Output string
	Err    error
}

func (e *OracleError) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("version oracle %s: %v: %s", e.Op, e.Err, e.Output)
	}
	return fmt.Sprintf("version oracle %s: %v", e.Op, e.Err)
}

func (e *OracleError) Unwrap() error { return e.Err }

// Resolver wraps the oracle with validation and the fallback policy.
type Resolver struct {
	oracle       Oracle
	branchHint   string // branch used when the oracle cannot report one
	buildCounter string // CI numeric build counter for the fallback value
}

// NewResolver creates a resolver. branchHint is the branch name the run
// was triggered for; buildCounter is the CI run counter used to build the
// fallback tag (empty means 0).
func NewResolver(oracle Oracle, branchHint, buildCounter string) *Resolver {
	return &Resolver{oracle: oracle, branchHint: branchHint, buildCounter: buildCounter}
}

// Resolve asks the oracle for the version of the current commit. On any
// oracle failure or a non-parseable result it returns the deterministic
// fallback instead of an error; callers must treat a fallback version as
// valid input. The resolver adds no nondeterminism of its own: the same
// oracle answer always maps to the same ResolvedVersion.
func (r *Resolver) Resolve(ctx context.Context) ResolvedVersion {
	result, err := r.oracle.Resolve(ctx)
	if err != nil {
		slog.Warn("Version oracle failed, using fallback version",
			logfields.Branch(r.branchHint), logfields.Error(err))
		return r.fallback()
	}

	value := strings.TrimSpace(result.FullSemVer)
	if _, parseErr := semver.NewVersion(value); parseErr != nil {
		slog.Warn("Version oracle returned non-parseable version, using fallback",
			logfields.Version(value), logfields.Error(parseErr))
		return r.fallback()
	}

	branch := result.BranchName
	if branch == "" {
		branch = r.branchHint
	}
	return ResolvedVersion{Value: value, Branch: branch}
}

// fallback builds the surrogate version from the CI build counter. The
// 0.0.<counter> shape is monotone per CI job and obviously non-semantic,
// so a human never mistakes it for a tag derived from history.
func (r *Resolver) fallback() ResolvedVersion {
	counter := strings.TrimSpace(r.buildCounter)
	if _, err := strconv.Atoi(counter); err != nil {
		counter = "0"
	}
	return ResolvedVersion{
		Value:    "0.0." + counter,
		Branch:   r.branchHint,
		Fallback: true,
	}
}

// LogVerboseInfo fetches the oracle's diagnostic dump and logs it at
// debug level. Failures here are ignored beyond a log line: the query
// exists purely for humans.
func (r *Resolver) LogVerboseInfo(ctx context.Context) {
	info, err := r.oracle.VerboseInfo(ctx)
	if err != nil {
		slog.Debug("Version oracle verbose info unavailable", logfields.Error(err))
		return
	}
	slog.Debug("Version oracle verbose info", slog.String("info", info))
}
