// Package notify turns a run summary into a human-readable report and
// optionally publishes it to a NATS subject. Formatting makes no
// decisions; it only presents what the orchestrator recorded.
package notify

import (
	"fmt"
	"strings"
	"time"

	"git.home.luguber.info/inful/shipwright/internal/lane"
	"git.home.luguber.info/inful/shipwright/internal/orchestrate"
)

// Summarizer formats run reports. Hints maps component IDs to
// access/verification instructions shown for successfully deployed
// components.
type Summarizer struct {
	Hints map[string]string
}

// Summarize renders the report. Pure: same summary, same text. The
// report always distinguishes a no-op run from an all-green run from a
// run with failed lanes, and flags fallback versioning so a
// build-counter tag is never mistaken for a traceable version.
func (s Summarizer) Summarize(summary orchestrate.RunSummary) string {
	var b strings.Builder

	switch summary.Status {
	case orchestrate.StatusNoOp:
		fmt.Fprintf(&b, "Run %s: no components affected, nothing to do.\n", summary.RunID)
	case orchestrate.StatusSucceeded:
		fmt.Fprintf(&b, "Run %s: all affected components deployed successfully.\n", summary.RunID)
	case orchestrate.StatusFailed:
		fmt.Fprintf(&b, "Run %s: one or more lanes FAILED.\n", summary.RunID)
	}

	fmt.Fprintf(&b, "Version: %s (branch %s)", summary.Version.Value, summary.Version.Branch)
	if summary.Version.Fallback {
		b.WriteString(" [FALLBACK: build-counter version, not traceable to source history]")
	}
	b.WriteString("\n")

	affected := summary.Affected.AffectedIDs()
	if len(affected) > 0 {
		fmt.Fprintf(&b, "Affected components: %s\n", strings.Join(affected, ", "))
	}

	partialFailure := false
	for _, r := range summary.Lanes {
		switch r.Status {
		case lane.StatusSkipped:
			fmt.Fprintf(&b, "  %-12s skipped (no relevant changes)\n", r.Component)
		case lane.StatusSucceeded:
			fmt.Fprintf(&b, "  %-12s succeeded in %s\n", r.Component, r.Duration.Round(time.Millisecond))
			if r.TestWarning != "" {
				fmt.Fprintf(&b, "               warning: tests failed but the lane continued: %s\n", r.TestWarning)
			}
			if hint, ok := s.Hints[r.Component]; ok {
				fmt.Fprintf(&b, "               verify: %s\n", hint)
			}
		case lane.StatusFailed:
			fmt.Fprintf(&b, "  %-12s FAILED at %s: %s\n", r.Component, r.FailedStep, r.Reason)
			if r.FailedStep == lane.StepPush || r.FailedStep == lane.StepDeploy {
				partialFailure = true
			}
		}
	}

	if partialFailure {
		b.WriteString("Note: earlier steps of failed lanes may have published artifacts; nothing is rolled back automatically.\n")
	}
	return b.String()
}
