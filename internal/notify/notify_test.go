package notify

import (
	"strings"
	"testing"
	"time"

	"git.home.luguber.info/inful/shipwright/internal/component"
	"git.home.luguber.info/inful/shipwright/internal/lane"
	"git.home.luguber.info/inful/shipwright/internal/orchestrate"
	"git.home.luguber.info/inful/shipwright/internal/version"
)

func baseSummary() orchestrate.RunSummary {
	return orchestrate.RunSummary{
		RunID:    "run-1",
		Version:  version.ResolvedVersion{Value: "1.2.3", Branch: "main"},
		Affected: component.AffectedSet{"serving": true, "training": false},
		Lanes: []lane.Result{
			{Component: "serving", Status: lane.StatusSucceeded, Duration: 1500 * time.Millisecond},
			{Component: "training", Status: lane.StatusSkipped},
		},
		Status: orchestrate.StatusSucceeded,
	}
}

func TestSummarizeSuccess(t *testing.T) {
	report := Summarizer{}.Summarize(baseSummary())

	for _, want := range []string{
		"all affected components deployed successfully",
		"Version: 1.2.3 (branch main)",
		"Affected components: serving",
		"serving",
		"skipped",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q:\n%s", want, report)
		}
	}
	if strings.Contains(report, "FALLBACK") {
		t.Error("non-fallback version must not be flagged")
	}
}

func TestSummarizeNoOpIsDistinct(t *testing.T) {
	s := baseSummary()
	s.Status = orchestrate.StatusNoOp
	s.Affected = component.AffectedSet{"serving": false, "training": false}
	s.Lanes = []lane.Result{lane.Skipped("serving"), lane.Skipped("training")}

	report := Summarizer{}.Summarize(s)
	if !strings.Contains(report, "no components affected") {
		t.Errorf("no-op report must say so:\n%s", report)
	}
	if strings.Contains(report, "FAILED") {
		t.Error("no-op is not a failure")
	}
}

func TestSummarizeFailureListsStepAndReason(t *testing.T) {
	s := baseSummary()
	s.Status = orchestrate.StatusFailed
	s.Lanes = []lane.Result{
		{Component: "serving", Status: lane.StatusFailed, FailedStep: lane.StepPush, Reason: "registry unavailable"},
		{Component: "training", Status: lane.StatusSucceeded, Duration: time.Second},
	}
	s.Affected = component.AffectedSet{"serving": true, "training": true}

	report := Summarizer{}.Summarize(s)
	for _, want := range []string{
		"one or more lanes FAILED",
		"FAILED at push: registry unavailable",
		"nothing is rolled back automatically",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q:\n%s", want, report)
		}
	}
}

func TestSummarizeFlagsFallbackVersion(t *testing.T) {
	s := baseSummary()
	s.Version = version.ResolvedVersion{Value: "0.0.73", Branch: "develop", Fallback: true}

	report := Summarizer{}.Summarize(s)
	if !strings.Contains(report, "FALLBACK") || !strings.Contains(report, "not traceable") {
		t.Errorf("fallback version must be flagged explicitly:\n%s", report)
	}
}

func TestSummarizeTestWarningSurvives(t *testing.T) {
	s := baseSummary()
	s.Lanes[0].TestWarning = "2 tests failed"

	report := Summarizer{}.Summarize(s)
	if !strings.Contains(report, "tests failed but the lane continued") {
		t.Errorf("test warning must be reported:\n%s", report)
	}
}

func TestSummarizeVerifyHints(t *testing.T) {
	s := baseSummary()
	hints := map[string]string{"serving": "kubectl port-forward svc/serving 8080:80"}

	report := Summarizer{Hints: hints}.Summarize(s)
	if !strings.Contains(report, "kubectl port-forward svc/serving 8080:80") {
		t.Errorf("deployed component hint missing:\n%s", report)
	}
}

func TestSummarizePure(t *testing.T) {
	s := baseSummary()
	a := Summarizer{}.Summarize(s)
	b := Summarizer{}.Summarize(s)
	if a != b {
		t.Error("summarize must be deterministic for the same summary")
	}
}
