package lane

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"git.home.luguber.info/inful/shipwright/internal/version"
)

// fakeRunner scripts per-step outcomes and records invocations.
type fakeRunner struct {
	mu       sync.Mutex
	failures map[string]error // first argv element -> error
	calls    [][]string
}

func (f *fakeRunner) Run(_ context.Context, argv []string, _ time.Duration) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, argv)
	if err, ok := f.failures[argv[0]]; ok {
		return "tool output", err
	}
	return "ok", nil
}

func (f *fakeRunner) argv0s() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var names []string
	for _, c := range f.calls {
		names = append(names, c[0])
	}
	return names
}

func fullSpec(component string) Spec {
	steps := make(map[StepName]Command, len(StepOrder))
	for _, step := range StepOrder {
		steps[step] = Command{Argv: []string{string(step) + "-tool", "{component}", "{version}"}}
	}
	return Spec{Component: component, Steps: steps}
}

var testVersion = version.ResolvedVersion{Value: "1.2.3", Branch: "main"}

func TestExecuteAllStepsInOrder(t *testing.T) {
	runner := &fakeRunner{}
	result := NewExecutor(runner, nil).Execute(context.Background(), fullSpec("serving"), testVersion)

	if result.Status != StatusSucceeded {
		t.Fatalf("expected success, got %+v", result)
	}
	want := []string{"test-tool", "build-tool", "push-tool", "deploy-tool"}
	got := runner.argv0s()
	if len(got) != len(want) {
		t.Fatalf("expected %d steps, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("step %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestExecuteExpandsPlaceholders(t *testing.T) {
	runner := &fakeRunner{}
	NewExecutor(runner, nil).Execute(context.Background(), fullSpec("serving"), testVersion)

	for _, call := range runner.calls {
		if call[1] != "serving" || call[2] != "1.2.3" {
			t.Errorf("placeholders not expanded: %v", call)
		}
	}
}

func TestExecuteTestFailureIsNonFatal(t *testing.T) {
	runner := &fakeRunner{failures: map[string]error{"test-tool": errors.New("2 tests failed")}}
	result := NewExecutor(runner, nil).Execute(context.Background(), fullSpec("serving"), testVersion)

	if result.Status != StatusSucceeded {
		t.Fatalf("test failure must not fail the lane, got %+v", result)
	}
	if result.TestWarning == "" {
		t.Error("test failure must be recorded as a warning")
	}
	if got := runner.argv0s(); len(got) != 4 {
		t.Errorf("remaining steps must still run, got %v", got)
	}
}

func TestExecutePushFailureIsFatal(t *testing.T) {
	runner := &fakeRunner{failures: map[string]error{"push-tool": errors.New("registry unavailable")}}
	result := NewExecutor(runner, nil).Execute(context.Background(), fullSpec("serving"), testVersion)

	if result.Status != StatusFailed {
		t.Fatalf("expected failure, got %+v", result)
	}
	if result.FailedStep != StepPush {
		t.Errorf("expected failed step push, got %s", result.FailedStep)
	}
	if result.Reason == "" {
		t.Error("expected a diagnostic reason")
	}
	// deploy must not run after a fatal push failure
	for _, name := range runner.argv0s() {
		if name == "deploy-tool" {
			t.Error("deploy ran after fatal push failure")
		}
	}
}

func TestExecuteBuildAndDeployFailuresAreFatal(t *testing.T) {
	for _, step := range []StepName{StepBuild, StepDeploy} {
		t.Run(string(step), func(t *testing.T) {
			runner := &fakeRunner{failures: map[string]error{string(step) + "-tool": fmt.Errorf("%s broke", step)}}
			result := NewExecutor(runner, nil).Execute(context.Background(), fullSpec("x"), testVersion)
			if result.Status != StatusFailed || result.FailedStep != step {
				t.Errorf("expected fatal %s failure, got %+v", step, result)
			}
		})
	}
}

func TestExecuteSkipsUnconfiguredSteps(t *testing.T) {
	runner := &fakeRunner{}
	spec := Spec{Component: "docs", Steps: map[StepName]Command{
		StepBuild: {Argv: []string{"build-tool"}},
	}}
	result := NewExecutor(runner, nil).Execute(context.Background(), spec, testVersion)

	if result.Status != StatusSucceeded {
		t.Fatalf("expected success, got %+v", result)
	}
	if got := runner.argv0s(); len(got) != 1 || got[0] != "build-tool" {
		t.Errorf("only configured steps should run, got %v", got)
	}
}

func TestExecuteCancellationStopsAtStepBoundary(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := &fakeRunner{}
	result := NewExecutor(runner, nil).Execute(ctx, fullSpec("serving"), testVersion)

	if result.Status != StatusFailed {
		t.Fatalf("canceled lane must report failure, got %+v", result)
	}
	if len(runner.argv0s()) != 0 {
		t.Error("no step should start after cancellation")
	}
}

func TestExecRunnerTimeoutIsFailure(t *testing.T) {
	runner := &ExecRunner{}
	_, err := runner.Run(context.Background(), []string{"sleep", "5"}, 50*time.Millisecond)
	if err == nil {
		t.Fatal("expected timeout to surface as a failure")
	}
}

func TestExecRunnerCapturesOutput(t *testing.T) {
	runner := &ExecRunner{}
	out, err := runner.Run(context.Background(), []string{"sh", "-c", "echo to-stdout; echo to-stderr >&2"}, time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out == "" {
		t.Fatal("expected captured output")
	}
}
