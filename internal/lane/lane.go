// Package lane runs one component's ordered build steps against external
// tooling. A lane is the test→build→push→deploy sequence; each step is a
// black-box command invocation with a bounded wait.
package lane

import (
	"time"
)

// StepName identifies one of the ordered lane steps.
type StepName string

const (
	StepTest   StepName = "test"
	StepBuild  StepName = "build"
	StepPush   StepName = "push"
	StepDeploy StepName = "deploy"
)

// StepOrder is the strict in-lane execution order.
var StepOrder = []StepName{StepTest, StepBuild, StepPush, StepDeploy}

// fatal reports whether a failure in the step stops the lane. A test
// failure is deliberately non-fatal: the lane logs it and proceeds.
// This replicates the source pipeline's forward-progress policy and is
// observable behavior, not something to tighten up.
func fatal(step StepName) bool { return step != StepTest }

// Command is one step's external invocation. Argv elements may contain
// the {component} and {version} placeholders. An empty Argv means the
// step is not configured and is skipped.
type Command struct {
	Argv    []string
	Timeout time.Duration
}

// Spec holds everything one lane needs: the component identifier and the
// per-step commands. Immutable during the run.
type Spec struct {
	Component string
	Steps     map[StepName]Command
}

// Status is the terminal state of a lane.
type Status string

const (
	StatusSkipped   Status = "skipped"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Result is the outcome of exactly one lane invocation.
type Result struct {
	Component   string
	Status      Status
	FailedStep  StepName // set when Status is StatusFailed
	Reason      string   // diagnostic text for the failed step
	TestWarning string   // non-fatal test step failure, if any
	Duration    time.Duration
}

// Skipped builds the result for a component whose lane never ran.
func Skipped(component string) Result {
	return Result{Component: component, Status: StatusSkipped}
}
