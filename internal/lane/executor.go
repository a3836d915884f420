package lane

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"git.home.luguber.info/inful/shipwright/internal/logfields"
	"git.home.luguber.info/inful/shipwright/internal/metrics"
	"git.home.luguber.info/inful/shipwright/internal/version"
)

// Executor runs one lane's steps in strict order against a Runner.
type Executor struct {
	runner   Runner
	recorder metrics.Recorder
}

// NewExecutor creates an executor. A nil recorder defaults to noop.
func NewExecutor(runner Runner, recorder metrics.Recorder) *Executor {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &Executor{runner: runner, recorder: recorder}
}

// Execute runs spec's steps with the resolved version. Steps run
// strictly in order; a test failure is recorded as a warning and the
// lane proceeds, while build, push and deploy failures stop the lane.
// Cancellation is honored at step boundaries. Applied external side
// effects (pushed images, applied manifests) are never rolled back on a
// later failure; the summary calls that out instead.
func (e *Executor) Execute(ctx context.Context, spec Spec, v version.ResolvedVersion) Result {
	result := Result{Component: spec.Component, Status: StatusSucceeded}
	started := time.Now()
	defer func() {
		result.Duration = time.Since(started)
		e.recorder.ObserveLaneDuration(spec.Component, result.Duration)
		e.recorder.IncLaneResult(spec.Component, laneLabel(result))
	}()

	for _, step := range StepOrder {
		if err := ctx.Err(); err != nil {
			result.Status = StatusFailed
			result.FailedStep = step
			result.Reason = fmt.Sprintf("canceled before %s: %v", step, err)
			return result
		}

		cmd, ok := spec.Steps[step]
		if !ok || len(cmd.Argv) == 0 {
			slog.Debug("Step not configured, skipping",
				logfields.Component(spec.Component), logfields.Step(string(step)))
			continue
		}

		output, err := e.runStep(ctx, spec.Component, step, cmd, v)
		if err == nil {
			continue
		}

		diagnostic := strings.TrimSpace(err.Error())
		if output = strings.TrimSpace(output); output != "" {
			diagnostic = diagnostic + ": " + output
		}

		if !fatal(step) {
			// Tests completed with failures; the lane moves on. The
			// warning still reaches the summary so nobody mistakes
			// this for a green test run.
			slog.Warn("Test step failed, continuing lane",
				logfields.Component(spec.Component), logfields.Error(err))
			result.TestWarning = diagnostic
			continue
		}

		slog.Error("Lane step failed",
			logfields.Component(spec.Component),
			logfields.Step(string(step)),
			logfields.Error(err))
		result.Status = StatusFailed
		result.FailedStep = step
		result.Reason = diagnostic
		return result
	}

	return result
}

func (e *Executor) runStep(ctx context.Context, component string, step StepName, cmd Command, v version.ResolvedVersion) (string, error) {
	argv := expand(cmd.Argv, component, v.Value)
	slog.Info("Running step",
		logfields.Component(component),
		logfields.Step(string(step)),
		logfields.Version(v.Value))

	started := time.Now()
	output, err := e.runner.Run(ctx, argv, cmd.Timeout)
	d := time.Since(started)

	e.recorder.ObserveStepDuration(component, string(step), d)
	switch {
	case err == nil:
		e.recorder.IncStepResult(component, string(step), metrics.ResultSuccess)
	case fatal(step):
		e.recorder.IncStepResult(component, string(step), metrics.ResultFatal)
	default:
		e.recorder.IncStepResult(component, string(step), metrics.ResultWarning)
	}

	slog.Debug("Step finished",
		logfields.Component(component),
		logfields.Step(string(step)),
		logfields.DurationMS(float64(d.Milliseconds())),
		logfields.Error(err))
	return output, err
}

// expand substitutes the {component} and {version} placeholders in a
// command template.
func expand(argv []string, component, versionValue string) []string {
	replacer := strings.NewReplacer("{component}", component, "{version}", versionValue)
	expanded := make([]string, len(argv))
	for i, arg := range argv {
		expanded[i] = replacer.Replace(arg)
	}
	return expanded
}

func laneLabel(r Result) metrics.ResultLabel {
	switch r.Status {
	case StatusFailed:
		return metrics.ResultFatal
	case StatusSkipped:
		return metrics.ResultSkipped
	default:
		if r.TestWarning != "" {
			return metrics.ResultWarning
		}
		return metrics.ResultSuccess
	}
}
