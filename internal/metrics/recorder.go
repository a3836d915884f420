package metrics

import "time"

// ResultLabel enumerates step and lane result categories for counters.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultWarning ResultLabel = "warning"
	ResultFatal   ResultLabel = "fatal"
	ResultSkipped ResultLabel = "skipped"
)

// Recorder defines observability hooks for run, lane and step metrics.
// Implementations may forward to Prometheus, OpenTelemetry, etc. The
// NoopRecorder makes all hooks safe to call when metrics are not
// configured.
type Recorder interface {
	ObserveStepDuration(component string, step string, d time.Duration)
	ObserveLaneDuration(component string, d time.Duration)
	ObserveRunDuration(d time.Duration)
	IncStepResult(component, step string, result ResultLabel)
	IncLaneResult(component string, result ResultLabel)
	IncRunOutcome(outcome string) // outcome: succeeded|failed|noop
	SetAffectedComponents(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics are
// not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStepDuration(string, string, time.Duration) {}
func (NoopRecorder) ObserveLaneDuration(string, time.Duration)         {}
func (NoopRecorder) ObserveRunDuration(time.Duration)                  {}
func (NoopRecorder) IncStepResult(string, string, ResultLabel)         {}
func (NoopRecorder) IncLaneResult(string, ResultLabel)                 {}
func (NoopRecorder) IncRunOutcome(string)                              {}
func (NoopRecorder) SetAffectedComponents(int)                         {}
