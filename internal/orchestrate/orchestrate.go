// Package orchestrate runs one build/deploy lane per affected component
// in a fork-join pattern and aggregates the outcomes into a run summary.
package orchestrate

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"time"

	"git.home.luguber.info/inful/shipwright/internal/component"
	"git.home.luguber.info/inful/shipwright/internal/lane"
	"git.home.luguber.info/inful/shipwright/internal/logfields"
	"git.home.luguber.info/inful/shipwright/internal/metrics"
	"git.home.luguber.info/inful/shipwright/internal/version"
)

// OverallStatus is the aggregated run outcome.
type OverallStatus string

const (
	// StatusNoOp means zero components were affected. A no-op run is a
	// success, not a failure.
	StatusNoOp      OverallStatus = "noop"
	StatusSucceeded OverallStatus = "succeeded"
	StatusFailed    OverallStatus = "failed"
)

// RunSummary aggregates all lane outcomes for one orchestration run.
type RunSummary struct {
	RunID    string
	Version  version.ResolvedVersion
	Affected component.AffectedSet
	Lanes    []lane.Result // one entry per declared component, sorted by ID
	Status   OverallStatus
	Duration time.Duration
}

// OverallFailed reports whether the process must exit non-zero.
func (s RunSummary) OverallFailed() bool { return s.Status == StatusFailed }

// LaneExecutor runs a single component lane to a terminal state.
type LaneExecutor interface {
	Execute(ctx context.Context, spec lane.Spec, v version.ResolvedVersion) lane.Result
}

// EventSink receives run lifecycle events for diagnostics. Appends are
// best-effort: a sink failure is logged, never surfaced as a run failure.
type EventSink interface {
	Append(ctx context.Context, runID, eventType string, payload []byte, metadata map[string]string) error
}

// Orchestrator fans one lane out per affected component and joins all
// lanes before producing the summary.
type Orchestrator struct {
	executor    LaneExecutor
	recorder    metrics.Recorder
	events      EventSink
	concurrency int
}

// Option configures orchestrator behavior.
type Option func(*Orchestrator)

// WithRecorder attaches a metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(o *Orchestrator) {
		if r != nil {
			o.recorder = r
		}
	}
}

// WithEventSink attaches a run-event sink.
func WithEventSink(s EventSink) Option {
	return func(o *Orchestrator) { o.events = s }
}

// WithConcurrency bounds the number of lanes running at once. Zero or
// negative means one goroutine per affected component.
func WithConcurrency(n int) Option {
	return func(o *Orchestrator) { o.concurrency = n }
}

// New creates an orchestrator around the given lane executor.
func New(executor LaneExecutor, options ...Option) *Orchestrator {
	o := &Orchestrator{executor: executor, recorder: metrics.NoopRecorder{}}
	for _, opt := range options {
		opt(o)
	}
	return o
}

// Run executes the lanes for every affected component concurrently.
// Components whose affected entry is false produce a Skipped result
// without invoking the executor: no build, no test, no deploy side
// effects for untouched components. Lanes never cancel each other; the
// run waits for all of them to reach a terminal state. Cancellation of
// ctx stops in-flight lanes at their next step boundary.
func (o *Orchestrator) Run(ctx context.Context, runID string, affected component.AffectedSet, v version.ResolvedVersion, specs []lane.Spec) RunSummary {
	started := time.Now()
	sorted := make([]lane.Spec, len(specs))
	copy(sorted, specs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Component < sorted[j].Component })

	o.recorder.SetAffectedComponents(len(affected.AffectedIDs()))
	o.appendEvent(ctx, runID, "run.started", map[string]any{
		"version":  v.Value,
		"fallback": v.Fallback,
		"affected": affected.AffectedIDs(),
	})

	var active []lane.Spec
	skipped := make(map[string]lane.Result)
	for _, spec := range sorted {
		if affected.Affected(spec.Component) {
			active = append(active, spec)
			continue
		}
		skipped[spec.Component] = lane.Skipped(spec.Component)
		o.recorder.IncLaneResult(spec.Component, metrics.ResultSkipped)
	}

	slog.Info("Starting lanes",
		logfields.RunID(runID),
		logfields.Version(v.Value),
		slog.Int("affected", len(active)),
		slog.Int("skipped", len(skipped)))

	executed := runOrdered(active, o.concurrency, func(spec lane.Spec) lane.Result {
		result := o.executor.Execute(ctx, spec, v)
		o.appendEvent(ctx, runID, "lane.finished", map[string]any{
			"component":    result.Component,
			"status":       string(result.Status),
			"failed_step":  string(result.FailedStep),
			"reason":       result.Reason,
			"test_warning": result.TestWarning,
		})
		return result
	})

	results := make([]lane.Result, 0, len(sorted))
	byComponent := make(map[string]lane.Result, len(executed))
	for _, r := range executed {
		byComponent[r.Component] = r
	}
	for _, spec := range sorted {
		if r, ok := byComponent[spec.Component]; ok {
			results = append(results, r)
		} else {
			results = append(results, skipped[spec.Component])
		}
	}

	summary := RunSummary{
		RunID:    runID,
		Version:  v,
		Affected: affected,
		Lanes:    results,
		Status:   aggregate(results),
		Duration: time.Since(started),
	}

	o.recorder.ObserveRunDuration(summary.Duration)
	o.recorder.IncRunOutcome(string(summary.Status))
	o.appendEvent(ctx, runID, "run.finished", map[string]any{
		"status":      string(summary.Status),
		"duration_ms": summary.Duration.Milliseconds(),
	})

	slog.Info("Run finished",
		logfields.RunID(runID),
		slog.String("status", string(summary.Status)),
		logfields.DurationMS(float64(summary.Duration.Milliseconds())))
	return summary
}

// aggregate applies the summary rule: failed if any lane failed, noop if
// none ran, succeeded otherwise.
func aggregate(results []lane.Result) OverallStatus {
	ran := false
	for _, r := range results {
		switch r.Status {
		case lane.StatusFailed:
			return StatusFailed
		case lane.StatusSucceeded:
			ran = true
		}
	}
	if !ran {
		return StatusNoOp
	}
	return StatusSucceeded
}

func (o *Orchestrator) appendEvent(ctx context.Context, runID, eventType string, payload map[string]any) {
	if o.events == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Debug("Skipping unencodable run event", logfields.Error(err))
		return
	}
	if err := o.events.Append(ctx, runID, eventType, data, nil); err != nil {
		slog.Warn("Failed to journal run event",
			logfields.RunID(runID), slog.String("event", eventType), logfields.Error(err))
	}
}
