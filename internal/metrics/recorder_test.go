package metrics

import (
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// TestNoopRecorderSafe ensures every hook is callable on the zero value.
func TestNoopRecorderSafe(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.ObserveStepDuration("serving", "build", time.Second)
	r.ObserveLaneDuration("serving", time.Second)
	r.ObserveRunDuration(time.Second)
	r.IncStepResult("serving", "test", ResultWarning)
	r.IncLaneResult("serving", ResultSuccess)
	r.IncRunOutcome("succeeded")
	r.SetAffectedComponents(2)
}

func TestPrometheusRecorderRegistersAndCounts(t *testing.T) {
	reg := prom.NewRegistry()
	r := NewPrometheusRecorder(reg)

	r.ObserveStepDuration("serving", "build", 2*time.Second)
	r.ObserveLaneDuration("serving", 5*time.Second)
	r.ObserveRunDuration(6 * time.Second)
	r.IncStepResult("serving", "push", ResultFatal)
	r.IncLaneResult("serving", ResultFatal)
	r.IncRunOutcome("failed")
	r.SetAffectedComponents(1)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	names := make(map[string]bool, len(families))
	for _, mf := range families {
		names[mf.GetName()] = true
	}
	for _, want := range []string{
		"shipwright_step_duration_seconds",
		"shipwright_lane_duration_seconds",
		"shipwright_run_duration_seconds",
		"shipwright_step_results_total",
		"shipwright_lane_results_total",
		"shipwright_run_outcomes_total",
		"shipwright_affected_components",
	} {
		if !names[want] {
			t.Errorf("metric %s not registered", want)
		}
	}
}

func TestPrometheusRecorderNilSafe(t *testing.T) {
	var p *PrometheusRecorder
	p.ObserveStepDuration("c", "s", time.Second)
	p.IncLaneResult("c", ResultSuccess)
	if err := p.Push("http://localhost:9091", "shipwright"); err != nil {
		t.Errorf("nil push must be a no-op, got %v", err)
	}
}
