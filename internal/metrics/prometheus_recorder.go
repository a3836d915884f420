package metrics

import (
	"fmt"
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once               sync.Once
	registry           *prom.Registry
	stepDuration       *prom.HistogramVec
	laneDuration       *prom.HistogramVec
	runDuration        prom.Histogram
	stepResults        *prom.CounterVec
	laneResults        *prom.CounterVec
	runOutcome         *prom.CounterVec
	affectedComponents prom.Gauge
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{registry: reg}
	pr.once.Do(func() {
		pr.stepDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "shipwright",
			Name:      "step_duration_seconds",
			Help:      "Duration of individual lane steps",
			Buckets:   prom.DefBuckets,
		}, []string{"component", "step"})
		pr.laneDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "shipwright",
			Name:      "lane_duration_seconds",
			Help:      "Duration of component lanes",
			Buckets:   prom.DefBuckets,
		}, []string{"component"})
		pr.runDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "shipwright",
			Name:      "run_duration_seconds",
			Help:      "Total orchestration run duration",
			Buckets:   prom.DefBuckets,
		})
		pr.stepResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "shipwright",
			Name:      "step_results_total",
			Help:      "Step result counts by outcome",
		}, []string{"component", "step", "result"})
		pr.laneResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "shipwright",
			Name:      "lane_results_total",
			Help:      "Lane result counts by outcome",
		}, []string{"component", "result"})
		pr.runOutcome = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "shipwright",
			Name:      "run_outcomes_total",
			Help:      "Run outcomes by final status",
		}, []string{"outcome"})
		pr.affectedComponents = prom.NewGauge(prom.GaugeOpts{
			Namespace: "shipwright",
			Name:      "affected_components",
			Help:      "Number of components affected by the change set",
		})
		reg.MustRegister(pr.stepDuration, pr.laneDuration, pr.runDuration,
			pr.stepResults, pr.laneResults, pr.runOutcome, pr.affectedComponents)
	})
	return pr
}

func (p *PrometheusRecorder) ObserveStepDuration(component, step string, d time.Duration) {
	if p == nil || p.stepDuration == nil {
		return
	}
	p.stepDuration.WithLabelValues(component, step).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveLaneDuration(component string, d time.Duration) {
	if p == nil || p.laneDuration == nil {
		return
	}
	p.laneDuration.WithLabelValues(component).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveRunDuration(d time.Duration) {
	if p == nil || p.runDuration == nil {
		return
	}
	p.runDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStepResult(component, step string, result ResultLabel) {
	if p == nil || p.stepResults == nil {
		return
	}
	p.stepResults.WithLabelValues(component, step, string(result)).Inc()
}

func (p *PrometheusRecorder) IncLaneResult(component string, result ResultLabel) {
	if p == nil || p.laneResults == nil {
		return
	}
	p.laneResults.WithLabelValues(component, string(result)).Inc()
}

func (p *PrometheusRecorder) IncRunOutcome(outcome string) {
	if p == nil || p.runOutcome == nil {
		return
	}
	p.runOutcome.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) SetAffectedComponents(n int) {
	if p == nil || p.affectedComponents == nil {
		return
	}
	p.affectedComponents.Set(float64(n))
}

// Push sends the collected metrics to a Prometheus Pushgateway. The
// orchestrator is a one-shot process, so push-at-exit replaces the usual
// scrape endpoint.
func (p *PrometheusRecorder) Push(gatewayURL, job string) error {
	if p == nil || p.registry == nil {
		return nil
	}
	if err := push.New(gatewayURL, job).Gatherer(p.registry).Push(); err != nil {
		return fmt.Errorf("push metrics to %s: %w", gatewayURL, err)
	}
	return nil
}
