// Package metrics provides observability hooks for orchestration runs.
//
// It implements the Null Object pattern: components receive a Recorder
// through dependency injection and default to NoopRecorder, so metrics
// collection never requires nil checks at call sites. When a Pushgateway
// is configured, PrometheusRecorder collects lane and step metrics and
// pushes them once at the end of the run (the process is one-shot, so
// scrape-style exposition does not apply).
package metrics
