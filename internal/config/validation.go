package config

import (
	"fmt"
	"time"

	"git.home.luguber.info/inful/shipwright/internal/component"
	"git.home.luguber.info/inful/shipwright/internal/lane"
)

// ValidationError reports a configuration defect with the offending
// field, so the operator can fix the file instead of guessing.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config %s: %s", e.Field, e.Reason)
}

var knownSteps = map[string]bool{
	string(lane.StepTest):   true,
	string(lane.StepBuild):  true,
	string(lane.StepPush):   true,
	string(lane.StepDeploy): true,
}

// Validate checks the loaded configuration. Errors here are fatal to the
// entire run before any lane starts.
func (c *Config) Validate() error {
	if err := component.ValidateSpecs(c.ComponentSpecs()); err != nil {
		return err
	}

	for _, comp := range c.Components {
		field := fmt.Sprintf("components[%s]", comp.ID)
		if len(comp.Steps) == 0 {
			return &ValidationError{Field: field, Reason: "no steps configured"}
		}
		for name, step := range comp.Steps {
			stepField := fmt.Sprintf("%s.steps[%s]", field, name)
			if !knownSteps[name] {
				return &ValidationError{Field: stepField, Reason: "unknown step name (expected test, build, push or deploy)"}
			}
			if len(step.Command) == 0 {
				return &ValidationError{Field: stepField, Reason: "empty command"}
			}
			if step.Timeout != "" {
				if _, err := time.ParseDuration(step.Timeout); err != nil {
					return &ValidationError{Field: stepField + ".timeout", Reason: err.Error()}
				}
			}
		}
	}

	if c.Versioning.OracleCommand == "" {
		return &ValidationError{Field: "versioning.oracle_command", Reason: "required"}
	}
	if c.Versioning.Timeout != "" {
		if _, err := time.ParseDuration(c.Versioning.Timeout); err != nil {
			return &ValidationError{Field: "versioning.timeout", Reason: err.Error()}
		}
	}
	if c.Concurrency < 0 {
		return &ValidationError{Field: "concurrency", Reason: "must be >= 0"}
	}

	if c.Notify != nil {
		if c.Notify.NATSURL == "" {
			return &ValidationError{Field: "notify.nats_url", Reason: "required when notify is configured"}
		}
		if c.Notify.Subject == "" {
			return &ValidationError{Field: "notify.subject", Reason: "required when notify is configured"}
		}
	}
	if c.Metrics != nil && c.Metrics.PushgatewayURL == "" {
		return &ValidationError{Field: "metrics.pushgateway_url", Reason: "required when metrics is configured"}
	}
	return nil
}

// ComponentSpecs builds the classifier's rule table.
func (c *Config) ComponentSpecs() []component.Spec {
	specs := make([]component.Spec, 0, len(c.Components))
	for _, comp := range c.Components {
		specs = append(specs, component.Spec{ID: comp.ID, Prefixes: comp.Prefixes})
	}
	return specs
}

// LaneSpecs builds the per-component lane step commands. Validate must
// have succeeded first; unparseable timeouts are treated as unset here.
func (c *Config) LaneSpecs() []lane.Spec {
	specs := make([]lane.Spec, 0, len(c.Components))
	for _, comp := range c.Components {
		steps := make(map[lane.StepName]lane.Command, len(comp.Steps))
		for name, step := range comp.Steps {
			var timeout time.Duration
			if step.Timeout != "" {
				timeout, _ = time.ParseDuration(step.Timeout)
			}
			steps[lane.StepName(name)] = lane.Command{Argv: step.Command, Timeout: timeout}
		}
		specs = append(specs, lane.Spec{Component: comp.ID, Steps: steps})
	}
	return specs
}

// OracleTimeout returns the parsed oracle timeout, zero when unset.
func (c *Config) OracleTimeout() time.Duration {
	if c.Versioning.Timeout == "" {
		return 0
	}
	d, _ := time.ParseDuration(c.Versioning.Timeout)
	return d
}
