// Package config loads and validates the orchestrator configuration: the
// component table, versioning oracle, and the optional notify, metrics
// and journal integrations. Configuration errors are setup defects and
// fail the run before any lane starts.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the full orchestrator configuration.
type Config struct {
	Components  []ComponentConfig `yaml:"components"`
	Versioning  VersioningConfig  `yaml:"versioning"`
	Concurrency int               `yaml:"concurrency"` // max parallel lanes, 0 = one per affected component
	Notify      *NotifyConfig     `yaml:"notify,omitempty"`
	Metrics     *MetricsConfig    `yaml:"metrics,omitempty"`
	Journal     *JournalConfig    `yaml:"journal,omitempty"`
}

// ComponentConfig declares one independently deployable component.
type ComponentConfig struct {
	ID         string                `yaml:"id"`
	Prefixes   []string              `yaml:"prefixes"`
	Steps      map[string]StepConfig `yaml:"steps"`
	VerifyHint string                `yaml:"verify_hint,omitempty"`
}

// StepConfig is one step's external command. Timeout is a Go duration
// string ("30s", "10m"); empty means the executor default.
type StepConfig struct {
	Command []string `yaml:"command"`
	Timeout string   `yaml:"timeout,omitempty"`
}

// VersioningConfig configures the external version oracle.
type VersioningConfig struct {
	OracleCommand   string   `yaml:"oracle_command"`
	OracleArgs      []string `yaml:"oracle_args,omitempty"`
	Timeout         string   `yaml:"timeout,omitempty"`
	BuildCounterEnv string   `yaml:"build_counter_env,omitempty"` // defaults to BUILD_NUMBER
}

// NotifyConfig configures summary publication over NATS.
type NotifyConfig struct {
	NATSURL string `yaml:"nats_url"`
	Subject string `yaml:"subject"`
}

// MetricsConfig configures the Prometheus Pushgateway integration.
type MetricsConfig struct {
	PushgatewayURL string `yaml:"pushgateway_url"`
	Job            string `yaml:"job,omitempty"` // defaults to "shipwright"
}

// JournalConfig configures the optional SQLite run journal.
type JournalConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path,omitempty"` // defaults to .shipwright/journal.db
}

// Load reads the configuration file, expands environment variables in
// its content and applies defaults. A .env file next to the process is
// loaded first without overriding existing environment variables.
func Load(configPath string) (*Config, error) {
	// Best effort; a missing .env is the normal case outside CI.
	_ = godotenv.Load()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// Expand ${VAR} references so registry hosts, URLs and credentials
	// can live in the environment rather than the file.
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Versioning.BuildCounterEnv == "" {
		c.Versioning.BuildCounterEnv = "BUILD_NUMBER"
	}
	if c.Metrics != nil && c.Metrics.Job == "" {
		c.Metrics.Job = "shipwright"
	}
	if c.Journal != nil && c.Journal.Path == "" {
		c.Journal.Path = ".shipwright/journal.db"
	}
}

// BuildCounter reads the CI build counter from the configured
// environment variable.
func (c *Config) BuildCounter() string {
	return os.Getenv(c.Versioning.BuildCounterEnv)
}

// VerifyHints collects per-component verification hints for reporting.
func (c *Config) VerifyHints() map[string]string {
	hints := make(map[string]string)
	for _, comp := range c.Components {
		if comp.VerifyHint != "" {
			hints[comp.ID] = comp.VerifyHint
		}
	}
	return hints
}
