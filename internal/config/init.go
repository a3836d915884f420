package config

import (
	"fmt"
	"os"
)

const starterConfig = `# shipwright configuration
#
# Each component is rebuilt only when a changed path matches one of its
# prefixes. Step commands may use the {component} and {version}
# placeholders.
components:
  - id: serving
    prefixes: ["serving-pipeline/"]
    verify_hint: "kubectl port-forward svc/serving 8080:80"
    steps:
      test:
        command: ["pytest", "serving-pipeline/tests"]
        timeout: 10m
      build:
        command: ["docker", "build", "-t", "${REGISTRY}/{component}:{version}", "serving-pipeline"]
      push:
        command: ["docker", "push", "${REGISTRY}/{component}:{version}"]
      deploy:
        command: ["kubectl", "apply", "-f", "serving-pipeline/deploy.yaml"]

  - id: training
    prefixes: ["training-pipeline/"]
    steps:
      build:
        command: ["docker", "build", "-t", "${REGISTRY}/{component}:{version}", "training-pipeline"]
      push:
        command: ["docker", "push", "${REGISTRY}/{component}:{version}"]

versioning:
  oracle_command: gitversion
  oracle_args: ["/output", "json"]
  timeout: 30s
  build_counter_env: BUILD_NUMBER

# Max lanes running at once; 0 means one per affected component.
concurrency: 0

# Optional integrations:
#
# notify:
#   nats_url: nats://localhost:4222
#   subject: shipwright.runs
#
# metrics:
#   pushgateway_url: http://localhost:9091
#   job: shipwright
#
# journal:
#   enabled: true
#   path: .shipwright/journal.db
`

// Init writes the starter configuration file. It refuses to overwrite an
// existing file unless force is set.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file %s already exists (use --force to overwrite)", configPath)
	}
	if err := os.WriteFile(configPath, []byte(starterConfig), 0o600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}
