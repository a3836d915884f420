package lane

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"
)

// Runner invokes one external step command and reports success or
// failure plus captured diagnostic text. Implementations must honor the
// timeout; a timeout counts as a tool failure.
type Runner interface {
	Run(ctx context.Context, argv []string, timeout time.Duration) (string, error)
}

// ExecRunner runs step commands as local subprocesses.
type ExecRunner struct {
	Dir string // working directory for every step command
}

const defaultStepTimeout = 10 * time.Minute

// Run executes argv with a bounded wait and returns the combined
// stdout/stderr text. External tools write errors to either stream, so
// both are captured for diagnostics.
func (r *ExecRunner) Run(ctx context.Context, argv []string, timeout time.Duration) (string, error) {
	if len(argv) == 0 {
		return "", fmt.Errorf("empty command")
	}
	if timeout <= 0 {
		timeout = defaultStepTimeout
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, argv[0], argv[1:]...)
	cmd.Dir = r.Dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	output := stdout.String()
	if s := stderr.String(); s != "" {
		if output != "" {
			output += "\n"
		}
		output += s
	}

	if runCtx.Err() == context.DeadlineExceeded {
		return output, fmt.Errorf("command %q timed out after %s", argv[0], timeout)
	}
	if err != nil {
		return output, fmt.Errorf("command %q: %w", argv[0], err)
	}
	return output, nil
}
