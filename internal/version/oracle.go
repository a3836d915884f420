package version

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os/exec"
	"time"
)

// ExecOracle invokes an external versioning tool (a GitVersion-style
// binary) in the repository directory and parses its JSON stdout.
type ExecOracle struct {
	Command string
	Args    []string
	Dir     string
	Timeout time.Duration
}

const defaultOracleTimeout = 30 * time.Second

func (o *ExecOracle) timeout() time.Duration {
	if o.Timeout > 0 {
		return o.Timeout
	}
	return defaultOracleTimeout
}

// Resolve runs the oracle and decodes its structured output.
func (o *ExecOracle) Resolve(ctx context.Context) (OracleResult, error) {
	stdout, err := o.run(ctx, o.Args)
	if err != nil {
		return OracleResult{}, err
	}

	var result OracleResult
	if unmarshalErr := json.Unmarshal(stdout, &result); unmarshalErr != nil {
		return OracleResult{}, &OracleError{Op: "decode", Output: string(stdout), Err: unmarshalErr}
	}
	return result, nil
}

// VerboseInfo runs the oracle's diagnostic mode and returns the raw text.
func (o *ExecOracle) VerboseInfo(ctx context.Context) (string, error) {
	args := append(append([]string{}, o.Args...), "/verbosity", "Diagnostic")
	stdout, err := o.run(ctx, args)
	if err != nil {
		return "", err
	}
	return string(stdout), nil
}

func (o *ExecOracle) run(ctx context.Context, args []string) ([]byte, error) {
	if _, err := exec.LookPath(o.Command); err != nil {
		return nil, &OracleError{Op: "lookup", Err: err}
	}

	runCtx, cancel := context.WithTimeout(ctx, o.timeout())
	defer cancel()

	cmd := exec.CommandContext(runCtx, o.Command, args...)
	cmd.Dir = o.Dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	slog.Debug("Invoking version oracle", slog.String("command", o.Command))

	if err := cmd.Run(); err != nil {
		output := stderr.String()
		if output == "" {
			output = stdout.String()
		}
		return nil, &OracleError{Op: "exec", Output: output, Err: err}
	}
	return stdout.Bytes(), nil
}
