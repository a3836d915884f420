package version

import (
	"context"
	"errors"
	"runtime"
	"testing"
	"time"
)

func skipWithoutShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
}

func TestExecOracleParsesJSON(t *testing.T) {
	skipWithoutShell(t)
	oracle := &ExecOracle{
		Command: "sh",
		Args:    []string{"-c", `echo '{"FullSemVer":"0.3.0-beta.2","BranchName":"develop","PreReleaseTag":"beta"}'`},
	}

	result, err := oracle.Resolve(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.FullSemVer != "0.3.0-beta.2" || result.BranchName != "develop" {
		t.Errorf("unexpected result %+v", result)
	}
	if !result.IsPrerelease() {
		t.Error("expected prerelease")
	}
}

func TestExecOracleCommandFailure(t *testing.T) {
	skipWithoutShell(t)
	oracle := &ExecOracle{Command: "sh", Args: []string{"-c", "echo broken >&2; exit 3"}}

	_, err := oracle.Resolve(context.Background())
	var oracleErr *OracleError
	if !errors.As(err, &oracleErr) {
		t.Fatalf("expected OracleError, got %T (%v)", err, err)
	}
	if oracleErr.Op != "exec" {
		t.Errorf("expected exec op, got %q", oracleErr.Op)
	}
}

func TestExecOracleMissingBinary(t *testing.T) {
	oracle := &ExecOracle{Command: "definitely-not-a-real-oracle-binary"}
	_, err := oracle.Resolve(context.Background())
	var oracleErr *OracleError
	if !errors.As(err, &oracleErr) {
		t.Fatalf("expected OracleError, got %T", err)
	}
	if oracleErr.Op != "lookup" {
		t.Errorf("expected lookup op, got %q", oracleErr.Op)
	}
}

func TestExecOracleInvalidJSON(t *testing.T) {
	skipWithoutShell(t)
	oracle := &ExecOracle{Command: "sh", Args: []string{"-c", "echo not-json"}}
	_, err := oracle.Resolve(context.Background())
	var oracleErr *OracleError
	if !errors.As(err, &oracleErr) {
		t.Fatalf("expected OracleError, got %T (%v)", err, err)
	}
	if oracleErr.Op != "decode" {
		t.Errorf("expected decode op, got %q", oracleErr.Op)
	}
}

func TestExecOracleTimeout(t *testing.T) {
	skipWithoutShell(t)
	oracle := &ExecOracle{
		Command: "sh",
		Args:    []string{"-c", "sleep 5"},
		Timeout: 50 * time.Millisecond,
	}
	if _, err := oracle.Resolve(context.Background()); err == nil {
		t.Fatal("expected timeout error")
	}
}
