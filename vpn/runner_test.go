package vpn

import (
	"errors"
	"os/exec"
	"testing"

	"github.com/yllada/mullvadctl/common"
)

func TestNewExecRunner_DefaultBinary(t *testing.T) {
	if got := NewExecRunner("").Binary(); got != common.DefaultBinary {
		t.Errorf("Binary() = %q, want %q", got, common.DefaultBinary)
	}
	if got := NewExecRunner("/opt/mullvad/bin/mullvad").Binary(); got != "/opt/mullvad/bin/mullvad" {
		t.Errorf("Binary() = %q", got)
	}
}

func TestExecRunner_MissingBinary(t *testing.T) {
	runner := NewExecRunner("mullvadctl-test-no-such-binary")

	_, err := runner.Run("status")
	if !errors.Is(err, common.ErrSpawnFailure) {
		t.Errorf("Run() error = %v, want ErrSpawnFailure", err)
	}

	if err := CheckBinary("mullvadctl-test-no-such-binary"); !errors.Is(err, common.ErrSpawnFailure) {
		t.Errorf("CheckBinary() error = %v, want ErrSpawnFailure", err)
	}
}

func TestExecRunner_NonZeroExitIsNotAnError(t *testing.T) {
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}

	runner := NewExecRunner(sh)
	result, err := runner.Run("-c", "echo out; echo err >&2; exit 3")
	if err != nil {
		t.Fatalf("Run() error = %v, want nil", err)
	}
	if result.Stdout != "out\n" {
		t.Errorf("Stdout = %q, want %q", result.Stdout, "out\n")
	}
	if result.Stderr != "err\n" {
		t.Errorf("Stderr = %q, want %q", result.Stderr, "err\n")
	}
}
