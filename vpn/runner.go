// Package vpn provides control of the Mullvad VPN client.
// This file contains the CommandRunner used to invoke the client binary.
package vpn

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/yllada/mullvadctl/common"
)

// CommandResult holds the decoded output of one client invocation.
// The exit code is not modeled: the client reports many
// failures as text with a zero exit status.
type CommandResult struct {
	Stdout string
	Stderr string
}

// CommandRunner executes a single client command and returns its output.
type CommandRunner interface {
	// Run invokes the client with args. A non-zero exit is not an error;
	// only a failure to launch the binary is.
	Run(args ...string) (CommandResult, error)
}

// ExecRunner runs the client as a local process via os/exec.
type ExecRunner struct {
	binary string
}

// NewExecRunner creates a runner for the given binary name or path.
func NewExecRunner(binary string) *ExecRunner {
	if binary == "" {
		binary = common.DefaultBinary
	}
	return &ExecRunner{binary: binary}
}

// Binary returns the configured binary name or path.
func (r *ExecRunner) Binary() string {
	return r.binary
}

// Run executes the binary with args and waits for it to exit.
func (r *ExecRunner) Run(args ...string) (CommandResult, error) {
	cmd := exec.Command(r.binary, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := CommandResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			common.LogDebug("%s %s exited with code %d", r.binary, strings.Join(args, " "), exitErr.ExitCode())
			return result, nil
		}
		return result, fmt.Errorf("%w: %s: %v", common.ErrSpawnFailure, r.binary, err)
	}

	return result, nil
}

// CheckBinary reports whether the binary can be found on PATH
// (or at the given path).
func CheckBinary(binary string) error {
	if _, err := exec.LookPath(binary); err != nil {
		return fmt.Errorf("%w: %s not found: %v", common.ErrSpawnFailure, binary, err)
	}
	return nil
}
