package vpn

import (
	"fmt"
	"strings"
	"time"
)

// fakeRunner scripts client responses. Each status call consumes the next
// entry of statuses; the last entry repeats.
type fakeRunner struct {
	calls     []string
	statuses  []string
	responses map[string]CommandResult
	err       error
}

func (f *fakeRunner) Run(args ...string) (CommandResult, error) {
	cmd := strings.Join(args, " ")
	f.calls = append(f.calls, cmd)

	if f.err != nil {
		return CommandResult{}, f.err
	}

	if args[0] == "status" {
		if len(f.statuses) == 0 {
			return CommandResult{Stdout: "Disconnected\n"}, nil
		}
		out := f.statuses[0]
		if len(f.statuses) > 1 {
			f.statuses = f.statuses[1:]
		}
		return CommandResult{Stdout: out + "\n"}, nil
	}

	return f.responses[cmd], nil
}

func (f *fakeRunner) count(cmd string) int {
	n := 0
	for _, call := range f.calls {
		if call == cmd {
			n++
		}
	}
	return n
}

type testLogger struct {
	Lines []string
}

func (tl *testLogger) append(level, msg string, args ...interface{}) {
	tl.Lines = append(tl.Lines, level+" "+fmt.Sprintf(msg, args...))
}

func (tl *testLogger) Debug(msg string, args ...interface{}) { tl.append("DEBUG", msg, args...) }
func (tl *testLogger) Info(msg string, args ...interface{})  { tl.append("INFO", msg, args...) }
func (tl *testLogger) Warn(msg string, args ...interface{})  { tl.append("WARN", msg, args...) }
func (tl *testLogger) Error(msg string, args ...interface{}) { tl.append("ERROR", msg, args...) }

// newTestController returns a controller whose sleeps are recorded instead of taken.
func newTestController(runner CommandRunner, config ControllerConfig) (*Controller, *[]time.Duration) {
	c := NewController(runner, config)
	c.SetLogger(&testLogger{})
	sleeps := &[]time.Duration{}
	c.sleep = func(d time.Duration) {
		*sleeps = append(*sleeps, d)
	}
	return c, sleeps
}
