// Package vpn provides control of the Mullvad VPN client.
// This file contains the Controller, which drives connection state
// transitions through the client's command-line interface.
package vpn

import (
	"strings"
	"sync"
	"time"

	"github.com/yllada/mullvadctl/common"
)

// ControllerConfig holds the polling policy used while waiting for a
// connection to come up.
type ControllerConfig struct {
	// PollInterval is the delay between status polls.
	PollInterval time.Duration
	// PollAttempts is how many delayed polls follow the first check.
	PollAttempts int
}

// DefaultControllerConfig returns the client's customary polling policy:
// 21 polls at 500ms, roughly ten seconds of waiting.
func DefaultControllerConfig() ControllerConfig {
	return ControllerConfig{
		PollInterval: common.PollInterval,
		PollAttempts: common.PollAttempts,
	}
}

// PollObserver is called after every status poll made by Connect.
// attempt is 0 for the immediate check that follows `connect`.
type PollObserver func(attempt int, status ConnectionStatus)

// Controller issues client commands and waits for state convergence.
// It keeps no connection state of its own: every query re-runs the client.
// A Controller is meant to be driven by one caller at a time.
type Controller struct {
	runner CommandRunner
	config ControllerConfig
	logger common.Logger
	sleep  func(time.Duration)

	mu       sync.Mutex
	observer PollObserver
}

// NewController creates a controller on top of runner.
func NewController(runner CommandRunner, config ControllerConfig) *Controller {
	if config.PollInterval < 0 {
		config.PollInterval = 0
	}
	if config.PollAttempts < 0 {
		config.PollAttempts = 0
	}
	return &Controller{
		runner: runner,
		config: config,
		logger: common.GetLogger(),
		sleep:  time.Sleep,
	}
}

// Config returns the controller's polling policy.
func (c *Controller) Config() ControllerConfig {
	return c.config
}

// SetLogger replaces the logger used for command tracing.
func (c *Controller) SetLogger(logger common.Logger) {
	c.logger = logger
}

// SetPollObserver installs a callback for Connect's polls. Pass nil to remove it.
func (c *Controller) SetPollObserver(observer PollObserver) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observer = observer
}

func (c *Controller) pollObserver() PollObserver {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.observer
}

// run invokes the client and traces the call.
func (c *Controller) run(args ...string) (CommandResult, error) {
	c.logger.Debug("mullvad %s", strings.Join(args, " "))
	result, err := c.runner.Run(args...)
	if err != nil {
		c.logger.Error("mullvad %s failed: %v", strings.Join(args, " "), err)
		return result, err
	}
	if stderr := strings.TrimSpace(result.Stderr); stderr != "" {
		c.logger.Debug("mullvad %s stderr: %s", args[0], stderr)
	}
	return result, nil
}

// Connect switches the tunnel to loc and waits for it to come up.
//
// If the client already reports Connected it is disconnected first, even
// when it is connected to loc. The relay location is then applied and the
// client told to connect. Status is polled until it reports Connected or
// the poll budget runs out.
//
// Connect returns false, nil on timeout. The error is non-nil only when the
// client could not be run at all.
func (c *Controller) Connect(loc Location) (bool, error) {
	if loc.IsZero() {
		return false, ErrInvalidLocation
	}

	state, err := c.State()
	if err != nil {
		return false, err
	}

	if state == StatusConnected {
		c.logger.Info("Already connected, disconnecting before switching to %s", loc)
		if _, err := c.Disconnect(); err != nil {
			return false, err
		}
	}

	if _, err := c.SetRelayLocation(loc); err != nil {
		return false, err
	}

	if _, err := c.run("connect"); err != nil {
		return false, err
	}

	connected, err := c.awaitConnected()
	if err != nil {
		return false, err
	}

	if connected {
		c.logger.Info("Connected to %s", loc)
	} else {
		c.logger.Warn("Timed out waiting for connection to %s after %d polls", loc, c.config.PollAttempts)
	}
	return connected, nil
}

// awaitConnected checks status immediately and then up to PollAttempts more
// times, sleeping PollInterval before each.
func (c *Controller) awaitConnected() (bool, error) {
	observer := c.pollObserver()

	for attempt := 0; ; attempt++ {
		state, err := c.State()
		if err != nil {
			return false, err
		}

		if observer != nil {
			observer(attempt, state)
		}

		if state == StatusConnected {
			return true, nil
		}

		if attempt >= c.config.PollAttempts {
			return false, nil
		}

		c.sleep(c.config.PollInterval)
	}
}

// Disconnect tells the client to disconnect. It does not verify the result;
// disconnecting while already disconnected is not an error.
func (c *Controller) Disconnect() (CommandResult, error) {
	return c.run("disconnect")
}

// Status returns the client's trimmed status report. verbose selects the
// detailed format.
func (c *Controller) Status(verbose bool) (string, error) {
	args := []string{"status"}
	if verbose {
		args = append(args, "-v")
	}

	result, err := c.run(args...)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(result.Stdout), nil
}

// State queries the client and classifies the result.
func (c *Controller) State() (ConnectionStatus, error) {
	text, err := c.Status(false)
	if err != nil {
		return StatusUnknown, err
	}
	return Classify(text), nil
}
