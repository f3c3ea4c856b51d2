// Package vpn provides control of the Mullvad VPN client.
// This file contains the Monitor for watching connection state
// and implementing auto-reconnect.
package vpn

import (
	"sync"
	"time"

	"github.com/yllada/mullvadctl/common"
)

// MonitorConfig holds configuration for the status monitor.
type MonitorConfig struct {
	// CheckInterval is how often to query the client.
	CheckInterval time.Duration
	// FailureThreshold is how many consecutive non-connected checks trigger a reconnect.
	FailureThreshold int
	// AutoReconnect enables automatic reconnection to the watched location.
	AutoReconnect bool
	// MaxReconnectAttempts bounds reconnects before giving up (0 = unlimited).
	MaxReconnectAttempts int
}

// DefaultMonitorConfig returns sensible defaults for monitoring.
func DefaultMonitorConfig() MonitorConfig {
	return MonitorConfig{
		CheckInterval:        common.MonitorInterval,
		FailureThreshold:     common.ReconnectThreshold,
		AutoReconnect:        true,
		MaxReconnectAttempts: common.MaxReconnectAttempts,
	}
}

// MonitorSnapshot is a point-in-time copy of the monitor's observations.
type MonitorSnapshot struct {
	State             ConnectionStatus
	LastCheck         time.Time
	LastConnected     time.Time
	ConsecutiveMisses int
	ReconnectAttempts int
}

// Monitor periodically queries the client and reports state changes.
// Checks and reconnects run on a single goroutine, so at most one
// connection transition is in flight.
type Monitor struct {
	mu         sync.RWMutex
	config     MonitorConfig
	controller *Controller
	location   Location
	running    bool
	stopChan   chan struct{}
	doneChan   chan struct{}
	snapshot   MonitorSnapshot
	gaveUp     bool
	now        func() time.Time

	onStateChange     func(oldState, newState ConnectionStatus)
	onReconnecting    func(loc Location, attempt int)
	onReconnectFailed func(loc Location, err error)
}

// NewMonitor creates a monitor. loc is the location to reconnect to; if
// it is zero, auto-reconnect is disabled.
func NewMonitor(controller *Controller, loc Location, config MonitorConfig) *Monitor {
	if config.FailureThreshold < 1 {
		config.FailureThreshold = 1
	}
	if config.CheckInterval <= 0 {
		config.CheckInterval = common.MonitorInterval
	}
	return &Monitor{
		config:     config,
		controller: controller,
		location:   loc,
		now:        time.Now,
	}
}

// SetOnStateChange sets a callback for state transitions.
func (m *Monitor) SetOnStateChange(callback func(oldState, newState ConnectionStatus)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onStateChange = callback
}

// SetOnReconnecting sets a callback invoked before each reconnect attempt.
func (m *Monitor) SetOnReconnecting(callback func(loc Location, attempt int)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onReconnecting = callback
}

// SetOnReconnectFailed sets a callback for failed reconnects.
func (m *Monitor) SetOnReconnectFailed(callback func(loc Location, err error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onReconnectFailed = callback
}

// Start begins the monitoring loop. The first check runs immediately.
func (m *Monitor) Start() {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return
	}
	m.running = true
	m.stopChan = make(chan struct{})
	m.doneChan = make(chan struct{})
	interval := m.config.CheckInterval
	stop, done := m.stopChan, m.doneChan
	m.mu.Unlock()

	common.LogInfo("Status monitor started (interval: %v)", interval)

	go m.runLoop(interval, stop, done)
}

// Stop stops the monitoring loop and waits for an in-flight check to finish.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	close(m.stopChan)
	done := m.doneChan
	m.mu.Unlock()

	<-done
	common.LogInfo("Status monitor stopped")
}

// IsRunning returns whether the monitor loop is active.
func (m *Monitor) IsRunning() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.running
}

// Snapshot returns a copy of the latest observations.
func (m *Monitor) Snapshot() MonitorSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}

// UpdateConfig updates the monitor configuration.
// A new CheckInterval applies on the next Start.
func (m *Monitor) UpdateConfig(config MonitorConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if config.FailureThreshold < 1 {
		config.FailureThreshold = 1
	}
	if config.CheckInterval <= 0 {
		config.CheckInterval = common.MonitorInterval
	}
	m.config = config
}

func (m *Monitor) runLoop(interval time.Duration, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	m.Check()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			m.Check()
		}
	}
}

// Check performs one status query, fires callbacks, and reconnects if the
// failure threshold has been reached.
func (m *Monitor) Check() {
	state, err := m.controller.State()
	if err != nil {
		common.LogWarn("Status check failed: %v", err)
		state = StatusUnknown
	}

	m.mu.Lock()
	now := m.now()
	oldState := m.snapshot.State
	m.snapshot.State = state
	m.snapshot.LastCheck = now

	if state == StatusConnected {
		m.snapshot.ConsecutiveMisses = 0
		m.snapshot.ReconnectAttempts = 0
		m.snapshot.LastConnected = now
		m.gaveUp = false
	} else {
		m.snapshot.ConsecutiveMisses++
	}

	reconnect := m.config.AutoReconnect &&
		!m.location.IsZero() &&
		state != StatusConnected &&
		m.snapshot.ConsecutiveMisses >= m.config.FailureThreshold
	onStateChange := m.onStateChange
	m.mu.Unlock()

	if oldState != state {
		common.LogInfo("Connection state changed: %s -> %s", oldState, state)
		if onStateChange != nil {
			onStateChange(oldState, state)
		}
	}

	if reconnect {
		m.attemptReconnect()
	}
}

// attemptReconnect runs one Connect to the watched location.
func (m *Monitor) attemptReconnect() {
	m.mu.Lock()
	limit := m.config.MaxReconnectAttempts
	if limit > 0 && m.snapshot.ReconnectAttempts >= limit {
		alreadyReported := m.gaveUp
		m.gaveUp = true
		onFailed := m.onReconnectFailed
		m.mu.Unlock()

		if !alreadyReported {
			common.LogError("Max reconnect attempts reached for %s", m.location)
			if onFailed != nil {
				onFailed(m.location, common.ErrReconnectExhausted)
			}
		}
		return
	}

	m.snapshot.ReconnectAttempts++
	attempt := m.snapshot.ReconnectAttempts
	loc := m.location
	onReconnecting := m.onReconnecting
	onFailed := m.onReconnectFailed
	m.mu.Unlock()

	common.LogInfo("Attempting reconnect to %s (attempt %d)", loc, attempt)
	if onReconnecting != nil {
		onReconnecting(loc, attempt)
	}

	connected, err := m.controller.Connect(loc)
	if err == nil && !connected {
		err = common.ErrTimeout
	}
	if err != nil {
		common.LogError("Reconnect to %s failed: %v", loc, err)
		if onFailed != nil {
			onFailed(loc, err)
		}
		return
	}

	m.mu.Lock()
	m.snapshot.ConsecutiveMisses = 0
	m.mu.Unlock()
	common.LogInfo("Reconnect to %s successful", loc)
}
