// Package common provides shared constants, types, and utilities
// used across mullvadctl.
package common

import "time"

// Application metadata.
const (
	// AppName is the display name of the application.
	AppName = "mullvadctl"
	// ConfigDirName is the name of the configuration directory.
	ConfigDirName = "mullvadctl"
	// EnvPrefix is the prefix for environment variable overrides.
	EnvPrefix = "MULLVADCTL"
)

// File names used by the application.
const (
	ConfigFileName  = "config.yaml"
	HistoryFileName = "history.db"
	LogFileName     = "mullvadctl.log"
)

// External client defaults.
const (
	// DefaultBinary is the name of the Mullvad command-line client.
	DefaultBinary = "mullvad"
	// DefaultCountry is used when no relay country is given.
	DefaultCountry = "us"
)

// Default timeouts and intervals.
const (
	// PollInterval is the delay between status polls after connecting.
	PollInterval = 500 * time.Millisecond
	// PollAttempts is how many delayed polls follow the first status check.
	PollAttempts = 21
	// MonitorInterval is how often the watch command checks status.
	MonitorInterval = 30 * time.Second
	// ReconnectThreshold is how many consecutive misses trigger a reconnect.
	ReconnectThreshold = 3
	// MaxReconnectAttempts bounds automatic reconnects (0 = unlimited).
	MaxReconnectAttempts = 5
	// NotificationTimeout is how long desktop notifications stay visible.
	NotificationTimeout = 5 * time.Second
)
