// Package common provides shared constants, types, and utilities
// used across mullvadctl.
package common

// Notifier is the minimal desktop notification surface. notify.DBusNotifier
// and notify.NopNotifier implement it.
type Notifier interface {
	// Notify shows title and message with the default icon.
	Notify(title, message string) error
	// NotifyWithIcon shows title and message with a named freedesktop icon.
	NotifyWithIcon(title, message, icon string) error
}

// Logger is the printf-style leveled logger the vpn package traces
// client invocations through. *AppLogger implements it; tests substitute
// a capturing logger.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

var _ Logger = (*AppLogger)(nil)
