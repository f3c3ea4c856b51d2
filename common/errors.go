// Package common provides shared constants, types, and utilities
// used across mullvadctl.
package common

import "errors"

// Sentinel errors for VPN client operations.
// These can be checked with errors.Is() for proper error handling.
var (
	// Process errors.
	ErrSpawnFailure     = errors.New("cannot launch VPN client")
	ErrUnexpectedOutput = errors.New("unexpected output from VPN client")

	// Connection errors.
	ErrInvalidLocation    = errors.New("invalid relay location")
	ErrTimeout            = errors.New("operation timed out")
	ErrReconnectExhausted = errors.New("reconnect attempts exhausted")

	// Preset errors.
	ErrPresetNotFound = errors.New("preset not found")

	// Configuration errors.
	ErrConfigLoad    = errors.New("failed to load configuration")
	ErrConfigSave    = errors.New("failed to save configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// WrapError wraps an error with additional context.
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return &wrappedError{
		msg: message,
		err: err,
	}
}

type wrappedError struct {
	msg string
	err error
}

func (e *wrappedError) Error() string {
	return e.msg + ": " + e.err.Error()
}

func (e *wrappedError) Unwrap() error {
	return e.err
}
