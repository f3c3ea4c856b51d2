// Package common provides shared constants, errors, interfaces and logging
// used throughout mullvadctl.
//
//   - Constants: client defaults, poll timing, file names
//   - Errors: sentinel errors checked with errors.Is
//   - Interfaces: Logger and Notifier abstractions
//   - Logger: leveled logging on top of zerolog with a rotating file sink
//   - Utils: configuration and data directory helpers
//
// # Usage
//
//	common.LogInfo("Connecting to %s", location)
//
//	if errors.Is(err, common.ErrSpawnFailure) {
//	    // the mullvad binary is missing
//	}
package common
