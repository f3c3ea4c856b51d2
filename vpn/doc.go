// Package vpn provides control of the Mullvad VPN client through its
// command-line interface.
//
// # Architecture
//
// The package is organized around three types:
//
//   - CommandRunner: runs one client command and captures its output
//   - Controller: issues commands and waits for the tunnel to converge
//   - Monitor: polls the client on an interval and reconnects on loss
//
// # Connection Flow
//
// Controller.Connect performs the full transition:
//
//  1. Query status; if Connected, disconnect first
//  2. Apply the relay Location with `relay set location`
//  3. Run `connect`, which returns before the tunnel is up
//  4. Poll status until it reports Connected or the poll budget is spent
//
// A timeout is reported as false, not as an error. Errors are reserved for
// failures to launch the client binary.
//
// # State
//
// The Controller holds configuration only. Connection state always comes
// from a fresh `status` call and is classified by Classify.
//
// # Thread Safety
//
// The Controller does no locking around transitions and expects a single
// caller. The Monitor runs every check and reconnect on one goroutine.
package vpn
