package vpn

import "strings"

// ConnectionStatus is the connection state inferred from client status text.
type ConnectionStatus int

const (
	// StatusUnknown covers any text that matches no known pattern,
	// including client errors.
	StatusUnknown ConnectionStatus = iota
	// StatusDisconnected indicates no tunnel is up.
	StatusDisconnected
	// StatusConnecting indicates the client is negotiating a tunnel.
	StatusConnecting
	// StatusConnected indicates an established tunnel.
	StatusConnected
)

// String returns a human-readable representation of the connection status.
func (s ConnectionStatus) String() string {
	switch s {
	case StatusDisconnected:
		return "Disconnected"
	case StatusConnecting:
		return "Connecting..."
	case StatusConnected:
		return "Connected"
	default:
		return "Unknown"
	}
}

// Classify maps status text to a ConnectionStatus by substring match.
// "Connected" is the only success signal and is checked first; the
// client's text format is not stable enough to parse further.
func Classify(text string) ConnectionStatus {
	switch {
	case strings.Contains(text, "Connected"):
		return StatusConnected
	case strings.Contains(text, "Connecting"):
		return StatusConnecting
	case strings.Contains(text, "Disconnected"):
		return StatusDisconnected
	default:
		return StatusUnknown
	}
}
