package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/yllada/mullvadctl/vpn"
)

// Colors are taken from the GNOME palette.
var (
	connectedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#2ec27e")).Bold(true)
	connectingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#e5a50a")).Bold(true)
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#e01b24")).Bold(true)
	mutedStyle      = lipgloss.NewStyle().Faint(true)
)

// statusStyle returns the style used for a connection state.
func statusStyle(status vpn.ConnectionStatus) lipgloss.Style {
	switch status {
	case vpn.StatusConnected:
		return connectedStyle
	case vpn.StatusConnecting:
		return connectingStyle
	case vpn.StatusDisconnected:
		return mutedStyle
	default:
		return errorStyle
	}
}

// paint renders text with style when color output is enabled.
func (c *CLI) paint(style lipgloss.Style, text string) string {
	if !c.color {
		return text
	}
	return style.Render(text)
}
