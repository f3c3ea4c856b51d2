package vpn

import (
	"strings"
)

// ListRelays returns the client's relay list verbatim, trimmed.
func (c *Controller) ListRelays() (string, error) {
	result, err := c.run("relay", "list")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(result.Stdout), nil
}

// SetRelayLocation points the client at loc without connecting.
func (c *Controller) SetRelayLocation(loc Location) (CommandResult, error) {
	if loc.IsZero() {
		return CommandResult{}, ErrInvalidLocation
	}
	args := append([]string{"relay", "set", "location"}, loc.Args()...)
	return c.run(args...)
}

// SetRelayHostname points the client at a relay by hostname.
func (c *Controller) SetRelayHostname(hostname string) (CommandResult, error) {
	return c.run("relay", "set", "hostname", hostname)
}

// UpdateRelays asks the client to refresh its relay list.
func (c *Controller) UpdateRelays() (CommandResult, error) {
	return c.run("relay", "update")
}
