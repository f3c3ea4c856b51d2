package vpn

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yllada/mullvadctl/common"
)

// ErrUnexpectedOutput is returned when client output lacks an expected line.
var ErrUnexpectedOutput = common.ErrUnexpectedOutput

// GetAccountNumber returns the account number of the logged-in account.
func (c *Controller) GetAccountNumber() (int64, error) {
	result, err := c.run("account", "get")
	if err != nil {
		return 0, err
	}
	return ParseAccountNumber(result.Stdout)
}

// Login logs the client into account. The client's verdict is returned as
// text; a rejected account is not an error at this layer.
func (c *Controller) Login(account int64) (CommandResult, error) {
	return c.run("account", "login", strconv.FormatInt(account, 10))
}

// ListDevices returns the devices registered on the account.
func (c *Controller) ListDevices() ([]string, error) {
	result, err := c.run("account", "list-devices")
	if err != nil {
		return nil, err
	}
	return ParseDevices(result.Stdout), nil
}

// ParseAccountNumber reads the number from the first line of `account get`
// output, which looks like "Mullvad account: 1234567890123".
func ParseAccountNumber(text string) (int64, error) {
	first, _, _ := strings.Cut(strings.TrimSpace(text), "\n")

	label, value, found := strings.Cut(first, ":")
	if !found {
		return 0, fmt.Errorf("%w: no account line in %q", ErrUnexpectedOutput, first)
	}

	number, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s is not a number: %v", ErrUnexpectedOutput, strings.TrimSpace(label), err)
	}
	return number, nil
}

// ParseDevices drops the header line of `account list-devices` output and
// returns the remaining non-blank lines, trimmed.
func ParseDevices(text string) []string {
	lines := strings.Split(text, "\n")
	devices := make([]string, 0, len(lines))
	for _, line := range lines[1:] {
		if device := strings.TrimSpace(line); device != "" {
			devices = append(devices, device)
		}
	}
	return devices
}
