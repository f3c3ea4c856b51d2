package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/pborman/getopt/v2"

	"github.com/yllada/mullvadctl/vpn"
)

// ErrUsage is returned for malformed command lines.
var ErrUsage = errors.New("usage error")

// locationFlags are the relay selection options shared by connect,
// relay set and watch.
type locationFlags struct {
	country *string
	city    *string
	server  *string
}

func addLocationFlags(set *getopt.Set) locationFlags {
	return locationFlags{
		country: set.StringLong("country", 'c', "", "Relay country code", "CODE"),
		city:    set.StringLong("city", 'C', "", "Relay city code", "CODE"),
		server:  set.StringLong("server", 's', "", "Relay server hostname", "HOST"),
	}
}

func (f locationFlags) set() bool {
	return *f.country != "" || *f.city != "" || *f.server != ""
}

// parse runs getopt over args for the named command.
func parse(set *getopt.Set, name string, args []string) error {
	set.SetProgram(name)
	if err := set.Getopt(append([]string{name}, args...), nil); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	return nil
}

// Run executes a subcommand. args[0] is the command name.
func (c *CLI) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		PrintHelp(c.out)
		return nil
	}

	name, rest := args[0], args[1:]
	switch name {
	case "status":
		return c.runStatus(rest)
	case "connect":
		return c.runConnect(rest)
	case "disconnect":
		if len(rest) > 0 {
			return fmt.Errorf("%w: disconnect takes no arguments", ErrUsage)
		}
		return c.Disconnect()
	case "account":
		return c.runAccount(rest)
	case "relay":
		return c.runRelay(rest)
	case "presets":
		return c.Presets()
	case "watch":
		return c.runWatch(ctx, rest)
	case "history":
		return c.runHistory(rest)
	case "help":
		PrintHelp(c.out)
		return nil
	default:
		return fmt.Errorf("%w: unknown command %q", ErrUsage, name)
	}
}

func (c *CLI) runStatus(args []string) error {
	set := getopt.New()
	verbose := set.BoolLong("verbose", 'v', "Show detailed status")
	if err := parse(set, "status", args); err != nil {
		return err
	}
	return c.Status(*verbose)
}

// locationFromArgs resolves an optional preset argument plus location flags.
func (c *CLI) locationFromArgs(name string, flags locationFlags, args []string) (vpn.Location, error) {
	var preset string
	switch len(args) {
	case 0:
	case 1:
		preset = args[0]
	default:
		return vpn.Location{}, fmt.Errorf("%w: %s takes at most one preset", ErrUsage, name)
	}
	return c.ResolveLocation(preset, *flags.country, *flags.city, *flags.server)
}

func (c *CLI) runConnect(args []string) error {
	set := getopt.New()
	set.SetParameters("[preset]")
	flags := addLocationFlags(set)
	if err := parse(set, "connect", args); err != nil {
		return err
	}

	loc, err := c.locationFromArgs("connect", flags, set.Args())
	if err != nil {
		return err
	}
	return c.Connect(loc)
}

func (c *CLI) runAccount(args []string) error {
	if len(args) == 0 {
		return c.Account()
	}

	switch args[0] {
	case "get":
		return c.Account()
	case "login":
		if len(args) != 2 {
			return fmt.Errorf("%w: account login <number>", ErrUsage)
		}
		number, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("%w: account number must be numeric: %s", ErrUsage, args[1])
		}
		return c.Login(number)
	case "devices":
		return c.Devices()
	default:
		return fmt.Errorf("%w: unknown account command %q", ErrUsage, args[0])
	}
}

func (c *CLI) runRelay(args []string) error {
	if len(args) == 0 {
		return c.RelayList()
	}

	switch args[0] {
	case "list":
		return c.RelayList()
	case "set":
		set := getopt.New()
		set.SetParameters("[preset]")
		flags := addLocationFlags(set)
		if err := parse(set, "relay set", args[1:]); err != nil {
			return err
		}
		if !flags.set() && len(set.Args()) == 0 {
			return fmt.Errorf("%w: relay set needs a preset or --country", ErrUsage)
		}
		loc, err := c.locationFromArgs("relay set", flags, set.Args())
		if err != nil {
			return err
		}
		return c.RelaySet(loc)
	case "hostname":
		if len(args) != 2 {
			return fmt.Errorf("%w: relay hostname <hostname>", ErrUsage)
		}
		return c.RelayHostname(args[1])
	case "update":
		return c.RelayUpdate()
	default:
		return fmt.Errorf("%w: unknown relay command %q", ErrUsage, args[0])
	}
}

func (c *CLI) runWatch(ctx context.Context, args []string) error {
	set := getopt.New()
	set.SetParameters("[preset]")
	flags := addLocationFlags(set)
	if err := parse(set, "watch", args); err != nil {
		return err
	}

	// Without a location the monitor only reports.
	var loc vpn.Location
	if flags.set() || len(set.Args()) > 0 {
		var err error
		if loc, err = c.locationFromArgs("watch", flags, set.Args()); err != nil {
			return err
		}
	}
	return c.Watch(ctx, loc)
}

func (c *CLI) runHistory(args []string) error {
	set := getopt.New()
	count := set.IntLong("count", 'n', 10, "Number of attempts to show", "N")
	if err := parse(set, "history", args); err != nil {
		return err
	}
	if *count < 1 {
		return fmt.Errorf("%w: --count must be positive", ErrUsage)
	}
	return c.History(*count)
}

// PrintHelp prints CLI usage help.
func PrintHelp(w io.Writer) {
	fmt.Fprintln(w, `mullvadctl - control the Mullvad VPN client

Usage:
  mullvadctl [OPTIONS] COMMAND [ARGS]

Options:
  -v, --verbose        Enable verbose logging
      --config FILE    Configuration file
      --binary PATH    Mullvad client binary
      --version        Show version and exit
  -h, --help           Show this help message

Commands:
  status [-v]                          Show connection status
  connect [-c CC] [-C CITY] [-s HOST] [PRESET]
                                       Connect and wait for the tunnel
  disconnect                           Disconnect the tunnel
  account [get]                        Show the account number
  account login NUMBER                 Log in to an account
  account devices                      List devices on the account
  relay [list]                         List relays
  relay set [-c CC] [-C CITY] [-s HOST] [PRESET]
                                       Select a relay without connecting
  relay hostname HOST                  Select a relay by hostname
  relay update                         Refresh the relay list
  presets                              List configured presets
  watch [-c CC] [-C CITY] [-s HOST] [PRESET]
                                       Monitor the tunnel, reconnecting if a location is given
  history [-n N]                       Show recent connect attempts
  version                              Show version
  help                                 Show this help message

Examples:
  mullvadctl connect -c se -C got
  mullvadctl connect work
  mullvadctl status -v
  mullvadctl watch -c ch

Environment:
  MULLVADCTL_BINARY, MULLVADCTL_POLL_INTERVAL, MULLVADCTL_POLL_ATTEMPTS,
  MULLVADCTL_DEFAULT_COUNTRY, MULLVADCTL_NOTIFICATIONS, MULLVADCTL_HISTORY
  override the configuration file.`)
}
