// Package cli provides the command-line interface for mullvadctl.
// Each exported method implements one subcommand on top of a
// vpn.Controller and writes its results to the configured output.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/yllada/mullvadctl/common"
	"github.com/yllada/mullvadctl/config"
	"github.com/yllada/mullvadctl/history"
	"github.com/yllada/mullvadctl/notify"
	"github.com/yllada/mullvadctl/vpn"
)

// ErrHistoryDisabled is returned by History when no journal is attached.
var ErrHistoryDisabled = errors.New("connection history is disabled")

// Options controls how the CLI presents output.
type Options struct {
	// Out receives command output. Defaults to os.Stdout.
	Out io.Writer
	// Progress receives the connect spinner. Defaults to os.Stderr.
	Progress io.Writer
	// Interactive enables the spinner and colored output.
	Interactive bool
}

// CLI represents the command-line interface.
type CLI struct {
	controller  *vpn.Controller
	config      *config.Config
	out         io.Writer
	progress    io.Writer
	interactive bool
	color       bool
	notifier    notify.Sender
	history     *history.Store
	now         func() time.Time
}

// New creates a new CLI instance.
func New(controller *vpn.Controller, cfg *config.Config, opts Options) *CLI {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Progress == nil {
		opts.Progress = os.Stderr
	}
	return &CLI{
		controller:  controller,
		config:      cfg,
		out:         opts.Out,
		progress:    opts.Progress,
		interactive: opts.Interactive,
		color:       opts.Interactive,
		notifier:    notify.NopNotifier{},
		now:         time.Now,
	}
}

// SetNotifier sets the desktop notifier used for connect outcomes.
func (c *CLI) SetNotifier(n notify.Sender) {
	if n == nil {
		n = notify.NopNotifier{}
	}
	c.notifier = n
}

// SetHistory attaches a journal for connect attempts. Pass nil to disable.
func (c *CLI) SetHistory(store *history.Store) {
	c.history = store
}

// Status prints the client's status report.
func (c *CLI) Status(verbose bool) error {
	text, err := c.controller.Status(verbose)
	if err != nil {
		return err
	}

	state := vpn.Classify(text)
	first, rest, hasRest := strings.Cut(text, "\n")
	fmt.Fprintln(c.out, c.paint(statusStyle(state), first))
	if hasRest {
		fmt.Fprintln(c.out, rest)
	}
	return nil
}

// ResolveLocation builds a relay selection from an optional preset name
// and explicit fields. Explicit fields override the preset; a broader
// field clears the narrower ones it came with. Without either, the
// configured default country is used.
func (c *CLI) ResolveLocation(presetName, country, city, server string) (vpn.Location, error) {
	var base config.Preset
	switch {
	case presetName != "":
		_, preset, err := c.config.FindPreset(presetName)
		if err != nil {
			return vpn.Location{}, err
		}
		base = preset
	case country == "":
		base.Country = c.config.DefaultCountry
	}

	if country != "" {
		base = config.Preset{Country: country}
	}
	if city != "" {
		base.City = city
		base.Server = ""
	}
	if server != "" {
		base.Server = server
	}

	return vpn.ParseLocation(base.Country, base.City, base.Server)
}

// Connect switches the tunnel to loc, waits for it, and reports the outcome.
// A connection that does not come up in time is returned as ErrTimeout.
func (c *CLI) Connect(loc vpn.Location) error {
	started := c.now()

	var (
		connected bool
		err       error
	)
	if c.interactive {
		connected, err = c.connectWithProgress(c.progress, loc)
	} else {
		fmt.Fprintf(c.out, "Connecting to %s...\n", loc)
		connected, err = c.controller.Connect(loc)
	}
	elapsed := c.now().Sub(started)

	if err != nil && !errors.Is(err, errConnectInterrupted) {
		c.record(loc, started, false, elapsed)
		notify.NotifyError(c.notifier, loc.String(), err.Error())
		return fmt.Errorf("connection failed: %w", err)
	}
	if err != nil {
		return err
	}

	c.record(loc, started, connected, elapsed)

	if !connected {
		notify.NotifyTimeout(c.notifier, loc.String())
		return fmt.Errorf("%w: not connected to %s after %s", common.ErrTimeout, loc, formatDuration(elapsed))
	}

	notify.NotifyConnected(c.notifier, loc.String())
	fmt.Fprintln(c.out, c.paint(connectedStyle, "✓ Connected to "+loc.String()))
	return nil
}

func (c *CLI) record(loc vpn.Location, started time.Time, connected bool, elapsed time.Duration) {
	if c.history == nil {
		return
	}
	entry := history.NewEntry(loc.String(), started, connected, elapsed)
	if err := c.history.Record(context.Background(), entry); err != nil {
		common.LogWarn("Could not record connect attempt: %v", err)
	}
}

// Disconnect asks the client to disconnect. The result is not verified.
func (c *CLI) Disconnect() error {
	result, err := c.controller.Disconnect()
	if err != nil {
		return fmt.Errorf("failed to disconnect: %w", err)
	}

	c.printOutput(result, "✓ Disconnect requested")
	return nil
}

// Account prints the logged-in account number.
func (c *CLI) Account() error {
	number, err := c.controller.GetAccountNumber()
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Account: %d\n", number)
	return nil
}

// Login logs the client into account and prints the client's reply.
func (c *CLI) Login(account int64) error {
	result, err := c.controller.Login(account)
	if err != nil {
		return err
	}
	c.printOutput(result, "")
	return nil
}

// Devices lists the devices registered on the account.
func (c *CLI) Devices() error {
	devices, err := c.controller.ListDevices()
	if err != nil {
		return err
	}

	if len(devices) == 0 {
		fmt.Fprintln(c.out, "No devices registered.")
		return nil
	}

	w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tDEVICE")
	fmt.Fprintln(w, "-\t------")
	for i, device := range devices {
		fmt.Fprintf(w, "%d\t%s\n", i+1, device)
	}
	w.Flush()
	return nil
}

// RelayList prints the client's relay list.
func (c *CLI) RelayList() error {
	relays, err := c.controller.ListRelays()
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, relays)
	return nil
}

// RelaySet points the client at loc without connecting.
func (c *CLI) RelaySet(loc vpn.Location) error {
	result, err := c.controller.SetRelayLocation(loc)
	if err != nil {
		return err
	}
	c.printOutput(result, "✓ Relay location set to "+loc.String())
	return nil
}

// RelayHostname points the client at a relay by hostname.
func (c *CLI) RelayHostname(hostname string) error {
	result, err := c.controller.SetRelayHostname(hostname)
	if err != nil {
		return err
	}
	c.printOutput(result, "✓ Relay set to "+hostname)
	return nil
}

// RelayUpdate refreshes the client's relay list.
func (c *CLI) RelayUpdate() error {
	result, err := c.controller.UpdateRelays()
	if err != nil {
		return err
	}
	c.printOutput(result, "✓ Relay list update requested")
	return nil
}

// Presets lists the configured presets.
func (c *CLI) Presets() error {
	names := c.config.PresetNames()
	if len(names) == 0 {
		fmt.Fprintln(c.out, "No presets configured.")
		return nil
	}

	w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tCOUNTRY\tCITY\tSERVER")
	fmt.Fprintln(w, "----\t-------\t----\t------")
	for _, name := range names {
		p := c.config.Presets[name]
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", name, p.Country, dash(p.City), dash(p.Server))
	}
	w.Flush()
	return nil
}

// Watch monitors the connection until ctx is cancelled. If loc is not
// zero and auto-reconnect is enabled, a dropped tunnel is reconnected to loc.
func (c *CLI) Watch(ctx context.Context, loc vpn.Location) error {
	settings := c.config.Monitor
	monitor := vpn.NewMonitor(c.controller, loc, vpn.MonitorConfig{
		CheckInterval:        settings.Interval,
		FailureThreshold:     settings.FailureThreshold,
		AutoReconnect:        settings.AutoReconnect,
		MaxReconnectAttempts: settings.MaxReconnectAttempts,
	})

	monitor.SetOnStateChange(func(oldState, newState vpn.ConnectionStatus) {
		fmt.Fprintf(c.out, "%s  %s -> %s\n",
			c.now().Format("15:04:05"), oldState, c.paint(statusStyle(newState), newState.String()))
		if oldState == vpn.StatusConnected && newState != vpn.StatusConnected {
			notify.NotifyDisconnected(c.notifier)
		}
	})
	monitor.SetOnReconnecting(func(target vpn.Location, attempt int) {
		fmt.Fprintf(c.out, "%s  reconnecting to %s (attempt %d)\n", c.now().Format("15:04:05"), target, attempt)
		notify.NotifyReconnecting(c.notifier, target.String(), attempt)
	})
	monitor.SetOnReconnectFailed(func(target vpn.Location, err error) {
		fmt.Fprintf(c.out, "%s  %s\n", c.now().Format("15:04:05"),
			c.paint(errorStyle, fmt.Sprintf("reconnect to %s failed: %v", target, err)))
		notify.NotifyError(c.notifier, target.String(), err.Error())
	})

	if loc.IsZero() {
		fmt.Fprintf(c.out, "Watching connection every %s (Ctrl+C to stop)\n", formatDuration(settings.Interval))
	} else {
		fmt.Fprintf(c.out, "Watching connection to %s every %s (Ctrl+C to stop)\n", loc, formatDuration(settings.Interval))
	}

	monitor.Start()
	<-ctx.Done()
	monitor.Stop()

	snap := monitor.Snapshot()
	if !snap.LastConnected.IsZero() {
		fmt.Fprintf(c.out, "Last seen connected at %s\n", snap.LastConnected.Format(time.RFC3339))
	}
	return nil
}

// History prints the most recent connect attempts.
func (c *CLI) History(limit int) error {
	if c.history == nil {
		return ErrHistoryDisabled
	}

	entries, err := c.history.Recent(context.Background(), limit)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Fprintln(c.out, "No connection attempts recorded.")
		return nil
	}

	w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTARTED\tLOCATION\tRESULT\tELAPSED")
	fmt.Fprintln(w, "--\t-------\t--------\t------\t-------")

	for _, e := range entries {
		result := "timeout"
		if e.Connected {
			result = "connected"
		}

		// Truncate ID for display
		shortID := e.ID
		if len(shortID) > 8 {
			shortID = shortID[:8]
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			shortID, e.StartedAt.Format("2006-01-02 15:04:05"), e.Location, result, formatDuration(e.Elapsed))
	}

	w.Flush()
	return nil
}

// printOutput prints the client's reply, or fallback when it said nothing.
func (c *CLI) printOutput(result vpn.CommandResult, fallback string) {
	text := strings.TrimSpace(result.Stdout)
	if text == "" {
		text = strings.TrimSpace(result.Stderr)
	}
	if text == "" {
		text = fallback
	}
	if text != "" {
		fmt.Fprintln(c.out, text)
	}
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// formatDuration formats a duration in a human-readable format.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}

	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	}
	if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%ds", seconds)
}
