package cli

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/yllada/mullvadctl/common"
	"github.com/yllada/mullvadctl/config"
	"github.com/yllada/mullvadctl/history"
	"github.com/yllada/mullvadctl/notify"
	"github.com/yllada/mullvadctl/vpn"
)

// scriptedRunner answers status queries from a queue (the last entry
// repeats) and every other command from a fixed map.
type scriptedRunner struct {
	mu        sync.Mutex
	calls     []string
	statuses  []string
	responses map[string]vpn.CommandResult
}

func (r *scriptedRunner) Run(args ...string) (vpn.CommandResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cmd := strings.Join(args, " ")
	r.calls = append(r.calls, cmd)

	if args[0] == "status" {
		if len(r.statuses) == 0 {
			return vpn.CommandResult{Stdout: "Disconnected\n"}, nil
		}
		out := r.statuses[0]
		if len(r.statuses) > 1 {
			r.statuses = r.statuses[1:]
		}
		return vpn.CommandResult{Stdout: out + "\n"}, nil
	}
	return r.responses[cmd], nil
}

type recordingNotifier struct {
	notify.NopNotifier
	titles []string
}

func (n *recordingNotifier) Send(msg notify.Notification) error {
	n.titles = append(n.titles, msg.Title)
	return nil
}

func newTestCLI(runner vpn.CommandRunner) (*CLI, *bytes.Buffer) {
	controller := vpn.NewController(runner, vpn.ControllerConfig{PollAttempts: 2})
	cfg := config.DefaultConfig()
	cfg.Presets = map[string]config.Preset{
		"work": {Country: "se", City: "got", Server: "se-got-wg-001"},
		"home": {Country: "ch"},
	}

	var out bytes.Buffer
	return New(controller, cfg, Options{Out: &out}), &out
}

func TestCLI_ConnectSuccess(t *testing.T) {
	runner := &scriptedRunner{statuses: []string{"Disconnected", "Connected to se-got-wg-001"}}
	c, out := newTestCLI(runner)
	notifier := &recordingNotifier{}
	c.SetNotifier(notifier)

	if err := c.Connect(vpn.CountryCity("se", "got")); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	want := "Connecting to se got...\n✓ Connected to se got\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
	if diff := cmp.Diff([]string{"VPN Connected"}, notifier.titles); diff != "" {
		t.Errorf("notifications mismatch (-want +got):\n%s", diff)
	}
}

func TestCLI_ConnectTimeout(t *testing.T) {
	runner := &scriptedRunner{statuses: []string{"Disconnected", "Connecting to se-got-wg-001"}}
	c, out := newTestCLI(runner)
	notifier := &recordingNotifier{}
	c.SetNotifier(notifier)

	err := c.Connect(vpn.CountryOnly("se"))
	if !errors.Is(err, common.ErrTimeout) {
		t.Errorf("Connect() error = %v, want ErrTimeout", err)
	}
	if strings.Contains(out.String(), "✓") {
		t.Errorf("output = %q, should not report success", out.String())
	}
	if diff := cmp.Diff([]string{"Connection Timed Out"}, notifier.titles); diff != "" {
		t.Errorf("notifications mismatch (-want +got):\n%s", diff)
	}
}

func TestCLI_ConnectRecordsHistory(t *testing.T) {
	store, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("history.Open() error = %v", err)
	}
	defer store.Close()

	runner := &scriptedRunner{statuses: []string{"Disconnected", "Connecting", "Connected"}}
	c, out := newTestCLI(runner)
	c.SetHistory(store)

	if err := c.Connect(vpn.CountryOnly("ch")); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	entries, err := store.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(entries) != 1 || entries[0].Location != "ch" || !entries[0].Connected {
		t.Fatalf("entries = %+v, want one connected attempt to ch", entries)
	}

	out.Reset()
	if err := c.History(5); err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if !strings.Contains(out.String(), "connected") || !strings.Contains(out.String(), entries[0].ID[:8]) {
		t.Errorf("History() output = %q", out.String())
	}
}

func TestCLI_HistoryDisabled(t *testing.T) {
	c, _ := newTestCLI(&scriptedRunner{})

	if err := c.History(5); !errors.Is(err, ErrHistoryDisabled) {
		t.Errorf("History() error = %v, want ErrHistoryDisabled", err)
	}
}

func TestCLI_ResolveLocation(t *testing.T) {
	c, _ := newTestCLI(&scriptedRunner{})

	tests := []struct {
		name    string
		preset  string
		country string
		city    string
		server  string
		want    string
		wantErr error
	}{
		{name: "default country", want: "us"},
		{name: "default country with city", city: "nyc", want: "us nyc"},
		{name: "explicit country", country: "se", want: "se"},
		{name: "explicit server", country: "se", city: "got", server: "se-got-wg-001", want: "se got se-got-wg-001"},
		{name: "preset", preset: "work", want: "se got se-got-wg-001"},
		{name: "preset prefix", preset: "ho", want: "ch"},
		{name: "city overrides preset", preset: "work", city: "sto", want: "se sto"},
		{name: "country overrides preset", preset: "work", country: "de", want: "de"},
		{name: "unknown preset", preset: "cafe", wantErr: common.ErrPresetNotFound},
		{name: "server without city", country: "se", server: "se-got-wg-001", wantErr: vpn.ErrInvalidLocation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := c.ResolveLocation(tt.preset, tt.country, tt.city, tt.server)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("ResolveLocation() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveLocation() error = %v", err)
			}
			if loc.String() != tt.want {
				t.Errorf("ResolveLocation() = %q, want %q", loc, tt.want)
			}
		})
	}
}

func TestCLI_RunDispatch(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		wantCalls []string
	}{
		{"status", []string{"status"}, []string{"status"}},
		{"status verbose", []string{"status", "-v"}, []string{"status -v"}},
		{"disconnect", []string{"disconnect"}, []string{"disconnect"}},
		{"account default", []string{"account"}, []string{"account get"}},
		{"account login", []string{"account", "login", "1234"}, []string{"account login 1234"}},
		{"account devices", []string{"account", "devices"}, []string{"account list-devices"}},
		{"relay default", []string{"relay"}, []string{"relay list"}},
		{"relay set flags", []string{"relay", "set", "-c", "se", "-C", "got"}, []string{"relay set location se got"}},
		{"relay set preset", []string{"relay", "set", "home"}, []string{"relay set location ch"}},
		{"relay hostname", []string{"relay", "hostname", "se-got-wg-001"}, []string{"relay set hostname se-got-wg-001"}},
		{"relay update", []string{"relay", "update"}, []string{"relay update"}},
		{"connect long flags", []string{"connect", "--country", "se"}, []string{"status", "relay set location se", "connect", "status"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &scriptedRunner{
				statuses: []string{"Disconnected", "Connected"},
				responses: map[string]vpn.CommandResult{
					"account get": {Stdout: "Mullvad account: 1234\n"},
				},
			}
			c, _ := newTestCLI(runner)

			if err := c.Run(context.Background(), tt.args); err != nil {
				t.Fatalf("Run(%v) error = %v", tt.args, err)
			}
			if diff := cmp.Diff(tt.wantCalls, runner.calls); diff != "" {
				t.Errorf("calls mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCLI_RunUsageErrors(t *testing.T) {
	tests := [][]string{
		{"teleport"},
		{"status", "--bogus"},
		{"disconnect", "now"},
		{"account", "login"},
		{"account", "login", "abc"},
		{"account", "close"},
		{"relay", "set"},
		{"relay", "hostname"},
		{"relay", "delete"},
		{"connect", "work", "home"},
		{"history", "-n", "0"},
	}

	for _, args := range tests {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			runner := &scriptedRunner{}
			c, _ := newTestCLI(runner)

			if err := c.Run(context.Background(), args); !errors.Is(err, ErrUsage) {
				t.Errorf("Run(%v) error = %v, want ErrUsage", args, err)
			}
			if len(runner.calls) != 0 {
				t.Errorf("calls = %v, want none", runner.calls)
			}
		})
	}
}

func TestCLI_HelpAndPresets(t *testing.T) {
	c, out := newTestCLI(&scriptedRunner{})

	if err := c.Run(context.Background(), nil); err != nil {
		t.Fatalf("Run(nil) error = %v", err)
	}
	if !strings.Contains(out.String(), "Usage:") {
		t.Errorf("help output = %q", out.String())
	}

	out.Reset()
	if err := c.Run(context.Background(), []string{"presets"}); err != nil {
		t.Fatalf("Run(presets) error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("presets output has %d lines, want 4:\n%s", len(lines), out.String())
	}
	if !strings.HasPrefix(lines[2], "home") || !strings.HasPrefix(lines[3], "work") {
		t.Errorf("presets not sorted:\n%s", out.String())
	}
}

func TestCLI_StatusOutput(t *testing.T) {
	runner := &scriptedRunner{statuses: []string{"Connected to se-got-wg-001\nVisible location: Sweden"}}
	c, out := newTestCLI(runner)

	if err := c.Status(true); err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	want := "Connected to se-got-wg-001\nVisible location: Sweden\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}

func TestCLI_Devices(t *testing.T) {
	runner := &scriptedRunner{responses: map[string]vpn.CommandResult{
		"account list-devices": {Stdout: "Devices on the account:\n  Brave Hat\n  Quick Fox\n"},
	}}
	c, out := newTestCLI(runner)

	if err := c.Devices(); err != nil {
		t.Fatalf("Devices() error = %v", err)
	}
	for _, device := range []string{"Brave Hat", "Quick Fox"} {
		if !strings.Contains(out.String(), device) {
			t.Errorf("output missing %q:\n%s", device, out.String())
		}
	}
}

func TestCLI_DisconnectFallbackMessage(t *testing.T) {
	c, out := newTestCLI(&scriptedRunner{})

	if err := c.Disconnect(); err != nil {
		t.Fatalf("Disconnect() error = %v", err)
	}
	if out.String() != "✓ Disconnect requested\n" {
		t.Errorf("output = %q", out.String())
	}
}

func TestCLI_WatchStopsOnCancel(t *testing.T) {
	runner := &scriptedRunner{statuses: []string{"Connected to se-got-wg-001"}}
	c, out := newTestCLI(runner)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := c.Watch(ctx, vpn.Location{}); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	text := out.String()
	if !strings.Contains(text, "Watching connection every 30s") {
		t.Errorf("output missing banner:\n%s", text)
	}
	if !strings.Contains(text, "Unknown -> Connected") {
		t.Errorf("output missing state change:\n%s", text)
	}
	if !strings.Contains(text, "Last seen connected at") {
		t.Errorf("output missing summary:\n%s", text)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{250 * time.Millisecond, "250ms"},
		{10500 * time.Millisecond, "10s"},
		{90 * time.Second, "1m 30s"},
		{2*time.Hour + 5*time.Minute + 3*time.Second, "2h 5m 3s"},
	}

	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
