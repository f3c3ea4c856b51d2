package notify

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type recordingSender struct {
	NopNotifier
	sent []Notification
	err  error
}

func (r *recordingSender) Send(n Notification) error {
	r.sent = append(r.sent, n)
	return r.err
}

func TestNotification_IconAndUrgency(t *testing.T) {
	tests := []struct {
		name        string
		n           Notification
		wantIcon    string
		wantUrgency byte
	}{
		{"info", Notification{Type: NotificationInfo}, "network-vpn", urgencyLow},
		{"success", Notification{Type: NotificationSuccess}, "network-vpn", urgencyLow},
		{"warning", Notification{Type: NotificationWarning}, "dialog-warning", urgencyNormal},
		{"error", Notification{Type: NotificationError}, "dialog-error", urgencyCritical},
		{"explicit icon", Notification{Type: NotificationError, Icon: "custom"}, "custom", urgencyCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.n.icon(); got != tt.wantIcon {
				t.Errorf("icon() = %q, want %q", got, tt.wantIcon)
			}
			if got := tt.n.urgency(); got != tt.wantUrgency {
				t.Errorf("urgency() = %d, want %d", got, tt.wantUrgency)
			}
		})
	}
}

func TestHelpers(t *testing.T) {
	s := &recordingSender{}

	NotifyConnected(s, "se got")
	NotifyTimeout(s, "se got")
	NotifyReconnecting(s, "se got", 2)
	NotifyError(s, "se got", "cannot launch VPN client")
	NotifyDisconnected(s)

	want := []Notification{
		{Title: "VPN Connected", Message: "Connected to se got", Type: NotificationSuccess, Icon: "network-vpn"},
		{Title: "Connection Timed Out", Message: "Could not connect to se got", Type: NotificationWarning, Icon: "network-vpn-error"},
		{Title: "Reconnecting VPN", Message: "Reconnecting to se got (attempt 2)...", Type: NotificationInfo, Icon: "network-vpn-acquiring"},
		{Title: "Connection Error", Message: "se got: cannot launch VPN client", Type: NotificationError, Icon: "network-vpn-error"},
		{Title: "VPN Disconnected", Message: "The tunnel is down", Type: NotificationInfo, Icon: "network-vpn-disconnected"},
	}
	if diff := cmp.Diff(want, s.sent); diff != "" {
		t.Errorf("notifications mismatch (-want +got):\n%s", diff)
	}
}

func TestHelpers_SendFailureIsNotFatal(t *testing.T) {
	s := &recordingSender{err: errors.New("no session bus")}

	NotifyConnected(s, "se")

	if len(s.sent) != 1 {
		t.Errorf("sent = %d, want 1", len(s.sent))
	}
}

func TestNopNotifier(t *testing.T) {
	var s Sender = NopNotifier{}

	if err := s.Send(Notification{Title: "x"}); err != nil {
		t.Errorf("Send() error = %v", err)
	}
	if err := s.Notify("x", "y"); err != nil {
		t.Errorf("Notify() error = %v", err)
	}
	if err := s.NotifyWithIcon("x", "y", "z"); err != nil {
		t.Errorf("NotifyWithIcon() error = %v", err)
	}
}

func TestDBusNotifier_CloseWithoutConnection(t *testing.T) {
	d := NewDBusNotifier("mullvadctl")

	if err := d.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
