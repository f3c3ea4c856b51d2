// Package notify sends desktop notifications for connection events
// over the freedesktop notification service on the session bus.
package notify

import (
	"fmt"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/yllada/mullvadctl/common"
)

const (
	busName    = "org.freedesktop.Notifications"
	objectPath = "/org/freedesktop/Notifications"
	notifyCall = busName + ".Notify"
)

// Values of the freedesktop "urgency" hint.
const (
	urgencyLow      byte = 0
	urgencyNormal   byte = 1
	urgencyCritical byte = 2
)

// NotificationType represents the type of notification
type NotificationType int

const (
	NotificationInfo NotificationType = iota
	NotificationSuccess
	NotificationWarning
	NotificationError
)

// Notification represents a desktop notification
type Notification struct {
	Title   string
	Message string
	Type    NotificationType
	Icon    string
}

// icon returns the explicit icon or one chosen by type.
func (n Notification) icon() string {
	if n.Icon != "" {
		return n.Icon
	}
	switch n.Type {
	case NotificationWarning:
		return "dialog-warning"
	case NotificationError:
		return "dialog-error"
	default:
		return "network-vpn"
	}
}

func (n Notification) urgency() byte {
	switch n.Type {
	case NotificationError:
		return urgencyCritical
	case NotificationWarning:
		return urgencyNormal
	default:
		return urgencyLow
	}
}

// Sender delivers notifications.
type Sender interface {
	common.Notifier
	Send(n Notification) error
}

// DBusNotifier sends notifications over the session bus. The bus
// connection is opened on first use.
type DBusNotifier struct {
	mu      sync.Mutex
	conn    *dbus.Conn
	appName string
	timeout time.Duration
}

// NewDBusNotifier creates a notifier that identifies itself as appName.
func NewDBusNotifier(appName string) *DBusNotifier {
	return &DBusNotifier{
		appName: appName,
		timeout: common.NotificationTimeout,
	}
}

func (d *DBusNotifier) connection() (*dbus.Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.conn != nil {
		return d.conn, nil
	}
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("connecting to session bus: %w", err)
	}
	d.conn = conn
	return conn, nil
}

// Send displays n.
func (d *DBusNotifier) Send(n Notification) error {
	conn, err := d.connection()
	if err != nil {
		return err
	}

	hints := map[string]dbus.Variant{
		"urgency": dbus.MakeVariant(n.urgency()),
	}

	obj := conn.Object(busName, dbus.ObjectPath(objectPath))
	call := obj.Call(notifyCall, 0,
		d.appName,
		uint32(0),
		n.icon(),
		n.Title,
		n.Message,
		[]string{},
		hints,
		int32(d.timeout.Milliseconds()),
	)
	if call.Err != nil {
		return fmt.Errorf("sending notification: %w", call.Err)
	}
	return nil
}

// Notify sends an informational notification.
func (d *DBusNotifier) Notify(title, message string) error {
	return d.Send(Notification{Title: title, Message: message, Type: NotificationInfo})
}

// NotifyWithIcon sends an informational notification with a custom icon.
func (d *DBusNotifier) NotifyWithIcon(title, message, icon string) error {
	return d.Send(Notification{Title: title, Message: message, Type: NotificationInfo, Icon: icon})
}

// Close releases the bus connection.
func (d *DBusNotifier) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.conn == nil {
		return nil
	}
	err := d.conn.Close()
	d.conn = nil
	return err
}

// NopNotifier discards notifications.
type NopNotifier struct{}

func (NopNotifier) Send(Notification) error                     { return nil }
func (NopNotifier) Notify(string, string) error                 { return nil }
func (NopNotifier) NotifyWithIcon(string, string, string) error { return nil }

// show sends n and logs a failure. Notifications are never fatal.
func show(s Sender, n Notification) {
	if err := s.Send(n); err != nil {
		common.LogWarn("Error showing notification: %v", err)
	}
}

// NotifyConnected shows a notification when the tunnel comes up.
func NotifyConnected(s Sender, location string) {
	show(s, Notification{
		Title:   "VPN Connected",
		Message: "Connected to " + location,
		Type:    NotificationSuccess,
		Icon:    "network-vpn",
	})
}

// NotifyDisconnected shows a notification when the tunnel goes down.
func NotifyDisconnected(s Sender) {
	show(s, Notification{
		Title:   "VPN Disconnected",
		Message: "The tunnel is down",
		Type:    NotificationInfo,
		Icon:    "network-vpn-disconnected",
	})
}

// NotifyTimeout shows a notification when a connect did not converge.
func NotifyTimeout(s Sender, location string) {
	show(s, Notification{
		Title:   "Connection Timed Out",
		Message: "Could not connect to " + location,
		Type:    NotificationWarning,
		Icon:    "network-vpn-error",
	})
}

// NotifyReconnecting shows a notification before an automatic reconnect.
func NotifyReconnecting(s Sender, location string, attempt int) {
	show(s, Notification{
		Title:   "Reconnecting VPN",
		Message: fmt.Sprintf("Reconnecting to %s (attempt %d)...", location, attempt),
		Type:    NotificationInfo,
		Icon:    "network-vpn-acquiring",
	})
}

// NotifyError shows a notification for connection errors.
func NotifyError(s Sender, location, errorMsg string) {
	show(s, Notification{
		Title:   "Connection Error",
		Message: location + ": " + errorMsg,
		Type:    NotificationError,
		Icon:    "network-vpn-error",
	})
}
