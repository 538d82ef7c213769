// oreon/lumen · watchthelight <wtl>

// Package notifier sends best-effort desktop notifications over the session
// bus. A missing bus or notification daemon is silently tolerated; every
// message is also logged.
package notifier

import (
	"log/slog"
	"time"

	"github.com/esiqveland/notify"
	"github.com/godbus/dbus/v5"
)

const (
	appName = "Lumen"
	appIcon = "weather-clear"
	timeout = 3 * time.Second
)

// Notifier pushes desktop notifications.
type Notifier struct {
	conn   *dbus.Conn
	logger *slog.Logger
}

// New connects to the session bus. When no bus is available the returned
// Notifier still works but only logs.
func New(logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	conn, err := dbus.SessionBusPrivate()
	if err == nil {
		if err = conn.Auth(nil); err == nil {
			err = conn.Hello()
		}
		if err != nil {
			conn.Close()
			conn = nil
		}
	}
	if err != nil {
		logger.Debug("session bus unavailable, notifications disabled", "error", err)
	}
	return &Notifier{conn: conn, logger: logger}
}

// Send shows a transient notification with the given body.
func (n *Notifier) Send(message string) {
	n.logger.Info("notify", "message", message)
	if n.conn == nil {
		return
	}
	_, err := notify.SendNotification(n.conn, notify.Notification{
		AppName:       appName,
		AppIcon:       appIcon,
		Summary:       "Screen temperature",
		Body:          message,
		ExpireTimeout: timeout,
	})
	if err != nil {
		n.logger.Debug("notification failed", "error", err)
	}
}

// Close releases the bus connection.
func (n *Notifier) Close() {
	if n.conn != nil {
		n.conn.Close()
	}
}
