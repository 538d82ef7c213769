// oreon/lumen · watchthelight <wtl>

// Package tray is the system tray client. It talks to the daemon over IPC
// only; all state lives behind the socket.
package tray

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/energye/systray"

	"github.com/oreonproject/lumen/pkg/ipc"
)

// Tray renders daemon state in the system tray and forwards menu actions.
type Tray struct {
	client *ipc.Client // request/response
	events *ipc.Client // push subscription; a blocking Subscribe owns it

	statusItem *systray.MenuItem
	filterItem *systray.MenuItem
}

// New creates a tray bound to the daemon socket. Both clients connect
// lazily, so the tray starts even while the daemon is down.
func New(client, events *ipc.Client) *Tray {
	return &Tray{client: client, events: events}
}

// Run blocks until the tray exits.
func (t *Tray) Run() error {
	systray.Run(t.onReady, t.onExit)
	return nil
}

func (t *Tray) onReady() {
	systray.SetTitle("Lumen")
	systray.SetTooltip("Display color temperature")

	t.statusItem = systray.AddMenuItem("Status: connecting...", "Current mode and temperature")
	t.statusItem.Disable()
	systray.AddSeparator()

	reconcileItem := systray.AddMenuItem("Reconcile now", "Recompute and apply the automatic temperature")
	autoItem := systray.AddMenuItem("Automatic mode", "Temperature from time of day and weather")
	manualItem := systray.AddMenuItem("Manual mode", "Temperature from the filter toggle")
	t.filterItem = systray.AddMenuItem("Toggle blue light filter", "Manual mode only")
	systray.AddSeparator()
	quitItem := systray.AddMenuItem("Quit", "Close the tray")

	reconcileItem.Click(func() { t.command(ipc.CmdReconcile) })
	autoItem.Click(func() { t.command(ipc.CmdModeAuto) })
	manualItem.Click(func() { t.command(ipc.CmdModeManual) })
	t.filterItem.Click(func() { t.command(ipc.CmdFilterToggle) })
	quitItem.Click(func() { systray.Quit() })

	t.refreshStatus()

	// Pushed mode changes refresh immediately; the ticker covers changes made
	// by CLI invocations, which bypass the daemon socket.
	go func() {
		for {
			err := t.events.Subscribe(func(evt ipc.ModeChangeEvent) {
				t.refreshStatus()
			})
			slog.Debug("subscription dropped, retrying", "error", err)
			time.Sleep(5 * time.Second)
		}
	}()
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			t.refreshStatus()
		}
	}()
}

func (t *Tray) onExit() {
	t.client.Close()
	t.events.Close()
}

func (t *Tray) command(cmd string) {
	if _, err := t.client.Do(cmd); err != nil {
		slog.Warn("daemon command failed", "command", cmd, "error", err)
	}
	t.refreshStatus()
}

func (t *Tray) refreshStatus() {
	status, err := t.client.Status()
	if err != nil {
		t.statusItem.SetTitle("Status: daemon unreachable")
		return
	}
	line := fmt.Sprintf("Status: %s, %dK", status.Mode, status.LastTempK)
	if status.Mode == "manual" {
		filter := "off"
		if status.FilterOn {
			filter = "on"
		}
		line += ", filter " + filter
	}
	t.statusItem.SetTitle(line)
}
