// oreon/lumen · watchthelight <wtl>

// Package daemon runs the reconcile loop and the IPC server.
package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/oreonproject/lumen/internal/controller"
	"github.com/oreonproject/lumen/internal/state"
	"github.com/oreonproject/lumen/pkg/events"
)

// Daemon re-applies the automatic temperature on a schedule. Tick failures
// never stop the loop; they shorten the next sleep to the backoff interval.
type Daemon struct {
	ctrl     *controller.Controller
	store    *state.Store
	notifier controller.Notifier
	emitter  *events.Emitter
	logger   *slog.Logger
	interval time.Duration
	backoff  time.Duration
}

// New creates a daemon around the controller.
func New(ctrl *controller.Controller, store *state.Store, notifier controller.Notifier,
	emitter *events.Emitter, logger *slog.Logger, interval, backoff time.Duration) *Daemon {
	if emitter == nil {
		emitter = events.NewEmitter()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Daemon{
		ctrl:     ctrl,
		store:    store,
		notifier: notifier,
		emitter:  emitter,
		logger:   logger,
		interval: interval,
		backoff:  backoff,
	}
}

// Run loops until ctx is cancelled. Cancellation sends a best-effort
// stopping notification and returns nil.
func (d *Daemon) Run(ctx context.Context) error {
	rec := d.store.Load()
	d.notifier.Send(fmt.Sprintf("Starting screen temperature service, initial temp: %dK", rec.LastTemp))

	for {
		wait := d.interval
		evt := events.StartTick()
		if err := d.ctrl.Reconcile(ctx, "daemon"); err != nil {
			evt.SetError(err)
			evt.Backoff(true)
			wait = d.backoff
			d.logger.Error("reconcile tick failed, backing off",
				"error", err, "retry_in", wait)
		} else {
			evt.Backoff(false)
		}
		d.emitter.Emit(evt.End())

		select {
		case <-ctx.Done():
			d.notifier.Send("Service stopped")
			return nil
		case <-time.After(wait):
		}
	}
}
