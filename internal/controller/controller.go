// oreon/lumen · watchthelight <wtl>

// Package controller owns the mode state machine. Every operation is a
// read-modify-write cycle over the persisted record: reload under lock,
// transition, drive the display, persist, then notify.
package controller

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/oreonproject/lumen/internal/engine"
	"github.com/oreonproject/lumen/internal/geo"
	"github.com/oreonproject/lumen/internal/state"
	"github.com/oreonproject/lumen/internal/weather"
	"github.com/oreonproject/lumen/pkg/events"
)

// Applier drives the external display utility.
type Applier interface {
	Apply(kelvin int) error
}

// Notifier delivers best-effort user-facing messages.
type Notifier interface {
	Send(message string)
}

// Decider computes the automatic-mode target and exposes the weather it saw.
type Decider interface {
	Target(ctx context.Context) int
	Weather(ctx context.Context) (weather.Snapshot, bool)
}

// LocationInfo exposes cached location details for status output.
type LocationInfo interface {
	LocationDetails() geo.Place
}

// Controller reconciles persisted mode, time of day, and weather into display
// temperature changes.
type Controller struct {
	store    *state.Store
	decider  Decider
	applier  Applier
	notifier Notifier
	location LocationInfo
	emitter  *events.Emitter
	logger   *slog.Logger
	now      func() time.Time

	mu        sync.Mutex
	listeners []func(old, new state.Record)
}

// New creates a controller. A nil now defaults to time.Now.
func New(store *state.Store, decider Decider, applier Applier, notifier Notifier,
	location LocationInfo, emitter *events.Emitter, logger *slog.Logger, now func() time.Time) *Controller {
	if emitter == nil {
		emitter = events.NewEmitter()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &Controller{
		store:    store,
		decider:  decider,
		applier:  applier,
		notifier: notifier,
		location: location,
		emitter:  emitter,
		logger:   logger,
		now:      now,
	}
}

// OnModeChange registers a listener invoked after every persisted mode
// transition. Used by the IPC server to push changes to subscribers.
func (c *Controller) OnModeChange(fn func(old, new state.Record)) {
	c.mu.Lock()
	c.listeners = append(c.listeners, fn)
	c.mu.Unlock()
}

func (c *Controller) notifyModeChange(old, new state.Record) {
	c.mu.Lock()
	listeners := make([]func(old, new state.Record), len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.Unlock()
	for _, fn := range listeners {
		fn(old, new)
	}
}

// Reconcile recomputes the automatic-mode temperature and applies it when it
// differs from the last applied value. Manual mode makes it a no-op. Called
// by the daemon tick and on every switch to automatic.
func (c *Controller) Reconcile(ctx context.Context, source string) error {
	evt := events.StartReconcile(source)
	var opErr error
	defer func() {
		evt.SetError(opErr)
		c.emitter.Emit(evt.End())
	}()

	evt.Period(engine.Period(c.now()))

	var applied int
	err := c.store.WithLock(func() error {
		rec := c.store.Load()
		evt.Current(rec.LastTemp)
		if rec.Manual {
			evt.Applied(false)
			return nil
		}

		target := c.decider.Target(ctx)
		evt.Target(target)
		if target == rec.LastTemp {
			c.logger.Debug("temperature unchanged", "kelvin", target)
			evt.Applied(false)
			return nil
		}

		if err := c.applier.Apply(target); err != nil {
			evt.Applied(false)
			return err
		}
		rec.LastTemp = target
		c.store.Save(rec)
		evt.Applied(true)
		applied = target
		return nil
	})
	if err != nil {
		opErr = err
		c.surfaceApplyError(err)
		return err
	}
	if applied != 0 {
		c.notifier.Send(fmt.Sprintf("Screen temperature set to %dK", applied))
	}
	return nil
}

// ToggleFilter flips the blue light filter. Only valid in manual mode; in
// automatic mode it is rejected with a notice and no state change.
func (c *Controller) ToggleFilter(ctx context.Context) error {
	var message string
	var old, updated state.Record
	var changed bool

	err := c.store.WithLock(func() error {
		rec := c.store.Load()
		old = rec
		if !rec.Manual {
			message = "Cannot toggle blue light filter in automatic mode. Switch to manual mode first."
			return nil
		}

		rec.Bluelight = !rec.Bluelight
		target := engine.ManualOff
		if rec.Bluelight {
			target = engine.ManualOn
		}
		if err := c.applier.Apply(target); err != nil {
			return err
		}
		rec.LastTemp = target
		c.store.Save(rec)
		updated = rec
		changed = true
		if rec.Bluelight {
			message = fmt.Sprintf("Blue light filter toggled ON (%dK)", engine.ManualOn)
		} else {
			message = fmt.Sprintf("Blue light filter toggled OFF (%dK)", engine.ManualOff)
		}
		return nil
	})
	if err != nil {
		c.surfaceApplyError(err)
		return err
	}

	c.notifier.Send(message)
	if changed {
		evt := events.StartModeChange(old.Mode(), updated.Mode()).
			FilterOn(updated.Bluelight).Reason("filter_toggle")
		c.emitter.Emit(evt.End())
		c.notifyModeChange(old, updated)
	}
	return nil
}

// ToggleManualMode flips between automatic and manual. Entering manual
// resets the filter and applies the neutral temperature; entering automatic
// resets the filter and reconciles immediately.
func (c *Controller) ToggleManualMode(ctx context.Context) error {
	return c.setManual(ctx, toggleMode, "mode_toggle")
}

// SwitchToAutomatic forces automatic mode. Idempotent: already-automatic
// only notifies.
func (c *Controller) SwitchToAutomatic(ctx context.Context) error {
	return c.setManual(ctx, wantAutomatic, "switch_auto")
}

// SwitchToManual forces manual mode. Idempotent: already-manual only
// notifies.
func (c *Controller) SwitchToManual(ctx context.Context) error {
	return c.setManual(ctx, wantManual, "switch_manual")
}

type modeRequest int

const (
	toggleMode modeRequest = iota
	wantAutomatic
	wantManual
)

func (c *Controller) setManual(ctx context.Context, req modeRequest, reason string) error {
	var message string
	var old, updated state.Record
	var changed, reconcileAfter bool

	err := c.store.WithLock(func() error {
		rec := c.store.Load()
		old = rec

		toManual := !rec.Manual
		if req == wantAutomatic {
			if !rec.Manual {
				message = "Already in automatic mode"
				return nil
			}
			toManual = false
		}
		if req == wantManual {
			if rec.Manual {
				message = "Already in manual mode"
				return nil
			}
			toManual = true
		}

		if toManual {
			rec.Manual = true
			rec.Bluelight = false
			if err := c.applier.Apply(engine.ManualOff); err != nil {
				return err
			}
			rec.LastTemp = engine.ManualOff
			message = fmt.Sprintf("Switched to manual mode - screen set to neutral (%dK)", engine.ManualOff)
		} else {
			rec.Manual = false
			rec.Bluelight = false
			message = "Switched to automatic mode"
			reconcileAfter = true
		}
		c.store.Save(rec)
		updated = rec
		changed = true
		return nil
	})
	if err != nil {
		c.surfaceApplyError(err)
		return err
	}

	c.notifier.Send(message)
	if changed {
		evt := events.StartModeChange(old.Mode(), updated.Mode()).
			FilterOn(updated.Bluelight).Reason(reason)
		c.emitter.Emit(evt.End())
		c.notifyModeChange(old, updated)
	}
	if reconcileAfter {
		// The lock is not held here; Reconcile takes its own cycle.
		return c.Reconcile(ctx, reason)
	}
	return nil
}

// ApplyDirect applies an arbitrary temperature, bypassing mode logic. Used
// by the test command. The last-applied temperature is persisted on success.
func (c *Controller) ApplyDirect(kelvin int) error {
	err := c.store.WithLock(func() error {
		rec := c.store.Load()
		if err := c.applier.Apply(kelvin); err != nil {
			return err
		}
		rec.LastTemp = kelvin
		c.store.Save(rec)
		return nil
	})
	if err != nil {
		c.surfaceApplyError(err)
		return err
	}
	c.notifier.Send(fmt.Sprintf("Screen temperature set to %dK", kelvin))
	return nil
}

// Status is the assembled view the status command and IPC surface report.
type Status struct {
	Place       geo.Place
	Weather     weather.Snapshot
	HaveWeather bool
	Period      string
	Mode        string
	FilterOn    bool
	LastTemp    int
}

// Status gathers the current location, weather, period, and persisted mode.
func (c *Controller) Status(ctx context.Context) Status {
	rec := c.store.Load()
	snap, ok := c.decider.Weather(ctx)
	return Status{
		Place:       c.location.LocationDetails(),
		Weather:     snap,
		HaveWeather: ok,
		Period:      engine.Period(c.now()),
		Mode:        rec.Mode(),
		FilterOn:    rec.Bluelight,
		LastTemp:    rec.LastTemp,
	}
}

// surfaceApplyError pushes apply failures to the user; they are the only
// provider-side failures that are not absorbed.
func (c *Controller) surfaceApplyError(err error) {
	c.notifier.Send(fmt.Sprintf("Error setting temperature: %v", err))
}
