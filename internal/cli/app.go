// oreon/lumen · watchthelight <wtl>

// Package cli implements the lumen CLI commands.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/oreonproject/lumen/internal/config"
	"github.com/oreonproject/lumen/internal/controller"
	"github.com/oreonproject/lumen/internal/display"
	"github.com/oreonproject/lumen/internal/engine"
	"github.com/oreonproject/lumen/internal/geo"
	"github.com/oreonproject/lumen/internal/journal"
	"github.com/oreonproject/lumen/internal/notifier"
	"github.com/oreonproject/lumen/internal/state"
	"github.com/oreonproject/lumen/internal/weather"
	"github.com/oreonproject/lumen/pkg/events"
)

// app is the explicit handle every command works through: configuration,
// file layout, and the wired component graph. Built once per invocation.
type app struct {
	paths    *config.Paths
	cfg      *config.Config
	logger   *slog.Logger
	emitter  *events.Emitter
	journal  *journal.Journal
	store    *state.Store
	location *geo.Provider
	weather  *weather.Provider
	decider  *engine.Decider
	applier  *display.Applier
	notifier *notifier.Notifier
	ctrl     *controller.Controller
}

// newApp wires the component graph. verbose controls whether logs also go
// to stderr; the log file always receives them.
func newApp(verbose bool) (*app, error) {
	dir := configDir
	if dir == "" {
		var err error
		dir, err = config.DefaultDir()
		if err != nil {
			return nil, err
		}
	}
	paths, err := config.NewPaths(dir)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(paths)
	if err != nil {
		return nil, err
	}

	logger := newLogger(paths.LogFile, verbose)

	var sink events.Sink
	jnl, err := journal.Open(paths.JournalFile, logger)
	if err != nil {
		logger.Warn("journal unavailable", "error", err)
		jnl = nil
	} else {
		sink = jnl
	}

	emitterOpts := []events.EmitterOption{events.WithLogger(logger)}
	if sink != nil {
		emitterOpts = append(emitterOpts, events.WithSink(sink))
	}
	emitter := events.NewEmitter(emitterOpts...)

	store := state.NewStore(paths.StateFile, paths.LockFile, logger)
	location := geo.NewProvider(cfg.API.IPGeolocation, paths.CoordsCache, paths.LocationCache, logger, emitter)
	wthr := weather.NewProvider(cfg.API.OpenWeather, paths.WeatherCache, logger, emitter)
	decider := engine.NewDecider(location, wthr, time.Now)
	applier := display.NewApplier(cfg.Display.Utility, logger, emitter)
	notif := notifier.New(logger)
	ctrl := controller.New(store, decider, applier, notif, location, emitter, logger, time.Now)

	return &app{
		paths:    paths,
		cfg:      cfg,
		logger:   logger,
		emitter:  emitter,
		journal:  jnl,
		store:    store,
		location: location,
		weather:  wthr,
		decider:  decider,
		applier:  applier,
		notifier: notif,
		ctrl:     ctrl,
	}, nil
}

func (a *app) close() {
	if a.journal != nil {
		a.journal.Close()
	}
	a.notifier.Close()
}

// newLogger writes to the append-only log file, and to stderr when verbose.
func newLogger(logFile string, verbose bool) *slog.Logger {
	var writers []io.Writer
	f, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err == nil {
		writers = append(writers, f)
	} else {
		fmt.Fprintf(os.Stderr, "warning: cannot open log file %s: %v\n", logFile, err)
	}
	if verbose || len(writers) == 0 {
		writers = append(writers, os.Stderr)
	}
	handler := slog.NewTextHandler(io.MultiWriter(writers...), nil)
	return slog.New(handler)
}
