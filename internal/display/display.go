// oreon/lumen · watchthelight <wtl>

// Package display drives the external color-temperature utility. Applying a
// temperature means killing any prior instance and launching a fresh one
// with the requested Kelvin value; the utility itself owns the display for
// as long as it runs.
package display

import (
	"errors"
	"log/slog"
	"os/exec"
	"strconv"
	"time"

	"github.com/oreonproject/lumen/internal/fault"
	"github.com/oreonproject/lumen/pkg/events"
)

// settleDelay gives a terminated instance time to release the display before
// the replacement starts.
const settleDelay = 500 * time.Millisecond

// ErrNotInstalled reports that the utility is missing from PATH. Callers
// surface this one to the user; other launch failures carry the underlying
// error.
var ErrNotInstalled = errors.New("display utility not installed")

// Applier launches the external utility.
type Applier struct {
	utility string
	settle  time.Duration
	logger  *slog.Logger
	emitter *events.Emitter
}

// NewApplier creates an applier for the named utility binary.
func NewApplier(utility string, logger *slog.Logger, emitter *events.Emitter) *Applier {
	if logger == nil {
		logger = slog.Default()
	}
	if emitter == nil {
		emitter = events.NewEmitter()
	}
	return &Applier{utility: utility, settle: settleDelay, logger: logger, emitter: emitter}
}

// Apply terminates prior instances and starts the utility with the given
// temperature. Success means the process launched; the utility reports no
// further outcome.
func (a *Applier) Apply(kelvin int) error {
	evt := events.StartApply(a.utility, kelvin)
	defer func() { a.emitter.Emit(evt.End()) }()

	a.terminatePrior()

	cmd := exec.Command(a.utility, "-t", strconv.Itoa(kelvin))
	if err := cmd.Start(); err != nil {
		var wrapped error
		if errors.Is(err, exec.ErrNotFound) {
			wrapped = fault.New(fault.KindApply, ErrNotInstalled)
		} else {
			wrapped = fault.Newf(fault.KindApply, "launch %s: %w", a.utility, err)
		}
		evt.SetError(wrapped)
		return wrapped
	}

	evt.PID(cmd.Process.Pid)
	a.logger.Info("display utility started",
		"utility", a.utility, "pid", cmd.Process.Pid, "kelvin", kelvin)

	// Reap the child when it exits so it never lingers as a zombie.
	go func() { _ = cmd.Wait() }()

	return nil
}

// terminatePrior kills running instances of the utility. Failure only means
// nothing was running.
func (a *Applier) terminatePrior() {
	if err := exec.Command("pkill", "-x", a.utility).Run(); err == nil {
		time.Sleep(a.settle)
	}
}
