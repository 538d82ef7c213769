// oreon/lumen · watchthelight <wtl>

// Package state persists the mode record that drives every decision.
// One JSON record per installation; the file is the sole source of truth
// for mode, reloaded at the start of every mode-changing operation.
package state

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/sys/unix"

	"github.com/oreonproject/lumen/internal/fault"
)

// DefaultTemperature is the last-applied value recorded before the first
// successful apply.
const DefaultTemperature = 4500

// Record is the persisted mode state.
// Bluelight is only meaningful while Manual is true; automatic mode keeps
// it false.
type Record struct {
	Manual    bool `json:"manual"`
	Bluelight bool `json:"bluelight"`
	LastTemp  int  `json:"last_temp"`
}

// Default returns the record used when no valid state file exists.
func Default() Record {
	return Record{Manual: false, Bluelight: false, LastTemp: DefaultTemperature}
}

// Mode renders the record's mode for notifications and status output.
func (r Record) Mode() string {
	if r.Manual {
		return "manual"
	}
	return "automatic"
}

// Store reads and writes the state record.
type Store struct {
	path     string
	lockPath string
	logger   *slog.Logger
}

// NewStore creates a store for the state file at path, locking on lockPath.
func NewStore(path, lockPath string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{path: path, lockPath: lockPath, logger: logger}
}

// Load returns the persisted record. It never fails the caller: a missing or
// malformed file yields the default record, which is persisted so the next
// reader sees a valid file.
func (s *Store) Load() Record {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("state file unreadable, using defaults",
				"path", s.path, "error", fault.New(fault.KindState, err))
		}
		rec := Default()
		s.persist(rec)
		return rec
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		s.logger.Warn("state file malformed, resetting to defaults",
			"path", s.path, "error", fault.New(fault.KindState, err))
		rec = Default()
		s.persist(rec)
		return rec
	}
	return rec
}

// Save persists the record. Failures are logged, not propagated: an
// unwritable state file degrades this process to in-memory state without
// crashing it.
func (s *Store) Save(rec Record) {
	if err := s.write(rec); err != nil {
		s.logger.Error("state save failed, continuing in-memory",
			"path", s.path, "error", fault.New(fault.KindState, err))
	}
}

func (s *Store) persist(rec Record) {
	if err := s.write(rec); err != nil {
		s.logger.Warn("could not persist default state", "path", s.path, "error", err)
	}
}

// write replaces the state file atomically so a concurrent reader never
// observes a partial record.
func (s *Store) write(rec Record) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}

// WithLock holds an exclusive advisory lock for the duration of fn,
// serializing read-modify-write cycles across the daemon and concurrent CLI
// invocations. Lock acquisition failure is logged and fn runs unguarded;
// the lock is a strengthening, not a prerequisite.
func (s *Store) WithLock(fn func() error) error {
	f, err := os.OpenFile(s.lockPath, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		s.logger.Warn("state lock unavailable, proceeding unlocked",
			"path", s.lockPath, "error", err)
		return fn()
	}
	defer f.Close()

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX); err != nil {
		s.logger.Warn("flock failed, proceeding unlocked",
			"path", s.lockPath, "error", err)
		return fn()
	}
	defer unix.Flock(int(f.Fd()), unix.LOCK_UN)

	return fn()
}
