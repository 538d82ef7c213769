// oreon/lumen · watchthelight <wtl>

package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")
	lock := filepath.Join(dir, "state.lock")
	return NewStore(path, lock, nil), path
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	s, path := newTestStore(t)

	rec := s.Load()
	if rec != Default() {
		t.Errorf("Load() = %+v, want defaults %+v", rec, Default())
	}
	if rec.LastTemp != 4500 {
		t.Errorf("LastTemp = %d, want 4500", rec.LastTemp)
	}

	// Defaults must be persisted so the next reader sees a valid file.
	if _, err := os.Stat(path); err != nil {
		t.Errorf("state file not persisted: %v", err)
	}
}

func TestLoadMalformedFileResetsToDefaults(t *testing.T) {
	s, path := newTestStore(t)
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	rec := s.Load()
	if rec != Default() {
		t.Errorf("Load() = %+v, want defaults", rec)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var reread Record
	if err := json.Unmarshal(data, &reread); err != nil {
		t.Errorf("persisted state still malformed: %v", err)
	}
}

func TestSaveLoadRoundtrip(t *testing.T) {
	s, _ := newTestStore(t)

	want := Record{Manual: true, Bluelight: true, LastTemp: 5000}
	s.Save(want)

	if got := s.Load(); got != want {
		t.Errorf("Load() = %+v, want %+v", got, want)
	}
}

func TestSaveUnwritablePathDoesNotPanic(t *testing.T) {
	s := NewStore("/nonexistent-dir/state.json", "/nonexistent-dir/state.lock", nil)
	s.Save(Default()) // must log, not crash
}

func TestWithLockRunsFunction(t *testing.T) {
	s, _ := newTestStore(t)

	ran := false
	if err := s.WithLock(func() error {
		ran = true
		return nil
	}); err != nil {
		t.Fatalf("WithLock() error = %v", err)
	}
	if !ran {
		t.Error("locked function did not run")
	}
}

func TestModeString(t *testing.T) {
	if got := (Record{Manual: true}).Mode(); got != "manual" {
		t.Errorf("Mode() = %q, want manual", got)
	}
	if got := (Record{}).Mode(); got != "automatic" {
		t.Errorf("Mode() = %q, want automatic", got)
	}
}
