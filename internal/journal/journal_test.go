// oreon/lumen · watchthelight <wtl>

package journal

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/oreonproject/lumen/pkg/events"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "journal.db"), nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

func TestRecordAndRecent(t *testing.T) {
	j := openTestJournal(t)

	first := events.Start(events.EventTypeReconcile, "controller").
		Set(events.FieldTargetKelvin, 5800).End()
	j.Record(first)

	time.Sleep(5 * time.Millisecond) // distinct started_at ordering

	second := events.Start(events.EventTypeApply, "display").End()
	j.Record(second)

	entries, err := j.Recent(10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	// Newest first.
	if entries[0].Type != string(events.EventTypeApply) {
		t.Errorf("entries[0].Type = %q, want apply", entries[0].Type)
	}
	if entries[1].Type != string(events.EventTypeReconcile) {
		t.Errorf("entries[1].Type = %q, want reconcile", entries[1].Type)
	}
	if got := entries[1].Fields[events.FieldTargetKelvin]; got != float64(5800) {
		t.Errorf("target_kelvin field = %v, want 5800", got)
	}
}

func TestRecordFailureEvent(t *testing.T) {
	j := openTestJournal(t)

	b := events.Start(events.EventTypeDaemonTick, "daemon")
	b.SetError(errFake{})
	j.Record(b.End())

	entries, err := j.Recent(1)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(entries))
	}
	if entries[0].Success {
		t.Error("Success = true, want false")
	}
	if entries[0].Error != "fake failure" {
		t.Errorf("Error = %q", entries[0].Error)
	}
}

func TestRecentLimit(t *testing.T) {
	j := openTestJournal(t)
	for i := 0; i < 8; i++ {
		j.Record(events.Start(events.EventTypeDaemonTick, "daemon").End())
	}

	entries, err := j.Recent(3)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(entries) != 3 {
		t.Errorf("len(entries) = %d, want 3", len(entries))
	}
}

type errFake struct{}

func (errFake) Error() string { return "fake failure" }
