// oreon/lumen · watchthelight <wtl>

package daemon

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/oreonproject/lumen/internal/controller"
	"github.com/oreonproject/lumen/internal/engine"
	"github.com/oreonproject/lumen/internal/state"
)

type countingApplier struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (c *countingApplier) Apply(kelvin int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return c.err
}

func (c *countingApplier) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

type safeNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (s *safeNotifier) Send(message string) {
	s.mu.Lock()
	s.messages = append(s.messages, message)
	s.mu.Unlock()
}

func (s *safeNotifier) contains(substr string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.messages {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}

func newTestDaemon(t *testing.T, applier *countingApplier, notifier *safeNotifier) (*Daemon, *state.Store) {
	t.Helper()
	dir := t.TempDir()
	store := state.NewStore(filepath.Join(dir, "state.json"), filepath.Join(dir, "state.lock"), nil)
	ctrl := controller.New(store, &stubDecider{target: engine.DayClear}, applier,
		notifier, stubLocation{}, nil, nil, nil)
	d := New(ctrl, store, notifier, nil, nil, 10*time.Millisecond, 5*time.Millisecond)
	return d, store
}

func TestDaemonRunStopsOnCancel(t *testing.T) {
	notifier := &safeNotifier{}
	d, store := newTestDaemon(t, &countingApplier{}, notifier)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run() did not return after cancellation")
	}

	if !notifier.contains("Starting screen temperature service") {
		t.Error("missing startup notification")
	}
	if !notifier.contains("Service stopped") {
		t.Error("missing stopping notification")
	}
	if got := store.Load().LastTemp; got != engine.DayClear {
		t.Errorf("LastTemp = %d, want %d applied by first tick", got, engine.DayClear)
	}
}

func TestDaemonSurvivesTickFailures(t *testing.T) {
	applier := &countingApplier{err: errors.New("launch failed")}
	notifier := &safeNotifier{}
	d, _ := newTestDaemon(t, applier, notifier)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	// Several backoff periods: the loop must keep retrying, not exit.
	time.Sleep(40 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() error = %v, want nil (failures absorbed)", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run() did not return after cancellation")
	}

	if applier.count() < 2 {
		t.Errorf("applier attempts = %d, want retries after failure", applier.count())
	}
}
