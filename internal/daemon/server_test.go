// oreon/lumen · watchthelight <wtl>

package daemon

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/oreonproject/lumen/internal/controller"
	"github.com/oreonproject/lumen/internal/engine"
	"github.com/oreonproject/lumen/internal/geo"
	"github.com/oreonproject/lumen/internal/state"
	"github.com/oreonproject/lumen/internal/weather"
	"github.com/oreonproject/lumen/pkg/ipc"
)

type stubDecider struct{ target int }

func (s *stubDecider) Target(ctx context.Context) int { return s.target }
func (s *stubDecider) Weather(ctx context.Context) (weather.Snapshot, bool) {
	return weather.Snapshot{Condition: weather.ConditionClear, TempC: 18}, true
}

type stubApplier struct{ calls []int }

func (s *stubApplier) Apply(kelvin int) error {
	s.calls = append(s.calls, kelvin)
	return nil
}

type stubNotifier struct{ messages []string }

func (s *stubNotifier) Send(message string) { s.messages = append(s.messages, message) }

type stubLocation struct{}

func (stubLocation) LocationDetails() geo.Place {
	return geo.Place{City: geo.FallbackCity, Country: geo.FallbackCountry}
}

func newTestController(t *testing.T) (*controller.Controller, *state.Store, *stubApplier) {
	t.Helper()
	dir := t.TempDir()
	store := state.NewStore(filepath.Join(dir, "state.json"), filepath.Join(dir, "state.lock"), nil)
	applier := &stubApplier{}
	ctrl := controller.New(store, &stubDecider{target: engine.DayClear}, applier,
		&stubNotifier{}, stubLocation{}, nil, nil, nil)
	return ctrl, store, applier
}

func setupTestServer(t *testing.T) (*Server, string, func()) {
	t.Helper()

	ctrl, _, _ := newTestController(t)

	sockPath := t.TempDir() + "/test.sock"
	server := NewServer(sockPath, ctrl, nil)

	if err := server.Listen(); err != nil {
		t.Fatalf("Listen() error = %v", err)
	}

	go server.Serve()

	// Give server time to start
	time.Sleep(10 * time.Millisecond)

	return server, sockPath, func() { server.Close() }
}

func sendRequest(t *testing.T, sockPath string, req *ipc.Request) *ipc.Response {
	t.Helper()

	conn, err := net.Dial("unix", sockPath)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	defer conn.Close()

	data, _ := json.Marshal(req)
	data = append(data, '\n')
	conn.Write(data)

	reader := bufio.NewReader(conn)
	line, err := reader.ReadBytes('\n')
	if err != nil {
		t.Fatalf("read error: %v", err)
	}

	var resp ipc.Response
	if err := json.Unmarshal(line, &resp); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}

	return &resp
}

func TestServer_Ping(t *testing.T) {
	_, sockPath, cleanup := setupTestServer(t)
	defer cleanup()

	resp := sendRequest(t, sockPath, &ipc.Request{
		ID:      "1",
		Command: ipc.CmdPing,
	})

	if !resp.Success {
		t.Errorf("Success = false, want true")
	}
}

func TestServer_Status(t *testing.T) {
	_, sockPath, cleanup := setupTestServer(t)
	defer cleanup()

	resp := sendRequest(t, sockPath, &ipc.Request{
		ID:      "1",
		Command: ipc.CmdStatus,
	})

	if !resp.Success {
		t.Fatalf("Success = false, error: %s", resp.Error)
	}

	var status ipc.StatusResponse
	if err := resp.UnmarshalData(&status); err != nil {
		t.Fatalf("UnmarshalData error: %v", err)
	}

	if status.Mode != "automatic" {
		t.Errorf("Mode = %v, want automatic", status.Mode)
	}
	if status.LastTempK != state.DefaultTemperature {
		t.Errorf("LastTempK = %d, want %d", status.LastTempK, state.DefaultTemperature)
	}
	if status.City != geo.FallbackCity {
		t.Errorf("City = %v, want %v", status.City, geo.FallbackCity)
	}
}

func TestServer_ModeToggle(t *testing.T) {
	server, sockPath, cleanup := setupTestServer(t)
	defer cleanup()

	// Switch to manual
	resp := sendRequest(t, sockPath, &ipc.Request{
		ID:      "1",
		Command: ipc.CmdModeManual,
	})
	if !resp.Success {
		t.Fatalf("ModeManual failed: %s", resp.Error)
	}
	if got := server.ctrl.Status(context.Background()).Mode; got != "manual" {
		t.Errorf("Mode = %v after mode-manual, want manual", got)
	}

	// Back to automatic
	resp = sendRequest(t, sockPath, &ipc.Request{
		ID:      "2",
		Command: ipc.CmdModeAuto,
	})
	if !resp.Success {
		t.Fatalf("ModeAuto failed: %s", resp.Error)
	}
	if got := server.ctrl.Status(context.Background()).Mode; got != "automatic" {
		t.Errorf("Mode = %v after mode-auto, want automatic", got)
	}
}

func TestServer_Reconcile(t *testing.T) {
	_, sockPath, cleanup := setupTestServer(t)
	defer cleanup()

	resp := sendRequest(t, sockPath, &ipc.Request{
		ID:      "1",
		Command: ipc.CmdReconcile,
	})
	if !resp.Success {
		t.Fatalf("Reconcile failed: %s", resp.Error)
	}
}

func TestServer_VersionMismatch(t *testing.T) {
	_, sockPath, cleanup := setupTestServer(t)
	defer cleanup()

	resp := sendRequest(t, sockPath, &ipc.Request{
		ID:      "1",
		Version: 99,
		Command: ipc.CmdPing,
	})
	if resp.Success {
		t.Error("Success = true for mismatched protocol version")
	}
}

func TestServer_UnknownCommand(t *testing.T) {
	_, sockPath, cleanup := setupTestServer(t)
	defer cleanup()

	resp := sendRequest(t, sockPath, &ipc.Request{
		ID:      "1",
		Command: "bogus",
	})
	if resp.Success {
		t.Error("Success = true for unknown command")
	}
}

func TestServer_SubscribeReceivesModeChange(t *testing.T) {
	_, sockPath, cleanup := setupTestServer(t)
	defer cleanup()

	conn, err := net.Dial("unix", sockPath)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	defer conn.Close()

	reader := bufio.NewReader(conn)
	sub, _ := json.Marshal(&ipc.Request{ID: "1", Command: ipc.CmdSubscribe})
	conn.Write(append(sub, '\n'))
	if _, err := reader.ReadBytes('\n'); err != nil {
		t.Fatalf("subscribe ack: %v", err)
	}

	// Trigger a transition from another connection.
	resp := sendRequest(t, sockPath, &ipc.Request{ID: "2", Command: ipc.CmdModeManual})
	if !resp.Success {
		t.Fatalf("ModeManual failed: %s", resp.Error)
	}

	conn.SetReadDeadline(time.Now().Add(time.Second))
	line, err := reader.ReadBytes('\n')
	if err != nil {
		t.Fatalf("read pushed event: %v", err)
	}
	var pushed ipc.Response
	if err := json.Unmarshal(line, &pushed); err != nil {
		t.Fatalf("unmarshal pushed event: %v", err)
	}
	if pushed.ID != "event" {
		t.Fatalf("pushed ID = %q, want event", pushed.ID)
	}
	var evt ipc.ModeChangeEvent
	if err := pushed.UnmarshalData(&evt); err != nil {
		t.Fatalf("UnmarshalData error: %v", err)
	}
	if evt.NewMode != "manual" {
		t.Errorf("NewMode = %q, want manual", evt.NewMode)
	}
}
