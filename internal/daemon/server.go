// oreon/lumen · watchthelight <wtl>

package daemon

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"sync"

	"github.com/oreonproject/lumen/internal/controller"
	"github.com/oreonproject/lumen/internal/state"
	"github.com/oreonproject/lumen/pkg/events"
	"github.com/oreonproject/lumen/pkg/ipc"
)

// Server handles IPC connections from clients (tray, CLI).
type Server struct {
	socketPath  string
	listener    net.Listener
	ctrl        *controller.Controller
	emitter     *events.Emitter
	done        chan struct{}
	subscribers map[net.Conn]bool
	subMu       sync.Mutex
}

// NewServer creates an IPC server that exposes the controller.
func NewServer(socketPath string, ctrl *controller.Controller, emitter *events.Emitter) *Server {
	if emitter == nil {
		emitter = events.NewEmitter()
	}
	s := &Server{
		socketPath:  socketPath,
		ctrl:        ctrl,
		emitter:     emitter,
		done:        make(chan struct{}),
		subscribers: make(map[net.Conn]bool),
	}

	// Push persisted mode transitions to subscribers
	ctrl.OnModeChange(func(old, new state.Record) {
		s.broadcastModeChange(old, new)
	})

	return s
}

// Listen creates the unix socket and starts accepting connections.
func (s *Server) Listen() error {
	// Ensure parent directory exists
	if err := os.MkdirAll(filepath.Dir(s.socketPath), 0755); err != nil {
		return err
	}

	// Remove stale socket if it exists
	os.Remove(s.socketPath)

	ln, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return err
	}
	s.listener = ln

	slog.Info("IPC server listening", "socket", s.socketPath)
	return nil
}

// Serve accepts connections until Close is called.
func (s *Server) Serve() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.done:
				return // shutdown
			default:
				slog.Warn("accept error", "error", err)
				continue
			}
		}
		go s.handleConnection(conn)
	}
}

// Close shuts down the server.
func (s *Server) Close() error {
	close(s.done)
	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.socketPath)
	return nil
}

// subscribe adds a connection to the subscriber list.
func (s *Server) subscribe(conn net.Conn) {
	s.subMu.Lock()
	s.subscribers[conn] = true
	s.subMu.Unlock()
	slog.Debug("client subscribed", "remote", conn.RemoteAddr())
}

// unsubscribe removes a connection from the subscriber list.
func (s *Server) unsubscribe(conn net.Conn) {
	s.subMu.Lock()
	delete(s.subscribers, conn)
	s.subMu.Unlock()
}

// broadcastModeChange sends mode change events to all subscribers.
func (s *Server) broadcastModeChange(old, new state.Record) {
	event := ipc.ModeChangeEvent{
		OldMode:  old.Mode(),
		NewMode:  new.Mode(),
		FilterOn: new.Bluelight,
	}
	resp := makeResponse("event", event)

	s.subMu.Lock()
	subscribers := make([]net.Conn, 0, len(s.subscribers))
	for conn := range s.subscribers {
		subscribers = append(subscribers, conn)
	}
	s.subMu.Unlock()

	for _, conn := range subscribers {
		encoder := json.NewEncoder(conn)
		if err := encoder.Encode(resp); err != nil {
			slog.Debug("failed to send event to subscriber", "error", err)
			s.unsubscribe(conn)
		}
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()
	defer s.unsubscribe(conn) // clean up subscription on disconnect

	reader := bufio.NewReader(conn)
	encoder := json.NewEncoder(conn)

	for {
		// Read one line (one JSON request)
		line, err := reader.ReadBytes('\n')
		if err != nil {
			return // client disconnected
		}

		var req ipc.Request
		if err := json.Unmarshal(line, &req); err != nil {
			if err := encoder.Encode(ipc.Response{
				Success: false,
				Error:   "invalid JSON",
			}); err != nil {
				slog.Warn("failed to encode error response", "error", err)
				return
			}
			continue
		}

		// Handle subscribe specially - it registers this connection for push events
		if req.Command == ipc.CmdSubscribe {
			s.subscribe(conn)
			resp := makeResponse(req.ID, "subscribed")
			if err := encoder.Encode(resp); err != nil {
				slog.Warn("failed to encode response", "error", err)
				return
			}
			continue
		}

		resp := s.handleRequest(&req)
		if err := encoder.Encode(resp); err != nil {
			slog.Warn("failed to encode response", "error", err)
			return
		}
	}
}

// makeResponse creates a response with properly marshaled data.
func makeResponse(id string, data interface{}) *ipc.Response {
	resp := &ipc.Response{ID: id, Success: true}
	if data != nil {
		jsonData, err := json.Marshal(data)
		if err != nil {
			return &ipc.Response{ID: id, Success: false, Error: "marshal error: " + err.Error()}
		}
		resp.Data = jsonData
	}
	return resp
}

func (s *Server) handleRequest(req *ipc.Request) *ipc.Response {
	evt := events.StartIPCRequest(req.Command, req.ID).ClientVersion(req.Version)
	var resp *ipc.Response
	defer func() {
		if resp != nil && !resp.Success {
			evt.SetError(fmt.Errorf("%s", resp.Error))
		}
		if resp != nil {
			evt.ResponseSize(len(resp.Data))
		}
		s.emitter.Emit(evt.End())
	}()

	// Check protocol version (0 means old client that didn't send version)
	if req.Version != 0 && req.Version != ipc.ProtocolVersion {
		resp = &ipc.Response{
			ID:      req.ID,
			Success: false,
			Error:   fmt.Sprintf("protocol version mismatch: client=%d, server=%d", req.Version, ipc.ProtocolVersion),
		}
		return resp
	}

	ctx := context.Background()

	switch req.Command {
	case ipc.CmdPing:
		resp = makeResponse(req.ID, "pong")

	case ipc.CmdStatus:
		st := s.ctrl.Status(ctx)
		payload := ipc.StatusResponse{
			Mode:        st.Mode,
			FilterOn:    st.FilterOn,
			LastTempK:   st.LastTemp,
			Period:      st.Period,
			City:        st.Place.City,
			Country:     st.Place.Country,
			HaveWeather: st.HaveWeather,
		}
		if st.HaveWeather {
			payload.Condition = st.Weather.Condition
			payload.Description = st.Weather.Description
			payload.AmbientC = st.Weather.TempC
		}
		resp = makeResponse(req.ID, payload)

	case ipc.CmdReconcile:
		if err := s.ctrl.Reconcile(ctx, "ipc"); err != nil {
			resp = &ipc.Response{ID: req.ID, Success: false, Error: err.Error()}
		} else {
			resp = makeResponse(req.ID, "reconciled")
		}

	case ipc.CmdFilterToggle:
		if err := s.ctrl.ToggleFilter(ctx); err != nil {
			resp = &ipc.Response{ID: req.ID, Success: false, Error: err.Error()}
		} else {
			resp = makeResponse(req.ID, "filter toggled")
		}

	case ipc.CmdModeAuto:
		if err := s.ctrl.SwitchToAutomatic(ctx); err != nil {
			resp = &ipc.Response{ID: req.ID, Success: false, Error: err.Error()}
		} else {
			resp = makeResponse(req.ID, "automatic mode")
		}

	case ipc.CmdModeManual:
		if err := s.ctrl.SwitchToManual(ctx); err != nil {
			resp = &ipc.Response{ID: req.ID, Success: false, Error: err.Error()}
		} else {
			resp = makeResponse(req.ID, "manual mode")
		}

	case ipc.CmdModeToggle:
		if err := s.ctrl.ToggleManualMode(ctx); err != nil {
			resp = &ipc.Response{ID: req.ID, Success: false, Error: err.Error()}
		} else {
			resp = makeResponse(req.ID, "mode toggled")
		}

	default:
		resp = &ipc.Response{
			ID:      req.ID,
			Success: false,
			Error:   "unknown command: " + req.Command,
		}
	}

	return resp
}
