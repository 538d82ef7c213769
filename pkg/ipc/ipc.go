// oreon/lumen · watchthelight <wtl>

// Package ipc defines the newline-delimited JSON protocol the daemon exposes
// on its unix socket, plus a client for the CLI and tray.
package ipc

import "encoding/json"

// ProtocolVersion guards against skew between daemon and clients.
const ProtocolVersion = 1

// Commands understood by the daemon.
const (
	CmdPing         = "ping"
	CmdStatus       = "status"
	CmdReconcile    = "reconcile"
	CmdFilterToggle = "filter-toggle"
	CmdModeAuto     = "mode-auto"
	CmdModeManual   = "mode-manual"
	CmdModeToggle   = "mode-toggle"
	CmdSubscribe    = "subscribe"
)

// Request is one client command.
type Request struct {
	ID      string `json:"id"`
	Version int    `json:"version"`
	Command string `json:"command"`
}

// Response answers one request, or carries a pushed event for subscribers
// (ID "event").
type Response struct {
	ID      string          `json:"id"`
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// UnmarshalData decodes the response payload into v.
func (r *Response) UnmarshalData(v interface{}) error {
	return json.Unmarshal(r.Data, v)
}

// StatusResponse is the payload for CmdStatus.
type StatusResponse struct {
	Mode        string  `json:"mode"`
	FilterOn    bool    `json:"filter_on"`
	LastTempK   int     `json:"last_temp_k"`
	Period      string  `json:"period"`
	City        string  `json:"city"`
	Country     string  `json:"country"`
	Condition   string  `json:"condition,omitempty"`
	Description string  `json:"description,omitempty"`
	AmbientC    float64 `json:"ambient_c,omitempty"`
	HaveWeather bool    `json:"have_weather"`
}

// ModeChangeEvent is pushed to subscribers when the persisted mode changes.
type ModeChangeEvent struct {
	OldMode  string `json:"old_mode"`
	NewMode  string `json:"new_mode"`
	FilterOn bool   `json:"filter_on"`
}
