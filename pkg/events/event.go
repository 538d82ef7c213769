// oreon/lumen · watchthelight <wtl>

package events

import (
	"time"
)

// EventType identifies the kind of operation being logged.
type EventType string

const (
	EventTypeReconcile  EventType = "reconcile"
	EventTypeApply      EventType = "apply"
	EventTypeModeChange EventType = "mode_change"
	EventTypeFetch      EventType = "fetch"
	EventTypeIPCRequest EventType = "ipc_request"
	EventTypeDaemonTick EventType = "daemon_tick"
)

// Event represents a wide event / canonical log line.
// One Event is emitted per logical operation, containing all relevant context.
type Event struct {
	// Core identification
	Type        EventType `json:"event_type"`
	OperationID string    `json:"operation_id"`
	Component   string    `json:"component"`

	// Timing
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"-"`
	DurationMs int64         `json:"duration_ms"`

	// Outcome
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`

	// High-cardinality fields (operation-specific)
	Fields map[string]interface{} `json:"fields,omitempty"`
}

// Standard field names for consistency across events.
const (
	FieldSource        = "source"
	FieldTargetKelvin  = "target_kelvin"
	FieldCurrentKelvin = "current_kelvin"
	FieldApplied       = "applied"
	FieldPeriod        = "period"
	FieldCondition     = "condition"
	FieldAmbientC      = "ambient_c"
	FieldFromMode      = "from_mode"
	FieldToMode        = "to_mode"
	FieldFilterOn      = "filter_on"
	FieldReason        = "reason"
	FieldCommand       = "command"
	FieldRequestID     = "request_id"
	FieldClientVersion = "client_version"
	FieldResponseSize  = "response_size_bytes"
	FieldCacheHit      = "cache_hit"
	FieldUtility       = "utility"
	FieldPID           = "pid"
	FieldBackoff       = "backoff"
)
