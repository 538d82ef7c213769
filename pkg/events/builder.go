// oreon/lumen · watchthelight <wtl>

package events

import (
	"time"

	"github.com/google/uuid"
)

// Builder accumulates fields for an in-flight operation and stamps timing
// on End. One builder per logical operation.
type Builder struct {
	event Event
	err   error
}

// Start begins a new event for the given type and component.
func Start(eventType EventType, component string) *Builder {
	return &Builder{
		event: Event{
			Type:        eventType,
			OperationID: uuid.NewString(),
			Component:   component,
			StartedAt:   time.Now(),
			Success:     true,
			Fields:      make(map[string]interface{}),
		},
	}
}

// Set records an operation-specific field.
func (b *Builder) Set(key string, value interface{}) *Builder {
	b.event.Fields[key] = value
	return b
}

// SetError marks the operation as failed. A nil error is ignored.
func (b *Builder) SetError(err error) *Builder {
	if err != nil {
		b.err = err
		b.event.Success = false
		b.event.Error = err.Error()
	}
	return b
}

// End finalizes timing and returns the completed event.
func (b *Builder) End() Event {
	b.event.Duration = time.Since(b.event.StartedAt)
	b.event.DurationMs = b.event.Duration.Milliseconds()
	return b.event
}
