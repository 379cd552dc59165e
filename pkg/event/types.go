package event

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
)

// ContextKey is the gin context key holding the *EventContext of a tracked route.
const ContextKey = "eventCtx"

// EventContext is filled in by handlers of tracked routes. The middleware
// records an event only when NewData is set.
type EventContext struct {
	Resource   string
	Operation  string
	OldData    interface{}
	NewData    interface{}
	Additional map[string]interface{}
}

// FromContext returns the event context of the current route, or nil when the
// route is not tracked. All EventContext methods accept a nil receiver.
func FromContext(c *gin.Context) *EventContext {
	v, ok := c.Get(ContextKey)
	if !ok {
		return nil
	}
	ec, _ := v.(*EventContext)
	return ec
}

func (e *EventContext) SetData(data interface{}) {
	if e == nil {
		return
	}
	e.NewData = data
}

// SetChange stores both versions and the field level diff between them.
func (e *EventContext) SetChange(old, new interface{}) {
	if e == nil {
		return
	}
	e.OldData = old
	e.NewData = new
	e.Add("changes", Changes(old, new))
}

func (e *EventContext) Add(key string, value interface{}) {
	if e == nil {
		return
	}
	if e.Additional == nil {
		e.Additional = make(map[string]interface{})
	}
	e.Additional[key] = value
}

// Type is the outbox event type, e.g. "appointment.created".
func (e *EventContext) Type() string {
	return e.Resource + "." + e.Operation
}

// Payload is the JSON document stored in the outbox.
type Payload struct {
	Entity     string                 `json:"entity"`
	Action     string                 `json:"action"`
	ActorID    string                 `json:"actor_id,omitempty"`
	Data       interface{}            `json:"data"`
	Previous   interface{}            `json:"previous,omitempty"`
	Meta       map[string]interface{} `json:"meta,omitempty"`
	OccurredAt time.Time              `json:"occurred_at"`
}

// Recorder persists an event so it can be published later.
type Recorder interface {
	Record(ctx context.Context, eventType string, payload interface{}) error
}
