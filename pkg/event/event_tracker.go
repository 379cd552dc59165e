package event

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ActorFunc extracts the id of the authenticated caller.
type ActorFunc func(c *gin.Context) string

type EventTrackerMiddleware struct {
	recorder Recorder
	actor    ActorFunc
	now      func() time.Time
}

func NewEventTrackerMiddleware(recorder Recorder, actor ActorFunc) *EventTrackerMiddleware {
	return &EventTrackerMiddleware{
		recorder: recorder,
		actor:    actor,
		now:      time.Now,
	}
}

// TrackEvent records "<entityType>.<action>" after a successful request whose
// handler stored event data.
func (m *EventTrackerMiddleware) TrackEvent(entityType, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventCtx := &EventContext{
			Resource:  entityType,
			Operation: action,
		}
		c.Set(ContextKey, eventCtx)

		c.Next()

		if eventCtx.NewData == nil || c.Writer.Status() >= http.StatusBadRequest {
			return
		}

		payload := Payload{
			Entity:     entityType,
			Action:     action,
			Data:       eventCtx.NewData,
			Previous:   eventCtx.OldData,
			Meta:       eventCtx.Additional,
			OccurredAt: m.now().UTC(),
		}
		if m.actor != nil {
			payload.ActorID = m.actor(c)
		}

		// The response is already written; a failed record only gets logged.
		if err := m.recorder.Record(c.Request.Context(), eventCtx.Type(), payload); err != nil {
			log.Error().
				Err(err).
				Str("event_type", eventCtx.Type()).
				Str("request_id", c.GetString("request_id")).
				Msg("Failed to record event")
		}
	}
}
