package realtime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/optorecord-api/internal/middleware"
	"github.com/jwalitptl/optorecord-api/internal/model"
)

func event(eventType string, patientID, physicianID uuid.UUID) []byte {
	return []byte(`{"type":"` + eventType + `","payload":{"data":{"patient_id":"` + patientID.String() +
		`","physician_id":"` + physicianID.String() + `"}}}`)
}

func TestVisible(t *testing.T) {
	patientID, physicianID := uuid.New(), uuid.New()
	msg := event("appointment.created", patientID, physicianID)

	tests := []struct {
		name string
		user model.AuthUser
		want bool
	}{
		{"admin", model.AuthUser{ID: uuid.New(), Type: model.UserTypeAdmin}, true},
		{"owning physician", model.AuthUser{ID: physicianID, Type: model.UserTypePhysician}, true},
		{"other physician", model.AuthUser{ID: uuid.New(), Type: model.UserTypePhysician}, false},
		{"owning patient", model.AuthUser{ID: patientID, Type: model.UserTypePatient}, true},
		{"other patient", model.AuthUser{ID: uuid.New(), Type: model.UserTypePatient}, false},
		{"unknown role", model.AuthUser{ID: patientID, Type: "Guest"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Visible(msg, &tt.user))
		})
	}
}

func TestPublishIgnoresOtherEvents(t *testing.T) {
	h := NewHub(nil)
	require.NoError(t, h.Publish(context.Background(), []byte(`{"type":"patient.created"}`)))
	assert.Len(t, h.broadcast, 0)

	require.NoError(t, h.Publish(context.Background(), []byte(`{"type":"appointment.deleted"}`)))
	assert.Len(t, h.broadcast, 1)
}

func TestHubDeliversToParticipants(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(nil)
	go hub.Run(ctx)

	patient := &model.AuthUser{ID: uuid.New(), Type: model.UserTypePatient}
	r := gin.New()
	r.GET("/ws", func(c *gin.Context) { c.Set(middleware.ContextUser, patient) }, hub.ServeWS)

	srv := httptest.NewServer(r)
	defer srv.Close()

	conn, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, hub.Publish(ctx, event("appointment.created", uuid.New(), uuid.New())))
	mine := event("appointment.updated", patient.ID, uuid.New())
	require.NoError(t, hub.Publish(ctx, mine))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, got, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, string(mine), string(got))
}

func TestServeWSRequiresUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ws", NewHub(nil).ServeWS)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"http://localhost:3000"})

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	assert.True(t, check(req))

	req.Header.Set("Origin", "http://localhost:3000")
	assert.True(t, check(req))

	req.Header.Set("Origin", "http://evil.example")
	assert.False(t, check(req))
}
