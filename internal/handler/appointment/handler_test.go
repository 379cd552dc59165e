package appointment

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/optorecord-api/internal/middleware"
	"github.com/jwalitptl/optorecord-api/internal/model"
	"github.com/jwalitptl/optorecord-api/internal/service/mocks"
	apperrors "github.com/jwalitptl/optorecord-api/pkg/errors"
	"github.com/jwalitptl/optorecord-api/pkg/event"
)

type recordedEvent struct {
	Type    string
	Payload event.Payload
}

type fakeRecorder struct {
	events []recordedEvent
}

func (r *fakeRecorder) Record(_ context.Context, eventType string, payload interface{}) error {
	r.events = append(r.events, recordedEvent{Type: eventType, Payload: payload.(event.Payload)})
	return nil
}

func setup(t *testing.T, caller *model.AuthUser) (*gin.Engine, *mocks.AppointmentService, *fakeRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := &mocks.AppointmentService{}
	t.Cleanup(func() { svc.AssertExpectations(t) })
	recorder := &fakeRecorder{}

	r := gin.New()
	api := r.Group("", func(c *gin.Context) {
		if caller != nil {
			c.Set(middleware.ContextUser, caller)
		}
	})
	NewHandler(svc).RegisterRoutes(api, event.NewEventTrackerMiddleware(recorder, middleware.ActorID))
	return r, svc, recorder
}

func do(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func detail(patientID, physicianID uuid.UUID) *model.AppointmentDetail {
	return &model.AppointmentDetail{
		Appointment: model.Appointment{
			ID:              uuid.New(),
			PatientID:       patientID,
			PhysicianID:     physicianID,
			AppointmentDate: time.Date(2026, 11, 2, 9, 30, 0, 0, time.UTC),
			Status:          model.AppointmentStatusScheduled,
		},
		PatientEmail:   "pat@example.com",
		PhysicianEmail: "doc@example.com",
	}
}

func TestCreateAppointmentRecordsEvent(t *testing.T) {
	admin := &model.AuthUser{ID: uuid.New(), Type: model.UserTypeAdmin}
	r, svc, recorder := setup(t, admin)

	patientID, physicianID := uuid.New(), uuid.New()
	created := detail(patientID, physicianID)
	svc.On("Create", mock.Anything, admin, mock.MatchedBy(func(req *model.CreateAppointmentRequest) bool {
		return req.PatientID == patientID && req.PhysicianID == physicianID
	})).Return(created, nil)

	w := do(r, http.MethodPost, "/appointments", gin.H{
		"patient_id":       patientID,
		"physician_id":     physicianID,
		"appointment_date": "2026-11-02T09:30:00Z",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	body := decode(t, w)
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, "Appointment created successfully", body["message"])

	require.Len(t, recorder.events, 1)
	assert.Equal(t, "appointment.created", recorder.events[0].Type)
	assert.Equal(t, admin.ID.String(), recorder.events[0].Payload.ActorID)
	assert.Same(t, created, recorder.events[0].Payload.Data)
}

func TestCreateAppointmentValidation(t *testing.T) {
	admin := &model.AuthUser{ID: uuid.New(), Type: model.UserTypeAdmin}
	r, _, recorder := setup(t, admin)

	w := do(r, http.MethodPost, "/appointments", gin.H{"patient_id": uuid.New()})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "error", decode(t, w)["status"])
	assert.Empty(t, recorder.events)
}

func TestCreateAppointmentServiceError(t *testing.T) {
	patient := &model.AuthUser{ID: uuid.New(), Type: model.UserTypePatient}
	r, svc, recorder := setup(t, patient)

	svc.On("Create", mock.Anything, patient, mock.Anything).
		Return(nil, apperrors.Forbidden("Only admins and physicians can create appointments"))

	w := do(r, http.MethodPost, "/appointments", gin.H{
		"patient_id":       uuid.New(),
		"physician_id":     uuid.New(),
		"appointment_date": "2026-11-02T09:30:00Z",
	})

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Only admins and physicians can create appointments", decode(t, w)["message"])
	assert.Empty(t, recorder.events)
}

func TestRequestAppointment(t *testing.T) {
	patient := &model.AuthUser{ID: uuid.New(), Type: model.UserTypePatient}
	r, svc, recorder := setup(t, patient)

	physicianID := uuid.New()
	requested := detail(patient.ID, physicianID)
	requested.Status = model.AppointmentStatusRequested
	svc.On("Request", mock.Anything, patient, mock.Anything).Return(requested, nil)

	w := do(r, http.MethodPost, "/appointments/request", gin.H{
		"physician_id":     physicianID,
		"appointment_date": "2026-11-02T09:30:00Z",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, recorder.events, 1)
	assert.Equal(t, "appointment.requested", recorder.events[0].Type)
}

func TestListAndUpcoming(t *testing.T) {
	physician := &model.AuthUser{ID: uuid.New(), Type: model.UserTypePhysician}
	r, svc, _ := setup(t, physician)

	rows := []*model.AppointmentDetail{detail(uuid.New(), physician.ID)}
	svc.On("List", mock.Anything, physician).Return(rows, nil)
	svc.On("Upcoming", mock.Anything, physician).Return([]*model.AppointmentDetail{}, nil)

	w := do(r, http.MethodGet, "/appointments", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["data"], 1)

	w = do(r, http.MethodGet, "/appointments/upcoming", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["data"], 0)
}

func TestGetAppointment(t *testing.T) {
	physician := &model.AuthUser{ID: uuid.New(), Type: model.UserTypePhysician}
	r, svc, _ := setup(t, physician)

	found := detail(uuid.New(), physician.ID)
	svc.On("Get", mock.Anything, physician, found.ID).Return(found, nil)
	missing := uuid.New()
	svc.On("Get", mock.Anything, physician, missing).Return(nil, apperrors.NotFound("Appointment"))

	w := do(r, http.MethodGet, "/appointments/"+found.ID.String(), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodGet, "/appointments/"+missing.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodGet, "/appointments/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid id", decode(t, w)["message"])
}

func TestUpdateFromBody(t *testing.T) {
	admin := &model.AuthUser{ID: uuid.New(), Type: model.UserTypeAdmin}
	r, svc, recorder := setup(t, admin)

	before := detail(uuid.New(), uuid.New())
	after := *before
	after.Status = model.AppointmentStatusConfirmed
	svc.On("Update", mock.Anything, admin, before.ID, mock.MatchedBy(func(req *model.UpdateAppointmentRequest) bool {
		return req.Status != nil && *req.Status == model.AppointmentStatusConfirmed
	})).Return(before, &after, nil)

	w := do(r, http.MethodPut, "/appointments", gin.H{"id": before.ID, "status": "Confirmed"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Appointment updated successfully", decode(t, w)["message"])

	require.Len(t, recorder.events, 1)
	assert.Equal(t, "appointment.updated", recorder.events[0].Type)
	assert.Same(t, before, recorder.events[0].Payload.Previous)
	assert.Contains(t, recorder.events[0].Payload.Meta, "changes")

	w = do(r, http.MethodPut, "/appointments", gin.H{"status": "Confirmed"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "id is required", decode(t, w)["message"])
}

func TestUpdateRejectsUnknownStatus(t *testing.T) {
	admin := &model.AuthUser{ID: uuid.New(), Type: model.UserTypeAdmin}
	r, _, _ := setup(t, admin)

	w := do(r, http.MethodPut, "/appointments/"+uuid.NewString(), gin.H{"status": "Lost"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteAppointment(t *testing.T) {
	patient := &model.AuthUser{ID: uuid.New(), Type: model.UserTypePatient}
	r, svc, recorder := setup(t, patient)

	deleted := detail(patient.ID, uuid.New())
	svc.On("Delete", mock.Anything, patient, deleted.ID).Return(deleted, nil).Twice()

	w := do(r, http.MethodDelete, "/appointments/"+deleted.ID.String(), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodDelete, "/appointments?id="+deleted.ID.String(), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodDelete, "/appointments", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	require.Len(t, recorder.events, 2)
	assert.Equal(t, "appointment.deleted", recorder.events[1].Type)
}

func TestRequiresAuthenticatedCaller(t *testing.T) {
	r, _, _ := setup(t, nil)

	w := do(r, http.MethodGet, "/appointments", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Authentication required", decode(t, w)["message"])
}
