package patient

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

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

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	if err := middleware.RegisterValidators(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type fakeRecorder struct {
	types []string
}

func (r *fakeRecorder) Record(_ context.Context, eventType string, _ interface{}) error {
	r.types = append(r.types, eventType)
	return nil
}

func setup(t *testing.T, caller *model.AuthUser) (*gin.Engine, *mocks.PatientService, *fakeRecorder) {
	t.Helper()
	svc := &mocks.PatientService{}
	t.Cleanup(func() { svc.AssertExpectations(t) })
	recorder := &fakeRecorder{}

	r := gin.New()
	api := r.Group("", func(c *gin.Context) { c.Set(middleware.ContextUser, caller) })
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

func message(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Message
}

func samplePatient() *model.Patient {
	return &model.Patient{User: model.User{ID: uuid.New(), FName: "Ada", LName: "Lovelace", Type: model.UserTypePatient}}
}

func TestStaffOnlyRoutes(t *testing.T) {
	patient := &model.AuthUser{ID: uuid.New(), Type: model.UserTypePatient}
	r, _, _ := setup(t, patient)

	for _, path := range []string{"/patients", "/patients/stats"} {
		w := do(r, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusForbidden, w.Code, path)
	}

	w := do(r, http.MethodPost, "/patients", gin.H{"fname": "x"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestListPatientsBindsFilter(t *testing.T) {
	physician := &model.AuthUser{ID: uuid.New(), Type: model.UserTypePhysician}
	r, svc, _ := setup(t, physician)

	svc.On("List", mock.Anything, physician, mock.MatchedBy(func(f *model.PatientFilter) bool {
		return f.Search == "ada" && f.Status == "active" && f.Limit == 10
	})).Return(&model.PatientListResponse{Patients: []model.PatientSummary{}, Count: 0}, nil)

	w := do(r, http.MethodGet, "/patients?search=ada&status=active&limit=10", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodGet, "/patients?limit=1000", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "limit is too large", message(t, w))
}

func TestCreatePatient(t *testing.T) {
	admin := &model.AuthUser{ID: uuid.New(), Type: model.UserTypeAdmin}
	r, svc, recorder := setup(t, admin)

	created := samplePatient()
	svc.On("Create", mock.Anything, admin, mock.MatchedBy(func(req *model.CreatePatientRequest) bool {
		return req.Email == "ada@example.com" && req.BloodType != nil && *req.BloodType == "O+"
	})).Return(created, nil)

	w := do(r, http.MethodPost, "/patients", gin.H{
		"fname":         "Ada",
		"lname":         "Lovelace",
		"email":         "ada@example.com",
		"username":      "ada",
		"password":      "secret",
		"date_of_birth": "1990-12-10",
		"blood_type":    "O+",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Patient created successfully", message(t, w))
	assert.Equal(t, []string{"patient.created"}, recorder.types)
}

func TestCreatePatientValidation(t *testing.T) {
	admin := &model.AuthUser{ID: uuid.New(), Type: model.UserTypeAdmin}
	r, _, recorder := setup(t, admin)

	tests := []struct {
		name string
		body gin.H
		want string
	}{
		{
			name: "missing fname",
			body: gin.H{"lname": "L", "email": "a@b.co", "username": "u", "password": "p", "date_of_birth": "1990-01-01"},
			want: "fname is required",
		},
		{
			name: "bad email",
			body: gin.H{"fname": "F", "lname": "L", "email": "nope", "username": "u", "password": "p", "date_of_birth": "1990-01-01"},
			want: "email must be a valid email address",
		},
		{
			name: "bad blood type",
			body: gin.H{"fname": "F", "lname": "L", "email": "a@b.co", "username": "u", "password": "p", "date_of_birth": "1990-01-01", "blood_type": "C+"},
			want: "Invalid blood_type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, http.MethodPost, "/patients", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.want, message(t, w))
		})
	}
	assert.Empty(t, recorder.types)
}

func TestGetPatientErrors(t *testing.T) {
	patient := &model.AuthUser{ID: uuid.New(), Type: model.UserTypePatient}
	r, svc, _ := setup(t, patient)

	other := uuid.New()
	svc.On("Get", mock.Anything, patient, other).Return(nil, apperrors.Forbidden(""))

	w := do(r, http.MethodGet, "/patients/"+other.String(), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUpdateAndDeletePatient(t *testing.T) {
	admin := &model.AuthUser{ID: uuid.New(), Type: model.UserTypeAdmin}
	r, svc, recorder := setup(t, admin)

	before := samplePatient()
	after := *before
	after.FName = "Augusta"
	svc.On("Update", mock.Anything, admin, before.ID, mock.Anything).Return(before, &after, nil)
	svc.On("Delete", mock.Anything, admin, before.ID).Return(&after, nil)

	w := do(r, http.MethodPut, "/patients/"+before.ID.String(), gin.H{"fname": "Augusta"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Patient updated successfully", message(t, w))

	w = do(r, http.MethodDelete, "/patients/"+before.ID.String(), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Patient deleted successfully", message(t, w))

	assert.Equal(t, []string{"patient.updated", "patient.deleted"}, recorder.types)
}

func TestSearchActivityAndPortal(t *testing.T) {
	patient := &model.AuthUser{ID: uuid.New(), Type: model.UserTypePatient}
	r, svc, _ := setup(t, patient)

	svc.On("Search", mock.Anything, patient, "ada", 5).
		Return(&model.PatientSearchResponse{Results: []model.PatientSearchResult{}, Query: "ada"}, nil)
	svc.On("Activity", mock.Anything, patient, patient.ID, 0).
		Return(&model.PatientActivityResponse{}, nil)
	svc.On("Portal", mock.Anything, patient, patient.ID).
		Return(&model.PortalResponse{Patient: samplePatient()}, nil)

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/patients/search?q=ada&limit=5", nil).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/patients/"+patient.ID.String()+"/activity", nil).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/patient-portal/"+patient.ID.String(), nil).Code)
}
