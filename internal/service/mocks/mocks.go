// Package mocks holds testify mocks of the service interfaces used by handlers.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/jwalitptl/optorecord-api/internal/model"
	"github.com/jwalitptl/optorecord-api/internal/service/appointment"
	"github.com/jwalitptl/optorecord-api/internal/service/assignment"
	"github.com/jwalitptl/optorecord-api/internal/service/auth"
	"github.com/jwalitptl/optorecord-api/internal/service/dashboard"
	"github.com/jwalitptl/optorecord-api/internal/service/medical"
	"github.com/jwalitptl/optorecord-api/internal/service/patient"
	"github.com/jwalitptl/optorecord-api/internal/service/user"
)

var (
	_ auth.Service        = (*AuthService)(nil)
	_ user.Service        = (*UserService)(nil)
	_ patient.Service     = (*PatientService)(nil)
	_ medical.Service     = (*MedicalService)(nil)
	_ appointment.Service = (*AppointmentService)(nil)
	_ assignment.Service  = (*AssignmentService)(nil)
	_ dashboard.Service   = (*DashboardService)(nil)
)

type AuthService struct{ mock.Mock }

func (m *AuthService) Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*model.AuthResponse)
	return resp, args.Error(1)
}

func (m *AuthService) Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*model.AuthResponse)
	return resp, args.Error(1)
}

func (m *AuthService) Logout(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func (m *AuthService) Authenticate(ctx context.Context, token string) (*model.AuthUser, error) {
	args := m.Called(ctx, token)
	u, _ := args.Get(0).(*model.AuthUser)
	return u, args.Error(1)
}

func (m *AuthService) Me(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *AuthService) TokenTTL() time.Duration {
	return time.Hour
}

type UserService struct{ mock.Mock }

func (m *UserService) List(ctx context.Context, caller *model.AuthUser) ([]*model.User, error) {
	args := m.Called(ctx, caller)
	users, _ := args.Get(0).([]*model.User)
	return users, args.Error(1)
}

func (m *UserService) Create(ctx context.Context, caller *model.AuthUser, req *model.CreateUserRequest) (*model.User, error) {
	args := m.Called(ctx, caller, req)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserService) Get(ctx context.Context, caller *model.AuthUser, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, caller, id)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserService) Update(ctx context.Context, caller *model.AuthUser, id uuid.UUID, req *model.UpdateUserRequest) (*model.User, error) {
	args := m.Called(ctx, caller, id, req)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserService) Delete(ctx context.Context, caller *model.AuthUser, id uuid.UUID) error {
	return m.Called(ctx, caller, id).Error(0)
}

func (m *UserService) ListPhysicians(ctx context.Context) ([]*model.PhysicianSummary, error) {
	args := m.Called(ctx)
	p, _ := args.Get(0).([]*model.PhysicianSummary)
	return p, args.Error(1)
}

type PatientService struct{ mock.Mock }

func (m *PatientService) List(ctx context.Context, caller *model.AuthUser, filter *model.PatientFilter) (*model.PatientListResponse, error) {
	args := m.Called(ctx, caller, filter)
	resp, _ := args.Get(0).(*model.PatientListResponse)
	return resp, args.Error(1)
}

func (m *PatientService) Create(ctx context.Context, caller *model.AuthUser, req *model.CreatePatientRequest) (*model.Patient, error) {
	args := m.Called(ctx, caller, req)
	p, _ := args.Get(0).(*model.Patient)
	return p, args.Error(1)
}

func (m *PatientService) Get(ctx context.Context, caller *model.AuthUser, id uuid.UUID) (*model.Patient, error) {
	args := m.Called(ctx, caller, id)
	p, _ := args.Get(0).(*model.Patient)
	return p, args.Error(1)
}

func (m *PatientService) Update(ctx context.Context, caller *model.AuthUser, id uuid.UUID, req *model.UpdatePatientRequest) (*model.Patient, *model.Patient, error) {
	args := m.Called(ctx, caller, id, req)
	before, _ := args.Get(0).(*model.Patient)
	after, _ := args.Get(1).(*model.Patient)
	return before, after, args.Error(2)
}

func (m *PatientService) Delete(ctx context.Context, caller *model.AuthUser, id uuid.UUID) (*model.Patient, error) {
	args := m.Called(ctx, caller, id)
	p, _ := args.Get(0).(*model.Patient)
	return p, args.Error(1)
}

func (m *PatientService) Stats(ctx context.Context, caller *model.AuthUser) (*model.PatientStats, error) {
	args := m.Called(ctx, caller)
	s, _ := args.Get(0).(*model.PatientStats)
	return s, args.Error(1)
}

func (m *PatientService) Search(ctx context.Context, caller *model.AuthUser, query string, limit int) (*model.PatientSearchResponse, error) {
	args := m.Called(ctx, caller, query, limit)
	resp, _ := args.Get(0).(*model.PatientSearchResponse)
	return resp, args.Error(1)
}

func (m *PatientService) Activity(ctx context.Context, caller *model.AuthUser, id uuid.UUID, limit int) (*model.PatientActivityResponse, error) {
	args := m.Called(ctx, caller, id, limit)
	resp, _ := args.Get(0).(*model.PatientActivityResponse)
	return resp, args.Error(1)
}

func (m *PatientService) Portal(ctx context.Context, caller *model.AuthUser, id uuid.UUID) (*model.PortalResponse, error) {
	args := m.Called(ctx, caller, id)
	resp, _ := args.Get(0).(*model.PortalResponse)
	return resp, args.Error(1)
}

type MedicalService struct{ mock.Mock }

func (m *MedicalService) List(ctx context.Context, caller *model.AuthUser) ([]*model.MedicalHistoryDetail, error) {
	args := m.Called(ctx, caller)
	rows, _ := args.Get(0).([]*model.MedicalHistoryDetail)
	return rows, args.Error(1)
}

func (m *MedicalService) Create(ctx context.Context, caller *model.AuthUser, req *model.CreateMedicalHistoryRequest) (*model.MedicalHistory, error) {
	args := m.Called(ctx, caller, req)
	h, _ := args.Get(0).(*model.MedicalHistory)
	return h, args.Error(1)
}

func (m *MedicalService) Get(ctx context.Context, caller *model.AuthUser, id uuid.UUID) (*model.MedicalHistory, error) {
	args := m.Called(ctx, caller, id)
	h, _ := args.Get(0).(*model.MedicalHistory)
	return h, args.Error(1)
}

func (m *MedicalService) GetByUserID(ctx context.Context, caller *model.AuthUser, userID uuid.UUID) (*model.MedicalHistory, error) {
	args := m.Called(ctx, caller, userID)
	h, _ := args.Get(0).(*model.MedicalHistory)
	return h, args.Error(1)
}

func (m *MedicalService) Update(ctx context.Context, caller *model.AuthUser, id uuid.UUID, req *model.UpdateMedicalHistoryRequest) (*model.MedicalHistory, *model.MedicalHistory, error) {
	args := m.Called(ctx, caller, id, req)
	before, _ := args.Get(0).(*model.MedicalHistory)
	after, _ := args.Get(1).(*model.MedicalHistory)
	return before, after, args.Error(2)
}

func (m *MedicalService) Delete(ctx context.Context, caller *model.AuthUser, id uuid.UUID) (*model.MedicalHistory, error) {
	args := m.Called(ctx, caller, id)
	h, _ := args.Get(0).(*model.MedicalHistory)
	return h, args.Error(1)
}

func (m *MedicalService) Stats(ctx context.Context, caller *model.AuthUser) (*model.MedicalHistoryStats, error) {
	args := m.Called(ctx, caller)
	s, _ := args.Get(0).(*model.MedicalHistoryStats)
	return s, args.Error(1)
}

func (m *MedicalService) Search(ctx context.Context, caller *model.AuthUser, query string) ([]*model.MedicalHistoryDetail, error) {
	args := m.Called(ctx, caller, query)
	rows, _ := args.Get(0).([]*model.MedicalHistoryDetail)
	return rows, args.Error(1)
}

func (m *MedicalService) PatientsWithoutHistory(ctx context.Context, caller *model.AuthUser) ([]*model.PatientWithoutHistory, error) {
	args := m.Called(ctx, caller)
	rows, _ := args.Get(0).([]*model.PatientWithoutHistory)
	return rows, args.Error(1)
}

type AppointmentService struct{ mock.Mock }

func (m *AppointmentService) List(ctx context.Context, caller *model.AuthUser) ([]*model.AppointmentDetail, error) {
	args := m.Called(ctx, caller)
	rows, _ := args.Get(0).([]*model.AppointmentDetail)
	return rows, args.Error(1)
}

func (m *AppointmentService) Upcoming(ctx context.Context, caller *model.AuthUser) ([]*model.AppointmentDetail, error) {
	args := m.Called(ctx, caller)
	rows, _ := args.Get(0).([]*model.AppointmentDetail)
	return rows, args.Error(1)
}

func (m *AppointmentService) Create(ctx context.Context, caller *model.AuthUser, req *model.CreateAppointmentRequest) (*model.AppointmentDetail, error) {
	args := m.Called(ctx, caller, req)
	a, _ := args.Get(0).(*model.AppointmentDetail)
	return a, args.Error(1)
}

func (m *AppointmentService) Request(ctx context.Context, caller *model.AuthUser, req *model.RequestAppointmentRequest) (*model.AppointmentDetail, error) {
	args := m.Called(ctx, caller, req)
	a, _ := args.Get(0).(*model.AppointmentDetail)
	return a, args.Error(1)
}

func (m *AppointmentService) Get(ctx context.Context, caller *model.AuthUser, id uuid.UUID) (*model.AppointmentDetail, error) {
	args := m.Called(ctx, caller, id)
	a, _ := args.Get(0).(*model.AppointmentDetail)
	return a, args.Error(1)
}

func (m *AppointmentService) Update(ctx context.Context, caller *model.AuthUser, id uuid.UUID, req *model.UpdateAppointmentRequest) (*model.AppointmentDetail, *model.AppointmentDetail, error) {
	args := m.Called(ctx, caller, id, req)
	before, _ := args.Get(0).(*model.AppointmentDetail)
	after, _ := args.Get(1).(*model.AppointmentDetail)
	return before, after, args.Error(2)
}

func (m *AppointmentService) Delete(ctx context.Context, caller *model.AuthUser, id uuid.UUID) (*model.AppointmentDetail, error) {
	args := m.Called(ctx, caller, id)
	a, _ := args.Get(0).(*model.AppointmentDetail)
	return a, args.Error(1)
}

type AssignmentService struct{ mock.Mock }

func (m *AssignmentService) List(ctx context.Context, caller *model.AuthUser, filter *model.AssignmentFilter) ([]*model.AssignmentDetail, error) {
	args := m.Called(ctx, caller, filter)
	rows, _ := args.Get(0).([]*model.AssignmentDetail)
	return rows, args.Error(1)
}

func (m *AssignmentService) Create(ctx context.Context, caller *model.AuthUser, req *model.CreateAssignmentRequest) (*model.Assignment, error) {
	args := m.Called(ctx, caller, req)
	a, _ := args.Get(0).(*model.Assignment)
	return a, args.Error(1)
}

func (m *AssignmentService) Delete(ctx context.Context, caller *model.AuthUser, id uuid.UUID) error {
	return m.Called(ctx, caller, id).Error(0)
}

type DashboardService struct{ mock.Mock }

func (m *DashboardService) Get(ctx context.Context, caller *model.AuthUser) (interface{}, error) {
	args := m.Called(ctx, caller)
	return args.Get(0), args.Error(1)
}
