// Package mocks holds testify mocks of the repository interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/jwalitptl/optorecord-api/internal/model"
	"github.com/jwalitptl/optorecord-api/internal/repository"
)

var (
	_ repository.UserRepository           = (*UserRepository)(nil)
	_ repository.PatientRepository        = (*PatientRepository)(nil)
	_ repository.MedicalHistoryRepository = (*MedicalHistoryRepository)(nil)
	_ repository.AppointmentRepository    = (*AppointmentRepository)(nil)
	_ repository.AssignmentRepository     = (*AssignmentRepository)(nil)
	_ repository.DashboardRepository      = (*DashboardRepository)(nil)
	_ repository.AuditRepository          = (*AuditRepository)(nil)
	_ repository.OutboxRepository         = (*OutboxRepository)(nil)
	_ repository.TokenStore               = (*TokenStore)(nil)
)

type UserRepository struct{ mock.Mock }

func (m *UserRepository) Create(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *UserRepository) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*model.User)
	return user, args.Error(1)
}

func (m *UserRepository) GetByUsernameOrEmail(ctx context.Context, identifier string) (*model.User, error) {
	args := m.Called(ctx, identifier)
	user, _ := args.Get(0).(*model.User)
	return user, args.Error(1)
}

func (m *UserRepository) ExistsByEmailOrUsername(ctx context.Context, email, username string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, email, username, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *UserRepository) List(ctx context.Context) ([]*model.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]*model.User)
	return users, args.Error(1)
}

func (m *UserRepository) ListAssignedPatients(ctx context.Context, physicianID uuid.UUID) ([]*model.User, error) {
	args := m.Called(ctx, physicianID)
	users, _ := args.Get(0).([]*model.User)
	return users, args.Error(1)
}

func (m *UserRepository) ListPhysicians(ctx context.Context) ([]*model.PhysicianSummary, error) {
	args := m.Called(ctx)
	physicians, _ := args.Get(0).([]*model.PhysicianSummary)
	return physicians, args.Error(1)
}

func (m *UserRepository) Update(ctx context.Context, id uuid.UUID, update *model.UpdateUserRequest) (*model.User, error) {
	args := m.Called(ctx, id, update)
	user, _ := args.Get(0).(*model.User)
	return user, args.Error(1)
}

func (m *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type PatientRepository struct{ mock.Mock }

func (m *PatientRepository) Create(ctx context.Context, user *model.User, history *model.MedicalHistory, assignTo *uuid.UUID) error {
	return m.Called(ctx, user, history, assignTo).Error(0)
}

func (m *PatientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	args := m.Called(ctx, id)
	patient, _ := args.Get(0).(*model.Patient)
	return patient, args.Error(1)
}

func (m *PatientRepository) List(ctx context.Context, filter *model.PatientFilter) ([]*model.PatientRow, error) {
	args := m.Called(ctx, filter)
	rows, _ := args.Get(0).([]*model.PatientRow)
	return rows, args.Error(1)
}

func (m *PatientRepository) Update(ctx context.Context, id uuid.UUID, update *model.PatientUpdate) error {
	return m.Called(ctx, id, update).Error(0)
}

func (m *PatientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *PatientRepository) Stats(ctx context.Context, assignedTo *uuid.UUID) (*model.PatientStats, error) {
	args := m.Called(ctx, assignedTo)
	stats, _ := args.Get(0).(*model.PatientStats)
	return stats, args.Error(1)
}

func (m *PatientRepository) Search(ctx context.Context, search *model.PatientSearch) ([]*model.PatientSearchResult, error) {
	args := m.Called(ctx, search)
	results, _ := args.Get(0).([]*model.PatientSearchResult)
	return results, args.Error(1)
}

func (m *PatientRepository) Activity(ctx context.Context, patientID uuid.UUID, limit int) ([]*model.PatientActivity, error) {
	args := m.Called(ctx, patientID, limit)
	activity, _ := args.Get(0).([]*model.PatientActivity)
	return activity, args.Error(1)
}

type MedicalHistoryRepository struct{ mock.Mock }

func (m *MedicalHistoryRepository) Create(ctx context.Context, history *model.MedicalHistory) error {
	return m.Called(ctx, history).Error(0)
}

func (m *MedicalHistoryRepository) Get(ctx context.Context, id uuid.UUID) (*model.MedicalHistory, error) {
	args := m.Called(ctx, id)
	history, _ := args.Get(0).(*model.MedicalHistory)
	return history, args.Error(1)
}

func (m *MedicalHistoryRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.MedicalHistory, error) {
	args := m.Called(ctx, userID)
	history, _ := args.Get(0).(*model.MedicalHistory)
	return history, args.Error(1)
}

func (m *MedicalHistoryRepository) List(ctx context.Context, filter *model.MedicalHistoryFilter) ([]*model.MedicalHistoryDetail, error) {
	args := m.Called(ctx, filter)
	details, _ := args.Get(0).([]*model.MedicalHistoryDetail)
	return details, args.Error(1)
}

func (m *MedicalHistoryRepository) Update(ctx context.Context, id uuid.UUID, update *model.MedicalHistoryUpdate) (*model.MedicalHistory, error) {
	args := m.Called(ctx, id, update)
	history, _ := args.Get(0).(*model.MedicalHistory)
	return history, args.Error(1)
}

func (m *MedicalHistoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MedicalHistoryRepository) Stats(ctx context.Context) (*model.MedicalHistoryStats, error) {
	args := m.Called(ctx)
	stats, _ := args.Get(0).(*model.MedicalHistoryStats)
	return stats, args.Error(1)
}

func (m *MedicalHistoryRepository) Search(ctx context.Context, query string, assignedTo *uuid.UUID) ([]*model.MedicalHistoryDetail, error) {
	args := m.Called(ctx, query, assignedTo)
	details, _ := args.Get(0).([]*model.MedicalHistoryDetail)
	return details, args.Error(1)
}

func (m *MedicalHistoryRepository) PatientsWithoutHistory(ctx context.Context, assignedTo *uuid.UUID) ([]*model.PatientWithoutHistory, error) {
	args := m.Called(ctx, assignedTo)
	patients, _ := args.Get(0).([]*model.PatientWithoutHistory)
	return patients, args.Error(1)
}

type AppointmentRepository struct{ mock.Mock }

func (m *AppointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	return m.Called(ctx, appointment).Error(0)
}

func (m *AppointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	args := m.Called(ctx, id)
	appointment, _ := args.Get(0).(*model.Appointment)
	return appointment, args.Error(1)
}

func (m *AppointmentRepository) GetDetail(ctx context.Context, id uuid.UUID) (*model.AppointmentDetail, error) {
	args := m.Called(ctx, id)
	detail, _ := args.Get(0).(*model.AppointmentDetail)
	return detail, args.Error(1)
}

func (m *AppointmentRepository) List(ctx context.Context, filter *model.AppointmentFilter) ([]*model.AppointmentDetail, error) {
	args := m.Called(ctx, filter)
	details, _ := args.Get(0).([]*model.AppointmentDetail)
	return details, args.Error(1)
}

func (m *AppointmentRepository) Update(ctx context.Context, id uuid.UUID, update *model.UpdateAppointmentRequest) (*model.Appointment, error) {
	args := m.Called(ctx, id, update)
	appointment, _ := args.Get(0).(*model.Appointment)
	return appointment, args.Error(1)
}

func (m *AppointmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type AssignmentRepository struct{ mock.Mock }

func (m *AssignmentRepository) Upsert(ctx context.Context, physicianID, patientID uuid.UUID, notes *string) (*model.Assignment, error) {
	args := m.Called(ctx, physicianID, patientID, notes)
	assignment, _ := args.Get(0).(*model.Assignment)
	return assignment, args.Error(1)
}

func (m *AssignmentRepository) List(ctx context.Context, filter *model.AssignmentFilter) ([]*model.AssignmentDetail, error) {
	args := m.Called(ctx, filter)
	details, _ := args.Get(0).([]*model.AssignmentDetail)
	return details, args.Error(1)
}

func (m *AssignmentRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *AssignmentRepository) IsAssigned(ctx context.Context, physicianID, patientID uuid.UUID) (bool, error) {
	args := m.Called(ctx, physicianID, patientID)
	return args.Bool(0), args.Error(1)
}

type DashboardRepository struct{ mock.Mock }

func (m *DashboardRepository) Stats(ctx context.Context, physicianID *uuid.UUID, now time.Time) (*model.DashboardStats, error) {
	args := m.Called(ctx, physicianID, now)
	stats, _ := args.Get(0).(*model.DashboardStats)
	return stats, args.Error(1)
}

type AuditRepository struct{ mock.Mock }

func (m *AuditRepository) Create(ctx context.Context, log *model.AuditLog) error {
	return m.Called(ctx, log).Error(0)
}

func (m *AuditRepository) List(ctx context.Context, filter *model.AuditFilter) ([]*model.AuditLog, error) {
	args := m.Called(ctx, filter)
	logs, _ := args.Get(0).([]*model.AuditLog)
	return logs, args.Error(1)
}

func (m *AuditRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

type OutboxRepository struct{ mock.Mock }

func (m *OutboxRepository) Create(ctx context.Context, event *model.OutboxEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *OutboxRepository) GetPendingEventsWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error) {
	args := m.Called(ctx, limit)
	events, _ := args.Get(0).([]*model.OutboxEvent)
	return events, args.Error(1)
}

func (m *OutboxRepository) MarkProcessed(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *OutboxRepository) MarkRetry(ctx context.Context, id uuid.UUID, errorMessage string, retryAt time.Time) error {
	return m.Called(ctx, id, errorMessage, retryAt).Error(0)
}

func (m *OutboxRepository) MarkFailed(ctx context.Context, id uuid.UUID, errorMessage string) error {
	return m.Called(ctx, id, errorMessage).Error(0)
}

func (m *OutboxRepository) DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

type TokenStore struct{ mock.Mock }

func (m *TokenStore) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	return m.Called(ctx, jti, ttl).Error(0)
}

func (m *TokenStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	args := m.Called(ctx, jti)
	return args.Bool(0), args.Error(1)
}
