package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/optorecord-api/internal/model"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// All repository interfaces in one file
type (
	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
		GetByUsernameOrEmail(ctx context.Context, identifier string) (*model.User, error)
		ExistsByEmailOrUsername(ctx context.Context, email, username string, excludeID *uuid.UUID) (bool, error)
		List(ctx context.Context) ([]*model.User, error)
		ListAssignedPatients(ctx context.Context, physicianID uuid.UUID) ([]*model.User, error)
		ListPhysicians(ctx context.Context) ([]*model.PhysicianSummary, error)
		Update(ctx context.Context, id uuid.UUID, update *model.UpdateUserRequest) (*model.User, error)
		Delete(ctx context.Context, id uuid.UUID) error
	}

	PatientRepository interface {
		Create(ctx context.Context, user *model.User, history *model.MedicalHistory, assignTo *uuid.UUID) error
		Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
		List(ctx context.Context, filter *model.PatientFilter) ([]*model.PatientRow, error)
		Update(ctx context.Context, id uuid.UUID, update *model.PatientUpdate) error
		Delete(ctx context.Context, id uuid.UUID) error
		Stats(ctx context.Context, assignedTo *uuid.UUID) (*model.PatientStats, error)
		Search(ctx context.Context, search *model.PatientSearch) ([]*model.PatientSearchResult, error)
		Activity(ctx context.Context, patientID uuid.UUID, limit int) ([]*model.PatientActivity, error)
	}

	MedicalHistoryRepository interface {
		Create(ctx context.Context, history *model.MedicalHistory) error
		Get(ctx context.Context, id uuid.UUID) (*model.MedicalHistory, error)
		GetByUserID(ctx context.Context, userID uuid.UUID) (*model.MedicalHistory, error)
		List(ctx context.Context, filter *model.MedicalHistoryFilter) ([]*model.MedicalHistoryDetail, error)
		Update(ctx context.Context, id uuid.UUID, update *model.MedicalHistoryUpdate) (*model.MedicalHistory, error)
		Delete(ctx context.Context, id uuid.UUID) error
		Stats(ctx context.Context) (*model.MedicalHistoryStats, error)
		Search(ctx context.Context, query string, assignedTo *uuid.UUID) ([]*model.MedicalHistoryDetail, error)
		PatientsWithoutHistory(ctx context.Context, assignedTo *uuid.UUID) ([]*model.PatientWithoutHistory, error)
	}

	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		GetDetail(ctx context.Context, id uuid.UUID) (*model.AppointmentDetail, error)
		List(ctx context.Context, filter *model.AppointmentFilter) ([]*model.AppointmentDetail, error)
		Update(ctx context.Context, id uuid.UUID, update *model.UpdateAppointmentRequest) (*model.Appointment, error)
		Delete(ctx context.Context, id uuid.UUID) error
	}

	AssignmentRepository interface {
		Upsert(ctx context.Context, physicianID, patientID uuid.UUID, notes *string) (*model.Assignment, error)
		List(ctx context.Context, filter *model.AssignmentFilter) ([]*model.AssignmentDetail, error)
		Deactivate(ctx context.Context, id uuid.UUID) error
		IsAssigned(ctx context.Context, physicianID, patientID uuid.UUID) (bool, error)
	}

	DashboardRepository interface {
		Stats(ctx context.Context, physicianID *uuid.UUID, now time.Time) (*model.DashboardStats, error)
	}

	AuditRepository interface {
		Create(ctx context.Context, log *model.AuditLog) error
		List(ctx context.Context, filter *model.AuditFilter) ([]*model.AuditLog, error)
		DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		// GetPendingEventsWithLock claims up to limit due events by moving them to processing.
		GetPendingEventsWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		MarkProcessed(ctx context.Context, id uuid.UUID) error
		MarkRetry(ctx context.Context, id uuid.UUID, errorMessage string, retryAt time.Time) error
		MarkFailed(ctx context.Context, id uuid.UUID, errorMessage string) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}

	// TokenStore remembers revoked token ids until the token would have expired.
	TokenStore interface {
		Revoke(ctx context.Context, jti string, ttl time.Duration) error
		IsRevoked(ctx context.Context, jti string) (bool, error)
	}
)
