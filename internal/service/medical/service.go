package medical

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/optorecord-api/internal/model"
	"github.com/jwalitptl/optorecord-api/internal/repository"
	"github.com/jwalitptl/optorecord-api/internal/service/access"
	apperrors "github.com/jwalitptl/optorecord-api/pkg/errors"
)

const minSearchLength = 2

type Service interface {
	List(ctx context.Context, caller *model.AuthUser) ([]*model.MedicalHistoryDetail, error)
	Create(ctx context.Context, caller *model.AuthUser, req *model.CreateMedicalHistoryRequest) (*model.MedicalHistory, error)
	Get(ctx context.Context, caller *model.AuthUser, id uuid.UUID) (*model.MedicalHistory, error)
	GetByUserID(ctx context.Context, caller *model.AuthUser, userID uuid.UUID) (*model.MedicalHistory, error)
	Update(ctx context.Context, caller *model.AuthUser, id uuid.UUID, req *model.UpdateMedicalHistoryRequest) (before, after *model.MedicalHistory, err error)
	Delete(ctx context.Context, caller *model.AuthUser, id uuid.UUID) (*model.MedicalHistory, error)
	Stats(ctx context.Context, caller *model.AuthUser) (*model.MedicalHistoryStats, error)
	Search(ctx context.Context, caller *model.AuthUser, query string) ([]*model.MedicalHistoryDetail, error)
	PatientsWithoutHistory(ctx context.Context, caller *model.AuthUser) ([]*model.PatientWithoutHistory, error)
}

type service struct {
	repo     repository.MedicalHistoryRepository
	userRepo repository.UserRepository
	access   *access.Checker
	now      func() time.Time
}

func NewService(repo repository.MedicalHistoryRepository, userRepo repository.UserRepository, checker *access.Checker) Service {
	return &service{
		repo:     repo,
		userRepo: userRepo,
		access:   checker,
		now:      time.Now,
	}
}

func (s *service) List(ctx context.Context, caller *model.AuthUser) ([]*model.MedicalHistoryDetail, error) {
	filter := &model.MedicalHistoryFilter{AssignedTo: access.AssignedTo(caller)}
	switch {
	case caller.IsAdmin(), caller.IsPhysician():
	case caller.IsPatient():
		id := caller.ID
		filter.UserID = &id
	default:
		return nil, apperrors.Forbidden("")
	}

	histories, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return histories, nil
}

func (s *service) Create(ctx context.Context, caller *model.AuthUser, req *model.CreateMedicalHistoryRequest) (*model.MedicalHistory, error) {
	if err := access.StaffOnly(caller, "Only admins and physicians can create medical history"); err != nil {
		return nil, err
	}

	dob, err := model.ParseDate(req.DateOfBirth)
	if err != nil {
		return nil, apperrors.BadRequest("Invalid date_of_birth format")
	}

	user, err := s.userRepo.Get(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("User")
		}
		return nil, apperrors.Internal(err)
	}
	if user.Type != model.UserTypePatient {
		return nil, apperrors.BadRequest("User is not a patient")
	}
	if err := s.access.Patient(ctx, caller, user.ID); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByUserID(ctx, user.ID); err == nil {
		return nil, apperrors.Conflict("Medical history already exists for this patient")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.Internal(err)
	}

	now := s.now().UTC()
	history := &model.MedicalHistory{
		ID:                   uuid.New(),
		UserID:               user.ID,
		DateOfBirth:          dob,
		HeightIn:             req.HeightIn,
		WeightLbs:            req.WeightLbs,
		Gender:               req.Gender,
		PrimaryCarePhysician: req.PrimaryCarePhysician,
		EmergencyContact:     req.EmergencyContact,
		BloodType:            req.BloodType,
		Allergies:            req.Allergies,
		History:              req.History,
		LastVisit:            req.LastVisit,
		Status:               model.MedicalStatusActive,
	}
	if history.LastVisit == nil {
		history.LastVisit = &now
	}
	if req.Status != nil {
		history.Status = *req.Status
	}

	if err := s.repo.Create(ctx, history); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Conflict("Medical history already exists for this patient")
		}
		return nil, apperrors.Internal(err)
	}
	return history, nil
}

func (s *service) Get(ctx context.Context, caller *model.AuthUser, id uuid.UUID) (*model.MedicalHistory, error) {
	history, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	if err := s.access.Patient(ctx, caller, history.UserID); err != nil {
		return nil, err
	}
	return history, nil
}

func (s *service) GetByUserID(ctx context.Context, caller *model.AuthUser, userID uuid.UUID) (*model.MedicalHistory, error) {
	if err := s.access.Patient(ctx, caller, userID); err != nil {
		return nil, err
	}

	history, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, mapError(err)
	}
	return history, nil
}

func (s *service) Update(ctx context.Context, caller *model.AuthUser, id uuid.UUID, req *model.UpdateMedicalHistoryRequest) (*model.MedicalHistory, *model.MedicalHistory, error) {
	before, err := s.Get(ctx, caller, id)
	if err != nil {
		return nil, nil, err
	}
	if req.IsEmpty() {
		return nil, nil, apperrors.BadRequest("No fields provided for update")
	}

	update := &model.MedicalHistoryUpdate{MedicalFields: req.MedicalFields}
	if req.DateOfBirth != nil {
		dob, err := model.ParseDate(*req.DateOfBirth)
		if err != nil {
			return nil, nil, apperrors.BadRequest("Invalid date_of_birth format")
		}
		update.DateOfBirth = &dob
	}

	after, err := s.repo.Update(ctx, id, update)
	if err != nil {
		return nil, nil, mapError(err)
	}
	return before, after, nil
}

func (s *service) Delete(ctx context.Context, caller *model.AuthUser, id uuid.UUID) (*model.MedicalHistory, error) {
	history, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	if !caller.IsAdmin() {
		return nil, apperrors.Forbidden("Only admins can delete medical history")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, mapError(err)
	}
	return history, nil
}

func (s *service) Stats(ctx context.Context, caller *model.AuthUser) (*model.MedicalHistoryStats, error) {
	if !caller.IsAdmin() {
		return nil, apperrors.Forbidden("")
	}

	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return stats, nil
}

func (s *service) Search(ctx context.Context, caller *model.AuthUser, query string) ([]*model.MedicalHistoryDetail, error) {
	if err := access.StaffOnly(caller, ""); err != nil {
		return nil, err
	}

	query = strings.TrimSpace(query)
	if len([]rune(query)) < minSearchLength {
		return nil, apperrors.BadRequest("Search query must be at least 2 characters")
	}

	results, err := s.repo.Search(ctx, query, access.AssignedTo(caller))
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return results, nil
}

func (s *service) PatientsWithoutHistory(ctx context.Context, caller *model.AuthUser) ([]*model.PatientWithoutHistory, error) {
	if err := access.StaffOnly(caller, ""); err != nil {
		return nil, err
	}

	patients, err := s.repo.PatientsWithoutHistory(ctx, access.AssignedTo(caller))
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return patients, nil
}

func mapError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound("Medical history")
	}
	return apperrors.Internal(err)
}
