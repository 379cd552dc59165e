package assignment

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/jwalitptl/optorecord-api/internal/model"
	"github.com/jwalitptl/optorecord-api/internal/repository"
	apperrors "github.com/jwalitptl/optorecord-api/pkg/errors"
)

type Service interface {
	List(ctx context.Context, caller *model.AuthUser, filter *model.AssignmentFilter) ([]*model.AssignmentDetail, error)
	Create(ctx context.Context, caller *model.AuthUser, req *model.CreateAssignmentRequest) (*model.Assignment, error)
	Delete(ctx context.Context, caller *model.AuthUser, id uuid.UUID) error
}

type service struct {
	repo     repository.AssignmentRepository
	userRepo repository.UserRepository
}

func NewService(repo repository.AssignmentRepository, userRepo repository.UserRepository) Service {
	return &service{repo: repo, userRepo: userRepo}
}

// List returns active relationships. Only admins may choose the filter;
// everyone else is pinned to their own side of the relationship.
func (s *service) List(ctx context.Context, caller *model.AuthUser, filter *model.AssignmentFilter) ([]*model.AssignmentDetail, error) {
	id := caller.ID
	switch {
	case caller.IsAdmin():
		if filter == nil {
			filter = &model.AssignmentFilter{}
		}
	case caller.IsPhysician():
		filter = &model.AssignmentFilter{PhysicianID: &id}
	case caller.IsPatient():
		filter = &model.AssignmentFilter{PatientID: &id}
	default:
		return nil, apperrors.Forbidden("")
	}

	assignments, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return assignments, nil
}

func (s *service) Create(ctx context.Context, caller *model.AuthUser, req *model.CreateAssignmentRequest) (*model.Assignment, error) {
	if !caller.IsAdmin() {
		return nil, apperrors.Forbidden("")
	}
	if req.PhysicianID == uuid.Nil || req.PatientID == uuid.Nil {
		return nil, apperrors.BadRequest("physician_id and patient_id are required")
	}

	if err := s.checkUser(ctx, req.PhysicianID, model.UserTypePhysician, "Physician", "User is not a physician"); err != nil {
		return nil, err
	}
	if err := s.checkUser(ctx, req.PatientID, model.UserTypePatient, "Patient", "User is not a patient"); err != nil {
		return nil, err
	}

	assignment, err := s.repo.Upsert(ctx, req.PhysicianID, req.PatientID, req.Notes)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return assignment, nil
}

// Delete deactivates the relationship; the row itself is kept.
func (s *service) Delete(ctx context.Context, caller *model.AuthUser, id uuid.UUID) error {
	if !caller.IsAdmin() {
		return apperrors.Forbidden("")
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("Relationship")
		}
		return apperrors.Internal(err)
	}
	return nil
}

func (s *service) checkUser(ctx context.Context, id uuid.UUID, userType, resource, wrongType string) error {
	user, err := s.userRepo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound(resource)
		}
		return apperrors.Internal(err)
	}
	if user.Type != userType {
		return apperrors.BadRequest(wrongType)
	}
	return nil
}
