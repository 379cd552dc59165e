package user

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/jwalitptl/optorecord-api/internal/model"
	"github.com/jwalitptl/optorecord-api/internal/repository"
	apperrors "github.com/jwalitptl/optorecord-api/pkg/errors"
	"github.com/jwalitptl/optorecord-api/pkg/security"
)

const msgUserExists = "User with this email or username already exists"

type Service interface {
	List(ctx context.Context, caller *model.AuthUser) ([]*model.User, error)
	Create(ctx context.Context, caller *model.AuthUser, req *model.CreateUserRequest) (*model.User, error)
	Get(ctx context.Context, caller *model.AuthUser, id uuid.UUID) (*model.User, error)
	Update(ctx context.Context, caller *model.AuthUser, id uuid.UUID, req *model.UpdateUserRequest) (*model.User, error)
	Delete(ctx context.Context, caller *model.AuthUser, id uuid.UUID) error
	ListPhysicians(ctx context.Context) ([]*model.PhysicianSummary, error)
}

type service struct {
	repo   repository.UserRepository
	hasher security.PasswordHasher
}

func NewService(repo repository.UserRepository, hasher security.PasswordHasher) Service {
	return &service{
		repo:   repo,
		hasher: hasher,
	}
}

// List returns every user to admins, the caller to patients and the
// assigned patients to physicians.
func (s *service) List(ctx context.Context, caller *model.AuthUser) ([]*model.User, error) {
	var (
		users []*model.User
		err   error
	)
	switch {
	case caller.IsAdmin():
		users, err = s.repo.List(ctx)
	case caller.IsPhysician():
		users, err = s.repo.ListAssignedPatients(ctx, caller.ID)
	default:
		var self *model.User
		self, err = s.repo.Get(ctx, caller.ID)
		if err == nil {
			users = []*model.User{self}
		}
	}
	if err != nil {
		return nil, mapError(err)
	}
	return users, nil
}

func (s *service) Create(ctx context.Context, caller *model.AuthUser, req *model.CreateUserRequest) (*model.User, error) {
	if !caller.IsAdmin() {
		return nil, apperrors.Forbidden("Only admins can create users")
	}
	if !model.IsValidUserType(req.Type) {
		return nil, apperrors.BadRequest("Invalid user type")
	}

	exists, err := s.repo.ExistsByEmailOrUsername(ctx, req.Email, req.Username, nil)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if exists {
		return nil, apperrors.Conflict(msgUserExists)
	}

	hashed, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	user := &model.User{
		ID:                uuid.New(),
		FName:             req.FName,
		LName:             req.LName,
		Email:             req.Email,
		Phone:             req.Phone,
		Username:          req.Username,
		Password:          hashed,
		Type:              req.Type,
		Address:           req.Address,
		InsuranceProvider: req.InsuranceProvider,
		PolicyNumber:      req.PolicyNumber,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, mapError(err)
	}
	return user, nil
}

func (s *service) Get(ctx context.Context, caller *model.AuthUser, id uuid.UUID) (*model.User, error) {
	if !caller.CanAccessUserData(id) {
		return nil, apperrors.Forbidden("")
	}

	user, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	return user, nil
}

func (s *service) Update(ctx context.Context, caller *model.AuthUser, id uuid.UUID, req *model.UpdateUserRequest) (*model.User, error) {
	if !caller.CanAccessUserData(id) {
		return nil, apperrors.Forbidden("")
	}
	if req.IsEmpty() {
		return nil, apperrors.BadRequest("No fields provided for update")
	}
	if req.Type != nil && !caller.IsAdmin() {
		return nil, apperrors.Forbidden("Only admins can change user type")
	}

	update := *req
	if update.Email != nil || update.Username != nil {
		exists, err := s.repo.ExistsByEmailOrUsername(ctx, deref(update.Email), deref(update.Username), &id)
		if err != nil {
			return nil, apperrors.Internal(err)
		}
		if exists {
			return nil, apperrors.Conflict(msgUserExists)
		}
	}
	if update.Password != nil {
		hashed, err := s.hasher.Hash(*update.Password)
		if err != nil {
			return nil, apperrors.BadRequest("Password cannot be empty")
		}
		update.Password = &hashed
	}

	user, err := s.repo.Update(ctx, id, &update)
	if err != nil {
		return nil, mapError(err)
	}
	return user, nil
}

func (s *service) Delete(ctx context.Context, caller *model.AuthUser, id uuid.UUID) error {
	if !caller.CanAccessUserData(id) {
		return apperrors.Forbidden("")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapError(err)
	}
	return nil
}

func (s *service) ListPhysicians(ctx context.Context) ([]*model.PhysicianSummary, error) {
	physicians, err := s.repo.ListPhysicians(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return physicians, nil
}

func mapError(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NotFound("User")
	case errors.Is(err, repository.ErrDuplicate):
		return apperrors.Conflict(msgUserExists)
	default:
		return apperrors.Internal(err)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
