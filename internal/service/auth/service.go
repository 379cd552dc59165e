package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/optorecord-api/internal/model"
	"github.com/jwalitptl/optorecord-api/internal/repository"
	"github.com/jwalitptl/optorecord-api/pkg/auth"
	apperrors "github.com/jwalitptl/optorecord-api/pkg/errors"
	"github.com/jwalitptl/optorecord-api/pkg/security"
)

const (
	msgCredentialsRequired = "Username/email and password are required"
	msgInvalidCredentials  = "Invalid credentials"
	msgUserExists          = "User with this email or username already exists"
	msgTokenExpired        = "Token has expired"
	msgInvalidToken        = "Invalid token"
	msgTokenRevoked        = "Token has been revoked"
	msgVerificationFailed  = "Token verification failed"
)

type Service interface {
	Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error)
	Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error)
	// Logout revokes token until it would have expired. Unusable tokens are ignored.
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (*model.AuthUser, error)
	Me(ctx context.Context, id uuid.UUID) (*model.User, error)
	TokenTTL() time.Duration
}

type service struct {
	userRepo repository.UserRepository
	tokens   repository.TokenStore
	jwtSvc   auth.JWTService
	hasher   security.PasswordHasher
}

func NewService(userRepo repository.UserRepository, tokens repository.TokenStore,
	jwtSvc auth.JWTService, hasher security.PasswordHasher) Service {
	return &service{
		userRepo: userRepo,
		tokens:   tokens,
		jwtSvc:   jwtSvc,
		hasher:   hasher,
	}
}

func (s *service) TokenTTL() time.Duration {
	return s.jwtSvc.Expiry()
}

func (s *service) Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error) {
	identifier := strings.TrimSpace(req.Identifier())
	if identifier == "" || req.Password == "" {
		return nil, apperrors.BadRequest(msgCredentialsRequired)
	}

	user, err := s.userRepo.GetByUsernameOrEmail(ctx, identifier)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.Unauthorized(msgInvalidCredentials)
		}
		return nil, apperrors.Internal(err)
	}

	if err := s.hasher.Compare(user.Password, req.Password); err != nil {
		return nil, apperrors.Unauthorized(msgInvalidCredentials)
	}

	return s.issue(user)
}

func (s *service) Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error) {
	exists, err := s.userRepo.ExistsByEmailOrUsername(ctx, req.Email, req.Username, nil)
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
		Type:              model.UserTypePatient,
		Address:           req.Address,
		InsuranceProvider: req.InsuranceProvider,
		PolicyNumber:      req.PolicyNumber,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Conflict(msgUserExists)
		}
		return nil, apperrors.Internal(err)
	}

	return s.issue(user)
}

func (s *service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	claims, err := s.jwtSvc.ValidateToken(token)
	if err != nil {
		return nil
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	if err := s.tokens.Revoke(ctx, claims.RegisteredClaims.ID, ttl); err != nil {
		return apperrors.Internal(err)
	}
	return nil
}

func (s *service) Authenticate(ctx context.Context, token string) (*model.AuthUser, error) {
	claims, err := s.jwtSvc.ValidateToken(token)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrTokenExpired):
			return nil, apperrors.Unauthorized(msgTokenExpired)
		case errors.Is(err, auth.ErrInvalidToken):
			return nil, apperrors.Unauthorized(msgInvalidToken)
		default:
			return nil, apperrors.Unauthorized(msgVerificationFailed)
		}
	}

	revoked, err := s.tokens.IsRevoked(ctx, claims.RegisteredClaims.ID)
	if err != nil {
		return nil, apperrors.Unauthorized(msgVerificationFailed)
	}
	if revoked {
		return nil, apperrors.Unauthorized(msgTokenRevoked)
	}

	identity, err := claims.Identity()
	if err != nil {
		return nil, apperrors.Unauthorized(msgInvalidToken)
	}

	return &model.AuthUser{
		ID:       identity.ID,
		Type:     identity.Type,
		Username: identity.Username,
		Email:    identity.Email,
	}, nil
}

func (s *service) Me(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("User")
		}
		return nil, apperrors.Internal(err)
	}
	return user, nil
}

func (s *service) issue(user *model.User) (*model.AuthResponse, error) {
	token, _, err := s.jwtSvc.GenerateToken(auth.Identity{
		ID:       user.ID,
		Type:     user.Type,
		Username: user.Username,
		Email:    user.Email,
	})
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return &model.AuthResponse{User: user, Token: token}, nil
}
