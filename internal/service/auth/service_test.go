package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jwalitptl/optorecord-api/internal/model"
	"github.com/jwalitptl/optorecord-api/internal/repository"
	"github.com/jwalitptl/optorecord-api/internal/repository/memory"
	"github.com/jwalitptl/optorecord-api/internal/repository/mocks"
	"github.com/jwalitptl/optorecord-api/pkg/auth"
	apperrors "github.com/jwalitptl/optorecord-api/pkg/errors"
	"github.com/jwalitptl/optorecord-api/pkg/security"
)

type fixture struct {
	svc    Service
	users  *mocks.UserRepository
	hasher security.PasswordHasher
	jwt    auth.JWTService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	jwtSvc, err := auth.NewJWTService("unit-test-secret", time.Hour)
	require.NoError(t, err)

	users := new(mocks.UserRepository)
	hasher := security.NewBcryptHasher(bcrypt.MinCost)
	return &fixture{
		svc:    NewService(users, memory.NewTokenStore(time.Minute), jwtSvc, hasher),
		users:  users,
		hasher: hasher,
		jwt:    jwtSvc,
	}
}

func (f *fixture) storedUser(t *testing.T, password string) *model.User {
	t.Helper()
	hash, err := f.hasher.Hash(password)
	require.NoError(t, err)
	return &model.User{
		ID:       uuid.New(),
		FName:    "Ada",
		LName:    "Lovelace",
		Email:    "ada@example.com",
		Username: "ada",
		Password: hash,
		Type:     model.UserTypePhysician,
	}
}

func assertAppError(t *testing.T, err error, code apperrors.ErrorCode, message string) {
	t.Helper()
	appErr, ok := apperrors.As(err)
	require.True(t, ok, "expected AppError, got %v", err)
	assert.Equal(t, code, appErr.Code)
	assert.Equal(t, message, appErr.Message)
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	user := f.storedUser(t, "correct horse")
	f.users.On("GetByUsernameOrEmail", mock.Anything, "ada@example.com").Return(user, nil)

	resp, err := f.svc.Login(context.Background(), &model.LoginRequest{Email: "ada@example.com", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, user, resp.User)

	claims, err := f.jwt.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.ID)
	assert.Equal(t, model.UserTypePhysician, claims.Type)
}

func TestLoginFailures(t *testing.T) {
	f := newFixture(t)
	user := f.storedUser(t, "correct horse")
	f.users.On("GetByUsernameOrEmail", mock.Anything, "ada").Return(user, nil)
	f.users.On("GetByUsernameOrEmail", mock.Anything, "ghost").Return(nil, repository.ErrNotFound)

	_, err := f.svc.Login(context.Background(), &model.LoginRequest{Username: "ada"})
	assertAppError(t, err, apperrors.ErrBadRequest, "Username/email and password are required")

	_, err = f.svc.Login(context.Background(), &model.LoginRequest{Username: "ada", Password: "wrong"})
	assertAppError(t, err, apperrors.ErrUnauthorized, "Invalid credentials")

	_, err = f.svc.Login(context.Background(), &model.LoginRequest{Username: "ghost", Password: "x"})
	assertAppError(t, err, apperrors.ErrUnauthorized, "Invalid credentials")
}

func TestRegisterCreatesPatient(t *testing.T) {
	f := newFixture(t)
	f.users.On("ExistsByEmailOrUsername", mock.Anything, "new@example.com", "newbie", (*uuid.UUID)(nil)).Return(false, nil)

	var created *model.User
	f.users.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).
		Run(func(args mock.Arguments) { created = args.Get(1).(*model.User) }).
		Return(nil)

	resp, err := f.svc.Register(context.Background(), &model.RegisterRequest{
		FName: "New", LName: "Patient", Email: "new@example.com", Username: "newbie", Password: "pw123456",
	})
	require.NoError(t, err)
	require.NotNil(t, created)

	assert.Equal(t, model.UserTypePatient, created.Type)
	assert.NotEqual(t, "pw123456", created.Password)
	assert.NoError(t, f.hasher.Compare(created.Password, "pw123456"))
	assert.NotEmpty(t, resp.Token)
}

func TestRegisterConflict(t *testing.T) {
	f := newFixture(t)
	f.users.On("ExistsByEmailOrUsername", mock.Anything, "dup@example.com", "dup", (*uuid.UUID)(nil)).Return(true, nil)

	_, err := f.svc.Register(context.Background(), &model.RegisterRequest{
		FName: "D", LName: "Up", Email: "dup@example.com", Username: "dup", Password: "pw",
	})
	assertAppError(t, err, apperrors.ErrConflict, "User with this email or username already exists")
	f.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestLogoutRevokesToken(t *testing.T) {
	f := newFixture(t)
	token, _, err := f.jwt.GenerateToken(auth.Identity{ID: uuid.New(), Type: model.UserTypePatient})
	require.NoError(t, err)

	caller, err := f.svc.Authenticate(context.Background(), token)
	require.NoError(t, err)
	assert.True(t, caller.IsPatient())

	require.NoError(t, f.svc.Logout(context.Background(), token))

	_, err = f.svc.Authenticate(context.Background(), token)
	assertAppError(t, err, apperrors.ErrUnauthorized, "Token has been revoked")
}

func TestLogoutIgnoresGarbage(t *testing.T) {
	f := newFixture(t)
	assert.NoError(t, f.svc.Logout(context.Background(), ""))
	assert.NoError(t, f.svc.Logout(context.Background(), "not-a-token"))
}

func TestAuthenticateRejectsBadTokens(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Authenticate(context.Background(), "garbage")
	assertAppError(t, err, apperrors.ErrUnauthorized, "Invalid token")

	expired, err := auth.NewJWTService("unit-test-secret", time.Nanosecond)
	require.NoError(t, err)
	token, _, err := expired.GenerateToken(auth.Identity{ID: uuid.New(), Type: model.UserTypeAdmin})
	require.NoError(t, err)
	time.Sleep(1100 * time.Millisecond)

	_, err = f.svc.Authenticate(context.Background(), token)
	assertAppError(t, err, apperrors.ErrUnauthorized, "Token has expired")
}

func TestMe(t *testing.T) {
	f := newFixture(t)
	id := uuid.New()
	f.users.On("Get", mock.Anything, id).Return(nil, repository.ErrNotFound)

	_, err := f.svc.Me(context.Background(), id)
	assertAppError(t, err, apperrors.ErrNotFound, "User not found")
}
