package user

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jwalitptl/optorecord-api/internal/model"
	"github.com/jwalitptl/optorecord-api/internal/repository"
	"github.com/jwalitptl/optorecord-api/internal/repository/mocks"
	apperrors "github.com/jwalitptl/optorecord-api/pkg/errors"
	"github.com/jwalitptl/optorecord-api/pkg/security"
)

func newService() (Service, *mocks.UserRepository, security.PasswordHasher) {
	repo := new(mocks.UserRepository)
	hasher := security.NewBcryptHasher(bcrypt.MinCost)
	return NewService(repo, hasher), repo, hasher
}

func caller(userType string) *model.AuthUser {
	return &model.AuthUser{ID: uuid.New(), Type: userType}
}

func strPtr(s string) *string { return &s }

func TestListScopesByRole(t *testing.T) {
	svc, repo, _ := newService()
	ctx := context.Background()

	admin := caller(model.UserTypeAdmin)
	all := []*model.User{{ID: uuid.New()}, {ID: uuid.New()}}
	repo.On("List", mock.Anything).Return(all, nil)
	users, err := svc.List(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	physician := caller(model.UserTypePhysician)
	assigned := []*model.User{{ID: uuid.New(), Type: model.UserTypePatient}}
	repo.On("ListAssignedPatients", mock.Anything, physician.ID).Return(assigned, nil)
	users, err = svc.List(ctx, physician)
	require.NoError(t, err)
	assert.Equal(t, assigned, users)

	patient := caller(model.UserTypePatient)
	self := &model.User{ID: patient.ID}
	repo.On("Get", mock.Anything, patient.ID).Return(self, nil)
	users, err = svc.List(ctx, patient)
	require.NoError(t, err)
	assert.Equal(t, []*model.User{self}, users)
}

func TestGetRequiresSelfOrAdmin(t *testing.T) {
	svc, repo, _ := newService()
	other := uuid.New()

	_, err := svc.Get(context.Background(), caller(model.UserTypePhysician), other)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrForbidden))

	repo.On("Get", mock.Anything, other).Return(nil, repository.ErrNotFound)
	_, err = svc.Get(context.Background(), caller(model.UserTypeAdmin), other)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, "User not found", appErr.Message)
}

func TestCreateRequiresAdmin(t *testing.T) {
	svc, repo, _ := newService()
	req := &model.CreateUserRequest{FName: "a", LName: "b", Email: "a@b.c", Username: "ab", Password: "pw", Type: model.UserTypePhysician}

	_, err := svc.Create(context.Background(), caller(model.UserTypePhysician), req)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrForbidden))

	repo.On("ExistsByEmailOrUsername", mock.Anything, "a@b.c", "ab", (*uuid.UUID)(nil)).Return(false, nil)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)

	user, err := svc.Create(context.Background(), caller(model.UserTypeAdmin), req)
	require.NoError(t, err)
	assert.Equal(t, model.UserTypePhysician, user.Type)
	assert.NotEqual(t, "pw", user.Password)
}

func TestUpdateRules(t *testing.T) {
	svc, repo, hasher := newService()
	ctx := context.Background()
	self := caller(model.UserTypePatient)

	_, err := svc.Update(ctx, self, self.ID, &model.UpdateUserRequest{})
	appErr, _ := apperrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, "No fields provided for update", appErr.Message)

	_, err = svc.Update(ctx, self, self.ID, &model.UpdateUserRequest{Type: strPtr(model.UserTypeAdmin)})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrForbidden))

	repo.On("ExistsByEmailOrUsername", mock.Anything, "taken@example.com", "", &self.ID).Return(true, nil).Once()
	_, err = svc.Update(ctx, self, self.ID, &model.UpdateUserRequest{Email: strPtr("taken@example.com")})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrConflict))

	repo.On("Update", mock.Anything, self.ID, mock.MatchedBy(func(u *model.UpdateUserRequest) bool {
		return u.Password != nil && hasher.Compare(*u.Password, "n3w-pass") == nil
	})).Return(&model.User{ID: self.ID}, nil).Once()
	user, err := svc.Update(ctx, self, self.ID, &model.UpdateUserRequest{Password: strPtr("n3w-pass")})
	require.NoError(t, err)
	assert.Equal(t, self.ID, user.ID)
	repo.AssertExpectations(t)
}

func TestDelete(t *testing.T) {
	svc, repo, _ := newService()
	admin := caller(model.UserTypeAdmin)
	id := uuid.New()

	repo.On("Delete", mock.Anything, id).Return(repository.ErrNotFound)
	err := svc.Delete(context.Background(), admin, id)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrNotFound))

	err = svc.Delete(context.Background(), caller(model.UserTypePatient), id)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrForbidden))
}
