package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/optorecord-api/internal/model"
	"github.com/jwalitptl/optorecord-api/internal/repository/mocks"
	apperrors "github.com/jwalitptl/optorecord-api/pkg/errors"
)

var fixedNow = time.Date(2024, 3, 6, 12, 0, 0, 0, time.UTC)

func setup() (*service, *mocks.DashboardRepository) {
	repo := new(mocks.DashboardRepository)
	svc := NewService(repo).(*service)
	svc.now = func() time.Time { return fixedNow }
	return svc, repo
}

func TestPatientRedirect(t *testing.T) {
	svc, repo := setup()
	id := uuid.MustParse("7d1f7f1e-1a43-4c8e-9a53-0b3c6cde0f00")

	got, err := svc.Get(context.Background(), &model.AuthUser{ID: id, Type: model.UserTypePatient})
	require.NoError(t, err)
	assert.Equal(t, &model.DashboardRedirect{
		Message:  "Redirect to patient portal",
		Redirect: "/patient-portal/7d1f7f1e-1a43-4c8e-9a53-0b3c6cde0f00",
	}, got)
	repo.AssertNotCalled(t, "Stats", mock.Anything, mock.Anything, mock.Anything)
}

func TestAdminStatsAreUnscopedAndCached(t *testing.T) {
	svc, repo := setup()
	admin := &model.AuthUser{ID: uuid.New(), Type: model.UserTypeAdmin}
	stats := &model.DashboardStats{TotalPatients: 12, TodayAppointments: 3, WeekAppointments: 9}

	repo.On("Stats", mock.Anything, (*uuid.UUID)(nil), fixedNow).Return(stats, nil).Once()

	first, err := svc.Get(context.Background(), admin)
	require.NoError(t, err)
	second, err := svc.Get(context.Background(), admin)
	require.NoError(t, err)

	assert.Equal(t, stats, first)
	assert.Equal(t, stats, second)
	repo.AssertNumberOfCalls(t, "Stats", 1)
}

func TestPhysicianStatsAreScoped(t *testing.T) {
	svc, repo := setup()
	physician := &model.AuthUser{ID: uuid.New(), Type: model.UserTypePhysician}

	repo.On("Stats", mock.Anything, &physician.ID, fixedNow).Return(&model.DashboardStats{TotalPatients: 2}, nil)

	got, err := svc.Get(context.Background(), physician)
	require.NoError(t, err)
	assert.Equal(t, 2, got.(*model.DashboardStats).TotalPatients)
}

func TestUnknownRoleForbidden(t *testing.T) {
	svc, _ := setup()
	_, err := svc.Get(context.Background(), &model.AuthUser{ID: uuid.New(), Type: "Guest"})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrForbidden))
}
