package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/optorecord-api/internal/model"
	"github.com/jwalitptl/optorecord-api/internal/repository/mocks"
)

func TestLogBuildsEntry(t *testing.T) {
	repo := new(mocks.AuditRepository)
	svc := NewService(repo)
	fixed := time.Date(2024, 5, 2, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	userID, entityID := uuid.New(), uuid.New()
	repo.On("Create", mock.Anything, mock.MatchedBy(func(l *model.AuditLog) bool {
		return *l.UserID == userID &&
			*l.EntityID == entityID &&
			l.Action == model.AuditActionUpdate &&
			l.EntityType == model.AuditEntityPatient &&
			l.Metadata["status"] == 200 &&
			l.CreatedAt.Equal(fixed)
	})).Return(nil)

	err := svc.Log(context.Background(), Entry{
		UserID:     &userID,
		Action:     model.AuditActionUpdate,
		EntityType: model.AuditEntityPatient,
		EntityID:   &entityID,
		Metadata:   map[string]interface{}{"status": 200},
	})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestAuditLoggerSwallowsErrors(t *testing.T) {
	repo := new(mocks.AuditRepository)
	repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("db down")).Once()

	l := NewAuditLogger(NewService(repo))
	l.Log(context.Background(), Entry{Action: model.AuditActionDelete, EntityType: model.AuditEntityUser})
	l.Wait()

	repo.AssertExpectations(t)
}

func TestAuditLoggerOutlivesRequestContext(t *testing.T) {
	repo := new(mocks.AuditRepository)
	repo.On("Create", mock.MatchedBy(func(ctx context.Context) bool { return ctx.Err() == nil }), mock.Anything).
		Return(nil).Once()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	l := NewAuditLogger(NewService(repo))
	l.Log(ctx, Entry{Action: model.AuditActionCreate, EntityType: model.AuditEntityAppointment})
	l.Wait()

	repo.AssertExpectations(t)
}

func TestCleanup(t *testing.T) {
	repo := new(mocks.AuditRepository)
	cutoff := time.Now().Add(-24 * time.Hour)
	repo.On("DeleteBefore", mock.Anything, cutoff).Return(int64(7), nil)

	n, err := NewService(repo).Cleanup(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
}
