package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/jwalitptl/optorecord-api/internal/model"
	"github.com/jwalitptl/optorecord-api/internal/repository/mocks"
)

func TestRecordWritesPendingEvent(t *testing.T) {
	repo := new(mocks.OutboxRepository)
	svc := NewService(repo)
	fixed := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	var stored *model.OutboxEvent
	repo.On("Create", mock.Anything, mock.AnythingOfType("*model.OutboxEvent")).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*model.OutboxEvent) }).
		Return(nil)

	err := svc.Record(context.Background(), "appointment.created", map[string]interface{}{
		"data": map[string]string{"patient_email": "p@example.com"},
	})
	require.NoError(t, err)

	require.NotNil(t, stored)
	assert.Equal(t, "appointment.created", stored.EventType)
	assert.Equal(t, model.OutboxStatusPending, stored.Status)
	assert.Equal(t, fixed, stored.CreatedAt)
	assert.NotEqual(t, uuid.Nil, stored.ID)
	assert.Equal(t, "p@example.com", gjson.GetBytes(stored.Payload, "data.patient_email").String())
	repo.AssertExpectations(t)
}

func TestRecordWrapsRepositoryError(t *testing.T) {
	repo := new(mocks.OutboxRepository)
	repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("db down"))

	err := NewService(repo).Record(context.Background(), "patient.deleted", map[string]string{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create outbox event")
}

func TestRecordRejectsUnencodablePayload(t *testing.T) {
	repo := new(mocks.OutboxRepository)
	err := NewService(repo).Record(context.Background(), "x.y", make(chan int))
	require.Error(t, err)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
