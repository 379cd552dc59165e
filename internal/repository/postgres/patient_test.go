package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/optorecord-api/internal/model"
	"github.com/jwalitptl/optorecord-api/internal/repository"
)

func newMockDB(t *testing.T) (BaseRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return NewBaseRepository(sqlx.NewDb(db, "postgres")), mock
}

func TestPatientUpdateBothTables(t *testing.T) {
	base, mock := newMockDB(t)
	repo := NewPatientRepository(base)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET fname = $1, phone = $2, updated_at = NOW() WHERE id = $3")).
		WithArgs("Ada", "555-0101", id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE medical_history SET blood_type = $1, updated_at = NOW() WHERE user_id = $2")).
		WithArgs("AB+", id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Update(context.Background(), id, &model.PatientUpdate{
		User:    model.UpdateUserRequest{FName: strPtr("Ada"), Phone: strPtr("555-0101")},
		Medical: model.MedicalHistoryUpdate{MedicalFields: model.MedicalFields{BloodType: strPtr("AB+")}},
	})
	require.NoError(t, err)
}

func TestPatientUpdateCreatesMissingHistory(t *testing.T) {
	base, mock := newMockDB(t)
	repo := NewPatientRepository(base)
	id := uuid.New()
	dob := model.NewDate(1990, time.March, 4)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE medical_history SET date_of_birth = $1, gender = $2, updated_at = NOW() WHERE user_id = $3")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO medical_history")).
		WithArgs(sqlmock.AnyArg(), id, sqlmock.AnyArg(), nil, nil, "Female", nil, nil, nil, nil, nil, nil, model.MedicalStatusActive).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectCommit()

	err := repo.Update(context.Background(), id, &model.PatientUpdate{
		Medical: model.MedicalHistoryUpdate{
			DateOfBirth:   &dob,
			MedicalFields: model.MedicalFields{Gender: strPtr("Female")},
		},
	})
	require.NoError(t, err)
}

func TestPatientUpdateMissingHistoryNeedsDateOfBirth(t *testing.T) {
	base, mock := newMockDB(t)
	repo := NewPatientRepository(base)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE medical_history SET allergies = $1, updated_at = NOW() WHERE user_id = $2")).
		WithArgs("Latex", id).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Update(context.Background(), id, &model.PatientUpdate{
		Medical: model.MedicalHistoryUpdate{MedicalFields: model.MedicalFields{Allergies: strPtr("Latex")}},
	})
	assert.ErrorIs(t, err, errMissingDateOfBirth)
}

func TestPatientUpdateUnknownUser(t *testing.T) {
	base, mock := newMockDB(t)
	repo := NewPatientRepository(base)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET lname = $1, updated_at = NOW() WHERE id = $2")).
		WithArgs("Byron", id).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Update(context.Background(), id, &model.PatientUpdate{
		User:    model.UpdateUserRequest{LName: strPtr("Byron")},
		Medical: model.MedicalHistoryUpdate{MedicalFields: model.MedicalFields{Allergies: strPtr("None")}},
	})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestPatientCreateWithAssignment(t *testing.T) {
	base, mock := newMockDB(t)
	repo := NewPatientRepository(base)
	physicianID := uuid.New()
	now := time.Now()

	user := &model.User{FName: "Grace", LName: "Hopper", Email: "grace@example.com", Username: "grace", Password: "hash", Type: model.UserTypePatient}
	history := &model.MedicalHistory{DateOfBirth: model.NewDate(1990, time.December, 9)}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO medical_history")).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (physician_id, patient_id) DO UPDATE")).
		WithArgs(sqlmock.AnyArg(), physicianID, sqlmock.AnyArg(), nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "physician_id", "patient_id", "assigned_date", "is_active", "notes"}).
			AddRow(uuid.New().String(), physicianID.String(), uuid.New().String(), now, true, nil))
	mock.ExpectCommit()

	require.NoError(t, repo.Create(context.Background(), user, history, &physicianID))
	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.Equal(t, user.ID, history.UserID)
	assert.Equal(t, model.MedicalStatusActive, history.Status)
}

func TestPatientCreateRollsBackOnDuplicate(t *testing.T) {
	base, mock := newMockDB(t)
	repo := NewPatientRepository(base)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(sqlmock.ErrCancelled)
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &model.User{Username: "dup"}, nil, nil)
	assert.ErrorIs(t, err, sqlmock.ErrCancelled)
}
