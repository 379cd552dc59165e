package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/optorecord-api/internal/model"
	"github.com/jwalitptl/optorecord-api/internal/repository"
)

var medicalColumnList = []string{
	"id", "user_id", "date_of_birth", "height_in", "weight_lbs", "gender",
	"primary_care_physician", "emergency_contact", "blood_type", "allergies",
	"history", "last_visit", "status", "created_at", "updated_at",
}

var medicalColumns = strings.Join(medicalColumnList, ", ")

func medicalColumnsAs(alias string) string {
	cols := make([]string, len(medicalColumnList))
	for i, c := range medicalColumnList {
		cols[i] = alias + "." + c
	}
	return strings.Join(cols, ", ")
}

// medicalSetColumns are the columns a medical history update may touch.
var medicalSetColumns = []string{
	"date_of_birth", "height_in", "weight_lbs", "gender", "primary_care_physician",
	"emergency_contact", "blood_type", "allergies", "history", "last_visit", "status",
}

func addMedicalFields(b *setBuilder, update *model.MedicalHistoryUpdate) {
	b.add("date_of_birth", update.DateOfBirth)
	b.add("height_in", update.HeightIn)
	b.add("weight_lbs", update.WeightLbs)
	b.add("gender", update.Gender)
	b.add("primary_care_physician", update.PrimaryCarePhysician)
	b.add("emergency_contact", update.EmergencyContact)
	b.add("blood_type", update.BloodType)
	b.add("allergies", update.Allergies)
	b.add("history", update.History)
	b.add("last_visit", update.LastVisit)
	b.add("status", update.Status)
}

type medicalHistoryRepository struct {
	BaseRepository
}

func NewMedicalHistoryRepository(base BaseRepository) repository.MedicalHistoryRepository {
	return &medicalHistoryRepository{base}
}

func insertMedicalHistory(ctx context.Context, q sqlx.QueryerContext, h *model.MedicalHistory) error {
	query := `
		INSERT INTO medical_history (
			id, user_id, date_of_birth, height_in, weight_lbs, gender,
			primary_care_physician, emergency_contact, blood_type, allergies,
			history, last_visit, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at, updated_at
	`
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	if h.Status == "" {
		h.Status = model.MedicalStatusActive
	}

	err := q.QueryRowxContext(ctx, query,
		h.ID,
		h.UserID,
		h.DateOfBirth,
		h.HeightIn,
		h.WeightLbs,
		h.Gender,
		h.PrimaryCarePhysician,
		h.EmergencyContact,
		h.BloodType,
		h.Allergies,
		h.History,
		h.LastVisit,
		h.Status,
	).Scan(&h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		return wrapError(err, "create medical history")
	}
	return nil
}

func (r *medicalHistoryRepository) Create(ctx context.Context, history *model.MedicalHistory) error {
	return insertMedicalHistory(ctx, r.db, history)
}

func (r *medicalHistoryRepository) Get(ctx context.Context, id uuid.UUID) (*model.MedicalHistory, error) {
	query := `SELECT ` + medicalColumns + ` FROM medical_history WHERE id = $1`

	var h model.MedicalHistory
	if err := r.db.GetContext(ctx, &h, query, id); err != nil {
		return nil, wrapError(err, "get medical history")
	}
	return &h, nil
}

func (r *medicalHistoryRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.MedicalHistory, error) {
	query := `SELECT ` + medicalColumns + ` FROM medical_history WHERE user_id = $1`

	var h model.MedicalHistory
	if err := r.db.GetContext(ctx, &h, query, userID); err != nil {
		return nil, wrapError(err, "get medical history by user")
	}
	return &h, nil
}

func (r *medicalHistoryRepository) List(ctx context.Context, filter *model.MedicalHistoryFilter) ([]*model.MedicalHistoryDetail, error) {
	query := `
		SELECT ` + medicalColumnsAs("mh") + `, u.fname, u.lname, u.email
		FROM medical_history mh
		JOIN users u ON u.id = mh.user_id
		WHERE 1=1`
	var args []interface{}

	if filter != nil && filter.UserID != nil {
		args = append(args, *filter.UserID)
		query += fmt.Sprintf(" AND mh.user_id = $%d", len(args))
	}
	if filter != nil && filter.AssignedTo != nil {
		args = append(args, *filter.AssignedTo)
		query += assignedFilter("mh.user_id", len(args))
	}
	query += " ORDER BY mh.last_visit DESC NULLS LAST, u.lname, u.fname"

	histories := []*model.MedicalHistoryDetail{}
	if err := r.db.SelectContext(ctx, &histories, query, args...); err != nil {
		return nil, wrapError(err, "list medical histories")
	}
	return histories, nil
}

func (r *medicalHistoryRepository) Update(ctx context.Context, id uuid.UUID, update *model.MedicalHistoryUpdate) (*model.MedicalHistory, error) {
	b := newSetBuilder(medicalSetColumns...)
	addMedicalFields(b, update)
	if b.empty() {
		return nil, fmt.Errorf("failed to update medical history: no fields")
	}

	query, args := b.build("medical_history", "id", id)
	query += " RETURNING " + medicalColumns

	var h model.MedicalHistory
	if err := r.db.GetContext(ctx, &h, query, args...); err != nil {
		return nil, wrapError(err, "update medical history")
	}
	return &h, nil
}

func (r *medicalHistoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM medical_history WHERE id = $1`, id)
	if err != nil {
		return wrapError(err, "delete medical history")
	}
	return checkAffected(result)
}

func (r *medicalHistoryRepository) Stats(ctx context.Context) (*model.MedicalHistoryStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM medical_history) AS total,
			(SELECT COUNT(*) FROM medical_history WHERE LOWER(status) = 'active') AS active,
			(SELECT COUNT(*) FROM medical_history WHERE LOWER(status) = 'inactive') AS inactive,
			(SELECT COUNT(*) FROM users u
				WHERE u.type = $1
				AND EXISTS (SELECT 1 FROM medical_history mh WHERE mh.user_id = u.id)) AS patients_with_history,
			(SELECT COUNT(*) FROM users u
				WHERE u.type = $1
				AND NOT EXISTS (SELECT 1 FROM medical_history mh WHERE mh.user_id = u.id)) AS patients_without_history
	`
	var stats model.MedicalHistoryStats
	if err := r.db.GetContext(ctx, &stats, query, model.UserTypePatient); err != nil {
		return nil, wrapError(err, "get medical history stats")
	}
	return &stats, nil
}

func (r *medicalHistoryRepository) Search(ctx context.Context, q string, assignedTo *uuid.UUID) ([]*model.MedicalHistoryDetail, error) {
	query := `
		SELECT ` + medicalColumnsAs("mh") + `, u.fname, u.lname, u.email
		FROM medical_history mh
		JOIN users u ON u.id = mh.user_id
		WHERE (
			LOWER(u.fname) LIKE $1
			OR LOWER(u.lname) LIKE $1
			OR LOWER(COALESCE(mh.allergies, '')) LIKE $1
			OR LOWER(COALESCE(mh.history, '')) LIKE $1
			OR LOWER(COALESCE(mh.primary_care_physician, '')) LIKE $1
		)`
	args := []interface{}{likePattern(strings.ToLower(q))}

	if assignedTo != nil {
		args = append(args, *assignedTo)
		query += assignedFilter("mh.user_id", len(args))
	}
	query += " ORDER BY u.lname, u.fname"

	histories := []*model.MedicalHistoryDetail{}
	if err := r.db.SelectContext(ctx, &histories, query, args...); err != nil {
		return nil, wrapError(err, "search medical histories")
	}
	return histories, nil
}

func (r *medicalHistoryRepository) PatientsWithoutHistory(ctx context.Context, assignedTo *uuid.UUID) ([]*model.PatientWithoutHistory, error) {
	query := `
		SELECT u.id, u.fname, u.lname, u.email, u.username
		FROM users u
		WHERE u.type = $1
		AND NOT EXISTS (SELECT 1 FROM medical_history mh WHERE mh.user_id = u.id)`
	args := []interface{}{model.UserTypePatient}

	if assignedTo != nil {
		args = append(args, *assignedTo)
		query += assignedFilter("u.id", len(args))
	}
	query += " ORDER BY u.lname, u.fname"

	patients := []*model.PatientWithoutHistory{}
	if err := r.db.SelectContext(ctx, &patients, query, args...); err != nil {
		return nil, wrapError(err, "list patients without history")
	}
	return patients, nil
}
