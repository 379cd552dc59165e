package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/optorecord-api/internal/model"
	"github.com/jwalitptl/optorecord-api/internal/repository"
)

const assignmentColumns = `id, physician_id, patient_id, assigned_date, is_active, notes`

type assignmentRepository struct {
	BaseRepository
}

func NewAssignmentRepository(base BaseRepository) repository.AssignmentRepository {
	return &assignmentRepository{base}
}

// upsertAssignment inserts the pair or reactivates an existing row.
func upsertAssignment(ctx context.Context, q sqlx.QueryerContext, physicianID, patientID uuid.UUID, notes *string) (*model.Assignment, error) {
	query := `
		INSERT INTO physician_patients (id, physician_id, patient_id, notes)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (physician_id, patient_id) DO UPDATE
		SET is_active = TRUE, notes = EXCLUDED.notes, assigned_date = NOW()
		RETURNING ` + assignmentColumns

	var a model.Assignment
	if err := sqlx.GetContext(ctx, q, &a, query, uuid.New(), physicianID, patientID, notes); err != nil {
		return nil, wrapError(err, "upsert assignment")
	}
	return &a, nil
}

func (r *assignmentRepository) Upsert(ctx context.Context, physicianID, patientID uuid.UUID, notes *string) (*model.Assignment, error) {
	return upsertAssignment(ctx, r.db, physicianID, patientID, notes)
}

func (r *assignmentRepository) List(ctx context.Context, filter *model.AssignmentFilter) ([]*model.AssignmentDetail, error) {
	query := `
		SELECT pp.id, pp.physician_id, pp.patient_id, pp.assigned_date, pp.is_active, pp.notes,
			ph.fname AS physician_fname, ph.lname AS physician_lname,
			ph.username AS physician_username, ph.email AS physician_email,
			pt.fname AS patient_fname, pt.lname AS patient_lname,
			pt.username AS patient_username, pt.email AS patient_email
		FROM physician_patients pp
		JOIN users ph ON ph.id = pp.physician_id
		JOIN users pt ON pt.id = pp.patient_id
		WHERE pp.is_active`
	var args []interface{}

	if filter != nil && filter.PhysicianID != nil {
		args = append(args, *filter.PhysicianID)
		query += fmt.Sprintf(" AND pp.physician_id = $%d", len(args))
	}
	if filter != nil && filter.PatientID != nil {
		args = append(args, *filter.PatientID)
		query += fmt.Sprintf(" AND pp.patient_id = $%d", len(args))
	}
	query += " ORDER BY pp.assigned_date DESC"

	assignments := []*model.AssignmentDetail{}
	if err := r.db.SelectContext(ctx, &assignments, query, args...); err != nil {
		return nil, wrapError(err, "list assignments")
	}
	return assignments, nil
}

func (r *assignmentRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE physician_patients SET is_active = FALSE WHERE id = $1 AND is_active`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return wrapError(err, "deactivate assignment")
	}
	return checkAffected(result)
}

func (r *assignmentRepository) IsAssigned(ctx context.Context, physicianID, patientID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM physician_patients
			WHERE physician_id = $1 AND patient_id = $2 AND is_active
		)
	`
	var assigned bool
	if err := r.db.GetContext(ctx, &assigned, query, physicianID, patientID); err != nil {
		return false, wrapError(err, "check assignment")
	}
	return assigned, nil
}
