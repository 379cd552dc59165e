package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/optorecord-api/internal/model"
	"github.com/jwalitptl/optorecord-api/internal/repository"
)

var errMissingDateOfBirth = errors.New("date_of_birth is required to create a medical history")

const patientSelect = `
	SELECT u.id, u.fname, u.lname, u.email, u.phone, u.username, u.password, u.type,
		u.address, u.insurance_provider, u.policy_number, u.created_at, u.updated_at,
		mh.id AS medical_history_id, mh.date_of_birth, mh.height_in, mh.weight_lbs,
		mh.gender, mh.primary_care_physician, mh.emergency_contact, mh.blood_type,
		mh.allergies, mh.history, mh.last_visit, mh.status
	FROM users u
	LEFT JOIN medical_history mh ON mh.user_id = u.id`

type patientRepository struct {
	BaseRepository
}

func NewPatientRepository(base BaseRepository) repository.PatientRepository {
	return &patientRepository{base}
}

// Create inserts the user, its medical history and, when assignTo is set, the
// physician assignment in one transaction.
func (r *patientRepository) Create(ctx context.Context, user *model.User, history *model.MedicalHistory, assignTo *uuid.UUID) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := insertUser(ctx, tx, user); err != nil {
			return err
		}
		if history != nil {
			history.UserID = user.ID
			if err := insertMedicalHistory(ctx, tx, history); err != nil {
				return err
			}
		}
		if assignTo != nil {
			if _, err := upsertAssignment(ctx, tx, *assignTo, user.ID, nil); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *patientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	query := patientSelect + ` WHERE u.id = $1 AND u.type = $2`

	var p model.Patient
	if err := r.db.GetContext(ctx, &p, query, id, model.UserTypePatient); err != nil {
		return nil, wrapError(err, "get patient")
	}
	return &p, nil
}

func (r *patientRepository) List(ctx context.Context, filter *model.PatientFilter) ([]*model.PatientRow, error) {
	query := `
		SELECT u.id, u.fname, u.lname, mh.date_of_birth, mh.last_visit, mh.status
		FROM users u
		LEFT JOIN medical_history mh ON mh.user_id = u.id
		WHERE u.type = $1`
	args := []interface{}{model.UserTypePatient}

	if filter.Search != "" {
		args = append(args, likePattern(filter.Search))
		n := len(args)
		query += fmt.Sprintf(" AND (u.fname ILIKE $%d OR u.lname ILIKE $%d OR u.email ILIKE $%d)", n, n, n)
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND LOWER(COALESCE(mh.status, 'active')) = LOWER($%d)", len(args))
	}
	if filter.Physician != "" {
		args = append(args, likePattern(filter.Physician))
		query += fmt.Sprintf(" AND mh.primary_care_physician ILIKE $%d", len(args))
	}
	if filter.AssignedTo != nil {
		args = append(args, *filter.AssignedTo)
		query += assignedFilter("u.id", len(args))
	}

	query += " ORDER BY u.lname, u.fname"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows := []*model.PatientRow{}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, wrapError(err, "list patients")
	}
	return rows, nil
}

// Update changes user and medical columns in one transaction. A missing medical
// history is created from the update.
func (r *patientRepository) Update(ctx context.Context, id uuid.UUID, update *model.PatientUpdate) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		userSet := newSetBuilder("fname", "lname", "phone", "password",
			"address", "insurance_provider", "policy_number")
		addUserFields(userSet, &update.User)
		if !userSet.empty() {
			query, args := userSet.build("users", "id", id)
			result, err := tx.ExecContext(ctx, query, args...)
			if err != nil {
				return wrapError(err, "update patient user")
			}
			if err := checkAffected(result); err != nil {
				return err
			}
		}

		if update.Medical.IsEmpty() {
			return nil
		}

		medSet := newSetBuilder(medicalSetColumns...)
		addMedicalFields(medSet, &update.Medical)
		query, args := medSet.build("medical_history", "user_id", id)
		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return wrapError(err, "update patient medical history")
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows > 0 {
			return nil
		}

		if update.Medical.DateOfBirth == nil {
			return errMissingDateOfBirth
		}
		history := &model.MedicalHistory{
			UserID:               id,
			DateOfBirth:          *update.Medical.DateOfBirth,
			HeightIn:             update.Medical.HeightIn,
			WeightLbs:            update.Medical.WeightLbs,
			Gender:               update.Medical.Gender,
			PrimaryCarePhysician: update.Medical.PrimaryCarePhysician,
			EmergencyContact:     update.Medical.EmergencyContact,
			BloodType:            update.Medical.BloodType,
			Allergies:            update.Medical.Allergies,
			History:              update.Medical.History,
			LastVisit:            update.Medical.LastVisit,
		}
		if update.Medical.Status != nil {
			history.Status = *update.Medical.Status
		}
		return insertMedicalHistory(ctx, tx, history)
	})
}

func (r *patientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1 AND type = $2`, id, model.UserTypePatient)
	if err != nil {
		return wrapError(err, "delete patient")
	}
	return checkAffected(result)
}

func (r *patientRepository) Stats(ctx context.Context, assignedTo *uuid.UUID) (*model.PatientStats, error) {
	query := `
		SELECT
			COUNT(*) AS total_patients,
			COUNT(*) FILTER (WHERE LOWER(COALESCE(mh.status, 'active')) = 'active') AS active_patients,
			COUNT(*) FILTER (WHERE LOWER(mh.status) = 'inactive') AS inactive_patients,
			COUNT(*) FILTER (WHERE mh.date_of_birth > CURRENT_DATE - INTERVAL '18 years') AS pediatric_patients,
			COUNT(*) FILTER (WHERE mh.date_of_birth <= CURRENT_DATE - INTERVAL '65 years') AS senior_patients,
			AVG(DATE_PART('year', AGE(mh.date_of_birth)))::float8 AS avg_age
		FROM users u
		LEFT JOIN medical_history mh ON mh.user_id = u.id
		WHERE u.type = $1`
	args := []interface{}{model.UserTypePatient}

	if assignedTo != nil {
		args = append(args, *assignedTo)
		query += assignedFilter("u.id", len(args))
	}

	var stats model.PatientStats
	if err := r.db.GetContext(ctx, &stats, query, args...); err != nil {
		return nil, wrapError(err, "get patient stats")
	}
	return &stats, nil
}

func (r *patientRepository) Search(ctx context.Context, search *model.PatientSearch) ([]*model.PatientSearchResult, error) {
	query := `
		SELECT u.id, u.fname, u.lname, u.email, u.phone, mh.date_of_birth, mh.status
		FROM users u
		LEFT JOIN medical_history mh ON mh.user_id = u.id
		WHERE u.type = $1
		AND (
			u.fname ILIKE $2
			OR u.lname ILIKE $2
			OR u.email ILIKE $2
			OR COALESCE(u.phone, '') ILIKE $2
			OR (u.fname || ' ' || u.lname) ILIKE $2
		)`
	args := []interface{}{model.UserTypePatient, likePattern(search.Query)}

	if search.PatientID != nil {
		args = append(args, *search.PatientID)
		query += fmt.Sprintf(" AND u.id = $%d", len(args))
	}
	if search.AssignedTo != nil {
		args = append(args, *search.AssignedTo)
		query += assignedFilter("u.id", len(args))
	}
	args = append(args, search.Limit)
	query += fmt.Sprintf(" ORDER BY u.lname, u.fname LIMIT $%d", len(args))

	results := []*model.PatientSearchResult{}
	if err := r.db.SelectContext(ctx, &results, query, args...); err != nil {
		return nil, wrapError(err, "search patients")
	}
	return results, nil
}

func (r *patientRepository) Activity(ctx context.Context, patientID uuid.UUID, limit int) ([]*model.PatientActivity, error) {
	query := `
		SELECT type, id, date, status, description, physician_name FROM (
			SELECT 'appointment'::text AS type, a.id, a.appointment_date AS date, a.status,
				COALESCE(a.reason, a.notes) AS description,
				(ph.fname || ' ' || ph.lname) AS physician_name
			FROM appointments a
			JOIN users ph ON ph.id = a.physician_id
			WHERE a.patient_id = $1
			UNION ALL
			SELECT 'medical_history_update'::text, mh.id, mh.last_visit, mh.status,
				mh.history, mh.primary_care_physician
			FROM medical_history mh
			WHERE mh.user_id = $1 AND mh.last_visit IS NOT NULL
		) activity
		ORDER BY date DESC
		LIMIT $2
	`
	activity := []*model.PatientActivity{}
	if err := r.db.SelectContext(ctx, &activity, query, patientID, limit); err != nil {
		return nil, wrapError(err, "get patient activity")
	}
	return activity, nil
}
