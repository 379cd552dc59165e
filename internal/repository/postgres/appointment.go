package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/optorecord-api/internal/model"
	"github.com/jwalitptl/optorecord-api/internal/repository"
)

const appointmentColumns = `id, patient_id, physician_id, appointment_date, reason, status, notes, created_at, updated_at`

const appointmentDetailSelect = `
	SELECT a.id, a.patient_id, a.physician_id, a.appointment_date, a.reason, a.status,
		a.notes, a.created_at, a.updated_at,
		pt.fname AS patient_fname, pt.lname AS patient_lname, pt.email AS patient_email,
		ph.fname AS physician_fname, ph.lname AS physician_lname, ph.email AS physician_email
	FROM appointments a
	JOIN users pt ON pt.id = a.patient_id
	JOIN users ph ON ph.id = a.physician_id`

type appointmentRepository struct {
	BaseRepository
}

func NewAppointmentRepository(base BaseRepository) repository.AppointmentRepository {
	return &appointmentRepository{base}
}

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			id, patient_id, physician_id, appointment_date, reason, status, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`
	if appointment.ID == uuid.Nil {
		appointment.ID = uuid.New()
	}

	err := r.db.QueryRowxContext(ctx, query,
		appointment.ID,
		appointment.PatientID,
		appointment.PhysicianID,
		appointment.AppointmentDate,
		appointment.Reason,
		appointment.Status,
		appointment.Notes,
	).Scan(&appointment.CreatedAt, &appointment.UpdatedAt)
	if err != nil {
		return wrapError(err, "create appointment")
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`

	var appointment model.Appointment
	if err := r.db.GetContext(ctx, &appointment, query, id); err != nil {
		return nil, wrapError(err, "get appointment")
	}
	return &appointment, nil
}

func (r *appointmentRepository) GetDetail(ctx context.Context, id uuid.UUID) (*model.AppointmentDetail, error) {
	query := appointmentDetailSelect + ` WHERE a.id = $1`

	var appointment model.AppointmentDetail
	if err := r.db.GetContext(ctx, &appointment, query, id); err != nil {
		return nil, wrapError(err, "get appointment")
	}
	return &appointment, nil
}

func (r *appointmentRepository) List(ctx context.Context, filter *model.AppointmentFilter) ([]*model.AppointmentDetail, error) {
	query := appointmentDetailSelect + ` WHERE 1=1`
	var args []interface{}

	if filter.PatientID != nil {
		args = append(args, *filter.PatientID)
		query += fmt.Sprintf(" AND a.patient_id = $%d", len(args))
	}
	if filter.PhysicianID != nil {
		args = append(args, *filter.PhysicianID)
		query += fmt.Sprintf(" AND a.physician_id = $%d", len(args))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		query += fmt.Sprintf(" AND a.appointment_date >= $%d", len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		query += fmt.Sprintf(" AND a.appointment_date <= $%d", len(args))
	}

	if filter.Ascending {
		query += " ORDER BY a.appointment_date ASC"
	} else {
		query += " ORDER BY a.appointment_date DESC"
	}

	appointments := []*model.AppointmentDetail{}
	if err := r.db.SelectContext(ctx, &appointments, query, args...); err != nil {
		return nil, wrapError(err, "list appointments")
	}
	return appointments, nil
}

func (r *appointmentRepository) Update(ctx context.Context, id uuid.UUID, update *model.UpdateAppointmentRequest) (*model.Appointment, error) {
	b := newSetBuilder("appointment_date", "reason", "status", "notes", "physician_id")
	b.add("appointment_date", update.AppointmentDate)
	b.add("reason", update.Reason)
	b.add("status", update.Status)
	b.add("notes", update.Notes)
	b.add("physician_id", update.PhysicianID)
	if b.empty() {
		return nil, fmt.Errorf("failed to update appointment: no fields")
	}

	query, args := b.build("appointments", "id", id)
	query += " RETURNING " + appointmentColumns

	var appointment model.Appointment
	if err := r.db.GetContext(ctx, &appointment, query, args...); err != nil {
		return nil, wrapError(err, "update appointment")
	}
	return &appointment, nil
}

func (r *appointmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return wrapError(err, "delete appointment")
	}
	return checkAffected(result)
}
