package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	AppointmentStatusScheduled = "Scheduled"
	AppointmentStatusRequested = "Requested"
	AppointmentStatusConfirmed = "Confirmed"
	AppointmentStatusCompleted = "Completed"
	AppointmentStatusCancelled = "Cancelled"
)

type Appointment struct {
	ID              uuid.UUID `db:"id" json:"id"`
	PatientID       uuid.UUID `db:"patient_id" json:"patient_id"`
	PhysicianID     uuid.UUID `db:"physician_id" json:"physician_id"`
	AppointmentDate time.Time `db:"appointment_date" json:"appointment_date"`
	Reason          *string   `db:"reason" json:"reason"`
	Status          string    `db:"status" json:"status"`
	Notes           *string   `db:"notes" json:"notes"`
	Timestamps
}

// AppointmentDetail is an appointment joined with both participants.
type AppointmentDetail struct {
	Appointment
	PatientFName   string `db:"patient_fname" json:"patient_fname"`
	PatientLName   string `db:"patient_lname" json:"patient_lname"`
	PatientEmail   string `db:"patient_email" json:"patient_email"`
	PhysicianFName string `db:"physician_fname" json:"physician_fname"`
	PhysicianLName string `db:"physician_lname" json:"physician_lname"`
	PhysicianEmail string `db:"physician_email" json:"physician_email"`
}

type CreateAppointmentRequest struct {
	PatientID       uuid.UUID `json:"patient_id" binding:"required"`
	PhysicianID     uuid.UUID `json:"physician_id" binding:"required"`
	AppointmentDate time.Time `json:"appointment_date" binding:"required"`
	Reason          *string   `json:"reason"`
	Status          *string   `json:"status" binding:"omitempty,oneof=Scheduled Requested Confirmed Completed Cancelled"`
	Notes           *string   `json:"notes"`
}

// RequestAppointmentRequest is sent by a patient asking for an appointment.
type RequestAppointmentRequest struct {
	PhysicianID     uuid.UUID `json:"physician_id" binding:"required"`
	AppointmentDate time.Time `json:"appointment_date" binding:"required"`
	Reason          *string   `json:"reason"`
	Notes           *string   `json:"notes"`
}

type UpdateAppointmentRequest struct {
	ID              *uuid.UUID `json:"id"`
	AppointmentDate *time.Time `json:"appointment_date"`
	Reason          *string    `json:"reason"`
	Status          *string    `json:"status" binding:"omitempty,oneof=Scheduled Requested Confirmed Completed Cancelled"`
	Notes           *string    `json:"notes"`
	PhysicianID     *uuid.UUID `json:"physician_id"`
}

func (r *UpdateAppointmentRequest) IsEmpty() bool {
	return r.AppointmentDate == nil && r.Reason == nil && r.Status == nil &&
		r.Notes == nil && r.PhysicianID == nil
}

// OnlyNotes reports whether the update touches nothing but reason and notes.
func (r *UpdateAppointmentRequest) OnlyNotes() bool {
	return r.AppointmentDate == nil && r.Status == nil && r.PhysicianID == nil
}

type AppointmentFilter struct {
	PatientID   *uuid.UUID
	PhysicianID *uuid.UUID
	From        *time.Time
	To          *time.Time
	Ascending   bool
}
