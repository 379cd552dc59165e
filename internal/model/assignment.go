package model

import (
	"time"

	"github.com/google/uuid"
)

// Assignment is a physician_patients row.
type Assignment struct {
	ID           uuid.UUID `db:"id" json:"id"`
	PhysicianID  uuid.UUID `db:"physician_id" json:"physician_id"`
	PatientID    uuid.UUID `db:"patient_id" json:"patient_id"`
	AssignedDate time.Time `db:"assigned_date" json:"assigned_date"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	Notes        *string   `db:"notes" json:"notes"`
}

type AssignmentDetail struct {
	Assignment
	PhysicianFName    string `db:"physician_fname" json:"physician_fname"`
	PhysicianLName    string `db:"physician_lname" json:"physician_lname"`
	PhysicianUsername string `db:"physician_username" json:"physician_username"`
	PhysicianEmail    string `db:"physician_email" json:"physician_email"`
	PatientFName      string `db:"patient_fname" json:"patient_fname"`
	PatientLName      string `db:"patient_lname" json:"patient_lname"`
	PatientUsername   string `db:"patient_username" json:"patient_username"`
	PatientEmail      string `db:"patient_email" json:"patient_email"`
}

type CreateAssignmentRequest struct {
	PhysicianID uuid.UUID `json:"physician_id" binding:"required"`
	PatientID   uuid.UUID `json:"patient_id" binding:"required"`
	Notes       *string   `json:"notes"`
}

type AssignmentFilter struct {
	PhysicianID *uuid.UUID
	PatientID   *uuid.UUID
}
