package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	MedicalStatusActive   = "active"
	MedicalStatusInactive = "inactive"
	MedicalStatusArchived = "archived"
)

var (
	BloodTypes = []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}
	Genders    = []string{"Male", "Female", "Other"}
)

// MedicalHistory is the one-to-one clinical record of a patient.
type MedicalHistory struct {
	ID                   uuid.UUID  `json:"id" db:"id"`
	UserID               uuid.UUID  `json:"user_id" db:"user_id"`
	DateOfBirth          Date       `json:"date_of_birth" db:"date_of_birth"`
	HeightIn             *float64   `json:"height_in" db:"height_in"`
	WeightLbs            *float64   `json:"weight_lbs" db:"weight_lbs"`
	Gender               *string    `json:"gender" db:"gender"`
	PrimaryCarePhysician *string    `json:"primary_care_physician" db:"primary_care_physician"`
	EmergencyContact     *string    `json:"emergency_contact" db:"emergency_contact"`
	BloodType            *string    `json:"blood_type" db:"blood_type"`
	Allergies            *string    `json:"allergies" db:"allergies"`
	History              *string    `json:"history" db:"history"`
	LastVisit            *time.Time `json:"last_visit" db:"last_visit"`
	Status               string     `json:"status" db:"status"`
	Timestamps
}

// MedicalHistoryDetail is a medical history joined with its patient.
type MedicalHistoryDetail struct {
	MedicalHistory
	FName string `json:"fname" db:"fname"`
	LName string `json:"lname" db:"lname"`
	Email string `json:"email" db:"email"`
}

// MedicalFields are the clinical columns shared by create and update requests.
type MedicalFields struct {
	HeightIn             *float64   `json:"height_in" binding:"omitempty,gt=0"`
	WeightLbs            *float64   `json:"weight_lbs" binding:"omitempty,gt=0"`
	Gender               *string    `json:"gender" binding:"omitempty,gender"`
	PrimaryCarePhysician *string    `json:"primary_care_physician"`
	EmergencyContact     *string    `json:"emergency_contact"`
	BloodType            *string    `json:"blood_type" binding:"omitempty,bloodtype"`
	Allergies            *string    `json:"allergies"`
	History              *string    `json:"history"`
	LastVisit            *time.Time `json:"last_visit"`
	Status               *string    `json:"status" binding:"omitempty,oneof=active inactive archived"`
}

func (f *MedicalFields) isEmpty() bool {
	return f.HeightIn == nil && f.WeightLbs == nil && f.Gender == nil &&
		f.PrimaryCarePhysician == nil && f.EmergencyContact == nil && f.BloodType == nil &&
		f.Allergies == nil && f.History == nil && f.LastVisit == nil && f.Status == nil
}

type CreateMedicalHistoryRequest struct {
	UserID      uuid.UUID `json:"user_id" binding:"required"`
	DateOfBirth string    `json:"date_of_birth" binding:"required"`
	MedicalFields
}

// UpdateMedicalHistoryRequest carries the id in the body for PUT /medical-history.
type UpdateMedicalHistoryRequest struct {
	ID          *uuid.UUID `json:"id"`
	DateOfBirth *string    `json:"date_of_birth"`
	MedicalFields
}

func (r *UpdateMedicalHistoryRequest) IsEmpty() bool {
	return r.DateOfBirth == nil && r.MedicalFields.isEmpty()
}

// MedicalHistoryUpdate is a validated update ready for the repository.
type MedicalHistoryUpdate struct {
	DateOfBirth *Date
	MedicalFields
}

type MedicalHistoryStats struct {
	Total                  int `json:"total" db:"total"`
	Active                 int `json:"active" db:"active"`
	Inactive               int `json:"inactive" db:"inactive"`
	PatientsWithHistory    int `json:"patients_with_history" db:"patients_with_history"`
	PatientsWithoutHistory int `json:"patients_without_history" db:"patients_without_history"`
}

// PatientWithoutHistory is a patient that has no medical_history row yet.
type PatientWithoutHistory struct {
	ID       uuid.UUID `json:"id" db:"id"`
	FName    string    `json:"fname" db:"fname"`
	LName    string    `json:"lname" db:"lname"`
	Email    string    `json:"email" db:"email"`
	Username string    `json:"username" db:"username"`
}

type MedicalHistoryFilter struct {
	UserID     *uuid.UUID
	AssignedTo *uuid.UUID
}

func (u *MedicalHistoryUpdate) IsEmpty() bool {
	return u.DateOfBirth == nil && u.MedicalFields.isEmpty()
}
