package model

import (
	"time"

	"github.com/google/uuid"
)

// Patient is a Patient user joined with its medical history, if any.
type Patient struct {
	User
	MedicalHistoryID     *uuid.UUID `json:"medical_history_id" db:"medical_history_id"`
	DateOfBirth          *Date      `json:"date_of_birth" db:"date_of_birth"`
	HeightIn             *float64   `json:"height_in" db:"height_in"`
	WeightLbs            *float64   `json:"weight_lbs" db:"weight_lbs"`
	Gender               *string    `json:"gender" db:"gender"`
	PrimaryCarePhysician *string    `json:"primary_care_physician" db:"primary_care_physician"`
	EmergencyContact     *string    `json:"emergency_contact" db:"emergency_contact"`
	BloodType            *string    `json:"blood_type" db:"blood_type"`
	Allergies            *string    `json:"allergies" db:"allergies"`
	History              *string    `json:"history" db:"history"`
	LastVisit            *time.Time `json:"last_visit" db:"last_visit"`
	Status               *string    `json:"status" db:"status"`
	Age                  *int       `json:"age" db:"-"`
}

// PatientRow is the projection used by the patient list.
type PatientRow struct {
	ID          uuid.UUID  `db:"id"`
	FName       string     `db:"fname"`
	LName       string     `db:"lname"`
	DateOfBirth *Date      `db:"date_of_birth"`
	LastVisit   *time.Time `db:"last_visit"`
	Status      *string    `db:"status"`
}

// PatientSummary is the list item shape consumed by the patient table.
type PatientSummary struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Age       *int       `json:"age"`
	LastVisit *time.Time `json:"lastVisit"`
	Status    string     `json:"status"`
}

type PatientListResponse struct {
	Patients []PatientSummary `json:"patients"`
	Count    int              `json:"count"`
}

type PatientFilter struct {
	Search    string `form:"search"`
	Status    string `form:"status"`
	Physician string `form:"physician"`
	Limit     int    `form:"limit" binding:"omitempty,min=1,max=500"`
	Offset    int    `form:"offset" binding:"omitempty,min=0"`
	// AssignedTo limits results to the active patients of a physician.
	AssignedTo *uuid.UUID `form:"-"`
}

type CreatePatientRequest struct {
	FName             string  `json:"fname" binding:"required"`
	LName             string  `json:"lname" binding:"required"`
	Email             string  `json:"email" binding:"required,email"`
	Username          string  `json:"username" binding:"required"`
	Password          string  `json:"password" binding:"required"`
	Phone             *string `json:"phone"`
	Address           *string `json:"address"`
	InsuranceProvider *string `json:"insurance_provider"`
	PolicyNumber      *string `json:"policy_number"`
	DateOfBirth       string  `json:"date_of_birth" binding:"required"`
	MedicalFields
}

type UpdatePatientRequest struct {
	FName             *string `json:"fname"`
	LName             *string `json:"lname"`
	Phone             *string `json:"phone"`
	Address           *string `json:"address"`
	InsuranceProvider *string `json:"insurance_provider"`
	PolicyNumber      *string `json:"policy_number"`
	Password          *string `json:"password"`
	DateOfBirth       *string `json:"date_of_birth"`
	MedicalFields
}

// UserFields reports whether any users column is being changed.
func (r *UpdatePatientRequest) UserFields() bool {
	return r.FName != nil || r.LName != nil || r.Phone != nil || r.Address != nil ||
		r.InsuranceProvider != nil || r.PolicyNumber != nil || r.Password != nil
}

// MedicalFieldsSet reports whether any medical_history column is being changed.
func (r *UpdatePatientRequest) MedicalFieldsSet() bool {
	return r.DateOfBirth != nil || !r.MedicalFields.isEmpty()
}

type PatientStats struct {
	TotalPatients     int      `json:"total_patients" db:"total_patients"`
	ActivePatients    int      `json:"active_patients" db:"active_patients"`
	InactivePatients  int      `json:"inactive_patients" db:"inactive_patients"`
	PediatricPatients int      `json:"pediatric_patients" db:"pediatric_patients"`
	SeniorPatients    int      `json:"senior_patients" db:"senior_patients"`
	AvgAge            *float64 `json:"avg_age" db:"avg_age"`
}

type PatientSearchResult struct {
	ID          uuid.UUID `json:"id" db:"id"`
	FName       string    `json:"fname" db:"fname"`
	LName       string    `json:"lname" db:"lname"`
	Email       string    `json:"email" db:"email"`
	Phone       *string   `json:"phone" db:"phone"`
	DateOfBirth *Date     `json:"date_of_birth" db:"date_of_birth"`
	Status      *string   `json:"status" db:"status"`
}

type PatientSearchResponse struct {
	Results []PatientSearchResult `json:"results"`
	Count   int                   `json:"count"`
	Query   string                `json:"query"`
}

const (
	ActivityAppointment    = "appointment"
	ActivityMedicalHistory = "medical_history_update"
)

// PatientActivity is one entry of the patient timeline.
type PatientActivity struct {
	Type          string    `json:"type" db:"type"`
	ID            uuid.UUID `json:"id" db:"id"`
	Date          time.Time `json:"date" db:"date"`
	Status        *string   `json:"status" db:"status"`
	Description   *string   `json:"description" db:"description"`
	PhysicianName *string   `json:"physician_name" db:"physician_name"`
}

type PatientActivityResponse struct {
	PatientID uuid.UUID         `json:"patient_id"`
	Activity  []PatientActivity `json:"activity"`
	Count     int               `json:"count"`
}

type PortalResponse struct {
	Patient              *Patient            `json:"patient"`
	UpcomingAppointments []AppointmentDetail `json:"upcoming_appointments"`
}

// PatientSearch narrows a free text search to what the caller may see.
type PatientSearch struct {
	Query      string
	Limit      int
	PatientID  *uuid.UUID
	AssignedTo *uuid.UUID
}

// PatientUpdate is a validated patient update; the password is already hashed.
type PatientUpdate struct {
	User    UpdateUserRequest
	Medical MedicalHistoryUpdate
}
