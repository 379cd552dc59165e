package model

import (
	"github.com/google/uuid"
)

// User type constants
const (
	UserTypePatient   = "Patient"
	UserTypeAdmin     = "Admin"
	UserTypePhysician = "Physician"
)

// UserTypes lists every valid value of users.type.
var UserTypes = []string{UserTypePatient, UserTypeAdmin, UserTypePhysician}

func IsValidUserType(t string) bool {
	for _, v := range UserTypes {
		if v == t {
			return true
		}
	}
	return false
}

// User represents a row of the users table
type User struct {
	ID                uuid.UUID `json:"id" db:"id"`
	FName             string    `json:"fname" db:"fname"`
	LName             string    `json:"lname" db:"lname"`
	Email             string    `json:"email" db:"email"`
	Phone             *string   `json:"phone" db:"phone"`
	Username          string    `json:"username" db:"username"`
	Password          string    `json:"-" db:"password"`
	Type              string    `json:"type" db:"type"`
	Address           *string   `json:"address" db:"address"`
	InsuranceProvider *string   `json:"insurance_provider" db:"insurance_provider"`
	PolicyNumber      *string   `json:"policy_number" db:"policy_number"`
	Timestamps
}

func (u *User) FullName() string {
	return u.FName + " " + u.LName
}

// PhysicianSummary is the public view of a physician.
type PhysicianSummary struct {
	ID    uuid.UUID `json:"id" db:"id"`
	FName string    `json:"fname" db:"fname"`
	LName string    `json:"lname" db:"lname"`
	Email string    `json:"email" db:"email"`
}

// CreateUserRequest represents user creation parameters
type CreateUserRequest struct {
	FName             string  `json:"fname" binding:"required"`
	LName             string  `json:"lname" binding:"required"`
	Email             string  `json:"email" binding:"required,email"`
	Username          string  `json:"username" binding:"required"`
	Password          string  `json:"password" binding:"required"`
	Type              string  `json:"type" binding:"required,usertype"`
	Phone             *string `json:"phone"`
	Address           *string `json:"address"`
	InsuranceProvider *string `json:"insurance_provider"`
	PolicyNumber      *string `json:"policy_number"`
}

// UpdateUserRequest represents user update parameters. Nil fields are left untouched.
type UpdateUserRequest struct {
	FName             *string `json:"fname"`
	LName             *string `json:"lname"`
	Email             *string `json:"email" binding:"omitempty,email"`
	Phone             *string `json:"phone"`
	Username          *string `json:"username"`
	Password          *string `json:"password"`
	Type              *string `json:"type" binding:"omitempty,usertype"`
	Address           *string `json:"address"`
	InsuranceProvider *string `json:"insurance_provider"`
	PolicyNumber      *string `json:"policy_number"`
}

func (r *UpdateUserRequest) IsEmpty() bool {
	return r.FName == nil && r.LName == nil && r.Email == nil && r.Phone == nil &&
		r.Username == nil && r.Password == nil && r.Type == nil && r.Address == nil &&
		r.InsuranceProvider == nil && r.PolicyNumber == nil
}
