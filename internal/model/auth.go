package model

import (
	"github.com/google/uuid"
)

type LoginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Identifier is the username, or the email when no username was sent.
func (r *LoginRequest) Identifier() string {
	if r.Username != "" {
		return r.Username
	}
	return r.Email
}

type RegisterRequest struct {
	FName             string  `json:"fname" binding:"required"`
	LName             string  `json:"lname" binding:"required"`
	Email             string  `json:"email" binding:"required,email"`
	Username          string  `json:"username" binding:"required"`
	Password          string  `json:"password" binding:"required"`
	Phone             *string `json:"phone"`
	Address           *string `json:"address"`
	InsuranceProvider *string `json:"insurance_provider"`
	PolicyNumber      *string `json:"policy_number"`
}

type AuthResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// AuthUser is the authenticated caller, taken from the token claims.
type AuthUser struct {
	ID       uuid.UUID `json:"id"`
	Type     string    `json:"type"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
}

func (u *AuthUser) IsAdmin() bool {
	return u.Type == UserTypeAdmin
}

func (u *AuthUser) IsPhysician() bool {
	return u.Type == UserTypePhysician
}

func (u *AuthUser) IsPatient() bool {
	return u.Type == UserTypePatient
}

// CanAccessUserData reports whether the caller is the user or an admin.
func (u *AuthUser) CanAccessUserData(userID uuid.UUID) bool {
	return u.IsAdmin() || u.ID == userID
}
