package model

import (
	"time"

	"github.com/google/uuid"
)

type AuditLog struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	UserID     *uuid.UUID `json:"user_id" db:"user_id"`
	Action     string     `json:"action" db:"action"`
	EntityType string     `json:"entity_type" db:"entity_type"`
	EntityID   *uuid.UUID `json:"entity_id" db:"entity_id"`
	Metadata   JSONMap    `json:"metadata" db:"metadata"`
	IPAddress  string     `json:"ip_address" db:"ip_address"`
	UserAgent  string     `json:"user_agent" db:"user_agent"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}

const (
	// Action types
	AuditActionCreate = "create"
	AuditActionRead   = "read"
	AuditActionUpdate = "update"
	AuditActionDelete = "delete"

	// Entity types
	AuditEntityUser           = "user"
	AuditEntityPatient        = "patient"
	AuditEntityMedicalHistory = "medical_history"
	AuditEntityAppointment    = "appointment"
	AuditEntityAssignment     = "assignment"
)

type AuditFilter struct {
	UserID     *uuid.UUID `form:"-"`
	EntityType string     `form:"entity_type"`
	Action     string     `form:"action"`
	Limit      int        `form:"limit"`
}
