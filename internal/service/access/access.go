// Package access holds the patient data access rule shared by the patient and
// medical history services.
package access

import (
	"context"

	"github.com/google/uuid"

	"github.com/jwalitptl/optorecord-api/internal/model"
	"github.com/jwalitptl/optorecord-api/internal/repository"
	apperrors "github.com/jwalitptl/optorecord-api/pkg/errors"
)

type Checker struct {
	assignments repository.AssignmentRepository
}

func NewChecker(assignments repository.AssignmentRepository) *Checker {
	return &Checker{assignments: assignments}
}

// Patient allows admins, the patient themself and physicians with an active
// assignment to the patient.
func (c *Checker) Patient(ctx context.Context, caller *model.AuthUser, patientID uuid.UUID) error {
	switch {
	case caller.IsAdmin():
		return nil
	case caller.IsPatient():
		if caller.ID == patientID {
			return nil
		}
	case caller.IsPhysician():
		assigned, err := c.assignments.IsAssigned(ctx, caller.ID, patientID)
		if err != nil {
			return apperrors.Internal(err)
		}
		if assigned {
			return nil
		}
	}
	return apperrors.Forbidden("")
}

// StaffOnly rejects anyone but admins and physicians.
func StaffOnly(caller *model.AuthUser, message string) error {
	if caller.IsAdmin() || caller.IsPhysician() {
		return nil
	}
	return apperrors.Forbidden(message)
}

// AssignedTo is the physician scope of caller, nil for everyone else.
func AssignedTo(caller *model.AuthUser) *uuid.UUID {
	if caller.IsPhysician() {
		id := caller.ID
		return &id
	}
	return nil
}
