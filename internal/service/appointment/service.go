package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/optorecord-api/internal/model"
	"github.com/jwalitptl/optorecord-api/internal/repository"
	apperrors "github.com/jwalitptl/optorecord-api/pkg/errors"
)

const upcomingWindow = 30 * 24 * time.Hour

type Service interface {
	List(ctx context.Context, caller *model.AuthUser) ([]*model.AppointmentDetail, error)
	Upcoming(ctx context.Context, caller *model.AuthUser) ([]*model.AppointmentDetail, error)
	Create(ctx context.Context, caller *model.AuthUser, req *model.CreateAppointmentRequest) (*model.AppointmentDetail, error)
	Request(ctx context.Context, caller *model.AuthUser, req *model.RequestAppointmentRequest) (*model.AppointmentDetail, error)
	Get(ctx context.Context, caller *model.AuthUser, id uuid.UUID) (*model.AppointmentDetail, error)
	Update(ctx context.Context, caller *model.AuthUser, id uuid.UUID, req *model.UpdateAppointmentRequest) (before, after *model.AppointmentDetail, err error)
	Delete(ctx context.Context, caller *model.AuthUser, id uuid.UUID) (*model.AppointmentDetail, error)
}

type service struct {
	repo     repository.AppointmentRepository
	userRepo repository.UserRepository
	now      func() time.Time
}

func NewService(repo repository.AppointmentRepository, userRepo repository.UserRepository) Service {
	return &service{
		repo:     repo,
		userRepo: userRepo,
		now:      time.Now,
	}
}

func (s *service) List(ctx context.Context, caller *model.AuthUser) ([]*model.AppointmentDetail, error) {
	filter, err := scope(caller)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, filter)
}

// Upcoming lists the caller's appointments of the next 30 days, soonest first.
func (s *service) Upcoming(ctx context.Context, caller *model.AuthUser) ([]*model.AppointmentDetail, error) {
	filter, err := scope(caller)
	if err != nil {
		return nil, err
	}

	from := s.now()
	to := from.Add(upcomingWindow)
	filter.From = &from
	filter.To = &to
	filter.Ascending = true
	return s.list(ctx, filter)
}

func (s *service) Create(ctx context.Context, caller *model.AuthUser, req *model.CreateAppointmentRequest) (*model.AppointmentDetail, error) {
	if !caller.IsAdmin() && !caller.IsPhysician() {
		return nil, apperrors.Forbidden("Only admins and physicians can create appointments")
	}
	if err := s.checkParticipants(ctx, req.PatientID, req.PhysicianID); err != nil {
		return nil, err
	}
	if caller.IsPhysician() && req.PhysicianID != caller.ID {
		return nil, apperrors.Forbidden("Physicians can only create appointments for themselves")
	}

	appointment := &model.Appointment{
		ID:              uuid.New(),
		PatientID:       req.PatientID,
		PhysicianID:     req.PhysicianID,
		AppointmentDate: req.AppointmentDate,
		Reason:          req.Reason,
		Status:          model.AppointmentStatusScheduled,
		Notes:           req.Notes,
	}
	if req.Status != nil {
		appointment.Status = *req.Status
	}
	return s.create(ctx, appointment)
}

// Request books a Requested appointment for the calling patient.
func (s *service) Request(ctx context.Context, caller *model.AuthUser, req *model.RequestAppointmentRequest) (*model.AppointmentDetail, error) {
	if !caller.IsPatient() {
		return nil, apperrors.Forbidden("Only patients can request appointments")
	}
	if err := s.checkParticipants(ctx, caller.ID, req.PhysicianID); err != nil {
		return nil, err
	}

	return s.create(ctx, &model.Appointment{
		ID:              uuid.New(),
		PatientID:       caller.ID,
		PhysicianID:     req.PhysicianID,
		AppointmentDate: req.AppointmentDate,
		Reason:          req.Reason,
		Status:          model.AppointmentStatusRequested,
		Notes:           req.Notes,
	})
}

func (s *service) Get(ctx context.Context, caller *model.AuthUser, id uuid.UUID) (*model.AppointmentDetail, error) {
	appointment, err := s.detail(ctx, id)
	if err != nil {
		return nil, err
	}
	if !participant(caller, &appointment.Appointment) {
		return nil, apperrors.Forbidden("")
	}
	return appointment, nil
}

func (s *service) Update(ctx context.Context, caller *model.AuthUser, id uuid.UUID, req *model.UpdateAppointmentRequest) (*model.AppointmentDetail, *model.AppointmentDetail, error) {
	before, err := s.detail(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	switch {
	case caller.IsAdmin():
	case caller.IsPhysician() && before.PhysicianID == caller.ID:
	case caller.IsPatient() && before.PatientID == caller.ID:
		if !req.OnlyNotes() {
			return nil, nil, apperrors.Forbidden("Patients can only update reason and notes")
		}
	default:
		return nil, nil, apperrors.Forbidden("")
	}

	if req.IsEmpty() {
		return nil, nil, apperrors.BadRequest("No fields provided for update")
	}
	if req.PhysicianID != nil && *req.PhysicianID != before.PhysicianID {
		if err := s.checkUser(ctx, *req.PhysicianID, model.UserTypePhysician, "Physician", "Specified user is not a physician"); err != nil {
			return nil, nil, err
		}
	}

	if _, err := s.repo.Update(ctx, id, req); err != nil {
		return nil, nil, mapError(err)
	}

	after, err := s.detail(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return before, after, nil
}

// Delete is allowed for admins and for both participants of the appointment.
func (s *service) Delete(ctx context.Context, caller *model.AuthUser, id uuid.UUID) (*model.AppointmentDetail, error) {
	appointment, err := s.detail(ctx, id)
	if err != nil {
		return nil, err
	}
	if !participant(caller, &appointment.Appointment) {
		return nil, apperrors.Forbidden("")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, mapError(err)
	}
	return appointment, nil
}

func (s *service) create(ctx context.Context, appointment *model.Appointment) (*model.AppointmentDetail, error) {
	if err := s.repo.Create(ctx, appointment); err != nil {
		return nil, apperrors.Internal(err)
	}
	return s.detail(ctx, appointment.ID)
}

func (s *service) list(ctx context.Context, filter *model.AppointmentFilter) ([]*model.AppointmentDetail, error) {
	appointments, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return appointments, nil
}

func (s *service) detail(ctx context.Context, id uuid.UUID) (*model.AppointmentDetail, error) {
	appointment, err := s.repo.GetDetail(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	return appointment, nil
}

func (s *service) checkParticipants(ctx context.Context, patientID, physicianID uuid.UUID) error {
	if err := s.checkUser(ctx, patientID, model.UserTypePatient, "Patient", "Specified user is not a patient"); err != nil {
		return err
	}
	return s.checkUser(ctx, physicianID, model.UserTypePhysician, "Physician", "Specified user is not a physician")
}

func (s *service) checkUser(ctx context.Context, id uuid.UUID, userType, resource, wrongType string) error {
	user, err := s.userRepo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound(resource)
		}
		return apperrors.Internal(err)
	}
	if user.Type != userType {
		return apperrors.BadRequest(wrongType)
	}
	return nil
}

func scope(caller *model.AuthUser) (*model.AppointmentFilter, error) {
	id := caller.ID
	switch {
	case caller.IsAdmin():
		return &model.AppointmentFilter{}, nil
	case caller.IsPhysician():
		return &model.AppointmentFilter{PhysicianID: &id}, nil
	case caller.IsPatient():
		return &model.AppointmentFilter{PatientID: &id}, nil
	}
	return nil, apperrors.Forbidden("")
}

func participant(caller *model.AuthUser, a *model.Appointment) bool {
	switch {
	case caller.IsAdmin():
		return true
	case caller.IsPhysician():
		return a.PhysicianID == caller.ID
	case caller.IsPatient():
		return a.PatientID == caller.ID
	}
	return false
}

func mapError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound("Appointment")
	}
	return apperrors.Internal(err)
}
