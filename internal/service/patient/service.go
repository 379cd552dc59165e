package patient

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/optorecord-api/internal/model"
	"github.com/jwalitptl/optorecord-api/internal/repository"
	"github.com/jwalitptl/optorecord-api/internal/service/access"
	apperrors "github.com/jwalitptl/optorecord-api/pkg/errors"
	"github.com/jwalitptl/optorecord-api/pkg/security"
)

const (
	defaultStatus        = "Active"
	defaultSearchLimit   = 20
	maxSearchLimit       = 100
	defaultActivityLimit = 10
	maxActivityLimit     = 100
	msgUserExists        = "User with this email or username already exists"
	msgStaffOnly         = "Only admins and physicians can access patient records"
)

type Service interface {
	List(ctx context.Context, caller *model.AuthUser, filter *model.PatientFilter) (*model.PatientListResponse, error)
	Create(ctx context.Context, caller *model.AuthUser, req *model.CreatePatientRequest) (*model.Patient, error)
	Get(ctx context.Context, caller *model.AuthUser, id uuid.UUID) (*model.Patient, error)
	Update(ctx context.Context, caller *model.AuthUser, id uuid.UUID, req *model.UpdatePatientRequest) (before, after *model.Patient, err error)
	Delete(ctx context.Context, caller *model.AuthUser, id uuid.UUID) (*model.Patient, error)
	Stats(ctx context.Context, caller *model.AuthUser) (*model.PatientStats, error)
	Search(ctx context.Context, caller *model.AuthUser, query string, limit int) (*model.PatientSearchResponse, error)
	Activity(ctx context.Context, caller *model.AuthUser, id uuid.UUID, limit int) (*model.PatientActivityResponse, error)
	Portal(ctx context.Context, caller *model.AuthUser, id uuid.UUID) (*model.PortalResponse, error)
}

type service struct {
	repo            repository.PatientRepository
	userRepo        repository.UserRepository
	appointmentRepo repository.AppointmentRepository
	access          *access.Checker
	hasher          security.PasswordHasher
	now             func() time.Time
}

func NewService(repo repository.PatientRepository, userRepo repository.UserRepository,
	appointmentRepo repository.AppointmentRepository, checker *access.Checker, hasher security.PasswordHasher) Service {
	return &service{
		repo:            repo,
		userRepo:        userRepo,
		appointmentRepo: appointmentRepo,
		access:          checker,
		hasher:          hasher,
		now:             time.Now,
	}
}

func (s *service) List(ctx context.Context, caller *model.AuthUser, filter *model.PatientFilter) (*model.PatientListResponse, error) {
	if err := access.StaffOnly(caller, msgStaffOnly); err != nil {
		return nil, err
	}

	f := *filter
	f.AssignedTo = access.AssignedTo(caller)

	rows, err := s.repo.List(ctx, &f)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	now := s.now()
	patients := make([]model.PatientSummary, 0, len(rows))
	for _, row := range rows {
		status := defaultStatus
		if row.Status != nil && *row.Status != "" {
			status = *row.Status
		}
		patients = append(patients, model.PatientSummary{
			ID:        row.ID,
			Name:      row.FName + " " + row.LName,
			Age:       model.AgePtr(row.DateOfBirth, now),
			LastVisit: row.LastVisit,
			Status:    status,
		})
	}
	return &model.PatientListResponse{Patients: patients, Count: len(patients)}, nil
}

// Create adds a Patient user together with its medical history. Patients
// created by a physician are assigned to that physician.
func (s *service) Create(ctx context.Context, caller *model.AuthUser, req *model.CreatePatientRequest) (*model.Patient, error) {
	if err := access.StaffOnly(caller, "Only admins and physicians can create patients"); err != nil {
		return nil, err
	}

	dob, err := model.ParseDate(req.DateOfBirth)
	if err != nil {
		return nil, apperrors.BadRequest("Invalid date_of_birth format")
	}

	exists, err := s.userRepo.ExistsByEmailOrUsername(ctx, req.Email, req.Username, nil)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if exists {
		return nil, apperrors.Conflict(msgUserExists)
	}

	hashed, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	user := &model.User{
		ID:                uuid.New(),
		FName:             req.FName,
		LName:             req.LName,
		Email:             req.Email,
		Phone:             req.Phone,
		Username:          req.Username,
		Password:          hashed,
		Type:              model.UserTypePatient,
		Address:           req.Address,
		InsuranceProvider: req.InsuranceProvider,
		PolicyNumber:      req.PolicyNumber,
	}
	history := newHistory(dob, &req.MedicalFields)

	if err := s.repo.Create(ctx, user, history, access.AssignedTo(caller)); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Conflict(msgUserExists)
		}
		return nil, apperrors.Internal(err)
	}

	return s.load(ctx, user.ID)
}

func (s *service) Get(ctx context.Context, caller *model.AuthUser, id uuid.UUID) (*model.Patient, error) {
	if err := s.access.Patient(ctx, caller, id); err != nil {
		return nil, err
	}
	return s.load(ctx, id)
}

func (s *service) Update(ctx context.Context, caller *model.AuthUser, id uuid.UUID, req *model.UpdatePatientRequest) (*model.Patient, *model.Patient, error) {
	if err := s.access.Patient(ctx, caller, id); err != nil {
		return nil, nil, err
	}
	if !req.UserFields() && !req.MedicalFieldsSet() {
		return nil, nil, apperrors.BadRequest("No fields provided for update")
	}

	before, err := s.load(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	update := &model.PatientUpdate{
		User: model.UpdateUserRequest{
			FName:             req.FName,
			LName:             req.LName,
			Phone:             req.Phone,
			Address:           req.Address,
			InsuranceProvider: req.InsuranceProvider,
			PolicyNumber:      req.PolicyNumber,
		},
		Medical: model.MedicalHistoryUpdate{MedicalFields: req.MedicalFields},
	}
	if req.DateOfBirth != nil {
		dob, err := model.ParseDate(*req.DateOfBirth)
		if err != nil {
			return nil, nil, apperrors.BadRequest("Invalid date_of_birth format")
		}
		update.Medical.DateOfBirth = &dob
	}
	if !update.Medical.IsEmpty() && before.MedicalHistoryID == nil && update.Medical.DateOfBirth == nil {
		return nil, nil, apperrors.BadRequest("date_of_birth is required to create a medical history")
	}
	if req.Password != nil {
		hashed, err := s.hasher.Hash(*req.Password)
		if err != nil {
			return nil, nil, apperrors.BadRequest("Password cannot be empty")
		}
		update.User.Password = &hashed
	}

	if err := s.repo.Update(ctx, id, update); err != nil {
		return nil, nil, mapError(err)
	}

	after, err := s.load(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return before, after, nil
}

func (s *service) Delete(ctx context.Context, caller *model.AuthUser, id uuid.UUID) (*model.Patient, error) {
	patient, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin() {
		return nil, apperrors.Forbidden("Only admins can delete patients")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, mapError(err)
	}
	return patient, nil
}

func (s *service) Stats(ctx context.Context, caller *model.AuthUser) (*model.PatientStats, error) {
	if err := access.StaffOnly(caller, msgStaffOnly); err != nil {
		return nil, err
	}

	stats, err := s.repo.Stats(ctx, access.AssignedTo(caller))
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return stats, nil
}

func (s *service) Search(ctx context.Context, caller *model.AuthUser, query string, limit int) (*model.PatientSearchResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperrors.BadRequest("Search query is required")
	}

	search := &model.PatientSearch{
		Query:      query,
		Limit:      clamp(limit, defaultSearchLimit, maxSearchLimit),
		AssignedTo: access.AssignedTo(caller),
	}
	switch {
	case caller.IsPatient():
		id := caller.ID
		search.PatientID = &id
	case !caller.IsAdmin() && !caller.IsPhysician():
		return nil, apperrors.Forbidden("")
	}

	found, err := s.repo.Search(ctx, search)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	results := make([]model.PatientSearchResult, 0, len(found))
	for _, r := range found {
		results = append(results, *r)
	}
	return &model.PatientSearchResponse{Results: results, Count: len(results), Query: query}, nil
}

func (s *service) Activity(ctx context.Context, caller *model.AuthUser, id uuid.UUID, limit int) (*model.PatientActivityResponse, error) {
	if err := s.access.Patient(ctx, caller, id); err != nil {
		return nil, err
	}
	if _, err := s.load(ctx, id); err != nil {
		return nil, err
	}

	entries, err := s.repo.Activity(ctx, id, clamp(limit, defaultActivityLimit, maxActivityLimit))
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	activity := make([]model.PatientActivity, 0, len(entries))
	for _, e := range entries {
		activity = append(activity, *e)
	}
	return &model.PatientActivityResponse{PatientID: id, Activity: activity, Count: len(activity)}, nil
}

// Portal is the patient's own landing page: their record and what is coming up.
func (s *service) Portal(ctx context.Context, caller *model.AuthUser, id uuid.UUID) (*model.PortalResponse, error) {
	if !caller.CanAccessUserData(id) {
		return nil, apperrors.Forbidden("")
	}

	patient, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	from := s.now()
	upcoming, err := s.appointmentRepo.List(ctx, &model.AppointmentFilter{
		PatientID: &id,
		From:      &from,
		Ascending: true,
	})
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	appointments := make([]model.AppointmentDetail, 0, len(upcoming))
	for _, a := range upcoming {
		appointments = append(appointments, *a)
	}
	return &model.PortalResponse{Patient: patient, UpcomingAppointments: appointments}, nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	patient, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	patient.Age = model.AgePtr(patient.DateOfBirth, s.now())
	return patient, nil
}

func newHistory(dob model.Date, fields *model.MedicalFields) *model.MedicalHistory {
	history := &model.MedicalHistory{
		ID:                   uuid.New(),
		DateOfBirth:          dob,
		HeightIn:             fields.HeightIn,
		WeightLbs:            fields.WeightLbs,
		Gender:               fields.Gender,
		PrimaryCarePhysician: fields.PrimaryCarePhysician,
		EmergencyContact:     fields.EmergencyContact,
		BloodType:            fields.BloodType,
		Allergies:            fields.Allergies,
		History:              fields.History,
		LastVisit:            fields.LastVisit,
		Status:               model.MedicalStatusActive,
	}
	if fields.Status != nil {
		history.Status = *fields.Status
	}
	return history
}

func mapError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound("Patient")
	}
	return apperrors.Internal(err)
}

func clamp(v, def, upper int) int {
	if v <= 0 {
		return def
	}
	if v > upper {
		return upper
	}
	return v
}
