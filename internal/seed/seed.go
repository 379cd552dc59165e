// Package seed loads a small development data set: one admin, two physicians
// and three patients with medical histories, assignments and appointments.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/optorecord-api/internal/model"
	"github.com/jwalitptl/optorecord-api/internal/repository"
	"github.com/jwalitptl/optorecord-api/pkg/security"
)

// DefaultPassword is the plain-text password of every seeded account.
const DefaultPassword = "password123"

type Seeder struct {
	users        repository.UserRepository
	patients     repository.PatientRepository
	assignments  repository.AssignmentRepository
	appointments repository.AppointmentRepository
	hasher       security.PasswordHasher
	now          func() time.Time
}

func NewSeeder(
	users repository.UserRepository,
	patients repository.PatientRepository,
	assignments repository.AssignmentRepository,
	appointments repository.AppointmentRepository,
	hasher security.PasswordHasher,
) *Seeder {
	return &Seeder{
		users:        users,
		patients:     patients,
		assignments:  assignments,
		appointments: appointments,
		hasher:       hasher,
		now:          time.Now,
	}
}

// Result holds the ids of everything the seeder created.
type Result struct {
	Admin        uuid.UUID
	Physicians   []uuid.UUID
	Patients     []uuid.UUID
	Appointments []uuid.UUID
}

type patientSeed struct {
	user      model.User
	dob       model.Date
	gender    string
	bloodType string
	allergies string
	physician int
}

// Run inserts the data set. It expects an empty database.
func (s *Seeder) Run(ctx context.Context) (*Result, error) {
	hash, err := s.hasher.Hash(DefaultPassword)
	if err != nil {
		return nil, fmt.Errorf("hash seed password: %w", err)
	}

	result := &Result{}

	admin := &model.User{FName: "Alice", LName: "Admin", Email: "admin@optorecord.dev", Username: "admin", Type: model.UserTypeAdmin}
	if err := s.createUser(ctx, admin, hash); err != nil {
		return nil, err
	}
	result.Admin = admin.ID

	for _, p := range []*model.User{
		{FName: "Gregory", LName: "House", Email: "house@optorecord.dev", Username: "ghouse", Type: model.UserTypePhysician},
		{FName: "Meredith", LName: "Grey", Email: "grey@optorecord.dev", Username: "mgrey", Type: model.UserTypePhysician},
	} {
		if err := s.createUser(ctx, p, hash); err != nil {
			return nil, err
		}
		result.Physicians = append(result.Physicians, p.ID)
	}

	for _, p := range patientSeeds() {
		p := p
		p.user.ID = uuid.New()
		p.user.Password = hash
		p.user.Type = model.UserTypePatient
		history := &model.MedicalHistory{
			DateOfBirth: p.dob,
			Gender:      &p.gender,
			BloodType:   &p.bloodType,
			Allergies:   &p.allergies,
			Status:      model.MedicalStatusActive,
		}
		physician := result.Physicians[p.physician]
		if err := s.patients.Create(ctx, &p.user, history, &physician); err != nil {
			return nil, fmt.Errorf("create patient %s: %w", p.user.Username, err)
		}
		result.Patients = append(result.Patients, p.user.ID)
	}

	// The second physician also follows the first patient.
	if _, err := s.assignments.Upsert(ctx, result.Physicians[1], result.Patients[0], strPtr("Second opinion")); err != nil {
		return nil, fmt.Errorf("assign second physician: %w", err)
	}

	today := s.now().UTC().Truncate(24 * time.Hour)
	for _, a := range []model.Appointment{
		{PatientID: result.Patients[0], PhysicianID: result.Physicians[0], AppointmentDate: today.Add(-14*24*time.Hour + 9*time.Hour), Reason: strPtr("Annual eye exam"), Status: model.AppointmentStatusCompleted},
		{PatientID: result.Patients[0], PhysicianID: result.Physicians[0], AppointmentDate: today.Add(3*24*time.Hour + 10*time.Hour), Reason: strPtr("Follow-up"), Status: model.AppointmentStatusScheduled},
		{PatientID: result.Patients[1], PhysicianID: result.Physicians[0], AppointmentDate: today.Add(7*24*time.Hour + 14*time.Hour), Reason: strPtr("Contact lens fitting"), Status: model.AppointmentStatusConfirmed},
		{PatientID: result.Patients[2], PhysicianID: result.Physicians[1], AppointmentDate: today.Add(10*24*time.Hour + 11*time.Hour), Reason: strPtr("Blurred vision"), Status: model.AppointmentStatusRequested},
	} {
		a := a
		a.ID = uuid.New()
		if err := s.appointments.Create(ctx, &a); err != nil {
			return nil, fmt.Errorf("create appointment: %w", err)
		}
		result.Appointments = append(result.Appointments, a.ID)
	}

	return result, nil
}

func (s *Seeder) createUser(ctx context.Context, user *model.User, hash string) error {
	user.ID = uuid.New()
	user.Password = hash
	if err := s.users.Create(ctx, user); err != nil {
		return fmt.Errorf("create user %s: %w", user.Username, err)
	}
	return nil
}

func patientSeeds() []patientSeed {
	return []patientSeed{
		{
			user:      model.User{FName: "Ada", LName: "Lovelace", Email: "ada@optorecord.dev", Username: "ada", Phone: strPtr("555-0101"), InsuranceProvider: strPtr("Acme Health"), PolicyNumber: strPtr("AC-1001")},
			dob:       model.NewDate(1985, time.December, 10),
			gender:    "Female",
			bloodType: "O+",
			allergies: "Penicillin",
		},
		{
			user:      model.User{FName: "Alan", LName: "Turing", Email: "alan@optorecord.dev", Username: "alan", Address: strPtr("2 Hampton Rd")},
			dob:       model.NewDate(1972, time.June, 23),
			gender:    "Male",
			bloodType: "A-",
			allergies: "None",
		},
		{
			user:      model.User{FName: "Grace", LName: "Hopper", Email: "grace@optorecord.dev", Username: "grace"},
			dob:       model.NewDate(1990, time.December, 9),
			gender:    "Female",
			bloodType: "B+",
			allergies: "Latex",
			physician: 1,
		},
	}
}

func strPtr(s string) *string { return &s }
