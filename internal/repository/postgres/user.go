package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/optorecord-api/internal/model"
	"github.com/jwalitptl/optorecord-api/internal/repository"
)

var userColumnList = []string{
	"id", "fname", "lname", "email", "phone", "username", "password", "type",
	"address", "insurance_provider", "policy_number", "created_at", "updated_at",
}

var userColumns = strings.Join(userColumnList, ", ")

// userColumnsAs prefixes every user column with alias.
func userColumnsAs(alias string) string {
	cols := make([]string, len(userColumnList))
	for i, c := range userColumnList {
		cols[i] = alias + "." + c
	}
	return strings.Join(cols, ", ")
}

type userRepository struct {
	BaseRepository
}

func NewUserRepository(base BaseRepository) repository.UserRepository {
	return &userRepository{base}
}

func insertUser(ctx context.Context, q sqlx.QueryerContext, user *model.User) error {
	query := `
		INSERT INTO users (
			id, fname, lname, email, phone, username, password, type,
			address, insurance_provider, policy_number
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}

	err := q.QueryRowxContext(ctx, query,
		user.ID,
		user.FName,
		user.LName,
		user.Email,
		user.Phone,
		user.Username,
		user.Password,
		user.Type,
		user.Address,
		user.InsuranceProvider,
		user.PolicyNumber,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return wrapError(err, "create user")
	}
	return nil
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return insertUser(ctx, r.db, user)
}

func (r *userRepository) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	var user model.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, wrapError(err, "get user")
	}
	return &user, nil
}

func (r *userRepository) GetByUsernameOrEmail(ctx context.Context, identifier string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1 OR email = $1 LIMIT 1`

	var user model.User
	if err := r.db.GetContext(ctx, &user, query, identifier); err != nil {
		return nil, wrapError(err, "get user by username or email")
	}
	return &user, nil
}

func (r *userRepository) ExistsByEmailOrUsername(ctx context.Context, email, username string, excludeID *uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM users
			WHERE (email = $1 OR username = $2)
			AND ($3::uuid IS NULL OR id <> $3)
		)
	`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, email, username, excludeID); err != nil {
		return false, wrapError(err, "check user uniqueness")
	}
	return exists, nil
}

func (r *userRepository) List(ctx context.Context) ([]*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY fname, lname`

	users := []*model.User{}
	if err := r.db.SelectContext(ctx, &users, query); err != nil {
		return nil, wrapError(err, "list users")
	}
	return users, nil
}

func (r *userRepository) ListAssignedPatients(ctx context.Context, physicianID uuid.UUID) ([]*model.User, error) {
	query := `
		SELECT ` + userColumnsAs("u") + `
		FROM users u
		JOIN physician_patients pp ON pp.patient_id = u.id
		WHERE pp.physician_id = $1 AND pp.is_active AND u.type = $2
		ORDER BY u.fname, u.lname
	`
	users := []*model.User{}
	if err := r.db.SelectContext(ctx, &users, query, physicianID, model.UserTypePatient); err != nil {
		return nil, wrapError(err, "list assigned patients")
	}
	return users, nil
}

func (r *userRepository) ListPhysicians(ctx context.Context) ([]*model.PhysicianSummary, error) {
	query := `
		SELECT id, fname, lname, email
		FROM users
		WHERE type = $1
		ORDER BY lname, fname
	`
	physicians := []*model.PhysicianSummary{}
	if err := r.db.SelectContext(ctx, &physicians, query, model.UserTypePhysician); err != nil {
		return nil, wrapError(err, "list physicians")
	}
	return physicians, nil
}

func (r *userRepository) Update(ctx context.Context, id uuid.UUID, update *model.UpdateUserRequest) (*model.User, error) {
	b := newSetBuilder("fname", "lname", "email", "phone", "username", "password",
		"address", "insurance_provider", "policy_number", "type")
	addUserFields(b, update)
	b.add("email", update.Email)
	b.add("username", update.Username)
	b.add("type", update.Type)
	if b.empty() {
		return nil, fmt.Errorf("failed to update user: no fields")
	}

	query, args := b.build("users", "id", id)
	query += " RETURNING " + userColumns

	var user model.User
	if err := r.db.GetContext(ctx, &user, query, args...); err != nil {
		return nil, wrapError(err, "update user")
	}
	return &user, nil
}

// addUserFields adds the profile columns a patient update may also change.
func addUserFields(b *setBuilder, update *model.UpdateUserRequest) {
	b.add("fname", update.FName)
	b.add("lname", update.LName)
	b.add("phone", update.Phone)
	b.add("password", update.Password)
	b.add("address", update.Address)
	b.add("insurance_provider", update.InsuranceProvider)
	b.add("policy_number", update.PolicyNumber)
}

func (r *userRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return wrapError(err, "delete user")
	}
	return checkAffected(result)
}
