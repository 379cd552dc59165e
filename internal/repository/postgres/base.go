package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/jwalitptl/optorecord-api/internal/repository"
)

const uniqueViolation = "23505"

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	db *sqlx.DB
}

// NewBaseRepository creates a new base repository
func NewBaseRepository(db *sqlx.DB) BaseRepository {
	return BaseRepository{db: db}
}

// GetDB returns the database instance
func (r *BaseRepository) GetDB() *sqlx.DB {
	return r.db
}

// WithTx executes a function within a transaction
func (r *BaseRepository) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

// wrapError maps driver errors onto repository sentinels.
func wrapError(err error, op string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", repository.ErrDuplicate, pqErr.Constraint)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

func checkAffected(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// setBuilder assembles the SET clause of a partial update from a fixed list of
// columns. Nil values are skipped.
type setBuilder struct {
	allowed map[string]bool
	sets    []string
	args    []interface{}
}

func newSetBuilder(columns ...string) *setBuilder {
	allowed := make(map[string]bool, len(columns))
	for _, c := range columns {
		allowed[c] = true
	}
	return &setBuilder{allowed: allowed}
}

func (b *setBuilder) add(column string, value interface{}) {
	if !b.allowed[column] || isNil(value) {
		return
	}
	b.args = append(b.args, value)
	b.sets = append(b.sets, fmt.Sprintf("%s = $%d", column, len(b.args)))
}

func (b *setBuilder) empty() bool {
	return len(b.sets) == 0
}

// build returns "UPDATE table SET ..., updated_at = NOW() WHERE <where> = $n" and its args.
func (b *setBuilder) build(table, where string, key interface{}) (string, []interface{}) {
	args := append(append([]interface{}{}, b.args...), key)
	query := fmt.Sprintf("UPDATE %s SET %s, updated_at = NOW() WHERE %s = $%d",
		table, strings.Join(b.sets, ", "), where, len(args))
	return query, args
}

func isNil(v interface{}) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Ptr && rv.IsNil()
}

// likePattern wraps s for a case-insensitive substring match.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.TrimSpace(s)) + "%"
}

// assignedFilter restricts rows whose patient column is actively assigned to the physician at $n.
func assignedFilter(patientColumn string, n int) string {
	return fmt.Sprintf(` AND EXISTS (
		SELECT 1 FROM physician_patients pp
		WHERE pp.patient_id = %s AND pp.physician_id = $%d AND pp.is_active)`, patientColumn, n)
}
