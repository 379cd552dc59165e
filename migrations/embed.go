// Package migrations holds the database schema applied by cmd/migrate.
package migrations

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jmoiron/sqlx"
)

//go:embed schema.sql
var Schema string

// Tables lists every table in dependency order, parents first.
var Tables = []string{
	"users",
	"medical_history",
	"appointments",
	"physician_patients",
	"outbox_events",
	"audit_logs",
}

// Up applies the schema. Every statement is idempotent.
func Up(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// Down drops every table created by Up.
func Down(ctx context.Context, db *sqlx.DB) error {
	for i := len(Tables) - 1; i >= 0; i-- {
		if _, err := db.ExecContext(ctx, "DROP TABLE IF EXISTS "+Tables[i]+" CASCADE"); err != nil {
			return fmt.Errorf("failed to drop %s: %w", Tables[i], err)
		}
	}
	return nil
}
