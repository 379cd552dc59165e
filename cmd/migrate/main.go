package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jwalitptl/optorecord-api/internal/config"
	"github.com/jwalitptl/optorecord-api/internal/repository/postgres"
	"github.com/jwalitptl/optorecord-api/internal/seed"
	"github.com/jwalitptl/optorecord-api/migrations"
	"github.com/jwalitptl/optorecord-api/pkg/security"
)

const commandTimeout = 2 * time.Minute

var configPath string

func newLogger(env string) *zap.Logger {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig = encoderCfg
	cfg.Sampling = nil
	cfg.InitialFields = map[string]interface{}{
		"service": "migrate",
		"env":     env,
	}
	return zap.Must(cfg.Build())
}

func main() {
	rootCmd := &cobra.Command{
		Use:           "migrate",
		Short:         "Manage the OptoRecord database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")

	rootCmd.AddCommand(
		dbCmd("up", "Apply the schema", up),
		dbCmd("seed", "Insert development data", seedData),
		dbCmd("reset", "Drop every table, apply the schema and seed (development only)", reset),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type action func(ctx context.Context, cfg *config.Config, db *sqlx.DB, logger *zap.Logger) error

// dbCmd loads config, opens the database and runs fn with a zap logger.
func dbCmd(use, short string, fn action) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}

			logger := newLogger(cfg.Environment)
			defer logger.Sync()

			ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
			defer cancel()

			db, err := postgres.NewDB(ctx, cfg.Database)
			if err != nil {
				logger.Error("database unavailable", zap.Error(err))
				return err
			}
			defer db.Close()

			if err := fn(ctx, cfg, db, logger); err != nil {
				logger.Error("migration failed", zap.String("command", use), zap.Error(err))
				return err
			}
			logger.Info("migration finished", zap.String("command", use))
			return nil
		},
	}
}

func up(ctx context.Context, _ *config.Config, db *sqlx.DB, logger *zap.Logger) error {
	if err := migrations.Up(ctx, db); err != nil {
		return err
	}
	logger.Info("schema applied", zap.Strings("tables", migrations.Tables))
	return nil
}

func seedData(ctx context.Context, _ *config.Config, db *sqlx.DB, logger *zap.Logger) error {
	base := postgres.NewBaseRepository(db)
	seeder := seed.NewSeeder(
		postgres.NewUserRepository(base),
		postgres.NewPatientRepository(base),
		postgres.NewAssignmentRepository(base),
		postgres.NewAppointmentRepository(base),
		security.NewBcryptHasher(security.DefaultCost),
	)

	result, err := seeder.Run(ctx)
	if err != nil {
		return err
	}
	logger.Info("seed data inserted",
		zap.Stringer("admin", result.Admin),
		zap.Int("physicians", len(result.Physicians)),
		zap.Int("patients", len(result.Patients)),
		zap.Int("appointments", len(result.Appointments)),
	)
	return nil
}

func reset(ctx context.Context, cfg *config.Config, db *sqlx.DB, logger *zap.Logger) error {
	if !cfg.IsDevelopment() {
		return fmt.Errorf("reset is only allowed in %s, current environment is %s",
			config.EnvDevelopment, cfg.Environment)
	}

	logger.Warn("dropping all tables", zap.String("database", cfg.Database.Name))
	if err := migrations.Down(ctx, db); err != nil {
		return err
	}
	if err := up(ctx, cfg, db, logger); err != nil {
		return err
	}
	return seedData(ctx, cfg, db, logger)
}
