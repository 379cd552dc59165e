package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/optorecord-api/internal/config"
	"github.com/jwalitptl/optorecord-api/internal/handler/appointment"
	"github.com/jwalitptl/optorecord-api/internal/handler/assignment"
	audithandler "github.com/jwalitptl/optorecord-api/internal/handler/audit"
	authhandler "github.com/jwalitptl/optorecord-api/internal/handler/auth"
	"github.com/jwalitptl/optorecord-api/internal/handler/dashboard"
	"github.com/jwalitptl/optorecord-api/internal/handler/health"
	"github.com/jwalitptl/optorecord-api/internal/handler/medicalhistory"
	"github.com/jwalitptl/optorecord-api/internal/handler/patient"
	"github.com/jwalitptl/optorecord-api/internal/handler/prometheus"
	"github.com/jwalitptl/optorecord-api/internal/handler/user"
	"github.com/jwalitptl/optorecord-api/internal/middleware"
	"github.com/jwalitptl/optorecord-api/internal/realtime"
	"github.com/jwalitptl/optorecord-api/internal/repository"
	"github.com/jwalitptl/optorecord-api/internal/repository/memory"
	"github.com/jwalitptl/optorecord-api/internal/repository/postgres"
	redisrepo "github.com/jwalitptl/optorecord-api/internal/repository/redis"
	"github.com/jwalitptl/optorecord-api/internal/router"
	"github.com/jwalitptl/optorecord-api/internal/service/access"
	appointmentsvc "github.com/jwalitptl/optorecord-api/internal/service/appointment"
	assignmentsvc "github.com/jwalitptl/optorecord-api/internal/service/assignment"
	auditsvc "github.com/jwalitptl/optorecord-api/internal/service/audit"
	authsvc "github.com/jwalitptl/optorecord-api/internal/service/auth"
	dashboardsvc "github.com/jwalitptl/optorecord-api/internal/service/dashboard"
	eventsvc "github.com/jwalitptl/optorecord-api/internal/service/event"
	"github.com/jwalitptl/optorecord-api/internal/service/medical"
	patientsvc "github.com/jwalitptl/optorecord-api/internal/service/patient"
	usersvc "github.com/jwalitptl/optorecord-api/internal/service/user"
	"github.com/jwalitptl/optorecord-api/pkg/auth"
	"github.com/jwalitptl/optorecord-api/pkg/event"
	"github.com/jwalitptl/optorecord-api/pkg/logger"
	"github.com/jwalitptl/optorecord-api/pkg/messaging"
	"github.com/jwalitptl/optorecord-api/pkg/messaging/redis"
	"github.com/jwalitptl/optorecord-api/pkg/security"
)

// routerConfig maps server settings onto the router's middleware chain.
func routerConfig(cfg *config.Config) router.Config {
	return router.Config{
		RateLimit:      rate.Limit(cfg.RateLimit.RequestsPerSecond),
		RateBurst:      cfg.RateLimit.Burst,
		RequestTimeout: cfg.Server.RequestTimeout,
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,
		HSTS:           cfg.IsProduction(),
		CORSConfig: middleware.CORSConfig{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowCredentials: cfg.CORS.AllowCredentials,
			MaxAge:           middleware.DefaultCORSConfig().MaxAge,
		},
	}
}

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(&logger.Config{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Pretty: cfg.Log.Pretty,
	})
	appLogger.SetGlobal()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := middleware.RegisterValidators(); err != nil {
		log.Fatal().Err(err).Msg("failed to register validators")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := postgres.NewDB(ctx, cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	checks := map[string]health.Check{
		"database": db.PingContext,
	}

	// Redis backs token revocation and the realtime feed when configured.
	var (
		tokens      repository.TokenStore
		redisClient *goredis.Client
		hub         *realtime.Hub
	)
	if cfg.Redis.Enabled() {
		redisClient, err = redis.NewClient(ctx, cfg.Redis.ToBrokerConfig())
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		defer redisClient.Close()

		tokens = redisrepo.NewTokenStore(redisClient)
		checks["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}

		broker := redis.NewRedisBroker(redisClient, log.Logger)
		hub = realtime.NewHub(cfg.CORS.AllowedOrigins)
		go hub.Run(ctx)
		go func() {
			err := messaging.Consume(ctx, broker, cfg.Outbox.Channel, hub.Publish, log.Logger)
			if err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("realtime feed stopped")
			}
		}()
	} else {
		log.Warn().Msg("Redis not configured, using in-memory token store and disabling realtime feed")
		tokens = memory.NewTokenStore(cfg.Worker.CleanupInterval)
	}

	// Initialize repositories
	base := postgres.NewBaseRepository(db)
	userRepo := postgres.NewUserRepository(base)
	patientRepo := postgres.NewPatientRepository(base)
	medicalRepo := postgres.NewMedicalHistoryRepository(base)
	appointmentRepo := postgres.NewAppointmentRepository(base)
	assignmentRepo := postgres.NewAssignmentRepository(base)
	dashboardRepo := postgres.NewDashboardRepository(base)
	auditRepo := postgres.NewAuditRepository(base)
	outboxRepo := postgres.NewOutboxRepository(base)

	// Initialize services
	jwtSvc, err := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Expiry())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize JWT service")
	}
	hasher := security.NewBcryptHasher(security.DefaultCost)
	checker := access.NewChecker(assignmentRepo)

	authService := authsvc.NewService(userRepo, tokens, jwtSvc, hasher)
	userService := usersvc.NewService(userRepo, hasher)
	patientService := patientsvc.NewService(patientRepo, userRepo, appointmentRepo, checker, hasher)
	medicalService := medical.NewService(medicalRepo, userRepo, checker)
	appointmentService := appointmentsvc.NewService(appointmentRepo, userRepo)
	assignmentService := assignmentsvc.NewService(assignmentRepo, userRepo)
	dashboardService := dashboardsvc.NewService(dashboardRepo)
	auditService := auditsvc.NewService(auditRepo)
	auditLogger := auditsvc.NewAuditLogger(auditService)
	eventService := eventsvc.NewService(outboxRepo)

	metrics := prometheus.New(cfg.Server.MetricsPrefix)

	handlers := router.Handlers{
		Auth:           authhandler.NewHandler(authService, cfg.IsProduction()),
		Users:          user.NewHandler(userService),
		Patients:       patient.NewHandler(patientService),
		MedicalHistory: medicalhistory.NewHandler(medicalService),
		Appointments:   appointment.NewHandler(appointmentService),
		Assignments:    assignment.NewHandler(assignmentService),
		Dashboard:      dashboard.NewHandler(dashboardService),
		AuditLogs:      audithandler.NewHandler(auditService),
		Health:         health.NewHandler(checks, metrics.Handler()),
	}
	if hub != nil {
		handlers.Realtime = hub.ServeWS
	}

	// Setup router
	r := router.NewRouter(
		middleware.NewAuthMiddleware(authService),
		event.NewEventTrackerMiddleware(eventService, middleware.ActorID),
		middleware.NewAuditMiddleware(auditLogger),
		metrics,
		handlers,
		routerConfig(cfg),
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Str("environment", cfg.Environment).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	// Flush pending audit writes before the database closes.
	auditLogger.Wait()
	log.Info().Msg("server exited properly")
}
