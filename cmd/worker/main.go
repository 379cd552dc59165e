package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jwalitptl/optorecord-api/internal/config"
	"github.com/jwalitptl/optorecord-api/internal/email"
	"github.com/jwalitptl/optorecord-api/internal/handler/health"
	"github.com/jwalitptl/optorecord-api/internal/repository/postgres"
	auditsvc "github.com/jwalitptl/optorecord-api/internal/service/audit"
	"github.com/jwalitptl/optorecord-api/internal/service/notification"
	"github.com/jwalitptl/optorecord-api/internal/worker"
	"github.com/jwalitptl/optorecord-api/pkg/logger"
	"github.com/jwalitptl/optorecord-api/pkg/messaging/redis"
	"github.com/jwalitptl/optorecord-api/pkg/metrics"
	outbox "github.com/jwalitptl/optorecord-api/pkg/worker"
)

func setupHealthServer(port int, checks map[string]health.Check, reg *prometheus.Registry) *http.Server {
	engine := gin.New()
	engine.Use(gin.Recovery())
	health.NewHandler(checks, promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})).
		RegisterRoutes(engine)

	return &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	// Load config
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.NewLogger(nil).Fatal(err, "Failed to load config")
	}

	// Initialize logger
	log := logger.NewLogger(&logger.Config{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Pretty: cfg.Log.Pretty,
	})
	log.SetGlobal()
	gin.SetMode(gin.ReleaseMode)

	if !cfg.Redis.Enabled() {
		log.Fatal(errors.New("redis.url is empty"), "The worker needs Redis to publish events")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := postgres.NewDB(ctx, cfg.Database)
	if err != nil {
		log.Fatal(err, "Failed to connect to database")
	}
	defer db.Close()

	// Initialize Redis broker
	redisClient, err := redis.NewClient(ctx, cfg.Redis.ToBrokerConfig())
	if err != nil {
		log.Fatal(err, "Failed to connect to Redis")
	}
	broker := redis.NewRedisBroker(redisClient, log.ZL)
	defer broker.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics("clinic", "worker", reg)

	// Initialize repositories
	base := postgres.NewBaseRepository(db)
	outboxRepo := postgres.NewOutboxRepository(base)
	auditService := auditsvc.NewService(postgres.NewAuditRepository(base))

	processor, err := outbox.NewOutboxProcessor(outboxRepo, broker, cfg.Outbox.ToWorkerConfig(), log, m)
	if err != nil {
		log.Fatal(err, "Failed to create outbox processor")
	}

	var sender email.Service
	if cfg.SMTP.Enabled() {
		sender = email.NewSMTPService(email.Config{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
	} else {
		log.Warn("SMTP not configured, notifications will only be logged")
	}
	notifier := notification.NewNotifier(sender, log, m)

	cleanup := worker.NewCleanupWorker([]worker.Target{
		{Table: "audit_logs", Retention: worker.Days(cfg.Audit.RetentionDays), Purge: auditService.Cleanup},
		{Table: "outbox_events", Retention: worker.Days(cfg.Outbox.RetentionDays), Purge: outboxRepo.DeleteProcessedBefore},
	}, cfg.Worker.CleanupInterval, log, m)

	// Setup health check endpoints
	srv := setupHealthServer(cfg.Worker.HealthPort, map[string]health.Check{
		"database": db.PingContext,
		"redis": func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		},
	}, reg)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(err, "Health check server failed")
			stop()
		}
	}()

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		processor.Start(ctx)
	}()
	go func() {
		defer wg.Done()
		if err := notifier.Run(ctx, broker, cfg.Outbox.Channel); err != nil && !errors.Is(err, context.Canceled) {
			log.Error(err, "Notifier stopped")
		}
	}()
	go func() {
		defer wg.Done()
		cleanup.Start(ctx)
	}()

	log.Info("Worker started", "health_port", cfg.Worker.HealthPort)
	<-ctx.Done()
	log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(err, "Health check server forced to shutdown")
	}
	wg.Wait()
}
