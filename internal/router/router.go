package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/optorecord-api/internal/handler"
	"github.com/jwalitptl/optorecord-api/internal/handler/appointment"
	"github.com/jwalitptl/optorecord-api/internal/handler/assignment"
	"github.com/jwalitptl/optorecord-api/internal/handler/audit"
	"github.com/jwalitptl/optorecord-api/internal/handler/auth"
	"github.com/jwalitptl/optorecord-api/internal/handler/dashboard"
	"github.com/jwalitptl/optorecord-api/internal/handler/health"
	"github.com/jwalitptl/optorecord-api/internal/handler/medicalhistory"
	"github.com/jwalitptl/optorecord-api/internal/handler/patient"
	"github.com/jwalitptl/optorecord-api/internal/handler/prometheus"
	"github.com/jwalitptl/optorecord-api/internal/handler/user"
	"github.com/jwalitptl/optorecord-api/internal/middleware"
	"github.com/jwalitptl/optorecord-api/internal/model"
	"github.com/jwalitptl/optorecord-api/pkg/event"
)

// Handlers groups every resource handler mounted on the engine.
type Handlers struct {
	Auth           *auth.Handler
	Users          *user.Handler
	Patients       *patient.Handler
	MedicalHistory *medicalhistory.Handler
	Appointments   *appointment.Handler
	Assignments    *assignment.Handler
	Dashboard      *dashboard.Handler
	AuditLogs      *audit.Handler
	Health         *health.Handler
	// Realtime serves /ws/appointments. Nil disables the route.
	Realtime gin.HandlerFunc
}

type Config struct {
	RateLimit      rate.Limit
	RateBurst      int
	RequestTimeout time.Duration
	MaxBodyBytes   int64
	HSTS           bool
	CORSConfig     middleware.CORSConfig
}

type Router struct {
	engine   *gin.Engine
	auth     *middleware.AuthMiddleware
	events   *event.EventTrackerMiddleware
	audit    *middleware.AuditMiddleware
	metrics  *prometheus.Handler
	handlers Handlers
}

func NewRouter(
	auth *middleware.AuthMiddleware,
	events *event.EventTrackerMiddleware,
	audit *middleware.AuditMiddleware,
	metrics *prometheus.Handler,
	handlers Handlers,
	config Config,
) *Router {
	engine := gin.New()
	engine.HandleMethodNotAllowed = true

	r := &Router{
		engine:   engine,
		auth:     auth,
		events:   events,
		audit:    audit,
		metrics:  metrics,
		handlers: handlers,
	}

	timeout := middleware.DefaultTimeoutConfig()
	if config.RequestTimeout > 0 {
		timeout.Duration = config.RequestTimeout
	}
	sizeLimit := middleware.DefaultSizeLimitConfig()
	if config.MaxBodyBytes > 0 {
		sizeLimit.MaxBodySize = config.MaxBodyBytes
	}
	security := middleware.DefaultSecurityConfig()
	security.HSTS = config.HSTS

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		Rate:  config.RateLimit,
		Burst: config.RateBurst,
	})

	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.ErrorHandler(),
		metrics.Middleware(),
		middleware.Timeout(timeout),
		middleware.CORS(config.CORSConfig),
		middleware.SecurityHeaders(security),
		middleware.SizeLimit(sizeLimit),
		rateLimiter.RateLimit(),
	)

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("Route not found"))
	})
	engine.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, handler.NewErrorResponse("Method not allowed"))
	})

	return r
}

// Setup mounts health checks at the root and the API under /api/v1.
func (r *Router) Setup() {
	r.handlers.Health.RegisterRoutes(r.engine)

	api := r.engine.Group("/api/v1")
	api.Use(
		middleware.Version(middleware.DefaultVersionConfig()),
		middleware.Cache(middleware.DefaultCacheConfig()),
	)

	r.handlers.Auth.RegisterRoutes(api, r.auth.Authenticate())

	protected := api.Group("")
	protected.Use(r.auth.Authenticate())
	r.setupProtectedRoutes(protected)
}

func (r *Router) setupProtectedRoutes(rg *gin.RouterGroup) {
	r.handlers.Users.RegisterRoutes(rg.Group("", r.audit.AuditLog(model.AuditEntityUser)))
	r.handlers.Patients.RegisterRoutes(rg.Group("", r.audit.AuditLog(model.AuditEntityPatient)), r.events)
	r.handlers.MedicalHistory.RegisterRoutes(rg.Group("", r.audit.AuditLog(model.AuditEntityMedicalHistory)), r.events)
	r.handlers.Appointments.RegisterRoutes(rg.Group("", r.audit.AuditLog(model.AuditEntityAppointment)), r.events)
	r.handlers.Assignments.RegisterRoutes(rg.Group("", r.audit.AuditLog(model.AuditEntityAssignment)), r.events)
	r.handlers.Dashboard.RegisterRoutes(rg)
	r.handlers.AuditLogs.RegisterRoutes(rg)

	if r.handlers.Realtime != nil {
		rg.GET("/ws/appointments", r.handlers.Realtime)
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
