package router

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/tekhe/dashboard-api/internal/handler"
	"github.com/tekhe/dashboard-api/internal/middleware"
	"github.com/tekhe/dashboard-api/internal/model"
)

// Handler registers its routes on a group.
type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

// AuthHandler additionally owns routes that require a session.
type AuthHandler interface {
	Handler
	RegisterProtectedRoutes(*gin.RouterGroup)
}

type Router struct {
	engine     *gin.Engine
	auth       *middleware.AuthMiddleware
	authH      AuthHandler
	healthH    Handler
	patientH   Handler
	visitH     Handler
	riskH      Handler
	referralH  Handler
	analyticsH Handler
	exportH    Handler
	agentH     Handler
	smsH       Handler
	auditH     Handler
	permH      Handler
	facilityH  Handler
	h          *handler.Handler
	metrics    *routerMetrics
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
}

type Config struct {
	RateLimit  float64
	RateBurst  int
	CORSConfig middleware.CORSConfig
}

type Handlers struct {
	Auth      AuthHandler
	Health    Handler
	Patient   Handler
	Visit     Handler
	Risk      Handler
	Referral  Handler
	Analytics Handler
	Export    Handler
	Agent     Handler
	SMS       Handler
	Audit     Handler
	Perm      Handler
	Facility  Handler
}

func NewRouter(auth *middleware.AuthMiddleware, handlers Handlers, logger zerolog.Logger, cfg Config) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	r := &Router{
		engine:     engine,
		auth:       auth,
		authH:      handlers.Auth,
		healthH:    handlers.Health,
		patientH:   handlers.Patient,
		visitH:     handlers.Visit,
		riskH:      handlers.Risk,
		referralH:  handlers.Referral,
		analyticsH: handlers.Analytics,
		exportH:    handlers.Export,
		agentH:     handlers.Agent,
		smsH:       handlers.SMS,
		auditH:     handlers.Audit,
		permH:      handlers.Perm,
		facilityH:  handlers.Facility,
		h:          handler.NewHandler(),
		metrics:    initRouterMetrics(),
	}

	engine.Use(
		middleware.RequestID(),
		middleware.Recovery(logger),
		middleware.Logger(logger),
		r.metricsMiddleware(),
	)
	engine.Use(middleware.CORS(cfg.CORSConfig))

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit, cfg.RateBurst)
	engine.Use(rateLimiter.RateLimit())

	return r
}

func (r *Router) Setup() {
	api := r.engine.Group("/api/v1")

	// Anonymous visitors reach exactly these: liveness, readiness,
	// metrics and the login endpoint. Everything else requires a session.
	r.healthH.RegisterRoutes(api)
	api.GET("/metrics", r.h.MetricsHandler)
	r.authH.RegisterRoutes(api)

	protected := api.Group("")
	protected.Use(r.auth.Authenticate())

	r.authH.RegisterProtectedRoutes(protected)
	r.patientH.RegisterRoutes(protected)
	r.visitH.RegisterRoutes(protected)
	r.riskH.RegisterRoutes(protected)
	r.referralH.RegisterRoutes(protected)
	r.analyticsH.RegisterRoutes(protected)
	r.permH.RegisterRoutes(protected)
	r.facilityH.RegisterRoutes(protected)

	exports := protected.Group("")
	exports.Use(r.auth.RequirePermission(model.ResourceExport, model.ActionExport))
	r.exportH.RegisterRoutes(exports)

	management := protected.Group("")
	management.Use(r.auth.RequirePermission(model.ResourceAgent, model.ActionRead))
	r.agentH.RegisterRoutes(management)
	r.smsH.RegisterRoutes(management)

	oversight := protected.Group("")
	oversight.Use(r.auth.RequirePermission(model.ResourcePersonnel, model.ActionRead))
	r.auditH.RegisterRoutes(oversight)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func initRouterMetrics() *routerMetrics {
	m := &routerMetrics{
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "tekhe_http_request_duration_seconds",
				Help: "Duration of HTTP requests in seconds",
			},
			[]string{"method", "path", "status"},
		),
		requestTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tekhe_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
	}
	prometheus.MustRegister(m.requestDuration, m.requestTotal)
	return m
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()

		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		duration := time.Since(start).Seconds()

		r.metrics.requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(duration)
		r.metrics.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()
	}
}
