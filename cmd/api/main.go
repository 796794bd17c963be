package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/tekhe/dashboard-api/internal/config"
	"github.com/tekhe/dashboard-api/internal/email"
	agentHandler "github.com/tekhe/dashboard-api/internal/handler/agent"
	analyticsHandler "github.com/tekhe/dashboard-api/internal/handler/analytics"
	auditHandler "github.com/tekhe/dashboard-api/internal/handler/audit"
	authHandler "github.com/tekhe/dashboard-api/internal/handler/auth"
	exportHandler "github.com/tekhe/dashboard-api/internal/handler/export"
	facilityHandler "github.com/tekhe/dashboard-api/internal/handler/facility"
	healthHandler "github.com/tekhe/dashboard-api/internal/handler/health"
	patientHandler "github.com/tekhe/dashboard-api/internal/handler/patient"
	permissionHandler "github.com/tekhe/dashboard-api/internal/handler/permission"
	referralHandler "github.com/tekhe/dashboard-api/internal/handler/referral"
	riskHandler "github.com/tekhe/dashboard-api/internal/handler/risk"
	smsHandler "github.com/tekhe/dashboard-api/internal/handler/sms"
	visitHandler "github.com/tekhe/dashboard-api/internal/handler/visit"
	"github.com/tekhe/dashboard-api/internal/middleware"
	"github.com/tekhe/dashboard-api/internal/notify"
	"github.com/tekhe/dashboard-api/internal/rbac"
	"github.com/tekhe/dashboard-api/internal/repository/postgres"
	redisrepo "github.com/tekhe/dashboard-api/internal/repository/redis"
	"github.com/tekhe/dashboard-api/internal/router"
	agentService "github.com/tekhe/dashboard-api/internal/service/agent"
	analyticsService "github.com/tekhe/dashboard-api/internal/service/analytics"
	auditService "github.com/tekhe/dashboard-api/internal/service/audit"
	authService "github.com/tekhe/dashboard-api/internal/service/auth"
	directoryService "github.com/tekhe/dashboard-api/internal/service/directory"
	exportService "github.com/tekhe/dashboard-api/internal/service/export"
	patientService "github.com/tekhe/dashboard-api/internal/service/patient"
	referralService "github.com/tekhe/dashboard-api/internal/service/referral"
	riskService "github.com/tekhe/dashboard-api/internal/service/risk"
	smsService "github.com/tekhe/dashboard-api/internal/service/sms"
	visitService "github.com/tekhe/dashboard-api/internal/service/visit"
	"github.com/tekhe/dashboard-api/internal/worker"
	"github.com/tekhe/dashboard-api/pkg/auth"
	"github.com/tekhe/dashboard-api/pkg/logger"
	redisbroker "github.com/tekhe/dashboard-api/pkg/messaging/redis"
	"github.com/tekhe/dashboard-api/pkg/metrics"
	"github.com/tekhe/dashboard-api/pkg/security"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(&logger.Config{
		Level:      logger.ParseLevel(cfg.Log.Level),
		TimeFormat: time.RFC3339,
		Pretty:     cfg.Log.Pretty,
	})

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	redisClient, err := redisrepo.NewClient(redisrepo.Config{
		URL:          cfg.Redis.URL,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()

	m := metrics.New("tekhe")

	userRepo := postgres.NewUserRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	visitRepo := postgres.NewVisitRepository(db)
	riskRepo := postgres.NewRiskRepository(db)
	referralRepo := postgres.NewReferralRepository(db)
	facilityRepo := postgres.NewFacilityRepository(db)
	agentRepo := postgres.NewAgentRepository(db)
	smsRepo := postgres.NewSMSRepository(db)
	auditRepo := postgres.NewAuditRepository(db)
	sessionRepo := redisrepo.NewSessionRepository(redisClient)

	engine := rbac.NewEngine(log)
	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Issuer)
	hasher := security.NewBcryptHasher(0)

	auditor := auditService.NewService(auditRepo, log)
	directory := directoryService.NewService(facilityRepo)
	authSvc := authService.NewService(userRepo, sessionRepo, jwtSvc, hasher, auditor, m, log, cfg.Session.Lifetime())

	mailer := email.NewSMTPService(cfg.SMTP, log)
	broker := redisbroker.NewBroker(redisClient, log)
	notifier := notify.Multi(log,
		notify.NewEmailNotifier(mailer),
		notify.NewBrokerNotifier(broker, log),
	)

	patientSvc := patientService.NewService(patientRepo, engine, directory, auditor)
	visitSvc := visitService.NewService(visitRepo, patientRepo, engine, auditor)
	riskSvc := riskService.NewService(riskRepo, patientRepo, visitRepo, engine, log)
	referralSvc := referralService.NewService(referralRepo, patientRepo, facilityRepo, engine, auditor, notifier, log)
	analyticsSvc := analyticsService.NewService(patientRepo, visitRepo, riskRepo, referralRepo, engine, m, log)
	exportSvc := exportService.NewService(patientRepo, visitRepo, riskRepo, referralRepo, engine, auditor)
	gateway := &smsService.LogGateway{Logger: log}
	smsSvc := smsService.NewService(smsRepo, gateway, log)
	agentSvc := agentService.NewService(agentRepo, smsSvc, mailer, auditor, log)

	middleware.RegisterCustomValidators()
	authMiddleware := middleware.NewAuthMiddleware(jwtSvc, authSvc, m)

	r := router.NewRouter(authMiddleware, router.Handlers{
		Auth:      authHandler.NewHandler(authSvc),
		Health:    healthHandler.NewHandler(db, redisClient),
		Patient:   patientHandler.NewHandler(patientSvc),
		Visit:     visitHandler.NewHandler(visitSvc),
		Risk:      riskHandler.NewHandler(riskSvc),
		Referral:  referralHandler.NewHandler(referralSvc),
		Analytics: analyticsHandler.NewHandler(analyticsSvc),
		Export:    exportHandler.NewHandler(exportSvc),
		Agent:     agentHandler.NewHandler(agentSvc),
		SMS:       smsHandler.NewHandler(smsSvc),
		Audit:     auditHandler.NewHandler(auditor),
		Perm:      permissionHandler.NewHandler(),
		Facility:  facilityHandler.NewHandler(directory),
	}, log, router.Config{
		RateLimit:  cfg.Server.RateLimit,
		RateBurst:  cfg.Server.RateBurst,
		CORSConfig: middleware.DefaultCORSConfig(),
	})
	r.Setup()

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	sweeper := worker.NewSessionSweeper(sessionRepo, cfg.Session.Lifetime(), time.Minute, m, log)
	go sweeper.Start(workerCtx)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")
	stopWorkers()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
