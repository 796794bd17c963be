package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tekhe/dashboard-api/internal/config"
	"github.com/tekhe/dashboard-api/internal/repository/postgres"
	redisrepo "github.com/tekhe/dashboard-api/internal/repository/redis"
	"github.com/tekhe/dashboard-api/internal/worker"
	"github.com/tekhe/dashboard-api/pkg/logger"
	"github.com/tekhe/dashboard-api/pkg/metrics"
)

// workerConfig is read from the environment; the maintenance worker runs
// in places where shipping a config file is inconvenient.
type workerConfig struct {
	DatabaseHost     string `envconfig:"DB_HOST" default:"localhost"`
	DatabasePort     int    `envconfig:"DB_PORT" default:"5432"`
	DatabaseUser     string `envconfig:"DB_USER" default:"tekhe"`
	DatabasePassword string `envconfig:"DB_PASSWORD" required:"true"`
	DatabaseName     string `envconfig:"DB_NAME" default:"tekhe"`
	DatabaseSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`

	RedisURL string `envconfig:"REDIS_URL" default:"redis://localhost:6379/0"`

	SessionLifetimeHours int `envconfig:"SESSION_LIFETIME_HOURS" default:"24"`
	SweepIntervalSeconds int `envconfig:"SWEEP_INTERVAL_SECONDS" default:"60"`
	AuditRetentionDays   int `envconfig:"AUDIT_RETENTION_DAYS" default:"90"`

	MetricsPort int    `envconfig:"METRICS_PORT" default:"9091"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
}

func main() {
	var cfg workerConfig
	if err := envconfig.Process("tekhe", &cfg); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(&logger.Config{
		Level:      logger.ParseLevel(cfg.LogLevel),
		TimeFormat: time.RFC3339,
	})

	db, err := postgres.NewDB(config.DatabaseConfig{
		Host:     cfg.DatabaseHost,
		Port:     cfg.DatabasePort,
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		Name:     cfg.DatabaseName,
		SSLMode:  cfg.DatabaseSSLMode,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	redisClient, err := redisrepo.NewClient(redisrepo.Config{URL: cfg.RedisURL})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()

	m := metrics.New("tekhe_worker")

	sessionRepo := redisrepo.NewSessionRepository(redisClient)
	auditRepo := postgres.NewAuditRepository(db)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sweeper := worker.NewSessionSweeper(
		sessionRepo,
		time.Duration(cfg.SessionLifetimeHours)*time.Hour,
		time.Duration(cfg.SweepIntervalSeconds)*time.Second,
		m,
		log,
	)
	go sweeper.Start(ctx)

	cleanup := worker.NewAuditCleanupWorker(auditRepo, cfg.AuditRetentionDays, time.Hour, log)
	go cleanup.Start(ctx)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.MetricsPort),
		Handler: mux,
	}
	go func() {
		log.Info().Int("port", cfg.MetricsPort).Msg("worker metrics listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start metrics server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down worker...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("metrics server forced to shutdown")
	}
}
