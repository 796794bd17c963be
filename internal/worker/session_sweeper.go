package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tekhe/dashboard-api/internal/repository"
	"github.com/tekhe/dashboard-api/pkg/metrics"
)

// SessionSweeper periodically discards sessions older than the configured
// lifetime. The store's TTL already bounds them; the sweeper keeps the
// metric honest and covers stores restored from a snapshot whose TTLs were
// lost.
type SessionSweeper struct {
	repo     repository.SessionRepository
	lifetime time.Duration
	interval time.Duration
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

func NewSessionSweeper(repo repository.SessionRepository, lifetime, interval time.Duration, m *metrics.Metrics, logger zerolog.Logger) *SessionSweeper {
	return &SessionSweeper{
		repo:     repo,
		lifetime: lifetime,
		interval: interval,
		metrics:  m,
		logger:   logger,
	}
}

func (w *SessionSweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *SessionSweeper) sweep(ctx context.Context) {
	sessions, err := w.repo.All(ctx)
	if err != nil {
		w.logger.Error().Err(err).Msg("failed to list sessions")
		return
	}

	now := time.Now()
	var swept int
	for _, s := range sessions {
		if !s.Expired(now, w.lifetime) {
			continue
		}
		if err := w.repo.Delete(ctx, s.UserID); err != nil {
			w.logger.Error().Err(err).
				Str("user_id", s.UserID.String()).
				Msg("failed to delete expired session")
			continue
		}
		swept++
		if w.metrics != nil {
			w.metrics.SessionsExpired.Inc()
		}
	}

	if swept > 0 {
		w.logger.Info().Int("sessions", swept).Msg("expired sessions swept")
	}
}
