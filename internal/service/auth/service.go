package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tekhe/dashboard-api/internal/model"
	"github.com/tekhe/dashboard-api/internal/rbac"
	"github.com/tekhe/dashboard-api/internal/repository"
	"github.com/tekhe/dashboard-api/internal/service/audit"
	"github.com/tekhe/dashboard-api/pkg/auth"
	"github.com/tekhe/dashboard-api/pkg/metrics"
	"github.com/tekhe/dashboard-api/pkg/security"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountLocked      = errors.New("account is locked, please try again later")
	ErrNoSession          = errors.New("no active session")
	ErrSessionExpired     = errors.New("session expired")
)

const (
	maxLoginAttempts = 5
	lockoutDuration  = 15 * time.Minute
)

// ScopeConfigurationError rejects a login whose account is missing the
// location attribute its scope requires. It carries one message per
// violation for the login screen.
type ScopeConfigurationError struct {
	Errors []string
}

func (e *ScopeConfigurationError) Error() string {
	return "scope configuration invalid: " + strings.Join(e.Errors, "; ")
}

// Service drives the session lifecycle: anonymous visitor, login attempt,
// scope validation, authenticated, and back via logout or expiry. One
// persisted session per user.
type Service struct {
	userRepo        repository.UserRepository
	sessionRepo     repository.SessionRepository
	jwtSvc          auth.JWTService
	hasher          security.PasswordHasher
	auditor         *audit.Service
	metrics         *metrics.Metrics
	logger          zerolog.Logger
	sessionLifetime time.Duration
}

func NewService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	jwtSvc auth.JWTService,
	hasher security.PasswordHasher,
	auditor *audit.Service,
	m *metrics.Metrics,
	logger zerolog.Logger,
	sessionLifetime time.Duration,
) *Service {
	return &Service{
		userRepo:        userRepo,
		sessionRepo:     sessionRepo,
		jwtSvc:          jwtSvc,
		hasher:          hasher,
		auditor:         auditor,
		metrics:         m,
		logger:          logger,
		sessionLifetime: sessionLifetime,
	}
}

// Login authenticates credentials, validates the scope configuration and
// starts a session. A user failing scope validation is never authenticated,
// and any previously persisted session for it is discarded.
func (s *Service) Login(ctx context.Context, email, password string) (*model.TokenResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		s.rejectSession("credentials")
		return nil, ErrInvalidCredentials
	}

	if user.Status == model.UserStatusLocked {
		if time.Since(user.LastLoginAttempt) < lockoutDuration {
			s.rejectSession("locked")
			return nil, ErrAccountLocked
		}
		user.Status = model.UserStatusActive
		user.LoginAttempts = 0
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		user.LoginAttempts++
		user.LastLoginAttempt = time.Now()
		if user.LoginAttempts >= maxLoginAttempts {
			user.Status = model.UserStatusLocked
		}
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to update login attempts: %w", err)
		}
		s.auditor.Log(ctx, user, model.ActionRead, model.ResourceAnalytics, &audit.LogOptions{
			Success:      false,
			ErrorMessage: "invalid credentials",
			Details:      map[string]interface{}{"action": "login"},
		})
		s.rejectSession("credentials")
		return nil, ErrInvalidCredentials
	}

	if validation := rbac.ValidateUserScope(user); !validation.Valid {
		// Do not leave a stale session behind for a misconfigured account.
		if err := s.sessionRepo.Delete(ctx, user.ID); err != nil {
			s.logger.Warn().Err(err).Msg("failed to discard session of misconfigured user")
		}
		s.auditor.Log(ctx, user, model.ActionRead, model.ResourceAnalytics, &audit.LogOptions{
			Success:      false,
			ErrorMessage: "scope configuration invalid",
			Details:      map[string]interface{}{"action": "login", "errors": validation.Errors},
		})
		s.rejectSession("scope")
		return nil, &ScopeConfigurationError{Errors: validation.Errors}
	}

	now := time.Now()
	user.LoginAttempts = 0
	user.LastLoginAt = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update login timestamp: %w", err)
	}

	session := &model.Session{UserID: user.ID, Role: user.Role, LoginAt: now}
	if err := s.sessionRepo.Save(ctx, session, s.sessionLifetime); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	token, expiresAt, err := s.jwtSvc.GenerateAccessToken(user.ID, s.sessionLifetime)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	s.auditor.Log(ctx, user, model.ActionRead, model.ResourceAnalytics, &audit.LogOptions{
		Success: true,
		Details: map[string]interface{}{"action": "login", "timestamp": now.Format(time.RFC3339)},
	})
	s.logger.Info().Str("user", user.DisplayName()).Str("role", string(user.Role)).Msg("login successful")
	if s.metrics != nil {
		s.metrics.SessionsStarted.Inc()
	}

	return &model.TokenResponse{AccessToken: token, ExpiresAt: expiresAt, User: user}, nil
}

// Session restores the persisted identity for a request. A session that has
// outlived its lifetime, or whose user no longer passes scope validation,
// is discarded rather than restored.
func (s *Service) Session(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	session, err := s.sessionRepo.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil {
		return nil, ErrNoSession
	}

	if session.Expired(time.Now(), s.sessionLifetime) {
		if err := s.sessionRepo.Delete(ctx, userID); err != nil {
			s.logger.Warn().Err(err).Msg("failed to delete expired session")
		}
		return nil, ErrSessionExpired
	}

	user, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session user: %w", err)
	}

	if validation := rbac.ValidateUserScope(user); !validation.Valid {
		if err := s.sessionRepo.Delete(ctx, userID); err != nil {
			s.logger.Warn().Err(err).Msg("failed to discard invalid session")
		}
		return nil, &ScopeConfigurationError{Errors: validation.Errors}
	}

	return user, nil
}

// Logout ends the session and returns the client to anonymous visitor.
func (s *Service) Logout(ctx context.Context, userID uuid.UUID) error {
	user, err := s.userRepo.Get(ctx, userID)
	if err == nil {
		s.auditor.Log(ctx, user, model.ActionRead, model.ResourceAnalytics, &audit.LogOptions{
			Success: true,
			Details: map[string]interface{}{"action": "logout", "timestamp": time.Now().Format(time.RFC3339)},
		})
	}
	if err := s.sessionRepo.Delete(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	s.logger.Info().Str("user_id", userID.String()).Msg("logout successful")
	return nil
}

func (s *Service) rejectSession(reason string) {
	if s.metrics != nil {
		s.metrics.SessionsRejected.WithLabelValues(reason).Inc()
	}
}

// SessionLifetime exposes the configured lifetime to the expiry sweeper.
func (s *Service) SessionLifetime() time.Duration {
	return s.sessionLifetime
}
