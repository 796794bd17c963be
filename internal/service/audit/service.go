package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tekhe/dashboard-api/internal/model"
	"github.com/tekhe/dashboard-api/internal/repository"
)

// Service writes the audit trail. Logging failures are reported to the
// process log but never fail the audited operation itself.
type Service struct {
	repo   repository.AuditRepository
	logger zerolog.Logger
}

func NewService(repo repository.AuditRepository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

type LogOptions struct {
	ResourceID   uuid.UUID
	Details      interface{}
	Success      bool
	ErrorMessage string
	IPAddress    string
	UserAgent    string
}

// Log records one action by one user against a resource.
func (s *Service) Log(ctx context.Context, user *model.User, action model.Action, resource model.Resource, opts *LogOptions) {
	if opts == nil {
		opts = &LogOptions{Success: true}
	}

	var details json.RawMessage
	if opts.Details != nil {
		raw, err := json.Marshal(opts.Details)
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to marshal audit details")
		} else {
			details = raw
		}
	}

	entry := &model.AuditLog{
		ID:           uuid.New(),
		Action:       action,
		Resource:     resource,
		ResourceID:   opts.ResourceID,
		Details:      details,
		Success:      opts.Success,
		ErrorMessage: opts.ErrorMessage,
		IPAddress:    opts.IPAddress,
		UserAgent:    opts.UserAgent,
		CreatedAt:    time.Now(),
	}
	if user != nil {
		entry.UserID = user.ID
		entry.UserRole = user.Role
		entry.UserName = user.DisplayName()
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		s.logger.Error().Err(err).Msg("failed to write audit log")
	}
}

func (s *Service) List(ctx context.Context, filters *model.AuditFilters) ([]*model.AuditLog, error) {
	return s.repo.List(ctx, filters)
}

// ListSensitive returns entries for delete and export actions only.
func (s *Service) ListSensitive(ctx context.Context) ([]*model.AuditLog, error) {
	logs, err := s.repo.List(ctx, nil)
	if err != nil {
		return nil, err
	}
	sensitive := make([]*model.AuditLog, 0)
	for _, l := range logs {
		if l.Action == model.ActionDelete || l.Action == model.ActionExport {
			sensitive = append(sensitive, l)
		}
	}
	return sensitive, nil
}

func (s *Service) Stats(ctx context.Context) (*model.AuditStats, error) {
	return s.repo.Stats(ctx)
}
