package agent

import (
	"context"
	"crypto/rand"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tekhe/dashboard-api/internal/email"
	"github.com/tekhe/dashboard-api/internal/model"
	"github.com/tekhe/dashboard-api/internal/rbac"
	"github.com/tekhe/dashboard-api/internal/repository"
	"github.com/tekhe/dashboard-api/internal/service/audit"
	"github.com/tekhe/dashboard-api/internal/service/sms"
	apperrors "github.com/tekhe/dashboard-api/pkg/errors"
)

const downloadLink = "https://app.tekhe.sn/download"

type AgentService interface {
	Enroll(ctx context.Context, user *model.User, req *model.EnrollAgentRequest) (*model.HealthAgent, error)
	Get(ctx context.Context, user *model.User, id uuid.UUID) (*model.HealthAgent, error)
	Revoke(ctx context.Context, user *model.User, id uuid.UUID) error
	ListByFacility(ctx context.Context, user *model.User, facilityID uuid.UUID) ([]*model.HealthAgent, error)
}

type Service struct {
	repo    repository.AgentRepository
	sms     sms.SMSService
	mailer  email.Service
	auditor *audit.Service
	logger  zerolog.Logger
}

func NewService(repo repository.AgentRepository, smsService sms.SMSService, mailer email.Service, auditor *audit.Service, logger zerolog.Logger) *Service {
	return &Service{repo: repo, sms: smsService, mailer: mailer, auditor: auditor, logger: logger}
}

// Enroll registers a field worker and delivers the one-time enrollment code
// over SMS. Only facility managers hold the agent create permission.
func (s *Service) Enroll(ctx context.Context, user *model.User, req *model.EnrollAgentRequest) (*model.HealthAgent, error) {
	if err := s.requirePermission(user, model.ActionCreate); err != nil {
		return nil, err
	}

	facilityID, err := uuid.Parse(req.FacilityID)
	if err != nil {
		return nil, apperrors.BadRequest("invalid facility id", err)
	}
	// Facility managers enroll for their own facility only.
	if user.FacilityID != uuid.Nil && user.FacilityID != facilityID {
		return nil, apperrors.Forbidden("agents can only be enrolled for your facility", nil)
	}

	code, err := enrollmentCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate enrollment code: %w", err)
	}

	agent := &model.HealthAgent{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Phone:          req.Phone,
		Email:          req.Email,
		FacilityID:     facilityID,
		EnrollmentCode: code,
		DownloadLink:   downloadLink,
		Status:         model.AgentPending,
		EnrolledBy:     user.ID,
	}
	agent.ID = uuid.New()

	if err := s.repo.Create(ctx, agent); err != nil {
		return nil, fmt.Errorf("failed to create health agent: %w", err)
	}

	if _, err := s.sms.SendEnrollment(ctx, agent); err != nil {
		s.logger.Error().Err(err).
			Str("agent_id", agent.ID.String()).
			Msg("enrollment sms delivery failed")
	} else {
		agent.Status = model.AgentEnrolled
		if err := s.repo.Update(ctx, agent); err != nil {
			s.logger.Error().Err(err).Msg("failed to mark agent enrolled")
		}
	}

	if s.mailer != nil && agent.Email != "" {
		if err := s.mailer.AgentEnrolled(ctx, agent, code); err != nil {
			s.logger.Warn().Err(err).Msg("enrollment email delivery failed")
		}
	}

	s.auditor.Log(ctx, user, model.ActionCreate, model.ResourceAgent, &audit.LogOptions{
		ResourceID: agent.ID,
		Success:    true,
	})
	return agent, nil
}

func (s *Service) Get(ctx context.Context, user *model.User, id uuid.UUID) (*model.HealthAgent, error) {
	if err := s.requirePermission(user, model.ActionRead); err != nil {
		return nil, err
	}
	agent, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, apperrors.NotFound("agent", err)
	}
	if user.FacilityID != uuid.Nil && user.FacilityID != agent.FacilityID {
		return nil, apperrors.NotFound("agent", nil)
	}
	return agent, nil
}

func (s *Service) Revoke(ctx context.Context, user *model.User, id uuid.UUID) error {
	if err := s.requirePermission(user, model.ActionDelete); err != nil {
		return err
	}
	agent, err := s.repo.Get(ctx, id)
	if err != nil {
		return apperrors.NotFound("agent", err)
	}
	if user.FacilityID != uuid.Nil && user.FacilityID != agent.FacilityID {
		return apperrors.NotFound("agent", nil)
	}

	agent.Status = model.AgentRevoked
	if err := s.repo.Update(ctx, agent); err != nil {
		return fmt.Errorf("failed to revoke agent: %w", err)
	}

	s.auditor.Log(ctx, user, model.ActionDelete, model.ResourceAgent, &audit.LogOptions{
		ResourceID: id,
		Success:    true,
	})
	return nil
}

func (s *Service) ListByFacility(ctx context.Context, user *model.User, facilityID uuid.UUID) ([]*model.HealthAgent, error) {
	if err := s.requirePermission(user, model.ActionRead); err != nil {
		return nil, err
	}
	if user.FacilityID != uuid.Nil && user.FacilityID != facilityID {
		return []*model.HealthAgent{}, nil
	}
	agents, err := s.repo.ListByFacility(ctx, facilityID)
	if err != nil {
		return nil, fmt.Errorf("failed to list agents: %w", err)
	}
	return agents, nil
}

func (s *Service) requirePermission(user *model.User, action model.Action) error {
	ok, err := rbac.HasPermission(user.Role, model.ResourceAgent, action)
	if err != nil {
		return fmt.Errorf("permission check failed: %w", err)
	}
	if !ok {
		return apperrors.Forbidden("", nil)
	}
	return nil
}

// enrollmentCode returns a six digit one-time code.
func enrollmentCode() (string, error) {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	n := uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
	return fmt.Sprintf("%06d", n%1000000), nil
}
