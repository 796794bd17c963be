package sms

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tekhe/dashboard-api/internal/model"
	"github.com/tekhe/dashboard-api/internal/repository"
)

// Gateway sends a single message to a phone number. The simulated gateway
// only logs; a production build would back this with an operator API.
type Gateway interface {
	Send(ctx context.Context, phone, content string) error
}

type SMSService interface {
	SendEnrollment(ctx context.Context, agent *model.HealthAgent) (*model.SMSRecord, error)
	History(ctx context.Context, phone string) ([]*model.SMSRecord, error)
	Recent(ctx context.Context, limit int) ([]*model.SMSRecord, error)
}

type Service struct {
	repo    repository.SMSRepository
	gateway Gateway
	logger  zerolog.Logger
}

func NewService(repo repository.SMSRepository, gateway Gateway, logger zerolog.Logger) *Service {
	return &Service{repo: repo, gateway: gateway, logger: logger}
}

// SendEnrollment delivers the one-time enrollment code and download link to
// the agent's phone and records the message for the history screen.
func (s *Service) SendEnrollment(ctx context.Context, agent *model.HealthAgent) (*model.SMSRecord, error) {
	content := fmt.Sprintf(
		"TEKHE: Bonjour %s, telechargez l'application: %s. Votre code d'inscription: %s",
		agent.FirstName, agent.DownloadLink, agent.EnrollmentCode,
	)

	record := &model.SMSRecord{
		ID:             uuid.New(),
		Phone:          agent.Phone,
		AgentID:        agent.ID,
		Content:        content,
		EnrollmentCode: agent.EnrollmentCode,
		Status:         model.SMSPending,
		SentAt:         time.Now(),
	}

	if err := s.gateway.Send(ctx, agent.Phone, content); err != nil {
		if saveErr := s.repo.Create(ctx, record); saveErr != nil {
			s.logger.Error().Err(saveErr).Msg("failed to record undelivered sms")
		}
		return nil, fmt.Errorf("failed to send enrollment sms: %w", err)
	}
	record.Status = model.SMSSent

	if err := s.repo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to record sms: %w", err)
	}
	return record, nil
}

func (s *Service) History(ctx context.Context, phone string) ([]*model.SMSRecord, error) {
	records, err := s.repo.ListByPhone(ctx, phone)
	if err != nil {
		return nil, fmt.Errorf("failed to load sms history: %w", err)
	}
	return records, nil
}

func (s *Service) Recent(ctx context.Context, limit int) ([]*model.SMSRecord, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	records, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent sms: %w", err)
	}
	return records, nil
}

// LogGateway is the simulated operator used outside production.
type LogGateway struct {
	Logger zerolog.Logger
}

func (g *LogGateway) Send(ctx context.Context, phone, content string) error {
	g.Logger.Info().
		Str("phone", phone).
		Int("length", len(content)).
		Msg("sms delivered (simulated)")
	return nil
}
