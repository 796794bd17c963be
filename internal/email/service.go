package email

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"

	"github.com/tekhe/dashboard-api/internal/config"
	"github.com/tekhe/dashboard-api/internal/model"
)

type Service interface {
	ReferralAlert(ctx context.Context, referral *model.Referral, facility *model.Facility) error
	AgentEnrolled(ctx context.Context, agent *model.HealthAgent, code string) error
	SendCustom(ctx context.Context, to, subject, body string) error
}

type smtpService struct {
	dialer *gomail.Dialer
	from   string
	logger zerolog.Logger
}

func NewSMTPService(cfg config.SMTPConfig, logger zerolog.Logger) Service {
	return &smtpService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   cfg.From,
		logger: logger,
	}
}

func (s *smtpService) ReferralAlert(ctx context.Context, referral *model.Referral, facility *model.Facility) error {
	if facility.Email == "" {
		s.logger.Warn().
			Str("facility_id", facility.ID.String()).
			Msg("receiving facility has no email on file, skipping alert")
		return nil
	}
	body := fmt.Sprintf(
		"Une urgence obstetricale (%s) a ete signalee a %s.\nReference: %s",
		referral.AlertType,
		referral.AlertedAt.Format("15:04 02/01/2006"),
		referral.ID,
	)
	return s.send(ctx, facility.Email, "Alerte evacuation SONU", body)
}

func (s *smtpService) AgentEnrolled(ctx context.Context, agent *model.HealthAgent, code string) error {
	if agent.Email == "" {
		return nil
	}
	body := fmt.Sprintf("Bonjour %s,\n\nVotre code d'inscription est: %s", agent.FirstName, code)
	return s.send(ctx, agent.Email, "Inscription agent de sante", body)
}

func (s *smtpService) SendCustom(ctx context.Context, to, subject, body string) error {
	return s.send(ctx, to, subject, body)
}

func (s *smtpService) send(ctx context.Context, to, subject, body string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
