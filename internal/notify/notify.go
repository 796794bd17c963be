package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tekhe/dashboard-api/internal/email"
	"github.com/tekhe/dashboard-api/internal/model"
	"github.com/tekhe/dashboard-api/internal/service/referral"
	"github.com/tekhe/dashboard-api/pkg/messaging"
)

const referralChannel = "tekhe:events:referrals"

// ReferralEvent is what the on-call dashboard screens subscribe to. It
// carries ids only; subscribers fetch details through the scoped API.
type ReferralEvent struct {
	ReferralID uuid.UUID `json:"referral_id"`
	FacilityID uuid.UUID `json:"facility_id"`
	AlertType  string    `json:"alert_type"`
	AlertedAt  time.Time `json:"alerted_at"`
}

// BrokerNotifier publishes referral alerts to the event broker.
type BrokerNotifier struct {
	broker messaging.Broker
	logger zerolog.Logger
}

func NewBrokerNotifier(broker messaging.Broker, logger zerolog.Logger) *BrokerNotifier {
	return &BrokerNotifier{broker: broker, logger: logger}
}

func (n *BrokerNotifier) ReferralAlert(ctx context.Context, r *model.Referral, facility *model.Facility) error {
	event := ReferralEvent{
		ReferralID: r.ID,
		FacilityID: facility.ID,
		AlertType:  r.AlertType,
		AlertedAt:  r.AlertedAt,
	}
	return n.broker.Publish(ctx, referralChannel, event)
}

// EmailNotifier adapts the SMTP service to the referral notifier shape.
type EmailNotifier struct {
	mailer email.Service
}

func NewEmailNotifier(mailer email.Service) *EmailNotifier {
	return &EmailNotifier{mailer: mailer}
}

func (n *EmailNotifier) ReferralAlert(ctx context.Context, r *model.Referral, facility *model.Facility) error {
	return n.mailer.ReferralAlert(ctx, r, facility)
}

type multiNotifier struct {
	notifiers []referral.Notifier
	logger    zerolog.Logger
}

// Multi fans an alert out to every notifier. One failing channel does not
// stop the others; the first error is returned for logging.
func Multi(logger zerolog.Logger, notifiers ...referral.Notifier) referral.Notifier {
	return &multiNotifier{notifiers: notifiers, logger: logger}
}

func (m *multiNotifier) ReferralAlert(ctx context.Context, r *model.Referral, facility *model.Facility) error {
	var first error
	for _, n := range m.notifiers {
		if err := n.ReferralAlert(ctx, r, facility); err != nil {
			m.logger.Warn().Err(err).Msg("referral alert channel failed")
			if first == nil {
				first = err
			}
		}
	}
	return first
}
