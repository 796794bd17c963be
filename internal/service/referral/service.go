package referral

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tekhe/dashboard-api/internal/model"
	"github.com/tekhe/dashboard-api/internal/rbac"
	"github.com/tekhe/dashboard-api/internal/repository"
	"github.com/tekhe/dashboard-api/internal/service/audit"
	apperrors "github.com/tekhe/dashboard-api/pkg/errors"
)

// Notifier delivers referral alerts to the receiving facility. Delivery
// failures are logged but never block the referral itself.
type Notifier interface {
	ReferralAlert(ctx context.Context, referral *model.Referral, facility *model.Facility) error
}

type ReferralService interface {
	Create(ctx context.Context, user *model.User, req *model.CreateReferralRequest) (*model.Referral, error)
	UpdateStatus(ctx context.Context, user *model.User, id uuid.UUID, status model.ReferralStatus) (*model.Referral, error)
	List(ctx context.Context, user *model.User) ([]*model.Referral, error)
}

type Service struct {
	repo       repository.ReferralRepository
	patients   repository.PatientRepository
	facilities repository.FacilityRepository
	engine     *rbac.Engine
	auditor    *audit.Service
	notifier   Notifier
	logger     zerolog.Logger
}

func NewService(repo repository.ReferralRepository, patients repository.PatientRepository, facilities repository.FacilityRepository, engine *rbac.Engine, auditor *audit.Service, notifier Notifier, logger zerolog.Logger) *Service {
	return &Service{
		repo:       repo,
		patients:   patients,
		facilities: facilities,
		engine:     engine,
		auditor:    auditor,
		notifier:   notifier,
		logger:     logger,
	}
}

func (s *Service) List(ctx context.Context, user *model.User) ([]*model.Referral, error) {
	referrals, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list referrals: %w", err)
	}
	patients, err := s.patients.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return s.engine.FilterReferrals(referrals, patients, user), nil
}

func (s *Service) Create(ctx context.Context, user *model.User, req *model.CreateReferralRequest) (*model.Referral, error) {
	ok, err := rbac.HasPermission(user.Role, model.ResourceReferral, model.ActionCreate)
	if err != nil {
		return nil, fmt.Errorf("permission check failed: %w", err)
	}
	if !ok {
		return nil, apperrors.Forbidden("", nil)
	}

	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		return nil, apperrors.BadRequest("invalid patient id", err)
	}
	patient, err := s.patients.Get(ctx, patientID)
	if err != nil {
		return nil, apperrors.NotFound("patient", err)
	}
	if !s.engine.CanAccessPatient(patient, user) {
		return nil, apperrors.NotFound("patient", nil)
	}

	sonuID, err := uuid.Parse(req.SonuFacilityID)
	if err != nil {
		return nil, apperrors.BadRequest("invalid facility id", err)
	}
	sonu, err := s.facilities.Get(ctx, sonuID)
	if err != nil {
		return nil, apperrors.NotFound("facility", err)
	}
	if !sonu.IsSonu {
		return nil, apperrors.BadRequest("facility does not provide emergency obstetric care", nil)
	}

	referral := &model.Referral{
		PatientID:        patientID,
		AlertType:        req.AlertType,
		Status:           model.ReferralAlert,
		OriginFacilityID: patient.FacilityID,
		SonuFacilityID:   sonuID,
		AlertedAt:        time.Now(),
	}
	referral.ID = uuid.New()

	if err := s.repo.Create(ctx, referral); err != nil {
		return nil, fmt.Errorf("failed to create referral: %w", err)
	}

	if s.notifier != nil {
		if err := s.notifier.ReferralAlert(ctx, referral, sonu); err != nil {
			s.logger.Error().Err(err).
				Str("referral_id", referral.ID.String()).
				Msg("failed to notify receiving facility")
		}
	}

	s.auditor.Log(ctx, user, model.ActionCreate, model.ResourceReferral, &audit.LogOptions{
		ResourceID: referral.ID,
		Success:    true,
		Details:    referral,
	})
	return referral, nil
}

// UpdateStatus advances a referral along the alert, en_route, admitted,
// resolved chain. Transitions only move forward; the transfer delay is
// fixed when the patient is admitted.
func (s *Service) UpdateStatus(ctx context.Context, user *model.User, id uuid.UUID, status model.ReferralStatus) (*model.Referral, error) {
	ok, err := rbac.HasPermission(user.Role, model.ResourceReferral, model.ActionUpdate)
	if err != nil {
		return nil, fmt.Errorf("permission check failed: %w", err)
	}
	if !ok {
		return nil, apperrors.Forbidden("", nil)
	}

	referral, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, apperrors.NotFound("referral", err)
	}
	patient, err := s.patients.Get(ctx, referral.PatientID)
	if err != nil {
		return nil, apperrors.NotFound("referral", err)
	}
	if !s.engine.CanAccessPatient(patient, user) {
		return nil, apperrors.NotFound("referral", nil)
	}

	if statusRank(status) <= statusRank(referral.Status) {
		return nil, apperrors.BadRequest(fmt.Sprintf("cannot move referral from %s to %s", referral.Status, status), nil)
	}

	now := time.Now()
	referral.Status = status
	switch status {
	case model.ReferralEnRoute:
		referral.TransportAt = &now
	case model.ReferralAdmitted:
		referral.AdmittedAt = &now
		referral.TransferDelayMin = int(now.Sub(referral.AlertedAt).Minutes())
	case model.ReferralResolved:
		referral.CounterReferralAt = &now
	}

	if err := s.repo.Update(ctx, referral); err != nil {
		return nil, fmt.Errorf("failed to update referral: %w", err)
	}

	s.auditor.Log(ctx, user, model.ActionUpdate, model.ResourceReferral, &audit.LogOptions{
		ResourceID: id,
		Success:    true,
		Details:    map[string]string{"status": string(status)},
	})
	return referral, nil
}

func statusRank(s model.ReferralStatus) int {
	switch s {
	case model.ReferralAlert:
		return 0
	case model.ReferralEnRoute:
		return 1
	case model.ReferralAdmitted:
		return 2
	case model.ReferralResolved:
		return 3
	default:
		return -1
	}
}
