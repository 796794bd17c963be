package risk

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tekhe/dashboard-api/internal/model"
	"github.com/tekhe/dashboard-api/internal/rbac"
	"github.com/tekhe/dashboard-api/internal/repository"
	apperrors "github.com/tekhe/dashboard-api/pkg/errors"
)

type RiskService interface {
	Assess(ctx context.Context, user *model.User, patientID uuid.UUID) (*model.RiskEntry, error)
	List(ctx context.Context, user *model.User, filters *model.RiskFilters) ([]*model.RiskEntry, error)
}

type Service struct {
	repo     repository.RiskRepository
	patients repository.PatientRepository
	visits   repository.VisitRepository
	engine   *rbac.Engine
	logger   zerolog.Logger
}

func NewService(repo repository.RiskRepository, patients repository.PatientRepository, visits repository.VisitRepository, engine *rbac.Engine, logger zerolog.Logger) *Service {
	return &Service{repo: repo, patients: patients, visits: visits, engine: engine, logger: logger}
}

// List returns the risk entries of patients the user can see.
func (s *Service) List(ctx context.Context, user *model.User, filters *model.RiskFilters) ([]*model.RiskEntry, error) {
	entries, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list risk entries: %w", err)
	}
	patients, err := s.patients.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return s.engine.FilterRiskEntries(entries, patients, user), nil
}

// Assess re-runs the screening rules for a patient and records the result.
// Entries are normally produced by the scoring pipeline, so the gate is the
// risk update permission held by managers, not a create permission. Rules
// follow the national maternal risk protocol: anemia, extreme maternal age,
// nutrition status and missed consultations each contribute to the score.
func (s *Service) Assess(ctx context.Context, user *model.User, patientID uuid.UUID) (*model.RiskEntry, error) {
	ok, err := rbac.HasPermission(user.Role, model.ResourceRisk, model.ActionUpdate)
	if err != nil {
		return nil, fmt.Errorf("permission check failed: %w", err)
	}
	if !ok {
		return nil, apperrors.Forbidden("", nil)
	}

	patient, err := s.patients.Get(ctx, patientID)
	if err != nil {
		return nil, apperrors.NotFound("patient", err)
	}
	if !s.engine.CanAccessPatient(patient, user) {
		return nil, apperrors.NotFound("patient", nil)
	}

	visits, err := s.visits.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to load visit history: %w", err)
	}

	entry := Score(patient, visits, time.Now())
	entry.ID = uuid.New()

	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to save risk entry: %w", err)
	}

	s.logger.Info().
		Str("patient_id", patientID.String()).
		Str("level", string(entry.Level)).
		Int("score", entry.Score).
		Msg("risk assessment recorded")
	return entry, nil
}

// Score is the pure scoring function. Exported so the screening rules can be
// exercised without a database.
func Score(patient *model.Patient, visits []*model.Visit, now time.Time) *model.RiskEntry {
	var score int
	var factors []string

	if patient.Hemoglobin > 0 && patient.Hemoglobin < 11.0 {
		score += 3
		factors = append(factors, "anemia")
	}
	if patient.Age < 18 {
		score += 2
		factors = append(factors, "underage_pregnancy")
	}
	if patient.Age > 35 {
		score += 2
		factors = append(factors, "advanced_maternal_age")
	}
	if patient.MUAC > 0 && patient.MUAC < 21.0 {
		score += 2
		factors = append(factors, "malnutrition")
	}
	if patient.BMI > 0 && patient.BMI >= 30.0 {
		score++
		factors = append(factors, "obesity")
	}

	weeks := int(now.Sub(patient.LastPeriodDate).Hours() / 24 / 7)
	if expected := expectedVisits(weeks); len(visits) < expected {
		score += expected - len(visits)
		factors = append(factors, "missed_consultations")
	}

	level := model.RiskGreen
	switch {
	case score >= 5:
		level = model.RiskRed
	case score >= 3:
		level = model.RiskOrange
	}

	return &model.RiskEntry{
		PatientID:      patient.ID,
		Score:          score,
		Level:          level,
		Factors:        factors,
		Rule:           "protocol_v2",
		GestationWeeks: weeks,
		AssessedAt:     now,
	}
}

// expectedVisits gives the number of antenatal consultations a patient
// should have completed by the given gestational week.
func expectedVisits(weeks int) int {
	switch {
	case weeks >= 36:
		return 4
	case weeks >= 28:
		return 3
	case weeks >= 20:
		return 2
	case weeks >= 12:
		return 1
	default:
		return 0
	}
}
