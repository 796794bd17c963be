package visit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tekhe/dashboard-api/internal/model"
	"github.com/tekhe/dashboard-api/internal/rbac"
	"github.com/tekhe/dashboard-api/internal/repository"
	"github.com/tekhe/dashboard-api/internal/service/audit"
	apperrors "github.com/tekhe/dashboard-api/pkg/errors"
)

type VisitService interface {
	Create(ctx context.Context, user *model.User, req *model.CreateVisitRequest) (*model.Visit, error)
	List(ctx context.Context, user *model.User) ([]*model.Visit, error)
	ListByPatient(ctx context.Context, user *model.User, patientID uuid.UUID) ([]*model.Visit, error)
}

type Service struct {
	repo     repository.VisitRepository
	patients repository.PatientRepository
	engine   *rbac.Engine
	auditor  *audit.Service
}

func NewService(repo repository.VisitRepository, patients repository.PatientRepository, engine *rbac.Engine, auditor *audit.Service) *Service {
	return &Service{repo: repo, patients: patients, engine: engine, auditor: auditor}
}

// List returns the visits of patients the user can see. Visits carry no
// location of their own, so visibility is derived from the parent patient.
func (s *Service) List(ctx context.Context, user *model.User) ([]*model.Visit, error) {
	visits, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list visits: %w", err)
	}
	patients, err := s.patients.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return s.engine.FilterVisits(visits, patients, user), nil
}

func (s *Service) ListByPatient(ctx context.Context, user *model.User, patientID uuid.UUID) ([]*model.Visit, error) {
	patient, err := s.patients.Get(ctx, patientID)
	if err != nil {
		return nil, apperrors.NotFound("patient", err)
	}
	if !s.engine.CanAccessPatient(patient, user) {
		return nil, apperrors.NotFound("patient", nil)
	}
	visits, err := s.repo.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list visits: %w", err)
	}
	return visits, nil
}

func (s *Service) Create(ctx context.Context, user *model.User, req *model.CreateVisitRequest) (*model.Visit, error) {
	ok, err := rbac.HasPermission(user.Role, model.ResourceVisit, model.ActionCreate)
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

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, apperrors.BadRequest("invalid visit date", err)
	}

	visit := &model.Visit{
		PatientID:     patientID,
		Type:          req.Type,
		Date:          date,
		WeightKG:      req.WeightKG,
		BloodPressure: req.BloodPressure,
		MUAC:          req.MUAC,
		BMI:           req.BMI,
		Hemoglobin:    req.Hemoglobin,
		AgentID:       user.ID,
		FacilityID:    patient.FacilityID,
		ChecklistOK:   req.ChecklistOK,
		Status:        model.VisitDone,
	}
	visit.ID = uuid.New()

	if err := s.repo.Create(ctx, visit); err != nil {
		return nil, fmt.Errorf("failed to create visit: %w", err)
	}

	s.auditor.Log(ctx, user, model.ActionCreate, model.ResourceVisit, &audit.LogOptions{
		ResourceID: visit.ID,
		Success:    true,
		Details:    visit,
	})
	return visit, nil
}
