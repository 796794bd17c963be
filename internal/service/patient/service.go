package patient

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tekhe/dashboard-api/internal/model"
	"github.com/tekhe/dashboard-api/internal/rbac"
	"github.com/tekhe/dashboard-api/internal/repository"
	"github.com/tekhe/dashboard-api/internal/service/audit"
	"github.com/tekhe/dashboard-api/internal/service/directory"
	apperrors "github.com/tekhe/dashboard-api/pkg/errors"
)

type PatientService interface {
	Create(ctx context.Context, user *model.User, req *model.CreatePatientRequest) (*model.Patient, error)
	Get(ctx context.Context, user *model.User, id uuid.UUID) (*model.Patient, error)
	Update(ctx context.Context, user *model.User, id uuid.UUID, req *model.UpdatePatientRequest) (*model.Patient, error)
	Delete(ctx context.Context, user *model.User, id uuid.UUID) error
	List(ctx context.Context, user *model.User, filters *model.PatientFilters) ([]*model.Patient, error)
}

type Service struct {
	repo      repository.PatientRepository
	engine    *rbac.Engine
	directory *directory.Service
	auditor   *audit.Service
}

func NewService(repo repository.PatientRepository, engine *rbac.Engine, dir *directory.Service, auditor *audit.Service) *Service {
	return &Service{repo: repo, engine: engine, directory: dir, auditor: auditor}
}

// List returns only the patients within the user's visibility scope. The
// scoping engine runs over the full repository result; it fails closed, so
// a misconfigured user sees an empty list rather than everything.
func (s *Service) List(ctx context.Context, user *model.User, filters *model.PatientFilters) ([]*model.Patient, error) {
	patients, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return s.engine.FilterPatients(patients, user), nil
}

func (s *Service) Get(ctx context.Context, user *model.User, id uuid.UUID) (*model.Patient, error) {
	patient, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, apperrors.NotFound("patient", err)
	}
	if !s.engine.CanAccessPatient(patient, user) {
		// Indistinguishable from absent: scoped users must not learn that
		// records outside their scope exist.
		return nil, apperrors.NotFound("patient", nil)
	}
	s.auditor.Log(ctx, user, model.ActionRead, model.ResourcePatient, &audit.LogOptions{
		ResourceID: id,
		Success:    true,
	})
	return patient, nil
}

func (s *Service) Create(ctx context.Context, user *model.User, req *model.CreatePatientRequest) (*model.Patient, error) {
	if err := s.requirePermission(user, model.ActionCreate); err != nil {
		return nil, err
	}

	facilityID, err := uuid.Parse(req.FacilityID)
	if err != nil {
		return nil, apperrors.BadRequest("invalid facility id", err)
	}

	// Resolve district and region once at ingestion so the scope filters
	// never have to chase the hierarchy per call.
	districtID, regionID, err := s.directory.ResolveScope(ctx, facilityID)
	if err != nil {
		return nil, apperrors.BadRequest("unknown facility", err)
	}

	lastPeriod, err := time.Parse("2006-01-02", req.LastPeriodDate)
	if err != nil {
		return nil, apperrors.BadRequest("invalid last period date", err)
	}

	now := time.Now()
	patient := &model.Patient{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Age:            req.Age,
		Phone:          req.Phone,
		LastPeriodDate: lastPeriod,
		DueDate:        lastPeriod.AddDate(0, 0, 280),
		GestationWeeks: int(now.Sub(lastPeriod).Hours() / 24 / 7),
		FacilityID:     facilityID,
		DistrictID:     districtID,
		RegionID:       regionID,
		AgentID:        user.ID,
		CoverageStatus: model.CoveragePending,
		BirthPlan:      req.BirthPlan,
		BMI:            req.BMI,
		MUAC:           req.MUAC,
		Hemoglobin:     req.Hemoglobin,
		EnrolledAt:     now,
	}
	patient.ID = uuid.New()

	if err := s.repo.Create(ctx, patient); err != nil {
		return nil, fmt.Errorf("failed to create patient: %w", err)
	}

	s.auditor.Log(ctx, user, model.ActionCreate, model.ResourcePatient, &audit.LogOptions{
		ResourceID: patient.ID,
		Success:    true,
		Details:    patient,
	})
	return patient, nil
}

func (s *Service) Update(ctx context.Context, user *model.User, id uuid.UUID, req *model.UpdatePatientRequest) (*model.Patient, error) {
	if err := s.requirePermission(user, model.ActionUpdate); err != nil {
		return nil, err
	}

	patient, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, apperrors.NotFound("patient", err)
	}
	if !s.engine.CanAccessPatient(patient, user) {
		return nil, apperrors.NotFound("patient", nil)
	}

	applyPatientUpdate(patient, req)

	if err := s.repo.Update(ctx, patient); err != nil {
		return nil, fmt.Errorf("failed to update patient: %w", err)
	}

	s.auditor.Log(ctx, user, model.ActionUpdate, model.ResourcePatient, &audit.LogOptions{
		ResourceID: id,
		Success:    true,
		Details:    req,
	})
	return patient, nil
}

func (s *Service) Delete(ctx context.Context, user *model.User, id uuid.UUID) error {
	if err := s.requirePermission(user, model.ActionDelete); err != nil {
		return err
	}

	patient, err := s.repo.Get(ctx, id)
	if err != nil {
		return apperrors.NotFound("patient", err)
	}
	if !s.engine.CanAccessPatient(patient, user) {
		return apperrors.NotFound("patient", nil)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete patient: %w", err)
	}

	s.auditor.Log(ctx, user, model.ActionDelete, model.ResourcePatient, &audit.LogOptions{
		ResourceID: id,
		Success:    true,
	})
	return nil
}

func (s *Service) requirePermission(user *model.User, action model.Action) error {
	ok, err := rbac.HasPermission(user.Role, model.ResourcePatient, action)
	if err != nil {
		return fmt.Errorf("permission check failed: %w", err)
	}
	if !ok {
		return apperrors.Forbidden("", nil)
	}
	return nil
}

func applyPatientUpdate(patient *model.Patient, req *model.UpdatePatientRequest) {
	if req.FirstName != nil {
		patient.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		patient.LastName = *req.LastName
	}
	if req.Age != nil {
		patient.Age = *req.Age
	}
	if req.Phone != nil {
		patient.Phone = *req.Phone
	}
	if req.CoverageStatus != nil {
		patient.CoverageStatus = model.CoverageStatus(*req.CoverageStatus)
	}
	if req.BirthPlan != nil {
		patient.BirthPlan = *req.BirthPlan
	}
	if req.BMI != nil {
		patient.BMI = *req.BMI
	}
	if req.MUAC != nil {
		patient.MUAC = *req.MUAC
	}
	if req.WeightGain != nil {
		patient.WeightGain = *req.WeightGain
	}
	if req.Hemoglobin != nil {
		patient.Hemoglobin = *req.Hemoglobin
	}
}
