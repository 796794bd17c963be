package export

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/tekhe/dashboard-api/internal/model"
	"github.com/tekhe/dashboard-api/internal/rbac"
	"github.com/tekhe/dashboard-api/internal/repository"
	"github.com/tekhe/dashboard-api/internal/service/analytics"
	"github.com/tekhe/dashboard-api/internal/service/audit"
	apperrors "github.com/tekhe/dashboard-api/pkg/errors"
)

const dataSetID = "TEKHE_MATERNAL_MONTHLY"

type ExportService interface {
	DHIS2DataValueSet(ctx context.Context, user *model.User, orgUnit string, period time.Time) (*model.DataValueSet, error)
}

// Service builds DHIS2 aggregate payloads from the caller's visible data.
// Exports carry counts only, matching the national reporting pipeline.
type Service struct {
	patients  repository.PatientRepository
	visits    repository.VisitRepository
	risks     repository.RiskRepository
	referrals repository.ReferralRepository
	engine    *rbac.Engine
	auditor   *audit.Service
}

func NewService(patients repository.PatientRepository, visits repository.VisitRepository, risks repository.RiskRepository, referrals repository.ReferralRepository, engine *rbac.Engine, auditor *audit.Service) *Service {
	return &Service{
		patients:  patients,
		visits:    visits,
		risks:     risks,
		referrals: referrals,
		engine:    engine,
		auditor:   auditor,
	}
}

// DHIS2DataValueSet assembles the monthly aggregate payload. The export
// permission is sensitive; every call is audited whether or not it succeeds.
func (s *Service) DHIS2DataValueSet(ctx context.Context, user *model.User, orgUnit string, period time.Time) (*model.DataValueSet, error) {
	ok, err := rbac.HasPermission(user.Role, model.ResourceExport, model.ActionExport)
	if err != nil {
		return nil, fmt.Errorf("permission check failed: %w", err)
	}
	if !ok {
		s.auditor.Log(ctx, user, model.ActionExport, model.ResourceExport, &audit.LogOptions{
			Success:      false,
			ErrorMessage: "permission denied",
		})
		return nil, apperrors.Forbidden("", nil)
	}

	allPatients, err := s.patients.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	patients := s.engine.FilterPatients(allPatients, user)

	allVisits, err := s.visits.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list visits: %w", err)
	}
	visits := s.engine.FilterVisits(allVisits, patients, user)

	allRisks, err := s.risks.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list risk entries: %w", err)
	}
	risks := s.engine.FilterRiskEntries(allRisks, patients, user)

	allReferrals, err := s.referrals.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list referrals: %w", err)
	}
	referrals := s.engine.FilterReferrals(allReferrals, patients, user)

	kpis := analytics.ComputeKPIs(patients, visits, risks, referrals)
	set := BuildDataValueSet(kpis, orgUnit, period, time.Now())

	s.auditor.Log(ctx, user, model.ActionExport, model.ResourceExport, &audit.LogOptions{
		Success: true,
		Details: map[string]string{"org_unit": orgUnit, "period": set.Period},
	})
	return set, nil
}

// BuildDataValueSet maps the KPI summary onto DHIS2 data elements for the
// given monthly period.
func BuildDataValueSet(kpis *model.KPISummary, orgUnit string, period, completed time.Time) *model.DataValueSet {
	p := period.Format("200601")
	values := []struct {
		element string
		value   int
	}{
		{"TEKHE_PATIENTS_ENROLLED", kpis.TotalPatients},
		{"TEKHE_CPN1_DONE", kpis.CPN1Done},
		{"TEKHE_CPN4_DONE", kpis.CPN4Done},
		{"TEKHE_RISKS_RED", kpis.RisksRed},
		{"TEKHE_RISKS_ORANGE", kpis.RisksOrange},
		{"TEKHE_RISKS_GREEN", kpis.RisksGreen},
		{"TEKHE_COVERAGE_ACTIVE", kpis.CoverageActive},
	}

	set := &model.DataValueSet{
		DataSet:      dataSetID,
		CompleteDate: completed.Format("2006-01-02"),
		Period:       p,
		OrgUnit:      orgUnit,
	}
	for _, v := range values {
		set.DataValues = append(set.DataValues, model.DataValue{
			DataElement: v.element,
			Period:      p,
			OrgUnit:     orgUnit,
			Value:       strconv.Itoa(v.value),
		})
	}
	return set
}
