package risk

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tekhe/dashboard-api/internal/model"
	"github.com/tekhe/dashboard-api/internal/rbac"
	apperrors "github.com/tekhe/dashboard-api/pkg/errors"
)

type fakeRiskRepo struct {
	entries []*model.RiskEntry
}

func (f *fakeRiskRepo) Create(ctx context.Context, e *model.RiskEntry) error {
	f.entries = append(f.entries, e)
	return nil
}

func (f *fakeRiskRepo) Get(ctx context.Context, id uuid.UUID) (*model.RiskEntry, error) {
	return nil, assert.AnError
}

func (f *fakeRiskRepo) Update(ctx context.Context, e *model.RiskEntry) error { return nil }
func (f *fakeRiskRepo) List(ctx context.Context, filters *model.RiskFilters) ([]*model.RiskEntry, error) {
	return f.entries, nil
}

type fakePatientRepo struct {
	patients map[uuid.UUID]*model.Patient
}

func (f *fakePatientRepo) Create(ctx context.Context, p *model.Patient) error { return nil }
func (f *fakePatientRepo) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	p, ok := f.patients[id]
	if !ok {
		return nil, assert.AnError
	}
	return p, nil
}
func (f *fakePatientRepo) Update(ctx context.Context, p *model.Patient) error { return nil }
func (f *fakePatientRepo) Delete(ctx context.Context, id uuid.UUID) error     { return nil }
func (f *fakePatientRepo) List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error) {
	var out []*model.Patient
	for _, p := range f.patients {
		out = append(out, p)
	}
	return out, nil
}

type fakeVisitRepo struct {
	visits []*model.Visit
}

func (f *fakeVisitRepo) Create(ctx context.Context, v *model.Visit) error { return nil }
func (f *fakeVisitRepo) Get(ctx context.Context, id uuid.UUID) (*model.Visit, error) {
	return nil, assert.AnError
}
func (f *fakeVisitRepo) Update(ctx context.Context, v *model.Visit) error { return nil }
func (f *fakeVisitRepo) Delete(ctx context.Context, id uuid.UUID) error   { return nil }
func (f *fakeVisitRepo) List(ctx context.Context) ([]*model.Visit, error) { return f.visits, nil }
func (f *fakeVisitRepo) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Visit, error) {
	var out []*model.Visit
	for _, v := range f.visits {
		if v.PatientID == patientID {
			out = append(out, v)
		}
	}
	return out, nil
}

func patientAt(weeks int) *model.Patient {
	p := &model.Patient{
		Age:            28,
		LastPeriodDate: time.Now().AddDate(0, 0, -weeks*7),
	}
	p.ID = uuid.New()
	return p
}

func doneVisits(n int) []*model.Visit {
	visits := make([]*model.Visit, n)
	for i := range visits {
		visits[i] = &model.Visit{Status: model.VisitDone}
	}
	return visits
}

func newTestService(patient *model.Patient, visits []*model.Visit) (*Service, *fakeRiskRepo) {
	repo := &fakeRiskRepo{}
	svc := NewService(
		repo,
		&fakePatientRepo{patients: map[uuid.UUID]*model.Patient{patient.ID: patient}},
		&fakeVisitRepo{visits: visits},
		rbac.NewEngine(zerolog.Nop()),
		zerolog.Nop(),
	)
	return svc, repo
}

func TestAssessReachableByFacilityManager(t *testing.T) {
	facilityID := uuid.New()
	patient := patientAt(30)
	patient.FacilityID = facilityID
	patient.Hemoglobin = 9.0

	svc, repo := newTestService(patient, nil)
	manager := &model.User{Role: model.RoleFacilityManager, FacilityID: facilityID}
	manager.ID = uuid.New()

	entry, err := svc.Assess(context.Background(), manager, patient.ID)
	require.NoError(t, err)

	assert.Contains(t, entry.Factors, "anemia")
	require.Len(t, repo.entries, 1)
}

func TestAssessDeniedForFrontLineWorker(t *testing.T) {
	patient := patientAt(20)
	svc, _ := newTestService(patient, nil)

	worker := &model.User{Role: model.RoleFrontLineWorker}
	worker.ID = uuid.New()
	patient.AgentID = worker.ID

	_, err := svc.Assess(context.Background(), worker, patient.ID)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrForbidden, appErr.Code)
}

func TestScoreHealthyPatient(t *testing.T) {
	p := patientAt(16)
	p.Hemoglobin = 12.5
	p.MUAC = 24

	entry := Score(p, doneVisits(1), time.Now())

	assert.Equal(t, 0, entry.Score)
	assert.Equal(t, model.RiskGreen, entry.Level)
	assert.Empty(t, entry.Factors)
}

func TestScoreAnemia(t *testing.T) {
	p := patientAt(16)
	p.Hemoglobin = 9.8

	entry := Score(p, doneVisits(1), time.Now())

	assert.Equal(t, 3, entry.Score)
	assert.Equal(t, model.RiskOrange, entry.Level)
	assert.Contains(t, entry.Factors, "anemia")
}

func TestScoreCompoundedFactorsEscalateToRed(t *testing.T) {
	p := patientAt(30)
	p.Age = 16
	p.Hemoglobin = 9.0
	p.MUAC = 19

	// 30 weeks with no visits adds missed consultations on top.
	entry := Score(p, nil, time.Now())

	assert.GreaterOrEqual(t, entry.Score, 5)
	assert.Equal(t, model.RiskRed, entry.Level)
	assert.Contains(t, entry.Factors, "anemia")
	assert.Contains(t, entry.Factors, "underage_pregnancy")
	assert.Contains(t, entry.Factors, "malnutrition")
	assert.Contains(t, entry.Factors, "missed_consultations")
}

func TestScoreAdvancedMaternalAge(t *testing.T) {
	p := patientAt(10)
	p.Age = 41

	entry := Score(p, nil, time.Now())

	assert.Contains(t, entry.Factors, "advanced_maternal_age")
	assert.Equal(t, 2, entry.Score)
}

func TestScoreMissedConsultations(t *testing.T) {
	tests := []struct {
		name     string
		weeks    int
		visits   int
		expected bool
	}{
		{"first trimester needs none", 8, 0, false},
		{"week 20 needs two", 20, 1, true},
		{"week 20 covered", 20, 2, false},
		{"term needs four", 37, 2, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := Score(patientAt(tt.weeks), doneVisits(tt.visits), time.Now())
			if tt.expected {
				assert.Contains(t, entry.Factors, "missed_consultations")
			} else {
				assert.NotContains(t, entry.Factors, "missed_consultations")
			}
		})
	}
}

func TestScoreRecordsGestationWeeks(t *testing.T) {
	entry := Score(patientAt(22), doneVisits(2), time.Now())
	assert.Equal(t, 22, entry.GestationWeeks)
	assert.Equal(t, "protocol_v2", entry.Rule)
}
