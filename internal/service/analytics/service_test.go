package analytics

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
)

type fakePatientRepo struct {
	patients []*model.Patient
}

func (f *fakePatientRepo) Create(ctx context.Context, p *model.Patient) error { return nil }
func (f *fakePatientRepo) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	return nil, assert.AnError
}
func (f *fakePatientRepo) Update(ctx context.Context, p *model.Patient) error { return nil }
func (f *fakePatientRepo) Delete(ctx context.Context, id uuid.UUID) error     { return nil }
func (f *fakePatientRepo) List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error) {
	return f.patients, nil
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
	return nil, nil
}

type fakeRiskRepo struct {
	risks []*model.RiskEntry
}

func (f *fakeRiskRepo) Create(ctx context.Context, e *model.RiskEntry) error { return nil }
func (f *fakeRiskRepo) Get(ctx context.Context, id uuid.UUID) (*model.RiskEntry, error) {
	return nil, assert.AnError
}
func (f *fakeRiskRepo) Update(ctx context.Context, e *model.RiskEntry) error { return nil }
func (f *fakeRiskRepo) List(ctx context.Context, filters *model.RiskFilters) ([]*model.RiskEntry, error) {
	return f.risks, nil
}

type fakeReferralRepo struct {
	referrals []*model.Referral
}

func (f *fakeReferralRepo) Create(ctx context.Context, r *model.Referral) error { return nil }
func (f *fakeReferralRepo) Get(ctx context.Context, id uuid.UUID) (*model.Referral, error) {
	return nil, assert.AnError
}
func (f *fakeReferralRepo) Update(ctx context.Context, r *model.Referral) error { return nil }
func (f *fakeReferralRepo) Delete(ctx context.Context, id uuid.UUID) error      { return nil }
func (f *fakeReferralRepo) List(ctx context.Context) ([]*model.Referral, error) {
	return f.referrals, nil
}

func newTestService(patients []*model.Patient, visits []*model.Visit, risks []*model.RiskEntry, referrals []*model.Referral) *Service {
	return NewService(
		&fakePatientRepo{patients: patients},
		&fakeVisitRepo{visits: visits},
		&fakeRiskRepo{risks: risks},
		&fakeReferralRepo{referrals: referrals},
		rbac.NewEngine(zerolog.Nop()),
		nil,
		zerolog.Nop(),
	)
}

func patientAged(age int, weeksPregnant int) *model.Patient {
	p := &model.Patient{
		Age:            age,
		LastPeriodDate: time.Now().AddDate(0, 0, -weeksPregnant*7),
	}
	p.ID = uuid.New()
	return p
}

func TestPartnerStatsAggregateTheFullStore(t *testing.T) {
	patients := []*model.Patient{patientAged(24, 10), patientAged(38, 30)}
	for _, p := range patients {
		p.DistrictID = uuid.New()
	}
	svc := newTestService(patients, nil, nil, nil)

	partner := &model.User{Role: model.RolePartnerNGO, RegionID: uuid.New()}
	partner.ID = uuid.New()

	stats, err := svc.AnonymizedStats(context.Background(), partner)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.TotalPatients, "partners consume aggregates over all records")
	assert.Equal(t, 1, stats.Ages.From18To25)
	assert.Equal(t, 1, stats.Ages.Over35)
}

func TestPartnerKPIsAggregateTheFullStore(t *testing.T) {
	patients := []*model.Patient{patientAged(24, 20), patientAged(30, 30)}
	visits := []*model.Visit{
		{PatientID: patients[0].ID, Type: model.VisitCPN1, Status: model.VisitDone},
	}
	risks := []*model.RiskEntry{{PatientID: patients[1].ID, Level: model.RiskRed}}

	partner := &model.User{Role: model.RolePartnerGovernment}
	partner.ID = uuid.New()

	kpis, err := newTestService(patients, visits, risks, nil).KPIs(context.Background(), partner)
	require.NoError(t, err)

	assert.Equal(t, 2, kpis.TotalPatients)
	assert.Equal(t, 1, kpis.CPN1Done)
	assert.Equal(t, 1, kpis.RisksRed)
}

func TestScopedStatsStayScoped(t *testing.T) {
	districtID := uuid.New()
	inDistrict := patientAged(24, 10)
	inDistrict.DistrictID = districtID
	elsewhere := patientAged(30, 10)
	elsewhere.DistrictID = uuid.New()
	svc := newTestService([]*model.Patient{inDistrict, elsewhere}, nil, nil, nil)

	manager := &model.User{Role: model.RoleDistrictManager, DistrictID: districtID}
	manager.ID = uuid.New()

	stats, err := svc.AnonymizedStats(context.Background(), manager)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalPatients)
}

func TestComputeStatsAgeBuckets(t *testing.T) {
	patients := []*model.Patient{
		patientAged(16, 8),
		patientAged(18, 8),
		patientAged(25, 8),
		patientAged(26, 8),
		patientAged(35, 8),
		patientAged(36, 8),
	}

	stats := ComputeStats(patients, time.Now())

	assert.Equal(t, 6, stats.TotalPatients)
	assert.Equal(t, 1, stats.Ages.Under18)
	assert.Equal(t, 2, stats.Ages.From18To25)
	assert.Equal(t, 2, stats.Ages.From26To35)
	assert.Equal(t, 1, stats.Ages.Over35)
}

func TestComputeStatsGestationBuckets(t *testing.T) {
	patients := []*model.Patient{
		patientAged(24, 10),
		patientAged(24, 12),
		patientAged(24, 13),
		patientAged(24, 26),
		patientAged(24, 27),
		patientAged(24, 38),
	}

	stats := ComputeStats(patients, time.Now())

	assert.Equal(t, 2, stats.Gestation.Trimester1)
	assert.Equal(t, 2, stats.Gestation.Trimester2)
	assert.Equal(t, 2, stats.Gestation.Trimester3)
}

func TestComputeStatsEmpty(t *testing.T) {
	stats := ComputeStats(nil, time.Now())
	assert.Equal(t, 0, stats.TotalPatients)
}

func TestComputeKPIsVisitCounts(t *testing.T) {
	patients := []*model.Patient{patientAged(24, 20), patientAged(30, 30)}
	visits := []*model.Visit{
		{Type: model.VisitCPN1, Status: model.VisitDone},
		{Type: model.VisitCPN1, Status: model.VisitDone},
		{Type: model.VisitCPN1, Status: model.VisitPlanned},
		{Type: model.VisitCPN4, Status: model.VisitDone},
		{Type: model.VisitCPON, Status: model.VisitDone},
	}

	kpis := ComputeKPIs(patients, visits, nil, nil)

	assert.Equal(t, 2, kpis.CPN1Done, "planned visits do not count")
	assert.Equal(t, 1, kpis.CPN4Done)
	assert.InDelta(t, 0.5, kpis.CPONRate, 0.001)
}

func TestComputeKPIsRiskLevels(t *testing.T) {
	risks := []*model.RiskEntry{
		{Level: model.RiskRed},
		{Level: model.RiskOrange},
		{Level: model.RiskOrange},
		{Level: model.RiskGreen},
	}

	kpis := ComputeKPIs(nil, nil, risks, nil)

	assert.Equal(t, 1, kpis.RisksRed)
	assert.Equal(t, 2, kpis.RisksOrange)
	assert.Equal(t, 1, kpis.RisksGreen)
}

func TestComputeKPIsReferralDelayIgnoresOpenTransfers(t *testing.T) {
	referrals := []*model.Referral{
		{TransferDelayMin: 30},
		{TransferDelayMin: 90},
		{TransferDelayMin: 0}, // still en route, no delay recorded yet
	}

	kpis := ComputeKPIs(nil, nil, nil, referrals)

	assert.InDelta(t, 60, kpis.ReferralDelayAvg, 0.001)
}

func TestComputeKPIsCoverage(t *testing.T) {
	active := patientAged(24, 20)
	active.CoverageStatus = model.CoverageActive
	renewal := patientAged(30, 20)
	renewal.CoverageStatus = model.CoverageRenewalDue
	pending := patientAged(19, 20)
	pending.CoverageStatus = model.CoveragePending

	kpis := ComputeKPIs([]*model.Patient{active, renewal, pending}, nil, nil, nil)

	assert.Equal(t, 1, kpis.CoverageActive)
	assert.Equal(t, 1, kpis.CoverageRenewal)
}
