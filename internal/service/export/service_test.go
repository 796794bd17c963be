package export

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
	"github.com/tekhe/dashboard-api/internal/service/audit"
	apperrors "github.com/tekhe/dashboard-api/pkg/errors"
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

type capturingAuditRepo struct {
	logs []*model.AuditLog
}

func (f *capturingAuditRepo) Create(ctx context.Context, log *model.AuditLog) error {
	f.logs = append(f.logs, log)
	return nil
}
func (f *capturingAuditRepo) List(ctx context.Context, filters *model.AuditFilters) ([]*model.AuditLog, error) {
	return nil, nil
}
func (f *capturingAuditRepo) Stats(ctx context.Context) (*model.AuditStats, error) { return nil, nil }
func (f *capturingAuditRepo) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

func newTestService(auditRepo *capturingAuditRepo, patients []*model.Patient) *Service {
	return NewService(
		&fakePatientRepo{patients: patients},
		&fakeVisitRepo{},
		&fakeRiskRepo{},
		&fakeReferralRepo{},
		rbac.NewEngine(zerolog.Nop()),
		audit.NewService(auditRepo, zerolog.Nop()),
	)
}

func districtManager(districtID uuid.UUID) *model.User {
	u := &model.User{Role: model.RoleDistrictManager, DistrictID: districtID}
	u.ID = uuid.New()
	return u
}

func TestDHIS2ExportScopedToDistrict(t *testing.T) {
	districtID := uuid.New()
	inDistrict := &model.Patient{DistrictID: districtID}
	inDistrict.ID = uuid.New()
	elsewhere := &model.Patient{DistrictID: uuid.New()}
	elsewhere.ID = uuid.New()

	auditRepo := &capturingAuditRepo{}
	svc := newTestService(auditRepo, []*model.Patient{inDistrict, elsewhere})

	set, err := svc.DHIS2DataValueSet(context.Background(), districtManager(districtID), "SN_DIST_LOUGA", time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, "TEKHE_MATERNAL_MONTHLY", set.DataSet)
	assert.Equal(t, "202607", set.Period)
	require.NotEmpty(t, set.DataValues)
	assert.Equal(t, "TEKHE_PATIENTS_ENROLLED", set.DataValues[0].DataElement)
	assert.Equal(t, "1", set.DataValues[0].Value, "only the caller's district counts")

	require.Len(t, auditRepo.logs, 1)
	assert.True(t, auditRepo.logs[0].Success)
}

func TestDHIS2ExportDeniedIsAudited(t *testing.T) {
	auditRepo := &capturingAuditRepo{}
	svc := newTestService(auditRepo, nil)

	partner := &model.User{Role: model.RolePartnerNGO, RegionID: uuid.New()}
	partner.ID = uuid.New()

	_, err := svc.DHIS2DataValueSet(context.Background(), partner, "SN_DIST_LOUGA", time.Now())
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrForbidden, appErr.Code)

	require.Len(t, auditRepo.logs, 1)
	assert.False(t, auditRepo.logs[0].Success)
}

func TestBuildDataValueSet(t *testing.T) {
	kpis := &model.KPISummary{
		TotalPatients:  42,
		CPN1Done:       30,
		CPN4Done:       12,
		RisksRed:       3,
		RisksOrange:    7,
		RisksGreen:     32,
		CoverageActive: 25,
	}
	period := time.Date(2026, 7, 15, 0, 0, 0, 0, time.UTC)
	completed := time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC)

	set := BuildDataValueSet(kpis, "SN_DIST_LOUGA", period, completed)

	assert.Equal(t, "TEKHE_MATERNAL_MONTHLY", set.DataSet)
	assert.Equal(t, "202607", set.Period)
	assert.Equal(t, "2026-08-02", set.CompleteDate)
	assert.Equal(t, "SN_DIST_LOUGA", set.OrgUnit)
	require.Len(t, set.DataValues, 7)

	byElement := make(map[string]string)
	for _, v := range set.DataValues {
		byElement[v.DataElement] = v.Value
		assert.Equal(t, "202607", v.Period)
		assert.Equal(t, "SN_DIST_LOUGA", v.OrgUnit)
	}
	assert.Equal(t, "42", byElement["TEKHE_PATIENTS_ENROLLED"])
	assert.Equal(t, "30", byElement["TEKHE_CPN1_DONE"])
	assert.Equal(t, "12", byElement["TEKHE_CPN4_DONE"])
	assert.Equal(t, "3", byElement["TEKHE_RISKS_RED"])
	assert.Equal(t, "7", byElement["TEKHE_RISKS_ORANGE"])
	assert.Equal(t, "32", byElement["TEKHE_RISKS_GREEN"])
	assert.Equal(t, "25", byElement["TEKHE_COVERAGE_ACTIVE"])
}
