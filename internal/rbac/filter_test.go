package rbac

import (
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tekhe/dashboard-api/internal/model"
)

var (
	facilityPikine  = uuid.New()
	facilityRufisque = uuid.New()
	districtPikine  = uuid.New()
	districtRufisque = uuid.New()
	regionDakar     = uuid.New()
	regionThies     = uuid.New()
	agentAminata    = uuid.New()
	agentKhady      = uuid.New()
)

func newTestEngine() *Engine {
	return NewEngine(zerolog.Nop())
}

func testPatients() []*model.Patient {
	p1 := &model.Patient{
		FacilityID: facilityPikine,
		DistrictID: districtPikine,
		RegionID:   regionDakar,
		AgentID:    agentAminata,
	}
	p1.ID = uuid.New()
	p2 := &model.Patient{
		FacilityID: facilityRufisque,
		DistrictID: districtRufisque,
		RegionID:   regionDakar,
		AgentID:    agentKhady,
	}
	p2.ID = uuid.New()
	p3 := &model.Patient{
		FacilityID: facilityRufisque,
		DistrictID: districtRufisque,
		RegionID:   regionThies,
		AgentID:    agentKhady,
	}
	p3.ID = uuid.New()
	return []*model.Patient{p1, p2, p3}
}

func frontLineWorker(id uuid.UUID) *model.User {
	u := &model.User{Role: model.RoleFrontLineWorker, FirstName: "Aminata", LastName: "Sall"}
	u.ID = id
	return u
}

func facilityManager(facility uuid.UUID) *model.User {
	u := &model.User{Role: model.RoleFacilityManager, FacilityID: facility}
	u.ID = uuid.New()
	return u
}

func districtManager(district uuid.UUID) *model.User {
	u := &model.User{Role: model.RoleDistrictManager, DistrictID: district}
	u.ID = uuid.New()
	return u
}

func TestFilterPatientsOwnScope(t *testing.T) {
	e := newTestEngine()
	patients := testPatients()

	got := e.FilterPatients(patients, frontLineWorker(agentAminata))
	require.Len(t, got, 1)
	assert.Equal(t, patients[0].ID, got[0].ID)
}

func TestFilterPatientsOwnScopeMissingIdentity(t *testing.T) {
	e := newTestEngine()
	got := e.FilterPatients(testPatients(), frontLineWorker(uuid.Nil))
	assert.Empty(t, got, "owner scope without identity must fail closed")
}

func TestFilterPatientsFacilityScope(t *testing.T) {
	e := newTestEngine()
	patients := testPatients()

	got := e.FilterPatients(patients, facilityManager(facilityRufisque))
	require.Len(t, got, 2)
	for _, p := range got {
		assert.Equal(t, facilityRufisque, p.FacilityID)
	}
}

// The one load-bearing invariant of the whole engine: a scoped role with a
// missing attribute sees nothing, never everything.
func TestFilterPatientsFailClosed(t *testing.T) {
	e := newTestEngine()
	patients := testPatients()

	tests := []struct {
		name string
		user *model.User
	}{
		{"facility manager without facility", facilityManager(uuid.Nil)},
		{"district manager without district", districtManager(uuid.Nil)},
		{"nil user", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.FilterPatients(patients, tt.user)
			assert.Empty(t, got)
		})
	}
}

func TestFilterPatientsDistrictScope(t *testing.T) {
	e := newTestEngine()
	patients := testPatients()

	got := e.FilterPatients(patients, districtManager(districtPikine))
	require.Len(t, got, 1)
	assert.Equal(t, patients[0].ID, got[0].ID)

	got = e.FilterPatients(patients, districtManager(districtRufisque))
	assert.Len(t, got, 2)
}

func TestFilterPatientsAnonymousScope(t *testing.T) {
	e := newTestEngine()
	patients := testPatients()

	for _, role := range []model.Role{model.RolePartnerNGO, model.RolePartnerRegional, model.RolePartnerGovernment} {
		u := &model.User{Role: role, RegionID: regionDakar}
		u.ID = uuid.New()
		assert.Empty(t, e.FilterPatients(patients, u), "role %s", role)
	}
}

func TestFilterPatientsUnknownRole(t *testing.T) {
	e := newTestEngine()
	u := &model.User{Role: model.Role("intruder")}
	u.ID = uuid.New()
	assert.Empty(t, e.FilterPatients(testPatients(), u))
}

func TestFilterPatientsNationalScopeIdentity(t *testing.T) {
	e := newTestEngine()
	patients := testPatients()

	u := &model.User{Role: model.RoleDistrictManager}
	u.ID = uuid.New()
	got := e.filterPatientsByScope(model.ScopeNational, patients, u)

	require.Len(t, got, len(patients))
	for i := range patients {
		assert.Equal(t, patients[i].ID, got[i].ID, "order must be preserved")
	}
}

func TestFilterPatientsRegionScope(t *testing.T) {
	e := newTestEngine()
	patients := testPatients()

	u := &model.User{Role: model.RoleDistrictManager, RegionID: regionDakar}
	u.ID = uuid.New()
	got := e.filterPatientsByScope(model.ScopeRegion, patients, u)
	assert.Len(t, got, 2)

	u.RegionID = uuid.Nil
	assert.Empty(t, e.filterPatientsByScope(model.ScopeRegion, patients, u))
}

func TestFilterPatientsUnknownScopeFailsClosed(t *testing.T) {
	e := newTestEngine()
	u := districtManager(districtPikine)
	assert.Empty(t, e.filterPatientsByScope(model.Scope("galaxy"), testPatients(), u))
}

func TestFilterPatientsDoesNotMutateInput(t *testing.T) {
	e := newTestEngine()
	patients := testPatients()
	before := make([]*model.Patient, len(patients))
	copy(before, patients)

	e.FilterPatients(patients, districtManager(districtRufisque))

	assert.Equal(t, before, patients)
}

func TestCanAccessPatient(t *testing.T) {
	e := newTestEngine()
	patients := testPatients()

	assert.True(t, e.CanAccessPatient(patients[0], frontLineWorker(agentAminata)))
	assert.False(t, e.CanAccessPatient(patients[1], frontLineWorker(agentAminata)))
	assert.False(t, e.CanAccessPatient(patients[0], nil))
	assert.False(t, e.CanAccessPatient(nil, frontLineWorker(agentAminata)))
}

func testVisits(patients []*model.Patient) []*model.Visit {
	var visits []*model.Visit
	for i, p := range patients {
		v := &model.Visit{PatientID: p.ID, Type: model.VisitCPN1}
		v.ID = uuid.New()
		visits = append(visits, v)
		if i == 0 {
			v2 := &model.Visit{PatientID: p.ID, Type: model.VisitCPN2}
			v2.ID = uuid.New()
			visits = append(visits, v2)
		}
	}
	return visits
}

func TestFilterVisitsConsistentWithPatients(t *testing.T) {
	e := newTestEngine()
	patients := testPatients()
	visits := testVisits(patients)

	user := facilityManager(facilityPikine)
	visiblePatients := e.FilterPatients(patients, user)
	visibleIDs := map[uuid.UUID]bool{}
	for _, p := range visiblePatients {
		visibleIDs[p.ID] = true
	}

	got := e.FilterVisits(visits, patients, user)
	require.Len(t, got, 2)
	for _, v := range got {
		assert.True(t, visibleIDs[v.PatientID], "visit leaked for invisible patient")
	}
}

func TestFilterRiskEntries(t *testing.T) {
	e := newTestEngine()
	patients := testPatients()
	entries := []*model.RiskEntry{
		{PatientID: patients[0].ID, Level: model.RiskRed},
		{PatientID: patients[1].ID, Level: model.RiskGreen},
	}

	got := e.FilterRiskEntries(entries, patients, frontLineWorker(agentAminata))
	require.Len(t, got, 1)
	assert.Equal(t, patients[0].ID, got[0].PatientID)
}

func TestFilterReferrals(t *testing.T) {
	e := newTestEngine()
	patients := testPatients()
	referrals := []*model.Referral{
		{PatientID: patients[0].ID, Status: model.ReferralAlert},
		{PatientID: patients[2].ID, Status: model.ReferralAdmitted},
	}

	got := e.FilterReferrals(referrals, patients, districtManager(districtRufisque))
	require.Len(t, got, 1)
	assert.Equal(t, patients[2].ID, got[0].PatientID)
}

func TestDerivedFiltersAnonymousShortCircuit(t *testing.T) {
	e := newTestEngine()
	patients := testPatients()
	visits := testVisits(patients)

	partner := &model.User{Role: model.RolePartnerNGO}
	partner.ID = uuid.New()

	assert.Empty(t, e.FilterVisits(visits, patients, partner))
	assert.Empty(t, e.FilterRiskEntries([]*model.RiskEntry{{PatientID: patients[0].ID}}, patients, partner))
	assert.Empty(t, e.FilterReferrals([]*model.Referral{{PatientID: patients[0].ID}}, patients, partner))
}
