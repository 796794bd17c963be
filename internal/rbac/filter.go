package rbac

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tekhe/dashboard-api/internal/model"
)

// Engine applies visibility scopes to record collections. It holds no state
// beyond a logger; every filter is a pure function of its inputs and returns
// a fresh slice without touching the originals.
type Engine struct {
	logger zerolog.Logger
}

func NewEngine(logger zerolog.Logger) *Engine {
	return &Engine{logger: logger}
}

// FilterPatients returns the subset of patients the user may see. A nil user
// or any missing scope attribute yields an empty result, never the full set.
func (e *Engine) FilterPatients(patients []*model.Patient, user *model.User) []*model.Patient {
	if user == nil {
		return []*model.Patient{}
	}

	scope, err := ScopeOf(user.Role)
	if err != nil {
		e.logger.Warn().Str("role", string(user.Role)).Msg("unknown role, access denied")
		return []*model.Patient{}
	}
	return e.filterPatientsByScope(scope, patients, user)
}

// filterPatientsByScope evaluates one scope as a single dispatch. No role
// currently resolves to the region or national scopes, but both stay
// implemented so a registry change cannot silently fall through to deny.
func (e *Engine) filterPatientsByScope(scope model.Scope, patients []*model.Patient, user *model.User) []*model.Patient {
	switch scope {
	case model.ScopeAnonymous:
		// Partners never see individual records.
		return []*model.Patient{}

	case model.ScopeOwn:
		if user.ID == uuid.Nil {
			e.logger.Warn().Str("role", string(user.Role)).Msg("front-line worker without identity, access denied")
			return []*model.Patient{}
		}
		return keepPatients(patients, func(p *model.Patient) bool {
			return p.AgentID == user.ID
		})

	case model.ScopeFacility:
		if user.FacilityID == uuid.Nil {
			e.logger.Warn().Str("user_id", user.ID.String()).Msg("facility manager without facility, access denied")
			return []*model.Patient{}
		}
		return keepPatients(patients, func(p *model.Patient) bool {
			return p.FacilityID == user.FacilityID
		})

	case model.ScopeDistrict:
		if user.DistrictID == uuid.Nil {
			e.logger.Warn().Str("user_id", user.ID.String()).Msg("district manager without district, access denied")
			return []*model.Patient{}
		}
		return keepPatients(patients, func(p *model.Patient) bool {
			return p.DistrictID == user.DistrictID
		})

	case model.ScopeRegion:
		if user.RegionID == uuid.Nil {
			e.logger.Warn().Str("user_id", user.ID.String()).Msg("regional user without region, access denied")
			return []*model.Patient{}
		}
		return keepPatients(patients, func(p *model.Patient) bool {
			return p.RegionID == user.RegionID
		})

	case model.ScopeNational:
		out := make([]*model.Patient, len(patients))
		copy(out, patients)
		return out

	default:
		e.logger.Warn().Str("scope", string(scope)).Msg("unknown scope, access denied")
		return []*model.Patient{}
	}
}

// CanAccessPatient reports whether the user may see one specific patient.
func (e *Engine) CanAccessPatient(p *model.Patient, user *model.User) bool {
	if p == nil || user == nil {
		return false
	}
	visible := e.FilterPatients([]*model.Patient{p}, user)
	return len(visible) == 1
}

// FilterVisits narrows visits to those belonging to a visible patient.
func (e *Engine) FilterVisits(visits []*model.Visit, patients []*model.Patient, user *model.User) []*model.Visit {
	ids, ok := e.visiblePatientIDs(patients, user)
	if !ok {
		return []*model.Visit{}
	}
	out := make([]*model.Visit, 0, len(visits))
	for _, v := range visits {
		if _, visible := ids[v.PatientID]; visible {
			out = append(out, v)
		}
	}
	return out
}

// FilterRiskEntries narrows risk entries to those of visible patients.
func (e *Engine) FilterRiskEntries(entries []*model.RiskEntry, patients []*model.Patient, user *model.User) []*model.RiskEntry {
	ids, ok := e.visiblePatientIDs(patients, user)
	if !ok {
		return []*model.RiskEntry{}
	}
	out := make([]*model.RiskEntry, 0, len(entries))
	for _, r := range entries {
		if _, visible := ids[r.PatientID]; visible {
			out = append(out, r)
		}
	}
	return out
}

// FilterReferrals narrows referrals to those of visible patients.
func (e *Engine) FilterReferrals(referrals []*model.Referral, patients []*model.Patient, user *model.User) []*model.Referral {
	ids, ok := e.visiblePatientIDs(patients, user)
	if !ok {
		return []*model.Referral{}
	}
	out := make([]*model.Referral, 0, len(referrals))
	for _, r := range referrals {
		if _, visible := ids[r.PatientID]; visible {
			out = append(out, r)
		}
	}
	return out
}

// visiblePatientIDs computes the id set of patients visible to the user.
// The second return is false when the result is known empty without looking
// at the patients (nil user or anonymous scope).
func (e *Engine) visiblePatientIDs(patients []*model.Patient, user *model.User) (map[uuid.UUID]struct{}, bool) {
	if user == nil {
		return nil, false
	}
	if scope, err := ScopeOf(user.Role); err == nil && scope == model.ScopeAnonymous {
		return nil, false
	}
	visible := e.FilterPatients(patients, user)
	ids := make(map[uuid.UUID]struct{}, len(visible))
	for _, p := range visible {
		ids[p.ID] = struct{}{}
	}
	return ids, true
}

func keepPatients(patients []*model.Patient, keep func(*model.Patient) bool) []*model.Patient {
	out := make([]*model.Patient, 0, len(patients))
	for _, p := range patients {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}
