package rbac

import (
	"github.com/google/uuid"

	"github.com/tekhe/dashboard-api/internal/model"
)

// Validation is the outcome of a scope-configuration check, with one
// human-readable message per violation.
type Validation struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// ValidateUserScope checks that the user carries the location attribute its
// scope requires. A user failing this check must never start a session:
// letting it through would either hide all data or, worse, tempt callers
// into widening defaults. Role validity itself is not checked here; roles
// come from a closed enum upstream and unknown ones surface as their own
// error wherever the registry is consulted.
func ValidateUserScope(user *model.User) Validation {
	var errs []string

	scope, err := ScopeOf(user.Role)
	if err != nil {
		errs = append(errs, "user role is not recognized")
		return Validation{Valid: false, Errors: errs}
	}

	if scope == model.ScopeFacility && user.FacilityID == uuid.Nil {
		errs = append(errs, "a facility-scoped user must have an assigned facility")
	}
	if scope == model.ScopeDistrict && user.DistrictID == uuid.Nil {
		errs = append(errs, "a district-scoped user must have an assigned district")
	}
	if scope == model.ScopeRegion && user.RegionID == uuid.Nil {
		errs = append(errs, "a region-scoped user must have an assigned region")
	}

	return Validation{Valid: len(errs) == 0, Errors: errs}
}
