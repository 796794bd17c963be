// Package rbac implements the role-based data-scoping engine behind every
// dashboard view: a static role-permission registry, a visibility-scope
// resolver, and the filters that narrow each record collection to what the
// requesting user is allowed to see.
//
// The registry is defined once at process start and never mutated. All
// lookups are O(1). Filtering is pure: inputs are never modified and no state
// is retained between calls. The single load-bearing rule throughout is
// fail-closed: whenever an attribute needed to evaluate a scope is missing,
// the result is empty, never everything.
package rbac

import (
	"errors"
	"fmt"

	"github.com/tekhe/dashboard-api/internal/model"
)

// ErrUnknownRole is returned when a role outside the fixed enum reaches the
// registry. That is a provisioning defect, so callers get an explicit error
// rather than a silent deny.
var ErrUnknownRole = errors.New("unknown role")

type roleGrant struct {
	scope       model.Scope
	permissions map[model.Permission]struct{}
}

func grant(scope model.Scope, perms ...model.Permission) roleGrant {
	set := make(map[model.Permission]struct{}, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}
	return roleGrant{scope: scope, permissions: set}
}

func perm(r model.Resource, a model.Action) model.Permission {
	return model.Permission{Resource: r, Action: a}
}

// registry maps each role to its capability set and exactly one visibility
// scope. Front-line workers see only their own enrollments, facility and
// district managers see their unit, partners get aggregated statistics only.
var registry = map[model.Role]roleGrant{
	model.RoleFrontLineWorker: grant(model.ScopeOwn,
		perm(model.ResourcePatient, model.ActionCreate),
		perm(model.ResourcePatient, model.ActionRead),
		perm(model.ResourcePatient, model.ActionUpdate),
		perm(model.ResourceVisit, model.ActionCreate),
		perm(model.ResourceVisit, model.ActionRead),
		perm(model.ResourceVisit, model.ActionUpdate),
		perm(model.ResourceRisk, model.ActionRead),
		perm(model.ResourceReferral, model.ActionCreate),
		perm(model.ResourceReferral, model.ActionRead),
		perm(model.ResourceCoverage, model.ActionCreate),
		perm(model.ResourceCoverage, model.ActionRead),
		perm(model.ResourceCoverage, model.ActionUpdate),
		perm(model.ResourceVaccination, model.ActionCreate),
		perm(model.ResourceVaccination, model.ActionRead),
		perm(model.ResourceVaccination, model.ActionUpdate),
		perm(model.ResourceNutrition, model.ActionCreate),
		perm(model.ResourceNutrition, model.ActionRead),
		perm(model.ResourceNutrition, model.ActionUpdate),
	),
	model.RoleFacilityManager: grant(model.ScopeFacility,
		perm(model.ResourcePatient, model.ActionCreate),
		perm(model.ResourcePatient, model.ActionRead),
		perm(model.ResourcePatient, model.ActionUpdate),
		perm(model.ResourceVisit, model.ActionCreate),
		perm(model.ResourceVisit, model.ActionRead),
		perm(model.ResourceVisit, model.ActionUpdate),
		perm(model.ResourceRisk, model.ActionRead),
		perm(model.ResourceRisk, model.ActionUpdate),
		perm(model.ResourceReferral, model.ActionCreate),
		perm(model.ResourceReferral, model.ActionRead),
		perm(model.ResourceReferral, model.ActionUpdate),
		perm(model.ResourceCoverage, model.ActionCreate),
		perm(model.ResourceCoverage, model.ActionRead),
		perm(model.ResourceCoverage, model.ActionUpdate),
		perm(model.ResourceVaccination, model.ActionCreate),
		perm(model.ResourceVaccination, model.ActionRead),
		perm(model.ResourceVaccination, model.ActionUpdate),
		perm(model.ResourceNutrition, model.ActionCreate),
		perm(model.ResourceNutrition, model.ActionRead),
		perm(model.ResourceNutrition, model.ActionUpdate),
		perm(model.ResourcePersonnel, model.ActionRead),
		perm(model.ResourceFacility, model.ActionRead),
		perm(model.ResourceAnalytics, model.ActionRead),
		perm(model.ResourceAgent, model.ActionCreate),
		perm(model.ResourceAgent, model.ActionRead),
		perm(model.ResourceAgent, model.ActionUpdate),
	),
	model.RoleDistrictManager: grant(model.ScopeDistrict,
		perm(model.ResourcePatient, model.ActionCreate),
		perm(model.ResourcePatient, model.ActionRead),
		perm(model.ResourcePatient, model.ActionUpdate),
		perm(model.ResourcePatient, model.ActionDelete),
		perm(model.ResourceVisit, model.ActionCreate),
		perm(model.ResourceVisit, model.ActionRead),
		perm(model.ResourceVisit, model.ActionUpdate),
		perm(model.ResourceVisit, model.ActionDelete),
		perm(model.ResourceRisk, model.ActionRead),
		perm(model.ResourceRisk, model.ActionUpdate),
		perm(model.ResourceReferral, model.ActionCreate),
		perm(model.ResourceReferral, model.ActionRead),
		perm(model.ResourceReferral, model.ActionUpdate),
		perm(model.ResourceReferral, model.ActionDelete),
		perm(model.ResourceCoverage, model.ActionCreate),
		perm(model.ResourceCoverage, model.ActionRead),
		perm(model.ResourceCoverage, model.ActionUpdate),
		perm(model.ResourceVaccination, model.ActionCreate),
		perm(model.ResourceVaccination, model.ActionRead),
		perm(model.ResourceVaccination, model.ActionUpdate),
		perm(model.ResourceNutrition, model.ActionCreate),
		perm(model.ResourceNutrition, model.ActionRead),
		perm(model.ResourceNutrition, model.ActionUpdate),
		perm(model.ResourcePersonnel, model.ActionRead),
		perm(model.ResourcePersonnel, model.ActionUpdate),
		perm(model.ResourceFacility, model.ActionRead),
		perm(model.ResourceFacility, model.ActionUpdate),
		perm(model.ResourceExport, model.ActionExport),
		perm(model.ResourceAnalytics, model.ActionRead),
		perm(model.ResourceAnalytics, model.ActionExport),
		perm(model.ResourceAgent, model.ActionCreate),
		perm(model.ResourceAgent, model.ActionRead),
		perm(model.ResourceAgent, model.ActionUpdate),
		perm(model.ResourceAgent, model.ActionDelete),
	),
	model.RolePartnerNGO: grant(model.ScopeAnonymous,
		perm(model.ResourceAnalytics, model.ActionRead),
	),
	model.RolePartnerRegional: grant(model.ScopeAnonymous,
		perm(model.ResourceAnalytics, model.ActionRead),
		perm(model.ResourceAnalytics, model.ActionExport),
	),
	model.RolePartnerGovernment: grant(model.ScopeAnonymous,
		perm(model.ResourceAnalytics, model.ActionRead),
		perm(model.ResourceAnalytics, model.ActionExport),
		perm(model.ResourceExport, model.ActionRead),
	),
}

// sensitivePermissions carry a confirmation dialog in the UI. Informational
// only; the registry enforces nothing extra for them.
var sensitivePermissions = map[model.Permission]struct{}{
	perm(model.ResourcePatient, model.ActionDelete):  {},
	perm(model.ResourceVisit, model.ActionDelete):    {},
	perm(model.ResourceReferral, model.ActionDelete): {},
	perm(model.ResourceExport, model.ActionExport):   {},
}

// ScopeOf returns the visibility scope of a role. The mapping is total over
// the role enum and stable across calls.
func ScopeOf(role model.Role) (model.Scope, error) {
	g, ok := registry[role]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}
	return g.scope, nil
}

// HasPermission reports whether role may perform action on resource.
func HasPermission(role model.Role, resource model.Resource, action model.Action) (bool, error) {
	g, ok := registry[role]
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}
	_, granted := g.permissions[perm(resource, action)]
	return granted, nil
}

// HasAnyAccess reports whether role holds at least one permission on the
// resource, regardless of action.
func HasAnyAccess(role model.Role, resource model.Resource) (bool, error) {
	g, ok := registry[role]
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}
	for p := range g.permissions {
		if p.Resource == resource {
			return true, nil
		}
	}
	return false, nil
}

// PermissionsOf returns the full permission set of a role.
func PermissionsOf(role model.Role) ([]model.Permission, error) {
	g, ok := registry[role]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}
	perms := make([]model.Permission, 0, len(g.permissions))
	for p := range g.permissions {
		perms = append(perms, p)
	}
	return perms, nil
}

// AvailableActions returns the actions role may take on resource.
func AvailableActions(role model.Role, resource model.Resource) ([]model.Action, error) {
	perms, err := PermissionsOf(role)
	if err != nil {
		return nil, err
	}
	var actions []model.Action
	for _, p := range perms {
		if p.Resource == resource {
			actions = append(actions, p.Action)
		}
	}
	return actions, nil
}

// IsSensitive reports whether the permission should be confirmed by the user
// before executing.
func IsSensitive(p model.Permission) bool {
	_, ok := sensitivePermissions[p]
	return ok
}

// Matrix returns the complete role-permission table for the admin screen.
func Matrix() map[model.Role][]model.Permission {
	m := make(map[model.Role][]model.Permission, len(registry))
	for role := range registry {
		perms, _ := PermissionsOf(role)
		m[role] = perms
	}
	return m
}
