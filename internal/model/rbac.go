package model

// Role identifies one of the six fixed account roles. Roles are assigned at
// account creation and never change afterwards.
type Role string

const (
	RoleFrontLineWorker   Role = "front_line_worker"
	RoleFacilityManager   Role = "facility_manager"
	RoleDistrictManager   Role = "district_manager"
	RolePartnerNGO        Role = "partner_ngo"
	RolePartnerRegional   Role = "partner_regional"
	RolePartnerGovernment Role = "partner_government"
)

// Roles lists every known role, in the order they appear in the
// permissions matrix.
var Roles = []Role{
	RoleFrontLineWorker,
	RoleFacilityManager,
	RoleDistrictManager,
	RolePartnerNGO,
	RolePartnerRegional,
	RolePartnerGovernment,
}

// Scope is the organizational breadth of records a role may view.
// Every role maps to exactly one scope.
type Scope string

const (
	ScopeOwn       Scope = "own"       // only records owned by the user
	ScopeFacility  Scope = "facility"  // all records of the user's facility
	ScopeDistrict  Scope = "district"  // all records of the user's district
	ScopeRegion    Scope = "region"    // all records of the user's region
	ScopeNational  Scope = "national"  // every record
	ScopeAnonymous Scope = "anonymous" // aggregated statistics only, no records
)

// Resource is a kind of data the permission system governs.
type Resource string

const (
	ResourcePatient     Resource = "patient"
	ResourceVisit       Resource = "visit"
	ResourceRisk        Resource = "risk"
	ResourceReferral    Resource = "referral"
	ResourceCoverage    Resource = "csu"
	ResourceVaccination Resource = "pev"
	ResourceNutrition   Resource = "nutrition"
	ResourceExport      Resource = "dhis2"
	ResourceAnalytics   Resource = "analytics"
	ResourceFacility    Resource = "facility"
	ResourcePersonnel   Resource = "personnel"
	ResourceAgent       Resource = "agent"
)

// Action is an operation a role may perform on a resource.
type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionExport Action = "export"
	ActionImport Action = "import"
)

// Permission pairs a resource with an action. Using a structured key rather
// than a "resource:action" string keeps permission checks type-safe.
type Permission struct {
	Resource Resource `json:"resource"`
	Action   Action   `json:"action"`
}

func (p Permission) String() string {
	return string(p.Resource) + ":" + string(p.Action)
}
