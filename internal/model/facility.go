package model

import "github.com/google/uuid"

// FacilityKind matches the three tiers of the national health pyramid.
type FacilityKind string

const (
	FacilityHealthPost   FacilityKind = "health_post"
	FacilityHealthCenter FacilityKind = "health_center"
	FacilityHospital     FacilityKind = "hospital"
)

// Facility is a single health post, center or hospital. A facility belongs
// to exactly one district, a district to exactly one region; the directory
// uses these links to resolve record scope attributes at ingestion.
type Facility struct {
	Base
	Name       string       `db:"name" json:"name"`
	Kind       FacilityKind `db:"kind" json:"kind"`
	DistrictID uuid.UUID    `db:"district_id" json:"district_id"`
	RegionID   uuid.UUID    `db:"region_id" json:"region_id"`
	IsSonu     bool         `db:"is_sonu" json:"is_sonu"`
	Email      string       `db:"email" json:"email,omitempty"`
}

// District groups facilities.
type District struct {
	Base
	Name     string    `db:"name" json:"name"`
	RegionID uuid.UUID `db:"region_id" json:"region_id"`
}

// Region groups districts.
type Region struct {
	Base
	Name string `db:"name" json:"name"`
}
