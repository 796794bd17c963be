package model

import (
	"time"

	"github.com/google/uuid"
)

type CoverageStatus string

const (
	CoverageActive     CoverageStatus = "active"
	CoveragePending    CoverageStatus = "pending"
	CoverageRenewalDue CoverageStatus = "renewal_due"
)

// Patient is an enrolled pregnant woman. DistrictID and RegionID are resolved
// from the facility directory when the record is ingested, so every scope
// filter works off stable identifiers instead of display names.
type Patient struct {
	Base
	FirstName      string         `db:"first_name" json:"first_name"`
	LastName       string         `db:"last_name" json:"last_name"`
	Age            int            `db:"age" json:"age"`
	Phone          string         `db:"phone" json:"phone"`
	LastPeriodDate time.Time      `db:"last_period_date" json:"last_period_date"`
	DueDate        time.Time      `db:"due_date" json:"due_date"`
	GestationWeeks int            `db:"gestation_weeks" json:"gestation_weeks"`
	FacilityID     uuid.UUID      `db:"facility_id" json:"facility_id"`
	DistrictID     uuid.UUID      `db:"district_id" json:"district_id"`
	RegionID       uuid.UUID      `db:"region_id" json:"region_id"`
	AgentID        uuid.UUID      `db:"agent_id" json:"agent_id"`
	CoverageStatus CoverageStatus `db:"coverage_status" json:"coverage_status"`
	BirthPlan      string         `db:"birth_plan" json:"birth_plan,omitempty"`
	BMI            float64        `db:"bmi" json:"bmi,omitempty"`
	MUAC           float64        `db:"muac" json:"muac,omitempty"`
	WeightGain     float64        `db:"weight_gain" json:"weight_gain,omitempty"`
	Hemoglobin     float64        `db:"hemoglobin" json:"hemoglobin,omitempty"`
	EnrolledAt     time.Time      `db:"enrolled_at" json:"enrolled_at"`
}

type CreatePatientRequest struct {
	FirstName      string  `json:"first_name" binding:"required"`
	LastName       string  `json:"last_name" binding:"required"`
	Age            int     `json:"age" binding:"required,gt=0"`
	Phone          string  `json:"phone" binding:"required,sn_phone"`
	LastPeriodDate string  `json:"last_period_date" binding:"required"`
	FacilityID     string  `json:"facility_id" binding:"required"`
	BirthPlan      string  `json:"birth_plan"`
	BMI            float64 `json:"bmi"`
	MUAC           float64 `json:"muac"`
	Hemoglobin     float64 `json:"hemoglobin"`
}

type UpdatePatientRequest struct {
	FirstName      *string  `json:"first_name"`
	LastName       *string  `json:"last_name"`
	Age            *int     `json:"age"`
	Phone          *string  `json:"phone"`
	CoverageStatus *string  `json:"coverage_status"`
	BirthPlan      *string  `json:"birth_plan"`
	BMI            *float64 `json:"bmi"`
	MUAC           *float64 `json:"muac"`
	WeightGain     *float64 `json:"weight_gain"`
	Hemoglobin     *float64 `json:"hemoglobin"`
}

type PatientFilters struct {
	FacilityID     uuid.UUID      `form:"facility_id"`
	CoverageStatus CoverageStatus `form:"coverage_status"`
	SearchTerm     string         `form:"search_term"`
}
