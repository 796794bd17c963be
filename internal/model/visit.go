package model

import (
	"time"

	"github.com/google/uuid"
)

// VisitType distinguishes the four antenatal consultations and the
// postnatal one.
type VisitType string

const (
	VisitCPN1 VisitType = "CPN1"
	VisitCPN2 VisitType = "CPN2"
	VisitCPN3 VisitType = "CPN3"
	VisitCPN4 VisitType = "CPN4"
	VisitCPON VisitType = "CPON"
)

type VisitStatus string

const (
	VisitDone      VisitStatus = "done"
	VisitPlanned   VisitStatus = "planned"
	VisitUnplanned VisitStatus = "to_plan"
)

// Visit is a single antenatal or postnatal consultation. Visits are scoped
// transitively through their parent patient.
type Visit struct {
	Base
	PatientID     uuid.UUID   `db:"patient_id" json:"patient_id"`
	Type          VisitType   `db:"type" json:"type"`
	Date          time.Time   `db:"date" json:"date"`
	WeightKG      float64     `db:"weight_kg" json:"weight_kg"`
	BloodPressure string      `db:"blood_pressure" json:"blood_pressure"`
	MUAC          float64     `db:"muac" json:"muac"`
	BMI           float64     `db:"bmi" json:"bmi"`
	Hemoglobin    float64     `db:"hemoglobin" json:"hemoglobin,omitempty"`
	AgentID       uuid.UUID   `db:"agent_id" json:"agent_id"`
	FacilityID    uuid.UUID   `db:"facility_id" json:"facility_id"`
	ChecklistOK   bool        `db:"checklist_ok" json:"checklist_ok"`
	Status        VisitStatus `db:"status" json:"status"`
	ReminderSent  bool        `db:"reminder_sent" json:"reminder_sent"`
}

type CreateVisitRequest struct {
	PatientID     string    `json:"patient_id" binding:"required"`
	Type          VisitType `json:"type" binding:"required"`
	Date          string    `json:"date" binding:"required"`
	WeightKG      float64   `json:"weight_kg"`
	BloodPressure string    `json:"blood_pressure"`
	MUAC          float64   `json:"muac"`
	BMI           float64   `json:"bmi"`
	Hemoglobin    float64   `json:"hemoglobin"`
	ChecklistOK   bool      `json:"checklist_ok"`
}
