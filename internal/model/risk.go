package model

import (
	"time"

	"github.com/google/uuid"
)

type RiskLevel string

const (
	RiskRed    RiskLevel = "red"
	RiskOrange RiskLevel = "orange"
	RiskGreen  RiskLevel = "green"
)

// RiskEntry is a scored risk assessment produced by the screening rules for
// one patient. Like visits, risk entries carry no location of their own and
// are scoped through the parent patient.
type RiskEntry struct {
	Base
	PatientID      uuid.UUID `db:"patient_id" json:"patient_id"`
	Score          int       `db:"score" json:"score"`
	Level          RiskLevel `db:"level" json:"level"`
	Factors        []string  `db:"-" json:"factors"`
	FactorsRaw     []byte    `db:"factors" json:"-"`
	Rule           string    `db:"rule" json:"rule"`
	Prediction     string    `db:"prediction" json:"prediction,omitempty"`
	GestationWeeks int       `db:"gestation_weeks" json:"gestation_weeks"`
	AssessedAt     time.Time `db:"assessed_at" json:"assessed_at"`
}

type RiskFilters struct {
	Level RiskLevel `form:"level"`
}
