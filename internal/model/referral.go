package model

import (
	"time"

	"github.com/google/uuid"
)

type ReferralStatus string

const (
	ReferralAlert    ReferralStatus = "alert"
	ReferralEnRoute  ReferralStatus = "en_route"
	ReferralAdmitted ReferralStatus = "admitted"
	ReferralResolved ReferralStatus = "resolved"
)

// Referral tracks an emergency obstetric referral from the originating
// facility to a SONU facility, with timestamps for each leg of the chain.
type Referral struct {
	Base
	PatientID          uuid.UUID      `db:"patient_id" json:"patient_id"`
	AlertType          string         `db:"alert_type" json:"alert_type"`
	Status             ReferralStatus `db:"status" json:"status"`
	OriginFacilityID   uuid.UUID      `db:"origin_facility_id" json:"origin_facility_id"`
	SonuFacilityID     uuid.UUID      `db:"sonu_facility_id" json:"sonu_facility_id"`
	AlertedAt          time.Time      `db:"alerted_at" json:"alerted_at"`
	TransportAt        *time.Time     `db:"transport_at" json:"transport_at,omitempty"`
	AdmittedAt         *time.Time     `db:"admitted_at" json:"admitted_at,omitempty"`
	CounterReferralAt  *time.Time     `db:"counter_referral_at" json:"counter_referral_at,omitempty"`
	TransferDelayMin   int            `db:"transfer_delay_min" json:"transfer_delay_min,omitempty"`
}

type CreateReferralRequest struct {
	PatientID      string `json:"patient_id" binding:"required"`
	AlertType      string `json:"alert_type" binding:"required"`
	SonuFacilityID string `json:"sonu_facility_id" binding:"required"`
}

type UpdateReferralStatusRequest struct {
	Status ReferralStatus `json:"status" binding:"required"`
}
