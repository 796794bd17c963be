package model

import (
	"time"

	"github.com/google/uuid"
)

type AgentStatus string

const (
	AgentEnrolled AgentStatus = "enrolled"
	AgentPending  AgentStatus = "pending"
	AgentRevoked  AgentStatus = "revoked"
)

// HealthAgent is a field worker enrolled into the mobile app by a facility
// manager. Enrollment issues a one-time code delivered over SMS.
type HealthAgent struct {
	Base
	FirstName      string      `db:"first_name" json:"first_name"`
	LastName       string      `db:"last_name" json:"last_name"`
	Phone          string      `db:"phone" json:"phone"`
	Email          string      `db:"email" json:"email,omitempty"`
	FacilityID     uuid.UUID   `db:"facility_id" json:"facility_id"`
	EnrollmentCode string      `db:"enrollment_code" json:"enrollment_code"`
	DownloadLink   string      `db:"download_link" json:"download_link"`
	Status         AgentStatus `db:"status" json:"status"`
	EnrolledBy     uuid.UUID   `db:"enrolled_by" json:"enrolled_by"`
}

type EnrollAgentRequest struct {
	FirstName  string `json:"first_name" binding:"required"`
	LastName   string `json:"last_name" binding:"required"`
	Phone      string `json:"phone" binding:"required,sn_phone"`
	Email      string `json:"email"`
	FacilityID string `json:"facility_id" binding:"required"`
}

type SMSStatus string

const (
	SMSSent    SMSStatus = "sent"
	SMSPending SMSStatus = "pending"
)

// SMSRecord is a delivered (simulated) SMS, kept for the enrollment history
// screen.
type SMSRecord struct {
	ID             uuid.UUID `db:"id" json:"id"`
	Phone          string    `db:"phone" json:"phone"`
	AgentID        uuid.UUID `db:"agent_id" json:"agent_id"`
	Content        string    `db:"content" json:"content"`
	EnrollmentCode string    `db:"enrollment_code" json:"enrollment_code"`
	Status         SMSStatus `db:"status" json:"status"`
	SentAt         time.Time `db:"sent_at" json:"sent_at"`
}
