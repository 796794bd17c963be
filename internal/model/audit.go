package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AuditLog records one user action against one resource, successful or not.
type AuditLog struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	UserID       uuid.UUID       `db:"user_id" json:"user_id"`
	UserRole     Role            `db:"user_role" json:"user_role"`
	UserName     string          `db:"user_name" json:"user_name"`
	Action       Action          `db:"action" json:"action"`
	Resource     Resource        `db:"resource" json:"resource"`
	ResourceID   uuid.UUID       `db:"resource_id" json:"resource_id,omitempty"`
	Details      json.RawMessage `db:"details" json:"details,omitempty"`
	Success      bool            `db:"success" json:"success"`
	ErrorMessage string          `db:"error_message" json:"error_message,omitempty"`
	IPAddress    string          `db:"ip_address" json:"ip_address,omitempty"`
	UserAgent    string          `db:"user_agent" json:"user_agent,omitempty"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
}

// AuditFilters narrows audit queries.
type AuditFilters struct {
	UserID     uuid.UUID `form:"user_id"`
	Resource   Resource  `form:"resource"`
	ResourceID uuid.UUID `form:"resource_id"`
	StartDate  time.Time `form:"start_date"`
	EndDate    time.Time `form:"end_date"`
	FailedOnly bool      `form:"failed_only"`
}

// AuditStats summarizes the trail for the admin screen.
type AuditStats struct {
	TotalEntries      int64              `json:"total_entries"`
	SuccessfulActions int64              `json:"successful_actions"`
	FailedActions     int64              `json:"failed_actions"`
	ActionsByType     map[Action]int64   `json:"actions_by_type"`
	ResourcesByType   map[Resource]int64 `json:"resources_by_type"`
	RecentActivity    []*AuditLog        `json:"recent_activity"`
}
