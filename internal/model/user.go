package model

import (
	"time"

	"github.com/google/uuid"
)

type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
	UserStatusLocked   UserStatus = "locked"
)

// User is a dashboard account. The facility/district/region assignments are
// optional; which one must be present depends on the role's scope and is
// enforced by the scope validator before a session may start.
type User struct {
	Base
	FirstName        string     `db:"first_name" json:"first_name"`
	LastName         string     `db:"last_name" json:"last_name"`
	Email            string     `db:"email" json:"email"`
	Phone            string     `db:"phone" json:"phone"`
	Role             Role       `db:"role" json:"role"`
	FacilityID       uuid.UUID  `db:"facility_id" json:"facility_id,omitempty"`
	DistrictID       uuid.UUID  `db:"district_id" json:"district_id,omitempty"`
	RegionID         uuid.UUID  `db:"region_id" json:"region_id,omitempty"`
	PasswordHash     string     `db:"password_hash" json:"-"`
	Status           UserStatus `db:"status" json:"status"`
	LoginAttempts    int        `db:"login_attempts" json:"-"`
	LastLoginAttempt time.Time  `db:"last_login_attempt" json:"-"`
	LastLoginAt      *time.Time `db:"last_login_at" json:"last_login_at,omitempty"`
}

// DisplayName returns the name shown in the dashboard and recorded in the
// audit trail.
func (u *User) DisplayName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	return u.FirstName + " " + u.LastName
}

type CreateUserRequest struct {
	FirstName  string `json:"first_name" binding:"required"`
	LastName   string `json:"last_name" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Phone      string `json:"phone"`
	Role       Role   `json:"role" binding:"required"`
	FacilityID string `json:"facility_id"`
	DistrictID string `json:"district_id"`
	RegionID   string `json:"region_id"`
	Password   string `json:"password" binding:"required,min=8"`
}
