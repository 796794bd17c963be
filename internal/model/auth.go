package model

import (
	"time"

	"github.com/google/uuid"
)

// Session is the persisted identity of an authenticated client. One session
// per user; a session older than the configured lifetime is expired and
// discarded on the next check.
type Session struct {
	UserID  uuid.UUID `json:"user_id"`
	Role    Role      `json:"role"`
	LoginAt time.Time `json:"login_at"`
}

// Expired reports whether the session has outlived maxAge at instant now.
func (s *Session) Expired(now time.Time, maxAge time.Duration) bool {
	return now.Sub(s.LoginAt) > maxAge
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        *User     `json:"user"`
}
