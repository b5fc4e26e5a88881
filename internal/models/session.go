package models

import "time"

// Session binds an opaque identifier handed to a client to a user record.
// Only the user ID is persisted: every resolution re-fetches the current
// User, so profile changes are visible on the next request without re-login.
type Session struct {
	ID        string    `gorm:"primaryKey;size:64"`
	UserID    uint      `gorm:"not null;index"`
	ExpiresAt time.Time `gorm:"not null;index"`
	CreatedAt time.Time
}

// Expired reports whether the session is past its expiry at the given time.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
