package domain

import "time"

// Session is one device login. At most one row exists per (user, device):
// repeated logins from the same device label update the row in place through
// an atomic upsert rather than appending. Invalidation is soft — the row
// stays until the account is deleted.
type Session struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	UserID           uint      `gorm:"uniqueIndex:idx_user_device;not null" json:"user_id"`
	Device           string    `gorm:"size:128;uniqueIndex:idx_user_device;not null" json:"device"`
	SessionID        string    `gorm:"size:64;index;not null" json:"session_id"`
	RefreshTokenHash *string   `gorm:"size:128" json:"-"`
	FirstLogin       time.Time `gorm:"not null" json:"first_login"`
	LatestLogin      time.Time `gorm:"not null" json:"latest_login"`
	IsActive         bool      `gorm:"not null;default:false" json:"is_active"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
