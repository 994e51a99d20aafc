package domain

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is the account aggregate. PasswordHash is nil for accounts created
// through Google sign-in until the user claims the account with a password.
type User struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	Username     string  `gorm:"size:64;uniqueIndex;not null" json:"username"`
	Email        string  `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Name         string  `gorm:"size:255;not null" json:"name"`
	PasswordHash *string `gorm:"size:128" json:"-"`
	GoogleID     *string `gorm:"size:255;uniqueIndex" json:"-"`
	AvatarURL    string  `gorm:"size:512" json:"avatar_url,omitempty"`
	Role         string  `gorm:"size:16;not null;default:user" json:"role"`
	IsVerified   bool    `gorm:"not null;default:false" json:"is_verified"`

	// Verification and reset tokens are stored as sha256 hashes; the raw
	// values only ever travel inside the emailed links.
	VerifyTokenHash *string    `gorm:"size:128;index" json:"-"`
	VerifyExpiresAt *time.Time `json:"-"`
	ResetTokenHash  *string    `gorm:"size:128;index" json:"-"`
	ResetExpiresAt  *time.Time `json:"-"`

	Sessions  []Session `gorm:"constraint:OnDelete:CASCADE" json:"sessions,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}
