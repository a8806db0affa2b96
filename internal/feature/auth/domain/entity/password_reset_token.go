package entity

import "time"

// PasswordResetToken is a single-use capability to set a new password.
type PasswordResetToken struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"index;not null"`
	Token     string    `gorm:"uniqueIndex;size:64;not null"`
	ExpiresAt time.Time `gorm:"index;not null"`
	Used      bool      `gorm:"index;not null;default:false"`
	CreatedAt time.Time
}

// IsValid reports whether the token is unused and unexpired at now.
func (t *PasswordResetToken) IsValid(now time.Time) bool {
	return !t.Used && now.Before(t.ExpiresAt)
}
