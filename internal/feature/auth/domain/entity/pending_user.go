package entity

import "time"

// PendingUser stages a signup until its email address is confirmed.
// At most one row exists per email; its EmailVerification children are deleted with it.
type PendingUser struct {
	ID           uint      `gorm:"primaryKey"`
	Name         string    `gorm:"size:100;not null"`
	Email        string    `gorm:"uniqueIndex;size:120;not null"`
	PasswordHash string    `gorm:"size:255;not null"`
	CreatedAt    time.Time `gorm:"index;not null"`
	LastOTPSent  time.Time `gorm:"column:last_otp_sent;not null"`
	OTPAttempts  int       `gorm:"column:otp_attempts;not null;default:0"`
}

// IsExpired reports whether the registration is older than ttl at now.
func (p *PendingUser) IsExpired(now time.Time, ttl time.Duration) bool {
	return now.After(p.CreatedAt.Add(ttl))
}

// CanResend reports whether cooldown has elapsed since the last code was sent.
func (p *PendingUser) CanResend(now time.Time, cooldown time.Duration) bool {
	if p.LastOTPSent.IsZero() {
		return true
	}
	return !now.Before(p.LastOTPSent.Add(cooldown))
}

// EmailVerification is a single one-time code challenge for a PendingUser.
type EmailVerification struct {
	ID            uint      `gorm:"primaryKey"`
	PendingUserID uint      `gorm:"index;not null"`
	OTP           string    `gorm:"column:otp;size:6;not null"`
	ExpiresAt     time.Time `gorm:"index;not null"`
	Attempts      int       `gorm:"not null;default:0"`
	IsUsed        bool      `gorm:"index;not null;default:false"`
	CreatedAt     time.Time
}

// IsExpired reports whether the code has passed its expiry at now.
func (v *EmailVerification) IsExpired(now time.Time) bool {
	return now.After(v.ExpiresAt)
}
