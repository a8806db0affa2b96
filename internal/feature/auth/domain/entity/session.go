package entity

import "time"

// Session represents a refresh credential issued to a user.
// The ID is the opaque refresh token handed to the client.
// When Redis is configured the same struct is stored as JSON instead of a sessions row.
type Session struct {
	ID        string     `gorm:"primaryKey;size:64" json:"id"`     // Refresh token value (64-character hex string)
	UserID    uint       `gorm:"index;not null" json:"user_id"`    // Associated user ID
	UserAgent string     `gorm:"size:512" json:"user_agent"`       // Client's User-Agent header
	IPAddress string     `gorm:"size:45" json:"ip_address"`        // Client's IP address, sized for IPv6
	CreatedAt time.Time  `gorm:"index;not null" json:"created_at"` // Session creation time
	ExpiresAt time.Time  `gorm:"index;not null" json:"expires_at"` // Session expiration time
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`          // Revocation time (nil if active)
}

// IsExpiredAt returns true if the session has passed its expiration time at now.
func (s *Session) IsExpiredAt(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// IsRevoked returns true if the session has been revoked.
func (s *Session) IsRevoked() bool {
	return s.RevokedAt != nil
}

// IsValidAt returns true if the session is neither expired nor revoked at now.
func (s *Session) IsValidAt(now time.Time) bool {
	return !s.IsExpiredAt(now) && !s.IsRevoked()
}
