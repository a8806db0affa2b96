// Package entity defines the domain entities for the auth feature.
package entity

import "time"

// User represents a confirmed account.
// It is created either by promoting a PendingUser or on first OAuth sign-in.
type User struct {
	// ID is the unique identifier for the user.
	ID uint `gorm:"primaryKey" json:"id"`

	// Name is the display name given at registration or by the identity provider.
	Name string `gorm:"size:100;not null" json:"name"`

	// Email is the user's email address used for authentication.
	// It is stored lower-cased and must be unique across all users.
	Email string `gorm:"uniqueIndex;size:120;not null" json:"email"`

	// PasswordHash is the bcrypt hash of the password.
	// It is nil for accounts that only sign in through an OAuth provider.
	PasswordHash *string `gorm:"size:255" json:"-"`

	// IsVerified is always true for rows in this table; unverified signups live in pending_users.
	IsVerified bool `gorm:"not null" json:"is_verified"`

	// OAuthProvider and OAuthID identify the linked external account, if any.
	OAuthProvider *string `gorm:"column:oauth_provider;size:50;uniqueIndex:idx_users_oauth" json:"-"`
	OAuthID       *string `gorm:"column:oauth_id;size:255;uniqueIndex:idx_users_oauth" json:"-"`

	// CreatedAt is the timestamp when the user was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is the timestamp when the user was last updated.
	UpdatedAt time.Time `json:"-"`
}

// HasPassword reports whether the user can sign in with a password.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}
