// Package usecase implements the business logic for the auth feature.
package usecase

import "errors"

// Repository-level errors. Adapters return these; usecases translate them into domain errors.
var (
	// ErrUserNotFound is returned when a user cannot be found by email, ID or OAuth identity.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailAlreadyExists is returned when attempting to create a user with an email that already exists.
	ErrEmailAlreadyExists = errors.New("email already exists")

	// ErrPendingUserNotFound is returned when a pending registration cannot be found.
	ErrPendingUserNotFound = errors.New("pending user not found")

	// ErrPendingEmailExists is returned when the pending_users unique index rejects an insert.
	ErrPendingEmailExists = errors.New("pending registration already exists")

	// ErrVerificationNotFound is returned when a pending user has no unused code.
	ErrVerificationNotFound = errors.New("verification code not found")

	// ErrResetTokenNotFound is returned when a reset token is unknown or can no longer be consumed.
	ErrResetTokenNotFound = errors.New("reset token not found")

	// ErrSessionNotFound is returned when a session cannot be found by ID.
	ErrSessionNotFound = errors.New("session not found")
)
