// Package domain defines domain-level errors for the auth feature.
package domain

import "errors"

// Kind classifies a domain error so that transport layers can map it to a response
// without knowing every individual sentinel.
type Kind int

const (
	// KindValidation is malformed or missing input.
	KindValidation Kind = iota + 1
	// KindConflict is a duplicate resource, e.g. an already registered email.
	KindConflict
	// KindAuth is a bad credential or an invalid/expired token.
	KindAuth
	// KindNotFound is an unknown id or token.
	KindNotFound
	// KindRateLimit is a request rejected by a cooldown or attempt budget.
	KindRateLimit
	// KindDelivery is a failed outbound email.
	KindDelivery
)

// Error is a business-rule failure carrying a user-facing message.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// NewError creates a domain error of the given kind.
func NewError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Validation creates a validation error with a dynamic message.
func Validation(message string) *Error {
	return NewError(KindValidation, message)
}

// KindOf reports the kind of err, or 0 when err is not a domain error.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return 0
}

// Domain errors for authentication operations.
// These errors represent business logic failures and should be handled appropriately by upper layers.
var (
	// ErrEmailAlreadyRegistered is returned when the email already belongs to a confirmed user.
	ErrEmailAlreadyRegistered = NewError(KindConflict, "Email already registered")

	// ErrRegistrationInProgress is returned when a concurrent registration for the same
	// email won the race on the pending_users unique index.
	ErrRegistrationInProgress = NewError(KindConflict, "A registration for this email is already in progress")

	// ErrPasswordMismatch is returned when password and confirmation differ.
	ErrPasswordMismatch = NewError(KindValidation, "Passwords do not match")

	// ErrInvalidOTPFormat is returned when the submitted code is not six digits.
	ErrInvalidOTPFormat = NewError(KindValidation, "Verification code must be 6 digits")

	// ErrInvalidOTP is returned when no active code matches.
	ErrInvalidOTP = NewError(KindValidation, "Invalid verification code")

	// ErrOTPExpired is returned when the active code has passed its expiry.
	ErrOTPExpired = NewError(KindValidation, "Verification code has expired")

	// ErrTooManyAttempts is returned when the active code has exhausted its attempt budget.
	ErrTooManyAttempts = NewError(KindValidation, "Too many failed attempts. Please request a new code")

	// ErrRegistrationExpired is returned when the pending registration is older than its TTL.
	ErrRegistrationExpired = NewError(KindValidation, "Registration has expired. Please register again")

	// ErrPendingUserNotFound is returned when no pending registration has the given id.
	ErrPendingUserNotFound = NewError(KindNotFound, "Pending registration not found")

	// ErrResendCooldown is returned when a new code is requested before the cooldown elapsed.
	ErrResendCooldown = NewError(KindRateLimit, "Please wait before requesting a new code")

	// ErrInvalidCredentials indicates that the provided credentials are incorrect.
	// The message is identical for unknown emails and wrong passwords.
	ErrInvalidCredentials = NewError(KindAuth, "Invalid email or password")

	// ErrInvalidResetToken covers unknown, used and expired password reset tokens alike.
	ErrInvalidResetToken = NewError(KindAuth, "Invalid or expired reset token")

	// ErrInvalidRefreshToken covers unknown, revoked and expired refresh credentials alike.
	ErrInvalidRefreshToken = NewError(KindAuth, "Invalid or expired refresh token")

	// ErrInvalidIdentityToken is returned when the identity provider rejects an assertion.
	ErrInvalidIdentityToken = NewError(KindAuth, "Invalid identity token")

	// ErrEmailNotVerified is returned when the identity provider does not vouch for the email.
	ErrEmailNotVerified = NewError(KindAuth, "Email address is not verified by the identity provider")

	// ErrUserNotFound indicates that no user was found with the given criteria.
	ErrUserNotFound = NewError(KindNotFound, "User not found")

	// ErrDelivery is returned when an email could not be sent.
	ErrDelivery = NewError(KindDelivery, "Failed to send email. Please try again later")
)
