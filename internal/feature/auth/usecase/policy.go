package usecase

import "time"

// Policy holds the lifetimes and budgets of the registration and reset flows.
type Policy struct {
	OTPTTL            time.Duration
	OTPMaxAttempts    int
	OTPResendCooldown time.Duration
	PendingUserTTL    time.Duration
	ResetTokenTTL     time.Duration
	MailTimeout       time.Duration
	FrontendURL       string
}

// DefaultPolicy returns the production defaults.
func DefaultPolicy() Policy {
	return Policy{
		OTPTTL:            10 * time.Minute,
		OTPMaxAttempts:    5,
		OTPResendCooldown: 60 * time.Second,
		PendingUserTTL:    24 * time.Hour,
		ResetTokenTTL:     time.Hour,
		MailTimeout:       10 * time.Second,
		FrontendURL:       "http://localhost:5173",
	}
}

// ClientInfo describes the caller a session is issued to.
type ClientInfo struct {
	UserAgent string
	IPAddress string
}
