// Package dto defines the request and response bodies of the auth HTTP API.
package dto

// RegisterReq is the body of POST /register.
type RegisterReq struct {
	Name            string `json:"name" binding:"required,max=100"`
	Email           string `json:"email" binding:"required,max=120"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
}

// VerifyEmailReq is the body of POST /verify-email.
type VerifyEmailReq struct {
	UserID uint   `json:"user_id" binding:"required"`
	OTP    string `json:"otp" binding:"required"`
}

// ResendOTPReq is the body of POST /resend-otp.
type ResendOTPReq struct {
	UserID uint `json:"user_id" binding:"required"`
}

// LoginReq is the body of POST /login.
type LoginReq struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshReq is the body of POST /refresh and POST /logout.
// The token may be sent as an Authorization bearer header instead.
type RefreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

// ForgotPasswordReq is the body of POST /forgot-password.
type ForgotPasswordReq struct {
	Email string `json:"email" binding:"required"`
}

// VerifyResetTokenReq is the body of POST /verify-reset-token.
type VerifyResetTokenReq struct {
	Token string `json:"token" binding:"required"`
}

// ResetPasswordReq is the body of POST /reset-password.
type ResetPasswordReq struct {
	Token           string `json:"token" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
	ConfirmPassword string `json:"confirm_password"`
}

// GoogleReq is the body of POST /google.
type GoogleReq struct {
	IDToken string `json:"id_token" binding:"required"`
}
