// Package handler provides the HTTP handlers of the auth feature.
package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"expense_tracker/internal/feature/auth/domain/entity"
	"expense_tracker/internal/feature/auth/transport/http/dto"
	"expense_tracker/internal/feature/auth/usecase"
	jwtmw "expense_tracker/internal/platform/jwt"
	"expense_tracker/internal/shared/ratelimiter"
)

// RegistrationUsecase stages signups and confirms them by email.
// Interfaces are defined here, by the consumer, rather than next to the implementation.
type RegistrationUsecase interface {
	Register(ctx context.Context, in usecase.RegisterInput) (*entity.PendingUser, error)
	VerifyEmail(ctx context.Context, pendingUserID uint, otp string, client usecase.ClientInfo) (*usecase.AuthResult, error)
	ResendOTP(ctx context.Context, pendingUserID uint) error
}

// SessionUsecase covers password sign-in and the refresh session lifecycle.
type SessionUsecase interface {
	Login(ctx context.Context, email, password string, client usecase.ClientInfo) (*usecase.AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (*usecase.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	Profile(ctx context.Context, userID uint) (*entity.User, error)
}

// PasswordResetUsecase handles forgotten passwords.
type PasswordResetUsecase interface {
	ForgotPassword(ctx context.Context, email string) error
	VerifyResetToken(ctx context.Context, token string) error
	ResetPassword(ctx context.Context, token, password, confirm string) error
}

// OAuthUsecase signs users in with an identity provider assertion.
type OAuthUsecase interface {
	SignIn(ctx context.Context, rawToken string, client usecase.ClientInfo) (*usecase.AuthResult, error)
}

// forgotPasswordMessage is returned whether or not the email belongs to an account.
const forgotPasswordMessage = "If an account exists for this email, a password reset link has been sent"

// AuthHandler serves the /api/auth endpoints.
type AuthHandler struct {
	registration RegistrationUsecase
	sessions     SessionUsecase
	reset        PasswordResetUsecase
	oauth        OAuthUsecase
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(registration RegistrationUsecase, sessions SessionUsecase, reset PasswordResetUsecase, oauth OAuthUsecase) *AuthHandler {
	useJSONFieldNames()
	return &AuthHandler{registration: registration, sessions: sessions, reset: reset, oauth: oauth}
}

func clientInfo(c *gin.Context) usecase.ClientInfo {
	return usecase.ClientInfo{
		UserAgent: c.Request.UserAgent(),
		IPAddress: ratelimiter.ClientIP(c.Request),
	}
}

func authRes(message string, res *usecase.AuthResult) dto.AuthRes {
	return dto.AuthRes{
		Message:      message,
		AccessToken:  res.Tokens.AccessToken,
		RefreshToken: res.Tokens.RefreshToken,
		ExpiresIn:    res.Tokens.ExpiresIn,
		User:         dto.NewUserRes(res.User),
	}
}

// Register stages a new account and emails a verification code.
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterReq
	if !bindJSON(c, &req) {
		return
	}
	pending, err := h.registration.Register(c.Request.Context(), usecase.RegisterInput{
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		respondError(c, "register", err)
		return
	}
	c.JSON(http.StatusOK, dto.RegisterRes{
		Message: "Registration successful. Please check your email for the verification code",
		UserID:  pending.ID,
		Email:   pending.Email,
	})
}

// VerifyEmail confirms a pending registration and signs the new user in.
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req dto.VerifyEmailReq
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.registration.VerifyEmail(c.Request.Context(), req.UserID, strings.TrimSpace(req.OTP), clientInfo(c))
	if err != nil {
		respondError(c, "verify email", err)
		return
	}
	slog.Info("email verified", "user_id", res.User.ID, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, authRes("Email verified successfully", res))
}

// ResendOTP issues a fresh verification code.
func (h *AuthHandler) ResendOTP(c *gin.Context) {
	var req dto.ResendOTPReq
	if !bindJSON(c, &req) {
		return
	}
	if err := h.registration.ResendOTP(c.Request.Context(), req.UserID); err != nil {
		respondError(c, "resend otp", err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageRes{Message: "A new verification code has been sent"})
}

// Login signs a user in with email and password.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginReq
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.sessions.Login(c.Request.Context(), req.Email, req.Password, clientInfo(c))
	if err != nil {
		respondError(c, "login", err)
		return
	}
	slog.Info("user login successful", "user_id", res.User.ID, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, authRes("Login successful", res))
}

// refreshToken reads the token from the body, falling back to the bearer header.
// An empty body is allowed.
func refreshToken(c *gin.Context) (string, bool) {
	var req dto.RefreshReq
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		slog.Warn("request validation failed", "path", c.FullPath(), "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, dto.ErrorRes{Error: bindingMessage(err)})
		return "", false
	}
	token := strings.TrimSpace(req.RefreshToken)
	if token == "" {
		if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
			token = strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
		}
	}
	if token == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorRes{Error: "refresh_token is required"})
		return "", false
	}
	return token, true
}

// Refresh exchanges a refresh token for a new access token.
func (h *AuthHandler) Refresh(c *gin.Context) {
	token, ok := refreshToken(c)
	if !ok {
		return
	}
	pair, err := h.sessions.Refresh(c.Request.Context(), token)
	if err != nil {
		respondError(c, "refresh", err)
		return
	}
	c.JSON(http.StatusOK, dto.RefreshRes{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	})
}

// Logout revokes a refresh session.
func (h *AuthHandler) Logout(c *gin.Context) {
	token, ok := refreshToken(c)
	if !ok {
		return
	}
	if err := h.sessions.Logout(c.Request.Context(), token); err != nil {
		respondError(c, "logout", err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageRes{Message: "Logged out successfully"})
}

// ForgotPassword answers the same message for known and unknown emails.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req dto.ForgotPasswordReq
	if !bindJSON(c, &req) {
		return
	}
	// Unknown accounts and failed deliveries both come back as nil.
	if err := h.reset.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		respondError(c, "forgot password", err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageRes{Message: forgotPasswordMessage})
}

// VerifyResetToken reports whether a reset token can still be used.
func (h *AuthHandler) VerifyResetToken(c *gin.Context) {
	var req dto.VerifyResetTokenReq
	if !bindJSON(c, &req) {
		return
	}
	if err := h.reset.VerifyResetToken(c.Request.Context(), req.Token); err != nil {
		respondError(c, "verify reset token", err)
		return
	}
	c.JSON(http.StatusOK, dto.VerifyResetTokenRes{Message: "Token is valid", Valid: true})
}

// ResetPassword sets a new password with a reset token.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordReq
	if !bindJSON(c, &req) {
		return
	}
	if err := h.reset.ResetPassword(c.Request.Context(), req.Token, req.NewPassword, req.ConfirmPassword); err != nil {
		respondError(c, "reset password", err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageRes{Message: "Password has been reset successfully"})
}

// Google signs a user in with a Google ID token.
func (h *AuthHandler) Google(c *gin.Context) {
	var req dto.GoogleReq
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.oauth.SignIn(c.Request.Context(), req.IDToken, clientInfo(c))
	if err != nil {
		respondError(c, "google sign-in", err)
		return
	}
	c.JSON(http.StatusOK, authRes("Login successful", res))
}

// Profile returns the authenticated user. It must run behind jwtmw.AuthRequired.
func (h *AuthHandler) Profile(c *gin.Context) {
	userID, ok := jwtmw.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorRes{Error: "unauthorized"})
		return
	}
	user, err := h.sessions.Profile(c.Request.Context(), userID)
	if err != nil {
		respondError(c, "profile", err)
		return
	}
	c.JSON(http.StatusOK, dto.ProfileRes{User: dto.NewUserRes(user)})
}
