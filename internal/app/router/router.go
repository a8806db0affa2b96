// Package router assembles the HTTP routes.
package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	authhandler "expense_tracker/internal/feature/auth/transport/handler"
	cleanuphandler "expense_tracker/internal/feature/cleanup/transport/handler"
	"expense_tracker/internal/platform/config"
	platformhandler "expense_tracker/internal/platform/http/handler"
	jwtmw "expense_tracker/internal/platform/jwt"
	"expense_tracker/internal/shared/ratelimiter"
)

// Deps are the collaborators the routes are bound to.
type Deps struct {
	Auth         *authhandler.AuthHandler
	Cleanup      *cleanuphandler.CleanupHandler
	Limiter      *ratelimiter.Limiter
	RateLimits   map[string]config.RateRule
	Tokens       jwtmw.TokenParser
	HealthChecks map[string]platformhandler.Check
	FrontendURL  string
}

// NewRouter builds the gin engine with CORS, per-endpoint rate limits and the
// JWT-protected routes mounted on top of the handlers in d.
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{d.FrontendURL},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	health := platformhandler.Health(d.HealthChecks)
	r.GET("/healthz", health)
	r.HEAD("/healthz", health)

	// guard puts the endpoint's rate rule in front of its handler.
	guard := func(endpoint string, h gin.HandlerFunc) []gin.HandlerFunc {
		rule, ok := d.RateLimits[endpoint]
		if !ok {
			return []gin.HandlerFunc{h}
		}
		return []gin.HandlerFunc{ratelimiter.Guard(d.Limiter, endpoint, rule.Limit, rule.Window), h}
	}

	api := r.Group("/api/auth")
	{
		api.POST("/register", guard("register", d.Auth.Register)...)
		api.POST("/verify-email", guard("verify-email", d.Auth.VerifyEmail)...)
		api.POST("/resend-otp", guard("resend-otp", d.Auth.ResendOTP)...)
		api.POST("/login", guard("login", d.Auth.Login)...)
		api.POST("/refresh", guard("refresh", d.Auth.Refresh)...)
		api.POST("/logout", guard("logout", d.Auth.Logout)...)
		api.POST("/forgot-password", guard("forgot-password", d.Auth.ForgotPassword)...)
		api.POST("/verify-reset-token", guard("verify-reset-token", d.Auth.VerifyResetToken)...)
		api.POST("/reset-password", guard("reset-password", d.Auth.ResetPassword)...)
		api.POST("/google", guard("google", d.Auth.Google)...)
		api.POST("/cleanup", guard("cleanup", d.Cleanup.Run)...)
		api.GET("/stats", d.Cleanup.Stats)

		// Requires a valid access token.
		api.GET("/profile", jwtmw.AuthRequired(d.Tokens), d.Auth.Profile)
	}

	return r
}
