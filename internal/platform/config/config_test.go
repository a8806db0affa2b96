package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "OTP_TTL", "OTP_MAX_ATTEMPTS", "OTP_RESEND_COOLDOWN", "MAIL_TRANSPORT", "REDIS_HOST", "RATE_LIMIT_REGISTER"} {
		t.Setenv(key, "")
	}

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 10*time.Minute, cfg.OTPTTL)
	assert.Equal(t, 5, cfg.OTPMaxAttempts)
	assert.Equal(t, 60*time.Second, cfg.OTPResendCooldown)
	assert.Equal(t, 24*time.Hour, cfg.PendingUserTTL)
	assert.Equal(t, time.Hour, cfg.ResetTokenTTL)
	assert.Equal(t, 30*time.Minute, cfg.CleanupInterval)
	assert.Equal(t, 5*time.Minute, cfg.CleanupRetryInterval)
	assert.Equal(t, "log", cfg.MailTransport)
	assert.Equal(t, RateRule{Limit: 5, Window: time.Hour}, cfg.RateLimits["register"])
	assert.Empty(t, cfg.RedisAddr())
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("OTP_MAX_ATTEMPTS", "3")
	t.Setenv("OTP_RESEND_COOLDOWN", "90s")
	t.Setenv("RATE_LIMIT_FORGOT_PASSWORD", "2/30m")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("MAIL_TRANSPORT", "SMTP")
	t.Setenv("FRONTEND_URL", "https://app.example.com/")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 3, cfg.OTPMaxAttempts)
	assert.Equal(t, 90*time.Second, cfg.OTPResendCooldown)
	assert.Equal(t, RateRule{Limit: 2, Window: 30 * time.Minute}, cfg.RateLimits["forgot-password"])
	assert.Equal(t, "cache:6379", cfg.RedisAddr())
	assert.Equal(t, "smtp", cfg.MailTransport)
	assert.Equal(t, "https://app.example.com", cfg.FrontendURL)
}

func TestFromEnv_InvalidValues(t *testing.T) {
	t.Setenv("OTP_TTL", "ten minutes")
	t.Setenv("RATE_LIMIT_LOGIN", "lots")
	t.Setenv("MAIL_TRANSPORT", "pigeon")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OTP_TTL")
	assert.Contains(t, err.Error(), "RATE_LIMIT_LOGIN")
	assert.Contains(t, err.Error(), "MAIL_TRANSPORT")
}

func TestParseRateRule(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    RateRule
		wantErr bool
	}{
		{in: "5/1h", want: RateRule{Limit: 5, Window: time.Hour}},
		{in: " 10 / 15m ", want: RateRule{Limit: 10, Window: 15 * time.Minute}},
		{in: "5", wantErr: true},
		{in: "0/1h", wantErr: true},
		{in: "5/forever", wantErr: true},
		{in: "5/-1m", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParseRateRule(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
