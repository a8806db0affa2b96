// Package config loads runtime settings from the environment (and an optional .env file).
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// RateRule is an attempt budget: at most Limit admitted calls per Window.
type RateRule struct {
	Limit  int
	Window time.Duration
}

// Config holds every setting the server needs.
type Config struct {
	Port      string
	LogLevel  string
	LogFormat string

	DatabaseURL   string
	SQLitePath    string
	RunMigrations bool

	JWTSecret          string
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
	MaxSessionsPerUser int

	RedisHost     string
	RedisPort     string
	RedisPassword string
	StatsCacheTTL time.Duration

	MailTransport  string // smtp, kafka or log
	SMTPHost       string
	SMTPPort       string
	SMTPUsername   string
	SMTPPassword   string
	MailFrom       string
	MailFromName   string
	MailTimeout    time.Duration
	KafkaBroker    string
	KafkaMailTopic string
	KafkaUsername  string
	KafkaPassword  string

	GoogleClientID string
	FrontendURL    string

	OTPTTL            time.Duration
	OTPMaxAttempts    int
	OTPResendCooldown time.Duration
	PendingUserTTL    time.Duration
	ResetTokenTTL     time.Duration

	CleanupInterval       time.Duration
	CleanupRetryInterval  time.Duration
	RateLimitLogRetention time.Duration

	RateLimits map[string]RateRule
}

// DefaultRateLimits are the per-endpoint budgets used when no override is configured.
func DefaultRateLimits() map[string]RateRule {
	return map[string]RateRule{
		"register":           {Limit: 5, Window: time.Hour},
		"verify-email":       {Limit: 10, Window: 15 * time.Minute},
		"resend-otp":         {Limit: 5, Window: time.Hour},
		"login":              {Limit: 10, Window: 15 * time.Minute},
		"refresh":            {Limit: 30, Window: 15 * time.Minute},
		"logout":             {Limit: 30, Window: 15 * time.Minute},
		"forgot-password":    {Limit: 3, Window: time.Hour},
		"verify-reset-token": {Limit: 10, Window: 15 * time.Minute},
		"reset-password":     {Limit: 5, Window: time.Hour},
		"google":             {Limit: 20, Window: time.Hour},
		"cleanup":            {Limit: 5, Window: time.Hour},
	}
}

// Load reads .env (when present) and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info(".env not found; using system environment variables")
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables, applying defaults.
func FromEnv() (*Config, error) {
	var errs []string
	r := reader{errs: &errs}

	cfg := &Config{
		Port:      r.str("PORT", "8080"),
		LogLevel:  r.str("LOG_LEVEL", "info"),
		LogFormat: r.str("LOG_FORMAT", "text"),

		DatabaseURL:   r.str("DATABASE_URL", ""),
		SQLitePath:    r.str("SQLITE_PATH", "./expense_tracker.db"),
		RunMigrations: r.boolean("RUN_MIGRATIONS", true),

		JWTSecret:          r.str("JWT_SECRET", ""),
		AccessTokenTTL:     r.duration("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTokenTTL:    r.duration("REFRESH_TOKEN_TTL", 7*24*time.Hour),
		MaxSessionsPerUser: r.integer("MAX_SESSIONS_PER_USER", 5),

		RedisHost:     r.str("REDIS_HOST", ""),
		RedisPort:     r.str("REDIS_PORT", "6379"),
		RedisPassword: r.str("REDIS_PASSWORD", ""),
		StatsCacheTTL: r.duration("STATS_CACHE_TTL", 30*time.Second),

		MailTransport:  strings.ToLower(r.str("MAIL_TRANSPORT", "log")),
		SMTPHost:       r.str("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:       r.str("SMTP_PORT", "587"),
		SMTPUsername:   r.str("SMTP_USERNAME", ""),
		SMTPPassword:   r.str("SMTP_PASSWORD", ""),
		MailFrom:       r.str("MAIL_FROM", "no-reply@expensetracker.local"),
		MailFromName:   r.str("MAIL_FROM_NAME", "ExpenseTracker"),
		MailTimeout:    r.duration("MAIL_TIMEOUT", 10*time.Second),
		KafkaBroker:    r.str("KAFKA_BROKER", ""),
		KafkaMailTopic: r.str("KAFKA_MAIL_TOPIC", "mail.outbound"),
		KafkaUsername:  r.str("KAFKA_USERNAME", ""),
		KafkaPassword:  r.str("KAFKA_PASSWORD", ""),

		GoogleClientID: r.str("GOOGLE_CLIENT_ID", ""),
		FrontendURL:    strings.TrimRight(r.str("FRONTEND_URL", "http://localhost:5173"), "/"),

		OTPTTL:            r.duration("OTP_TTL", 10*time.Minute),
		OTPMaxAttempts:    r.integer("OTP_MAX_ATTEMPTS", 5),
		OTPResendCooldown: r.duration("OTP_RESEND_COOLDOWN", 60*time.Second),
		PendingUserTTL:    r.duration("PENDING_USER_TTL", 24*time.Hour),
		ResetTokenTTL:     r.duration("RESET_TOKEN_TTL", time.Hour),

		CleanupInterval:       r.duration("CLEANUP_INTERVAL", 30*time.Minute),
		CleanupRetryInterval:  r.duration("CLEANUP_RETRY_INTERVAL", 5*time.Minute),
		RateLimitLogRetention: r.duration("RATE_LIMIT_LOG_RETENTION", 24*time.Hour),

		RateLimits: DefaultRateLimits(),
	}

	for endpoint := range cfg.RateLimits {
		key := "RATE_LIMIT_" + strings.ToUpper(strings.ReplaceAll(endpoint, "-", "_"))
		raw, ok := os.LookupEnv(key)
		if !ok || raw == "" {
			continue
		}
		rule, err := ParseRateRule(raw)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
			continue
		}
		cfg.RateLimits[endpoint] = rule
	}

	if cfg.OTPMaxAttempts < 1 {
		errs = append(errs, "OTP_MAX_ATTEMPTS must be at least 1")
	}
	switch cfg.MailTransport {
	case "smtp", "kafka", "log":
	default:
		errs = append(errs, fmt.Sprintf("MAIL_TRANSPORT: unknown transport %q", cfg.MailTransport))
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}
	return cfg, nil
}

// ParseRateRule parses "N/duration", e.g. "5/1h" or "10/15m".
func ParseRateRule(s string) (RateRule, error) {
	limitPart, windowPart, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok {
		return RateRule{}, fmt.Errorf("expected N/duration, got %q", s)
	}
	limit, err := strconv.Atoi(strings.TrimSpace(limitPart))
	if err != nil || limit < 1 {
		return RateRule{}, fmt.Errorf("invalid limit %q", limitPart)
	}
	window, err := time.ParseDuration(strings.TrimSpace(windowPart))
	if err != nil || window <= 0 {
		return RateRule{}, fmt.Errorf("invalid window %q", windowPart)
	}
	return RateRule{Limit: limit, Window: window}, nil
}

// RedisAddr returns host:port, or "" when Redis is not configured.
func (c *Config) RedisAddr() string {
	if c.RedisHost == "" {
		return ""
	}
	return c.RedisHost + ":" + c.RedisPort
}

// reader collects parse errors instead of failing on the first one.
type reader struct {
	errs *[]string
}

func (r reader) str(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func (r reader) duration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*r.errs = append(*r.errs, fmt.Sprintf("%s: %v", key, err))
		return def
	}
	return d
}

func (r reader) integer(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*r.errs = append(*r.errs, fmt.Sprintf("%s: %v", key, err))
		return def
	}
	return n
}

func (r reader) boolean(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		*r.errs = append(*r.errs, fmt.Sprintf("%s: %v", key, err))
		return def
	}
	return b
}
