package di

import (
	authentity "expense_tracker/internal/feature/auth/domain/entity"
	expenseentity "expense_tracker/internal/feature/expense/domain/entity"
	"expense_tracker/internal/shared/ratelimiter"
)

// Models lists every table managed by the server, in migration order.
func Models() []any {
	return []any{
		&authentity.User{},
		&authentity.PendingUser{},
		&authentity.EmailVerification{},
		&authentity.PasswordResetToken{},
		&authentity.Session{},
		&ratelimiter.Log{},
		&expenseentity.Category{},
		&expenseentity.Expense{},
	}
}

// StatsTables maps the names reported by /stats to their models.
func StatsTables() map[string]any {
	return map[string]any{
		"users":                 &authentity.User{},
		"pending_users":         &authentity.PendingUser{},
		"email_verifications":   &authentity.EmailVerification{},
		"password_reset_tokens": &authentity.PasswordResetToken{},
		"sessions":              &authentity.Session{},
		"rate_limit_logs":       &ratelimiter.Log{},
		"categories":            &expenseentity.Category{},
		"expenses":              &expenseentity.Expense{},
	}
}
