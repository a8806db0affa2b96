package usecase

import (
	"regexp"
	"strings"

	"expense_tracker/internal/feature/auth/domain"
)

const maxEmailLength = 120

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// disposableDomains are throwaway mailbox providers refused at registration.
var disposableDomains = map[string]struct{}{
	"10minutemail.com":  {},
	"guerrillamail.com": {},
	"mailinator.com":    {},
	"tempmail.org":      {},
	"throwaway.email":   {},
	"temp-mail.org":     {},
	"getnada.com":       {},
	"maildrop.cc":       {},
	"yopmail.com":       {},
}

// NormalizeEmail trims and lower-cases an address. All lookups and uniqueness use this form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsValidEmailFormat reports whether a normalized address is syntactically acceptable.
func IsValidEmailFormat(email string) bool {
	return len(email) <= maxEmailLength && emailPattern.MatchString(email)
}

// ValidateEmail checks format and rejects disposable providers.
func ValidateEmail(email string) error {
	if !IsValidEmailFormat(email) {
		return domain.Validation("Invalid email format")
	}
	domainPart := email[strings.LastIndex(email, "@")+1:]
	if _, ok := disposableDomains[domainPart]; ok {
		return domain.Validation("Disposable email addresses are not allowed")
	}
	return nil
}
