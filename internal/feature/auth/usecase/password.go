package usecase

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"expense_tracker/internal/feature/auth/domain"
)

// bcrypt ignores input past 72 bytes, so longer passwords are rejected instead of truncated.
const (
	minPasswordLength = 8
	maxPasswordBytes  = 72
)

// specialChars are the characters accepted as the required special character.
const specialChars = `!@#$%^&*(),.?":{}|<>`

// bcryptCost is a package variable so tests can lower it.
var bcryptCost = bcrypt.DefaultCost

// dummyHash is compared against when no password is stored, to equalise response timing.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy-password-for-timing"), bcrypt.DefaultCost)

// ValidatePasswordStrength enforces the password policy: at least eight characters with
// ASCII upper case, ASCII lower case, a digit and one of specialChars. Other characters are
// allowed but count towards none of the classes.
func ValidatePasswordStrength(password string) error {
	if len([]rune(password)) < minPasswordLength {
		return domain.Validation(fmt.Sprintf("Password must be at least %d characters long", minPasswordLength))
	}
	if len(password) > maxPasswordBytes {
		return domain.Validation(fmt.Sprintf("Password must be at most %d bytes long", maxPasswordBytes))
	}

	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(specialChars, r):
			special = true
		}
	}

	switch {
	case !upper:
		return domain.Validation("Password must contain at least one uppercase letter")
	case !lower:
		return domain.Validation("Password must contain at least one lowercase letter")
	case !digit:
		return domain.Validation("Password must contain at least one digit")
	case !special:
		return domain.Validation("Password must contain at least one special character")
	}
	return nil
}

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// CheckPassword reports whether password matches hash. A nil or empty hash is checked
// against a dummy value so the call costs the same as a real comparison.
func CheckPassword(hash *string, password string) bool {
	if hash == nil || *hash == "" {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(*hash), []byte(password)) == nil
}
