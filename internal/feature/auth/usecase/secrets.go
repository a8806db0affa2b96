package usecase

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"regexp"
	"strconv"
)

const (
	otpMin           = 100000
	otpSpan          = 900000
	resetTokenLength = 64
	sessionIDBytes   = 32
	tokenAlphabet    = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

var (
	otpPattern        = regexp.MustCompile(`^[0-9]{6}$`)
	resetTokenPattern = regexp.MustCompile(`^[A-Za-z0-9]{64}$`)
	sessionIDPattern  = regexp.MustCompile(`^[0-9a-f]{64}$`)
)

// GenerateOTP returns a uniformly random six-digit code.
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpSpan))
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}
	return strconv.FormatInt(n.Int64()+otpMin, 10), nil
}

// GenerateResetToken returns a 64-character alphanumeric token.
func GenerateResetToken() (string, error) {
	alphabetSize := big.NewInt(int64(len(tokenAlphabet)))
	buf := make([]byte, resetTokenLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", fmt.Errorf("failed to generate reset token: %w", err)
		}
		buf[i] = tokenAlphabet[n.Int64()]
	}
	return string(buf), nil
}

// GenerateSessionID returns a 64-character hex refresh token.
func GenerateSessionID() (string, error) {
	b := make([]byte, sessionIDBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate session id: %w", err)
	}
	return hex.EncodeToString(b), nil
}
