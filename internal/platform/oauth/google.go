// Package oauth verifies identity tokens issued by external providers.
package oauth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/idtoken"
	"google.golang.org/api/option"

	"expense_tracker/internal/feature/auth/usecase"
)

// ProviderGoogle is the provider name stored on linked accounts.
const ProviderGoogle = "google"

var googleIssuers = map[string]struct{}{
	"accounts.google.com":         {},
	"https://accounts.google.com": {},
}

// ErrNotConfigured is returned when no client ID has been set.
var ErrNotConfigured = errors.New("google sign-in is not configured")

type payloadValidator interface {
	Validate(ctx context.Context, idToken, audience string) (*idtoken.Payload, error)
}

// GoogleVerifier checks Google ID tokens: signature and expiry through Google's
// published keys, audience against the configured client ID, and the issuer.
type GoogleVerifier struct {
	clientID  string
	validator payloadValidator
}

var _ usecase.IdentityVerifier = (*GoogleVerifier)(nil)

// NewGoogleVerifier creates a verifier fetching Google's keys with client.
func NewGoogleVerifier(ctx context.Context, clientID string, client *http.Client) (*GoogleVerifier, error) {
	v, err := idtoken.NewValidator(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create id token validator: %w", err)
	}
	return &GoogleVerifier{clientID: clientID, validator: v}, nil
}

// Verify validates rawToken and extracts the identity claims.
func (g *GoogleVerifier) Verify(ctx context.Context, rawToken string) (*usecase.Identity, error) {
	if g.clientID == "" {
		return nil, ErrNotConfigured
	}
	payload, err := g.validator.Validate(ctx, rawToken, g.clientID)
	if err != nil {
		return nil, err
	}
	if _, ok := googleIssuers[payload.Issuer]; !ok {
		return nil, fmt.Errorf("unexpected issuer %q", payload.Issuer)
	}
	if payload.Subject == "" {
		return nil, errors.New("missing subject")
	}

	email, _ := payload.Claims["email"].(string)
	name, _ := payload.Claims["name"].(string)
	return &usecase.Identity{
		Provider:      ProviderGoogle,
		Subject:       payload.Subject,
		Email:         email,
		EmailVerified: emailVerified(payload.Claims["email_verified"]),
		Name:          name,
		Issuer:        payload.Issuer,
	}, nil
}

// emailVerified accepts both the boolean and the string form Google has used.
func emailVerified(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return b == "true"
	}
	return false
}
