// Package identity verifies bearer credentials issued by the external
// identity provider.
package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"

	"github.com/dtroode/vision-analyzer/internal/model"
)

var _ model.IdentityVerifier = (*OIDC)(nil)

// OIDC verifies provider-signed JWTs against the issuer's published keys.
type OIDC struct {
	verifier *oidc.IDTokenVerifier
}

// NewOIDC discovers the provider at issuerURL. With an empty clientID the
// audience is not checked, which suits session tokens that carry no aud.
func NewOIDC(ctx context.Context, issuerURL, clientID string) (*OIDC, error) {
	provider, err := oidc.NewProvider(ctx, issuerURL)
	if err != nil {
		return nil, fmt.Errorf("failed to discover OIDC provider: %w", err)
	}

	return NewOIDCWithVerifier(provider.Verifier(&oidc.Config{
		ClientID:          clientID,
		SkipClientIDCheck: clientID == "",
	})), nil
}

// NewOIDCWithVerifier wraps an already configured verifier.
func NewOIDCWithVerifier(verifier *oidc.IDTokenVerifier) *OIDC {
	return &OIDC{verifier: verifier}
}

// Verify returns the token subject.
func (o *OIDC) Verify(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", fmt.Errorf("%w: empty token", model.ErrUnauthorized)
	}

	idToken, err := o.verifier.Verify(ctx, token)
	if err != nil {
		return "", fmt.Errorf("%w: %w", model.ErrUnauthorized, err)
	}
	if idToken.Subject == "" {
		return "", fmt.Errorf("%w: %w", model.ErrUnauthorized, errors.New("token has no subject"))
	}

	return idToken.Subject, nil
}
