package model

import "context"

// IdentityVerifier resolves a bearer credential to a stable user identifier.
// Any failure is reported as ErrUnauthorized.
type IdentityVerifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

// TokenManager issues and parses locally signed development tokens.
type TokenManager interface {
	GenerateAccessToken(subject string) (string, error)
	ParseAccessToken(token string) (string, error)
}
