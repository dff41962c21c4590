package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dtroode/vision-analyzer/internal/model"
)

// Claims represents development token claims. The user id is the subject.
type Claims struct {
	jwt.RegisteredClaims
	TokenType string `json:"typ"`
}

var (
	_ model.TokenManager     = (*JWT)(nil)
	_ model.IdentityVerifier = (*JWT)(nil)
)

// JWT issues and verifies locally signed HS256 tokens. It stands in for the
// identity provider in development and tests.
type JWT struct {
	secretKey string
	ttl       time.Duration
}

const (
	defaultTTL = 24 * time.Hour
	typeAccess = "access"
	issuer     = "vision-analyzer-dev"
)

// NewJWT creates a new JWT token manager with the provided secret key.
func NewJWT(secretKey string) *JWT {
	return &JWT{secretKey: secretKey, ttl: defaultTTL}
}

// WithTTL returns a copy of j issuing tokens valid for ttl.
func (j *JWT) WithTTL(ttl time.Duration) *JWT {
	return &JWT{secretKey: j.secretKey, ttl: ttl}
}

// GenerateAccessToken creates an access token for subject.
func (j *JWT) GenerateAccessToken(subject string) (string, error) {
	if subject == "" {
		return "", errors.New("subject is required")
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
		},
		TokenType: typeAccess,
	})

	tokenString, err := token.SignedString([]byte(j.secretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}

	return tokenString, nil
}

// ParseAccessToken validates an access token and returns its subject.
func (j *JWT) ParseAccessToken(tokenString string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
		}
		return []byte(j.secretKey), nil
	}, jwt.WithIssuer(issuer), jwt.WithExpirationRequired())
	if err != nil {
		return "", fmt.Errorf("failed to parse access token: %w", err)
	}
	if !token.Valid {
		return "", fmt.Errorf("access token is invalid")
	}
	if claims.TokenType != typeAccess {
		return "", fmt.Errorf("token type mismatch: %s", claims.TokenType)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("access token has no subject")
	}
	return claims.Subject, nil
}

// Verify implements model.IdentityVerifier.
func (j *JWT) Verify(_ context.Context, tokenString string) (string, error) {
	subject, err := j.ParseAccessToken(tokenString)
	if err != nil {
		return "", fmt.Errorf("%w: %w", model.ErrUnauthorized, err)
	}
	return subject, nil
}
