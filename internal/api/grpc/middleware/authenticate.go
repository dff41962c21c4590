package middleware

import (
	"context"
	"crypto/subtle"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/auth"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dtroode/vision-analyzer/internal/logger"
)

// Authenticate guards admin endpoints with a shared bearer token.
type Authenticate struct {
	token  []byte
	logger *logger.Logger
}

// NewAuthenticate creates a new Authenticate middleware instance. An empty
// token rejects every call.
func NewAuthenticate(token string, logger *logger.Logger) *Authenticate {
	return &Authenticate{token: []byte(token), logger: logger}
}

// AuthFunc compares the bearer token from the authorization metadata with
// the configured admin token.
func (m *Authenticate) AuthFunc(ctx context.Context) (context.Context, error) {
	if len(m.token) == 0 {
		return nil, status.Error(codes.Unauthenticated, "admin access is disabled")
	}

	token, err := auth.AuthFromMD(ctx, "bearer")
	if err != nil {
		m.logger.Debug("admin auth failure: missing token", "error", err.Error())
		return nil, err
	}

	if subtle.ConstantTimeCompare([]byte(token), m.token) != 1 {
		m.logger.Warn("admin auth failure: token mismatch")
		return nil, status.Error(codes.Unauthenticated, "invalid admin token")
	}

	return ctx, nil
}
