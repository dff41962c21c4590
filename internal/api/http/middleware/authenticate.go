package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dtroode/vision-analyzer/internal/api/http/handler"
	"github.com/dtroode/vision-analyzer/internal/logger"
	"github.com/dtroode/vision-analyzer/internal/model"
)

// Authenticate validates bearer tokens and injects the subject into the
// request context.
type Authenticate struct {
	verifier       model.IdentityVerifier
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewAuthenticate creates a new Authenticate middleware instance.
func NewAuthenticate(verifier model.IdentityVerifier, contextManager model.ContextManager, logger *logger.Logger) *Authenticate {
	return &Authenticate{verifier: verifier, contextManager: contextManager, logger: logger}
}

// Handle rejects requests without a verifiable bearer token.
func (m *Authenticate) Handle(c *gin.Context) {
	token, ok := extractBearerToken(c.GetHeader("Authorization"))
	if !ok {
		m.logger.Debug("auth failure: missing or malformed authorization header",
			"path", c.Request.URL.Path)
		handler.AbortWithError(c, http.StatusUnauthorized, handler.CodeUnauthorized, "missing or malformed authorization header")
		return
	}

	ctx := c.Request.Context()
	userID, err := m.verifier.Verify(ctx, token)
	if err != nil || userID == "" {
		m.logger.Info("auth failure: token rejected",
			"path", c.Request.URL.Path,
			"error", errString(err))
		handler.AbortWithError(c, http.StatusUnauthorized, handler.CodeUnauthorized, "invalid or expired token")
		return
	}

	c.Request = c.Request.WithContext(m.contextManager.SetUserIDToContext(ctx, userID))
	c.Next()
}

func extractBearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func errString(err error) string {
	if err == nil {
		return "empty subject"
	}
	return err.Error()
}
