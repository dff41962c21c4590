package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/dtroode/vision-analyzer/internal/api/http/handler"
	"github.com/dtroode/vision-analyzer/internal/model"
)

// RateLimit throttles request bursts per authenticated user. It must run
// after Authenticate.
type RateLimit struct {
	limit          rate.Limit
	burst          int
	contextManager model.ContextManager

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewRateLimit allows burst requests at once, refilled at perSecond.
func NewRateLimit(perSecond float64, burst int, contextManager model.ContextManager) *RateLimit {
	return &RateLimit{
		limit:          rate.Limit(perSecond),
		burst:          burst,
		contextManager: contextManager,
		limiters:       make(map[string]*rate.Limiter),
	}
}

func (m *RateLimit) limiter(userID string) *rate.Limiter {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.limiters[userID]
	if !ok {
		l = rate.NewLimiter(m.limit, m.burst)
		m.limiters[userID] = l
	}
	return l
}

// Handle rejects the request with 429 once the user's bucket is empty.
func (m *RateLimit) Handle(c *gin.Context) {
	userID, ok := m.contextManager.GetUserIDFromContext(c.Request.Context())
	if !ok {
		handler.AbortWithError(c, http.StatusUnauthorized, handler.CodeUnauthorized, "authentication required")
		return
	}

	if !m.limiter(userID).Allow() {
		handler.AbortWithError(c, http.StatusTooManyRequests, handler.CodeRateLimited, "too many requests, slow down")
		return
	}

	c.Next()
}
