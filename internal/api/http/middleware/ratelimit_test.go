package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	apicontext "github.com/dtroode/vision-analyzer/internal/api/context"
)

func newRateLimitedRouter(rl *RateLimit, cm *apicontext.Manager) *gin.Engine {
	r := gin.New()
	r.POST("/analyze", func(c *gin.Context) {
		if userID := c.GetHeader("X-Test-User"); userID != "" {
			c.Request = c.Request.WithContext(cm.SetUserIDToContext(c.Request.Context(), userID))
		}
		c.Next()
	}, rl.Handle, func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func doAs(r *gin.Engine, userID string) int {
	req := httptest.NewRequest(http.MethodPost, "/analyze", nil)
	if userID != "" {
		req.Header.Set("X-Test-User", userID)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec.Code
}

func TestRateLimit_BurstThenReject(t *testing.T) {
	cm := apicontext.NewManager()
	// A near-zero refill rate keeps the test independent of wall time.
	r := newRateLimitedRouter(NewRateLimit(0.0001, 2, cm), cm)

	assert.Equal(t, http.StatusOK, doAs(r, "user_1"))
	assert.Equal(t, http.StatusOK, doAs(r, "user_1"))
	assert.Equal(t, http.StatusTooManyRequests, doAs(r, "user_1"))
}

func TestRateLimit_PerUser(t *testing.T) {
	cm := apicontext.NewManager()
	r := newRateLimitedRouter(NewRateLimit(0.0001, 1, cm), cm)

	assert.Equal(t, http.StatusOK, doAs(r, "user_1"))
	assert.Equal(t, http.StatusTooManyRequests, doAs(r, "user_1"))
	assert.Equal(t, http.StatusOK, doAs(r, "user_2"))
}

func TestRateLimit_RequiresIdentity(t *testing.T) {
	cm := apicontext.NewManager()
	r := newRateLimitedRouter(NewRateLimit(1, 1, cm), cm)

	assert.Equal(t, http.StatusUnauthorized, doAs(r, ""))
}
