package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	apicontext "github.com/dtroode/vision-analyzer/internal/api/context"
	"github.com/dtroode/vision-analyzer/internal/metrics"
	"github.com/dtroode/vision-analyzer/internal/mocks"
	"github.com/dtroode/vision-analyzer/internal/model"
	"github.com/dtroode/vision-analyzer/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRouter_Register(t *testing.T) {
	svc := mocks.NewEntitlementService(t)
	analyzer := mocks.NewAnalyzer(t)
	verifier := mocks.NewIdentityVerifier(t)

	verifier.On("Verify", mock.Anything, "good").Return("user_1", nil)
	verifier.On("Verify", mock.Anything, "bad").Return("", model.ErrUnauthorized)
	svc.On("GetUsage", mock.Anything, "user_1").
		Return(model.UsageSnapshot{Tier: model.TierFree, AnalysesUsed: 0, Limit: 1}, nil)

	r := New(svc, analyzer, verifier, apicontext.NewManager(), Burst{PerSecond: 1, Size: 3}, metrics.New(), testutil.MakeNoopLogger())
	engine := r.Register()

	tests := []struct {
		name       string
		method     string
		path       string
		token      string
		wantStatus int
		wantBody   string
	}{
		{name: "health", method: http.MethodGet, path: "/", wantStatus: http.StatusOK, wantBody: `"ok":true`},
		{name: "metrics", method: http.MethodGet, path: "/metrics", wantStatus: http.StatusOK},
		{name: "usage without token", method: http.MethodGet, path: "/api/usage", wantStatus: http.StatusUnauthorized},
		{name: "usage with bad token", method: http.MethodGet, path: "/api/usage", token: "bad", wantStatus: http.StatusUnauthorized},
		{name: "usage", method: http.MethodGet, path: "/api/usage", token: "good", wantStatus: http.StatusOK, wantBody: `"limit":1`},
		{name: "analyze without token", method: http.MethodPost, path: "/api/analyze", wantStatus: http.StatusUnauthorized},
		{name: "unknown route", method: http.MethodGet, path: "/nope", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rec := httptest.NewRecorder()
			engine.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.Contains(t, rec.Body.String(), tt.wantBody)
			}
		})
	}
}
