package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	apicontext "github.com/dtroode/vision-analyzer/internal/api/context"
	"github.com/dtroode/vision-analyzer/internal/mocks"
	"github.com/dtroode/vision-analyzer/internal/model"
	"github.com/dtroode/vision-analyzer/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestAuthenticate_Handle(t *testing.T) {
	tests := []struct {
		name        string
		header      string
		verifyID    string
		verifyErr   error
		expectCall  bool
		wantStatus  int
		wantSubject string
	}{
		{
			name:       "missing authorization header",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong scheme",
			header:     "Token abc",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "empty bearer",
			header:     "Bearer   ",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "invalid token",
			header:     "Bearer invalid",
			verifyErr:  model.ErrUnauthorized,
			expectCall: true,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "empty subject",
			header:     "Bearer token",
			expectCall: true,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:        "valid token",
			header:      "Bearer token",
			verifyID:    "user_1",
			expectCall:  true,
			wantStatus:  http.StatusOK,
			wantSubject: "user_1",
		},
		{
			name:        "lowercase scheme",
			header:      "bearer token",
			verifyID:    "user_1",
			expectCall:  true,
			wantStatus:  http.StatusOK,
			wantSubject: "user_1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verifier := mocks.NewIdentityVerifier(t)
			if tt.expectCall {
				verifier.On("Verify", mock.Anything, mock.AnythingOfType("string")).Return(tt.verifyID, tt.verifyErr)
			}
			cm := apicontext.NewManager()
			m := NewAuthenticate(verifier, cm, testutil.MakeNoopLogger())

			var gotSubject string
			r := gin.New()
			r.GET("/protected", m.Handle, func(c *gin.Context) {
				gotSubject, _ = cm.GetUserIDFromContext(c.Request.Context())
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantSubject, gotSubject)
			if tt.wantStatus == http.StatusUnauthorized {
				assert.Contains(t, rec.Body.String(), `"code":"unauthorized"`)
			}
		})
	}
}

func TestExtractBearerToken(t *testing.T) {
	token, ok := extractBearerToken("Bearer abc.def")
	assert.True(t, ok)
	assert.Equal(t, "abc.def", token)

	_, ok = extractBearerToken("Bearer")
	assert.False(t, ok)
}

func TestErrString(t *testing.T) {
	assert.Equal(t, "empty subject", errString(nil))
	assert.Equal(t, "boom", errString(errors.New("boom")))
}
