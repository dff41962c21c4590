package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apicontext "github.com/dtroode/vision-analyzer/internal/api/context"
	"github.com/dtroode/vision-analyzer/internal/mocks"
	"github.com/dtroode/vision-analyzer/internal/model"
	"github.com/dtroode/vision-analyzer/internal/testutil"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func init() {
	gin.SetMode(gin.TestMode)
}

// withUser mimics the authenticate middleware.
func withUser(userID string) gin.HandlerFunc {
	cm := apicontext.NewManager()
	return func(c *gin.Context) {
		if userID != "" {
			c.Request = c.Request.WithContext(cm.SetUserIDToContext(c.Request.Context(), userID))
		}
		c.Next()
	}
}

func multipartBody(t *testing.T, field, fileName string, data []byte) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile(field, fileName)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	return body, w.FormDataContentType()
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHealth(t *testing.T) {
	r := gin.New()
	r.GET("/", Health)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
}

func TestUsage_Get(t *testing.T) {
	tests := []struct {
		name       string
		userID     string
		setup      func(s *mocks.EntitlementService)
		wantStatus int
		wantBody   string
		wantCode   string
	}{
		{
			name:   "free user",
			userID: "user_1",
			setup: func(s *mocks.EntitlementService) {
				s.On("GetUsage", mock.Anything, "user_1").
					Return(model.UsageSnapshot{Tier: model.TierFree, AnalysesUsed: 0, Limit: 1}, nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"tier":"free","analyses_used":0,"limit":1}`,
		},
		{
			name:   "premium user",
			userID: "user_2",
			setup: func(s *mocks.EntitlementService) {
				s.On("GetUsage", mock.Anything, "user_2").
					Return(model.UsageSnapshot{Tier: model.TierPremium, AnalysesUsed: 42, Limit: model.Unlimited}, nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"tier":"premium","analyses_used":42,"limit":"unlimited"}`,
		},
		{
			name:       "no identity",
			setup:      func(s *mocks.EntitlementService) {},
			wantStatus: http.StatusUnauthorized,
			wantCode:   CodeUnauthorized,
		},
		{
			name:   "store unavailable",
			userID: "user_3",
			setup: func(s *mocks.EntitlementService) {
				s.On("GetUsage", mock.Anything, "user_3").
					Return(model.UsageSnapshot{}, errors.Join(model.ErrUnavailable, errors.New("conn refused")))
			},
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   CodeUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := mocks.NewEntitlementService(t)
			tt.setup(svc)
			h := NewUsage(svc, apicontext.NewManager(), testutil.MakeNoopLogger())

			r := gin.New()
			r.GET("/api/usage", withUser(tt.userID), h.Get)

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/usage", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, rec.Body.String())
			}
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, decodeError(t, rec).Code)
			}
		})
	}
}

func TestAnalyze_Post(t *testing.T) {
	tests := []struct {
		name       string
		userID     string
		field      string
		data       []byte
		maxSize    int64
		setup      func(a *mocks.Analyzer)
		wantStatus int
		wantCode   string
		wantBody   string
	}{
		{
			name:    "success",
			userID:  "user_1",
			field:   "file",
			data:    pngHeader,
			maxSize: 1 << 20,
			setup: func(a *mocks.Analyzer) {
				a.On("Analyze", mock.Anything, "user_1", pngHeader, "photo.png").Return(model.Analysis{
					Description: "A single pixel.",
					Usage:       model.UsageSnapshot{Tier: model.TierFree, AnalysesUsed: 1, Limit: 1},
				}, nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"description":"A single pixel.","usage":{"tier":"free","analyses_used":1,"limit":1}}`,
		},
		{
			name:    "quota exceeded",
			userID:  "user_1",
			field:   "file",
			data:    pngHeader,
			maxSize: 1 << 20,
			setup: func(a *mocks.Analyzer) {
				a.On("Analyze", mock.Anything, "user_1", pngHeader, "photo.png").
					Return(model.Analysis{}, model.ErrQuotaExceeded)
			},
			wantStatus: http.StatusForbidden,
			wantCode:   CodeQuotaExceeded,
		},
		{
			name:    "invalid image",
			userID:  "user_1",
			field:   "file",
			data:    []byte("plain text"),
			maxSize: 1 << 20,
			setup: func(a *mocks.Analyzer) {
				a.On("Analyze", mock.Anything, "user_1", []byte("plain text"), "photo.png").
					Return(model.Analysis{}, model.ErrInvalidImage)
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeInvalidImage,
		},
		{
			name:    "provider error",
			userID:  "user_1",
			field:   "file",
			data:    pngHeader,
			maxSize: 1 << 20,
			setup: func(a *mocks.Analyzer) {
				a.On("Analyze", mock.Anything, "user_1", pngHeader, "photo.png").
					Return(model.Analysis{}, &model.ProviderError{Message: "model overloaded"})
			},
			wantStatus: http.StatusBadGateway,
			wantCode:   CodeProviderError,
		},
		{
			name:    "store unavailable",
			userID:  "user_1",
			field:   "file",
			data:    pngHeader,
			maxSize: 1 << 20,
			setup: func(a *mocks.Analyzer) {
				a.On("Analyze", mock.Anything, "user_1", pngHeader, "photo.png").
					Return(model.Analysis{}, model.ErrUnavailable)
			},
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   CodeUnavailable,
		},
		{
			name:    "unexpected error",
			userID:  "user_1",
			field:   "file",
			data:    pngHeader,
			maxSize: 1 << 20,
			setup: func(a *mocks.Analyzer) {
				a.On("Analyze", mock.Anything, "user_1", pngHeader, "photo.png").
					Return(model.Analysis{}, errors.New("boom"))
			},
			wantStatus: http.StatusInternalServerError,
			wantCode:   CodeInternal,
		},
		{
			name:       "file too large",
			userID:     "user_1",
			field:      "file",
			data:       bytes.Repeat([]byte{0xff}, 64),
			maxSize:    16,
			setup:      func(a *mocks.Analyzer) {},
			wantStatus: http.StatusRequestEntityTooLarge,
			wantCode:   CodeImageTooLarge,
		},
		{
			name:       "missing file field",
			userID:     "user_1",
			field:      "image",
			data:       pngHeader,
			maxSize:    1 << 20,
			setup:      func(a *mocks.Analyzer) {},
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeInvalidImage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analyzer := mocks.NewAnalyzer(t)
			analyzer.On("MaxSize").Return(tt.maxSize)
			tt.setup(analyzer)
			h := NewAnalyze(analyzer, apicontext.NewManager(), testutil.MakeNoopLogger())

			r := gin.New()
			r.POST("/api/analyze", withUser(tt.userID), h.Post)

			body, contentType := multipartBody(t, tt.field, "photo.png", tt.data)
			req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, rec.Body.String())
			}
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, decodeError(t, rec).Code)
			}
		})
	}
}

func TestAnalyze_Post_Unauthenticated(t *testing.T) {
	analyzer := mocks.NewAnalyzer(t)
	h := NewAnalyze(analyzer, apicontext.NewManager(), testutil.MakeNoopLogger())

	r := gin.New()
	r.POST("/api/analyze", h.Post)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/analyze", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, CodeUnauthorized, resp.Code)
	assert.NotEmpty(t, resp.Detail)
}

func TestHandleError_QuotaDetail(t *testing.T) {
	r := gin.New()
	r.GET("/", func(c *gin.Context) { handleError(c, model.ErrQuotaExceeded) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	resp := decodeError(t, rec)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, resp.Detail, "Upgrade to premium")
}
