package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dtroode/vision-analyzer/internal/model"
)

// Machine-readable error codes sent alongside the human-readable detail.
const (
	CodeUnauthorized  = "unauthorized"
	CodeQuotaExceeded = "quota_exceeded"
	CodeUnavailable   = "unavailable"
	CodeInvalidImage  = "invalid_image"
	CodeImageTooLarge = "image_too_large"
	CodeProviderError = "provider_error"
	CodeRateLimited   = "rate_limited"
	CodeInternal      = "internal"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Detail string `json:"detail"`
	Code   string `json:"code"`
}

// AbortWithError writes an error body and stops the handler chain.
func AbortWithError(c *gin.Context, status int, code, detail string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Detail: detail, Code: code})
}

func handleError(c *gin.Context, err error) {
	var providerErr *model.ProviderError

	switch {
	case errors.Is(err, model.ErrUnauthorized):
		AbortWithError(c, http.StatusUnauthorized, CodeUnauthorized, "authentication required")
	case errors.Is(err, model.ErrQuotaExceeded):
		AbortWithError(c, http.StatusForbidden, CodeQuotaExceeded, "Free tier limit reached. Upgrade to premium for unlimited analyses.")
	case errors.Is(err, model.ErrImageTooLarge):
		AbortWithError(c, http.StatusRequestEntityTooLarge, CodeImageTooLarge, "image exceeds the upload size limit")
	case errors.Is(err, model.ErrInvalidImage):
		AbortWithError(c, http.StatusBadRequest, CodeInvalidImage, "upload must be a JPEG, PNG or WebP image")
	case errors.Is(err, model.ErrUnavailable):
		AbortWithError(c, http.StatusServiceUnavailable, CodeUnavailable, "usage service temporarily unavailable")
	case errors.As(err, &providerErr):
		AbortWithError(c, http.StatusBadGateway, CodeProviderError, providerErr.Error())
	default:
		AbortWithError(c, http.StatusInternalServerError, CodeInternal, "internal server error")
	}
}
