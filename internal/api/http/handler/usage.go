package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dtroode/vision-analyzer/internal/logger"
	"github.com/dtroode/vision-analyzer/internal/model"
)

// UsageService reports a user's entitlement state.
type UsageService interface {
	GetUsage(ctx context.Context, userID string) (model.UsageSnapshot, error)
}

// Usage serves the usage endpoint.
type Usage struct {
	service        UsageService
	contextManager model.ContextManager
	logger         *logger.Logger
}

func NewUsage(service UsageService, contextManager model.ContextManager, logger *logger.Logger) *Usage {
	return &Usage{service: service, contextManager: contextManager, logger: logger}
}

// Get returns the caller's tier, consumed analyses and limit.
func (h *Usage) Get(c *gin.Context) {
	ctx := c.Request.Context()

	userID, ok := h.contextManager.GetUserIDFromContext(ctx)
	if !ok {
		handleError(c, model.ErrUnauthorized)
		return
	}

	usage, err := h.service.GetUsage(ctx, userID)
	if err != nil {
		h.logger.Error("Usage handler: failed to get usage",
			"user_id", userID,
			"error", err.Error())
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, usage)
}
