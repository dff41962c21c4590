package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dtroode/vision-analyzer/internal/logger"
	"github.com/dtroode/vision-analyzer/internal/model"
)

// multipartOverhead is the slack allowed on top of the image bound for
// multipart boundaries and part headers.
const multipartOverhead = 64 << 10

// Analyzer runs quota-gated image analysis.
type Analyzer interface {
	Analyze(ctx context.Context, userID string, data []byte, fileName string) (model.Analysis, error)
	MaxSize() int64
}

// Analyze serves the image analysis endpoint.
type Analyze struct {
	analyzer       Analyzer
	contextManager model.ContextManager
	logger         *logger.Logger
}

func NewAnalyze(analyzer Analyzer, contextManager model.ContextManager, logger *logger.Logger) *Analyze {
	return &Analyze{analyzer: analyzer, contextManager: contextManager, logger: logger}
}

// Post reads the multipart "file" field and returns its description
// together with the usage after the analysis.
func (h *Analyze) Post(c *gin.Context) {
	ctx := c.Request.Context()

	userID, ok := h.contextManager.GetUserIDFromContext(ctx)
	if !ok {
		handleError(c, model.ErrUnauthorized)
		return
	}

	data, fileName, err := h.readUpload(c)
	if err != nil {
		h.logger.Info("Analyze handler: rejected upload",
			"user_id", userID,
			"error", err.Error())
		handleError(c, err)
		return
	}

	result, err := h.analyzer.Analyze(ctx, userID, data, fileName)
	if err != nil {
		if !errors.Is(err, model.ErrQuotaExceeded) {
			h.logger.Error("Analyze handler: analysis failed",
				"user_id", userID,
				"error", err.Error())
		}
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Analyze) readUpload(c *gin.Context) ([]byte, string, error) {
	maxSize := h.analyzer.MaxSize()
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize+multipartOverhead)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return nil, "", fmt.Errorf("%w: request body too large", model.ErrImageTooLarge)
		}
		return nil, "", fmt.Errorf("%w: missing file field: %w", model.ErrInvalidImage, err)
	}
	if fileHeader.Size > maxSize {
		return nil, "", fmt.Errorf("%w: %d bytes exceeds %d", model.ErrImageTooLarge, fileHeader.Size, maxSize)
	}

	f, err := fileHeader.Open()
	if err != nil {
		return nil, "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxSize+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read upload: %w", err)
	}

	return data, fileHeader.Filename, nil
}
