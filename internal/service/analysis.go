package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/dtroode/vision-analyzer/internal/logger"
	"github.com/dtroode/vision-analyzer/internal/metrics"
	"github.com/dtroode/vision-analyzer/internal/model"
)

// Consumer takes analysis slots.
type Consumer interface {
	TryConsume(ctx context.Context, userID string) (model.UsageSnapshot, error)
}

// Analysis validates uploads, gates them on the user's quota and forwards
// them to the vision provider.
type Analysis struct {
	consumer  Consumer
	describer model.Describer
	archive   model.Storage
	maxSize   int64
	metrics   *metrics.Metrics
	logger    *logger.Logger
}

// NewAnalysis creates an Analysis service. archive may be nil.
func NewAnalysis(
	consumer Consumer,
	describer model.Describer,
	archive model.Storage,
	maxSize int64,
	metrics *metrics.Metrics,
	logger *logger.Logger,
) *Analysis {
	if maxSize <= 0 {
		maxSize = model.MaxImageSize
	}
	return &Analysis{
		consumer:  consumer,
		describer: describer,
		archive:   archive,
		maxSize:   maxSize,
		metrics:   metrics,
		logger:    logger,
	}
}

// MaxSize returns the upload bound in bytes.
func (a *Analysis) MaxSize() int64 {
	return a.maxSize
}

// Analyze describes data on behalf of userID. The quota slot is taken
// before the provider is called and is kept even if the provider fails.
func (a *Analysis) Analyze(ctx context.Context, userID string, data []byte, fileName string) (model.Analysis, error) {
	image, err := a.validate(data, fileName)
	if err != nil {
		a.metrics.RecordAnalysis("rejected")
		return model.Analysis{}, err
	}

	usage, err := a.consumer.TryConsume(ctx, userID)
	if err != nil {
		if errors.Is(err, model.ErrQuotaExceeded) {
			a.metrics.RecordAnalysis("quota_exceeded")
			return model.Analysis{Usage: usage}, err
		}
		a.metrics.RecordAnalysis("unavailable")
		return model.Analysis{}, err
	}

	a.store(ctx, userID, image)

	description, err := a.describer.Describe(ctx, image)
	if err != nil {
		a.metrics.RecordAnalysis("provider_error")
		a.logger.Warn("Analysis service: vision provider failed",
			"user_id", userID,
			"error", err.Error())

		var providerErr *model.ProviderError
		if errors.As(err, &providerErr) {
			return model.Analysis{Usage: usage}, err
		}
		return model.Analysis{Usage: usage}, &model.ProviderError{Message: err.Error(), Err: err}
	}

	a.metrics.RecordAnalysis("success")
	return model.Analysis{Description: description, Usage: usage}, nil
}

func (a *Analysis) validate(data []byte, fileName string) (model.Image, error) {
	if len(data) == 0 {
		return model.Image{}, fmt.Errorf("%w: empty upload", model.ErrInvalidImage)
	}
	if int64(len(data)) > a.maxSize {
		return model.Image{}, fmt.Errorf("%w: %d bytes exceeds %d", model.ErrImageTooLarge, len(data), a.maxSize)
	}

	contentType := mimetype.Detect(data).String()
	if _, ok := model.ImageFormats[contentType]; !ok {
		return model.Image{}, fmt.Errorf("%w: %s", model.ErrInvalidImage, contentType)
	}

	return model.Image{Data: data, ContentType: contentType, FileName: fileName}, nil
}

// store archives the image. Failures are logged and do not fail the request.
func (a *Analysis) store(ctx context.Context, userID string, image model.Image) {
	if a.archive == nil {
		return
	}

	key := fmt.Sprintf("%s/%s.%s", userID, uuid.NewString(), model.ImageFormats[image.ContentType])
	err := a.archive.Upload(ctx, key, bytes.NewReader(image.Data), int64(len(image.Data)), image.ContentType)
	if err != nil {
		a.logger.Warn("Analysis service: failed to archive image",
			"user_id", userID,
			"key", key,
			"error", err.Error())
		return
	}

	a.logger.Debug("Analysis service: image archived",
		"user_id", userID,
		"key", key)
}
