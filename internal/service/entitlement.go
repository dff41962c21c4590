package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/dtroode/vision-analyzer/internal/logger"
	"github.com/dtroode/vision-analyzer/internal/metrics"
	"github.com/dtroode/vision-analyzer/internal/model"
)

// Entitlement decides whether a user may run one more analysis and reports
// usage state. Atomicity of the consume step is delegated to the store.
type Entitlement struct {
	store     model.EntitlementStore
	freeLimit int
	metrics   *metrics.Metrics
	logger    *logger.Logger
}

func NewEntitlement(store model.EntitlementStore, freeLimit int, metrics *metrics.Metrics, logger *logger.Logger) *Entitlement {
	return &Entitlement{
		store:     store,
		freeLimit: freeLimit,
		metrics:   metrics,
		logger:    logger,
	}
}

// FreeLimit returns the free-tier ceiling.
func (s *Entitlement) FreeLimit() int {
	return s.freeLimit
}

// GetUsage returns the current usage of userID. Users without a record get
// the initial free snapshot; no record is created.
func (s *Entitlement) GetUsage(ctx context.Context, userID string) (model.UsageSnapshot, error) {
	if userID == "" {
		return model.UsageSnapshot{}, model.ErrUnauthorized
	}

	ent, err := s.store.Get(ctx, userID)
	if errors.Is(err, model.ErrNotFound) {
		return model.UserEntitlement{UserID: userID, Tier: model.TierFree}.Snapshot(s.freeLimit), nil
	}
	if err != nil {
		s.metrics.RecordStoreError("get")
		s.logger.Error("Entitlement service: failed to load usage",
			"user_id", userID,
			"error", err.Error())
		return model.UsageSnapshot{}, fmt.Errorf("%w: %w", model.ErrUnavailable, err)
	}

	return ent.Snapshot(s.freeLimit), nil
}

// TryConsume takes one analysis slot for userID. On ErrQuotaExceeded the
// returned snapshot holds the unchanged counter.
func (s *Entitlement) TryConsume(ctx context.Context, userID string) (model.UsageSnapshot, error) {
	if userID == "" {
		return model.UsageSnapshot{}, model.ErrUnauthorized
	}

	ent, err := s.store.TryConsume(ctx, userID, s.freeLimit)
	switch {
	case err == nil:
		s.metrics.RecordConsumed(string(ent.Tier))
		s.logger.Debug("Entitlement service: analysis slot consumed",
			"user_id", userID,
			"tier", ent.Tier,
			"analyses_used", ent.AnalysesUsed)
		return ent.Snapshot(s.freeLimit), nil
	case errors.Is(err, model.ErrQuotaExceeded):
		s.metrics.RecordQuotaExceeded()
		s.logger.Info("Entitlement service: quota exceeded",
			"user_id", userID,
			"analyses_used", ent.AnalysesUsed,
			"limit", s.freeLimit)
		return ent.Snapshot(s.freeLimit), model.ErrQuotaExceeded
	default:
		s.metrics.RecordStoreError("consume")
		s.logger.Error("Entitlement service: failed to consume analysis",
			"user_id", userID,
			"error", err.Error())
		return model.UsageSnapshot{}, fmt.Errorf("%w: %w", model.ErrUnavailable, err)
	}
}

// UpgradeTier changes the tier of userID. It is an administrative hook for
// billing integrations and is not reachable from the client API.
func (s *Entitlement) UpgradeTier(ctx context.Context, userID string, tier model.Tier) (model.UsageSnapshot, error) {
	if userID == "" {
		return model.UsageSnapshot{}, fmt.Errorf("%w: user id is required", model.ErrInvalidArgument)
	}
	if _, err := model.ParseTier(string(tier)); err != nil {
		return model.UsageSnapshot{}, err
	}

	ent, err := s.store.SetTier(ctx, userID, tier)
	if err != nil {
		s.metrics.RecordStoreError("set_tier")
		s.logger.Error("Entitlement service: failed to change tier",
			"user_id", userID,
			"tier", tier,
			"error", err.Error())
		return model.UsageSnapshot{}, fmt.Errorf("%w: %w", model.ErrUnavailable, err)
	}

	s.logger.Info("Entitlement service: tier changed",
		"user_id", userID,
		"tier", ent.Tier)
	return ent.Snapshot(s.freeLimit), nil
}

// ResetUsage zeroes the counter of userID, e.g. on a billing period
// rollover. It is the only way the counter decreases.
func (s *Entitlement) ResetUsage(ctx context.Context, userID string) (model.UsageSnapshot, error) {
	if userID == "" {
		return model.UsageSnapshot{}, fmt.Errorf("%w: user id is required", model.ErrInvalidArgument)
	}

	ent, err := s.store.ResetUsage(ctx, userID)
	if err != nil {
		s.metrics.RecordStoreError("reset")
		s.logger.Error("Entitlement service: failed to reset usage",
			"user_id", userID,
			"error", err.Error())
		return model.UsageSnapshot{}, fmt.Errorf("%w: %w", model.ErrUnavailable, err)
	}

	s.logger.Info("Entitlement service: usage reset",
		"user_id", userID)
	return ent.Snapshot(s.freeLimit), nil
}
