package handler

import (
	"context"
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/dtroode/vision-analyzer/internal/api/grpc/adminpb"
	"github.com/dtroode/vision-analyzer/internal/logger"
	"github.com/dtroode/vision-analyzer/internal/model"
)

// AdminService defines the entitlement operations reachable by billing
// collaborators.
type AdminService interface {
	GetUsage(ctx context.Context, userID string) (model.UsageSnapshot, error)
	UpgradeTier(ctx context.Context, userID string, tier model.Tier) (model.UsageSnapshot, error)
	ResetUsage(ctx context.Context, userID string) (model.UsageSnapshot, error)
}

var _ adminpb.AdminServer = (*Admin)(nil)

// Admin handles gRPC endpoints for entitlement administration.
type Admin struct {
	service AdminService
	logger  *logger.Logger
}

// NewAdmin creates a new Admin handler.
func NewAdmin(service AdminService, logger *logger.Logger) *Admin {
	return &Admin{service: service, logger: logger}
}

// GetUsage returns the usage of the requested user.
func (h *Admin) GetUsage(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := stringField(req, "user_id")
	if err != nil {
		return nil, handleError(err)
	}

	usage, err := h.service.GetUsage(ctx, userID)
	if err != nil {
		h.logger.Error("Admin handler: get usage failed",
			"user_id", userID,
			"error", err.Error())
		return nil, handleError(err)
	}

	return usageToStruct(userID, usage)
}

// UpgradeTier sets the tier of the requested user.
func (h *Admin) UpgradeTier(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := stringField(req, "user_id")
	if err != nil {
		return nil, handleError(err)
	}
	rawTier, err := stringField(req, "tier")
	if err != nil {
		return nil, handleError(err)
	}
	tier, err := model.ParseTier(rawTier)
	if err != nil {
		return nil, handleError(err)
	}

	usage, err := h.service.UpgradeTier(ctx, userID, tier)
	if err != nil {
		h.logger.Error("Admin handler: upgrade tier failed",
			"user_id", userID,
			"tier", tier,
			"error", err.Error())
		return nil, handleError(err)
	}

	h.logger.Info("Admin handler: tier changed",
		"user_id", userID,
		"tier", tier)

	return usageToStruct(userID, usage)
}

// ResetUsage zeroes the analysis counter of the requested user.
func (h *Admin) ResetUsage(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := stringField(req, "user_id")
	if err != nil {
		return nil, handleError(err)
	}

	usage, err := h.service.ResetUsage(ctx, userID)
	if err != nil {
		h.logger.Error("Admin handler: reset usage failed",
			"user_id", userID,
			"error", err.Error())
		return nil, handleError(err)
	}

	h.logger.Info("Admin handler: usage reset",
		"user_id", userID)

	return usageToStruct(userID, usage)
}

func stringField(req *structpb.Struct, name string) (string, error) {
	v, ok := req.GetFields()[name]
	if !ok {
		return "", fmt.Errorf("%w: %s is required", model.ErrInvalidArgument, name)
	}
	s, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok || s.StringValue == "" {
		return "", fmt.Errorf("%w: %s must be a non-empty string", model.ErrInvalidArgument, name)
	}
	return s.StringValue, nil
}

func usageToStruct(userID string, usage model.UsageSnapshot) (*structpb.Struct, error) {
	var limit any = usage.Limit
	if usage.IsUnlimited() {
		limit = "unlimited"
	}

	out, err := structpb.NewStruct(map[string]any{
		"user_id":       userID,
		"tier":          string(usage.Tier),
		"analyses_used": usage.AnalysesUsed,
		"limit":         limit,
	})
	if err != nil {
		return nil, handleError(fmt.Errorf("failed to encode usage: %w", err))
	}
	return out, nil
}
