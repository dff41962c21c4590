package model

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Tier is the entitlement class of a user.
type Tier string

const (
	// TierFree is limited to a fixed number of analyses.
	TierFree Tier = "free"
	// TierPremium has no analysis ceiling.
	TierPremium Tier = "premium"
)

// ParseTier converts a raw value into a known Tier.
func ParseTier(s string) (Tier, error) {
	switch Tier(s) {
	case TierFree, TierPremium:
		return Tier(s), nil
	default:
		return "", fmt.Errorf("%w: unknown tier %q", ErrInvalidArgument, s)
	}
}

// Unlimited is the Limit value reported for tiers without a ceiling.
const Unlimited = -1

// EntitlementStore persists per-user entitlement records.
//
// TryConsume must perform the limit check and the increment as one
// indivisible step for a given user.
type EntitlementStore interface {
	// Get returns ErrNotFound for users that have no record yet.
	Get(ctx context.Context, userID string) (UserEntitlement, error)
	// TryConsume creates the record if missing and increments the counter
	// unless a free-tier user already reached freeLimit, in which case it
	// returns the unchanged record and ErrQuotaExceeded.
	TryConsume(ctx context.Context, userID string, freeLimit int) (UserEntitlement, error)
	SetTier(ctx context.Context, userID string, tier Tier) (UserEntitlement, error)
	ResetUsage(ctx context.Context, userID string) (UserEntitlement, error)
}

// UserEntitlement is the durable per-user quota state.
type UserEntitlement struct {
	UserID       string
	Tier         Tier
	AnalysesUsed int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewUserEntitlement returns the record a user starts with.
func NewUserEntitlement(userID string, now time.Time) UserEntitlement {
	return UserEntitlement{
		UserID:    userID,
		Tier:      TierFree,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Snapshot renders the record against the configured free-tier limit.
func (e UserEntitlement) Snapshot(freeLimit int) UsageSnapshot {
	limit := freeLimit
	if e.Tier == TierPremium {
		limit = Unlimited
	}
	return UsageSnapshot{
		Tier:         e.Tier,
		AnalysesUsed: e.AnalysesUsed,
		Limit:        limit,
	}
}

// UsageSnapshot is the usage state reported to clients.
type UsageSnapshot struct {
	Tier         Tier
	AnalysesUsed int
	Limit        int
}

// IsUnlimited reports whether the snapshot has no ceiling.
func (s UsageSnapshot) IsUnlimited() bool {
	return s.Limit == Unlimited
}

type usageSnapshotJSON struct {
	Tier         Tier `json:"tier"`
	AnalysesUsed int  `json:"analyses_used"`
	Limit        any  `json:"limit"`
}

// MarshalJSON encodes Limit as an integer or the literal "unlimited".
func (s UsageSnapshot) MarshalJSON() ([]byte, error) {
	out := usageSnapshotJSON{Tier: s.Tier, AnalysesUsed: s.AnalysesUsed, Limit: s.Limit}
	if s.IsUnlimited() {
		out.Limit = "unlimited"
	}
	return json.Marshal(out)
}
