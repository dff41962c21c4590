package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dtroode/vision-analyzer/internal/model"
)

var _ model.EntitlementStore = (*EntitlementRepository)(nil)

type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// EntitlementRepository stores one row per user. The consume step is a
// single conditional UPDATE, so the row lock serializes concurrent
// requests of the same user.
type EntitlementRepository struct {
	db dbtx
}

func NewEntitlementRepository(db *Connection) *EntitlementRepository {
	return &EntitlementRepository{
		db: db,
	}
}

const entitlementColumns = `user_id, tier, analyses_used, created_at, updated_at`

func scanEntitlement(row pgx.Row) (model.UserEntitlement, error) {
	var (
		ent  model.UserEntitlement
		tier string
	)
	err := row.Scan(&ent.UserID, &tier, &ent.AnalysesUsed, &ent.CreatedAt, &ent.UpdatedAt)
	if err != nil {
		return model.UserEntitlement{}, err
	}
	ent.Tier = model.Tier(tier)
	return ent, nil
}

func (r *EntitlementRepository) Get(ctx context.Context, userID string) (model.UserEntitlement, error) {
	query := `SELECT ` + entitlementColumns + ` FROM entitlements WHERE user_id = $1`

	ent, err := scanEntitlement(r.db.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.UserEntitlement{}, model.ErrNotFound
		}
		return model.UserEntitlement{}, fmt.Errorf("failed to get entitlement: %w", err)
	}

	return ent, nil
}

func (r *EntitlementRepository) TryConsume(ctx context.Context, userID string, freeLimit int) (model.UserEntitlement, error) {
	ensure := `INSERT INTO entitlements (user_id, tier, analyses_used)
			   VALUES ($1, $2, 0)
			   ON CONFLICT (user_id) DO NOTHING`
	if _, err := r.db.Exec(ctx, ensure, userID, string(model.TierFree)); err != nil {
		return model.UserEntitlement{}, fmt.Errorf("failed to create entitlement: %w", err)
	}

	consume := `UPDATE entitlements
				SET analyses_used = analyses_used + 1, updated_at = now()
				WHERE user_id = $1 AND (tier = $2 OR analyses_used < $3)
				RETURNING ` + entitlementColumns

	ent, err := scanEntitlement(r.db.QueryRow(ctx, consume, userID, string(model.TierPremium), freeLimit))
	if err == nil {
		return ent, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return model.UserEntitlement{}, fmt.Errorf("failed to consume analysis: %w", err)
	}

	current, err := r.Get(ctx, userID)
	if err != nil {
		return model.UserEntitlement{}, err
	}
	return current, model.ErrQuotaExceeded
}

func (r *EntitlementRepository) SetTier(ctx context.Context, userID string, tier model.Tier) (model.UserEntitlement, error) {
	query := `INSERT INTO entitlements (user_id, tier, analyses_used)
			  VALUES ($1, $2, 0)
			  ON CONFLICT (user_id) DO UPDATE SET tier = EXCLUDED.tier, updated_at = now()
			  RETURNING ` + entitlementColumns

	ent, err := scanEntitlement(r.db.QueryRow(ctx, query, userID, string(tier)))
	if err != nil {
		return model.UserEntitlement{}, fmt.Errorf("failed to set tier: %w", err)
	}

	return ent, nil
}

func (r *EntitlementRepository) ResetUsage(ctx context.Context, userID string) (model.UserEntitlement, error) {
	query := `INSERT INTO entitlements (user_id, tier, analyses_used)
			  VALUES ($1, $2, 0)
			  ON CONFLICT (user_id) DO UPDATE SET analyses_used = 0, updated_at = now()
			  RETURNING ` + entitlementColumns

	ent, err := scanEntitlement(r.db.QueryRow(ctx, query, userID, string(model.TierFree)))
	if err != nil {
		return model.UserEntitlement{}, fmt.Errorf("failed to reset usage: %w", err)
	}

	return ent, nil
}
