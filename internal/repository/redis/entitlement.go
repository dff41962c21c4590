package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/dtroode/vision-analyzer/internal/model"
)

var _ model.EntitlementStore = (*EntitlementRepository)(nil)

// consumeScript runs create, check and increment as one server-side step.
// KEYS[1] entitlement hash; ARGV: free tier, free limit, now (unix ms).
var consumeScript = redis.NewScript(`
local key = KEYS[1]
if redis.call('EXISTS', key) == 0 then
  redis.call('HSET', key, 'tier', ARGV[1], 'used', 0, 'created_at', ARGV[3], 'updated_at', ARGV[3])
end
local tier = redis.call('HGET', key, 'tier')
local used = tonumber(redis.call('HGET', key, 'used'))
local ok = 1
if tier == ARGV[1] and used >= tonumber(ARGV[2]) then
  ok = 0
else
  used = redis.call('HINCRBY', key, 'used', 1)
  redis.call('HSET', key, 'updated_at', ARGV[3])
end
return {ok, tier, used, redis.call('HGET', key, 'created_at'), redis.call('HGET', key, 'updated_at')}
`)

// EntitlementRepository keeps one hash per user.
type EntitlementRepository struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

// NewClient connects to the redis server at url and checks it responds.
func NewClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}

func NewEntitlementRepository(client *redis.Client, prefix string) *EntitlementRepository {
	if prefix == "" {
		prefix = "entitlement"
	}
	return &EntitlementRepository{client: client, prefix: prefix, now: time.Now}
}

func (r *EntitlementRepository) key(userID string) string {
	return r.prefix + ":" + userID
}

func (r *EntitlementRepository) Get(ctx context.Context, userID string) (model.UserEntitlement, error) {
	fields, err := r.client.HGetAll(ctx, r.key(userID)).Result()
	if err != nil {
		return model.UserEntitlement{}, fmt.Errorf("failed to get entitlement: %w", err)
	}
	if len(fields) == 0 {
		return model.UserEntitlement{}, model.ErrNotFound
	}

	return fromHash(userID, fields)
}

func (r *EntitlementRepository) TryConsume(ctx context.Context, userID string, freeLimit int) (model.UserEntitlement, error) {
	now := strconv.FormatInt(r.now().UnixMilli(), 10)

	res, err := consumeScript.Run(ctx, r.client, []string{r.key(userID)}, string(model.TierFree), freeLimit, now).Slice()
	if err != nil {
		return model.UserEntitlement{}, fmt.Errorf("failed to consume analysis: %w", err)
	}
	if len(res) != 5 {
		return model.UserEntitlement{}, fmt.Errorf("unexpected consume reply of length %d", len(res))
	}

	ok, _ := res[0].(int64)
	used, _ := res[2].(int64)
	tier, _ := res[1].(string)
	created, _ := res[3].(string)
	updated, _ := res[4].(string)

	ent, err := fromHash(userID, map[string]string{
		"tier":       tier,
		"used":       strconv.FormatInt(used, 10),
		"created_at": created,
		"updated_at": updated,
	})
	if err != nil {
		return model.UserEntitlement{}, err
	}
	if ok == 0 {
		return ent, model.ErrQuotaExceeded
	}
	return ent, nil
}

func (r *EntitlementRepository) SetTier(ctx context.Context, userID string, tier model.Tier) (model.UserEntitlement, error) {
	return r.update(ctx, userID, "tier", string(tier), map[string]any{"used": 0})
}

func (r *EntitlementRepository) ResetUsage(ctx context.Context, userID string) (model.UserEntitlement, error) {
	return r.update(ctx, userID, "used", 0, map[string]any{"tier": string(model.TierFree)})
}

// update sets one field in a MULTI/EXEC block, filling defaults for a new hash.
func (r *EntitlementRepository) update(ctx context.Context, userID, field string, value any, defaults map[string]any) (model.UserEntitlement, error) {
	key := r.key(userID)
	now := strconv.FormatInt(r.now().UnixMilli(), 10)

	var all *redis.StringStringMapCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSetNX(ctx, key, "created_at", now)
		for k, v := range defaults {
			pipe.HSetNX(ctx, key, k, v)
		}
		pipe.HSet(ctx, key, field, value, "updated_at", now)
		all = pipe.HGetAll(ctx, key)
		return nil
	})
	if err != nil {
		return model.UserEntitlement{}, fmt.Errorf("failed to update entitlement: %w", err)
	}

	return fromHash(userID, all.Val())
}

func fromHash(userID string, fields map[string]string) (model.UserEntitlement, error) {
	used, err := strconv.Atoi(fields["used"])
	if err != nil {
		return model.UserEntitlement{}, fmt.Errorf("malformed usage counter for %s: %w", userID, err)
	}

	return model.UserEntitlement{
		UserID:       userID,
		Tier:         model.Tier(fields["tier"]),
		AnalysesUsed: used,
		CreatedAt:    parseMillis(fields["created_at"]),
		UpdatedAt:    parseMillis(fields["updated_at"]),
	}, nil
}

func parseMillis(s string) time.Time {
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}
