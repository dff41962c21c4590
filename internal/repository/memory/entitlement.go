package memory

import (
	"context"
	"sync"
	"time"

	"github.com/dtroode/vision-analyzer/internal/model"
)

var _ model.EntitlementStore = (*EntitlementRepository)(nil)

type entry struct {
	mu  sync.Mutex
	ent model.UserEntitlement
}

// EntitlementRepository keeps entitlements in process memory. Each user has
// its own lock; users never contend with each other.
type EntitlementRepository struct {
	entries sync.Map // user id -> *entry
	now     func() time.Time
}

func NewEntitlementRepository() *EntitlementRepository {
	return &EntitlementRepository{now: time.Now}
}

func (r *EntitlementRepository) load(userID string) (*entry, bool) {
	v, ok := r.entries.Load(userID)
	if !ok {
		return nil, false
	}
	return v.(*entry), true
}

func (r *EntitlementRepository) loadOrCreate(userID string) *entry {
	if e, ok := r.load(userID); ok {
		return e
	}
	v, _ := r.entries.LoadOrStore(userID, &entry{ent: model.NewUserEntitlement(userID, r.now())})
	return v.(*entry)
}

func (r *EntitlementRepository) Get(_ context.Context, userID string) (model.UserEntitlement, error) {
	e, ok := r.load(userID)
	if !ok {
		return model.UserEntitlement{}, model.ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ent, nil
}

func (r *EntitlementRepository) TryConsume(_ context.Context, userID string, freeLimit int) (model.UserEntitlement, error) {
	e := r.loadOrCreate(userID)

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.ent.Tier == model.TierFree && e.ent.AnalysesUsed >= freeLimit {
		return e.ent, model.ErrQuotaExceeded
	}

	e.ent.AnalysesUsed++
	e.ent.UpdatedAt = r.now()
	return e.ent, nil
}

func (r *EntitlementRepository) SetTier(_ context.Context, userID string, tier model.Tier) (model.UserEntitlement, error) {
	e := r.loadOrCreate(userID)

	e.mu.Lock()
	defer e.mu.Unlock()

	e.ent.Tier = tier
	e.ent.UpdatedAt = r.now()
	return e.ent, nil
}

func (r *EntitlementRepository) ResetUsage(_ context.Context, userID string) (model.UserEntitlement, error) {
	e := r.loadOrCreate(userID)

	e.mu.Lock()
	defer e.mu.Unlock()

	e.ent.AnalysesUsed = 0
	e.ent.UpdatedAt = r.now()
	return e.ent, nil
}
