package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/dtroode/vision-analyzer/internal/model"
)

// EntitlementStore mocks model.EntitlementStore.
type EntitlementStore struct {
	mock.Mock
}

func NewEntitlementStore(t TestingT) *EntitlementStore {
	m := &EntitlementStore{}
	register(&m.Mock, t)
	return m
}

func (m *EntitlementStore) Get(ctx context.Context, userID string) (model.UserEntitlement, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(model.UserEntitlement), args.Error(1)
}

func (m *EntitlementStore) TryConsume(ctx context.Context, userID string, freeLimit int) (model.UserEntitlement, error) {
	args := m.Called(ctx, userID, freeLimit)
	return args.Get(0).(model.UserEntitlement), args.Error(1)
}

func (m *EntitlementStore) SetTier(ctx context.Context, userID string, tier model.Tier) (model.UserEntitlement, error) {
	args := m.Called(ctx, userID, tier)
	return args.Get(0).(model.UserEntitlement), args.Error(1)
}

func (m *EntitlementStore) ResetUsage(ctx context.Context, userID string) (model.UserEntitlement, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(model.UserEntitlement), args.Error(1)
}
