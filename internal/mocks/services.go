package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/dtroode/vision-analyzer/internal/model"
)

// EntitlementService mocks the entitlement operations used by transports.
type EntitlementService struct {
	mock.Mock
}

func NewEntitlementService(t TestingT) *EntitlementService {
	m := &EntitlementService{}
	register(&m.Mock, t)
	return m
}

func (m *EntitlementService) GetUsage(ctx context.Context, userID string) (model.UsageSnapshot, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(model.UsageSnapshot), args.Error(1)
}

func (m *EntitlementService) TryConsume(ctx context.Context, userID string) (model.UsageSnapshot, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(model.UsageSnapshot), args.Error(1)
}

func (m *EntitlementService) UpgradeTier(ctx context.Context, userID string, tier model.Tier) (model.UsageSnapshot, error) {
	args := m.Called(ctx, userID, tier)
	return args.Get(0).(model.UsageSnapshot), args.Error(1)
}

func (m *EntitlementService) ResetUsage(ctx context.Context, userID string) (model.UsageSnapshot, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(model.UsageSnapshot), args.Error(1)
}

// Analyzer mocks the analyze operation used by the HTTP handler.
type Analyzer struct {
	mock.Mock
}

func NewAnalyzer(t TestingT) *Analyzer {
	m := &Analyzer{}
	register(&m.Mock, t)
	return m
}

func (m *Analyzer) Analyze(ctx context.Context, userID string, data []byte, fileName string) (model.Analysis, error) {
	args := m.Called(ctx, userID, data, fileName)
	return args.Get(0).(model.Analysis), args.Error(1)
}

func (m *Analyzer) MaxSize() int64 {
	args := m.Called()
	return args.Get(0).(int64)
}
