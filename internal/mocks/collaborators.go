package mocks

import (
	"context"
	"io"
	"net"

	"github.com/stretchr/testify/mock"

	"github.com/dtroode/vision-analyzer/internal/model"
)

// Describer mocks model.Describer.
type Describer struct {
	mock.Mock
}

func NewDescriber(t TestingT) *Describer {
	m := &Describer{}
	register(&m.Mock, t)
	return m
}

func (m *Describer) Describe(ctx context.Context, image model.Image) (string, error) {
	args := m.Called(ctx, image)
	return args.String(0), args.Error(1)
}

// Storage mocks model.Storage.
type Storage struct {
	mock.Mock
}

func NewStorage(t TestingT) *Storage {
	m := &Storage{}
	register(&m.Mock, t)
	return m
}

func (m *Storage) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	args := m.Called(ctx, key, reader, size, contentType)
	return args.Error(0)
}

func (m *Storage) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

// IdentityVerifier mocks model.IdentityVerifier.
type IdentityVerifier struct {
	mock.Mock
}

func NewIdentityVerifier(t TestingT) *IdentityVerifier {
	m := &IdentityVerifier{}
	register(&m.Mock, t)
	return m
}

func (m *IdentityVerifier) Verify(ctx context.Context, token string) (string, error) {
	args := m.Called(ctx, token)
	return args.String(0), args.Error(1)
}

// SecurityLayer mocks model.SecurityLayer.
type SecurityLayer struct {
	mock.Mock
}

func NewSecurityLayer(t TestingT) *SecurityLayer {
	m := &SecurityLayer{}
	register(&m.Mock, t)
	return m
}

func (m *SecurityLayer) Listen(protocol, addr string) (net.Listener, error) {
	args := m.Called(protocol, addr)
	ln, _ := args.Get(0).(net.Listener)
	return ln, args.Error(1)
}
