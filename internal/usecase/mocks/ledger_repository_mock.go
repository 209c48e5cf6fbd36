package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/zots0127/uplink/internal/domain/entities"
)

// MockLedgerRepository is a mock implementation of LedgerRepository
type MockLedgerRepository struct {
	mock.Mock
}

// Put mocks the Put method
func (m *MockLedgerRepository) Put(ctx context.Context, auth *entities.UploadAuthorization) error {
	args := m.Called(ctx, auth)
	return args.Error(0)
}

// Get mocks the Get method
func (m *MockLedgerRepository) Get(ctx context.Context, token string) (*entities.UploadAuthorization, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.UploadAuthorization), args.Error(1)
}

// Consume mocks the Consume method
func (m *MockLedgerRepository) Consume(ctx context.Context, token string, now time.Time) (bool, error) {
	args := m.Called(ctx, token, now)
	return args.Bool(0), args.Error(1)
}

// PurgeExpired mocks the PurgeExpired method
func (m *MockLedgerRepository) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

// Ping mocks the Ping method
func (m *MockLedgerRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
