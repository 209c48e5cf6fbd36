package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"
)

// MockBlobRepository is a mock implementation of BlobRepository
type MockBlobRepository struct {
	mock.Mock
}

// Save mocks the Save method
func (m *MockBlobRepository) Save(ctx context.Context, name string, reader io.Reader) (int64, error) {
	args := m.Called(ctx, name, reader)
	return args.Get(0).(int64), args.Error(1)
}

// Ping mocks the Ping method
func (m *MockBlobRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
