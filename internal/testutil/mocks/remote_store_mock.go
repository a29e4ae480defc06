package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/vytor/fretlog/internal/remote"
)

// MockRemoteStore is a mock implementation of remote.Store
type MockRemoteStore struct {
	mock.Mock
}

func (m *MockRemoteStore) Upsert(ctx context.Context, table, id string, row remote.Row) error {
	args := m.Called(ctx, table, id, row)
	return args.Error(0)
}

func (m *MockRemoteStore) Delete(ctx context.Context, table, id string) error {
	args := m.Called(ctx, table, id)
	return args.Error(0)
}

func (m *MockRemoteStore) SelectAll(ctx context.Context, table string) ([]remote.Row, error) {
	args := m.Called(ctx, table)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]remote.Row), args.Error(1)
}
