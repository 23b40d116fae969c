package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"starter-server/internal/repositories"
)

// MockDatabaseManager is a mock of the DatabaseMgr, used where the connection lifecycle itself is under test.
type MockDatabaseManager struct {
	mock.Mock
}

func (m *MockDatabaseManager) Connect(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockDatabaseManager) Close(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockDatabaseManager) Drop(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockDatabaseManager) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockDatabaseManager) Users() repositories.UserRepository {
	args := m.Called()
	return args.Get(0).(repositories.UserRepository)
}

func (m *MockDatabaseManager) VerificationTokens() repositories.VerificationTokenRepository {
	args := m.Called()
	return args.Get(0).(repositories.VerificationTokenRepository)
}
