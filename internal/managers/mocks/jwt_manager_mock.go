package mocks

import (
	"github.com/stretchr/testify/mock"

	"starter-server/internal/managers"
	"starter-server/internal/schemas"
)

// MockJwtManager is a mock of the JWTManager.
// It is used to simulate signing failures and foreign credentials in tests.
type MockJwtManager struct {
	mock.Mock
}

// GenerateJWT returns a mock JWT string and an optional error.
func (m *MockJwtManager) GenerateJWT(claims *managers.AuthClaims) (string, error) {
	args := m.Called(claims)
	return args.String(0), args.Error(1)
}

// ValidateJWT returns mock claims and an optional error.
func (m *MockJwtManager) ValidateJWT(tokenString string) (*managers.AuthClaims, error) {
	args := m.Called(tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*managers.AuthClaims), args.Error(1)
}

// GenerateClaims returns claims carrying the user's identity.
func (m *MockJwtManager) GenerateClaims(user *schemas.User) *managers.AuthClaims {
	args := m.Called(user)
	return args.Get(0).(*managers.AuthClaims)
}
