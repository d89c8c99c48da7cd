package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/recipehub/backend/internal/types"
)

// MockAuthService is a mock implementation of the AuthService interface
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) ValidateToken(token string) (*types.TokenClaims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.TokenClaims), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*types.LoginResponse, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.LoginResponse), args.Error(1)
}

func (m *MockAuthService) Register(ctx context.Context, caller types.Caller, req *types.RegisterRequest) (int, error) {
	args := m.Called(ctx, caller, req)
	return args.Int(0), args.Error(1)
}

func (m *MockAuthService) GenerateToken(user *types.User) (string, error) {
	args := m.Called(user)
	return args.String(0), args.Error(1)
}
