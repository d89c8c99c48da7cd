package mocks

import (
	"context"
	"encoding/json"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/recipehub/backend/internal/client"
	"github.com/pageza/recipehub/backend/internal/types"
)

// MockExternalSource is a mock implementation of the public recipe API
type MockExternalSource struct {
	mock.Mock
}

func (m *MockExternalSource) ListRecipes(ctx context.Context) ([]json.RawMessage, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]json.RawMessage), args.Error(1)
}

func (m *MockExternalSource) GetRecipe(ctx context.Context, id int) (json.RawMessage, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

func (m *MockExternalSource) SearchRecipes(ctx context.Context, query string) ([]json.RawMessage, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]json.RawMessage), args.Error(1)
}

// MockBackendStore is a mock implementation of the user recipe store
type MockBackendStore struct {
	mock.Mock
}

func (m *MockBackendStore) records(args mock.Arguments) ([]json.RawMessage, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]json.RawMessage), args.Error(1)
}

func (m *MockBackendStore) ListApproved(ctx context.Context) ([]json.RawMessage, error) {
	return m.records(m.Called(ctx))
}

func (m *MockBackendStore) ListByUser(ctx context.Context, userID int) ([]json.RawMessage, error) {
	return m.records(m.Called(ctx, userID))
}

func (m *MockBackendStore) ListPending(ctx context.Context) ([]json.RawMessage, error) {
	return m.records(m.Called(ctx))
}

func (m *MockBackendStore) AddRecipe(ctx context.Context, form client.RecipeForm) (string, error) {
	args := m.Called(ctx, form)
	return args.String(0), args.Error(1)
}

func (m *MockBackendStore) UpdateRecipe(ctx context.Context, form client.RecipeForm) (string, error) {
	args := m.Called(ctx, form)
	return args.String(0), args.Error(1)
}

func (m *MockBackendStore) DeleteRecipe(ctx context.Context, recipeID, userID int) error {
	return m.Called(ctx, recipeID, userID).Error(0)
}

func (m *MockBackendStore) Approve(ctx context.Context, recipeID int) error {
	return m.Called(ctx, recipeID).Error(0)
}

func (m *MockBackendStore) Decline(ctx context.Context, recipeID int) error {
	return m.Called(ctx, recipeID).Error(0)
}

func (m *MockBackendStore) UploadImage(ctx context.Context, filename string, r io.Reader) (string, error) {
	args := m.Called(ctx, filename, r)
	return args.String(0), args.Error(1)
}

func (m *MockBackendStore) Login(ctx context.Context, email, password string) (*types.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.User), args.Error(1)
}

func (m *MockBackendStore) Register(ctx context.Context, req types.RegisterRequest) (int, error) {
	args := m.Called(ctx, req)
	return args.Int(0), args.Error(1)
}
