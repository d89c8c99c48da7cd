package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/recipehub/backend/internal/types"
)

// MockAggregationService is a mock implementation of the aggregation service
type MockAggregationService struct {
	mock.Mock
}

func (m *MockAggregationService) ListRecipes(ctx context.Context, caller types.Caller) (*types.Listing, error) {
	args := m.Called(ctx, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Listing), args.Error(1)
}

func (m *MockAggregationService) Search(ctx context.Context, query string) (*types.Listing, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Listing), args.Error(1)
}

func (m *MockAggregationService) GetExternal(ctx context.Context, id int) (*types.Recipe, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Recipe), args.Error(1)
}

func (m *MockAggregationService) PickRandom(recipes []types.Recipe) (*types.Recipe, error) {
	args := m.Called(recipes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Recipe), args.Error(1)
}

func (m *MockAggregationService) Lucky(ctx context.Context, caller types.Caller) (*types.Recipe, error) {
	args := m.Called(ctx, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Recipe), args.Error(1)
}

// MockRecipeService is a mock implementation of the recipe service
type MockRecipeService struct {
	mock.Mock
}

func (m *MockRecipeService) Create(ctx context.Context, caller types.Caller, in *types.RecipeInput) (*types.SubmitResult, error) {
	args := m.Called(ctx, caller, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.SubmitResult), args.Error(1)
}

func (m *MockRecipeService) Update(ctx context.Context, caller types.Caller, recipeID int, in *types.RecipeInput) (*types.SubmitResult, error) {
	args := m.Called(ctx, caller, recipeID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.SubmitResult), args.Error(1)
}

func (m *MockRecipeService) Delete(ctx context.Context, caller types.Caller, recipeID int) error {
	return m.Called(ctx, caller, recipeID).Error(0)
}

func (m *MockRecipeService) Mine(ctx context.Context, caller types.Caller) ([]types.OwnerRecipe, error) {
	args := m.Called(ctx, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.OwnerRecipe), args.Error(1)
}

func (m *MockRecipeService) Get(ctx context.Context, caller types.Caller, ownerID, recipeID int) (*types.Recipe, error) {
	args := m.Called(ctx, caller, ownerID, recipeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Recipe), args.Error(1)
}

// MockImageService is a mock implementation of the image service
type MockImageService struct {
	mock.Mock
}

func (m *MockImageService) Upload(ctx context.Context, caller types.Caller, filename string, r io.Reader) (string, error) {
	args := m.Called(ctx, caller, filename, r)
	return args.String(0), args.Error(1)
}
