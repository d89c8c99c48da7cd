package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/recipehub/backend/internal/models"
	"github.com/pageza/recipehub/backend/internal/types"
)

// MockModerationService is a mock implementation of the moderation workflow
type MockModerationService struct {
	mock.Mock
}

func (m *MockModerationService) ListPending(ctx context.Context) (*types.Listing, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Listing), args.Error(1)
}

func (m *MockModerationService) Approve(ctx context.Context, recipeID int, admin types.Caller) (*types.ModerationOutcome, error) {
	args := m.Called(ctx, recipeID, admin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.ModerationOutcome), args.Error(1)
}

func (m *MockModerationService) Decline(ctx context.Context, recipeID int, admin types.Caller) (*types.ModerationOutcome, error) {
	args := m.Called(ctx, recipeID, admin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.ModerationOutcome), args.Error(1)
}

func (m *MockModerationService) State(recipeID int) types.ItemState {
	return m.Called(recipeID).Get(0).(types.ItemState)
}

// MockAuditService is a mock implementation of the audit log
type MockAuditService struct {
	mock.Mock
}

func (m *MockAuditService) Record(ctx context.Context, event *models.ModerationEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *MockAuditService) List(ctx context.Context, filters models.ModerationEventFilters) ([]models.ModerationEvent, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ModerationEvent), args.Error(1)
}
