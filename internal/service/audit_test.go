package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipehub/backend/internal/models"
	"github.com/pageza/recipehub/backend/internal/testhelpers"
)

func TestAuditService_RecordAndFilter(t *testing.T) {
	svc := NewAuditService(testhelpers.SetupSQLite(t))
	ctx := context.Background()

	for _, e := range []models.ModerationEvent{
		{RecipeID: 1, Action: "approve", AdminUserID: 1, Outcome: "success"},
		{RecipeID: 2, Action: "decline", AdminUserID: 1, Outcome: "success"},
		{RecipeID: 2, Action: "decline", AdminUserID: 2, Outcome: "noop"},
	} {
		e := e
		require.NoError(t, svc.Record(ctx, &e))
		assert.NotEmpty(t, e.ID.String())
	}

	all, err := svc.List(ctx, models.ModerationEventFilters{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	declines, err := svc.List(ctx, models.ModerationEventFilters{RecipeID: 2, Action: "decline"})
	require.NoError(t, err)
	assert.Len(t, declines, 2)

	byAdmin, err := svc.List(ctx, models.ModerationEventFilters{AdminUserID: 2})
	require.NoError(t, err)
	require.Len(t, byAdmin, 1)
	assert.Equal(t, "noop", byAdmin[0].Outcome)

	limited, err := svc.List(ctx, models.ModerationEventFilters{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
