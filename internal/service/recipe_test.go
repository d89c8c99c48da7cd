package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipehub/backend/internal/adapter"
	"github.com/pageza/recipehub/backend/internal/client"
	"github.com/pageza/recipehub/backend/internal/logging"
	"github.com/pageza/recipehub/backend/internal/mocks"
	"github.com/pageza/recipehub/backend/internal/testhelpers"
	"github.com/pageza/recipehub/backend/internal/types"
)

func newRecipes(backend *mocks.MockBackendStore) *RecipeService {
	return NewRecipeService(backend, adapter.New(adapter.DefaultRewrite), nil, logging.Discard())
}

func validInput(visibility types.Visibility) *types.RecipeInput {
	return &types.RecipeInput{
		Name:            " Stew ",
		Ingredients:     []string{"beef", " ", "salt"},
		Instructions:    "Brown.\nSimmer.",
		Servings:        4,
		Tags:            []string{"stew"},
		ImageURL:        "http://localhost/MyRecipeUploads/stew.jpg",
		CookTimeMinutes: 60,
		Visibility:      visibility,
	}
}

func TestCreate_PublicStartsPending(t *testing.T) {
	backend := new(mocks.MockBackendStore)
	backend.On("AddRecipe", mock.Anything, mock.MatchedBy(func(f client.RecipeForm) bool {
		return f.UserID == 7 && f.Name == "Stew" && f.Visibility == types.VisibilityPublic &&
			len(f.Ingredients) == 2 && f.RecipeID == 0
	})).Return("Recipe added successfully.", nil)

	res, err := newRecipes(backend).Create(context.Background(), ann, validInput("public"))
	require.NoError(t, err)
	assert.Equal(t, types.ApprovalPending, res.Approval)
	assert.Equal(t, "Pending approval", res.Status)
	assert.Equal(t, "Recipe added successfully.", res.Message)
	backend.AssertExpectations(t)
}

func TestCreate_DefaultsToOnlyMe(t *testing.T) {
	backend := new(mocks.MockBackendStore)
	backend.On("AddRecipe", mock.Anything, mock.Anything).Return("", nil)

	res, err := newRecipes(backend).Create(context.Background(), ann, validInput(""))
	require.NoError(t, err)
	assert.Equal(t, types.VisibilityOnlyMe, res.Visibility)
	assert.Equal(t, "Only me", res.Status)
}

func TestCreate_Validation(t *testing.T) {
	backend := new(mocks.MockBackendStore)
	in := validInput("Public")
	in.Tags = nil
	in.ImageURL = ""

	_, err := newRecipes(backend).Create(context.Background(), ann, in)
	var invalid *types.ValidationError
	require.ErrorAs(t, err, &invalid)
	assert.ElementsMatch(t, []string{"tags", "image"}, invalid.Fields)
	backend.AssertNotCalled(t, "AddRecipe", mock.Anything, mock.Anything)
}

func TestCreate_GuestRejected(t *testing.T) {
	_, err := newRecipes(new(mocks.MockBackendStore)).Create(context.Background(), types.Guest, validInput("Public"))
	var forbidden *types.ForbiddenError
	assert.ErrorAs(t, err, &forbidden)
}

func TestUpdate_ApprovedGoesBackToPending(t *testing.T) {
	backend := new(mocks.MockBackendStore)
	backend.On("ListByUser", mock.Anything, 7).Return([]json.RawMessage{
		testhelpers.BackendRecord(10, 7, "Stew", "Public", 1),
	}, nil)
	backend.On("UpdateRecipe", mock.Anything, mock.MatchedBy(func(f client.RecipeForm) bool {
		return f.RecipeID == 10 && f.Visibility == types.VisibilityPublic
	})).Return("Recipe updated successfully.", nil)

	res, err := newRecipes(backend).Update(context.Background(), ann, 10, validInput("Public"))
	require.NoError(t, err)
	assert.Equal(t, 10, res.RecipeID)
	assert.Equal(t, types.ApprovalPending, res.Approval)
	assert.Equal(t, "Pending approval", res.Status)
}

func TestUpdate_NotOwned(t *testing.T) {
	backend := new(mocks.MockBackendStore)
	backend.On("ListByUser", mock.Anything, 8).Return([]json.RawMessage{}, nil)

	_, err := newRecipes(backend).Update(context.Background(), bob, 10, validInput("Public"))
	assert.True(t, types.IsNotFound(err))
	backend.AssertNotCalled(t, "UpdateRecipe", mock.Anything, mock.Anything)
}

func TestDelete(t *testing.T) {
	backend := new(mocks.MockBackendStore)
	backend.On("ListByUser", mock.Anything, 7).Return([]json.RawMessage{
		testhelpers.BackendRecord(10, 7, "Stew", "Only me", 1),
	}, nil)
	backend.On("DeleteRecipe", mock.Anything, 10, 7).Return(nil)

	require.NoError(t, newRecipes(backend).Delete(context.Background(), ann, 10))
	assert.True(t, types.IsNotFound(newRecipes(backend).Delete(context.Background(), ann, 99)))
}

func TestMine_StatusLabels(t *testing.T) {
	backend := new(mocks.MockBackendStore)
	backend.On("ListByUser", mock.Anything, 7).Return([]json.RawMessage{
		testhelpers.BackendRecord(1, 7, "A", "Only me", 1),
		testhelpers.BackendRecord(2, 7, "B", "Public", 0),
		testhelpers.BackendRecord(3, 7, "C", "Public", 1),
		testhelpers.BackendRecord(4, 7, "D", "Public", -1),
	}, nil)

	mine, err := newRecipes(backend).Mine(context.Background(), ann)
	require.NoError(t, err)

	labels := make([]string, 0, len(mine))
	for _, r := range mine {
		labels = append(labels, r.Status)
	}
	assert.Equal(t, []string{"Only me", "Pending approval", "Approved", "Declined by Admin"}, labels)
}

func TestGet_Visibility(t *testing.T) {
	backend := new(mocks.MockBackendStore)
	backend.On("ListByUser", mock.Anything, 7).Return([]json.RawMessage{
		testhelpers.BackendRecord(1, 7, "Private", "Only me", 1),
		testhelpers.BackendRecord(2, 7, "Waiting", "Public", 0),
	}, nil)
	svc := newRecipes(backend)

	r, err := svc.Get(context.Background(), ann, 7, 1)
	require.NoError(t, err)
	assert.Equal(t, "Private", r.Name)

	_, err = svc.Get(context.Background(), bob, 7, 1)
	assert.True(t, types.IsNotFound(err))
	_, err = svc.Get(context.Background(), admin, 7, 1)
	assert.True(t, types.IsNotFound(err))

	_, err = svc.Get(context.Background(), bob, 7, 2)
	assert.True(t, types.IsNotFound(err))
	r, err = svc.Get(context.Background(), admin, 7, 2)
	require.NoError(t, err)
	assert.Equal(t, "Waiting", r.Name)
}
