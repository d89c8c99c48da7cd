package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pageza/recipehub/backend/internal/adapter"
	"github.com/pageza/recipehub/backend/internal/approval"
	"github.com/pageza/recipehub/backend/internal/client"
	"github.com/pageza/recipehub/backend/internal/metrics"
	"github.com/pageza/recipehub/backend/internal/types"
)

// RecipeService handles the owner side of user-submitted recipes
type RecipeService struct {
	backend BackendStore
	adapter *adapter.Adapter
	metrics *metrics.Metrics
	log     logrus.FieldLogger
}

// NewRecipeService creates a new RecipeService
func NewRecipeService(backend BackendStore, a *adapter.Adapter, m *metrics.Metrics, log logrus.FieldLogger) *RecipeService {
	return &RecipeService{
		backend: backend,
		adapter: a,
		metrics: m,
		log:     log.WithField("component", "recipes"),
	}
}

// Create submits a new recipe. Public recipes start pending review.
func (s *RecipeService) Create(ctx context.Context, caller types.Caller, in *types.RecipeInput) (*types.SubmitResult, error) {
	if caller.IsGuest() {
		return nil, &types.ForbiddenError{Reason: "sign in to add recipes"}
	}
	if err := in.Validate(true); err != nil {
		return nil, err
	}

	visibility := in.NormalizedVisibility()
	state := approval.OnCreate(visibility)

	msg, err := s.backend.AddRecipe(ctx, formFor(caller, 0, in, visibility))
	s.metrics.ObserveSource(types.SourceUserSubmitted, "add", err)
	if err != nil {
		return nil, fmt.Errorf("failed to add recipe: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"user_id":    caller.UserID,
		"visibility": visibility,
		"approval":   state,
	}).Info("recipe submitted")
	return submitResult(0, visibility, state, msg), nil
}

// Update edits a recipe owned by caller. Every edit sends it back for review.
func (s *RecipeService) Update(ctx context.Context, caller types.Caller, recipeID int, in *types.RecipeInput) (*types.SubmitResult, error) {
	if caller.IsGuest() {
		return nil, &types.ForbiddenError{Reason: "sign in to edit recipes"}
	}
	if err := in.Validate(false); err != nil {
		return nil, err
	}

	prev, err := s.owned(ctx, caller, recipeID)
	if err != nil {
		return nil, err
	}

	visibility := in.NormalizedVisibility()
	state := approval.OnEdit(visibility, prev.Approval)

	msg, err := s.backend.UpdateRecipe(ctx, formFor(caller, recipeID, in, visibility))
	s.metrics.ObserveSource(types.SourceUserSubmitted, "update", err)
	if err != nil {
		return nil, fmt.Errorf("failed to update recipe %d: %w", recipeID, err)
	}

	s.log.WithFields(logrus.Fields{
		"user_id":   caller.UserID,
		"recipe_id": recipeID,
		"from":      prev.Approval,
		"to":        state,
	}).Info("recipe updated")
	return submitResult(recipeID, visibility, state, msg), nil
}

// Delete removes a recipe owned by caller
func (s *RecipeService) Delete(ctx context.Context, caller types.Caller, recipeID int) error {
	if caller.IsGuest() {
		return &types.ForbiddenError{Reason: "sign in to delete recipes"}
	}
	if _, err := s.owned(ctx, caller, recipeID); err != nil {
		return err
	}

	err := s.backend.DeleteRecipe(ctx, recipeID, caller.UserID)
	s.metrics.ObserveSource(types.SourceUserSubmitted, "delete", err)
	if err != nil {
		return fmt.Errorf("failed to delete recipe %d: %w", recipeID, err)
	}
	return nil
}

// Mine lists every recipe caller submitted with its status label
func (s *RecipeService) Mine(ctx context.Context, caller types.Caller) ([]types.OwnerRecipe, error) {
	if caller.IsGuest() {
		return nil, &types.ForbiddenError{Reason: "sign in to see your recipes"}
	}

	recipes, err := s.byUser(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}

	out := make([]types.OwnerRecipe, 0, len(recipes))
	for _, r := range recipes {
		out = append(out, types.OwnerRecipe{Recipe: r, Status: r.StatusLabel()})
	}
	return out, nil
}

// Get returns one user recipe if caller may see it. Admins can open pending
// recipes for review; owners can open all of theirs.
func (s *RecipeService) Get(ctx context.Context, caller types.Caller, ownerID, recipeID int) (*types.Recipe, error) {
	recipes, err := s.byUser(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	for _, r := range recipes {
		if r.ID != recipeID {
			continue
		}
		owner := !caller.IsGuest() && r.OwnedBy(caller.UserID)
		reviewer := caller.IsAdmin() && r.Visibility == types.VisibilityPublic
		if approval.Visible(r, caller) || owner || reviewer {
			return &r, nil
		}
		break
	}
	return nil, &types.NotFoundError{RecipeID: recipeID}
}

func (s *RecipeService) owned(ctx context.Context, caller types.Caller, recipeID int) (*types.Recipe, error) {
	recipes, err := s.byUser(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	for _, r := range recipes {
		if r.ID == recipeID {
			return &r, nil
		}
	}
	return nil, &types.NotFoundError{RecipeID: recipeID}
}

func (s *RecipeService) byUser(ctx context.Context, userID int) ([]types.Recipe, error) {
	records, err := s.backend.ListByUser(ctx, userID)
	s.metrics.ObserveSource(types.SourceUserSubmitted, "list_by_user", err)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes for user %d: %w", userID, err)
	}

	recipes, warnings := s.adapter.NormalizeAll(types.SourceUserSubmitted, records)
	for _, w := range warnings {
		s.log.WithError(w.Err).WithField("user_id", userID).Warn("skipping malformed record")
	}
	return recipes, nil
}

func formFor(caller types.Caller, recipeID int, in *types.RecipeInput, visibility types.Visibility) client.RecipeForm {
	return client.RecipeForm{
		RecipeID:        recipeID,
		UserID:          caller.UserID,
		Name:            strings.TrimSpace(in.Name),
		Ingredients:     trimAll(in.Ingredients),
		Instructions:    strings.TrimSpace(in.Instructions),
		Servings:        in.Servings,
		Tags:            trimAll(in.Tags),
		ImageURL:        strings.TrimSpace(in.ImageURL),
		CookTimeMinutes: in.CookTimeMinutes,
		PrepTimeMinutes: in.PrepTimeMinutes,
		Cuisine:         strings.TrimSpace(in.Cuisine),
		Difficulty:      strings.TrimSpace(in.Difficulty),
		Visibility:      visibility,
	}
}

func submitResult(recipeID int, visibility types.Visibility, state types.ApprovalState, msg string) *types.SubmitResult {
	label := types.Recipe{Source: types.SourceUserSubmitted, Visibility: visibility, Approval: state}.StatusLabel()
	return &types.SubmitResult{
		RecipeID:   recipeID,
		Visibility: visibility,
		Approval:   state,
		Status:     label,
		Message:    msg,
	}
}

func trimAll(items []string) []string {
	out := make([]string, 0, len(items))
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
