package service

import (
	"context"
	"encoding/json"
	"io"

	"github.com/pageza/recipehub/backend/internal/client"
	"github.com/pageza/recipehub/backend/internal/models"
	"github.com/pageza/recipehub/backend/internal/types"
)

// ExternalSource is the public recipe API
type ExternalSource interface {
	ListRecipes(ctx context.Context) ([]json.RawMessage, error)
	GetRecipe(ctx context.Context, id int) (json.RawMessage, error)
	SearchRecipes(ctx context.Context, query string) ([]json.RawMessage, error)
}

// BackendStore is the user-submitted recipe store
type BackendStore interface {
	ListApproved(ctx context.Context) ([]json.RawMessage, error)
	ListByUser(ctx context.Context, userID int) ([]json.RawMessage, error)
	ListPending(ctx context.Context) ([]json.RawMessage, error)
	AddRecipe(ctx context.Context, form client.RecipeForm) (string, error)
	UpdateRecipe(ctx context.Context, form client.RecipeForm) (string, error)
	DeleteRecipe(ctx context.Context, recipeID, userID int) error
	Approve(ctx context.Context, recipeID int) error
	Decline(ctx context.Context, recipeID int) error
	UploadImage(ctx context.Context, filename string, r io.Reader) (string, error)
	Login(ctx context.Context, email, password string) (*types.User, error)
	Register(ctx context.Context, req types.RegisterRequest) (int, error)
}

// IAggregationService merges both sources into one listing
type IAggregationService interface {
	ListRecipes(ctx context.Context, caller types.Caller) (*types.Listing, error)
	Search(ctx context.Context, query string) (*types.Listing, error)
	GetExternal(ctx context.Context, id int) (*types.Recipe, error)
	PickRandom(recipes []types.Recipe) (*types.Recipe, error)
	Lucky(ctx context.Context, caller types.Caller) (*types.Recipe, error)
}

// IModerationService defines the admin review workflow
type IModerationService interface {
	ListPending(ctx context.Context) (*types.Listing, error)
	Approve(ctx context.Context, recipeID int, admin types.Caller) (*types.ModerationOutcome, error)
	Decline(ctx context.Context, recipeID int, admin types.Caller) (*types.ModerationOutcome, error)
	State(recipeID int) types.ItemState
}

// IRecipeService defines the owner operations on user recipes
type IRecipeService interface {
	Create(ctx context.Context, caller types.Caller, in *types.RecipeInput) (*types.SubmitResult, error)
	Update(ctx context.Context, caller types.Caller, recipeID int, in *types.RecipeInput) (*types.SubmitResult, error)
	Delete(ctx context.Context, caller types.Caller, recipeID int) error
	Mine(ctx context.Context, caller types.Caller) ([]types.OwnerRecipe, error)
	Get(ctx context.Context, caller types.Caller, ownerID, recipeID int) (*types.Recipe, error)
}

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	Login(ctx context.Context, email, password string) (*types.LoginResponse, error)
	Register(ctx context.Context, caller types.Caller, req *types.RegisterRequest) (int, error)
	GenerateToken(user *types.User) (string, error)
	ValidateToken(token string) (*types.TokenClaims, error)
}

// IImageService stores recipe images
type IImageService interface {
	Upload(ctx context.Context, caller types.Caller, filename string, r io.Reader) (string, error)
}

// IAuditService records moderation outcomes
type IAuditService interface {
	Record(ctx context.Context, event *models.ModerationEvent) error
	List(ctx context.Context, filters models.ModerationEventFilters) ([]models.ModerationEvent, error)
}
