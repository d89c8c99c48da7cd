package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/pageza/recipehub/backend/internal/middleware"
	"github.com/pageza/recipehub/backend/internal/service"
	"github.com/pageza/recipehub/backend/internal/types"
)

// RecipeHandler serves the merged listing and the owner operations on user recipes
type RecipeHandler struct {
	aggregation   service.IAggregationService
	recipeService service.IRecipeService
	auth          middleware.TokenValidator
	rateLimiter   *middleware.RateLimiter
	log           logrus.FieldLogger
}

// NewRecipeHandler creates a new recipe handler. rateLimiter may be nil.
func NewRecipeHandler(aggregation service.IAggregationService, recipeService service.IRecipeService, auth middleware.TokenValidator, rateLimiter *middleware.RateLimiter, log logrus.FieldLogger) *RecipeHandler {
	return &RecipeHandler{
		aggregation:   aggregation,
		recipeService: recipeService,
		auth:          auth,
		rateLimiter:   rateLimiter,
		log:           log.WithField("handler", "recipe"),
	}
}

// RegisterRoutes registers the recipe routes
func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	optional := middleware.OptionalAuth(h.auth)
	required := middleware.AuthMiddleware(h.auth)
	user := middleware.RequireRole(types.RoleUser)

	recipes := router.Group("/recipes")
	{
		recipes.GET("", optional, h.ListRecipes)
		recipes.GET("/search", optional, h.Search)
		recipes.GET("/external/:id", optional, h.GetExternal)
		recipes.GET("/lucky", required, user, h.Lucky)
		recipes.POST("", required, user, h.rateLimiter.Middleware(), h.CreateRecipe)
		recipes.PUT("/:id", required, user, h.rateLimiter.Middleware(), h.UpdateRecipe)
		recipes.DELETE("/:id", required, user, h.DeleteRecipe)
	}

	router.GET("/users/:userId/recipes/:id", optional, h.GetUserRecipe)
	router.GET("/me/recipes", required, user, h.MyRecipes)
}

// ListRecipes returns the recipes visible to the caller from both sources
func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	listing, err := h.aggregation.ListRecipes(c.Request.Context(), middleware.CallerFrom(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, listingResponse(listing))
}

// Search queries the external recipe source
func (h *RecipeHandler) Search(c *gin.Context) {
	listing, err := h.aggregation.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, listingResponse(listing))
}

// GetExternal returns one external recipe
func (h *RecipeHandler) GetExternal(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}

	recipe, err := h.aggregation.GetExternal(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipe": recipe})
}

// Lucky returns a random recipe from the caller's listing
func (h *RecipeHandler) Lucky(c *gin.Context) {
	recipe, err := h.aggregation.Lucky(c.Request.Context(), middleware.CallerFrom(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipe": recipe})
}

// GetUserRecipe returns a single user-submitted recipe the caller may see
func (h *RecipeHandler) GetUserRecipe(c *gin.Context) {
	ownerID, ok := intParam(c, "userId")
	if !ok {
		return
	}
	recipeID, ok := intParam(c, "id")
	if !ok {
		return
	}

	recipe, err := h.recipeService.Get(c.Request.Context(), middleware.CallerFrom(c), ownerID, recipeID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipe": recipe})
}

// MyRecipes returns the caller's own recipes with their status labels
func (h *RecipeHandler) MyRecipes(c *gin.Context) {
	recipes, err := h.recipeService.Mine(c.Request.Context(), middleware.CallerFrom(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if recipes == nil {
		recipes = []types.OwnerRecipe{}
	}
	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

// CreateRecipe submits a new recipe
func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	in, ok := h.bindInput(c, true)
	if !ok {
		return
	}

	result, err := h.recipeService.Create(c.Request.Context(), middleware.CallerFrom(c), in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// UpdateRecipe edits one of the caller's recipes
func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	in, ok := h.bindInput(c, false)
	if !ok {
		return
	}

	result, err := h.recipeService.Update(c.Request.Context(), middleware.CallerFrom(c), id, in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// DeleteRecipe removes one of the caller's recipes
func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}

	if err := h.recipeService.Delete(c.Request.Context(), middleware.CallerFrom(c), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Recipe deleted"})
}

// bindInput decodes a recipe body. Binding failures on a well-formed body are
// reported with the offending field names.
func (h *RecipeHandler) bindInput(c *gin.Context, requireImage bool) (*types.RecipeInput, bool) {
	var in types.RecipeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		var verr *types.ValidationError
		if errors.As(in.Validate(requireImage), &verr) {
			respondError(c, h.log, verr)
			return nil, false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return nil, false
	}
	in.Name = strings.TrimSpace(in.Name)
	return &in, true
}

func listingResponse(listing *types.Listing) gin.H {
	recipes := listing.Recipes
	if recipes == nil {
		recipes = []types.Recipe{}
	}
	resp := gin.H{"recipes": recipes}
	if len(listing.Warnings) > 0 {
		resp["warnings"] = listing.Warnings
	}
	return resp
}
