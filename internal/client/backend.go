package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/url"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/pageza/recipehub/backend/internal/types"
)

// BackendClient talks to the PHP recipe store
type BackendClient struct {
	base
}

// NewBackendClient creates a client for the recipe store
func NewBackendClient(opts Options) *BackendClient {
	return &BackendClient{base: newBase(opts, "backend-client")}
}

// RecipeForm is the field set accepted by add_recipe.php and update_recipe.php
type RecipeForm struct {
	RecipeID        int
	UserID          int
	Name            string
	Ingredients     []string
	Instructions    string
	Servings        int
	Tags            []string
	ImageURL        string
	CookTimeMinutes int
	PrepTimeMinutes *int
	Cuisine         string
	Difficulty      string
	Visibility      types.Visibility
}

func (f RecipeForm) values() (url.Values, error) {
	ingredients, err := json.Marshal(f.Ingredients)
	if err != nil {
		return nil, fmt.Errorf("failed to encode ingredients: %w", err)
	}
	v := url.Values{}
	v.Set("name", f.Name)
	v.Set("ingredients", string(ingredients))
	v.Set("instructions", f.Instructions)
	v.Set("servings", strconv.Itoa(f.Servings))
	v.Set("tags", strings.Join(f.Tags, ","))
	v.Set("cookTimeMinutes", strconv.Itoa(f.CookTimeMinutes))
	v.Set("userId", strconv.Itoa(f.UserID))
	v.Set("visibility", string(f.Visibility))
	if f.ImageURL != "" {
		v.Set("image", f.ImageURL)
	}
	if f.PrepTimeMinutes != nil {
		v.Set("prepTimeMinutes", strconv.Itoa(*f.PrepTimeMinutes))
	}
	if f.Cuisine != "" {
		v.Set("cuisine", f.Cuisine)
	}
	if f.Difficulty != "" {
		v.Set("difficulty", f.Difficulty)
	}
	if f.RecipeID != 0 {
		v.Set("recipeId", strconv.Itoa(f.RecipeID))
	}
	return v, nil
}

// ListApproved fetches the approved public recipes
func (c *BackendClient) ListApproved(ctx context.Context) ([]json.RawMessage, error) {
	return c.list(ctx, "list approved recipes", "get_all_recipes.php", nil)
}

// ListByUser fetches every recipe owned by userID regardless of state
func (c *BackendClient) ListByUser(ctx context.Context, userID int) ([]json.RawMessage, error) {
	return c.list(ctx, "list user recipes", "get_user_recipes.php", url.Values{"userId": {strconv.Itoa(userID)}})
}

// ListPending fetches the public recipes awaiting review
func (c *BackendClient) ListPending(ctx context.Context) ([]json.RawMessage, error) {
	return c.list(ctx, "list pending recipes", "get_pending_recipes.php", nil)
}

func (c *BackendClient) list(ctx context.Context, op, path string, query url.Values) ([]json.RawMessage, error) {
	body, err := c.get(ctx, op, path, query)
	if err != nil {
		return nil, err
	}
	return records(op, body, "recipes")
}

// AddRecipe posts a new recipe
func (c *BackendClient) AddRecipe(ctx context.Context, form RecipeForm) (string, error) {
	return c.submit(ctx, "add recipe", "add_recipe.php", form)
}

// UpdateRecipe posts an edit. The store resets approval on every edit.
func (c *BackendClient) UpdateRecipe(ctx context.Context, form RecipeForm) (string, error) {
	if form.RecipeID == 0 {
		return "", fmt.Errorf("update recipe: recipe id is required")
	}
	return c.submit(ctx, "update recipe", "update_recipe.php", form)
}

func (c *BackendClient) submit(ctx context.Context, op, path string, form RecipeForm) (string, error) {
	values, err := form.values()
	if err != nil {
		return "", err
	}
	body, err := c.postForm(ctx, op, path, values)
	if err != nil {
		return "", err
	}
	return gjson.GetBytes(body, "message").String(), nil
}

// DeleteRecipe removes a recipe owned by userID
func (c *BackendClient) DeleteRecipe(ctx context.Context, recipeID, userID int) error {
	_, err := c.postForm(ctx, "delete recipe", "delete_recipe.php", url.Values{
		"recipeId": {strconv.Itoa(recipeID)},
		"userId":   {strconv.Itoa(userID)},
	})
	return err
}

// Approve marks a pending recipe approved
func (c *BackendClient) Approve(ctx context.Context, recipeID int) error {
	_, err := c.postForm(ctx, "approve recipe", "approve_recipe.php", url.Values{"recipeId": {strconv.Itoa(recipeID)}})
	return err
}

// Decline marks a pending recipe declined
func (c *BackendClient) Decline(ctx context.Context, recipeID int) error {
	_, err := c.postForm(ctx, "decline recipe", "decline_recipe.php", url.Values{"recipeId": {strconv.Itoa(recipeID)}})
	return err
}

// UploadImage sends an image as the multipart "image" field and returns its URL
func (c *BackendClient) UploadImage(ctx context.Context, filename string, r io.Reader) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", filename)
	if err != nil {
		return "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", fmt.Errorf("failed to copy image: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("failed to close multipart writer: %w", err)
	}

	body, err := c.post(ctx, "upload image", "upload_image.php", mw.FormDataContentType(), &buf)
	if err != nil {
		return "", err
	}
	u := strings.TrimSpace(gjson.GetBytes(body, "url").String())
	if u == "" {
		return "", &types.ServerError{Op: "upload image", Status: 200, Message: envelopeMessage(body)}
	}
	return u, nil
}

// Login checks credentials against the store
func (c *BackendClient) Login(ctx context.Context, email, password string) (*types.User, error) {
	body, err := c.postJSON(ctx, "login", "login.php", map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, err
	}

	u := gjson.GetBytes(body, "user")
	if !u.IsObject() {
		return nil, &types.ServerError{Op: "login", Status: 200, Message: "response is missing the user"}
	}
	id := u.Get("userId")
	if !id.Exists() {
		id = u.Get("id")
	}
	userID, err := strconv.Atoi(strings.TrimSpace(id.String()))
	if err != nil || userID <= 0 {
		return nil, &types.ServerError{Op: "login", Status: 200, Message: "response has an invalid user id"}
	}

	role := types.Role(strings.ToLower(strings.TrimSpace(u.Get("role").String())))
	if role != types.RoleAdmin {
		role = types.RoleUser
	}
	return &types.User{
		UserID: userID,
		Name:   u.Get("name").String(),
		Email:  u.Get("email").String(),
		Role:   role,
	}, nil
}

// Register creates an account. The returned id is zero when the store omits it.
func (c *BackendClient) Register(ctx context.Context, req types.RegisterRequest) (int, error) {
	role := req.Role
	if role == "" {
		role = types.RoleUser
	}
	body, err := c.postJSON(ctx, "register", "register.php", map[string]string{
		"name":     req.Name,
		"email":    req.Email,
		"password": req.Password,
		"role":     string(role),
	})
	if err != nil {
		return 0, err
	}
	return int(gjson.GetBytes(body, "userId").Int()), nil
}
