package types

import "strings"

// RecipeInput is the body for creating or editing a user recipe
type RecipeInput struct {
	Name            string     `json:"name" binding:"required"`
	Ingredients     []string   `json:"ingredients" binding:"required"`
	Instructions    string     `json:"instructions" binding:"required"`
	Servings        int        `json:"servings" binding:"required,min=1"`
	Tags            []string   `json:"tags" binding:"required"`
	ImageURL        string     `json:"image"`
	CookTimeMinutes int        `json:"cookTimeMinutes" binding:"required,min=1"`
	PrepTimeMinutes *int       `json:"prepTimeMinutes"`
	Cuisine         string     `json:"cuisine"`
	Difficulty      string     `json:"difficulty"`
	Visibility      Visibility `json:"visibility"`
}

// Validate checks the fields the backend requires. requireImage is false for
// edits, where the backend keeps the stored image when none is sent.
func (in *RecipeInput) Validate(requireImage bool) error {
	var missing []string
	if strings.TrimSpace(in.Name) == "" {
		missing = append(missing, "name")
	}
	if len(nonBlank(in.Ingredients)) == 0 {
		missing = append(missing, "ingredients")
	}
	if strings.TrimSpace(in.Instructions) == "" {
		missing = append(missing, "instructions")
	}
	if in.Servings <= 0 {
		missing = append(missing, "servings")
	}
	if len(nonBlank(in.Tags)) == 0 {
		missing = append(missing, "tags")
	}
	if requireImage && strings.TrimSpace(in.ImageURL) == "" {
		missing = append(missing, "image")
	}
	if in.CookTimeMinutes <= 0 {
		missing = append(missing, "cookTimeMinutes")
	}
	if in.PrepTimeMinutes != nil && *in.PrepTimeMinutes < 0 {
		missing = append(missing, "prepTimeMinutes")
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}

// NormalizedVisibility defaults an empty visibility to OnlyMe
func (in *RecipeInput) NormalizedVisibility() Visibility {
	if in.Visibility == "" {
		return VisibilityOnlyMe
	}
	return ParseVisibility(string(in.Visibility))
}

func nonBlank(items []string) []string {
	out := make([]string, 0, len(items))
	for _, s := range items {
		if strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out
}

// LoginRequest is the body for POST /auth/login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest is the body for POST /auth/register
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     Role   `json:"role"`
}

// LoginResponse is returned after a successful login
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
