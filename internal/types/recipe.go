package types

import (
	"fmt"
	"strings"
)

// Source identifies where a recipe came from
type Source string

const (
	SourceExternal      Source = "external"
	SourceUserSubmitted Source = "user"
)

// Visibility controls who can see a user-submitted recipe
type Visibility string

const (
	VisibilityPublic Visibility = "Public"
	VisibilityOnlyMe Visibility = "Only me"
)

// ParseVisibility maps the backend's free-form visibility value onto a Visibility.
// Anything other than "public" (case-insensitive) is treated as OnlyMe, matching
// the backend's own normalization.
func ParseVisibility(s string) Visibility {
	if strings.EqualFold(strings.TrimSpace(s), "public") {
		return VisibilityPublic
	}
	return VisibilityOnlyMe
}

// ApprovalState is the moderation state of a public user recipe.
// It is only interpreted when Visibility is Public.
type ApprovalState int

const (
	ApprovalDeclined ApprovalState = -1
	ApprovalPending  ApprovalState = 0
	ApprovalApproved ApprovalState = 1
)

func (s ApprovalState) String() string {
	switch s {
	case ApprovalPending:
		return "pending"
	case ApprovalApproved:
		return "approved"
	case ApprovalDeclined:
		return "declined"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// Recipe is the canonical recipe shared by both sources
type Recipe struct {
	ID                 int           `json:"id"`
	Source             Source        `json:"source"`
	Name               string        `json:"name"`
	Ingredients        []string      `json:"ingredients"`
	Instructions       []string      `json:"instructions"`
	Servings           *int          `json:"servings"`
	PrepTimeMinutes    *int          `json:"prepTimeMinutes"`
	CookTimeMinutes    *int          `json:"cookTimeMinutes"`
	Cuisine            *string       `json:"cuisine"`
	Difficulty         *string       `json:"difficulty"`
	Tags               []string      `json:"tags"`
	ImageURL           *string       `json:"imageUrl"`
	OwnerUserID        *int          `json:"ownerUserId"`
	Visibility         Visibility    `json:"visibility"`
	Approval           ApprovalState `json:"approvalState"`
	CaloriesPerServing *int          `json:"caloriesPerServing,omitempty"`
	Rating             *float64      `json:"rating,omitempty"`
	ReviewCount        *int          `json:"reviewCount,omitempty"`
	MealType           []string      `json:"mealType,omitempty"`
}

// Key is unique across sources
func (r Recipe) Key() string {
	return fmt.Sprintf("%s:%d", r.Source, r.ID)
}

// OwnedBy reports whether userID submitted the recipe
func (r Recipe) OwnedBy(userID int) bool {
	return r.OwnerUserID != nil && *r.OwnerUserID == userID
}

// StatusLabel is the label shown to a recipe's owner
func (r Recipe) StatusLabel() string {
	if r.Source == SourceExternal {
		return "Approved"
	}
	if r.Visibility != VisibilityPublic {
		return "Only me"
	}
	switch r.Approval {
	case ApprovalApproved:
		return "Approved"
	case ApprovalDeclined:
		return "Declined by Admin"
	default:
		return "Pending approval"
	}
}

// OwnerRecipe is a recipe as seen by its owner
type OwnerRecipe struct {
	Recipe
	Status string `json:"status"`
}

// Warning is a non-fatal problem surfaced alongside a result
type Warning struct {
	Source  Source `json:"source"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Listing is the result of an aggregation fetch
type Listing struct {
	Recipes  []Recipe  `json:"recipes"`
	Warnings []Warning `json:"warnings,omitempty"`
}

// Role gates what a caller may do
type Role string

const (
	RoleGuest Role = "guest"
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Caller identifies who is making a request. Guests have UserID 0.
type Caller struct {
	UserID int
	Name   string
	Role   Role
}

// Guest is the anonymous caller
var Guest = Caller{Role: RoleGuest}

// IsGuest reports whether the caller is anonymous
func (c Caller) IsGuest() bool {
	return c.Role == RoleGuest || c.UserID == 0
}

// IsAdmin reports whether the caller may moderate
func (c Caller) IsAdmin() bool {
	return c.Role == RoleAdmin && c.UserID != 0
}

// User is a backend account as returned by login
type User struct {
	UserID int    `json:"userId"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
}

// ModerationAction is an admin decision on a pending recipe
type ModerationAction string

const (
	ActionApprove ModerationAction = "approve"
	ActionDecline ModerationAction = "decline"
)

// ModerationOutcome describes the result of a moderation call
type ModerationOutcome struct {
	RecipeID int              `json:"recipeId"`
	Action   ModerationAction `json:"action"`
	State    ApprovalState    `json:"approvalState"`
	Changed  bool             `json:"changed"`
}

// ItemState is the per-recipe moderation tracking state
type ItemState struct {
	RecipeID int    `json:"recipeId"`
	Pending  bool   `json:"pending"`
	InFlight bool   `json:"inFlight"`
	Error    string `json:"error,omitempty"`
}

// SubmitResult is returned after creating or editing a user recipe
type SubmitResult struct {
	RecipeID   int           `json:"recipeId,omitempty"`
	Visibility Visibility    `json:"visibility"`
	Approval   ApprovalState `json:"approvalState"`
	Status     string        `json:"status"`
	Message    string        `json:"message,omitempty"`
}
