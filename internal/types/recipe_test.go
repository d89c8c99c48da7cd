package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVisibility(t *testing.T) {
	assert.Equal(t, VisibilityPublic, ParseVisibility("Public"))
	assert.Equal(t, VisibilityPublic, ParseVisibility("  public "))
	assert.Equal(t, VisibilityOnlyMe, ParseVisibility("Only me"))
	assert.Equal(t, VisibilityOnlyMe, ParseVisibility(""))
}

func TestStatusLabel(t *testing.T) {
	owner := 3
	tests := []struct {
		name   string
		recipe Recipe
		want   string
	}{
		{"external", Recipe{Source: SourceExternal}, "Approved"},
		{"only me", Recipe{Source: SourceUserSubmitted, Visibility: VisibilityOnlyMe, Approval: ApprovalPending}, "Only me"},
		{"pending", Recipe{Source: SourceUserSubmitted, Visibility: VisibilityPublic, Approval: ApprovalPending}, "Pending approval"},
		{"approved", Recipe{Source: SourceUserSubmitted, Visibility: VisibilityPublic, Approval: ApprovalApproved}, "Approved"},
		{"declined", Recipe{Source: SourceUserSubmitted, Visibility: VisibilityPublic, Approval: ApprovalDeclined, OwnerUserID: &owner}, "Declined by Admin"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.recipe.StatusLabel())
		})
	}
}

func TestRecipeKey(t *testing.T) {
	a := Recipe{ID: 7, Source: SourceExternal}
	b := Recipe{ID: 7, Source: SourceUserSubmitted}
	assert.NotEqual(t, a.Key(), b.Key())
}

func TestRecipeInputValidate(t *testing.T) {
	in := RecipeInput{}
	err := in.Validate(true)
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.ElementsMatch(t, []string{"name", "ingredients", "instructions", "servings", "tags", "image", "cookTimeMinutes"}, verr.Fields)

	in = RecipeInput{
		Name:            "Soup",
		Ingredients:     []string{"water"},
		Instructions:    "Boil.",
		Servings:        2,
		Tags:            []string{"easy"},
		CookTimeMinutes: 10,
	}
	assert.NoError(t, in.Validate(false))
	assert.Error(t, in.Validate(true))
	assert.Equal(t, VisibilityOnlyMe, in.NormalizedVisibility())
}

func TestTokenClaimsCaller(t *testing.T) {
	c := (&TokenClaims{UserID: 4, Role: "superuser"}).Caller()
	assert.Equal(t, RoleUser, c.Role)
	assert.False(t, c.IsAdmin())

	c = (&TokenClaims{UserID: 4, Role: RoleAdmin}).Caller()
	assert.True(t, c.IsAdmin())
	assert.False(t, c.IsGuest())
	assert.True(t, Guest.IsGuest())
}
