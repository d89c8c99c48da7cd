// Package approval holds the visibility and moderation rules for user recipes.
package approval

import "github.com/pageza/recipehub/backend/internal/types"

// OnCreate returns the initial approval state for a new user recipe.
// OnlyMe recipes are never reviewed so their state is moot.
func OnCreate(v types.Visibility) types.ApprovalState {
	if v == types.VisibilityPublic {
		return types.ApprovalPending
	}
	return types.ApprovalApproved
}

// OnEdit returns the approval state after an owner edit. Any edit sends the
// recipe back for review, including a previously declined one.
func OnEdit(_ types.Visibility, _ types.ApprovalState) types.ApprovalState {
	return types.ApprovalPending
}

// Approve moves a pending public recipe to approved. changed is false when the
// recipe was already approved.
func Approve(r types.Recipe) (types.ApprovalState, bool, error) {
	return transition(r, types.ActionApprove, types.ApprovalApproved)
}

// Decline moves a pending public recipe to declined
func Decline(r types.Recipe) (types.ApprovalState, bool, error) {
	return transition(r, types.ActionDecline, types.ApprovalDeclined)
}

// Apply runs action against r
func Apply(r types.Recipe, action types.ModerationAction) (types.ApprovalState, bool, error) {
	if action == types.ActionDecline {
		return Decline(r)
	}
	return Approve(r)
}

// Target is the state an action resolves to
func Target(action types.ModerationAction) types.ApprovalState {
	if action == types.ActionDecline {
		return types.ApprovalDeclined
	}
	return types.ApprovalApproved
}

func transition(r types.Recipe, action types.ModerationAction, to types.ApprovalState) (types.ApprovalState, bool, error) {
	if r.Source != types.SourceUserSubmitted || r.Visibility != types.VisibilityPublic {
		return r.Approval, false, &types.InvalidTransitionError{RecipeID: r.ID, From: describe(r), Action: action}
	}
	switch r.Approval {
	case to:
		return to, false, nil
	case types.ApprovalPending:
		return to, true, nil
	default:
		return r.Approval, false, &types.InvalidTransitionError{RecipeID: r.ID, From: describe(r), Action: action}
	}
}

func describe(r types.Recipe) string {
	if r.Source == types.SourceExternal {
		return "external"
	}
	if r.Visibility != types.VisibilityPublic {
		return "only-me"
	}
	return r.Approval.String()
}

// Visible reports whether caller may see r in a listing: external recipes,
// approved public recipes, and the caller's own OnlyMe recipes.
func Visible(r types.Recipe, caller types.Caller) bool {
	switch {
	case r.Source == types.SourceExternal:
		return true
	case r.Visibility == types.VisibilityPublic:
		return r.Approval == types.ApprovalApproved
	default:
		return !caller.IsGuest() && r.OwnedBy(caller.UserID)
	}
}
