package main

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/pageza/recipehub/backend/internal/types"
)

// maxParallelModeration bounds concurrent approve/decline calls
const maxParallelModeration = 4

func (a *app) pendingCmd() *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "pending",
		Short: "Show the public recipes waiting for review",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireAdmin(cmd.Context()); err != nil {
				return err
			}
			return a.watch(cmd, watch, func(ctx context.Context) error {
				listing, err := a.moderation.ListPending(ctx)
				if err != nil {
					return err
				}
				return a.printListing(listing)
			})
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Refresh until interrupted")
	return cmd
}

type moderationResult struct {
	RecipeID int                      `json:"recipeId"`
	Outcome  *types.ModerationOutcome `json:"outcome,omitempty"`
	Error    string                   `json:"error,omitempty"`
}

func (a *app) moderateCmd(action types.ModerationAction) *cobra.Command {
	return &cobra.Command{
		Use:   string(action) + " <recipe-id>...",
		Short: fmt.Sprintf("%s pending recipes", titleCase(string(action))),
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			admin, err := a.requireAdmin(cmd.Context())
			if err != nil {
				return err
			}
			if _, err := a.moderation.ListPending(cmd.Context()); err != nil {
				return fmt.Errorf("failed to load pending recipes: %w", err)
			}

			results := a.moderateAll(cmd.Context(), action, ids, admin)
			if err := a.printModeration(action, results); err != nil {
				return err
			}

			failed := 0
			for _, r := range results {
				if r.Error != "" {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d recipes could not be processed", failed, len(results))
			}
			return nil
		},
	}
}

// moderateAll runs one call per id. A failure does not cancel the others.
func (a *app) moderateAll(ctx context.Context, action types.ModerationAction, ids []int, admin types.Caller) []moderationResult {
	moderate := a.moderation.Approve
	if action == types.ActionDecline {
		moderate = a.moderation.Decline
	}

	var (
		mu      sync.Mutex
		results = make([]moderationResult, 0, len(ids))
	)
	g := new(errgroup.Group)
	g.SetLimit(maxParallelModeration)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			res := moderationResult{RecipeID: id}
			outcome, err := moderate(ctx, id, admin)
			if err != nil {
				res.Error = err.Error()
			} else {
				res.Outcome = outcome
			}
			mu.Lock()
			results = append(results, res)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i].RecipeID < results[j].RecipeID })
	return results
}

func (a *app) printModeration(action types.ModerationAction, results []moderationResult) error {
	if a.v.GetBool(keyJSON) {
		return a.printJSON(results)
	}
	for _, r := range results {
		switch {
		case r.Error != "":
			fmt.Fprintf(a.out, "%d: %s\n", r.RecipeID, r.Error)
		case r.Outcome.Changed:
			fmt.Fprintf(a.out, "%d: %s\n", r.RecipeID, r.Outcome.State)
		default:
			fmt.Fprintf(a.out, "%d: already %s\n", r.RecipeID, r.Outcome.State)
		}
	}
	return nil
}

func (a *app) requireAdmin(ctx context.Context) (types.Caller, error) {
	caller, err := a.requireUser(ctx)
	if err != nil {
		return caller, err
	}
	if !caller.IsAdmin() {
		return caller, fmt.Errorf("%s is not an admin account", a.v.GetString(keyEmail))
	}
	return caller, nil
}

func parseIDs(args []string) ([]int, error) {
	seen := make(map[int]bool, len(args))
	ids := make([]int, 0, len(args))
	for _, arg := range args {
		id, err := strconv.Atoi(arg)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid recipe id %q", arg)
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
