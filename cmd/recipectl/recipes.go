package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pageza/recipehub/backend/internal/types"
)

func (a *app) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List recipes from both sources",
		Long: `List every recipe visible to the current account: public recipes, approved
user submissions and, when logged in, your own private recipes.

A source that cannot be reached is reported as a warning below the table.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			caller, err := a.caller(cmd.Context())
			if err != nil {
				return err
			}
			listing, err := a.aggregation.ListRecipes(cmd.Context(), caller)
			if err != nil {
				return err
			}
			return a.printListing(listing)
		},
	}
}

func (a *app) searchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search the public recipe API",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			listing, err := a.aggregation.Search(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			return a.printListing(listing)
		},
	}
}

func (a *app) luckyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lucky",
		Short: "Show a random recipe",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			caller, err := a.requireUser(cmd.Context())
			if err != nil {
				return err
			}
			recipe, err := a.aggregation.Lucky(cmd.Context(), caller)
			if err != nil {
				return err
			}
			return a.printRecipe(recipe)
		},
	}
}

func (a *app) mineCmd() *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "mine",
		Short: "List your own recipes with their review status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			caller, err := a.requireUser(cmd.Context())
			if err != nil {
				return err
			}
			return a.watch(cmd, watch, func(ctx context.Context) error {
				recipes, err := a.recipes.Mine(ctx, caller)
				if err != nil {
					return err
				}
				return a.printOwnerRecipes(recipes)
			})
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Refresh until interrupted")
	return cmd
}

func (a *app) requireUser(ctx context.Context) (types.Caller, error) {
	caller, err := a.caller(ctx)
	if err != nil {
		return caller, err
	}
	if caller.IsGuest() {
		return caller, fmt.Errorf("this command needs an account, set --email and --password")
	}
	return caller, nil
}
