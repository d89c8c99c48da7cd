package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/pageza/recipehub/backend/internal/types"
)

func (a *app) printJSON(v interface{}) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) printListing(listing *types.Listing) error {
	if a.v.GetBool(keyJSON) {
		return a.printJSON(listing)
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SOURCE\tID\tNAME\tCUISINE\tSTATUS")
	for _, r := range listing.Recipes {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n", r.Source, r.ID, r.Name, deref(r.Cuisine), r.StatusLabel())
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	for _, w := range listing.Warnings {
		fmt.Fprintf(a.out, "warning: %s: %s\n", w.Source, w.Message)
	}
	return nil
}

func (a *app) printOwnerRecipes(recipes []types.OwnerRecipe) error {
	if a.v.GetBool(keyJSON) {
		return a.printJSON(recipes)
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tVISIBILITY\tSTATUS")
	for _, r := range recipes {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", r.ID, r.Name, r.Visibility, r.Status)
	}
	return tw.Flush()
}

func (a *app) printRecipe(r *types.Recipe) error {
	if a.v.GetBool(keyJSON) {
		return a.printJSON(r)
	}

	fmt.Fprintf(a.out, "%s (%s #%d)\n", r.Name, r.Source, r.ID)
	if r.Cuisine != nil {
		fmt.Fprintf(a.out, "Cuisine: %s\n", *r.Cuisine)
	}
	if len(r.Tags) > 0 {
		fmt.Fprintf(a.out, "Tags: %s\n", strings.Join(r.Tags, ", "))
	}
	fmt.Fprintln(a.out, "\nIngredients:")
	for _, ing := range r.Ingredients {
		fmt.Fprintf(a.out, "  - %s\n", ing)
	}
	fmt.Fprintln(a.out, "\nInstructions:")
	for i, step := range r.Instructions {
		fmt.Fprintf(a.out, "  %d. %s\n", i+1, step)
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}
