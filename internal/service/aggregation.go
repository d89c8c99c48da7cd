package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/pageza/recipehub/backend/internal/adapter"
	"github.com/pageza/recipehub/backend/internal/approval"
	"github.com/pageza/recipehub/backend/internal/metrics"
	"github.com/pageza/recipehub/backend/internal/types"
)

// AggregationService merges the external catalogue with user-submitted recipes.
// It keeps no recipe cache: every call is a fresh round trip.
type AggregationService struct {
	external ExternalSource
	backend  BackendStore
	adapter  *adapter.Adapter
	metrics  *metrics.Metrics
	log      logrus.FieldLogger
	intn     func(n int) int
}

// NewAggregationService creates a new AggregationService
func NewAggregationService(external ExternalSource, backend BackendStore, a *adapter.Adapter, m *metrics.Metrics, log logrus.FieldLogger) *AggregationService {
	return &AggregationService{
		external: external,
		backend:  backend,
		adapter:  a,
		metrics:  m,
		log:      log.WithField("component", "aggregation"),
		intn:     rand.Intn,
	}
}

type fetchResult struct {
	source  types.Source
	label   string
	records []json.RawMessage
	err     error
}

// ListRecipes returns external recipes, approved public user recipes, and the
// caller's own OnlyMe recipes, in that order. A source that fails becomes a
// warning; an error is returned only when every source fails.
func (s *AggregationService) ListRecipes(ctx context.Context, caller types.Caller) (*types.Listing, error) {
	results := []*fetchResult{
		{source: types.SourceExternal, label: "external recipes"},
		{source: types.SourceUserSubmitted, label: "community recipes"},
	}
	if !caller.IsGuest() {
		results = append(results, &fetchResult{source: types.SourceUserSubmitted, label: "your recipes"})
	}

	var g errgroup.Group
	g.Go(func() error {
		results[0].records, results[0].err = s.external.ListRecipes(ctx)
		s.metrics.ObserveSource(types.SourceExternal, "list", results[0].err)
		return nil
	})
	g.Go(func() error {
		results[1].records, results[1].err = s.backend.ListApproved(ctx)
		s.metrics.ObserveSource(types.SourceUserSubmitted, "list_approved", results[1].err)
		return nil
	})
	if len(results) == 3 {
		g.Go(func() error {
			results[2].records, results[2].err = s.backend.ListByUser(ctx, caller.UserID)
			s.metrics.ObserveSource(types.SourceUserSubmitted, "list_by_user", results[2].err)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	listing := &types.Listing{Recipes: []types.Recipe{}}
	seen := make(map[string]struct{})
	failed := 0
	var lastErr error

	for _, res := range results {
		if res.err != nil {
			failed++
			lastErr = res.err
			s.metrics.ObserveWarning(res.source)
			s.log.WithError(res.err).WithField("source", res.label).Warn("source unavailable, returning partial listing")
			listing.Warnings = append(listing.Warnings, types.Warning{
				Source:  res.source,
				Message: res.label + " are unavailable right now",
				Err:     res.err,
			})
			continue
		}

		recipes, warnings := s.adapter.NormalizeAll(res.source, res.records)
		s.logMalformed(warnings)
		listing.Warnings = append(listing.Warnings, warnings...)
		for _, r := range recipes {
			if !approval.Visible(r, caller) {
				continue
			}
			if _, dup := seen[r.Key()]; dup {
				continue
			}
			seen[r.Key()] = struct{}{}
			listing.Recipes = append(listing.Recipes, r)
		}
	}

	if failed == len(results) {
		return nil, fmt.Errorf("failed to list recipes: %w", lastErr)
	}
	return listing, nil
}

// Search queries the external catalogue. A blank query returns an empty
// listing without a request.
func (s *AggregationService) Search(ctx context.Context, query string) (*types.Listing, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return &types.Listing{Recipes: []types.Recipe{}}, nil
	}

	records, err := s.external.SearchRecipes(ctx, query)
	s.metrics.ObserveSource(types.SourceExternal, "search", err)
	if err != nil {
		return nil, fmt.Errorf("failed to search recipes: %w", err)
	}

	recipes, warnings := s.adapter.NormalizeAll(types.SourceExternal, records)
	s.logMalformed(warnings)
	return &types.Listing{Recipes: recipes, Warnings: warnings}, nil
}

// GetExternal fetches a single external recipe
func (s *AggregationService) GetExternal(ctx context.Context, id int) (*types.Recipe, error) {
	raw, err := s.external.GetRecipe(ctx, id)
	s.metrics.ObserveSource(types.SourceExternal, "get", err)
	if err != nil {
		return nil, fmt.Errorf("failed to get recipe %d: %w", id, err)
	}

	r, err := s.adapter.External(raw)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// PickRandom chooses uniformly among the distinct recipes in the slice
func (s *AggregationService) PickRandom(recipes []types.Recipe) (*types.Recipe, error) {
	unique := make([]types.Recipe, 0, len(recipes))
	seen := make(map[string]struct{}, len(recipes))
	for _, r := range recipes {
		if _, dup := seen[r.Key()]; dup {
			continue
		}
		seen[r.Key()] = struct{}{}
		unique = append(unique, r)
	}
	if len(unique) == 0 {
		return nil, &types.EmptyCatalogError{}
	}

	pick := unique[s.intn(len(unique))]
	return &pick, nil
}

// Lucky lists what the caller can see, picks one at random, and refreshes an
// external pick from its source.
func (s *AggregationService) Lucky(ctx context.Context, caller types.Caller) (*types.Recipe, error) {
	listing, err := s.ListRecipes(ctx, caller)
	if err != nil {
		return nil, err
	}

	pick, err := s.PickRandom(listing.Recipes)
	if err != nil {
		return nil, err
	}
	if pick.Source != types.SourceExternal {
		return pick, nil
	}
	return s.GetExternal(ctx, pick.ID)
}

func (s *AggregationService) logMalformed(warnings []types.Warning) {
	for _, w := range warnings {
		s.log.WithError(w.Err).WithField("source", w.Source).Warn("skipping malformed record")
	}
}
