package client

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
)

// ExternalClient reads the public recipe API
type ExternalClient struct {
	base
}

// NewExternalClient creates a client for the public recipe API
func NewExternalClient(opts Options) *ExternalClient {
	return &ExternalClient{base: newBase(opts, "external-client")}
}

// ListRecipes fetches GET /recipes
func (c *ExternalClient) ListRecipes(ctx context.Context) ([]json.RawMessage, error) {
	body, err := c.get(ctx, "list external recipes", "recipes", nil)
	if err != nil {
		return nil, err
	}
	return records("list external recipes", body, "recipes")
}

// GetRecipe fetches GET /recipes/{id}
func (c *ExternalClient) GetRecipe(ctx context.Context, id int) (json.RawMessage, error) {
	body, err := c.get(ctx, "get external recipe", "recipes/"+strconv.Itoa(id), nil)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

// SearchRecipes fetches GET /recipes/search?q=
func (c *ExternalClient) SearchRecipes(ctx context.Context, query string) ([]json.RawMessage, error) {
	body, err := c.get(ctx, "search external recipes", "recipes/search", url.Values{"q": {query}})
	if err != nil {
		return nil, err
	}
	return records("search external recipes", body, "recipes")
}
