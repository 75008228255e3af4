// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"fmt"
	"net/http"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// googleEndpoint overrides the Custom Search API host. Empty uses the SDK
// default; tests point it at an httptest server.
var googleEndpoint = ""

// GoogleBackend queries the Google Custom Search JSON API.
type GoogleBackend struct {
	svc    *customsearch.Service
	apiKey string
	cx     string
}

// NewGoogleBackend creates a backend for the given API key and search engine
// ID. httpClient carries timeouts and 429 retries.
func NewGoogleBackend(ctx context.Context, apiKey, cx string, httpClient *http.Client) (*GoogleBackend, error) {
	if apiKey == "" || cx == "" {
		return nil, fmt.Errorf("google search needs an API key and a search engine ID")
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	opts := []option.ClientOption{option.WithHTTPClient(httpClient)}
	if googleEndpoint != "" {
		opts = append(opts, option.WithEndpoint(googleEndpoint))
	}
	svc, err := customsearch.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating custom search service: %w", err)
	}
	return &GoogleBackend{svc: svc, apiKey: apiKey, cx: cx}, nil
}

// Name returns the backend name.
func (g *GoogleBackend) Name() string { return "google" }

// Search returns the result links for query, at most limit of them.
func (g *GoogleBackend) Search(ctx context.Context, query string, limit int) ([]string, error) {
	call := g.svc.Cse.List().Cx(g.cx).Q(query).Context(ctx)
	if limit > 0 {
		call = call.Num(int64(limit))
	}
	res, err := call.Do(googleapi.QueryParameter("key", g.apiKey))
	if err != nil {
		return nil, fmt.Errorf("custom search %q: %w", query, err)
	}

	links := make([]string, 0, len(res.Items))
	for _, item := range res.Items {
		if item == nil || item.Link == "" {
			continue
		}
		links = append(links, item.Link)
	}
	return links, nil
}
