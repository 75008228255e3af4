// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search looks up the official web presence of brand names and
// cross-references it against the URLs found in a message.
package search

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/smishguard/pkg/types"
)

// ResultLimit is the number of search results requested per brand.
const ResultLimit = 5

// Backend queries a single web search API. Implementations follow the
// Strategy pattern so tests can supply a mock.
type Backend interface {
	Name() string
	Search(ctx context.Context, query string, limit int) ([]string, error)
}

// Orchestrator runs one search per brand.
type Orchestrator struct {
	Backend Backend

	// Concurrency caps simultaneous queries (default 4).
	Concurrency int

	Log *zap.Logger
}

// SearchBrands queries the backend for each brand and returns the result
// keyed by brand index. A failed query yields an empty list, never an error.
func (o *Orchestrator) SearchBrands(ctx context.Context, brands []string) types.BrandSearchResult {
	log := o.Log
	if log == nil {
		log = zap.NewNop()
	}

	domains := make([][]string, len(brands))

	limit := o.Concurrency
	if limit <= 0 {
		limit = 4
	}
	var g errgroup.Group
	g.SetLimit(limit)
	for i, brand := range brands {
		g.Go(func() error {
			domains[i] = o.searchOne(ctx, log, i, brand)
			return nil
		})
	}
	g.Wait()

	result := make(types.BrandSearchResult, len(brands))
	for i, brand := range brands {
		result[i] = types.BrandDomains{BrandName: brand, Domains: domains[i]}
	}
	return result
}

func (o *Orchestrator) searchOne(ctx context.Context, log *zap.Logger, index int, brand string) []string {
	if o.Backend == nil {
		log.Warn("brand search unavailable", zap.Int("brand_index", index), zap.String("reason", "no search backend configured"))
		return []string{}
	}
	if strings.TrimSpace(brand) == "" {
		return []string{}
	}

	links, err := o.Backend.Search(ctx, brand, ResultLimit)
	if err != nil {
		log.Warn("brand search failed",
			zap.Int("brand_index", index),
			zap.String("brand", brand),
			zap.String("backend", o.Backend.Name()),
			zap.Error(err),
		)
		return []string{}
	}
	if len(links) > ResultLimit {
		links = links[:ResultLimit]
	}
	if links == nil {
		links = []string{}
	}
	return links
}

// Attach copies the full brand search result into every URL's evidence.
// Each URL receives the same result regardless of which brand it relates to.
func Attach(evidence types.EvidenceMap, result types.BrandSearchResult) {
	for _, ev := range evidence {
		cp := make(types.BrandSearchResult, len(result))
		for i, bd := range result {
			cp[i] = types.BrandDomains{BrandName: bd.BrandName, Domains: append([]string{}, bd.Domains...)}
		}
		ev.BrandSearch = cp
	}
}
