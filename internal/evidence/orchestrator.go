// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package evidence gathers corroborating evidence about URLs: redirect
// history, rendered page text and its summary, domain registration, and a
// described screenshot. Every fetcher is independent and degrades to a
// failure sentinel instead of aborting the run.
package evidence

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/smishguard/pkg/types"
)

const (
	defaultFetchTimeout      = 20 * time.Second
	defaultResolveTimeout    = 10 * time.Second
	defaultScreenshotTimeout = 60 * time.Second
)

// Orchestrator runs the enabled evidence fetchers for each URL. Nil
// collaborators are allowed; an enabled fetcher without its collaborator
// records a failure.
type Orchestrator struct {
	Tracer    *Tracer
	Content   *ContentAnalyzer
	Registry  Registry
	Capturer  ScreenshotCapturer
	Describer *ScreenshotDescriber

	Toggles   types.EvidenceConfig
	OutputDir string

	// Concurrency caps the number of URLs analysed at once (default 4).
	Concurrency int

	FetchTimeout      time.Duration
	ResolveTimeout    time.Duration
	ScreenshotTimeout time.Duration

	Log *zap.Logger
}

func (o *Orchestrator) logger() *zap.Logger {
	if o.Log == nil {
		return zap.NewNop()
	}
	return o.Log
}

// Analyze gathers evidence for every URL. The result is keyed by position
// in urls regardless of completion order.
func (o *Orchestrator) Analyze(ctx context.Context, urls []string) types.EvidenceMap {
	results := make([]*types.URLEvidence, len(urls))

	limit := o.Concurrency
	if limit <= 0 {
		limit = 4
	}
	var g errgroup.Group
	g.SetLimit(limit)
	for i, u := range urls {
		g.Go(func() error {
			results[i] = o.AnalyzeURL(ctx, i, u)
			return nil
		})
	}
	g.Wait()

	m := make(types.EvidenceMap, len(urls))
	for i, ev := range results {
		m[i] = ev
	}
	return m
}

// AnalyzeURL normalizes and resolves one URL, then runs the enabled
// fetchers concurrently.
func (o *Orchestrator) AnalyzeURL(ctx context.Context, index int, rawURL string) *types.URLEvidence {
	log := o.logger().With(zap.Int("url_index", index), zap.String("url", rawURL))

	ev := &types.URLEvidence{
		URL:           rawURL,
		NormalizedURL: NormalizeURL(rawURL),
	}
	ev.ResolvedURL = o.resolve(ctx, log, ev.NormalizedURL)
	ev.FinalURL = ev.Target()

	var g errgroup.Group
	if o.Toggles.RedirectChain {
		g.Go(func() error {
			ev.RedirectChain = o.redirectChain(ctx, log, ev.NormalizedURL)
			return nil
		})
	}
	if o.Toggles.HTMLContent {
		g.Go(func() error {
			ev.Content, ev.Summary = o.content(ctx, log, ev.Target())
			return nil
		})
	}
	if o.Toggles.DomainInfo {
		g.Go(func() error {
			ev.DomainInfo = o.domainInfo(ctx, log, ev.NormalizedURL)
			return nil
		})
	}
	if o.Toggles.Screenshot {
		g.Go(func() error {
			ev.ScreenshotPath, ev.ScreenshotDescription = o.screenshot(ctx, log, index, ev.Target())
			return nil
		})
	}
	g.Wait()

	return ev
}

func (o *Orchestrator) resolve(ctx context.Context, log *zap.Logger, normalized string) string {
	if o.Tracer == nil {
		return ""
	}
	timeout := o.ResolveTimeout
	if timeout <= 0 {
		timeout = defaultResolveTimeout
	}
	final, status, err := o.Tracer.Resolve(ctx, normalized, timeout)
	if err != nil {
		log.Warn("resolving URL failed", zap.Error(err))
		return ""
	}
	log.Debug("resolved URL", zap.String("final_url", final), zap.Int("status", status), zap.Bool("reachable", Reachable(status)))
	return final
}

func (o *Orchestrator) fetchContext(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = o.FetchTimeout
	}
	if d <= 0 {
		d = defaultFetchTimeout
	}
	return context.WithTimeout(ctx, d)
}

func (o *Orchestrator) redirectChain(ctx context.Context, log *zap.Logger, normalized string) *types.RedirectChain {
	if o.Tracer == nil {
		log.Warn("evidence unavailable", zap.String("field", "redirect_chain"), zap.String("reason", "no tracer configured"))
		return &types.RedirectChain{Failed: true}
	}
	ctx, cancel := o.fetchContext(ctx, 0)
	defer cancel()

	chain, err := o.Tracer.Chain(ctx, normalized)
	if err != nil {
		log.Warn("evidence unavailable", zap.String("field", "redirect_chain"), zap.Error(err))
		return &types.RedirectChain{Failed: true}
	}
	return chain
}

func (o *Orchestrator) content(ctx context.Context, log *zap.Logger, target string) (*types.Field, *types.Field) {
	canned := func() (*types.Field, *types.Field) {
		return types.Value(NoContentText), types.Value(NoContentText)
	}
	if o.Content == nil || o.Content.Extractor == nil || o.Content.Classifier == nil {
		log.Warn("evidence unavailable", zap.String("field", "html_content"), zap.String("reason", "no content extractor configured"))
		return canned()
	}
	ctx, cancel := o.fetchContext(ctx, 0)
	defer cancel()

	content, summary, err := o.Content.Analyze(ctx, target)
	if err != nil {
		log.Warn("evidence unavailable", zap.String("field", "html_content"), zap.Error(err))
		return canned()
	}
	return types.Value(content), types.Value(summary)
}

func (o *Orchestrator) domainInfo(ctx context.Context, log *zap.Logger, normalized string) *types.Field {
	domain, err := RegistrableDomain(normalized)
	if err != nil {
		log.Warn("evidence unavailable", zap.String("field", "domain_info"), zap.Error(err))
		return types.Failed()
	}
	if o.Registry == nil {
		log.Warn("evidence unavailable", zap.String("field", "domain_info"), zap.String("reason", "no registry configured"))
		return types.Failed()
	}
	ctx, cancel := o.fetchContext(ctx, 0)
	defer cancel()

	record, err := o.Registry.Lookup(ctx, domain)
	if err != nil {
		log.Warn("evidence unavailable", zap.String("field", "domain_info"), zap.String("domain", domain), zap.Error(err))
		return types.Failed()
	}
	return types.Value(record)
}

func (o *Orchestrator) screenshot(ctx context.Context, log *zap.Logger, index int, target string) (*types.Field, *types.Field) {
	path := ScreenshotPath(o.OutputDir, index)

	timeout := o.ScreenshotTimeout
	if timeout <= 0 {
		timeout = defaultScreenshotTimeout
	}
	ctx, cancel := o.fetchContext(ctx, timeout)
	defer cancel()

	captured, err := ensureScreenshot(ctx, o.Capturer, target, path)
	if err != nil {
		log.Warn("evidence unavailable", zap.String("field", "screenshot"), zap.Error(err))
		return types.Failed(), types.Failed()
	}
	if !captured {
		log.Debug("reusing existing screenshot", zap.String("path", path))
	}

	if o.Describer == nil || o.Describer.Classifier == nil {
		log.Warn("evidence unavailable", zap.String("field", "screenshot"), zap.String("reason", "no describer configured"))
		return types.Failed(), types.Failed()
	}
	desc, err := o.Describer.Describe(ctx, path)
	if err != nil {
		log.Warn("evidence unavailable", zap.String("field", "screenshot"), zap.Error(err))
		return types.Failed(), types.Failed()
	}
	return types.Value(path), types.Value(desc)
}
