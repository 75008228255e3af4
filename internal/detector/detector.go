// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package detector wires the analysis stages into one run: extraction,
// evidence gathering and brand search, transcript compilation, verdict,
// explanation, and persistence.
package detector

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/smishguard/internal/evidence"
	"github.com/pdiddy/smishguard/internal/extract"
	"github.com/pdiddy/smishguard/internal/llm"
	"github.com/pdiddy/smishguard/internal/report"
	"github.com/pdiddy/smishguard/internal/search"
	"github.com/pdiddy/smishguard/internal/transcript"
	"github.com/pdiddy/smishguard/internal/verdict"
	"github.com/pdiddy/smishguard/pkg/types"
)

// Collaborators are the services a Detector delegates to. Evidence, Search
// and Persister may be nil.
type Collaborators struct {
	Classifier llm.Classifier
	Evidence   *evidence.Orchestrator
	Search     *search.Orchestrator
	Persister  report.Persister
}

// Detector runs the full analysis pipeline for one message at a time.
// Runs share no mutable state and may execute concurrently.
type Detector struct {
	cfg       types.DetectorConfig
	extractor *extract.Extractor
	evidence  *evidence.Orchestrator
	search    *search.Orchestrator
	engine    *verdict.Engine
	persister report.Persister
	closers   []func() error
	log       *zap.Logger
}

// New creates a Detector from explicit collaborators.
func New(cfg types.DetectorConfig, c Collaborators, log *zap.Logger) *Detector {
	if log == nil {
		log = zap.NewNop()
	}
	return &Detector{
		cfg:       cfg,
		extractor: extract.New(c.Classifier, log.Named("extract")),
		evidence:  c.Evidence,
		search:    c.Search,
		engine:    verdict.New(c.Classifier, log.Named("verdict")),
		persister: c.Persister,
		log:       log,
	}
}

// Close releases resources held by the collaborators.
func (d *Detector) Close() error {
	var first error
	for _, c := range d.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Extract runs only the extraction stage.
func (d *Detector) Extract(ctx context.Context, sms string) (types.SeedRecord, error) {
	return d.extractor.Extract(ctx, sms)
}

// Inspect gathers evidence for urls without extraction or a verdict.
func (d *Detector) Inspect(ctx context.Context, urls []string) (types.EvidenceMap, error) {
	if d.evidence == nil {
		return nil, fmt.Errorf("evidence gathering is not configured")
	}
	if err := d.ensureOutputDir(); err != nil {
		return nil, err
	}
	return d.evidence.Analyze(ctx, urls), nil
}

// Run analyses sms and returns the assembled result. Only a failed
// extraction aborts the run; every later failure degrades the result. A
// persistence failure is returned together with the complete result.
func (d *Detector) Run(ctx context.Context, sms string) (*types.AnalysisResult, error) {
	started := time.Now()

	seed, err := d.extractor.Extract(ctx, sms)
	if err != nil {
		return nil, err
	}

	var phones []string
	if d.cfg.Evidence.PhoneNumbers {
		phones = extract.PhoneNumbers(sms, d.cfg.Evidence.PhoneRegion)
	}

	ev, err := d.gather(ctx, seed)
	if err != nil {
		return nil, err
	}

	tr := transcript.Compile(transcript.Input{
		SMS:          sms,
		Seed:         seed,
		Evidence:     ev,
		PhoneNumbers: phones,
	})
	v, prompt := d.engine.Decide(ctx, tr)
	explanation := d.engine.Explain(ctx, sms, v)

	result := report.Assemble(report.Input{
		SMS:          sms,
		Seed:         seed,
		Evidence:     ev,
		PhoneNumbers: phones,
		Verdict:      v,
		Explanation:  explanation,
		Prompt:       prompt,
		StartedAt:    started,
	})
	d.log.Info("analysis complete",
		zap.String("run_id", result.RunID),
		zap.Bool("category", v.Category),
		zap.Bool("fallback", v.Fallback),
		zap.Int("urls", len(ev)),
		zap.Duration("elapsed", time.Since(started)),
	)

	if d.persister != nil {
		if err := d.persister.Save(ctx, result); err != nil {
			d.log.Error("saving result", zap.String("run_id", result.RunID), zap.Error(err))
			return result, fmt.Errorf("saving result: %w", err)
		}
	}
	return result, nil
}

// gather runs URL analysis and brand search concurrently, then attaches and
// cross-references the brand result into every URL's evidence.
func (d *Detector) gather(ctx context.Context, seed types.SeedRecord) (types.EvidenceMap, error) {
	if !seed.HasURL {
		return nil, nil
	}
	if err := d.ensureOutputDir(); err != nil {
		return nil, err
	}

	var (
		ev     types.EvidenceMap
		brands types.BrandSearchResult
		g      errgroup.Group
	)
	if d.evidence != nil {
		g.Go(func() error {
			ev = d.evidence.Analyze(ctx, seed.URLs)
			return nil
		})
	} else {
		ev = bareEvidence(seed.URLs)
	}

	searchBrands := d.cfg.Evidence.BrandSearch && seed.HasBrand && d.search != nil
	if searchBrands {
		g.Go(func() error {
			brands = d.search.SearchBrands(ctx, seed.Brands)
			return nil
		})
	}
	g.Wait()

	if searchBrands {
		search.Attach(ev, brands)
		search.CrossReferenceAll(ev, d.log.Named("search"))
	}
	return ev, nil
}

func (d *Detector) ensureOutputDir() error {
	if d.cfg.OutputDir == "" {
		return nil
	}
	if err := os.MkdirAll(d.cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	return nil
}

// bareEvidence records each URL with no fetchers run.
func bareEvidence(urls []string) types.EvidenceMap {
	m := make(types.EvidenceMap, len(urls))
	for i, u := range urls {
		n := evidence.NormalizeURL(u)
		m[i] = &types.URLEvidence{URL: u, NormalizedURL: n, FinalURL: n}
	}
	return m
}
