// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package detector

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/smishguard/internal/capture"
	"github.com/pdiddy/smishguard/internal/evidence"
	"github.com/pdiddy/smishguard/internal/history"
	"github.com/pdiddy/smishguard/internal/httputil"
	"github.com/pdiddy/smishguard/internal/llm"
	"github.com/pdiddy/smishguard/internal/report"
	"github.com/pdiddy/smishguard/internal/search"
	"github.com/pdiddy/smishguard/pkg/types"
)

// classifierTimeout bounds one classification request.
const classifierTimeout = 2 * time.Minute

// FromConfig builds a Detector with the production backends selected by
// cfg. Collaborators whose credentials are missing are left out and their
// evidence fields degrade; only the classifier is required.
func FromConfig(ctx context.Context, cfg types.DetectorConfig, log *zap.Logger) (*Detector, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	classifier, err := NewClassifier(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var closers []func() error
	persisters := report.Multi{report.JSONWriter(cfg.OutputDir)}
	if cfg.HistoryDB != "" {
		store, err := history.Open(cfg.HistoryDB)
		if err != nil {
			return nil, fmt.Errorf("opening history: %w", err)
		}
		persisters = append(persisters, store)
		closers = append(closers, store.Close)
	}

	d := New(cfg, Collaborators{
		Classifier: classifier,
		Evidence:   newEvidence(cfg, classifier, log.Named("evidence")),
		Search:     newSearch(ctx, cfg, log.Named("search")),
		Persister:  persisters,
	}, log)
	d.closers = closers
	return d, nil
}

// NewClassifier returns the classification backend for cfg.AI.Provider.
func NewClassifier(ctx context.Context, cfg types.DetectorConfig) (llm.Classifier, error) {
	client := &http.Client{Timeout: classifierTimeout}
	switch cfg.AI.Provider {
	case types.ProviderGemini:
		if cfg.Credentials.GeminiKey == "" {
			return nil, fmt.Errorf("gemini provider needs a Gemini API key (GEMINI_API_KEY)")
		}
		return llm.NewGeminiBackend(ctx, cfg.Credentials.GeminiKey, cfg.AI.ModelOrDefault(), client)
	default:
		if cfg.Credentials.OpenAIKey == "" {
			return nil, fmt.Errorf("openai provider needs an OpenAI API key (OPENAI_API_KEY)")
		}
		return &llm.OpenAIBackend{
			APIKey:     cfg.Credentials.OpenAIKey,
			Model:      cfg.AI.ModelOrDefault(),
			MaxRetries: cfg.AI.MaxRetries,
			Client:     client,
		}, nil
	}
}

func newEvidence(cfg types.DetectorConfig, classifier llm.Classifier, log *zap.Logger) *evidence.Orchestrator {
	toggles := cfg.Evidence
	ua := cfg.HTTP.UserAgent
	if ua == "" {
		ua = httputil.DefaultUserAgent
	}
	headers := httputil.BrowserHeaders(ua)
	client := &http.Client{Timeout: cfg.HTTP.Timeout}

	o := &evidence.Orchestrator{
		Tracer:         evidence.NewTracer(client, headers, cfg.AI.MaxRetries),
		Toggles:        toggles,
		OutputDir:      cfg.OutputDir,
		Concurrency:    cfg.Concurrency,
		FetchTimeout:   cfg.HTTP.Timeout,
		ResolveTimeout: cfg.HTTP.ResolveTimeout,
		Log:            log,
	}

	if toggles.HTMLContent {
		var extractor evidence.ContentExtractor
		switch {
		case cfg.ContentBackend == types.ContentJina && cfg.Credentials.JinaKey != "":
			extractor = &evidence.JinaExtractor{APIKey: cfg.Credentials.JinaKey, Client: client, MaxRetries: cfg.AI.MaxRetries}
		default:
			if cfg.ContentBackend == types.ContentJina {
				log.Warn("no Jina API key, fetching page content directly")
			}
			extractor = &evidence.DirectExtractor{Client: client, Headers: headers, MaxRetries: cfg.AI.MaxRetries}
		}
		o.Content = &evidence.ContentAnalyzer{Extractor: extractor, Classifier: classifier}
	}

	if toggles.DomainInfo {
		o.Registry = evidence.NewWhoisRegistry(cfg.HTTP.Timeout, cfg.AI.MaxRetries)
	}

	if toggles.Screenshot {
		o.Describer = &evidence.ScreenshotDescriber{Classifier: classifier, Model: cfg.AI.VisionModelOrDefault()}
		switch cfg.CaptureBackend {
		case types.CaptureCommand:
			c, err := capture.NewCommandCapturer(cfg.CaptureCommand)
			if err != nil {
				log.Warn("screenshot capture unavailable", zap.Error(err))
			} else {
				o.Capturer = c
			}
		default:
			o.Capturer = &capture.ChromeCapturer{UserAgent: ua}
		}
	}
	return o
}

func newSearch(ctx context.Context, cfg types.DetectorConfig, log *zap.Logger) *search.Orchestrator {
	if !cfg.Evidence.BrandSearch {
		return nil
	}
	o := &search.Orchestrator{Concurrency: cfg.Concurrency, Log: log}
	client := httputil.NewRetryClient(cfg.HTTP.Timeout, cfg.AI.MaxRetries)
	backend, err := search.NewGoogleBackend(ctx, cfg.Credentials.GoogleSearchKey, cfg.Credentials.GoogleSearchCX, client)
	if err != nil {
		log.Warn("brand search unavailable", zap.Error(err))
		return o
	}
	o.Backend = backend
	return o
}
