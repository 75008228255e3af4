// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract turns a raw message into its seed record: the URLs and
// brand names it mentions, and optionally the phone numbers it contains.
package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/smishguard/internal/llm"
	"github.com/pdiddy/smishguard/pkg/types"
)

// ErrUnparseable marks a run that cannot continue because the classifier's
// extraction answer could not be read as a seed record.
var ErrUnparseable = errors.New("extraction response unparseable")

// Extractor classifies a message into a SeedRecord.
type Extractor struct {
	classifier llm.Classifier
	log        *zap.Logger
}

// New creates an Extractor. A nil logger discards output.
func New(c llm.Classifier, log *zap.Logger) *Extractor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Extractor{classifier: c, log: log}
}

// Extract issues one structured classification request for message. Any
// failure is fatal for the run: a failed call is returned wrapped, and an
// answer that does not parse is returned wrapping ErrUnparseable.
func (e *Extractor) Extract(ctx context.Context, message string) (types.SeedRecord, error) {
	if strings.TrimSpace(message) == "" {
		return types.SeedRecord{}, fmt.Errorf("message is empty")
	}

	prompt, err := renderPrompt(message)
	if err != nil {
		return types.SeedRecord{}, fmt.Errorf("rendering prompt: %w", err)
	}

	req := llm.UserPrompt(prompt)
	req.JSON = true
	raw, err := e.classifier.Complete(ctx, req)
	if err != nil {
		e.log.Error("extraction call failed", zap.Error(err))
		return types.SeedRecord{}, fmt.Errorf("extracting URLs and brands: %w", err)
	}

	var seed types.SeedRecord
	if err := llm.DecodeJSON(raw, &seed); err != nil {
		e.log.Error("extraction response unparseable", zap.Error(err), zap.String("response", raw))
		return types.SeedRecord{}, fmt.Errorf("%w: %v", ErrUnparseable, err)
	}

	seed = seed.Normalize()
	e.log.Debug("seed record",
		zap.Bool("is_url", seed.HasURL),
		zap.Strings("urls", seed.URLs),
		zap.Bool("is_brand", seed.HasBrand),
		zap.Strings("brands", seed.Brands),
	)
	return seed, nil
}
