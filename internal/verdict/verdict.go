// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package verdict asks the classifier for a decision on a compiled evidence
// transcript and for a plain-language explanation of that decision.
package verdict

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/smishguard/internal/llm"
	"github.com/pdiddy/smishguard/pkg/types"
)

// ExplanationFallback replaces an explanation the classifier could not give.
const ExplanationFallback = "Unable to generate user-friendly analysis."

// Engine issues the verdict and explanation requests.
type Engine struct {
	classifier llm.Classifier
	log        *zap.Logger
}

// New creates an Engine. A nil logger discards output.
func New(c llm.Classifier, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{classifier: c, log: log}
}

// Decide sends the detection prompt built from transcript and parses the
// answer. Any failure yields the fail-closed fallback verdict. The prompt
// actually sent is returned alongside for the run record.
func (e *Engine) Decide(ctx context.Context, transcript string) (types.Verdict, string) {
	prompt := Prompt(transcript)

	var v types.Verdict
	if err := llm.CompleteJSON(ctx, e.classifier, llm.UserPrompt(prompt), &v); err != nil {
		e.log.Warn("verdict unavailable, failing closed", zap.Error(err))
		return types.FallbackVerdict(), prompt
	}
	// Only this package may issue a fallback.
	v.Fallback = false

	e.log.Debug("verdict",
		zap.Bool("category", v.Category),
		zap.String("brand_impersonated", v.BrandImpersonated),
		zap.String("brief_reason", v.BriefReason),
	)
	return v, prompt
}

// Explain returns a short explanation of v for the recipient of sms, or
// ExplanationFallback when the classifier fails.
func (e *Engine) Explain(ctx context.Context, sms string, v types.Verdict) string {
	prompt, err := explanationPrompt(sms, v)
	if err != nil {
		e.log.Warn("explanation prompt", zap.Error(err))
		return ExplanationFallback
	}

	out, err := e.classifier.Complete(ctx, llm.UserPrompt(prompt))
	if err != nil {
		e.log.Warn("explanation unavailable", zap.Error(err))
		return ExplanationFallback
	}
	out = strings.TrimSpace(out)
	if out == "" {
		e.log.Warn("explanation unavailable", zap.String("reason", "empty response"))
		return ExplanationFallback
	}
	return out
}
