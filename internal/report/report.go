// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report assembles the terminal analysis artifact and hands it to
// persistence collaborators.
package report

import (
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/smishguard/pkg/types"
)

// Input holds every artifact a run produced.
type Input struct {
	SMS          string
	Seed         types.SeedRecord
	Evidence     types.EvidenceMap
	PhoneNumbers []string
	Verdict      types.Verdict
	Explanation  string
	Prompt       string
	StartedAt    time.Time
}

// now is swapped in tests.
var now = func() time.Time { return time.Now().UTC() }

// Assemble merges a run's artifacts into one AnalysisResult with a fresh
// run ID. URLs is the "none" sentinel unless the seed carries URLs.
func Assemble(in Input) *types.AnalysisResult {
	evidence := in.Evidence
	if !in.Seed.HasURL {
		evidence = nil
	}
	started := in.StartedAt
	if started.IsZero() {
		started = now()
	}
	return &types.AnalysisResult{
		RunID:              uuid.NewString(),
		StartedAt:          started.UTC(),
		FinishedAt:         now(),
		SMS:                in.SMS,
		IsURL:              in.Seed.HasURL,
		URLs:               evidence,
		IsBrand:            in.Seed.HasBrand,
		Brands:             in.Seed.Brands,
		PhoneNumbers:       in.PhoneNumbers,
		DetectResult:       in.Verdict,
		UserFriendlyOutput: in.Explanation,
		DetectionPrompt:    in.Prompt,
	}
}
