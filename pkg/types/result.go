// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// AnalysisResult is the terminal artifact of one run: the seed record, the
// per-URL evidence, the verdict, the explanation, and the transcript the
// verdict was issued against.
type AnalysisResult struct {
	RunID      string    `json:"run_id" yaml:"run_id"`
	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at" yaml:"finished_at"`

	SMS string `json:"SMS" yaml:"SMS"`

	IsURL   bool        `json:"is_URL" yaml:"is_URL"`
	URLs    EvidenceMap `json:"URLs" yaml:"URLs"`
	IsBrand bool        `json:"is_brand" yaml:"is_brand"`
	Brands  List        `json:"brands" yaml:"brands"`

	PhoneNumbers []string `json:"phone_numbers,omitempty" yaml:"phone_numbers,omitempty"`

	DetectResult       Verdict `json:"detect_result" yaml:"detect_result"`
	UserFriendlyOutput string  `json:"user_friendly_output" yaml:"user_friendly_output"`
	DetectionPrompt    string  `json:"detection_prompt" yaml:"detection_prompt"`
}

// Category is the run's terminal boolean: true for phishing or spam.
func (r *AnalysisResult) Category() bool { return r.DetectResult.Category }
