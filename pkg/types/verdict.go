// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Verdict is the classifier's decision about a message. Category true means
// phishing or spam.
type Verdict struct {
	BrandImpersonated string `json:"brand_impersonated" yaml:"brand_impersonated"`
	URL               string `json:"URL" yaml:"URL"`
	Rationales        string `json:"rationales" yaml:"rationales"`
	BriefReason       string `json:"brief_reason" yaml:"brief_reason"`
	Category          bool   `json:"category" yaml:"category"`
	Advice            string `json:"advice" yaml:"advice"`

	// Fallback marks a verdict synthesized because the classifier failed.
	Fallback bool `json:"fallback,omitempty" yaml:"fallback,omitempty"`
}

// FallbackVerdict is the fail-closed verdict used when the classifier cannot
// be trusted to answer.
func FallbackVerdict() Verdict {
	return Verdict{
		Category:    true,
		BriefReason: "Analysis failed",
		Advice:      "Exercise caution",
		Fallback:    true,
	}
}

// UnmarshalJSON decodes the classifier's answer. Category must be present.
// Text fields accept strings, lists, or null.
func (v *Verdict) UnmarshalJSON(data []byte) error {
	var raw struct {
		BrandImpersonated text  `json:"brand_impersonated"`
		URL               text  `json:"URL"`
		Rationales        text  `json:"rationales"`
		Rationale         text  `json:"rationale"`
		BriefReason       text  `json:"brief_reason"`
		Category          *Bool `json:"category"`
		Advice            text  `json:"advice"`
		Fallback          bool  `json:"fallback"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Category == nil {
		return fmt.Errorf("verdict has no category")
	}
	rationales := string(raw.Rationales)
	if rationales == "" {
		rationales = string(raw.Rationale)
	}
	*v = Verdict{
		BrandImpersonated: string(raw.BrandImpersonated),
		URL:               string(raw.URL),
		Rationales:        rationales,
		BriefReason:       string(raw.BriefReason),
		Category:          bool(*raw.Category),
		Advice:            string(raw.Advice),
		Fallback:          raw.Fallback,
	}
	return nil
}

// text decodes any JSON scalar or list of scalars into a string.
type text string

func (t *text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*t = text(flatten(v))
	return nil
}

func flatten(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []any:
		parts := make([]string, 0, len(x))
		for _, e := range x {
			if s := flatten(e); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(x)
	}
}
