// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedRecordUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want SeedRecord
	}{
		{
			name: "urls and brands",
			in:   `{"is_URL": true, "URLs": ["https://dik.si/postal"], "is_brand": true, "brands": ["US POSTAL"]}`,
			want: SeedRecord{HasURL: true, URLs: List{"https://dik.si/postal"}, HasBrand: true, Brands: List{"US POSTAL"}},
		},
		{
			name: "non marker",
			in:   `{"is_URL": false, "URLs": "non", "is_brand": false, "brands": "non"}`,
			want: SeedRecord{},
		},
		{
			name: "none marker and null",
			in:   `{"is_URL": false, "URLs": "none", "is_brand": false, "brands": null}`,
			want: SeedRecord{},
		},
		{
			name: "quoted booleans",
			in:   `{"is_URL": "True", "URLs": ["bit.ly/x"], "is_brand": "false", "brands": "non"}`,
			want: SeedRecord{HasURL: true, URLs: List{"bit.ly/x"}},
		},
		{
			name: "single string url",
			in:   `{"is_URL": true, "URLs": "bit.ly/mintapn", "is_brand": false, "brands": []}`,
			want: SeedRecord{HasURL: true, URLs: List{"bit.ly/mintapn"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got SeedRecord
			require.NoError(t, json.Unmarshal([]byte(tt.in), &got))
			assert.Equal(t, tt.want.HasURL, got.HasURL)
			assert.Equal(t, tt.want.HasBrand, got.HasBrand)
			assert.Equal(t, []string(tt.want.URLs), []string(got.URLs))
			assert.Equal(t, []string(tt.want.Brands), []string(got.Brands))
		})
	}
}

func TestSeedRecordUnmarshalRejectsGarbage(t *testing.T) {
	var got SeedRecord
	assert.Error(t, json.Unmarshal([]byte(`{"is_URL": "maybe"}`), &got))
	assert.Error(t, json.Unmarshal([]byte(`{"URLs": 42}`), &got))
}

func TestSeedRecordNormalize(t *testing.T) {
	got := SeedRecord{HasURL: false, URLs: List{"http://x"}, HasBrand: true, Brands: List{}}.Normalize()
	assert.False(t, got.HasURL)
	assert.True(t, got.URLs.IsNone())
	assert.False(t, got.HasBrand)
	assert.True(t, got.Brands.IsNone())

	kept := SeedRecord{HasURL: true, URLs: List{"a", "b"}}.Normalize()
	assert.True(t, kept.HasURL)
	assert.Equal(t, List{"a", "b"}, kept.URLs)
}

func TestListMarshalNone(t *testing.T) {
	b, err := json.Marshal(SeedRecord{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"is_URL": false, "URLs": "none", "is_brand": false, "brands": "none"}`, string(b))
}

func TestFieldStates(t *testing.T) {
	var notRequested *Field
	assert.False(t, notRequested.Available())
	assert.False(t, notRequested.IsFailed())
	assert.Equal(t, "", notRequested.String())

	assert.True(t, Value("whois text").Available())
	assert.True(t, Failed().IsFailed())
	assert.Equal(t, FailedSentinel, Failed().String())

	b, err := json.Marshal(struct {
		A *Field `json:"a,omitempty"`
		B *Field `json:"b,omitempty"`
		C *Field `json:"c,omitempty"`
	}{A: Value("x"), B: Failed()})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a": "x", "b": "unavailable"}`, string(b))
}

func TestRedirectChain(t *testing.T) {
	c := &RedirectChain{Hops: []RedirectHop{
		{URL: "https://dik.si/postal", Status: 301},
		{URL: "https://usps.example/track", Status: 200},
	}}
	assert.Equal(t, "https://dik.si/postal (301) -> https://usps.example/track (200)", c.String())
	final, ok := c.Final()
	require.True(t, ok)
	assert.Equal(t, 200, final.Status)

	failed := &RedirectChain{Failed: true}
	assert.False(t, failed.Available())
	b, err := json.Marshal(failed)
	require.NoError(t, err)
	assert.Equal(t, `"unavailable"`, string(b))

	var back RedirectChain
	require.NoError(t, json.Unmarshal(b, &back))
	assert.True(t, back.Failed)
}

func TestVerdictUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Verdict
		wantErr bool
	}{
		{
			name: "bool category",
			in:   `{"brand_impersonated": "USPS", "URL": "https://dik.si/postal", "rationales": "r", "brief_reason": "b", "category": true, "advice": "a"}`,
			want: Verdict{BrandImpersonated: "USPS", URL: "https://dik.si/postal", Rationales: "r", BriefReason: "b", Category: true, Advice: "a"},
		},
		{
			name: "string category and list url",
			in:   `{"brand_impersonated": null, "URL": ["a", "b"], "category": "False"}`,
			want: Verdict{URL: "a, b"},
		},
		{
			name:    "missing category",
			in:      `{"brief_reason": "b"}`,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Verdict
			err := json.Unmarshal([]byte(tt.in), &got)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFallbackVerdict(t *testing.T) {
	fb := FallbackVerdict()
	assert.True(t, fb.Category)
	assert.True(t, fb.Fallback)

	genuine := Verdict{Category: true, BriefReason: "Analysis failed", Advice: "Exercise caution"}
	assert.NotEqual(t, genuine, fb)
}

func TestDefaultDetectorConfig(t *testing.T) {
	cfg := DefaultDetectorConfig()
	require.NoError(t, cfg.Validate())
	assert.True(t, cfg.Evidence.RedirectChain)
	assert.True(t, cfg.Evidence.BrandSearch)
	assert.True(t, cfg.Evidence.Screenshot)
	assert.True(t, cfg.Evidence.HTMLContent)
	assert.True(t, cfg.Evidence.DomainInfo)
	assert.False(t, cfg.Evidence.PhoneNumbers)
	assert.Equal(t, "output", cfg.OutputDir)
	assert.Equal(t, DefaultOpenAIModel, cfg.AI.ModelOrDefault())
	assert.Equal(t, DefaultOpenAIModel, cfg.AI.VisionModelOrDefault())

	gemini := AIConfig{Provider: ProviderGemini}
	assert.Equal(t, DefaultGeminiModel, gemini.ModelOrDefault())
	assert.Equal(t, DefaultGeminiModel, gemini.VisionModelOrDefault())
	gemini.Model = "gemini-1.5-pro"
	assert.Equal(t, "gemini-1.5-pro", gemini.VisionModelOrDefault())

	cfg.AI.Provider = "claude"
	assert.ErrorContains(t, cfg.Validate(), "unknown AI provider")

	cfg = DefaultDetectorConfig()
	cfg.CaptureBackend = CaptureCommand
	cfg.CaptureCommand = nil
	assert.ErrorContains(t, cfg.Validate(), "capture command")
}

func TestEvidenceMapIndicesOrdered(t *testing.T) {
	m := EvidenceMap{10: {}, 2: {}, 0: {}, 1: {}}
	assert.Equal(t, []int{0, 1, 2, 10}, m.Indices())

	_, none := EvidenceMap{}.Sentinel()
	assert.True(t, none)
}
