// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/smishguard/pkg/types"
)

var fixedTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestMain(m *testing.M) {
	now = func() time.Time { return fixedTime }
	os.Exit(m.Run())
}

func dikSiResult() *types.AnalysisResult {
	seed := types.SeedRecord{HasURL: true, URLs: types.List{"https://dik.si/postal"}, HasBrand: true, Brands: types.List{"USPS"}}
	ev := types.EvidenceMap{0: {
		URL:      "https://dik.si/postal",
		FinalURL: "https://usps-redelivery.top/",
		RedirectChain: &types.RedirectChain{Hops: []types.RedirectHop{
			{URL: "https://dik.si/postal", Status: 301},
			{URL: "https://usps-redelivery.top/", Status: 200},
		}},
		Content:               types.Value("Title: USPS & Co <track>"),
		Summary:               types.Value("Redelivery page."),
		DomainInfo:            types.Failed(),
		ScreenshotPath:        types.Failed(),
		ScreenshotDescription: types.Failed(),
		BrandSearch:           types.BrandSearchResult{0: {BrandName: "USPS", Domains: []string{"https://www.usps.com/"}}},
		BrandDomainMatches:    map[int][]string{0: {}},
	}}
	return Assemble(Input{
		SMS:         "[US POSTAL] https://dik.si/postal",
		Seed:        seed,
		Evidence:    ev,
		Verdict:     types.Verdict{Category: true, BriefReason: "Impersonates USPS"},
		Explanation: "This looks like a scam.",
		Prompt:      "prompt",
		StartedAt:   fixedTime.Add(-time.Second),
	})
}

func TestAssemble(t *testing.T) {
	r := dikSiResult()
	assert.Len(t, r.RunID, 36)
	assert.Equal(t, fixedTime, r.FinishedAt)
	assert.Equal(t, fixedTime.Add(-time.Second), r.StartedAt)
	assert.True(t, r.IsURL)
	assert.True(t, r.Category())
	assert.NotEqual(t, r.RunID, dikSiResult().RunID)
}

func TestAssembleNoURLDropsEvidence(t *testing.T) {
	r := Assemble(Input{SMS: "Thanks for lunch yesterday!", Evidence: types.EvidenceMap{}})
	assert.Nil(t, r.URLs)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, r, FormatJSON))
	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "none", doc["URLs"])
	assert.Equal(t, "none", doc["brands"])
	assert.Equal(t, false, doc["is_URL"])
	assert.NotContains(t, doc, "phone_numbers")
}

func TestEncodeJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, dikSiResult(), FormatJSON))
	out := buf.String()

	assert.Contains(t, out, "\n  \"run_id\": ", "two-space indent")
	assert.Contains(t, out, "USPS & Co <track>", "HTML is not escaped")
	assert.Contains(t, out, `"started_at": "2026-03-01T11:59:59Z"`)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	urls := doc["URLs"].(map[string]any)
	u0 := urls["0"].(map[string]any)
	assert.Equal(t, "unavailable", u0["domain_info"])
	assert.Equal(t, "unavailable", u0["screenshot_path"])
	assert.Equal(t, "Redelivery page.", u0["html_summary"])
	chain := u0["redirect_chain"].([]any)
	require.Len(t, chain, 2)
	assert.Equal(t, map[string]any{"url": "https://dik.si/postal", "status": float64(301)}, chain[0])
	assert.Equal(t, []any{}, u0["brand_domain_matches"].(map[string]any)["0"])
	assert.Equal(t, "USPS", u0["brand_search"].(map[string]any)["0"].(map[string]any)["brand_name"])
	assert.NotContains(t, u0, "NormalizedURL")

	// Field order follows the struct.
	assert.Less(t, strings.Index(out, `"run_id"`), strings.Index(out, `"SMS"`))
	assert.Less(t, strings.Index(out, `"URL"`), strings.Index(out, `"final_URL"`))
}

func TestEncodeYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, dikSiResult(), FormatYAML))

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "[US POSTAL] https://dik.si/postal", doc["SMS"])
	urls := doc["URLs"].(map[string]any)
	require.Contains(t, urls, "0")
	assert.Equal(t, "unavailable", urls["0"].(map[string]any)["domain_info"])
}

func TestEncodeUnknownFormat(t *testing.T) {
	assert.Error(t, Encode(&bytes.Buffer{}, 1, Format("xml")))
}

func TestNormalizeNumericKeyOrder(t *testing.T) {
	m := types.EvidenceMap{}
	for i := 0; i < 12; i++ {
		m[i] = &types.URLEvidence{URL: fmt.Sprintf("u%d.example", i)}
	}
	tree, ok := Normalize(m).(OrderedMap)
	require.True(t, ok)
	assert.Equal(t, []string{"0", "1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11"}, tree.Keys())
}

func TestNormalizeStructuralConversions(t *testing.T) {
	type record struct {
		Headers http.Header         `json:"headers"`
		Seen    map[string]struct{} `json:"seen"`
		When    time.Time           `json:"when"`
		Tags    []string            `json:"tags"`
		Skip    string              `json:"-"`
		Empty   string              `json:"empty,omitempty"`
		Plain   int
		hidden  bool
	}
	h := http.Header{}
	h.Set("X-B", "2")
	h.Add("Content-Type", "text/html")
	h.Add("Content-Type", "charset=utf-8")

	tree := Normalize(record{
		Headers: h,
		Seen:    map[string]struct{}{"b": {}, "a": {}},
		When:    time.Date(2024, 5, 6, 7, 8, 9, 0, time.FixedZone("X", 3600)),
		Skip:    "x",
		Plain:   7,
		hidden:  true,
	}).(OrderedMap)

	assert.Equal(t, []string{"headers", "seen", "when", "tags", "Plain"}, tree.Keys())
	headers, _ := tree.Get("headers")
	assert.Equal(t, OrderedMap{{Key: "Content-Type", Value: "text/html, charset=utf-8"}, {Key: "X-B", Value: "2"}}, headers)
	seen, _ := tree.Get("seen")
	assert.Equal(t, []any{"a", "b"}, seen)
	when, _ := tree.Get("when")
	assert.Equal(t, "2024-05-06T07:08:09+01:00", when)
	tags, _ := tree.Get("tags")
	assert.Equal(t, []any{}, tags)
	plain, _ := tree.Get("Plain")
	assert.Equal(t, int64(7), plain)
}

func TestNormalizeSentinels(t *testing.T) {
	assert.Equal(t, "none", Normalize(types.List(nil)))
	assert.Equal(t, []any{"a"}, Normalize(types.List{"a"}))
	assert.Equal(t, "unavailable", Normalize(types.Failed()))
	assert.Equal(t, "v", Normalize(types.Value("v")))
	assert.Equal(t, "unavailable", Normalize(&types.RedirectChain{Failed: true}))
	assert.Equal(t, "none", Normalize(types.EvidenceMap{}))
	assert.Nil(t, Normalize((*types.Field)(nil)))
}

func TestFileWriters(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "output")
	r := dikSiResult()

	for _, w := range []*FileWriter{JSONWriter(dir), YAMLWriter(dir)} {
		require.NoError(t, w.Save(context.Background(), r))
		data, err := os.ReadFile(w.Path())
		require.NoError(t, err)
		assert.Contains(t, string(data), r.RunID)
	}
	assert.Equal(t, filepath.Join(dir, "analysis_output.json"), JSONWriter(dir).Path())
	assert.Equal(t, filepath.Join(dir, "analysis_output.yaml"), YAMLWriter(dir).Path())
}

type failingPersister struct{ err error }

func (f failingPersister) Save(context.Context, *types.AnalysisResult) error { return f.err }

func TestMultiJoinsErrors(t *testing.T) {
	dir := t.TempDir()
	errA := errors.New("a failed")
	m := Multi{failingPersister{errA}, JSONWriter(dir), nil}

	err := m.Save(context.Background(), dikSiResult())
	require.Error(t, err)
	assert.ErrorIs(t, err, errA)
	_, statErr := os.Stat(filepath.Join(dir, JSONFile))
	assert.NoError(t, statErr, "later persisters still run")
}
