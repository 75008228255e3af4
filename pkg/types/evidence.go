// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Field is one piece of optional, failable evidence. A nil *Field means the
// fetcher was not enabled; a Field with Failed set means it ran and failed.
type Field struct {
	Value  string
	Failed bool
}

// Value returns an available field holding s.
func Value(s string) *Field { return &Field{Value: s} }

// Failed returns a field holding the failure sentinel.
func Failed() *Field { return &Field{Failed: true} }

// Available reports whether f was requested and holds data.
func (f *Field) Available() bool { return f != nil && !f.Failed }

// IsFailed reports whether f was requested and failed.
func (f *Field) IsFailed() bool { return f != nil && f.Failed }

// Sentinel implements the serialization hook used by the report package.
func (f Field) Sentinel() (string, bool) {
	if f.Failed {
		return FailedSentinel, true
	}
	return "", false
}

// MarshalText writes the value or the failure sentinel.
func (f Field) MarshalText() ([]byte, error) {
	if f.Failed {
		return []byte(FailedSentinel), nil
	}
	return []byte(f.Value), nil
}

// UnmarshalText reverses MarshalText. The legacy "non" marker also decodes
// as a failure.
func (f *Field) UnmarshalText(text []byte) error {
	s := string(text)
	if s == FailedSentinel || s == "non" {
		*f = Field{Failed: true}
		return nil
	}
	*f = Field{Value: s}
	return nil
}

// String returns the value, or the sentinel for a failed field.
func (f *Field) String() string {
	if f == nil {
		return ""
	}
	b, _ := f.MarshalText()
	return string(b)
}

// RedirectHop is one response in a redirect history.
type RedirectHop struct {
	URL    string `json:"url" yaml:"url"`
	Status int    `json:"status" yaml:"status"`
}

// RedirectChain is the ordered redirect history of a URL, ending with the
// final response. Failed marks a chain that could not be traced.
type RedirectChain struct {
	Hops   []RedirectHop
	Failed bool
}

// Available reports whether c was requested and traced.
func (c *RedirectChain) Available() bool { return c != nil && !c.Failed }

// Sentinel implements the serialization hook used by the report package.
func (c RedirectChain) Sentinel() (string, bool) {
	if c.Failed {
		return FailedSentinel, true
	}
	return "", false
}

// MarshalJSON writes the hop list or the failure sentinel.
func (c RedirectChain) MarshalJSON() ([]byte, error) {
	if c.Failed {
		return json.Marshal(FailedSentinel)
	}
	hops := c.Hops
	if hops == nil {
		hops = []RedirectHop{}
	}
	return json.Marshal(hops)
}

// UnmarshalJSON reverses MarshalJSON.
func (c *RedirectChain) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*c = RedirectChain{Failed: true}
		return nil
	}
	var hops []RedirectHop
	if err := json.Unmarshal(data, &hops); err != nil {
		return err
	}
	*c = RedirectChain{Hops: hops}
	return nil
}

// String renders the chain as "url (status) -> url (status)".
func (c *RedirectChain) String() string {
	if c == nil {
		return ""
	}
	if c.Failed {
		return FailedSentinel
	}
	parts := make([]string, len(c.Hops))
	for i, h := range c.Hops {
		parts[i] = fmt.Sprintf("%s (%d)", h.URL, h.Status)
	}
	return strings.Join(parts, " -> ")
}

// Final returns the last hop of the chain.
func (c *RedirectChain) Final() (RedirectHop, bool) {
	if !c.Available() || len(c.Hops) == 0 {
		return RedirectHop{}, false
	}
	return c.Hops[len(c.Hops)-1], true
}

// BrandDomains is the search result for one brand name.
type BrandDomains struct {
	BrandName string   `json:"brand_name" yaml:"brand_name"`
	Domains   []string `json:"brand_domain" yaml:"brand_domain"`
}

// BrandSearchResult maps a brand's extraction index to its search result.
type BrandSearchResult map[int]BrandDomains

// Indices returns the brand indices in ascending order.
func (r BrandSearchResult) Indices() []int {
	idx := make([]int, 0, len(r))
	for i := range r {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	return idx
}

// URLEvidence is the evidence gathered for one extracted URL. Only URL and
// FinalURL are always set; every other field is nil unless its fetcher was
// enabled.
type URLEvidence struct {
	URL string `json:"URL" yaml:"URL"`

	// NormalizedURL is URL with a scheme guaranteed.
	NormalizedURL string `json:"-" yaml:"-"`

	// ResolvedURL is the destination reported by the existence check; empty
	// when the check failed.
	ResolvedURL string `json:"-" yaml:"-"`

	// FinalURL is ResolvedURL, or NormalizedURL when resolution failed.
	FinalURL string `json:"final_URL" yaml:"final_URL"`

	RedirectChain *RedirectChain `json:"redirect_chain,omitempty" yaml:"redirect_chain,omitempty"`

	Content *Field `json:"URL_content,omitempty" yaml:"URL_content,omitempty"`
	Summary *Field `json:"html_summary,omitempty" yaml:"html_summary,omitempty"`

	DomainInfo *Field `json:"domain_info,omitempty" yaml:"domain_info,omitempty"`

	ScreenshotPath        *Field `json:"screenshot_path,omitempty" yaml:"screenshot_path,omitempty"`
	ScreenshotDescription *Field `json:"Image_content,omitempty" yaml:"Image_content,omitempty"`

	BrandSearch        BrandSearchResult `json:"brand_search,omitempty" yaml:"brand_search,omitempty"`
	BrandDomainMatches map[int][]string  `json:"brand_domain_matches,omitempty" yaml:"brand_domain_matches,omitempty"`
}

// Target returns the URL evidence fetchers should inspect.
func (e *URLEvidence) Target() string {
	if e.ResolvedURL != "" {
		return e.ResolvedURL
	}
	return e.NormalizedURL
}

// EvidenceMap holds URL evidence keyed by extraction index. An empty map
// serializes as the "none" sentinel.
type EvidenceMap map[int]*URLEvidence

// Indices returns the URL indices in ascending order.
func (m EvidenceMap) Indices() []int {
	idx := make([]int, 0, len(m))
	for i := range m {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	return idx
}

// Sentinel implements the serialization hook used by the report package.
func (m EvidenceMap) Sentinel() (string, bool) {
	if len(m) == 0 {
		return NoneSentinel, true
	}
	return "", false
}
