// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Serialized placeholders. NoneSentinel marks a list the classifier reported
// as absent; FailedSentinel marks evidence that was requested but could not
// be collected.
const (
	NoneSentinel   = "none"
	FailedSentinel = "unavailable"
)

// List is an ordered list of extracted strings. A nil List is the "none"
// sentinel; it never serializes as an empty array.
type List []string

// IsNone reports whether the list holds the "none" sentinel.
func (l List) IsNone() bool { return len(l) == 0 }

// Sentinel implements the serialization hook used by the report package.
func (l List) Sentinel() (string, bool) {
	if l.IsNone() {
		return NoneSentinel, true
	}
	return "", false
}

// MarshalJSON writes "none" for an empty list.
func (l List) MarshalJSON() ([]byte, error) {
	if l.IsNone() {
		return json.Marshal(NoneSentinel)
	}
	return json.Marshal([]string(l))
}

// UnmarshalJSON accepts a list of strings, a single string, null, or any of
// the absent markers the classifier uses ("none", "non", "").
func (l *List) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if isAbsentMarker(s) {
			*l = nil
		} else {
			*l = List{strings.TrimSpace(s)}
		}
		return nil
	}

	var items []any
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("expected list or %q, got %s", NoneSentinel, truncate(string(data), 40))
	}
	var out List
	for _, it := range items {
		str, ok := it.(string)
		if !ok {
			str = fmt.Sprint(it)
		}
		str = strings.TrimSpace(str)
		if isAbsentMarker(str) {
			continue
		}
		out = append(out, str)
	}
	*l = out
	return nil
}

func isAbsentMarker(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "non", "null", "n/a":
		return true
	}
	return false
}

// SeedRecord is the structured extraction of a message: which URLs and which
// brand names it mentions, in order of appearance.
type SeedRecord struct {
	HasURL   bool `json:"is_URL" yaml:"is_URL"`
	URLs     List `json:"URLs" yaml:"URLs"`
	HasBrand bool `json:"is_brand" yaml:"is_brand"`
	Brands   List `json:"brands" yaml:"brands"`
}

// UnmarshalJSON decodes the classifier's answer, tolerating quoted booleans.
func (s *SeedRecord) UnmarshalJSON(data []byte) error {
	var raw struct {
		HasURL   Bool `json:"is_URL"`
		URLs     List `json:"URLs"`
		HasBrand Bool `json:"is_brand"`
		Brands   List `json:"brands"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = SeedRecord{
		HasURL:   bool(raw.HasURL),
		URLs:     raw.URLs,
		HasBrand: bool(raw.HasBrand),
		Brands:   raw.Brands,
	}
	return nil
}

// Normalize enforces the record invariants: a false flag always pairs with
// the "none" list, and an empty list always pairs with a false flag.
func (s SeedRecord) Normalize() SeedRecord {
	if !s.HasURL || s.URLs.IsNone() {
		s.HasURL = false
		s.URLs = nil
	}
	if !s.HasBrand || s.Brands.IsNone() {
		s.HasBrand = false
		s.Brands = nil
	}
	return s
}

// Bool decodes a JSON boolean that may arrive as a string ("True", "false").
type Bool bool

// UnmarshalJSON implements lenient boolean parsing.
func (b *Bool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	var v bool
	if err := json.Unmarshal(data, &v); err == nil {
		*b = Bool(v)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("expected boolean, got %s", truncate(string(data), 40))
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "1":
		*b = true
	case "false", "no", "0", "", "none", "non":
		*b = false
	default:
		return fmt.Errorf("expected boolean, got %q", s)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
