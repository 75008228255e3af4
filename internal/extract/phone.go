// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"regexp"

	"github.com/nyaruka/phonenumbers"
)

// phoneCandidate matches digit runs that may be phone numbers, allowing the
// usual separators and a leading plus.
var phoneCandidate = regexp.MustCompile(`\+?\(?\d[\d\s().-]{5,}\d`)

// PhoneNumbers returns the valid phone numbers in message, in E.164 form and
// order of first appearance. Numbers without a country code are read in
// region (e.g. "US").
func PhoneNumbers(message, region string) []string {
	if region == "" {
		region = "US"
	}

	var out []string
	seen := make(map[string]bool)
	for _, candidate := range phoneCandidate.FindAllString(message, -1) {
		num, err := phonenumbers.Parse(candidate, region)
		if err != nil || !phonenumbers.IsValidNumber(num) {
			continue
		}
		e164 := phonenumbers.Format(num, phonenumbers.E164)
		if seen[e164] {
			continue
		}
		seen[e164] = true
		out = append(out, e164)
	}
	return out
}
