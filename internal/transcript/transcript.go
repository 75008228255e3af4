// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package transcript compiles a message and its gathered evidence into the
// text block the verdict classifier reads.
package transcript

import (
	"fmt"
	"strings"

	"github.com/pdiddy/smishguard/pkg/types"
)

// NoURLLine is appended when the message carries no analysed URL.
const NoURLLine = "- No URL in the SMS.\n"

// Input is everything the compiler renders.
type Input struct {
	SMS          string
	Seed         types.SeedRecord
	Evidence     types.EvidenceMap
	PhoneNumbers []string
}

// Compile renders in deterministically: the same input always yields the
// same bytes. Evidence fields that were not requested or that failed are
// skipped, never rendered as empty values.
func Compile(in Input) string {
	var b strings.Builder
	fmt.Fprintf(&b, "- SMS to be analyzed: %s\n", in.SMS)
	if len(in.PhoneNumbers) > 0 {
		fmt.Fprintf(&b, "- Phone numbers in the SMS: %s\n", strings.Join(in.PhoneNumbers, ", "))
	}

	if !in.Seed.HasURL || len(in.Evidence) == 0 {
		b.WriteString(NoURLLine)
		return b.String()
	}

	multi := len(in.Evidence) > 1
	if multi {
		fmt.Fprintf(&b, "- There are %d URLs in the SMS.\n", len(in.Evidence))
	}
	for _, i := range in.Evidence.Indices() {
		ev := in.Evidence[i]
		if multi {
			fmt.Fprintf(&b, "- URL %d: %s\n", i, ev.URL)
		} else {
			fmt.Fprintf(&b, "- URL: %s\n", ev.URL)
		}
		writeEvidence(&b, ev)
		if len(ev.BrandSearch) > 0 && in.Seed.HasBrand {
			writeBrands(&b, in.Seed.Brands, ev.BrandSearch)
		}
	}
	return b.String()
}

func writeEvidence(b *strings.Builder, ev *types.URLEvidence) {
	if ev.RedirectChain.Available() {
		fmt.Fprintf(b, "- Redirect Chain of %s: %s\n", ev.URL, ev.RedirectChain.String())
	}
	if ev.Summary.Available() {
		fmt.Fprintf(b, "- Html Content Summary of %s: %s\n", ev.URL, ev.Summary.Value)
	}
	if ev.DomainInfo.Available() {
		fmt.Fprintf(b, "- Domain Information of %s: %s\n", ev.URL, ev.DomainInfo.Value)
	}
	if ev.ScreenshotDescription.Available() {
		fmt.Fprintf(b, "- Screenshot Description %s: %s\n", ev.URL, ev.ScreenshotDescription.Value)
	}
}

func writeBrands(b *strings.Builder, brands types.List, result types.BrandSearchResult) {
	if len(brands) > 1 {
		fmt.Fprintf(b, "- There are %d brands referred in the SMS.\n", len(brands))
	}
	for i, brand := range brands {
		fmt.Fprintf(b, "- Brand %d: %s\n", i, brand)
		fmt.Fprintf(b, "- The top five results from a Google search of the brand name: [%s]\n",
			strings.Join(result[i].Domains, ", "))
	}
}
