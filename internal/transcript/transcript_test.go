// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package transcript

import (
	"strings"
	"testing"

	"github.com/pdiddy/smishguard/pkg/types"
)

func TestCompileNoURL(t *testing.T) {
	got := Compile(Input{
		SMS:  "Thanks for lunch yesterday!",
		Seed: types.SeedRecord{},
	})
	want := "- SMS to be analyzed: Thanks for lunch yesterday!\n" + NoURLLine
	if got != want {
		t.Errorf("Compile() =\n%q\nwant\n%q", got, want)
	}
}

func TestCompileNoURLIgnoresStaleEvidence(t *testing.T) {
	got := Compile(Input{
		SMS:      "hi",
		Seed:     types.SeedRecord{HasURL: false},
		Evidence: types.EvidenceMap{0: {URL: "x.com"}},
	})
	if !strings.HasSuffix(got, NoURLLine) || strings.Contains(got, "x.com") {
		t.Errorf("Compile() = %q, want only the no-URL line", got)
	}
}

func TestCompileSingleURL(t *testing.T) {
	ev := types.EvidenceMap{
		0: {
			URL:      "https://dik.si/postal",
			FinalURL: "https://usps-redelivery.top/",
			RedirectChain: &types.RedirectChain{Hops: []types.RedirectHop{
				{URL: "https://dik.si/postal", Status: 301},
				{URL: "https://usps-redelivery.top/", Status: 200},
			}},
			Content:               types.Value("Title: USPS"),
			Summary:               types.Value("A USPS redelivery page asking for card details."),
			DomainInfo:            types.Value("Domain Name: DIK.SI"),
			ScreenshotPath:        types.Value("output/screenshot_0.png"),
			ScreenshotDescription: types.Value("A page styled like USPS."),
			BrandSearch: types.BrandSearchResult{
				0: {BrandName: "USPS", Domains: []string{"https://www.usps.com/", "https://tools.usps.com/"}},
			},
		},
	}
	in := Input{
		SMS:      "[US POSTAL] Your package is on hold. https://dik.si/postal",
		Seed:     types.SeedRecord{HasURL: true, URLs: types.List{"https://dik.si/postal"}, HasBrand: true, Brands: types.List{"USPS"}},
		Evidence: ev,
	}

	want := "- SMS to be analyzed: [US POSTAL] Your package is on hold. https://dik.si/postal\n" +
		"- URL: https://dik.si/postal\n" +
		"- Redirect Chain of https://dik.si/postal: https://dik.si/postal (301) -> https://usps-redelivery.top/ (200)\n" +
		"- Html Content Summary of https://dik.si/postal: A USPS redelivery page asking for card details.\n" +
		"- Domain Information of https://dik.si/postal: Domain Name: DIK.SI\n" +
		"- Screenshot Description https://dik.si/postal: A page styled like USPS.\n" +
		"- Brand 0: USPS\n" +
		"- The top five results from a Google search of the brand name: [https://www.usps.com/, https://tools.usps.com/]\n"

	got := Compile(in)
	if got != want {
		t.Errorf("Compile() =\n%s\nwant\n%s", got, want)
	}
	if strings.Contains(got, "- URL 0:") {
		t.Error("single URL must not carry an index")
	}
}

func TestCompileSkipsFailedAndMissingFields(t *testing.T) {
	ev := types.EvidenceMap{
		0: {
			URL:                   "bad.example",
			FinalURL:              "http://bad.example",
			RedirectChain:         &types.RedirectChain{Failed: true},
			Summary:               types.Value("There is no information known about the URL."),
			DomainInfo:            types.Failed(),
			ScreenshotDescription: types.Failed(),
		},
	}
	got := Compile(Input{
		SMS:      "m",
		Seed:     types.SeedRecord{HasURL: true, URLs: types.List{"bad.example"}},
		Evidence: ev,
	})
	for _, absent := range []string{"Redirect Chain", "Domain Information", "Screenshot Description", "unavailable", "none", "Brand"} {
		if strings.Contains(got, absent) {
			t.Errorf("transcript contains %q:\n%s", absent, got)
		}
	}
	if !strings.Contains(got, "- Html Content Summary of bad.example: There is no information known about the URL.\n") {
		t.Errorf("summary line missing:\n%s", got)
	}
}

func TestCompileMultipleURLsAndBrands(t *testing.T) {
	search := types.BrandSearchResult{
		0: {BrandName: "Amazon", Domains: []string{"https://www.amazon.com/"}},
		1: {BrandName: "Visa", Domains: []string{}},
	}
	ev := types.EvidenceMap{}
	for i, u := range []string{"a.example", "b.example", "c.example"} {
		ev[i] = &types.URLEvidence{URL: u, FinalURL: "http://" + u, BrandSearch: search}
	}
	in := Input{
		SMS:          "msg",
		Seed:         types.SeedRecord{HasURL: true, URLs: types.List{"a.example", "b.example", "c.example"}, HasBrand: true, Brands: types.List{"Amazon", "Visa"}},
		Evidence:     ev,
		PhoneNumbers: []string{"+16502530000", "+18002758777"},
	}

	got := Compile(in)

	wantPrefix := "- SMS to be analyzed: msg\n" +
		"- Phone numbers in the SMS: +16502530000, +18002758777\n" +
		"- There are 3 URLs in the SMS.\n" +
		"- URL 0: a.example\n" +
		"- There are 2 brands referred in the SMS.\n" +
		"- Brand 0: Amazon\n" +
		"- The top five results from a Google search of the brand name: [https://www.amazon.com/]\n" +
		"- Brand 1: Visa\n" +
		"- The top five results from a Google search of the brand name: []\n" +
		"- URL 1: b.example\n"
	if !strings.HasPrefix(got, wantPrefix) {
		t.Errorf("Compile() =\n%s\nwant prefix\n%s", got, wantPrefix)
	}

	i0 := strings.Index(got, "- URL 0:")
	i1 := strings.Index(got, "- URL 1:")
	i2 := strings.Index(got, "- URL 2:")
	if !(i0 < i1 && i1 < i2) {
		t.Errorf("URL sections out of order: %d %d %d", i0, i1, i2)
	}
}

func TestCompileBrandSearchNeedsBrandFlag(t *testing.T) {
	ev := types.EvidenceMap{0: {
		URL:         "a.example",
		BrandSearch: types.BrandSearchResult{0: {BrandName: "X", Domains: []string{"https://x.com"}}},
	}}
	got := Compile(Input{SMS: "m", Seed: types.SeedRecord{HasURL: true, URLs: types.List{"a.example"}}, Evidence: ev})
	if strings.Contains(got, "Brand") {
		t.Errorf("brand lines rendered without brands in the seed:\n%s", got)
	}
}

func TestCompileDeterministic(t *testing.T) {
	ev := types.EvidenceMap{}
	urls := types.List{}
	for i := 0; i < 12; i++ {
		u := strings.Repeat("x", i+1) + ".example"
		urls = append(urls, u)
		ev[i] = &types.URLEvidence{URL: u, DomainInfo: types.Value("record " + u)}
	}
	in := Input{SMS: "many", Seed: types.SeedRecord{HasURL: true, URLs: urls}, Evidence: ev}

	first := Compile(in)
	for n := 0; n < 20; n++ {
		if got := Compile(in); got != first {
			t.Fatalf("run %d differs:\n%s\nvs\n%s", n, got, first)
		}
	}
	if strings.Index(first, "- URL 2:") > strings.Index(first, "- URL 10:") {
		t.Error("indices must sort numerically")
	}
}
