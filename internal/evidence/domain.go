// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package evidence

import (
	"context"
	"fmt"
	"math"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/likexian/whois"
	"golang.org/x/net/idna"
	"golang.org/x/net/publicsuffix"
)

// Host returns the lower-cased ASCII host of rawURL. A missing scheme is
// tolerated.
func Host(rawURL string) (string, error) {
	u, err := url.Parse(NormalizeURL(strings.TrimSpace(rawURL)))
	if err != nil {
		return "", fmt.Errorf("parsing %q: %w", rawURL, err)
	}
	host := strings.TrimSuffix(u.Hostname(), ".")
	if host == "" {
		return "", fmt.Errorf("no host in %q", rawURL)
	}
	if net.ParseIP(host) != nil {
		return host, nil
	}
	ascii, err := idna.Lookup.ToASCII(host)
	if err != nil {
		return "", fmt.Errorf("converting host %q: %w", host, err)
	}
	return strings.ToLower(ascii), nil
}

// RegistrableDomain returns the registrable domain (eTLD+1) of rawURL, e.g.
// "dik.si" for "https://www.dik.si/postal". IP hosts are returned unchanged.
func RegistrableDomain(rawURL string) (string, error) {
	host, err := Host(rawURL)
	if err != nil {
		return "", err
	}
	if net.ParseIP(host) != nil {
		return host, nil
	}
	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return "", fmt.Errorf("registrable domain of %q: %w", host, err)
	}
	return domain, nil
}

// Registry looks up the registration record of a bare domain.
type Registry interface {
	Lookup(ctx context.Context, domain string) (string, error)
}

// whoisBackoff is the base delay between whois attempts. Tests override it.
var whoisBackoff = time.Second

// WhoisRegistry queries WHOIS servers.
type WhoisRegistry struct {
	client     *whois.Client
	maxRetries int
}

// NewWhoisRegistry creates a registry whose queries time out after timeout.
func NewWhoisRegistry(timeout time.Duration, maxRetries int) *WhoisRegistry {
	c := whois.NewClient()
	if timeout > 0 {
		c.SetTimeout(timeout)
	}
	return &WhoisRegistry{client: c, maxRetries: maxRetries}
}

// Lookup returns the raw WHOIS record for domain, retrying transient
// failures with exponential backoff.
func (w *WhoisRegistry) Lookup(ctx context.Context, domain string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= w.maxRetries; attempt++ {
		if attempt > 0 {
			wait := time.Duration(math.Pow(2, float64(attempt-1))) * whoisBackoff
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(wait):
			}
		}

		record, err := w.client.Whois(domain)
		if err == nil && strings.TrimSpace(record) != "" {
			return record, nil
		}
		if err == nil {
			err = fmt.Errorf("empty record")
		}
		lastErr = err
	}
	return "", fmt.Errorf("whois %s: %w", domain, lastErr)
}
