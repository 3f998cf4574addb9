package extract

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"regexp"
	"strings"
)

// Recognized URL path shapes carrying a natural offer identifier
var (
	// e.g. /emplois/123456.html
	numericHTMLPathRe = regexp.MustCompile(`/(\d+)\.html?$`)
	// e.g. /jobs/view/4012345678
	jobsViewPathRe = regexp.MustCompile(`/jobs/view/(\d+)`)
	// e.g. /emploi/detail_offre-159753
	trailingNumericRe = regexp.MustCompile(`-(\d{5,})/?$`)
	// e.g. /companies/acme/jobs/backend-engineer_paris
	companySlugRe = regexp.MustCompile(`/companies/[^/]+/jobs/([a-z0-9][a-z0-9._-]+)/?$`)
	// e.g. /offres-emploi/chef-de-projet-digital
	offerSlugRe = regexp.MustCompile(`/offres?-emploi/([a-z0-9][a-z0-9._-]+)/?$`)
)

// ResolveID computes a stable identifier for an offer. It prefers a natural
// ID found in the resolved URL (numeric segment, then slug), and falls back
// to a deterministic short hash of the best available seed, prefixed with the
// provider name so identical pages reached through different providers never
// collide. The same input always yields the same ID, across restarts.
func ResolveID(provider, resolvedURL, fallbackSeed string) string {
	if resolvedURL != "" {
		if u, err := url.Parse(resolvedURL); err == nil {
			path := u.Path

			for _, re := range []*regexp.Regexp{numericHTMLPathRe, jobsViewPathRe, trailingNumericRe} {
				if m := re.FindStringSubmatch(path); m != nil {
					return m[1]
				}
			}
			for _, re := range []*regexp.Regexp{companySlugRe, offerSlugRe} {
				if m := re.FindStringSubmatch(strings.ToLower(path)); m != nil {
					return m[1]
				}
			}
		}
	}

	seed := resolvedURL
	if seed == "" {
		seed = fallbackSeed
	}
	return hashID(provider, seed)
}

// hashID derives the fallback identifier: provider name (lowercased) plus the
// first 16 hex characters of a SHA-256 digest of the seed.
func hashID(provider, seed string) string {
	sum := sha256.Sum256([]byte(seed))
	return strings.ToLower(provider) + "-" + hex.EncodeToString(sum[:])[:16]
}
