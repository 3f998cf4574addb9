package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"
)

// jtmsDecoder decodes jobs that makesense alert emails. Tracking links carry
// the target as a URL-encoded redirect query parameter.
type jtmsDecoder struct {
	logger arbor.ILogger
}

func (d *jtmsDecoder) Extract(doc *goquery.Document) []candidate {
	var candidates []candidate

	doc.Find(`a[href*="makesense"], a[href*="jobs_that_makesense"]`).Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if href == "" {
			return
		}

		c := candidate{trackingURL: href}
		if target, ok := ResolveRedirectParam(href, []string{"url", "redirect", "u", "dest"}); ok {
			c.resolvedURL = stripTrackingQuery(target)
		} else if d.isOfferLink(href) {
			c.resolvedURL = stripTrackingQuery(href)
		}

		// Anchors that resolve to listing or account pages are not offers
		if c.resolvedURL != "" && !d.isOfferLink(c.resolvedURL) {
			return
		}
		if c.resolvedURL == "" && !strings.Contains(href, "redirect") && !strings.Contains(href, "url=") {
			return
		}

		c.title = normalizeText(a.Text())
		d.fillFields(a, &c)
		candidates = append(candidates, c)
	})

	return candidates
}

// isOfferLink reports whether a URL points at a single offer page
func (d *jtmsDecoder) isOfferLink(u string) bool {
	return strings.Contains(u, "/jobs/") || strings.Contains(u, "/offres-emploi/") || strings.Contains(u, "/offre/")
}

func (d *jtmsDecoder) fillFields(a *goquery.Selection, c *candidate) {
	anchorText := normalizeText(a.Text())
	for _, t := range siblingText(a) {
		if t == anchorText {
			continue
		}
		switch {
		case c.salary == "" && acceptSalary(t) != "":
			c.salary = t
		case c.company == "":
			c.company = t
		case c.location == "":
			c.location = t
		}
	}
}
