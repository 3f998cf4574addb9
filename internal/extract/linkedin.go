package extract

import (
	"regexp"

	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"
)

var linkedInJobURLRe = regexp.MustCompile(`https://[a-z.]*linkedin\.com/(?:comm/)?jobs/view/\d+[^"'\s]*`)

// linkedInDecoder decodes LinkedIn job-alert emails. Offer links are either
// plain /jobs/view/<id> URLs (possibly under the /comm tracking prefix) or a
// tracking URL wrapping the target in a redirect query parameter.
type linkedInDecoder struct {
	logger arbor.ILogger
}

func (d *linkedInDecoder) Extract(doc *goquery.Document) []candidate {
	var candidates []candidate

	doc.Find(`a[href*="linkedin.com"]`).Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if href == "" {
			return
		}

		c := candidate{trackingURL: href}

		// Plain regex match first: the target is often embedded directly
		if m := linkedInJobURLRe.FindString(href); m != "" {
			c.resolvedURL = stripTrackingQuery(m)
		} else if target, ok := ResolveRedirectParam(href, []string{"url", "originalReferer", "u"}); ok {
			if m := linkedInJobURLRe.FindString(target); m != "" {
				c.resolvedURL = stripTrackingQuery(m)
			} else {
				c.resolvedURL = target
			}
		}

		// Only keep anchors that point at a job, not profile or footer links
		if c.resolvedURL == "" && !linkedInJobURLRe.MatchString(href) {
			return
		}

		d.fillFields(a, &c)
		candidates = append(candidates, c)
	})

	return candidates
}

// fillFields reads the card around the anchor: LinkedIn alert cards stack
// title, company and "City, Region" in sibling cells.
func (d *linkedInDecoder) fillFields(a *goquery.Selection, c *candidate) {
	anchorText := normalizeText(a.Text())
	if anchorText != "" && len(anchorText) > 3 {
		c.title = anchorText
	}

	for _, t := range siblingText(a) {
		if t == anchorText {
			continue
		}
		switch {
		case c.title == "":
			c.title = t
		case c.company == "":
			c.company = t
		case c.location == "":
			c.location = t
		}
	}
}
