package extract

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"
)

// helloWorkDecoder decodes HelloWork notification emails. Offer links go
// through a tracking host and carry the real target as a base64url token in
// the final path segment.
type helloWorkDecoder struct {
	logger arbor.ILogger
}

func (d *helloWorkDecoder) Extract(doc *goquery.Document) []candidate {
	var candidates []candidate

	// Only the click-tracking host carries offers; plain hellowork.com
	// links are preference/footer navigation
	doc.Find(`a[href*="tracking.hellowork"]`).Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if href == "" {
			return
		}

		c := candidate{trackingURL: href}
		if target, ok := d.resolveTracking(href); ok {
			c.resolvedURL = target
		}

		d.fillFields(a, &c)
		if c.title == "" {
			c.title = normalizeText(a.Text())
		}
		candidates = append(candidates, c)
	})

	if len(candidates) == 0 {
		return candidates
	}

	// Labeled-text fallback for emails whose table structure was flattened
	// by the mail client
	text := flattenedText(doc)
	for i := range candidates {
		if candidates[i].title == "" {
			candidates[i].title = labeledField(text, "Poste", "Title")
		}
		if candidates[i].company == "" {
			candidates[i].company = labeledField(text, "Entreprise", "Company")
		}
		if candidates[i].location == "" {
			candidates[i].location = labeledField(text, "Lieu", "Localisation", "Location")
		}
	}

	return candidates
}

// resolveTracking decodes the base64url token carried as the tracking link's
// final path segment
func (d *helloWorkDecoder) resolveTracking(href string) (string, bool) {
	u, err := url.Parse(href)
	if err != nil {
		return "", false
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) == 0 {
		return "", false
	}

	token := segments[len(segments)-1]
	decoded, ok := DecodeBase64URLToken(token)
	if !ok || !isAbsoluteURL(decoded) {
		return "", false
	}
	return decoded, true
}

// fillFields extracts descriptive fields from cells around the link. HelloWork
// cards put the title in the anchor, then company, then "City - dept", then an
// optional salary line.
func (d *helloWorkDecoder) fillFields(a *goquery.Selection, c *candidate) {
	texts := siblingText(a)
	anchorText := normalizeText(a.Text())

	for _, t := range texts {
		if t == anchorText {
			continue
		}
		switch {
		case c.salary == "" && acceptSalary(t) != "":
			c.salary = t
		case c.location == "" && cityDepartmentRe.MatchString(t):
			c.location = t
		case c.company == "":
			c.company = t
		}
	}
}
