package extract

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"
)

// cadreEmploiDecoder decodes Cadremploi alert emails. Offer links point at the
// board directly, sometimes carrying a base64 token in a "token" query
// parameter that wraps the canonical offer URL.
type cadreEmploiDecoder struct {
	logger arbor.ILogger
}

func (d *cadreEmploiDecoder) Extract(doc *goquery.Document) []candidate {
	var candidates []candidate

	doc.Find(`a[href*="cadremploi"]`).Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if href == "" || !d.isOfferLink(href) {
			return
		}

		c := candidate{trackingURL: href}
		if target, ok := d.resolveTracking(href); ok {
			c.resolvedURL = target
		}

		c.title = normalizeText(a.Text())
		d.fillFields(a, &c)
		candidates = append(candidates, c)
	})

	return candidates
}

func (d *cadreEmploiDecoder) isOfferLink(href string) bool {
	return strings.Contains(href, "detail_offre") || strings.Contains(href, "/emploi/")
}

func (d *cadreEmploiDecoder) resolveTracking(href string) (string, bool) {
	u, err := url.Parse(href)
	if err != nil {
		return "", false
	}

	if token := u.Query().Get("token"); token != "" {
		if decoded, ok := DecodeBase64URLToken(token); ok && isAbsoluteURL(decoded) {
			return stripTrackingQuery(decoded), true
		}
		// Token present but undecodable: treat the link as unresolved so
		// the original tracking URL is preserved verbatim
		return "", false
	}

	if isAbsoluteURL(href) {
		return stripTrackingQuery(href), true
	}
	return "", false
}

func (d *cadreEmploiDecoder) fillFields(a *goquery.Selection, c *candidate) {
	anchorText := normalizeText(a.Text())
	for _, t := range siblingText(a) {
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
