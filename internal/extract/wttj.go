package extract

import (
	"net/url"

	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"
)

// wttjDecoder decodes Welcome to the Jungle digest emails. Offers arrive as
// repeating card blocks; each card link wraps the target in a base64-encoded
// JSON payload carried in a query parameter.
type wttjDecoder struct {
	logger arbor.ILogger
}

func (d *wttjDecoder) Extract(doc *goquery.Document) []candidate {
	// Card layout takes precedence over loose link scanning, so footer and
	// navigation links are never treated as offers.
	cards := doc.Find(`table[class*="card"], div[class*="card"], td[class*="job"]`)
	if cards.Length() > 0 {
		var candidates []candidate
		cards.Each(func(_ int, card *goquery.Selection) {
			if c, ok := d.fromCard(card); ok {
				candidates = append(candidates, c)
			}
		})
		return candidates
	}

	// Loose scan fallback for older template versions
	var candidates []candidate
	doc.Find(`a[href*="welcometothejungle"]`).Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if href == "" {
			return
		}
		c := candidate{trackingURL: href, title: normalizeText(a.Text())}
		if target, ok := d.resolveTracking(href); ok {
			c.resolvedURL = target
		}
		candidates = append(candidates, c)
	})
	return candidates
}

// fromCard extracts one candidate from a card block
func (d *wttjDecoder) fromCard(card *goquery.Selection) (candidate, bool) {
	a := card.Find("a[href]").First()
	href, _ := a.Attr("href")
	if href == "" {
		return candidate{}, false
	}

	c := candidate{trackingURL: href}
	if target, ok := d.resolveTracking(href); ok {
		c.resolvedURL = target
	}

	// Cards stack title, company and location as separate text blocks
	var texts []string
	card.Find("td,span,p,div,h2,h3").Each(func(_ int, s *goquery.Selection) {
		if s.Children().Length() > 0 {
			return
		}
		if t := normalizeText(s.Text()); t != "" {
			texts = append(texts, t)
		}
	})
	for _, t := range texts {
		switch {
		case c.salary == "" && acceptSalary(t) != "":
			c.salary = t
		case c.title == "":
			c.title = t
		case c.company == "":
			c.company = t
		case c.location == "":
			c.location = t
		}
	}
	if c.title == "" {
		c.title = normalizeText(a.Text())
	}

	return c, true
}

// resolveTracking unwraps the base64-JSON payload from the tracking link's
// query parameters
func (d *wttjDecoder) resolveTracking(href string) (string, bool) {
	u, err := url.Parse(href)
	if err != nil {
		return "", false
	}

	query := u.Query()
	for _, param := range []string{"data", "payload", "p"} {
		token := query.Get(param)
		if token == "" {
			continue
		}
		if target, ok := DecodeJSONPayloadToken(token); ok {
			return stripTrackingQuery(target), true
		}
	}

	// Some templates link the offer directly
	if isAbsoluteURL(href) && u.RawQuery == "" {
		return href, true
	}

	return "", false
}
