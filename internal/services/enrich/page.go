package enrich

import (
	"fmt"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
)

// PageDetails holds the fields scraped from an offer page
type PageDetails struct {
	Title       string
	Company     string
	Description string
}

// Empty reports whether nothing useful was found, which usually means the
// page is a JavaScript shell and needs a headless render
func (d PageDetails) Empty() bool {
	return d.Title == "" && d.Description == ""
}

var descriptionSelectors = []string{
	"[class*='description']",
	"[id*='description']",
	"article",
	"main",
}

// parsePage scrapes an offer page. Job boards share no markup, so this
// works from common shapes: og: meta tags, the first h1, the largest
// description-looking block. The description is converted to markdown.
func parsePage(html string) (PageDetails, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return PageDetails{}, fmt.Errorf("failed to parse offer page: %w", err)
	}

	details := PageDetails{
		Title:   metaContent(doc, "og:title"),
		Company: metaContent(doc, "og:site_name"),
	}

	if details.Title == "" {
		details.Title = strings.TrimSpace(doc.Find("h1").First().Text())
	}
	if details.Company == "" {
		details.Company = strings.TrimSpace(doc.Find("[class*='company'], [data-company]").First().Text())
	}

	descriptionHTML := findDescriptionHTML(doc)
	if descriptionHTML != "" {
		converter := md.NewConverter("", true, nil)
		markdown, err := converter.ConvertString(descriptionHTML)
		if err == nil {
			details.Description = strings.TrimSpace(markdown)
		}
	}

	if details.Description == "" {
		details.Description = metaContent(doc, "og:description")
	}

	return details, nil
}

func metaContent(doc *goquery.Document, property string) string {
	value, _ := doc.Find(fmt.Sprintf("meta[property='%s']", property)).Attr("content")
	if value == "" {
		value, _ = doc.Find(fmt.Sprintf("meta[name='%s']", property)).Attr("content")
	}
	return strings.TrimSpace(value)
}

// findDescriptionHTML returns the HTML of the first selector that yields a
// substantial text block
func findDescriptionHTML(doc *goquery.Document) string {
	for _, selector := range descriptionSelectors {
		var best string
		bestLen := 0
		doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			textLen := len(strings.TrimSpace(sel.Text()))
			if textLen <= bestLen {
				return
			}
			html, err := goquery.OuterHtml(sel)
			if err != nil {
				return
			}
			best = html
			bestLen = textLen
		})
		if best != "" {
			return best
		}
	}
	return ""
}
