package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// normalizeText collapses runs of whitespace into single spaces
func normalizeText(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// flattenedText returns the document's full text with whitespace normalized,
// used for labeled-field fallback when structural extraction finds nothing.
func flattenedText(doc *goquery.Document) string {
	return normalizeText(doc.Text())
}

// labeledField scans flattened text for a "Label: value" occurrence, trying
// the labels in order. The value runs until the next label-like token or
// sentence boundary.
func labeledField(text string, labels ...string) string {
	for _, label := range labels {
		idx := strings.Index(strings.ToLower(text), strings.ToLower(label)+":")
		if idx < 0 {
			continue
		}
		rest := strings.TrimSpace(text[idx+len(label)+1:])
		if rest == "" {
			continue
		}
		// Stop at the next labeled field or a hard separator
		end := len(rest)
		for _, stop := range []string{" | ", " • ", " – ", "  "} {
			if i := strings.Index(rest, stop); i >= 0 && i < end {
				end = i
			}
		}
		if i := strings.IndexAny(rest, "\n"); i >= 0 && i < end {
			end = i
		}
		// A following "Something:" token also ends the value
		if m := nextLabelRe.FindStringIndex(rest); m != nil && m[0] < end {
			end = m[0]
		}
		value := normalizeText(rest[:end])
		if len(value) > 120 {
			value = normalizeText(value[:120])
		}
		if value != "" {
			return value
		}
	}
	return ""
}

var nextLabelRe = regexp.MustCompile(`\s[A-ZÉÈ][a-zéèêà]+\s?:`)

var (
	salaryNumberRe = regexp.MustCompile(`\d`)
	salaryMarkerRe = regexp.MustCompile(`(?i)(€|eur|\dk\b|k€|/\s*mois|/\s*an|/\s*month|/\s*year|par\s+mois|par\s+an|per\s+month|per\s+year|entre\s+\d[\d\s,.]*\s+et\s+\d|between\s+\d[\d\s,.]*\s+and\s+\d)`)
)

// acceptSalary gates salary-like free text: it is kept only when it contains
// both a numeric value and a currency or period marker. Anything else is
// treated as noise and dropped rather than stored.
func acceptSalary(text string) string {
	text = normalizeText(text)
	if text == "" || len(text) > 80 {
		return ""
	}
	if !salaryNumberRe.MatchString(text) {
		return ""
	}
	if !salaryMarkerRe.MatchString(text) {
		return ""
	}
	return text
}

var cityDepartmentRe = regexp.MustCompile(`^(.{2,}?)\s*[-–]\s*(\d{2})$`)

// splitLocation splits "City - 75" style locations into city and two-digit
// department. French job boards encode locations this way; other shapes come
// back as city only.
func splitLocation(text string) (city, department string) {
	text = normalizeText(text)
	if m := cityDepartmentRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1]), m[2]
	}
	return text, ""
}

// siblingText collects normalized text from the cells around a link: the
// closest row-level container is flattened into its leaf text blocks. Used
// for structural proximity extraction.
func siblingText(anchor *goquery.Selection) []string {
	var out []string
	container := anchor.Closest("tr,li,ul,table")
	if container.Length() == 0 {
		return out
	}
	container.Find("td,span,p,div,b,strong").Each(func(_ int, s *goquery.Selection) {
		// Leaf nodes only, so nested wrappers don't duplicate text
		if s.Children().Length() > 0 {
			return
		}
		t := normalizeText(s.Text())
		if t == "" {
			return
		}
		for _, seen := range out {
			if seen == t {
				return
			}
		}
		out = append(out, t)
	})
	return out
}
