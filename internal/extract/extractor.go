package extract

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"
	"github.com/sourdin/jobsieve/internal/models"
)

// candidate is one offer link located by a provider decoder, before identity
// resolution and normalization.
type candidate struct {
	trackingURL string
	resolvedURL string // empty when the tracking link could not be decoded
	title       string
	company     string
	location    string
	salary      string
}

// providerDecoder turns a parsed email body into offer candidates using the
// provider's markers and tracking-link encoding.
type providerDecoder interface {
	Extract(doc *goquery.Document) []candidate
}

// Extractor dispatches to the matching provider decoder and normalizes the
// result into deduplicated offer records. It is the sole entry point consumed
// by the creation phase.
type Extractor struct {
	decoders map[string]providerDecoder
	logger   arbor.ILogger
}

// NewExtractor creates an extractor with the closed set of provider decoders
func NewExtractor(logger arbor.ILogger) *Extractor {
	return &Extractor{
		decoders: map[string]providerDecoder{
			models.ProviderLinkedIn:           &linkedInDecoder{logger: logger},
			models.ProviderHelloWork:          &helloWorkDecoder{logger: logger},
			models.ProviderWelcomeToTheJungle: &wttjDecoder{logger: logger},
			models.ProviderJobsThatMakeSense:  &jtmsDecoder{logger: logger},
			models.ProviderCadreEmploi:        &cadreEmploiDecoder{logger: logger},
		},
		logger: logger,
	}
}

// ExtractOffers extracts normalized offer records from a raw email body.
// Unknown providers yield an empty list: unrecognized senders are never
// auto-processed. HTML with no matching candidates also yields an empty list,
// not an error.
func (e *Extractor) ExtractOffers(source *models.Source, html string) []models.OfferRecord {
	if source == nil || source.ProviderName == models.ProviderUnknown {
		return []models.OfferRecord{}
	}

	decoder, ok := e.decoders[source.ProviderName]
	if !ok {
		e.logger.Warn().Str("provider", source.ProviderName).Msg("No decoder for provider")
		return []models.OfferRecord{}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		e.logger.Warn().Err(err).Str("provider", source.ProviderName).Msg("Failed to parse email HTML")
		return []models.OfferRecord{}
	}

	candidates := decoder.Extract(doc)

	now := time.Now()
	seen := make(map[string]bool)
	records := make([]models.OfferRecord, 0, len(candidates))
	for _, c := range candidates {
		record := e.normalize(source, c, now)
		if seen[record.ID] {
			// Duplicate within the same email, first occurrence wins
			continue
		}
		seen[record.ID] = true
		records = append(records, record)
	}

	e.logger.Debug().
		Str("provider", source.ProviderName).
		Int("candidates", len(candidates)).
		Int("records", len(records)).
		Msg("Offers extracted")

	return records
}

// normalize turns a candidate into an offer record: URL fallback, identity
// resolution, locale field splitting and the salary noise gate.
func (e *Extractor) normalize(source *models.Source, c candidate, now time.Time) models.OfferRecord {
	resolved := c.resolvedURL != ""
	url := c.resolvedURL
	if !resolved {
		// The original tracking URL is retained verbatim, never dropped
		url = c.trackingURL
		e.logger.Debug().
			Str("provider", source.ProviderName).
			Str("tracking_url", c.trackingURL).
			Msg("Tracking link could not be resolved, keeping original")
	}

	seed := c.resolvedURL
	if seed == "" {
		seed = c.title + "|" + c.company + "|" + c.location + "|" + c.trackingURL
	}

	city, department := splitLocation(c.location)

	return models.OfferRecord{
		ID:         ResolveID(source.ProviderName, c.resolvedURL, seed),
		URL:        url,
		Title:      normalizeText(c.title),
		Company:    normalizeText(c.company),
		City:       city,
		Department: department,
		Salary:     acceptSalary(c.salary),
		Status:     models.OfferStatusToFetch,
		Unresolved: !resolved,
		SourceID:   source.SenderAddress,
		AddedAt:    now,
		UpdatedAt:  now,
	}
}
