package extract

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sourdin/jobsieve/internal/common"
	"github.com/sourdin/jobsieve/internal/models"
)

func newTestSource(provider string) *models.Source {
	return &models.Source{
		SenderAddress:   "notifications@emails.hellowork.com",
		ProviderName:    provider,
		CreationEnabled: provider != models.ProviderUnknown,
	}
}

func helloWorkEmail(token string) string {
	return fmt.Sprintf(`
<html><body>
<table><tr>
  <td><a href="https://tracking.hellowork.com/r/%s">Développeur Go H/F</a></td>
  <td>Acme Conseil</td>
  <td>Paris - 75</td>
  <td>45 000 € / an</td>
</tr></table>
<p><a href="https://www.hellowork.com/preferences">Gérer mes alertes</a></p>
</body></html>`, token)
}

func TestExtractOffersHelloWork(t *testing.T) {
	extractor := NewExtractor(common.GetLogger())
	token := base64.RawURLEncoding.EncodeToString([]byte("https://jobs.example/emplois/123456.html"))

	records := extractor.ExtractOffers(newTestSource(models.ProviderHelloWork), helloWorkEmail(token))

	require.Len(t, records, 1)
	offer := records[0]
	assert.Equal(t, "123456", offer.ID)
	assert.Equal(t, "https://jobs.example/emplois/123456.html", offer.URL)
	assert.False(t, offer.Unresolved)
	assert.Equal(t, "Développeur Go H/F", offer.Title)
	assert.Equal(t, "Acme Conseil", offer.Company)
	assert.Equal(t, "Paris", offer.City)
	assert.Equal(t, "75", offer.Department)
	assert.Equal(t, "45 000 € / an", offer.Salary)
	assert.Equal(t, models.OfferStatusToFetch, offer.Status)
	assert.Equal(t, "notifications@emails.hellowork.com", offer.SourceID)
}

func TestExtractOffersCorruptedTokenFallsBack(t *testing.T) {
	extractor := NewExtractor(common.GetLogger())
	trackingURL := "https://tracking.hellowork.com/r/!!!corrupted!!!"

	records := extractor.ExtractOffers(newTestSource(models.ProviderHelloWork), helloWorkEmail("!!!corrupted!!!"))

	require.NotEmpty(t, records)
	offer := records[0]
	// The original tracking link is retained verbatim, never dropped
	assert.Equal(t, trackingURL, offer.URL)
	assert.True(t, offer.Unresolved)
	assert.Regexp(t, regexp.MustCompile(`^hellowork-[0-9a-f]{16}$`), offer.ID)
}

func TestExtractOffersDeduplicatesWithinCall(t *testing.T) {
	extractor := NewExtractor(common.GetLogger())
	token := base64.RawURLEncoding.EncodeToString([]byte("https://jobs.example/emplois/123456.html"))
	link := fmt.Sprintf(`<a href="https://tracking.hellowork.com/r/%s">Développeur Go</a>`, token)
	html := fmt.Sprintf(`<html><body><div>%s</div><div>%s</div></body></html>`, link, link)

	records := extractor.ExtractOffers(newTestSource(models.ProviderHelloWork), html)

	require.Len(t, records, 1)
	assert.Equal(t, "123456", records[0].ID)
}

func TestExtractOffersUnknownProviderSuppressed(t *testing.T) {
	extractor := NewExtractor(common.GetLogger())
	token := base64.RawURLEncoding.EncodeToString([]byte("https://jobs.example/emplois/123456.html"))

	records := extractor.ExtractOffers(newTestSource(models.ProviderUnknown), helloWorkEmail(token))

	assert.Empty(t, records)
}

func TestExtractOffersNoCandidates(t *testing.T) {
	extractor := NewExtractor(common.GetLogger())

	records := extractor.ExtractOffers(newTestSource(models.ProviderHelloWork),
		`<html><body><p>Aucune nouvelle offre cette semaine.</p></body></html>`)

	assert.Empty(t, records)
	assert.NotNil(t, records)
}

func TestExtractOffersLinkedInDirectLink(t *testing.T) {
	extractor := NewExtractor(common.GetLogger())
	html := `
<html><body>
<table><tr>
  <td><a href="https://www.linkedin.com/comm/jobs/view/4012345678?trackingId=abc&refId=def">Backend Engineer</a></td>
  <td>Globex</td>
  <td>Paris, Île-de-France</td>
</tr></table>
<a href="https://www.linkedin.com/settings">Unsubscribe</a>
</body></html>`

	records := extractor.ExtractOffers(&models.Source{
		SenderAddress:   "jobs-noreply@linkedin.com",
		ProviderName:    models.ProviderLinkedIn,
		CreationEnabled: true,
	}, html)

	require.Len(t, records, 1)
	assert.Equal(t, "4012345678", records[0].ID)
	assert.Equal(t, "https://www.linkedin.com/comm/jobs/view/4012345678", records[0].URL)
	assert.Equal(t, "Backend Engineer", records[0].Title)
	assert.Equal(t, "Globex", records[0].Company)
}

func TestExtractOffersWTTJCardWithJSONPayload(t *testing.T) {
	extractor := NewExtractor(common.GetLogger())
	payload := base64.RawURLEncoding.EncodeToString(
		[]byte(`{"href":"https://www.welcometothejungle.com/companies/acme/jobs/backend-engineer_paris"}`))
	html := fmt.Sprintf(`
<html><body>
<div class="job-card">
  <h3>Backend Engineer</h3>
  <span>Acme</span>
  <span>Paris</span>
  <a href="https://click.welcometothejungle.com/t?data=%s">Voir l'offre</a>
</div>
<div class="footer"><a href="https://www.welcometothejungle.com/about">About</a></div>
</body></html>`, payload)

	records := extractor.ExtractOffers(&models.Source{
		SenderAddress:   "hello@welcometothejungle.com",
		ProviderName:    models.ProviderWelcomeToTheJungle,
		CreationEnabled: true,
	}, html)

	// Card layout takes precedence: the footer link is not an offer
	require.Len(t, records, 1)
	assert.Equal(t, "backend-engineer_paris", records[0].ID)
	assert.Equal(t, "https://www.welcometothejungle.com/companies/acme/jobs/backend-engineer_paris", records[0].URL)
	assert.Equal(t, "Backend Engineer", records[0].Title)
}

func TestExtractOffersJTMSRedirectParam(t *testing.T) {
	extractor := NewExtractor(common.GetLogger())
	html := `
<html><body>
<a href="https://jobs.makesense.org/redirect?url=https%3A%2F%2Fjobs.makesense.org%2Foffres-emploi%2Fchef-de-projet-digital">Chef de projet digital</a>
</body></html>`

	records := extractor.ExtractOffers(&models.Source{
		SenderAddress:   "bonjour@makesense.org",
		ProviderName:    models.ProviderJobsThatMakeSense,
		CreationEnabled: true,
	}, html)

	require.Len(t, records, 1)
	assert.Equal(t, "chef-de-projet-digital", records[0].ID)
	assert.Equal(t, "https://jobs.makesense.org/offres-emploi/chef-de-projet-digital", records[0].URL)
}

func TestExtractOffersCadreEmploiToken(t *testing.T) {
	extractor := NewExtractor(common.GetLogger())
	token := base64.RawURLEncoding.EncodeToString([]byte("https://www.cadremploi.fr/emploi/detail_offre-159753"))
	html := fmt.Sprintf(`
<html><body>
<a href="https://www.cadremploi.fr/emploi/detail_offre?token=%s">Directeur technique</a>
</body></html>`, token)

	records := extractor.ExtractOffers(&models.Source{
		SenderAddress:   "alerte@cadremploi.fr",
		ProviderName:    models.ProviderCadreEmploi,
		CreationEnabled: true,
	}, html)

	require.Len(t, records, 1)
	assert.Equal(t, "159753", records[0].ID)
	assert.Equal(t, "https://www.cadremploi.fr/emploi/detail_offre-159753", records[0].URL)
}

func TestExtractOffersSalaryNoiseDropped(t *testing.T) {
	extractor := NewExtractor(common.GetLogger())
	token := base64.RawURLEncoding.EncodeToString([]byte("https://jobs.example/emplois/654321.html"))
	html := fmt.Sprintf(`
<html><body>
<table><tr>
  <td><a href="https://tracking.hellowork.com/r/%s">Testeur QA</a></td>
  <td>Initech</td>
  <td>Lille - 59</td>
  <td>39 heures</td>
</tr></table>
</body></html>`, token)

	records := extractor.ExtractOffers(newTestSource(models.ProviderHelloWork), html)

	require.Len(t, records, 1)
	assert.Empty(t, records[0].Salary)
	assert.Equal(t, "Initech", records[0].Company)
}
