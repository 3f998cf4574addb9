package analysis

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sourdin/jobsieve/internal/models"
)

// scoreResponse is the JSON payload the model is asked to return
type scoreResponse struct {
	Score  int    `json:"score"`
	Reason string `json:"reason"`
}

// buildPrompt assembles the scoring prompt for one offer
func buildPrompt(criteria *Criteria, offer *models.OfferRecord) string {
	var b strings.Builder

	b.WriteString("You are scoring a job offer against a candidate profile.\n\n")
	b.WriteString("Candidate profile:\n")
	b.WriteString(criteria.Profile)
	b.WriteString("\n")

	writeList(&b, "Must have", criteria.MustHave)
	writeList(&b, "Nice to have", criteria.NiceToHave)
	writeList(&b, "Avoid", criteria.Avoid)

	b.WriteString("\nJob offer:\n")
	fmt.Fprintf(&b, "Title: %s\n", offer.Title)
	if offer.Company != "" {
		fmt.Fprintf(&b, "Company: %s\n", offer.Company)
	}
	if offer.City != "" {
		location := offer.City
		if offer.Department != "" {
			location = fmt.Sprintf("%s (%s)", offer.City, offer.Department)
		}
		fmt.Fprintf(&b, "Location: %s\n", location)
	}
	if offer.Salary != "" {
		fmt.Fprintf(&b, "Salary: %s\n", offer.Salary)
	}
	if offer.Description != "" {
		fmt.Fprintf(&b, "Description:\n%s\n", offer.Description)
	}

	b.WriteString("\nReply with a single JSON object and nothing else: ")
	b.WriteString(`{"score": <0-100 integer>, "reason": "<one sentence in the language of the offer>"}`)

	return b.String()
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s:\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
}

// parseScore extracts the score payload from a model response. Models wrap
// JSON in markdown fences or prose often enough that this scans for the
// first balanced object instead of unmarshalling the raw text.
func parseScore(response string) (*scoreResponse, error) {
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in model response")
	}

	var parsed scoreResponse
	if err := json.Unmarshal([]byte(response[start:end+1]), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse model response: %w", err)
	}

	if parsed.Score < 0 {
		parsed.Score = 0
	}
	if parsed.Score > 100 {
		parsed.Score = 100
	}

	return &parsed, nil
}
