package models

import (
	"fmt"
	"strings"
	"time"
)

// Provider constants for the supported job-board email senders
const (
	ProviderLinkedIn           = "LinkedIn"
	ProviderHelloWork          = "HelloWork"
	ProviderWelcomeToTheJungle = "WelcomeToTheJungle"
	ProviderJobsThatMakeSense  = "JobsThatMakeSense"
	ProviderCadreEmploi        = "CadreEmploi"
	ProviderUnknown            = "Unknown"
)

// KnownProviders lists every provider with a decoder implementation
var KnownProviders = []string{
	ProviderLinkedIn,
	ProviderHelloWork,
	ProviderWelcomeToTheJungle,
	ProviderJobsThatMakeSense,
	ProviderCadreEmploi,
}

// DetectProvider maps an email sender address to a provider name.
// Unrecognized senders map to Unknown and stay inactive until an operator
// classifies them.
func DetectProvider(senderAddress string) string {
	addr := strings.ToLower(senderAddress)

	switch {
	case strings.Contains(addr, "linkedin"):
		return ProviderLinkedIn
	case strings.Contains(addr, "hellowork"):
		return ProviderHelloWork
	case strings.Contains(addr, "welcomejungle"), strings.Contains(addr, "welcometothejungle"), strings.Contains(addr, "wttj"):
		return ProviderWelcomeToTheJungle
	case strings.Contains(addr, "makesense"):
		return ProviderJobsThatMakeSense
	case strings.Contains(addr, "cadremploi"):
		return ProviderCadreEmploi
	default:
		return ProviderUnknown
	}
}

// Source represents one email sender and its processing activation flags.
// Sources are created on first sighting of an unseen sender and never
// auto-deleted.
type Source struct {
	SenderAddress     string    `json:"sender_address" badgerhold:"key"`
	ProviderName      string    `json:"provider_name"`
	CreationEnabled   bool      `json:"creation_enabled"`
	EnrichmentEnabled bool      `json:"enrichment_enabled"`
	AnalysisEnabled   bool      `json:"analysis_enabled"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Validate validates the source configuration. Sources with an unrecognized
// provider must never have creation enabled.
func (s *Source) Validate() error {
	if s.SenderAddress == "" {
		return fmt.Errorf("sender address is required")
	}

	valid := s.ProviderName == ProviderUnknown
	for _, p := range KnownProviders {
		if s.ProviderName == p {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("invalid provider name: %s", s.ProviderName)
	}

	if s.ProviderName == ProviderUnknown && s.CreationEnabled {
		return fmt.Errorf("creation cannot be enabled for an unknown provider")
	}

	return nil
}
