package models

// Phase identifies one of the three processing stages
type Phase string

const (
	PhaseCreation   Phase = "creation"
	PhaseEnrichment Phase = "enrichment"
	PhaseAnalysis   Phase = "analysis"
)

// InputStatus returns the offer status a phase consumes as input. Creation has
// no input status: it produces records rather than selecting them.
func (p Phase) InputStatus() OfferStatus {
	switch p {
	case PhaseEnrichment:
		return OfferStatusToFetch
	case PhaseAnalysis:
		return OfferStatusToAnalyze
	default:
		return ""
	}
}
