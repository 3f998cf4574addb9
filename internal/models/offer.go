package models

import (
	"fmt"
	"time"
)

// OfferStatus represents the lifecycle status of an offer record
type OfferStatus string

const (
	OfferStatusToFetch    OfferStatus = "to_fetch"
	OfferStatusToAnalyze  OfferStatus = "to_analyze"
	OfferStatusInProgress OfferStatus = "in_progress"
	OfferStatusDone       OfferStatus = "done"
	OfferStatusExpired    OfferStatus = "expired"
	OfferStatusArchived   OfferStatus = "archived"
)

// OfferRecord represents a normalized job offer extracted from a source email.
// The ID is content-derived and stable, so re-processing the same email is
// idempotent.
type OfferRecord struct {
	ID          string      `json:"id" badgerhold:"key"`
	URL         string      `json:"url"`
	Title       string      `json:"title,omitempty"`
	Company     string      `json:"company,omitempty"`
	City        string      `json:"city,omitempty"`
	Department  string      `json:"department,omitempty"`
	Salary      string      `json:"salary,omitempty"`
	Description string      `json:"description,omitempty"`
	Score       int         `json:"score,omitempty"`
	ScoreReason string      `json:"score_reason,omitempty"`
	Status      OfferStatus `json:"status"`
	// Unresolved marks records whose tracking link could not be decoded;
	// URL then holds the original tracking link verbatim.
	Unresolved bool      `json:"unresolved,omitempty"`
	SourceID   string    `json:"source_id"`
	AddedAt    time.Time `json:"added_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Validate validates the offer record
func (o *OfferRecord) Validate() error {
	if o.ID == "" {
		return fmt.Errorf("offer ID is required")
	}
	if o.URL == "" {
		return fmt.Errorf("offer URL is required")
	}
	if o.SourceID == "" {
		return fmt.Errorf("offer source ID is required")
	}
	switch o.Status {
	case OfferStatusToFetch, OfferStatusToAnalyze, OfferStatusInProgress,
		OfferStatusDone, OfferStatusExpired, OfferStatusArchived:
	default:
		return fmt.Errorf("invalid offer status: %s", o.Status)
	}
	return nil
}
