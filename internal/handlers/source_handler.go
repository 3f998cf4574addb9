package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/sourdin/jobsieve/internal/interfaces"
	"github.com/sourdin/jobsieve/internal/models"
)

// SourceHandler manages email sender configuration
type SourceHandler struct {
	sources interfaces.SourceStorage
	logger  arbor.ILogger
}

func NewSourceHandler(sources interfaces.SourceStorage, logger arbor.ILogger) *SourceHandler {
	return &SourceHandler{
		sources: sources,
		logger:  logger,
	}
}

// SourcesHandler serves GET and PUT on /api/sources
func (h *SourceHandler) SourcesHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listSources(w, r)
	case http.MethodPut:
		h.updateSource(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *SourceHandler) listSources(w http.ResponseWriter, r *http.Request) {
	sources, err := h.sources.ListSources(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list sources")
		WriteError(w, http.StatusInternalServerError, "failed to list sources")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"sources": sources,
		"count":   len(sources),
	})
}

// updateSource classifies a sender or toggles its phase activation flags.
// Enabling creation on an Unknown provider is rejected by validation.
func (h *SourceHandler) updateSource(w http.ResponseWriter, r *http.Request) {
	var source models.Source
	if err := json.NewDecoder(r.Body).Decode(&source); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid source payload")
		return
	}

	if err := h.sources.SaveSource(r.Context(), &source); err != nil {
		h.logger.Warn().Str("sender", source.SenderAddress).Err(err).Msg("Failed to save source")
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.logger.Info().
		Str("sender", source.SenderAddress).
		Str("provider", source.ProviderName).
		Bool("creation", source.CreationEnabled).
		Bool("enrichment", source.EnrichmentEnabled).
		Bool("analysis", source.AnalysisEnabled).
		Msg("Source updated")

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"source": source,
	})
}
