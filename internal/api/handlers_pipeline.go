package api

import (
	"net/http"

	"github.com/tournament-scout/internal/models"
)

type ingestRequest struct {
	Records []*models.SourceRecord `json:"records"`
}

// handleIngest accepts a batch of scraped source records.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := parseJSONBody(r, &req); err != nil {
		respondCategorized(w, r, err)
		return
	}

	result, err := s.ingestService.Ingest(r.Context(), req.Records)
	if err != nil {
		respondCategorized(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// handleDiscoverWebsites runs one website-discovery pass.
func (s *Server) handleDiscoverWebsites(w http.ResponseWriter, r *http.Request) {
	result, err := s.enrichService.DiscoverWebsites(r.Context())
	if err != nil {
		respondCategorized(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// handleGeocodeVenues runs one geocoding pass.
func (s *Server) handleGeocodeVenues(w http.ResponseWriter, r *http.Request) {
	result, err := s.enrichService.GeocodeVenues(r.Context())
	if err != nil {
		respondCategorized(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}
