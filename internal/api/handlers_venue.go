package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// pagination reads limit/offset query params with sane bounds.
func pagination(r *http.Request) (limit, offset int) {
	limit = defaultPageSize
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}

type mergeVenuesRequest struct {
	SourceVenueID string `json:"source_venue_id"`
	TargetVenueID string `json:"target_venue_id"`
	RemoveSource  bool   `json:"remove_source,omitempty"`
}

// handleMergeVenues folds a duplicate venue into its surviving twin.
func (s *Server) handleMergeVenues(w http.ResponseWriter, r *http.Request) {
	var req mergeVenuesRequest
	if err := parseJSONBody(r, &req); err != nil {
		respondCategorized(w, r, err)
		return
	}

	result, err := s.venueService.Merge(r.Context(), req.SourceVenueID, req.TargetVenueID, req.RemoveSource)
	if err != nil {
		respondCategorized(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"ok":                     true,
		"moved_tournament_links": result.MovedTournamentLinks,
		"source_removed":         result.SourceRemoved,
	})
}

// handleGetVenue returns one venue.
func (s *Server) handleGetVenue(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	venue, err := s.venueService.GetVenue(r.Context(), id)
	if err != nil {
		respondCategorized(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, venue)
}

// handleListVenues returns a page of venues.
func (s *Server) handleListVenues(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)

	venues, err := s.venueService.ListVenues(r.Context(), limit, offset)
	if err != nil {
		respondCategorized(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"venues": venues})
}
