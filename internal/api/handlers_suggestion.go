package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/tournament-scout/internal/types"
)

type submitSuggestionRequest struct {
	TournamentID   string  `json:"tournament_id"`
	SuggestedURL   string  `json:"suggested_url"`
	SubmitterEmail *string `json:"submitter_email,omitempty"`
}

// handleSubmitSuggestion records a public URL correction.
func (s *Server) handleSubmitSuggestion(w http.ResponseWriter, r *http.Request) {
	var req submitSuggestionRequest
	if err := parseJSONBody(r, &req); err != nil {
		respondCategorized(w, r, err)
		return
	}

	suggestion, err := s.suggestionService.Submit(r.Context(), req.TournamentID, req.SuggestedURL, req.SubmitterEmail, types.SuggestionSourcePublic)
	if err != nil {
		respondCategorized(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, suggestion)
}

// handleListPendingSuggestions returns the review queue.
func (s *Server) handleListPendingSuggestions(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)

	suggestions, err := s.suggestionService.ListPending(r.Context(), limit, offset)
	if err != nil {
		respondCategorized(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"suggestions": suggestions})
}

// handleApproveSuggestion accepts a suggestion and updates the tournament.
func (s *Server) handleApproveSuggestion(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	reviewer := userFromContext(r.Context())

	suggestion, err := s.suggestionService.Approve(r.Context(), id, reviewer.ID)
	if err != nil {
		respondCategorized(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, suggestion)
}

// handleRejectSuggestion declines a suggestion.
func (s *Server) handleRejectSuggestion(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	reviewer := userFromContext(r.Context())

	suggestion, err := s.suggestionService.Reject(r.Context(), id, reviewer.ID)
	if err != nil {
		respondCategorized(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, suggestion)
}
