package api

import (
	"net/http"
)

// tournamentBatchRequest is the body shared by queue and suppress.
type tournamentBatchRequest struct {
	TournamentIDs []string `json:"tournament_ids"`
	Reason        string   `json:"reason,omitempty"`
}

// handleQueueOutreach creates draft outreach rows for eligible tournaments.
func (s *Server) handleQueueOutreach(w http.ResponseWriter, r *http.Request) {
	var req tournamentBatchRequest
	if err := parseJSONBody(r, &req); err != nil {
		respondCategorized(w, r, err)
		return
	}

	result, err := s.outreachService.QueueOutreach(r.Context(), req.TournamentIDs)
	if err != nil {
		respondCategorized(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// handleSuppress flags tournaments do-not-contact and cascades their rows.
func (s *Server) handleSuppress(w http.ResponseWriter, r *http.Request) {
	var req tournamentBatchRequest
	if err := parseJSONBody(r, &req); err != nil {
		respondCategorized(w, r, err)
		return
	}

	result, err := s.outreachService.Suppress(r.Context(), req.TournamentIDs, req.Reason)
	if err != nil {
		respondCategorized(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// handleReconcile repairs outreach rows missed by past suppression cascades.
func (s *Server) handleReconcile(w http.ResponseWriter, r *http.Request) {
	repaired, err := s.outreachService.ReconcileSuppression(r.Context())
	if err != nil {
		respondCategorized(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]int64{"repaired": repaired})
}
