package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// handleGetTournament returns one tournament.
func (s *Server) handleGetTournament(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	tournament, err := s.tournamentService.GetTournament(r.Context(), id)
	if err != nil {
		respondCategorized(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, tournament)
}

// handleListTournaments returns a page of tournaments.
func (s *Server) handleListTournaments(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)

	tournaments, err := s.tournamentService.ListTournaments(r.Context(), limit, offset)
	if err != nil {
		respondCategorized(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"tournaments": tournaments})
}
