package api

import (
	"net/http"
)

type revealContactsRequest struct {
	AssignorIDs []string `json:"assignor_ids"`
}

// handleRevealContacts returns unmasked contact details, gated by terms
// acceptance and the dual-key reveal budget.
func (s *Server) handleRevealContacts(w http.ResponseWriter, r *http.Request) {
	var req revealContactsRequest
	if err := parseJSONBody(r, &req); err != nil {
		respondCategorized(w, r, err)
		return
	}

	user := userFromContext(r.Context())

	contacts, err := s.contactService.Reveal(r.Context(), user, clientIP(r), req.AssignorIDs)
	if err != nil {
		respondCategorized(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"contacts": contacts})
}

// handleAcceptTerms records the caller's contact-terms acceptance.
func (s *Server) handleAcceptTerms(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	if err := s.users.AcceptContactTerms(r.Context(), user.ID); err != nil {
		respondCategorized(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"accepted": true})
}

// handleListAssignors returns the masked directory.
func (s *Server) handleListAssignors(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)

	assignors, err := s.contactService.ListAssignors(r.Context(), limit, offset)
	if err != nil {
		respondCategorized(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"assignors": assignors})
}
