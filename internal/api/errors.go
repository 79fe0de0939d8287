package api

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/tournament-scout/internal/errors"
	"github.com/tournament-scout/internal/logging"
	"github.com/tournament-scout/internal/types"
)

// ErrorResponse represents an API error response.
type ErrorResponse struct {
	Error types.ServiceError `json:"error"`
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, statusCode int, code, message string, details map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := ErrorResponse{
		Error: types.ServiceError{
			Code:    code,
			Message: message,
			Details: details,
		},
	}

	json.NewEncoder(w).Encode(response)
}

// respondCategorized maps a service-layer error onto the wire. User errors
// keep their message; internal errors are masked and logged with the request
// context so operators can diagnose without the response leaking details.
func respondCategorized(w http.ResponseWriter, r *http.Request, err error) {
	categorized := apperrors.Categorize(err)

	if !apperrors.IsUserError(err) {
		logging.FromContext(r.Context()).WithError(err).WithFields(map[string]interface{}{
			"method": r.Method,
			"path":   r.URL.Path,
		}).Error("Request failed")
		respondError(w, categorized.StatusCode, categorized.Code, "An internal error occurred", nil)
		return
	}

	respondError(w, categorized.StatusCode, categorized.Code, categorized.Message, categorized.Details)
}

// parseJSONBody parses JSON request body.
func parseJSONBody(r *http.Request, v interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return apperrors.NewInvalidInputError("body", err.Error())
	}
	return nil
}
