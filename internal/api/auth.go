package api

import (
	"context"
	"net/http"

	apperrors "github.com/tournament-scout/internal/errors"
	"github.com/tournament-scout/internal/models"
)

// UserStore resolves caller identities for authentication.
type UserStore interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	AcceptContactTerms(ctx context.Context, id string) error
}

type contextKey string

const userContextKey contextKey = "user"

// userFromContext returns the authenticated user, if any.
func userFromContext(ctx context.Context) *models.User {
	u, _ := ctx.Value(userContextKey).(*models.User)
	return u
}

// requireUser resolves the X-User-ID header to a user, failing with 401 when
// the header is missing or unknown. On success the user lands in the request
// context for the wrapped handler.
func (s *Server) requireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get("X-User-ID")
		if userID == "" {
			respondCategorized(w, r, apperrors.NewUnauthorizedError("missing X-User-ID header"))
			return
		}

		user, err := s.users.GetByID(r.Context(), userID)
		if err != nil {
			if apperrors.IsNotFound(err) {
				respondCategorized(w, r, apperrors.NewUnauthorizedError("unknown user"))
				return
			}
			respondCategorized(w, r, err)
			return
		}

		next(w, r.WithContext(context.WithValue(r.Context(), userContextKey, user)))
	}
}

// requireAdmin is requireUser plus an admin-role check (403 for members).
func (s *Server) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return s.requireUser(func(w http.ResponseWriter, r *http.Request) {
		user := userFromContext(r.Context())
		if !user.IsAdmin() {
			respondCategorized(w, r, apperrors.NewForbiddenError("admin role required"))
			return
		}
		next(w, r)
	})
}
