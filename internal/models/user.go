package models

import (
	"time"

	"github.com/tournament-scout/internal/types"
)

// User is a caller identity resolved from the session header. Contact reveals
// require ContactTermsAcceptedAt to be set.
type User struct {
	ID                     string         `json:"id" db:"id"`
	Email                  string         `json:"email" db:"email"`
	Role                   types.UserRole `json:"role" db:"role"`
	ContactTermsAcceptedAt *time.Time     `json:"contactTermsAcceptedAt,omitempty" db:"contact_terms_accepted_at"`
	CreatedAt              time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt              time.Time      `json:"updatedAt" db:"updated_at"`
}

// IsAdmin reports whether the user may call admin endpoints.
func (u *User) IsAdmin() bool {
	return u.Role == types.RoleAdmin
}

// HasAcceptedContactTerms reports whether contact reveals are permitted.
func (u *User) HasAcceptedContactTerms() bool {
	return u.ContactTermsAcceptedAt != nil
}
