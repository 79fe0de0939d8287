package models

import (
	"time"

	"github.com/tournament-scout/internal/types"
)

// OutreachRow represents one planned or sent contact attempt tied to exactly
// one tournament. The store enforces at most one row per tournament.
type OutreachRow struct {
	ID           string               `json:"id" db:"id"`
	TournamentID string               `json:"tournamentId" db:"tournament_id"`
	ContactName  *string              `json:"contactName,omitempty" db:"contact_name"`
	ContactEmail *string              `json:"contactEmail,omitempty" db:"contact_email"`
	Status       types.OutreachStatus `json:"status" db:"status"`
	Notes        *string              `json:"notes,omitempty" db:"notes"`
	CreatedAt    time.Time            `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time            `json:"updatedAt" db:"updated_at"`
}
