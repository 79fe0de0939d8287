package models

import (
	"time"

	"github.com/tournament-scout/internal/types"
)

// URLSuggestion is a proposed correction to a tournament's official website
// URL, from automated enrichment or a public submitter. The suggested URL is
// normalized before storage; (tournament_id, suggested_url) is unique so a
// re-submission updates the existing row instead of duplicating it.
type URLSuggestion struct {
	ID              string                 `json:"id" db:"id"`
	TournamentID    string                 `json:"tournamentId" db:"tournament_id"`
	SuggestedURL    string                 `json:"suggestedUrl" db:"suggested_url"`
	SuggestedDomain string                 `json:"suggestedDomain" db:"suggested_domain"`
	SubmitterEmail  *string                `json:"submitterEmail,omitempty" db:"submitter_email"`
	Source          types.SuggestionSource `json:"source" db:"source"`
	Status          types.SuggestionStatus `json:"status" db:"status"`
	ReviewedAt      *time.Time             `json:"reviewedAt,omitempty" db:"reviewed_at"`
	ReviewedBy      *string                `json:"reviewedBy,omitempty" db:"reviewed_by"`
	CreatedAt       time.Time              `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time              `json:"updatedAt" db:"updated_at"`
}
