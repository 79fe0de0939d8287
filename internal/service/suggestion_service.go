package service

import (
	"context"
	"fmt"

	apperrors "github.com/tournament-scout/internal/errors"
	"github.com/tournament-scout/internal/models"
	"github.com/tournament-scout/internal/normalize"
	"github.com/tournament-scout/internal/types"
)

// SuggestionStore is the suggestion persistence needed by review.
type SuggestionStore interface {
	Upsert(ctx context.Context, s *models.URLSuggestion) (*models.URLSuggestion, error)
	GetByID(ctx context.Context, id string) (*models.URLSuggestion, error)
	SetStatus(ctx context.Context, id string, status types.SuggestionStatus, reviewerID string) (*models.URLSuggestion, error)
	ListPending(ctx context.Context, limit, offset int) ([]*models.URLSuggestion, error)
}

// TournamentWebsiteStore is the tournament persistence needed by review.
type TournamentWebsiteStore interface {
	GetByID(ctx context.Context, id string) (*models.Tournament, error)
	UpdateOfficialWebsite(ctx context.Context, id, url string) error
}

// SuggestionService handles public URL suggestions and their admin review
type SuggestionService struct {
	suggestions SuggestionStore
	tournaments TournamentWebsiteStore
}

// NewSuggestionService creates a new suggestion service
func NewSuggestionService(suggestions SuggestionStore, tournaments TournamentWebsiteStore) *SuggestionService {
	return &SuggestionService{suggestions: suggestions, tournaments: tournaments}
}

// Submit records a suggested official-website URL for a tournament. The URL
// is normalized before storage; re-submitting the same URL for the same
// tournament refreshes the existing suggestion instead of duplicating it.
func (s *SuggestionService) Submit(ctx context.Context, tournamentID, rawURL string, submitterEmail *string, source types.SuggestionSource) (*models.URLSuggestion, error) {
	if tournamentID == "" {
		return nil, apperrors.NewInvalidInputError("tournament_id", "must not be empty")
	}

	normalized, err := normalize.URL(rawURL)
	if err != nil {
		return nil, err
	}

	if _, err := s.tournaments.GetByID(ctx, tournamentID); err != nil {
		return nil, err
	}

	stored, err := s.suggestions.Upsert(ctx, &models.URLSuggestion{
		TournamentID:    tournamentID,
		SuggestedURL:    normalized.Normalized,
		SuggestedDomain: normalized.Domain,
		SubmitterEmail:  submitterEmail,
		Source:          source,
	})
	if err != nil {
		return nil, apperrors.NewDatabaseError("upsert suggestion", err)
	}

	return stored, nil
}

// Approve accepts a pending suggestion and writes its URL onto the
// tournament. The tournament write happens before the status flip: a failed
// write leaves the suggestion pending so the approval can simply be retried.
// Reviewing a non-pending suggestion is a conflict.
func (s *SuggestionService) Approve(ctx context.Context, id, reviewerID string) (*models.URLSuggestion, error) {
	suggestion, err := s.suggestions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if suggestion.Status != types.SuggestionPending {
		return nil, apperrors.NewConflictError(fmt.Sprintf("suggestion %s already %s", id, suggestion.Status))
	}

	if err := s.tournaments.UpdateOfficialWebsite(ctx, suggestion.TournamentID, suggestion.SuggestedURL); err != nil {
		return nil, err
	}

	// SetStatus still guards on pending, so a concurrent reviewer loses here
	// with a conflict after the URL is already in place.
	return s.suggestions.SetStatus(ctx, id, types.SuggestionApproved, reviewerID)
}

// Reject declines a pending suggestion.
func (s *SuggestionService) Reject(ctx context.Context, id, reviewerID string) (*models.URLSuggestion, error) {
	return s.suggestions.SetStatus(ctx, id, types.SuggestionRejected, reviewerID)
}

// ListPending returns pending suggestions for review.
func (s *SuggestionService) ListPending(ctx context.Context, limit, offset int) ([]*models.URLSuggestion, error) {
	suggestions, err := s.suggestions.ListPending(ctx, limit, offset)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list pending suggestions", err)
	}
	return suggestions, nil
}
