package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	apperrors "github.com/tournament-scout/internal/errors"
	"github.com/tournament-scout/internal/models"
	"github.com/tournament-scout/internal/types"
)

// SuggestionRepository handles URL suggestion persistence.
type SuggestionRepository struct {
	db *PostgresDB
}

// NewSuggestionRepository creates a new suggestion repository
func NewSuggestionRepository(db *PostgresDB) *SuggestionRepository {
	return &SuggestionRepository{db: db}
}

const suggestionColumns = `
	id, tournament_id, suggested_url, suggested_domain, submitter_email,
	source, status, reviewed_at, reviewed_by, created_at, updated_at
`

func scanSuggestion(row pgx.Row) (*models.URLSuggestion, error) {
	var s models.URLSuggestion
	err := row.Scan(
		&s.ID,
		&s.TournamentID,
		&s.SuggestedURL,
		&s.SuggestedDomain,
		&s.SubmitterEmail,
		&s.Source,
		&s.Status,
		&s.ReviewedAt,
		&s.ReviewedBy,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Upsert stores a suggestion keyed by (tournament_id, suggested_url).
// Re-submitting an identical suggestion refreshes the existing row instead of
// duplicating it; a rejected duplicate stays rejected.
func (r *SuggestionRepository) Upsert(ctx context.Context, s *models.URLSuggestion) (*models.URLSuggestion, error) {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}

	now := time.Now()

	query := `
		INSERT INTO url_suggestions (
			id, tournament_id, suggested_url, suggested_domain, submitter_email,
			source, status, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		ON CONFLICT (tournament_id, suggested_url) DO UPDATE SET
			submitter_email = COALESCE(EXCLUDED.submitter_email, url_suggestions.submitter_email),
			updated_at = EXCLUDED.updated_at
		RETURNING ` + suggestionColumns

	stored, err := scanSuggestion(r.db.Pool().QueryRow(ctx, query,
		s.ID,
		s.TournamentID,
		s.SuggestedURL,
		s.SuggestedDomain,
		s.SubmitterEmail,
		s.Source,
		types.SuggestionPending,
		now,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert suggestion: %w", err)
	}

	return stored, nil
}

// GetByID retrieves a suggestion by id
func (r *SuggestionRepository) GetByID(ctx context.Context, id string) (*models.URLSuggestion, error) {
	query := `SELECT ` + suggestionColumns + ` FROM url_suggestions WHERE id = $1`

	s, err := scanSuggestion(r.db.Pool().QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("suggestion", id)
		}
		return nil, fmt.Errorf("failed to get suggestion: %w", err)
	}

	return s, nil
}

// SetStatus moves a pending suggestion to approved or rejected, recording the
// reviewer. Reviewing an already-reviewed suggestion returns a conflict.
func (r *SuggestionRepository) SetStatus(ctx context.Context, id string, status types.SuggestionStatus, reviewerID string) (*models.URLSuggestion, error) {
	query := `
		UPDATE url_suggestions
		SET status = $2, reviewed_by = $3, reviewed_at = $4, updated_at = $4
		WHERE id = $1 AND status = $5
		RETURNING ` + suggestionColumns

	s, err := scanSuggestion(r.db.Pool().QueryRow(ctx, query,
		id,
		status,
		reviewerID,
		time.Now(),
		types.SuggestionPending,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// missing row and already-reviewed row are indistinguishable here;
			// check which it was for a precise error
			existing, getErr := r.GetByID(ctx, id)
			if getErr != nil {
				return nil, getErr
			}
			return nil, apperrors.NewConflictError(
				fmt.Sprintf("suggestion %s already %s", id, existing.Status))
		}
		return nil, fmt.Errorf("failed to update suggestion status: %w", err)
	}

	return s, nil
}

// ListPending returns pending suggestions oldest first.
func (r *SuggestionRepository) ListPending(ctx context.Context, limit, offset int) ([]*models.URLSuggestion, error) {
	query := `SELECT ` + suggestionColumns + `
		FROM url_suggestions
		WHERE status = $1
		ORDER BY created_at
		LIMIT $2 OFFSET $3`

	rows, err := r.db.Pool().Query(ctx, query, types.SuggestionPending, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending suggestions: %w", err)
	}
	defer rows.Close()

	var suggestions []*models.URLSuggestion
	for rows.Next() {
		s, err := scanSuggestion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan suggestion: %w", err)
		}
		suggestions = append(suggestions, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating suggestions: %w", err)
	}

	return suggestions, nil
}
