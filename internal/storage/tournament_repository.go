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
)

// TournamentRepository handles tournament persistence
type TournamentRepository struct {
	db *PostgresDB
}

// NewTournamentRepository creates a new tournament repository
func NewTournamentRepository(db *PostgresDB) *TournamentRepository {
	return &TournamentRepository{db: db}
}

const tournamentColumns = `
	id, name, sport, start_date, end_date, official_website_url, source_url,
	tournament_director, tournament_director_email,
	do_not_contact, do_not_contact_reason, do_not_contact_at,
	enrichment_paused, status, created_at, updated_at
`

// scanTournament scans one row into a Tournament.
func scanTournament(row pgx.Row) (*models.Tournament, error) {
	var t models.Tournament
	err := row.Scan(
		&t.ID,
		&t.Name,
		&t.Sport,
		&t.StartDate,
		&t.EndDate,
		&t.OfficialWebsiteURL,
		&t.SourceURL,
		&t.TournamentDirector,
		&t.TournamentDirectorEmail,
		&t.DoNotContact,
		&t.DoNotContactReason,
		&t.DoNotContactAt,
		&t.EnrichmentPaused,
		&t.Status,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// GetByID retrieves a tournament by id
func (r *TournamentRepository) GetByID(ctx context.Context, id string) (*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE id = $1`

	t, err := scanTournament(r.db.Pool().QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("tournament", id)
		}
		return nil, fmt.Errorf("failed to get tournament: %w", err)
	}

	return t, nil
}

// GetByIDs retrieves tournaments for a set of ids in one batch read.
// Unknown ids are simply absent from the result.
func (r *TournamentRepository) GetByIDs(ctx context.Context, ids []string) ([]*models.Tournament, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE id = ANY($1)`

	rows, err := r.db.Pool().Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get tournaments: %w", err)
	}
	defer rows.Close()

	var tournaments []*models.Tournament
	for rows.Next() {
		t, err := scanTournament(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tournament: %w", err)
		}
		tournaments = append(tournaments, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tournaments: %w", err)
	}

	return tournaments, nil
}

// List retrieves tournaments with pagination, newest first.
func (r *TournamentRepository) List(ctx context.Context, limit, offset int) ([]*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.db.Pool().Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	defer rows.Close()

	var tournaments []*models.Tournament
	for rows.Next() {
		t, err := scanTournament(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tournament: %w", err)
		}
		tournaments = append(tournaments, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tournaments: %w", err)
	}

	return tournaments, nil
}

// UpsertBySourceURL inserts a tournament keyed by its canonical source URL,
// updating mutable listing fields on conflict. Dates and director contact
// details survive a sparse re-scrape: a NULL in the new record never erases a
// previously stored value. Returns the row id and whether a new row was
// created.
func (r *TournamentRepository) UpsertBySourceURL(ctx context.Context, t *models.Tournament) (string, bool, error) {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}

	now := time.Now()

	query := `
		INSERT INTO tournaments (
			id, name, sport, start_date, end_date, official_website_url, source_url,
			tournament_director, tournament_director_email, status, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 'active', $10, $10)
		ON CONFLICT (source_url) DO UPDATE SET
			name = EXCLUDED.name,
			sport = EXCLUDED.sport,
			start_date = COALESCE(EXCLUDED.start_date, tournaments.start_date),
			end_date = COALESCE(EXCLUDED.end_date, tournaments.end_date),
			tournament_director = COALESCE(EXCLUDED.tournament_director, tournaments.tournament_director),
			tournament_director_email = COALESCE(EXCLUDED.tournament_director_email, tournaments.tournament_director_email),
			updated_at = EXCLUDED.updated_at
		RETURNING id, (created_at = updated_at)
	`

	var id string
	var created bool
	err := r.db.Pool().QueryRow(ctx, query,
		t.ID,
		t.Name,
		t.Sport,
		t.StartDate,
		t.EndDate,
		t.OfficialWebsiteURL,
		t.SourceURL,
		t.TournamentDirector,
		t.TournamentDirectorEmail,
		now,
	).Scan(&id, &created)
	if err != nil {
		return "", false, fmt.Errorf("failed to upsert tournament: %w", err)
	}

	return id, created, nil
}

// MarkDoNotContact flags the given tournaments as suppressed, skipping rows
// already flagged so the operation is idempotent. Returns the ids actually
// updated by this call.
func (r *TournamentRepository) MarkDoNotContact(ctx context.Context, ids []string, reason string, at time.Time) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `
		UPDATE tournaments
		SET do_not_contact = TRUE,
		    do_not_contact_reason = $2,
		    do_not_contact_at = $3,
		    updated_at = $3
		WHERE id = ANY($1) AND NOT do_not_contact
		RETURNING id
	`

	rows, err := r.db.Pool().Query(ctx, query, ids, reason, at)
	if err != nil {
		return nil, fmt.Errorf("failed to mark do-not-contact: %w", err)
	}
	defer rows.Close()

	var updated []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan updated id: %w", err)
		}
		updated = append(updated, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating updated ids: %w", err)
	}

	return updated, nil
}

// UpdateOfficialWebsite sets the tournament's official website URL.
func (r *TournamentRepository) UpdateOfficialWebsite(ctx context.Context, id, url string) error {
	query := `UPDATE tournaments SET official_website_url = $2, updated_at = $3 WHERE id = $1`

	result, err := r.db.Pool().Exec(ctx, query, id, url, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update official website: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("tournament", id)
	}

	return nil
}

// ListMissingWebsite returns active tournaments without an official website
// URL that have enrichment enabled.
func (r *TournamentRepository) ListMissingWebsite(ctx context.Context, limit int) ([]*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + `
		FROM tournaments
		WHERE official_website_url IS NULL
		  AND NOT enrichment_paused
		  AND status = 'active'
		ORDER BY created_at
		LIMIT $1`

	rows, err := r.db.Pool().Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments missing website: %w", err)
	}
	defer rows.Close()

	var tournaments []*models.Tournament
	for rows.Next() {
		t, err := scanTournament(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tournament: %w", err)
		}
		tournaments = append(tournaments, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tournaments: %w", err)
	}

	return tournaments, nil
}
