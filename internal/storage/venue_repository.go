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

// VenueRepository handles venue persistence and the tournament-venue links
// used by merges.
type VenueRepository struct {
	db *PostgresDB
}

// NewVenueRepository creates a new venue repository
func NewVenueRepository(db *PostgresDB) *VenueRepository {
	return &VenueRepository{db: db}
}

const venueColumns = `
	id, name, street, city, state, zip, latitude, longitude,
	address_fingerprint, created_at, updated_at
`

func scanVenue(row pgx.Row) (*models.Venue, error) {
	var v models.Venue
	err := row.Scan(
		&v.ID,
		&v.Name,
		&v.Street,
		&v.City,
		&v.State,
		&v.Zip,
		&v.Latitude,
		&v.Longitude,
		&v.AddressFingerprint,
		&v.CreatedAt,
		&v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// GetByID retrieves a venue by id
func (r *VenueRepository) GetByID(ctx context.Context, id string) (*models.Venue, error) {
	query := `SELECT ` + venueColumns + ` FROM venues WHERE id = $1`

	v, err := scanVenue(r.db.Pool().QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("venue", id)
		}
		return nil, fmt.Errorf("failed to get venue: %w", err)
	}

	return v, nil
}

// List retrieves venues with pagination.
func (r *VenueRepository) List(ctx context.Context, limit, offset int) ([]*models.Venue, error) {
	query := `SELECT ` + venueColumns + ` FROM venues ORDER BY name LIMIT $1 OFFSET $2`

	rows, err := r.db.Pool().Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list venues: %w", err)
	}
	defer rows.Close()

	var venues []*models.Venue
	for rows.Next() {
		v, err := scanVenue(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan venue: %w", err)
		}
		venues = append(venues, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating venues: %w", err)
	}

	return venues, nil
}

// UpsertByFingerprint inserts a venue keyed by its address fingerprint.
// On conflict the existing row wins; only the name is refreshed when the
// stored one is empty. Returns the surviving row.
func (r *VenueRepository) UpsertByFingerprint(ctx context.Context, v *models.Venue) (*models.Venue, error) {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}

	now := time.Now()

	query := `
		INSERT INTO venues (
			id, name, street, city, state, zip, address_fingerprint, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		ON CONFLICT (address_fingerprint) DO UPDATE SET
			name = CASE WHEN venues.name = '' THEN EXCLUDED.name ELSE venues.name END,
			updated_at = EXCLUDED.updated_at
		RETURNING ` + venueColumns

	stored, err := scanVenue(r.db.Pool().QueryRow(ctx, query,
		v.ID,
		v.Name,
		v.Street,
		v.City,
		v.State,
		v.Zip,
		v.AddressFingerprint,
		now,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert venue: %w", err)
	}

	return stored, nil
}

// LinkTournament associates a tournament with a venue. Linking the same pair
// twice is a no-op.
func (r *VenueRepository) LinkTournament(ctx context.Context, tournamentID, venueID string) error {
	query := `
		INSERT INTO tournament_venues (tournament_id, venue_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (tournament_id, venue_id) DO NOTHING
	`

	if _, err := r.db.Pool().Exec(ctx, query, tournamentID, venueID, time.Now()); err != nil {
		return fmt.Errorf("failed to link tournament to venue: %w", err)
	}

	return nil
}

// MoveTournamentLinks re-points all tournament links from one venue to
// another inside a transaction. Links whose tournament already points at the
// target venue are dropped rather than duplicated. Returns how many links
// survived the move.
func (r *VenueRepository) MoveTournamentLinks(ctx context.Context, fromVenueID, toVenueID string) (int64, error) {
	tx, err := r.db.Pool().Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx) // nolint:errcheck // no-op after commit
	}()

	insertQuery := `
		INSERT INTO tournament_venues (tournament_id, venue_id, created_at)
		SELECT tournament_id, $2, $3
		FROM tournament_venues
		WHERE venue_id = $1
		ON CONFLICT (tournament_id, venue_id) DO NOTHING
	`

	result, err := tx.Exec(ctx, insertQuery, fromVenueID, toVenueID, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to copy tournament links: %w", err)
	}
	moved := result.RowsAffected()

	deleteQuery := `DELETE FROM tournament_venues WHERE venue_id = $1`
	if _, err := tx.Exec(ctx, deleteQuery, fromVenueID); err != nil {
		return 0, fmt.Errorf("failed to remove old tournament links: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit link move: %w", err)
	}

	return moved, nil
}

// MoveHistory re-points venue history records from one venue to another.
// Callers treat a failure here as a warning, not a merge failure.
func (r *VenueRepository) MoveHistory(ctx context.Context, fromVenueID, toVenueID string) (int64, error) {
	query := `UPDATE venue_history SET venue_id = $2 WHERE venue_id = $1`

	result, err := r.db.Pool().Exec(ctx, query, fromVenueID, toVenueID)
	if err != nil {
		return 0, fmt.Errorf("failed to move venue history: %w", err)
	}

	return result.RowsAffected(), nil
}

// AddHistory appends an audit note to a venue.
func (r *VenueRepository) AddHistory(ctx context.Context, h *models.VenueHistory) error {
	if h.ID == "" {
		h.ID = uuid.New().String()
	}

	query := `
		INSERT INTO venue_history (id, venue_id, tournament_id, note, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	if _, err := r.db.Pool().Exec(ctx, query, h.ID, h.VenueID, h.TournamentID, h.Note, time.Now()); err != nil {
		return fmt.Errorf("failed to add venue history: %w", err)
	}

	return nil
}

// Delete removes a venue. The merge flow calls this only after all links have
// been moved off the row.
func (r *VenueRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Pool().Exec(ctx, `DELETE FROM venues WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete venue: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("venue", id)
	}

	return nil
}

// ListMissingCoordinates returns venues without latitude/longitude, oldest
// first, for the geocoding pass.
func (r *VenueRepository) ListMissingCoordinates(ctx context.Context, limit int) ([]*models.Venue, error) {
	query := `SELECT ` + venueColumns + `
		FROM venues
		WHERE latitude IS NULL OR longitude IS NULL
		ORDER BY created_at
		LIMIT $1`

	rows, err := r.db.Pool().Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list venues missing coordinates: %w", err)
	}
	defer rows.Close()

	var venues []*models.Venue
	for rows.Next() {
		v, err := scanVenue(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan venue: %w", err)
		}
		venues = append(venues, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating venues: %w", err)
	}

	return venues, nil
}

// UpdateCoordinates stores a geocoding result.
func (r *VenueRepository) UpdateCoordinates(ctx context.Context, id string, lat, lng float64) error {
	query := `UPDATE venues SET latitude = $2, longitude = $3, updated_at = $4 WHERE id = $1`

	result, err := r.db.Pool().Exec(ctx, query, id, lat, lng, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update venue coordinates: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("venue", id)
	}

	return nil
}
