package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tournament-scout/internal/models"
	"github.com/tournament-scout/internal/types"
)

// OutreachRepository handles outreach row persistence. The table carries a
// unique constraint on tournament_id so concurrent queueing cannot create
// two rows for the same tournament.
type OutreachRepository struct {
	db *PostgresDB
}

// NewOutreachRepository creates a new outreach repository
func NewOutreachRepository(db *PostgresDB) *OutreachRepository {
	return &OutreachRepository{db: db}
}

const outreachColumns = `
	id, tournament_id, contact_name, contact_email, status, notes, created_at, updated_at
`

func scanOutreachRow(row pgx.Row) (*models.OutreachRow, error) {
	var o models.OutreachRow
	err := row.Scan(
		&o.ID,
		&o.TournamentID,
		&o.ContactName,
		&o.ContactEmail,
		&o.Status,
		&o.Notes,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// ListByTournamentIDs returns existing outreach rows for the given
// tournaments.
func (r *OutreachRepository) ListByTournamentIDs(ctx context.Context, tournamentIDs []string) ([]*models.OutreachRow, error) {
	if len(tournamentIDs) == 0 {
		return nil, nil
	}

	query := `SELECT ` + outreachColumns + ` FROM outreach_rows WHERE tournament_id = ANY($1)`

	rows, err := r.db.Pool().Query(ctx, query, tournamentIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list outreach rows: %w", err)
	}
	defer rows.Close()

	var results []*models.OutreachRow
	for rows.Next() {
		o, err := scanOutreachRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan outreach row: %w", err)
		}
		results = append(results, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating outreach rows: %w", err)
	}

	return results, nil
}

// InsertDrafts creates draft outreach rows for the given tournaments in one
// batched round trip. Tournaments that already have a row are skipped by the
// unique constraint, so a concurrent duplicate queue request degrades to a
// no-op. Returns the tournament ids for which a row was actually created.
func (r *OutreachRepository) InsertDrafts(ctx context.Context, drafts []*models.OutreachRow) ([]string, error) {
	if len(drafts) == 0 {
		return nil, nil
	}

	now := time.Now()

	query := `
		INSERT INTO outreach_rows (
			id, tournament_id, contact_name, contact_email, status, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (tournament_id) DO NOTHING
		RETURNING tournament_id
	`

	batch := &pgx.Batch{}
	for _, d := range drafts {
		if d.ID == "" {
			d.ID = uuid.New().String()
		}
		batch.Queue(query, d.ID, d.TournamentID, d.ContactName, d.ContactEmail, types.OutreachDraft, now)
	}

	results := r.db.Pool().SendBatch(ctx, batch)
	defer results.Close() // nolint:errcheck // cleanup in defer

	var created []string
	for range drafts {
		var tournamentID string
		err := results.QueryRow().Scan(&tournamentID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				// conflict: a row already exists for this tournament
				continue
			}
			return nil, fmt.Errorf("failed to insert outreach draft: %w", err)
		}
		created = append(created, tournamentID)
	}

	return created, nil
}

// SuppressActiveByTournamentIDs marks non-terminal outreach rows for the given
// tournaments as suppressed. Already-suppressed and sent rows are untouched.
// Returns the number of rows transitioned.
func (r *OutreachRepository) SuppressActiveByTournamentIDs(ctx context.Context, tournamentIDs []string) (int64, error) {
	if len(tournamentIDs) == 0 {
		return 0, nil
	}

	query := `
		UPDATE outreach_rows
		SET status = $2, updated_at = $3
		WHERE tournament_id = ANY($1) AND status = $4
	`

	result, err := r.db.Pool().Exec(ctx, query,
		tournamentIDs,
		types.OutreachSuppressed,
		time.Now(),
		types.OutreachDraft,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to suppress outreach rows: %w", err)
	}

	return result.RowsAffected(), nil
}

// ReconcileSuppressed suppresses draft rows belonging to tournaments flagged
// do-not-contact, repairing any cascade that failed at suppression time.
// Returns the number of rows repaired.
func (r *OutreachRepository) ReconcileSuppressed(ctx context.Context) (int64, error) {
	query := `
		UPDATE outreach_rows o
		SET status = $1, updated_at = $2
		FROM tournaments t
		WHERE o.tournament_id = t.id
		  AND t.do_not_contact
		  AND o.status = $3
	`

	result, err := r.db.Pool().Exec(ctx, query,
		types.OutreachSuppressed,
		time.Now(),
		types.OutreachDraft,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to reconcile suppressed outreach rows: %w", err)
	}

	return result.RowsAffected(), nil
}
