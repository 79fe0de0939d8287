package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tournament-scout/internal/models"
)

// AssignorRepository reads assignor directory entries.
type AssignorRepository struct {
	db *PostgresDB
}

// NewAssignorRepository creates a new assignor repository
func NewAssignorRepository(db *PostgresDB) *AssignorRepository {
	return &AssignorRepository{db: db}
}

const assignorColumns = `
	id, name, organization, email, phone, region, created_at, updated_at
`

func scanAssignor(row pgx.Row) (*models.Assignor, error) {
	var a models.Assignor
	err := row.Scan(
		&a.ID,
		&a.Name,
		&a.Organization,
		&a.Email,
		&a.Phone,
		&a.Region,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// GetByIDs retrieves assignors for a set of ids. Unknown ids are absent from
// the result; the caller decides whether that is an error.
func (r *AssignorRepository) GetByIDs(ctx context.Context, ids []string) ([]*models.Assignor, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `SELECT ` + assignorColumns + ` FROM assignors WHERE id = ANY($1)`

	rows, err := r.db.Pool().Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get assignors: %w", err)
	}
	defer rows.Close()

	var assignors []*models.Assignor
	for rows.Next() {
		a, err := scanAssignor(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan assignor: %w", err)
		}
		assignors = append(assignors, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating assignors: %w", err)
	}

	return assignors, nil
}

// List retrieves assignors with pagination.
func (r *AssignorRepository) List(ctx context.Context, limit, offset int) ([]*models.Assignor, error) {
	query := `SELECT ` + assignorColumns + ` FROM assignors ORDER BY name LIMIT $1 OFFSET $2`

	rows, err := r.db.Pool().Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignors: %w", err)
	}
	defer rows.Close()

	var assignors []*models.Assignor
	for rows.Next() {
		a, err := scanAssignor(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan assignor: %w", err)
		}
		assignors = append(assignors, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating assignors: %w", err)
	}

	return assignors, nil
}
