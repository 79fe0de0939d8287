package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	apperrors "github.com/tournament-scout/internal/errors"
	"github.com/tournament-scout/internal/models"
)

// UserRepository reads caller identities.
type UserRepository struct {
	db *PostgresDB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *PostgresDB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `
	id, email, role, contact_terms_accepted_at, created_at, updated_at
`

// GetByID retrieves a user by id
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	var u models.User
	err := r.db.Pool().QueryRow(ctx, query, id).Scan(
		&u.ID,
		&u.Email,
		&u.Role,
		&u.ContactTermsAcceptedAt,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("user", id)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &u, nil
}

// AcceptContactTerms records the caller's acceptance of the contact terms.
// Re-accepting keeps the original timestamp.
func (r *UserRepository) AcceptContactTerms(ctx context.Context, id string) error {
	query := `
		UPDATE users
		SET contact_terms_accepted_at = COALESCE(contact_terms_accepted_at, $2),
		    updated_at = $2
		WHERE id = $1
	`

	result, err := r.db.Pool().Exec(ctx, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("failed to accept contact terms: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("user", id)
	}

	return nil
}
