package service

import (
	"context"

	apperrors "github.com/tournament-scout/internal/errors"
	"github.com/tournament-scout/internal/models"
)

// TournamentReadStore is the read-side tournament persistence.
type TournamentReadStore interface {
	GetByID(ctx context.Context, id string) (*models.Tournament, error)
	List(ctx context.Context, limit, offset int) ([]*models.Tournament, error)
}

// TournamentService serves tournament reads for the API
type TournamentService struct {
	tournaments TournamentReadStore
}

// NewTournamentService creates a new tournament service
func NewTournamentService(tournaments TournamentReadStore) *TournamentService {
	return &TournamentService{tournaments: tournaments}
}

// GetTournament returns a tournament by id.
func (s *TournamentService) GetTournament(ctx context.Context, id string) (*models.Tournament, error) {
	return s.tournaments.GetByID(ctx, id)
}

// ListTournaments returns a page of tournaments.
func (s *TournamentService) ListTournaments(ctx context.Context, limit, offset int) ([]*models.Tournament, error) {
	tournaments, err := s.tournaments.List(ctx, limit, offset)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list tournaments", err)
	}
	return tournaments, nil
}
