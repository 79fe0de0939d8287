package service

import (
	"context"

	apperrors "github.com/tournament-scout/internal/errors"
	"github.com/tournament-scout/internal/logging"
	"github.com/tournament-scout/internal/models"
	"github.com/tournament-scout/internal/retry"
)

// VenueStore is the venue persistence needed by merges.
type VenueStore interface {
	GetByID(ctx context.Context, id string) (*models.Venue, error)
	List(ctx context.Context, limit, offset int) ([]*models.Venue, error)
	MoveTournamentLinks(ctx context.Context, fromVenueID, toVenueID string) (int64, error)
	MoveHistory(ctx context.Context, fromVenueID, toVenueID string) (int64, error)
	AddHistory(ctx context.Context, h *models.VenueHistory) error
	Delete(ctx context.Context, id string) error
}

// VenueService handles venue dedup merges
type VenueService struct {
	venues VenueStore
}

// NewVenueService creates a new venue service
func NewVenueService(venues VenueStore) *VenueService {
	return &VenueService{venues: venues}
}

// MergeResult reports the outcome of a venue merge.
type MergeResult struct {
	MovedTournamentLinks int64 `json:"moved_tournament_links"`
	SourceRemoved        bool  `json:"source_removed"`
}

// Merge folds the source venue into the target: tournament links are
// re-pointed with duplicates dropped, history records follow best-effort, and
// the source row is deleted only when removeSource is set and re-linking
// succeeded. Re-running after a completed removal fails with NotFound rather
// than corrupting links.
func (s *VenueService) Merge(ctx context.Context, sourceID, targetID string, removeSource bool) (*MergeResult, error) {
	if sourceID == targetID {
		return nil, apperrors.NewInvalidInputError("source_venue_id", "source and target must differ")
	}

	source, err := s.venues.GetByID(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	target, err := s.venues.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	moved, err := s.venues.MoveTournamentLinks(ctx, source.ID, target.ID)
	if err != nil {
		return nil, apperrors.NewDatabaseError("move tournament links", err)
	}

	// Auxiliary data: losing a history record is acceptable, losing a link
	// is not.
	_ = retry.BestEffort(ctx, "move venue history", func(ctx context.Context) error {
		_, err := s.venues.MoveHistory(ctx, source.ID, target.ID)
		return err
	})
	_ = retry.BestEffort(ctx, "record merge note", func(ctx context.Context) error {
		return s.venues.AddHistory(ctx, &models.VenueHistory{
			VenueID: target.ID,
			Note:    "merged venue " + source.Name + " (" + source.ID + ")",
		})
	})

	result := &MergeResult{MovedTournamentLinks: moved}

	if removeSource {
		if err := s.venues.Delete(ctx, source.ID); err != nil {
			return nil, err
		}
		result.SourceRemoved = true
	}

	logging.FromContext(ctx).WithFields(map[string]interface{}{
		"source_venue_id": source.ID,
		"target_venue_id": target.ID,
		"moved_links":     moved,
		"source_removed":  result.SourceRemoved,
	}).Info("Venue merge completed")

	return result, nil
}

// GetVenue returns a venue by id.
func (s *VenueService) GetVenue(ctx context.Context, id string) (*models.Venue, error) {
	return s.venues.GetByID(ctx, id)
}

// ListVenues returns a page of venues.
func (s *VenueService) ListVenues(ctx context.Context, limit, offset int) ([]*models.Venue, error) {
	venues, err := s.venues.List(ctx, limit, offset)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list venues", err)
	}
	return venues, nil
}
