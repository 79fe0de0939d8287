package service

import (
	"context"
	"fmt"

	apperrors "github.com/tournament-scout/internal/errors"
	"github.com/tournament-scout/internal/logging"
	"github.com/tournament-scout/internal/models"
	"github.com/tournament-scout/internal/normalize"
)

// TournamentIngestStore is the tournament persistence needed by ingestion.
type TournamentIngestStore interface {
	UpsertBySourceURL(ctx context.Context, t *models.Tournament) (string, bool, error)
}

// VenueIngestStore is the venue persistence needed by ingestion.
type VenueIngestStore interface {
	UpsertByFingerprint(ctx context.Context, v *models.Venue) (*models.Venue, error)
	LinkTournament(ctx context.Context, tournamentID, venueID string) error
}

// IngestService turns scraped source records into tournaments and venues
type IngestService struct {
	tournaments  TournamentIngestStore
	venues       VenueIngestStore
	maxBatchSize int
}

// NewIngestService creates a new ingest service
func NewIngestService(tournaments TournamentIngestStore, venues VenueIngestStore, maxBatchSize int) *IngestService {
	return &IngestService{
		tournaments:  tournaments,
		venues:       venues,
		maxBatchSize: maxBatchSize,
	}
}

// IngestResult reports per-batch counts.
type IngestResult struct {
	TournamentsCreated int `json:"tournaments_created"`
	TournamentsUpdated int `json:"tournaments_updated"`
	VenuesLinked       int `json:"venues_linked"`
	Failed             int `json:"failed"`
}

// Ingest upserts a batch of source records. Source URLs are canonicalized so
// re-scraping the same listing updates the existing tournament; venue
// addresses are fingerprinted so the same location lands on one venue row no
// matter how each listing spelled it. A record that fails normalization is
// counted and skipped, never aborts the batch.
func (s *IngestService) Ingest(ctx context.Context, records []*models.SourceRecord) (*IngestResult, error) {
	if len(records) == 0 {
		return nil, apperrors.NewInvalidInputError("records", "must not be empty")
	}
	if len(records) > s.maxBatchSize {
		return nil, apperrors.NewInvalidInputError("records",
			fmt.Sprintf("batch size %d exceeds maximum %d", len(records), s.maxBatchSize))
	}

	logger := logging.FromContext(ctx)
	result := &IngestResult{}

	for _, rec := range records {
		if err := s.ingestOne(ctx, rec, result); err != nil {
			logger.WithError(err).WithField("source_url", rec.SourceURL).Warn("Failed to ingest source record")
			result.Failed++
		}
	}

	return result, nil
}

func (s *IngestService) ingestOne(ctx context.Context, rec *models.SourceRecord, result *IngestResult) error {
	if rec.Name == "" {
		return apperrors.NewInvalidInputError("name", "must not be empty")
	}

	sourceURL, err := normalize.URL(rec.SourceURL)
	if err != nil {
		return err
	}

	tournament := &models.Tournament{
		Name:      rec.Name,
		Sport:     rec.Sport,
		StartDate: rec.StartDate,
		EndDate:   rec.EndDate,
		SourceURL: &sourceURL.Canonical,
	}
	if rec.DirectorName != "" {
		tournament.TournamentDirector = &rec.DirectorName
	}
	if rec.DirectorEmail != "" {
		tournament.TournamentDirectorEmail = &rec.DirectorEmail
	}
	if rec.WebsiteURL != "" {
		website, err := normalize.URL(rec.WebsiteURL)
		if err != nil {
			return err
		}
		tournament.OfficialWebsiteURL = &website.Normalized
	}

	tournamentID, created, err := s.tournaments.UpsertBySourceURL(ctx, tournament)
	if err != nil {
		return err
	}
	if created {
		result.TournamentsCreated++
	} else {
		result.TournamentsUpdated++
	}

	if rec.VenueStreet == "" && rec.VenueCity == "" {
		return nil
	}

	venue, err := s.venues.UpsertByFingerprint(ctx, &models.Venue{
		Name:               rec.VenueName,
		Street:             rec.VenueStreet,
		City:               rec.VenueCity,
		State:              rec.VenueState,
		Zip:                rec.VenueZip,
		AddressFingerprint: normalize.FingerprintAddress(rec.VenueStreet, rec.VenueCity, rec.VenueState, rec.VenueZip),
	})
	if err != nil {
		return err
	}

	if err := s.venues.LinkTournament(ctx, tournamentID, venue.ID); err != nil {
		return err
	}
	result.VenuesLinked++

	return nil
}
