package service

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/tournament-scout/internal/adapter"
	apperrors "github.com/tournament-scout/internal/errors"
	"github.com/tournament-scout/internal/logging"
	"github.com/tournament-scout/internal/models"
	"github.com/tournament-scout/internal/types"
)

// SearchProvider discovers candidate websites.
type SearchProvider interface {
	Search(ctx context.Context, query string, limit int) ([]adapter.SearchResult, error)
}

// GeocodeProvider resolves addresses to coordinates.
type GeocodeProvider interface {
	Geocode(ctx context.Context, street, city, state, zip string) (*adapter.Coordinates, error)
}

// TournamentEnrichStore is the tournament persistence needed by enrichment.
type TournamentEnrichStore interface {
	ListMissingWebsite(ctx context.Context, limit int) ([]*models.Tournament, error)
}

// VenueEnrichStore is the venue persistence needed by geocoding.
type VenueEnrichStore interface {
	ListMissingCoordinates(ctx context.Context, limit int) ([]*models.Venue, error)
	UpdateCoordinates(ctx context.Context, id string, lat, lng float64) error
}

// SuggestionSubmitter records discovered URLs as pending suggestions.
type SuggestionSubmitter interface {
	Submit(ctx context.Context, tournamentID, rawURL string, submitterEmail *string, source types.SuggestionSource) (*models.URLSuggestion, error)
}

// EnrichmentService fills gaps left by ingestion: official websites via the
// search provider and venue coordinates via the places provider. Batches are
// capped and run with bounded concurrency inside a single request.
type EnrichmentService struct {
	tournaments TournamentEnrichStore
	venues      VenueEnrichStore
	suggestions SuggestionSubmitter
	search      SearchProvider
	geocoder    GeocodeProvider
	batchSize   int
	parallel    int
}

// NewEnrichmentService creates a new enrichment service
func NewEnrichmentService(
	tournaments TournamentEnrichStore,
	venues VenueEnrichStore,
	suggestions SuggestionSubmitter,
	search SearchProvider,
	geocoder GeocodeProvider,
	batchSize, parallel int,
) *EnrichmentService {
	return &EnrichmentService{
		tournaments: tournaments,
		venues:      venues,
		suggestions: suggestions,
		search:      search,
		geocoder:    geocoder,
		batchSize:   batchSize,
		parallel:    parallel,
	}
}

// EnrichResult reports per-pass counts.
type EnrichResult struct {
	Processed int `json:"processed"`
	Enriched  int `json:"enriched"`
	Failed    int `json:"failed"`
}

// DiscoverWebsites searches for official websites of tournaments that lack
// one and records the top hit as a pending URL suggestion for review. Nothing
// is written to the tournament directly; the review flow decides. Per-item
// provider failures are counted, not fatal.
func (s *EnrichmentService) DiscoverWebsites(ctx context.Context) (*EnrichResult, error) {
	tournaments, err := s.tournaments.ListMissingWebsite(ctx, s.batchSize)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list tournaments missing website", err)
	}

	logger := logging.FromContext(ctx)

	var enriched, failed int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallel)

	for _, t := range tournaments {
		t := t
		g.Go(func() error {
			query := t.Name
			if t.Sport != "" {
				query = fmt.Sprintf("%s %s tournament", t.Name, t.Sport)
			}

			results, err := s.search.Search(gctx, query, 3)
			if err != nil {
				logger.WithError(err).WithField("tournament_id", t.ID).Warn("Website search failed")
				atomic.AddInt64(&failed, 1)
				return nil
			}
			if len(results) == 0 {
				return nil
			}

			if _, err := s.suggestions.Submit(gctx, t.ID, results[0].URL, nil, types.SuggestionSourceEnrichment); err != nil {
				logger.WithError(err).WithField("tournament_id", t.ID).Warn("Failed to record discovered website")
				atomic.AddInt64(&failed, 1)
				return nil
			}

			atomic.AddInt64(&enriched, 1)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &EnrichResult{
		Processed: len(tournaments),
		Enriched:  int(enriched),
		Failed:    int(failed),
	}, nil
}

// GeocodeVenues resolves coordinates for venues that lack them. Addresses the
// provider cannot resolve are skipped without counting as failures; provider
// errors are counted per venue.
func (s *EnrichmentService) GeocodeVenues(ctx context.Context) (*EnrichResult, error) {
	venues, err := s.venues.ListMissingCoordinates(ctx, s.batchSize)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list venues missing coordinates", err)
	}

	logger := logging.FromContext(ctx)

	var enriched, failed int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallel)

	for _, v := range venues {
		v := v
		g.Go(func() error {
			coords, err := s.geocoder.Geocode(gctx, v.Street, v.City, v.State, v.Zip)
			if err != nil {
				if apperrors.IsNotFound(err) {
					return nil
				}
				logger.WithError(err).WithField("venue_id", v.ID).Warn("Geocoding failed")
				atomic.AddInt64(&failed, 1)
				return nil
			}

			if err := s.venues.UpdateCoordinates(gctx, v.ID, coords.Latitude, coords.Longitude); err != nil {
				logger.WithError(err).WithField("venue_id", v.ID).Warn("Failed to store coordinates")
				atomic.AddInt64(&failed, 1)
				return nil
			}

			atomic.AddInt64(&enriched, 1)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &EnrichResult{
		Processed: len(venues),
		Enriched:  int(enriched),
		Failed:    int(failed),
	}, nil
}
