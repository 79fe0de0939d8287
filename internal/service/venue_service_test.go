package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/tournament-scout/internal/errors"
	"github.com/tournament-scout/internal/models"
)

// Mock venue store for testing
type mockVenueStore struct {
	venues     map[string]*models.Venue
	links      map[string]map[string]bool // venue id -> tournament ids
	history    []*models.VenueHistory
	historyErr error
	moveErr    error
	deleteErr  error
}

func newMockVenueStore() *mockVenueStore {
	return &mockVenueStore{
		venues: map[string]*models.Venue{},
		links:  map[string]map[string]bool{},
	}
}

func (m *mockVenueStore) GetByID(ctx context.Context, id string) (*models.Venue, error) {
	v, ok := m.venues[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("venue", id)
	}
	return v, nil
}

func (m *mockVenueStore) List(ctx context.Context, limit, offset int) ([]*models.Venue, error) {
	var out []*models.Venue
	for _, v := range m.venues {
		out = append(out, v)
	}
	return out, nil
}

func (m *mockVenueStore) MoveTournamentLinks(ctx context.Context, fromVenueID, toVenueID string) (int64, error) {
	if m.moveErr != nil {
		return 0, m.moveErr
	}
	if m.links[toVenueID] == nil {
		m.links[toVenueID] = map[string]bool{}
	}
	var moved int64
	for tournamentID := range m.links[fromVenueID] {
		if !m.links[toVenueID][tournamentID] {
			m.links[toVenueID][tournamentID] = true
			moved++
		}
	}
	delete(m.links, fromVenueID)
	return moved, nil
}

func (m *mockVenueStore) MoveHistory(ctx context.Context, fromVenueID, toVenueID string) (int64, error) {
	if m.historyErr != nil {
		return 0, m.historyErr
	}
	var n int64
	for _, h := range m.history {
		if h.VenueID == fromVenueID {
			h.VenueID = toVenueID
			n++
		}
	}
	return n, nil
}

func (m *mockVenueStore) AddHistory(ctx context.Context, h *models.VenueHistory) error {
	if m.historyErr != nil {
		return m.historyErr
	}
	m.history = append(m.history, h)
	return nil
}

func (m *mockVenueStore) Delete(ctx context.Context, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, ok := m.venues[id]; !ok {
		return apperrors.NewNotFoundError("venue", id)
	}
	delete(m.venues, id)
	return nil
}

func newMergeFixture() (*VenueService, *mockVenueStore) {
	store := newMockVenueStore()
	store.venues["v1"] = &models.Venue{ID: "v1", Name: "Riverside Park"}
	store.venues["v2"] = &models.Venue{ID: "v2", Name: "Riverside Park East"}
	store.links["v1"] = map[string]bool{"t1": true, "t2": true}
	store.links["v2"] = map[string]bool{"t2": true}
	return NewVenueService(store), store
}

func TestMerge_MovesLinksAndDropsDuplicates(t *testing.T) {
	svc, store := newMergeFixture()

	result, err := svc.Merge(context.Background(), "v1", "v2", false)
	require.NoError(t, err)

	// t2 was already linked to the target, so only t1 moved
	assert.Equal(t, int64(1), result.MovedTournamentLinks)
	assert.False(t, result.SourceRemoved)
	assert.True(t, store.links["v2"]["t1"])
	assert.True(t, store.links["v2"]["t2"])
	assert.Nil(t, store.links["v1"])
	// source kept
	assert.Contains(t, store.venues, "v1")
}

func TestMerge_RemovesSourceAfterRelinking(t *testing.T) {
	svc, store := newMergeFixture()

	result, err := svc.Merge(context.Background(), "v1", "v2", true)
	require.NoError(t, err)

	assert.True(t, result.SourceRemoved)
	assert.NotContains(t, store.venues, "v1")
}

func TestMerge_SecondRunAfterRemovalIsCleanNotFound(t *testing.T) {
	svc, _ := newMergeFixture()

	_, err := svc.Merge(context.Background(), "v1", "v2", true)
	require.NoError(t, err)

	_, err = svc.Merge(context.Background(), "v1", "v2", true)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestMerge_IdenticalIDsRejected(t *testing.T) {
	svc, _ := newMergeFixture()

	_, err := svc.Merge(context.Background(), "v1", "v1", false)
	require.Error(t, err)
	assert.Equal(t, 400, apperrors.GetHTTPStatusCode(err))
}

func TestMerge_MissingVenue(t *testing.T) {
	svc, _ := newMergeFixture()

	_, err := svc.Merge(context.Background(), "v1", "missing", false)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestMerge_HistoryFailureIsNotFatal(t *testing.T) {
	svc, store := newMergeFixture()
	store.historyErr = errors.New("history table locked")

	result, err := svc.Merge(context.Background(), "v1", "v2", true)
	require.NoError(t, err)
	assert.True(t, result.SourceRemoved)
}

func TestMerge_LinkMoveFailureIsFatal(t *testing.T) {
	svc, store := newMergeFixture()
	store.moveErr = errors.New("deadlock")

	_, err := svc.Merge(context.Background(), "v1", "v2", true)
	require.Error(t, err)
	// source must survive a failed merge
	assert.Contains(t, store.venues, "v1")
}
