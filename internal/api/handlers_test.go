package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/tournament-scout/internal/errors"
	"github.com/tournament-scout/internal/models"
	"github.com/tournament-scout/internal/service"
	"github.com/tournament-scout/internal/types"
)

// Fake services for handler tests

type fakeUserStore struct {
	users    map[string]*models.User
	accepted []string
}

func (f *fakeUserStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("user", id)
	}
	return u, nil
}

func (f *fakeUserStore) AcceptContactTerms(ctx context.Context, id string) error {
	f.accepted = append(f.accepted, id)
	return nil
}

type fakeOutreachService struct {
	queueResult    *service.QueueResult
	suppressResult *service.SuppressResult
	repaired       int64
	err            error
}

func (f *fakeOutreachService) QueueOutreach(ctx context.Context, tournamentIDs []string) (*service.QueueResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.queueResult, nil
}

func (f *fakeOutreachService) Suppress(ctx context.Context, tournamentIDs []string, reason string) (*service.SuppressResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.suppressResult, nil
}

func (f *fakeOutreachService) ReconcileSuppression(ctx context.Context) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.repaired, nil
}

type fakeVenueService struct {
	mergeResult *service.MergeResult
	venue       *models.Venue
	err         error
}

func (f *fakeVenueService) Merge(ctx context.Context, sourceID, targetID string, removeSource bool) (*service.MergeResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.mergeResult, nil
}

func (f *fakeVenueService) GetVenue(ctx context.Context, id string) (*models.Venue, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.venue, nil
}

func (f *fakeVenueService) ListVenues(ctx context.Context, limit, offset int) ([]*models.Venue, error) {
	return nil, nil
}

type fakeSuggestionService struct {
	suggestion *models.URLSuggestion
	err        error
}

func (f *fakeSuggestionService) Submit(ctx context.Context, tournamentID, rawURL string, submitterEmail *string, source types.SuggestionSource) (*models.URLSuggestion, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.suggestion, nil
}

func (f *fakeSuggestionService) Approve(ctx context.Context, id, reviewerID string) (*models.URLSuggestion, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.suggestion, nil
}

func (f *fakeSuggestionService) Reject(ctx context.Context, id, reviewerID string) (*models.URLSuggestion, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.suggestion, nil
}

func (f *fakeSuggestionService) ListPending(ctx context.Context, limit, offset int) ([]*models.URLSuggestion, error) {
	return nil, nil
}

type fakeContactService struct {
	contacts []*models.RevealedContact
	err      error
	lastIP   string
}

func (f *fakeContactService) Reveal(ctx context.Context, user *models.User, clientIP string, assignorIDs []string) ([]*models.RevealedContact, error) {
	f.lastIP = clientIP
	if f.err != nil {
		return nil, f.err
	}
	return f.contacts, nil
}

func (f *fakeContactService) ListAssignors(ctx context.Context, limit, offset int) ([]*models.Assignor, error) {
	return nil, nil
}

type fakeTournamentService struct {
	tournament *models.Tournament
	err        error
}

func (f *fakeTournamentService) GetTournament(ctx context.Context, id string) (*models.Tournament, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.tournament, nil
}

func (f *fakeTournamentService) ListTournaments(ctx context.Context, limit, offset int) ([]*models.Tournament, error) {
	return []*models.Tournament{f.tournament}, nil
}

type fakeIngestService struct {
	result *service.IngestResult
	err    error
}

func (f *fakeIngestService) Ingest(ctx context.Context, records []*models.SourceRecord) (*service.IngestResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeEnrichService struct {
	result *service.EnrichResult
	err    error
}

func (f *fakeEnrichService) DiscoverWebsites(ctx context.Context) (*service.EnrichResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeEnrichService) GeocodeVenues(ctx context.Context) (*service.EnrichResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type testFixture struct {
	server   *Server
	users    *fakeUserStore
	outreach *fakeOutreachService
	venues   *fakeVenueService
	suggest  *fakeSuggestionService
	contacts *fakeContactService
	ingest   *fakeIngestService
	enrich   *fakeEnrichService
}

func newTestFixture() *testFixture {
	accepted := time.Now()
	users := &fakeUserStore{users: map[string]*models.User{
		"admin-1":  {ID: "admin-1", Role: types.RoleAdmin, ContactTermsAcceptedAt: &accepted},
		"member-1": {ID: "member-1", Role: types.RoleMember, ContactTermsAcceptedAt: &accepted},
	}}

	f := &testFixture{
		users:    users,
		outreach: &fakeOutreachService{},
		venues:   &fakeVenueService{},
		suggest:  &fakeSuggestionService{},
		contacts: &fakeContactService{},
		ingest:   &fakeIngestService{},
		enrich:   &fakeEnrichService{},
	}

	f.server = NewServer(
		&ServerConfig{Host: "127.0.0.1", Port: "0", RequestsPerSec: 1000, Burst: 1000},
		&ServerDeps{
			Outreach:    f.outreach,
			Venues:      f.venues,
			Suggestions: f.suggest,
			Contacts:    f.contacts,
			Tournaments: &fakeTournamentService{tournament: &models.Tournament{ID: "t1"}},
			Ingest:      f.ingest,
			Enrichment:  f.enrich,
			Users:       users,
		},
	)

	return f
}

func (f *testFixture) do(t *testing.T, method, path, userID string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}

	w := httptest.NewRecorder()
	f.server.Router().ServeHTTP(w, req)
	return w
}

func TestQueueOutreach_ReturnsCounts(t *testing.T) {
	f := newTestFixture()
	f.outreach.queueResult = &service.QueueResult{Created: 2, AlreadyExists: 1, SkippedSuppressed: 1, CreatedIDs: []string{"t1", "t2"}}

	w := f.do(t, "POST", "/api/outreach/queue", "admin-1", map[string]interface{}{
		"tournament_ids": []string{"t1", "t2", "t3", "t4"},
	})

	require.Equal(t, http.StatusOK, w.Code)

	var result service.QueueResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, 2, result.Created)
	assert.Equal(t, []string{"t1", "t2"}, result.CreatedIDs)
}

func TestQueueOutreach_RequiresAdmin(t *testing.T) {
	f := newTestFixture()

	w := f.do(t, "POST", "/api/outreach/queue", "member-1", map[string]interface{}{"tournament_ids": []string{"t1"}})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.do(t, "POST", "/api/outreach/queue", "", map[string]interface{}{"tournament_ids": []string{"t1"}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.do(t, "POST", "/api/outreach/queue", "ghost", map[string]interface{}{"tournament_ids": []string{"t1"}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestQueueOutreach_InvalidJSON(t *testing.T) {
	f := newTestFixture()

	req := httptest.NewRequest("POST", "/api/outreach/queue", bytes.NewReader([]byte("not json")))
	req.Header.Set("X-User-ID", "admin-1")
	w := httptest.NewRecorder()
	f.server.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSuppress_MapsServiceError(t *testing.T) {
	f := newTestFixture()
	f.outreach.err = apperrors.NewInvalidInputError("tournament_ids", "must not be empty")

	w := f.do(t, "POST", "/api/outreach/suppress", "admin-1", map[string]interface{}{"tournament_ids": []string{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "INVALID_INPUT", resp.Error.Code)
}

func TestReconcile_ReturnsRepairCount(t *testing.T) {
	f := newTestFixture()
	f.outreach.repaired = 4

	w := f.do(t, "POST", "/api/outreach/reconcile", "admin-1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]int64
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(4), resp["repaired"])
}

func TestMergeVenues_Success(t *testing.T) {
	f := newTestFixture()
	f.venues.mergeResult = &service.MergeResult{MovedTournamentLinks: 3, SourceRemoved: true}

	w := f.do(t, "POST", "/api/venues/merge", "admin-1", map[string]interface{}{
		"source_venue_id": "v1",
		"target_venue_id": "v2",
		"remove_source":   true,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["ok"])
	assert.Equal(t, float64(3), resp["moved_tournament_links"])
	assert.Equal(t, true, resp["source_removed"])
}

func TestMergeVenues_NotFound(t *testing.T) {
	f := newTestFixture()
	f.venues.err = apperrors.NewNotFoundError("venue", "v9")

	w := f.do(t, "POST", "/api/venues/merge", "admin-1", map[string]interface{}{
		"source_venue_id": "v1",
		"target_venue_id": "v9",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubmitSuggestion_PublicNoAuth(t *testing.T) {
	f := newTestFixture()
	f.suggest.suggestion = &models.URLSuggestion{ID: "s1", TournamentID: "t1", SuggestedURL: "https://example.com"}

	w := f.do(t, "POST", "/api/suggestions", "", map[string]interface{}{
		"tournament_id": "t1",
		"suggested_url": "example.com",
	})
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestApproveSuggestion_Conflict(t *testing.T) {
	f := newTestFixture()
	f.suggest.err = apperrors.NewConflictError("suggestion s1 already rejected")

	w := f.do(t, "POST", "/api/suggestions/s1/approve", "admin-1", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRevealContacts_PassesClientIP(t *testing.T) {
	f := newTestFixture()
	f.contacts.contacts = []*models.RevealedContact{{ID: "a1", Email: "sam@example.com"}}

	req := httptest.NewRequest("POST", "/api/contacts/reveal", bytes.NewReader([]byte(`{"assignor_ids":["a1"]}`)))
	req.Header.Set("X-User-ID", "member-1")
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	w := httptest.NewRecorder()
	f.server.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "203.0.113.9", f.contacts.lastIP)
}

func TestRevealContacts_RateLimited(t *testing.T) {
	f := newTestFixture()
	f.contacts.err = apperrors.NewRateLimitedError("member-1", nil)

	w := f.do(t, "POST", "/api/contacts/reveal", "member-1", map[string]interface{}{"assignor_ids": []string{"a1"}})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestAcceptTerms_RecordsAcceptance(t *testing.T) {
	f := newTestFixture()

	w := f.do(t, "POST", "/api/contacts/accept-terms", "member-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"member-1"}, f.users.accepted)
}

func TestIngest_AdminOnly(t *testing.T) {
	f := newTestFixture()
	f.ingest.result = &service.IngestResult{TournamentsCreated: 1}

	w := f.do(t, "POST", "/api/ingest", "member-1", map[string]interface{}{"records": []interface{}{}})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.do(t, "POST", "/api/ingest", "admin-1", map[string]interface{}{
		"records": []map[string]interface{}{{"name": "Cup", "sourceUrl": "https://example.com/cup"}},
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestEnrichEndpoints_ReturnCounts(t *testing.T) {
	f := newTestFixture()
	f.enrich.result = &service.EnrichResult{Processed: 5, Enriched: 3, Failed: 1}

	for _, path := range []string{"/api/enrich/websites", "/api/enrich/geocode"} {
		w := f.do(t, "POST", path, "admin-1", nil)
		require.Equal(t, http.StatusOK, w.Code, path)

		var result service.EnrichResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		assert.Equal(t, 3, result.Enriched)
	}
}

func TestInternalErrorIsMasked(t *testing.T) {
	f := newTestFixture()
	f.outreach.err = apperrors.NewDatabaseError("insert outreach drafts", assert.AnError)

	w := f.do(t, "POST", "/api/outreach/queue", "admin-1", map[string]interface{}{"tournament_ids": []string{"t1"}})
	require.Equal(t, http.StatusInternalServerError, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "An internal error occurred", resp.Error.Message)
	assert.NotContains(t, w.Body.String(), assert.AnError.Error())
}

func TestHealth_NoAuthRequired(t *testing.T) {
	f := newTestFixture()

	w := f.do(t, "GET", "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
