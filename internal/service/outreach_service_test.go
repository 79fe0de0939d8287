package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/tournament-scout/internal/errors"
	"github.com/tournament-scout/internal/models"
)

// Mock tournament store for testing
type mockTournamentStore struct {
	tournaments map[string]*models.Tournament
	markErr     error
}

func (m *mockTournamentStore) GetByIDs(ctx context.Context, ids []string) ([]*models.Tournament, error) {
	var out []*models.Tournament
	for _, id := range ids {
		if t, ok := m.tournaments[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *mockTournamentStore) MarkDoNotContact(ctx context.Context, ids []string, reason string, at time.Time) ([]string, error) {
	if m.markErr != nil {
		return nil, m.markErr
	}
	var updated []string
	for _, id := range ids {
		t, ok := m.tournaments[id]
		if !ok || t.DoNotContact {
			continue
		}
		t.DoNotContact = true
		t.DoNotContactReason = &reason
		t.DoNotContactAt = &at
		updated = append(updated, id)
	}
	return updated, nil
}

// Mock outreach store for testing
type mockOutreachStore struct {
	rows         map[string]*models.OutreachRow // keyed by tournament id
	suppressed   int64
	reconciled   int64
	cascadeErr   error
	reconcileErr error
}

func (m *mockOutreachStore) ListByTournamentIDs(ctx context.Context, tournamentIDs []string) ([]*models.OutreachRow, error) {
	var out []*models.OutreachRow
	for _, id := range tournamentIDs {
		if row, ok := m.rows[id]; ok {
			out = append(out, row)
		}
	}
	return out, nil
}

func (m *mockOutreachStore) InsertDrafts(ctx context.Context, drafts []*models.OutreachRow) ([]string, error) {
	var created []string
	for _, d := range drafts {
		if _, ok := m.rows[d.TournamentID]; ok {
			continue
		}
		m.rows[d.TournamentID] = d
		created = append(created, d.TournamentID)
	}
	return created, nil
}

func (m *mockOutreachStore) SuppressActiveByTournamentIDs(ctx context.Context, tournamentIDs []string) (int64, error) {
	if m.cascadeErr != nil {
		return 0, m.cascadeErr
	}
	var n int64
	for _, id := range tournamentIDs {
		if row, ok := m.rows[id]; ok && !row.Status.IsTerminal() {
			row.Status = "suppressed"
			n++
		}
	}
	m.suppressed += n
	return n, nil
}

func (m *mockOutreachStore) ReconcileSuppressed(ctx context.Context) (int64, error) {
	if m.reconcileErr != nil {
		return 0, m.reconcileErr
	}
	return m.reconciled, nil
}

// Mock notifier for testing
type mockNotifier struct {
	sent []string
	err  error
}

func (m *mockNotifier) Send(to, subject, body string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, subject)
	return nil
}

func strPtr(s string) *string { return &s }

func newOutreachFixture() (*OutreachService, *mockTournamentStore, *mockOutreachStore, *mockNotifier) {
	tournaments := &mockTournamentStore{tournaments: map[string]*models.Tournament{
		"t1": {ID: "t1", Name: "Spring Classic", TournamentDirector: strPtr("Pat Jones"), TournamentDirectorEmail: strPtr("pat@example.com")},
		"t2": {ID: "t2", Name: "Summer Cup"},
		"t3": {ID: "t3", Name: "Quiet Open", DoNotContact: true},
	}}
	outreach := &mockOutreachStore{rows: map[string]*models.OutreachRow{}}
	notifier := &mockNotifier{}
	svc := NewOutreachService(tournaments, outreach, notifier, "ops@example.com", 200)
	return svc, tournaments, outreach, notifier
}

func TestQueueOutreach_PartitionsBatch(t *testing.T) {
	svc, _, outreach, _ := newOutreachFixture()
	outreach.rows["t2"] = &models.OutreachRow{TournamentID: "t2", Status: "draft"}

	result, err := svc.QueueOutreach(context.Background(), []string{"t1", "t2", "t3", "t1"})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.AlreadyExists)
	assert.Equal(t, 1, result.SkippedSuppressed)
	assert.Equal(t, []string{"t1"}, result.CreatedIDs)

	// director contact copied onto the draft
	row := outreach.rows["t1"]
	require.NotNil(t, row)
	assert.Equal(t, "Pat Jones", *row.ContactName)
	assert.Equal(t, "pat@example.com", *row.ContactEmail)
}

func TestQueueOutreach_DirectorEmailOptional(t *testing.T) {
	svc, _, outreach, _ := newOutreachFixture()

	result, err := svc.QueueOutreach(context.Background(), []string{"t2"})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Created)
	assert.Nil(t, outreach.rows["t2"].ContactEmail)
}

func TestQueueOutreach_EmptyEligibleSetIsNormal(t *testing.T) {
	svc, _, _, _ := newOutreachFixture()

	result, err := svc.QueueOutreach(context.Background(), []string{"t3"})
	require.NoError(t, err)

	assert.Equal(t, 0, result.Created)
	assert.Equal(t, 1, result.SkippedSuppressed)
	assert.Empty(t, result.CreatedIDs)
}

func TestQueueOutreach_UnknownIDsIgnored(t *testing.T) {
	svc, _, _, _ := newOutreachFixture()

	result, err := svc.QueueOutreach(context.Background(), []string{"t1", "missing"})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 0, result.SkippedSuppressed)
}

func TestQueueOutreach_RejectsEmptyAndOversizedBatch(t *testing.T) {
	svc, _, _, _ := newOutreachFixture()

	_, err := svc.QueueOutreach(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, 400, apperrors.GetHTTPStatusCode(err))

	big := make([]string, 201)
	for i := range big {
		big[i] = fmt.Sprintf("t-%d", i)
	}
	_, err = svc.QueueOutreach(context.Background(), big)
	require.Error(t, err)
	assert.Equal(t, 400, apperrors.GetHTTPStatusCode(err))
}

func TestSuppress_IdempotentAndCascades(t *testing.T) {
	svc, tournaments, outreach, _ := newOutreachFixture()
	outreach.rows["t1"] = &models.OutreachRow{TournamentID: "t1", Status: "draft"}

	result, err := svc.Suppress(context.Background(), []string{"t1", "t3"}, "venue closed")
	require.NoError(t, err)

	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, 1, result.AlreadyDNC)
	assert.Equal(t, []string{"t1"}, result.UpdatedIDs)
	assert.True(t, tournaments.tournaments["t1"].DoNotContact)
	assert.Equal(t, "suppressed", string(outreach.rows["t1"].Status))

	// second call is a counted no-op
	result, err = svc.Suppress(context.Background(), []string{"t1"}, "venue closed")
	require.NoError(t, err)
	assert.Equal(t, 0, result.Updated)
	assert.Equal(t, 1, result.AlreadyDNC)
}

func TestSuppress_UnknownIDsIgnored(t *testing.T) {
	svc, _, _, _ := newOutreachFixture()

	// a stale id must not inflate already_dnc
	result, err := svc.Suppress(context.Background(), []string{"t1", "missing"}, "")
	require.NoError(t, err)

	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, 0, result.AlreadyDNC)
	assert.Equal(t, []string{"t1"}, result.UpdatedIDs)
}

func TestSuppress_CascadeFailureDoesNotRollBackFlag(t *testing.T) {
	svc, tournaments, outreach, _ := newOutreachFixture()
	outreach.cascadeErr = errors.New("store down")

	result, err := svc.Suppress(context.Background(), []string{"t1"}, "")
	require.NoError(t, err)

	assert.Equal(t, 1, result.Updated)
	assert.True(t, tournaments.tournaments["t1"].DoNotContact)
}

func TestSuppress_NotifierFailureIsSwallowed(t *testing.T) {
	svc, _, _, notifier := newOutreachFixture()
	notifier.err = errors.New("smtp down")

	_, err := svc.Suppress(context.Background(), []string{"t1"}, "")
	require.NoError(t, err)
}

func TestReconcileSuppression_ReportsRepairs(t *testing.T) {
	svc, _, outreach, _ := newOutreachFixture()
	outreach.reconciled = 3

	repaired, err := svc.ReconcileSuppression(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), repaired)
}

func TestReconcileSuppression_StoreError(t *testing.T) {
	svc, _, outreach, _ := newOutreachFixture()
	outreach.reconcileErr = errors.New("store down")

	_, err := svc.ReconcileSuppression(context.Background())
	require.Error(t, err)
	assert.Equal(t, 500, apperrors.GetHTTPStatusCode(err))
}
