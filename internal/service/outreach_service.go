// Package service implements the pipeline's business operations on top of
// the storage repositories and provider adapters.
package service

import (
	"context"
	"fmt"
	"time"

	apperrors "github.com/tournament-scout/internal/errors"
	"github.com/tournament-scout/internal/logging"
	"github.com/tournament-scout/internal/models"
	"github.com/tournament-scout/internal/retry"
)

// TournamentStore is the tournament persistence needed by outreach.
type TournamentStore interface {
	GetByIDs(ctx context.Context, ids []string) ([]*models.Tournament, error)
	MarkDoNotContact(ctx context.Context, ids []string, reason string, at time.Time) ([]string, error)
}

// OutreachStore is the outreach-row persistence needed by outreach.
type OutreachStore interface {
	ListByTournamentIDs(ctx context.Context, tournamentIDs []string) ([]*models.OutreachRow, error)
	InsertDrafts(ctx context.Context, drafts []*models.OutreachRow) ([]string, error)
	SuppressActiveByTournamentIDs(ctx context.Context, tournamentIDs []string) (int64, error)
	ReconcileSuppressed(ctx context.Context) (int64, error)
}

// Notifier sends fire-and-forget notification mail.
type Notifier interface {
	Send(to, subject, body string) error
}

// OutreachService handles outreach queueing and suppression
type OutreachService struct {
	tournaments   TournamentStore
	outreach      OutreachStore
	notifier      Notifier // nil disables notifications
	notifyAddress string
	maxBatchSize  int
}

// NewOutreachService creates a new outreach service
func NewOutreachService(tournaments TournamentStore, outreach OutreachStore, notifier Notifier, notifyAddress string, maxBatchSize int) *OutreachService {
	return &OutreachService{
		tournaments:   tournaments,
		outreach:      outreach,
		notifier:      notifier,
		notifyAddress: notifyAddress,
		maxBatchSize:  maxBatchSize,
	}
}

// QueueResult reports the outcome of a queueing batch.
type QueueResult struct {
	Created           int      `json:"created"`
	AlreadyExists     int      `json:"already_exists"`
	SkippedSuppressed int      `json:"skipped_dnc"`
	CreatedIDs        []string `json:"created_ids"`
}

// SuppressResult reports the outcome of a suppression batch.
type SuppressResult struct {
	Updated    int      `json:"updated"`
	AlreadyDNC int      `json:"already_dnc"`
	UpdatedIDs []string `json:"updated_ids"`
}

// QueueOutreach creates draft outreach rows for the eligible subset of the
// given tournaments. Do-not-contact tournaments are skipped, tournaments with
// an existing row are reported as already existing, and ids that resolve to
// nothing are ignored. An empty eligible set is a normal empty result.
func (s *OutreachService) QueueOutreach(ctx context.Context, tournamentIDs []string) (*QueueResult, error) {
	ids := dedupe(tournamentIDs)
	if len(ids) == 0 {
		return nil, apperrors.NewInvalidInputError("tournament_ids", "must not be empty")
	}
	if len(ids) > s.maxBatchSize {
		return nil, apperrors.NewInvalidInputError("tournament_ids",
			fmt.Sprintf("batch size %d exceeds maximum %d", len(ids), s.maxBatchSize))
	}

	tournaments, err := s.tournaments.GetByIDs(ctx, ids)
	if err != nil {
		return nil, apperrors.NewDatabaseError("get tournaments", err)
	}

	result := &QueueResult{CreatedIDs: []string{}}

	var eligible []*models.Tournament
	for _, t := range tournaments {
		if t.DoNotContact {
			result.SkippedSuppressed++
			continue
		}
		eligible = append(eligible, t)
	}

	if len(eligible) == 0 {
		return result, nil
	}

	eligibleIDs := make([]string, 0, len(eligible))
	for _, t := range eligible {
		eligibleIDs = append(eligibleIDs, t.ID)
	}

	existing, err := s.outreach.ListByTournamentIDs(ctx, eligibleIDs)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list outreach rows", err)
	}
	hasRow := make(map[string]bool, len(existing))
	for _, row := range existing {
		hasRow[row.TournamentID] = true
	}

	var drafts []*models.OutreachRow
	for _, t := range eligible {
		if hasRow[t.ID] {
			result.AlreadyExists++
			continue
		}
		drafts = append(drafts, &models.OutreachRow{
			TournamentID: t.ID,
			ContactName:  t.TournamentDirector,
			ContactEmail: t.TournamentDirectorEmail,
		})
	}

	if len(drafts) > 0 {
		createdIDs, err := s.outreach.InsertDrafts(ctx, drafts)
		if err != nil {
			return nil, apperrors.NewDatabaseError("insert outreach drafts", err)
		}
		// a concurrent queue call may have won the race for some rows; the
		// unique constraint folds those into already-exists
		result.Created = len(createdIDs)
		result.AlreadyExists += len(drafts) - len(createdIDs)
		result.CreatedIDs = createdIDs
	}

	return result, nil
}

// Suppress flags the given tournaments as do-not-contact and cascades their
// existing outreach rows to suppressed. Ids that resolve to nothing are
// dropped, same as in QueueOutreach, and re-suppressing an already-flagged
// tournament is a counted no-op. The cascade is best-effort: a failure there
// is logged but never rolls back the flag, and ReconcileSuppression repairs
// any missed rows later.
func (s *OutreachService) Suppress(ctx context.Context, tournamentIDs []string, reason string) (*SuppressResult, error) {
	ids := dedupe(tournamentIDs)
	if len(ids) == 0 {
		return nil, apperrors.NewInvalidInputError("tournament_ids", "must not be empty")
	}
	if len(ids) > s.maxBatchSize {
		return nil, apperrors.NewInvalidInputError("tournament_ids",
			fmt.Sprintf("batch size %d exceeds maximum %d", len(ids), s.maxBatchSize))
	}
	if reason == "" {
		reason = "manual suppression"
	}

	tournaments, err := s.tournaments.GetByIDs(ctx, ids)
	if err != nil {
		return nil, apperrors.NewDatabaseError("get tournaments", err)
	}

	result := &SuppressResult{UpdatedIDs: []string{}}

	knownIDs := make([]string, 0, len(tournaments))
	for _, t := range tournaments {
		knownIDs = append(knownIDs, t.ID)
	}
	if len(knownIDs) == 0 {
		return result, nil
	}

	updatedIDs, err := s.tournaments.MarkDoNotContact(ctx, knownIDs, reason, time.Now())
	if err != nil {
		return nil, apperrors.NewDatabaseError("mark do-not-contact", err)
	}

	result.Updated = len(updatedIDs)
	result.AlreadyDNC = len(knownIDs) - len(updatedIDs)
	if updatedIDs != nil {
		result.UpdatedIDs = updatedIDs
	}

	// The flag is already the source of truth; cascade failures are repaired
	// by ReconcileSuppression.
	_ = retry.BestEffort(ctx, "suppression cascade", func(ctx context.Context) error {
		_, err := s.outreach.SuppressActiveByTournamentIDs(ctx, knownIDs)
		return err
	})

	if len(updatedIDs) > 0 {
		s.notify(ctx,
			"Tournaments suppressed",
			fmt.Sprintf("%d tournament(s) were flagged do-not-contact (reason: %s).", len(updatedIDs), reason))
	}

	return result, nil
}

// ReconcileSuppression re-runs the suppression cascade for every
// do-not-contact tournament that still has a draft outreach row. Safe to call
// at any time; returns how many rows were repaired.
func (s *OutreachService) ReconcileSuppression(ctx context.Context) (int64, error) {
	repaired, err := s.outreach.ReconcileSuppressed(ctx)
	if err != nil {
		return 0, apperrors.NewDatabaseError("reconcile suppressed outreach rows", err)
	}

	if repaired > 0 {
		logging.FromContext(ctx).WithField("repaired", repaired).Info("Repaired outreach rows missed by suppression cascade")
	}

	return repaired, nil
}

// notify sends a fire-and-forget admin email.
func (s *OutreachService) notify(ctx context.Context, subject, body string) {
	if s.notifier == nil || s.notifyAddress == "" {
		return
	}
	_ = retry.BestEffort(ctx, "notification email", func(ctx context.Context) error {
		return s.notifier.Send(s.notifyAddress, subject, body)
	})
}

// dedupe removes duplicate ids preserving first-seen order.
func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
