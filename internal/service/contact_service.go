package service

import (
	"context"

	apperrors "github.com/tournament-scout/internal/errors"
	"github.com/tournament-scout/internal/models"
	"github.com/tournament-scout/internal/ratelimit"
)

// AssignorStore is the directory persistence needed by reveals.
type AssignorStore interface {
	GetByIDs(ctx context.Context, ids []string) ([]*models.Assignor, error)
	List(ctx context.Context, limit, offset int) ([]*models.Assignor, error)
}

const maxRevealBatch = 20

// ContactService gates assignor contact details behind terms acceptance and
// the dual-key reveal rate limit.
type ContactService struct {
	assignors AssignorStore
	limiter   *ratelimit.RevealLimiter
}

// NewContactService creates a new contact service
func NewContactService(assignors AssignorStore, limiter *ratelimit.RevealLimiter) *ContactService {
	return &ContactService{assignors: assignors, limiter: limiter}
}

// Reveal returns unmasked contact details for up to maxRevealBatch assignors.
// The caller must have accepted the contact terms; the whole batch counts
// against both the user and IP reveal budgets before anything is returned, so
// a denial never leaks a partial batch.
func (s *ContactService) Reveal(ctx context.Context, user *models.User, clientIP string, assignorIDs []string) ([]*models.RevealedContact, error) {
	if !user.HasAcceptedContactTerms() {
		return nil, apperrors.NewForbiddenError("contact terms must be accepted before revealing contact details")
	}

	ids := dedupe(assignorIDs)
	if len(ids) == 0 {
		return nil, apperrors.NewInvalidInputError("assignor_ids", "must not be empty")
	}
	if len(ids) > maxRevealBatch {
		return nil, apperrors.NewInvalidInputError("assignor_ids", "batch too large")
	}

	if err := s.limiter.CheckAndConsume(ctx, user.ID, clientIP, int64(len(ids))); err != nil {
		return nil, err
	}

	assignors, err := s.assignors.GetByIDs(ctx, ids)
	if err != nil {
		return nil, apperrors.NewDatabaseError("get assignors", err)
	}

	contacts := make([]*models.RevealedContact, 0, len(assignors))
	for _, a := range assignors {
		contacts = append(contacts, &models.RevealedContact{
			ID:    a.ID,
			Email: a.Email,
			Phone: a.Phone,
		})
	}

	return contacts, nil
}

// ListAssignors returns a page of directory entries with contact details
// masked by the model's JSON tags.
func (s *ContactService) ListAssignors(ctx context.Context, limit, offset int) ([]*models.Assignor, error) {
	assignors, err := s.assignors.List(ctx, limit, offset)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list assignors", err)
	}
	return assignors, nil
}
