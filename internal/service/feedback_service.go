package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bi-admin/internal/models"
	"bi-admin/internal/repository"
	"bi-admin/pkg/auth"

	"github.com/duke-git/lancet/v2/strutil"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type FeedbackStore interface {
	Record(ctx context.Context, entry repository.FeedbackEntry) (bool, error)
	Stats(ctx context.Context, tenantID uuid.UUID) (models.FeedbackStats, error)
}

const (
	FailureQueryNotFound = "query_not_found"
	FailureStoreError    = "store_error"
)

// RecordedFailure explains why valid feedback was not stored.
type RecordedFailure struct {
	Reason string
	Err    error
}

// FeedbackOutcome is the result of a feedback submission that passed
// validation. Storage problems are reported here rather than as errors.
type FeedbackOutcome struct {
	Recorded bool
	Amended  bool
	Failure  *RecordedFailure
}

func (o FeedbackOutcome) OK() bool {
	return o.Recorded
}

type FeedbackSummary struct {
	Positive   int64
	Negative   int64
	Confidence float64
}

type FeedbackService struct {
	store  FeedbackStore
	now    func() time.Time
	logger *zap.Logger
}

func NewFeedbackService(store FeedbackStore, logger *zap.Logger) *FeedbackService {
	return &FeedbackService{
		store:  store,
		now:    time.Now,
		logger: logger,
	}
}

// RecordFeedback attaches feedback to a logged query of the caller's tenant.
// Only invalid input and a missing identity are returned as errors.
func (s *FeedbackService) RecordFeedback(ctx context.Context, identity auth.Identity, queryID uuid.UUID, feedback string, comment string) (FeedbackOutcome, error) {
	if err := requireIdentity(identity); err != nil {
		return FeedbackOutcome{}, err
	}
	if queryID == uuid.Nil {
		return FeedbackOutcome{}, ErrMissingQueryID
	}
	fb, ok := models.ParseFeedback(feedback)
	if !ok {
		return FeedbackOutcome{}, fmt.Errorf("%w: got %q", ErrInvalidFeedback, feedback)
	}

	var note *string
	if c := strutil.Trim(comment); c != "" {
		note = &c
	}

	amended, err := s.store.Record(ctx, repository.FeedbackEntry{
		TenantID: identity.CompanyGroupID,
		QueryID:  queryID,
		Feedback: fb,
		Comment:  note,
		At:       s.now().UTC(),
	})
	if err != nil {
		failure := &RecordedFailure{Reason: FailureStoreError, Err: err}
		if errors.Is(err, repository.ErrNotFound) {
			failure.Reason = FailureQueryNotFound
		}
		s.logger.Warn("Feedback not recorded",
			zap.String("query_id", queryID.String()),
			zap.String("company_group_id", identity.CompanyGroupID.String()),
			zap.String("reason", failure.Reason),
			zap.Error(err),
		)
		return FeedbackOutcome{Failure: failure}, nil
	}

	s.logger.Info("Feedback recorded",
		zap.String("query_id", queryID.String()),
		zap.String("feedback", string(fb)),
		zap.Bool("amended", amended),
	)
	return FeedbackOutcome{Recorded: true, Amended: amended}, nil
}

// Stats returns the tenant's feedback counters and the smoothed confidence
// derived from them.
func (s *FeedbackService) Stats(ctx context.Context, identity auth.Identity) (*FeedbackSummary, error) {
	if err := AuthorizeTriage(identity); err != nil {
		return nil, err
	}

	stats, err := s.store.Stats(ctx, identity.CompanyGroupID)
	if err != nil {
		err = storeError("feedback stats", err)
		s.logger.Error("Failed to load feedback stats", zap.Error(err))
		return nil, err
	}

	return &FeedbackSummary{
		Positive:   stats.Positive,
		Negative:   stats.Negative,
		Confidence: stats.Confidence(),
	}, nil
}
