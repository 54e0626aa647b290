package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bi-admin/internal/models"
	"bi-admin/internal/repository"
	"bi-admin/pkg/auth"
	"bi-admin/pkg/config"

	"github.com/duke-git/lancet/v2/strutil"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TenantQuestionStore is the question store of a single tenant.
type TenantQuestionStore interface {
	List(ctx context.Context, filter repository.QuestionFilter) ([]*models.UnansweredQuestion, int64, error)
	Get(ctx context.Context, id uuid.UUID) (*models.UnansweredQuestion, error)
	Update(ctx context.Context, question *models.UnansweredQuestion, example *models.TrainingExample) error
	Stats(ctx context.Context) (map[models.QuestionStatus]int64, error)
	Track(ctx context.Context, question string, priority *float64, at time.Time) (*models.UnansweredQuestion, error)
}

// TenantScope hands out tenant-bound question stores.
type TenantScope func(tenantID uuid.UUID) TenantQuestionStore

// QuestionScope adapts a QuestionRepository to a TenantScope.
func QuestionScope(repo *repository.QuestionRepository) TenantScope {
	return func(tenantID uuid.UUID) TenantQuestionStore {
		return repo.ForTenant(tenantID)
	}
}

type ListParams struct {
	Status string
	Search string
	Limit  int
	Offset int
}

type QuestionPage struct {
	Items  []*models.UnansweredQuestion
	Total  int64
	Limit  int
	Offset int
}

// TransitionRequest asks for one triage action on a question. Answer, when
// set on a resolve, becomes a new training example linked to the question.
type TransitionRequest struct {
	QuestionID        uuid.UUID
	Action            string
	TrainingExampleID *uuid.UUID
	Answer            string
}

type TriageService struct {
	scope        TenantScope
	defaultLimit int
	maxLimit     int
	now          func() time.Time
	logger       *zap.Logger
}

func NewTriageService(scope TenantScope, cfg config.TriageConfig, logger *zap.Logger) *TriageService {
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = 50
	}
	if cfg.MaxLimit <= 0 {
		cfg.MaxLimit = 200
	}
	return &TriageService{
		scope:        scope,
		defaultLimit: cfg.DefaultLimit,
		maxLimit:     cfg.MaxLimit,
		now:          time.Now,
		logger:       logger,
	}
}

// AuthorizeTriage rejects identities below the manager tier.
func AuthorizeTriage(identity auth.Identity) error {
	if err := requireIdentity(identity); err != nil {
		return err
	}
	if !identity.Role.CanTriage() {
		return ErrForbidden
	}
	return nil
}

func (s *TriageService) clampLimit(limit int) int {
	switch {
	case limit == 0:
		return s.defaultLimit
	case limit < 1:
		return 1
	case limit > s.maxLimit:
		return s.maxLimit
	}
	return limit
}

// List returns the caller's tenant queue filtered by status, pending by default.
func (s *TriageService) List(ctx context.Context, identity auth.Identity, params ListParams) (*QuestionPage, error) {
	if err := AuthorizeTriage(identity); err != nil {
		return nil, err
	}

	status := models.StatusPending
	if !strutil.IsBlank(params.Status) {
		parsed, ok := models.ParseQuestionStatus(params.Status)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, params.Status)
		}
		status = parsed
	}

	if params.Offset < 0 {
		return nil, ErrInvalidOffset
	}

	filter := repository.QuestionFilter{
		Status: status,
		Search: strutil.Trim(params.Search),
		Limit:  s.clampLimit(params.Limit),
		Offset: params.Offset,
	}

	items, total, err := s.scope(identity.CompanyGroupID).List(ctx, filter)
	if err != nil {
		err = storeError("list questions", err)
		s.logger.Error("Failed to list questions", zap.Error(err))
		return nil, err
	}

	return &QuestionPage{
		Items:  items,
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}, nil
}

func (s *TriageService) Stats(ctx context.Context, identity auth.Identity) (map[models.QuestionStatus]int64, error) {
	if err := AuthorizeTriage(identity); err != nil {
		return nil, err
	}

	counts, err := s.scope(identity.CompanyGroupID).Stats(ctx)
	if err != nil {
		err = storeError("question stats", err)
		s.logger.Error("Failed to count questions", zap.Error(err))
		return nil, err
	}
	return counts, nil
}

// Transition applies a triage action to one of the caller's questions and
// returns the updated record. Concurrent transitions are last write wins.
func (s *TriageService) Transition(ctx context.Context, identity auth.Identity, req TransitionRequest) (*models.UnansweredQuestion, error) {
	if err := AuthorizeTriage(identity); err != nil {
		return nil, err
	}

	action, ok := models.ParseTriageAction(req.Action)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAction, req.Action)
	}
	if req.TrainingExampleID != nil && !strutil.IsBlank(req.Answer) {
		return nil, ErrExampleAndAnswer
	}

	store := s.scope(identity.CompanyGroupID)

	question, err := store.Get(ctx, req.QuestionID)
	if err != nil {
		return nil, storeError("get question", err)
	}

	now := s.now().UTC()

	var example *models.TrainingExample
	exampleID := req.TrainingExampleID
	if action == models.ActionResolve && exampleID == nil && !strutil.IsBlank(req.Answer) {
		example = &models.TrainingExample{
			ID:             uuid.New(),
			CompanyGroupID: identity.CompanyGroupID,
			QuestionID:     &question.ID,
			Question:       question.UserQuestion,
			Answer:         strutil.Trim(req.Answer),
			CreatedBy:      identity.UserID,
			CreatedAt:      now,
		}
		exampleID = &example.ID
	}

	from := question.Status
	if err := question.Apply(action, identity.UserID, exampleID, now); err != nil {
		if errors.Is(err, models.ErrIllegalTransition) {
			return nil, fmt.Errorf("%w: cannot %s a %s question", ErrInvalidTransition, action, from)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidAction, err)
	}

	if err := store.Update(ctx, question, example); err != nil {
		err = storeError("update question", err)
		if !errors.Is(err, ErrNotFound) {
			s.logger.Error("Failed to persist transition",
				zap.String("question_id", question.ID.String()),
				zap.Error(err),
			)
		}
		return nil, err
	}

	s.logger.Info("Question transitioned",
		zap.String("question_id", question.ID.String()),
		zap.String("company_group_id", identity.CompanyGroupID.String()),
		zap.String("action", string(action)),
		zap.String("from", string(from)),
		zap.String("to", string(question.Status)),
		zap.Bool("example_created", example != nil),
	)
	return question, nil
}

// Track records an unanswered question on behalf of the assistant.
func (s *TriageService) Track(ctx context.Context, tenantID uuid.UUID, question string, priority *float64) (*models.UnansweredQuestion, error) {
	if tenantID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	question = strutil.Trim(question)
	if question == "" {
		return nil, fmt.Errorf("%w: question is required", ErrValidation)
	}

	tracked, err := s.scope(tenantID).Track(ctx, question, priority, s.now().UTC())
	if err != nil {
		return nil, storeError("track question", err)
	}
	return tracked, nil
}
