package service

import (
	"context"
	"time"

	"bi-admin/internal/models"
	"bi-admin/internal/parser"
	"bi-admin/pkg/auth"
	"bi-admin/pkg/cache"

	"github.com/duke-git/lancet/v2/strutil"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ContextStore interface {
	Get(ctx context.Context, id uuid.UUID) (*models.KnowledgeContext, error)
	ReplaceContent(ctx context.Context, id uuid.UUID, content string, sections parser.Sections, parsedAt time.Time) (*models.KnowledgeContext, error)
}

type ParseResult struct {
	Context *models.KnowledgeContext
	Stats   parser.Stats
}

type KnowledgeService struct {
	store  ContextStore
	cache  cache.Cache
	now    func() time.Time
	logger *zap.Logger
}

func NewKnowledgeService(store ContextStore, c cache.Cache, logger *zap.Logger) *KnowledgeService {
	if c == nil {
		c = cache.Noop{}
	}
	return &KnowledgeService{
		store:  store,
		cache:  c,
		now:    time.Now,
		logger: logger,
	}
}

func contextCacheKey(id uuid.UUID) string {
	return "knowledge:context:" + id.String()
}

// AuthorizeEdit reports whether identity may re-parse shared contexts.
func AuthorizeEdit(identity auth.Identity) error {
	if err := requireIdentity(identity); err != nil {
		return err
	}
	if !identity.Role.CanManageKnowledge() {
		return ErrForbidden
	}
	return nil
}

// ApplyParse parses content and stores it together with its sections on the
// context. Nothing is written when validation fails.
func (s *KnowledgeService) ApplyParse(ctx context.Context, contextID uuid.UUID, content string) (*ParseResult, error) {
	if contextID == uuid.Nil {
		return nil, ErrMissingContextID
	}
	if strutil.IsBlank(content) {
		return nil, ErrEmptyContent
	}

	sections := parser.Parse(content)

	kc, err := s.store.ReplaceContent(ctx, contextID, content, sections, s.now().UTC())
	if err != nil {
		err = storeError("replace knowledge context", err)
		s.logger.Error("Failed to apply parse",
			zap.String("context_id", contextID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	key := contextCacheKey(contextID)
	if err := s.cache.Set(ctx, key, kc); err != nil {
		s.logger.Warn("Failed to refresh context cache",
			zap.String("context_id", contextID.String()),
			zap.Error(err),
		)
		// drop the pre-parse entry
		if err := s.cache.Del(ctx, key); err != nil {
			s.logger.Warn("Failed to evict stale context", zap.String("key", key), zap.Error(err))
		}
	}

	stats := sections.Stats()
	s.logger.Info("Knowledge context parsed",
		zap.String("context_id", contextID.String()),
		zap.Int("medidas", stats.Medidas),
		zap.Int("tabelas", stats.Tabelas),
		zap.Int("queries", stats.Queries),
		zap.Int("exemplos", stats.Exemplos),
		zap.Bool("has_base", stats.HasBase),
	)

	return &ParseResult{Context: kc, Stats: stats}, nil
}

// PreviewParse parses content without touching the store.
func (s *KnowledgeService) PreviewParse(content string) (parser.Sections, parser.Stats, error) {
	if strutil.IsBlank(content) {
		return parser.Sections{}, parser.Stats{}, ErrEmptyContent
	}
	sections := parser.Parse(content)
	return sections, sections.Stats(), nil
}

// GetContext reads through the cache. Cache failures only cost a store read.
func (s *KnowledgeService) GetContext(ctx context.Context, contextID uuid.UUID) (*models.KnowledgeContext, error) {
	if contextID == uuid.Nil {
		return nil, ErrMissingContextID
	}

	key := contextCacheKey(contextID)

	var cached models.KnowledgeContext
	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.logger.Warn("Context cache read failed", zap.String("key", key), zap.Error(err))
	}
	if found {
		cached.Sections = cached.Sections.Normalize()
		return &cached, nil
	}

	kc, err := s.store.Get(ctx, contextID)
	if err != nil {
		return nil, storeError("get knowledge context", err)
	}

	if err := s.cache.Set(ctx, key, kc); err != nil {
		s.logger.Warn("Context cache write failed", zap.String("key", key), zap.Error(err))
	}
	return kc, nil
}
