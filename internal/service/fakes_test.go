package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"bi-admin/internal/models"
	"bi-admin/internal/parser"
	"bi-admin/internal/repository"
	"bi-admin/pkg/auth"

	"github.com/google/uuid"
)

var errStoreDown = errors.New("connection refused")

func identityFor(role auth.Role, tenant uuid.UUID) auth.Identity {
	return auth.Identity{UserID: uuid.New(), Role: role, CompanyGroupID: tenant}
}

// questionDB holds rows of every tenant; tenant views filter on access.
type questionDB struct {
	mu       sync.Mutex
	rows     map[uuid.UUID]*models.UnansweredQuestion
	examples map[uuid.UUID]*models.TrainingExample
	failWith error
}

func newQuestionDB() *questionDB {
	return &questionDB{
		rows:     map[uuid.UUID]*models.UnansweredQuestion{},
		examples: map[uuid.UUID]*models.TrainingExample{},
	}
}

func (db *questionDB) scope() TenantScope {
	return func(tenantID uuid.UUID) TenantQuestionStore {
		return &tenantView{db: db, tenantID: tenantID}
	}
}

func (db *questionDB) add(tenant uuid.UUID, text string, priority float64, status models.QuestionStatus, askedAt time.Time) *models.UnansweredQuestion {
	db.mu.Lock()
	defer db.mu.Unlock()
	q := &models.UnansweredQuestion{
		ID:             uuid.New(),
		CompanyGroupID: tenant,
		UserQuestion:   text,
		AskCount:       1,
		PriorityScore:  priority,
		Status:         status,
		LastAskedAt:    askedAt,
		CreatedAt:      askedAt,
		UpdatedAt:      askedAt,
	}
	if status == models.StatusResolved {
		resolver := uuid.New()
		q.ResolvedAt = &askedAt
		q.ResolvedBy = &resolver
	}
	db.rows[q.ID] = q
	return q
}

func (db *questionDB) addExample(tenant uuid.UUID) uuid.UUID {
	db.mu.Lock()
	defer db.mu.Unlock()
	e := &models.TrainingExample{ID: uuid.New(), CompanyGroupID: tenant, Question: "q", Answer: "a"}
	db.examples[e.ID] = e
	return e.ID
}

func (db *questionDB) get(id uuid.UUID) *models.UnansweredQuestion {
	db.mu.Lock()
	defer db.mu.Unlock()
	cp := *db.rows[id]
	return &cp
}

type tenantView struct {
	db       *questionDB
	tenantID uuid.UUID
}

func (v *tenantView) List(_ context.Context, filter repository.QuestionFilter) ([]*models.UnansweredQuestion, int64, error) {
	v.db.mu.Lock()
	defer v.db.mu.Unlock()
	if v.db.failWith != nil {
		return nil, 0, v.db.failWith
	}

	var matched []*models.UnansweredQuestion
	for _, q := range v.db.rows {
		if q.CompanyGroupID != v.tenantID || q.Status != filter.Status {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(q.UserQuestion), strings.ToLower(filter.Search)) {
			continue
		}
		cp := *q
		matched = append(matched, &cp)
	}

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if a.PriorityScore != b.PriorityScore {
			return a.PriorityScore > b.PriorityScore
		}
		if !a.LastAskedAt.Equal(b.LastAskedAt) {
			return a.LastAskedAt.After(b.LastAskedAt)
		}
		return a.ID.String() < b.ID.String()
	})

	total := int64(len(matched))
	start := min(filter.Offset, len(matched))
	end := min(start+filter.Limit, len(matched))
	return matched[start:end], total, nil
}

func (v *tenantView) Get(_ context.Context, id uuid.UUID) (*models.UnansweredQuestion, error) {
	v.db.mu.Lock()
	defer v.db.mu.Unlock()
	if v.db.failWith != nil {
		return nil, v.db.failWith
	}
	q, ok := v.db.rows[id]
	if !ok || q.CompanyGroupID != v.tenantID {
		return nil, repository.ErrNotFound
	}
	cp := *q
	return &cp, nil
}

func (v *tenantView) Update(_ context.Context, question *models.UnansweredQuestion, example *models.TrainingExample) error {
	v.db.mu.Lock()
	defer v.db.mu.Unlock()
	if v.db.failWith != nil {
		return v.db.failWith
	}
	q, ok := v.db.rows[question.ID]
	if !ok || q.CompanyGroupID != v.tenantID {
		return repository.ErrNotFound
	}
	if example != nil {
		v.db.examples[example.ID] = example
	}
	if id := question.TrainingExampleID; id != nil {
		if e, ok := v.db.examples[*id]; !ok || e.CompanyGroupID != v.tenantID {
			return repository.ErrInvalidReference
		}
	}
	cp := *question
	v.db.rows[question.ID] = &cp
	return nil
}

func (v *tenantView) Stats(context.Context) (map[models.QuestionStatus]int64, error) {
	v.db.mu.Lock()
	defer v.db.mu.Unlock()
	if v.db.failWith != nil {
		return nil, v.db.failWith
	}
	counts := map[models.QuestionStatus]int64{
		models.StatusPending:  0,
		models.StatusResolved: 0,
		models.StatusIgnored:  0,
	}
	for _, q := range v.db.rows {
		if q.CompanyGroupID == v.tenantID {
			counts[q.Status]++
		}
	}
	return counts, nil
}

func (v *tenantView) Track(_ context.Context, question string, priority *float64, at time.Time) (*models.UnansweredQuestion, error) {
	v.db.mu.Lock()
	defer v.db.mu.Unlock()
	if v.db.failWith != nil {
		return nil, v.db.failWith
	}
	for _, q := range v.db.rows {
		if q.CompanyGroupID == v.tenantID && strings.EqualFold(q.UserQuestion, question) {
			q.AskCount++
			q.LastAskedAt = at
			next := float64(q.AskCount)
			if priority != nil {
				next = *priority
			}
			q.PriorityScore = max(q.PriorityScore, next)
			cp := *q
			return &cp, nil
		}
	}
	initial := 1.0
	if priority != nil {
		initial = *priority
	}
	q := &models.UnansweredQuestion{
		ID:             uuid.New(),
		CompanyGroupID: v.tenantID,
		UserQuestion:   question,
		AskCount:       1,
		PriorityScore:  initial,
		Status:         models.StatusPending,
		LastAskedAt:    at,
		CreatedAt:      at,
		UpdatedAt:      at,
	}
	v.db.rows[q.ID] = q
	cp := *q
	return &cp, nil
}

type fakeContextStore struct {
	contexts    map[uuid.UUID]*models.KnowledgeContext
	failWith    error
	getCalls    int
	updateCalls int
}

func newFakeContextStore(ids ...uuid.UUID) *fakeContextStore {
	s := &fakeContextStore{contexts: map[uuid.UUID]*models.KnowledgeContext{}}
	for _, id := range ids {
		s.contexts[id] = &models.KnowledgeContext{ID: id, Name: "vendas"}
	}
	return s
}

func (s *fakeContextStore) Get(_ context.Context, id uuid.UUID) (*models.KnowledgeContext, error) {
	s.getCalls++
	if s.failWith != nil {
		return nil, s.failWith
	}
	kc, ok := s.contexts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *kc
	return &cp, nil
}

func (s *fakeContextStore) ReplaceContent(_ context.Context, id uuid.UUID, content string, sections parser.Sections, parsedAt time.Time) (*models.KnowledgeContext, error) {
	s.updateCalls++
	if s.failWith != nil {
		return nil, s.failWith
	}
	kc, ok := s.contexts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	kc.Content = content
	kc.Sections = sections.Normalize()
	kc.ParsedAt = &parsedAt
	kc.UpdatedAt = parsedAt
	cp := *kc
	return &cp, nil
}

// fakeCache stores values by reference; failGet/failSet simulate an outage.
type fakeCache struct {
	values  map[string]*models.KnowledgeContext
	failGet bool
	failSet bool
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: map[string]*models.KnowledgeContext{}}
}

func (c *fakeCache) Get(_ context.Context, key string, dst any) (bool, error) {
	if c.failGet {
		return false, errStoreDown
	}
	v, ok := c.values[key]
	if !ok {
		return false, nil
	}
	*dst.(*models.KnowledgeContext) = *v
	return true, nil
}

func (c *fakeCache) Set(_ context.Context, key string, value any) error {
	if c.failSet {
		return errStoreDown
	}
	kc := *value.(*models.KnowledgeContext)
	c.values[key] = &kc
	return nil
}

func (c *fakeCache) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c.values, k)
	}
	return nil
}

type fakeFeedbackStore struct {
	logs     map[uuid.UUID]uuid.UUID // query id -> tenant
	votes    map[uuid.UUID]models.Feedback
	stats    map[uuid.UUID]*models.FeedbackStats
	failWith error
	calls    int
}

func newFakeFeedbackStore() *fakeFeedbackStore {
	return &fakeFeedbackStore{
		logs:  map[uuid.UUID]uuid.UUID{},
		votes: map[uuid.UUID]models.Feedback{},
		stats: map[uuid.UUID]*models.FeedbackStats{},
	}
}

func (s *fakeFeedbackStore) addQuery(tenant uuid.UUID) uuid.UUID {
	id := uuid.New()
	s.logs[id] = tenant
	return id
}

func (s *fakeFeedbackStore) Record(_ context.Context, entry repository.FeedbackEntry) (bool, error) {
	s.calls++
	if s.failWith != nil {
		return false, s.failWith
	}
	tenant, ok := s.logs[entry.QueryID]
	if !ok || tenant != entry.TenantID {
		return false, repository.ErrNotFound
	}

	var prev *models.Feedback
	if v, ok := s.votes[entry.QueryID]; ok {
		prev = &v
	}
	s.votes[entry.QueryID] = entry.Feedback

	st, ok := s.stats[tenant]
	if !ok {
		st = &models.FeedbackStats{CompanyGroupID: tenant}
		s.stats[tenant] = st
	}
	p, n := models.FeedbackDelta(prev, entry.Feedback)
	st.Positive += p
	st.Negative += n
	return prev != nil, nil
}

func (s *fakeFeedbackStore) Stats(_ context.Context, tenantID uuid.UUID) (models.FeedbackStats, error) {
	if s.failWith != nil {
		return models.FeedbackStats{}, s.failWith
	}
	if st, ok := s.stats[tenantID]; ok {
		return *st, nil
	}
	return models.FeedbackStats{CompanyGroupID: tenantID}, nil
}
