package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"bi-admin/internal/api/handlers"
	"bi-admin/internal/models"
	"bi-admin/internal/parser"
	"bi-admin/internal/repository"
	"bi-admin/internal/service"
	"bi-admin/pkg/auth"
	"bi-admin/pkg/cache"
	"bi-admin/pkg/config"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memQuestions struct {
	mu       sync.Mutex
	tenantID uuid.UUID
	rows     map[uuid.UUID]*models.UnansweredQuestion
	failWith error
}

func (m *memQuestions) List(_ context.Context, filter repository.QuestionFilter) ([]*models.UnansweredQuestion, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, 0, m.failWith
	}
	var out []*models.UnansweredQuestion
	for _, q := range m.rows {
		if q.Status == filter.Status {
			cp := *q
			out = append(out, &cp)
		}
	}
	return out, int64(len(out)), nil
}

func (m *memQuestions) Get(_ context.Context, id uuid.UUID) (*models.UnansweredQuestion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *q
	return &cp, nil
}

func (m *memQuestions) Update(_ context.Context, q *models.UnansweredQuestion, _ *models.TrainingExample) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *q
	m.rows[q.ID] = &cp
	return nil
}

func (m *memQuestions) Stats(context.Context) (map[models.QuestionStatus]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := map[models.QuestionStatus]int64{}
	for _, q := range m.rows {
		counts[q.Status]++
	}
	return counts, nil
}

func (m *memQuestions) Track(context.Context, string, *float64, time.Time) (*models.UnansweredQuestion, error) {
	return nil, errors.New("not used")
}

type memContexts struct {
	contexts map[uuid.UUID]*models.KnowledgeContext
}

func (m *memContexts) Get(_ context.Context, id uuid.UUID) (*models.KnowledgeContext, error) {
	kc, ok := m.contexts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return kc, nil
}

func (m *memContexts) ReplaceContent(_ context.Context, id uuid.UUID, content string, sections parser.Sections, at time.Time) (*models.KnowledgeContext, error) {
	kc, ok := m.contexts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	kc.Content = content
	kc.Sections = sections.Normalize()
	kc.ParsedAt = &at
	kc.UpdatedAt = at
	return kc, nil
}

type memFeedback struct {
	queries map[uuid.UUID]bool
	votes   map[uuid.UUID]models.Feedback
}

func (m *memFeedback) Record(_ context.Context, entry repository.FeedbackEntry) (bool, error) {
	if !m.queries[entry.QueryID] {
		return false, repository.ErrNotFound
	}
	_, amended := m.votes[entry.QueryID]
	m.votes[entry.QueryID] = entry.Feedback
	return amended, nil
}

func (m *memFeedback) Stats(_ context.Context, tenantID uuid.UUID) (models.FeedbackStats, error) {
	stats := models.FeedbackStats{CompanyGroupID: tenantID}
	for _, v := range m.votes {
		if v == models.FeedbackPositive {
			stats.Positive++
		} else {
			stats.Negative++
		}
	}
	return stats, nil
}

type fixture struct {
	app       *fiber.App
	jwt       *auth.JWTManager
	tenant    uuid.UUID
	questions *memQuestions
	contextID uuid.UUID
	queryID   uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := zap.NewNop()

	f := &fixture{
		jwt:       auth.NewJWTManager("test-secret", time.Hour),
		tenant:    uuid.New(),
		contextID: uuid.New(),
		queryID:   uuid.New(),
	}
	f.questions = &memQuestions{tenantID: f.tenant, rows: map[uuid.UUID]*models.UnansweredQuestion{}}

	scope := func(tenantID uuid.UUID) service.TenantQuestionStore {
		if tenantID != f.tenant {
			return &memQuestions{tenantID: tenantID, rows: map[uuid.UUID]*models.UnansweredQuestion{}}
		}
		return f.questions
	}
	contexts := &memContexts{contexts: map[uuid.UUID]*models.KnowledgeContext{
		f.contextID: {ID: f.contextID, Name: "vendas"},
	}}
	feedback := &memFeedback{queries: map[uuid.UUID]bool{f.queryID: true}, votes: map[uuid.UUID]models.Feedback{}}

	h := Handlers{
		Knowledge: handlers.NewKnowledgeHandler(service.NewKnowledgeService(contexts, cache.Noop{}, log), log),
		Triage:    handlers.NewTriageHandler(service.NewTriageService(scope, config.TriageConfig{}, log), log),
		Feedback:  handlers.NewFeedbackHandler(service.NewFeedbackService(feedback, log), log),
		Health:    handlers.NewHealthHandler(nil, log),
	}
	f.app = SetupRouter(h, f.jwt, config.ServerConfig{}, log)
	return f
}

func (f *fixture) addQuestion(status models.QuestionStatus) uuid.UUID {
	now := time.Now().UTC()
	q := &models.UnansweredQuestion{
		ID: uuid.New(), CompanyGroupID: f.tenant, UserQuestion: "Qual o faturamento?",
		AskCount: 1, PriorityScore: 1, Status: status, LastAskedAt: now, CreatedAt: now, UpdatedAt: now,
	}
	if status == models.StatusResolved {
		by := uuid.New()
		q.ResolvedAt, q.ResolvedBy = &now, &by
	}
	f.questions.rows[q.ID] = q
	return q.ID
}

func (f *fixture) token(t *testing.T, role auth.Role) string {
	t.Helper()
	token, err := f.jwt.GenerateToken(auth.Identity{UserID: uuid.New(), Role: role, CompanyGroupID: f.tenant})
	require.NoError(t, err)
	return token
}

func (f *fixture) do(t *testing.T, method, path, token, body string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var envelope map[string]any
	require.NoError(t, sonic.Unmarshal(raw, &envelope), string(raw))
	return resp.StatusCode, envelope
}

func data(t *testing.T, envelope map[string]any) map[string]any {
	t.Helper()
	d, ok := envelope["data"].(map[string]any)
	require.True(t, ok, "envelope without data: %v", envelope)
	return d
}

func TestHealthIsPublic(t *testing.T) {
	f := newFixture(t)
	status, body := f.do(t, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])
}

func TestAPIRequiresToken(t *testing.T) {
	f := newFixture(t)

	status, body := f.do(t, http.MethodGet, "/api/v1/questions", "", "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, false, body["success"])
	assert.EqualValues(t, 401, body["status"])

	status, _ = f.do(t, http.MethodGet, "/api/v1/questions", "not-a-jwt", "")
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestListQuestions(t *testing.T) {
	f := newFixture(t)
	f.addQuestion(models.StatusPending)
	f.addQuestion(models.StatusIgnored)

	status, body := f.do(t, http.MethodGet, "/api/v1/questions?limit=500", f.token(t, auth.RoleManager), "")
	require.Equal(t, http.StatusOK, status)

	page := data(t, body)
	assert.EqualValues(t, 1, page["total"])
	assert.EqualValues(t, 200, page["limit"])
	assert.Len(t, page["items"], 1)

	status, _ = f.do(t, http.MethodGet, "/api/v1/questions?status=archived", f.token(t, auth.RoleManager), "")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestTriageRoutesForbidReadOnlyRoles(t *testing.T) {
	f := newFixture(t)
	id := f.addQuestion(models.StatusPending)

	for _, role := range []auth.Role{auth.RoleViewer, auth.RoleOperator} {
		token := f.token(t, role)

		status, _ := f.do(t, http.MethodGet, "/api/v1/questions", token, "")
		assert.Equal(t, http.StatusForbidden, status, role)

		status, _ = f.do(t, http.MethodGet, "/api/v1/questions/stats", token, "")
		assert.Equal(t, http.StatusForbidden, status, role)

		status, _ = f.do(t, http.MethodPost, "/api/v1/questions/"+id.String()+"/action", token, `{"action":"ignore"}`)
		assert.Equal(t, http.StatusForbidden, status, role)

		// the role gate runs before the id and body are parsed
		status, _ = f.do(t, http.MethodPost, "/api/v1/questions/not-a-uuid/action", token, `{"action":"ignore"}`)
		assert.Equal(t, http.StatusForbidden, status, role)

		status, _ = f.do(t, http.MethodPost, "/api/v1/questions/"+id.String()+"/action", token, `{"action":`)
		assert.Equal(t, http.StatusForbidden, status, role)
	}
	assert.Equal(t, models.StatusPending, f.questions.rows[id].Status)
}

func TestQuestionAction(t *testing.T) {
	f := newFixture(t)
	token := f.token(t, auth.RoleAdmin)
	id := f.addQuestion(models.StatusPending)
	path := "/api/v1/questions/" + id.String() + "/action"

	status, body := f.do(t, http.MethodPost, path, token, `{"action":"resolve"}`)
	require.Equal(t, http.StatusOK, status)
	q := data(t, body)
	assert.Equal(t, "resolved", q["status"])
	assert.NotNil(t, q["resolved_at"])
	assert.NotNil(t, q["resolved_by"])

	status, body = f.do(t, http.MethodPost, path, token, `{"action":"resolve"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["error"], "transition")

	status, _ = f.do(t, http.MethodPost, path, token, `{"action":"archive"}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = f.do(t, http.MethodPost, path, token, `{"action":"resolve","training_example_id":"nope"}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = f.do(t, http.MethodPost, "/api/v1/questions/"+uuid.NewString()+"/action", token, `{"action":"ignore"}`)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = f.do(t, http.MethodPost, "/api/v1/questions/123/action", token, `{"action":"ignore"}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = f.do(t, http.MethodPost, path, token, `{"action":"reopen"}`)
	require.Equal(t, http.StatusOK, status)
	q = data(t, body)
	assert.Equal(t, "pending", q["status"])
	assert.Nil(t, q["resolved_at"])
}

func TestQuestionStats(t *testing.T) {
	f := newFixture(t)
	f.addQuestion(models.StatusPending)
	f.addQuestion(models.StatusResolved)

	status, body := f.do(t, http.MethodGet, "/api/v1/questions/stats", f.token(t, auth.RoleMaster), "")
	require.Equal(t, http.StatusOK, status)
	stats := data(t, body)
	assert.EqualValues(t, 1, stats["pending"])
	assert.EqualValues(t, 1, stats["resolved"])
	assert.EqualValues(t, 0, stats["ignored"])
	assert.EqualValues(t, 2, stats["total"])
}

func TestStoreFailureIsNotLeaked(t *testing.T) {
	f := newFixture(t)
	f.questions.failWith = errors.New("pq: password authentication failed")

	status, body := f.do(t, http.MethodGet, "/api/v1/questions", f.token(t, auth.RoleManager), "")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.NotContains(t, body["error"], "password")
}

func TestParseContext(t *testing.T) {
	f := newFixture(t)
	payload := `{"context_id":"` + f.contextID.String() + `","content":"## Medidas\nTotal Sales\n## Tabelas\nFactSales\n"}`

	status, body := f.do(t, http.MethodPost, "/api/v1/knowledge/parse", f.token(t, auth.RoleAdmin), payload)
	require.Equal(t, http.StatusOK, status)

	result := data(t, body)
	stats := result["stats"].(map[string]any)
	assert.EqualValues(t, 1, stats["medidas"])
	assert.EqualValues(t, 1, stats["tabelas"])
	assert.EqualValues(t, 0, stats["queries"])
	assert.EqualValues(t, 0, stats["exemplos"])
	assert.Equal(t, false, stats["hasBase"])

	kc := result["context"].(map[string]any)
	assert.Equal(t, "", kc["base"])
	assert.Equal(t, []any{}, kc["queries"])
	medidas := kc["medidas"].([]any)
	require.Len(t, medidas, 1)
	assert.Equal(t, "Total Sales", medidas[0].(map[string]any)["name"])
}

func TestParseContextValidation(t *testing.T) {
	f := newFixture(t)
	admin := f.token(t, auth.RoleMaster)

	status, _ := f.do(t, http.MethodPost, "/api/v1/knowledge/parse", f.token(t, auth.RoleManager),
		`{"context_id":"`+f.contextID.String()+`","content":"x"}`)
	assert.Equal(t, http.StatusForbidden, status)

	status, body := f.do(t, http.MethodPost, "/api/v1/knowledge/parse", admin, `{"content":"x"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["error"], "context_id")

	status, body = f.do(t, http.MethodPost, "/api/v1/knowledge/parse", admin, `{"context_id":"`+f.contextID.String()+`","content":"   "}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["error"], "content")

	status, _ = f.do(t, http.MethodPost, "/api/v1/knowledge/parse", admin, `{"context_id":"`+uuid.NewString()+`","content":"x"}`)
	assert.Equal(t, http.StatusNotFound, status)

}

func TestPreviewAndGetContext(t *testing.T) {
	f := newFixture(t)

	status, body := f.do(t, http.MethodPost, "/api/v1/knowledge/parse/preview", f.token(t, auth.RoleAdmin), `{"content":"texto livre"}`)
	require.Equal(t, http.StatusOK, status)
	preview := data(t, body)
	assert.Equal(t, "texto livre", preview["sections"].(map[string]any)["base"])

	status, body = f.do(t, http.MethodGet, "/api/v1/knowledge/contexts/"+f.contextID.String(), f.token(t, auth.RoleViewer), "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "vendas", data(t, body)["name"])

	status, _ = f.do(t, http.MethodGet, "/api/v1/knowledge/contexts/"+uuid.NewString(), f.token(t, auth.RoleViewer), "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestSubmitFeedback(t *testing.T) {
	f := newFixture(t)
	viewer := f.token(t, auth.RoleViewer)

	status, body := f.do(t, http.MethodPost, "/api/v1/feedback", viewer, `{"query_id":"`+f.queryID.String()+`","feedback":"positive"}`)
	require.Equal(t, http.StatusOK, status)
	result := data(t, body)
	assert.Equal(t, true, result["success"])
	assert.Equal(t, false, result["amended"])

	status, body = f.do(t, http.MethodPost, "/api/v1/feedback", viewer, `{"query_id":"`+f.queryID.String()+`","feedback":"negative","comment":"errado"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, data(t, body)["amended"])

	status, _ = f.do(t, http.MethodPost, "/api/v1/feedback", viewer, `{"query_id":"`+f.queryID.String()+`","feedback":"maybe"}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = f.do(t, http.MethodPost, "/api/v1/feedback", viewer, `{"query_id":"`+uuid.NewString()+`","feedback":"positive"}`)
	require.Equal(t, http.StatusOK, status)
	result = data(t, body)
	assert.Equal(t, false, result["success"])
	assert.Equal(t, service.FailureQueryNotFound, result["reason"])

	status, body = f.do(t, http.MethodGet, "/api/v1/feedback/stats", f.token(t, auth.RoleManager), "")
	require.Equal(t, http.StatusOK, status)
	stats := data(t, body)
	assert.EqualValues(t, 0, stats["positive"])
	assert.EqualValues(t, 1, stats["negative"])
	assert.InDelta(t, 1.0/3.0, stats["confidence"], 1e-9)
}
