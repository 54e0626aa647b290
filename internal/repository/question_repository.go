package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bi-admin/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var questionColumns = []string{
	"id", "company_group_id", "user_question", "ask_count", "priority_score", "status",
	"last_asked_at", "resolved_at", "resolved_by", "training_example_id", "created_at", "updated_at",
}

// QuestionFilter narrows a tenant's triage queue.
type QuestionFilter struct {
	Status models.QuestionStatus
	Search string
	Limit  int
	Offset int
}

type QuestionRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewQuestionRepository(db *pgxpool.Pool, logger *zap.Logger) *QuestionRepository {
	return &QuestionRepository{
		db:     db,
		logger: logger,
	}
}

// ForTenant scopes every question query to one company group. There is no
// other way to reach question rows.
func (r *QuestionRepository) ForTenant(tenantID uuid.UUID) *TenantQuestions {
	return &TenantQuestions{
		db:       r.db,
		logger:   r.logger.With(zap.String("company_group_id", tenantID.String())),
		tenantID: tenantID,
	}
}

type TenantQuestions struct {
	db       *pgxpool.Pool
	logger   *zap.Logger
	tenantID uuid.UUID
}

func (q *TenantQuestions) TenantID() uuid.UUID {
	return q.tenantID
}

func (q *TenantQuestions) selectFrom(columns ...string) squirrel.SelectBuilder {
	return squirrel.Select(columns...).
		From("unanswered_questions").
		Where(squirrel.Eq{"company_group_id": q.tenantID}).
		PlaceholderFormat(squirrel.Dollar)
}

func (q *TenantQuestions) filtered(columns []string, filter QuestionFilter) squirrel.SelectBuilder {
	query := q.selectFrom(columns...).Where(squirrel.Eq{"status": string(filter.Status)})
	if filter.Search != "" {
		query = query.Where(squirrel.ILike{"user_question": containsPattern(filter.Search)})
	}
	return query
}

// List returns one page of the queue, highest priority first, and the total
// number of rows matching the filter.
func (q *TenantQuestions) List(ctx context.Context, filter QuestionFilter) ([]*models.UnansweredQuestion, int64, error) {
	countSQL, countArgs, err := q.filtered([]string{"COUNT(*)"}, filter).ToSql()
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := q.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := q.filtered(questionColumns, filter).
		OrderBy("priority_score DESC", "last_asked_at DESC", "id").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, err
	}

	rows, err := q.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	questions := make([]*models.UnansweredQuestion, 0, filter.Limit)
	for rows.Next() {
		question, err := scanQuestion(rows)
		if err != nil {
			return nil, 0, err
		}
		questions = append(questions, question)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return questions, total, nil
}

func (q *TenantQuestions) Get(ctx context.Context, id uuid.UUID) (*models.UnansweredQuestion, error) {
	sql, args, err := q.selectFrom(questionColumns...).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}

	question, err := scanQuestion(q.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, notFound(err)
	}
	return question, nil
}

// Update persists the status and resolution fields of question. When example
// is not nil it is inserted first and linked, in the same transaction.
func (q *TenantQuestions) Update(ctx context.Context, question *models.UnansweredQuestion, example *models.TrainingExample) error {
	return pgx.BeginFunc(ctx, q.db, func(tx pgx.Tx) error {
		if example != nil {
			sql, args, err := squirrel.Insert("training_examples").
				Columns("id", "company_group_id", "question_id", "question", "answer", "created_by", "created_at").
				Values(example.ID, q.tenantID, example.QuestionID, example.Question, example.Answer, example.CreatedBy, example.CreatedAt).
				PlaceholderFormat(squirrel.Dollar).
				ToSql()
			if err != nil {
				return err
			}
			if _, err := tx.Exec(ctx, sql, args...); err != nil {
				return fmt.Errorf("failed to insert training example: %w", err)
			}
		}

		if id := question.TrainingExampleID; id != nil && example == nil {
			if err := q.requireExample(ctx, tx, *id); err != nil {
				return err
			}
		}

		sql, args, err := squirrel.Update("unanswered_questions").
			Set("status", string(question.Status)).
			Set("resolved_at", question.ResolvedAt).
			Set("resolved_by", question.ResolvedBy).
			Set("training_example_id", question.TrainingExampleID).
			Set("updated_at", question.UpdatedAt).
			Where(squirrel.Eq{"id": question.ID, "company_group_id": q.tenantID}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, sql, args...)
		if err != nil {
			return classify(err)
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// requireExample fails with ErrInvalidReference unless the training example
// exists in the tenant. Other tenants' examples look exactly like missing ones.
func (q *TenantQuestions) requireExample(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	sql, args, err := q.exampleLookup(id).ToSql()
	if err != nil {
		return err
	}

	var one int
	if err := tx.QueryRow(ctx, sql, args...).Scan(&one); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return errUnknownExample
		}
		return err
	}
	return nil
}

func (q *TenantQuestions) exampleLookup(id uuid.UUID) squirrel.SelectBuilder {
	return squirrel.Select("1").
		From("training_examples").
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"company_group_id": q.tenantID}).
		Suffix("FOR SHARE").
		PlaceholderFormat(squirrel.Dollar)
}

// Stats counts the tenant's questions per status.
func (q *TenantQuestions) Stats(ctx context.Context) (map[models.QuestionStatus]int64, error) {
	sql, args, err := q.selectFrom("status", "COUNT(*)").GroupBy("status").ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := q.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[models.QuestionStatus]int64{
		models.StatusPending:  0,
		models.StatusResolved: 0,
		models.StatusIgnored:  0,
	}
	for rows.Next() {
		var (
			status string
			n      int64
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[models.QuestionStatus(status)] = n
	}
	return counts, rows.Err()
}

// Track records one more ask of question. Questions are matched
// case-insensitively; a repeat bumps ask_count and last_asked_at and raises
// the priority, leaving the status alone.
func (q *TenantQuestions) Track(ctx context.Context, question string, priority *float64, at time.Time) (*models.UnansweredQuestion, error) {
	initial := 1.0
	if priority != nil {
		initial = *priority
	}

	sql, args, err := squirrel.Insert("unanswered_questions").
		Columns("id", "company_group_id", "user_question", "ask_count", "priority_score", "status", "last_asked_at", "created_at", "updated_at").
		Values(uuid.New(), q.tenantID, question, 1, initial, string(models.StatusPending), at, at, at).
		Suffix(`ON CONFLICT (company_group_id, lower(user_question)) DO UPDATE SET
			ask_count = unanswered_questions.ask_count + 1,
			last_asked_at = EXCLUDED.last_asked_at,
			updated_at = EXCLUDED.updated_at,
			priority_score = GREATEST(unanswered_questions.priority_score, COALESCE(?::double precision, unanswered_questions.ask_count + 1))
			RETURNING `+strings.Join(questionColumns, ", "), priority).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	tracked, err := scanQuestion(q.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, err
	}

	q.logger.Debug("Question tracked",
		zap.String("question_id", tracked.ID.String()),
		zap.Int("ask_count", tracked.AskCount),
	)
	return tracked, nil
}

func scanQuestion(row pgx.Row) (*models.UnansweredQuestion, error) {
	var (
		question models.UnansweredQuestion
		status   string
	)
	if err := row.Scan(
		&question.ID, &question.CompanyGroupID, &question.UserQuestion, &question.AskCount, &question.PriorityScore, &status,
		&question.LastAskedAt, &question.ResolvedAt, &question.ResolvedBy, &question.TrainingExampleID, &question.CreatedAt, &question.UpdatedAt,
	); err != nil {
		return nil, err
	}
	question.Status = models.QuestionStatus(status)
	return &question, nil
}
