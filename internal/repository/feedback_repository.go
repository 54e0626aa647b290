package repository

import (
	"context"
	"errors"
	"time"

	"bi-admin/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// FeedbackEntry is one submission against a logged query.
type FeedbackEntry struct {
	TenantID uuid.UUID
	QueryID  uuid.UUID
	Feedback models.Feedback
	Comment  *string
	At       time.Time
}

type FeedbackRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewFeedbackRepository(db *pgxpool.Pool, logger *zap.Logger) *FeedbackRepository {
	return &FeedbackRepository{
		db:     db,
		logger: logger,
	}
}

// Record stores the feedback on the tenant's query log row and moves the
// tenant counters by the difference from any earlier submission. It reports
// whether an earlier submission was amended.
func (r *FeedbackRepository) Record(ctx context.Context, entry FeedbackEntry) (bool, error) {
	var amended bool
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		sql, args, err := squirrel.Select("feedback").
			From("ai_query_logs").
			Where(squirrel.Eq{"id": entry.QueryID, "company_group_id": entry.TenantID}).
			Suffix("FOR UPDATE").
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return err
		}

		var previous *string
		if err := tx.QueryRow(ctx, sql, args...).Scan(&previous); err != nil {
			return notFound(err)
		}

		sql, args, err = squirrel.Update("ai_query_logs").
			Set("feedback", string(entry.Feedback)).
			Set("feedback_comment", entry.Comment).
			Set("feedback_at", entry.At).
			Where(squirrel.Eq{"id": entry.QueryID, "company_group_id": entry.TenantID}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			return err
		}

		var prev *models.Feedback
		if previous != nil {
			if f, ok := models.ParseFeedback(*previous); ok {
				prev = &f
				amended = true
			}
		}

		positive, negative := models.FeedbackDelta(prev, entry.Feedback)
		if positive == 0 && negative == 0 {
			return nil
		}

		sql, args, err = squirrel.Insert("ai_feedback_stats").
			Columns("company_group_id", "positive_count", "negative_count", "updated_at").
			Values(entry.TenantID, max(positive, 0), max(negative, 0), entry.At).
			Suffix(`ON CONFLICT (company_group_id) DO UPDATE SET
				positive_count = GREATEST(ai_feedback_stats.positive_count + ?, 0),
				negative_count = GREATEST(ai_feedback_stats.negative_count + ?, 0),
				updated_at = EXCLUDED.updated_at`, positive, negative).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, sql, args...)
		return err
	})
	if err != nil {
		return false, err
	}
	return amended, nil
}

func (r *FeedbackRepository) Stats(ctx context.Context, tenantID uuid.UUID) (models.FeedbackStats, error) {
	stats := models.FeedbackStats{CompanyGroupID: tenantID}

	sql, args, err := squirrel.Select("positive_count", "negative_count", "updated_at").
		From("ai_feedback_stats").
		Where(squirrel.Eq{"company_group_id": tenantID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return stats, err
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&stats.Positive, &stats.Negative, &stats.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return stats, nil
	}
	return stats, err
}

// LogQuery stores an answered question so feedback can be attached to it
// later. A nil ID is replaced with a fresh one.
func (r *FeedbackRepository) LogQuery(ctx context.Context, log *models.QueryLog) error {
	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}

	sql, args, err := squirrel.Insert("ai_query_logs").
		Columns("id", "company_group_id", "user_id", "question", "answer").
		Values(log.ID, log.CompanyGroupID, log.UserID, log.Question, log.Answer).
		Suffix("RETURNING created_at").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&log.CreatedAt); err != nil {
		r.logger.Error("Failed to log query", zap.String("company_group_id", log.CompanyGroupID.String()), zap.Error(err))
		return err
	}
	return nil
}
