package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bi-admin/internal/models"
	"bi-admin/internal/parser"

	"github.com/Masterminds/squirrel"
	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var contextColumns = []string{
	"id", "name", "content", "base", "medidas", "tabelas", "queries", "exemplos",
	"parsed_at", "created_at", "updated_at",
}

type KnowledgeContextRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewKnowledgeContextRepository(db *pgxpool.Pool, logger *zap.Logger) *KnowledgeContextRepository {
	return &KnowledgeContextRepository{
		db:     db,
		logger: logger,
	}
}

func (r *KnowledgeContextRepository) Get(ctx context.Context, id uuid.UUID) (*models.KnowledgeContext, error) {
	query := squirrel.Select(contextColumns...).
		From("knowledge_contexts").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	kc, err := scanContext(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, notFound(err)
	}
	return kc, nil
}

// EnsureByName returns the id of the context called name, creating an empty
// one when it does not exist yet.
func (r *KnowledgeContextRepository) EnsureByName(ctx context.Context, name string) (uuid.UUID, error) {
	now := time.Now().UTC()
	query := squirrel.Insert("knowledge_contexts").
		Columns("id", "name", "content", "created_at", "updated_at").
		Values(uuid.New(), name, "", now, now).
		Suffix("ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name RETURNING id").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return uuid.Nil, err
	}

	var id uuid.UUID
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// ReplaceContent overwrites content and every section column in a single
// statement, so readers never observe content and sections out of step.
func (r *KnowledgeContextRepository) ReplaceContent(ctx context.Context, id uuid.UUID, content string, sections parser.Sections, parsedAt time.Time) (*models.KnowledgeContext, error) {
	sections = sections.Normalize()

	encoded := make(map[string]string, 4)
	for column, v := range map[string]any{
		"medidas":  sections.Medidas,
		"tabelas":  sections.Tabelas,
		"queries":  sections.Queries,
		"exemplos": sections.Exemplos,
	} {
		s, err := jsonb(v)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", column, err)
		}
		encoded[column] = s
	}

	query := squirrel.Update("knowledge_contexts").
		Set("content", content).
		Set("base", sections.Base).
		Set("medidas", encoded["medidas"]).
		Set("tabelas", encoded["tabelas"]).
		Set("queries", encoded["queries"]).
		Set("exemplos", encoded["exemplos"]).
		Set("parsed_at", parsedAt).
		Set("updated_at", parsedAt).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + strings.Join(contextColumns, ", ")).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	kc, err := scanContext(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, notFound(err)
	}

	r.logger.Debug("Knowledge context content replaced",
		zap.String("context_id", id.String()),
		zap.Int("medidas", len(kc.Medidas)),
		zap.Int("tabelas", len(kc.Tabelas)),
	)
	return kc, nil
}

func scanContext(row pgx.Row) (*models.KnowledgeContext, error) {
	var (
		kc                                  models.KnowledgeContext
		medidas, tabelas, queries, exemplos []byte
	)
	if err := row.Scan(
		&kc.ID, &kc.Name, &kc.Content, &kc.Base, &medidas, &tabelas, &queries, &exemplos,
		&kc.ParsedAt, &kc.CreatedAt, &kc.UpdatedAt,
	); err != nil {
		return nil, err
	}

	for _, col := range []struct {
		raw []byte
		dst any
	}{
		{medidas, &kc.Medidas},
		{tabelas, &kc.Tabelas},
		{queries, &kc.Queries},
		{exemplos, &kc.Exemplos},
	} {
		if len(col.raw) == 0 {
			continue
		}
		if err := sonic.Unmarshal(col.raw, col.dst); err != nil {
			return nil, fmt.Errorf("failed to decode sections: %w", err)
		}
	}
	kc.Sections = kc.Sections.Normalize()
	return &kc, nil
}
