package models

import (
	"time"

	"bi-admin/internal/parser"

	"github.com/google/uuid"
)

// KnowledgeContext is a named body of documentation shared by every tenant.
// Its sections are always a full re-parse of Content.
type KnowledgeContext struct {
	ID      uuid.UUID `db:"id"`
	Name    string    `db:"name"`
	Content string    `db:"content"`
	parser.Sections
	ParsedAt  *time.Time `db:"parsed_at"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
}
