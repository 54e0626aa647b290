package dto

import (
	"time"

	"bi-admin/internal/models"
	"bi-admin/internal/parser"
)

type ParseRequest struct {
	ContextID string `json:"context_id" validate:"required,uuid"`
	Content   string `json:"content" validate:"required"`
}

type PreviewRequest struct {
	Content string `json:"content" validate:"required"`
}

type KnowledgeContextResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Content  string `json:"content"`
	parser.Sections
	ParsedAt  *string `json:"parsed_at"`
	UpdatedAt string  `json:"updated_at"`
}

type ParseResponse struct {
	Context KnowledgeContextResponse `json:"context"`
	Stats   parser.Stats             `json:"stats"`
}

type PreviewResponse struct {
	Sections parser.Sections `json:"sections"`
	Stats    parser.Stats    `json:"stats"`
}

func NewKnowledgeContextResponse(kc *models.KnowledgeContext) KnowledgeContextResponse {
	resp := KnowledgeContextResponse{
		ID:        kc.ID.String(),
		Name:      kc.Name,
		Content:   kc.Content,
		Sections:  kc.Sections.Normalize(),
		UpdatedAt: kc.UpdatedAt.Format(time.RFC3339),
	}
	if kc.ParsedAt != nil {
		s := kc.ParsedAt.Format(time.RFC3339)
		resp.ParsedAt = &s
	}
	return resp
}
