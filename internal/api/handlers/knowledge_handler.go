package handlers

import (
	"context"
	"fmt"

	"bi-admin/internal/dto"
	"bi-admin/internal/models"
	"bi-admin/internal/parser"
	"bi-admin/internal/service"
	"bi-admin/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type KnowledgeService interface {
	ApplyParse(ctx context.Context, contextID uuid.UUID, content string) (*service.ParseResult, error)
	PreviewParse(content string) (parser.Sections, parser.Stats, error)
	GetContext(ctx context.Context, contextID uuid.UUID) (*models.KnowledgeContext, error)
}

type KnowledgeHandler struct {
	knowledgeService KnowledgeService
	logger           *zap.Logger
}

func NewKnowledgeHandler(knowledgeService KnowledgeService, logger *zap.Logger) *KnowledgeHandler {
	return &KnowledgeHandler{
		knowledgeService: knowledgeService,
		logger:           logger,
	}
}

// ParseContext godoc
// @Summary Parse documentation into a knowledge context
// @Description Replaces the context content and all of its sections in one write
// @Tags knowledge
// @Accept json
// @Produce json
// @Param request body dto.ParseRequest true "Context and raw documentation"
// @Security Bearer
// @Success 200 {object} response.Envelope{data=dto.ParseResponse}
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Router /api/v1/knowledge/parse [post]
func (h *KnowledgeHandler) ParseContext(c *fiber.Ctx) error {
	identity, err := getIdentity(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	if err := service.AuthorizeEdit(identity); err != nil {
		return respondError(c, h.logger, err)
	}

	var req dto.ParseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	contextID := uuid.Nil
	if req.ContextID != "" {
		contextID, err = uuid.Parse(req.ContextID)
		if err != nil {
			return respondError(c, h.logger, fmt.Errorf("%w: invalid context_id", service.ErrValidation))
		}
	}

	result, err := h.knowledgeService.ApplyParse(c.UserContext(), contextID, req.Content)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	h.logger.Info("Knowledge context updated",
		zap.String("context_id", contextID.String()),
		zap.String("user_id", identity.UserID.String()),
	)

	return response.Success(c, dto.ParseResponse{
		Context: dto.NewKnowledgeContextResponse(result.Context),
		Stats:   result.Stats,
	})
}

// PreviewParse godoc
// @Summary Parse documentation without saving
// @Tags knowledge
// @Accept json
// @Produce json
// @Param request body dto.PreviewRequest true "Raw documentation"
// @Security Bearer
// @Success 200 {object} response.Envelope{data=dto.PreviewResponse}
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /api/v1/knowledge/parse/preview [post]
func (h *KnowledgeHandler) PreviewParse(c *fiber.Ctx) error {
	identity, err := getIdentity(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	if err := service.AuthorizeEdit(identity); err != nil {
		return respondError(c, h.logger, err)
	}

	var req dto.PreviewRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	sections, stats, err := h.knowledgeService.PreviewParse(req.Content)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return response.Success(c, dto.PreviewResponse{Sections: sections, Stats: stats})
}

// GetContext godoc
// @Summary Get a knowledge context with its parsed sections
// @Tags knowledge
// @Produce json
// @Param id path string true "Context ID"
// @Security Bearer
// @Success 200 {object} response.Envelope{data=dto.KnowledgeContextResponse}
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /api/v1/knowledge/contexts/{id} [get]
func (h *KnowledgeHandler) GetContext(c *fiber.Ctx) error {
	if _, err := getIdentity(c); err != nil {
		return respondError(c, h.logger, err)
	}

	contextID, err := parseID(c, "id")
	if err != nil {
		return respondError(c, h.logger, err)
	}

	kc, err := h.knowledgeService.GetContext(c.UserContext(), contextID)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return response.Success(c, dto.NewKnowledgeContextResponse(kc))
}
