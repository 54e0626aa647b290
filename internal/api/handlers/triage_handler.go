package handlers

import (
	"context"
	"fmt"

	"bi-admin/internal/dto"
	"bi-admin/internal/models"
	"bi-admin/internal/service"
	"bi-admin/pkg/auth"
	"bi-admin/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TriageService interface {
	List(ctx context.Context, identity auth.Identity, params service.ListParams) (*service.QuestionPage, error)
	Stats(ctx context.Context, identity auth.Identity) (map[models.QuestionStatus]int64, error)
	Transition(ctx context.Context, identity auth.Identity, req service.TransitionRequest) (*models.UnansweredQuestion, error)
}

type TriageHandler struct {
	triageService TriageService
	logger        *zap.Logger
}

func NewTriageHandler(triageService TriageService, logger *zap.Logger) *TriageHandler {
	return &TriageHandler{
		triageService: triageService,
		logger:        logger,
	}
}

// ListQuestions godoc
// @Summary List unanswered questions
// @Description Tenant triage queue ordered by priority, then by most recent ask
// @Tags questions
// @Produce json
// @Param status query string false "pending (default), resolved or ignored"
// @Param search query string false "Case-insensitive substring"
// @Param limit query int false "Page size (default 50, max 200)"
// @Param offset query int false "Offset"
// @Security Bearer
// @Success 200 {object} response.Envelope{data=dto.QuestionPageResponse}
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /api/v1/questions [get]
func (h *TriageHandler) ListQuestions(c *fiber.Ctx) error {
	identity, err := getIdentity(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	page, err := h.triageService.List(c.UserContext(), identity, service.ListParams{
		Status: c.Query("status"),
		Search: c.Query("search"),
		Limit:  c.QueryInt("limit", 0),
		Offset: c.QueryInt("offset", 0),
	})
	if err != nil {
		return respondError(c, h.logger, err)
	}

	items := make([]dto.QuestionResponse, 0, len(page.Items))
	for _, q := range page.Items {
		items = append(items, dto.NewQuestionResponse(q))
	}

	return response.Success(c, dto.QuestionPageResponse{
		Items:  items,
		Total:  page.Total,
		Limit:  page.Limit,
		Offset: page.Offset,
	})
}

// QuestionStats godoc
// @Summary Count questions per status
// @Tags questions
// @Produce json
// @Security Bearer
// @Success 200 {object} response.Envelope{data=dto.QuestionStatsResponse}
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /api/v1/questions/stats [get]
func (h *TriageHandler) QuestionStats(c *fiber.Ctx) error {
	identity, err := getIdentity(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	counts, err := h.triageService.Stats(c.UserContext(), identity)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return response.Success(c, dto.NewQuestionStatsResponse(counts))
}

// QuestionAction godoc
// @Summary Resolve, ignore or reopen a question
// @Description resolve may carry training_example_id (an example of the caller's tenant) or answer to create a new training example, not both
// @Tags questions
// @Accept json
// @Produce json
// @Param id path string true "Question ID"
// @Param request body dto.QuestionActionRequest true "Action"
// @Security Bearer
// @Success 200 {object} response.Envelope{data=dto.QuestionResponse}
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /api/v1/questions/{id}/action [post]
func (h *TriageHandler) QuestionAction(c *fiber.Ctx) error {
	identity, err := getIdentity(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	if err := service.AuthorizeTriage(identity); err != nil {
		return respondError(c, h.logger, err)
	}

	questionID, err := parseID(c, "id")
	if err != nil {
		return respondError(c, h.logger, err)
	}

	var req dto.QuestionActionRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	var exampleID *uuid.UUID
	if req.TrainingExampleID != "" {
		id, err := uuid.Parse(req.TrainingExampleID)
		if err != nil {
			return respondError(c, h.logger, fmt.Errorf("%w: invalid training_example_id", service.ErrValidation))
		}
		exampleID = &id
	}

	question, err := h.triageService.Transition(c.UserContext(), identity, service.TransitionRequest{
		QuestionID:        questionID,
		Action:            req.Action,
		TrainingExampleID: exampleID,
		Answer:            req.Answer,
	})
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return response.Success(c, dto.NewQuestionResponse(question))
}
