package handlers

import (
	"context"
	"fmt"

	"bi-admin/internal/dto"
	"bi-admin/internal/service"
	"bi-admin/pkg/auth"
	"bi-admin/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type FeedbackService interface {
	RecordFeedback(ctx context.Context, identity auth.Identity, queryID uuid.UUID, feedback string, comment string) (service.FeedbackOutcome, error)
	Stats(ctx context.Context, identity auth.Identity) (*service.FeedbackSummary, error)
}

type FeedbackHandler struct {
	feedbackService FeedbackService
	logger          *zap.Logger
}

func NewFeedbackHandler(feedbackService FeedbackService, logger *zap.Logger) *FeedbackHandler {
	return &FeedbackHandler{
		feedbackService: feedbackService,
		logger:          logger,
	}
}

// SubmitFeedback godoc
// @Summary Rate an assistant answer
// @Description A second submission for the same query amends the first
// @Tags feedback
// @Accept json
// @Produce json
// @Param request body dto.FeedbackRequest true "Feedback"
// @Security Bearer
// @Success 200 {object} response.Envelope{data=dto.FeedbackResponse}
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /api/v1/feedback [post]
func (h *FeedbackHandler) SubmitFeedback(c *fiber.Ctx) error {
	identity, err := getIdentity(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	var req dto.FeedbackRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	queryID := uuid.Nil
	if req.QueryID != "" {
		queryID, err = uuid.Parse(req.QueryID)
		if err != nil {
			return respondError(c, h.logger, fmt.Errorf("%w: invalid query_id", service.ErrValidation))
		}
	}

	outcome, err := h.feedbackService.RecordFeedback(c.UserContext(), identity, queryID, req.Feedback, req.Comment)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	resp := dto.FeedbackResponse{Success: outcome.OK(), Amended: outcome.Amended}
	if outcome.Failure != nil {
		resp.Reason = outcome.Failure.Reason
	}
	return response.Success(c, resp)
}

// FeedbackStats godoc
// @Summary Tenant feedback counters and confidence
// @Tags feedback
// @Produce json
// @Security Bearer
// @Success 200 {object} response.Envelope{data=dto.FeedbackStatsResponse}
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /api/v1/feedback/stats [get]
func (h *FeedbackHandler) FeedbackStats(c *fiber.Ctx) error {
	identity, err := getIdentity(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	summary, err := h.feedbackService.Stats(c.UserContext(), identity)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return response.Success(c, dto.FeedbackStatsResponse{
		Positive:   summary.Positive,
		Negative:   summary.Negative,
		Confidence: summary.Confidence,
	})
}
