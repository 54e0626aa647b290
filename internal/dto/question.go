package dto

import (
	"time"

	"bi-admin/internal/models"
)

type QuestionActionRequest struct {
	Action            string `json:"action" validate:"required,oneof=resolve ignore reopen"`
	TrainingExampleID string `json:"training_example_id,omitempty"`
	Answer            string `json:"answer,omitempty"`
}

type QuestionResponse struct {
	ID                string  `json:"id"`
	UserQuestion      string  `json:"user_question"`
	AskCount          int     `json:"ask_count"`
	PriorityScore     float64 `json:"priority_score"`
	Status            string  `json:"status"`
	LastAskedAt       string  `json:"last_asked_at"`
	ResolvedAt        *string `json:"resolved_at"`
	ResolvedBy        *string `json:"resolved_by"`
	TrainingExampleID *string `json:"training_example_id"`
	CreatedAt         string  `json:"created_at"`
	UpdatedAt         string  `json:"updated_at"`
}

type QuestionStatsResponse struct {
	Pending  int64 `json:"pending"`
	Resolved int64 `json:"resolved"`
	Ignored  int64 `json:"ignored"`
	Total    int64 `json:"total"`
}

type QuestionPageResponse struct {
	Items  []QuestionResponse `json:"items"`
	Total  int64              `json:"total"`
	Limit  int                `json:"limit"`
	Offset int                `json:"offset"`
}

func NewQuestionResponse(q *models.UnansweredQuestion) QuestionResponse {
	resp := QuestionResponse{
		ID:            q.ID.String(),
		UserQuestion:  q.UserQuestion,
		AskCount:      q.AskCount,
		PriorityScore: q.PriorityScore,
		Status:        string(q.Status),
		LastAskedAt:   q.LastAskedAt.Format(time.RFC3339),
		CreatedAt:     q.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     q.UpdatedAt.Format(time.RFC3339),
	}
	if q.ResolvedAt != nil {
		s := q.ResolvedAt.Format(time.RFC3339)
		resp.ResolvedAt = &s
	}
	if q.ResolvedBy != nil {
		s := q.ResolvedBy.String()
		resp.ResolvedBy = &s
	}
	if q.TrainingExampleID != nil {
		s := q.TrainingExampleID.String()
		resp.TrainingExampleID = &s
	}
	return resp
}

func NewQuestionStatsResponse(counts map[models.QuestionStatus]int64) QuestionStatsResponse {
	resp := QuestionStatsResponse{
		Pending:  counts[models.StatusPending],
		Resolved: counts[models.StatusResolved],
		Ignored:  counts[models.StatusIgnored],
	}
	resp.Total = resp.Pending + resp.Resolved + resp.Ignored
	return resp
}
