package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrUnknownAction     = errors.New("unknown triage action")
	ErrIllegalTransition = errors.New("illegal status transition")
)

type QuestionStatus string

const (
	StatusPending  QuestionStatus = "pending"
	StatusResolved QuestionStatus = "resolved"
	StatusIgnored  QuestionStatus = "ignored"
)

func ParseQuestionStatus(s string) (QuestionStatus, bool) {
	switch status := QuestionStatus(strings.ToLower(strings.TrimSpace(s))); status {
	case StatusPending, StatusResolved, StatusIgnored:
		return status, true
	}
	return "", false
}

type TriageAction string

const (
	ActionResolve TriageAction = "resolve"
	ActionIgnore  TriageAction = "ignore"
	ActionReopen  TriageAction = "reopen"
)

func ParseTriageAction(s string) (TriageAction, bool) {
	switch action := TriageAction(strings.ToLower(strings.TrimSpace(s))); action {
	case ActionResolve, ActionIgnore, ActionReopen:
		return action, true
	}
	return "", false
}

// UnansweredQuestion is a question the assistant failed to answer.
// ResolvedAt and ResolvedBy are set exactly when Status is resolved;
// TrainingExampleID is only ever set on resolved questions.
type UnansweredQuestion struct {
	ID                uuid.UUID      `db:"id"`
	CompanyGroupID    uuid.UUID      `db:"company_group_id"`
	UserQuestion      string         `db:"user_question"`
	AskCount          int            `db:"ask_count"`
	PriorityScore     float64        `db:"priority_score"`
	Status            QuestionStatus `db:"status"`
	LastAskedAt       time.Time      `db:"last_asked_at"`
	ResolvedAt        *time.Time     `db:"resolved_at"`
	ResolvedBy        *uuid.UUID     `db:"resolved_by"`
	TrainingExampleID *uuid.UUID     `db:"training_example_id"`
	CreatedAt         time.Time      `db:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at"`
}

// Apply moves the question through the triage state machine:
//
//	pending  --resolve--> resolved
//	pending  --ignore-->  ignored
//	resolved --reopen-->  pending
//	ignored  --reopen-->  pending
//
// Any other combination returns ErrIllegalTransition and leaves q untouched.
func (q *UnansweredQuestion) Apply(action TriageAction, actor uuid.UUID, trainingExampleID *uuid.UUID, now time.Time) error {
	switch action {
	case ActionResolve:
		if q.Status != StatusPending {
			return fmt.Errorf("%w: cannot resolve a %s question", ErrIllegalTransition, q.Status)
		}
		q.Status = StatusResolved
		q.ResolvedAt = &now
		q.ResolvedBy = &actor
		if trainingExampleID != nil {
			id := *trainingExampleID
			q.TrainingExampleID = &id
		}
	case ActionIgnore:
		if q.Status != StatusPending {
			return fmt.Errorf("%w: cannot ignore a %s question", ErrIllegalTransition, q.Status)
		}
		q.Status = StatusIgnored
	case ActionReopen:
		if q.Status != StatusResolved && q.Status != StatusIgnored {
			return fmt.Errorf("%w: cannot reopen a %s question", ErrIllegalTransition, q.Status)
		}
		q.Status = StatusPending
		q.ResolvedAt = nil
		q.ResolvedBy = nil
		q.TrainingExampleID = nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
	q.UpdatedAt = now
	return nil
}
