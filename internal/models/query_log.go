package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Feedback string

const (
	FeedbackPositive Feedback = "positive"
	FeedbackNegative Feedback = "negative"
)

func ParseFeedback(s string) (Feedback, bool) {
	switch f := Feedback(strings.ToLower(strings.TrimSpace(s))); f {
	case FeedbackPositive, FeedbackNegative:
		return f, true
	}
	return "", false
}

// QueryLog is a question/answer pair logged by the assistant. Feedback is
// attached to it; a second submission amends the first.
type QueryLog struct {
	ID              uuid.UUID  `db:"id"`
	CompanyGroupID  uuid.UUID  `db:"company_group_id"`
	UserID          *uuid.UUID `db:"user_id"`
	Question        string     `db:"question"`
	Answer          string     `db:"answer"`
	Feedback        *Feedback  `db:"feedback"`
	FeedbackComment *string    `db:"feedback_comment"`
	FeedbackAt      *time.Time `db:"feedback_at"`
	CreatedAt       time.Time  `db:"created_at"`
}

// FeedbackStats aggregates the feedback signal of a tenant.
type FeedbackStats struct {
	CompanyGroupID uuid.UUID `db:"company_group_id"`
	Positive       int64     `db:"positive_count"`
	Negative       int64     `db:"negative_count"`
	UpdatedAt      time.Time `db:"updated_at"`
}

// Confidence is the Laplace-smoothed share of positive feedback, 0.5 with no data.
func (s FeedbackStats) Confidence() float64 {
	return float64(s.Positive+1) / float64(s.Positive+s.Negative+2)
}

// FeedbackDelta returns the counter changes for moving a query's feedback from
// previous (nil when none) to next.
func FeedbackDelta(previous *Feedback, next Feedback) (positive, negative int64) {
	if previous != nil {
		if *previous == next {
			return 0, 0
		}
		switch *previous {
		case FeedbackPositive:
			positive--
		case FeedbackNegative:
			negative--
		}
	}
	switch next {
	case FeedbackPositive:
		positive++
	case FeedbackNegative:
		negative++
	}
	return positive, negative
}
