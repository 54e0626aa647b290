package dto

type FeedbackRequest struct {
	QueryID  string `json:"query_id" validate:"required,uuid"`
	Feedback string `json:"feedback" validate:"required,oneof=positive negative"`
	Comment  string `json:"comment,omitempty"`
}

// FeedbackResponse keeps the boolean contract of the assistant client.
type FeedbackResponse struct {
	Success bool   `json:"success"`
	Amended bool   `json:"amended"`
	Reason  string `json:"reason,omitempty"`
}

type FeedbackStatsResponse struct {
	Positive   int64   `json:"positive"`
	Negative   int64   `json:"negative"`
	Confidence float64 `json:"confidence"`
}
