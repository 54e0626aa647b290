package models

import (
	"time"

	"github.com/google/uuid"
)

// TrainingExample is a reusable question/answer pair produced by resolving a
// triage record.
type TrainingExample struct {
	ID             uuid.UUID  `db:"id"`
	CompanyGroupID uuid.UUID  `db:"company_group_id"`
	QuestionID     *uuid.UUID `db:"question_id"`
	Question       string     `db:"question"`
	Answer         string     `db:"answer"`
	CreatedBy      uuid.UUID  `db:"created_by"`
	CreatedAt      time.Time  `db:"created_at"`
}
