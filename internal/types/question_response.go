package types

import (
	"time"

	"github.com/google/uuid"
)

// QuestionResponse is one answer slot, created empty when the questionnaire is
// sent. Only the client mutates Answer; the lawyer side reads it via polling.
type QuestionResponse struct {
	ID              uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	QuestionnaireID uuid.UUID `gorm:"type:uuid;not null;index:idx_response_questionnaire_question,unique,priority:1" json:"questionnaire_id"`
	QuestionID      uuid.UUID `gorm:"type:uuid;not null;index:idx_response_questionnaire_question,unique,priority:2" json:"question_id"`

	Position     int     `gorm:"not null" json:"position"`
	QuestionText string  `gorm:"type:text;not null" json:"question_text"`
	Answer       *string `gorm:"type:text" json:"answer,omitempty"`

	AnsweredAt *time.Time `json:"answered_at,omitempty"`
	CreatedAt  time.Time  `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"not null;default:now()" json:"updated_at"`
}

func (QuestionResponse) TableName() string { return "question_response" }

func (r *QuestionResponse) Answered() bool {
	return r != nil && r.Answer != nil && *r.Answer != ""
}
