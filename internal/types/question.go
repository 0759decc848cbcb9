package types

import (
	"time"

	"github.com/google/uuid"
)

// QuestionnaireQuestion is the client-facing rendering of one discovery
// request. GeneratedText keeps the compiler's original output verbatim so an
// edited question can be reverted to it; CurrentText is what the client sees.
type QuestionnaireQuestion struct {
	ID     uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CaseID uuid.UUID `gorm:"type:uuid;not null;index:idx_question_case_position,unique,priority:1" json:"case_id"`
	// Set when the questionnaire is sent; nil while the set is only compiled.
	QuestionnaireID *uuid.UUID `gorm:"type:uuid;index" json:"questionnaire_id,omitempty"`

	Position       int    `gorm:"not null;index:idx_question_case_position,unique,priority:2" json:"position"`
	SourceCategory string `gorm:"not null" json:"source_category"`
	SourceNumber   int    `gorm:"not null" json:"source_number"`

	LegalText     string `gorm:"type:text;not null" json:"legal_text"`
	GeneratedText string `gorm:"type:text;not null" json:"generated_text"`
	CurrentText   string `gorm:"type:text;not null" json:"current_text"`
	Edited        bool   `gorm:"not null;default:false" json:"edited"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (QuestionnaireQuestion) TableName() string { return "questionnaire_question" }
