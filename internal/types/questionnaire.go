package types

import (
	"time"

	"github.com/google/uuid"
)

// Questionnaire status values
const (
	QuestionnaireStatusPending    = "pending"
	QuestionnaireStatusInProgress = "in_progress"
	QuestionnaireStatusCompleted  = "completed"
)

// ClientQuestionnaire is the live client-facing questionnaire. One active
// instance per case. CompletionNotifiedAt is the durable idempotency guard for
// the lawyer-side completion notification: set before sending, cleared again
// if the send fails so a later answer save can retry.
type ClientQuestionnaire struct {
	ID       uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CaseID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_questionnaire_case" json:"case_id"`
	ClientID uuid.UUID `gorm:"type:uuid;not null;index" json:"client_id"`

	Status             string `gorm:"not null;default:'pending'" json:"status"`
	TotalQuestions     int    `gorm:"not null;default:0" json:"total_questions"`
	CompletedQuestions int    `gorm:"not null;default:0" json:"completed_questions"`

	ResponseDeadline     *time.Time `json:"response_deadline,omitempty"`
	SentAt               time.Time  `gorm:"not null;default:now()" json:"sent_at"`
	LastRemindedAt       *time.Time `json:"last_reminded_at,omitempty"`
	CompletedAt          *time.Time `json:"completed_at,omitempty"`
	CompletionNotifiedAt *time.Time `json:"completion_notified_at,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (ClientQuestionnaire) TableName() string { return "client_questionnaire" }
