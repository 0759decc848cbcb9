package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Workflow stages, in pipeline order. Navigation is bidirectional; forward
// transitions are guarded, backward ones never are.
const (
	StageUpload         = "upload"
	StageCaseInfo       = "case_info"
	StageClientSelect   = "client_select"
	StageQuestionReview = "question_review"
	StageAwaitingClient = "awaiting_client"
	StageStrategyReview = "strategy_review"
	StageGenerate       = "generate"
)

var StageOrder = []string{
	StageUpload,
	StageCaseInfo,
	StageClientSelect,
	StageQuestionReview,
	StageAwaitingClient,
	StageStrategyReview,
	StageGenerate,
}

func StageIndex(stage string) int {
	for i, s := range StageOrder {
		if s == stage {
			return i
		}
	}
	return -1
}

func NextStage(stage string) (string, bool) {
	i := StageIndex(stage)
	if i < 0 || i >= len(StageOrder)-1 {
		return "", false
	}
	return StageOrder[i+1], true
}

func PrevStage(stage string) (string, bool) {
	i := StageIndex(stage)
	if i <= 0 {
		return "", false
	}
	return StageOrder[i-1], true
}

// WorkflowState is the single persisted record of where a case sits in the
// discovery-response pipeline. Stage position lives here and only here; the
// stage artifacts themselves belong to their owning tables.
type WorkflowState struct {
	ID     uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CaseID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_workflow_state_case" json:"case_id"`

	Stage        string         `gorm:"not null;default:'upload'" json:"stage"`
	StagePayload datatypes.JSON `gorm:"type:jsonb" json:"stage_payload,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (WorkflowState) TableName() string { return "workflow_state" }
