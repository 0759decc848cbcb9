package questionnaire

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/veridian-legal/discovery-backend/internal/pkg/dbctx"
	"github.com/veridian-legal/discovery-backend/internal/pkg/logger"
	"github.com/veridian-legal/discovery-backend/internal/types"
)

type ResponseRepo interface {
	CreateBatch(dbc dbctx.Context, responses []*types.QuestionResponse) ([]*types.QuestionResponse, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.QuestionResponse, error)
	GetByQuestion(dbc dbctx.Context, questionnaireID uuid.UUID, questionID uuid.UUID) (*types.QuestionResponse, error)
	ListByQuestionnaire(dbc dbctx.Context, questionnaireID uuid.UUID) ([]*types.QuestionResponse, error)
	CountAnswered(dbc dbctx.Context, questionnaireID uuid.UUID) (int64, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	// UpdateQuestionText propagates a lawyer's post-send question edit onto the
	// live response row without touching the client's answer.
	UpdateQuestionText(dbc dbctx.Context, questionnaireID uuid.UUID, questionID uuid.UUID, text string) error
}

type responseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewResponseRepo(db *gorm.DB, baseLog *logger.Logger) ResponseRepo {
	return &responseRepo{
		db:  db,
		log: baseLog.With("repo", "QuestionResponseRepo"),
	}
}

func (r *responseRepo) CreateBatch(dbc dbctx.Context, responses []*types.QuestionResponse) ([]*types.QuestionResponse, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(responses) == 0 {
		return []*types.QuestionResponse{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&responses).Error; err != nil {
		return nil, err
	}
	return responses, nil
}

func (r *responseRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.QuestionResponse, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.QuestionResponse
	err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *responseRepo) GetByQuestion(dbc dbctx.Context, questionnaireID uuid.UUID, questionID uuid.UUID) (*types.QuestionResponse, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if questionnaireID == uuid.Nil || questionID == uuid.Nil {
		return nil, nil
	}
	var row types.QuestionResponse
	err := transaction.WithContext(dbc.Ctx).
		Where("questionnaire_id = ? AND question_id = ?", questionnaireID, questionID).
		Limit(1).
		Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *responseRepo) ListByQuestionnaire(dbc dbctx.Context, questionnaireID uuid.UUID) ([]*types.QuestionResponse, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.QuestionResponse
	if questionnaireID == uuid.Nil {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("questionnaire_id = ?", questionnaireID).
		Order("position ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *responseRepo) CountAnswered(dbc dbctx.Context, questionnaireID uuid.UUID) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if questionnaireID == uuid.Nil {
		return 0, nil
	}
	var n int64
	err := transaction.WithContext(dbc.Ctx).
		Model(&types.QuestionResponse{}).
		Where("questionnaire_id = ? AND answer IS NOT NULL AND answer <> ''", questionnaireID).
		Count(&n).Error
	return n, err
}

func (r *responseRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.QuestionResponse{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *responseRepo) UpdateQuestionText(dbc dbctx.Context, questionnaireID uuid.UUID, questionID uuid.UUID, text string) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if questionnaireID == uuid.Nil || questionID == uuid.Nil {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.QuestionResponse{}).
		Where("questionnaire_id = ? AND question_id = ?", questionnaireID, questionID).
		Update("question_text", text).Error
}
