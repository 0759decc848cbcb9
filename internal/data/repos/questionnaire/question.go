package questionnaire

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/veridian-legal/discovery-backend/internal/pkg/dbctx"
	"github.com/veridian-legal/discovery-backend/internal/pkg/logger"
	"github.com/veridian-legal/discovery-backend/internal/types"
)

type QuestionRepo interface {
	CreateBatch(dbc dbctx.Context, questions []*types.QuestionnaireQuestion) ([]*types.QuestionnaireQuestion, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.QuestionnaireQuestion, error)
	ListByCase(dbc dbctx.Context, caseID uuid.UUID) ([]*types.QuestionnaireQuestion, error)
	CountByCase(dbc dbctx.Context, caseID uuid.UUID) (int64, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	// AttachQuestionnaire stamps the live questionnaire id onto the case's
	// compiled question set at send time.
	AttachQuestionnaire(dbc dbctx.Context, caseID uuid.UUID, questionnaireID uuid.UUID) error
}

type questionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuestionRepo(db *gorm.DB, baseLog *logger.Logger) QuestionRepo {
	return &questionRepo{
		db:  db,
		log: baseLog.With("repo", "QuestionnaireQuestionRepo"),
	}
}

func (r *questionRepo) CreateBatch(dbc dbctx.Context, questions []*types.QuestionnaireQuestion) ([]*types.QuestionnaireQuestion, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(questions) == 0 {
		return []*types.QuestionnaireQuestion{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

func (r *questionRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.QuestionnaireQuestion, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.QuestionnaireQuestion
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

func (r *questionRepo) ListByCase(dbc dbctx.Context, caseID uuid.UUID) ([]*types.QuestionnaireQuestion, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.QuestionnaireQuestion
	if caseID == uuid.Nil {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("case_id = ?", caseID).
		Order("position ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *questionRepo) CountByCase(dbc dbctx.Context, caseID uuid.UUID) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if caseID == uuid.Nil {
		return 0, nil
	}
	var n int64
	err := transaction.WithContext(dbc.Ctx).
		Model(&types.QuestionnaireQuestion{}).
		Where("case_id = ?", caseID).
		Count(&n).Error
	return n, err
}

func (r *questionRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.QuestionnaireQuestion{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *questionRepo) AttachQuestionnaire(dbc dbctx.Context, caseID uuid.UUID, questionnaireID uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if caseID == uuid.Nil || questionnaireID == uuid.Nil {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.QuestionnaireQuestion{}).
		Where("case_id = ?", caseID).
		Update("questionnaire_id", questionnaireID).Error
}
