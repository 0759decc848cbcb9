package questionnaire

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/veridian-legal/discovery-backend/internal/pkg/dbctx"
	"github.com/veridian-legal/discovery-backend/internal/pkg/logger"
	"github.com/veridian-legal/discovery-backend/internal/types"
)

type QuestionnaireRepo interface {
	Create(dbc dbctx.Context, q *types.ClientQuestionnaire) (*types.ClientQuestionnaire, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.ClientQuestionnaire, error)
	GetByCase(dbc dbctx.Context, caseID uuid.UUID) (*types.ClientQuestionnaire, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	// ClaimCompletionNotify atomically stamps completion_notified_at when it is
	// still unset. Returns true when this caller won the claim. The claim
	// survives process restarts because it lives on the row itself.
	ClaimCompletionNotify(dbc dbctx.Context, id uuid.UUID, at time.Time) (bool, error)
	// ReleaseCompletionNotify clears the stamp after a failed notification so a
	// later save can retry.
	ReleaseCompletionNotify(dbc dbctx.Context, id uuid.UUID) error
	// ListDueForReminder returns incomplete questionnaires sent before
	// sentBefore whose last reminder (or send, when never reminded) is older
	// than remindedBefore.
	ListDueForReminder(dbc dbctx.Context, sentBefore, remindedBefore time.Time) ([]*types.ClientQuestionnaire, error)
}

type questionnaireRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuestionnaireRepo(db *gorm.DB, baseLog *logger.Logger) QuestionnaireRepo {
	return &questionnaireRepo{
		db:  db,
		log: baseLog.With("repo", "ClientQuestionnaireRepo"),
	}
}

func (r *questionnaireRepo) Create(dbc dbctx.Context, q *types.ClientQuestionnaire) (*types.ClientQuestionnaire, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if q == nil {
		return nil, errors.New("questionnaire required")
	}
	if err := transaction.WithContext(dbc.Ctx).Create(q).Error; err != nil {
		return nil, err
	}
	return q, nil
}

func (r *questionnaireRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.ClientQuestionnaire, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.ClientQuestionnaire
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

func (r *questionnaireRepo) GetByCase(dbc dbctx.Context, caseID uuid.UUID) (*types.ClientQuestionnaire, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if caseID == uuid.Nil {
		return nil, nil
	}
	var row types.ClientQuestionnaire
	err := transaction.WithContext(dbc.Ctx).
		Where("case_id = ?", caseID).
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

func (r *questionnaireRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.ClientQuestionnaire{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *questionnaireRepo) ClaimCompletionNotify(dbc dbctx.Context, id uuid.UUID, at time.Time) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return false, nil
	}
	res := transaction.WithContext(dbc.Ctx).
		Model(&types.ClientQuestionnaire{}).
		Where("id = ? AND completion_notified_at IS NULL", id).
		Update("completion_notified_at", at)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *questionnaireRepo) ReleaseCompletionNotify(dbc dbctx.Context, id uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.ClientQuestionnaire{}).
		Where("id = ?", id).
		Update("completion_notified_at", nil).Error
}

func (r *questionnaireRepo) ListDueForReminder(dbc dbctx.Context, sentBefore, remindedBefore time.Time) ([]*types.ClientQuestionnaire, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var rows []*types.ClientQuestionnaire
	err := transaction.WithContext(dbc.Ctx).
		Where("status <> ?", types.QuestionnaireStatusCompleted).
		Where("sent_at < ?", sentBefore).
		Where("last_reminded_at IS NULL OR last_reminded_at < ?", remindedBefore).
		Order("sent_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
