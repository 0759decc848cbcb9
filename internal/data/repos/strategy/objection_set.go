package strategy

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/veridian-legal/discovery-backend/internal/pkg/dbctx"
	"github.com/veridian-legal/discovery-backend/internal/pkg/logger"
	"github.com/veridian-legal/discovery-backend/internal/types"
)

type ObjectionSetRepo interface {
	// Upsert replaces the row keyed by (case_id, request_index).
	Upsert(dbc dbctx.Context, set *types.ObjectionSet) (*types.ObjectionSet, error)
	GetByCaseAndRequest(dbc dbctx.Context, caseID uuid.UUID, requestIndex int) (*types.ObjectionSet, error)
	ListByCase(dbc dbctx.Context, caseID uuid.UUID) ([]*types.ObjectionSet, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	DeleteByCase(dbc dbctx.Context, caseID uuid.UUID) error
}

type objectionSetRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewObjectionSetRepo(db *gorm.DB, baseLog *logger.Logger) ObjectionSetRepo {
	return &objectionSetRepo{
		db:  db,
		log: baseLog.With("repo", "ObjectionSetRepo"),
	}
}

func (r *objectionSetRepo) Upsert(dbc dbctx.Context, set *types.ObjectionSet) (*types.ObjectionSet, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if set == nil {
		return nil, errors.New("objection set required")
	}
	if set.CaseID == uuid.Nil || set.RequestIndex < 0 {
		return nil, errors.New("case id and request index required")
	}
	err := transaction.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "case_id"}, {Name: "request_index"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"request_text", "client_answer",
				"option_vagueness", "option_prematurity", "option_expert",
				"selected_option", "direct_answer", "use_direct_answer", "updated_at",
			}),
		}).
		Create(set).Error
	if err != nil {
		return nil, err
	}
	return r.GetByCaseAndRequest(dbc, set.CaseID, set.RequestIndex)
}

func (r *objectionSetRepo) GetByCaseAndRequest(dbc dbctx.Context, caseID uuid.UUID, requestIndex int) (*types.ObjectionSet, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if caseID == uuid.Nil || requestIndex < 0 {
		return nil, nil
	}
	var row types.ObjectionSet
	err := transaction.WithContext(dbc.Ctx).
		Where("case_id = ? AND request_index = ?", caseID, requestIndex).
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

func (r *objectionSetRepo) ListByCase(dbc dbctx.Context, caseID uuid.UUID) ([]*types.ObjectionSet, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.ObjectionSet
	if caseID == uuid.Nil {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("case_id = ?", caseID).
		Order("request_index ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *objectionSetRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.ObjectionSet{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *objectionSetRepo) DeleteByCase(dbc dbctx.Context, caseID uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if caseID == uuid.Nil {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Where("case_id = ?", caseID).
		Delete(&types.ObjectionSet{}).Error
}
