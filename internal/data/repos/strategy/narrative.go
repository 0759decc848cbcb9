package strategy

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/veridian-legal/discovery-backend/internal/pkg/dbctx"
	"github.com/veridian-legal/discovery-backend/internal/pkg/logger"
	"github.com/veridian-legal/discovery-backend/internal/types"
)

type NarrativeRepo interface {
	// ReplaceForCase swaps the whole narrative batch. Narratives are immutable
	// once generated; regeneration is batch replacement.
	ReplaceForCase(dbc dbctx.Context, caseID uuid.UUID, batch []*types.CaseNarrative) ([]*types.CaseNarrative, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.CaseNarrative, error)
	ListByCase(dbc dbctx.Context, caseID uuid.UUID) ([]*types.CaseNarrative, error)
	GetSelected(dbc dbctx.Context, caseID uuid.UUID) (*types.CaseNarrative, error)
	// SelectOnly marks exactly one narrative selected for the case.
	SelectOnly(dbc dbctx.Context, caseID uuid.UUID, id uuid.UUID) error
	CountByCase(dbc dbctx.Context, caseID uuid.UUID) (int64, error)
}

type narrativeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewNarrativeRepo(db *gorm.DB, baseLog *logger.Logger) NarrativeRepo {
	return &narrativeRepo{
		db:  db,
		log: baseLog.With("repo", "CaseNarrativeRepo"),
	}
}

func (r *narrativeRepo) ReplaceForCase(dbc dbctx.Context, caseID uuid.UUID, batch []*types.CaseNarrative) ([]*types.CaseNarrative, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if caseID == uuid.Nil {
		return nil, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("case_id = ?", caseID).
		Delete(&types.CaseNarrative{}).Error; err != nil {
		return nil, err
	}
	if len(batch) == 0 {
		return []*types.CaseNarrative{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&batch).Error; err != nil {
		return nil, err
	}
	return batch, nil
}

func (r *narrativeRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.CaseNarrative, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.CaseNarrative
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

func (r *narrativeRepo) ListByCase(dbc dbctx.Context, caseID uuid.UUID) ([]*types.CaseNarrative, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.CaseNarrative
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

func (r *narrativeRepo) GetSelected(dbc dbctx.Context, caseID uuid.UUID) (*types.CaseNarrative, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if caseID == uuid.Nil {
		return nil, nil
	}
	var row types.CaseNarrative
	err := transaction.WithContext(dbc.Ctx).
		Where("case_id = ? AND selected = true", caseID).
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

func (r *narrativeRepo) SelectOnly(dbc dbctx.Context, caseID uuid.UUID, id uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if caseID == uuid.Nil || id == uuid.Nil {
		return nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.CaseNarrative{}).
		Where("case_id = ? AND selected = true", caseID).
		Update("selected", false).Error; err != nil {
		return err
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.CaseNarrative{}).
		Where("id = ? AND case_id = ?", id, caseID).
		Update("selected", true).Error
}

func (r *narrativeRepo) CountByCase(dbc dbctx.Context, caseID uuid.UUID) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if caseID == uuid.Nil {
		return 0, nil
	}
	var n int64
	err := transaction.WithContext(dbc.Ctx).
		Model(&types.CaseNarrative{}).
		Where("case_id = ?", caseID).
		Count(&n).Error
	return n, err
}
