package cases

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/veridian-legal/discovery-backend/internal/pkg/dbctx"
	"github.com/veridian-legal/discovery-backend/internal/pkg/logger"
	"github.com/veridian-legal/discovery-backend/internal/types"
)

type CaseRepo interface {
	Create(dbc dbctx.Context, c *types.Case) (*types.Case, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Case, error)
	List(dbc dbctx.Context) ([]*types.Case, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
}

type caseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCaseRepo(db *gorm.DB, baseLog *logger.Logger) CaseRepo {
	return &caseRepo{
		db:  db,
		log: baseLog.With("repo", "CaseRepo"),
	}
}

func (r *caseRepo) Create(dbc dbctx.Context, c *types.Case) (*types.Case, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if c == nil {
		return nil, errors.New("case required")
	}
	if err := transaction.WithContext(dbc.Ctx).Create(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

func (r *caseRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Case, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.Case
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

func (r *caseRepo) List(dbc dbctx.Context) ([]*types.Case, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Case
	if err := transaction.WithContext(dbc.Ctx).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *caseRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.Case{}).
		Where("id = ?", id).
		Updates(updates).Error
}
