package cases

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/veridian-legal/discovery-backend/internal/pkg/dbctx"
	"github.com/veridian-legal/discovery-backend/internal/pkg/logger"
	"github.com/veridian-legal/discovery-backend/internal/types"
)

type ClientRepo interface {
	Create(dbc dbctx.Context, c *types.Client) (*types.Client, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Client, error)
	List(dbc dbctx.Context) ([]*types.Client, error)
}

type clientRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewClientRepo(db *gorm.DB, baseLog *logger.Logger) ClientRepo {
	return &clientRepo{
		db:  db,
		log: baseLog.With("repo", "ClientRepo"),
	}
}

func (r *clientRepo) Create(dbc dbctx.Context, c *types.Client) (*types.Client, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if c == nil {
		return nil, errors.New("client required")
	}
	if err := transaction.WithContext(dbc.Ctx).Create(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

func (r *clientRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Client, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.Client
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

func (r *clientRepo) List(dbc dbctx.Context) ([]*types.Client, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Client
	if err := transaction.WithContext(dbc.Ctx).
		Order("name ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
