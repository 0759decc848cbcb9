package workflow

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/veridian-legal/discovery-backend/internal/pkg/dbctx"
	"github.com/veridian-legal/discovery-backend/internal/pkg/logger"
	"github.com/veridian-legal/discovery-backend/internal/types"
)

type StateRepo interface {
	GetByCase(dbc dbctx.Context, caseID uuid.UUID) (*types.WorkflowState, error)
	// Upsert writes the state keyed by case_id. Repeated saves are idempotent.
	Upsert(dbc dbctx.Context, state *types.WorkflowState) (*types.WorkflowState, error)
	UpdateStage(dbc dbctx.Context, caseID uuid.UUID, stage string) error
}

type stateRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStateRepo(db *gorm.DB, baseLog *logger.Logger) StateRepo {
	return &stateRepo{
		db:  db,
		log: baseLog.With("repo", "WorkflowStateRepo"),
	}
}

func (r *stateRepo) GetByCase(dbc dbctx.Context, caseID uuid.UUID) (*types.WorkflowState, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if caseID == uuid.Nil {
		return nil, nil
	}
	var row types.WorkflowState
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

func (r *stateRepo) Upsert(dbc dbctx.Context, state *types.WorkflowState) (*types.WorkflowState, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if state == nil {
		return nil, errors.New("workflow state required")
	}
	if state.CaseID == uuid.Nil {
		return nil, errors.New("case id required")
	}
	err := transaction.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "case_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"stage", "stage_payload", "updated_at"}),
		}).
		Create(state).Error
	if err != nil {
		return nil, err
	}
	return r.GetByCase(dbc, state.CaseID)
}

func (r *stateRepo) UpdateStage(dbc dbctx.Context, caseID uuid.UUID, stage string) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if caseID == uuid.Nil || stage == "" {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.WorkflowState{}).
		Where("case_id = ?", caseID).
		Update("stage", stage).Error
}
