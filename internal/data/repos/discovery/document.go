package discovery

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/veridian-legal/discovery-backend/internal/pkg/dbctx"
	"github.com/veridian-legal/discovery-backend/internal/pkg/logger"
	"github.com/veridian-legal/discovery-backend/internal/types"
)

type DocumentRepo interface {
	// Upsert replaces the row keyed by (case_id, category). Replace, not merge.
	Upsert(dbc dbctx.Context, doc *types.DiscoveryDocument) (*types.DiscoveryDocument, error)
	GetByCaseAndCategory(dbc dbctx.Context, caseID uuid.UUID, category string) (*types.DiscoveryDocument, error)
	ListByCase(dbc dbctx.Context, caseID uuid.UUID) ([]*types.DiscoveryDocument, error)
	DeleteByCaseAndCategory(dbc dbctx.Context, caseID uuid.UUID, category string) error
	CountByCase(dbc dbctx.Context, caseID uuid.UUID) (int64, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
}

type documentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDocumentRepo(db *gorm.DB, baseLog *logger.Logger) DocumentRepo {
	return &documentRepo{
		db:  db,
		log: baseLog.With("repo", "DiscoveryDocumentRepo"),
	}
}

func (r *documentRepo) Upsert(dbc dbctx.Context, doc *types.DiscoveryDocument) (*types.DiscoveryDocument, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if doc == nil {
		return nil, errors.New("document required")
	}
	if doc.CaseID == uuid.Nil || !types.ValidCategory(doc.Category) {
		return nil, errors.New("case id and valid category required")
	}
	err := transaction.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "case_id"}, {Name: "category"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"storage_key", "mime_type", "document_type",
				"propounding_party", "responding_party", "case_number", "set_number",
				"service_date", "response_deadline", "questions", "updated_at",
			}),
		}).
		Create(doc).Error
	if err != nil {
		return nil, err
	}
	return r.GetByCaseAndCategory(dbc, doc.CaseID, doc.Category)
}

func (r *documentRepo) GetByCaseAndCategory(dbc dbctx.Context, caseID uuid.UUID, category string) (*types.DiscoveryDocument, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if caseID == uuid.Nil || category == "" {
		return nil, nil
	}
	var row types.DiscoveryDocument
	err := transaction.WithContext(dbc.Ctx).
		Where("case_id = ? AND category = ?", caseID, category).
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

func (r *documentRepo) ListByCase(dbc dbctx.Context, caseID uuid.UUID) ([]*types.DiscoveryDocument, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.DiscoveryDocument
	if caseID == uuid.Nil {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("case_id = ?", caseID).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *documentRepo) DeleteByCaseAndCategory(dbc dbctx.Context, caseID uuid.UUID, category string) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if caseID == uuid.Nil || category == "" {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Where("case_id = ? AND category = ?", caseID, category).
		Delete(&types.DiscoveryDocument{}).Error
}

func (r *documentRepo) CountByCase(dbc dbctx.Context, caseID uuid.UUID) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if caseID == uuid.Nil {
		return 0, nil
	}
	var n int64
	err := transaction.WithContext(dbc.Ctx).
		Model(&types.DiscoveryDocument{}).
		Where("case_id = ?", caseID).
		Count(&n).Error
	return n, err
}

func (r *documentRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.DiscoveryDocument{}).
		Where("id = ?", id).
		Updates(updates).Error
}
