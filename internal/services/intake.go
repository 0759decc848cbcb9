package services

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/veridian-legal/discovery-backend/internal/clients/gcp"
	"github.com/veridian-legal/discovery-backend/internal/data/repos/discovery"
	"github.com/veridian-legal/discovery-backend/internal/pkg/dbctx"
	"github.com/veridian-legal/discovery-backend/internal/pkg/logger"
	"github.com/veridian-legal/discovery-backend/internal/types"
)

// IntakeService runs the discovery upload stage. Uploads land on a staging
// key first; the permanent key is written only after extraction succeeds, so
// a failed extraction leaves any previously stored record and file untouched.
type IntakeService interface {
	Submit(ctx context.Context, caseID uuid.UUID, category string, data []byte, mimeType string) (*types.DiscoveryDocument, error)
	Regenerate(ctx context.Context, caseID uuid.UUID, category string) (*types.DiscoveryDocument, error)
	Remove(ctx context.Context, caseID uuid.UUID, category string) error
	List(ctx context.Context, caseID uuid.UUID) ([]*types.DiscoveryDocument, error)
	Complete(ctx context.Context, caseID uuid.UUID) (bool, error)
}

type intakeService struct {
	log        *logger.Logger
	db         *gorm.DB
	docRepo    discovery.DocumentRepo
	bucket     gcp.BucketService
	extraction ExtractionService
}

func NewIntakeService(
	log *logger.Logger,
	db *gorm.DB,
	docRepo discovery.DocumentRepo,
	bucket gcp.BucketService,
	extraction ExtractionService,
) IntakeService {
	return &intakeService{
		log:        log.With("service", "IntakeService"),
		db:         db,
		docRepo:    docRepo,
		bucket:     bucket,
		extraction: extraction,
	}
}

func discoveryObjectKey(caseID uuid.UUID, category string) string {
	return fmt.Sprintf("cases/%s/discovery/%s", caseID, category)
}

func discoveryStagingKey(caseID uuid.UUID, category string) string {
	return fmt.Sprintf("cases/%s/discovery/%s.staging.%s", caseID, category, uuid.New())
}

func (s *intakeService) Submit(ctx context.Context, caseID uuid.UUID, category string, data []byte, mimeType string) (*types.DiscoveryDocument, error) {
	if !types.ValidCategory(category) {
		return nil, NewValidationError("unknown discovery category %q", category)
	}
	if len(data) == 0 {
		return nil, NewValidationError("empty file for category %q", category)
	}

	stagingKey := discoveryStagingKey(caseID, category)
	if err := s.bucket.UploadFile(ctx, stagingKey, bytes.NewReader(data), mimeType); err != nil {
		return nil, fmt.Errorf("stage upload: %w", err)
	}

	extracted, err := s.extraction.Extract(ctx, category, data, mimeType)
	if err != nil {
		if derr := s.bucket.DeleteFile(ctx, stagingKey); derr != nil {
			s.log.Warn("staging cleanup failed", "key", stagingKey, "error", derr)
		}
		return nil, err
	}

	finalKey := discoveryObjectKey(caseID, category)
	if err := s.bucket.CopyObject(ctx, stagingKey, finalKey); err != nil {
		if derr := s.bucket.DeleteFile(ctx, stagingKey); derr != nil {
			s.log.Warn("staging cleanup failed", "key", stagingKey, "error", derr)
		}
		return nil, fmt.Errorf("promote upload: %w", err)
	}
	if err := s.bucket.DeleteFile(ctx, stagingKey); err != nil {
		s.log.Warn("staging cleanup failed", "key", stagingKey, "error", err)
	}

	var saved *types.DiscoveryDocument
	err = runInTx(s.db, ctx, func(dbc dbctx.Context) error {
		doc := &types.DiscoveryDocument{
			CaseID:           caseID,
			Category:         category,
			StorageKey:       finalKey,
			MimeType:         mimeType,
			DocumentType:     extracted.DocumentType,
			PropoundingParty: extracted.PropoundingParty,
			RespondingParty:  extracted.RespondingParty,
			CaseNumber:       extracted.CaseNumber,
			SetNumber:        extracted.SetNumber,
			ServiceDate:      extracted.ServiceDate,
			ResponseDeadline: extracted.ResponseDeadline,
			Questions:        types.EncodeQuestions(extracted.Questions),
		}
		var err error
		saved, err = s.docRepo.Upsert(dbc, doc)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("persist discovery document: %w", err)
	}

	s.log.Info("discovery document submitted",
		"case_id", caseID, "category", category, "questions", len(extracted.Questions))
	return saved, nil
}

// Regenerate re-runs extraction against the stored raw file and replaces the
// structured fields only. The file reference never changes.
func (s *intakeService) Regenerate(ctx context.Context, caseID uuid.UUID, category string) (*types.DiscoveryDocument, error) {
	var doc *types.DiscoveryDocument
	err := runInTx(s.db, ctx, func(dbc dbctx.Context) error {
		var err error
		doc, err = s.docRepo.GetByCaseAndCategory(dbc, caseID, category)
		return err
	})
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, NewValidationError("no discovery document for category %q", category)
	}

	rc, err := s.bucket.DownloadFile(ctx, doc.StorageKey)
	if err != nil {
		return nil, fmt.Errorf("download stored file: %w", err)
	}
	data, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		return nil, fmt.Errorf("read stored file: %w", err)
	}

	extracted, err := s.extraction.Extract(ctx, category, data, doc.MimeType)
	if err != nil {
		return nil, err
	}

	err = runInTx(s.db, ctx, func(dbc dbctx.Context) error {
		return s.docRepo.UpdateFields(dbc, doc.ID, map[string]interface{}{
			"document_type":     extracted.DocumentType,
			"propounding_party": extracted.PropoundingParty,
			"responding_party":  extracted.RespondingParty,
			"case_number":       extracted.CaseNumber,
			"set_number":        extracted.SetNumber,
			"service_date":      extracted.ServiceDate,
			"response_deadline": extracted.ResponseDeadline,
			"questions":         types.EncodeQuestions(extracted.Questions),
		})
	})
	if err != nil {
		return nil, fmt.Errorf("persist regenerated fields: %w", err)
	}

	err = runInTx(s.db, ctx, func(dbc dbctx.Context) error {
		var err error
		doc, err = s.docRepo.GetByCaseAndCategory(dbc, caseID, category)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("discovery document regenerated", "case_id", caseID, "category", category)
	return doc, nil
}

func (s *intakeService) Remove(ctx context.Context, caseID uuid.UUID, category string) error {
	var doc *types.DiscoveryDocument
	err := runInTx(s.db, ctx, func(dbc dbctx.Context) error {
		var err error
		doc, err = s.docRepo.GetByCaseAndCategory(dbc, caseID, category)
		if err != nil || doc == nil {
			return err
		}
		return s.docRepo.DeleteByCaseAndCategory(dbc, caseID, category)
	})
	if err != nil {
		return err
	}
	if doc == nil {
		return nil
	}
	if err := s.bucket.DeleteFile(ctx, doc.StorageKey); err != nil {
		s.log.Warn("stored file cleanup failed", "key", doc.StorageKey, "error", err)
	}
	s.log.Info("discovery document removed", "case_id", caseID, "category", category)
	return nil
}

func (s *intakeService) List(ctx context.Context, caseID uuid.UUID) ([]*types.DiscoveryDocument, error) {
	var docs []*types.DiscoveryDocument
	err := runInTx(s.db, ctx, func(dbc dbctx.Context) error {
		var err error
		docs, err = s.docRepo.ListByCase(dbc, caseID)
		return err
	})
	return docs, err
}

// Complete reports whether the intake stage can be left: at least one
// category is present. All four are never required.
func (s *intakeService) Complete(ctx context.Context, caseID uuid.UUID) (bool, error) {
	var n int64
	err := runInTx(s.db, ctx, func(dbc dbctx.Context) error {
		var err error
		n, err = s.docRepo.CountByCase(dbc, caseID)
		return err
	})
	return n > 0, err
}
