package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/veridian-legal/discovery-backend/internal/data/repos/cases"
	"github.com/veridian-legal/discovery-backend/internal/pkg/dbctx"
	"github.com/veridian-legal/discovery-backend/internal/pkg/logger"
	"github.com/veridian-legal/discovery-backend/internal/types"
)

// CaseUpdateInput carries the patchable case fields. Nil means unchanged.
type CaseUpdateInput struct {
	Title    *string    `json:"title,omitempty"`
	CaseType *string    `json:"case_type,omitempty"`
	ClientID *uuid.UUID `json:"client_id,omitempty"`
}

// CaseService is the thin CRUD surface the workflow hangs off. Case type is
// never defaulted; it stays empty until the lawyer picks one.
type CaseService interface {
	CreateCase(ctx context.Context, title string) (*types.Case, error)
	GetCase(ctx context.Context, id uuid.UUID) (*types.Case, error)
	ListCases(ctx context.Context) ([]*types.Case, error)
	UpdateCase(ctx context.Context, id uuid.UUID, input CaseUpdateInput) (*types.Case, error)

	CreateClient(ctx context.Context, client *types.Client) (*types.Client, error)
	ListClients(ctx context.Context) ([]*types.Client, error)
}

type caseService struct {
	log        *logger.Logger
	db         *gorm.DB
	caseRepo   cases.CaseRepo
	clientRepo cases.ClientRepo
}

func NewCaseService(log *logger.Logger, db *gorm.DB, caseRepo cases.CaseRepo, clientRepo cases.ClientRepo) CaseService {
	return &caseService{
		log:        log.With("service", "CaseService"),
		db:         db,
		caseRepo:   caseRepo,
		clientRepo: clientRepo,
	}
}

func (s *caseService) CreateCase(ctx context.Context, title string) (*types.Case, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, NewValidationError("case title cannot be empty")
	}
	var created *types.Case
	err := runInTx(s.db, ctx, func(dbc dbctx.Context) error {
		var err error
		created, err = s.caseRepo.Create(dbc, &types.Case{Title: title})
		return err
	})
	return created, err
}

func (s *caseService) GetCase(ctx context.Context, id uuid.UUID) (*types.Case, error) {
	var kase *types.Case
	err := runInTx(s.db, ctx, func(dbc dbctx.Context) error {
		var err error
		kase, err = s.caseRepo.GetByID(dbc, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	if kase == nil {
		return nil, ErrNotFound
	}
	return kase, nil
}

func (s *caseService) ListCases(ctx context.Context) ([]*types.Case, error) {
	var out []*types.Case
	err := runInTx(s.db, ctx, func(dbc dbctx.Context) error {
		var err error
		out, err = s.caseRepo.List(dbc)
		return err
	})
	return out, err
}

func (s *caseService) UpdateCase(ctx context.Context, id uuid.UUID, input CaseUpdateInput) (*types.Case, error) {
	updates := map[string]interface{}{}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, NewValidationError("case title cannot be empty")
		}
		updates["title"] = title
	}
	if input.CaseType != nil {
		switch *input.CaseType {
		case types.CaseTypePersonalInjury, types.CaseTypeContractDispute, types.CaseTypeEmployment, types.CaseTypeOther:
		default:
			return nil, NewValidationError("unknown case type %q", *input.CaseType)
		}
		updates["case_type"] = *input.CaseType
	}

	err := runInTx(s.db, ctx, func(dbc dbctx.Context) error {
		kase, err := s.caseRepo.GetByID(dbc, id)
		if err != nil {
			return err
		}
		if kase == nil {
			return ErrNotFound
		}
		if input.ClientID != nil {
			client, err := s.clientRepo.GetByID(dbc, *input.ClientID)
			if err != nil {
				return err
			}
			if client == nil {
				return NewValidationError("client does not exist")
			}
			updates["client_id"] = *input.ClientID
		}
		if len(updates) == 0 {
			return nil
		}
		return s.caseRepo.UpdateFields(dbc, id, updates)
	})
	if err != nil {
		return nil, err
	}
	return s.GetCase(ctx, id)
}

func (s *caseService) CreateClient(ctx context.Context, client *types.Client) (*types.Client, error) {
	if client == nil || strings.TrimSpace(client.Name) == "" {
		return nil, NewValidationError("client name cannot be empty")
	}
	if strings.TrimSpace(client.Phone) == "" {
		return nil, NewValidationError("client phone cannot be empty")
	}
	var created *types.Client
	err := runInTx(s.db, ctx, func(dbc dbctx.Context) error {
		var err error
		created, err = s.clientRepo.Create(dbc, client)
		return err
	})
	return created, err
}

func (s *caseService) ListClients(ctx context.Context) ([]*types.Client, error) {
	var out []*types.Client
	err := runInTx(s.db, ctx, func(dbc dbctx.Context) error {
		var err error
		out, err = s.clientRepo.List(dbc)
		return err
	})
	return out, err
}
