package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/veridian-legal/discovery-backend/internal/clients/openai"
	"github.com/veridian-legal/discovery-backend/internal/data/repos/discovery"
	"github.com/veridian-legal/discovery-backend/internal/data/repos/questionnaire"
	"github.com/veridian-legal/discovery-backend/internal/pkg/dbctx"
	"github.com/veridian-legal/discovery-backend/internal/pkg/logger"
	"github.com/veridian-legal/discovery-backend/internal/services/prompts"
	"github.com/veridian-legal/discovery-backend/internal/types"
)

const simplifyConcurrency = 4

// CompilerService merges every extracted discovery question into one ordered
// client-facing question set. Compile is a no-op when a set already exists, so
// revisiting the review stage never destroys a lawyer's edits.
type CompilerService interface {
	Compile(ctx context.Context, caseID uuid.UUID) ([]*types.QuestionnaireQuestion, error)
	ListQuestions(ctx context.Context, caseID uuid.UUID) ([]*types.QuestionnaireQuestion, error)
	EditQuestion(ctx context.Context, questionID uuid.UUID, text string) (*types.QuestionnaireQuestion, error)
	RewriteQuestion(ctx context.Context, questionID uuid.UUID, instruction string) (*types.QuestionnaireQuestion, error)
	RevertQuestion(ctx context.Context, questionID uuid.UUID) (*types.QuestionnaireQuestion, error)
}

type compilerService struct {
	log          *logger.Logger
	db           *gorm.DB
	docRepo      discovery.DocumentRepo
	questionRepo questionnaire.QuestionRepo
	ai           openai.Client
}

func NewCompilerService(
	log *logger.Logger,
	db *gorm.DB,
	docRepo discovery.DocumentRepo,
	questionRepo questionnaire.QuestionRepo,
	ai openai.Client,
) CompilerService {
	return &compilerService{
		log:          log.With("service", "CompilerService"),
		db:           db,
		docRepo:      docRepo,
		questionRepo: questionRepo,
		ai:           ai,
	}
}

func (s *compilerService) Compile(ctx context.Context, caseID uuid.UUID) ([]*types.QuestionnaireQuestion, error) {
	var existing int64
	var docs []*types.DiscoveryDocument
	err := runInTx(s.db, ctx, func(dbc dbctx.Context) error {
		var err error
		if existing, err = s.questionRepo.CountByCase(dbc, caseID); err != nil {
			return err
		}
		docs, err = s.docRepo.ListByCase(dbc, caseID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if existing > 0 {
		return s.ListQuestions(ctx, caseID)
	}
	if len(docs) == 0 {
		return nil, NewValidationError("no discovery documents to compile")
	}

	byCategory := map[string]*types.DiscoveryDocument{}
	for _, d := range docs {
		byCategory[d.Category] = d
	}

	var drafts []*types.QuestionnaireQuestion
	position := 0
	for _, category := range types.CategoryOrder {
		doc := byCategory[category]
		if doc == nil {
			continue
		}
		for _, q := range doc.DecodeQuestions() {
			drafts = append(drafts, &types.QuestionnaireQuestion{
				CaseID:         caseID,
				Position:       position,
				SourceCategory: category,
				SourceNumber:   q.Number,
				LegalText:      q.Text,
			})
			position++
		}
	}
	if len(drafts) == 0 {
		return nil, NewValidationError("discovery documents contain no requests")
	}

	// Simplification fans out per question. A failed call keeps the legal
	// text for that question; it never blocks its siblings.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(simplifyConcurrency)
	for _, draft := range drafts {
		draft := draft
		g.Go(func() error {
			system, user := prompts.SimplifyPrompt(draft.LegalText)
			text, err := s.ai.GenerateText(gctx, system, user)
			if err != nil || strings.TrimSpace(text) == "" {
				if err != nil {
					s.log.Warn("question simplification failed, keeping legal text",
						"case_id", draft.CaseID, "position", draft.Position, "error", err)
				}
				draft.GeneratedText = draft.LegalText
				draft.CurrentText = draft.LegalText
				return nil
			}
			draft.GeneratedText = strings.TrimSpace(text)
			draft.CurrentText = draft.GeneratedText
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var created []*types.QuestionnaireQuestion
	err = runInTx(s.db, ctx, func(dbc dbctx.Context) error {
		// A concurrent compile may have landed while generation ran.
		n, err := s.questionRepo.CountByCase(dbc, caseID)
		if err != nil {
			return err
		}
		if n > 0 {
			created, err = s.questionRepo.ListByCase(dbc, caseID)
			return err
		}
		created, err = s.questionRepo.CreateBatch(dbc, drafts)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("questionnaire compiled", "case_id", caseID, "questions", len(created))
	return created, nil
}

func (s *compilerService) ListQuestions(ctx context.Context, caseID uuid.UUID) ([]*types.QuestionnaireQuestion, error) {
	var out []*types.QuestionnaireQuestion
	err := runInTx(s.db, ctx, func(dbc dbctx.Context) error {
		var err error
		out, err = s.questionRepo.ListByCase(dbc, caseID)
		return err
	})
	return out, err
}

func (s *compilerService) EditQuestion(ctx context.Context, questionID uuid.UUID, text string) (*types.QuestionnaireQuestion, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, NewValidationError("question text cannot be empty")
	}
	return s.setCurrentText(ctx, questionID, func(q *types.QuestionnaireQuestion) (string, bool) {
		return text, text != q.GeneratedText
	})
}

// RewriteQuestion applies an attorney's free-form instruction via generation.
// The result always counts as an edit even if the model returns the original.
func (s *compilerService) RewriteQuestion(ctx context.Context, questionID uuid.UUID, instruction string) (*types.QuestionnaireQuestion, error) {
	if strings.TrimSpace(instruction) == "" {
		return nil, NewValidationError("rewrite instruction cannot be empty")
	}
	q, err := s.getQuestion(ctx, questionID)
	if err != nil {
		return nil, err
	}
	system, user := prompts.RewritePrompt(q.CurrentText, instruction)
	text, err := s.ai.GenerateText(ctx, system, user)
	if err != nil {
		return nil, &GenerationError{Slot: "question_rewrite", Cause: err}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, &GenerationError{Slot: "question_rewrite", Cause: errors.New("empty rewrite output")}
	}
	return s.setCurrentText(ctx, questionID, func(*types.QuestionnaireQuestion) (string, bool) {
		return text, true
	})
}

func (s *compilerService) RevertQuestion(ctx context.Context, questionID uuid.UUID) (*types.QuestionnaireQuestion, error) {
	return s.setCurrentText(ctx, questionID, func(q *types.QuestionnaireQuestion) (string, bool) {
		return q.GeneratedText, false
	})
}

func (s *compilerService) getQuestion(ctx context.Context, questionID uuid.UUID) (*types.QuestionnaireQuestion, error) {
	var q *types.QuestionnaireQuestion
	err := runInTx(s.db, ctx, func(dbc dbctx.Context) error {
		var err error
		q, err = s.questionRepo.GetByID(dbc, questionID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, ErrNotFound
	}
	return q, nil
}

func (s *compilerService) setCurrentText(ctx context.Context, questionID uuid.UUID, next func(*types.QuestionnaireQuestion) (string, bool)) (*types.QuestionnaireQuestion, error) {
	q, err := s.getQuestion(ctx, questionID)
	if err != nil {
		return nil, err
	}
	text, edited := next(q)
	err = runInTx(s.db, ctx, func(dbc dbctx.Context) error {
		return s.questionRepo.UpdateFields(dbc, questionID, map[string]interface{}{
			"current_text": text,
			"edited":       edited,
		})
	})
	if err != nil {
		return nil, err
	}
	q.CurrentText = text
	q.Edited = edited
	return q, nil
}
