package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/veridian-legal/discovery-backend/internal/clients/openai"
	"github.com/veridian-legal/discovery-backend/internal/data/repos/cases"
	"github.com/veridian-legal/discovery-backend/internal/data/repos/questionnaire"
	"github.com/veridian-legal/discovery-backend/internal/data/repos/strategy"
	"github.com/veridian-legal/discovery-backend/internal/pkg/dbctx"
	"github.com/veridian-legal/discovery-backend/internal/pkg/logger"
	"github.com/veridian-legal/discovery-backend/internal/services/prompts"
	"github.com/veridian-legal/discovery-backend/internal/types"
)

const objectionConcurrency = 6

// SelectResponseInput records the authoritative choice for one request.
// Exactly one of OptionIndex or Direct applies.
type SelectResponseInput struct {
	RequestIndex int  `json:"request_index"`
	Direct       bool `json:"direct"`
	OptionIndex  int  `json:"option_index"`
}

// StrategyService drives the strategize stage: narrative candidates first,
// then per-request objection options framed by the selected narrative. Every
// generation call is a pure function of its inputs; a retry only overwrites
// the slot it targets.
type StrategyService interface {
	GenerateNarratives(ctx context.Context, caseID uuid.UUID) ([]*types.CaseNarrative, error)
	EnsureNarratives(ctx context.Context, caseID uuid.UUID) ([]*types.CaseNarrative, error)
	ListNarratives(ctx context.Context, caseID uuid.UUID) ([]*types.CaseNarrative, error)
	SelectNarrative(ctx context.Context, caseID uuid.UUID, narrativeID uuid.UUID) error

	GenerateObjections(ctx context.Context, caseID uuid.UUID) ([]*types.ObjectionSet, error)
	RegenerateOption(ctx context.Context, caseID uuid.UUID, requestIndex int, optionIndex int) (*types.ObjectionSet, error)
	RegenerateAll(ctx context.Context, caseID uuid.UUID) ([]*types.ObjectionSet, error)
	GenerateDirectAnswer(ctx context.Context, caseID uuid.UUID, requestIndex int) (*types.ObjectionSet, error)
	SelectResponse(ctx context.Context, caseID uuid.UUID, input SelectResponseInput) (*types.ObjectionSet, error)
	ListObjections(ctx context.Context, caseID uuid.UUID) ([]*types.ObjectionSet, error)
}

type strategyService struct {
	log               *logger.Logger
	db                *gorm.DB
	caseRepo          cases.CaseRepo
	questionRepo      questionnaire.QuestionRepo
	questionnaireRepo questionnaire.QuestionnaireRepo
	responseRepo      questionnaire.ResponseRepo
	narrativeRepo     strategy.NarrativeRepo
	objectionRepo     strategy.ObjectionSetRepo
	ai                openai.Client
}

func NewStrategyService(
	log *logger.Logger,
	db *gorm.DB,
	caseRepo cases.CaseRepo,
	questionRepo questionnaire.QuestionRepo,
	questionnaireRepo questionnaire.QuestionnaireRepo,
	responseRepo questionnaire.ResponseRepo,
	narrativeRepo strategy.NarrativeRepo,
	objectionRepo strategy.ObjectionSetRepo,
	ai openai.Client,
) StrategyService {
	return &strategyService{
		log:               log.With("service", "StrategyService"),
		db:                db,
		caseRepo:          caseRepo,
		questionRepo:      questionRepo,
		questionnaireRepo: questionnaireRepo,
		responseRepo:      responseRepo,
		narrativeRepo:     narrativeRepo,
		objectionRepo:     objectionRepo,
		ai:                ai,
	}
}

// ---- Narratives ----

// GenerateNarratives produces a fresh batch from the full response set and
// replaces any prior batch. The first strong narrative is auto-selected, else
// the first one.
func (s *strategyService) GenerateNarratives(ctx context.Context, caseID uuid.UUID) ([]*types.CaseNarrative, error) {
	kase, transcript, err := s.loadContext(ctx, caseID)
	if err != nil {
		return nil, err
	}

	system, user := prompts.NarrativesPrompt(kase.CaseType, transcript)
	obj, err := s.ai.GenerateJSON(ctx, system, user, "case_narratives", prompts.NarrativesSchema())
	if err != nil {
		return nil, &GenerationError{Slot: "narratives", Cause: err}
	}
	batch, err := decodeNarratives(caseID, obj)
	if err != nil {
		return nil, &GenerationError{Slot: "narratives", Cause: err}
	}

	selectIdx := 0
	for i, n := range batch {
		if n.Strength == types.NarrativeStrengthStrong {
			selectIdx = i
			break
		}
	}
	batch[selectIdx].Selected = true

	var saved []*types.CaseNarrative
	err = runInTx(s.db, ctx, func(dbc dbctx.Context) error {
		var err error
		saved, err = s.narrativeRepo.ReplaceForCase(dbc, caseID, batch)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("narratives generated", "case_id", caseID, "count", len(saved))
	return saved, nil
}

// EnsureNarratives generates only when the case has none yet. Re-entering the
// strategy stage never discards an existing batch.
func (s *strategyService) EnsureNarratives(ctx context.Context, caseID uuid.UUID) ([]*types.CaseNarrative, error) {
	var n int64
	err := runInTx(s.db, ctx, func(dbc dbctx.Context) error {
		var err error
		n, err = s.narrativeRepo.CountByCase(dbc, caseID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if n > 0 {
		return s.ListNarratives(ctx, caseID)
	}
	return s.GenerateNarratives(ctx, caseID)
}

func (s *strategyService) ListNarratives(ctx context.Context, caseID uuid.UUID) ([]*types.CaseNarrative, error) {
	var out []*types.CaseNarrative
	err := runInTx(s.db, ctx, func(dbc dbctx.Context) error {
		var err error
		out, err = s.narrativeRepo.ListByCase(dbc, caseID)
		return err
	})
	return out, err
}

func (s *strategyService) SelectNarrative(ctx context.Context, caseID uuid.UUID, narrativeID uuid.UUID) error {
	return runInTx(s.db, ctx, func(dbc dbctx.Context) error {
		n, err := s.narrativeRepo.GetByID(dbc, narrativeID)
		if err != nil {
			return err
		}
		if n == nil || n.CaseID != caseID {
			return ErrNotFound
		}
		return s.narrativeRepo.SelectOnly(dbc, caseID, narrativeID)
	})
}

// ---- Objections ----

// GenerateObjections fans out one generation call per (request, focus) pair.
// Each call succeeds or fails alone; a failed slot stays nil and can be
// retried with RegenerateOption.
func (s *strategyService) GenerateObjections(ctx context.Context, caseID uuid.UUID) ([]*types.ObjectionSet, error) {
	narrative, err := s.selectedNarrative(ctx, caseID)
	if err != nil {
		return nil, err
	}
	requests, err := s.loadRequests(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if len(requests) == 0 {
		return nil, NewValidationError("no requests to object to")
	}

	options := make([][types.ObjectionOptionCount]*string, len(requests))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(objectionConcurrency)
	for i, req := range requests {
		for slot := 0; slot < types.ObjectionOptionCount; slot++ {
			i, req, slot := i, req, slot
			g.Go(func() error {
				text, err := s.generateOption(gctx, types.ObjectionFocusOrder[slot], req.text, req.answer, narrative.Description)
				if err != nil {
					s.log.Warn("objection option failed",
						"case_id", caseID, "request_index", req.index, "focus", types.ObjectionFocusOrder[slot], "error", err)
					return nil
				}
				options[i][slot] = &text
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []*types.ObjectionSet
	err = runInTx(s.db, ctx, func(dbc dbctx.Context) error {
		for i, req := range requests {
			set := &types.ObjectionSet{
				CaseID:            caseID,
				RequestIndex:      req.index,
				RequestText:       req.text,
				ClientAnswer:      req.answer,
				OptionVagueness:   options[i][0],
				OptionPrematurity: options[i][1],
				OptionExpert:      options[i][2],
			}
			saved, err := s.objectionRepo.Upsert(dbc, set)
			if err != nil {
				return err
			}
			out = append(out, saved)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("objections generated", "case_id", caseID, "requests", len(out))
	return out, nil
}

// RegenerateOption replaces exactly one option slot in place.
func (s *strategyService) RegenerateOption(ctx context.Context, caseID uuid.UUID, requestIndex int, optionIndex int) (*types.ObjectionSet, error) {
	if optionIndex < 0 || optionIndex >= types.ObjectionOptionCount {
		return nil, NewValidationError("option index out of range")
	}
	narrative, err := s.selectedNarrative(ctx, caseID)
	if err != nil {
		return nil, err
	}
	set, err := s.getSet(ctx, caseID, requestIndex)
	if err != nil {
		return nil, err
	}

	focus := types.ObjectionFocusOrder[optionIndex]
	text, err := s.generateOption(ctx, focus, set.RequestText, set.ClientAnswer, narrative.Description)
	if err != nil {
		return nil, &GenerationError{Slot: fmt.Sprintf("objection[%d][%s]", requestIndex, focus), Cause: err}
	}

	err = runInTx(s.db, ctx, func(dbc dbctx.Context) error {
		return s.objectionRepo.UpdateFields(dbc, set.ID, map[string]interface{}{
			types.OptionColumn(optionIndex): text,
		})
	})
	if err != nil {
		return nil, err
	}
	return s.getSet(ctx, caseID, requestIndex)
}

// RegenerateAll discards the whole batch and recomputes it.
func (s *strategyService) RegenerateAll(ctx context.Context, caseID uuid.UUID) ([]*types.ObjectionSet, error) {
	err := runInTx(s.db, ctx, func(dbc dbctx.Context) error {
		return s.objectionRepo.DeleteByCase(dbc, caseID)
	})
	if err != nil {
		return nil, err
	}
	return s.GenerateObjections(ctx, caseID)
}

// GenerateDirectAnswer stores a direct-answer text without touching the three
// objection options.
func (s *strategyService) GenerateDirectAnswer(ctx context.Context, caseID uuid.UUID, requestIndex int) (*types.ObjectionSet, error) {
	narrative, err := s.selectedNarrative(ctx, caseID)
	if err != nil {
		return nil, err
	}
	set, err := s.getSet(ctx, caseID, requestIndex)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(set.ClientAnswer) == "" {
		return nil, NewValidationError("no client answer to draw a direct answer from")
	}

	system, user := prompts.DirectAnswerPrompt(set.RequestText, set.ClientAnswer, narrative.Description)
	text, err := s.ai.GenerateText(ctx, system, user)
	if err != nil {
		return nil, &GenerationError{Slot: fmt.Sprintf("direct_answer[%d]", requestIndex), Cause: err}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, &GenerationError{Slot: fmt.Sprintf("direct_answer[%d]", requestIndex), Cause: fmt.Errorf("empty output")}
	}

	err = runInTx(s.db, ctx, func(dbc dbctx.Context) error {
		return s.objectionRepo.UpdateFields(dbc, set.ID, map[string]interface{}{
			"direct_answer": text,
		})
	})
	if err != nil {
		return nil, err
	}
	return s.getSet(ctx, caseID, requestIndex)
}

// SelectResponse records the authoritative choice. Selecting one kind clears
// the other kind's use flag but keeps its stored text.
func (s *strategyService) SelectResponse(ctx context.Context, caseID uuid.UUID, input SelectResponseInput) (*types.ObjectionSet, error) {
	set, err := s.getSet(ctx, caseID, input.RequestIndex)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if input.Direct {
		if set.DirectAnswer == nil || *set.DirectAnswer == "" {
			return nil, NewValidationError("no direct answer generated for request %d", input.RequestIndex)
		}
		updates["use_direct_answer"] = true
	} else {
		if input.OptionIndex < 0 || input.OptionIndex >= types.ObjectionOptionCount {
			return nil, NewValidationError("option index out of range")
		}
		opt := set.Option(input.OptionIndex)
		if opt == nil || *opt == "" {
			return nil, NewValidationError("option %d is empty for request %d", input.OptionIndex, input.RequestIndex)
		}
		updates["use_direct_answer"] = false
		updates["selected_option"] = input.OptionIndex
	}

	err = runInTx(s.db, ctx, func(dbc dbctx.Context) error {
		return s.objectionRepo.UpdateFields(dbc, set.ID, updates)
	})
	if err != nil {
		return nil, err
	}
	return s.getSet(ctx, caseID, input.RequestIndex)
}

func (s *strategyService) ListObjections(ctx context.Context, caseID uuid.UUID) ([]*types.ObjectionSet, error) {
	var out []*types.ObjectionSet
	err := runInTx(s.db, ctx, func(dbc dbctx.Context) error {
		var err error
		out, err = s.objectionRepo.ListByCase(dbc, caseID)
		return err
	})
	return out, err
}

// ---- internals ----

type requestInput struct {
	index  int
	text   string
	answer string
}

func (s *strategyService) generateOption(ctx context.Context, focus, requestText, answer, narrative string) (string, error) {
	system, user := prompts.ObjectionPrompt(focus, requestText, answer, narrative)
	text, err := s.ai.GenerateText(ctx, system, user)
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("empty output")
	}
	return text, nil
}

// loadRequests pairs every compiled question's legal text with the client's
// answer, in original order. Objections always argue against the legal text,
// not the simplified rendering.
func (s *strategyService) loadRequests(ctx context.Context, caseID uuid.UUID) ([]requestInput, error) {
	var out []requestInput
	err := runInTx(s.db, ctx, func(dbc dbctx.Context) error {
		questions, err := s.questionRepo.ListByCase(dbc, caseID)
		if err != nil {
			return err
		}
		answers := map[uuid.UUID]string{}
		if q, err := s.questionnaireRepo.GetByCase(dbc, caseID); err != nil {
			return err
		} else if q != nil {
			responses, err := s.responseRepo.ListByQuestionnaire(dbc, q.ID)
			if err != nil {
				return err
			}
			for _, r := range responses {
				if r.Answered() {
					answers[r.QuestionID] = *r.Answer
				}
			}
		}
		for _, q := range questions {
			out = append(out, requestInput{
				index:  q.Position,
				text:   q.LegalText,
				answer: answers[q.ID],
			})
		}
		return nil
	})
	return out, err
}

func (s *strategyService) loadContext(ctx context.Context, caseID uuid.UUID) (*types.Case, string, error) {
	var (
		kase      *types.Case
		responses []*types.QuestionResponse
	)
	err := runInTx(s.db, ctx, func(dbc dbctx.Context) error {
		var err error
		kase, err = s.caseRepo.GetByID(dbc, caseID)
		if err != nil {
			return err
		}
		if kase == nil {
			return ErrNotFound
		}
		q, err := s.questionnaireRepo.GetByCase(dbc, caseID)
		if err != nil {
			return err
		}
		if q == nil {
			return NewValidationError("questionnaire has not been sent")
		}
		if q.Status != types.QuestionnaireStatusCompleted {
			return NewValidationError("questionnaire is not completed")
		}
		responses, err = s.responseRepo.ListByQuestionnaire(dbc, q.ID)
		return err
	})
	if err != nil {
		return nil, "", err
	}
	if kase.CaseType == "" {
		return nil, "", NewValidationError("case type must be set before generating narratives")
	}

	var b strings.Builder
	for _, r := range responses {
		fmt.Fprintf(&b, "Q%d: %s\n", r.Position+1, r.QuestionText)
		if r.Answered() {
			fmt.Fprintf(&b, "A%d: %s\n\n", r.Position+1, *r.Answer)
		} else {
			fmt.Fprintf(&b, "A%d: (no answer)\n\n", r.Position+1)
		}
	}
	return kase, b.String(), nil
}

func (s *strategyService) selectedNarrative(ctx context.Context, caseID uuid.UUID) (*types.CaseNarrative, error) {
	var n *types.CaseNarrative
	err := runInTx(s.db, ctx, func(dbc dbctx.Context) error {
		var err error
		n, err = s.narrativeRepo.GetSelected(dbc, caseID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, NewValidationError("no narrative selected")
	}
	return n, nil
}

func (s *strategyService) getSet(ctx context.Context, caseID uuid.UUID, requestIndex int) (*types.ObjectionSet, error) {
	var set *types.ObjectionSet
	err := runInTx(s.db, ctx, func(dbc dbctx.Context) error {
		var err error
		set, err = s.objectionRepo.GetByCaseAndRequest(dbc, caseID, requestIndex)
		return err
	})
	if err != nil {
		return nil, err
	}
	if set == nil {
		return nil, ErrNotFound
	}
	return set, nil
}

func decodeNarratives(caseID uuid.UUID, obj map[string]any) ([]*types.CaseNarrative, error) {
	raw, err := json.Marshal(obj)
	if err != nil {
		return nil, err
	}
	var payload struct {
		Narratives []struct {
			Title               string   `json:"title"`
			Description         string   `json:"description"`
			Strength            string   `json:"strength"`
			KeyPoints           []string `json:"key_points"`
			SuggestedObjections []string `json:"suggested_objections"`
		} `json:"narratives"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, err
	}
	if len(payload.Narratives) == 0 {
		return nil, fmt.Errorf("no narratives in output")
	}

	batch := make([]*types.CaseNarrative, 0, len(payload.Narratives))
	for i, n := range payload.Narratives {
		strength := n.Strength
		switch strength {
		case types.NarrativeStrengthStrong, types.NarrativeStrengthModerate, types.NarrativeStrengthWeak:
		default:
			strength = types.NarrativeStrengthModerate
		}
		batch = append(batch, &types.CaseNarrative{
			CaseID:              caseID,
			Position:            i,
			Title:               strings.TrimSpace(n.Title),
			Description:         strings.TrimSpace(n.Description),
			Strength:            strength,
			KeyPoints:           types.EncodeStringList(n.KeyPoints),
			SuggestedObjections: types.EncodeStringList(n.SuggestedObjections),
		})
	}
	return batch, nil
}
