package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/veridian-legal/discovery-backend/internal/data/repos/cases"
	"github.com/veridian-legal/discovery-backend/internal/data/repos/questionnaire"
	"github.com/veridian-legal/discovery-backend/internal/data/repos/workflow"
	"github.com/veridian-legal/discovery-backend/internal/pkg/dbctx"
	"github.com/veridian-legal/discovery-backend/internal/pkg/logger"
	"github.com/veridian-legal/discovery-backend/internal/types"
)

// WorkflowView is the persisted stage plus the readiness facts the stage
// viewer needs to enable or disable its controls.
type WorkflowView struct {
	CaseID     uuid.UUID `json:"case_id"`
	Stage      string    `json:"stage"`
	StageIndex int       `json:"stage_index"`
	CanAdvance bool      `json:"can_advance"`
	CanGoBack  bool      `json:"can_go_back"`
	// Guard facts, so the UI can explain a disabled Next button.
	DocumentsPresent       bool `json:"documents_present"`
	CaseTypeSet            bool `json:"case_type_set"`
	ClientSelected         bool `json:"client_selected"`
	QuestionnaireSent      bool `json:"questionnaire_sent"`
	QuestionnaireCompleted bool `json:"questionnaire_completed"`
}

// WorkflowService owns stage position. Forward transitions run their guard
// and the entry effect of the stage being entered; Back is always allowed and
// never mutates artifacts. Stage position survives restarts because it lives
// on its own row.
type WorkflowService interface {
	Current(ctx context.Context, caseID uuid.UUID) (*WorkflowView, error)
	Advance(ctx context.Context, caseID uuid.UUID) (*WorkflowView, error)
	Back(ctx context.Context, caseID uuid.UUID) (*WorkflowView, error)
}

type workflowService struct {
	log               *logger.Logger
	db                *gorm.DB
	stateRepo         workflow.StateRepo
	caseRepo          cases.CaseRepo
	questionnaireRepo questionnaire.QuestionnaireRepo
	intake            IntakeService
	compiler          CompilerService
	strategy          StrategyService
}

func NewWorkflowService(
	log *logger.Logger,
	db *gorm.DB,
	stateRepo workflow.StateRepo,
	caseRepo cases.CaseRepo,
	questionnaireRepo questionnaire.QuestionnaireRepo,
	intake IntakeService,
	compiler CompilerService,
	strategy StrategyService,
) WorkflowService {
	return &workflowService{
		log:               log.With("service", "WorkflowService"),
		db:                db,
		stateRepo:         stateRepo,
		caseRepo:          caseRepo,
		questionnaireRepo: questionnaireRepo,
		intake:            intake,
		compiler:          compiler,
		strategy:          strategy,
	}
}

func (s *workflowService) Current(ctx context.Context, caseID uuid.UUID) (*WorkflowView, error) {
	state, err := s.ensureState(ctx, caseID)
	if err != nil {
		return nil, err
	}
	return s.buildView(ctx, caseID, state.Stage)
}

// Advance checks the current stage's exit guard, runs the next stage's entry
// effect, then persists the move. Entry effects are idempotent, so replaying
// an advance after a crash cannot corrupt stage artifacts.
func (s *workflowService) Advance(ctx context.Context, caseID uuid.UUID) (*WorkflowView, error) {
	state, err := s.ensureState(ctx, caseID)
	if err != nil {
		return nil, err
	}
	next, ok := types.NextStage(state.Stage)
	if !ok {
		return nil, NewValidationError("already at the final stage")
	}

	view, err := s.buildView(ctx, caseID, state.Stage)
	if err != nil {
		return nil, err
	}
	if err := checkGuard(view); err != nil {
		return nil, err
	}

	switch next {
	case types.StageQuestionReview:
		if _, err := s.compiler.Compile(ctx, caseID); err != nil {
			return nil, err
		}
	case types.StageStrategyReview:
		if _, err := s.strategy.EnsureNarratives(ctx, caseID); err != nil {
			return nil, err
		}
	}

	err = runInTx(s.db, ctx, func(dbc dbctx.Context) error {
		return s.stateRepo.UpdateStage(dbc, caseID, next)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("stage advanced", "case_id", caseID, "from", state.Stage, "to", next)
	return s.buildView(ctx, caseID, next)
}

// Back never deletes anything; only explicit regenerate actions mutate
// already-computed artifacts.
func (s *workflowService) Back(ctx context.Context, caseID uuid.UUID) (*WorkflowView, error) {
	state, err := s.ensureState(ctx, caseID)
	if err != nil {
		return nil, err
	}
	prev, ok := types.PrevStage(state.Stage)
	if !ok {
		return nil, NewValidationError("already at the first stage")
	}
	err = runInTx(s.db, ctx, func(dbc dbctx.Context) error {
		return s.stateRepo.UpdateStage(dbc, caseID, prev)
	})
	if err != nil {
		return nil, err
	}
	return s.buildView(ctx, caseID, prev)
}

func (s *workflowService) ensureState(ctx context.Context, caseID uuid.UUID) (*types.WorkflowState, error) {
	var state *types.WorkflowState
	err := runInTx(s.db, ctx, func(dbc dbctx.Context) error {
		kase, err := s.caseRepo.GetByID(dbc, caseID)
		if err != nil {
			return err
		}
		if kase == nil {
			return ErrNotFound
		}
		state, err = s.stateRepo.GetByCase(dbc, caseID)
		if err != nil {
			return err
		}
		if state == nil {
			state, err = s.stateRepo.Upsert(dbc, &types.WorkflowState{
				CaseID: caseID,
				Stage:  types.StageUpload,
			})
		}
		return err
	})
	return state, err
}

func (s *workflowService) buildView(ctx context.Context, caseID uuid.UUID, stage string) (*WorkflowView, error) {
	view := &WorkflowView{
		CaseID:     caseID,
		Stage:      stage,
		StageIndex: types.StageIndex(stage),
	}
	err := runInTx(s.db, ctx, func(dbc dbctx.Context) error {
		kase, err := s.caseRepo.GetByID(dbc, caseID)
		if err != nil {
			return err
		}
		if kase == nil {
			return ErrNotFound
		}
		view.CaseTypeSet = kase.CaseType != ""
		view.ClientSelected = kase.ClientID != nil

		q, err := s.questionnaireRepo.GetByCase(dbc, caseID)
		if err != nil {
			return err
		}
		view.QuestionnaireSent = q != nil
		view.QuestionnaireCompleted = q != nil && q.Status == types.QuestionnaireStatusCompleted
		return nil
	})
	if err != nil {
		return nil, err
	}

	present, err := s.intake.Complete(ctx, caseID)
	if err != nil {
		return nil, err
	}
	view.DocumentsPresent = present

	view.CanGoBack = view.StageIndex > 0
	view.CanAdvance = view.StageIndex < len(types.StageOrder)-1 && checkGuard(view) == nil
	return view, nil
}

// checkGuard validates the exit condition of view.Stage. A nil error means
// the lawyer may move forward.
func checkGuard(view *WorkflowView) error {
	switch view.Stage {
	case types.StageUpload:
		if !view.DocumentsPresent {
			return NewValidationError("upload at least one discovery document first")
		}
	case types.StageCaseInfo:
		if !view.CaseTypeSet {
			return NewValidationError("select a case type first")
		}
	case types.StageClientSelect:
		if !view.ClientSelected {
			return NewValidationError("select a client first")
		}
	case types.StageQuestionReview:
		if !view.QuestionnaireSent {
			return NewValidationError("send the questionnaire first")
		}
	case types.StageAwaitingClient:
		if !view.QuestionnaireCompleted {
			return NewValidationError("the client has not completed the questionnaire")
		}
	case types.StageStrategyReview:
		// Free transition into Generate.
	}
	return nil
}
