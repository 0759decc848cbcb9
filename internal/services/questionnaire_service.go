package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/veridian-legal/discovery-backend/internal/data/repos/cases"
	"github.com/veridian-legal/discovery-backend/internal/data/repos/discovery"
	"github.com/veridian-legal/discovery-backend/internal/data/repos/questionnaire"
	"github.com/veridian-legal/discovery-backend/internal/pkg/dbctx"
	"github.com/veridian-legal/discovery-backend/internal/pkg/envutil"
	"github.com/veridian-legal/discovery-backend/internal/pkg/logger"
	"github.com/veridian-legal/discovery-backend/internal/types"
)

// QuestionnaireStatus is the lawyer-side poll payload. Read-only; it must
// tolerate the questionnaire not existing yet.
type QuestionnaireStatus struct {
	Exists    bool       `json:"exists"`
	ID        uuid.UUID  `json:"id,omitempty"`
	Status    string     `json:"status,omitempty"`
	Completed int        `json:"completed"`
	Total     int        `json:"total"`
	SentAt    *time.Time `json:"sent_at,omitempty"`
}

// PortalView is what the client's portal session sees.
type PortalView struct {
	Questionnaire *types.ClientQuestionnaire `json:"questionnaire"`
	CaseTitle     string                     `json:"case_title"`
	ClientName    string                     `json:"client_name"`
	Responses     []*types.QuestionResponse  `json:"responses"`
}

// QuestionnaireService owns distribution and cross-actor sync. The lawyer side
// sends, polls, edits and reminds; the client side reads its portal view and
// saves answers. The completion notification fires exactly once per
// questionnaire, guarded by a claim stored on the row itself.
type QuestionnaireService interface {
	Send(ctx context.Context, caseID uuid.UUID) (*types.ClientQuestionnaire, error)
	Poll(ctx context.Context, caseID uuid.UUID) (*QuestionnaireStatus, error)
	UpdateSentQuestion(ctx context.Context, caseID uuid.UUID, questionID uuid.UUID, text string) error
	SendReminder(ctx context.Context, caseID uuid.UUID) error
	Responses(ctx context.Context, caseID uuid.UUID) ([]*types.QuestionResponse, error)

	Portal(ctx context.Context, questionnaireID uuid.UUID) (*PortalView, error)
	SaveAnswer(ctx context.Context, questionnaireID uuid.UUID, responseID uuid.UUID, answer string) (*types.QuestionResponse, error)
}

type questionnaireService struct {
	log               *logger.Logger
	db                *gorm.DB
	caseRepo          cases.CaseRepo
	clientRepo        cases.ClientRepo
	docRepo           discovery.DocumentRepo
	questionRepo      questionnaire.QuestionRepo
	questionnaireRepo questionnaire.QuestionnaireRepo
	responseRepo      questionnaire.ResponseRepo
	notifier          NotificationService

	portalBaseURL string
}

func NewQuestionnaireService(
	log *logger.Logger,
	db *gorm.DB,
	caseRepo cases.CaseRepo,
	clientRepo cases.ClientRepo,
	docRepo discovery.DocumentRepo,
	questionRepo questionnaire.QuestionRepo,
	questionnaireRepo questionnaire.QuestionnaireRepo,
	responseRepo questionnaire.ResponseRepo,
	notifier NotificationService,
) QuestionnaireService {
	return &questionnaireService{
		log:               log.With("service", "QuestionnaireService"),
		db:                db,
		caseRepo:          caseRepo,
		clientRepo:        clientRepo,
		docRepo:           docRepo,
		questionRepo:      questionRepo,
		questionnaireRepo: questionnaireRepo,
		responseRepo:      responseRepo,
		notifier:          notifier,
		portalBaseURL:     envutil.String("PORTAL_BASE_URL", "http://localhost:3000/portal"),
	}
}

func (s *questionnaireService) portalURL(questionnaireID uuid.UUID) string {
	return fmt.Sprintf("%s/%s", strings.TrimRight(s.portalBaseURL, "/"), questionnaireID)
}

// Send creates the questionnaire and one empty response slot per compiled
// question, then notifies the client out of band. Notification failure never
// rolls back creation. Sending twice returns the existing questionnaire.
func (s *questionnaireService) Send(ctx context.Context, caseID uuid.UUID) (*types.ClientQuestionnaire, error) {
	var (
		created *types.ClientQuestionnaire
		kase    *types.Case
		client  *types.Client
		isNew   bool
	)
	err := runInTx(s.db, ctx, func(dbc dbctx.Context) error {
		existing, err := s.questionnaireRepo.GetByCase(dbc, caseID)
		if err != nil {
			return err
		}
		if existing != nil {
			created = existing
			return nil
		}

		kase, err = s.caseRepo.GetByID(dbc, caseID)
		if err != nil {
			return err
		}
		if kase == nil {
			return ErrNotFound
		}
		if kase.ClientID == nil {
			return NewValidationError("case has no client to send to")
		}
		client, err = s.clientRepo.GetByID(dbc, *kase.ClientID)
		if err != nil {
			return err
		}
		if client == nil {
			return NewValidationError("case client no longer exists")
		}

		questions, err := s.questionRepo.ListByCase(dbc, caseID)
		if err != nil {
			return err
		}
		if len(questions) == 0 {
			return NewValidationError("no compiled questions to send")
		}

		// The earliest discovery response deadline rides along so the client
		// sees the real due date.
		var deadline *time.Time
		docs, err := s.docRepo.ListByCase(dbc, caseID)
		if err != nil {
			return err
		}
		for _, d := range docs {
			if d.ResponseDeadline == nil {
				continue
			}
			if deadline == nil || d.ResponseDeadline.Before(*deadline) {
				deadline = d.ResponseDeadline
			}
		}

		created, err = s.questionnaireRepo.Create(dbc, &types.ClientQuestionnaire{
			CaseID:           caseID,
			ClientID:         client.ID,
			Status:           types.QuestionnaireStatusPending,
			TotalQuestions:   len(questions),
			ResponseDeadline: deadline,
			SentAt:           time.Now(),
		})
		if err != nil {
			return err
		}

		slots := make([]*types.QuestionResponse, 0, len(questions))
		for _, q := range questions {
			slots = append(slots, &types.QuestionResponse{
				QuestionnaireID: created.ID,
				QuestionID:      q.ID,
				Position:        q.Position,
				QuestionText:    q.CurrentText,
			})
		}
		if _, err := s.responseRepo.CreateBatch(dbc, slots); err != nil {
			return err
		}
		if err := s.questionRepo.AttachQuestionnaire(dbc, caseID, created.ID); err != nil {
			return err
		}
		isNew = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if isNew {
		if err := s.notifier.QuestionnaireSent(ctx, client, kase, s.portalURL(created.ID)); err != nil {
			s.log.Warn("client notification failed after send", "case_id", caseID, "error", err)
		}
		s.log.Info("questionnaire sent", "case_id", caseID, "questionnaire_id", created.ID, "questions", created.TotalQuestions)
	}
	return created, nil
}

func (s *questionnaireService) Poll(ctx context.Context, caseID uuid.UUID) (*QuestionnaireStatus, error) {
	var out *QuestionnaireStatus
	err := runInTx(s.db, ctx, func(dbc dbctx.Context) error {
		q, err := s.questionnaireRepo.GetByCase(dbc, caseID)
		if err != nil {
			return err
		}
		if q == nil {
			out = &QuestionnaireStatus{Exists: false}
			return nil
		}
		sentAt := q.SentAt
		out = &QuestionnaireStatus{
			Exists:    true,
			ID:        q.ID,
			Status:    q.Status,
			Completed: q.CompletedQuestions,
			Total:     q.TotalQuestions,
			SentAt:    &sentAt,
		}
		return nil
	})
	return out, err
}

// UpdateSentQuestion propagates a post-send text edit onto the live response
// slot. Existing answers are never discarded.
func (s *questionnaireService) UpdateSentQuestion(ctx context.Context, caseID uuid.UUID, questionID uuid.UUID, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return NewValidationError("question text cannot be empty")
	}
	return runInTx(s.db, ctx, func(dbc dbctx.Context) error {
		q, err := s.questionnaireRepo.GetByCase(dbc, caseID)
		if err != nil {
			return err
		}
		if q == nil {
			return NewValidationError("questionnaire has not been sent")
		}
		question, err := s.questionRepo.GetByID(dbc, questionID)
		if err != nil {
			return err
		}
		if question == nil || question.CaseID != caseID {
			return ErrNotFound
		}
		if err := s.questionRepo.UpdateFields(dbc, questionID, map[string]interface{}{
			"current_text": text,
			"edited":       text != question.GeneratedText,
		}); err != nil {
			return err
		}
		return s.responseRepo.UpdateQuestionText(dbc, q.ID, questionID, text)
	})
}

func (s *questionnaireService) SendReminder(ctx context.Context, caseID uuid.UUID) error {
	var (
		q      *types.ClientQuestionnaire
		kase   *types.Case
		client *types.Client
	)
	err := runInTx(s.db, ctx, func(dbc dbctx.Context) error {
		var err error
		if q, err = s.questionnaireRepo.GetByCase(dbc, caseID); err != nil {
			return err
		}
		if q == nil {
			return NewValidationError("questionnaire has not been sent")
		}
		if q.Status == types.QuestionnaireStatusCompleted {
			return NewValidationError("questionnaire already completed")
		}
		if kase, err = s.caseRepo.GetByID(dbc, caseID); err != nil {
			return err
		}
		client, err = s.clientRepo.GetByID(dbc, q.ClientID)
		return err
	})
	if err != nil {
		return err
	}
	return s.notifier.QuestionnaireReminder(ctx, client, kase, s.portalURL(q.ID))
}

func (s *questionnaireService) Responses(ctx context.Context, caseID uuid.UUID) ([]*types.QuestionResponse, error) {
	var out []*types.QuestionResponse
	err := runInTx(s.db, ctx, func(dbc dbctx.Context) error {
		q, err := s.questionnaireRepo.GetByCase(dbc, caseID)
		if err != nil || q == nil {
			return err
		}
		out, err = s.responseRepo.ListByQuestionnaire(dbc, q.ID)
		return err
	})
	return out, err
}

func (s *questionnaireService) Portal(ctx context.Context, questionnaireID uuid.UUID) (*PortalView, error) {
	var view *PortalView
	err := runInTx(s.db, ctx, func(dbc dbctx.Context) error {
		q, err := s.questionnaireRepo.GetByID(dbc, questionnaireID)
		if err != nil {
			return err
		}
		if q == nil {
			return ErrNotFound
		}
		kase, err := s.caseRepo.GetByID(dbc, q.CaseID)
		if err != nil {
			return err
		}
		client, err := s.clientRepo.GetByID(dbc, q.ClientID)
		if err != nil {
			return err
		}
		responses, err := s.responseRepo.ListByQuestionnaire(dbc, q.ID)
		if err != nil {
			return err
		}
		view = &PortalView{Questionnaire: q, Responses: responses}
		if kase != nil {
			view.CaseTitle = kase.Title
		}
		if client != nil {
			view.ClientName = client.Name
		}
		return nil
	})
	return view, err
}

// SaveAnswer records one client answer and recomputes the questionnaire's
// progress. The save that answers the last open slot flips the status to
// completed and fires the firm notification exactly once: the notify claim is
// taken before sending and released again if the send fails.
func (s *questionnaireService) SaveAnswer(ctx context.Context, questionnaireID uuid.UUID, responseID uuid.UUID, answer string) (*types.QuestionResponse, error) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return nil, NewValidationError("answer cannot be empty")
	}

	var (
		saved        *types.QuestionResponse
		q            *types.ClientQuestionnaire
		justComplete bool
	)
	err := runInTx(s.db, ctx, func(dbc dbctx.Context) error {
		var err error
		q, err = s.questionnaireRepo.GetByID(dbc, questionnaireID)
		if err != nil {
			return err
		}
		if q == nil {
			return ErrNotFound
		}
		resp, err := s.responseRepo.GetByID(dbc, responseID)
		if err != nil {
			return err
		}
		if resp == nil || resp.QuestionnaireID != questionnaireID {
			return ErrNotFound
		}

		now := time.Now()
		if err := s.responseRepo.UpdateFields(dbc, responseID, map[string]interface{}{
			"answer":      answer,
			"answered_at": now,
		}); err != nil {
			return err
		}
		resp.Answer = &answer
		resp.AnsweredAt = &now
		saved = resp

		answered, err := s.responseRepo.CountAnswered(dbc, questionnaireID)
		if err != nil {
			return err
		}
		status := types.QuestionnaireStatusInProgress
		updates := map[string]interface{}{
			"completed_questions": answered,
		}
		if int(answered) >= q.TotalQuestions {
			status = types.QuestionnaireStatusCompleted
			if q.CompletedAt == nil {
				updates["completed_at"] = now
			}
			justComplete = true
		}
		updates["status"] = status
		q.Status = status
		q.CompletedQuestions = int(answered)
		return s.questionnaireRepo.UpdateFields(dbc, questionnaireID, updates)
	})
	if err != nil {
		return nil, err
	}

	if justComplete {
		s.notifyCompletion(ctx, q)
	}
	return saved, nil
}

// notifyCompletion is best-effort. A lost claim means another save already
// notified; a failed send releases the claim so the next completed save
// retries.
func (s *questionnaireService) notifyCompletion(ctx context.Context, q *types.ClientQuestionnaire) {
	var claimed bool
	err := runInTx(s.db, ctx, func(dbc dbctx.Context) error {
		var err error
		claimed, err = s.questionnaireRepo.ClaimCompletionNotify(dbc, q.ID, time.Now())
		return err
	})
	if err != nil {
		s.log.Warn("completion notify claim failed", "questionnaire_id", q.ID, "error", err)
		return
	}
	if !claimed {
		return
	}

	var (
		kase   *types.Case
		client *types.Client
	)
	loadErr := runInTx(s.db, ctx, func(dbc dbctx.Context) error {
		var err error
		if kase, err = s.caseRepo.GetByID(dbc, q.CaseID); err != nil {
			return err
		}
		client, err = s.clientRepo.GetByID(dbc, q.ClientID)
		return err
	})

	notifyErr := loadErr
	if notifyErr == nil && kase != nil {
		notifyErr = s.notifier.QuestionnaireCompleted(ctx, client, kase)
	}
	if notifyErr != nil {
		s.log.Warn("completion notification failed, releasing claim", "questionnaire_id", q.ID, "error", notifyErr)
		if err := runInTx(s.db, ctx, func(dbc dbctx.Context) error {
			return s.questionnaireRepo.ReleaseCompletionNotify(dbc, q.ID)
		}); err != nil {
			s.log.Error("completion notify claim release failed", "questionnaire_id", q.ID, "error", err)
		}
		return
	}
	s.log.Info("completion notification sent", "questionnaire_id", q.ID, "case_id", q.CaseID)
}
