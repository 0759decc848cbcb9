package questionnaire

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/veridian-legal/discovery-backend/internal/data/repos/testutil"
	"github.com/veridian-legal/discovery-backend/internal/pkg/dbctx"
	"github.com/veridian-legal/discovery-backend/internal/types"
)

func seedQuestionnaire(t *testing.T, repo QuestionnaireRepo, dbc dbctx.Context, status string, sentAt time.Time) *types.ClientQuestionnaire {
	t.Helper()
	q, err := repo.Create(dbc, &types.ClientQuestionnaire{
		CaseID:         uuid.New(),
		ClientID:       uuid.New(),
		Status:         status,
		TotalQuestions: 3,
		SentAt:         sentAt,
	})
	if err != nil {
		t.Fatalf("seed questionnaire: %v", err)
	}
	return q
}

func TestClaimCompletionNotifyWinsOnce(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	repo := NewQuestionnaireRepo(db, testutil.Logger(t))

	q := seedQuestionnaire(t, repo, dbc, types.QuestionnaireStatusCompleted, time.Now())

	won, err := repo.ClaimCompletionNotify(dbc, q.ID, time.Now())
	if err != nil || !won {
		t.Fatalf("first claim = %v (%v), want won", won, err)
	}
	won, err = repo.ClaimCompletionNotify(dbc, q.ID, time.Now())
	if err != nil || won {
		t.Fatalf("second claim = %v (%v), must lose", won, err)
	}

	// Release makes the claim winnable again for a retry.
	if err := repo.ReleaseCompletionNotify(dbc, q.ID); err != nil {
		t.Fatalf("release: %v", err)
	}
	won, err = repo.ClaimCompletionNotify(dbc, q.ID, time.Now())
	if err != nil || !won {
		t.Fatalf("claim after release = %v (%v), want won", won, err)
	}

	row, err := repo.GetByID(dbc, q.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if row.CompletionNotifiedAt == nil {
		t.Fatal("claim did not stamp completion_notified_at")
	}
}

func TestListDueForReminder(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	repo := NewQuestionnaireRepo(db, testutil.Logger(t))

	now := time.Now()
	fresh := seedQuestionnaire(t, repo, dbc, types.QuestionnaireStatusPending, now.Add(-time.Hour))
	overdue := seedQuestionnaire(t, repo, dbc, types.QuestionnaireStatusInProgress, now.Add(-48*time.Hour))
	completed := seedQuestionnaire(t, repo, dbc, types.QuestionnaireStatusCompleted, now.Add(-48*time.Hour))
	recentlyNudged := seedQuestionnaire(t, repo, dbc, types.QuestionnaireStatusPending, now.Add(-72*time.Hour))
	if err := repo.UpdateFields(dbc, recentlyNudged.ID, map[string]interface{}{
		"last_reminded_at": now.Add(-time.Hour),
	}); err != nil {
		t.Fatalf("stamp reminder: %v", err)
	}
	staleNudge := seedQuestionnaire(t, repo, dbc, types.QuestionnaireStatusPending, now.Add(-96*time.Hour))
	if err := repo.UpdateFields(dbc, staleNudge.ID, map[string]interface{}{
		"last_reminded_at": now.Add(-30 * time.Hour),
	}); err != nil {
		t.Fatalf("stamp stale reminder: %v", err)
	}

	due, err := repo.ListDueForReminder(dbc, now.Add(-24*time.Hour), now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("list due: %v", err)
	}

	want := map[uuid.UUID]bool{overdue.ID: true, staleNudge.ID: true}
	got := map[uuid.UUID]bool{}
	for _, q := range due {
		got[q.ID] = true
	}
	for id := range want {
		if !got[id] {
			t.Fatalf("questionnaire %s missing from due list", id)
		}
	}
	for _, excluded := range []uuid.UUID{fresh.ID, completed.ID, recentlyNudged.ID} {
		if got[excluded] {
			t.Fatalf("questionnaire %s should not be due", excluded)
		}
	}
}

func TestResponseCountAnswered(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	qRepo := NewQuestionnaireRepo(db, testutil.Logger(t))
	rRepo := NewResponseRepo(db, testutil.Logger(t))

	q := seedQuestionnaire(t, qRepo, dbc, types.QuestionnaireStatusPending, time.Now())

	var slots []*types.QuestionResponse
	for i := 0; i < 3; i++ {
		slots = append(slots, &types.QuestionResponse{
			QuestionnaireID: q.ID,
			QuestionID:      uuid.New(),
			Position:        i,
			QuestionText:    "A question?",
		})
	}
	if _, err := rRepo.CreateBatch(dbc, slots); err != nil {
		t.Fatalf("create slots: %v", err)
	}

	n, err := rRepo.CountAnswered(dbc, q.ID)
	if err != nil || n != 0 {
		t.Fatalf("answered = %d (%v), want 0", n, err)
	}

	now := time.Now()
	if err := rRepo.UpdateFields(dbc, slots[0].ID, map[string]interface{}{
		"answer":      "an answer",
		"answered_at": now,
	}); err != nil {
		t.Fatalf("answer slot: %v", err)
	}
	// Blank answers do not count.
	if err := rRepo.UpdateFields(dbc, slots[1].ID, map[string]interface{}{
		"answer":      "",
		"answered_at": now,
	}); err != nil {
		t.Fatalf("blank slot: %v", err)
	}

	n, err = rRepo.CountAnswered(dbc, q.ID)
	if err != nil || n != 1 {
		t.Fatalf("answered = %d (%v), want 1", n, err)
	}
}

func TestUpdateQuestionTextKeepsAnswer(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	qRepo := NewQuestionnaireRepo(db, testutil.Logger(t))
	rRepo := NewResponseRepo(db, testutil.Logger(t))

	q := seedQuestionnaire(t, qRepo, dbc, types.QuestionnaireStatusInProgress, time.Now())
	questionID := uuid.New()
	slots, err := rRepo.CreateBatch(dbc, []*types.QuestionResponse{{
		QuestionnaireID: q.ID,
		QuestionID:      questionID,
		Position:        0,
		QuestionText:    "Original question?",
	}})
	if err != nil {
		t.Fatalf("create slot: %v", err)
	}
	if err := rRepo.UpdateFields(dbc, slots[0].ID, map[string]interface{}{
		"answer":      "my answer",
		"answered_at": time.Now(),
	}); err != nil {
		t.Fatalf("answer: %v", err)
	}

	if err := rRepo.UpdateQuestionText(dbc, q.ID, questionID, "Clarified question?"); err != nil {
		t.Fatalf("update text: %v", err)
	}
	row, err := rRepo.GetByID(dbc, slots[0].ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if row.QuestionText != "Clarified question?" {
		t.Fatalf("text = %q", row.QuestionText)
	}
	if row.Answer == nil || *row.Answer != "my answer" {
		t.Fatalf("answer = %v, must survive the text edit", row.Answer)
	}
}
