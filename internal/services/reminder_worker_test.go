package services

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSweepRemindsOnlyDueQuestionnaires(t *testing.T) {
	f := newQuestionnaireFixture(t, 1)
	ctx := context.Background()
	q := f.send(t)

	worker := NewReminderWorker(testLogger(t), nil, f.questionnaireRepo, f.svc)

	// Freshly sent: nothing is due yet.
	if err := worker.Sweep(ctx); err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if _, reminders, _ := f.notifier.counts(); reminders != 0 {
		t.Fatalf("reminders = %d before the quiet period elapsed", reminders)
	}

	// Age the send past the quiet period.
	row, _ := f.questionnaireRepo.GetByID(txless(ctx), q.ID)
	row.SentAt = time.Now().Add(-48 * time.Hour)
	f.questionnaireRepo.rows[q.ID] = row

	if err := worker.Sweep(ctx); err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if _, reminders, _ := f.notifier.counts(); reminders != 1 {
		t.Fatalf("reminders = %d, want 1", reminders)
	}
	row, _ = f.questionnaireRepo.GetByID(txless(ctx), q.ID)
	if row.LastRemindedAt == nil {
		t.Fatal("last_reminded_at not stamped after a successful reminder")
	}

	// An immediate second sweep is within the re-remind window.
	if err := worker.Sweep(ctx); err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if _, reminders, _ := f.notifier.counts(); reminders != 1 {
		t.Fatalf("reminders = %d after back-to-back sweeps, want 1", reminders)
	}

	// Once the re-remind window passes, the next sweep nudges again.
	stale := time.Now().Add(-30 * time.Hour)
	row.LastRemindedAt = &stale
	f.questionnaireRepo.rows[q.ID] = row
	if err := worker.Sweep(ctx); err != nil {
		t.Fatalf("third sweep: %v", err)
	}
	if _, reminders, _ := f.notifier.counts(); reminders != 2 {
		t.Fatalf("reminders = %d, want 2", reminders)
	}
}

func TestSweepSkipsCompletedQuestionnaires(t *testing.T) {
	f := newQuestionnaireFixture(t, 1)
	ctx := context.Background()
	q := f.send(t)

	row, _ := f.questionnaireRepo.GetByID(txless(ctx), q.ID)
	row.SentAt = time.Now().Add(-48 * time.Hour)
	f.questionnaireRepo.rows[q.ID] = row

	slots, _ := f.responseRepo.ListByQuestionnaire(txless(ctx), q.ID)
	if _, err := f.svc.SaveAnswer(ctx, q.ID, slots[0].ID, "done"); err != nil {
		t.Fatalf("save: %v", err)
	}

	worker := NewReminderWorker(testLogger(t), nil, f.questionnaireRepo, f.svc)
	if err := worker.Sweep(ctx); err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if _, reminders, _ := f.notifier.counts(); reminders != 0 {
		t.Fatalf("reminders = %d for a completed questionnaire", reminders)
	}
}

func TestSweepFailedReminderRetriesNextSweep(t *testing.T) {
	f := newQuestionnaireFixture(t, 1)
	ctx := context.Background()
	q := f.send(t)

	row, _ := f.questionnaireRepo.GetByID(txless(ctx), q.ID)
	row.SentAt = time.Now().Add(-48 * time.Hour)
	f.questionnaireRepo.rows[q.ID] = row

	worker := NewReminderWorker(testLogger(t), nil, f.questionnaireRepo, f.svc)

	f.notifier.reminderErr = errors.New("sms gateway down")
	if err := worker.Sweep(ctx); err != nil {
		t.Fatalf("sweep: %v", err)
	}
	row, _ = f.questionnaireRepo.GetByID(txless(ctx), q.ID)
	if row.LastRemindedAt != nil {
		t.Fatal("failed reminder must not stamp last_reminded_at")
	}

	f.notifier.reminderErr = nil
	if err := worker.Sweep(ctx); err != nil {
		t.Fatalf("retry sweep: %v", err)
	}
	if _, reminders, _ := f.notifier.counts(); reminders != 1 {
		t.Fatalf("reminders = %d after retry, want 1", reminders)
	}
	row, _ = f.questionnaireRepo.GetByID(txless(ctx), q.ID)
	if row.LastRemindedAt == nil {
		t.Fatal("retry did not stamp last_reminded_at")
	}
}
