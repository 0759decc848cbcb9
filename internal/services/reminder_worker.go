package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/veridian-legal/discovery-backend/internal/data/repos/questionnaire"
	"github.com/veridian-legal/discovery-backend/internal/pkg/dbctx"
	"github.com/veridian-legal/discovery-backend/internal/pkg/envutil"
	"github.com/veridian-legal/discovery-backend/internal/pkg/logger"
	"github.com/veridian-legal/discovery-backend/internal/pkg/poll"
	"github.com/veridian-legal/discovery-backend/internal/types"
)

// ReminderWorker nudges clients who have not finished their questionnaire.
// One background loop per process; it stops when its context is cancelled at
// shutdown. A failed reminder leaves last_reminded_at unset so the next sweep
// retries.
type ReminderWorker struct {
	log               *logger.Logger
	db                *gorm.DB
	questionnaireRepo questionnaire.QuestionnaireRepo
	qsvc              QuestionnaireService

	sweepInterval time.Duration
	remindAfter   time.Duration
	remindEvery   time.Duration
}

func NewReminderWorker(
	log *logger.Logger,
	db *gorm.DB,
	questionnaireRepo questionnaire.QuestionnaireRepo,
	qsvc QuestionnaireService,
) *ReminderWorker {
	return &ReminderWorker{
		log:               log.With("service", "ReminderWorker"),
		db:                db,
		questionnaireRepo: questionnaireRepo,
		qsvc:              qsvc,
		sweepInterval:     time.Duration(envutil.Int("REMINDER_SWEEP_MINUTES", 30)) * time.Minute,
		remindAfter:       time.Duration(envutil.Int("REMINDER_AFTER_HOURS", 24)) * time.Hour,
		remindEvery:       time.Duration(envutil.Int("REMINDER_EVERY_HOURS", 24)) * time.Hour,
	}
}

// Start blocks until ctx is cancelled. Run it on its own goroutine.
func (w *ReminderWorker) Start(ctx context.Context) {
	w.log.Info("reminder worker started",
		"sweep", w.sweepInterval.String(),
		"remind_after", w.remindAfter.String())
	poll.Run(ctx, w.sweepInterval, w.Sweep, func(err error) {
		w.log.Warn("reminder sweep failed", "error", err)
	})
	w.log.Info("reminder worker stopped")
}

// Sweep sends one reminder per due questionnaire.
func (w *ReminderWorker) Sweep(ctx context.Context) error {
	now := time.Now()
	var list []*types.ClientQuestionnaire
	err := runInTx(w.db, ctx, func(dbc dbctx.Context) error {
		var err error
		list, err = w.questionnaireRepo.ListDueForReminder(dbc, now.Add(-w.remindAfter), now.Add(-w.remindEvery))
		return err
	})
	if err != nil {
		return err
	}
	for _, q := range list {
		if err := w.qsvc.SendReminder(ctx, q.CaseID); err != nil {
			w.log.Warn("reminder failed", "questionnaire_id", q.ID, "error", err)
			continue
		}
		err := runInTx(w.db, ctx, func(dbc dbctx.Context) error {
			return w.questionnaireRepo.UpdateFields(dbc, q.ID, map[string]interface{}{
				"last_reminded_at": now,
			})
		})
		if err != nil {
			w.log.Warn("reminder stamp failed", "questionnaire_id", q.ID, "error", err)
		}
	}
	return nil
}
