package app

import (
	"gorm.io/gorm"

	"github.com/veridian-legal/discovery-backend/internal/pkg/logger"
	"github.com/veridian-legal/discovery-backend/internal/services"
)

type Services struct {
	Case          services.CaseService
	Extraction    services.ExtractionService
	Intake        services.IntakeService
	Compiler      services.CompilerService
	Notifier      services.NotificationService
	Questionnaire services.QuestionnaireService
	Strategy      services.StrategyService
	Assembly      services.AssemblyService
	Workflow      services.WorkflowService

	ReminderWorker *services.ReminderWorker
}

func wireServices(db *gorm.DB, log *logger.Logger, repos Repos, clients Clients) Services {
	log.Info("wiring services")

	extraction := services.NewExtractionService(log, clients.Document, clients.OpenAI)
	intake := services.NewIntakeService(log, db, repos.Document, clients.Bucket, extraction)
	compiler := services.NewCompilerService(log, db, repos.Document, repos.Question, clients.OpenAI)
	notifier := services.NewNotificationService(log, clients.Twilio, clients.SendGrid)
	questionnaire := services.NewQuestionnaireService(
		log, db,
		repos.Case, repos.Client, repos.Document,
		repos.Question, repos.Questionnaire, repos.Response,
		notifier,
	)
	strategy := services.NewStrategyService(
		log, db,
		repos.Case, repos.Question, repos.Questionnaire, repos.Response,
		repos.Narrative, repos.ObjectionSet,
		clients.OpenAI,
	)
	assembly := services.NewAssemblyService(log, db, repos.ObjectionSet)
	workflow := services.NewWorkflowService(
		log, db,
		repos.WorkflowState, repos.Case, repos.Questionnaire,
		intake, compiler, strategy,
	)

	return Services{
		Case:           services.NewCaseService(log, db, repos.Case, repos.Client),
		Extraction:     extraction,
		Intake:         intake,
		Compiler:       compiler,
		Notifier:       notifier,
		Questionnaire:  questionnaire,
		Strategy:       strategy,
		Assembly:       assembly,
		Workflow:       workflow,
		ReminderWorker: services.NewReminderWorker(log, db, repos.Questionnaire, questionnaire),
	}
}
