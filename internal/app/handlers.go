package app

import (
	httpH "github.com/veridian-legal/discovery-backend/internal/http/handlers"
	"github.com/veridian-legal/discovery-backend/internal/pkg/logger"
)

type Handlers struct {
	Case          *httpH.CaseHandler
	Discovery     *httpH.DiscoveryHandler
	Questionnaire *httpH.QuestionnaireHandler
	Portal        *httpH.PortalHandler
	Strategy      *httpH.StrategyHandler
	Workflow      *httpH.WorkflowHandler
	Health        *httpH.HealthHandler
}

func wireHandlers(log *logger.Logger, svcs Services) Handlers {
	log.Info("wiring handlers")
	return Handlers{
		Case:          httpH.NewCaseHandler(log, svcs.Case),
		Discovery:     httpH.NewDiscoveryHandler(log, svcs.Intake),
		Questionnaire: httpH.NewQuestionnaireHandler(log, svcs.Compiler, svcs.Questionnaire),
		Portal:        httpH.NewPortalHandler(log, svcs.Questionnaire),
		Strategy:      httpH.NewStrategyHandler(log, svcs.Strategy, svcs.Assembly),
		Workflow:      httpH.NewWorkflowHandler(log, svcs.Workflow),
		Health:        httpH.NewHealthHandler(),
	}
}
