package app

import (
	"github.com/gin-gonic/gin"

	internalhttp "github.com/veridian-legal/discovery-backend/internal/http"
	"github.com/veridian-legal/discovery-backend/internal/pkg/logger"
)

func wireRouter(log *logger.Logger, handlers Handlers) *gin.Engine {
	return internalhttp.NewRouter(internalhttp.RouterConfig{
		Log:                  log,
		CaseHandler:          handlers.Case,
		DiscoveryHandler:     handlers.Discovery,
		QuestionnaireHandler: handlers.Questionnaire,
		PortalHandler:        handlers.Portal,
		StrategyHandler:      handlers.Strategy,
		WorkflowHandler:      handlers.Workflow,
		HealthHandler:        handlers.Health,
	})
}
