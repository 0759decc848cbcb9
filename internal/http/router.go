package http

import (
	"github.com/gin-gonic/gin"

	httpH "github.com/veridian-legal/discovery-backend/internal/http/handlers"
	httpMW "github.com/veridian-legal/discovery-backend/internal/http/middleware"
	"github.com/veridian-legal/discovery-backend/internal/pkg/logger"
)

type RouterConfig struct {
	Log *logger.Logger

	CaseHandler          *httpH.CaseHandler
	DiscoveryHandler     *httpH.DiscoveryHandler
	QuestionnaireHandler *httpH.QuestionnaireHandler
	PortalHandler        *httpH.PortalHandler
	StrategyHandler      *httpH.StrategyHandler
	WorkflowHandler      *httpH.WorkflowHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.Default()
	r.Use(httpMW.CORS())
	if cfg.Log != nil {
		r.Use(httpMW.RequestLogger(cfg.Log))
	}

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		// Cases and clients
		if cfg.CaseHandler != nil {
			api.POST("/cases", cfg.CaseHandler.CreateCase)
			api.GET("/cases", cfg.CaseHandler.ListCases)
			api.GET("/cases/:id", cfg.CaseHandler.GetCase)
			api.PATCH("/cases/:id", cfg.CaseHandler.UpdateCase)
			api.POST("/clients", cfg.CaseHandler.CreateClient)
			api.GET("/clients", cfg.CaseHandler.ListClients)
		}

		// Discovery intake
		if cfg.DiscoveryHandler != nil {
			api.GET("/cases/:id/discovery", cfg.DiscoveryHandler.List)
			api.POST("/cases/:id/discovery/:category", cfg.DiscoveryHandler.Upload)
			api.POST("/cases/:id/discovery/:category/regenerate", cfg.DiscoveryHandler.Regenerate)
			api.DELETE("/cases/:id/discovery/:category", cfg.DiscoveryHandler.Remove)
		}

		// Questionnaire (lawyer side)
		if cfg.QuestionnaireHandler != nil {
			api.POST("/cases/:id/questions/compile", cfg.QuestionnaireHandler.Compile)
			api.GET("/cases/:id/questions", cfg.QuestionnaireHandler.ListQuestions)
			api.PATCH("/questions/:questionId", cfg.QuestionnaireHandler.EditQuestion)
			api.POST("/questions/:questionId/rewrite", cfg.QuestionnaireHandler.RewriteQuestion)
			api.POST("/questions/:questionId/revert", cfg.QuestionnaireHandler.RevertQuestion)

			api.POST("/cases/:id/questionnaire/send", cfg.QuestionnaireHandler.Send)
			api.GET("/cases/:id/questionnaire/poll", cfg.QuestionnaireHandler.Poll)
			api.PATCH("/cases/:id/questionnaire/questions/:questionId", cfg.QuestionnaireHandler.UpdateSentQuestion)
			api.POST("/cases/:id/questionnaire/remind", cfg.QuestionnaireHandler.SendReminder)
			api.GET("/cases/:id/questionnaire/responses", cfg.QuestionnaireHandler.Responses)
		}

		// Strategy, objections, assembly
		if cfg.StrategyHandler != nil {
			api.POST("/cases/:id/narratives/generate", cfg.StrategyHandler.GenerateNarratives)
			api.GET("/cases/:id/narratives", cfg.StrategyHandler.ListNarratives)
			api.POST("/cases/:id/narratives/:narrativeId/select", cfg.StrategyHandler.SelectNarrative)

			api.POST("/cases/:id/objections/generate", cfg.StrategyHandler.GenerateObjections)
			api.GET("/cases/:id/objections", cfg.StrategyHandler.ListObjections)
			api.POST("/cases/:id/objections/regenerate-option", cfg.StrategyHandler.RegenerateOption)
			api.POST("/cases/:id/objections/regenerate-all", cfg.StrategyHandler.RegenerateAll)
			api.POST("/cases/:id/objections/direct-answer", cfg.StrategyHandler.GenerateDirectAnswer)
			api.POST("/cases/:id/objections/select", cfg.StrategyHandler.SelectResponse)

			api.GET("/cases/:id/assembly", cfg.StrategyHandler.Assemble)
		}

		// Workflow
		if cfg.WorkflowHandler != nil {
			api.GET("/cases/:id/workflow", cfg.WorkflowHandler.Current)
			api.POST("/cases/:id/workflow/advance", cfg.WorkflowHandler.Advance)
			api.POST("/cases/:id/workflow/back", cfg.WorkflowHandler.Back)
		}

		// Client portal
		if cfg.PortalHandler != nil {
			api.GET("/portal/:questionnaireId", cfg.PortalHandler.GetQuestionnaire)
			api.PUT("/portal/:questionnaireId/responses/:responseId", cfg.PortalHandler.SaveAnswer)
		}
	}

	return r
}
