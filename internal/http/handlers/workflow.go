package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/veridian-legal/discovery-backend/internal/http/response"
	"github.com/veridian-legal/discovery-backend/internal/pkg/logger"
	"github.com/veridian-legal/discovery-backend/internal/services"
)

type WorkflowHandler struct {
	log      *logger.Logger
	workflow services.WorkflowService
}

func NewWorkflowHandler(log *logger.Logger, workflow services.WorkflowService) *WorkflowHandler {
	return &WorkflowHandler{
		log:      log.With("handler", "WorkflowHandler"),
		workflow: workflow,
	}
}

func (h *WorkflowHandler) Current(c *gin.Context) {
	caseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	view, err := h.workflow.Current(c.Request.Context(), caseID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, view)
}

func (h *WorkflowHandler) Advance(c *gin.Context) {
	caseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	view, err := h.workflow.Advance(c.Request.Context(), caseID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, view)
}

func (h *WorkflowHandler) Back(c *gin.Context) {
	caseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	view, err := h.workflow.Back(c.Request.Context(), caseID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, view)
}
