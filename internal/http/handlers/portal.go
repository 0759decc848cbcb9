package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/veridian-legal/discovery-backend/internal/http/response"
	"github.com/veridian-legal/discovery-backend/internal/pkg/logger"
	"github.com/veridian-legal/discovery-backend/internal/services"
)

// PortalHandler is the client-side surface. The questionnaire id in the
// portal link is the client's capability; there is no account login.
type PortalHandler struct {
	log  *logger.Logger
	qsvc services.QuestionnaireService
}

func NewPortalHandler(log *logger.Logger, qsvc services.QuestionnaireService) *PortalHandler {
	return &PortalHandler{
		log:  log.With("handler", "PortalHandler"),
		qsvc: qsvc,
	}
}

func (h *PortalHandler) GetQuestionnaire(c *gin.Context) {
	questionnaireID, ok := parseIDParam(c, "questionnaireId")
	if !ok {
		return
	}
	view, err := h.qsvc.Portal(c.Request.Context(), questionnaireID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, view)
}

func (h *PortalHandler) SaveAnswer(c *gin.Context) {
	questionnaireID, ok := parseIDParam(c, "questionnaireId")
	if !ok {
		return
	}
	responseID, ok := parseIDParam(c, "responseId")
	if !ok {
		return
	}
	var body struct {
		Answer string `json:"answer"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	saved, err := h.qsvc.SaveAnswer(c.Request.Context(), questionnaireID, responseID, body.Answer)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, saved)
}
