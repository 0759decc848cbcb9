package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/veridian-legal/discovery-backend/internal/http/response"
	"github.com/veridian-legal/discovery-backend/internal/pkg/logger"
	"github.com/veridian-legal/discovery-backend/internal/services"
)

// QuestionnaireHandler is the lawyer-side questionnaire surface: compiled
// question review and editing, sending, polling, post-send updates.
type QuestionnaireHandler struct {
	log      *logger.Logger
	compiler services.CompilerService
	qsvc     services.QuestionnaireService
}

func NewQuestionnaireHandler(log *logger.Logger, compiler services.CompilerService, qsvc services.QuestionnaireService) *QuestionnaireHandler {
	return &QuestionnaireHandler{
		log:      log.With("handler", "QuestionnaireHandler"),
		compiler: compiler,
		qsvc:     qsvc,
	}
}

func (h *QuestionnaireHandler) Compile(c *gin.Context) {
	caseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	questions, err := h.compiler.Compile(c.Request.Context(), caseID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, questions)
}

func (h *QuestionnaireHandler) ListQuestions(c *gin.Context) {
	caseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	questions, err := h.compiler.ListQuestions(c.Request.Context(), caseID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, questions)
}

func (h *QuestionnaireHandler) EditQuestion(c *gin.Context) {
	questionID, ok := parseIDParam(c, "questionId")
	if !ok {
		return
	}
	var body struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	q, err := h.compiler.EditQuestion(c.Request.Context(), questionID, body.Text)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, q)
}

func (h *QuestionnaireHandler) RewriteQuestion(c *gin.Context) {
	questionID, ok := parseIDParam(c, "questionId")
	if !ok {
		return
	}
	var body struct {
		Instruction string `json:"instruction"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	q, err := h.compiler.RewriteQuestion(c.Request.Context(), questionID, body.Instruction)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, q)
}

func (h *QuestionnaireHandler) RevertQuestion(c *gin.Context) {
	questionID, ok := parseIDParam(c, "questionId")
	if !ok {
		return
	}
	q, err := h.compiler.RevertQuestion(c.Request.Context(), questionID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, q)
}

func (h *QuestionnaireHandler) Send(c *gin.Context) {
	caseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	q, err := h.qsvc.Send(c.Request.Context(), caseID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, q)
}

func (h *QuestionnaireHandler) Poll(c *gin.Context) {
	caseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	status, err := h.qsvc.Poll(c.Request.Context(), caseID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, status)
}

// UpdateSentQuestion is the explicit post-send edit that also mutates the
// live questionnaire.
func (h *QuestionnaireHandler) UpdateSentQuestion(c *gin.Context) {
	caseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	questionID, ok := parseIDParam(c, "questionId")
	if !ok {
		return
	}
	var body struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if err := h.qsvc.UpdateSentQuestion(c.Request.Context(), caseID, questionID, body.Text); err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"updated": true})
}

func (h *QuestionnaireHandler) SendReminder(c *gin.Context) {
	caseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.qsvc.SendReminder(c.Request.Context(), caseID); err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"sent": true})
}

func (h *QuestionnaireHandler) Responses(c *gin.Context) {
	caseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	out, err := h.qsvc.Responses(c.Request.Context(), caseID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, out)
}
