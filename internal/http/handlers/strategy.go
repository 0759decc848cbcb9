package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/veridian-legal/discovery-backend/internal/http/response"
	"github.com/veridian-legal/discovery-backend/internal/pkg/logger"
	"github.com/veridian-legal/discovery-backend/internal/services"
)

type StrategyHandler struct {
	log      *logger.Logger
	strategy services.StrategyService
	assembly services.AssemblyService
}

func NewStrategyHandler(log *logger.Logger, strategy services.StrategyService, assembly services.AssemblyService) *StrategyHandler {
	return &StrategyHandler{
		log:      log.With("handler", "StrategyHandler"),
		strategy: strategy,
		assembly: assembly,
	}
}

// ---- Narratives ----

func (h *StrategyHandler) GenerateNarratives(c *gin.Context) {
	caseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	out, err := h.strategy.GenerateNarratives(c.Request.Context(), caseID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, out)
}

func (h *StrategyHandler) ListNarratives(c *gin.Context) {
	caseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	out, err := h.strategy.ListNarratives(c.Request.Context(), caseID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, out)
}

func (h *StrategyHandler) SelectNarrative(c *gin.Context) {
	caseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	narrativeID, ok := parseIDParam(c, "narrativeId")
	if !ok {
		return
	}
	if err := h.strategy.SelectNarrative(c.Request.Context(), caseID, narrativeID); err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"selected": true})
}

// ---- Objections ----

func (h *StrategyHandler) GenerateObjections(c *gin.Context) {
	caseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	out, err := h.strategy.GenerateObjections(c.Request.Context(), caseID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, out)
}

func (h *StrategyHandler) ListObjections(c *gin.Context) {
	caseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	out, err := h.strategy.ListObjections(c.Request.Context(), caseID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, out)
}

func (h *StrategyHandler) RegenerateOption(c *gin.Context) {
	caseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var body struct {
		RequestIndex int `json:"request_index"`
		OptionIndex  int `json:"option_index"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	set, err := h.strategy.RegenerateOption(c.Request.Context(), caseID, body.RequestIndex, body.OptionIndex)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, set)
}

func (h *StrategyHandler) RegenerateAll(c *gin.Context) {
	caseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	out, err := h.strategy.RegenerateAll(c.Request.Context(), caseID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, out)
}

func (h *StrategyHandler) GenerateDirectAnswer(c *gin.Context) {
	caseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var body struct {
		RequestIndex int `json:"request_index"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	set, err := h.strategy.GenerateDirectAnswer(c.Request.Context(), caseID, body.RequestIndex)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, set)
}

func (h *StrategyHandler) SelectResponse(c *gin.Context) {
	caseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var input services.SelectResponseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	set, err := h.strategy.SelectResponse(c.Request.Context(), caseID, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, set)
}

// ---- Assembly ----

func (h *StrategyHandler) Assemble(c *gin.Context) {
	caseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	result, err := h.assembly.Assemble(c.Request.Context(), caseID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, result)
}
