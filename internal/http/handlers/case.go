package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/veridian-legal/discovery-backend/internal/http/response"
	"github.com/veridian-legal/discovery-backend/internal/pkg/logger"
	"github.com/veridian-legal/discovery-backend/internal/services"
	"github.com/veridian-legal/discovery-backend/internal/types"
)

type CaseHandler struct {
	log   *logger.Logger
	cases services.CaseService
}

func NewCaseHandler(log *logger.Logger, cases services.CaseService) *CaseHandler {
	return &CaseHandler{
		log:   log.With("handler", "CaseHandler"),
		cases: cases,
	}
}

func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return uuid.Nil, false
	}
	return id, true
}

func (h *CaseHandler) CreateCase(c *gin.Context) {
	var body struct {
		Title string `json:"title"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	created, err := h.cases.CreateCase(c.Request.Context(), body.Title)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondCreated(c, created)
}

func (h *CaseHandler) GetCase(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	kase, err := h.cases.GetCase(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, kase)
}

func (h *CaseHandler) ListCases(c *gin.Context) {
	out, err := h.cases.ListCases(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, out)
}

func (h *CaseHandler) UpdateCase(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var input services.CaseUpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	kase, err := h.cases.UpdateCase(c.Request.Context(), id, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, kase)
}

func (h *CaseHandler) CreateClient(c *gin.Context) {
	var body struct {
		Name  string `json:"name"`
		Phone string `json:"phone"`
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	created, err := h.cases.CreateClient(c.Request.Context(), &types.Client{
		Name:  body.Name,
		Phone: body.Phone,
		Email: body.Email,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondCreated(c, created)
}

func (h *CaseHandler) ListClients(c *gin.Context) {
	out, err := h.cases.ListClients(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, out)
}
