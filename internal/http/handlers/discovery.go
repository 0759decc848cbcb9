package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/veridian-legal/discovery-backend/internal/http/response"
	"github.com/veridian-legal/discovery-backend/internal/pkg/logger"
	"github.com/veridian-legal/discovery-backend/internal/services"
)

const maxDiscoveryUploadBytes = 32 << 20

type DiscoveryHandler struct {
	log    *logger.Logger
	intake services.IntakeService
}

func NewDiscoveryHandler(log *logger.Logger, intake services.IntakeService) *DiscoveryHandler {
	return &DiscoveryHandler{
		log:    log.With("handler", "DiscoveryHandler"),
		intake: intake,
	}
}

// Upload takes one multipart file per request under the declared category.
func (h *DiscoveryHandler) Upload(c *gin.Context) {
	caseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	category := c.Param("category")

	if err := c.Request.ParseMultipartForm(maxDiscoveryUploadBytes); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_multipart_form", err)
		return
	}
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "missing_file", err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxDiscoveryUploadBytes+1))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "unreadable_file", err)
		return
	}
	if len(data) > maxDiscoveryUploadBytes {
		response.RespondError(c, http.StatusRequestEntityTooLarge, "file_too_large", nil)
		return
	}
	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/pdf"
	}

	doc, err := h.intake.Submit(c.Request.Context(), caseID, category, data, mimeType)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondCreated(c, doc)
}

func (h *DiscoveryHandler) Regenerate(c *gin.Context) {
	caseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	doc, err := h.intake.Regenerate(c.Request.Context(), caseID, c.Param("category"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, doc)
}

func (h *DiscoveryHandler) Remove(c *gin.Context) {
	caseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.intake.Remove(c.Request.Context(), caseID, c.Param("category")); err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"removed": true})
}

func (h *DiscoveryHandler) List(c *gin.Context) {
	caseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	docs, err := h.intake.List(c.Request.Context(), caseID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, docs)
}
