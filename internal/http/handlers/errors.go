package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/veridian-legal/discovery-backend/internal/http/response"
	"github.com/veridian-legal/discovery-backend/internal/services"
)

// respondServiceError maps the service error taxonomy onto HTTP statuses.
// Validation blocks with a 4xx; extraction and generation failures surface as
// 502 so the caller can retry the same action.
func respondServiceError(c *gin.Context, err error) {
	var (
		ve *services.ValidationError
		ee *services.ExtractionError
		ge *services.GenerationError
	)
	switch {
	case errors.Is(err, services.ErrNotFound):
		response.RespondError(c, http.StatusNotFound, "not_found", err)
	case errors.As(err, &ve):
		response.RespondError(c, http.StatusUnprocessableEntity, "validation_failed", err)
	case errors.As(err, &ee):
		response.RespondError(c, http.StatusBadGateway, "extraction_failed", err)
	case errors.As(err, &ge):
		response.RespondError(c, http.StatusBadGateway, "generation_failed", err)
	default:
		response.RespondError(c, http.StatusInternalServerError, "internal_error", err)
	}
}
