package handlers

import (
	"errors"
	"log"
	"net/http"

	"runway-forecast/internal/api/models"
	"runway-forecast/internal/generator"
	"runway-forecast/internal/scenario"

	"github.com/gin-gonic/gin"
)

// Error codes returned in models.ErrorDetail.
const (
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodeInvalidAssumptions  = "INVALID_ASSUMPTIONS"
	CodeNotFound            = "NOT_FOUND"
	CodeGenerationFailed    = "GENERATION_FAILED"
	CodeProviderUnavailable = "PROVIDER_UNAVAILABLE"
	CodeStoreError          = "STORE_ERROR"
	CodeInternalError       = "INTERNAL_ERROR"
)

func writeError(c *gin.Context, status int, code, message string, details map[string]interface{}) {
	c.JSON(status, models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// writeScenarioError maps scenario service errors onto HTTP statuses.
func writeScenarioError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, scenario.ErrNotFound):
		writeError(c, http.StatusNotFound, CodeNotFound, err.Error(), nil)
	case errors.Is(err, scenario.ErrInvalid):
		writeError(c, http.StatusBadRequest, CodeInvalidRequest, err.Error(), nil)
	default:
		log.Printf("ScenarioHandler: %s failed: %v", op, err)
		writeError(c, http.StatusInternalServerError, CodeStoreError, "scenario store error", nil)
	}
}

// writeGenerationError maps generator failures onto HTTP statuses.
func writeGenerationError(c *gin.Context, err error) {
	var genErr *generator.GenerationError
	if !errors.As(err, &genErr) {
		log.Printf("GenerateHandler: unexpected error: %v", err)
		writeError(c, http.StatusInternalServerError, CodeInternalError, "generation failed", nil)
		return
	}

	var details map[string]interface{}
	if len(genErr.Details) > 0 {
		details = map[string]interface{}{"issues": genErr.Details}
	}
	switch genErr.Code {
	case generator.CodeInvalidPrompt:
		writeError(c, http.StatusBadRequest, CodeInvalidRequest, genErr.Message, nil)
	case generator.CodeProviderUnavailable:
		writeError(c, http.StatusServiceUnavailable, CodeProviderUnavailable, genErr.Message, nil)
	case generator.CodeInvalidDraft:
		writeError(c, http.StatusBadGateway, CodeGenerationFailed, genErr.Message, details)
	default:
		writeError(c, http.StatusBadGateway, CodeGenerationFailed, genErr.Error(), details)
	}
}
