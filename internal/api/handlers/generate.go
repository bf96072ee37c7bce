package handlers

import (
	"log"
	"net/http"

	"runway-forecast/internal/api/models"
	"runway-forecast/internal/forecast"
	"runway-forecast/internal/generator"

	"github.com/gin-gonic/gin"
)

// GenerateHandler drafts assumptions from a plain-language prompt.
type GenerateHandler struct {
	gen    *generator.Generator
	engine *forecast.Engine
}

func NewGenerateHandler(gen *generator.Generator) *GenerateHandler {
	return &GenerateHandler{gen: gen, engine: forecast.New()}
}

// GenerateAssumptions handles POST /api/v1/assumptions/generate
func (h *GenerateHandler) GenerateAssumptions(c *gin.Context) {
	var req models.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, CodeInvalidRequest, err.Error(), nil)
		return
	}

	res, err := h.gen.Generate(c.Request.Context(), req.Prompt)
	if err != nil {
		log.Printf("GenerateHandler: Generation failed: %v", err)
		writeGenerationError(c, err)
		return
	}

	plan, err := h.engine.Run(res.Assumptions)
	if err != nil {
		// Generate validates, so this is a bug rather than bad input.
		log.Printf("GenerateHandler: Generated assumptions rejected by engine: %v", err)
		writeError(c, http.StatusInternalServerError, CodeInternalError, err.Error(), nil)
		return
	}

	c.JSON(http.StatusOK, models.GenerateResponse{
		Assumptions: res.Assumptions,
		Reasoning:   res.Reasoning,
		Cached:      res.Cached,
		Plan:        buildPlanResponse(res.Assumptions, plan, false),
	})
}
