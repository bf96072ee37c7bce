package handlers

import (
	"net/http"

	"runway-forecast/internal/api/models"
	"runway-forecast/internal/forecast"
	"runway-forecast/internal/scenario"

	"github.com/gin-gonic/gin"
)

// ScenarioHandler exposes saved scenarios.
type ScenarioHandler struct {
	svc    *scenario.Service
	engine *forecast.Engine
}

func NewScenarioHandler(svc *scenario.Service) *ScenarioHandler {
	return &ScenarioHandler{svc: svc, engine: forecast.New()}
}

// ListScenarios handles GET /api/v1/scenarios?userId=
func (h *ScenarioHandler) ListScenarios(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context(), c.Query("userId"))
	if err != nil {
		writeScenarioError(c, "list", err)
		return
	}
	c.JSON(http.StatusOK, models.ScenarioListResponse{Scenarios: list})
}

// CreateScenario handles POST /api/v1/scenarios
func (h *ScenarioHandler) CreateScenario(c *gin.Context) {
	var req models.CreateScenarioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, CodeInvalidRequest, err.Error(), nil)
		return
	}
	dial := *req.DialValues
	dial.CollectSplit = dial.CollectSplit.Normalized()

	sc, err := h.svc.Create(c.Request.Context(), req.UserID, req.Name, dial)
	if err != nil {
		writeScenarioError(c, "create", err)
		return
	}
	c.JSON(http.StatusCreated, sc)
}

// GetScenario handles GET /api/v1/scenarios/:id
func (h *ScenarioHandler) GetScenario(c *gin.Context) {
	sc, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeScenarioError(c, "get", err)
		return
	}
	c.JSON(http.StatusOK, sc)
}

// UpdateScenario handles PUT /api/v1/scenarios/:id
func (h *ScenarioHandler) UpdateScenario(c *gin.Context) {
	var req models.UpdateScenarioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, CodeInvalidRequest, err.Error(), nil)
		return
	}
	if req.DialValues != nil {
		req.DialValues.CollectSplit = req.DialValues.CollectSplit.Normalized()
	}

	sc, err := h.svc.Update(c.Request.Context(), c.Param("id"), scenario.Patch{
		Name:       req.Name,
		DialValues: req.DialValues,
	})
	if err != nil {
		writeScenarioError(c, "update", err)
		return
	}
	c.JSON(http.StatusOK, sc)
}

// DeleteScenario handles DELETE /api/v1/scenarios/:id
func (h *ScenarioHandler) DeleteScenario(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeScenarioError(c, "delete", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ScenarioPlan handles GET /api/v1/scenarios/:id/plan
func (h *ScenarioHandler) ScenarioPlan(c *gin.Context) {
	sc, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeScenarioError(c, "get", err)
		return
	}
	plan, err := h.engine.Run(sc.DialValues)
	if err != nil {
		writeError(c, http.StatusUnprocessableEntity, CodeInvalidAssumptions, err.Error(), nil)
		return
	}
	c.JSON(http.StatusOK, models.ScenarioPlanResponse{
		Scenario: sc,
		Plan:     buildPlanResponse(sc.DialValues, plan, c.Query("deltas") == "true"),
	})
}
