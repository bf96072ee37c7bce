package handlers

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"runway-forecast/internal/analysis"
	"runway-forecast/internal/api/models"
	"runway-forecast/internal/config"
	"runway-forecast/internal/forecast"
	"runway-forecast/internal/model"

	"github.com/gin-gonic/gin"
)

// PlanHandler runs forecasts.
type PlanHandler struct {
	presets *PresetHandler
	engine  *forecast.Engine
}

func NewPlanHandler(presets *PresetHandler) *PlanHandler {
	return &PlanHandler{presets: presets, engine: forecast.New()}
}

// DefaultAssumptions handles GET /api/v1/assumptions/default
func (h *PlanHandler) DefaultAssumptions(c *gin.Context) {
	switch c.DefaultQuery("costModel", string(model.CostModelDetailed)) {
	case string(model.CostModelDetailed):
		c.JSON(http.StatusOK, gin.H{"assumptions": model.DefaultAssumptions()})
	case string(model.CostModelFlat):
		c.JSON(http.StatusOK, gin.H{"assumptions": model.DefaultFlatAssumptions()})
	default:
		writeError(c, http.StatusBadRequest, CodeInvalidRequest,
			fmt.Sprintf("costModel must be %q or %q", model.CostModelDetailed, model.CostModelFlat), nil)
	}
}

// RunPlan handles POST /api/v1/plan. With ?format=csv the rows are streamed
// as CSV instead of JSON.
func (h *PlanHandler) RunPlan(c *gin.Context) {
	var req models.PlanRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		writeError(c, http.StatusBadRequest, CodeInvalidRequest, err.Error(), nil)
		return
	}

	a, err := h.resolve(req)
	if err != nil {
		h.writeResolveError(c, err)
		return
	}

	plan, err := h.engine.Run(a)
	if err != nil {
		writeError(c, http.StatusBadRequest, CodeInvalidAssumptions, err.Error(), nil)
		return
	}

	if c.Query("format") == "csv" {
		c.Header("Content-Type", "text/csv; charset=utf-8")
		c.Header("Content-Disposition", `attachment; filename="plan.csv"`)
		c.Status(http.StatusOK)
		if err := forecast.EncodeMonthRowsCSV(c.Writer, plan.Rows); err != nil {
			log.Printf("PlanHandler: Failed to write CSV: %v", err)
		}
		return
	}

	c.JSON(http.StatusOK, buildPlanResponse(a, plan, req.IncludeDeltas))
}

// ComparePlans handles POST /api/v1/plan/compare
func (h *PlanHandler) ComparePlans(c *gin.Context) {
	var req models.ComparePlansRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, CodeInvalidRequest, err.Error(), nil)
		return
	}
	if len(req.Variations) == 0 {
		writeError(c, http.StatusBadRequest, CodeInvalidRequest, "at least one variation is required", nil)
		return
	}

	base, err := h.resolve(req.Base)
	if err != nil {
		h.writeResolveError(c, err)
		return
	}

	named := make([]analysis.NamedPlan, 0, len(req.Variations))
	byName := make(map[string]model.Assumptions, len(req.Variations))
	skipped := []models.SkippedVariation{}
	for _, v := range req.Variations {
		if _, dup := byName[v.Name]; dup {
			skipped = append(skipped, models.SkippedVariation{Name: v.Name, Error: "duplicate variation name"})
			continue
		}
		a, err := config.ApplyOverrides(base, v.Overrides)
		if err == nil {
			a.CollectSplit = a.CollectSplit.Normalized()
		}
		var plan *forecast.Plan
		if err == nil {
			plan, err = h.engine.Run(a)
		}
		if err != nil {
			skipped = append(skipped, models.SkippedVariation{Name: v.Name, Error: err.Error()})
			continue
		}
		byName[v.Name] = a
		named = append(named, analysis.NamedPlan{Name: v.Name, Plan: plan})
	}

	ranked := analysis.RankByRunway(named)
	comparison := make([]models.ComparisonResult, 0, len(ranked))
	for _, r := range ranked {
		comparison = append(comparison, models.ComparisonResult{
			Rank:    r.Rank,
			Name:    r.Name,
			Summary: r.Plan.Summary,
			Metrics: analysis.ComputeMetrics(r.Plan, byName[r.Name]),
		})
	}

	c.JSON(http.StatusOK, models.ComparePlansResponse{
		Comparison: comparison,
		Skipped:    skipped,
	})
}

// resolve picks the base assumptions and applies overrides. The collect
// split is normalized; validation is left to the engine.
func (h *PlanHandler) resolve(req models.PlanRequest) (model.Assumptions, error) {
	var a model.Assumptions
	switch {
	case req.Assumptions != nil:
		a = *req.Assumptions
	case req.Preset != "":
		loaded, err := h.presets.Load(req.Preset)
		if err != nil {
			return model.Assumptions{}, err
		}
		a = loaded
	default:
		a = model.DefaultAssumptions()
	}

	a, err := config.ApplyOverrides(a, req.Overrides)
	if err != nil {
		return model.Assumptions{}, &overrideError{err: err}
	}
	a.CollectSplit = a.CollectSplit.Normalized()
	return a, nil
}

type overrideError struct{ err error }

func (e *overrideError) Error() string { return e.err.Error() }
func (e *overrideError) Unwrap() error { return e.err }

func (h *PlanHandler) writeResolveError(c *gin.Context, err error) {
	var ovErr *overrideError
	switch {
	case errors.Is(err, errPresetNotFound):
		writeError(c, http.StatusNotFound, CodeNotFound, err.Error(), nil)
	case errors.As(err, &ovErr):
		writeError(c, http.StatusBadRequest, CodeInvalidRequest, err.Error(), nil)
	default:
		log.Printf("PlanHandler: Failed to load preset: %v", err)
		writeError(c, http.StatusInternalServerError, CodeInternalError, err.Error(), nil)
	}
}

func buildPlanResponse(a model.Assumptions, plan *forecast.Plan, includeDeltas bool) models.PlanResponse {
	resp := models.PlanResponse{
		Assumptions: a,
		Rows:        plan.Rows,
		Summary:     plan.Summary,
		Metrics:     analysis.ComputeMetrics(plan, a),
	}
	if includeDeltas {
		resp.Deltas = analysis.Deltas(plan.Rows)
	}
	return resp
}

// bindOptionalJSON binds a JSON body when one is sent; an empty body leaves
// obj untouched.
func bindOptionalJSON(c *gin.Context, obj any) error {
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
