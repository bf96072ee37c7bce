package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"runway-forecast/internal/api"
	"runway-forecast/internal/api/models"
	"runway-forecast/internal/forecast"
	"runway-forecast/internal/generator"
	"runway-forecast/internal/model"
	"runway-forecast/internal/scenario"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const draftJSON = `{"startArrUsd": 600000, "acvUsd": 10000, "newLogosPerMonth": 5,
 "churnMonthly": 1, "upsellMonthly": 0.5, "startCashUsd": 1500000,
 "payrollPerMonthUsd": 90000, "opexPerMonthUsd": 20000,
 "collectSplit0": 25, "collectSplit1": 75,
 "oneOffInvestmentMonth": 0, "oneOffInvestmentAmountUsd": 0,
 "reasoning": "Early SMB product."}`

type stubProvider struct{ response string }

func (s stubProvider) Name() string { return "stub" }

func (s stubProvider) GenerateResponse(context.Context, string, string, generator.Options) (string, error) {
	return s.response, nil
}

func newTestRouter(t *testing.T, gen *generator.Generator) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	return api.NewRouter(api.Options{
		PresetDir: "../../examples/presets",
		Scenarios: scenario.NewService(scenario.NewMemoryStore()),
		Generator: gen,
	})
}

func do(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[models.ErrorResponse](t, w).Error.Code
}

func TestHealth(t *testing.T) {
	w := do(t, newTestRouter(t, nil), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestDefaultAssumptions(t *testing.T) {
	r := newTestRouter(t, nil)

	w := do(t, r, http.MethodGet, "/api/v1/assumptions/default", nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[struct{ Assumptions model.Assumptions }](t, w)
	assert.Equal(t, model.DefaultAssumptions(), got.Assumptions)

	w = do(t, r, http.MethodGet, "/api/v1/assumptions/default?costModel=flat", nil)
	require.Equal(t, http.StatusOK, w.Code)
	got = decode[struct{ Assumptions model.Assumptions }](t, w)
	assert.Equal(t, model.CostModelFlat, got.Assumptions.Costs.Kind)

	w = do(t, r, http.MethodGet, "/api/v1/assumptions/default?costModel=banana", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_REQUEST", errorCode(t, w))
}

func TestListPresets(t *testing.T) {
	w := do(t, newTestRouter(t, nil), http.MethodGet, "/api/v1/presets", nil)
	require.Equal(t, http.StatusOK, w.Code)

	got := decode[struct{ Presets []models.PresetInfo }](t, w)
	require.Len(t, got.Presets, 2)
	assert.Equal(t, "seed_detailed", got.Presets[0].ID)
	assert.Equal(t, "detailed", got.Presets[0].CostModel)
	assert.Equal(t, "seed_flat", got.Presets[1].ID)
	assert.Equal(t, "flat", got.Presets[1].CostModel)
	assert.Equal(t, 12, got.Presets[1].HorizonMonths)
}

func TestRunPlanDefault(t *testing.T) {
	w := do(t, newTestRouter(t, nil), http.MethodPost, "/api/v1/plan", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	got := decode[models.PlanResponse](t, w)
	require.Len(t, got.Rows, 12)
	assert.InDelta(t, -32_500, got.Rows[0].Burn, 1e-6)
	assert.True(t, got.Summary.RunwayMonths.Infinite)
	assert.Contains(t, w.Body.String(), `"runwayMonths":"∞"`)
	assert.Equal(t, 428, got.Metrics.Subscriptions)
	assert.Empty(t, got.Deltas)
}

func TestRunPlanPresetAndOverrides(t *testing.T) {
	r := newTestRouter(t, nil)

	w := do(t, r, http.MethodPost, "/api/v1/plan", models.PlanRequest{Preset: "seed_flat", IncludeDeltas: true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got := decode[models.PlanResponse](t, w)

	want := forecast.BuildPlan(model.DefaultFlatAssumptions())
	assert.InDelta(t, 76_500, got.Rows[0].Burn, 1e-6)
	assert.Equal(t, want.Summary.RunwayMonths, got.Summary.RunwayMonths)
	assert.False(t, got.Summary.RunwayMonths.Infinite)
	assert.Nil(t, got.Summary.CAC)
	assert.Len(t, got.Deltas, 12)

	w = do(t, r, http.MethodPost, "/api/v1/plan", models.PlanRequest{
		Overrides: map[string]any{
			"churnMonthly": 0.02,
			"costs":        map[string]any{"detailed": map[string]any{"hiresNext6Months": map[string]any{"R&D": 6}}},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got = decode[models.PlanResponse](t, w)
	assert.Equal(t, 0.02, got.Assumptions.ChurnMonthly)
	assert.Equal(t, 6, got.Assumptions.Costs.Detailed.HiresNext6Months[model.TeamRD])
	assert.Equal(t, 2, got.Assumptions.Costs.Detailed.HiresNext6Months[model.TeamSales])
}

func TestRunPlanNormalizesCollectSplit(t *testing.T) {
	a := model.DefaultAssumptions()
	a.CollectSplit = model.CollectSplit{1, 3}

	w := do(t, newTestRouter(t, nil), http.MethodPost, "/api/v1/plan", models.PlanRequest{Assumptions: &a})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got := decode[models.PlanResponse](t, w)
	assert.InDelta(t, 0.25, got.Assumptions.CollectSplit.Current(), 1e-12)
}

func TestRunPlanErrors(t *testing.T) {
	r := newTestRouter(t, nil)

	w := do(t, r, http.MethodPost, "/api/v1/plan", models.PlanRequest{Overrides: map[string]any{"churnMonthly": 2}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_ASSUMPTIONS", errorCode(t, w))

	w = do(t, r, http.MethodPost, "/api/v1/plan", models.PlanRequest{Overrides: map[string]any{"horizonMonths": 121}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_ASSUMPTIONS", errorCode(t, w))

	w = do(t, r, http.MethodPost, "/api/v1/plan", models.PlanRequest{Overrides: map[string]any{"churnMonthly": "high"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_REQUEST", errorCode(t, w))

	w = do(t, r, http.MethodPost, "/api/v1/plan", models.PlanRequest{Preset: "../secrets"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", errorCode(t, w))

	w = do(t, r, http.MethodPost, "/api/v1/plan", "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_REQUEST", errorCode(t, w))
}

func TestRunPlanCSV(t *testing.T) {
	w := do(t, newTestRouter(t, nil), http.MethodPost, "/api/v1/plan?format=csv", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.Len(t, lines, 13)
	assert.True(t, strings.HasPrefix(lines[0], "m,opening_arr,new_arr"))
	assert.True(t, strings.HasPrefix(lines[1], "1,"))
}

func TestComparePlans(t *testing.T) {
	req := models.ComparePlansRequest{
		Base: models.PlanRequest{Preset: "seed_flat"},
		Variations: []models.PlanVariation{
			{Name: "base"},
			{Name: "no raise", Overrides: map[string]any{"oneOffInvestmentAmountUsd": 0}},
			{Name: "lean", Overrides: map[string]any{"costs": map[string]any{"flat": map[string]any{"payrollPerMonthUsd": 100000}}}},
			{Name: "broken", Overrides: map[string]any{"acvUsd": 0}},
		},
	}
	w := do(t, newTestRouter(t, nil), http.MethodPost, "/api/v1/plan/compare", req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	got := decode[models.ComparePlansResponse](t, w)
	require.Len(t, got.Comparison, 3)
	assert.Equal(t, "lean", got.Comparison[0].Name)
	assert.Equal(t, 1, got.Comparison[0].Rank)
	assert.True(t, got.Comparison[0].Summary.RunwayMonths.Infinite)
	assert.Equal(t, "base", got.Comparison[1].Name)
	assert.Equal(t, "no raise", got.Comparison[2].Name)
	assert.Greater(t, got.Comparison[1].Summary.RunwayMonths.Months, got.Comparison[2].Summary.RunwayMonths.Months)

	require.Len(t, got.Skipped, 1)
	assert.Equal(t, "broken", got.Skipped[0].Name)
	assert.Contains(t, got.Skipped[0].Error, "acvUsd")
}

func TestComparePlansRequiresVariations(t *testing.T) {
	r := newTestRouter(t, nil)

	w := do(t, r, http.MethodPost, "/api/v1/plan/compare", `{"variations": []}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, "/api/v1/plan/compare", `{"variations": [{"overrides": {}}]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerateAssumptions(t *testing.T) {
	gen := generator.New(stubProvider{response: draftJSON}, nil)
	w := do(t, newTestRouter(t, gen), http.MethodPost, "/api/v1/assumptions/generate", models.GenerateRequest{Prompt: "Seed SMB SaaS"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	got := decode[models.GenerateResponse](t, w)
	assert.Equal(t, "Early SMB product.", got.Reasoning)
	assert.InDelta(t, 0.01, got.Assumptions.ChurnMonthly, 1e-12)
	assert.Equal(t, model.CostModelFlat, got.Assumptions.Costs.Kind)
	assert.Len(t, got.Plan.Rows, 12)
	// 50k revenue/month against 110k costs.
	assert.False(t, got.Plan.Summary.RunwayMonths.Infinite)
}

func TestGenerateAssumptionsErrors(t *testing.T) {
	w := do(t, newTestRouter(t, nil), http.MethodPost, "/api/v1/assumptions/generate", models.GenerateRequest{Prompt: "hello"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "PROVIDER_UNAVAILABLE", errorCode(t, w))

	w = do(t, newTestRouter(t, nil), http.MethodPost, "/api/v1/assumptions/generate", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_REQUEST", errorCode(t, w))

	bad := strings.Replace(draftJSON, `"churnMonthly": 1`, `"churnMonthly": 120`, 1)
	gen := generator.New(stubProvider{response: bad}, nil)
	w = do(t, newTestRouter(t, gen), http.MethodPost, "/api/v1/assumptions/generate", models.GenerateRequest{Prompt: "hello"})
	assert.Equal(t, http.StatusBadGateway, w.Code)
	resp := decode[models.ErrorResponse](t, w)
	assert.Equal(t, "GENERATION_FAILED", resp.Error.Code)
	assert.Contains(t, resp.Error.Details["issues"], "churnMonthly must be <= 100")
}

func TestScenarioRoutes(t *testing.T) {
	r := newTestRouter(t, nil)

	w := do(t, r, http.MethodPost, "/api/v1/scenarios", models.CreateScenarioRequest{
		UserID: "u1", Name: "Base", DialValues: ptr(model.DefaultAssumptions()),
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[scenario.Scenario](t, w)
	require.NotEmpty(t, created.ID)

	w = do(t, r, http.MethodGet, "/api/v1/scenarios?userId=u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[models.ScenarioListResponse](t, w)
	require.Len(t, list.Scenarios, 1)

	w = do(t, r, http.MethodGet, "/api/v1/scenarios", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	flat := model.DefaultFlatAssumptions()
	w = do(t, r, http.MethodPut, "/api/v1/scenarios/"+created.ID, models.UpdateScenarioRequest{DialValues: &flat})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[scenario.Scenario](t, w)
	assert.Equal(t, "Base", updated.Name)
	assert.Equal(t, model.CostModelFlat, updated.DialValues.Costs.Kind)

	w = do(t, r, http.MethodGet, "/api/v1/scenarios/"+created.ID+"/plan", nil)
	require.Equal(t, http.StatusOK, w.Code)
	sp := decode[models.ScenarioPlanResponse](t, w)
	assert.InDelta(t, 76_500, sp.Plan.Rows[0].Burn, 1e-6)

	bad := model.DefaultAssumptions()
	bad.AcvUsd = 0
	w = do(t, r, http.MethodPut, "/api/v1/scenarios/"+created.ID, models.UpdateScenarioRequest{DialValues: &bad})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodDelete, "/api/v1/scenarios/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, r, http.MethodGet, "/api/v1/scenarios/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", errorCode(t, w))
}

func TestForecastChannels(t *testing.T) {
	w := do(t, newTestRouter(t, nil), http.MethodPost, "/api/v1/revenue/channels", map[string]any{"startingMrr": 200000})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	got := decode[models.ChannelForecastResponse](t, w)
	require.Len(t, got.Rows, 24)
	assert.Equal(t, 200_000.0, got.Mix.StartingMRR)
	assert.Equal(t, got.Rows[23].ARR, got.EndARR)

	w = do(t, newTestRouter(t, nil), http.MethodPost, "/api/v1/revenue/channels", map[string]any{"mix": map[string]any{"months": 0}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNotFoundAndCORS(t *testing.T) {
	r := newTestRouter(t, nil)

	w := do(t, r, http.MethodGet, "/api/v1/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/plan", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func ptr[T any](v T) *T { return &v }
