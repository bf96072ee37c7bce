package models

import (
	"runway-forecast/internal/analysis"
	"runway-forecast/internal/forecast"
	"runway-forecast/internal/model"
	"runway-forecast/internal/scenario"
)

// PlanResponse is a full forecast with its derived metrics.
type PlanResponse struct {
	Assumptions model.Assumptions        `json:"assumptions"`
	Rows        []forecast.MonthRow      `json:"rows"`
	Summary     forecast.PlanSummary     `json:"summary"`
	Metrics     analysis.BusinessMetrics `json:"metrics"`
	Deltas      []analysis.RowDelta      `json:"deltas,omitempty"`
}

// ComparePlansResponse lists variations ranked by runway.
type ComparePlansResponse struct {
	Comparison []ComparisonResult `json:"comparison"`
	Skipped    []SkippedVariation `json:"skipped,omitempty"`
}

// ComparisonResult contains results for one variation
type ComparisonResult struct {
	Rank    int                      `json:"rank"`
	Name    string                   `json:"name"`
	Summary forecast.PlanSummary     `json:"summary"`
	Metrics analysis.BusinessMetrics `json:"metrics"`
}

// SkippedVariation is a variation whose merged assumptions were invalid.
type SkippedVariation struct {
	Name  string `json:"name"`
	Error string `json:"error"`
}

// GenerateResponse is a validated LLM draft and the plan it produces.
type GenerateResponse struct {
	Assumptions model.Assumptions `json:"assumptions"`
	Reasoning   string            `json:"reasoning"`
	Cached      bool              `json:"cached"`
	Plan        PlanResponse      `json:"plan"`
}

// PresetInfo describes a scenario file in the preset directory.
type PresetInfo struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Description   string  `json:"description,omitempty"`
	File          string  `json:"file"`
	CostModel     string  `json:"costModel"`
	HorizonMonths int     `json:"horizonMonths"`
	StartArrUsd   float64 `json:"startArrUsd"`
	StartCashUsd  float64 `json:"startCashUsd"`
}

type ScenarioListResponse struct {
	Scenarios []scenario.Scenario `json:"scenarios"`
}

// ScenarioPlanResponse is a saved scenario and its forecast.
type ScenarioPlanResponse struct {
	Scenario scenario.Scenario `json:"scenario"`
	Plan     PlanResponse      `json:"plan"`
}

// ChannelForecastResponse is the multi-channel MRR projection.
type ChannelForecastResponse struct {
	Mix    analysis.ChannelMix   `json:"mix"`
	Rows   []analysis.ChannelRow `json:"rows"`
	EndARR float64               `json:"endArr"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
