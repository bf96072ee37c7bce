package models

import (
	"runway-forecast/internal/analysis"
	"runway-forecast/internal/model"
)

// PlanRequest selects the assumptions for a forecast run. The base is
// Assumptions when given, else the named Preset, else the built-in default;
// Overrides are then deep-merged onto it (camelCase keys).
type PlanRequest struct {
	Preset      string             `json:"preset,omitempty"`
	Assumptions *model.Assumptions `json:"assumptions,omitempty"`
	Overrides   map[string]any     `json:"overrides,omitempty"`
	// IncludeDeltas adds month-over-month changes to the response.
	IncludeDeltas bool `json:"includeDeltas,omitempty"`
}

// ComparePlansRequest runs several variations of one base scenario.
type ComparePlansRequest struct {
	Base       PlanRequest     `json:"base"`
	Variations []PlanVariation `json:"variations" binding:"required,dive"`
}

// PlanVariation is a named set of overrides applied to the compare base.
type PlanVariation struct {
	Name      string         `json:"name" binding:"required"`
	Overrides map[string]any `json:"overrides"`
}

// GenerateRequest is a plain-language description of the business.
type GenerateRequest struct {
	Prompt string `json:"prompt" binding:"required"`
}

// CreateScenarioRequest saves a named assumption set for a user.
type CreateScenarioRequest struct {
	UserID     string             `json:"userId" binding:"required"`
	Name       string             `json:"name" binding:"required"`
	DialValues *model.Assumptions `json:"dialValues" binding:"required"`
}

// UpdateScenarioRequest changes only the fields that are present.
type UpdateScenarioRequest struct {
	Name       *string            `json:"name,omitempty"`
	DialValues *model.Assumptions `json:"dialValues,omitempty"`
}

// ChannelForecastRequest selects the channel mix. Without Mix, the default
// mix seeded from StartingMRR is used.
type ChannelForecastRequest struct {
	Mix *analysis.ChannelMix `json:"mix,omitempty"`
	// StartingMRR seeds the default mix when Mix is omitted.
	StartingMRR float64 `json:"startingMrr,omitempty"`
}
