package forecast_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"runway-forecast/internal/forecast"
	"runway-forecast/internal/model"
)

const eps = 1e-6

// =============================================================================
// CONCRETE SCENARIOS
// =============================================================================

func TestBuildPlan_DefaultFixture_FirstMonth(t *testing.T) {
	plan := forecast.BuildPlan(model.DefaultAssumptions())
	require.Len(t, plan.Rows, 12)

	r := plan.Rows[0]
	assert.Equal(t, 1, r.M)
	assert.InDelta(t, 2_400_000, r.OpeningArr, eps)
	assert.InDelta(t, 180_000, r.NewArr, eps)
	assert.InDelta(t, 19_200, r.ChurnArr, eps)
	assert.InDelta(t, 7_200, r.UpsellArr, eps)
	assert.InDelta(t, 2_568_000, r.ClosingArr, eps)
	assert.InDelta(t, 214_000, r.Revenue, eps)
	assert.InDelta(t, 30, r.NewLogos, eps)

	// 214,000 x 0.25 + 200,000 x 0.75
	assert.InDelta(t, 203_500, r.Collections, eps)
	// R&D 9, Sales 3, Marketing 2, CS 2, Ops 2
	assert.Equal(t, 18, r.Headcount)
	assert.InDelta(t, 91_000, r.Payroll, eps)
	assert.InDelta(t, 80_000, r.Opex, eps)
	assert.InDelta(t, -32_500, r.Burn, eps)
	assert.InDelta(t, 532_500, r.CashEnd, eps)
	assert.Zero(t, r.Investment)
}

func TestBuildPlan_DefaultFixture_Summary(t *testing.T) {
	plan := forecast.BuildPlan(model.DefaultAssumptions())
	s := plan.Summary
	last := plan.Rows[len(plan.Rows)-1]

	assert.Equal(t, last.ClosingArr, s.ArrEnd)
	assert.Equal(t, last.CashEnd, s.CashEnd)
	assert.Equal(t, plan.Rows[0].Revenue, s.RevenueNext)
	assert.Equal(t, plan.Rows[0].Burn, s.BurnNext)

	assert.InDelta(t, 99.5, s.NRRPct, eps)
	assert.False(t, s.LTV.Unbounded)
	assert.InDelta(t, 62_500, s.LTV.Value, eps)
	require.NotNil(t, s.CAC)
	assert.InDelta(t, 1_000, *s.CAC, eps)
	require.NotNil(t, s.LTVCAC)
	assert.False(t, s.LTVCAC.Unbounded)
	assert.InDelta(t, 62.5, s.LTVCAC.Value, eps)

	// Collections exceed costs in month 1.
	assert.True(t, s.RunwayMonths.Infinite)
	require.NotNil(t, s.BurnMultiple)
	assert.Equal(t, forecast.BoundedRatio(0), *s.BurnMultiple)
}

func TestBuildPlan_InvestmentLandsInConfiguredMonth(t *testing.T) {
	plan := forecast.BuildPlan(model.DefaultAssumptions())

	for _, r := range plan.Rows {
		if r.M == 3 {
			assert.InDelta(t, 2_000_000, r.Investment, eps)
			prev := plan.Rows[1].CashEnd
			assert.InDelta(t, prev+r.Collections-r.Payroll-r.Opex+2_000_000, r.CashEnd, eps)
		} else {
			assert.Zero(t, r.Investment, "month %d", r.M)
		}
	}
}

func TestBuildPlan_NoInvestmentWhenMonthZero(t *testing.T) {
	a := model.DefaultAssumptions()
	a.OneOffInvestmentMonth = 0
	plan := forecast.BuildPlan(a)

	for _, r := range plan.Rows {
		assert.Zero(t, r.Investment)
	}
}

func TestBuildPlan_PositiveBurnRunway(t *testing.T) {
	a := model.Assumptions{
		HorizonMonths: 1,
		AcvUsd:        1,
		StartCashUsd:  100_000,
		CollectSplit:  model.CollectSplit{1, 0},
		Costs:         model.FlatCostModel(model.FlatCosts{PayrollPerMonthUsd: 30_000}),
	}
	plan := forecast.BuildPlan(a)
	require.Len(t, plan.Rows, 1)

	assert.InDelta(t, 30_000, plan.Rows[0].Burn, eps)
	assert.InDelta(t, 70_000, plan.Summary.CashEnd, eps)
	assert.Equal(t, forecast.FiniteRunway(2), plan.Summary.RunwayMonths)
}

func TestBuildPlan_FlatCostModel(t *testing.T) {
	plan := forecast.BuildPlan(model.DefaultFlatAssumptions())
	r := plan.Rows[0]

	assert.InDelta(t, 220_000, r.Payroll, eps)
	assert.InDelta(t, 60_000, r.Opex, eps)
	assert.Zero(t, r.Headcount)
	assert.InDelta(t, 76_500, r.Burn, eps)

	s := plan.Summary
	assert.Nil(t, s.CAC)
	assert.Nil(t, s.LTVCAC)
	require.False(t, s.RunwayMonths.Infinite)
	last := plan.Rows[len(plan.Rows)-1]
	assert.Equal(t, int(math.Floor(last.CashEnd/plan.Rows[0].Burn)), s.RunwayMonths.Months)
}

// =============================================================================
// PROPERTIES
// =============================================================================

func TestBuildPlan_Continuity(t *testing.T) {
	for _, a := range []model.Assumptions{model.DefaultAssumptions(), model.DefaultFlatAssumptions()} {
		plan := forecast.BuildPlan(a)
		require.NotEmpty(t, plan.Rows)
		assert.Equal(t, a.StartArrUsd, plan.Rows[0].OpeningArr)
		for i := 1; i < len(plan.Rows); i++ {
			assert.Equal(t, plan.Rows[i-1].ClosingArr, plan.Rows[i].OpeningArr, "row %d", i)
		}
	}
}

func TestBuildPlan_ClosingArrNeverNegative(t *testing.T) {
	a := model.DefaultAssumptions()
	a.NewLogosPerMonth = 0
	a.ChurnMonthly = 1.5
	a.UpsellMonthly = 0

	plan := forecast.BuildPlan(a)
	for _, r := range plan.Rows {
		assert.GreaterOrEqual(t, r.ClosingArr, 0.0, "month %d", r.M)
	}
	assert.Zero(t, plan.Rows[0].ClosingArr)
}

func TestBuildPlan_Deterministic(t *testing.T) {
	a := model.DefaultAssumptions()
	first := forecast.BuildPlan(a)
	second := forecast.BuildPlan(a)
	assert.Equal(t, first, second)

	b1, err := json.Marshal(first)
	require.NoError(t, err)
	b2, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, b1, b2)
}

func TestBuildPlan_FlatARRWithoutMovement(t *testing.T) {
	a := model.DefaultAssumptions()
	a.ChurnMonthly = 0
	a.UpsellMonthly = 0
	a.NewLogosPerMonth = 0

	plan := forecast.BuildPlan(a)
	for _, r := range plan.Rows {
		assert.Equal(t, r.OpeningArr, r.ClosingArr, "month %d", r.M)
		assert.Equal(t, a.StartArrUsd, r.ClosingArr)
	}
}

func TestBuildPlan_CACUndefinedWithoutNewLogos(t *testing.T) {
	a := model.DefaultAssumptions()
	a.NewLogosPerMonth = 0

	s := forecast.BuildPlan(a).Summary
	assert.Nil(t, s.CAC)
	assert.Nil(t, s.LTVCAC)
	assert.False(t, s.LTV.Unbounded)
}

func TestBuildPlan_UnboundedLTV(t *testing.T) {
	a := model.DefaultAssumptions()
	a.ChurnMonthly = 0

	s := forecast.BuildPlan(a).Summary
	assert.True(t, s.LTV.Unbounded)
	require.NotNil(t, s.CAC)
	assert.InDelta(t, 1_000, *s.CAC, eps)
	require.NotNil(t, s.LTVCAC)
	assert.True(t, s.LTVCAC.Unbounded)

	b, err := json.Marshal(s)
	require.NoError(t, err)
	var raw map[string]any
	require.NoError(t, json.Unmarshal(b, &raw))
	assert.Equal(t, "∞", raw["ltv"])
	assert.Equal(t, "∞", raw["ltvCac"])
	assert.InDelta(t, 1_000, raw["cac"], eps)
}

func TestBuildPlan_EmptyHorizon(t *testing.T) {
	a := model.DefaultAssumptions()
	a.HorizonMonths = 0

	plan := forecast.BuildPlan(a)
	assert.Empty(t, plan.Rows)
	assert.True(t, plan.Summary.RunwayMonths.Infinite)
	assert.Nil(t, plan.Summary.CAC)
	_, ok := plan.Last()
	assert.False(t, ok)
}

// =============================================================================
// ENGINE BOUNDARY
// =============================================================================

func TestEngineRun_RejectsInvalidAssumptions(t *testing.T) {
	a := model.DefaultAssumptions()
	a.ChurnMonthly = 2

	_, err := forecast.New().Run(a)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "churnMonthly")
}

func TestEngineRun_MatchesBuildPlan(t *testing.T) {
	a := model.DefaultAssumptions()
	plan, err := forecast.New().Run(a)
	require.NoError(t, err)
	assert.Equal(t, forecast.BuildPlan(a), *plan)
}
