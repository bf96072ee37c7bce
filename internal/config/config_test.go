package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"runway-forecast/internal/config"
	"runway-forecast/internal/model"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_ExamplePresets(t *testing.T) {
	_, detailed, err := config.Load("../../examples/presets/seed_detailed.yaml")
	require.NoError(t, err)
	assert.Equal(t, model.DefaultAssumptions(), detailed)

	c, flat, err := config.Load("../../examples/presets/seed_flat.toml")
	require.NoError(t, err)
	assert.Equal(t, "Seed (flat costs)", c.Name)
	assert.Equal(t, model.DefaultFlatAssumptions(), flat)
}

func TestLoad_PresetOverlay(t *testing.T) {
	c, a, err := config.Load("../../examples/bridge_round.yaml")
	require.NoError(t, err)

	assert.Equal(t, "Bridge round", c.Name)
	assert.Equal(t, 0.015, a.ChurnMonthly)
	assert.Equal(t, 6, a.OneOffInvestmentMonth)
	assert.Equal(t, 750_000.0, a.OneOffInvestmentAmountUsd)
	assert.Equal(t, 6, a.Costs.Detailed.HiresNext6Months[model.TeamRD])
	// Untouched fields come from the preset.
	assert.Equal(t, 2, a.Costs.Detailed.HiresNext6Months[model.TeamSales])
	assert.Equal(t, 2_400_000.0, a.StartArrUsd)
}

func TestLoad_ZeroOverridesPreset(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", `
assumptions:
  acv_usd: 1000
  churn_monthly: 0.02
  collect_split: [1, 0]
  costs:
    payroll_per_month_usd: 10
`)
	path := writeFile(t, dir, "child.yaml", `
preset_file: base.yaml
assumptions:
  churn_monthly: 0
`)

	_, a, err := config.Load(path)
	require.NoError(t, err)
	assert.Zero(t, a.ChurnMonthly)
	assert.Equal(t, 12, a.HorizonMonths)
	assert.Equal(t, model.CostModelFlat, a.Costs.Kind)
}

func TestLoad_NormalizesCollectSplit(t *testing.T) {
	path := writeFile(t, t.TempDir(), "s.yaml", `
assumptions:
  acv_usd: 1000
  collect_split: [30, 90]
  costs:
    kind: flat
`)
	_, a, err := config.Load(path)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, a.CollectSplit[0], 1e-12)
	assert.InDelta(t, 0.75, a.CollectSplit[1], 1e-12)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	cases := map[string]string{
		"bad team": `
assumptions:
  acv_usd: 1000
  collect_split: [1, 0]
  costs:
    headcount_now: {Legal: 2}
`,
		"bad split length": `
assumptions:
  acv_usd: 1000
  collect_split: [1]
`,
		"invalid value": `
assumptions:
  acv_usd: 0
  collect_split: [1, 0]
  costs: {kind: flat}
`,
		"unknown kind": `
assumptions:
  acv_usd: 1000
  collect_split: [1, 0]
  costs: {kind: hybrid}
`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := writeFile(t, dir, "case.yaml", body)
			_, _, err := config.Load(path)
			assert.Error(t, err)
		})
	}

	_, _, err := config.Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestSave_RoundTrip(t *testing.T) {
	for _, name := range []string{"plan.yaml", "plan.toml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)
			want := model.DefaultAssumptions()

			require.NoError(t, config.Save(path, config.FromModel("Round trip", want)))

			c, got, err := config.Load(path)
			require.NoError(t, err)
			assert.Equal(t, "Round trip", c.Name)
			assert.Equal(t, want, got)
		})
	}
}

func TestSave_FlatRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flat.yaml")
	want := model.DefaultFlatAssumptions()
	require.NoError(t, config.Save(path, config.FromModel("", want)))

	_, got, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestMergeAssumptions_TeamMapsMergePerTeam(t *testing.T) {
	five := 5
	base := config.AssumptionsConfig{
		HorizonMonths: &five,
		Costs: config.CostsConfig{
			HeadcountNow: map[string]int{"R&D": 8, "Sales": 3},
		},
	}
	override := config.AssumptionsConfig{
		Costs: config.CostsConfig{
			HeadcountNow: map[string]int{"Sales": 4},
		},
	}

	out := config.MergeAssumptions(base, override)
	require.NotNil(t, out.HorizonMonths)
	assert.Equal(t, 5, *out.HorizonMonths)
	assert.Equal(t, map[string]int{"R&D": 8, "Sales": 4}, out.Costs.HeadcountNow)
	// base is not mutated
	assert.Equal(t, 3, base.Costs.HeadcountNow["Sales"])
}

func TestApplyOverrides(t *testing.T) {
	base := model.DefaultAssumptions()

	out, err := config.ApplyOverrides(base, map[string]any{
		"churnMonthly":     0.0,
		"newLogosPerMonth": 45,
		"collectSplit":     []any{0.5, 0.5},
		"costs": map[string]any{
			"detailed": map[string]any{
				"hiresNext6Months": map[string]any{"Sales": 6},
			},
		},
	})
	require.NoError(t, err)

	assert.Zero(t, out.ChurnMonthly)
	assert.Equal(t, 45.0, out.NewLogosPerMonth)
	assert.Equal(t, model.CollectSplit{0.5, 0.5}, out.CollectSplit)
	assert.Equal(t, 6, out.Costs.Detailed.HiresNext6Months[model.TeamSales])
	assert.Equal(t, 3, out.Costs.Detailed.HiresNext6Months[model.TeamRD])

	// base untouched
	assert.Equal(t, 0.008, base.ChurnMonthly)
	assert.Equal(t, 2, base.Costs.Detailed.HiresNext6Months[model.TeamSales])
}

func TestApplyOverrides_TypeMismatch(t *testing.T) {
	_, err := config.ApplyOverrides(model.DefaultAssumptions(), map[string]any{"horizonMonths": "twelve"})
	assert.Error(t, err)
}

func TestApplyOverrides_SwitchCostKind(t *testing.T) {
	out, err := config.ApplyOverrides(model.DefaultAssumptions(), map[string]any{
		"costs": map[string]any{
			"kind": "flat",
			"flat": map[string]any{"payrollPerMonthUsd": 150_000, "opexPerMonthUsd": 40_000},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, model.CostModelFlat, out.Costs.Kind)
	assert.Nil(t, out.Costs.Detailed)
	require.NotNil(t, out.Costs.Flat)
	assert.Equal(t, 150_000.0, out.Costs.Flat.PayrollPerMonthUsd)

	ac := config.FromModel("switched", out).Assumptions
	assert.Equal(t, "flat", ac.Costs.Kind)
	require.NotNil(t, ac.Costs.PayrollPerMonthUsd)
	assert.Equal(t, 150_000.0, *ac.Costs.PayrollPerMonthUsd)
	require.NotNil(t, ac.Costs.OpexPerMonthUsd)
	assert.Equal(t, 40_000.0, *ac.Costs.OpexPerMonthUsd)
	assert.Empty(t, ac.Costs.HeadcountNow)
	assert.Empty(t, ac.Costs.SpendMonthlyUsd)

	back, err := config.ApplyOverrides(out, map[string]any{
		"costs": map[string]any{"kind": "detailed", "detailed": map[string]any{}},
	})
	require.NoError(t, err)
	assert.Nil(t, back.Costs.Flat)
	assert.NotNil(t, back.Costs.Detailed)
}

func TestFromModel_FollowsKind(t *testing.T) {
	a := model.DefaultAssumptions()
	a.Costs.Kind = model.CostModelFlat
	a.Costs.Flat = &model.FlatCosts{PayrollPerMonthUsd: 1, OpexPerMonthUsd: 2}

	ac := config.FromModel("", a).Assumptions
	require.NotNil(t, ac.Costs.PayrollPerMonthUsd)
	assert.Equal(t, 1.0, *ac.Costs.PayrollPerMonthUsd)
	assert.Empty(t, ac.Costs.HeadcountNow)
}
