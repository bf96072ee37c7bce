package main

import (
	"fmt"

	"runway-forecast/internal/analysis"
	"runway-forecast/internal/cli"
	"runway-forecast/internal/config"
	"runway-forecast/internal/forecast"
	"runway-forecast/internal/model"

	"github.com/spf13/cobra"
)

var (
	planPreset string
	planSets   []string
	planCSV    string
	planDeltas bool
)

var planCmd = &cobra.Command{
	Use:   "plan [scenario-file]",
	Short: "Run a month-by-month forecast",
	Example: `  runway plan
  runway plan examples/bridge_round.yaml
  runway plan --preset seed_flat --set churnMonthly=0.02 --csv results/plan.csv`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlan,
}

func init() {
	planCmd.Flags().StringVar(&planPreset, "preset", "", "Preset id from the presets directory")
	planCmd.Flags().StringArrayVar(&planSets, "set", nil, "Override an assumption, e.g. --set startCashUsd=750k (repeatable)")
	planCmd.Flags().StringVar(&planCSV, "csv", "", "Also write the monthly rows to this CSV file")
	planCmd.Flags().BoolVar(&planDeltas, "deltas", false, "Include month-over-month changes (JSON output)")
	rootCmd.AddCommand(planCmd)
}

func runPlan(_ *cobra.Command, args []string) error {
	path := ""
	if len(args) == 1 {
		path = args[0]
	}
	name, a, err := loadScenario(path, planPreset)
	if err != nil {
		return err
	}
	a, err = withOverrides(a, planSets)
	if err != nil {
		return err
	}

	plan, err := forecast.New().Run(a)
	if err != nil {
		return err
	}
	metrics := analysis.ComputeMetrics(plan, a)

	if planCSV != "" {
		if err := forecast.WriteMonthRowsCSV(planCSV, plan.Rows); err != nil {
			return err
		}
		progress("  Wrote %d rows to %s\n", len(plan.Rows), planCSV)
	}

	if flagJSON {
		out := map[string]any{
			"name":        name,
			"assumptions": a,
			"rows":        plan.Rows,
			"summary":     plan.Summary,
			"metrics":     metrics,
		}
		if planDeltas {
			out["deltas"] = analysis.Deltas(plan.Rows)
		}
		return printJSON(out)
	}

	printPlan(name, a, plan, metrics)
	return nil
}

func withOverrides(a model.Assumptions, sets []string) (model.Assumptions, error) {
	if len(sets) == 0 {
		return a, nil
	}
	overrides, err := parseSets(sets)
	if err != nil {
		return model.Assumptions{}, err
	}
	a, err = config.ApplyOverrides(a, overrides)
	if err != nil {
		return model.Assumptions{}, err
	}
	a.CollectSplit = a.CollectSplit.Normalized()
	return a, nil
}

func printPlan(name string, a model.Assumptions, plan *forecast.Plan, metrics analysis.BusinessMetrics) {
	arr := make([]float64, len(plan.Rows))
	cash := make([]float64, len(plan.Rows))
	for i, r := range plan.Rows {
		arr[i] = r.ClosingArr
		cash[i] = r.CashEnd
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("%s  %d months, %s costs", name, a.HorizonMonths, a.Costs.Kind)))
	fmt.Println()
	fmt.Println(cli.RenderKPITiles(plan.Summary))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.PlanTable(plan.Rows)))
	fmt.Printf("  ARR  %s\n", cli.RenderSparkline(arr))
	fmt.Printf("  Cash %s\n", cli.RenderSparkline(cash))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.SummaryTable(plan.Summary, metrics)))
	fmt.Println()
}
