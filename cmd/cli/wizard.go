package main

import (
	"fmt"

	"runway-forecast/internal/analysis"
	"runway-forecast/internal/cli"
	"runway-forecast/internal/config"
	"runway-forecast/internal/forecast"

	"github.com/spf13/cobra"
)

var (
	wizardFrom   string
	wizardPreset string
	wizardOut    string
)

var wizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Build a scenario interactively",
	RunE:  runWizard,
}

func init() {
	wizardCmd.Flags().StringVar(&wizardFrom, "from", "", "Start from this scenario file")
	wizardCmd.Flags().StringVar(&wizardPreset, "preset", "", "Start from this preset")
	wizardCmd.Flags().StringVarP(&wizardOut, "out", "o", "", "Write the scenario to this YAML or TOML file")
	rootCmd.AddCommand(wizardCmd)
}

func runWizard(_ *cobra.Command, _ []string) error {
	name, base, err := loadScenario(wizardFrom, wizardPreset)
	if err != nil {
		return err
	}

	name, a, err := cli.RunWizard(name, base)
	if err != nil {
		return err
	}

	if wizardOut != "" {
		if err := config.Save(wizardOut, config.FromModel(name, a)); err != nil {
			return err
		}
		progress("  Saved scenario to %s\n", wizardOut)
	}

	plan, err := forecast.New().Run(a)
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(map[string]any{"name": name, "assumptions": a, "summary": plan.Summary})
	}
	printPlan(name, a, plan, analysis.ComputeMetrics(plan, a))
	if wizardOut == "" {
		fmt.Println("  Tip: pass --out scenario.yaml to keep these assumptions.")
	}
	return nil
}
