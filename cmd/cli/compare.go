package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"runway-forecast/internal/analysis"
	"runway-forecast/internal/cli"
	"runway-forecast/internal/config"
	"runway-forecast/internal/forecast"

	"github.com/spf13/cobra"
)

var compareSets []string

var compareCmd = &cobra.Command{
	Use:   "compare [scenario-file...]",
	Short: "Rank scenarios by runway",
	Long:  "Forecast each scenario and rank them by runway. Without arguments every preset is compared.",
	RunE:  runCompare,
}

func init() {
	compareCmd.Flags().StringArrayVar(&compareSets, "set", nil, "Override applied to every scenario (repeatable)")
	rootCmd.AddCommand(compareCmd)
}

type compareRow struct {
	Rank    int                      `json:"rank"`
	Name    string                   `json:"name"`
	File    string                   `json:"file"`
	Summary forecast.PlanSummary     `json:"summary"`
	Metrics analysis.BusinessMetrics `json:"metrics"`
}

func runCompare(_ *cobra.Command, args []string) error {
	paths := args
	if len(paths) == 0 {
		var err error
		if paths, err = presetFiles(); err != nil {
			return err
		}
	}
	if len(paths) == 0 {
		return fmt.Errorf("no scenarios to compare in %s", flagPresetDir)
	}

	engine := forecast.New()
	var named []analysis.NamedPlan
	files := map[string]string{}
	metrics := map[string]analysis.BusinessMetrics{}
	for _, p := range paths {
		cfg, a, err := config.Load(p)
		if err != nil {
			progress("  Skipping %s: %v\n", p, err)
			continue
		}
		a, err = withOverrides(a, compareSets)
		if err != nil {
			return err
		}
		plan, err := engine.Run(a)
		if err != nil {
			progress("  Skipping %s: %v\n", p, err)
			continue
		}
		name := scenarioName(cfg, p)
		if _, dup := files[name]; dup {
			name = fmt.Sprintf("%s (%s)", name, filepath.Base(p))
		}
		files[name] = p
		metrics[name] = analysis.ComputeMetrics(plan, a)
		named = append(named, analysis.NamedPlan{Name: name, Plan: plan})
	}

	ranked := analysis.RankByRunway(named)
	if flagJSON {
		out := make([]compareRow, 0, len(ranked))
		for _, r := range ranked {
			out = append(out, compareRow{
				Rank:    r.Rank,
				Name:    r.Name,
				File:    files[r.Name],
				Summary: r.Plan.Summary,
				Metrics: metrics[r.Name],
			})
		}
		return printJSON(out)
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.ComparisonTable(ranked)))
	fmt.Println()
	return nil
}

func presetFiles() ([]string, error) {
	entries, err := os.ReadDir(flagPresetDir)
	if err != nil {
		return nil, fmt.Errorf("reading presets: %w", err)
	}
	var out []string
	for _, e := range entries {
		switch filepath.Ext(e.Name()) {
		case ".yaml", ".yml", ".toml":
			if !e.IsDir() {
				out = append(out, filepath.Join(flagPresetDir, e.Name()))
			}
		}
	}
	sort.Strings(out)
	return out, nil
}
