package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"runway-forecast/internal/analysis"
	"runway-forecast/internal/config"
	"runway-forecast/internal/forecast"
	"runway-forecast/internal/generator"

	"github.com/spf13/cobra"
)

var (
	generateSave    string
	generateTimeout time.Duration
)

var generateCmd = &cobra.Command{
	Use:   "generate <goals...>",
	Short: "Draft assumptions from plain-language goals",
	Long:  "Ask the configured LLM (GEMINI_API_KEY, GEMINI_MODEL) to draft a 12-month budget, validate it and forecast it.",
	Example: `  runway generate "Seed-stage devtool, $1.2M ARR, raising $3M in month 2, hiring 4 engineers"
  runway generate --save scenarios/devtool.yaml "..."`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&generateSave, "save", "", "Write the drafted scenario to this YAML or TOML file")
	generateCmd.Flags().DurationVar(&generateTimeout, "timeout", 60*time.Second, "Give up on the provider after this long")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(_ *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, generateTimeout)
	defer cancel()

	provider := generator.NewGeminiProviderFromEnv()
	gen := generator.New(provider, generator.CacheFromEnv())

	progress("  Asking %s...\n", provider.Name())
	res, err := gen.Generate(ctx, strings.Join(args, " "))
	if err != nil {
		var gerr *generator.GenerationError
		if errors.As(err, &gerr) && len(gerr.Details) > 0 {
			for _, d := range gerr.Details {
				fmt.Fprintf(os.Stderr, "  - %s\n", d)
			}
		}
		return err
	}
	if res.Cached {
		progress("  (cached response)\n")
	}

	if generateSave != "" {
		if err := config.Save(generateSave, config.FromModel("Generated", res.Assumptions)); err != nil {
			return err
		}
		progress("  Saved scenario to %s\n", generateSave)
	}

	plan, err := forecast.New().Run(res.Assumptions)
	if err != nil {
		return err
	}
	metrics := analysis.ComputeMetrics(plan, res.Assumptions)

	if flagJSON {
		return printJSON(map[string]any{
			"assumptions": res.Assumptions,
			"reasoning":   res.Reasoning,
			"cached":      res.Cached,
			"summary":     plan.Summary,
			"metrics":     metrics,
		})
	}

	if res.Reasoning != "" {
		fmt.Printf("\n  %s\n", res.Reasoning)
	}
	printPlan("Generated plan", res.Assumptions, plan, metrics)
	return nil
}
