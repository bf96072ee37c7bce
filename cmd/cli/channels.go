package main

import (
	"fmt"
	"os"

	"runway-forecast/internal/analysis"
	"runway-forecast/internal/cli"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	channelsMRR  float64
	channelsFile string
)

var channelsCmd = &cobra.Command{
	Use:   "channels",
	Short: "Forecast MRR by acquisition channel (PLG, sales, partners)",
	Args:  cobra.NoArgs,
	RunE:  runChannels,
}

func init() {
	channelsCmd.Flags().Float64Var(&channelsMRR, "mrr", 200_000, "Starting MRR for the default channel mix")
	channelsCmd.Flags().StringVar(&channelsFile, "mix", "", "YAML file with a channel mix")
	rootCmd.AddCommand(channelsCmd)
}

func runChannels(_ *cobra.Command, _ []string) error {
	mix := analysis.DefaultChannelMix(channelsMRR)
	if channelsFile != "" {
		raw, err := os.ReadFile(channelsFile)
		if err != nil {
			return err
		}
		if err := yaml.Unmarshal(raw, &mix); err != nil {
			return fmt.Errorf("parsing %s: %w", channelsFile, err)
		}
	}
	if err := mix.Validate(); err != nil {
		return err
	}

	rows := analysis.ForecastChannels(mix)
	if flagJSON {
		return printJSON(map[string]any{"mix": mix, "rows": rows})
	}

	t := cli.Table{
		Title:   "Channel forecast",
		Headers: []string{"Month", "New", "Expansion", "Churn", "Net new", "MRR", "ARR"},
	}
	mrr := make([]float64, len(rows))
	for i, r := range rows {
		mrr[i] = r.EndingMRR
		t.Rows = append(t.Rows, []string{
			fmt.Sprintf("M%d", r.Month),
			cli.FormatMoney(r.NewMRR),
			cli.FormatMoney(r.ExpansionMRR),
			cli.FormatMoney(-r.ChurnMRR),
			cli.FormatMoney(r.NetNewMRR),
			cli.FormatMoney(r.EndingMRR),
			cli.FormatCompactMoney(r.ARR),
		})
	}
	fmt.Println()
	fmt.Print(cli.RenderTable(t))
	fmt.Printf("  MRR %s\n\n", cli.RenderSparkline(mrr))
	return nil
}
