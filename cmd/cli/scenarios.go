package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"runway-forecast/internal/analysis"
	"runway-forecast/internal/cli"
	"runway-forecast/internal/forecast"
	"runway-forecast/internal/scenario"

	"github.com/spf13/cobra"
)

var (
	scenarioUser     string
	scenarioSaveName string
	scenarioPreset   string
)

var scenariosCmd = &cobra.Command{
	Use:     "scenarios",
	Aliases: []string{"sc"},
	Short:   "Manage saved scenarios",
}

var scenariosListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved scenarios, most recently updated first",
	Args:  cobra.NoArgs,
	RunE:  runScenariosList,
}

var scenariosSaveCmd = &cobra.Command{
	Use:   "save [scenario-file]",
	Short: "Save a scenario file, preset or the defaults",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runScenariosSave,
}

var scenariosShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Forecast a saved scenario",
	Args:  cobra.ExactArgs(1),
	RunE:  runScenariosShow,
}

var scenariosDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a saved scenario",
	Args:  cobra.ExactArgs(1),
	RunE:  runScenariosDelete,
}

func init() {
	scenariosCmd.PersistentFlags().StringVar(&scenarioUser, "user", os.Getenv("USER"), "Owner of the scenarios")
	scenariosSaveCmd.Flags().StringVar(&scenarioSaveName, "name", "", "Scenario name (defaults to the file's name)")
	scenariosSaveCmd.Flags().StringVar(&scenarioPreset, "preset", "", "Save this preset")

	scenariosCmd.AddCommand(scenariosListCmd, scenariosSaveCmd, scenariosShowCmd, scenariosDeleteCmd)
	rootCmd.AddCommand(scenariosCmd)
}

func openScenarios() (*scenario.Service, func(), error) {
	store, err := scenario.OpenSQLite(flagDBPath)
	if err != nil {
		return nil, nil, err
	}
	return scenario.NewService(store), func() { _ = store.Close() }, nil
}

func runScenariosList(_ *cobra.Command, _ []string) error {
	svc, closeFn, err := openScenarios()
	if err != nil {
		return err
	}
	defer closeFn()

	list, err := svc.List(context.Background(), scenarioUser)
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(list)
	}
	if len(list) == 0 {
		fmt.Printf("\n  No saved scenarios for %s.\n\n", scenarioUser)
		return nil
	}

	t := cli.Table{
		Title:   fmt.Sprintf("Scenarios for %s", scenarioUser),
		Headers: []string{"ID", "Name", "Costs", "Start ARR", "Updated"},
	}
	for _, s := range list {
		t.Rows = append(t.Rows, []string{
			s.ID,
			s.Name,
			string(s.DialValues.Costs.Kind),
			cli.FormatCompactMoney(s.DialValues.StartArrUsd),
			s.UpdatedAt.Local().Format(time.DateTime),
		})
	}
	fmt.Println()
	fmt.Print(cli.RenderTable(t))
	fmt.Println()
	return nil
}

func runScenariosSave(_ *cobra.Command, args []string) error {
	path := ""
	if len(args) == 1 {
		path = args[0]
	}
	name, a, err := loadScenario(path, scenarioPreset)
	if err != nil {
		return err
	}
	if scenarioSaveName != "" {
		name = scenarioSaveName
	}

	svc, closeFn, err := openScenarios()
	if err != nil {
		return err
	}
	defer closeFn()

	sc, err := svc.Create(context.Background(), scenarioUser, name, a)
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(sc)
	}
	fmt.Printf("Saved %q as %s\n", sc.Name, sc.ID)
	return nil
}

func runScenariosShow(_ *cobra.Command, args []string) error {
	svc, closeFn, err := openScenarios()
	if err != nil {
		return err
	}
	defer closeFn()

	sc, err := svc.Get(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("scenario %s: %w", args[0], err)
	}
	a := sc.DialValues
	a.CollectSplit = a.CollectSplit.Normalized()
	plan, err := forecast.New().Run(a)
	if err != nil {
		return err
	}
	metrics := analysis.ComputeMetrics(plan, a)
	if flagJSON {
		return printJSON(map[string]any{"scenario": sc, "summary": plan.Summary, "metrics": metrics})
	}
	printPlan(sc.Name, a, plan, metrics)
	return nil
}

func runScenariosDelete(_ *cobra.Command, args []string) error {
	svc, closeFn, err := openScenarios()
	if err != nil {
		return err
	}
	defer closeFn()

	if err := svc.Delete(context.Background(), args[0]); err != nil {
		return fmt.Errorf("scenario %s: %w", args[0], err)
	}
	fmt.Printf("Deleted %s\n", args[0])
	return nil
}
