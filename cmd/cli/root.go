package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"runway-forecast/internal/cli"
	"runway-forecast/internal/config"
	"runway-forecast/internal/model"

	"github.com/goccy/go-json"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	flagPresetDir string
	flagDBPath    string
	flagJSON      bool
	flagQuiet     bool
)

var rootCmd = &cobra.Command{
	Use:   "runway",
	Short: "SaaS budget and runway forecasts",
	Long:  "Project ARR, burn, cash and runway month by month from a scenario file, a preset or the built-in defaults.",
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		// A missing .env is normal.
		_ = godotenv.Load()
	},
	SilenceUsage: true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagPresetDir, "presets", defaultPresetDir(), "Directory of preset scenario files")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", defaultDBPath(), "SQLite file for saved scenarios")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Print JSON instead of tables")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
}

func defaultPresetDir() string {
	if dir := os.Getenv("PRESET_DIR"); dir != "" {
		return dir
	}
	return filepath.Join("examples", "presets")
}

func defaultDBPath() string {
	if p := os.Getenv("SCENARIO_DB_PATH"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "scenarios.db"
	}
	return filepath.Join(home, ".runway", "scenarios.db")
}

func progress(format string, args ...any) {
	if !flagQuiet {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}

// loadScenario resolves assumptions from a file path, a preset id, or the
// defaults, in that order.
func loadScenario(path, preset string) (string, model.Assumptions, error) {
	switch {
	case path != "":
		cfg, a, err := config.Load(path)
		if err != nil {
			return "", model.Assumptions{}, err
		}
		return scenarioName(cfg, path), a, nil
	case preset != "":
		p, err := findPreset(preset)
		if err != nil {
			return "", model.Assumptions{}, err
		}
		cfg, a, err := config.Load(p)
		if err != nil {
			return "", model.Assumptions{}, err
		}
		return scenarioName(cfg, p), a, nil
	default:
		return "Default", model.DefaultAssumptions(), nil
	}
}

func scenarioName(cfg *config.Config, path string) string {
	if cfg != nil && cfg.Name != "" {
		return cfg.Name
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func findPreset(id string) (string, error) {
	if strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return "", fmt.Errorf("invalid preset id %q", id)
	}
	for _, ext := range []string{".yaml", ".yml", ".toml"} {
		p := filepath.Join(flagPresetDir, id+ext)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("preset %q not found in %s", id, flagPresetDir)
}

// parseSets turns repeated key=value flags into a nested overrides object.
// Keys are dotted camelCase paths, e.g. costs.flat.payrollPerMonthUsd=150000.
func parseSets(sets []string) (map[string]any, error) {
	out := map[string]any{}
	for _, s := range sets {
		key, raw, ok := strings.Cut(s, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("--set %q: expected key=value", s)
		}
		val, err := parseSetValue(raw)
		if err != nil {
			return nil, fmt.Errorf("--set %s: %w", key, err)
		}

		parts := strings.Split(key, ".")
		node := out
		for _, p := range parts[:len(parts)-1] {
			child, ok := node[p].(map[string]any)
			if !ok {
				child = map[string]any{}
				node[p] = child
			}
			node = child
		}
		node[parts[len(parts)-1]] = val
	}
	return out, nil
}

// parseSetValue reads a YAML scalar or flow value; bare amounts such as
// "2.4m" or "$12,000" become numbers.
func parseSetValue(raw string) (any, error) {
	var v any
	if err := yaml.Unmarshal([]byte(raw), &v); err != nil {
		return nil, err
	}
	if s, ok := v.(string); ok {
		if n, err := cli.ParseAmount(s); err == nil {
			return n, nil
		}
	}
	if v == nil {
		return nil, errors.New("value is required")
	}
	return v, nil
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
