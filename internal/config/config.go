package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"runway-forecast/internal/model"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config is the on-disk scenario shape (YAML or TOML, chosen by extension).
type Config struct {
	// Optional: load a base scenario from a preset file (e.g. examples/presets/*.yaml).
	// Fields set in Assumptions override the preset.
	PresetFile  string            `yaml:"preset_file,omitempty" toml:"preset_file,omitempty"`
	Name        string            `yaml:"name,omitempty" toml:"name,omitempty"`
	Description string            `yaml:"description,omitempty" toml:"description,omitempty"`
	Assumptions AssumptionsConfig `yaml:"assumptions" toml:"assumptions"`
}

// AssumptionsConfig mirrors model.Assumptions with snake_case keys.
// Scalars are pointers so an overlay can distinguish "unset" from zero.
type AssumptionsConfig struct {
	HorizonMonths *int `yaml:"horizon_months,omitempty" toml:"horizon_months,omitempty"`

	StartArrUsd      *float64 `yaml:"start_arr_usd,omitempty" toml:"start_arr_usd,omitempty"`
	AcvUsd           *float64 `yaml:"acv_usd,omitempty" toml:"acv_usd,omitempty"`
	NewLogosPerMonth *float64 `yaml:"new_logos_per_month,omitempty" toml:"new_logos_per_month,omitempty"`
	ChurnMonthly     *float64 `yaml:"churn_monthly,omitempty" toml:"churn_monthly,omitempty"`
	UpsellMonthly    *float64 `yaml:"upsell_monthly,omitempty" toml:"upsell_monthly,omitempty"`

	StartCashUsd *float64  `yaml:"start_cash_usd,omitempty" toml:"start_cash_usd,omitempty"`
	CollectSplit []float64 `yaml:"collect_split,omitempty" toml:"collect_split,omitempty"`

	OneOffInvestmentMonth     *int     `yaml:"one_off_investment_month,omitempty" toml:"one_off_investment_month,omitempty"`
	OneOffInvestmentAmountUsd *float64 `yaml:"one_off_investment_amount_usd,omitempty" toml:"one_off_investment_amount_usd,omitempty"`

	Costs CostsConfig `yaml:"costs" toml:"costs"`
}

// CostsConfig holds both cost model variants; Kind picks one.
// When Kind is empty it is inferred: any team map means detailed.
type CostsConfig struct {
	Kind string `yaml:"kind,omitempty" toml:"kind,omitempty"`

	HeadcountNow     map[string]int         `yaml:"headcount_now,omitempty" toml:"headcount_now,omitempty"`
	HiresNext6Months map[string]int         `yaml:"hires_next_6_months,omitempty" toml:"hires_next_6_months,omitempty"`
	AvgCostPerFteUsd map[string]float64     `yaml:"avg_cost_per_fte_usd,omitempty" toml:"avg_cost_per_fte_usd,omitempty"`
	SpendMonthlyUsd  map[string]SpendConfig `yaml:"spend_monthly_usd,omitempty" toml:"spend_monthly_usd,omitempty"`

	PayrollPerMonthUsd *float64 `yaml:"payroll_per_month_usd,omitempty" toml:"payroll_per_month_usd,omitempty"`
	OpexPerMonthUsd    *float64 `yaml:"opex_per_month_usd,omitempty" toml:"opex_per_month_usd,omitempty"`
}

type SpendConfig struct {
	Tools       float64 `yaml:"tools" toml:"tools"`
	Ads         float64 `yaml:"ads" toml:"ads"`
	Events      float64 `yaml:"events" toml:"events"`
	Freelancers float64 `yaml:"freelancers" toml:"freelancers"`
	Other       float64 `yaml:"other" toml:"other"`
}

const defaultHorizonMonths = 12

// Load reads, merges, normalizes and validates a scenario file.
func Load(path string) (*Config, model.Assumptions, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, model.Assumptions{}, err
	}
	a, err := c.ToModel()
	if err != nil {
		return nil, model.Assumptions{}, err
	}
	if err := a.Validate(); err != nil {
		return nil, model.Assumptions{}, fmt.Errorf("scenario %s invalid: %w", path, err)
	}
	return c, a, nil
}

// LoadUnchecked loads and merges config, but does not validate it.
// Useful for listing presets and printing partial configs.
func LoadUnchecked(path string) (*Config, error) {
	c, err := decodeFile(path)
	if err != nil {
		return nil, err
	}
	// If preset_file is set, load it and merge in any explicit overrides from c.Assumptions.
	if c.PresetFile != "" {
		presetPath := c.PresetFile
		if !filepath.IsAbs(presetPath) {
			// Prefer paths relative to the config file, then fall back to cwd.
			cand := filepath.Join(filepath.Dir(path), presetPath)
			if _, err := os.Stat(cand); err == nil {
				presetPath = cand
			}
		}
		base, err := decodeFile(presetPath)
		if err != nil {
			return nil, fmt.Errorf("loading preset %s: %w", presetPath, err)
		}
		if base.PresetFile != "" {
			return nil, fmt.Errorf("preset %s: nested preset_file is not supported", presetPath)
		}
		c.Assumptions = MergeAssumptions(base.Assumptions, c.Assumptions)
		if c.Name == "" {
			c.Name = base.Name
		}
	}
	return c, nil
}

func decodeFile(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if isTOML(path) {
		if _, err := toml.Decode(string(raw), &c); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		return &c, nil
	}
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &c, nil
}

// Save writes the config as YAML or TOML depending on the path extension.
func Save(path string, c *Config) error {
	if c == nil {
		return errors.New("config is nil")
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating config dir: %w", err)
		}
	}

	var buf bytes.Buffer
	if isTOML(path) {
		if err := toml.NewEncoder(&buf).Encode(c); err != nil {
			return fmt.Errorf("encoding toml: %w", err)
		}
	} else {
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(c); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return err
		}
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// ToModel converts to model.Assumptions. The collect split is normalized to
// sum to 1 here; range checks are left to Assumptions.Validate.
func (c *Config) ToModel() (model.Assumptions, error) {
	if c == nil {
		return model.Assumptions{}, errors.New("config is nil")
	}
	ac := c.Assumptions
	a := model.Assumptions{
		HorizonMonths:             derefInt(ac.HorizonMonths, defaultHorizonMonths),
		StartArrUsd:               deref(ac.StartArrUsd),
		AcvUsd:                    deref(ac.AcvUsd),
		NewLogosPerMonth:          deref(ac.NewLogosPerMonth),
		ChurnMonthly:              deref(ac.ChurnMonthly),
		UpsellMonthly:             deref(ac.UpsellMonthly),
		StartCashUsd:              deref(ac.StartCashUsd),
		OneOffInvestmentMonth:     derefInt(ac.OneOffInvestmentMonth, 0),
		OneOffInvestmentAmountUsd: deref(ac.OneOffInvestmentAmountUsd),
	}

	switch len(ac.CollectSplit) {
	case 0:
	case 2:
		a.CollectSplit = model.CollectSplit{ac.CollectSplit[0], ac.CollectSplit[1]}.Normalized()
	default:
		return model.Assumptions{}, fmt.Errorf("collect_split must have 2 values, got %d", len(ac.CollectSplit))
	}

	costs, err := ac.Costs.toModel()
	if err != nil {
		return model.Assumptions{}, err
	}
	a.Costs = costs
	return a, nil
}

func (cc CostsConfig) toModel() (model.CostModel, error) {
	kind := model.CostModelKind(cc.Kind)
	if kind == "" {
		kind = model.CostModelFlat
		if len(cc.HeadcountNow)+len(cc.HiresNext6Months)+len(cc.AvgCostPerFteUsd)+len(cc.SpendMonthlyUsd) > 0 {
			kind = model.CostModelDetailed
		}
	}

	switch kind {
	case model.CostModelFlat:
		return model.FlatCostModel(model.FlatCosts{
			PayrollPerMonthUsd: deref(cc.PayrollPerMonthUsd),
			OpexPerMonthUsd:    deref(cc.OpexPerMonthUsd),
		}), nil
	case model.CostModelDetailed:
		d := model.DetailedCosts{
			HeadcountNow:     map[model.Team]int{},
			HiresNext6Months: map[model.Team]int{},
			AvgCostPerFteUsd: map[model.Team]float64{},
			SpendMonthlyUsd:  map[model.Team]model.SpendBuckets{},
		}
		for k, v := range cc.HeadcountNow {
			t, err := model.ParseTeam(k)
			if err != nil {
				return model.CostModel{}, fmt.Errorf("headcount_now: %w", err)
			}
			d.HeadcountNow[t] = v
		}
		for k, v := range cc.HiresNext6Months {
			t, err := model.ParseTeam(k)
			if err != nil {
				return model.CostModel{}, fmt.Errorf("hires_next_6_months: %w", err)
			}
			d.HiresNext6Months[t] = v
		}
		for k, v := range cc.AvgCostPerFteUsd {
			t, err := model.ParseTeam(k)
			if err != nil {
				return model.CostModel{}, fmt.Errorf("avg_cost_per_fte_usd: %w", err)
			}
			d.AvgCostPerFteUsd[t] = v
		}
		for k, v := range cc.SpendMonthlyUsd {
			t, err := model.ParseTeam(k)
			if err != nil {
				return model.CostModel{}, fmt.Errorf("spend_monthly_usd: %w", err)
			}
			d.SpendMonthlyUsd[t] = model.SpendBuckets(v)
		}
		return model.DetailedCostModel(d), nil
	default:
		return model.CostModel{}, fmt.Errorf("unknown costs.kind %q", cc.Kind)
	}
}

// FromModel builds a fully populated config from assumptions, e.g. for the
// wizard to save.
func FromModel(name string, a model.Assumptions) *Config {
	ac := AssumptionsConfig{
		HorizonMonths:             ptr(a.HorizonMonths),
		StartArrUsd:               ptr(a.StartArrUsd),
		AcvUsd:                    ptr(a.AcvUsd),
		NewLogosPerMonth:          ptr(a.NewLogosPerMonth),
		ChurnMonthly:              ptr(a.ChurnMonthly),
		UpsellMonthly:             ptr(a.UpsellMonthly),
		StartCashUsd:              ptr(a.StartCashUsd),
		CollectSplit:              []float64{a.CollectSplit[0], a.CollectSplit[1]},
		OneOffInvestmentMonth:     ptr(a.OneOffInvestmentMonth),
		OneOffInvestmentAmountUsd: ptr(a.OneOffInvestmentAmountUsd),
		Costs:                     CostsConfig{Kind: string(a.Costs.Kind)},
	}
	switch a.Costs.Kind {
	case model.CostModelDetailed:
		d := a.Costs.Detailed
		if d == nil {
			break
		}
		ac.Costs.HeadcountNow = map[string]int{}
		ac.Costs.HiresNext6Months = map[string]int{}
		ac.Costs.AvgCostPerFteUsd = map[string]float64{}
		ac.Costs.SpendMonthlyUsd = map[string]SpendConfig{}
		for _, t := range model.AllTeams {
			ac.Costs.HeadcountNow[string(t)] = d.HeadcountNow[t]
			ac.Costs.HiresNext6Months[string(t)] = d.HiresNext6Months[t]
			ac.Costs.AvgCostPerFteUsd[string(t)] = d.AvgCostPerFteUsd[t]
			ac.Costs.SpendMonthlyUsd[string(t)] = SpendConfig(d.SpendMonthlyUsd[t])
		}
	case model.CostModelFlat:
		if a.Costs.Flat == nil {
			break
		}
		ac.Costs.PayrollPerMonthUsd = ptr(a.Costs.Flat.PayrollPerMonthUsd)
		ac.Costs.OpexPerMonthUsd = ptr(a.Costs.Flat.OpexPerMonthUsd)
	}
	return &Config{Name: name, Assumptions: ac}
}

// MergeAssumptions overlays set fields from override onto base.
// Team maps merge per team; a non-empty kind in override replaces base's.
func MergeAssumptions(base, override AssumptionsConfig) AssumptionsConfig {
	out := base
	overlay(&out.HorizonMonths, override.HorizonMonths)
	overlay(&out.StartArrUsd, override.StartArrUsd)
	overlay(&out.AcvUsd, override.AcvUsd)
	overlay(&out.NewLogosPerMonth, override.NewLogosPerMonth)
	overlay(&out.ChurnMonthly, override.ChurnMonthly)
	overlay(&out.UpsellMonthly, override.UpsellMonthly)
	overlay(&out.StartCashUsd, override.StartCashUsd)
	overlay(&out.OneOffInvestmentMonth, override.OneOffInvestmentMonth)
	overlay(&out.OneOffInvestmentAmountUsd, override.OneOffInvestmentAmountUsd)
	if len(override.CollectSplit) > 0 {
		out.CollectSplit = append([]float64(nil), override.CollectSplit...)
	}

	oc := override.Costs
	if oc.Kind != "" {
		out.Costs.Kind = oc.Kind
	}
	out.Costs.HeadcountNow = mergeMap(base.Costs.HeadcountNow, oc.HeadcountNow)
	out.Costs.HiresNext6Months = mergeMap(base.Costs.HiresNext6Months, oc.HiresNext6Months)
	out.Costs.AvgCostPerFteUsd = mergeMap(base.Costs.AvgCostPerFteUsd, oc.AvgCostPerFteUsd)
	out.Costs.SpendMonthlyUsd = mergeMap(base.Costs.SpendMonthlyUsd, oc.SpendMonthlyUsd)
	overlay(&out.Costs.PayrollPerMonthUsd, oc.PayrollPerMonthUsd)
	overlay(&out.Costs.OpexPerMonthUsd, oc.OpexPerMonthUsd)
	return out
}

func overlay[T any](dst **T, src *T) {
	if src != nil {
		v := *src
		*dst = &v
	}
}

func mergeMap[V any](base, override map[string]V) map[string]V {
	if len(base) == 0 && len(override) == 0 {
		return nil
	}
	out := make(map[string]V, len(base)+len(override))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		out[k] = v
	}
	return out
}

func ptr[T any](v T) *T { return &v }

func deref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func derefInt(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}
