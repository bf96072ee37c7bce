package cli

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"runway-forecast/internal/model"

	"github.com/charmbracelet/huh"
)

// WizardAnswers holds the raw text of the assumptions form. Rates are
// entered as percentages.
type WizardAnswers struct {
	Name      string
	CostModel string

	StartArr      string
	Acv           string
	NewLogos      string
	ChurnPct      string
	UpsellPct     string
	StartCash     string
	CollectNowPct string

	InvestmentMonth  string
	InvestmentAmount string

	Payroll string
	Opex    string
}

// AnswersFrom pre-fills the form from existing assumptions.
func AnswersFrom(name string, a model.Assumptions) WizardAnswers {
	split := a.CollectSplit.Normalized()
	w := WizardAnswers{
		Name:             name,
		CostModel:        string(a.Costs.Kind),
		StartArr:         formatInput(a.StartArrUsd),
		Acv:              formatInput(a.AcvUsd),
		NewLogos:         formatInput(a.NewLogosPerMonth),
		ChurnPct:         formatInput(a.ChurnMonthly * 100),
		UpsellPct:        formatInput(a.UpsellMonthly * 100),
		StartCash:        formatInput(a.StartCashUsd),
		CollectNowPct:    formatInput(split.Current() * 100),
		InvestmentMonth:  strconv.Itoa(a.OneOffInvestmentMonth),
		InvestmentAmount: formatInput(a.OneOffInvestmentAmountUsd),
	}
	flat := model.DefaultFlatAssumptions().Costs.Flat
	if a.Costs.Flat != nil {
		flat = a.Costs.Flat
	}
	w.Payroll = formatInput(flat.PayrollPerMonthUsd)
	w.Opex = formatInput(flat.OpexPerMonthUsd)
	return w
}

// Apply converts the answers onto base. The detailed cost model keeps the
// team plan of base (or the default team plan when base is flat).
func (w WizardAnswers) Apply(base model.Assumptions) (model.Assumptions, error) {
	a := base
	var errs []error
	num := func(field, s string, dst *float64) {
		v, err := ParseAmount(s)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", field, err))
			return
		}
		*dst = v
	}

	var churnPct, upsellPct, collectPct float64
	num("start ARR", w.StartArr, &a.StartArrUsd)
	num("ACV", w.Acv, &a.AcvUsd)
	num("new logos", w.NewLogos, &a.NewLogosPerMonth)
	num("churn", w.ChurnPct, &churnPct)
	num("upsell", w.UpsellPct, &upsellPct)
	num("start cash", w.StartCash, &a.StartCashUsd)
	num("collected in month", w.CollectNowPct, &collectPct)
	num("investment amount", w.InvestmentAmount, &a.OneOffInvestmentAmountUsd)

	month, err := strconv.Atoi(strings.TrimSpace(w.InvestmentMonth))
	if err != nil {
		errs = append(errs, fmt.Errorf("investment month: %q is not a whole number", w.InvestmentMonth))
	}
	a.OneOffInvestmentMonth = month

	switch model.CostModelKind(w.CostModel) {
	case model.CostModelFlat:
		var flat model.FlatCosts
		num("payroll", w.Payroll, &flat.PayrollPerMonthUsd)
		num("opex", w.Opex, &flat.OpexPerMonthUsd)
		a.Costs = model.FlatCostModel(flat)
	case model.CostModelDetailed:
		if base.Costs.Kind != model.CostModelDetailed || base.Costs.Detailed == nil {
			a.Costs = model.DefaultAssumptions().Costs
		}
	default:
		errs = append(errs, fmt.Errorf("unknown cost model %q", w.CostModel))
	}
	if err := errors.Join(errs...); err != nil {
		return model.Assumptions{}, err
	}

	if collectPct > 100 {
		return model.Assumptions{}, errors.New("collected in month must be <= 100")
	}
	a.ChurnMonthly = churnPct / 100
	a.UpsellMonthly = upsellPct / 100
	a.CollectSplit = model.CollectSplit{collectPct / 100, 1 - collectPct/100}
	if a.HorizonMonths == 0 {
		a.HorizonMonths = 12
	}
	if err := a.Validate(); err != nil {
		return model.Assumptions{}, err
	}
	return a, nil
}

// ParseAmount accepts plain numbers with optional "$", "%", thousands
// separators and k/m/b suffixes, e.g. "$2.4m" or "12,000".
func ParseAmount(s string) (float64, error) {
	raw := s
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("$", "", ",", "", "_", "", "%", "", " ", "").Replace(s)
	if s == "" {
		return 0, errors.New("value is required")
	}
	mult := 1.0
	switch s[len(s)-1] {
	case 'k':
		mult = 1_000
	case 'm':
		mult = 1_000_000
	case 'b':
		mult = 1_000_000_000
	}
	if mult != 1 {
		s = s[:len(s)-1]
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", raw)
	}
	if v < 0 {
		return 0, fmt.Errorf("%q must be >= 0", raw)
	}
	return v * mult, nil
}

func validateAmount(s string) error {
	_, err := ParseAmount(s)
	return err
}

func validatePercent(s string) error {
	v, err := ParseAmount(s)
	if err != nil {
		return err
	}
	if v > 100 {
		return errors.New("must be between 0 and 100")
	}
	return nil
}

// formatInput trims float noise such as 0.8000000000000002.
func formatInput(v float64) string {
	return strconv.FormatFloat(math.Round(v*1e6)/1e6, 'f', -1, 64)
}

// RunWizard asks for the assumptions interactively, starting from base.
// It returns the scenario name and the validated assumptions.
func RunWizard(name string, base model.Assumptions) (string, model.Assumptions, error) {
	w := AnswersFrom(name, base)
	if w.CostModel == "" {
		w.CostModel = string(model.CostModelDetailed)
	}

	input := func(title, desc string, value *string, validate func(string) error) huh.Field {
		return huh.NewInput().Title(title).Description(desc).Value(value).Validate(validate)
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Scenario name").Value(&w.Name).Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return errors.New("name is required")
				}
				return nil
			}),
			huh.NewSelect[string]().
				Title("Cost model").
				Options(
					huh.NewOption("Team plan (headcount, hires, spend per team)", string(model.CostModelDetailed)),
					huh.NewOption("Flat monthly payroll and opex", string(model.CostModelFlat)),
				).
				Value(&w.CostModel),
		),
		huh.NewGroup(
			input("Starting ARR", "USD, e.g. 2.4m", &w.StartArr, validateAmount),
			input("Average contract value", "USD per customer per year", &w.Acv, validateAmount),
			input("New logos per month", "", &w.NewLogos, validateAmount),
			input("Monthly churn", "percent, e.g. 0.8", &w.ChurnPct, validatePercent),
			input("Monthly upsell", "percent, e.g. 0.3", &w.UpsellPct, validatePercent),
		).Title("Revenue"),
		huh.NewGroup(
			input("Starting cash", "USD", &w.StartCash, validateAmount),
			input("Collected in billing month", "percent; the rest is collected the month after", &w.CollectNowPct, validatePercent),
			input("One-off investment month", "0 for none", &w.InvestmentMonth, func(s string) error {
				if _, err := strconv.Atoi(strings.TrimSpace(s)); err != nil {
					return errors.New("must be a whole month")
				}
				return nil
			}),
			input("One-off investment amount", "USD", &w.InvestmentAmount, validateAmount),
		).Title("Cash"),
		huh.NewGroup(
			input("Payroll per month", "USD", &w.Payroll, validateAmount),
			input("Opex per month", "USD", &w.Opex, validateAmount),
		).Title("Flat costs").WithHideFunc(func() bool {
			return w.CostModel != string(model.CostModelFlat)
		}),
	)
	if err := form.Run(); err != nil {
		return "", model.Assumptions{}, err
	}

	a, err := w.Apply(base)
	if err != nil {
		return "", model.Assumptions{}, err
	}
	return strings.TrimSpace(w.Name), a, nil
}
