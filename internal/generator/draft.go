package generator

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"runway-forecast/internal/model"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	"github.com/goccy/go-json"
	hjson "github.com/hjson/hjson-go/v4"
)

// DraftHorizonMonths is the horizon of every generated plan.
const DraftHorizonMonths = 12

// Draft is the raw answer of a provider. Rates and the collect split are
// percentages (2 = 2%). Every field is required; nil means the provider
// left it out.
type Draft struct {
	StartArrUsd               *float64 `json:"startArrUsd"`
	AcvUsd                    *float64 `json:"acvUsd"`
	NewLogosPerMonth          *float64 `json:"newLogosPerMonth"`
	ChurnMonthly              *float64 `json:"churnMonthly"`
	UpsellMonthly             *float64 `json:"upsellMonthly"`
	StartCashUsd              *float64 `json:"startCashUsd"`
	PayrollPerMonthUsd        *float64 `json:"payrollPerMonthUsd"`
	OpexPerMonthUsd           *float64 `json:"opexPerMonthUsd"`
	CollectSplit0             *float64 `json:"collectSplit0"`
	CollectSplit1             *float64 `json:"collectSplit1"`
	OneOffInvestmentMonth     *float64 `json:"oneOffInvestmentMonth"`
	OneOffInvestmentAmountUsd *float64 `json:"oneOffInvestmentAmountUsd"`
	Reasoning                 *string  `json:"reasoning"`
}

type draftField struct {
	name        string
	description string
	text        bool
	// max is the inclusive upper bound; 0 means unbounded.
	max float64
}

var draftFields = []draftField{
	{name: "startArrUsd", description: "Starting ARR in USD"},
	{name: "acvUsd", description: "Average contract value per customer per year"},
	{name: "newLogosPerMonth", description: "Number of new customers per month"},
	{name: "churnMonthly", description: "Monthly churn rate as percentage (e.g., 2 = 2%)", max: 100},
	{name: "upsellMonthly", description: "Monthly upsell/expansion rate as percentage", max: 100},
	{name: "startCashUsd", description: "Starting cash balance in USD"},
	{name: "payrollPerMonthUsd", description: "Total monthly payroll costs"},
	{name: "opexPerMonthUsd", description: "Monthly operating expenses (tools, ads, infrastructure)"},
	{name: "collectSplit0", description: "Percentage collected in current month", max: 100},
	{name: "collectSplit1", description: "Percentage collected in next month", max: 100},
	{name: "oneOffInvestmentMonth", description: "Month when investment occurs (0 to skip)", max: DraftHorizonMonths},
	{name: "oneOffInvestmentAmountUsd", description: "Amount of one-time investment"},
	{name: "reasoning", description: "Brief explanation of the assumptions made", text: true},
}

func (d *Draft) numbers() map[string]*float64 {
	return map[string]*float64{
		"startArrUsd":               d.StartArrUsd,
		"acvUsd":                    d.AcvUsd,
		"newLogosPerMonth":          d.NewLogosPerMonth,
		"churnMonthly":              d.ChurnMonthly,
		"upsellMonthly":             d.UpsellMonthly,
		"startCashUsd":              d.StartCashUsd,
		"payrollPerMonthUsd":        d.PayrollPerMonthUsd,
		"opexPerMonthUsd":           d.OpexPerMonthUsd,
		"collectSplit0":             d.CollectSplit0,
		"collectSplit1":             d.CollectSplit1,
		"oneOffInvestmentMonth":     d.OneOffInvestmentMonth,
		"oneOffInvestmentAmountUsd": d.OneOffInvestmentAmountUsd,
	}
}

// Validate reports every missing or out-of-range field at once.
func (d *Draft) Validate() error {
	var details []string
	nums := d.numbers()
	for _, f := range draftFields {
		if f.text {
			if d.Reasoning == nil {
				details = append(details, fmt.Sprintf("%s is required", f.name))
			}
			continue
		}
		v := nums[f.name]
		switch {
		case v == nil:
			details = append(details, fmt.Sprintf("%s is required", f.name))
		case math.IsNaN(*v) || math.IsInf(*v, 0) || *v < 0:
			details = append(details, fmt.Sprintf("%s must be >= 0", f.name))
		case f.max > 0 && *v > f.max:
			details = append(details, fmt.Sprintf("%s must be <= %g", f.name, f.max))
		}
	}
	if d.OneOffInvestmentMonth != nil && *d.OneOffInvestmentMonth != math.Trunc(*d.OneOffInvestmentMonth) {
		details = append(details, "oneOffInvestmentMonth must be a whole month")
	}
	if d.AcvUsd != nil && *d.AcvUsd == 0 {
		details = append(details, "acvUsd must be > 0")
	}
	if d.CollectSplit0 != nil && d.CollectSplit1 != nil && *d.CollectSplit0+*d.CollectSplit1 <= 0 {
		details = append(details, "collectSplit0 and collectSplit1 cannot both be 0")
	}
	if len(details) > 0 {
		return &GenerationError{
			Code:    CodeInvalidDraft,
			Message: "invalid budget assumptions generated",
			Details: details,
		}
	}
	return nil
}

// ToAssumptions converts a validated draft into a 12-month flat-cost plan
// input. Percentages become fractions and the collect split is normalized.
func (d *Draft) ToAssumptions() (model.Assumptions, error) {
	if err := d.Validate(); err != nil {
		return model.Assumptions{}, err
	}
	a := model.Assumptions{
		HorizonMonths:    DraftHorizonMonths,
		StartArrUsd:      *d.StartArrUsd,
		AcvUsd:           *d.AcvUsd,
		NewLogosPerMonth: *d.NewLogosPerMonth,
		ChurnMonthly:     *d.ChurnMonthly / 100,
		UpsellMonthly:    *d.UpsellMonthly / 100,
		StartCashUsd:     *d.StartCashUsd,
		CollectSplit:     model.CollectSplit{*d.CollectSplit0 / 100, *d.CollectSplit1 / 100}.Normalized(),

		OneOffInvestmentMonth:     int(*d.OneOffInvestmentMonth),
		OneOffInvestmentAmountUsd: *d.OneOffInvestmentAmountUsd,
		Costs: model.FlatCostModel(model.FlatCosts{
			PayrollPerMonthUsd: *d.PayrollPerMonthUsd,
			OpexPerMonthUsd:    *d.OpexPerMonthUsd,
		}),
	}
	if err := a.Validate(); err != nil {
		return model.Assumptions{}, &GenerationError{
			Code:    CodeInvalidDraft,
			Message: "invalid budget assumptions generated",
			Details: []string{err.Error()},
		}
	}
	return a, nil
}

// ParseDraft decodes provider output, tolerating markdown fences, trailing
// commas and similar LLM noise, and rejects unknown fields.
func ParseDraft(raw string) (Draft, error) {
	normalized, err := smartParse(raw)
	if err != nil {
		return Draft{}, &GenerationError{
			Code:    CodeInvalidDraft,
			Message: "provider response is not a JSON object",
			Err:     err,
		}
	}

	var d Draft
	if err := json.Unmarshal([]byte(normalized), &d); err != nil {
		return Draft{}, &GenerationError{
			Code:    CodeInvalidDraft,
			Message: "invalid budget assumptions generated",
			Details: []string{err.Error()},
		}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(normalized), &fields); err != nil {
		return Draft{}, &GenerationError{
			Code:    CodeInvalidDraft,
			Message: "provider response is not a JSON object",
			Err:     err,
		}
	}
	known := make(map[string]bool, len(draftFields))
	for _, f := range draftFields {
		known[f.name] = true
	}
	var unknown []string
	for k := range fields {
		if !known[k] {
			unknown = append(unknown, fmt.Sprintf("unexpected field %q", k))
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return Draft{}, &GenerationError{
			Code:    CodeInvalidDraft,
			Message: "invalid budget assumptions generated",
			Details: unknown,
		}
	}
	return d, d.Validate()
}

// smartParse tries standard JSON, then json-repair, then Hjson, and returns
// the first rendition that decodes to a JSON object.
func smartParse(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", errors.New("empty response")
	}
	var probe map[string]any
	if err := json.Unmarshal([]byte(input), &probe); err == nil {
		return input, nil
	}

	if repaired, err := jsonrepair.RepairJSON(input); err == nil {
		if err := json.Unmarshal([]byte(repaired), &probe); err == nil {
			return repaired, nil
		}
	}

	var loose map[string]any
	if err := hjson.Unmarshal([]byte(input), &loose); err == nil {
		if b, err := json.Marshal(loose); err == nil {
			return string(b), nil
		}
	}
	return "", errors.New("all parsing strategies failed")
}
