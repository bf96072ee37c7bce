package forecast

import (
	"fmt"

	"runway-forecast/internal/model"
)

type Engine struct{}

func New() *Engine { return &Engine{} }

// Run validates the assumptions and builds the plan.
func (e *Engine) Run(a model.Assumptions) (*Plan, error) {
	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("invalid assumptions: %w", err)
	}
	p := BuildPlan(a)
	return &p, nil
}

// BuildPlan runs the month loop over the horizon and summarizes the result.
// It is pure: identical assumptions produce identical plans. Inputs are not
// validated here; callers go through Engine.Run or call Validate first.
func BuildPlan(a model.Assumptions) Plan {
	horizon := a.HorizonMonths
	if horizon < 0 {
		horizon = 0
	}
	rows := make([]MonthRow, 0, horizon)

	openingArr := a.StartArrUsd
	prevRevenue := a.StartArrUsd / 12
	prevCash := a.StartCashUsd

	for m := 1; m <= horizon; m++ {
		top := Topline(a, m, openingArr)
		payroll, opex, headcount := monthlyCosts(a.Costs, m)

		investment := 0.0
		if a.OneOffInvestmentMonth != 0 && m == a.OneOffInvestmentMonth {
			investment = a.OneOffInvestmentAmountUsd
		}

		collections := Collections(top.Revenue, prevRevenue, a.CollectSplit)
		cashEnd := Cash(prevCash, collections, payroll, opex, investment)

		rows = append(rows, MonthRow{
			M: m,

			OpeningArr: top.OpeningArr,
			NewArr:     top.NewArr,
			ChurnArr:   top.ChurnArr,
			UpsellArr:  top.UpsellArr,
			ClosingArr: top.ClosingArr,

			Revenue:     top.Revenue,
			Collections: collections,

			Payroll:    payroll,
			Opex:       opex,
			Investment: investment,

			Burn:    payroll + opex - collections,
			CashEnd: cashEnd,

			NewLogos:  top.NewLogos,
			Headcount: headcount,
		})

		openingArr = top.ClosingArr
		prevRevenue = top.Revenue
		prevCash = cashEnd
	}

	return Plan{Rows: rows, Summary: Summarize(rows, a)}
}

// Summarize builds the PlanSummary for a row sequence.
func Summarize(rows []MonthRow, a model.Assumptions) PlanSummary {
	k := KPIs(rows, a)
	s := PlanSummary{
		BurnNext:     k.BurnNext,
		RunwayMonths: k.RunwayMonths,
		NRRPct:       k.NRRPct,
		LTV:          k.LTV,
		CAC:          k.CAC,
		LTVCAC:       k.LTVCAC,
		BurnMultiple: k.BurnMultiple,
	}
	if next, ok := NextRow(rows); ok {
		s.RevenueNext = next.Revenue
	}
	if len(rows) > 0 {
		last := rows[len(rows)-1]
		s.ArrEnd = last.ClosingArr
		s.CashEnd = last.CashEnd
	}
	return s
}

// OpeningCosts is the payroll and opex run rate before the first forecast
// month, with no hires landed yet.
func OpeningCosts(a model.Assumptions) (payroll, opex float64) {
	payroll, opex, _ = monthlyCosts(a.Costs, 0)
	return payroll, opex
}

func monthlyCosts(c model.CostModel, month int) (payroll, opex float64, headcount int) {
	switch {
	case c.Kind == model.CostModelDetailed && c.Detailed != nil:
		d := c.Detailed
		hc := Headcount(d.HeadcountNow, d.HiresNext6Months, month)
		return Payroll(hc, d.AvgCostPerFteUsd), Opex(d.SpendMonthlyUsd), TotalHeadcount(hc)
	case c.Kind == model.CostModelFlat && c.Flat != nil:
		return c.Flat.PayrollPerMonthUsd, c.Flat.OpexPerMonthUsd, 0
	default:
		return 0, 0, 0
	}
}
