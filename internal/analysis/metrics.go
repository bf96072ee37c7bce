package analysis

import (
	"math"

	"runway-forecast/internal/forecast"
	"runway-forecast/internal/model"

	"github.com/shopspring/decimal"
)

// CostOfSalesRate is the share of revenue booked as cost of sales (hosting,
// payment processing).
const CostOfSalesRate = 0.05

// BusinessMetrics are the operator-facing figures derived from a plan for
// dashboards. They never feed back into the forecast.
type BusinessMetrics struct {
	CurrentArr    float64 `json:"currentArr"`
	CurrentMrr    float64 `json:"currentMrr"`
	Subscriptions int     `json:"subscriptions"`
	MonthlyARPU   float64 `json:"monthlyArpu"`

	// RowNRRPct is computed from first-month churn/upsell dollars rather
	// than the assumed rates.
	RowNRRPct    float64 `json:"rowNrrPct"`
	ARRGrowthPct float64 `json:"arrGrowthPct"`
	MRRGrowthPct float64 `json:"mrrGrowthPct"`

	MonthlyRetention float64 `json:"monthlyRetention"`
	AnnualRetention  float64 `json:"annualRetention"`
	AnnualChurn      float64 `json:"annualChurn"`

	CACPaybackMonths *float64 `json:"cacPaybackMonths"`
	MagicNumber      *float64 `json:"magicNumber"`

	CostOfSales    float64 `json:"costOfSales"`
	GrossMargin    float64 `json:"grossMargin"`
	GrossMarginPct float64 `json:"grossMarginPct"`

	// Month-over-month changes compare against the opening position: opening
	// ARR/12 revenue and the pre-hire cost run rate.
	OperatingCost          float64 `json:"operatingCost"`
	OperatingCostChangePct float64 `json:"operatingCostChangePct"`
	EBITDA                 float64 `json:"ebitda"`
	EBITDAChangePct        float64 `json:"ebitdaChangePct"`
	EBITDAMarginPct        float64 `json:"ebitdaMarginPct"`
	OperatingMarginPct     float64 `json:"operatingMarginPct"`
	RuleOf40               float64 `json:"ruleOf40"`
	// EBITDABurnMultiple uses negative EBITDA as net burn, unlike the cash
	// based burn multiple of PlanSummary.
	EBITDABurnMultiple forecast.Ratio `json:"ebitdaBurnMultiple"`

	CashTroughMonth int     `json:"cashTroughMonth"`
	CashTrough      float64 `json:"cashTrough"`
	PeakHeadcount   int     `json:"peakHeadcount"`
}

// ComputeMetrics derives BusinessMetrics from a finished plan.
// "Current" is the first forecast month, consistent with PlanSummary.
func ComputeMetrics(p *forecast.Plan, a model.Assumptions) BusinessMetrics {
	m := BusinessMetrics{}
	if p == nil || len(p.Rows) == 0 {
		return m
	}
	cur := p.Rows[0]

	m.CurrentArr = cur.ClosingArr
	m.CurrentMrr = cur.Revenue
	if a.AcvUsd > 0 {
		m.Subscriptions = int(math.Round(cur.ClosingArr / a.AcvUsd))
	}
	m.MonthlyARPU = cents(cur.Revenue / math.Max(1, float64(m.Subscriptions)))

	openingMrr := cur.OpeningArr / 12
	if openingMrr > 0 {
		m.RowNRRPct = (openingMrr + cur.UpsellArr/12 - cur.ChurnArr/12) / openingMrr * 100
		m.MRRGrowthPct = (cur.Revenue - openingMrr) / openingMrr * 100
	} else {
		m.RowNRRPct = 100
	}
	if cur.OpeningArr > 0 {
		m.ARRGrowthPct = (cur.ClosingArr - cur.OpeningArr) / cur.OpeningArr * 100
	}

	profitability(&m, cur, a)

	m.MonthlyRetention = 1 - a.ChurnMonthly
	m.AnnualRetention = math.Pow(m.MonthlyRetention, 12)
	m.AnnualChurn = 1 - m.AnnualRetention

	if cac := p.Summary.CAC; cac != nil && m.MonthlyARPU > 0 {
		payback := *cac / m.MonthlyARPU
		m.CACPaybackMonths = &payback
	}
	m.MagicNumber = magicNumber(p.Rows, a)

	m.CashTroughMonth = cur.M
	m.CashTrough = cur.CashEnd
	for _, r := range p.Rows {
		if r.CashEnd < m.CashTrough {
			m.CashTrough = r.CashEnd
			m.CashTroughMonth = r.M
		}
		if r.Headcount > m.PeakHeadcount {
			m.PeakHeadcount = r.Headcount
		}
	}
	return m
}

func profitability(m *BusinessMetrics, cur forecast.MonthRow, a model.Assumptions) {
	revenue := cur.Revenue
	m.CostOfSales = cents(revenue * CostOfSalesRate)
	m.GrossMargin = cents(revenue - m.CostOfSales)
	if revenue > 0 {
		m.GrossMarginPct = m.GrossMargin / revenue * 100
	}

	m.OperatingCost = cents(cur.Payroll + cur.Opex)
	prevPayroll, prevOpex := forecast.OpeningCosts(a)
	prevOperatingCost := prevPayroll + prevOpex
	if prevOperatingCost > 0 {
		m.OperatingCostChangePct = (m.OperatingCost - prevOperatingCost) / prevOperatingCost * 100
	}

	m.EBITDA = cents(m.GrossMargin - m.OperatingCost)
	prevRevenue := cur.OpeningArr / 12
	prevEBITDA := prevRevenue*(1-CostOfSalesRate) - prevOperatingCost
	if prevEBITDA != 0 {
		m.EBITDAChangePct = (m.EBITDA - prevEBITDA) / math.Abs(prevEBITDA) * 100
	}
	if revenue > 0 {
		m.EBITDAMarginPct = m.EBITDA / revenue * 100
		// No interest, tax or depreciation is modeled, so EBIT equals EBITDA.
		m.OperatingMarginPct = m.EBITDAMarginPct
	}
	m.RuleOf40 = m.ARRGrowthPct*12 + m.EBITDAMarginPct
	m.EBITDABurnMultiple = forecast.BurnMultiple(-m.EBITDA, cur.ClosingArr-cur.OpeningArr)
}

// magicNumber is net new ARR over the first quarter divided by the quarter's
// acquisition spend. Nil without a spend breakdown or a full quarter of rows.
func magicNumber(rows []forecast.MonthRow, a model.Assumptions) *float64 {
	const quarter = 3
	if len(rows) < quarter || a.Costs.Kind != model.CostModelDetailed || a.Costs.Detailed == nil {
		return nil
	}
	spend := forecast.SalesMarketingSpend(a.Costs.Detailed.SpendMonthlyUsd).Total() * quarter
	if spend <= 0 {
		return nil
	}
	netNew := rows[quarter-1].ClosingArr - rows[0].OpeningArr
	v := netNew / spend
	return &v
}

func cents(x float64) float64 {
	return decimal.NewFromFloat(x).Round(2).InexactFloat64()
}
