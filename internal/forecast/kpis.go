package forecast

import (
	"math"

	"runway-forecast/internal/model"
)

// KPISet is the retention and efficiency block of a PlanSummary.
type KPISet struct {
	NRRPct       float64
	LTV          Lifetime
	CAC          *float64
	LTVCAC       *Ratio
	BurnNext     float64
	BurnMultiple *Ratio
	RunwayMonths Runway
}

// NextRow is the row reported as "next month": the first forecast month.
func NextRow(rows []MonthRow) (MonthRow, bool) {
	if len(rows) == 0 {
		return MonthRow{}, false
	}
	return rows[0], true
}

// KPIs derives the summary metrics from a finished row sequence.
//
// Rules:
//   - NRR is rate based: (1 - churn + upsell) x 100.
//   - LTV is (ACV/12)/churn, unbounded when churn is zero.
//   - CAC is acquisition spend / new logos, nil without new logos or without a
//     spend breakdown (flat cost model).
//   - LTV/CAC is nil unless CAC is positive; unbounded when LTV is.
//   - Burn multiple is next-month net burn over monthly net new ARR:
//     unbounded when burning without growth, 0 when neither.
//   - Runway is infinite when next-month burn <= 0, else floor(final cash / burn).
func KPIs(rows []MonthRow, a model.Assumptions) KPISet {
	next, ok := NextRow(rows)
	if !ok {
		return KPISet{RunwayMonths: InfiniteRunway()}
	}

	k := KPISet{
		NRRPct:   (1 - a.ChurnMonthly + a.UpsellMonthly) * 100,
		LTV:      lifetimeValue(a),
		BurnNext: next.Burn,
	}

	if spend, ok := acquisitionSpend(a); ok && a.NewLogosPerMonth > 0 {
		cac := spend.Total() / a.NewLogosPerMonth
		k.CAC = &cac
		if cac > 0 {
			ratio := UnboundedRatio()
			if !k.LTV.Unbounded {
				ratio = BoundedRatio(k.LTV.Value / cac)
			}
			k.LTVCAC = &ratio
		}
	}

	bm := BurnMultiple(next.Burn, next.ClosingArr-next.OpeningArr)
	k.BurnMultiple = &bm

	last := rows[len(rows)-1]
	k.RunwayMonths = runway(last.CashEnd, next.Burn)
	return k
}

// BurnMultiple divides net burn by monthly net new ARR. Negative burn and
// shrinking ARR count as zero.
func BurnMultiple(burn, netNewArr float64) Ratio {
	netBurn := math.Max(0, burn)
	netNewMrr := math.Max(0, netNewArr) / 12
	switch {
	case netNewMrr > 0:
		return BoundedRatio(netBurn / netNewMrr)
	case netBurn > 0:
		return UnboundedRatio()
	default:
		return BoundedRatio(0)
	}
}

func lifetimeValue(a model.Assumptions) Lifetime {
	if a.ChurnMonthly <= 0 {
		return UnboundedLifetime()
	}
	return BoundedLifetime((a.AcvUsd / 12) / a.ChurnMonthly)
}

func acquisitionSpend(a model.Assumptions) (AcquisitionSpend, bool) {
	if a.Costs.Kind != model.CostModelDetailed || a.Costs.Detailed == nil {
		return AcquisitionSpend{}, false
	}
	return SalesMarketingSpend(a.Costs.Detailed.SpendMonthlyUsd), true
}

func runway(cash, burn float64) Runway {
	if burn <= 0 {
		return InfiniteRunway()
	}
	return FiniteRunway(int(math.Floor(cash / burn)))
}
