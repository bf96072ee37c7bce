package analysis

import (
	"runway-forecast/internal/forecast"

	"github.com/shopspring/decimal"
)

// RowDelta is the month-over-month change shown next to each table row.
// The first month is compared against the opening position.
type RowDelta struct {
	M int `json:"m"`

	ArrChange     float64  `json:"arrChange"`
	ArrChangePct  *float64 `json:"arrChangePct"`
	RevenueChange float64  `json:"revenueChange"`
	CashChange    float64  `json:"cashChange"`
	// Spend is payroll + opex.
	Spend float64 `json:"spend"`
}

// Deltas computes period-over-period changes for a row sequence.
func Deltas(rows []forecast.MonthRow) []RowDelta {
	out := make([]RowDelta, 0, len(rows))
	for i, r := range rows {
		prevArr := r.OpeningArr
		prevRevenue := r.OpeningArr / 12
		prevCash := r.CashEnd - (r.Collections - r.Payroll - r.Opex + r.Investment)
		if i > 0 {
			prevRevenue = rows[i-1].Revenue
			prevCash = rows[i-1].CashEnd
		}

		d := RowDelta{
			M:             r.M,
			ArrChange:     r.ClosingArr - prevArr,
			RevenueChange: r.Revenue - prevRevenue,
			CashChange:    r.CashEnd - prevCash,
			Spend:         r.Payroll + r.Opex,
		}
		if prevArr > 0 {
			pct := decimal.NewFromFloat((r.ClosingArr - prevArr) / prevArr * 100).Round(2).InexactFloat64()
			d.ArrChangePct = &pct
		}
		out = append(out, d)
	}
	return out
}
