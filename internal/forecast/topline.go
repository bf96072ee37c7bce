package forecast

import (
	"math"

	"runway-forecast/internal/model"
)

// ToplineResult is one month of ARR movement.
type ToplineResult struct {
	OpeningArr float64
	NewArr     float64
	ChurnArr   float64
	UpsellArr  float64
	ClosingArr float64
	Revenue    float64
	NewLogos   float64
}

// Topline computes month m's ARR bridge. Churn and upsell apply to the opening
// balance only; closing ARR is floored at zero. Revenue is closing ARR / 12.
func Topline(a model.Assumptions, month int, prevClosingArr float64) ToplineResult {
	opening := prevClosingArr
	if month == 1 {
		opening = a.StartArrUsd
	}

	newLogos := a.NewLogosPerMonth
	newArr := newLogos * a.AcvUsd
	churnArr := opening * a.ChurnMonthly
	upsellArr := opening * a.UpsellMonthly
	closing := math.Max(0, opening+newArr-churnArr+upsellArr)

	return ToplineResult{
		OpeningArr: opening,
		NewArr:     newArr,
		ChurnArr:   churnArr,
		UpsellArr:  upsellArr,
		ClosingArr: closing,
		Revenue:    closing / 12,
		NewLogos:   newLogos,
	}
}
