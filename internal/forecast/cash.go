package forecast

import "runway-forecast/internal/model"

// Collections models a two-bucket receivables lag:
// revenue*split[0] collected in-month plus prevRevenue*split[1] from last month.
// The split is applied as given; normalization belongs to the caller.
func Collections(revenue, prevRevenue float64, split model.CollectSplit) float64 {
	return revenue*split.Current() + prevRevenue*split.Previous()
}

// Cash rolls the balance forward one month. The result may be negative.
func Cash(prevCash, collections, payroll, opex, investment float64) float64 {
	return prevCash + collections - payroll - opex + investment
}
