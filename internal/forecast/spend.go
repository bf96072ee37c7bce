package forecast

import "runway-forecast/internal/model"

// AcquisitionSpend is the tools + ads spend of the go-to-market teams.
type AcquisitionSpend struct {
	Sales     float64
	Marketing float64
}

func (s AcquisitionSpend) Total() float64 { return s.Sales + s.Marketing }

// Opex sums every spend bucket across all teams.
func Opex(spend map[model.Team]model.SpendBuckets) float64 {
	total := 0.0
	for _, t := range model.AllTeams {
		total += spend[t].Total()
	}
	return total
}

// SalesMarketingSpend extracts the acquisition proxy used for CAC.
// Events, freelancers and other spend count toward opex but not here.
func SalesMarketingSpend(spend map[model.Team]model.SpendBuckets) AcquisitionSpend {
	return AcquisitionSpend{
		Sales:     spend[model.TeamSales].Acquisition(),
		Marketing: spend[model.TeamMarketing].Acquisition(),
	}
}
