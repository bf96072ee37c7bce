package model

// DefaultAssumptions returns the reference seed-stage scenario used by the
// wizard, the API defaults endpoint and the tests.
func DefaultAssumptions() Assumptions {
	spend := func(ads float64) SpendBuckets {
		return SpendBuckets{Tools: 5000, Ads: ads, Events: 2000, Freelancers: 3000, Other: 2000}
	}
	return Assumptions{
		HorizonMonths:             12,
		StartArrUsd:               2_400_000,
		AcvUsd:                    6_000,
		NewLogosPerMonth:          30,
		ChurnMonthly:              0.008,
		UpsellMonthly:             0.003,
		StartCashUsd:              500_000,
		CollectSplit:              CollectSplit{0.25, 0.75},
		OneOffInvestmentMonth:     3,
		OneOffInvestmentAmountUsd: 2_000_000,
		Costs: DetailedCostModel(DetailedCosts{
			HeadcountNow: map[Team]int{
				TeamRD: 8, TeamSales: 3, TeamMarketing: 2, TeamCS: 2, TeamOps: 2,
			},
			HiresNext6Months: map[Team]int{
				TeamRD: 3, TeamSales: 2, TeamMarketing: 1, TeamCS: 1, TeamOps: 0,
			},
			AvgCostPerFteUsd: map[Team]float64{
				TeamRD: 6000, TeamSales: 5000, TeamMarketing: 4000, TeamCS: 3500, TeamOps: 3500,
			},
			SpendMonthlyUsd: map[Team]SpendBuckets{
				TeamRD:        spend(0),
				TeamSales:     spend(10000),
				TeamMarketing: spend(10000),
				TeamCS:        spend(0),
				TeamOps:       spend(0),
			},
		}),
	}
}

// DefaultFlatAssumptions is DefaultAssumptions with the simplified cost model.
func DefaultFlatAssumptions() Assumptions {
	a := DefaultAssumptions()
	a.Costs = FlatCostModel(FlatCosts{
		PayrollPerMonthUsd: 220_000,
		OpexPerMonthUsd:    60_000,
	})
	return a
}
