package analysis

import (
	"errors"
	"math"
)

// PLGChannel is self-serve acquisition: signups converting at a monthly ARPU.
type PLGChannel struct {
	Enabled        bool    `json:"enabled" yaml:"enabled"`
	Signups        float64 `json:"signups" yaml:"signups"`
	ConversionRate float64 `json:"conversionRate" yaml:"conversion_rate"`
	ARPU           float64 `json:"arpu" yaml:"arpu"`
	ChurnRate      float64 `json:"churnRate" yaml:"churn_rate"`
	ExpansionRate  float64 `json:"expansionRate" yaml:"expansion_rate"`
}

// SalesChannel is sales-led acquisition: pipeline closing over a sales cycle.
type SalesChannel struct {
	Enabled          bool    `json:"enabled" yaml:"enabled"`
	PipelineValue    float64 `json:"pipelineValue" yaml:"pipeline_value"`
	WinRate          float64 `json:"winRate" yaml:"win_rate"`
	SalesCycleMonths float64 `json:"salesCycleMonths" yaml:"sales_cycle_months"`
	ChurnRate        float64 `json:"churnRate" yaml:"churn_rate"`
	ExpansionRate    float64 `json:"expansionRate" yaml:"expansion_rate"`
}

// PartnersChannel is partner-sourced revenue net of commission.
type PartnersChannel struct {
	Enabled                bool    `json:"enabled" yaml:"enabled"`
	PartnersActive         float64 `json:"partnersActive" yaml:"partners_active"`
	NewPartnersPerMonth    float64 `json:"newPartnersPerMonth" yaml:"new_partners_per_month"`
	AvgCustomersPerPartner float64 `json:"avgCustomersPerPartner" yaml:"avg_customers_per_partner"`
	ARPU                   float64 `json:"arpu" yaml:"arpu"`
	CommissionRate         float64 `json:"commissionRate" yaml:"commission_rate"`
	ChurnRate              float64 `json:"churnRate" yaml:"churn_rate"`
}

// ChannelMix is the input to the multi-channel MRR forecast.
type ChannelMix struct {
	Months      int             `json:"months" yaml:"months"`
	StartingMRR float64         `json:"startingMrr" yaml:"starting_mrr"`
	PLG         PLGChannel      `json:"plg" yaml:"plg"`
	Sales       SalesChannel    `json:"sales" yaml:"sales"`
	Partners    PartnersChannel `json:"partners" yaml:"partners"`
}

// ChannelRow is one month of the channel forecast, rounded to whole dollars.
type ChannelRow struct {
	Month        int     `json:"month"`
	NewMRR       float64 `json:"newMrr"`
	ExpansionMRR float64 `json:"expansionMrr"`
	ChurnMRR     float64 `json:"churnMrr"`
	NetNewMRR    float64 `json:"netNewMrr"`
	EndingMRR    float64 `json:"endingMrr"`
	ARR          float64 `json:"arr"`
}

// DefaultChannelMix seeds the channel forecast from a starting MRR.
func DefaultChannelMix(startingMRR float64) ChannelMix {
	return ChannelMix{
		Months:      24,
		StartingMRR: startingMRR,
		PLG: PLGChannel{
			Enabled: true, Signups: 5000, ConversionRate: 0.03, ARPU: 25,
			ChurnRate: 0.04, ExpansionRate: 0.03,
		},
		Sales: SalesChannel{
			Enabled: true, PipelineValue: 150000, WinRate: 0.2, SalesCycleMonths: 2,
			ChurnRate: 0.02, ExpansionRate: 0.05,
		},
		Partners: PartnersChannel{
			PartnersActive: 10, NewPartnersPerMonth: 2, AvgCustomersPerPartner: 4,
			ARPU: 40, CommissionRate: 0.2, ChurnRate: 0.03,
		},
	}
}

func (c ChannelMix) Validate() error {
	if c.Months <= 0 || c.Months > 120 {
		return errors.New("months must be in [1, 120]")
	}
	if c.StartingMRR < 0 {
		return errors.New("startingMrr must be >= 0")
	}
	if c.Sales.Enabled && c.Sales.SalesCycleMonths <= 0 {
		return errors.New("sales.salesCycleMonths must be > 0")
	}
	return nil
}

// ForecastChannels projects MRR month by month. Each enabled channel adds new
// MRR and applies its own churn/expansion rate to the running MRR balance.
func ForecastChannels(c ChannelMix) []ChannelRow {
	mrr := c.StartingMRR
	out := make([]ChannelRow, 0, c.Months)

	for month := 1; month <= c.Months; month++ {
		var newMRR, expansion, churn float64

		if c.PLG.Enabled {
			newMRR += c.PLG.Signups * c.PLG.ConversionRate * c.PLG.ARPU
			churn += mrr * c.PLG.ChurnRate
			expansion += mrr * c.PLG.ExpansionRate
		}
		if c.Sales.Enabled && c.Sales.SalesCycleMonths > 0 {
			closed := c.Sales.PipelineValue * c.Sales.WinRate / c.Sales.SalesCycleMonths
			newMRR += closed / 12
			churn += mrr * c.Sales.ChurnRate
			expansion += mrr * c.Sales.ExpansionRate
		}
		if c.Partners.Enabled {
			partners := c.Partners.PartnersActive + float64(month-1)*c.Partners.NewPartnersPerMonth
			newMRR += partners * c.Partners.AvgCustomersPerPartner * c.Partners.ARPU * (1 - c.Partners.CommissionRate)
			churn += mrr * c.Partners.ChurnRate
		}

		net := newMRR + expansion - churn
		mrr += net

		out = append(out, ChannelRow{
			Month:        month,
			NewMRR:       math.Round(newMRR),
			ExpansionMRR: math.Round(expansion),
			ChurnMRR:     math.Round(churn),
			NetNewMRR:    math.Round(net),
			EndingMRR:    math.Round(mrr),
			ARR:          math.Round(mrr * 12),
		})
	}
	return out
}
