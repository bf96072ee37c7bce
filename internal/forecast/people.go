package forecast

import (
	"math"

	"runway-forecast/internal/model"
)

// RampMonths is the window over which planned hires are spread linearly.
const RampMonths = 6

// Headcount returns per-team headcount for a month.
// Hires ramp linearly over the first RampMonths months, rounded half-up
// independently each month; month 0 is exactly now. Afterwards headcount is
// now + hires.
func Headcount(now, hires map[model.Team]int, month int) map[model.Team]int {
	out := make(map[model.Team]int, len(model.AllTeams))
	for _, t := range model.AllTeams {
		base := now[t]
		planned := hires[t]
		switch {
		case month <= 0:
			out[t] = base
		case month <= RampMonths:
			out[t] = roundHalfUp(float64(base) + float64(planned)/RampMonths*float64(month))
		default:
			out[t] = base + planned
		}
	}
	return out
}

// Payroll is the sum over teams of headcount x average monthly cost.
func Payroll(headcount map[model.Team]int, avgCost map[model.Team]float64) float64 {
	total := 0.0
	for _, t := range model.AllTeams {
		total += float64(headcount[t]) * avgCost[t]
	}
	return total
}

// TotalHeadcount sums headcount across all teams.
func TotalHeadcount(headcount map[model.Team]int) int {
	n := 0
	for _, t := range model.AllTeams {
		n += headcount[t]
	}
	return n
}

func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}
