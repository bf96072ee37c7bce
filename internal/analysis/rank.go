package analysis

import (
	"sort"

	"runway-forecast/internal/forecast"
)

// NamedPlan is one scenario variation and its result.
type NamedPlan struct {
	Name string
	Plan *forecast.Plan
}

type RankedPlan struct {
	Rank int
	NamedPlan
}

// RankByRunway orders plans by survivability: infinite runway first, then
// longest finite runway, ties broken by ending ARR. Nil plans are dropped.
func RankByRunway(plans []NamedPlan) []RankedPlan {
	out := make([]RankedPlan, 0, len(plans))
	for _, p := range plans {
		if p.Plan == nil {
			continue
		}
		out = append(out, RankedPlan{NamedPlan: p})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return runwayLess(out[j].Plan.Summary, out[i].Plan.Summary)
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

// runwayLess reports whether a ranks strictly below b.
func runwayLess(a, b forecast.PlanSummary) bool {
	ra, rb := a.RunwayMonths, b.RunwayMonths
	if ra.Infinite != rb.Infinite {
		return rb.Infinite
	}
	if !ra.Infinite && ra.Months != rb.Months {
		return ra.Months < rb.Months
	}
	return a.ArrEnd < b.ArrEnd
}
