package forecast

import (
	"encoding/json"
	"fmt"
	"math"
)

// InfinitySymbol is the wire form of the runway and lifetime sentinels.
const InfinitySymbol = "∞"

// MonthRow is one month of forecast output.
// This is the primary artifact for "what happens" in a plan.
type MonthRow struct {
	M int `json:"m"`

	OpeningArr float64 `json:"openingArr"`
	NewArr     float64 `json:"newArr"`
	ChurnArr   float64 `json:"churnArr"`
	UpsellArr  float64 `json:"upsellArr"`
	ClosingArr float64 `json:"closingArr"`

	Revenue     float64 `json:"revenue"`
	Collections float64 `json:"collections"`

	Payroll    float64 `json:"payroll"`
	Opex       float64 `json:"opex"`
	Investment float64 `json:"investment"`

	// Burn is payroll + opex - collections; negative when cash-generative.
	Burn    float64 `json:"burn"`
	CashEnd float64 `json:"cashEnd"`

	NewLogos float64 `json:"newLogos"`
	// Headcount is zero under the flat cost model.
	Headcount int `json:"headcount"`
}

// PlanSummary holds the derived KPIs for a finished row sequence.
type PlanSummary struct {
	ArrEnd       float64 `json:"arrEnd"`
	RevenueNext  float64 `json:"revenueNext"`
	BurnNext     float64 `json:"burnNext"`
	CashEnd      float64 `json:"cashEnd"`
	RunwayMonths Runway  `json:"runwayMonths"`

	NRRPct float64  `json:"nrrPct"`
	LTV    Lifetime `json:"ltv"`
	// CAC and LTVCAC are nil when their denominator is zero. LTVCAC is
	// unbounded when LTV is.
	CAC          *float64 `json:"cac"`
	LTVCAC       *Ratio   `json:"ltvCac"`
	BurnMultiple *Ratio   `json:"burnMultiple"`
}

// Plan is the full result of one forecast run.
type Plan struct {
	Rows    []MonthRow  `json:"rows"`
	Summary PlanSummary `json:"summary"`
}

// Last returns the final row, or false for an empty plan.
func (p *Plan) Last() (MonthRow, bool) {
	if p == nil || len(p.Rows) == 0 {
		return MonthRow{}, false
	}
	return p.Rows[len(p.Rows)-1], true
}

// Runway is a whole number of months, or infinite when the business is not burning.
type Runway struct {
	Months   int
	Infinite bool
}

func FiniteRunway(months int) Runway { return Runway{Months: months} }

func InfiniteRunway() Runway { return Runway{Infinite: true} }

func (r Runway) String() string {
	if r.Infinite {
		return InfinitySymbol
	}
	return fmt.Sprintf("%d", r.Months)
}

func (r Runway) MarshalJSON() ([]byte, error) {
	if r.Infinite {
		return json.Marshal(InfinitySymbol)
	}
	return json.Marshal(r.Months)
}

func (r *Runway) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if s != InfinitySymbol {
			return fmt.Errorf("invalid runway %q", s)
		}
		*r = InfiniteRunway()
		return nil
	}
	var n int
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("invalid runway: %w", err)
	}
	*r = FiniteRunway(n)
	return nil
}

// Lifetime is a dollar value that may be unbounded (LTV with zero churn).
type Lifetime struct {
	Value     float64
	Unbounded bool
}

func BoundedLifetime(v float64) Lifetime { return Lifetime{Value: v} }

func UnboundedLifetime() Lifetime { return Lifetime{Unbounded: true} }

// Float returns +Inf for an unbounded lifetime.
func (l Lifetime) Float() float64 {
	if l.Unbounded {
		return math.Inf(1)
	}
	return l.Value
}

func (l Lifetime) MarshalJSON() ([]byte, error) {
	return marshalUnbounded(l.Value, l.Unbounded)
}

func (l *Lifetime) UnmarshalJSON(b []byte) error {
	v, unbounded, err := unmarshalUnbounded(b)
	if err != nil {
		return fmt.Errorf("invalid lifetime: %w", err)
	}
	*l = Lifetime{Value: v, Unbounded: unbounded}
	return nil
}

// Ratio is a dimensionless KPI that may be unbounded, e.g. LTV/CAC with an
// unbounded LTV or a burn multiple with no net new ARR.
type Ratio struct {
	Value     float64
	Unbounded bool
}

func BoundedRatio(v float64) Ratio { return Ratio{Value: v} }

func UnboundedRatio() Ratio { return Ratio{Unbounded: true} }

// Float returns +Inf for an unbounded ratio.
func (r Ratio) Float() float64 {
	if r.Unbounded {
		return math.Inf(1)
	}
	return r.Value
}

func (r Ratio) MarshalJSON() ([]byte, error) {
	return marshalUnbounded(r.Value, r.Unbounded)
}

func (r *Ratio) UnmarshalJSON(b []byte) error {
	v, unbounded, err := unmarshalUnbounded(b)
	if err != nil {
		return fmt.Errorf("invalid ratio: %w", err)
	}
	*r = Ratio{Value: v, Unbounded: unbounded}
	return nil
}

func marshalUnbounded(v float64, unbounded bool) ([]byte, error) {
	if unbounded {
		return json.Marshal(InfinitySymbol)
	}
	return json.Marshal(v)
}

func unmarshalUnbounded(b []byte) (float64, bool, error) {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if s != InfinitySymbol {
			return 0, false, fmt.Errorf("unexpected %q", s)
		}
		return 0, true, nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return 0, false, err
	}
	return v, false, nil
}
