package model

import (
	"errors"
	"fmt"
	"math"
)

// MaxHorizonMonths bounds the forecast loop for inputs arriving over the wire.
const MaxHorizonMonths = 120

// SpendBuckets is one team's monthly non-payroll spend in USD.
type SpendBuckets struct {
	Tools       float64 `json:"tools"`
	Ads         float64 `json:"ads"`
	Events      float64 `json:"events"`
	Freelancers float64 `json:"freelancers"`
	Other       float64 `json:"other"`
}

func (b SpendBuckets) Total() float64 {
	return b.Tools + b.Ads + b.Events + b.Freelancers + b.Other
}

// Acquisition is the tools + ads subset used as a proxy for acquisition spend.
func (b SpendBuckets) Acquisition() float64 {
	return b.Tools + b.Ads
}

func (b SpendBuckets) validate() error {
	for _, v := range []float64{b.Tools, b.Ads, b.Events, b.Freelancers, b.Other} {
		if !finite(v) || v < 0 {
			return errors.New("spend buckets must be >= 0")
		}
	}
	return nil
}

// CollectSplit is [in-month, previous-month] collection fractions.
type CollectSplit [2]float64

func (s CollectSplit) Current() float64  { return s[0] }
func (s CollectSplit) Previous() float64 { return s[1] }

// Normalized rescales the split to sum to 1. A zero split is returned as-is.
func (s CollectSplit) Normalized() CollectSplit {
	sum := s[0] + s[1]
	if sum <= 0 {
		return s
	}
	return CollectSplit{s[0] / sum, s[1] / sum}
}

// CostModelKind selects how monthly payroll and opex are derived.
type CostModelKind string

const (
	// CostModelDetailed derives payroll from a headcount ramp and opex from per-team spend buckets.
	CostModelDetailed CostModelKind = "detailed"
	// CostModelFlat uses constant monthly payroll and opex figures.
	CostModelFlat CostModelKind = "flat"
)

// DetailedCosts is the team-level cost model.
// Teams missing from a map count as zero.
type DetailedCosts struct {
	HeadcountNow     map[Team]int          `json:"headcountNow"`
	HiresNext6Months map[Team]int          `json:"hiresNext6Months"`
	AvgCostPerFteUsd map[Team]float64      `json:"avgCostPerFteUsd"`
	SpendMonthlyUsd  map[Team]SpendBuckets `json:"spendMonthlyUsd"`
}

// FlatCosts is the simplified scalar cost model.
type FlatCosts struct {
	PayrollPerMonthUsd float64 `json:"payrollPerMonthUsd"`
	OpexPerMonthUsd    float64 `json:"opexPerMonthUsd"`
}

// CostModel is a tagged variant: exactly one of Detailed or Flat is set,
// matching Kind.
type CostModel struct {
	Kind     CostModelKind  `json:"kind"`
	Detailed *DetailedCosts `json:"detailed,omitempty"`
	Flat     *FlatCosts     `json:"flat,omitempty"`
}

func DetailedCostModel(d DetailedCosts) CostModel {
	return CostModel{Kind: CostModelDetailed, Detailed: &d}
}

func FlatCostModel(f FlatCosts) CostModel {
	return CostModel{Kind: CostModelFlat, Flat: &f}
}

func (c CostModel) Validate() error {
	switch c.Kind {
	case CostModelDetailed:
		if c.Detailed == nil {
			return errors.New("costs.detailed is required for kind \"detailed\"")
		}
		return c.Detailed.validate()
	case CostModelFlat:
		if c.Flat == nil {
			return errors.New("costs.flat is required for kind \"flat\"")
		}
		if !finite(c.Flat.PayrollPerMonthUsd) || c.Flat.PayrollPerMonthUsd < 0 {
			return errors.New("payrollPerMonthUsd must be >= 0")
		}
		if !finite(c.Flat.OpexPerMonthUsd) || c.Flat.OpexPerMonthUsd < 0 {
			return errors.New("opexPerMonthUsd must be >= 0")
		}
		return nil
	default:
		return fmt.Errorf("unknown cost model kind %q", c.Kind)
	}
}

func (d *DetailedCosts) validate() error {
	for t, n := range d.HeadcountNow {
		if !t.Valid() {
			return fmt.Errorf("headcountNow: unknown team %q", t)
		}
		if n < 0 {
			return fmt.Errorf("headcountNow[%s] must be >= 0", t)
		}
	}
	for t, n := range d.HiresNext6Months {
		if !t.Valid() {
			return fmt.Errorf("hiresNext6Months: unknown team %q", t)
		}
		if n < 0 {
			return fmt.Errorf("hiresNext6Months[%s] must be >= 0", t)
		}
	}
	for t, v := range d.AvgCostPerFteUsd {
		if !t.Valid() {
			return fmt.Errorf("avgCostPerFteUsd: unknown team %q", t)
		}
		if !finite(v) || v < 0 {
			return fmt.Errorf("avgCostPerFteUsd[%s] must be >= 0", t)
		}
	}
	for t, b := range d.SpendMonthlyUsd {
		if !t.Valid() {
			return fmt.Errorf("spendMonthlyUsd: unknown team %q", t)
		}
		if err := b.validate(); err != nil {
			return fmt.Errorf("spendMonthlyUsd[%s]: %w", t, err)
		}
	}
	return nil
}

// Assumptions is the immutable input to one forecast run.
// Rates are monthly fractions (0.008 = 0.8%/month).
type Assumptions struct {
	HorizonMonths int `json:"horizonMonths"`

	StartArrUsd      float64 `json:"startArrUsd"`
	AcvUsd           float64 `json:"acvUsd"`
	NewLogosPerMonth float64 `json:"newLogosPerMonth"`
	ChurnMonthly     float64 `json:"churnMonthly"`
	UpsellMonthly    float64 `json:"upsellMonthly"`

	StartCashUsd float64      `json:"startCashUsd"`
	CollectSplit CollectSplit `json:"collectSplit"`

	// OneOffInvestmentMonth of 0 means no investment event.
	OneOffInvestmentMonth     int     `json:"oneOffInvestmentMonth"`
	OneOffInvestmentAmountUsd float64 `json:"oneOffInvestmentAmountUsd"`

	Costs CostModel `json:"costs"`
}

// Validate rejects inputs outside the engine's documented domain.
// It is called at every boundary before a plan is built.
func (a Assumptions) Validate() error {
	if a.HorizonMonths <= 0 {
		return errors.New("horizonMonths must be > 0")
	}
	if a.HorizonMonths > MaxHorizonMonths {
		return fmt.Errorf("horizonMonths must be <= %d", MaxHorizonMonths)
	}
	if !finite(a.StartArrUsd) || a.StartArrUsd < 0 {
		return errors.New("startArrUsd must be >= 0")
	}
	if !finite(a.AcvUsd) || a.AcvUsd <= 0 {
		return errors.New("acvUsd must be > 0")
	}
	if !finite(a.NewLogosPerMonth) || a.NewLogosPerMonth < 0 {
		return errors.New("newLogosPerMonth must be >= 0")
	}
	if !fraction(a.ChurnMonthly) {
		return errors.New("churnMonthly must be in [0, 1]")
	}
	if !fraction(a.UpsellMonthly) {
		return errors.New("upsellMonthly must be in [0, 1]")
	}
	if !finite(a.StartCashUsd) || a.StartCashUsd < 0 {
		return errors.New("startCashUsd must be >= 0")
	}
	if !fraction(a.CollectSplit[0]) || !fraction(a.CollectSplit[1]) {
		return errors.New("collectSplit values must be in [0, 1]")
	}
	if sum := a.CollectSplit[0] + a.CollectSplit[1]; sum <= 0 || sum > 1+splitTolerance {
		return errors.New("collectSplit must sum to a value in (0, 1]")
	}
	if a.OneOffInvestmentMonth < 0 || a.OneOffInvestmentMonth > a.HorizonMonths {
		return fmt.Errorf("oneOffInvestmentMonth must be in [0, %d]", a.HorizonMonths)
	}
	if !finite(a.OneOffInvestmentAmountUsd) || a.OneOffInvestmentAmountUsd < 0 {
		return errors.New("oneOffInvestmentAmountUsd must be >= 0")
	}
	if err := a.Costs.Validate(); err != nil {
		return fmt.Errorf("costs invalid: %w", err)
	}
	return nil
}

const splitTolerance = 1e-9

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

func fraction(x float64) bool {
	return finite(x) && x >= 0 && x <= 1
}
