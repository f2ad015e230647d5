// internal/blend/tolerance.go
package blend

import (
	"math"

	"aquaform/internal/models"
)

const (
	// TolerancePercent is the largest relative deviation (exclusive) still
	// counted as on target.
	TolerancePercent = 5.0

	WeightTarget = 100.0
	// WeightSlack is the inclusive band around WeightTarget treated as complete.
	WeightSlack = 0.5
)

type Status string

const (
	StatusGood  Status = "good"
	StatusOver  Status = "over"
	StatusUnder Status = "under"
)

// Deviation compares one actual nutrient value against its target.
type Deviation struct {
	Nutrient models.Nutrient `json:"nutrient"`
	Actual   float64         `json:"actual"`
	Target   float64         `json:"target"`
	Diff     float64         `json:"diff"`
	// Percent is Diff relative to Target. It is zero and PercentDefined is
	// false when Target is zero.
	Percent        float64 `json:"percent"`
	PercentDefined bool    `json:"percentDefined"`
	Status         Status  `json:"status"`
}

// Good reports whether the value is within tolerance.
func (d Deviation) Good() bool { return d.Status == StatusGood }

// Evaluate computes the deviation of actual from target.
//
// A zero target has no relative deviation: the value is good only when actual
// is also zero.
func Evaluate(actual, target float64) Deviation {
	d := Deviation{Actual: actual, Target: target, Diff: actual - target}
	if target == 0 {
		switch {
		case actual == 0:
			d.Status = StatusGood
		case actual > 0:
			d.Status = StatusOver
		default:
			d.Status = StatusUnder
		}
		return d
	}
	d.Percent = d.Diff / target * 100
	d.PercentDefined = true
	switch {
	case math.Abs(d.Percent) < TolerancePercent:
		d.Status = StatusGood
	case d.Diff > 0:
		d.Status = StatusOver
	default:
		d.Status = StatusUnder
	}
	return d
}

// Compare evaluates every nutrient in display order.
func Compare(actual, target models.NutrientProfile) []Deviation {
	out := make([]Deviation, 0, len(models.Nutrients))
	for _, n := range models.Nutrients {
		d := Evaluate(actual.Get(n), target.Get(n))
		d.Nutrient = n
		out = append(out, d)
	}
	return out
}

type WeightState string

const (
	WeightBalanced    WeightState = "balanced"
	WeightUnderweight WeightState = "underweight"
	WeightOverweight  WeightState = "overweight"
)

// WeightCheck is the completeness indicator for a formula.
type WeightCheck struct {
	Total float64     `json:"total"`
	State WeightState `json:"state"`
}

// Warn reports whether the total should be flagged.
func (w WeightCheck) Warn() bool { return w.State != WeightBalanced }

// CheckWeight classifies a total weight against [99.5, 100.5].
func CheckWeight(total float64) WeightCheck {
	w := WeightCheck{Total: total}
	switch {
	case total < WeightTarget-WeightSlack:
		w.State = WeightUnderweight
	case total > WeightTarget+WeightSlack:
		w.State = WeightOverweight
	default:
		w.State = WeightBalanced
	}
	return w
}

// Report bundles everything a view needs for one blend.
type Report struct {
	Result
	Deviations []Deviation `json:"deviations"`
	Weight     WeightCheck `json:"weight"`
}

// Analyze calculates the blend and compares it against target.
func Analyze(ingredients []models.SelectedIngredient, target models.NutrientProfile) Report {
	r := Calculate(ingredients)
	return Report{
		Result:     r,
		Deviations: Compare(r.Nutrients, target),
		Weight:     CheckWeight(r.TotalWeight),
	}
}
