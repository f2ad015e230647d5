package blend

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aquaform/internal/models"
)

func sel(id string, n models.NutrientProfile, cost, weight float64) models.SelectedIngredient {
	return models.SelectedIngredient{
		Ingredient: models.Ingredient{ID: id, Name: id, Nutrients: n, CostPerKg: cost},
		Weight:     weight,
	}
}

func TestCalculateLinearBlend(t *testing.T) {
	a := sel("a", models.NutrientProfile{Protein: 65, Lipids: 10}, 1.5, 40)
	b := sel("b", models.NutrientProfile{Protein: 12, Lipids: 1.5}, 0.35, 60)

	r := Calculate([]models.SelectedIngredient{a, b})

	assert.InDelta(t, 33.2, r.Nutrients.Protein, 1e-9)
	assert.InDelta(t, 10*0.4+1.5*0.6, r.Nutrients.Lipids, 1e-9)
	assert.InDelta(t, 1.5*0.4+0.35*0.6, r.TotalCost, 1e-9)
	assert.InDelta(t, 100, r.TotalWeight, 1e-9)
}

func TestCalculateEveryFieldIsWeighted(t *testing.T) {
	full := models.NutrientProfile{Protein: 10, Lipids: 20, Fiber: 30, Ash: 40, Moisture: 50, Carbohydrates: 60}
	r := Calculate([]models.SelectedIngredient{sel("x", full, 2, 50)})
	for _, n := range models.Nutrients {
		assert.InDelta(t, full.Get(n)/2, r.Nutrients.Get(n), 1e-9, "field %s", n)
	}
}

func TestCalculateDoesNotNormalize(t *testing.T) {
	ing := sel("a", models.NutrientProfile{Protein: 50}, 1, 80)
	r := Calculate([]models.SelectedIngredient{ing})
	assert.InDelta(t, 40, r.Nutrients.Protein, 1e-9)
	assert.InDelta(t, 80, r.TotalWeight, 1e-9)

	ing.Weight = 120
	r = Calculate([]models.SelectedIngredient{ing})
	assert.InDelta(t, 60, r.Nutrients.Protein, 1e-9)
}

func TestCalculateEmpty(t *testing.T) {
	assert.Equal(t, Result{}, Calculate(nil))
}

func TestCalculateIsIdempotent(t *testing.T) {
	list := []models.SelectedIngredient{
		sel("a", models.NutrientProfile{Protein: 65, Lipids: 10, Ash: 16}, 1.5, 33.3),
		sel("b", models.NutrientProfile{Protein: 48, Carbohydrates: 27}, 0.55, 41.7),
		sel("c", models.NutrientProfile{Lipids: 99.5, Moisture: 0.5}, 2.1, 25),
	}
	first := Calculate(list)
	second := Calculate(list)
	require.Equal(t, first, second)
}

func TestEvaluateWithinTolerance(t *testing.T) {
	d := Evaluate(44, 45)
	assert.True(t, d.PercentDefined)
	assert.InDelta(t, -2.222, d.Percent, 1e-3)
	assert.Equal(t, StatusGood, d.Status)
	assert.True(t, d.Good())
}

func TestEvaluateOutsideTolerance(t *testing.T) {
	d := Evaluate(30, 45)
	assert.InDelta(t, -33.333, d.Percent, 1e-3)
	assert.Equal(t, StatusUnder, d.Status)

	d = Evaluate(50, 45)
	assert.Equal(t, StatusOver, d.Status)
}

func TestEvaluateBoundaryIsExclusive(t *testing.T) {
	assert.Equal(t, StatusOver, Evaluate(105, 100).Status)
	assert.Equal(t, StatusUnder, Evaluate(95, 100).Status)
	assert.Equal(t, StatusGood, Evaluate(104.99, 100).Status)
}

func TestEvaluateZeroTarget(t *testing.T) {
	d := Evaluate(0, 0)
	assert.Equal(t, StatusGood, d.Status)
	assert.False(t, d.PercentDefined)
	assert.Zero(t, d.Percent)

	d = Evaluate(0.4, 0)
	assert.Equal(t, StatusOver, d.Status)
	assert.False(t, d.PercentDefined)
	assert.False(t, math.IsInf(d.Percent, 0) || math.IsNaN(d.Percent))
}

func TestCompareOrder(t *testing.T) {
	target := models.NutrientProfile{Protein: 45, Lipids: 20, Fiber: 2, Ash: 8, Moisture: 10, Carbohydrates: 15}
	devs := Compare(target, target)
	require.Len(t, devs, len(models.Nutrients))
	for i, d := range devs {
		assert.Equal(t, models.Nutrients[i], d.Nutrient)
		assert.Equal(t, StatusGood, d.Status)
	}
}

func TestCheckWeight(t *testing.T) {
	cases := []struct {
		total float64
		state WeightState
	}{
		{100, WeightBalanced},
		{99.5, WeightBalanced},
		{100.5, WeightBalanced},
		{80, WeightUnderweight},
		{99.4, WeightUnderweight},
		{120, WeightOverweight},
		{100.6, WeightOverweight},
	}
	for _, c := range cases {
		w := CheckWeight(c.total)
		assert.Equal(t, c.state, w.State, "total %v", c.total)
		assert.Equal(t, c.state != WeightBalanced, w.Warn(), "total %v", c.total)
	}
}

func TestAnalyze(t *testing.T) {
	target := models.NutrientProfile{Protein: 33.2}
	list := []models.SelectedIngredient{
		sel("a", models.NutrientProfile{Protein: 65}, 1.5, 40),
		sel("b", models.NutrientProfile{Protein: 12}, 0.35, 60),
	}
	rep := Analyze(list, target)
	assert.False(t, rep.Weight.Warn())
	assert.Equal(t, models.Protein, rep.Deviations[0].Nutrient)
	assert.True(t, rep.Deviations[0].Good())
}
