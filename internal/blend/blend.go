// internal/blend/blend.go
package blend

import (
	"aquaform/internal/models"
)

// Result is the aggregate of a blend.
type Result struct {
	Nutrients   models.NutrientProfile `json:"nutrients"`
	TotalCost   float64                `json:"totalCost"`   // USD per kg of feed
	TotalWeight float64                `json:"totalWeight"` // percent, nominally 100
}

// Calculate aggregates the nutrient profile and cost of a blend.
//
// Each weight is a share of a 100 unit batch and each nutrient a share of its
// own ingredient, so contributions are field*weight/100. The sum is not
// normalised when the weights do not total 100.
func Calculate(ingredients []models.SelectedIngredient) Result {
	var r Result
	for _, ing := range ingredients {
		r.TotalWeight += ing.Weight
		for _, n := range models.Nutrients {
			r.Nutrients.Set(n, r.Nutrients.Get(n)+ing.Nutrients.Get(n)*ing.Weight/100)
		}
		r.TotalCost += ing.CostPerKg * ing.Weight / 100
	}
	return r
}
