// internal/models/nutrient.go
package models

// Nutrient names one field of a NutrientProfile.
type Nutrient string

const (
	Protein       Nutrient = "protein"
	Lipids        Nutrient = "lipids"
	Carbohydrates Nutrient = "carbohydrates"
	Fiber         Nutrient = "fiber"
	Ash           Nutrient = "ash"
	Moisture      Nutrient = "moisture"
)

// Nutrients lists every field in display order.
var Nutrients = []Nutrient{Protein, Lipids, Carbohydrates, Fiber, Ash, Moisture}

// Label is the short human name used in tables and charts.
func (n Nutrient) Label() string {
	switch n {
	case Protein:
		return "Protein"
	case Lipids:
		return "Lipids"
	case Carbohydrates:
		return "Carbs"
	case Fiber:
		return "Fiber"
	case Ash:
		return "Ash"
	case Moisture:
		return "Moisture"
	}
	return string(n)
}

// Get returns the value of field n. Unknown fields read as zero.
func (p NutrientProfile) Get(n Nutrient) float64 {
	switch n {
	case Protein:
		return p.Protein
	case Lipids:
		return p.Lipids
	case Carbohydrates:
		return p.Carbohydrates
	case Fiber:
		return p.Fiber
	case Ash:
		return p.Ash
	case Moisture:
		return p.Moisture
	}
	return 0
}

// Set assigns field n.
func (p *NutrientProfile) Set(n Nutrient, v float64) {
	switch n {
	case Protein:
		p.Protein = v
	case Lipids:
		p.Lipids = v
	case Carbohydrates:
		p.Carbohydrates = v
	case Fiber:
		p.Fiber = v
	case Ash:
		p.Ash = v
	case Moisture:
		p.Moisture = v
	}
}
