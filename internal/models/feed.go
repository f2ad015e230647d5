// internal/models/feed.go
package models

import (
	"fmt"
	"time"
)

// NutrientProfile is a mass-fraction composition in percent (0-100 per field).
type NutrientProfile struct {
	Protein       float64 `json:"protein" yaml:"protein"`
	Lipids        float64 `json:"lipids" yaml:"lipids"`
	Fiber         float64 `json:"fiber" yaml:"fiber"`
	Ash           float64 `json:"ash" yaml:"ash"`
	Moisture      float64 `json:"moisture" yaml:"moisture"`
	Carbohydrates float64 `json:"carbohydrates" yaml:"carbohydrates"`
}

type Category string

const (
	AnimalProtein Category = "Animal Protein"
	PlantProtein  Category = "Plant Protein"
	Oil           Category = "Oil"
	Additive      Category = "Additive"
	Cereal        Category = "Cereal"
)

// ParseCategory validates a category tag.
func ParseCategory(s string) (Category, error) {
	switch c := Category(s); c {
	case AnimalProtein, PlantProtein, Oil, Additive, Cereal:
		return c, nil
	}
	return "", fmt.Errorf("unknown ingredient category %q", s)
}

type LifeStage string

const (
	Larva      LifeStage = "Larva"
	Juvenile   LifeStage = "Juvenile"
	Adult      LifeStage = "Adult"
	Broodstock LifeStage = "Broodstock"
	GrowOut    LifeStage = "Grow-out"
)

// ParseLifeStage validates a life stage tag.
func ParseLifeStage(s string) (LifeStage, error) {
	switch l := LifeStage(s); l {
	case Larva, Juvenile, Adult, Broodstock, GrowOut:
		return l, nil
	}
	return "", fmt.Errorf("unknown life stage %q", s)
}

type Ingredient struct {
	ID        string          `json:"id" yaml:"id"`
	Name      string          `json:"name" yaml:"name"`
	Category  Category        `json:"category" yaml:"category"`
	Nutrients NutrientProfile `json:"nutrients" yaml:"nutrients"`
	CostPerKg float64         `json:"costPerKg" yaml:"cost_per_kg"` // USD
}

// SelectedIngredient is an ingredient with its share of the blend.
type SelectedIngredient struct {
	Ingredient
	Weight float64 `json:"weight"` // percent of the formula (0-100)
}

type Species struct {
	ID              string          `json:"id" yaml:"id"`
	Name            string          `json:"name" yaml:"name"`
	ScientificName  string          `json:"scientificName" yaml:"scientific_name"`
	LifeStage       LifeStage       `json:"lifeStage" yaml:"life_stage"`
	TargetNutrients NutrientProfile `json:"targetNutrients" yaml:"target_nutrients"`
	Description     string          `json:"description" yaml:"description"`
}

type Formulation struct {
	ID           string               `json:"id"`
	Name         string               `json:"name"`
	SpeciesID    string               `json:"speciesId"`
	Ingredients  []SelectedIngredient `json:"ingredients"`
	TotalCost    float64              `json:"totalCost"`
	Notes        string               `json:"notes"`
	LastModified time.Time            `json:"lastModified"`
}

// Suggestion is what an AI advisor proposes for a formula.
type Suggestion struct {
	Explanation          string               `json:"explanation"`
	SuggestedIngredients []SuggestedIngredient `json:"suggestedIngredients"`
}

type SuggestedIngredient struct {
	ID     string  `json:"id"`
	Weight float64 `json:"weight"`
}

// PoolIngredient is the slice of an ingredient sent to the advisor.
type PoolIngredient struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Nutrients NutrientProfile `json:"nutrients"`
}

type OptimizeRequest struct {
	Species   Species          `json:"species"`
	Current   NutrientProfile  `json:"current"`
	Available []PoolIngredient `json:"available"`
}
