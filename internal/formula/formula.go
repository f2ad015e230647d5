// Package formula edits the ingredient list of a feed formula and merges AI
// suggestions into it.
package formula

import (
	"errors"
	"fmt"
	"math"

	"aquaform/internal/blend"
	"aquaform/internal/models"
)

var (
	ErrUnknownIngredient   = errors.New("unknown ingredient")
	ErrInvalidWeight       = errors.New("weight must be a number between 0 and 100")
	ErrNoUsableSuggestions = errors.New("suggestion contained no usable ingredients")
)

// Lookup resolves ingredient ids against the known library.
type Lookup interface {
	LookupIngredient(id string) (models.Ingredient, bool)
}

// Formula is an ordered ingredient list. It is not safe for concurrent use.
type Formula struct {
	ingredients []models.SelectedIngredient
}

func New(ingredients ...models.SelectedIngredient) *Formula {
	return &Formula{ingredients: append([]models.SelectedIngredient(nil), ingredients...)}
}

// Ingredients returns a copy of the current list.
func (f *Formula) Ingredients() []models.SelectedIngredient {
	return append([]models.SelectedIngredient(nil), f.ingredients...)
}

func (f *Formula) Len() int { return len(f.ingredients) }

func (f *Formula) Has(id string) bool {
	return f.index(id) >= 0
}

func (f *Formula) index(id string) int {
	for i, ing := range f.ingredients {
		if ing.ID == id {
			return i
		}
	}
	return -1
}

// Add appends ing at weight 0. It reports false if ing is already present.
func (f *Formula) Add(ing models.Ingredient) bool {
	if f.Has(ing.ID) {
		return false
	}
	f.ingredients = append(f.ingredients, models.SelectedIngredient{Ingredient: ing})
	return true
}

// Remove drops id and reports whether it was present.
func (f *Formula) Remove(id string) bool {
	i := f.index(id)
	if i < 0 {
		return false
	}
	f.ingredients = append(f.ingredients[:i], f.ingredients[i+1:]...)
	return true
}

// SetWeight changes the inclusion weight of id.
func (f *Formula) SetWeight(id string, weight float64) error {
	if !validWeight(weight) {
		return fmt.Errorf("%w: %v", ErrInvalidWeight, weight)
	}
	i := f.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s not in formula", ErrUnknownIngredient, id)
	}
	f.ingredients[i].Weight = weight
	return nil
}

func (f *Formula) Clear() { f.ingredients = nil }

// Analyze runs the blend calculator against target.
func (f *Formula) Analyze(target models.NutrientProfile) blend.Report {
	return blend.Analyze(f.ingredients, target)
}

// Available filters library down to ingredients not yet in the formula.
func (f *Formula) Available(library []models.Ingredient) []models.Ingredient {
	var out []models.Ingredient
	for _, ing := range library {
		if !f.Has(ing.ID) {
			out = append(out, ing)
		}
	}
	return out
}

// Pool is the candidate list offered to an advisor: the formula's own
// ingredients once any are chosen, otherwise the whole library.
func (f *Formula) Pool(library []models.Ingredient) []models.PoolIngredient {
	src := library
	if len(f.ingredients) > 0 {
		src = make([]models.Ingredient, len(f.ingredients))
		for i, ing := range f.ingredients {
			src[i] = ing.Ingredient
		}
	}
	pool := make([]models.PoolIngredient, len(src))
	for i, ing := range src {
		pool[i] = models.PoolIngredient{ID: ing.ID, Name: ing.Name, Nutrients: ing.Nutrients}
	}
	return pool
}

// Replace swaps the list wholesale with a resolved suggestion.
func (f *Formula) Replace(res Resolution) {
	f.ingredients = append([]models.SelectedIngredient(nil), res.Ingredients...)
}

func validWeight(w float64) bool {
	return !math.IsNaN(w) && !math.IsInf(w, 0) && w >= 0 && w <= 100
}
