package formula

import (
	"fmt"

	"aquaform/internal/models"
)

type SkipReason string

const (
	SkipUnknownIngredient SkipReason = "unknown_ingredient"
	SkipInvalidWeight     SkipReason = "invalid_weight"
	SkipDuplicate         SkipReason = "duplicate"
)

// Skipped is a suggested entry that was not applied.
type Skipped struct {
	ID     string     `json:"id"`
	Weight float64    `json:"weight"`
	Reason SkipReason `json:"reason"`
}

// Resolution is a suggestion checked against the library.
type Resolution struct {
	Explanation string                      `json:"explanation"`
	Ingredients []models.SelectedIngredient `json:"ingredients"`
	Skipped     []Skipped                   `json:"skipped,omitempty"`
}

// Resolve maps suggested ids onto library ingredients. Entries that cannot be
// used are collected in Skipped rather than dropped. If nothing survives the
// result is ErrNoUsableSuggestions.
func Resolve(s models.Suggestion, lib Lookup) (Resolution, error) {
	res := Resolution{Explanation: s.Explanation}
	seen := make(map[string]bool, len(s.SuggestedIngredients))
	for _, sug := range s.SuggestedIngredients {
		if seen[sug.ID] {
			res.Skipped = append(res.Skipped, Skipped{ID: sug.ID, Weight: sug.Weight, Reason: SkipDuplicate})
			continue
		}
		ing, ok := lib.LookupIngredient(sug.ID)
		if !ok {
			res.Skipped = append(res.Skipped, Skipped{ID: sug.ID, Weight: sug.Weight, Reason: SkipUnknownIngredient})
			continue
		}
		if !validWeight(sug.Weight) {
			res.Skipped = append(res.Skipped, Skipped{ID: sug.ID, Weight: sug.Weight, Reason: SkipInvalidWeight})
			continue
		}
		seen[sug.ID] = true
		res.Ingredients = append(res.Ingredients, models.SelectedIngredient{Ingredient: ing, Weight: sug.Weight})
	}
	if len(res.Ingredients) == 0 {
		return res, fmt.Errorf("%w (%d skipped)", ErrNoUsableSuggestions, len(res.Skipped))
	}
	return res, nil
}

// SkippedIDs lists the ids of skipped entries in order.
func (r Resolution) SkippedIDs() []string {
	ids := make([]string, len(r.Skipped))
	for i, s := range r.Skipped {
		ids[i] = s.ID
	}
	return ids
}
