// Package catalog holds the species and ingredient library the formulator
// draws from. The library is read-mostly and may be swapped at runtime when a
// catalog file is reloaded.
package catalog

import (
	"fmt"
	"sync"

	"aquaform/internal/models"
)

// Snapshot is an immutable view of the library.
type Snapshot struct {
	Species     []models.Species    `yaml:"species"`
	Ingredients []models.Ingredient `yaml:"ingredients"`
}

// Validate checks ids, enumerations and value ranges.
func (s Snapshot) Validate() error {
	seen := make(map[string]bool, len(s.Species))
	for i, sp := range s.Species {
		if sp.ID == "" {
			return fmt.Errorf("species[%d]: id is required", i)
		}
		if seen[sp.ID] {
			return fmt.Errorf("species[%d]: duplicate id %q", i, sp.ID)
		}
		seen[sp.ID] = true
		if _, err := models.ParseLifeStage(string(sp.LifeStage)); err != nil {
			return fmt.Errorf("species %q: %w", sp.ID, err)
		}
		if err := validateProfile(sp.TargetNutrients); err != nil {
			return fmt.Errorf("species %q: %w", sp.ID, err)
		}
	}

	seen = make(map[string]bool, len(s.Ingredients))
	for i, ing := range s.Ingredients {
		if ing.ID == "" {
			return fmt.Errorf("ingredients[%d]: id is required", i)
		}
		if seen[ing.ID] {
			return fmt.Errorf("ingredients[%d]: duplicate id %q", i, ing.ID)
		}
		seen[ing.ID] = true
		if _, err := models.ParseCategory(string(ing.Category)); err != nil {
			return fmt.Errorf("ingredient %q: %w", ing.ID, err)
		}
		if ing.CostPerKg < 0 {
			return fmt.Errorf("ingredient %q: negative cost %v", ing.ID, ing.CostPerKg)
		}
		if err := validateProfile(ing.Nutrients); err != nil {
			return fmt.Errorf("ingredient %q: %w", ing.ID, err)
		}
	}
	return nil
}

func validateProfile(p models.NutrientProfile) error {
	for _, n := range models.Nutrients {
		if v := p.Get(n); v < 0 || v > 100 {
			return fmt.Errorf("%s %v outside [0,100]", n, v)
		}
	}
	return nil
}

// Catalog is safe for concurrent use.
type Catalog struct {
	mu   sync.RWMutex
	snap Snapshot
}

// New returns a catalog over snap. It does not validate.
func New(snap Snapshot) *Catalog {
	return &Catalog{snap: snap}
}

// Default returns a catalog over the built-in library.
func Default() *Catalog {
	return New(Builtin())
}

// Replace swaps the whole library after validating it.
func (c *Catalog) Replace(snap Snapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	c.snap = snap
	c.mu.Unlock()
	return nil
}

// Species returns a copy of the species list.
func (c *Catalog) Species() []models.Species {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]models.Species(nil), c.snap.Species...)
}

// Ingredients returns a copy of the ingredient list.
func (c *Catalog) Ingredients() []models.Ingredient {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]models.Ingredient(nil), c.snap.Ingredients...)
}

func (c *Catalog) LookupSpecies(id string) (models.Species, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, sp := range c.snap.Species {
		if sp.ID == id {
			return sp, true
		}
	}
	return models.Species{}, false
}

func (c *Catalog) LookupIngredient(id string) (models.Ingredient, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, ing := range c.snap.Ingredients {
		if ing.ID == id {
			return ing, true
		}
	}
	return models.Ingredient{}, false
}
