package formula

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aquaform/internal/catalog"
	"aquaform/internal/models"
)

func mustIngredient(t *testing.T, c *catalog.Catalog, id string) models.Ingredient {
	t.Helper()
	ing, ok := c.LookupIngredient(id)
	require.True(t, ok, "ingredient %s", id)
	return ing
}

func TestAddIgnoresDuplicates(t *testing.T) {
	c := catalog.Default()
	f := New()

	assert.True(t, f.Add(mustIngredient(t, c, "i1")))
	assert.False(t, f.Add(mustIngredient(t, c, "i1")))
	require.Equal(t, 1, f.Len())
	assert.Zero(t, f.Ingredients()[0].Weight)
}

func TestSetWeightAndRemove(t *testing.T) {
	c := catalog.Default()
	f := New()
	f.Add(mustIngredient(t, c, "i1"))
	f.Add(mustIngredient(t, c, "i3"))

	require.NoError(t, f.SetWeight("i1", 40))
	require.NoError(t, f.SetWeight("i3", 60))

	rep := f.Analyze(models.NutrientProfile{Protein: 33.2})
	assert.InDelta(t, 65*0.4+12*0.6, rep.Nutrients.Protein, 1e-9)
	assert.False(t, rep.Weight.Warn())

	assert.True(t, f.Remove("i1"))
	assert.False(t, f.Remove("i1"))
	assert.Equal(t, []string{"i3"}, ids(f.Ingredients()))
	assert.True(t, f.Analyze(models.NutrientProfile{}).Weight.Warn())
}

func TestSetWeightErrors(t *testing.T) {
	f := New()
	f.Add(catalog.Builtin().Ingredients[0])

	assert.ErrorIs(t, f.SetWeight("i9", 10), ErrUnknownIngredient)
	assert.ErrorIs(t, f.SetWeight("i1", -1), ErrInvalidWeight)
	assert.ErrorIs(t, f.SetWeight("i1", 100.5), ErrInvalidWeight)
	assert.ErrorIs(t, f.SetWeight("i1", math.NaN()), ErrInvalidWeight)
}

func TestIngredientsIsCopy(t *testing.T) {
	f := New()
	f.Add(catalog.Builtin().Ingredients[0])
	list := f.Ingredients()
	list[0].Weight = 99
	assert.Zero(t, f.Ingredients()[0].Weight)
}

func TestAvailableAndPool(t *testing.T) {
	c := catalog.Default()
	f := New()

	pool := f.Pool(c.Ingredients())
	assert.Len(t, pool, 8, "empty formula offers the whole library")

	f.Add(mustIngredient(t, c, "i2"))
	f.Add(mustIngredient(t, c, "i4"))

	pool = f.Pool(c.Ingredients())
	require.Len(t, pool, 2)
	assert.Equal(t, "i2", pool[0].ID)
	assert.Equal(t, "Soybean Meal", pool[0].Name)
	assert.Equal(t, 48.0, pool[0].Nutrients.Protein)

	avail := f.Available(c.Ingredients())
	assert.Len(t, avail, 6)
	for _, ing := range avail {
		assert.NotContains(t, []string{"i2", "i4"}, ing.ID)
	}
}

func ids(list []models.SelectedIngredient) []string {
	out := make([]string, len(list))
	for i, ing := range list {
		out[i] = ing.ID
	}
	return out
}
