package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aquaform/internal/catalog"
	"aquaform/internal/models"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	s, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "aquaform.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func formulation(id, species string, modified time.Time) *models.Formulation {
	lib := catalog.Builtin().Ingredients
	return &models.Formulation{
		ID:        id,
		Name:      "Formula for " + species,
		SpeciesID: species,
		Ingredients: []models.SelectedIngredient{
			{Ingredient: lib[0], Weight: 40},
			{Ingredient: lib[2], Weight: 60},
		},
		TotalCost:    0.81,
		Notes:        "grower diet",
		LastModified: modified,
	}
}

func TestSaveAndGetFormulation(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 30, 0, 123, time.UTC)

	want := formulation("f1", "s1", now)
	require.NoError(t, s.SaveFormulation(ctx, want))

	got, err := s.GetFormulation(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, want.Name, got.Name)
	assert.Equal(t, want.SpeciesID, got.SpeciesID)
	assert.Equal(t, want.Notes, got.Notes)
	assert.InDelta(t, want.TotalCost, got.TotalCost, 1e-9)
	assert.True(t, want.LastModified.Equal(got.LastModified))
	assert.Equal(t, want.Ingredients, got.Ingredients)
}

func TestSaveReplacesIngredients(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	f := formulation("f1", "s1", time.Now())
	require.NoError(t, s.SaveFormulation(ctx, f))

	f.Ingredients = f.Ingredients[:1]
	f.Ingredients[0].Weight = 100
	f.Name = "renamed"
	require.NoError(t, s.SaveFormulation(ctx, f))

	got, err := s.GetFormulation(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Name)
	require.Len(t, got.Ingredients, 1)
	assert.Equal(t, 100.0, got.Ingredients[0].Weight)
}

func TestGetFormulationsOrderAndFilter(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.SaveFormulation(ctx, formulation("old", "s1", base)))
	require.NoError(t, s.SaveFormulation(ctx, formulation("mid", "s2", base.Add(500*time.Millisecond))))
	require.NoError(t, s.SaveFormulation(ctx, formulation("new", "s1", base.Add(time.Second))))

	all, err := s.GetFormulations(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"new", "mid", "old"}, []string{all[0].ID, all[1].ID, all[2].ID})
	assert.Len(t, all[0].Ingredients, 2)

	s1, err := s.GetFormulations(ctx, "s1", 10)
	require.NoError(t, err)
	assert.Len(t, s1, 2)

	limited, err := s.GetFormulations(ctx, "", 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "new", limited[0].ID)
}

func TestNotFound(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	_, err := s.GetFormulation(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.DeleteFormulation(ctx, "missing"), ErrNotFound)
}

func TestDeleteFormulation(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	require.NoError(t, s.SaveFormulation(ctx, formulation("f1", "s1", time.Now())))

	require.NoError(t, s.DeleteFormulation(ctx, "f1"))
	_, err := s.GetFormulation(ctx, "f1")
	assert.ErrorIs(t, err, ErrNotFound)

	list, err := s.GetFormulations(ctx, "", 10)
	require.NoError(t, err)
	assert.Empty(t, list)
}
