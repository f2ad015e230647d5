package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"aquaform/internal/blend"
	"aquaform/internal/catalog"
	"aquaform/internal/formula"
	"aquaform/internal/models"
)

var blendSpecies string

var blendCmd = &cobra.Command{
	Use:   "blend [ingredient=weight]...",
	Short: "Calculate a blend and compare it with species targets",
	Example: `  aquaform blend --species s1 i1=40 i2=60
  aquaform blend i3=70 i4=30`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, err := openCatalog()
		if err != nil {
			return err
		}
		return runBlend(cmd.OutOrStdout(), lib, blendSpecies, args)
	},
}

var speciesCmd = &cobra.Command{
	Use:   "species",
	Short: "List the species library",
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, err := openCatalog()
		if err != nil {
			return err
		}
		printSpecies(cmd.OutOrStdout(), lib.Species())
		return nil
	},
}

var ingredientsCmd = &cobra.Command{
	Use:   "ingredients",
	Short: "List the ingredient library",
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, err := openCatalog()
		if err != nil {
			return err
		}
		printIngredients(cmd.OutOrStdout(), lib.Ingredients())
		return nil
	},
}

func init() {
	blendCmd.Flags().StringVarP(&blendSpecies, "species", "s", "", "Species id to compare against")
}

// parseWeights reads id=weight pairs into a formula.
func parseWeights(lib *catalog.Catalog, args []string) (*formula.Formula, error) {
	f := formula.New()
	for _, arg := range args {
		id, raw, ok := strings.Cut(arg, "=")
		if !ok || id == "" {
			return nil, fmt.Errorf("expected ingredient=weight, got %q", arg)
		}
		weight, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("weight for %s: %w", id, err)
		}
		ing, ok := lib.LookupIngredient(id)
		if !ok {
			return nil, fmt.Errorf("%w: %s", formula.ErrUnknownIngredient, id)
		}
		if !f.Add(ing) {
			return nil, fmt.Errorf("ingredient %s listed twice", id)
		}
		if err := f.SetWeight(id, weight); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func runBlend(w io.Writer, lib *catalog.Catalog, speciesID string, args []string) error {
	f, err := parseWeights(lib, args)
	if err != nil {
		return err
	}

	var sp *models.Species
	if speciesID != "" {
		s, ok := lib.LookupSpecies(speciesID)
		if !ok {
			return fmt.Errorf("unknown species %q", speciesID)
		}
		sp = &s
	}

	res := blend.Calculate(f.Ingredients())
	for _, ing := range f.Ingredients() {
		fmt.Fprintf(w, "  %-26s %6.2f%%\n", ing.Name, ing.Weight)
	}
	fmt.Fprintln(w)

	if sp == nil {
		for _, n := range models.Nutrients {
			fmt.Fprintf(w, "%-13s %6.2f\n", n.Label(), res.Nutrients.Get(n))
		}
	} else {
		fmt.Fprintf(w, "Targets for %s (%s)\n", sp.Name, sp.LifeStage)
		for _, d := range blend.Compare(res.Nutrients, sp.TargetNutrients) {
			fmt.Fprintln(w, describe(d))
		}
	}

	check := blend.CheckWeight(res.TotalWeight)
	fmt.Fprintf(w, "\nEst. cost     $%.2f/kg\n", res.TotalCost)
	fmt.Fprintf(w, "Total weight  %.1f%% (%s)\n", check.Total, check.State)
	return nil
}

func describe(d blend.Deviation) string {
	if !d.PercentDefined {
		return fmt.Sprintf("%-13s %6.2f  target %6.2f           %s", d.Nutrient.Label(), d.Actual, d.Target, d.Status)
	}
	return fmt.Sprintf("%-13s %6.2f  target %6.2f  %+6.1f%%  %s", d.Nutrient.Label(), d.Actual, d.Target, d.Percent, d.Status)
}

func printSpecies(w io.Writer, species []models.Species) {
	for _, sp := range species {
		t := sp.TargetNutrients
		fmt.Fprintf(w, "%-4s %-20s %-24s %-10s P%.1f L%.1f C%.1f F%.1f A%.1f M%.1f\n",
			sp.ID, sp.Name, sp.ScientificName, sp.LifeStage,
			t.Protein, t.Lipids, t.Carbohydrates, t.Fiber, t.Ash, t.Moisture)
	}
}

func printIngredients(w io.Writer, ingredients []models.Ingredient) {
	for _, ing := range ingredients {
		fmt.Fprintf(w, "%-4s %-26s %-14s $%.2f/kg  protein %.1f%%\n",
			ing.ID, ing.Name, ing.Category, ing.CostPerKg, ing.Nutrients.Protein)
	}
}
