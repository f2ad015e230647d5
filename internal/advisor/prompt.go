package advisor

import (
	"encoding/json"
	"fmt"
	"strings"

	"aquaform/internal/models"
)

const optimizeSystemPrompt = `You are an aquaculture feed nutritionist.

IMPORTANT: Always respond with valid JSON in this exact format:
{
  "explanation": "brief professional explanation citing the species' nutritional needs",
  "suggestedIngredients": [
    {"id": "ingredient id from the provided list", "weight": [number 0-100]}
  ]
}`

func optimizePrompt(req models.OptimizeRequest) (string, error) {
	target, err := json.Marshal(req.Species.TargetNutrients)
	if err != nil {
		return "", fmt.Errorf("failed to marshal target profile: %w", err)
	}
	current, err := json.Marshal(req.Current)
	if err != nil {
		return "", fmt.Errorf("failed to marshal current profile: %w", err)
	}
	pool, err := json.Marshal(req.Available)
	if err != nil {
		return "", fmt.Errorf("failed to marshal ingredient pool: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "I am formulating a feed for %s (%s, %s).\n\n",
		req.Species.Name, req.Species.ScientificName, req.Species.LifeStage)
	fmt.Fprintf(&b, "My target nutrient profile is:\n%s\n\n", target)
	fmt.Fprintf(&b, "My current nutrient profile (which might be off) is:\n%s\n\n", current)
	fmt.Fprintf(&b, "I have the following ingredients available (with their ID and nutritional composition):\n%s\n\n", pool)
	b.WriteString("Please optimize the formula to match the target nutrient profile as closely as possible " +
		"while maintaining a realistic formulation (total weight must be exactly 100%).\n")
	b.WriteString("Prioritize fulfilling Protein and Lipid requirements first.\n")
	b.WriteString("Return a list of ingredients with their suggested inclusion rates (weights).")
	return b.String(), nil
}

func insightsPrompt(speciesName string) string {
	return fmt.Sprintf("Provide a concise, 1-paragraph academic summary of the nutritional requirements "+
		"and feeding habits of %s in aquaculture. Focus on protein/lipid ratios and key micronutrients.", speciesName)
}
