package advisor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"aquaform/internal/models"
)

// generator is the slice of the genai client the advisor uses.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Gemini calls Google's Gemini API with structured JSON output.
type Gemini struct {
	models  generator
	model   string
	timeout time.Duration
	logger  *zap.Logger
}

// NewGemini creates a Gemini advisor from cfg.APIKey.
func NewGemini(ctx context.Context, cfg Config, logger *zap.Logger) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return newGemini(client.Models, cfg, logger), nil
}

func newGemini(g generator, cfg Config, logger *zap.Logger) *Gemini {
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	return &Gemini{models: g, model: model, timeout: cfg.Timeout, logger: logger}
}

func (g *Gemini) Available() bool { return true }

func (g *Gemini) Name() string { return "gemini:" + g.model }

// suggestionSchema mirrors models.Suggestion.
var suggestionSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"explanation": {
			Type:        genai.TypeString,
			Description: "A brief professional explanation of why these ratios were chosen, citing specific nutritional needs of the species.",
		},
		"suggestedIngredients": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"id":     {Type: genai.TypeString},
					"weight": {Type: genai.TypeNumber, Description: "Percentage of inclusion (0-100)"},
				},
				Required: []string{"id", "weight"},
			},
		},
	},
	Required: []string{"explanation", "suggestedIngredients"},
}

func (g *Gemini) Optimize(ctx context.Context, req models.OptimizeRequest) (*models.Suggestion, error) {
	prompt, err := optimizePrompt(req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := withTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   suggestionSchema,
		Temperature:      genai.Ptr[float32](0.2),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get AI completion: %w", err)
	}
	g.logger.Debug("gemini optimize",
		zap.String("species", req.Species.Name),
		zap.Int("pool", len(req.Available)),
		zap.Duration("took", time.Since(start)))

	return decodeSuggestion(resp.Text())
}

func (g *Gemini) Insights(ctx context.Context, speciesName string) (string, error) {
	ctx, cancel := withTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(insightsPrompt(speciesName)), nil)
	if err != nil {
		return "", fmt.Errorf("failed to get species insights: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return NoInsights, nil
	}
	return text, nil
}
