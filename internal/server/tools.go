// internal/server/tools.go
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"aquaform/internal/advisor"
	"aquaform/internal/blend"
	"aquaform/internal/formula"
	"aquaform/internal/models"
	"aquaform/internal/storage"
)

var (
	errBadParams = errors.New("invalid parameters")
	errNotFound  = errors.New("not found")
	errNoStore   = errors.New("formulation storage is disabled")
)

type IngredientParam struct {
	ID     string  `json:"id" description:"Catalog ingredient id"`
	Weight float64 `json:"weight" description:"Inclusion weight in percent (0-100)"`
}

type BlendParams struct {
	SpeciesID   string            `json:"species_id,omitempty" description:"Species whose targets the blend is compared against"`
	Ingredients []IngredientParam `json:"ingredients" description:"Ingredients and their inclusion weights"`
}

type SpeciesParams struct {
	SpeciesID string `json:"species_id" description:"Species id"`
}

type SaveParams struct {
	Name        string            `json:"name,omitempty" description:"Formulation name (defaults to 'Formula for <species>')"`
	SpeciesID   string            `json:"species_id" description:"Species the formulation is for"`
	Ingredients []IngredientParam `json:"ingredients" description:"Ingredients and their inclusion weights"`
	Notes       string            `json:"notes,omitempty" description:"Free-form notes"`
}

type GetFormulationsParams struct {
	SpeciesID string `json:"species_id,omitempty" description:"Only formulations for this species"`
	Limit     int    `json:"limit,omitempty" description:"Maximum number of formulations to return"`
}

type FormulationParams struct {
	ID string `json:"id" description:"Formulation id"`
}

type BlendResponse struct {
	Nutrients   models.NutrientProfile `json:"nutrients"`
	TotalCost   float64                `json:"totalCost"`
	TotalWeight float64                `json:"totalWeight"`
	Weight      blend.WeightCheck      `json:"weight"`
	Deviations  []blend.Deviation      `json:"deviations,omitempty"`
}

// OptimizeResponse carries the applied mix. When Applied is false the
// suggestion had nothing usable and Ingredients is the request's mix.
type OptimizeResponse struct {
	Applied     bool                        `json:"applied"`
	Explanation string                      `json:"explanation"`
	Ingredients []models.SelectedIngredient `json:"ingredients"`
	Skipped     []formula.Skipped           `json:"skipped,omitempty"`
	Blend       BlendResponse               `json:"blend"`
}

// extractParams decodes the request arguments into target.
func extractParams(req *protocol.CallToolRequest, target interface{}) error {
	jsonBytes, err := json.Marshal(req.Arguments)
	if err != nil {
		return fmt.Errorf("%w: %v", errBadParams, err)
	}
	if err := json.Unmarshal(jsonBytes, target); err != nil {
		return fmt.Errorf("%w: %v", errBadParams, err)
	}
	return nil
}

// statusFor maps a tool error to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadParams),
		errors.Is(err, formula.ErrInvalidWeight),
		errors.Is(err, formula.ErrUnknownIngredient):
		return http.StatusBadRequest
	case errors.Is(err, errNotFound), errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, advisor.ErrUnavailable), errors.Is(err, errNoStore):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *FeedServer) species(id string) (models.Species, error) {
	if id == "" {
		return models.Species{}, fmt.Errorf("%w: species_id is required", errBadParams)
	}
	sp, ok := s.catalog.LookupSpecies(id)
	if !ok {
		return models.Species{}, fmt.Errorf("species %q: %w", id, errNotFound)
	}
	return sp, nil
}

// selection resolves ingredient params against the catalog.
func (s *FeedServer) selection(params []IngredientParam) (*formula.Formula, error) {
	f := formula.New()
	for _, p := range params {
		ing, ok := s.catalog.LookupIngredient(p.ID)
		if !ok {
			return nil, fmt.Errorf("%w: %s", formula.ErrUnknownIngredient, p.ID)
		}
		if !f.Add(ing) {
			return nil, fmt.Errorf("%w: duplicate ingredient %s", errBadParams, p.ID)
		}
		if err := f.SetWeight(p.ID, p.Weight); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func blendResponse(f *formula.Formula, target *models.NutrientProfile) BlendResponse {
	res := blend.Calculate(f.Ingredients())
	out := BlendResponse{
		Nutrients:   res.Nutrients,
		TotalCost:   res.TotalCost,
		TotalWeight: res.TotalWeight,
		Weight:      blend.CheckWeight(res.TotalWeight),
	}
	if target != nil {
		out.Deviations = blend.Compare(res.Nutrients, *target)
	}
	return out
}

func (s *FeedServer) handleListSpecies(_ context.Context, _ *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	return s.createJSONResponse(s.catalog.Species())
}

func (s *FeedServer) handleListIngredients(_ context.Context, _ *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	return s.createJSONResponse(s.catalog.Ingredients())
}

func (s *FeedServer) handleCalculateBlend(_ context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params BlendParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	f, err := s.selection(params.Ingredients)
	if err != nil {
		return nil, err
	}

	var target *models.NutrientProfile
	if params.SpeciesID != "" {
		sp, err := s.species(params.SpeciesID)
		if err != nil {
			return nil, err
		}
		target = &sp.TargetNutrients
	}
	return s.createJSONResponse(blendResponse(f, target))
}

func (s *FeedServer) handleOptimizeFormula(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params BlendParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	sp, err := s.species(params.SpeciesID)
	if err != nil {
		return nil, err
	}
	f, err := s.selection(params.Ingredients)
	if err != nil {
		return nil, err
	}
	current := blend.Calculate(f.Ingredients())
	sug, err := s.advisor.Optimize(ctx, models.OptimizeRequest{
		Species:   sp,
		Current:   current.Nutrients,
		Available: f.Pool(s.catalog.Ingredients()),
	})
	if err != nil {
		return nil, fmt.Errorf("optimize: %w", err)
	}

	res, err := formula.Resolve(*sug, s.catalog)
	if len(res.Skipped) > 0 {
		s.logger.Warn("suggestion entries skipped",
			zap.String("species", sp.ID),
			zap.Strings("ids", res.SkippedIDs()))
	}
	applied := err == nil
	if applied {
		f.Replace(res)
	} else if !errors.Is(err, formula.ErrNoUsableSuggestions) {
		return nil, err
	}

	return s.createJSONResponse(OptimizeResponse{
		Applied:     applied,
		Explanation: res.Explanation,
		Ingredients: f.Ingredients(),
		Skipped:     res.Skipped,
		Blend:       blendResponse(f, &sp.TargetNutrients),
	})
}

func (s *FeedServer) handleSpeciesInsights(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params SpeciesParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	sp, err := s.species(params.SpeciesID)
	if err != nil {
		return nil, err
	}
	text, err := s.advisor.Insights(ctx, sp.Name)
	if err != nil {
		return nil, fmt.Errorf("insights: %w", err)
	}
	return s.createJSONResponse(map[string]string{
		"species":  sp.ID,
		"insights": text,
	})
}

func (s *FeedServer) handleSaveFormulation(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	if s.store == nil {
		return nil, errNoStore
	}
	var params SaveParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	sp, err := s.species(params.SpeciesID)
	if err != nil {
		return nil, err
	}
	f, err := s.selection(params.Ingredients)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(params.Name)
	if name == "" {
		name = "Formula for " + sp.Name
	}
	rec := &models.Formulation{
		ID:           uuid.NewString(),
		Name:         name,
		SpeciesID:    sp.ID,
		Ingredients:  f.Ingredients(),
		TotalCost:    blend.Calculate(f.Ingredients()).TotalCost,
		Notes:        params.Notes,
		LastModified: s.now(),
	}
	if err := s.store.SaveFormulation(ctx, rec); err != nil {
		return nil, fmt.Errorf("save formulation: %w", err)
	}
	s.logger.Info("formulation saved", zap.String("id", rec.ID), zap.String("species", sp.ID))
	return s.createJSONResponse(rec)
}

func (s *FeedServer) handleGetFormulations(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	if s.store == nil {
		return nil, errNoStore
	}
	var params GetFormulationsParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	if params.Limit <= 0 {
		params.Limit = 50
	}
	list, err := s.store.GetFormulations(ctx, params.SpeciesID, params.Limit)
	if err != nil {
		return nil, fmt.Errorf("get formulations: %w", err)
	}
	if list == nil {
		list = []*models.Formulation{}
	}
	return s.createJSONResponse(list)
}

func (s *FeedServer) handleGetFormulation(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	if s.store == nil {
		return nil, errNoStore
	}
	var params FormulationParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	if params.ID == "" {
		return nil, fmt.Errorf("%w: id is required", errBadParams)
	}
	f, err := s.store.GetFormulation(ctx, params.ID)
	if err != nil {
		return nil, fmt.Errorf("get formulation: %w", err)
	}
	return s.createJSONResponse(f)
}

func (s *FeedServer) handleDeleteFormulation(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	if s.store == nil {
		return nil, errNoStore
	}
	var params FormulationParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	if params.ID == "" {
		return nil, fmt.Errorf("%w: id is required", errBadParams)
	}
	if err := s.store.DeleteFormulation(ctx, params.ID); err != nil {
		return nil, fmt.Errorf("delete formulation: %w", err)
	}
	s.logger.Info("formulation deleted", zap.String("id", params.ID))
	return s.createJSONResponse(map[string]interface{}{
		"id":      params.ID,
		"deleted": true,
	})
}

func (s *FeedServer) handleAPIStatus(_ context.Context, _ *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	return s.createJSONResponse(map[string]interface{}{
		"server":    s.info,
		"advisor":   s.advisor.Name(),
		"available": s.advisor.Available(),
		"status":    advisor.Status(s.advisor),
		"storage":   s.store != nil,
	})
}

func (s *FeedServer) registerTools() map[string]toolHandler {
	tools := map[string]toolHandler{
		"list_species":       s.handleListSpecies,
		"list_ingredients":   s.handleListIngredients,
		"calculate_blend":    s.handleCalculateBlend,
		"optimize_formula":   s.handleOptimizeFormula,
		"species_insights":   s.handleSpeciesInsights,
		"save_formulation":   s.handleSaveFormulation,
		"get_formulations":   s.handleGetFormulations,
		"get_formulation":    s.handleGetFormulation,
		"delete_formulation": s.handleDeleteFormulation,
		"api_status":         s.handleAPIStatus,
	}
	for name := range tools {
		s.logger.Debug("registered tool", zap.String("tool", name))
	}
	return tools
}
