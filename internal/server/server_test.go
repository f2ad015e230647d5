package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"aquaform/internal/advisor"
	"aquaform/internal/catalog"
	"aquaform/internal/models"
	"aquaform/internal/storage"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}

type stubAdvisor struct {
	suggestion *models.Suggestion
	insight    string
	err        error
	lastReq    models.OptimizeRequest
}

func (s *stubAdvisor) Available() bool { return true }
func (s *stubAdvisor) Name() string    { return "stub" }

func (s *stubAdvisor) Optimize(_ context.Context, req models.OptimizeRequest) (*models.Suggestion, error) {
	s.lastReq = req
	return s.suggestion, s.err
}

func (s *stubAdvisor) Insights(context.Context, string) (string, error) {
	return s.insight, s.err
}

type memStore struct {
	saved []*models.Formulation
}

func (m *memStore) SaveFormulation(_ context.Context, f *models.Formulation) error {
	m.saved = append(m.saved, f)
	return nil
}

func (m *memStore) GetFormulations(_ context.Context, speciesID string, limit int) ([]*models.Formulation, error) {
	var out []*models.Formulation
	for _, f := range m.saved {
		if speciesID == "" || f.SpeciesID == speciesID {
			out = append(out, f)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) GetFormulation(_ context.Context, id string) (*models.Formulation, error) {
	for _, f := range m.saved {
		if f.ID == id {
			return f, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, id)
}

func (m *memStore) DeleteFormulation(_ context.Context, id string) error {
	for i, f := range m.saved {
		if f.ID == id {
			m.saved = append(m.saved[:i], m.saved[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", storage.ErrNotFound, id)
}

func newTestServer(adv advisor.Advisor, store Store) *FeedServer {
	s := NewFeedServer(&Config{Host: "127.0.0.1", Port: 0}, catalog.Default(), adv, store, zap.NewNop())
	s.now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }
	return s
}

func call(t *testing.T, s *FeedServer, name string, args map[string]interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{"name": name, "arguments": args})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

// payload unwraps the JSON text content of a tool result into out.
func payload(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var result struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Len(t, result.Content, 1)
	assert.Equal(t, "text", result.Content[0].Type)
	require.NoError(t, json.Unmarshal([]byte(result.Content[0].Text), out))
}

func TestHTTPStatusCodes(t *testing.T) {
	s := newTestServer(advisor.Unavailable{Reason: "Missing Key"}, nil)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString("{")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, http.StatusNotFound, call(t, s, "log_meal", nil).Code)
	assert.Equal(t, http.StatusNotFound, call(t, s, "species_insights", map[string]interface{}{"species_id": "s9"}).Code)
	assert.Equal(t, http.StatusServiceUnavailable, call(t, s, "species_insights", map[string]interface{}{"species_id": "s1"}).Code)
	assert.Equal(t, http.StatusServiceUnavailable, call(t, s, "get_formulations", nil).Code)
}

func TestListCatalog(t *testing.T) {
	s := newTestServer(nil, nil)

	var species []models.Species
	payload(t, call(t, s, "list_species", nil), &species)
	assert.Len(t, species, 4)

	var ingredients []models.Ingredient
	payload(t, call(t, s, "list_ingredients", nil), &ingredients)
	assert.Len(t, ingredients, 8)
}

func TestCalculateBlend(t *testing.T) {
	s := newTestServer(nil, nil)

	var resp BlendResponse
	payload(t, call(t, s, "calculate_blend", map[string]interface{}{
		"species_id": "s1",
		"ingredients": []map[string]interface{}{
			{"id": "i1", "weight": 40},
			{"id": "i2", "weight": 60},
		},
	}), &resp)

	assert.InDelta(t, 54.8, resp.Nutrients.Protein, 1e-9)
	assert.InDelta(t, 0.93, resp.TotalCost, 1e-9)
	assert.Equal(t, "balanced", string(resp.Weight.State))
	require.Len(t, resp.Deviations, len(models.Nutrients))
	assert.Equal(t, models.Protein, resp.Deviations[0].Nutrient)
}

func TestCalculateBlendRejectsBadInput(t *testing.T) {
	s := newTestServer(nil, nil)

	rec := call(t, s, "calculate_blend", map[string]interface{}{
		"ingredients": []map[string]interface{}{{"id": "i99", "weight": 10}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(t, s, "calculate_blend", map[string]interface{}{
		"ingredients": []map[string]interface{}{{"id": "i1", "weight": 140}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(t, s, "calculate_blend", map[string]interface{}{
		"ingredients": []map[string]interface{}{{"id": "i1", "weight": 10}, {"id": "i1", "weight": 20}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOptimizeFormulaReportsSkipped(t *testing.T) {
	adv := &stubAdvisor{suggestion: &models.Suggestion{
		Explanation: "More fish meal.",
		SuggestedIngredients: []models.SuggestedIngredient{
			{ID: "i1", Weight: 70},
			{ID: "zz", Weight: 30},
		},
	}}
	s := newTestServer(adv, nil)

	var resp OptimizeResponse
	payload(t, call(t, s, "optimize_formula", map[string]interface{}{"species_id": "s1"}), &resp)

	assert.True(t, resp.Applied)
	assert.Equal(t, "More fish meal.", resp.Explanation)
	require.Len(t, resp.Ingredients, 1)
	assert.Equal(t, "i1", resp.Ingredients[0].ID)
	require.Len(t, resp.Skipped, 1)
	assert.Equal(t, "zz", resp.Skipped[0].ID)
	assert.Equal(t, "underweight", string(resp.Blend.Weight.State))
	assert.Len(t, adv.lastReq.Available, 8, "empty formula offers the whole catalog")
}

func TestOptimizeFormulaFailures(t *testing.T) {
	adv := &stubAdvisor{err: errors.New("boom")}
	s := newTestServer(adv, nil)
	assert.Equal(t, http.StatusInternalServerError,
		call(t, s, "optimize_formula", map[string]interface{}{"species_id": "s1"}).Code)

	s = newTestServer(advisor.Unavailable{}, nil)
	assert.Equal(t, http.StatusServiceUnavailable,
		call(t, s, "optimize_formula", map[string]interface{}{"species_id": "s1"}).Code)

	s = newTestServer(nil, nil)
	assert.Equal(t, http.StatusBadRequest,
		call(t, s, "optimize_formula", map[string]interface{}{}).Code)
}

func TestSaveAndGetFormulations(t *testing.T) {
	store := &memStore{}
	s := newTestServer(nil, store)

	var saved models.Formulation
	payload(t, call(t, s, "save_formulation", map[string]interface{}{
		"species_id":  "s3",
		"ingredients": []map[string]interface{}{{"id": "i3", "weight": 100}},
	}), &saved)

	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, "Formula for Nile Tilapia", saved.Name)
	assert.InDelta(t, 0.35, saved.TotalCost, 1e-9)
	require.Len(t, store.saved, 1)

	var list []models.Formulation
	payload(t, call(t, s, "get_formulations", map[string]interface{}{"species_id": "s3"}), &list)
	require.Len(t, list, 1)
	assert.Equal(t, saved.ID, list[0].ID)

	payload(t, call(t, s, "get_formulations", map[string]interface{}{"species_id": "s1"}), &list)
	assert.Empty(t, list)
}

func TestAPIStatus(t *testing.T) {
	s := newTestServer(advisor.Unavailable{Reason: "Missing Key"}, &memStore{})

	var status struct {
		Available bool   `json:"available"`
		Status    string `json:"status"`
		Storage   bool   `json:"storage"`
		Server    struct {
			Name string `json:"name"`
		} `json:"server"`
	}
	payload(t, call(t, s, "api_status", nil), &status)
	assert.False(t, status.Available)
	assert.Equal(t, "Missing Key", status.Status)
	assert.True(t, status.Storage)
	assert.Equal(t, "aquaform", status.Server.Name)
}

func TestStartStopsOnContextCancel(t *testing.T) {
	s := newTestServer(nil, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestOptimizeFormulaNothingUsable(t *testing.T) {
	adv := &stubAdvisor{suggestion: &models.Suggestion{
		Explanation: "Try these.",
		SuggestedIngredients: []models.SuggestedIngredient{
			{ID: "zz", Weight: 50},
			{ID: "i2", Weight: 150},
		},
	}}
	s := newTestServer(adv, nil)

	var resp OptimizeResponse
	payload(t, call(t, s, "optimize_formula", map[string]interface{}{
		"species_id":  "s1",
		"ingredients": []map[string]interface{}{{"id": "i3", "weight": 100}},
	}), &resp)

	assert.False(t, resp.Applied)
	require.Len(t, resp.Ingredients, 1, "request mix is kept")
	assert.Equal(t, "i3", resp.Ingredients[0].ID)
	require.Len(t, resp.Skipped, 2)
	assert.Equal(t, "unknown_ingredient", string(resp.Skipped[0].Reason))
	assert.Equal(t, "invalid_weight", string(resp.Skipped[1].Reason))
	assert.Equal(t, "balanced", string(resp.Blend.Weight.State))
}

func TestFormulationByID(t *testing.T) {
	db, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "aquaform.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	s := newTestServer(nil, db)

	var saved models.Formulation
	payload(t, call(t, s, "save_formulation", map[string]interface{}{
		"name":        "Tilapia starter",
		"species_id":  "s3",
		"ingredients": []map[string]interface{}{{"id": "i3", "weight": 60}, {"id": "i2", "weight": 40}},
	}), &saved)

	var got models.Formulation
	payload(t, call(t, s, "get_formulation", map[string]interface{}{"id": saved.ID}), &got)
	assert.Equal(t, "Tilapia starter", got.Name)
	require.Len(t, got.Ingredients, 2)

	var deleted struct {
		ID      string `json:"id"`
		Deleted bool   `json:"deleted"`
	}
	payload(t, call(t, s, "delete_formulation", map[string]interface{}{"id": saved.ID}), &deleted)
	assert.True(t, deleted.Deleted)

	assert.Equal(t, http.StatusNotFound, call(t, s, "get_formulation", map[string]interface{}{"id": saved.ID}).Code)
	assert.Equal(t, http.StatusNotFound, call(t, s, "delete_formulation", map[string]interface{}{"id": saved.ID}).Code)
	assert.Equal(t, http.StatusBadRequest, call(t, s, "get_formulation", map[string]interface{}{}).Code)

	s = newTestServer(nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, call(t, s, "delete_formulation", map[string]interface{}{"id": "x"}).Code)
}
