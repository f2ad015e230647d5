// Package app owns the workbench state: which view is showing, the selected
// species, the formula being edited and the outcome of AI calls. Every user
// surface drives the same Controller.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"aquaform/internal/advisor"
	"aquaform/internal/blend"
	"aquaform/internal/catalog"
	"aquaform/internal/formula"
	"aquaform/internal/models"
)

var (
	ErrNoSpecies        = errors.New("no species selected")
	ErrOptimizeInFlight = errors.New("optimization already in progress")
	// ErrStale is returned when a call finished after its formulator session ended.
	ErrStale = errors.New("result discarded: formulator session ended")
)

const (
	MsgMissingKey          = "Please set your API key to use AI features."
	MsgOptimizeFailed      = "Failed to optimize. Please try again or check API configuration."
	MsgNoUsableIngredients = "The AI suggestion did not contain any known ingredients."
)

// FormulationStore persists saved formulas.
type FormulationStore interface {
	SaveFormulation(ctx context.Context, f *models.Formulation) error
}

// State is a read-only copy of the controller state.
type State struct {
	View           View
	Species        *models.Species
	Formula        []models.SelectedIngredient
	Report         blend.Report
	Available      []models.Ingredient
	Optimizing     bool
	AIMessage      string
	Skipped        []formula.Skipped
	Insight        string
	InsightLoading bool
	Notice         string
	APIStatus      string
	AIAvailable    bool
	LastSaved      *models.Formulation
}

type Options struct {
	Catalog *catalog.Catalog
	Advisor advisor.Advisor
	Store   FormulationStore // optional
	Logger  *zap.Logger
	Now     func() time.Time
}

// Controller is safe for concurrent use. AI calls run without the lock held
// and re-check the session before touching state.
type Controller struct {
	lib     *catalog.Catalog
	advisor advisor.Advisor
	store   FormulationStore
	logger  *zap.Logger
	now     func() time.Time

	mu      sync.Mutex
	view    View
	species *models.Species
	formula *formula.Formula
	session *session

	optimizing     bool
	aiMessage      string
	skipped        []formula.Skipped
	insight        string
	insightLoading bool
	notice         string
	lastSaved      *models.Formulation
}

// session scopes work started inside one formulator visit.
type session struct {
	ctx    context.Context
	cancel context.CancelFunc
}

func newSession() *session {
	ctx, cancel := context.WithCancel(context.Background())
	return &session{ctx: ctx, cancel: cancel}
}

func New(opts Options) *Controller {
	if opts.Advisor == nil {
		opts.Advisor = advisor.Unavailable{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Catalog == nil {
		opts.Catalog = catalog.Default()
	}
	return &Controller{
		lib:     opts.Catalog,
		advisor: opts.Advisor,
		store:   opts.Store,
		logger:  opts.Logger,
		now:     opts.Now,
		view:    ViewDashboard,
		formula: formula.New(),
	}
}

func (c *Controller) Catalog() *catalog.Catalog { return c.lib }

// State returns a snapshot safe to read without further locking.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := State{
		View:           c.view,
		Formula:        c.formula.Ingredients(),
		Optimizing:     c.optimizing,
		AIMessage:      c.aiMessage,
		Skipped:        append([]formula.Skipped(nil), c.skipped...),
		Insight:        c.insight,
		InsightLoading: c.insightLoading,
		Notice:         c.notice,
		APIStatus:      advisor.Status(c.advisor),
		AIAvailable:    c.advisor.Available(),
		LastSaved:      c.lastSaved,
	}
	if c.species != nil {
		sp := *c.species
		st.Species = &sp
		st.Report = c.formula.Analyze(sp.TargetNutrients)
		st.Available = c.formula.Available(c.lib.Ingredients())
	}
	return st
}

// Navigate moves to view to and returns the view actually shown.
func (c *Controller) Navigate(to View) (View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := resolveNavigation(to, c.species != nil)
	if err != nil {
		return c.view, err
	}
	if clearsSpecies(next) {
		c.species = nil
	}
	c.enter(next)
	return next, nil
}

// SelectSpecies picks the species to formulate for and opens the formulator.
func (c *Controller) SelectSpecies(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !canSelectSpecies(c.view) {
		return fmt.Errorf("%w: cannot pick a species from %s", ErrInvalidTransition, c.view)
	}
	sp, ok := c.lib.LookupSpecies(id)
	if !ok {
		return fmt.Errorf("unknown species %q", id)
	}
	c.species = &sp
	c.enter(ViewFormulator)
	return nil
}

// enter switches views. Leaving the formulator ends its session, which
// cancels in-flight AI calls and discards the formula. Must hold c.mu.
func (c *Controller) enter(next View) {
	if c.view == ViewFormulator && next != ViewFormulator {
		c.endSession()
	}
	if next == ViewFormulator && c.session == nil {
		c.session = newSession()
	}
	c.view = next
	c.notice = ""
}

func (c *Controller) endSession() {
	if c.session != nil {
		c.session.cancel()
		c.session = nil
	}
	c.formula = formula.New()
	c.optimizing = false
	c.aiMessage = ""
	c.skipped = nil
	c.insight = ""
	c.insightLoading = false
}

// requireFormulator must be called with c.mu held.
func (c *Controller) requireFormulator() error {
	if c.view != ViewFormulator || c.species == nil {
		return ErrNoSpecies
	}
	return nil
}

func (c *Controller) AddIngredient(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireFormulator(); err != nil {
		return err
	}
	ing, ok := c.lib.LookupIngredient(id)
	if !ok {
		return fmt.Errorf("%w: %s", formula.ErrUnknownIngredient, id)
	}
	c.formula.Add(ing)
	return nil
}

func (c *Controller) RemoveIngredient(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireFormulator(); err != nil {
		return err
	}
	if !c.formula.Remove(id) {
		return fmt.Errorf("%w: %s not in formula", formula.ErrUnknownIngredient, id)
	}
	return nil
}

func (c *Controller) SetWeight(id string, weight float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireFormulator(); err != nil {
		return err
	}
	return c.formula.SetWeight(id, weight)
}

// Optimize asks the advisor for a new mix and applies it. The formula is
// replaced only when the call succeeds and yields at least one known
// ingredient; on any failure it is left as it was.
func (c *Controller) Optimize(ctx context.Context) error {
	c.mu.Lock()
	if err := c.requireFormulator(); err != nil {
		c.mu.Unlock()
		return err
	}
	if !c.advisor.Available() {
		c.notice = MsgMissingKey
		c.mu.Unlock()
		return advisor.ErrUnavailable
	}
	if c.optimizing {
		c.mu.Unlock()
		return ErrOptimizeInFlight
	}
	sess := c.session
	sp := *c.species
	req := models.OptimizeRequest{
		Species:   sp,
		Current:   c.formula.Analyze(sp.TargetNutrients).Nutrients,
		Available: c.formula.Pool(c.lib.Ingredients()),
	}
	c.optimizing = true
	c.aiMessage = ""
	c.skipped = nil
	c.mu.Unlock()

	callCtx, stop := scoped(ctx, sess)
	defer stop()
	sug, err := c.advisor.Optimize(callCtx, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != sess || sess.ctx.Err() != nil {
		return ErrStale
	}
	c.optimizing = false
	if err != nil {
		c.logger.Error("AI optimization failed", zap.String("species", sp.ID), zap.Error(err))
		c.aiMessage = MsgOptimizeFailed
		return fmt.Errorf("optimize: %w", err)
	}

	res, err := formula.Resolve(*sug, c.lib)
	if len(res.Skipped) > 0 {
		c.logger.Warn("AI suggestion referenced unusable ingredients",
			zap.Strings("ids", res.SkippedIDs()), zap.Int("skipped", len(res.Skipped)))
	}
	c.skipped = res.Skipped
	if err != nil {
		c.aiMessage = MsgNoUsableIngredients
		return fmt.Errorf("optimize: %w", err)
	}
	c.formula.Replace(res)
	c.aiMessage = res.Explanation
	return nil
}

// LoadInsights fetches the species insight for the open formulator. Without
// an advisor it does nothing.
func (c *Controller) LoadInsights(ctx context.Context) error {
	c.mu.Lock()
	if err := c.requireFormulator(); err != nil {
		c.mu.Unlock()
		return err
	}
	if !c.advisor.Available() {
		c.mu.Unlock()
		return nil
	}
	sess := c.session
	name := c.species.Name
	c.insightLoading = true
	c.mu.Unlock()

	callCtx, stop := scoped(ctx, sess)
	defer stop()
	text, err := c.advisor.Insights(callCtx, name)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != sess || sess.ctx.Err() != nil {
		return ErrStale
	}
	c.insightLoading = false
	if err != nil {
		c.logger.Warn("species insights failed", zap.String("species", name), zap.Error(err))
		return fmt.Errorf("insights: %w", err)
	}
	c.insight = text
	return nil
}

// Save stores the formula under name (default "Formula for <species>") and
// returns to the dashboard.
func (c *Controller) Save(ctx context.Context, name string) (*models.Formulation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireFormulator(); err != nil {
		return nil, err
	}
	if name == "" {
		name = "Formula for " + c.species.Name
	}
	ingredients := c.formula.Ingredients()
	f := &models.Formulation{
		ID:           uuid.NewString(),
		Name:         name,
		SpeciesID:    c.species.ID,
		Ingredients:  ingredients,
		TotalCost:    blend.Calculate(ingredients).TotalCost,
		LastModified: c.now(),
	}
	if c.store != nil {
		if err := c.store.SaveFormulation(ctx, f); err != nil {
			return nil, fmt.Errorf("save formulation: %w", err)
		}
	} else {
		c.logger.Info("formulation not persisted: no store configured", zap.String("name", f.Name))
	}
	c.logger.Info("formulation saved",
		zap.String("id", f.ID), zap.String("name", f.Name), zap.Int("ingredients", len(ingredients)))

	c.lastSaved = f
	c.species = nil
	c.enter(ViewDashboard)
	c.notice = fmt.Sprintf("Formula %q saved successfully!", f.Name)
	return f, nil
}

// scoped derives a context cancelled by either the caller or the session.
func scoped(ctx context.Context, sess *session) (context.Context, context.CancelFunc) {
	callCtx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(sess.ctx, cancel)
	return callCtx, func() {
		stop()
		cancel()
	}
}
