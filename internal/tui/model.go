// Package tui is the terminal front end of the workbench. It renders
// app.Controller state and turns key presses into controller calls.
package tui

import (
	"context"
	"errors"
	"math"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"aquaform/internal/app"
	"aquaform/internal/models"
)

// WeightStep is the weight change for +/-; [ and ] move by BigWeightStep.
const (
	WeightStep    = 1.0
	BigWeightStep = 5.0
)

type pane int

const (
	paneFormula pane = iota
	paneLibrary
)

type optimizeDoneMsg struct{ err error }

type insightsDoneMsg struct{ err error }

type Model struct {
	ctx    context.Context
	ctrl   *app.Controller
	logger *zap.Logger
	styles Styles

	cursor int
	pane   pane
	errMsg string

	width, height int
}

func New(ctx context.Context, ctrl *app.Controller, logger *zap.Logger) Model {
	if logger == nil {
		logger = zap.NewNop()
	}
	return Model{
		ctx:    ctx,
		ctrl:   ctrl,
		logger: logger,
		styles: DefaultStyles(),
	}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case optimizeDoneMsg:
		m.report(msg.err, "optimize")
		m.clampCursor()
		return m, nil

	case insightsDoneMsg:
		// Failures leave the insight empty.
		if msg.err != nil && !errors.Is(msg.err, app.ErrStale) {
			m.logger.Debug("insights unavailable", zap.Error(msg.err))
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "1", "2", "3", "4":
		return m.navigate(app.Views[int(key[0]-'1')])
	}

	m.errMsg = ""
	switch m.ctrl.State().View {
	case app.ViewDashboard, app.ViewEncyclopedia:
		return m.speciesKey(key)
	case app.ViewFormulator:
		return m.formulatorKey(key)
	}
	return m, nil
}

func (m Model) navigate(to app.View) (tea.Model, tea.Cmd) {
	before := m.ctrl.State().View
	if _, err := m.ctrl.Navigate(to); err != nil {
		m.errMsg = err.Error()
		return m, nil
	}
	if m.ctrl.State().View != before {
		m.cursor, m.pane = 0, paneFormula
	}
	return m, nil
}

func (m Model) speciesKey(key string) (tea.Model, tea.Cmd) {
	species := m.ctrl.Catalog().Species()
	switch key {
	case "up", "k":
		m.move(-1, len(species))
	case "down", "j":
		m.move(1, len(species))
	case "enter":
		if m.cursor >= len(species) {
			return m, nil
		}
		if err := m.ctrl.SelectSpecies(species[m.cursor].ID); err != nil {
			m.errMsg = err.Error()
			return m, nil
		}
		m.cursor, m.pane = 0, paneFormula
		return m, m.loadInsights()
	}
	return m, nil
}

func (m Model) formulatorKey(key string) (tea.Model, tea.Cmd) {
	st := m.ctrl.State()
	switch key {
	case "tab":
		if m.pane == paneFormula {
			m.pane = paneLibrary
		} else {
			m.pane = paneFormula
		}
		m.cursor = 0
	case "up", "k":
		m.move(-1, m.rows(st))
	case "down", "j":
		m.move(1, m.rows(st))
	case "o":
		if st.Optimizing {
			return m, nil
		}
		return m, m.optimize()
	case "s":
		if _, err := m.ctrl.Save(m.ctx, ""); err != nil {
			m.report(err, "save")
			return m, nil
		}
		m.cursor, m.pane = 0, paneFormula
	case "enter", "a":
		if m.pane == paneLibrary && m.cursor < len(st.Available) {
			m.report(m.ctrl.AddIngredient(st.Available[m.cursor].ID), "add")
			m.clampCursor()
		}
	case "d", "x", "backspace":
		if m.pane == paneFormula && m.cursor < len(st.Formula) {
			m.report(m.ctrl.RemoveIngredient(st.Formula[m.cursor].ID), "remove")
			m.clampCursor()
		}
	case "+", "=":
		m.nudge(st, WeightStep)
	case "-", "_":
		m.nudge(st, -WeightStep)
	case "]":
		m.nudge(st, BigWeightStep)
	case "[":
		m.nudge(st, -BigWeightStep)
	}
	return m, nil
}

// nudge shifts the weight of the ingredient under the cursor, clamped to 0-100.
func (m *Model) nudge(st app.State, delta float64) {
	if m.pane != paneFormula || m.cursor >= len(st.Formula) {
		return
	}
	ing := st.Formula[m.cursor]
	w := math.Min(100, math.Max(0, ing.Weight+delta))
	m.report(m.ctrl.SetWeight(ing.ID, w), "set weight")
}

func (m Model) optimize() tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		return optimizeDoneMsg{err: ctrl.Optimize(ctx)}
	}
}

func (m Model) loadInsights() tea.Cmd {
	if !m.ctrl.State().AIAvailable {
		return nil
	}
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		return insightsDoneMsg{err: ctrl.LoadInsights(ctx)}
	}
}

// report records err for the status line. Errors the controller already
// surfaces through State are only logged.
func (m *Model) report(err error, op string) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, app.ErrStale), errors.Is(err, app.ErrOptimizeInFlight):
		m.logger.Debug("ignored result", zap.String("op", op), zap.Error(err))
		return
	}
	m.logger.Warn("action failed", zap.String("op", op), zap.Error(err))
	if op == "optimize" {
		// The controller has set the user facing message.
		return
	}
	m.errMsg = err.Error()
}

func (m Model) rows(st app.State) int {
	if m.pane == paneLibrary {
		return len(st.Available)
	}
	return len(st.Formula)
}

func (m *Model) move(delta, n int) {
	if n == 0 {
		m.cursor = 0
		return
	}
	m.cursor = (m.cursor + delta + n) % n
}

func (m *Model) clampCursor() {
	n := m.rows(m.ctrl.State())
	if m.cursor >= n {
		m.cursor = max(0, n-1)
	}
}

// chartScale is the full-scale value of a nutrient bar.
func chartScale(n models.Nutrient) float64 {
	switch n {
	case models.Protein, models.Lipids, models.Carbohydrates:
		return 100
	}
	return 20
}
