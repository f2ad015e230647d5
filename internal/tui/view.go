package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"aquaform/internal/app"
	"aquaform/internal/blend"
)

const barWidth = 30

func (m Model) View() string {
	st := m.ctrl.State()

	var b strings.Builder
	b.WriteString(m.renderHeader(st))
	b.WriteString("\n\n")

	switch st.View {
	case app.ViewDashboard:
		b.WriteString(m.renderDashboard())
	case app.ViewEncyclopedia:
		b.WriteString(m.renderSpecies())
	case app.ViewFormulator:
		b.WriteString(m.renderFormulator(st))
	case app.ViewSettings:
		b.WriteString(m.renderSettings(st))
	}

	b.WriteString("\n")
	if st.Notice != "" {
		b.WriteString(m.styles.Notice.Render(st.Notice) + "\n")
	}
	if m.errMsg != "" {
		b.WriteString(m.styles.Bad.Render("Error: "+m.errMsg) + "\n")
	}
	b.WriteString(m.styles.Subtle.Render(m.help(st.View)))
	return b.String()
}

func (m Model) renderHeader(st app.State) string {
	tabs := make([]string, len(app.Views))
	for i, v := range app.Views {
		label := fmt.Sprintf("%d %s", i+1, v)
		if v == st.View {
			tabs[i] = m.styles.TabOn.Render(label)
		} else {
			tabs[i] = m.styles.Tab.Render(label)
		}
	}

	status := m.styles.Bad.Render("● " + st.APIStatus)
	if st.AIAvailable {
		status = m.styles.Good.Render("● " + st.APIStatus)
	}

	title := m.styles.Title.Render("AquaForm AI") + "  " + m.styles.Header.Render(st.View.Title())
	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		lipgloss.JoinHorizontal(lipgloss.Top, append(tabs, "  API Status: "+status)...),
	)
}

func (m Model) renderDashboard() string {
	var b strings.Builder
	b.WriteString(m.styles.Header.Render("Next-generation precision nutrition for aquaculture.") + "\n")
	b.WriteString("Formulate, optimize, and analyze feeds with AI assistance.\n\n")

	cards := []struct{ title, desc string }{
		{"AI Optimization", "Suggests optimal ingredient ratios for the target species."},
		{"Real-time Visualization", "Target vs actual bars update with every change."},
		{"Cost Analysis", "Immediate pricing estimation based on market ingredient rates."},
	}
	panels := make([]string, len(cards))
	for i, c := range cards {
		panels[i] = m.styles.Panel.Width(28).Render(m.styles.Header.Render(c.title) + "\n" + c.desc)
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, panels...))
	b.WriteString("\n\n")
	b.WriteString(m.styles.Header.Render("New Formulation") + ": pick a species\n")
	b.WriteString(m.speciesList())
	return b.String()
}

func (m Model) renderSpecies() string {
	var b strings.Builder
	b.WriteString("Begin your formulation by selecting a target species.\n\n")
	b.WriteString(m.speciesList())
	return b.String()
}

func (m Model) speciesList() string {
	var b strings.Builder
	for i, sp := range m.ctrl.Catalog().Species() {
		line := fmt.Sprintf("%-20s %-24s %s", sp.Name, sp.ScientificName, sp.LifeStage)
		if i == m.cursor {
			b.WriteString(m.styles.Selected.Render("> "+line) + "\n")
			b.WriteString(m.styles.Subtle.Render("  "+sp.Description) + "\n")
			continue
		}
		b.WriteString("  " + line + "\n")
	}
	return b.String()
}

func (m Model) renderFormulator(st app.State) string {
	if st.Species == nil {
		return ""
	}
	sp := st.Species

	var b strings.Builder
	b.WriteString(m.styles.Header.Render(sp.Name) + " " + m.styles.Subtle.Render(fmt.Sprintf("(%s, %s)", sp.ScientificName, sp.LifeStage)) + "\n")

	switch {
	case st.InsightLoading:
		b.WriteString(m.styles.Subtle.Render("Loading species insights...") + "\n")
	case st.Insight != "":
		b.WriteString("Species Insight: " + st.Insight + "\n")
	}
	if st.Optimizing {
		b.WriteString(m.styles.Warn.Render("Optimizing...") + "\n")
	}
	if st.AIMessage != "" {
		b.WriteString(m.styles.Header.Render("Optimization Report: ") + st.AIMessage + "\n")
	}
	if len(st.Skipped) > 0 {
		parts := make([]string, len(st.Skipped))
		for i, s := range st.Skipped {
			parts[i] = fmt.Sprintf("%s (%s)", s.ID, s.Reason)
		}
		b.WriteString(m.styles.Warn.Render("Skipped: "+strings.Join(parts, ", ")) + "\n")
	}
	b.WriteString("\n")

	left := lipgloss.JoinVertical(lipgloss.Left, m.renderMixer(st), m.renderLibrary(st))
	right := lipgloss.JoinVertical(lipgloss.Left, m.renderChart(st.Report), m.renderAnalysis(st))
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right))
	b.WriteString("\n")
	b.WriteString(m.styles.Subtle.Render("Research Note: "+sp.Description) + "\n")
	return b.String()
}

func (m Model) renderMixer(st app.State) string {
	var b strings.Builder
	weight := st.Report.Weight
	total := fmt.Sprintf("%.1f%%", weight.Total)
	if weight.Warn() {
		total = m.styles.Bad.Render(total)
	} else {
		total = m.styles.Good.Render(total)
	}
	b.WriteString(m.styles.Header.Render("Formula Mixer") + "  Total Weight: " + total + "\n")

	if len(st.Formula) == 0 {
		b.WriteString("No ingredients added.\n")
		b.WriteString(m.styles.Subtle.Render("Add from the library (tab) or press o to generate a starting formula."))
		return m.styles.Panel.Render(b.String())
	}
	for i, ing := range st.Formula {
		line := fmt.Sprintf("%-26s %-14s %5.1f%%", ing.Name, ing.Category, ing.Weight)
		if m.pane == paneFormula && i == m.cursor {
			b.WriteString(m.styles.Selected.Render("> "+line) + "\n")
		} else {
			b.WriteString("  " + line + "\n")
		}
	}
	return m.styles.Panel.Render(strings.TrimRight(b.String(), "\n"))
}

func (m Model) renderLibrary(st app.State) string {
	var b strings.Builder
	b.WriteString(m.styles.Header.Render("Ingredient Library") + "\n")
	if len(st.Available) == 0 {
		b.WriteString(m.styles.Subtle.Render("All ingredients are in the formula."))
		return m.styles.Panel.Render(b.String())
	}
	for i, ing := range st.Available {
		line := fmt.Sprintf("%-26s $%.2f/kg", ing.Name, ing.CostPerKg)
		if m.pane == paneLibrary && i == m.cursor {
			b.WriteString(m.styles.Selected.Render("+ "+line) + "\n")
		} else {
			b.WriteString("  " + line + "\n")
		}
	}
	return m.styles.Panel.Render(strings.TrimRight(b.String(), "\n"))
}

// renderChart draws target and actual bars for every nutrient.
func (m Model) renderChart(r blend.Report) string {
	var b strings.Builder
	b.WriteString(m.styles.Header.Render("Nutritional Profile Analysis") + "\n")
	for _, d := range r.Deviations {
		scale := chartScale(d.Nutrient)
		b.WriteString(fmt.Sprintf("%-8s T %s %5.1f\n", d.Nutrient.Label(), m.styles.Target.Render(bar(d.Target, scale)), d.Target))
		b.WriteString(fmt.Sprintf("%-8s A %s %5.1f\n", "", m.styles.Actual.Render(bar(d.Actual, scale)), d.Actual))
	}
	return m.styles.Panel.Render(strings.TrimRight(b.String(), "\n"))
}

func bar(v, scale float64) string {
	n := int(math.Round(v / scale * barWidth))
	n = min(barWidth, max(0, n))
	return strings.Repeat("█", n) + strings.Repeat("·", barWidth-n)
}

func (m Model) renderAnalysis(st app.State) string {
	var b strings.Builder
	b.WriteString(m.styles.Header.Render("Analysis") + "\n")
	for _, d := range st.Report.Deviations {
		b.WriteString(m.metricRow(d) + "\n")
	}
	b.WriteString(fmt.Sprintf("Est. Cost     $%.2f/kg\n", st.Report.TotalCost))

	completeness := fmt.Sprintf("%.1f%% / 100%%", st.Report.Weight.Total)
	if st.Report.Weight.Warn() {
		completeness = m.styles.Warn.Render(completeness)
	} else {
		completeness = m.styles.Good.Render(completeness)
	}
	b.WriteString("Completeness  " + completeness)
	return m.styles.Panel.Render(b.String())
}

func (m Model) metricRow(d blend.Deviation) string {
	row := fmt.Sprintf("%-8s %5.1f%%  target %5.1f%%", d.Nutrient.Label(), d.Actual, d.Target)
	switch d.Status {
	case blend.StatusGood:
		return m.styles.Good.Render(row + "  ok")
	case blend.StatusOver:
		return m.styles.Bad.Render(row + "  over")
	default:
		return m.styles.Bad.Render(row + "  under")
	}
}

func (m Model) renderSettings(st app.State) string {
	var b strings.Builder
	b.WriteString(m.styles.Header.Render("AI Advisor") + "\n")
	b.WriteString("  Status: " + st.APIStatus + "\n")
	if !st.AIAvailable {
		b.WriteString(m.styles.Subtle.Render("  "+app.MsgMissingKey) + "\n")
	}
	b.WriteString("\n" + m.styles.Header.Render("Catalog") + "\n")
	lib := m.ctrl.Catalog()
	b.WriteString(fmt.Sprintf("  %d species, %d ingredients\n", len(lib.Species()), len(lib.Ingredients())))
	if st.LastSaved != nil {
		b.WriteString("\n" + m.styles.Header.Render("Last Saved") + "\n")
		b.WriteString(fmt.Sprintf("  %s ($%.2f/kg, %d ingredients)\n", st.LastSaved.Name, st.LastSaved.TotalCost, len(st.LastSaved.Ingredients)))
	}
	return b.String()
}

func (m Model) help(v app.View) string {
	switch v {
	case app.ViewFormulator:
		return "tab switch pane • ↑/↓ move • a add • d remove • +/- weight ([/] by 5) • o optimize • s save • 1-4 views • q quit"
	case app.ViewDashboard, app.ViewEncyclopedia:
		return "↑/↓ move • enter select species • 1-4 views • q quit"
	}
	return "1-4 views • q quit"
}
