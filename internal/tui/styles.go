package tui

import "github.com/charmbracelet/lipgloss"

var (
	Primary = lipgloss.Color("#2563eb")
	Accent  = lipgloss.Color("#4f46e5")
	Muted   = lipgloss.Color("#94a3b8")
	Border  = lipgloss.Color("#cbd5e1")

	Success = lipgloss.Color("#10b981")
	Warning = lipgloss.Color("#f59e0b")
	Danger  = lipgloss.Color("#ef4444")

	TargetBar = lipgloss.Color("#64748b")
	ActualBar = lipgloss.Color("#3b82f6")
)

// Styles groups the lipgloss styles used across views.
type Styles struct {
	Title    lipgloss.Style
	Header   lipgloss.Style
	Subtle   lipgloss.Style
	Tab      lipgloss.Style
	TabOn    lipgloss.Style
	Selected lipgloss.Style
	Good     lipgloss.Style
	Warn     lipgloss.Style
	Bad      lipgloss.Style
	Panel    lipgloss.Style
	Target   lipgloss.Style
	Actual   lipgloss.Style
	Notice   lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(Primary),
		Header:   lipgloss.NewStyle().Bold(true),
		Subtle:   lipgloss.NewStyle().Foreground(Muted),
		Tab:      lipgloss.NewStyle().Padding(0, 1).Foreground(Muted),
		TabOn:    lipgloss.NewStyle().Padding(0, 1).Bold(true).Foreground(lipgloss.Color("#ffffff")).Background(Primary),
		Selected: lipgloss.NewStyle().Bold(true).Foreground(Accent),
		Good:     lipgloss.NewStyle().Foreground(Success),
		Warn:     lipgloss.NewStyle().Foreground(Warning),
		Bad:      lipgloss.NewStyle().Foreground(Danger),
		Panel:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(Border).Padding(0, 1),
		Target:   lipgloss.NewStyle().Foreground(TargetBar),
		Actual:   lipgloss.NewStyle().Foreground(ActualBar),
		Notice:   lipgloss.NewStyle().Bold(true).Foreground(Success),
	}
}
