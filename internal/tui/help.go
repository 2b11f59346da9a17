package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"
)

var (
	// HelpOverlayStyle defines the style for the help overlay container.
	HelpOverlayStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("62")).
				Padding(1, 2).
				MarginTop(2)
)

// stageLegend explains each stage column, in board order.
var stageLegend = []struct{ stage, meaning string }{
	{StagePreRelease, "never playtested, at or before 1.0.0"},
	{StageChanged, "carries an Updated, Reworked, Replaced or Not Implemented note"},
	{StageAwaiting, "issue open, not yet in the playtesting build"},
	{StagePlaytesting, "current version is the one playtesters use"},
	{StageReleased, "assigned to a pack"},
	{StageOther, "none of the above"},
}

// HelpModel wraps the bubbles help component and, on the stage board, a
// legend of the columns.
type HelpModel struct {
	help   help.Model
	keymap KeyMap
}

// NewHelpModel creates a new help overlay model.
func NewHelpModel(keymap KeyMap) HelpModel {
	h := help.New()
	h.ShowAll = true

	return HelpModel{
		help:   h,
		keymap: keymap,
	}
}

// View renders the help overlay.
func (m HelpModel) View(width int, grouping Grouping) string {
	m.help.Width = width - 8 // Account for padding and border
	view := m.help.View(m.keymap)

	if grouping == GroupByStage {
		var b strings.Builder
		b.WriteString(view)
		b.WriteString("\n\n")
		for _, l := range stageLegend {
			b.WriteString(ColumnHeaderStyle(l.stage).Render(l.stage))
			b.WriteString(dimStyle.Render("  " + l.meaning))
			b.WriteString("\n")
		}
		view = strings.TrimRight(b.String(), "\n")
	}
	return HelpOverlayStyle.Render(view)
}
