package tui

import "github.com/charmbracelet/lipgloss"

var (
	// TitleStyle is used for screen titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")). // Purple
			MarginBottom(1)

	// SelectedItemStyle is used for the highlighted picker entry.
	SelectedItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("170")). // Light purple
				Bold(true)

	// NormalItemStyle is used for the other picker entries.
	NormalItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")) // Light gray

	// ErrorStyle is used for error messages.
	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")). // Red
			Bold(true)
)

// stageColors tints the column headers of the stage board.
var stageColors = map[string]lipgloss.Color{
	StagePreRelease:  lipgloss.Color("99"),  // Light blue
	StageChanged:     lipgloss.Color("214"), // Orange
	StageAwaiting:    lipgloss.Color("203"), // Salmon
	StagePlaytesting: lipgloss.Color("78"),  // Green
	StageReleased:    lipgloss.Color("62"),  // Purple
	StageOther:       lipgloss.Color("241"), // Dark gray
}

// ColumnHeaderStyle returns the header style of a board column. Only stage
// columns are tinted.
func ColumnHeaderStyle(column string) lipgloss.Style {
	if c, ok := stageColors[column]; ok {
		return columnHeaderStyle.Foreground(c)
	}
	return columnHeaderStyle
}
