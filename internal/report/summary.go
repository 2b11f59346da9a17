package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	summaryTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("62")) // Purple

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")) // Light gray

	failedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")). // Red
			Bold(true)

	summaryBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)
)

// Tally is the outcome count of one sync batch.
type Tally struct {
	Name      string
	Created   int
	Updated   int
	Unchanged int
	Failed    int
	Failures  []string // "key: error"
	DryRun    bool
}

// RenderSummary renders the post-batch summaries printed by the CLI.
func RenderSummary(tallies ...Tally) string {
	blocks := make([]string, 0, len(tallies))
	for _, t := range tallies {
		title := t.Name
		if t.DryRun {
			title += " (dry run)"
		}
		lines := []string{
			summaryTitleStyle.Render(title),
			countStyle.Render(fmt.Sprintf("created %d  updated %d  unchanged %d", t.Created, t.Updated, t.Unchanged)),
		}
		if t.Failed > 0 {
			lines = append(lines, failedStyle.Render(fmt.Sprintf("failed %d", t.Failed)))
			for _, f := range t.Failures {
				lines = append(lines, "  "+f)
			}
		}
		blocks = append(blocks, summaryBoxStyle.Render(strings.Join(lines, "\n")))
	}
	return lipgloss.JoinVertical(lipgloss.Left, blocks...)
}
