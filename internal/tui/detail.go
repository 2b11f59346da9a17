package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"github.com/pkg/browser"

	"github.com/h0rv/cardsync/internal/domain"
	"github.com/h0rv/cardsync/internal/report"
	"github.com/h0rv/cardsync/internal/store"
)

// Layout constants
const (
	leftPanelRatio = 0.35 // Left panel takes 35% of width
	minLeftWidth   = 30
	maxLeftWidth   = 50
	headerHeight   = 1
	footerHeight   = 1
	borderSize     = 2 // Top + bottom border
)

// Detail view styles
var (
	detailTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("205"))

	detailLabelStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("241"))

	detailValueStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252"))

	versionHeadingStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("212")).
				Bold(true)

	noteStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("228")).
			Italic(true)

	panelBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("240"))

	focusedPanelBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("205"))
)

// DetailModel shows one card number: development state of the latest
// version on the left, every version's face on the right, newest first.
type DetailModel struct {
	group    store.Group
	viewport viewport.Model

	width  int
	height int
}

// NewDetailModel creates a new detail view model
func NewDetailModel(group store.Group) DetailModel {
	vp := viewport.New(40, 10) // Will be resized in WindowSizeMsg
	vp.MouseWheelEnabled = true
	vp.MouseWheelDelta = 3

	m := DetailModel{group: group, viewport: vp}
	m.updateViewportContent()
	return m
}

// Init initializes the detail model
func (m DetailModel) Init() tea.Cmd {
	return tea.WindowSize()
}

// Update handles messages
func (m DetailModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeComponents()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	return m, nil
}

// resizeComponents calculates and sets component dimensions
func (m *DetailModel) resizeComponents() {
	leftWidth := m.leftWidth(m.width)

	rightWidth := m.width - leftWidth - 3 // gap between panels
	if rightWidth < 30 {
		rightWidth = 30
	}

	contentHeight := m.height - headerHeight - footerHeight - borderSize
	if contentHeight < 10 {
		contentHeight = 10
	}

	m.viewport.Width = rightWidth - borderSize - 2 // padding
	m.viewport.Height = contentHeight - borderSize

	// Re-wrap with the new width
	m.updateViewportContent()
}

func (m DetailModel) leftWidth(width int) int {
	left := int(float64(width) * leftPanelRatio)
	if left < minLeftWidth {
		left = minLeftWidth
	}
	if left > maxLeftWidth {
		left = maxLeftWidth
	}
	return left
}

// handleKeyPress processes keyboard input
func (m DetailModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "q", "esc":
		return m, func() tea.Msg { return closeDetailMsg{} }
	case "o":
		if status := m.group.Latest.GithubStatus; status != nil && status.URL != "" {
			_ = browser.OpenURL(status.URL)
		}
	case "j", "down":
		m.viewport.LineDown(1)
	case "k", "up":
		m.viewport.LineUp(1)
	case "ctrl+d":
		m.viewport.HalfViewDown()
	case "ctrl+u":
		m.viewport.HalfViewUp()
	case "g":
		m.viewport.GotoTop()
	case "G":
		m.viewport.GotoBottom()
	}

	return m, nil
}

// View renders the split-screen detail view
func (m DetailModel) View() string {
	width := m.width
	height := m.height
	if width == 0 {
		width = 100
	}
	if height == 0 {
		height = 30
	}

	leftWidth := m.leftWidth(width)
	rightWidth := width - leftWidth - 1 // 1 char gap

	contentHeight := height - headerHeight - footerHeight
	if contentHeight < 10 {
		contentHeight = 10
	}

	header := dimStyle.Render("[q]back [o]open issue [j/k]scroll [g/G]top/bottom")

	leftPanel := panelBorderStyle.
		Width(leftWidth - borderSize).
		Height(contentHeight - borderSize).
		Render(m.renderLeftPanel(leftWidth - borderSize))

	rightPanel := focusedPanelBorderStyle.
		Width(rightWidth - borderSize).
		Height(contentHeight - borderSize).
		Render(m.viewport.View())

	panels := lipgloss.JoinHorizontal(lipgloss.Top, leftPanel, " ", rightPanel)

	return lipgloss.JoinVertical(lipgloss.Left, header, panels, m.renderFooter(width))
}

// renderFooter renders the bottom status bar
func (m DetailModel) renderFooter(width int) string {
	left := fmt.Sprintf("%d version(s)", len(m.group.Versions()))

	right := fmt.Sprintf("%d%%", int(m.viewport.ScrollPercent()*100))
	if m.viewport.AtTop() {
		right = "TOP"
	} else if m.viewport.AtBottom() {
		right = "END"
	}

	padding := width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if padding < 1 {
		padding = 1
	}
	return dimStyle.Render(left) + strings.Repeat(" ", padding) + dimStyle.Render(right)
}

// renderLeftPanel renders the development state of the latest version.
func (m DetailModel) renderLeftPanel(width int) string {
	card := m.group.Latest
	var b strings.Builder

	b.WriteString(detailLabelStyle.Render(fmt.Sprintf("%s · %s", card.Code(), card.Type())))
	b.WriteString("\n\n")
	b.WriteString(detailTitleStyle.Render(wordwrap.String(card.Name, width-2)))
	b.WriteString("\n\n")

	field := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(detailLabelStyle.Render(label + ": "))
		b.WriteString(detailValueStyle.Render(value))
		b.WriteString("\n")
	}

	field("Version", card.Version.String())
	field("Stage", StageOf(card))
	field("Faction", card.Faction)
	if card.PlaytestingVersion != nil {
		field("Playtesting", card.PlaytestingVersion.String())
	}
	if card.GithubStatus != nil {
		field("Issue", string(card.GithubStatus.Status))
		field("URL", wordwrap.String(card.GithubStatus.URL, width-6))
	}
	if card.Release != nil {
		field("Release", fmt.Sprintf("%s #%d", card.Release.PackShort, card.Release.ReleaseNumber))
	}
	field("Designer", card.Designer)
	field("Illustrator", card.Illustrator)

	if card.Note != nil {
		b.WriteString("\n")
		b.WriteString(noteStyle.Render(wordwrap.String(noteLine(card.Note), width-2)))
	}

	return b.String()
}

func noteLine(note *domain.Note) string {
	if note.Text == "" {
		return string(note.Type)
	}
	return fmt.Sprintf("%s: %s", note.Type, note.Text)
}

// updateViewportContent renders every version, newest first.
func (m *DetailModel) updateViewportContent() {
	wrapWidth := m.viewport.Width - 4
	if wrapWidth < 20 {
		wrapWidth = 20
	}

	var b strings.Builder
	for i, card := range m.group.Versions() {
		if i > 0 {
			b.WriteString("\n" + dimStyle.Render(strings.Repeat("─", wrapWidth)) + "\n\n")
		}
		heading := report.Heading(card)
		if i == 0 {
			heading += " (latest)"
		}
		b.WriteString(versionHeadingStyle.Render(heading))
		b.WriteString("\n")
		if card.Note != nil {
			b.WriteString(noteStyle.Render(wordwrap.String(noteLine(card.Note), wrapWidth)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(wordwrap.String(report.CardMarkdown(card), wrapWidth))
	}

	m.viewport.SetContent(b.String())
}

type closeDetailMsg struct{}
