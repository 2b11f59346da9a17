package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/browser"

	"github.com/h0rv/cardsync/internal/domain"
	"github.com/h0rv/cardsync/internal/store"
)

// Layout constants
const (
	minColumnWidth = 24
	maxColumnWidth = 40
	headerLines    = 1  // Single header line with title + status
	pageJumpSize   = 10 // Number of cards to jump with Ctrl+D/U
)

// Styles for the board view - base styles without width/height (set dynamically)
var (
	columnHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("205"))

	cardStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	selectedCardStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("205")).
				Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	titleStyle = lipgloss.NewStyle().
			Bold(true)
)

// BoardModel shows the latest version of every card of a project in
// columns, one per value of the current grouping.
type BoardModel struct {
	// Dependencies
	store   *store.Store
	project domain.Project
	ctx     context.Context

	// UI components
	keymap      KeyMap
	help        HelpModel
	spinner     spinner.Model
	filterInput textinput.Model

	// Board state
	grouping       Grouping
	groups         map[int]store.Group // card number -> version history
	columns        []string            // column names in order
	filteredCards  map[string][]int    // column -> card numbers
	selectedColumn int
	columnOffset   int            // first visible column index
	selectedCard   map[string]int // column -> selected card index
	scrollOffset   map[string]int // column -> scroll offset

	// View state
	width      int
	height     int
	showHelp   bool
	filterMode bool
	filterText string
	loading    bool
	errorToast string
}

// NewBoardModel creates a board for one loaded project.
func NewBoardModel(s *store.Store, project domain.Project, ctx context.Context) BoardModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	ti := textinput.New()
	ti.Placeholder = "Filter by name or code..."
	ti.Prompt = "/ "

	return BoardModel{
		store:         s,
		project:       project,
		ctx:           ctx,
		keymap:        DefaultKeyMap(),
		help:          NewHelpModel(DefaultKeyMap()),
		spinner:       sp,
		filterInput:   ti,
		grouping:      GroupByStage,
		groups:        make(map[int]store.Group),
		filteredCards: make(map[string][]int),
		selectedCard:  make(map[string]int),
		scrollOffset:  make(map[string]int),
	}
}

// boardInitMsg triggers the initial column build from the store.
type boardInitMsg struct{}

// Init initializes the board from the already loaded project.
func (m BoardModel) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		tea.WindowSize(),
		func() tea.Msg { return boardInitMsg{} },
	)
}

// SetGrouping regroups the cards into new columns.
func (m BoardModel) SetGrouping(g Grouping) BoardModel {
	m.grouping = g
	m.selectedColumn = 0
	m.columnOffset = 0
	m.selectedCard = make(map[string]int)
	m.scrollOffset = make(map[string]int)
	(&m).rebuildColumns()
	(&m).applyFilter()
	return m
}

// Update handles messages
func (m BoardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case boardInitMsg:
		if err := (&m).loadGroups(); err != nil {
			m.errorToast = err.Error()
		}
		(&m).rebuildColumns()
		(&m).applyFilter()
		return m, nil

	case projectReloadedMsg:
		m.loading = false
		if msg.err != nil {
			m.errorToast = fmt.Sprintf("Reload failed: %v", msg.err)
			return m, nil
		}
		m.errorToast = ""
		if len(msg.report.Errors) > 0 {
			m.errorToast = fmt.Sprintf("%d row(s) skipped", len(msg.report.Errors))
		}
		if err := (&m).loadGroups(); err != nil {
			m.errorToast = err.Error()
		}
		(&m).rebuildColumns()
		(&m).applyFilter()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	}

	return m, nil
}

// handleKeyPress processes keyboard input
func (m BoardModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global quit
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	// Help overlay
	if m.showHelp {
		if key.Matches(msg, m.keymap.Help, m.keymap.Quit, m.keymap.CancelFilter) {
			m.showHelp = false
		}
		return m, nil
	}

	// Filter mode
	if m.filterMode {
		switch {
		case key.Matches(msg, m.keymap.ApplyFilter):
			m.filterMode = false
			m.filterText = m.filterInput.Value()
			(&m).applyFilter()
			return m, nil
		case key.Matches(msg, m.keymap.CancelFilter):
			m.filterMode = false
			m.filterInput.SetValue(m.filterText)
			return m, nil
		default:
			var cmd tea.Cmd
			m.filterInput, cmd = m.filterInput.Update(msg)
			return m, cmd
		}
	}

	// Normal navigation
	k := m.keymap
	switch {
	case key.Matches(msg, k.Quit):
		return m, tea.Quit
	case key.Matches(msg, k.Help):
		m.showHelp = true
	case key.Matches(msg, k.Filter):
		m.filterMode = true
		m.filterInput.Focus()
	case key.Matches(msg, k.Left):
		if m.selectedColumn > 0 {
			m.selectedColumn--
			(&m).adjustColumnScroll()
		}
	case key.Matches(msg, k.Right):
		if m.selectedColumn < len(m.columns)-1 {
			m.selectedColumn++
			(&m).adjustColumnScroll()
		}
	case key.Matches(msg, k.Down):
		(&m).moveCardSelection(1)
	case key.Matches(msg, k.Up):
		(&m).moveCardSelection(-1)
	case key.Matches(msg, k.Top):
		(&m).jumpToCard(0)
	case key.Matches(msg, k.Bottom):
		(&m).jumpToCard(-1)
	case key.Matches(msg, k.PageDown):
		(&m).moveCardSelection(pageJumpSize)
	case key.Matches(msg, k.PageUp):
		(&m).moveCardSelection(-pageJumpSize)
	case key.Matches(msg, k.Open):
		if group, ok := m.getSelectedGroup(); ok {
			if status := group.Latest.GithubStatus; status != nil && status.URL != "" {
				_ = browser.OpenURL(status.URL)
			}
		}
	case key.Matches(msg, k.Reload):
		m.loading = true
		return m, m.reload()
	case key.Matches(msg, k.GroupBy):
		return m, func() tea.Msg { return changeGroupingMsg{} }
	case key.Matches(msg, k.History):
		if group, ok := m.getSelectedGroup(); ok {
			return m, func() tea.Msg { return openDetailMsg{group: group} }
		}
	}

	return m, nil
}

// View renders the board - fills entire terminal exactly
func (m BoardModel) View() string {
	width := m.width
	height := m.height
	if width == 0 {
		width = 80
	}
	if height == 0 {
		height = 24
	}

	var sections []string
	sections = append(sections, m.renderHeader(width))
	sections = append(sections, m.renderSecondHeader(width))

	if m.filterMode {
		sections = append(sections, m.filterInput.View())
	}

	// total height - header(1) - secondHeader(1) - optional filter(1)
	boardHeight := height - 2
	if m.filterMode {
		boardHeight--
	}
	if boardHeight < 5 {
		boardHeight = 5
	}

	var mainContent string
	switch {
	case m.showHelp:
		helpLines := strings.Split(m.help.View(width, m.grouping), "\n")
		if len(helpLines) > boardHeight {
			helpLines = helpLines[:boardHeight]
		}
		mainContent = strings.Join(helpLines, "\n")
	case m.loading && len(m.groups) == 0:
		mainContent = lipgloss.Place(width, boardHeight, lipgloss.Center, lipgloss.Center, m.spinner.View()+" Loading...")
	case len(m.columns) == 0:
		mainContent = lipgloss.Place(width, boardHeight, lipgloss.Center, lipgloss.Center, "No cards. Press 'r' to reload.")
	default:
		mainContent = m.renderBoard(width, boardHeight)
	}
	sections = append(sections, mainContent)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderHeader renders a single header line with title on left and status on right
func (m BoardModel) renderHeader(width int) string {
	title := fmt.Sprintf("%d - %s (by %s)", m.project.ID, m.project.Name, m.grouping)

	var statusParts []string
	if m.loading {
		statusParts = append(statusParts, m.spinner.View()+"loading")
	}

	total := 0
	for _, cards := range m.filteredCards {
		total += len(cards)
	}
	statusParts = append(statusParts, fmt.Sprintf("%d cards", total))

	if m.filterText != "" {
		statusParts = append(statusParts, fmt.Sprintf("/%s", m.filterText))
	}
	statusParts = append(statusParts, "[f]group [?]help")

	status := strings.Join(statusParts, " | ")

	padding := width - lipgloss.Width(title) - lipgloss.Width(status) - 2
	if padding < 1 {
		padding = 1
	}
	return titleStyle.Render(title) + strings.Repeat(" ", padding) + dimStyle.Render(status)
}

// renderSecondHeader renders navigation hints and position info
func (m BoardModel) renderSecondHeader(width int) string {
	left := "h/l:col j/k:card o:issue enter:history r:reload"

	right := ""
	if m.errorToast != "" {
		right = errorStyle.Render(m.errorToast)
	} else if len(m.columns) > 0 {
		col := m.columns[m.selectedColumn]
		colPos := fmt.Sprintf("col %d/%d", m.selectedColumn+1, len(m.columns))
		if cards := m.filteredCards[col]; len(cards) > 0 {
			right = fmt.Sprintf("%s | card %d/%d", colPos, m.selectedCard[col]+1, len(cards))
		} else {
			right = colPos
		}
	}

	padding := width - len(left) - lipgloss.Width(right) - 2
	if padding < 1 {
		padding = 1
	}
	return dimStyle.Render(left) + strings.Repeat(" ", padding) + right
}

// renderBoard renders the columns within the given dimensions, scrolling
// horizontally when they overflow.
func (m BoardModel) renderBoard(totalWidth, totalHeight int) string {
	numCols := len(m.columns)
	if numCols == 0 {
		return ""
	}

	// lipgloss Border adds 2 lines to the content height
	colContentHeight := totalHeight - 2
	if colContentHeight < 3 {
		colContentHeight = 3
	}

	visibleCols := totalWidth / minColumnWidth
	if visibleCols < 1 {
		visibleCols = 1
	}
	if visibleCols > numCols {
		visibleCols = numCols
	}

	colWidth := totalWidth / visibleCols
	if colWidth > maxColumnWidth {
		colWidth = maxColumnWidth
	}
	if colWidth < minColumnWidth {
		colWidth = minColumnWidth
	}

	// 2 border + 2 padding
	innerWidth := colWidth - 4
	if innerWidth < 10 {
		innerWidth = 10
	}

	startCol := m.columnOffset
	endCol := startCol + visibleCols
	if endCol > numCols {
		endCol = numCols
		startCol = endCol - visibleCols
		if startCol < 0 {
			startCol = 0
		}
	}

	columnViews := make([]string, 0, visibleCols+2)
	if startCol > 0 {
		columnViews = append(columnViews, scrollIndicator("◀", colContentHeight+2))
	}
	for i := startCol; i < endCol; i++ {
		columnViews = append(columnViews, m.renderColumn(m.columns[i], i == m.selectedColumn, colWidth, colContentHeight, innerWidth, i+1))
	}
	if endCol < numCols {
		columnViews = append(columnViews, scrollIndicator("▶", colContentHeight+2))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, columnViews...)
}

func scrollIndicator(arrow string, height int) string {
	return lipgloss.NewStyle().
		Width(2).
		Height(height).
		Foreground(lipgloss.Color("205")).
		Align(lipgloss.Center, lipgloss.Center).
		Render(arrow)
}

// renderColumn renders a single column. innerHeight excludes the border.
func (m BoardModel) renderColumn(col string, selected bool, width, innerHeight, innerWidth, colNum int) string {
	cards := m.filteredCards[col]

	headerText := fmt.Sprintf("[%d] %s (%d)", colNum, col, len(cards))
	if len(headerText) > innerWidth {
		headerText = headerText[:innerWidth-1] + "…"
	}

	scrollOffset := m.scrollOffset[col]
	selectedIdx := m.selectedCard[col]

	availableSlots := innerHeight - 1 // header line
	if availableSlots < 1 {
		availableSlots = 1
	}
	if scrollOffset > 0 {
		availableSlots--
	}
	endIdx := scrollOffset + availableSlots
	needDown := false
	if endIdx < len(cards) {
		needDown = true
		endIdx--
	}
	if endIdx > len(cards) {
		endIdx = len(cards)
	}

	lines := []string{ColumnHeaderStyle(col).Render(headerText)}
	if scrollOffset > 0 {
		lines = append(lines, dimStyle.Render(fmt.Sprintf("↑ %d more", scrollOffset)))
	}
	for i := scrollOffset; i < endIdx; i++ {
		group, ok := m.groups[cards[i]]
		if !ok {
			continue
		}
		text := m.formatCardText(group.Latest, innerWidth-3) // "> " prefix
		if selected && i == selectedIdx {
			lines = append(lines, selectedCardStyle.Render("> "+text))
		} else {
			lines = append(lines, cardStyle.Render("  "+text))
		}
	}
	if remaining := len(cards) - endIdx; needDown && remaining > 0 {
		lines = append(lines, dimStyle.Render(fmt.Sprintf("↓ %d more", remaining)))
	}
	if len(cards) == 0 {
		lines = append(lines, dimStyle.Render("(empty)"))
	}

	borderColor := lipgloss.Color("240")
	if selected {
		borderColor = lipgloss.Color("205")
	}

	// DO NOT use MaxHeight - it truncates the border!
	colStyle := lipgloss.NewStyle().
		Width(width-2).
		Height(innerHeight).
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor)

	return colStyle.Render(strings.Join(lines, "\n"))
}

// formatCardText renders "CODE Name" with the version right-aligned.
func (m BoardModel) formatCardText(card *domain.Card, maxWidth int) string {
	title := card.Code() + " " + card.Name
	suffix := "v" + card.Version.String()

	availableForTitle := maxWidth - len(suffix) - 1
	if availableForTitle < 5 {
		availableForTitle = 5
	}
	if len(title) > availableForTitle {
		title = title[:availableForTitle-1] + "…"
	}

	padding := maxWidth - lipgloss.Width(title) - len(suffix)
	if padding < 1 {
		padding = 1
	}
	return title + strings.Repeat(" ", padding) + dimStyle.Render(suffix)
}

// loadGroups refreshes the version histories from the store.
func (m *BoardModel) loadGroups() error {
	groups, err := m.store.Groups(m.project.ID)
	if err != nil {
		return err
	}
	m.groups = make(map[int]store.Group, len(groups))
	for _, g := range groups {
		m.groups[g.Number] = g
	}
	return nil
}

// rebuildColumns derives the columns of the current grouping.
func (m *BoardModel) rebuildColumns() {
	latest := make([]*domain.Card, 0, len(m.groups))
	for _, g := range m.groups {
		latest = append(latest, g.Latest)
	}
	m.columns = m.grouping.Columns(latest)

	if m.selectedColumn >= len(m.columns) {
		m.selectedColumn = 0
	}
}

// applyFilter filters cards and sorts them into columns by card number.
func (m *BoardModel) applyFilter() {
	m.filteredCards = make(map[string][]int, len(m.columns))
	for _, col := range m.columns {
		m.filteredCards[col] = []int{}
	}

	needle := strings.ToLower(m.filterText)
	for _, number := range sortedNumbers(m.groups) {
		card := m.groups[number].Latest
		if needle != "" &&
			!strings.Contains(strings.ToLower(card.Name), needle) &&
			!strings.Contains(card.Code(), needle) {
			continue
		}
		col := m.grouping.Key(card)
		m.filteredCards[col] = append(m.filteredCards[col], number)
	}

	// Reset scroll offsets so results that fit are not shown as scrolled
	for col, cards := range m.filteredCards {
		m.scrollOffset[col] = 0
		if m.selectedCard[col] >= len(cards) {
			if len(cards) > 0 {
				m.selectedCard[col] = len(cards) - 1
			} else {
				m.selectedCard[col] = 0
			}
		}
	}
}

// moveCardSelection moves the card selection up or down by delta
func (m *BoardModel) moveCardSelection(delta int) {
	if len(m.columns) == 0 {
		return
	}
	col := m.columns[m.selectedColumn]
	cards := m.filteredCards[col]
	if len(cards) == 0 {
		return
	}

	idx := m.selectedCard[col] + delta
	if idx < 0 {
		idx = 0
	}
	if idx >= len(cards) {
		idx = len(cards) - 1
	}
	m.selectedCard[col] = idx
	m.adjustScroll(col)
}

// jumpToCard jumps to a specific card index. Use -1 to jump to last card.
func (m *BoardModel) jumpToCard(idx int) {
	if len(m.columns) == 0 {
		return
	}
	col := m.columns[m.selectedColumn]
	cards := m.filteredCards[col]
	if len(cards) == 0 {
		return
	}

	if idx < 0 || idx >= len(cards) {
		idx = len(cards) - 1
	}
	m.selectedCard[col] = idx
	m.adjustScroll(col)
}

// adjustScroll ensures the selected card is visible
func (m *BoardModel) adjustScroll(col string) {
	selectedIdx := m.selectedCard[col]
	scrollOffset := m.scrollOffset[col]

	contentHeight := m.height - headerLines - 2 // column borders
	if m.filterMode {
		contentHeight--
	}
	visibleCards := contentHeight - 3 // header + potential scroll indicators
	if visibleCards < 3 {
		visibleCards = 3
	}

	if selectedIdx < scrollOffset {
		m.scrollOffset[col] = selectedIdx
	}
	if selectedIdx >= scrollOffset+visibleCards {
		m.scrollOffset[col] = selectedIdx - visibleCards + 1
	}
}

// adjustColumnScroll ensures the selected column is visible (horizontal carousel)
func (m *BoardModel) adjustColumnScroll() {
	if len(m.columns) == 0 || m.width == 0 {
		return
	}

	visibleCols := m.width / minColumnWidth
	if visibleCols < 1 {
		visibleCols = 1
	}
	if visibleCols > len(m.columns) {
		visibleCols = len(m.columns)
	}

	if m.selectedColumn < m.columnOffset {
		m.columnOffset = m.selectedColumn
	}
	if m.selectedColumn >= m.columnOffset+visibleCols {
		m.columnOffset = m.selectedColumn - visibleCols + 1
	}
}

// getSelectedGroup returns the version history under the cursor.
func (m BoardModel) getSelectedGroup() (store.Group, bool) {
	if len(m.columns) == 0 {
		return store.Group{}, false
	}
	col := m.columns[m.selectedColumn]
	cards := m.filteredCards[col]
	if len(cards) == 0 {
		return store.Group{}, false
	}

	idx := m.selectedCard[col]
	if idx >= len(cards) {
		idx = 0
	}
	g, ok := m.groups[cards[idx]]
	return g, ok
}

// reload re-reads the project from the backing table.
func (m BoardModel) reload() tea.Cmd {
	return func() tea.Msg {
		report, err := m.store.Load(m.ctx, m.project.ID)
		return projectReloadedMsg{report: report, err: err}
	}
}

// Message types
type (
	projectReloadedMsg struct {
		report *store.LoadReport
		err    error
	}
	changeGroupingMsg struct{}
	openDetailMsg     struct{ group store.Group }
)

// renderAllColumns renders the board area at the current size.
func (m BoardModel) renderAllColumns() string {
	return m.renderBoard(m.width, m.height-headerLines)
}
