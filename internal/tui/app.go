package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/h0rv/cardsync/internal/domain"
	"github.com/h0rv/cardsync/internal/store"
)

// AppScreen represents the different screens in the application flow.
type AppScreen int

const (
	ScreenLoading AppScreen = iota
	ScreenProjectPicker
	ScreenGroupingPicker
	ScreenBoard
	ScreenDetail
)

// AppModel is the root Bubble Tea model that manages screen transitions.
// It orchestrates the flow from project selection -> board -> card history.
type AppModel struct {
	// Dependencies
	store    *store.Store
	projects []domain.Project
	ctx      context.Context

	// CLI flag (pre-filled value), 0 when unset
	projectFlag int

	// Current state
	currentScreen AppScreen
	currentModel  tea.Model
	err           error
	loadingMsg    string

	project *domain.Project

	// Cached board to preserve state across screen transitions
	boardModel *BoardModel
}

// NewAppModel creates a new app model. Pass 0 as projectFlag to pick the
// project interactively when more than one is configured.
func NewAppModel(s *store.Store, projects []domain.Project, ctx context.Context, projectFlag int) AppModel {
	return AppModel{
		store:         s,
		projects:      projects,
		ctx:           ctx,
		projectFlag:   projectFlag,
		currentScreen: ScreenLoading,
		loadingMsg:    "Loading cards...",
	}
}

// Init initializes the app model.
func (m AppModel) Init() tea.Cmd {
	if m.projectFlag > 0 {
		for _, p := range m.projects {
			if p.ID == m.projectFlag {
				return m.loadProject(p)
			}
		}
		return func() tea.Msg {
			return ErrorMsg{Err: fmt.Errorf("project %d is not configured", m.projectFlag)}
		}
	}

	switch len(m.projects) {
	case 0:
		return func() tea.Msg { return ErrorMsg{Err: fmt.Errorf("no projects configured")} }
	case 1:
		return m.loadProject(m.projects[0])
	default:
		return func() tea.Msg { return showProjectPickerMsg{} }
	}
}

// Update handles messages and transitions between screens.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Global quit handler
		if msg.String() == "ctrl+c" && m.currentScreen != ScreenBoard {
			return m, tea.Quit
		}

	case ErrorMsg:
		m.err = msg.Err
		return m, nil

	case QuitMsg:
		return m, tea.Quit

	case showProjectPickerMsg:
		m.currentScreen = ScreenProjectPicker
		pickerModel := NewProjectPickerModel(m.projects)
		m.currentModel = pickerModel
		return m, pickerModel.Init()

	case ProjectSelectedMsg:
		m.currentModel = nil
		m.currentScreen = ScreenLoading
		return m, m.loadProject(msg.Project)

	case projectLoadedMsg:
		m.project = &msg.project
		m.currentScreen = ScreenBoard
		boardModel := NewBoardModel(m.store, msg.project, m.ctx)
		if msg.skipped > 0 {
			boardModel.errorToast = fmt.Sprintf("%d row(s) skipped", msg.skipped)
		}
		m.boardModel = &boardModel
		m.currentModel = boardModel
		return m, boardModel.Init()

	case changeGroupingMsg:
		m.currentScreen = ScreenGroupingPicker
		pickerModel := NewGroupingPickerModel(m.boardModel.grouping)
		m.currentModel = pickerModel
		return m, pickerModel.Init()

	case GroupingSelectedMsg:
		board := m.boardModel.SetGrouping(msg.Grouping)
		m.boardModel = &board
		m.currentScreen = ScreenBoard
		m.currentModel = board
		return m, tea.WindowSize()

	case openDetailMsg:
		m.currentScreen = ScreenDetail
		detailModel := NewDetailModel(msg.group)
		m.currentModel = detailModel
		return m, detailModel.Init()

	case closeDetailMsg:
		m.currentScreen = ScreenBoard
		m.currentModel = *m.boardModel
		// Request window size to ensure proper rendering
		return m, tea.WindowSize()
	}

	// Delegate to current screen's model
	if m.currentModel != nil {
		var cmd tea.Cmd
		m.currentModel, cmd = m.currentModel.Update(msg)
		// Keep boardModel in sync when on board screen
		if m.currentScreen == ScreenBoard {
			if bm, ok := m.currentModel.(BoardModel); ok {
				m.boardModel = &bm
			}
		}
		return m, cmd
	}

	return m, nil
}

// View renders the current screen.
func (m AppModel) View() string {
	if m.err != nil {
		return ErrorStyle.Render(fmt.Sprintf("Error: %v\n\nPress Ctrl+C to quit", m.err))
	}

	if m.currentModel != nil {
		return m.currentModel.View()
	}

	return m.loadingMsg + "\n\nPress Ctrl+C to quit"
}

// loadProject creates a command that loads a project into the store.
func (m AppModel) loadProject(p domain.Project) tea.Cmd {
	return func() tea.Msg {
		report, err := m.store.Load(m.ctx, p.ID)
		if err != nil {
			return ErrorMsg{Err: fmt.Errorf("failed to load project %d: %w", p.ID, err)}
		}
		return projectLoadedMsg{project: p, skipped: len(report.Errors)}
	}
}

// Custom messages for app transitions.
type (
	showProjectPickerMsg struct{}

	projectLoadedMsg struct {
		project domain.Project
		skipped int
	}
)
