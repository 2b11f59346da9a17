package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/h0rv/cardsync/internal/domain"
)

// choice wraps a value for use in bubbles/list.
type choice[T any] struct {
	value T
	title string
	desc  string
}

func (c choice[T]) FilterValue() string { return c.title }
func (c choice[T]) Title() string       { return c.title }
func (c choice[T]) Description() string { return c.desc }

// choiceDelegate renders numbered two-line entries.
type choiceDelegate struct{}

func (d choiceDelegate) Height() int                             { return 2 }
func (d choiceDelegate) Spacing() int                            { return 1 }
func (d choiceDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d choiceDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	i, ok := item.(list.DefaultItem)
	if !ok {
		return
	}

	str := fmt.Sprintf("%d. %s", index+1, i.Title())
	desc := i.Description()

	if index == m.Index() {
		fmt.Fprint(w, SelectedItemStyle.Render("> "+str))
		fmt.Fprint(w, "\n  "+NormalItemStyle.Render(desc))
	} else {
		fmt.Fprint(w, NormalItemStyle.Render("  "+str))
		fmt.Fprint(w, "\n  "+lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render(desc))
	}
}

// PickerModel lets the user choose one value from a list. Enter emits the
// select message of the highlighted value; q or esc emits the back message.
type PickerModel[T any] struct {
	list     list.Model
	onSelect func(T) tea.Msg
	onBack   func() tea.Msg
}

func newPickerModel[T any](title string, choices []choice[T], onSelect func(T) tea.Msg, onBack func() tea.Msg) PickerModel[T] {
	items := make([]list.Item, len(choices))
	for i, c := range choices {
		items[i] = c
	}

	l := list.New(items, choiceDelegate{}, 80, 20)
	l.Title = title
	l.SetShowStatusBar(false)
	l.Styles.Title = TitleStyle

	return PickerModel[T]{list: l, onSelect: onSelect, onBack: onBack}
}

// NewProjectPickerModel lists the configured projects. Leaving it quits.
func NewProjectPickerModel(projects []domain.Project) PickerModel[domain.Project] {
	choices := make([]choice[domain.Project], len(projects))
	for i, p := range projects {
		desc := fmt.Sprintf("Card codes %d001-%d999", p.ID, p.ID)
		if p.Short != "" {
			desc += ", short name " + p.Short
		}
		choices[i] = choice[domain.Project]{value: p, title: fmt.Sprintf("%d: %s", p.ID, p.Name), desc: desc}
	}

	return newPickerModel("Select a Project", choices,
		func(p domain.Project) tea.Msg { return ProjectSelectedMsg{Project: p} },
		func() tea.Msg { return QuitMsg{} },
	)
}

// Init initializes the model.
func (m PickerModel[T]) Init() tea.Cmd {
	return tea.WindowSize()
}

// Update handles messages and updates the model state.
func (m PickerModel[T]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width - 2)
		m.list.SetHeight(msg.Height - 2)
		return m, nil

	case tea.KeyMsg:
		// Keys belong to the filter input while it is open
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "ctrl+c":
			return m, func() tea.Msg { return QuitMsg{} }
		case "q", "esc":
			return m, m.onBack
		case "enter":
			if item, ok := m.list.SelectedItem().(choice[T]); ok {
				return m, func() tea.Msg { return m.onSelect(item.value) }
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the model.
func (m PickerModel[T]) View() string {
	return m.list.View()
}
