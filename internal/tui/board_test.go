package tui

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/h0rv/cardsync/internal/domain"
	"github.com/h0rv/cardsync/internal/sheet"
	"github.com/h0rv/cardsync/internal/store"
	"github.com/h0rv/cardsync/internal/textcodec"
)

var testProject = domain.Project{ID: 1, Name: "Core Set", Short: "core"}

func createTestCard(number int, version domain.Version, name, faction string, stats domain.Stats) *domain.Card {
	return &domain.Card{
		ProjectID: 1,
		Number:    number,
		Version:   version,
		Faction:   faction,
		Stats:     stats,
		Name:      name,
		Text:      textcodec.Text{{Text: "Action:", Style: textcodec.Bold}, {Text: " Kneel this card."}},
		DeckLimit: domain.DefaultDeckLimit(stats.Type()),
	}
}

// createTestStore loads one card per development stage (except Other), with
// two versions of card 2.
func createTestStore(t *testing.T) *store.Store {
	t.Helper()
	v1 := domain.V(1, 0, 0)
	cost := domain.Costed{Cost: domain.Num(2)}

	preRelease := createTestCard(1, v1, "Winter Is Coming", "Stark", domain.EventStats{Costed: cost})

	playtested := createTestCard(2, v1, "Tyrion Lannister", "Lannister",
		domain.CharacterStats{Costed: cost, Strength: domain.Num(4), Icons: domain.Icons{Intrigue: true}})
	playtested.PlaytestingVersion = &v1
	changed := createTestCard(2, domain.V(1, 1, 0), "Tyrion Lannister", "Lannister",
		domain.CharacterStats{Costed: cost, Strength: domain.Num(3), Icons: domain.Icons{Intrigue: true}})
	changed.PlaytestingVersion = &v1
	changed.Note = &domain.Note{Type: domain.NoteUpdated, Text: "Strength reduced."}

	awaiting := createTestCard(3, v1, "Dragonstone", "Baratheon", domain.LocationStats{Costed: cost})
	awaiting.PlaytestingVersion = &v1
	awaiting.GithubStatus = &domain.GithubStatus{Status: domain.IssueOpen, URL: "https://github.com/acme/cards/issues/3"}

	playtesting := createTestCard(4, v1, "Ice", "Stark", domain.AttachmentStats{Costed: cost})
	playtesting.PlaytestingVersion = &v1

	released := createTestCard(5, v1, "A Noble Cause", "Stark",
		domain.PlotStats{Income: domain.Num(5), Initiative: domain.Num(0), Claim: domain.Num(1), Reserve: domain.Num(6)})
	released.PlaytestingVersion = &v1
	released.Release = &domain.Release{PackShort: "core", ReleaseNumber: 5}

	table, err := sheet.OpenSQLite(filepath.Join(t.TempDir(), "cards.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = table.Close() })

	var rows [][]string
	for _, c := range []*domain.Card{preRelease, playtested, changed, awaiting, playtesting, released} {
		rows = append(rows, sheet.Serialize(c))
	}
	_, err = table.Append(context.Background(), 1, rows)
	require.NoError(t, err)

	s := store.New(table, zap.NewNop())
	_, err = s.Load(context.Background(), 1)
	require.NoError(t, err)
	return s
}

func createTestBoard(t *testing.T) BoardModel {
	t.Helper()
	board := NewBoardModel(createTestStore(t), testProject, context.Background())
	model, _ := board.Update(boardInitMsg{})
	return model.(BoardModel)
}

func press(t *testing.T, m tea.Model, keys ...string) tea.Model {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m, _ = m.Update(msg)
	}
	return m
}

func TestStageOf(t *testing.T) {
	s := createTestStore(t)
	groups, err := s.Groups(1)
	require.NoError(t, err)

	want := []string{StagePreRelease, StageChanged, StageAwaiting, StagePlaytesting, StageReleased}
	require.Len(t, groups, len(want))
	for i, g := range groups {
		assert.Equal(t, want[i], StageOf(g.Latest), "card %d", g.Number)
	}

	// The previous version of card 2 was live in playtesting
	assert.Equal(t, StagePlaytesting, StageOf(groups[1].Previous[0]))
}

func TestBoardModel_RebuildColumns(t *testing.T) {
	board := createTestBoard(t)

	assert.Equal(t, []string{
		StagePreRelease, StageChanged, StageAwaiting, StagePlaytesting, StageReleased, StageOther,
	}, board.columns)
}

func TestBoardModel_ApplyFilter(t *testing.T) {
	board := createTestBoard(t)

	assert.Equal(t, []int{1}, board.filteredCards[StagePreRelease])
	assert.Equal(t, []int{2}, board.filteredCards[StageChanged])
	assert.Equal(t, []int{3}, board.filteredCards[StageAwaiting])
	assert.Equal(t, []int{4}, board.filteredCards[StagePlaytesting])
	assert.Equal(t, []int{5}, board.filteredCards[StageReleased])
	assert.Empty(t, board.filteredCards[StageOther])
}

func TestBoardModel_ApplyFilterWithText(t *testing.T) {
	board := createTestBoard(t)

	t.Run("by name", func(t *testing.T) {
		board.filterText = "ICE"
		(&board).applyFilter()
		assert.Equal(t, []int{4}, board.filteredCards[StagePlaytesting])
		assert.Empty(t, board.filteredCards[StagePreRelease])
	})

	t.Run("by code", func(t *testing.T) {
		board.filterText = "1002"
		(&board).applyFilter()
		assert.Equal(t, []int{2}, board.filteredCards[StageChanged])
		assert.Empty(t, board.filteredCards[StagePlaytesting])
	})
}

func TestBoardModel_FilterMode(t *testing.T) {
	board := createTestBoard(t)

	model := press(t, board, "/", "w", "i", "n", "enter")
	board = model.(BoardModel)

	assert.False(t, board.filterMode)
	assert.Equal(t, "win", board.filterText)
	assert.Equal(t, []int{1}, board.filteredCards[StagePreRelease])
	assert.Empty(t, board.filteredCards[StageChanged])
}

func TestBoardModel_Navigation(t *testing.T) {
	board := createTestBoard(t)
	assert.Equal(t, 0, board.selectedColumn)

	board = press(t, board, "l").(BoardModel)
	assert.Equal(t, 1, board.selectedColumn)

	board = press(t, board, "l").(BoardModel)
	assert.Equal(t, 2, board.selectedColumn)

	board = press(t, board, "h").(BoardModel)
	assert.Equal(t, 1, board.selectedColumn)

	// Cannot move past the first column
	board = press(t, board, "h", "h").(BoardModel)
	assert.Equal(t, 0, board.selectedColumn)
}

func TestBoardModel_CardNavigation(t *testing.T) {
	board := createTestBoard(t).SetGrouping(GroupByFaction)
	board.width = 120
	board.height = 40

	require.Equal(t, []string{"Baratheon", "Lannister", "Stark"}, board.columns)
	assert.Equal(t, []int{1, 4, 5}, board.filteredCards["Stark"])

	board = press(t, board, "l", "l").(BoardModel)
	assert.Equal(t, 0, board.selectedCard["Stark"])

	board = press(t, board, "j").(BoardModel)
	assert.Equal(t, 1, board.selectedCard["Stark"])

	group, ok := board.getSelectedGroup()
	require.True(t, ok)
	assert.Equal(t, "Ice", group.Latest.Name)

	board = press(t, board, "G").(BoardModel)
	assert.Equal(t, 2, board.selectedCard["Stark"])

	// Try to move down past the bottom (should stay)
	board = press(t, board, "j").(BoardModel)
	assert.Equal(t, 2, board.selectedCard["Stark"])

	board = press(t, board, "g").(BoardModel)
	assert.Equal(t, 0, board.selectedCard["Stark"])
}

func TestBoardModel_GroupByType(t *testing.T) {
	board := createTestBoard(t).SetGrouping(GroupByType)

	assert.Len(t, board.columns, len(domain.CardTypes))
	assert.Equal(t, []int{2}, board.filteredCards[string(domain.TypeCharacter)])
	assert.Equal(t, []int{5}, board.filteredCards[string(domain.TypePlot)])
	assert.Empty(t, board.filteredCards[string(domain.TypeAgenda)])
}

func TestBoardModel_EnterOpensHistory(t *testing.T) {
	board := createTestBoard(t)
	board = press(t, board, "l").(BoardModel) // Changed column

	_, cmd := board.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	msg, ok := cmd().(openDetailMsg)
	require.True(t, ok)
	assert.Equal(t, 2, msg.group.Number)
	assert.Len(t, msg.group.Versions(), 2)
}

func TestBoardModel_Reload(t *testing.T) {
	board := createTestBoard(t)

	model, cmd := board.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	board = model.(BoardModel)
	assert.True(t, board.loading)
	require.NotNil(t, cmd)

	model, _ = board.Update(cmd())
	board = model.(BoardModel)
	assert.False(t, board.loading)
	assert.Empty(t, board.errorToast)
	assert.Len(t, board.groups, 5)
}

func TestBoardModel_WindowResize(t *testing.T) {
	board := createTestBoard(t)

	model, _ := board.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	board = model.(BoardModel)

	assert.Equal(t, 120, board.width)
	assert.Equal(t, 40, board.height)
}

func TestBoardModel_View_NotPanic(t *testing.T) {
	board := NewBoardModel(createTestStore(t), testProject, context.Background())

	// Before any initialization, View should not panic
	require.NotPanics(t, func() {
		board.View()
	})

	model, _ := board.Update(boardInitMsg{})
	board = model.(BoardModel)
	board.width = 100
	board.height = 30

	require.NotPanics(t, func() {
		assert.NotEmpty(t, board.View())
	})
}

func TestBoardModel_AllColumnsRendered(t *testing.T) {
	board := createTestBoard(t)
	board.width = 200
	board.height = 30

	view := board.View()

	assert.Contains(t, view, "Core Set")
	assert.Contains(t, view, "5 cards")
	assert.Contains(t, view, StagePreRelease)
	assert.Contains(t, view, StageChanged)
	assert.Contains(t, view, StagePlaytesting)
	assert.Contains(t, view, StageReleased)

	lines := strings.Split(board.renderAllColumns(), "\n")
	assert.Greater(t, len(lines), 1, "Should have multiple lines")
}

func TestFormatCardText_Truncation(t *testing.T) {
	board := createTestBoard(t)

	card := createTestCard(7, domain.V(1, 0, 0), "A Very Long Card Name That Does Not Fit In A Column", "Stark", domain.EventStats{})
	rendered := board.formatCardText(card, 30)

	assert.Contains(t, rendered, "…")
	assert.Contains(t, rendered, "1007")
	assert.Contains(t, rendered, "v1.0.0")
}

func TestDetailModel(t *testing.T) {
	s := createTestStore(t)
	group, err := s.Group(1, 2)
	require.NoError(t, err)

	detail := NewDetailModel(group)
	model, _ := detail.Update(tea.WindowSizeMsg{Width: 140, Height: 60})
	detail = model.(DetailModel)

	view := detail.View()
	assert.Contains(t, view, "1002 Tyrion Lannister v1.1.0 (latest)")
	assert.Contains(t, view, "1002 Tyrion Lannister v1.0.0")
	assert.Contains(t, view, "Strength reduced.")
	assert.Contains(t, view, StageChanged)
	assert.Contains(t, view, "2 version(s)")

	_, cmd := detail.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
	assert.Equal(t, closeDetailMsg{}, cmd())
}

func TestGroupingPicker(t *testing.T) {
	picker := NewGroupingPickerModel(GroupByStage)

	model := press(t, picker, "j")
	_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, GroupingSelectedMsg{Grouping: GroupByFaction}, cmd())

	_, cmd = picker.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, GroupingSelectedMsg{Grouping: GroupByStage}, cmd())
}

func TestAppModel_SingleProjectOpensBoard(t *testing.T) {
	app := NewAppModel(createTestStore(t), []domain.Project{testProject}, context.Background(), 0)

	cmd := app.Init()
	require.NotNil(t, cmd)
	msg := cmd()
	require.IsType(t, projectLoadedMsg{}, msg)

	model, _ := app.Update(msg)
	app = model.(AppModel)
	assert.Equal(t, ScreenBoard, app.currentScreen)
	require.NotNil(t, app.boardModel)

	// f -> grouping picker -> faction
	model, cmd = app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'f'}})
	app = model.(AppModel)
	require.NotNil(t, cmd)
	model, _ = app.Update(cmd())
	app = model.(AppModel)
	assert.Equal(t, ScreenGroupingPicker, app.currentScreen)

	model, _ = app.Update(GroupingSelectedMsg{Grouping: GroupByFaction})
	app = model.(AppModel)
	assert.Equal(t, ScreenBoard, app.currentScreen)
	assert.Equal(t, GroupByFaction, app.boardModel.grouping)
}

func TestAppModel_UnknownProjectFlag(t *testing.T) {
	app := NewAppModel(createTestStore(t), []domain.Project{testProject}, context.Background(), 9)

	msg := app.Init()()
	errMsg, ok := msg.(ErrorMsg)
	require.True(t, ok)
	assert.Contains(t, errMsg.Err.Error(), "project 9")

	model, _ := app.Update(msg)
	assert.Contains(t, model.View(), "Error")
}

func TestAppModel_ManyProjectsShowsPicker(t *testing.T) {
	projects := []domain.Project{testProject, {ID: 2, Name: "Shadows"}}
	app := NewAppModel(createTestStore(t), projects, context.Background(), 0)

	model, _ := app.Update(app.Init()())
	app = model.(AppModel)
	assert.Equal(t, ScreenProjectPicker, app.currentScreen)
	assert.Contains(t, app.View(), "Core Set")
}

func TestHelpModel_StageLegend(t *testing.T) {
	h := NewHelpModel(DefaultKeyMap())

	stageHelp := h.View(100, GroupByStage)
	assert.Contains(t, stageHelp, StageAwaiting)
	assert.Contains(t, stageHelp, "assigned to a pack")

	assert.NotContains(t, h.View(100, GroupByFaction), "assigned to a pack")
}
