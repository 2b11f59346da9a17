package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/h0rv/cardsync/internal/domain"
	"github.com/h0rv/cardsync/internal/sheet"
	"github.com/h0rv/cardsync/internal/textcodec"
)

// recordingTable counts grouped writes on top of a real SQLite table.
type recordingTable struct {
	*sheet.SQLiteTable
	updates [][]sheet.Row
}

func (r *recordingTable) Update(ctx context.Context, projectID int, rows []sheet.Row) error {
	r.updates = append(r.updates, rows)
	return r.SQLiteTable.Update(ctx, projectID, rows)
}

func createTestCard(number int, version domain.Version) *domain.Card {
	return &domain.Card{
		ProjectID: 1,
		Number:    number,
		Version:   version,
		Faction:   "Greyjoy",
		Stats:     domain.EventStats{Costed: domain.Costed{Cost: domain.Num(1)}},
		Name:      "What Is Dead May Never Die",
		Text:      textcodec.Text{{Text: "Action:", Style: textcodec.Bold}, {Text: " Stand a character."}},
		DeckLimit: 3,
	}
}

func createTestStore(t *testing.T, cards ...*domain.Card) (*Store, *recordingTable) {
	t.Helper()
	ctx := context.Background()

	table, err := sheet.OpenSQLite(filepath.Join(t.TempDir(), "cards.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = table.Close() })

	rows := make([][]string, 0, len(cards))
	for _, c := range cards {
		rows = append(rows, sheet.Serialize(c))
	}
	if len(rows) > 0 {
		_, err = table.Append(ctx, 1, rows)
		require.NoError(t, err)
	}

	rec := &recordingTable{SQLiteTable: table}
	s := New(rec, zap.NewNop())
	_, err = s.Load(ctx, 1)
	require.NoError(t, err)
	return s, rec
}

func TestGroupVersions(t *testing.T) {
	a1 := createTestCard(1, domain.V(1, 0, 0))
	a2 := createTestCard(1, domain.V(2, 0, 0))
	a3 := createTestCard(1, domain.V(1, 5, 0))
	b1 := createTestCard(2, domain.V(1, 0, 0))

	groups := GroupVersions([]*domain.Card{b1, a1, a2, a3})
	require.Len(t, groups, 2)

	assert.Equal(t, 1, groups[0].Number)
	assert.Same(t, a2, groups[0].Latest)
	assert.Equal(t, []*domain.Card{a3, a1}, groups[0].Previous)
	assert.Equal(t, []*domain.Card{a2, a3, a1}, groups[0].Versions())

	assert.Equal(t, 2, groups[1].Number)
	assert.Same(t, b1, groups[1].Latest)
	assert.Empty(t, groups[1].Previous)

	assert.Equal(t, []*domain.Card{a2, b1}, Latest(groups))
}

func TestGroupVersions_TieKeepsInputOrder(t *testing.T) {
	first := createTestCard(1, domain.V(1, 0, 0))
	second := createTestCard(1, domain.V(1, 0, 0))
	second.Name = "duplicate"

	groups := GroupVersions([]*domain.Card{first, second})
	require.Len(t, groups, 1)
	assert.Same(t, first, groups[0].Latest)
	assert.Same(t, second, groups[0].Previous[0])
}

func TestGroupVersions_Empty(t *testing.T) {
	assert.Empty(t, GroupVersions(nil))
}

func TestLoad_SkipsBadRows(t *testing.T) {
	ctx := context.Background()
	table, err := sheet.OpenSQLite(filepath.Join(t.TempDir(), "cards.db"))
	require.NoError(t, err)
	defer func() { _ = table.Close() }()

	good := sheet.Serialize(createTestCard(1, domain.V(1, 0, 0)))
	badVersion := sheet.Serialize(createTestCard(2, domain.V(1, 0, 0)))
	badVersion[sheet.ColVersion] = "soon"
	_, err = table.Append(ctx, 1, [][]string{good, badVersion, {""}, good})
	require.NoError(t, err)

	s := New(table, zap.NewNop())
	report, err := s.Load(ctx, 1)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Loaded)
	require.Len(t, report.Errors, 3)
	assert.Equal(t, 1, report.Errors[0].Index)
	var de *sheet.DeserializationError
	require.ErrorAs(t, report.Errors[0], &de)
	assert.Equal(t, 2, de.Number)
	assert.ErrorIs(t, report.Errors[2], ErrDuplicateKey)
}

func TestCards_ReturnsCopies(t *testing.T) {
	s, _ := createTestStore(t, createTestCard(1, domain.V(1, 0, 0)))

	cards, err := s.Cards(1)
	require.NoError(t, err)
	require.Len(t, cards, 1)
	cards[0].Note = &domain.Note{Type: domain.NoteUpdated}

	again, err := s.Card(cards[0].Key())
	require.NoError(t, err)
	assert.Nil(t, again.Note)
}

func TestCards_NotLoaded(t *testing.T) {
	s, _ := createTestStore(t)

	_, err := s.Cards(9)
	assert.ErrorIs(t, err, ErrProjectNotLoaded)

	_, err = s.Card(domain.Key{ProjectID: 1, Number: 4, Version: domain.V(1, 0, 0)})
	assert.ErrorIs(t, err, ErrCardNotFound)
}

func TestSave_SingleGroupedWrite(t *testing.T) {
	ctx := context.Background()
	s, rec := createTestStore(t,
		createTestCard(1, domain.V(1, 0, 0)),
		createTestCard(2, domain.V(1, 0, 0)),
		createTestCard(3, domain.V(1, 0, 0)),
	)

	cards, err := s.Cards(1)
	require.NoError(t, err)
	for _, c := range cards[:2] {
		c.GithubStatus = &domain.GithubStatus{Status: domain.IssueOpen, URL: "https://example.test/" + c.Code()}
	}

	require.NoError(t, s.Save(ctx, cards[:2]))
	require.Len(t, rec.updates, 1)
	assert.Len(t, rec.updates[0], 2)

	// a fresh store sees the persisted state
	reloaded := New(rec.SQLiteTable, zap.NewNop())
	_, err = reloaded.Load(ctx, 1)
	require.NoError(t, err)
	card, err := reloaded.Card(cards[1].Key())
	require.NoError(t, err)
	require.NotNil(t, card.GithubStatus)
	assert.Equal(t, "https://example.test/1002", card.GithubStatus.URL)
}

func TestSave_UnknownCardWritesNothing(t *testing.T) {
	ctx := context.Background()
	s, rec := createTestStore(t, createTestCard(1, domain.V(1, 0, 0)))

	err := s.Save(ctx, []*domain.Card{
		createTestCard(1, domain.V(1, 0, 0)),
		createTestCard(5, domain.V(1, 0, 0)),
	})
	assert.ErrorIs(t, err, ErrCardNotFound)
	assert.Empty(t, rec.updates)
}

func TestNewVersion(t *testing.T) {
	ctx := context.Background()
	first := createTestCard(1, domain.V(1, 0, 0))
	first.GithubStatus = &domain.GithubStatus{Status: domain.IssueClosed, URL: "u"}
	s, _ := createTestStore(t, first)

	next, err := s.NewVersion(ctx, 1, 1, domain.V(1, 1, 0), domain.Note{Type: domain.NoteUpdated, Text: "Cost 1 -> 0"})
	require.NoError(t, err)
	assert.Nil(t, next.GithubStatus)
	assert.True(t, next.IsChanged())

	group, err := s.Group(1, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.V(1, 1, 0), group.Latest.Version)
	require.Len(t, group.Previous, 1)
	assert.Equal(t, domain.V(1, 0, 0), group.Previous[0].Version)

	_, err = s.NewVersion(ctx, 1, 1, domain.V(1, 0, 5), domain.Note{Type: domain.NoteUpdated})
	assert.Error(t, err)

	_, err = s.NewVersion(ctx, 1, 42, domain.V(2, 0, 0), domain.Note{Type: domain.NoteUpdated})
	assert.ErrorIs(t, err, ErrCardNotFound)
}

func TestDestroy(t *testing.T) {
	ctx := context.Background()
	card := createTestCard(1, domain.V(1, 0, 0))
	s, rec := createTestStore(t, card)

	require.NoError(t, s.Destroy(ctx, card.Key()))
	assert.ErrorIs(t, s.Destroy(ctx, card.Key()), ErrCardNotFound)

	rows, err := rec.Rows(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, rows)
}
