package export

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/h0rv/cardsync/internal/domain"
	"github.com/h0rv/cardsync/internal/textcodec"
)

func TestFromCard_Character(t *testing.T) {
	card := &domain.Card{
		ProjectID: 2,
		Number:    14,
		Version:   domain.V(1, 2, 0),
		Faction:   "Targaryen",
		Stats: domain.CharacterStats{
			Uniqueness: domain.Uniqueness{Unique: true},
			Costed:     domain.Costed{Cost: domain.Num(5)},
			Strength:   domain.ValueX,
			Icons:      domain.Icons{Military: true, Power: true},
		},
		Name:        "Melisandre",
		Traits:      []string{"Lady", "R'hllor"},
		Text:        textcodec.Text{{Text: "Renown.", Style: textcodec.Bold}},
		Illustrator: "A. Artist",
		DeckLimit:   3,
	}

	data, err := json.Marshal(FromCard(card, "https://img.test/2014.png"))
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "2014", got["code"])
	assert.Equal(t, "Character", got["type"])
	assert.Equal(t, "<b>Renown.</b>", got["text"])
	assert.Equal(t, float64(3), got["quantity"])
	assert.Equal(t, float64(5), got["cost"])
	assert.Equal(t, "X", got["strength"])
	assert.Equal(t, true, got["unique"])
	assert.Equal(t, "https://img.test/2014.png", got["imageUrl"])
	assert.Equal(t, map[string]any{"military": true, "intrigue": false, "power": true}, got["icons"])
	assert.NotContains(t, got, "income")
	assert.NotContains(t, got, "flavor")
}

func TestFromCard_PlotOmitsCharacterFields(t *testing.T) {
	card := &domain.Card{
		ProjectID: 1,
		Number:    60,
		Version:   domain.V(1, 0, 0),
		Faction:   "Neutral",
		Stats: domain.PlotStats{
			Income: domain.Num(4), Initiative: domain.Num(2), Claim: domain.Num(1), Reserve: domain.Num(6),
		},
		Name: "A Noble Cause",
	}

	data, err := json.Marshal(FromCard(card, ""))
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, float64(2), got["deckLimit"])
	assert.Equal(t, float64(6), got["reserve"])
	assert.NotContains(t, got, "cost")
	assert.NotContains(t, got, "unique")
	assert.NotContains(t, got, "icons")
	assert.Equal(t, []any{}, got["traits"])
}

func TestFromCards_ImageURL(t *testing.T) {
	cards := []*domain.Card{
		{ProjectID: 1, Number: 1, Version: domain.V(1, 0, 0), Stats: domain.AgendaStats{}},
		{ProjectID: 1, Number: 2, Version: domain.V(1, 0, 0), Stats: domain.AgendaStats{}},
	}
	out := FromCards(cards, func(c *domain.Card) string { return "img/" + c.Code() })
	require.Len(t, out, 2)
	assert.Equal(t, "img/1002", out[1].ImageURL)
	assert.Equal(t, 1, out[0].DeckLimit)

	assert.Empty(t, FromCards(cards, nil)[0].ImageURL)
}
