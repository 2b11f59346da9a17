// Package export builds the JSON shape consumed by downstream publishing.
package export

import (
	"encoding/json"
	"strconv"

	"github.com/h0rv/cardsync/internal/domain"
	"github.com/h0rv/cardsync/internal/textcodec"
)

// Value is a mechanical value; numbers marshal as JSON numbers and the
// special values as strings.
type Value domain.Value

func (v Value) MarshalJSON() ([]byte, error) {
	dv := domain.Value(v)
	if dv.Special != "" {
		return json.Marshal(dv.Special)
	}
	return []byte(strconv.Itoa(dv.N)), nil
}

// Icons are the challenge icons of a character.
type Icons struct {
	Military bool `json:"military"`
	Intrigue bool `json:"intrigue"`
	Power    bool `json:"power"`
}

// Card is the export shape of one card. Type-conditional fields are omitted
// for card types that do not have them.
type Card struct {
	Code        string   `json:"code"`
	Type        string   `json:"type"`
	Name        string   `json:"name"`
	Quantity    int      `json:"quantity"`
	Faction     string   `json:"faction"`
	Traits      []string `json:"traits"`
	Text        string   `json:"text"`
	Flavor      string   `json:"flavor,omitempty"`
	DeckLimit   int      `json:"deckLimit"`
	Illustrator string   `json:"illustrator"`
	ImageURL    string   `json:"imageUrl"`
	Version     string   `json:"version"`

	Unique     *bool  `json:"unique,omitempty"`
	Cost       *Value `json:"cost,omitempty"`
	Strength   *Value `json:"strength,omitempty"`
	Icons      *Icons `json:"icons,omitempty"`
	Income     *Value `json:"income,omitempty"`
	Initiative *Value `json:"initiative,omitempty"`
	Claim      *Value `json:"claim,omitempty"`
	Reserve    *Value `json:"reserve,omitempty"`
}

// FromCard converts a card. Text and flavor are exported in their encoded
// storage form.
func FromCard(card *domain.Card, imageURL string) Card {
	out := Card{
		Code:        card.Code(),
		Type:        string(card.Type()),
		Name:        card.Name,
		Quantity:    quantity(card),
		Faction:     card.Faction,
		Traits:      append([]string{}, card.Traits...),
		Text:        textcodec.Encode(card.Text),
		DeckLimit:   card.DeckLimit,
		Illustrator: card.Illustrator,
		ImageURL:    imageURL,
		Version:     card.Version.String(),
	}
	if card.Flavor != nil {
		out.Flavor = textcodec.Encode(card.Flavor)
	}
	if out.DeckLimit == 0 {
		out.DeckLimit = domain.DefaultDeckLimit(card.Type())
	}

	switch st := card.Stats.(type) {
	case domain.CharacterStats:
		out.Unique = boolPtr(st.Unique)
		out.Cost = valuePtr(st.Cost)
		out.Strength = valuePtr(st.Strength)
		out.Icons = &Icons{Military: st.Icons.Military, Intrigue: st.Icons.Intrigue, Power: st.Icons.Power}
	case domain.LocationStats:
		out.Unique = boolPtr(st.Unique)
		out.Cost = valuePtr(st.Cost)
	case domain.AttachmentStats:
		out.Unique = boolPtr(st.Unique)
		out.Cost = valuePtr(st.Cost)
	case domain.EventStats:
		out.Cost = valuePtr(st.Cost)
	case domain.PlotStats:
		out.Income = valuePtr(st.Income)
		out.Initiative = valuePtr(st.Initiative)
		out.Claim = valuePtr(st.Claim)
		out.Reserve = valuePtr(st.Reserve)
	case domain.AgendaStats:
	}
	return out
}

// FromCards converts every card; imageURL may be nil.
func FromCards(cards []*domain.Card, imageURL func(*domain.Card) string) []Card {
	out := make([]Card, 0, len(cards))
	for _, c := range cards {
		url := ""
		if imageURL != nil {
			url = imageURL(c)
		}
		out = append(out, FromCard(c, url))
	}
	return out
}

// quantity is the number of copies printed in a pack: one full deck limit.
func quantity(card *domain.Card) int {
	if card.DeckLimit > 0 {
		return card.DeckLimit
	}
	return domain.DefaultDeckLimit(card.Type())
}

func boolPtr(b bool) *bool { return &b }

func valuePtr(v domain.Value) *Value {
	if !v.Set {
		return nil
	}
	ev := Value(v)
	return &ev
}
