package store

import (
	"sort"

	"github.com/h0rv/cardsync/internal/domain"
)

// Group is the version history of one card number: the latest version and
// every earlier one.
type Group struct {
	Number   int
	Latest   *domain.Card
	Previous []*domain.Card // descending version
}

// Versions returns Latest followed by Previous.
func (g Group) Versions() []*domain.Card {
	return append([]*domain.Card{g.Latest}, g.Previous...)
}

// GroupVersions partitions cards by number, ordered by number. Within a group
// versions are sorted descending; equal versions keep their input order.
func GroupVersions(cards []*domain.Card) []Group {
	byNumber := make(map[int][]*domain.Card)
	var numbers []int
	for _, card := range cards {
		if _, seen := byNumber[card.Number]; !seen {
			numbers = append(numbers, card.Number)
		}
		byNumber[card.Number] = append(byNumber[card.Number], card)
	}
	sort.Ints(numbers)

	groups := make([]Group, 0, len(numbers))
	for _, n := range numbers {
		versions := byNumber[n]
		sort.SliceStable(versions, func(i, j int) bool {
			return versions[j].Version.Less(versions[i].Version)
		})
		groups = append(groups, Group{
			Number:   n,
			Latest:   versions[0],
			Previous: versions[1:],
		})
	}
	return groups
}

// Latest returns the latest version of every card number.
func Latest(groups []Group) []*domain.Card {
	cards := make([]*domain.Card, 0, len(groups))
	for _, g := range groups {
		cards = append(cards, g.Latest)
	}
	return cards
}
