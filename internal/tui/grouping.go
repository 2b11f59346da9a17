package tui

import (
	"sort"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/h0rv/cardsync/internal/domain"
	"github.com/h0rv/cardsync/internal/store"
)

// Grouping decides which column of the board a card lands in.
type Grouping int

const (
	GroupByStage Grouping = iota
	GroupByFaction
	GroupByType
)

// Groupings lists every grouping in picker order.
var Groupings = []Grouping{GroupByStage, GroupByFaction, GroupByType}

func (g Grouping) String() string {
	switch g {
	case GroupByFaction:
		return "Faction"
	case GroupByType:
		return "Type"
	default:
		return "Stage"
	}
}

func (g Grouping) description() string {
	switch g {
	case GroupByFaction:
		return "One column per faction"
	case GroupByType:
		return "One column per card type"
	default:
		return "Development stage: pre-release, awaiting implementation, playtesting..."
	}
}

// Development stages, in board order.
const (
	StagePreRelease  = "Pre-release"
	StageChanged     = "Changed"
	StageAwaiting    = "Awaiting Implementation"
	StagePlaytesting = "Playtesting"
	StageReleased    = "Released"
	StageOther       = "Other"
)

var stages = []string{StagePreRelease, StageChanged, StageAwaiting, StagePlaytesting, StageReleased, StageOther}

// StageOf places a card in exactly one development stage.
func StageOf(card *domain.Card) string {
	switch {
	case card.IsReleasable():
		return StageReleased
	case card.IsChanged():
		return StageChanged
	case card.IsPreRelease():
		return StagePreRelease
	case card.GithubStatus != nil && card.GithubStatus.Status == domain.IssueOpen:
		return StageAwaiting
	case card.IsImplemented():
		return StagePlaytesting
	default:
		return StageOther
	}
}

// Key is the column of a card.
func (g Grouping) Key(card *domain.Card) string {
	switch g {
	case GroupByFaction:
		if card.Faction == "" {
			return "Neutral"
		}
		return card.Faction
	case GroupByType:
		return string(card.Type())
	default:
		return StageOf(card)
	}
}

// Columns lists the columns for a set of cards. Stages and types keep their
// fixed order and always show; factions are sorted and only present ones show.
func (g Grouping) Columns(cards []*domain.Card) []string {
	switch g {
	case GroupByType:
		cols := make([]string, len(domain.CardTypes))
		for i, t := range domain.CardTypes {
			cols[i] = string(t)
		}
		return cols
	case GroupByFaction:
		seen := make(map[string]bool)
		var cols []string
		for _, c := range cards {
			if k := g.Key(c); !seen[k] {
				seen[k] = true
				cols = append(cols, k)
			}
		}
		sort.Strings(cols)
		return cols
	default:
		return append([]string(nil), stages...)
	}
}

func sortedNumbers(groups map[int]store.Group) []int {
	numbers := make([]int, 0, len(groups))
	for n := range groups {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)
	return numbers
}

// NewGroupingPickerModel creates a picker with the current grouping selected.
// Leaving it keeps the current grouping.
func NewGroupingPickerModel(current Grouping) PickerModel[Grouping] {
	choices := make([]choice[Grouping], len(Groupings))
	for i, g := range Groupings {
		choices[i] = choice[Grouping]{value: g, title: g.String(), desc: g.description()}
	}

	m := newPickerModel("Group Cards By", choices,
		func(g Grouping) tea.Msg { return GroupingSelectedMsg{Grouping: g} },
		func() tea.Msg { return GroupingSelectedMsg{Grouping: current} },
	)
	m.list.SetFilteringEnabled(false)
	m.list.Select(int(current))
	return m
}
