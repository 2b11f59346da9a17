package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// CardType is the printed type of a card.
type CardType string

const (
	TypeCharacter  CardType = "Character"
	TypeLocation   CardType = "Location"
	TypeAttachment CardType = "Attachment"
	TypeEvent      CardType = "Event"
	TypePlot       CardType = "Plot"
	TypeAgenda     CardType = "Agenda"
)

// CardTypes lists every card type in display order.
var CardTypes = []CardType{TypeCharacter, TypeLocation, TypeAttachment, TypeEvent, TypePlot, TypeAgenda}

// ErrUnknownType indicates a card type outside CardTypes.
var ErrUnknownType = errors.New("unknown card type")

// ParseCardType matches s case-insensitively against the known card types.
func ParseCardType(s string) (CardType, error) {
	for _, t := range CardTypes {
		if strings.EqualFold(strings.TrimSpace(s), string(t)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownType, s)
}

// DefaultDeckLimit is the number of copies allowed in a deck when a card does
// not print its own limit.
func DefaultDeckLimit(t CardType) int {
	switch t {
	case TypePlot:
		return 2
	case TypeAgenda:
		return 1
	default:
		return 3
	}
}

// Value is a printed mechanical value. Most are integers but some cards print
// "X" or "-" instead.
type Value struct {
	N       int
	Special string
	Set     bool
}

// Num returns an integer value.
func Num(n int) Value {
	return Value{N: n, Set: true}
}

// Special values printed instead of a number.
var (
	ValueX    = Value{Special: "X", Set: true}
	ValueDash = Value{Special: "-", Set: true}
)

// ParseValue parses a cell. An empty cell is an unset value; anything that is
// not an integer is kept as special text.
func ParseValue(s string) Value {
	s = strings.TrimSpace(s)
	if s == "" {
		return Value{}
	}
	if n, err := strconv.Atoi(s); err == nil {
		return Num(n)
	}
	return Value{Special: s, Set: true}
}

// String renders the value the way it is printed.
func (v Value) String() string {
	switch {
	case !v.Set:
		return ""
	case v.Special != "":
		return v.Special
	default:
		return strconv.Itoa(v.N)
	}
}

// Icons are the challenge icons a character can contribute to.
type Icons struct {
	Military bool
	Intrigue bool
	Power    bool
}

// Stats holds the mechanical fields that depend on the card type. It is a
// closed set: every implementation lives in this package.
type Stats interface {
	Type() CardType
	sealed()
}

// Uniqueness is shared by characters, attachments and locations.
type Uniqueness struct {
	Unique bool
}

// Costed is shared by every card that is played from hand.
type Costed struct {
	Cost Value
}

type CharacterStats struct {
	Uniqueness
	Costed
	Strength Value
	Icons    Icons
}

type LocationStats struct {
	Uniqueness
	Costed
}

type AttachmentStats struct {
	Uniqueness
	Costed
}

type EventStats struct {
	Costed
}

type PlotStats struct {
	Income     Value
	Initiative Value
	Claim      Value
	Reserve    Value
}

type AgendaStats struct{}

func (CharacterStats) Type() CardType  { return TypeCharacter }
func (LocationStats) Type() CardType   { return TypeLocation }
func (AttachmentStats) Type() CardType { return TypeAttachment }
func (EventStats) Type() CardType      { return TypeEvent }
func (PlotStats) Type() CardType       { return TypePlot }
func (AgendaStats) Type() CardType     { return TypeAgenda }

func (CharacterStats) sealed()  {}
func (LocationStats) sealed()   {}
func (AttachmentStats) sealed() {}
func (EventStats) sealed()      {}
func (PlotStats) sealed()       {}
func (AgendaStats) sealed()     {}

// Unique reports whether the card is unique. Types without uniqueness are
// never unique.
func Unique(s Stats) bool {
	switch st := s.(type) {
	case CharacterStats:
		return st.Unique
	case LocationStats:
		return st.Unique
	case AttachmentStats:
		return st.Unique
	default:
		return false
	}
}

// Cost returns the card's cost and whether its type has one.
func Cost(s Stats) (Value, bool) {
	switch st := s.(type) {
	case CharacterStats:
		return st.Cost, true
	case LocationStats:
		return st.Cost, true
	case AttachmentStats:
		return st.Cost, true
	case EventStats:
		return st.Cost, true
	default:
		return Value{}, false
	}
}
