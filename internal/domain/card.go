// Package domain defines the versioned card record and its derived
// development lifecycle. Every lifecycle predicate is a pure function of the
// stored fields.
package domain

import (
	"fmt"

	"github.com/h0rv/cardsync/internal/textcodec"
)

// Project is a playtesting project (a cycle or expansion under design).
type Project struct {
	ID    int    // Project number, also the prefix of every card code
	Name  string // Display name
	Short string // Short name used for labels and pack codes
}

// NoteType describes how a card changed since its previous version.
type NoteType string

const (
	NoteReplaced       NoteType = "Replaced"
	NoteReworked       NoteType = "Reworked"
	NoteUpdated        NoteType = "Updated"
	NoteImplemented    NoteType = "Implemented"
	NoteNotImplemented NoteType = "Not Implemented"
)

// NoteTypes lists note types in the order change summaries present them.
var NoteTypes = []NoteType{NoteReplaced, NoteReworked, NoteUpdated, NoteImplemented, NoteNotImplemented}

// ParseNoteType matches one of NoteTypes. "NotImplemented" is accepted as an
// alias of "Not Implemented".
func ParseNoteType(s string) (NoteType, bool) {
	if s == "NotImplemented" {
		return NoteNotImplemented, true
	}
	for _, t := range NoteTypes {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// Note records the development change attached to a card version.
type Note struct {
	Type NoteType
	Text string
}

// IssueState is the state of a card's GitHub issue.
type IssueState string

const (
	IssueOpen   IssueState = "open"
	IssueClosed IssueState = "closed"
)

// GithubStatus links a card to its GitHub issue.
type GithubStatus struct {
	Status IssueState
	URL    string
}

// Release places a card in a published pack.
type Release struct {
	PackShort     string
	ReleaseNumber int
}

// Key is the natural key of a card record.
type Key struct {
	ProjectID int
	Number    int
	Version   Version
}

func (k Key) String() string {
	return fmt.Sprintf("%d/%d@%s", k.ProjectID, k.Number, k.Version)
}

// Card is one versioned snapshot of a designed card.
type Card struct {
	// Identity
	ProjectID int
	Number    int
	Version   Version

	// Classification
	Faction string
	Stats   Stats

	// Presentation
	Name        string
	Traits      []string
	Text        textcodec.Text
	Flavor      textcodec.Text // nil when the card has no flavor text
	Illustrator string
	Designer    string
	DeckLimit   int

	// Development state
	Note               *Note
	PlaytestingVersion *Version
	GithubStatus       *GithubStatus
	Release            *Release
}

// Key returns the card's natural key.
func (c *Card) Key() Key {
	return Key{ProjectID: c.ProjectID, Number: c.Number, Version: c.Version}
}

// Type returns the card type carried by the stats variant.
func (c *Card) Type() CardType {
	if c.Stats == nil {
		return ""
	}
	return c.Stats.Type()
}

// Code is the card code: project id followed by the zero-padded number.
func (c *Card) Code() string {
	return fmt.Sprintf("%d%03d", c.ProjectID, c.Number)
}

// Clone returns a deep copy so callers can mutate development state without
// touching the stored record.
func (c *Card) Clone() *Card {
	cp := *c
	cp.Traits = append([]string(nil), c.Traits...)
	cp.Text = append(textcodec.Text(nil), c.Text...)
	if c.Flavor != nil {
		cp.Flavor = append(textcodec.Text(nil), c.Flavor...)
	}
	if c.Note != nil {
		n := *c.Note
		cp.Note = &n
	}
	if c.PlaytestingVersion != nil {
		v := *c.PlaytestingVersion
		cp.PlaytestingVersion = &v
	}
	if c.GithubStatus != nil {
		s := *c.GithubStatus
		cp.GithubStatus = &s
	}
	if c.Release != nil {
		r := *c.Release
		cp.Release = &r
	}
	return &cp
}
