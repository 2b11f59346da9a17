// Package report renders the Markdown bodies posted to GitHub and the
// terminal summary printed after a sync.
package report

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/h0rv/cardsync/internal/artifact"
	"github.com/h0rv/cardsync/internal/domain"
	"github.com/h0rv/cardsync/internal/textcodec"
)

// Marker embeds an artifact fingerprint in a body or comment. GitHub does not
// render HTML comments.
func Marker(fingerprint string) string {
	return "<!-- artifact:" + fingerprint + " -->"
}

var markerRe = regexp.MustCompile(`<!-- artifact:([0-9a-f]+) -->`)

// FingerprintOf returns the last fingerprint marker in s, or "".
func FingerprintOf(s string) string {
	m := markerRe.FindAllStringSubmatch(s, -1)
	if len(m) == 0 {
		return ""
	}
	return m[len(m)-1][1]
}

// LatestFingerprint returns the fingerprint of the newest attachment of a
// thread: the last comment carrying a marker, else the body.
func LatestFingerprint(body string, comments []string) string {
	for i := len(comments) - 1; i >= 0; i-- {
		if fp := FingerprintOf(comments[i]); fp != "" {
			return fp
		}
	}
	return FingerprintOf(body)
}

// Heading is "CODE Name vX.Y.Z".
func Heading(card *domain.Card) string {
	return fmt.Sprintf("%s %s v%s", card.Code(), card.Name, card.Version)
}

// CardMarkdown renders the printed face of a card.
func CardMarkdown(card *domain.Card) string {
	var b strings.Builder

	header := []string{card.Faction, string(card.Type())}
	if domain.Unique(card.Stats) {
		header = append(header, "Unique")
	}
	fmt.Fprintf(&b, "**%s**  \n", strings.Join(header, " · "))
	if line := statsLine(card.Stats); line != "" {
		fmt.Fprintf(&b, "%s  \n", line)
	}
	if len(card.Traits) > 0 {
		fmt.Fprintf(&b, "_%s._  \n", strings.Join(card.Traits, ". "))
	}
	if !card.Text.IsEmpty() {
		fmt.Fprintf(&b, "\n%s\n", textcodec.Markdown(card.Text))
	}
	if !card.Flavor.IsEmpty() {
		fmt.Fprintf(&b, "\n> %s\n", strings.ReplaceAll(textcodec.Markdown(card.Flavor), "\n", "\n> "))
	}
	return b.String()
}

func statsLine(s domain.Stats) string {
	var parts []string
	if cost, ok := domain.Cost(s); ok && cost.Set {
		parts = append(parts, "Cost "+cost.String())
	}
	switch st := s.(type) {
	case domain.CharacterStats:
		if st.Strength.Set {
			parts = append(parts, "STR "+st.Strength.String())
		}
		var icons []string
		for _, icon := range []struct {
			on   bool
			name string
		}{{st.Icons.Military, ":military:"}, {st.Icons.Intrigue, ":intrigue:"}, {st.Icons.Power, ":power:"}} {
			if icon.on {
				icons = append(icons, icon.name)
			}
		}
		if len(icons) > 0 {
			parts = append(parts, strings.Join(icons, " "))
		}
	case domain.PlotStats:
		parts = append(parts,
			"Income "+st.Income.String(),
			"Initiative "+st.Initiative.String(),
			"Claim "+st.Claim.String(),
			"Reserve "+st.Reserve.String())
	}
	return strings.Join(parts, " · ")
}

// IssueBody is the body of a card's implementation issue.
func IssueBody(card *domain.Card, ref artifact.Ref) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", Heading(card))
	fmt.Fprintf(&b, "![%s](%s)\n\n", card.Name, ref.URL)
	b.WriteString(CardMarkdown(card))
	if card.Note != nil {
		fmt.Fprintf(&b, "\n### %s\n", card.Note.Type)
		if card.Note.Text != "" {
			fmt.Fprintf(&b, "\n%s\n", card.Note.Text)
		}
	}
	fmt.Fprintf(&b, "\n%s\n", Marker(ref.Fingerprint))
	return b.String()
}

// ThreadBody opens a card's discussion thread.
func ThreadBody(card *domain.Card, ref artifact.Ref) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Discussion for **%s** (%s %s).\n\n", card.Name, card.Faction, card.Type())
	fmt.Fprintf(&b, "![%s v%s](%s)\n\n", card.Name, card.Version, ref.URL)
	b.WriteString(CardMarkdown(card))
	fmt.Fprintf(&b, "\n%s\n", Marker(ref.Fingerprint))
	return b.String()
}

// UpdateNotice is appended to a thread when the card's artifact changed.
func UpdateNotice(card *domain.Card, ref artifact.Ref) string {
	var b strings.Builder
	fmt.Fprintf(&b, "### Updated to v%s\n\n", card.Version)
	if card.Note != nil {
		fmt.Fprintf(&b, "**%s**", card.Note.Type)
		if card.Note.Text != "" {
			fmt.Fprintf(&b, ": %s", card.Note.Text)
		}
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "![%s v%s](%s)\n\n", card.Name, card.Version, ref.URL)
	fmt.Fprintf(&b, "%s\n", Marker(ref.Fingerprint))
	return b.String()
}
