package report

import (
	"fmt"
	"strings"

	"github.com/h0rv/cardsync/internal/domain"
	"github.com/h0rv/cardsync/internal/textcodec"
)

// ReviewEntry is one card listed in a review request.
type ReviewEntry struct {
	Icons string
	Title string
	Text  string
}

// sectionNew holds cards without a note: first implementations.
const sectionNew = "New"

// EntryFor renders a card as a review entry. The title links to the card's
// issue when one is known.
func EntryFor(card *domain.Card) ReviewEntry {
	title := Heading(card)
	if card.GithubStatus != nil && card.GithubStatus.URL != "" {
		title = fmt.Sprintf("[%s](%s)", title, card.GithubStatus.URL)
	}
	return ReviewEntry{
		Icons: statusIcons(card),
		Title: title,
		Text:  textcodec.Markdown(card.Text),
	}
}

func statusIcons(card *domain.Card) string {
	var icons []string
	switch {
	case card.IsNewlyImplemented():
		icons = append(icons, ":white_check_mark:")
	case card.GithubStatus != nil:
		icons = append(icons, ":hourglass:")
	default:
		icons = append(icons, ":grey_question:")
	}
	if card.IsPreRelease() {
		icons = append(icons, ":new:")
	}
	return strings.Join(icons, " ")
}

// ReviewBody aggregates cards into one review request body, one section per
// note type. Cards without a note are listed under "New".
func ReviewBody(project domain.Project, cards []*domain.Card) string {
	sections := make(map[string][]ReviewEntry)
	for _, c := range cards {
		name := sectionNew
		if c.Note != nil {
			name = string(c.Note.Type)
		}
		sections[name] = append(sections[name], EntryFor(c))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s Playtesting Update\n\n", project.Name)
	fmt.Fprintf(&b, "%d card(s) in this update.\n", len(cards))

	order := []string{sectionNew}
	for _, t := range domain.NoteTypes {
		order = append(order, string(t))
	}
	for _, name := range order {
		entries := sections[name]
		if len(entries) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n## %s\n", name)
		for _, e := range entries {
			fmt.Fprintf(&b, "\n- %s %s\n", e.Icons, e.Title)
			if e.Text != "" {
				fmt.Fprintf(&b, "\n  %s\n", strings.ReplaceAll(e.Text, "\n", "\n  "))
			}
		}
	}
	return b.String()
}
