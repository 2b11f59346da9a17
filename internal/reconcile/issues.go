package reconcile

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/h0rv/cardsync/internal/artifact"
	"github.com/h0rv/cardsync/internal/domain"
	"github.com/h0rv/cardsync/internal/report"
)

// IssueSync keeps one implementation issue per card version.
type IssueSync struct {
	Remote      Remote
	Artifacts   artifact.Provider
	Labels      []string
	Concurrency int
	Log         *zap.Logger
}

// NeedsIssue selects the cards an issue sync resolves: cards that need an
// issue, changed cards, and cards whose stored issue is still open so that
// its closure is picked up.
func NeedsIssue(card *domain.Card) bool {
	if card.RequiresIssue() || card.IsChanged() {
		return true
	}
	return card.GithubStatus != nil && card.GithubStatus.Status == domain.IssueOpen
}

// IssueVerb is the action an issue asks the implementers to take.
func IssueVerb(card *domain.Card) (string, error) {
	if card.Note == nil {
		// A live playtesting version or an issue already opened for this
		// version both mean the card was sent for implementation.
		if card.IsPreRelease() || card.IsPlaytesting() || card.GithubStatus != nil {
			return "Implement", nil
		}
		return "", &InvariantViolation{
			Key:    card.Key().String(),
			Reason: "no note and no implied implementation",
		}
	}
	switch card.Note.Type {
	case domain.NoteImplemented, domain.NoteNotImplemented:
		return "Implement", nil
	case domain.NoteUpdated:
		return "Update", nil
	case domain.NoteReworked:
		return "Rework", nil
	case domain.NoteReplaced:
		return "Replace", nil
	default:
		return "", &InvariantViolation{Key: card.Key().String(), Reason: fmt.Sprintf("unknown note type %q", card.Note.Type)}
	}
}

// IssueTitle is "CODE | Verb Name vX.Y.Z".
func IssueTitle(card *domain.Card) (string, error) {
	verb, err := IssueVerb(card)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s | %s %s v%s", card.Code(), verb, card.Name, card.Version), nil
}

// Run resolves the issues of the selected cards. Settled cards are mutated
// in place and returned in Result.Dirty.
func (s *IssueSync) Run(ctx context.Context, cards []*domain.Card) (*Result[*domain.Card], error) {
	var selected []*domain.Card
	for _, c := range cards {
		if NeedsIssue(c) {
			selected = append(selected, c)
		}
	}

	engine := &Engine[*domain.Card, artifact.Ref]{
		Name:        "issues",
		Remote:      s.Remote,
		Log:         s.Log,
		Concurrency: s.Concurrency,
		Key:         func(c *domain.Card) string { return c.Key().String() },
		Prepare:     s.Artifacts.Ensure,
		Build: func(c *domain.Card, ref artifact.Ref) (Descriptor, error) {
			title, err := IssueTitle(c)
			if err != nil {
				return Descriptor{}, err
			}
			return Descriptor{Title: title, Body: report.IssueBody(c, ref), Labels: s.Labels}, nil
		},
		Settle: SettleIssue,
	}
	return engine.Run(ctx, selected)
}

// SettleIssue records the resolved issue on a card. A closed issue on a card
// without a note marks the card implemented.
func SettleIssue(card *domain.Card, res Resource) bool {
	status := domain.GithubStatus{Status: domain.IssueOpen, URL: res.URL}
	if !res.Mutable() {
		status.Status = domain.IssueClosed
	}

	dirty := card.GithubStatus == nil || *card.GithubStatus != status
	card.GithubStatus = &status

	if status.Status == domain.IssueClosed && card.Note == nil {
		card.Note = &domain.Note{Type: domain.NoteImplemented}
		dirty = true
	}
	return dirty
}
