package reconcile

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/h0rv/cardsync/internal/artifact"
	"github.com/h0rv/cardsync/internal/domain"
	"github.com/h0rv/cardsync/internal/report"
)

// ThreadSync keeps one discussion thread per card under playtest. When a new
// version's artifact differs from the thread's latest attachment, an update
// notice is posted to the thread.
type ThreadSync struct {
	Remote      Remote // must also implement Commenter
	Artifacts   artifact.Provider
	Concurrency int
	Log         *zap.Logger
}

// InDiscussion selects the cards that get a thread.
func InDiscussion(card *domain.Card) bool {
	return card.IsPlaytesting() || card.IsPreRelease()
}

// ThreadTitle names a card's thread. It does not carry the version so one
// thread follows the card through its versions.
func ThreadTitle(card *domain.Card) string {
	return fmt.Sprintf("%s %s", card.Code(), card.Name)
}

// Run resolves the threads of the selected cards.
func (s *ThreadSync) Run(ctx context.Context, cards []*domain.Card) (*Result[*domain.Card], error) {
	commenter, ok := s.Remote.(Commenter)
	if !ok {
		return nil, errors.New("thread remote cannot post comments")
	}

	var selected []*domain.Card
	for _, c := range cards {
		if InDiscussion(c) {
			selected = append(selected, c)
		}
	}

	engine := &Engine[*domain.Card, artifact.Ref]{
		Name:        "threads",
		Remote:      s.Remote,
		Log:         s.Log,
		Concurrency: s.Concurrency,
		Key:         func(c *domain.Card) string { return c.Key().String() },
		Prepare:     s.Artifacts.Ensure,
		Build: func(c *domain.Card, ref artifact.Ref) (Descriptor, error) {
			return Descriptor{Title: ThreadTitle(c), Body: report.ThreadBody(c, ref)}, nil
		},
		// The notice goes out before the opening post is rewritten: the post
		// carries the new fingerprint afterwards and would hide a lost notice.
		Amend: func(ctx context.Context, c *domain.Card, ref artifact.Ref, existing Resource) error {
			if report.LatestFingerprint(existing.Body, existing.Comments) == ref.Fingerprint {
				return nil
			}
			if err := commenter.AddComment(ctx, existing, report.UpdateNotice(c, ref)); err != nil {
				return &RemoteSyncError{Op: "comment", Title: existing.Title, Err: err}
			}
			s.Log.Info("posted update notice",
				zap.Int("project", c.ProjectID),
				zap.Int("number", c.Number),
				zap.String("version", c.Version.String()))
			return nil
		},
	}
	return engine.Run(ctx, selected)
}
