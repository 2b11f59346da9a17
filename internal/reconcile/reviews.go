package reconcile

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/h0rv/cardsync/internal/domain"
	"github.com/h0rv/cardsync/internal/report"
)

// Extra keys understood by pull request remotes.
const (
	ExtraBaseBranch = "base"
	ExtraHeadBranch = "head"
)

// ReviewBatch is the input of one review request: a project and its cards.
type ReviewBatch struct {
	Project domain.Project
	Cards   []*domain.Card
}

// ReviewSync keeps one review request per project listing every card the
// next playtesting update touches.
type ReviewSync struct {
	Remote Remote
	Labels []string
	Base   string
	// Head is the head branch; "{project}" expands to the project short name.
	Head string
	Log  *zap.Logger
}

// InReview selects the cards a review request lists.
func InReview(card *domain.Card) bool {
	return card.IsChanged() || card.IsNewlyImplemented() || card.IsPreRelease()
}

// ReviewTitle is the title of a project's review request.
func ReviewTitle(project domain.Project) string {
	return fmt.Sprintf("%s Playtesting Update", project.Name)
}

// Run resolves one review request per batch. Projects with nothing to review
// are skipped.
func (s *ReviewSync) Run(ctx context.Context, batches []ReviewBatch) (*Result[ReviewBatch], error) {
	var items []ReviewBatch
	for _, b := range batches {
		var selected []*domain.Card
		for _, c := range b.Cards {
			if InReview(c) {
				selected = append(selected, c)
			}
		}
		if len(selected) > 0 {
			items = append(items, ReviewBatch{Project: b.Project, Cards: selected})
		}
	}

	engine := &Engine[ReviewBatch, struct{}]{
		Name:   "reviews",
		Remote: s.Remote,
		Log:    s.Log,
		Key:    func(b ReviewBatch) string { return strconv.Itoa(b.Project.ID) },
		Build: func(b ReviewBatch, _ struct{}) (Descriptor, error) {
			return Descriptor{
				Title:  ReviewTitle(b.Project),
				Body:   report.ReviewBody(b.Project, b.Cards),
				Labels: s.Labels,
				Extra: map[string]string{
					ExtraBaseBranch: s.Base,
					ExtraHeadBranch: expandHead(s.Head, b.Project),
				},
			}, nil
		},
	}
	return engine.Run(ctx, items)
}

func expandHead(head string, project domain.Project) string {
	if head == "" {
		head = "playtesting/{project}"
	}
	short := project.Short
	if short == "" {
		short = strconv.Itoa(project.ID)
	}
	return strings.ReplaceAll(head, "{project}", short)
}
