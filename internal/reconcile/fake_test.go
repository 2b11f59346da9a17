package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"go.uber.org/goleak"

	"github.com/h0rv/cardsync/internal/artifact"
	"github.com/h0rv/cardsync/internal/domain"
	"github.com/h0rv/cardsync/internal/textcodec"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var errRejected = errors.New("rejected by remote")

// fakeRemote is an in-memory title-indexed collection that counts writes.
type fakeRemote struct {
	mu         sync.Mutex
	resources  []Resource
	listErr    error
	failOn     map[string]bool // titles whose writes fail
	commentErr error

	lists, creates, updates, comments int
	created                           []Descriptor
}

func newFakeRemote(resources ...Resource) *fakeRemote {
	return &fakeRemote{resources: resources, failOn: map[string]bool{}}
}

func (f *fakeRemote) List(_ context.Context) ([]Resource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]Resource(nil), f.resources...), nil
}

func (f *fakeRemote) Create(_ context.Context, d Descriptor) (Resource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn[d.Title] {
		return Resource{}, errRejected
	}
	f.creates++
	f.created = append(f.created, d)
	n := len(f.resources) + 1
	r := Resource{
		ID:     fmt.Sprintf("node-%d", n),
		Number: n,
		Title:  d.Title,
		Body:   d.Body,
		URL:    fmt.Sprintf("https://gh.test/issues/%d", n),
		State:  StateOpen,
	}
	f.resources = append(f.resources, r)
	return r, nil
}

func (f *fakeRemote) Update(_ context.Context, r Resource, d Descriptor) (Resource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn[d.Title] {
		return Resource{}, errRejected
	}
	f.updates++
	for i := range f.resources {
		if f.resources[i].ID == r.ID {
			f.resources[i].Body = d.Body
			return f.resources[i], nil
		}
	}
	return Resource{}, errors.New("no such resource")
}

func (f *fakeRemote) AddComment(_ context.Context, r Resource, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.commentErr != nil {
		return f.commentErr
	}
	f.comments++
	for i := range f.resources {
		if f.resources[i].ID == r.ID {
			f.resources[i].Comments = append(f.resources[i].Comments, body)
		}
	}
	return nil
}

func (f *fakeRemote) writes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.creates + f.updates + f.comments
}

type failingProvider struct{}

func (failingProvider) Ensure(context.Context, *domain.Card) (artifact.Ref, error) {
	return artifact.Ref{}, errors.New("renderer down")
}

var testArtifacts = artifact.TemplateProvider{Template: "https://img.test/{code}-{version}.png"}

func createTestCard(number int, version domain.Version) *domain.Card {
	return &domain.Card{
		ProjectID: 1,
		Number:    number,
		Version:   version,
		Faction:   "Lannister",
		Stats:     domain.EventStats{Costed: domain.Costed{Cost: domain.Num(0)}},
		Name:      fmt.Sprintf("Card %d", number),
		Text:      textcodec.Text{{Text: "Action:", Style: textcodec.Bold}, {Text: " Gain 2 gold."}},
		DeckLimit: 3,
	}
}

func createTestCards(n int) []*domain.Card {
	cards := make([]*domain.Card, n)
	for i := range cards {
		cards[i] = createTestCard(i+1, domain.V(1, 0, 0))
	}
	return cards
}
