package reconcile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/h0rv/cardsync/internal/artifact"
	"github.com/h0rv/cardsync/internal/domain"
	"github.com/h0rv/cardsync/internal/report"
	"github.com/h0rv/cardsync/internal/textcodec"
)

func createThreadSync(remote Remote) *ThreadSync {
	return &ThreadSync{Remote: remote, Artifacts: testArtifacts, Log: zap.NewNop()}
}

func TestThreadSync_SelectsPlaytestingAndPreRelease(t *testing.T) {
	remote := newFakeRemote()
	fresh := createTestCard(1, domain.V(1, 0, 0))
	live := createTestCard(2, domain.V(1, 1, 0))
	live.PlaytestingVersion = &domain.Version{Major: 1, Minor: 1}
	stale := createTestCard(3, domain.V(1, 2, 0))
	stale.PlaytestingVersion = &domain.Version{Major: 1, Minor: 1}

	result, err := createThreadSync(remote).Run(context.Background(), []*domain.Card{fresh, live, stale})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Summary.Created)
	assert.Equal(t, 0, remote.comments)
	assert.Empty(t, result.Dirty)
}

func TestThreadSync_PostsNoticeWhenArtifactChanged(t *testing.T) {
	previous := createTestCard(1, domain.V(1, 0, 0))
	oldRef, err := testArtifacts.Ensure(context.Background(), previous)
	require.NoError(t, err)
	remote := newFakeRemote(Resource{
		ID:    "D_1",
		Title: ThreadTitle(previous),
		Body:  report.ThreadBody(previous, oldRef),
		State: StateOpen,
	})

	next := previous.Clone()
	next.Version = domain.V(1, 1, 0)
	next.PlaytestingVersion = &domain.Version{Major: 1, Minor: 1}
	next.Note = &domain.Note{Type: domain.NoteUpdated}
	next.Text = textcodec.FromString("Gain 3 gold.")

	sync := createThreadSync(remote)
	result, err := sync.Run(context.Background(), []*domain.Card{next})
	require.NoError(t, err)

	assert.Equal(t, Updated, result.Outcomes[0].Action)
	assert.Equal(t, 1, remote.comments)
	newRef, err := testArtifacts.Ensure(context.Background(), next)
	require.NoError(t, err)
	assert.Equal(t, newRef.Fingerprint, report.LatestFingerprint(remote.resources[0].Body, remote.resources[0].Comments))

	_, err = sync.Run(context.Background(), []*domain.Card{next})
	require.NoError(t, err)
	assert.Equal(t, 1, remote.comments)
}

func TestThreadSync_FailedNoticeIsRetried(t *testing.T) {
	previous := createTestCard(1, domain.V(1, 0, 0))
	oldRef, err := testArtifacts.Ensure(context.Background(), previous)
	require.NoError(t, err)
	oldBody := report.ThreadBody(previous, oldRef)
	remote := newFakeRemote(Resource{ID: "D_1", Title: ThreadTitle(previous), Body: oldBody, State: StateOpen})
	remote.commentErr = errRejected

	next := previous.Clone()
	next.Version = domain.V(1, 1, 0)
	next.PlaytestingVersion = &domain.Version{Major: 1, Minor: 1}
	next.Text = textcodec.FromString("Gain 3 gold.")
	sync := createThreadSync(remote)

	first, err := sync.Run(context.Background(), []*domain.Card{next})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Summary.Failed)
	assert.Equal(t, 0, remote.updates)
	assert.Equal(t, oldBody, remote.resources[0].Body)

	remote.commentErr = nil
	second, err := sync.Run(context.Background(), []*domain.Card{next})
	require.NoError(t, err)
	assert.Equal(t, 0, second.Summary.Failed)
	assert.Equal(t, Updated, second.Outcomes[0].Action)
	assert.Equal(t, 1, remote.comments)
	assert.Equal(t, 1, remote.updates)
}

func TestThreadSync_SameArtifactNoNotice(t *testing.T) {
	card := createTestCard(1, domain.V(1, 0, 0))
	ref, err := testArtifacts.Ensure(context.Background(), card)
	require.NoError(t, err)
	remote := newFakeRemote(Resource{
		ID:       "D_1",
		Title:    ThreadTitle(card),
		Body:     "hand edited opening post",
		State:    StateOpen,
		Comments: []string{report.UpdateNotice(card, ref), "looks strong"},
	})

	result, err := createThreadSync(remote).Run(context.Background(), []*domain.Card{card})
	require.NoError(t, err)
	assert.Equal(t, 0, remote.comments)
	assert.Equal(t, Updated, result.Outcomes[0].Action)
}

func TestThreadSync_ClosedThreadGetsNothing(t *testing.T) {
	card := createTestCard(1, domain.V(1, 0, 0))
	remote := newFakeRemote(Resource{ID: "D_1", Title: ThreadTitle(card), Body: "old", State: StateClosed})

	_, err := createThreadSync(remote).Run(context.Background(), []*domain.Card{card})
	require.NoError(t, err)
	assert.Equal(t, 0, remote.writes())
}

type listOnlyRemote struct{ Remote }

func TestThreadSync_RequiresCommenter(t *testing.T) {
	s := &ThreadSync{Remote: listOnlyRemote{newFakeRemote()}, Artifacts: artifact.TemplateProvider{}, Log: zap.NewNop()}
	_, err := s.Run(context.Background(), nil)
	assert.Error(t, err)
}
