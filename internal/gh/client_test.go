package gh

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/h0rv/cardsync/internal/reconcile"
)

type route struct {
	match   string
	respond func(vars map[string]interface{}) interface{}
}

// fakeGitHub answers GraphQL requests by matching the query text against
// routes in order.
type fakeGitHub struct {
	routes []route

	mu    sync.Mutex
	calls []map[string]interface{}
	auth  []string
}

func (f *fakeGitHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query     string                 `json:"query"`
		Variables map[string]interface{} `json:"variables"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	f.calls = append(f.calls, req.Variables)
	f.auth = append(f.auth, r.Header.Get("Authorization"))
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	for _, rt := range f.routes {
		if strings.Contains(req.Query, rt.match) {
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"data": rt.respond(req.Variables)})
			return
		}
	}
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"errors": []map[string]string{{"message": "unexpected query"}},
	})
}

func setup(t *testing.T, routes ...route) (*Client, *fakeGitHub) {
	t.Helper()
	fake := &fakeGitHub{routes: routes}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	return NewWithEndpoint(srv.URL, "test-token"), fake
}

func fixed(data interface{}) func(map[string]interface{}) interface{} {
	return func(map[string]interface{}) interface{} { return data }
}

var resolveRoutes = []route{
	{"label(name", fixed(map[string]interface{}{
		"repository": map[string]interface{}{"label": map[string]interface{}{"id": "LA_card"}},
	})},
	{"discussionCategories", fixed(map[string]interface{}{
		"repository": map[string]interface{}{"discussionCategories": map[string]interface{}{"nodes": []map[string]string{
			{"id": "DIC_general", "name": "General"},
			{"id": "DIC_play", "name": "Playtesting"},
		}}},
	})},
}

var repositoryRoute = route{"repository(owner", fixed(map[string]interface{}{
	"repository": map[string]interface{}{"id": "R_1"},
})}

func TestResolveRepository(t *testing.T) {
	client, fake := setup(t, repositoryRoute)

	repo, err := client.ResolveRepository(context.Background(), "acme", "cards")
	require.NoError(t, err)
	assert.Equal(t, Repository{Owner: "acme", Name: "cards", ID: "R_1"}, repo)
	assert.Equal(t, "acme/cards", repo.String())
	assert.Equal(t, []string{"Bearer test-token"}, fake.auth)
}

func TestResolveRepository_NotFound(t *testing.T) {
	client, _ := setup(t, route{"repository(owner", fixed(map[string]interface{}{"repository": nil})})

	_, err := client.ResolveRepository(context.Background(), "acme", "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "acme/missing")
}

func TestResolveDiscussionCategory(t *testing.T) {
	client, _ := setup(t, resolveRoutes...)
	repo := Repository{Owner: "acme", Name: "cards", ID: "R_1"}

	id, err := client.ResolveDiscussionCategory(context.Background(), repo, "playtesting")
	require.NoError(t, err)
	assert.Equal(t, "DIC_play", id)

	_, err = client.ResolveDiscussionCategory(context.Background(), repo, "Ideas")
	assert.Error(t, err)
}

func TestListIssues_FollowsPages(t *testing.T) {
	page := func(vars map[string]interface{}) interface{} {
		nodes := []map[string]interface{}{{"id": "I_2", "number": 2, "title": "second", "state": "OPEN"}}
		info := map[string]interface{}{"hasNextPage": true, "endCursor": "c1"}
		if vars["after"] == "c1" {
			nodes = []map[string]interface{}{{"id": "I_1", "number": 1, "title": "first", "state": "CLOSED"}}
			info = map[string]interface{}{"hasNextPage": false, "endCursor": "c2"}
		}
		return map[string]interface{}{"repository": map[string]interface{}{
			"issues": map[string]interface{}{"pageInfo": info, "nodes": nodes},
		}}
	}
	client, fake := setup(t, route{"issues(first", page})

	issues, err := client.ListIssues(context.Background(), Repository{Owner: "acme", Name: "cards"}, "card")
	require.NoError(t, err)

	require.Len(t, issues, 2)
	assert.Equal(t, "I_2", issues[0].ID)
	assert.Equal(t, "CLOSED", issues[1].State)
	require.Len(t, fake.calls, 2)
	assert.Nil(t, fake.calls[0]["after"])
	assert.Equal(t, "card", fake.calls[0]["label"])
}

func TestIssueRemote(t *testing.T) {
	routes := append([]route{
		{"createIssue", func(vars map[string]interface{}) interface{} {
			return map[string]interface{}{"createIssue": map[string]interface{}{"issue": map[string]interface{}{
				"id": "I_9", "number": 9, "title": vars["title"], "body": vars["body"],
				"url": "https://github.com/acme/cards/issues/9", "state": "OPEN",
			}}}
		}},
		{"issues(first", fixed(map[string]interface{}{"repository": map[string]interface{}{"issues": map[string]interface{}{
			"pageInfo": map[string]interface{}{"hasNextPage": false},
			"nodes":    []map[string]interface{}{{"id": "I_1", "title": "1001 | Implement A v1.0.0", "state": "CLOSED"}},
		}}})},
	}, resolveRoutes...)
	routes = append(routes, repositoryRoute)
	client, fake := setup(t, routes...)
	ctx := context.Background()

	remote, err := NewIssueRemote(ctx, client, "acme", "cards", "card")
	require.NoError(t, err)

	listed, err := remote.List(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, reconcile.StateClosed, listed[0].State)
	assert.False(t, listed[0].Mutable())

	created, err := remote.Create(ctx, reconcile.Descriptor{Title: "1002 | Implement B v1.0.0", Body: "body"})
	require.NoError(t, err)
	assert.Equal(t, reconcile.StateOpen, created.State)
	assert.Equal(t, "https://github.com/acme/cards/issues/9", created.URL)

	last := fake.calls[len(fake.calls)-1]
	assert.Equal(t, "R_1", last["repositoryId"])
	assert.Equal(t, []interface{}{"LA_card"}, last["labelIds"])
}

func TestPullRemote_CreateNeedsBranches(t *testing.T) {
	client, _ := setup(t, append(resolveRoutes, repositoryRoute)...)

	remote, err := NewPullRemote(context.Background(), client, "acme", "cards", "card")
	require.NoError(t, err)

	_, err = remote.Create(context.Background(), reconcile.Descriptor{Title: "x"})
	assert.Error(t, err)
}

func TestPullRemote_ListMapsMerged(t *testing.T) {
	routes := append([]route{
		{"pullRequests(first", fixed(map[string]interface{}{"repository": map[string]interface{}{"pullRequests": map[string]interface{}{
			"pageInfo": map[string]interface{}{"hasNextPage": false},
			"nodes":    []map[string]interface{}{{"id": "PR_1", "title": "Core Playtesting Update", "state": "MERGED"}},
		}}})},
	}, resolveRoutes...)
	client, _ := setup(t, append(routes, repositoryRoute)...)

	remote, err := NewPullRemote(context.Background(), client, "acme", "cards", "card")
	require.NoError(t, err)

	listed, err := remote.List(context.Background())
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, reconcile.StateMerged, listed[0].State)
}

func TestDiscussionRemote(t *testing.T) {
	routes := append([]route{
		{"addDiscussionComment", fixed(map[string]interface{}{
			"addDiscussionComment": map[string]interface{}{"comment": map[string]interface{}{"id": "DC_1"}},
		})},
		{"discussions(first", fixed(map[string]interface{}{"repository": map[string]interface{}{"discussions": map[string]interface{}{
			"pageInfo": map[string]interface{}{"hasNextPage": false},
			"nodes": []map[string]interface{}{{
				"id": "D_1", "number": 4, "title": "1001 A", "body": "opening", "closed": true,
				"comments": map[string]interface{}{"nodes": []map[string]string{{"body": "one"}, {"body": "two"}}},
			}},
		}}})},
	}, resolveRoutes...)
	client, fake := setup(t, append(routes, repositoryRoute)...)
	ctx := context.Background()

	remote, err := NewDiscussionRemote(ctx, client, "acme", "cards", "Playtesting")
	require.NoError(t, err)

	listed, err := remote.List(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, reconcile.StateClosed, listed[0].State)
	assert.Equal(t, []string{"one", "two"}, listed[0].Comments)

	require.NoError(t, remote.AddComment(ctx, listed[0], "notice"))
	last := fake.calls[len(fake.calls)-1]
	assert.Equal(t, "D_1", last["discussionId"])
	assert.Equal(t, "notice", last["body"])
}

func TestGraphQLErrorsAreReturned(t *testing.T) {
	client, _ := setup(t)

	_, err := client.ListIssues(context.Background(), Repository{Owner: "acme", Name: "cards"}, "card")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected query")
}
