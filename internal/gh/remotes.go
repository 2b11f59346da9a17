package gh

import (
	"context"
	"errors"
	"strings"

	"github.com/h0rv/cardsync/internal/reconcile"
)

// IssueRemote exposes the labeled issues of a repository as a reconcile.Remote.
type IssueRemote struct {
	client   *Client
	repo     Repository
	label    string
	labelIDs []string
}

var _ reconcile.Remote = (*IssueRemote)(nil)

// NewIssueRemote resolves the repository and label once.
func NewIssueRemote(ctx context.Context, client *Client, owner, name, label string) (*IssueRemote, error) {
	repo, err := client.ResolveRepository(ctx, owner, name)
	if err != nil {
		return nil, err
	}
	labelIDs, err := client.ResolveLabels(ctx, repo, []string{label})
	if err != nil {
		return nil, err
	}
	return &IssueRemote{client: client, repo: repo, label: label, labelIDs: labelIDs}, nil
}

func (r *IssueRemote) List(ctx context.Context) ([]reconcile.Resource, error) {
	issues, err := r.client.ListIssues(ctx, r.repo, r.label)
	if err != nil {
		return nil, err
	}
	return issueResources(issues), nil
}

func (r *IssueRemote) Create(ctx context.Context, d reconcile.Descriptor) (reconcile.Resource, error) {
	issue, err := r.client.CreateIssue(ctx, r.repo, d.Title, d.Body, r.labelIDs)
	if err != nil {
		return reconcile.Resource{}, err
	}
	return issueResource(issue), nil
}

func (r *IssueRemote) Update(ctx context.Context, res reconcile.Resource, d reconcile.Descriptor) (reconcile.Resource, error) {
	issue, err := r.client.UpdateIssueBody(ctx, res.ID, d.Body)
	if err != nil {
		return reconcile.Resource{}, err
	}
	return issueResource(issue), nil
}

// PullRemote exposes the labeled pull requests of a repository.
type PullRemote struct {
	client   *Client
	repo     Repository
	label    string
	labelIDs []string
}

var _ reconcile.Remote = (*PullRemote)(nil)

// NewPullRemote resolves the repository and label once.
func NewPullRemote(ctx context.Context, client *Client, owner, name, label string) (*PullRemote, error) {
	repo, err := client.ResolveRepository(ctx, owner, name)
	if err != nil {
		return nil, err
	}
	labelIDs, err := client.ResolveLabels(ctx, repo, []string{label})
	if err != nil {
		return nil, err
	}
	return &PullRemote{client: client, repo: repo, label: label, labelIDs: labelIDs}, nil
}

func (r *PullRemote) List(ctx context.Context) ([]reconcile.Resource, error) {
	pulls, err := r.client.ListPullRequests(ctx, r.repo, r.label)
	if err != nil {
		return nil, err
	}
	return issueResources(pulls), nil
}

func (r *PullRemote) Create(ctx context.Context, d reconcile.Descriptor) (reconcile.Resource, error) {
	base, head := d.Extra[reconcile.ExtraBaseBranch], d.Extra[reconcile.ExtraHeadBranch]
	if base == "" || head == "" {
		return reconcile.Resource{}, errors.New("pull request needs base and head branches")
	}
	pr, err := r.client.CreatePullRequest(ctx, r.repo, base, head, d.Title, d.Body, r.labelIDs)
	if err != nil {
		return reconcile.Resource{}, err
	}
	return issueResource(pr), nil
}

func (r *PullRemote) Update(ctx context.Context, res reconcile.Resource, d reconcile.Descriptor) (reconcile.Resource, error) {
	pr, err := r.client.UpdatePullRequestBody(ctx, res.ID, d.Body)
	if err != nil {
		return reconcile.Resource{}, err
	}
	return issueResource(pr), nil
}

// DiscussionRemote exposes the discussions of one category.
type DiscussionRemote struct {
	client     *Client
	repo       Repository
	categoryID string
}

var (
	_ reconcile.Remote    = (*DiscussionRemote)(nil)
	_ reconcile.Commenter = (*DiscussionRemote)(nil)
)

// NewDiscussionRemote resolves the repository and category once.
func NewDiscussionRemote(ctx context.Context, client *Client, owner, name, category string) (*DiscussionRemote, error) {
	repo, err := client.ResolveRepository(ctx, owner, name)
	if err != nil {
		return nil, err
	}
	categoryID, err := client.ResolveDiscussionCategory(ctx, repo, category)
	if err != nil {
		return nil, err
	}
	return &DiscussionRemote{client: client, repo: repo, categoryID: categoryID}, nil
}

func (r *DiscussionRemote) List(ctx context.Context) ([]reconcile.Resource, error) {
	discussions, err := r.client.ListDiscussions(ctx, r.repo, r.categoryID)
	if err != nil {
		return nil, err
	}
	out := make([]reconcile.Resource, 0, len(discussions))
	for _, d := range discussions {
		out = append(out, discussionResource(d))
	}
	return out, nil
}

func (r *DiscussionRemote) Create(ctx context.Context, d reconcile.Descriptor) (reconcile.Resource, error) {
	disc, err := r.client.CreateDiscussion(ctx, r.repo, r.categoryID, d.Title, d.Body)
	if err != nil {
		return reconcile.Resource{}, err
	}
	return discussionResource(disc), nil
}

func (r *DiscussionRemote) Update(ctx context.Context, res reconcile.Resource, d reconcile.Descriptor) (reconcile.Resource, error) {
	disc, err := r.client.UpdateDiscussionBody(ctx, res.ID, d.Body)
	if err != nil {
		return reconcile.Resource{}, err
	}
	updated := discussionResource(disc)
	updated.Comments = res.Comments
	return updated, nil
}

func (r *DiscussionRemote) AddComment(ctx context.Context, res reconcile.Resource, body string) error {
	return r.client.AddDiscussionComment(ctx, res.ID, body)
}

func issueResources(issues []Issue) []reconcile.Resource {
	out := make([]reconcile.Resource, 0, len(issues))
	for _, i := range issues {
		out = append(out, issueResource(i))
	}
	return out
}

func issueResource(i Issue) reconcile.Resource {
	return reconcile.Resource{
		ID:     i.ID,
		Number: i.Number,
		Title:  i.Title,
		Body:   i.Body,
		URL:    i.URL,
		State:  reconcile.State(strings.ToLower(i.State)),
	}
}

func discussionResource(d Discussion) reconcile.Resource {
	state := reconcile.StateOpen
	if d.Closed {
		state = reconcile.StateClosed
	}
	return reconcile.Resource{
		ID:       d.ID,
		Number:   d.Number,
		Title:    d.Title,
		Body:     d.Body,
		URL:      d.URL,
		State:    state,
		Comments: d.Comments,
	}
}
