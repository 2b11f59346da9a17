package gh

import (
	"context"
	"fmt"

	"github.com/machinebox/graphql"
)

// ListPullRequests fetches every pull request carrying a label in any state,
// newest first.
func (c *Client) ListPullRequests(ctx context.Context, repo Repository, label string) ([]Issue, error) {
	var pulls []Issue
	after := ""
	for {
		req := graphql.NewRequest(`
			query($owner: String!, $name: String!, $label: String!, $first: Int!, $after: String) {
				repository(owner: $owner, name: $name) {
					pullRequests(first: $first, after: $after, labels: [$label], orderBy: {field: CREATED_AT, direction: DESC}) {
						pageInfo {
							hasNextPage
							endCursor
						}
						nodes {
							id
							number
							title
							body
							url
							state
						}
					}
				}
			}
		`)
		req.Var("owner", repo.Owner)
		req.Var("name", repo.Name)
		req.Var("label", label)
		req.Var("first", pageSize)
		req.Var("after", cursor(after))

		var resp struct {
			Repository struct {
				PullRequests struct {
					PageInfo pageInfo `json:"pageInfo"`
					Nodes    []Issue  `json:"nodes"`
				} `json:"pullRequests"`
			} `json:"repository"`
		}

		if err := c.makeRequest(ctx, req, &resp); err != nil {
			return nil, fmt.Errorf("failed to list pull requests: %w", err)
		}

		pulls = append(pulls, resp.Repository.PullRequests.Nodes...)
		if !resp.Repository.PullRequests.PageInfo.HasNextPage {
			return pulls, nil
		}
		after = resp.Repository.PullRequests.PageInfo.EndCursor
	}
}

// CreatePullRequest opens a pull request from head into base and labels it.
func (c *Client) CreatePullRequest(ctx context.Context, repo Repository, base, head, title, body string, labelIDs []string) (Issue, error) {
	req := graphql.NewRequest(`
		mutation($repositoryId: ID!, $base: String!, $head: String!, $title: String!, $body: String!) {
			createPullRequest(input: {repositoryId: $repositoryId, baseRefName: $base, headRefName: $head, title: $title, body: $body}) {
				pullRequest {
					id
					number
					title
					body
					url
					state
				}
			}
		}
	`)
	req.Var("repositoryId", repo.ID)
	req.Var("base", base)
	req.Var("head", head)
	req.Var("title", title)
	req.Var("body", body)

	var resp struct {
		CreatePullRequest struct {
			PullRequest Issue `json:"pullRequest"`
		} `json:"createPullRequest"`
	}

	if err := c.makeRequest(ctx, req, &resp); err != nil {
		return Issue{}, fmt.Errorf("failed to create pull request: %w", err)
	}

	pr := resp.CreatePullRequest.PullRequest
	if len(labelIDs) > 0 {
		if err := c.addLabels(ctx, pr.ID, labelIDs); err != nil {
			return Issue{}, err
		}
	}
	return pr, nil
}

// UpdatePullRequestBody replaces the body of a pull request.
func (c *Client) UpdatePullRequestBody(ctx context.Context, id, body string) (Issue, error) {
	req := graphql.NewRequest(`
		mutation($id: ID!, $body: String!) {
			updatePullRequest(input: {pullRequestId: $id, body: $body}) {
				pullRequest {
					id
					number
					title
					body
					url
					state
				}
			}
		}
	`)
	req.Var("id", id)
	req.Var("body", body)

	var resp struct {
		UpdatePullRequest struct {
			PullRequest Issue `json:"pullRequest"`
		} `json:"updatePullRequest"`
	}

	if err := c.makeRequest(ctx, req, &resp); err != nil {
		return Issue{}, fmt.Errorf("failed to update pull request: %w", err)
	}

	return resp.UpdatePullRequest.PullRequest, nil
}

// addLabels labels an issue or pull request.
func (c *Client) addLabels(ctx context.Context, labelableID string, labelIDs []string) error {
	req := graphql.NewRequest(`
		mutation($id: ID!, $labelIds: [ID!]!) {
			addLabelsToLabelable(input: {labelableId: $id, labelIds: $labelIds}) {
				clientMutationId
			}
		}
	`)
	req.Var("id", labelableID)
	req.Var("labelIds", labelIDs)

	var resp struct {
		AddLabelsToLabelable struct {
			ClientMutationID *string `json:"clientMutationId"`
		} `json:"addLabelsToLabelable"`
	}

	if err := c.makeRequest(ctx, req, &resp); err != nil {
		return fmt.Errorf("failed to add labels: %w", err)
	}

	return nil
}
