package gh

import (
	"context"
	"fmt"

	"github.com/machinebox/graphql"
)

// Issue is an issue or pull request as returned by the API.
type Issue struct {
	ID     string `json:"id"`
	Number int    `json:"number"`
	Title  string `json:"title"`
	Body   string `json:"body"`
	URL    string `json:"url"`
	State  string `json:"state"` // OPEN, CLOSED or MERGED
}

// ListIssues fetches every issue carrying a label, newest first, following
// pagination to the end.
func (c *Client) ListIssues(ctx context.Context, repo Repository, label string) ([]Issue, error) {
	var issues []Issue
	after := ""
	for {
		req := graphql.NewRequest(`
			query($owner: String!, $name: String!, $label: String!, $first: Int!, $after: String) {
				repository(owner: $owner, name: $name) {
					issues(first: $first, after: $after, labels: [$label], orderBy: {field: CREATED_AT, direction: DESC}) {
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
				Issues struct {
					PageInfo pageInfo `json:"pageInfo"`
					Nodes    []Issue  `json:"nodes"`
				} `json:"issues"`
			} `json:"repository"`
		}

		if err := c.makeRequest(ctx, req, &resp); err != nil {
			return nil, fmt.Errorf("failed to list issues: %w", err)
		}

		issues = append(issues, resp.Repository.Issues.Nodes...)
		if !resp.Repository.Issues.PageInfo.HasNextPage {
			return issues, nil
		}
		after = resp.Repository.Issues.PageInfo.EndCursor
	}
}

// CreateIssue opens an issue with the given labels.
func (c *Client) CreateIssue(ctx context.Context, repo Repository, title, body string, labelIDs []string) (Issue, error) {
	req := graphql.NewRequest(`
		mutation($repositoryId: ID!, $title: String!, $body: String!, $labelIds: [ID!]) {
			createIssue(input: {repositoryId: $repositoryId, title: $title, body: $body, labelIds: $labelIds}) {
				issue {
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
	req.Var("title", title)
	req.Var("body", body)
	req.Var("labelIds", labelIDs)

	var resp struct {
		CreateIssue struct {
			Issue Issue `json:"issue"`
		} `json:"createIssue"`
	}

	if err := c.makeRequest(ctx, req, &resp); err != nil {
		return Issue{}, fmt.Errorf("failed to create issue: %w", err)
	}

	return resp.CreateIssue.Issue, nil
}

// UpdateIssueBody replaces the body of an issue.
func (c *Client) UpdateIssueBody(ctx context.Context, id, body string) (Issue, error) {
	req := graphql.NewRequest(`
		mutation($id: ID!, $body: String!) {
			updateIssue(input: {id: $id, body: $body}) {
				issue {
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
		UpdateIssue struct {
			Issue Issue `json:"issue"`
		} `json:"updateIssue"`
	}

	if err := c.makeRequest(ctx, req, &resp); err != nil {
		return Issue{}, fmt.Errorf("failed to update issue: %w", err)
	}

	return resp.UpdateIssue.Issue, nil
}
