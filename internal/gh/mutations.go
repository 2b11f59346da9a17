package gh

import (
	"context"
	"fmt"

	"github.com/machinebox/graphql"
)

type discussionNode struct {
	ID     string `json:"id"`
	Number int    `json:"number"`
	Title  string `json:"title"`
	Body   string `json:"body"`
	URL    string `json:"url"`
	Closed bool   `json:"closed"`
}

func (n discussionNode) discussion() Discussion {
	return Discussion{ID: n.ID, Number: n.Number, Title: n.Title, Body: n.Body, URL: n.URL, Closed: n.Closed}
}

// CreateDiscussion starts a discussion in a category.
func (c *Client) CreateDiscussion(ctx context.Context, repo Repository, categoryID, title, body string) (Discussion, error) {
	req := graphql.NewRequest(`
		mutation($repositoryId: ID!, $categoryId: ID!, $title: String!, $body: String!) {
			createDiscussion(input: {repositoryId: $repositoryId, categoryId: $categoryId, title: $title, body: $body}) {
				discussion {
					id
					number
					title
					body
					url
					closed
				}
			}
		}
	`)
	req.Var("repositoryId", repo.ID)
	req.Var("categoryId", categoryID)
	req.Var("title", title)
	req.Var("body", body)

	var resp struct {
		CreateDiscussion struct {
			Discussion discussionNode `json:"discussion"`
		} `json:"createDiscussion"`
	}

	if err := c.makeRequest(ctx, req, &resp); err != nil {
		return Discussion{}, fmt.Errorf("failed to create discussion: %w", err)
	}

	return resp.CreateDiscussion.Discussion.discussion(), nil
}

// UpdateDiscussionBody replaces the opening post of a discussion.
func (c *Client) UpdateDiscussionBody(ctx context.Context, id, body string) (Discussion, error) {
	req := graphql.NewRequest(`
		mutation($id: ID!, $body: String!) {
			updateDiscussion(input: {discussionId: $id, body: $body}) {
				discussion {
					id
					number
					title
					body
					url
					closed
				}
			}
		}
	`)
	req.Var("id", id)
	req.Var("body", body)

	var resp struct {
		UpdateDiscussion struct {
			Discussion discussionNode `json:"discussion"`
		} `json:"updateDiscussion"`
	}

	if err := c.makeRequest(ctx, req, &resp); err != nil {
		return Discussion{}, fmt.Errorf("failed to update discussion: %w", err)
	}

	return resp.UpdateDiscussion.Discussion.discussion(), nil
}

// AddDiscussionComment adds a comment to a discussion.
// Uses the addDiscussionComment mutation which requires the discussion node ID.
func (c *Client) AddDiscussionComment(ctx context.Context, discussionID, body string) error {
	req := graphql.NewRequest(`
		mutation($discussionId: ID!, $body: String!) {
			addDiscussionComment(input: {discussionId: $discussionId, body: $body}) {
				comment {
					id
				}
			}
		}
	`)

	req.Var("discussionId", discussionID)
	req.Var("body", body)

	var resp struct {
		AddDiscussionComment struct {
			Comment struct {
				ID string `json:"id"`
			} `json:"comment"`
		} `json:"addDiscussionComment"`
	}

	if err := c.makeRequest(ctx, req, &resp); err != nil {
		return fmt.Errorf("failed to add comment: %w", err)
	}

	return nil
}
