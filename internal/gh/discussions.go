package gh

import (
	"context"
	"fmt"

	"github.com/machinebox/graphql"
)

// commentWindow is how many of the newest comments are fetched per thread.
// Only the newest marker-carrying comment matters.
const commentWindow = 20

// Discussion is a discussion thread with its newest comments.
type Discussion struct {
	ID       string
	Number   int
	Title    string
	Body     string
	URL      string
	Closed   bool
	Comments []string // oldest first
}

// ListDiscussions fetches every discussion in a category, newest first.
func (c *Client) ListDiscussions(ctx context.Context, repo Repository, categoryID string) ([]Discussion, error) {
	var discussions []Discussion
	after := ""
	for {
		req := graphql.NewRequest(`
			query($owner: String!, $name: String!, $categoryId: ID!, $first: Int!, $after: String, $comments: Int!) {
				repository(owner: $owner, name: $name) {
					discussions(first: $first, after: $after, categoryId: $categoryId, orderBy: {field: CREATED_AT, direction: DESC}) {
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
							closed
							comments(last: $comments) {
								nodes {
									body
								}
							}
						}
					}
				}
			}
		`)
		req.Var("owner", repo.Owner)
		req.Var("name", repo.Name)
		req.Var("categoryId", categoryID)
		req.Var("first", pageSize)
		req.Var("after", cursor(after))
		req.Var("comments", commentWindow)

		var resp struct {
			Repository struct {
				Discussions struct {
					PageInfo pageInfo `json:"pageInfo"`
					Nodes    []struct {
						ID       string `json:"id"`
						Number   int    `json:"number"`
						Title    string `json:"title"`
						Body     string `json:"body"`
						URL      string `json:"url"`
						Closed   bool   `json:"closed"`
						Comments struct {
							Nodes []struct {
								Body string `json:"body"`
							} `json:"nodes"`
						} `json:"comments"`
					} `json:"nodes"`
				} `json:"discussions"`
			} `json:"repository"`
		}

		if err := c.makeRequest(ctx, req, &resp); err != nil {
			return nil, fmt.Errorf("failed to list discussions: %w", err)
		}

		for _, node := range resp.Repository.Discussions.Nodes {
			d := Discussion{
				ID:     node.ID,
				Number: node.Number,
				Title:  node.Title,
				Body:   node.Body,
				URL:    node.URL,
				Closed: node.Closed,
			}
			for _, comment := range node.Comments.Nodes {
				d.Comments = append(d.Comments, comment.Body)
			}
			discussions = append(discussions, d)
		}

		if !resp.Repository.Discussions.PageInfo.HasNextPage {
			return discussions, nil
		}
		after = resp.Repository.Discussions.PageInfo.EndCursor
	}
}
