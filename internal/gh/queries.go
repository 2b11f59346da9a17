package gh

import (
	"context"
	"fmt"
	"strings"

	"github.com/machinebox/graphql"
)

// Repository identifies a repository and carries its node ID once resolved.
type Repository struct {
	Owner string
	Name  string
	ID    string
}

func (r Repository) String() string {
	return r.Owner + "/" + r.Name
}

// ResolveRepository looks up the node ID of a repository.
func (c *Client) ResolveRepository(ctx context.Context, owner, name string) (Repository, error) {
	req := graphql.NewRequest(`
		query($owner: String!, $name: String!) {
			repository(owner: $owner, name: $name) {
				id
			}
		}
	`)
	req.Var("owner", owner)
	req.Var("name", name)

	var resp struct {
		Repository *struct {
			ID string `json:"id"`
		} `json:"repository"`
	}

	if err := c.makeRequest(ctx, req, &resp); err != nil {
		return Repository{}, fmt.Errorf("failed to resolve repository: %w", err)
	}
	if resp.Repository == nil {
		return Repository{}, fmt.Errorf("repository '%s/%s' not found", owner, name)
	}

	return Repository{Owner: owner, Name: name, ID: resp.Repository.ID}, nil
}

// ResolveLabels returns the node IDs of the named labels, in order.
func (c *Client) ResolveLabels(ctx context.Context, repo Repository, names []string) ([]string, error) {
	ids := make([]string, 0, len(names))
	for _, name := range names {
		req := graphql.NewRequest(`
			query($owner: String!, $name: String!, $label: String!) {
				repository(owner: $owner, name: $name) {
					label(name: $label) {
						id
					}
				}
			}
		`)
		req.Var("owner", repo.Owner)
		req.Var("name", repo.Name)
		req.Var("label", name)

		var resp struct {
			Repository struct {
				Label *struct {
					ID string `json:"id"`
				} `json:"label"`
			} `json:"repository"`
		}

		if err := c.makeRequest(ctx, req, &resp); err != nil {
			return nil, fmt.Errorf("failed to resolve label: %w", err)
		}
		if resp.Repository.Label == nil {
			return nil, fmt.Errorf("label '%s' not found in %s", name, repo)
		}
		ids = append(ids, resp.Repository.Label.ID)
	}
	return ids, nil
}

// ResolveDiscussionCategory returns the node ID of a discussion category,
// matched case-insensitively by name.
func (c *Client) ResolveDiscussionCategory(ctx context.Context, repo Repository, category string) (string, error) {
	req := graphql.NewRequest(`
		query($owner: String!, $name: String!) {
			repository(owner: $owner, name: $name) {
				discussionCategories(first: 50) {
					nodes {
						id
						name
					}
				}
			}
		}
	`)
	req.Var("owner", repo.Owner)
	req.Var("name", repo.Name)

	var resp struct {
		Repository struct {
			DiscussionCategories struct {
				Nodes []struct {
					ID   string `json:"id"`
					Name string `json:"name"`
				} `json:"nodes"`
			} `json:"discussionCategories"`
		} `json:"repository"`
	}

	if err := c.makeRequest(ctx, req, &resp); err != nil {
		return "", fmt.Errorf("failed to list discussion categories: %w", err)
	}

	for _, node := range resp.Repository.DiscussionCategories.Nodes {
		if strings.EqualFold(node.Name, category) {
			return node.ID, nil
		}
	}
	return "", fmt.Errorf("discussion category '%s' not found in %s", category, repo)
}
