// Package gh provides a GraphQL client for the GitHub surfaces cards are
// synchronized with: issues, pull requests and discussions.
// It implements a deep module interface - simple methods hiding complex GraphQL queries.
package gh

import (
	"context"
	"fmt"

	"github.com/machinebox/graphql"

	"github.com/h0rv/cardsync/internal/auth"
)

// DefaultEndpoint is the public GitHub GraphQL endpoint.
const DefaultEndpoint = "https://api.github.com/graphql"

// pageSize is the page size of every paginated query.
const pageSize = 100

// Client is a GitHub GraphQL API client.
type Client struct {
	gql   *graphql.Client
	token string
}

// New creates a new GitHub GraphQL client.
// It obtains an authentication token from the given provider.
func New(tokens auth.TokenProvider) (*Client, error) {
	token, err := tokens.GetToken()
	if err != nil {
		return nil, fmt.Errorf("failed to obtain GitHub token: %w", err)
	}
	return NewWithEndpoint(DefaultEndpoint, token), nil
}

// NewWithEndpoint creates a client for a specific endpoint, such as GitHub
// Enterprise or a test server.
func NewWithEndpoint(endpoint, token string) *Client {
	return &Client{
		gql:   graphql.NewClient(endpoint),
		token: token,
	}
}

// makeRequest executes a GraphQL request with authentication.
// This is a helper method to avoid repeating the authorization header setup.
func (c *Client) makeRequest(ctx context.Context, req *graphql.Request, resp interface{}) error {
	req.Header.Set("Authorization", "Bearer "+c.token)
	return c.gql.Run(ctx, req, resp)
}

// pageInfo is the cursor block of a connection.
type pageInfo struct {
	HasNextPage bool   `json:"hasNextPage"`
	EndCursor   string `json:"endCursor"`
}

// cursor returns the $after variable for a page: nil for the first page.
func cursor(after string) interface{} {
	if after == "" {
		return nil
	}
	return after
}
