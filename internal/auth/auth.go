// Package auth provides GitHub authentication token management.
// It implements a simple interface with multiple providers following the
// "deep modules" principle - simple interface, complex implementation hidden.
// Providers are tried in order: gh CLI, GITHUB_TOKEN, then a token from the
// cardsync config file.
package auth

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// TokenProvider defines the interface for obtaining a GitHub authentication token.
// Implementations may use different sources (CLI tools, environment variables, etc).
type TokenProvider interface {
	GetToken() (string, error)
}

// GhCliProvider obtains tokens by shelling out to the GitHub CLI (`gh auth token`).
// This is the preferred method as it respects the user's gh CLI authentication state.
type GhCliProvider struct{}

// GetToken shells out to `gh auth token` to retrieve the current token.
// Returns an error if gh CLI is not installed, not authenticated, or the command fails.
func (g *GhCliProvider) GetToken() (string, error) {
	cmd := exec.Command("gh", "auth", "token", "--hostname", "github.com")
	output, err := cmd.Output()
	if err != nil {
		// Check if it's an exec error (gh not found)
		if execErr, ok := err.(*exec.Error); ok && execErr.Err == exec.ErrNotFound {
			return "", errors.New("gh CLI not found in PATH")
		}
		// Other errors (not authenticated, etc)
		return "", fmt.Errorf("gh auth token failed: %w", err)
	}

	token := strings.TrimSpace(string(output))
	if token == "" {
		return "", errors.New("gh auth token returned empty token")
	}

	return token, nil
}

// EnvProvider obtains tokens from the GITHUB_TOKEN environment variable.
// This is the fallback method when gh CLI is not available.
type EnvProvider struct{}

// GetToken reads the GITHUB_TOKEN environment variable.
// Returns an error if the variable is not set or is empty.
func (e *EnvProvider) GetToken() (string, error) {
	token := os.Getenv("GITHUB_TOKEN")
	if token == "" {
		return "", errors.New("GITHUB_TOKEN environment variable not set or empty")
	}
	return token, nil
}

// StaticProvider returns a token supplied by configuration.
type StaticProvider struct {
	Token string
}

// GetToken returns the configured token.
// Returns an error if no token was configured.
func (s *StaticProvider) GetToken() (string, error) {
	if s.Token == "" {
		return "", errors.New("no token configured")
	}
	return s.Token, nil
}

// Chain tries providers in order and returns the first token obtained.
type Chain []TokenProvider

// GetToken implements TokenProvider.
func (c Chain) GetToken() (string, error) {
	if len(c) == 0 {
		return "", errors.New("no token providers")
	}
	var errs []error
	for _, p := range c {
		token, err := p.GetToken()
		if err == nil {
			return token, nil
		}
		errs = append(errs, err)
	}
	return "", fmt.Errorf(
		"failed to obtain GitHub token: %w\n"+
			"Please either:\n"+
			"  1. Run 'gh auth login' to authenticate with GitHub CLI, or\n"+
			"  2. Set the GITHUB_TOKEN environment variable with a personal access token, or\n"+
			"  3. Set github.token in the cardsync config file",
		errors.Join(errs...),
	)
}

// DefaultChain is gh CLI first (preferred method), then GITHUB_TOKEN, then
// the configured token when one is set.
func DefaultChain(configured string) Chain {
	chain := Chain{&GhCliProvider{}, &EnvProvider{}}
	if configured != "" {
		chain = append(chain, &StaticProvider{Token: configured})
	}
	return chain
}

// GetToken obtains a token from the default chain without a configured token.
// This is the main entry point for token retrieval in the application.
func GetToken() (string, error) {
	return DefaultChain("").GetToken()
}
