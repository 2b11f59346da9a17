// Package reconcile synchronizes card records with title-indexed remote
// collections: GitHub issues, pull requests and discussions.
//
// A batch lists the remote collection once, then resolves every item on its
// own: prepare the artifact, build the desired descriptor, match it by exact
// title and create, update or leave the remote resource alone. Failures stay
// with the item that caused them.
package reconcile

import (
	"context"
	"fmt"
)

// State is the state of a remote resource.
type State string

const (
	StateOpen   State = "open"
	StateClosed State = "closed"
	StateMerged State = "merged"
)

// Descriptor is the desired form of a remote resource.
type Descriptor struct {
	Title  string
	Body   string
	Labels []string
	Extra  map[string]string // adapter specific, e.g. branch names
}

// Resource is a remote resource as last seen.
type Resource struct {
	ID       string
	Number   int
	Title    string
	Body     string
	URL      string
	State    State
	Comments []string // discussion comments, oldest first
}

// Mutable reports whether the resource may still be edited. Closed and merged
// resources are never reopened or edited.
func (r Resource) Mutable() bool {
	return r.State == StateOpen
}

// Remote is a title-indexed remote collection.
type Remote interface {
	// List returns every candidate resource of the collection in one batched query.
	List(ctx context.Context) ([]Resource, error)
	Create(ctx context.Context, d Descriptor) (Resource, error)
	Update(ctx context.Context, r Resource, d Descriptor) (Resource, error)
}

// Commenter is implemented by remotes that accept follow-up comments.
type Commenter interface {
	AddComment(ctx context.Context, r Resource, body string) error
}

// RemoteSyncError is a failed remote call for one item.
type RemoteSyncError struct {
	Op    string // list, create, update or comment
	Title string
	Err   error
}

func (e *RemoteSyncError) Error() string {
	if e.Title == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", e.Op, e.Title, e.Err)
}

func (e *RemoteSyncError) Unwrap() error {
	return e.Err
}

// InvariantViolation is an item whose local state cannot be reconciled.
type InvariantViolation struct {
	Key    string
	Reason string
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("%s: %s", e.Key, e.Reason)
}
