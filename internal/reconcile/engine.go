package reconcile

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/h0rv/cardsync/internal/report"
)

// DefaultConcurrency bounds the items resolved at once.
const DefaultConcurrency = 4

// Action is what happened to the remote resource of one item.
type Action int

const (
	Unchanged Action = iota
	Created
	Updated
	Failed
)

func (a Action) String() string {
	switch a {
	case Created:
		return "created"
	case Updated:
		return "updated"
	case Failed:
		return "failed"
	default:
		return "unchanged"
	}
}

// Outcome is the resolution of one item.
type Outcome[T any] struct {
	Item     T
	Key      string
	Action   Action
	Resource Resource
	Err      error
}

// Failure identifies a failed item by its natural key.
type Failure struct {
	Key string
	Err error
}

// Summary counts the outcomes of a batch.
type Summary struct {
	Created   int
	Updated   int
	Unchanged int
	Failed    int
	Failures  []Failure
}

// Tally converts the summary for terminal rendering.
func (s Summary) Tally(name string, dryRun bool) report.Tally {
	t := report.Tally{
		Name:      name,
		Created:   s.Created,
		Updated:   s.Updated,
		Unchanged: s.Unchanged,
		Failed:    s.Failed,
		DryRun:    dryRun,
	}
	for _, f := range s.Failures {
		t.Failures = append(t.Failures, fmt.Sprintf("%s: %v", f.Key, f.Err))
	}
	return t
}

// Result is the outcome of a batch. Outcomes are in input order. Dirty holds
// the items whose local state changed and must be persisted.
type Result[T any] struct {
	RunID    string
	Outcomes []Outcome[T]
	Dirty    []T
	Summary  Summary
}

// Succeeded returns the outcomes that did not fail.
func (r *Result[T]) Succeeded() []Outcome[T] {
	var out []Outcome[T]
	for _, o := range r.Outcomes {
		if o.Action != Failed {
			out = append(out, o)
		}
	}
	return out
}

// Engine reconciles items of type T against a Remote. P is the prepared
// input the descriptor depends on, typically a rendered artifact: Build
// cannot run without it.
type Engine[T, P any] struct {
	Name   string
	Remote Remote
	Log    *zap.Logger

	// Concurrency bounds the items in flight; DefaultConcurrency when zero.
	Concurrency int

	Key     func(item T) string
	Prepare func(ctx context.Context, item T) (P, error)
	Build   func(item T, prepared P) (Descriptor, error)

	// Settle applies the resolved resource to the item and reports whether the
	// item's local state changed. Optional.
	Settle func(item T, res Resource) bool

	// Amend runs on an existing mutable resource before its body is
	// rewritten, so a failure leaves the old body for the next run to compare
	// against. Optional.
	Amend func(ctx context.Context, item T, prepared P, existing Resource) error
}

// Run reconciles a batch. Only a failed listing fails the whole run; every
// other error is recorded on its item.
func (e *Engine[T, P]) Run(ctx context.Context, items []T) (*Result[T], error) {
	runID := uuid.NewString()
	log := e.Log.With(zap.String("sync", e.Name), zap.String("run_id", runID))

	remote, err := e.Remote.List(ctx)
	if err != nil {
		return nil, &RemoteSyncError{Op: "list", Err: err}
	}
	index := make(map[string]Resource, len(remote))
	for _, r := range remote {
		// first match wins; the collection lists newest first
		if _, dup := index[r.Title]; !dup {
			index[r.Title] = r
		}
	}
	log.Debug("listed remote", zap.Int("resources", len(remote)), zap.Int("items", len(items)))

	limit := e.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	outcomes := make([]Outcome[T], len(items))
	titles := &titleClaims{owners: make(map[string]string)}

	var g errgroup.Group
	g.SetLimit(limit)
	for i, item := range items {
		g.Go(func() error {
			outcomes[i] = e.resolve(ctx, item, index, titles)
			return nil
		})
	}
	_ = g.Wait()

	result := &Result[T]{RunID: runID, Outcomes: outcomes}
	for _, o := range outcomes {
		switch o.Action {
		case Created:
			result.Summary.Created++
		case Updated:
			result.Summary.Updated++
		case Unchanged:
			result.Summary.Unchanged++
		case Failed:
			result.Summary.Failed++
			result.Summary.Failures = append(result.Summary.Failures, Failure{Key: o.Key, Err: o.Err})
			log.Error("item failed", zap.String("key", o.Key), zap.Error(o.Err))
		}
	}

	if e.Settle != nil {
		for _, o := range outcomes {
			if o.Action != Failed && e.Settle(o.Item, o.Resource) {
				result.Dirty = append(result.Dirty, o.Item)
			}
		}
	}

	log.Info("sync finished",
		zap.Int("created", result.Summary.Created),
		zap.Int("updated", result.Summary.Updated),
		zap.Int("unchanged", result.Summary.Unchanged),
		zap.Int("failed", result.Summary.Failed),
		zap.Int("dirty", len(result.Dirty)))
	return result, nil
}

func (e *Engine[T, P]) resolve(ctx context.Context, item T, index map[string]Resource, titles *titleClaims) Outcome[T] {
	key := e.Key(item)
	out := Outcome[T]{Item: item, Key: key, Action: Failed}

	var prepared P
	if e.Prepare != nil {
		p, err := e.Prepare(ctx, item)
		if err != nil {
			out.Err = fmt.Errorf("prepare: %w", err)
			return out
		}
		prepared = p
	}

	desired, err := e.Build(item, prepared)
	if err != nil {
		out.Err = err
		return out
	}
	if other, ok := titles.claim(desired.Title, key); !ok {
		out.Err = &InvariantViolation{Key: key, Reason: fmt.Sprintf("title %q already claimed by %s", desired.Title, other)}
		return out
	}

	var res Resource
	action := Unchanged
	if found, ok := index[desired.Title]; !ok {
		res, err = e.Remote.Create(ctx, desired)
		if err != nil {
			out.Err = &RemoteSyncError{Op: "create", Title: desired.Title, Err: err}
			return out
		}
		action = Created
	} else {
		res = found
		if found.Mutable() && e.Amend != nil {
			if err := e.Amend(ctx, item, prepared, found); err != nil {
				out.Err = err
				return out
			}
		}
		if found.Mutable() && found.Body != desired.Body {
			res, err = e.Remote.Update(ctx, found, desired)
			if err != nil {
				out.Err = &RemoteSyncError{Op: "update", Title: desired.Title, Err: err}
				return out
			}
			action = Updated
		}
	}

	out.Action = action
	out.Resource = res
	return out
}

// titleClaims rejects two items of one batch resolving to the same title.
type titleClaims struct {
	mu     sync.Mutex
	owners map[string]string
}

func (c *titleClaims) claim(title, key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if owner, ok := c.owners[title]; ok {
		return owner, false
	}
	c.owners[title] = key
	return key, true
}
