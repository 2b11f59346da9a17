// Package cache provides a Redis read-through cache in front of the tabular
// store. The backing table stays the source of truth; the cache only saves
// round trips when several commands read the same project.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/h0rv/cardsync/internal/sheet"
)

// DefaultTTL is used when no TTL is configured.
const DefaultTTL = 10 * time.Minute

// Table wraps a sheet.Table. Reads are served from Redis when present; every
// write goes to the backing table first and then drops the project's key.
// Redis errors are logged and never fail a read or a committed write.
type Table struct {
	backing sheet.Table
	client  *redis.Client
	prefix  string
	ttl     time.Duration
	log     *zap.Logger
}

var _ sheet.Table = (*Table)(nil)

// New creates a cache in front of backing.
func New(backing sheet.Table, client *redis.Client, ttl time.Duration, log *zap.Logger) *Table {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Table{
		backing: backing,
		client:  client,
		prefix:  "cardsync:rows:",
		ttl:     ttl,
		log:     log,
	}
}

// Connect parses a redis:// URL and verifies the server answers.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return client, nil
}

func (t *Table) key(projectID int) string {
	return t.prefix + strconv.Itoa(projectID)
}

// Rows implements sheet.Table.
func (t *Table) Rows(ctx context.Context, projectID int) ([]sheet.Row, error) {
	data, err := t.client.Get(ctx, t.key(projectID)).Bytes()
	switch {
	case err == nil:
		var rows []sheet.Row
		if err := json.Unmarshal(data, &rows); err == nil {
			return rows, nil
		}
		t.log.Warn("discarding unreadable cache entry", zap.Int("project", projectID))
	case !errors.Is(err, redis.Nil):
		// a cache outage must not block reads
		t.log.Warn("cache read failed", zap.Int("project", projectID), zap.Error(err))
	}

	rows, err := t.backing.Rows(ctx, projectID)
	if err != nil {
		return nil, err
	}

	encoded, err := json.Marshal(rows)
	if err != nil {
		return nil, fmt.Errorf("encode rows: %w", err)
	}
	if err := t.client.Set(ctx, t.key(projectID), encoded, t.ttl).Err(); err != nil {
		t.log.Warn("cache write failed", zap.Int("project", projectID), zap.Error(err))
	}
	return rows, nil
}

// Update implements sheet.Table.
func (t *Table) Update(ctx context.Context, projectID int, rows []sheet.Row) error {
	if err := t.backing.Update(ctx, projectID, rows); err != nil {
		return err
	}
	t.invalidateAfterWrite(ctx, projectID)
	return nil
}

// Append implements sheet.Table.
func (t *Table) Append(ctx context.Context, projectID int, cells [][]string) ([]sheet.Row, error) {
	rows, err := t.backing.Append(ctx, projectID, cells)
	if err != nil {
		return nil, err
	}
	t.invalidateAfterWrite(ctx, projectID)
	return rows, nil
}

// Delete implements sheet.Table.
func (t *Table) Delete(ctx context.Context, projectID int, index int) error {
	if err := t.backing.Delete(ctx, projectID, index); err != nil {
		return err
	}
	t.invalidateAfterWrite(ctx, projectID)
	return nil
}

// invalidateAfterWrite drops the project's key once the backing write has
// committed. The write stands even when Redis is down; the entry then
// expires with its TTL.
func (t *Table) invalidateAfterWrite(ctx context.Context, projectID int) {
	if err := t.Invalidate(ctx, projectID); err != nil {
		t.log.Warn("cache invalidation failed", zap.Int("project", projectID), zap.Error(err))
	}
}

// Invalidate drops the cached rows of a project.
func (t *Table) Invalidate(ctx context.Context, projectID int) error {
	if err := t.client.Del(ctx, t.key(projectID)).Err(); err != nil {
		return fmt.Errorf("invalidate project %d: %w", projectID, err)
	}
	return nil
}
