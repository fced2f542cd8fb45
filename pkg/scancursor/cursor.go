// Package scancursor wraps the store's incremental SSCAN primitive,
// hiding its cursor/chunk protocol behind a Next/EOF/LastError interface.
package scancursor

import (
	"context"

	"github.com/jontk/slurm-redis-jobcomp/pkg/kvstore"
)

// scanner is the subset of kvstore.Store a Cursor drives. Kept narrow so
// callers can pass a *kvstore.RedisStore directly.
type scanner interface {
	SScan(ctx context.Context, key string, cursor uint64, match string, count int64) (keys []string, next uint64, err error)
}

// Cursor iterates a set key's members via repeated SSCAN calls,
// surfacing the store's cursor-is-zero termination as EOF rather than
// exposing the cursor value itself.
type Cursor struct {
	store scanner
	key   string
	count int64

	ctx context.Context

	cursor  uint64
	started bool

	chunk []string
	pos   int

	lastErr error
}

// New returns a Cursor over key, requesting count elements per
// underlying SSCAN call (a hint, not a guarantee — the store may return
// more or fewer).
func New(ctx context.Context, store scanner, key string, count int64) *Cursor {
	return &Cursor{
		store: store,
		key:   key,
		count: count,
		ctx:   ctx,
	}
}

// Next returns the next member and true, or "", false at EOF or on
// error. Callers must check LastError after a false return to
// distinguish EOF from failure.
func (c *Cursor) Next() (string, bool) {
	if c.lastErr != nil {
		return "", false
	}

	for c.pos >= len(c.chunk) {
		if c.started && c.cursor == 0 {
			return "", false // EOF: a full loop of the backing table completed
		}
		keys, next, err := c.store.SScan(c.ctx, c.key, c.cursor, "", c.count)
		if err != nil {
			c.lastErr = err
			return "", false
		}
		c.started = true
		c.cursor = next
		c.chunk = keys
		c.pos = 0

		if len(c.chunk) == 0 && c.cursor == 0 {
			return "", false
		}
	}

	member := c.chunk[c.pos]
	c.pos++
	return member, true
}

// LastError returns the sticky error that ended iteration, if any.
func (c *Cursor) LastError() error {
	return c.lastErr
}
