package client

import (
	"time"

	"github.com/jontk/slurm-redis-jobcomp/pkg/logging"
	"github.com/jontk/slurm-redis-jobcomp/pkg/retry"
)

// Option configures a Client at construction time.
type Option func(*Client) error

// WithAddr sets the store's address (host:port).
func WithAddr(addr string) Option {
	return func(c *Client) error {
		c.addr = addr
		return nil
	}
}

// WithPassword sets the store's AUTH password.
func WithPassword(password string) Option {
	return func(c *Client) error {
		c.password = password
		return nil
	}
}

// WithDB selects the store's logical database index.
func WithDB(db int) Option {
	return func(c *Client) error {
		c.db = db
		return nil
	}
}

// WithLocation sets the namespace location; the key prefix becomes
// "<location>:job" instead of the bare "job" default.
func WithLocation(location string) Option {
	return func(c *Client) error {
		c.location = location
		return nil
	}
}

// WithTTLs overrides T_job, T_idx, and T_qry (zero leaves the existing
// value, which defaults to pkg/config's NewDefault values).
func WithTTLs(tJob, tIdx, tQry time.Duration) Option {
	return func(c *Client) error {
		if tJob > 0 {
			c.tJob = tJob
		}
		if tIdx > 0 {
			c.tIdx = tIdx
		}
		if tQry > 0 {
			c.tQry = tQry
		}
		return nil
	}
}

// WithFetchSizing overrides the FETCH verb's batch size and clamp.
func WithFetchSizing(fetchCount, fetchLimit int64) Option {
	return func(c *Client) error {
		if fetchCount > 0 {
			c.fetchCount = fetchCount
		}
		if fetchLimit > 0 {
			c.fetchLimit = fetchLimit
		}
		return nil
	}
}

// WithIdentityCache overrides the codec's UID/GID resolver cache sizing.
func WithIdentityCache(size int, ttl time.Duration) Option {
	return func(c *Client) error {
		if size > 0 {
			c.idCacheSize = size
		}
		if ttl > 0 {
			c.idCacheTTL = ttl
		}
		return nil
	}
}

// WithBackoff sets the reconnect backoff strategy.
func WithBackoff(backoff retry.BackoffStrategy) Option {
	return func(c *Client) error {
		c.backoff = backoff
		return nil
	}
}

// WithLogger sets the client's structured logger.
func WithLogger(logger logging.Logger) Option {
	return func(c *Client) error {
		c.logger = logger
		return nil
	}
}
