// Package client implements the controller-side connection to the
// key-value store: a lazily-established single connection with a
// liveness probe and reconnect-on-failure, the transactional write and
// query paths, and the FETCH drain loop.
package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jontk/slurm-redis-jobcomp/internal/storeside"
	"github.com/jontk/slurm-redis-jobcomp/internal/wire"
	"github.com/jontk/slurm-redis-jobcomp/pkg/codec"
	jcerrors "github.com/jontk/slurm-redis-jobcomp/pkg/errors"
	"github.com/jontk/slurm-redis-jobcomp/pkg/kvstore"
	"github.com/jontk/slurm-redis-jobcomp/pkg/logging"
	"github.com/jontk/slurm-redis-jobcomp/pkg/record"
	"github.com/jontk/slurm-redis-jobcomp/pkg/retry"
)

// Client is the controller-side handle: one lazily-connected store
// session plus the TTL and sizing parameters that govern every verb
// invocation it makes.
type Client struct {
	addr     string
	password string
	db       int
	location string

	tJob time.Duration
	tIdx time.Duration
	tQry time.Duration

	fetchCount int64
	fetchLimit int64

	idCacheSize int
	idCacheTTL  time.Duration

	backoff retry.BackoffStrategy
	logger  logging.Logger

	mu       sync.Mutex
	redis    redis.UniversalClient
	store    kvstore.Store
	server   *storeside.Server
	resolver *codec.IdentityResolver
}

// New constructs a Client from options, without opening a connection —
// the first call that needs the store connects lazily.
func New(opts ...Option) (*Client, error) {
	c := &Client{
		addr:        "localhost:6379",
		tJob:        0,
		tIdx:        48 * time.Hour,
		tQry:        5 * time.Minute,
		fetchCount:  storeside.DefaultFetchCount,
		fetchLimit:  storeside.DefaultFetchLimit,
		idCacheSize: 4096,
		idCacheTTL:  10 * time.Minute,
		backoff:     retry.NewExponentialBackoff(),
		logger:      logging.NoOpLogger{},
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	c.resolver = codec.NewIdentityResolver(c.idCacheSize, c.idCacheTTL)
	return c, nil
}

// prefix returns the effective key namespace prefix for this client.
func (c *Client) prefix() string {
	return wire.Prefix(c.location)
}

// ensureConnected establishes the store connection on first use, or
// reconnects under backoff when the cached connection has gone dead.
func (c *Client) ensureConnected(ctx context.Context) (kvstore.Store, *storeside.Server, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.store != nil {
		if err := c.store.Ping(ctx); err == nil {
			return c.store, c.server, nil
		}
		c.logger.Warn("store connection liveness check failed, reconnecting", "addr", c.addr)
		_ = c.redis.Close()
		c.redis = nil
		c.store = nil
		c.server = nil
	}

	err := retry.Retry(ctx, c.backoff, func() error {
		rc := redis.NewClient(&redis.Options{
			Addr:     c.addr,
			Password: c.password,
			DB:       c.db,
		})
		if pingErr := rc.Ping(ctx).Err(); pingErr != nil {
			_ = rc.Close()
			return jcerrors.NewTransient(pingErr)
		}
		c.redis = rc
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("connect to store at %s: %w", c.addr, err)
	}

	c.store = kvstore.New(c.redis)
	c.server = storeside.NewServer(c.store, c.tIdx, c.tQry, c.fetchCount, c.fetchLimit)
	return c.store, c.server, nil
}

// Close releases the underlying store connection, if one is open.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.redis == nil {
		return nil
	}
	err := c.redis.Close()
	c.redis = nil
	c.store = nil
	c.server = nil
	return err
}

// WriteJob encodes j under tmf and writes its hash plus day-bucket
// index entry in a single transaction.
func (c *Client) WriteJob(ctx context.Context, tmf wire.TimeFormat, j record.Job) error {
	store, server, err := c.ensureConnected(ctx)
	if err != nil {
		return err
	}

	vec, err := codec.Encode(tmf, j, c.resolver, time.Now())
	if err != nil {
		return err
	}

	jobKey := wire.JobKey(c.prefix(), j.JobID)
	err = store.Tx(ctx, func(p kvstore.Pipeliner) error {
		args := make([]interface{}, 0, 2*wire.NumFields)
		for i := 0; i < int(wire.NumFields); i++ {
			if vec[i] == "" {
				continue
			}
			args = append(args, wire.Field(i).String(), vec[i])
		}
		p.HSet(ctx, jobKey, args...)
		if c.tJob > 0 {
			p.Expire(ctx, jobKey, c.tJob)
		}
		return nil
	})
	if err != nil {
		return err
	}

	_, err = server.Indexer.Index(ctx, c.prefix(), j.JobID)
	return err
}

// Criteria is the controller-facing form of a submitted query bundle,
// mirroring the scalar/set shape §4.3 defines.
type Criteria struct {
	TimeFormat wire.TimeFormat
	Start      time.Time
	End        time.Time
	NNodesMin  int64
	NNodesMax  int64

	GIDs       []string
	Jobs       []int64
	JobNames   []string
	Partitions []string
	States     []string
	UIDs       []string
}

// Query submits criteria, invokes MATCH, and drains the resulting match
// set via repeated FETCH calls, returning every matching job decoded
// into a record.Job.
func (c *Client) Query(ctx context.Context, criteria Criteria) ([]record.Job, error) {
	store, server, err := c.ensureConnected(ctx)
	if err != nil {
		return nil, err
	}

	id := uuid.New().String()
	prefix := c.prefix()

	err = store.Tx(ctx, func(p kvstore.Pipeliner) error {
		queryKey := wire.QueryKey(prefix, id)
		p.HSet(ctx, queryKey,
			wire.CriteriaFieldABI, fmt.Sprintf("%d", wire.DefaultABI),
			wire.CriteriaFieldTMF, fmt.Sprintf("%d", int(criteria.TimeFormat)),
			wire.FieldStart.String(), codec.FormatTime(criteria.TimeFormat, criteria.Start),
			wire.FieldEnd.String(), codec.FormatTime(criteria.TimeFormat, criteria.End),
			wire.CriteriaFieldNNodesMin, fmt.Sprintf("%d", criteria.NNodesMin),
			wire.CriteriaFieldNNodesMax, fmt.Sprintf("%d", criteria.NNodesMax),
		)
		p.Expire(ctx, queryKey, c.tQry)

		addSet := func(suffix string, members []string) {
			if len(members) == 0 {
				return
			}
			key := wire.QuerySetKey(prefix, id, suffix)
			args := make([]interface{}, len(members))
			for i, m := range members {
				args[i] = m
			}
			p.SAdd(ctx, key, args...)
			p.Expire(ctx, key, c.tQry)
		}
		addSet(wire.SetSuffixGID, criteria.GIDs)
		addSet(wire.SetSuffixJobName, criteria.JobNames)
		addSet(wire.SetSuffixPartition, criteria.Partitions)
		addSet(wire.SetSuffixState, criteria.States)
		addSet(wire.SetSuffixUID, criteria.UIDs)
		if len(criteria.Jobs) > 0 {
			jobs := make([]string, len(criteria.Jobs))
			for i, j := range criteria.Jobs {
				jobs[i] = fmt.Sprintf("%d", j)
			}
			addSet(wire.SetSuffixJob, jobs)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	matchKey, err := server.Matcher.Match(ctx, prefix, id)
	if err != nil {
		return nil, err
	}
	if matchKey == "" {
		return nil, nil
	}

	var results []record.Job
	for {
		vecs, err := server.Fetcher.Fetch(ctx, prefix, id, c.fetchCount)
		if err != nil {
			return nil, err
		}
		if len(vecs) == 0 {
			break
		}
		for _, v := range vecs {
			j, err := codec.Decode(codec.Vector(v))
			if err != nil {
				c.logger.Warn("skipping undecodable record in fetch batch", "query", id, "error", err)
				continue
			}
			if j.User == "" {
				j.User = c.resolver.ResolveUser(j.UID)
			}
			if j.Group == "" {
				j.Group = c.resolver.ResolveGroup(j.GID)
			}
			results = append(results, j)
		}
	}

	return results, nil
}
