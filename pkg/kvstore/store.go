// Package kvstore wraps the Redis-compatible client the store-side verbs
// and the controller-side client both depend on: hashes, sets, sorted
// sets, incremental scan, expiration, and transactional pipelines.
package kvstore

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	jcerrors "github.com/jontk/slurm-redis-jobcomp/pkg/errors"
)

// Store is the subset of Redis-protocol operations this module needs.
// Implemented by *RedisStore, which wraps a go-redis client; tests use a
// *RedisStore over a miniredis-backed client.
type Store interface {
	HSet(ctx context.Context, key string, values ...interface{}) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HMGet(ctx context.Context, key string, fields ...string) ([]interface{}, error)
	Exists(ctx context.Context, key string) (bool, error)
	Type(ctx context.Context, key string) (string, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error

	SAdd(ctx context.Context, key string, members ...interface{}) error
	SMembers(ctx context.Context, key string) ([]string, error)
	SScan(ctx context.Context, key string, cursor uint64, match string, count int64) (keys []string, next uint64, err error)

	ZAdd(ctx context.Context, key string, score float64, member string) error
	ZPopMin(ctx context.Context, key string, count int64) ([]ZMember, error)

	Ping(ctx context.Context) error

	// Tx runs fn inside a MULTI/EXEC transaction pipeline. If fn returns
	// an error, the transaction is discarded and the error is returned;
	// Redis command errors encountered while building ops are likewise
	// propagated without committing.
	Tx(ctx context.Context, fn func(Pipeliner) error) error
}

// ZMember is a sorted-set element and its score.
type ZMember struct {
	Member string
	Score  float64
}

// Pipeliner is the limited set of operations a Tx callback may queue.
type Pipeliner interface {
	HSet(ctx context.Context, key string, values ...interface{})
	Expire(ctx context.Context, key string, ttl time.Duration)
	SAdd(ctx context.Context, key string, members ...interface{})
	ZAdd(ctx context.Context, key string, score float64, member string)
}

// RedisStore is the production Store implementation over go-redis.
type RedisStore struct {
	client redis.UniversalClient
}

// New wraps an already-constructed go-redis client.
func New(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func translate(err error) error {
	if err == nil || err == redis.Nil {
		return err
	}
	return jcerrors.NewTransient(err)
}

func (s *RedisStore) HSet(ctx context.Context, key string, values ...interface{}) error {
	return translate(s.client.HSet(ctx, key, values...).Err())
}

func (s *RedisStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	res, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, translate(err)
	}
	return res, nil
}

func (s *RedisStore) HMGet(ctx context.Context, key string, fields ...string) ([]interface{}, error) {
	res, err := s.client.HMGet(ctx, key, fields...).Result()
	if err != nil {
		return nil, translate(err)
	}
	return res, nil
}

func (s *RedisStore) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return false, translate(err)
	}
	return n > 0, nil
}

func (s *RedisStore) Type(ctx context.Context, key string) (string, error) {
	res, err := s.client.Type(ctx, key).Result()
	if err != nil {
		return "", translate(err)
	}
	return res, nil
}

func (s *RedisStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return translate(s.client.Expire(ctx, key, ttl).Err())
}

func (s *RedisStore) SAdd(ctx context.Context, key string, members ...interface{}) error {
	return translate(s.client.SAdd(ctx, key, members...).Err())
}

func (s *RedisStore) SMembers(ctx context.Context, key string) ([]string, error) {
	res, err := s.client.SMembers(ctx, key).Result()
	if err != nil {
		return nil, translate(err)
	}
	return res, nil
}

func (s *RedisStore) SScan(ctx context.Context, key string, cursor uint64, match string, count int64) ([]string, uint64, error) {
	keys, next, err := s.client.SScan(ctx, key, cursor, match, count).Result()
	if err != nil {
		return nil, 0, translate(err)
	}
	return keys, next, nil
}

func (s *RedisStore) ZAdd(ctx context.Context, key string, score float64, member string) error {
	return translate(s.client.ZAdd(ctx, key, redis.Z{Score: score, Member: member}).Err())
}

func (s *RedisStore) ZPopMin(ctx context.Context, key string, count int64) ([]ZMember, error) {
	res, err := s.client.ZPopMin(ctx, key, count).Result()
	if err != nil {
		return nil, translate(err)
	}
	members := make([]ZMember, len(res))
	for i, z := range res {
		member, _ := z.Member.(string)
		members[i] = ZMember{Member: member, Score: z.Score}
	}
	return members, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return translate(s.client.Ping(ctx).Err())
}

func (s *RedisStore) Tx(ctx context.Context, fn func(Pipeliner) error) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		return fn(&pipeAdapter{pipe: pipe})
	})
	return translate(err)
}

type pipeAdapter struct {
	pipe redis.Pipeliner
}

func (p *pipeAdapter) HSet(ctx context.Context, key string, values ...interface{}) {
	p.pipe.HSet(ctx, key, values...)
}

func (p *pipeAdapter) Expire(ctx context.Context, key string, ttl time.Duration) {
	p.pipe.Expire(ctx, key, ttl)
}

func (p *pipeAdapter) SAdd(ctx context.Context, key string, members ...interface{}) {
	p.pipe.SAdd(ctx, key, members...)
}

func (p *pipeAdapter) ZAdd(ctx context.Context, key string, score float64, member string) {
	p.pipe.ZAdd(ctx, key, redis.Z{Score: score, Member: member})
}

// IsNil reports whether err is the store's "no such key"/null reply.
func IsNil(err error) bool {
	return err == redis.Nil
}
