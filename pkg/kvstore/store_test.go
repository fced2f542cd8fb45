package kvstore

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

var errTxAborted = stderrors.New("tx aborted for test")

// newTestStore returns a Store backed by an in-process fake Redis server
// plus a closer the caller should defer.
func newTestStore(t *testing.T) (*RedisStore, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return New(client), func() {
		client.Close()
		mr.Close()
	}
}

func TestHSetHGetAllRoundTrip(t *testing.T) {
	store, closer := newTestStore(t)
	defer closer()
	ctx := context.Background()

	require.NoError(t, store.HSet(ctx, "job:42", "JobID", "42", "State", "COMPLETED"))

	fields, err := store.HGetAll(ctx, "job:42")
	require.NoError(t, err)
	require.Equal(t, "42", fields["JobID"])
	require.Equal(t, "COMPLETED", fields["State"])
}

func TestSAddSScanWalksAllMembers(t *testing.T) {
	store, closer := newTestStore(t)
	defer closer()
	ctx := context.Background()

	require.NoError(t, store.SAdd(ctx, "idx:end:1", "1", "2", "3"))

	seen := map[string]bool{}
	var cursor uint64
	for {
		keys, next, err := store.SScan(ctx, "idx:end:1", cursor, "", 2)
		require.NoError(t, err)
		for _, k := range keys {
			seen[k] = true
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	require.Len(t, seen, 3)
}

func TestZAddZPopMinAscending(t *testing.T) {
	store, closer := newTestStore(t)
	defer closer()
	ctx := context.Background()

	require.NoError(t, store.ZAdd(ctx, "mat:q1", 30, "30"))
	require.NoError(t, store.ZAdd(ctx, "mat:q1", 10, "10"))
	require.NoError(t, store.ZAdd(ctx, "mat:q1", 20, "20"))

	members, err := store.ZPopMin(ctx, "mat:q1", 2)
	require.NoError(t, err)
	require.Len(t, members, 2)
	require.Equal(t, "10", members[0].Member)
	require.Equal(t, "20", members[1].Member)
}

func TestTxDiscardsOnError(t *testing.T) {
	store, closer := newTestStore(t)
	defer closer()
	ctx := context.Background()

	err := store.Tx(ctx, func(p Pipeliner) error {
		p.HSet(ctx, "job:99", "JobID", "99")
		return errTxAborted
	})
	require.Error(t, err)

	exists, err := store.Exists(ctx, "job:99")
	require.NoError(t, err)
	require.False(t, exists, "transaction must not have committed any writes")
}

func TestExpireSucceedsAndKeepsKeyBeforeTTL(t *testing.T) {
	store, closer := newTestStore(t)
	defer closer()
	ctx := context.Background()

	require.NoError(t, store.HSet(ctx, "job:1", "JobID", "1"))
	require.NoError(t, store.Expire(ctx, "job:1", 50*time.Millisecond))

	exists, err := store.Exists(ctx, "job:1")
	require.NoError(t, err)
	require.True(t, exists)
}
