package storeside

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jontk/slurm-redis-jobcomp/internal/wire"
)

func TestFetchDrainsAscendingAndIsDestructive(t *testing.T) {
	store, _, closer := newTestStore(t)
	defer closer()
	ctx := context.Background()

	seedJob(t, ctx, store, 1, "100", "200")
	seedJob(t, ctx, store, 2, "100", "200")
	require.NoError(t, store.ZAdd(ctx, wire.MatchKey("job", "q1"), 1, "1"))
	require.NoError(t, store.ZAdd(ctx, wire.MatchKey("job", "q1"), 2, "2"))

	f := NewFetcher(store, 100, 500)
	vecs, err := f.Fetch(ctx, "job", "q1", 10)
	require.NoError(t, err)
	require.Len(t, vecs, 2)
	require.Equal(t, "1", vecs[0][wire.FieldJobID])
	require.Equal(t, "2", vecs[1][wire.FieldJobID])

	vecs, err = f.Fetch(ctx, "job", "q1", 10)
	require.NoError(t, err)
	require.Empty(t, vecs)
}

func TestFetchSkipsExpiredJobWithoutCountingIt(t *testing.T) {
	store, _, closer := newTestStore(t)
	defer closer()
	ctx := context.Background()

	seedJob(t, ctx, store, 5, "100", "200")
	require.NoError(t, store.ZAdd(ctx, wire.MatchKey("job", "q2"), 4, "4"))
	require.NoError(t, store.ZAdd(ctx, wire.MatchKey("job", "q2"), 5, "5"))

	f := NewFetcher(store, 100, 500)
	vecs, err := f.Fetch(ctx, "job", "q2", 10)
	require.NoError(t, err)
	require.Len(t, vecs, 1)
	require.Equal(t, "5", vecs[0][wire.FieldJobID])
}

func TestFetchClampsToLimit(t *testing.T) {
	store, _, closer := newTestStore(t)
	defer closer()
	ctx := context.Background()

	for i := int64(1); i <= 5; i++ {
		seedJob(t, ctx, store, i, "100", "200")
		require.NoError(t, store.ZAdd(ctx, wire.MatchKey("job", "q3"), float64(i), strconv.FormatInt(i, 10)))
	}

	f := NewFetcher(store, 100, 3)
	vecs, err := f.Fetch(ctx, "job", "q3", 100)
	require.NoError(t, err)
	require.Len(t, vecs, 3)
}
