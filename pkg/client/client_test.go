package client

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/jontk/slurm-redis-jobcomp/internal/wire"
	"github.com/jontk/slurm-redis-jobcomp/pkg/record"
)

func newTestClient(t *testing.T) (*Client, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)

	c, err := New(WithAddr(mr.Addr()), WithTTLs(0, time.Hour, time.Minute))
	require.NoError(t, err)

	return c, func() {
		c.Close()
		mr.Close()
	}
}

func TestWriteJobThenQueryRoundTrip(t *testing.T) {
	c, closer := newTestClient(t)
	defer closer()
	ctx := context.Background()

	j := record.Job{
		JobID:     42,
		Partition: "batch",
		Start:     time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		End:       time.Date(2024, 3, 1, 1, 0, 0, 0, time.UTC),
		UID:       1000,
		User:      "alice",
		GID:       1000,
		Group:     "alice",
		NNodes:    2,
		State:     record.JobStateCompleted,
		TimeLimit: record.TimeLimit{Minutes: 60},
	}
	require.NoError(t, c.WriteJob(ctx, wire.TimeFormatISO8601, j))

	results, err := c.Query(ctx, Criteria{
		TimeFormat: wire.TimeFormatISO8601,
		Start:      time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
		End:        time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, int64(42), results[0].JobID)
	require.Equal(t, int64(3600), results[0].Elapsed())
	require.Equal(t, record.JobStateCompleted, results[0].State)
}

func TestQueryExplicitJobList(t *testing.T) {
	c, closer := newTestClient(t)
	defer closer()
	ctx := context.Background()

	for _, id := range []int64{1, 2, 3} {
		j := record.Job{
			JobID: id,
			Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2024, 1, 1, 1, 0, 0, 0, time.UTC),
			State: record.JobStateCompleted,
		}
		require.NoError(t, c.WriteJob(ctx, wire.TimeFormatEpoch, j))
	}

	results, err := c.Query(ctx, Criteria{
		TimeFormat: wire.TimeFormatEpoch,
		Start:      time.Unix(0, 0),
		End:        time.Unix(9999999999, 0),
		Jobs:       []int64{3, 1},
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Equal(t, int64(1), results[0].JobID)
	require.Equal(t, int64(3), results[1].JobID)
}

func TestQueryNoMatchesReturnsNil(t *testing.T) {
	c, closer := newTestClient(t)
	defer closer()
	ctx := context.Background()

	results, err := c.Query(ctx, Criteria{
		TimeFormat: wire.TimeFormatEpoch,
		Start:      time.Unix(0, 0),
		End:        time.Unix(100, 0),
	})
	require.NoError(t, err)
	require.Empty(t, results)
}
