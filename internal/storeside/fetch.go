package storeside

import (
	"context"
	"strconv"

	"github.com/jontk/slurm-redis-jobcomp/internal/wire"
	jcerrors "github.com/jontk/slurm-redis-jobcomp/pkg/errors"
	"github.com/jontk/slurm-redis-jobcomp/pkg/kvstore"
)

// DefaultFetchCount is the default ZPOPMIN batch size per internal pop.
const DefaultFetchCount = 100

// DefaultFetchLimit is the default clamp applied to a caller-requested max.
const DefaultFetchLimit = 500

// Fetcher implements the FETCH verb: drains a match set in ascending
// jobid order, hydrating each surviving job's slot vector.
type Fetcher struct {
	Store      kvstore.Store
	FetchCount int64 // ZPOPMIN batch size
	FetchLimit int64 // clamp applied to the caller's requested max
}

// NewFetcher returns a Fetcher bound to store with the given batch size
// and limit; zero values fall back to DefaultFetchCount/DefaultFetchLimit.
func NewFetcher(store kvstore.Store, fetchCount, fetchLimit int64) *Fetcher {
	if fetchCount <= 0 {
		fetchCount = DefaultFetchCount
	}
	if fetchLimit <= 0 {
		fetchLimit = DefaultFetchLimit
	}
	return &Fetcher{Store: store, FetchCount: fetchCount, FetchLimit: fetchLimit}
}

// Vector is one hydrated, fixed-length slot array. Slots[f] is "" when
// the underlying hash field was absent.
type Vector = [wire.NumFields]string

// Fetch drains up to max (clamped to FetchLimit) entries from the match
// set uuid under prefix. Popped members whose job key no longer exists
// are silently skipped and not counted against max. Returns fewer than
// max without error when the match set temporarily runs dry; callers
// must keep calling until they receive zero results.
func (f *Fetcher) Fetch(ctx context.Context, prefix, uuid string, max int64) ([]Vector, error) {
	if max > f.FetchLimit {
		max = f.FetchLimit
	}
	matchKey := wire.MatchKey(prefix, uuid)

	results := make([]Vector, 0, max)
	for int64(len(results)) < max {
		remaining := max - int64(len(results))
		batch := f.FetchCount
		if remaining < batch {
			batch = remaining
		}

		popped, err := f.Store.ZPopMin(ctx, matchKey, batch)
		if err != nil {
			return nil, err
		}
		if len(popped) == 0 {
			break
		}

		for _, member := range popped {
			jobid, err := strconv.ParseInt(member.Member, 10, 64)
			if err != nil {
				return nil, jcerrors.NewDecoding(err, "malformed jobid %q popped from match set %s", member.Member, uuid)
			}

			vec, ok, err := f.hydrate(ctx, prefix, jobid)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			results = append(results, vec)
		}
	}

	return results, nil
}

func (f *Fetcher) hydrate(ctx context.Context, prefix string, jobid int64) (Vector, bool, error) {
	var vec Vector
	jobKey := wire.JobKey(prefix, jobid)

	exists, err := f.Store.Exists(ctx, jobKey)
	if err != nil {
		return vec, false, err
	}
	if !exists {
		return vec, false, nil
	}

	names := make([]string, wire.NumFields)
	for i := range names {
		names[i] = wire.Field(i).String()
	}
	raw, err := f.Store.HMGet(ctx, jobKey, names...)
	if err != nil {
		return vec, false, err
	}
	for i, v := range raw {
		if s, ok := v.(string); ok {
			vec[i] = s
		}
	}

	abi, err := strconv.Atoi(vec[wire.FieldABI])
	if err != nil {
		return vec, false, jcerrors.NewDecoding(err, "malformed _abi on job %d", jobid)
	}
	if abi != wire.DefaultABI {
		return vec, false, jcerrors.NewABIMismatch(abi, wire.DefaultABI)
	}

	return vec, true, nil
}
