// Package storeside implements the three verbs that would run inside
// the key-value store's command-processing thread on the original
// system: INDEX, MATCH, and FETCH. Go has no equivalent to loading
// native code into the store's own thread, so these are realized as
// ordinary client-side operations driven by transactional pipelines
// (pkg/kvstore.Store.Tx) rather than as in-process command handlers.
package storeside

import (
	"context"
	"strconv"
	"time"

	"github.com/jontk/slurm-redis-jobcomp/internal/wire"
	"github.com/jontk/slurm-redis-jobcomp/pkg/codec"
	jcerrors "github.com/jontk/slurm-redis-jobcomp/pkg/errors"
	"github.com/jontk/slurm-redis-jobcomp/pkg/kvstore"
)

// Indexer implements the INDEX verb: given a job already written to
// P:<jobid>, computes its End-day bucket and records membership.
type Indexer struct {
	Store  kvstore.Store
	TIndex time.Duration // T_idx; zero disables bucket TTL refresh
}

// NewIndexer returns an Indexer bound to store with the given bucket
// TTL (zero disables expiry, matching T_idx=0 in the criteria table).
func NewIndexer(store kvstore.Store, tIndex time.Duration) *Indexer {
	return &Indexer{Store: store, TIndex: tIndex}
}

// Index runs the INDEX verb for jobid under prefix. Returns the index
// key name on success, ("", nil) if the job key was absent (idempotent
// no-op), or an error for malformed stored data.
func (ix *Indexer) Index(ctx context.Context, prefix string, jobid int64) (string, error) {
	jobKey := wire.JobKey(prefix, jobid)

	exists, err := ix.Store.Exists(ctx, jobKey)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", nil
	}

	fields, err := ix.Store.HMGet(ctx, jobKey, wire.FieldABI.String(), wire.FieldTMF.String(), wire.FieldEnd.String())
	if err != nil {
		return "", err
	}
	abiLiteral, _ := fields[0].(string)
	tmfLiteral, _ := fields[1].(string)
	endLiteral, ok := fields[2].(string)
	if !ok || endLiteral == "" {
		return "", jcerrors.NewMissingField(wire.FieldEnd.String())
	}

	abi, err := strconv.Atoi(abiLiteral)
	if err != nil {
		return "", jcerrors.NewDecoding(err, "malformed _abi on job %d", jobid)
	}
	if abi != wire.DefaultABI {
		return "", jcerrors.NewABIMismatch(abi, wire.DefaultABI)
	}

	tmfInt, err := strconv.Atoi(tmfLiteral)
	if err != nil {
		return "", jcerrors.NewDecoding(err, "malformed _tmf on job %d", jobid)
	}

	end, err := codec.ParseTime(wire.TimeFormat(tmfInt), endLiteral)
	if err != nil {
		return "", err
	}

	day := wire.Day(end.Unix())
	indexKey := wire.IndexKey(prefix, day)
	jobidStr := strconv.FormatInt(jobid, 10)

	err = ix.Store.Tx(ctx, func(p kvstore.Pipeliner) error {
		p.SAdd(ctx, indexKey, jobidStr)
		if ix.TIndex > 0 {
			p.Expire(ctx, indexKey, ix.TIndex)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	return indexKey, nil
}
