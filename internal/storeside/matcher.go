package storeside

import (
	"context"
	"strconv"
	"time"

	"github.com/jontk/slurm-redis-jobcomp/internal/wire"
	jcerrors "github.com/jontk/slurm-redis-jobcomp/pkg/errors"
	"github.com/jontk/slurm-redis-jobcomp/pkg/kvstore"
	"github.com/jontk/slurm-redis-jobcomp/pkg/query"
	"github.com/jontk/slurm-redis-jobcomp/pkg/scancursor"
)

// dayScanChunk is the SSCAN count hint used while walking a day bucket.
const dayScanChunk = 500

// Matcher implements the MATCH verb: load a criteria bundle, walk
// candidates (either an explicit job list or day-bucket scans), and
// assemble a scored match set.
type Matcher struct {
	Store kvstore.Store
	TQry  time.Duration // T_qry; also used as the match-set TTL
}

// NewMatcher returns a Matcher bound to store, stamping the match set's
// TTL at tQry seconds (mirroring the criteria bundle's own lifetime).
func NewMatcher(store kvstore.Store, tQry time.Duration) *Matcher {
	return &Matcher{Store: store, TQry: tQry}
}

// Match runs the MATCH verb for the criteria bundle uuid under prefix.
// Returns the match-set key name, ("", nil) if the criteria key was
// absent or produced an empty match set, or an error.
func (m *Matcher) Match(ctx context.Context, prefix, uuid string) (string, error) {
	q := query.New(prefix, uuid)
	switch q.Prepare(ctx, m.Store) {
	case query.NULL:
		return "", nil
	case query.ERR:
		return "", q.LastError()
	}

	matchKey := wire.MatchKey(prefix, uuid)

	visit := func(jobid int64) error {
		switch q.Matches(ctx, m.Store, prefix, jobid) {
		case query.PASS:
			return m.Store.ZAdd(ctx, matchKey, float64(jobid), strconv.FormatInt(jobid, 10))
		case query.ERR:
			return q.LastError()
		default: // FAIL, NULL: not a match, not an error
			return nil
		}
	}

	if jobs, explicit := q.Jobs(); explicit {
		for _, jobid := range jobs {
			if err := visit(jobid); err != nil {
				return "", err
			}
		}
	} else {
		first, last := q.DayRange()
		for day := first; day <= last; day++ {
			if err := m.scanDay(ctx, prefix, day, visit); err != nil {
				return "", err
			}
		}
	}

	exists, err := m.Store.Exists(ctx, matchKey)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", nil
	}

	kind, err := m.Store.Type(ctx, matchKey)
	if err != nil {
		return "", err
	}
	if kind != "zset" {
		return "", jcerrors.NewWrongType("match key %q is a %s, not a sorted set", matchKey, kind)
	}

	if m.TQry > 0 {
		if err := m.Store.Expire(ctx, matchKey, m.TQry); err != nil {
			return "", err
		}
	}

	return matchKey, nil
}

func (m *Matcher) scanDay(ctx context.Context, prefix string, day int64, visit func(int64) error) error {
	cur := scancursor.New(ctx, m.Store, wire.IndexKey(prefix, day), dayScanChunk)
	for {
		member, ok := cur.Next()
		if !ok {
			break
		}
		jobid, err := strconv.ParseInt(member, 10, 64)
		if err != nil {
			return jcerrors.NewDecoding(err, "malformed jobid %q in day bucket %d", member, day)
		}
		if err := visit(jobid); err != nil {
			return err
		}
	}
	return cur.LastError()
}
