// Package query implements the criteria object: loading a submitted
// criteria bundle from the store and answering a per-job match
// predicate against it.
package query

import (
	"context"
	"strconv"

	"golang.org/x/text/unicode/norm"

	"github.com/jontk/slurm-redis-jobcomp/internal/wire"
	"github.com/jontk/slurm-redis-jobcomp/pkg/codec"
	jcerrors "github.com/jontk/slurm-redis-jobcomp/pkg/errors"
	"github.com/jontk/slurm-redis-jobcomp/pkg/kvstore"
)

// Outcome is the result of Prepare or Matches. Prepare only ever
// produces OK, NULL, or ERR; Matches additionally produces PASS or FAIL.
type Outcome int

const (
	OK Outcome = iota
	NULL
	ERR
	PASS
	FAIL
)

// Query is the deserialized form of one P:qry:<uuid> family: a scalar
// time/node-count window plus up to six optional set-valued
// discriminators.
type Query struct {
	Prefix string
	UUID   string

	tmf wire.TimeFormat

	startSeconds int64
	endSeconds   int64
	startISO     string
	endISO       string

	nnodesMin int64
	nnodesMax int64

	gids       map[string]bool
	jobs       []int64
	jobnames   map[string]bool
	partitions map[string]bool
	states     map[string]bool
	uids       map[string]bool

	lastError error
}

// New returns an empty Query bound to prefix/uuid, ready for Prepare.
func New(prefix, uuid string) *Query {
	return &Query{Prefix: prefix, UUID: uuid}
}

// Prepare loads the criteria hash and its optional set members from
// store.
func (q *Query) Prepare(ctx context.Context, store kvstore.Store) Outcome {
	key := wire.QueryKey(q.Prefix, q.UUID)
	exists, err := store.Exists(ctx, key)
	if err != nil {
		q.lastError = err
		return ERR
	}
	if !exists {
		return NULL
	}

	fields, err := store.HGetAll(ctx, key)
	if err != nil {
		q.lastError = err
		return ERR
	}

	required := []string{
		wire.CriteriaFieldABI, wire.CriteriaFieldTMF,
		wire.FieldStart.String(), wire.FieldEnd.String(),
		wire.CriteriaFieldNNodesMin, wire.CriteriaFieldNNodesMax,
	}
	for _, name := range required {
		if _, ok := fields[name]; !ok {
			q.lastError = jcerrors.NewMissingField(name)
			return ERR
		}
	}

	abi, err := strconv.Atoi(fields[wire.CriteriaFieldABI])
	if err != nil {
		q.lastError = jcerrors.NewDecoding(err, "malformed _abi in criteria %s", q.UUID)
		return ERR
	}
	if abi != wire.DefaultABI {
		q.lastError = jcerrors.NewABIMismatch(abi, wire.DefaultABI)
		return ERR
	}

	tmfInt, err := strconv.Atoi(fields[wire.CriteriaFieldTMF])
	if err != nil {
		q.lastError = jcerrors.NewDecoding(err, "malformed _tmf in criteria %s", q.UUID)
		return ERR
	}
	q.tmf = wire.TimeFormat(tmfInt)

	startTime, err := codec.ParseTime(q.tmf, fields[wire.FieldStart.String()])
	if err != nil {
		q.lastError = err
		return ERR
	}
	endTime, err := codec.ParseTime(q.tmf, fields[wire.FieldEnd.String()])
	if err != nil {
		q.lastError = err
		return ERR
	}
	q.startSeconds = startTime.Unix()
	q.endSeconds = endTime.Unix()
	if q.tmf == wire.TimeFormatISO8601 {
		q.startISO = codec.FormatTime(wire.TimeFormatISO8601, startTime)
		q.endISO = codec.FormatTime(wire.TimeFormatISO8601, endTime)
	}

	q.nnodesMin, err = strconv.ParseInt(fields[wire.CriteriaFieldNNodesMin], 10, 64)
	if err != nil {
		q.lastError = jcerrors.NewDecoding(err, "malformed NNodesMin in criteria %s", q.UUID)
		return ERR
	}
	q.nnodesMax, err = strconv.ParseInt(fields[wire.CriteriaFieldNNodesMax], 10, 64)
	if err != nil {
		q.lastError = jcerrors.NewDecoding(err, "malformed NNodesMax in criteria %s", q.UUID)
		return ERR
	}

	for _, suffix := range wire.SetSuffixes {
		members, err := store.SMembers(ctx, wire.QuerySetKey(q.Prefix, q.UUID, suffix))
		if err != nil {
			q.lastError = err
			return ERR
		}
		if len(members) == 0 {
			continue
		}
		switch suffix {
		case wire.SetSuffixGID:
			q.gids = toSet(members)
		case wire.SetSuffixJob:
			q.jobs = make([]int64, 0, len(members))
			for _, m := range members {
				id, perr := strconv.ParseInt(m, 10, 64)
				if perr != nil {
					q.lastError = jcerrors.NewDecoding(perr, "malformed job id %q in criteria %s", m, q.UUID)
					return ERR
				}
				q.jobs = append(q.jobs, id)
			}
		case wire.SetSuffixJobName:
			q.jobnames = toNormalizedSet(members)
		case wire.SetSuffixPartition:
			q.partitions = toSet(members)
		case wire.SetSuffixState:
			q.states = toSet(members)
		case wire.SetSuffixUID:
			q.uids = toSet(members)
		}
	}

	return OK
}

// Jobs returns the explicit job-id list, if the criteria named one, and
// whether it did.
func (q *Query) Jobs() ([]int64, bool) {
	return q.jobs, q.jobs != nil
}

// DayRange returns the inclusive UTC day-bucket range the time window
// spans, for use when no explicit job list was supplied.
func (q *Query) DayRange() (first, last int64) {
	return wire.Day(q.startSeconds), wire.Day(q.endSeconds)
}

// LastError returns the sticky error from the most recent Prepare/Matches
// call that returned ERR.
func (q *Query) LastError() error {
	return q.lastError
}

func toSet(members []string) map[string]bool {
	set := make(map[string]bool, len(members))
	for _, m := range members {
		set[m] = true
	}
	return set
}

func toNormalizedSet(members []string) map[string]bool {
	set := make(map[string]bool, len(members))
	for _, m := range members {
		set[norm.NFC.String(m)] = true
	}
	return set
}

// Matches opens P:<jobid>, fetches the slots the predicates need, and
// applies them short-circuit in the order: time, gid, nnodes, jobname,
// partition, state, uid.
func (q *Query) Matches(ctx context.Context, store kvstore.Store, prefix string, jobid int64) Outcome {
	key := wire.JobKey(prefix, jobid)
	exists, err := store.Exists(ctx, key)
	if err != nil {
		q.lastError = err
		return ERR
	}
	if !exists {
		return NULL
	}

	needed := []string{
		wire.FieldABI.String(), wire.FieldTMF.String(), wire.FieldStart.String(), wire.FieldEnd.String(),
		wire.FieldGID.String(), wire.FieldNNodes.String(), wire.FieldJobName.String(),
		wire.FieldPartition.String(), wire.FieldState.String(), wire.FieldUID.String(),
	}
	raw, err := store.HMGet(ctx, key, needed...)
	if err != nil {
		q.lastError = err
		return ERR
	}
	values := make([]string, len(raw))
	for i, v := range raw {
		if s, ok := v.(string); ok {
			values[i] = s
		}
	}
	get := func(name string) string {
		for i, n := range needed {
			if n == name {
				return values[i]
			}
		}
		return ""
	}

	abi, err := strconv.Atoi(get(wire.FieldABI.String()))
	if err != nil {
		q.lastError = jcerrors.NewDecoding(err, "malformed _abi on job %d", jobid)
		return ERR
	}
	if abi != wire.DefaultABI {
		q.lastError = jcerrors.NewABIMismatch(abi, wire.DefaultABI)
		return ERR
	}

	jobTMFInt, err := strconv.Atoi(get(wire.FieldTMF.String()))
	if err != nil {
		q.lastError = jcerrors.NewDecoding(err, "malformed _tmf on job %d", jobid)
		return ERR
	}
	jobTMF := wire.TimeFormat(jobTMFInt)

	timeOK, err := q.timePasses(jobTMF, get(wire.FieldStart.String()), get(wire.FieldEnd.String()))
	if err != nil {
		q.lastError = jcerrors.NewDecoding(err, "malformed Start/End on job %d", jobid)
		return ERR
	}
	if !timeOK {
		return FAIL
	}

	if q.gids != nil && !q.gids[get(wire.FieldGID.String())] {
		return FAIL
	}

	if q.nnodesMin != 0 || q.nnodesMax != 0 {
		n, perr := strconv.ParseInt(get(wire.FieldNNodes.String()), 10, 64)
		if perr != nil {
			q.lastError = jcerrors.NewDecoding(perr, "malformed NNodes on job %d", jobid)
			return ERR
		}
		if !(q.nnodesMin <= n && (q.nnodesMax == 0 || n <= q.nnodesMax)) {
			return FAIL
		}
	}

	if q.jobnames != nil && !q.jobnames[norm.NFC.String(get(wire.FieldJobName.String()))] {
		return FAIL
	}

	if q.partitions != nil && !q.partitions[get(wire.FieldPartition.String())] {
		return FAIL
	}

	if q.states != nil && !q.states[get(wire.FieldState.String())] {
		return FAIL
	}

	if q.uids != nil && !q.uids[get(wire.FieldUID.String())] {
		return FAIL
	}

	return PASS
}

func (q *Query) timePasses(jobTMF wire.TimeFormat, startLiteral, endLiteral string) (bool, error) {
	if jobTMF == wire.TimeFormatISO8601 && q.tmf == wire.TimeFormatISO8601 {
		return q.startISO <= startLiteral && endLiteral <= q.endISO, nil
	}
	jobStart, err := codec.ParseTime(jobTMF, startLiteral)
	if err != nil {
		return false, err
	}
	jobEnd, err := codec.ParseTime(jobTMF, endLiteral)
	if err != nil {
		return false, err
	}
	return q.startSeconds <= jobStart.Unix() && jobEnd.Unix() <= q.endSeconds, nil
}
