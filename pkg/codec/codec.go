// Package codec translates between a controller-side job record
// (pkg/record.Job) and the canonical 28-slot wire vector, and handles
// the tmf-dependent time literal format.
package codec

import (
	"fmt"
	"os/user"
	"strconv"
	"strings"
	"time"

	"github.com/jontk/slurm-redis-jobcomp/internal/wire"
	jcerrors "github.com/jontk/slurm-redis-jobcomp/pkg/errors"
	"github.com/jontk/slurm-redis-jobcomp/pkg/identitycache"
	"github.com/jontk/slurm-redis-jobcomp/pkg/record"
)

// IdentityResolver resolves a uid/gid to its display name, consulting a
// cache before falling back to the host's name service.
type IdentityResolver struct {
	users  *identitycache.Cache
	groups *identitycache.Cache
}

// NewIdentityResolver returns a resolver backed by two identitycache
// tables of the given size/ttl, one for users and one for groups.
func NewIdentityResolver(size int, ttl time.Duration) *IdentityResolver {
	return &IdentityResolver{
		users:  identitycache.New(size, ttl),
		groups: identitycache.New(size, ttl),
	}
}

// ResolveUser returns the display name for uid, consulting the cache
// first and falling back to os/user.LookupId on miss.
func (r *IdentityResolver) ResolveUser(uid int64) string {
	if name, result := r.users.Get(uint64(uid)); result == identitycache.OK {
		return name
	}
	name := strconv.FormatInt(uid, 10)
	if u, err := user.LookupId(name); err == nil {
		name = u.Username
	}
	r.users.Set(uint64(uid), name)
	return name
}

// ResolveGroup returns the display name for gid, consulting the cache
// first and falling back to os/user.LookupGroupId on miss.
func (r *IdentityResolver) ResolveGroup(gid int64) string {
	if name, result := r.groups.Get(uint64(gid)); result == identitycache.OK {
		return name
	}
	name := strconv.FormatInt(gid, 10)
	if g, err := user.LookupGroupId(name); err == nil {
		name = g.Name
	}
	r.groups.Set(uint64(gid), name)
	return name
}

// FormatTime renders t under tmf: ISO-8601 UTC for TimeFormatISO8601, or
// signed decimal seconds since the epoch for TimeFormatEpoch.
func FormatTime(tmf wire.TimeFormat, t time.Time) string {
	if tmf == wire.TimeFormatISO8601 {
		return t.UTC().Format(wire.ISO8601Layout)
	}
	return strconv.FormatInt(t.Unix(), 10)
}

// ParseTime parses literal under tmf, returning ErrorCodeBadTime on
// malformed input.
func ParseTime(tmf wire.TimeFormat, literal string) (time.Time, error) {
	if tmf == wire.TimeFormatISO8601 {
		t, err := time.Parse(wire.ISO8601Layout, literal)
		if err != nil {
			return time.Time{}, jcerrors.NewBadTime(literal, err)
		}
		return t.UTC(), nil
	}
	seconds, err := strconv.ParseInt(literal, 10, 64)
	if err != nil {
		return time.Time{}, jcerrors.NewBadTime(literal, err)
	}
	return time.Unix(seconds, 0).UTC(), nil
}

// Vector is the slot vector: index by wire.Field, empty string means a
// null (absent) slot, except FieldABI/FieldTMF which are always present.
type Vector [wire.NumFields]string

// Present reports whether slot f carries a value.
func (v Vector) Present(f wire.Field) bool {
	return v[f] != ""
}

func formatExitCode(ec record.ExitCode) string {
	if !ec.Set || (ec.Signal == 0 && ec.Code == 0) {
		return ""
	}
	return fmt.Sprintf("%d:%d", ec.Signal, ec.Code)
}

func parseExitCode(s string) record.ExitCode {
	if s == "" {
		return record.ExitCode{}
	}
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return record.ExitCode{}
	}
	sig, _ := strconv.ParseInt(parts[0], 10, 32)
	code, _ := strconv.ParseInt(parts[1], 10, 32)
	return record.ExitCode{Code: int32(code), Signal: int32(sig), Set: true}
}

// Encode projects j into the canonical slot vector under tmf. now is the
// wall-clock time substituted for End while a job is actively resizing.
func Encode(tmf wire.TimeFormat, j record.Job, resolver *IdentityResolver, now time.Time) (Vector, error) {
	var v Vector

	v[wire.FieldABI] = strconv.Itoa(wire.DefaultABI)
	v[wire.FieldTMF] = strconv.Itoa(int(tmf))

	if j.JobID <= 0 {
		return v, jcerrors.NewEncoding(nil, "JobID must be a positive integer, got %d", j.JobID)
	}
	v[wire.FieldJobID] = strconv.FormatInt(j.JobID, 10)

	start := j.Start
	end := j.End
	state := j.State
	if j.Resizing {
		state = record.JobStateResizing
		if !j.ResizeTime.IsZero() {
			start = j.ResizeTime
		}
		end = now
	} else {
		if !j.ResizeTime.IsZero() {
			start = j.ResizeTime
		} else if start.After(end) {
			start = time.Unix(0, 0).UTC()
		}
	}
	v[wire.FieldStart] = FormatTime(tmf, start)
	v[wire.FieldEnd] = FormatTime(tmf, end)
	v[wire.FieldElapsed] = strconv.FormatInt(int64(end.Sub(start).Seconds()), 10)
	v[wire.FieldState] = string(state)

	v[wire.FieldUID] = strconv.FormatInt(j.UID, 10)
	v[wire.FieldGID] = strconv.FormatInt(j.GID, 10)
	v[wire.FieldNNodes] = strconv.FormatInt(j.NNodes, 10)
	v[wire.FieldNCPUs] = strconv.FormatInt(j.NCPUs, 10)

	user := j.User
	if user == "" && resolver != nil {
		user = resolver.ResolveUser(j.UID)
	}
	v[wire.FieldUser] = user

	group := j.Group
	if group == "" && resolver != nil {
		group = resolver.ResolveGroup(j.GID)
	}
	v[wire.FieldGroup] = group

	v[wire.FieldPartition] = j.Partition
	v[wire.FieldNodeList] = j.NodeList

	jobName := j.JobName
	if jobName == "" {
		jobName = wire.JobNameDefault
	}
	v[wire.FieldJobName] = jobName

	switch {
	case j.TimeLimit.Unlimited:
		v[wire.FieldTimeLimit] = wire.TimeLimitUnlimitedLiteral
	case j.TimeLimit.PartitionLy:
		v[wire.FieldTimeLimit] = wire.TimeLimitPartitionLiteral
	default:
		v[wire.FieldTimeLimit] = strconv.FormatInt(j.TimeLimit.Minutes, 10)
	}

	v[wire.FieldWorkDir] = j.WorkDir
	v[wire.FieldReservation] = j.Reservation
	v[wire.FieldReqGRES] = j.ReqGRES
	v[wire.FieldAccount] = j.Account
	v[wire.FieldQOS] = j.QOS
	v[wire.FieldWCKey] = j.WCKey
	v[wire.FieldCluster] = j.Cluster

	if j.Submit != nil {
		v[wire.FieldSubmit] = FormatTime(tmf, *j.Submit)
	}
	if j.Eligible != nil {
		v[wire.FieldEligible] = FormatTime(tmf, *j.Eligible)
	}

	v[wire.FieldDerivedExitCode] = formatExitCode(j.DerivedExitCode)
	v[wire.FieldExitCode] = formatExitCode(j.ExitCode)

	return v, nil
}

// Decode reconstructs a Job from the slot vector. Missing DerivedExitCode
// / ExitCode decodes to the zero record.ExitCode (0:0, Set false);
// missing TimeLimit literal decodes to zero minutes.
func Decode(v Vector) (record.Job, error) {
	abi, err := strconv.Atoi(v[wire.FieldABI])
	if err != nil {
		return record.Job{}, jcerrors.NewDecoding(err, "malformed _abi slot %q", v[wire.FieldABI])
	}
	if abi != wire.DefaultABI {
		return record.Job{}, jcerrors.NewABIMismatch(abi, wire.DefaultABI)
	}

	tmfInt, err := strconv.Atoi(v[wire.FieldTMF])
	if err != nil {
		return record.Job{}, jcerrors.NewDecoding(err, "malformed _tmf slot %q", v[wire.FieldTMF])
	}
	tmf := wire.TimeFormat(tmfInt)

	jobID, err := strconv.ParseInt(v[wire.FieldJobID], 10, 64)
	if err != nil {
		return record.Job{}, jcerrors.NewDecoding(err, "malformed JobID slot %q", v[wire.FieldJobID])
	}

	start, err := ParseTime(tmf, v[wire.FieldStart])
	if err != nil {
		return record.Job{}, jcerrors.NewDecoding(err, "malformed Start slot")
	}
	end, err := ParseTime(tmf, v[wire.FieldEnd])
	if err != nil {
		return record.Job{}, jcerrors.NewDecoding(err, "malformed End slot")
	}

	uid, err := parseOptionalInt(v[wire.FieldUID])
	if err != nil {
		return record.Job{}, jcerrors.NewDecoding(err, "malformed UID slot")
	}
	gid, err := parseOptionalInt(v[wire.FieldGID])
	if err != nil {
		return record.Job{}, jcerrors.NewDecoding(err, "malformed GID slot")
	}
	nnodes, err := parseOptionalInt(v[wire.FieldNNodes])
	if err != nil {
		return record.Job{}, jcerrors.NewDecoding(err, "malformed NNodes slot")
	}
	ncpus, err := parseOptionalInt(v[wire.FieldNCPUs])
	if err != nil {
		return record.Job{}, jcerrors.NewDecoding(err, "malformed NCPUs slot")
	}

	j := record.Job{
		JobID:     jobID,
		Start:     start,
		End:       end,
		UID:       uid,
		User:      v[wire.FieldUser],
		GID:       gid,
		Group:     v[wire.FieldGroup],
		NNodes:    nnodes,
		NCPUs:     ncpus,
		Partition: v[wire.FieldPartition],
		NodeList:  v[wire.FieldNodeList],
		JobName:   v[wire.FieldJobName],
		State:     record.JobState(v[wire.FieldState]),

		WorkDir:     v[wire.FieldWorkDir],
		Reservation: v[wire.FieldReservation],
		ReqGRES:     v[wire.FieldReqGRES],
		Account:     v[wire.FieldAccount],
		QOS:         v[wire.FieldQOS],
		WCKey:       v[wire.FieldWCKey],
		Cluster:     v[wire.FieldCluster],

		DerivedExitCode: parseExitCode(v[wire.FieldDerivedExitCode]),
		ExitCode:        parseExitCode(v[wire.FieldExitCode]),
	}

	switch v[wire.FieldTimeLimit] {
	case wire.TimeLimitUnlimitedLiteral:
		j.TimeLimit = record.TimeLimit{Unlimited: true}
	case wire.TimeLimitPartitionLiteral:
		j.TimeLimit = record.TimeLimit{PartitionLy: true}
	default:
		minutes, _ := strconv.ParseInt(v[wire.FieldTimeLimit], 10, 64)
		j.TimeLimit = record.TimeLimit{Minutes: minutes}
	}

	if v[wire.FieldSubmit] != "" {
		t, err := ParseTime(tmf, v[wire.FieldSubmit])
		if err != nil {
			return record.Job{}, jcerrors.NewDecoding(err, "malformed Submit slot")
		}
		j.Submit = &t
	}
	if v[wire.FieldEligible] != "" {
		t, err := ParseTime(tmf, v[wire.FieldEligible])
		if err != nil {
			return record.Job{}, jcerrors.NewDecoding(err, "malformed Eligible slot")
		}
		j.Eligible = &t
	}

	return j, nil
}

func parseOptionalInt(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseInt(s, 10, 64)
}
