package codec

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jontk/slurm-redis-jobcomp/internal/wire"
	jcerrors "github.com/jontk/slurm-redis-jobcomp/pkg/errors"
	"github.com/jontk/slurm-redis-jobcomp/pkg/record"
)

func sampleJob() record.Job {
	return record.Job{
		JobID:     1001,
		Partition: "batch",
		Start:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		End:       time.Date(2026, 1, 1, 1, 0, 0, 0, time.UTC),
		UID:       1000,
		User:      "alice",
		GID:       1000,
		Group:     "alice",
		NNodes:    2,
		NCPUs:     16,
		NodeList:  "node[01-02]",
		JobName:   "my-job",
		State:     record.JobStateCompleted,
		TimeLimit: record.TimeLimit{Minutes: 60},
		WorkDir:   "/home/alice",
		Account:   "physics",
	}
}

func TestEncodeDecodeRoundTripEpoch(t *testing.T) {
	j := sampleJob()
	v, err := Encode(wire.TimeFormatEpoch, j, nil, time.Now())
	require.NoError(t, err)

	assert.Equal(t, "28", v[wire.FieldABI])
	assert.Equal(t, "0", v[wire.FieldTMF])
	assert.Equal(t, "1001", v[wire.FieldJobID])

	got, err := Decode(v)
	require.NoError(t, err)
	assert.Equal(t, j.JobID, got.JobID)
	assert.True(t, j.Start.Equal(got.Start))
	assert.True(t, j.End.Equal(got.End))
	assert.Equal(t, j.TimeLimit, got.TimeLimit)
	assert.Equal(t, j.State, got.State)
}

func TestEncodeDecodeRoundTripISO8601(t *testing.T) {
	j := sampleJob()
	v, err := Encode(wire.TimeFormatISO8601, j, nil, time.Now())
	require.NoError(t, err)

	assert.Equal(t, "1", v[wire.FieldTMF])
	assert.Len(t, v[wire.FieldStart], wire.ISO8601Len)
	assert.Equal(t, byte('Z'), v[wire.FieldStart][wire.ISO8601Len-1])

	got, err := Decode(v)
	require.NoError(t, err)
	assert.True(t, j.Start.Equal(got.Start))
	assert.True(t, j.End.Equal(got.End))
}

func TestEncodeRejectsNonPositiveJobID(t *testing.T) {
	j := sampleJob()
	j.JobID = 0
	_, err := Encode(wire.TimeFormatEpoch, j, nil, time.Now())
	require.Error(t, err)
}

func TestEncodeTimeLimitLiterals(t *testing.T) {
	j := sampleJob()
	j.TimeLimit = record.TimeLimit{Unlimited: true}
	v, err := Encode(wire.TimeFormatEpoch, j, nil, time.Now())
	require.NoError(t, err)
	assert.Equal(t, wire.TimeLimitUnlimitedLiteral, v[wire.FieldTimeLimit])

	j.TimeLimit = record.TimeLimit{PartitionLy: true}
	v, err = Encode(wire.TimeFormatEpoch, j, nil, time.Now())
	require.NoError(t, err)
	assert.Equal(t, wire.TimeLimitPartitionLiteral, v[wire.FieldTimeLimit])

	got, err := Decode(v)
	require.NoError(t, err)
	assert.True(t, got.TimeLimit.PartitionLy)
}

func TestEncodeResizingUsesWallClockEnd(t *testing.T) {
	j := sampleJob()
	resizeTime := time.Date(2026, 1, 1, 0, 30, 0, 0, time.UTC)
	j.Resizing = true
	j.ResizeTime = resizeTime
	now := time.Date(2026, 1, 1, 0, 45, 0, 0, time.UTC)

	v, err := Encode(wire.TimeFormatEpoch, j, nil, now)
	require.NoError(t, err)
	assert.Equal(t, string(record.JobStateResizing), v[wire.FieldState])
	assert.Equal(t, FormatTime(wire.TimeFormatEpoch, resizeTime), v[wire.FieldStart])
	assert.Equal(t, FormatTime(wire.TimeFormatEpoch, now), v[wire.FieldEnd])
}

func TestEncodeStartClampedWhenAfterEndAndNotResizing(t *testing.T) {
	j := sampleJob()
	j.Start = time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	j.End = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	v, err := Encode(wire.TimeFormatEpoch, j, nil, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "0", v[wire.FieldStart])
}

func TestExitCodeOmittedWhenZero(t *testing.T) {
	j := sampleJob()
	v, err := Encode(wire.TimeFormatEpoch, j, nil, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "", v[wire.FieldExitCode])

	got, err := Decode(v)
	require.NoError(t, err)
	assert.Equal(t, record.ExitCode{}, got.ExitCode)
}

func TestExitCodeRoundTripsWhenNonZero(t *testing.T) {
	j := sampleJob()
	j.ExitCode = record.ExitCode{Code: 1, Signal: 9, Set: true}
	v, err := Encode(wire.TimeFormatEpoch, j, nil, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "9:1", v[wire.FieldExitCode])

	got, err := Decode(v)
	require.NoError(t, err)
	assert.Equal(t, int32(1), got.ExitCode.Code)
	assert.Equal(t, int32(9), got.ExitCode.Signal)
}

func TestJobNameDefaultsWhenEmpty(t *testing.T) {
	j := sampleJob()
	j.JobName = ""
	v, err := Encode(wire.TimeFormatEpoch, j, nil, time.Now())
	require.NoError(t, err)
	assert.Equal(t, wire.JobNameDefault, v[wire.FieldJobName])
}

func TestDecodeRejectsMalformedTMF(t *testing.T) {
	var v Vector
	v[wire.FieldABI] = strconv.Itoa(wire.DefaultABI)
	v[wire.FieldTMF] = "not-a-number"
	_, err := Decode(v)
	require.Error(t, err)
}

func TestDecodeRejectsABIMismatch(t *testing.T) {
	j := sampleJob()
	v, err := Encode(wire.TimeFormatEpoch, j, nil, time.Now())
	require.NoError(t, err)
	v[wire.FieldABI] = "27"
	_, err = Decode(v)
	require.Error(t, err)
	require.Equal(t, jcerrors.ErrorCodeABIMismatch, jcerrors.Code(err))
}

func TestFormatTimeSortsLexicographicallyUnderISO8601(t *testing.T) {
	earlier := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	later := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	a := FormatTime(wire.TimeFormatISO8601, earlier)
	b := FormatTime(wire.TimeFormatISO8601, later)
	assert.Less(t, a, b)
}

func TestIdentityResolverNotConsultedWhenUserSet(t *testing.T) {
	r := NewIdentityResolver(8, time.Minute)
	j := sampleJob()
	j.User = "prefilled"
	v, err := Encode(wire.TimeFormatEpoch, j, r, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "prefilled", v[wire.FieldUser])
}
