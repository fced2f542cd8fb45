package wire

import "strconv"

// DefaultPrefix is used when no location is configured.
const DefaultPrefix = "job"

// Prefix returns the effective key namespace prefix for a location: "job"
// when location is empty, "<location>:job" otherwise.
func Prefix(location string) string {
	if location == "" {
		return DefaultPrefix
	}
	return location + ":" + DefaultPrefix
}

// JobKey returns the P:<jobid> key for a job record hash.
func JobKey(prefix string, jobid int64) string {
	return prefix + ":" + strconv.FormatInt(jobid, 10)
}

// IndexKey returns the P:idx:end:<day> key for a day bucket.
func IndexKey(prefix string, day int64) string {
	return prefix + ":idx:end:" + strconv.FormatInt(day, 10)
}

// QueryKey returns the P:qry:<uuid> key for a criteria scalar hash.
func QueryKey(prefix, uuid string) string {
	return prefix + ":qry:" + uuid
}

// QuerySetKey returns the P:qry:<uuid>:<suffix> key for an optional
// criteria set (suffix is one of SetSuffixGID, SetSuffixJob, ...).
func QuerySetKey(prefix, uuid, suffix string) string {
	return prefix + ":qry:" + uuid + ":" + suffix
}

// MatchKey returns the P:mat:<uuid> key for a match sorted set.
func MatchKey(prefix, uuid string) string {
	return prefix + ":mat:" + uuid
}

// Day returns the UTC day bucket index for t, seconds since the epoch.
func Day(t int64) int64 {
	if t >= 0 {
		return t / SecondsPerDay
	}
	// floor division for negative t (pre-1970 End values are not expected
	// in practice, but floor must hold regardless of sign).
	q := t / SecondsPerDay
	if t%SecondsPerDay != 0 {
		q--
	}
	return q
}
