// Package wire defines the wire-visible contract shared by the store-side
// verb implementations and the controller-side client: the slot catalogue,
// key builders, and the small set of integer/string constants that both
// sides must agree on bit-for-bit. Nothing else is shared between them.
package wire

// Field is an ordinal position in the fixed slot catalogue. Field values
// are stable across releases; adding a slot is a major-version change.
type Field int

// The slot catalogue, in wire order. Do not reorder or insert — the
// ordinal position is part of the contract, not just the label.
const (
	FieldABI Field = iota
	FieldTMF
	FieldJobID
	FieldPartition
	FieldStart
	FieldEnd
	FieldElapsed
	FieldUID
	FieldUser
	FieldGID
	FieldGroup
	FieldNNodes
	FieldNCPUs
	FieldNodeList
	FieldJobName
	FieldState
	FieldTimeLimit
	FieldWorkDir
	FieldReservation
	FieldReqGRES
	FieldAccount
	FieldQOS
	FieldWCKey
	FieldCluster
	FieldSubmit
	FieldEligible
	FieldDerivedExitCode
	FieldExitCode

	// NumFields is the authoritative slot count. A deployment whose
	// stored hash carries a different number of recognized slots is on
	// a different ABI and must be refused, not silently upgraded.
	NumFields
)

// FieldNames holds the wire-visible hash field label for each Field, in
// ordinal order. Ordinal position is part of the contract.
var FieldNames = [NumFields]string{
	FieldABI:             "_abi",
	FieldTMF:             "_tmf",
	FieldJobID:           "JobID",
	FieldPartition:       "Partition",
	FieldStart:           "Start",
	FieldEnd:             "End",
	FieldElapsed:         "Elapsed",
	FieldUID:             "UID",
	FieldUser:            "User",
	FieldGID:             "GID",
	FieldGroup:           "Group",
	FieldNNodes:          "NNodes",
	FieldNCPUs:           "NCPUs",
	FieldNodeList:        "NodeList",
	FieldJobName:         "JobName",
	FieldState:           "State",
	FieldTimeLimit:       "TimeLimit",
	FieldWorkDir:         "WorkDir",
	FieldReservation:     "Reservation",
	FieldReqGRES:         "ReqGRES",
	FieldAccount:         "Account",
	FieldQOS:             "QOS",
	FieldWCKey:           "WCKey",
	FieldCluster:         "Cluster",
	FieldSubmit:          "Submit",
	FieldEligible:        "Eligible",
	FieldDerivedExitCode: "DerivedExitCode",
	FieldExitCode:        "ExitCode",
}

// String returns the wire label for f, or "" if f is out of range.
func (f Field) String() string {
	if f < 0 || int(f) >= len(FieldNames) {
		return ""
	}
	return FieldNames[f]
}

// Criteria scalar field names stored in P:qry:<uuid>. Start/End/NNodes
// share the job record's own labels; the node-count bounds use the full
// NNodesMin/NNodesMax form (never the truncated NNodesMi/NNodesMa variant
// a prior iteration of the source carried).
const (
	CriteriaFieldABI       = "_abi"
	CriteriaFieldTMF       = "_tmf"
	CriteriaFieldStart     = "Start"
	CriteriaFieldEnd       = "End"
	CriteriaFieldNNodesMin = "NNodesMin"
	CriteriaFieldNNodesMax = "NNodesMax"
)

// Criteria set-key suffixes, one per optional discriminator dimension.
const (
	SetSuffixGID        = "gid"
	SetSuffixJob        = "job"
	SetSuffixJobName    = "jnm"
	SetSuffixPartition  = "prt"
	SetSuffixState      = "stt"
	SetSuffixUID        = "uid"
)

// SetSuffixes enumerates all six optional criteria set dimensions in the
// order Prepare() reads them.
var SetSuffixes = [...]string{
	SetSuffixGID,
	SetSuffixJob,
	SetSuffixJobName,
	SetSuffixPartition,
	SetSuffixState,
	SetSuffixUID,
}

// TimeFormat is the tmf wire flag.
type TimeFormat int

const (
	// TimeFormatEpoch renders times as signed decimal seconds since the epoch.
	TimeFormatEpoch TimeFormat = 0
	// TimeFormatISO8601 renders times as YYYY-MM-DDTHH:MM:SSZ, UTC only.
	TimeFormatISO8601 TimeFormat = 1
)

// ISO8601Layout is the Go time layout matching the wire's 20-byte literal.
const ISO8601Layout = "2006-01-02T15:04:05Z"

// ISO8601Len is the literal's printable length (20 bytes, no terminator
// counted since Go strings aren't NUL-terminated).
const ISO8601Len = 20

// TimeLimit literal encodings.
const (
	TimeLimitUnlimitedLiteral = "I"
	TimeLimitPartitionLiteral = "P"
	TimeLimitUnlimitedLabel   = "INFINITE"
	TimeLimitPartitionLabel   = "Partition_Limit"
)

// JobNameDefault is substituted for an empty JobName on encode.
const JobNameDefault = "allocation"

// ZeroExitCode is the "signal:code" value an absent DerivedExitCode/ExitCode
// slot stands for; pkg/codec decodes such a slot to a zero record.ExitCode
// rather than to this literal.
const ZeroExitCode = "0:0"

// SecondsPerDay is the UTC day-bucket divisor.
const SecondsPerDay = 86400

// DefaultABI is the slot catalogue version stamped on every record and
// criteria hash this module writes.
const DefaultABI = 28
