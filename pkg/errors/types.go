// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

// Package errors defines the typed error hierarchy raised by the field
// codec, the store-side verbs, and the controller-side client.
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

func stderrorsAs(err error, target interface{}) bool {
	return stderrors.As(err, target)
}

// ErrorCode identifies a specific failure kind, one per row of the error
// handling table.
type ErrorCode string

const (
	// ErrorCodeWrongType: a store key exists but is not the type a verb
	// expects (e.g. a match key that isn't a sorted set).
	ErrorCodeWrongType ErrorCode = "WRONG_TYPE"
	// ErrorCodeMissingField: a required hash field is absent.
	ErrorCodeMissingField ErrorCode = "MISSING_FIELD"
	// ErrorCodeBadTime: a time literal fails to parse under the
	// record's stamped time-format flag.
	ErrorCodeBadTime ErrorCode = "BAD_TIME"
	// ErrorCodeEncoding: a record cannot be projected into the slot
	// catalogue.
	ErrorCodeEncoding ErrorCode = "ENCODING"
	// ErrorCodeDecoding: a slot vector cannot be reconstructed into a
	// record.
	ErrorCodeDecoding ErrorCode = "DECODING"
	// ErrorCodeTransient: the store connection failed; the client
	// reconnects lazily on the next call.
	ErrorCodeTransient ErrorCode = "TRANSIENT"
	// ErrorCodeArity: a verb was invoked with the wrong argument count.
	ErrorCodeArity ErrorCode = "ARITY"
	// ErrorCodeABIMismatch: a stored record's _abi stamp does not match
	// the catalogue version this module understands.
	ErrorCodeABIMismatch ErrorCode = "ABI_MISMATCH"
	ErrorCodeUnknown     ErrorCode = "UNKNOWN"
)

// ErrorCategory groups codes for coarse-grained handling (retry policy,
// log level).
type ErrorCategory string

const (
	CategoryStore     ErrorCategory = "STORE"
	CategoryCodec     ErrorCategory = "CODEC"
	CategoryTransport ErrorCategory = "TRANSPORT"
	CategoryProtocol  ErrorCategory = "PROTOCOL"
	CategoryUnknown   ErrorCategory = "UNKNOWN"
)

// JobCompError is the base structured error returned by every package in
// this module.
type JobCompError struct {
	Code      ErrorCode              `json:"code"`
	Category  ErrorCategory          `json:"category"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Retryable bool                   `json:"retryable"`
	Cause     error                  `json:"-"`
}

// Error implements the error interface.
func (e *JobCompError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap lets errors.Is/errors.As see through to the cause.
func (e *JobCompError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a JobCompError with the same code.
func (e *JobCompError) Is(target error) bool {
	t, ok := target.(*JobCompError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// IsRetryable reports whether the operation that produced e may succeed
// on retry.
func (e *JobCompError) IsRetryable() bool {
	return e.Retryable
}

func newError(code ErrorCode, category ErrorCategory, retryable bool, format string, args ...interface{}) *JobCompError {
	return &JobCompError{
		Code:      code,
		Category:  category,
		Message:   fmt.Sprintf(format, args...),
		Timestamp: time.Now(),
		Retryable: retryable,
	}
}

// NewWrongType builds an ErrorCodeWrongType error.
func NewWrongType(format string, args ...interface{}) *JobCompError {
	return newError(ErrorCodeWrongType, CategoryStore, false, format, args...)
}

// NewMissingField builds an ErrorCodeMissingField error.
func NewMissingField(field string) *JobCompError {
	err := newError(ErrorCodeMissingField, CategoryStore, false, "required field %q is missing", field)
	err.Details = map[string]interface{}{"field": field}
	return err
}

// NewBadTime builds an ErrorCodeBadTime error wrapping the parse cause.
func NewBadTime(literal string, cause error) *JobCompError {
	err := newError(ErrorCodeBadTime, CategoryCodec, false, "malformed time literal %q", literal)
	err.Cause = cause
	err.Details = map[string]interface{}{"literal": literal}
	return err
}

// NewEncoding builds an ErrorCodeEncoding error.
func NewEncoding(cause error, format string, args ...interface{}) *JobCompError {
	err := newError(ErrorCodeEncoding, CategoryCodec, false, format, args...)
	err.Cause = cause
	return err
}

// NewDecoding builds an ErrorCodeDecoding error.
func NewDecoding(cause error, format string, args ...interface{}) *JobCompError {
	err := newError(ErrorCodeDecoding, CategoryCodec, false, format, args...)
	err.Cause = cause
	return err
}

// NewTransient builds an ErrorCodeTransient error wrapping a connection
// failure.
func NewTransient(cause error) *JobCompError {
	err := newError(ErrorCodeTransient, CategoryTransport, true, "store connection failure")
	err.Cause = cause
	return err
}

// NewArity builds an ErrorCodeArity error for a verb invoked with the
// wrong argument count.
func NewArity(verb string, got, want int) *JobCompError {
	err := newError(ErrorCodeArity, CategoryProtocol, false, "%s: wrong number of arguments (got %d, want %d)", verb, got, want)
	err.Details = map[string]interface{}{"verb": verb, "got": got, "want": want}
	return err
}

// NewABIMismatch builds an ErrorCodeABIMismatch error; it wraps the intent
// of ErrorCodeWrongType for a stored record written under a different
// slot catalogue version.
func NewABIMismatch(got, want int) *JobCompError {
	err := newError(ErrorCodeABIMismatch, CategoryStore, false, "stored record ABI %d does not match catalogue version %d", got, want)
	err.Details = map[string]interface{}{"got": got, "want": want}
	err.Cause = NewWrongType("stored record ABI %d does not match catalogue version %d", got, want)
	return err
}

// IsRetryable reports whether err indicates a retryable condition.
func IsRetryable(err error) bool {
	var jerr *JobCompError
	if stderrorsAs(err, &jerr) {
		return jerr.Retryable
	}
	return false
}

// Code extracts the ErrorCode from err, or ErrorCodeUnknown if err is not
// a *JobCompError.
func Code(err error) ErrorCode {
	var jerr *JobCompError
	if stderrorsAs(err, &jerr) {
		return jerr.Code
	}
	return ErrorCodeUnknown
}
