package elog

// This file defines the bridge's error taxonomy:
//   - Sentinel errors registered with their errx category
//   - Constructors that attach the category to a message and context
//   - Structured logging of errx errors through logr

import (
	"errors"

	"github.com/go-logr/logr"

	"pgbridge/pkg/errx"
)

type errorSpec struct {
	code        string
	description string
}

// errorSpecs maps sentinel errors to their codes. Populated by newSentinelError
// during variable initialization.
var errorSpecs = make(map[error]errorSpec)

func newSentinelError(msg string, code, description string) error {
	err := errors.New(msg)
	errorSpecs[err] = errorSpec{code: code, description: description}
	return err
}

var (
	// ErrFormat marks a report field that cannot be encoded for the engine.
	ErrFormat = newSentinelError("field cannot be encoded", errx.CodeFormat, errx.DescFormat)

	// ErrRaisedHere marks a diversion originated by a report in this frame.
	ErrRaisedHere = newSentinelError("error raised", errx.CodeRaised, errx.DescRaised)
	// ErrRelayed marks a diversion that fired below this frame and is only forwarded.
	ErrRelayed = newSentinelError("error relayed", errx.CodeRelayed, errx.DescRelayed)

	// ErrUsage marks misuse of the report protocol.
	ErrUsage           = newSentinelError("report protocol misuse", errx.CodeUsage, errx.DescUsage)
	ErrReportOpen      = newSentinelError("a report is already open", errx.CodeUsage, errx.DescUsage)
	ErrFieldAttached   = newSentinelError("field already attached", errx.CodeUsage, errx.DescUsage)
	ErrReportFinished  = newSentinelError("report already finished", errx.CodeUsage, errx.DescUsage)
	ErrInvalidSQLState = newSentinelError("invalid sqlstate", errx.CodeFormat, errx.DescFormat)

	// ErrStackCorruption marks a guard exit without a matching entry. It is
	// handed to the abort hook and never returned.
	ErrStackCorruption = newSentinelError("exception stack corrupted", errx.CodeStackCorruption, errx.DescStackCorruption)

	ErrUnknownLevel    = newSentinelError("unknown severity level", errx.CodeConfig, errx.DescConfig)
	ErrUnknownEncoding = newSentinelError("unknown server encoding", errx.CodeConfig, errx.DescConfig)
)

func specFor(base error) errorSpec {
	if spec, ok := errorSpecs[base]; ok {
		return spec
	}
	return errorSpec{code: errx.CodeStackCorruption, description: errx.DescStackCorruption}
}

func lookupSpec(sentinel error) (code, description string) {
	spec := specFor(sentinel)
	return spec.code, spec.description
}

func newWithSentinel(base error, msg string) *errx.Error {
	return errx.FromSentinel(base, lookupSpec, msg, nil)
}

func wrapWithSentinel(base, cause error, msg string) *errx.Error {
	return errx.FromSentinel(base, lookupSpec, msg, cause)
}

// usageError tags misuse errors with both the specific sentinel and ErrUsage.
func usageError(base error, msg string) *errx.Error {
	return errx.FromSentinel(base, lookupSpec, msg, ErrUsage)
}

// logBridgeError logs err with its errx fields flattened into key/value pairs:
//   - error.code: "22021"
//   - error.category: "Format error"
//   - error.message: "detail contains a NUL byte"
//   - error.context.<key>: per-error context
func logBridgeError(logger logr.Logger, err error, msg string) {
	if err == nil {
		return
	}

	var errxErr *errx.Error
	if !errors.As(err, &errxErr) {
		logger.Error(err, msg)
		return
	}

	keysAndValues := []interface{}{
		"error.code", errxErr.Code(),
		"error.category", errxErr.Description(),
		"error.message", errxErr.Message(),
	}
	for key, value := range errxErr.Context() {
		keysAndValues = append(keysAndValues, "error.context."+key, value)
	}
	if cause := errxErr.Cause(); cause != nil {
		keysAndValues = append(keysAndValues, "error.cause", cause.Error())
	}
	logger.Error(err, msg, keysAndValues...)
}
