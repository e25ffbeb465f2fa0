package cli

// This file defines error handling utilities for the CLI, including:
//   - Sentinel errors for the CLI's own failures
//   - Error wrapping functions that integrate with the errx error system
//   - Structured error logging with context
//   - Debug mode management for error output

import (
	"errors"
	"sync"

	"go.uber.org/zap"

	"pgbridge/pkg/errx"
)

var (
	debugMode   bool
	debugModeMu sync.RWMutex
)

// SetDebugMode sets the global debug mode flag.
// When enabled, logStructuredError will output structured error logs to terminal.
func SetDebugMode(enabled bool) {
	debugModeMu.Lock()
	defer debugModeMu.Unlock()
	debugMode = enabled
}

// IsDebugMode returns whether debug mode is enabled.
func IsDebugMode() bool {
	debugModeMu.RLock()
	defer debugModeMu.RUnlock()
	return debugMode
}

type errorSpec struct {
	code        string
	description string
}

// newSentinelError creates a sentinel error and registers it in errorSpecs in one step.
func newSentinelError(msg string, code, description string) error {
	err := errors.New(msg)
	errorSpecs[err] = errorSpec{code: code, description: description}
	return err
}

// errorSpecs maps sentinel errors to their error codes and descriptions.
// Populated by newSentinelError() during variable initialization, so it must be
// declared before the sentinels.
var errorSpecs = make(map[error]errorSpec)

// lookupSpec provides a lookup function for errx.FromSentinel.
func lookupSpec(sentinel error) (code, description string) {
	spec := specFor(sentinel)
	return spec.code, spec.description
}

// newWithSentinel creates a new error in the sentinel's category.
func newWithSentinel(base error, msg string) error {
	if base == nil {
		return errx.CreateByCode(errx.CodeScenario, errx.DescScenario, msg, nil)
	}
	return errx.FromSentinel(base, lookupSpec, msg, nil)
}

// wrapWithSentinel wraps a cause in the sentinel's category.
func wrapWithSentinel(base, cause error, msg string) error {
	if base == nil {
		return errx.CreateByCode(errx.CodeScenario, errx.DescScenario, msg, cause)
	}
	return errx.FromSentinel(base, lookupSpec, msg, cause)
}

// wrapWithSentinelAndContext wraps an error with additional structured context,
// such as the file being processed.
func wrapWithSentinelAndContext(base, cause error, msg string, context map[string]any) error {
	err := wrapWithSentinel(base, cause, msg)
	if errxErr, ok := err.(*errx.Error); ok && len(context) > 0 {
		return errxErr.WithContextMap(context)
	}
	return err
}

// Sentinel errors for CLI operations.
var (
	// Input errors.
	ErrInvalidSQLStateArg = newSentinelError("invalid sqlstate argument", errx.CodeFormat, errx.DescFormat)
	ErrInvalidPackedValue = newSentinelError("invalid packed sqlstate value", errx.CodeFormat, errx.DescFormat)
	ErrUnknownOutput      = newSentinelError("unknown output format", errx.CodeUsage, errx.DescUsage)

	// Config errors.
	ErrLoadConfigFailed = newSentinelError("failed to load config", errx.CodeConfig, errx.DescConfig)
	ErrInvalidConfig    = newSentinelError("invalid configuration", errx.CodeConfig, errx.DescConfig)
	ErrInvalidLevelFlag = newSentinelError("invalid severity level", errx.CodeConfig, errx.DescConfig)

	// Scenario errors.
	ErrLoadScenarioFailed  = newSentinelError("failed to load scenario", errx.CodeScenario, errx.DescScenario)
	ErrSimulateFailed      = newSentinelError("simulation failed", errx.CodeScenario, errx.DescScenario)
	ErrRenderResultsFailed = newSentinelError("failed to render results", errx.CodeScenario, errx.DescScenario)
)

func specFor(base error) errorSpec {
	spec, ok := errorSpecs[base]
	if ok {
		return spec
	}
	return errorSpec{code: errx.CodeScenario, description: errx.DescScenario}
}

// logStructuredError logs an error with structured fields to terminal.
// Only logs when debug mode is enabled (via --debug flag).
//
// This extracts all context from errx.Error and logs it with structured fields:
// - error.code: "F0000"
// - error.category: "Configuration error"
// - error.context.path: "bridge.yaml"
func logStructuredError(logger *zap.Logger, err error, msg string) {
	if logger == nil || err == nil || !IsDebugMode() {
		return
	}

	var errxErr *errx.Error
	if errors.As(err, &errxErr) {
		fields := []zap.Field{
			zap.String("error.code", errxErr.Code()),
			zap.String("error.category", errxErr.Description()),
			zap.String("error.message", errxErr.Message()),
			zap.Error(err),
		}

		for key, value := range errxErr.Context() {
			fields = append(fields, zap.Any("error.context."+key, value))
		}

		// Distinct field name so the cause does not clash with "error".
		if cause := errxErr.Cause(); cause != nil {
			fields = append(fields, zap.NamedError("error.cause", cause))
		}

		logger.Error(msg, fields...)
	} else {
		logger.Error(msg, zap.Error(err))
	}
}
