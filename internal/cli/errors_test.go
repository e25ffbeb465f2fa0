package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"pgbridge/pkg/errx"
)

func TestDebugMode(t *testing.T) {
	t.Cleanup(func() { SetDebugMode(false) })
	SetDebugMode(true)
	assert.True(t, IsDebugMode())
	SetDebugMode(false)
	assert.False(t, IsDebugMode())
}

func TestSentinelCategories(t *testing.T) {
	tests := []struct {
		base error
		code string
	}{
		{ErrInvalidSQLStateArg, errx.CodeFormat},
		{ErrUnknownOutput, errx.CodeUsage},
		{ErrLoadConfigFailed, errx.CodeConfig},
		{ErrSimulateFailed, errx.CodeScenario},
		{errors.New("unregistered"), errx.CodeScenario},
	}
	for _, tt := range tests {
		t.Run(tt.base.Error(), func(t *testing.T) {
			err := newWithSentinel(tt.base, "msg")
			assert.Equal(t, tt.code, errx.CodeOf(err))
			assert.ErrorIs(t, err, tt.base)
		})
	}
	assert.Equal(t, errx.CodeScenario, errx.CodeOf(newWithSentinel(nil, "msg")))
}

func TestWrapWithSentinelAndContext(t *testing.T) {
	cause := errors.New("disk on fire")
	err := wrapWithSentinelAndContext(ErrLoadScenarioFailed, cause, "load", map[string]any{"path": "a.yaml"})

	var xerr *errx.Error
	require.ErrorAs(t, err, &xerr)
	assert.Equal(t, "a.yaml", xerr.Context()["path"])
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrLoadScenarioFailed)
}

func TestLogStructuredError(t *testing.T) {
	t.Cleanup(func() { SetDebugMode(false) })
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)

	err := wrapWithSentinelAndContext(ErrInvalidConfig, errors.New("bad level"), "invalid", map[string]any{"path": "x.toml"})

	SetDebugMode(false)
	logStructuredError(logger, err, "quiet")
	assert.Equal(t, 0, logs.Len(), "nothing is logged outside debug mode")

	SetDebugMode(true)
	logStructuredError(logger, err, "loud")
	logStructuredError(logger, errors.New("plain"), "plain")
	logStructuredError(nil, err, "no logger")

	entries := logs.All()
	require.Len(t, entries, 2)
	fields := entries[0].ContextMap()
	assert.Equal(t, errx.CodeConfig, fields["error.code"])
	assert.Equal(t, "x.toml", fields["error.context.path"])
	assert.Equal(t, "bad level", fields["error.cause"])
	assert.Equal(t, "plain", entries[1].Message)
}
