package elog_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pgbridge/internal/elog"
	"pgbridge/internal/nativesim"
)

func TestBoundary_RaisedErrorCrossesNestedGuards(t *testing.T) {
	eng := nativesim.New()
	log := &exitLog{}
	b := elog.New(eng, elog.WithObserver(log.observe))
	top := eng.ExceptionStack()

	err := eng.Call(func() error {
		return b.Boundary(func() error {
			return b.Guard(func() error {
				return b.Guard(func() error {
					return b.Ereport(elog.Error, elog.Msg("not found: %s", "x"))
				})
			})
		})
	})

	var nerr *nativesim.NativeError
	require.ErrorAs(t, err, &nerr)
	want := elog.Record{Level: elog.Error, Message: "not found: x", Fields: elog.FieldMessage}
	if diff := cmp.Diff(want, nerr.Emission.Record, cmpopts.IgnoreFields(elog.Record{}, "File", "Line")); diff != "" {
		t.Errorf("top-level record mismatch (-want +got):\n%s", diff)
	}

	require.Len(t, log.exits, 3)
	assert.Equal(t, []elog.Outcome{elog.OutcomeRaise, elog.OutcomeRelay, elog.OutcomeRelay}, log.outcomes())
	d := log.exits[0].Diversion
	for i, exit := range log.exits {
		assert.Same(t, d, exit.Diversion, "exit %d forwards the same diversion", i)
		assert.Equal(t, elog.RaisedHere, exit.Diversion.Kind(), "kind never changes while relayed")
	}

	assert.Equal(t, 1, eng.Finishes(), "the record is committed once, at the boundary")
	assert.Equal(t, 0, eng.ReThrows())
	assert.Equal(t, top, eng.ExceptionStack())
	assert.Equal(t, 0, eng.OpenReports())
	assert.Len(t, eng.Emitted(), 1)
}

func TestBoundary_NativeErrorIsRethrown(t *testing.T) {
	eng := nativesim.New()
	log := &exitLog{}
	b := elog.New(eng, elog.WithObserver(log.observe))

	err := eng.Call(func() error {
		return b.Boundary(func() error {
			return b.Guard(func() error {
				eng.PushContext("SQL function \"divide\"")
				eng.Raise(elog.Error, elog.MustSQLState("22012"), "division by zero")
				return nil
			})
		})
	})

	var nerr *nativesim.NativeError
	require.ErrorAs(t, err, &nerr)
	assert.Equal(t, "division by zero", nerr.Emission.Message)
	assert.Equal(t, "22012", nerr.Emission.Code.String())
	assert.Equal(t, []string{"SQL function \"divide\""}, nerr.Emission.Context)

	assert.Equal(t, []elog.Outcome{elog.OutcomeRelay, elog.OutcomeRelay}, log.outcomes())
	for _, exit := range log.exits {
		assert.Equal(t, elog.Relayed, exit.Diversion.Kind())
	}
	assert.Equal(t, 1, eng.ReThrows(), "a relayed error is rethrown exactly once")
	// One finish from the engine's own report, none from the bridge.
	assert.Equal(t, 1, eng.Finishes())
	assert.Len(t, eng.Emitted(), 1)
}

func TestBoundary_NormalReturn(t *testing.T) {
	eng := nativesim.New()
	b := elog.New(eng)

	err := eng.Call(func() error {
		return b.Boundary(func() error {
			return b.Elog(elog.Notice, "all good")
		})
	})

	require.NoError(t, err)
	assert.Equal(t, 0, eng.ReThrows())
	require.Len(t, eng.Emitted(), 1)
	assert.Equal(t, "all good", eng.Emitted()[0].Message)
}

func TestBoundary_PlainErrorReturned(t *testing.T) {
	eng := nativesim.New()
	b := elog.New(eng)
	want := errors.New("caller handles this")

	err := eng.Call(func() error {
		return b.Boundary(func() error { return want })
	})

	assert.ErrorIs(t, err, want)
	assert.Equal(t, 0, eng.Finishes())
	assert.Equal(t, 0, eng.ReThrows())
}

func TestBoundary_NestedBoundaryForwards(t *testing.T) {
	eng := nativesim.New()
	b := elog.New(eng)

	var inner error
	err := eng.Call(func() error {
		return b.Boundary(func() error {
			inner = b.Boundary(func() error {
				return b.Elog(elog.Error, "deep")
			})
			return inner
		})
	})

	require.ErrorIs(t, inner, elog.ErrRaisedHere, "the inner boundary forwards instead of finishing")
	var nerr *nativesim.NativeError
	require.ErrorAs(t, err, &nerr)
	assert.Equal(t, "deep", nerr.Emission.Message)
	assert.Equal(t, 1, eng.Finishes())
}

func TestUnwind_WrappedDiversionIsStillRelayed(t *testing.T) {
	eng := nativesim.New()
	log := &exitLog{}
	b := elog.New(eng, elog.WithObserver(log.observe))

	err := b.Guard(func() error {
		err := b.Guard(func() error { return b.Elog(elog.Error, "inner") })
		return fmt.Errorf("calling helper: %w", err)
	})

	require.ErrorIs(t, err, elog.ErrRaisedHere)
	assert.Equal(t, []elog.Outcome{elog.OutcomeRaise, elog.OutcomeRelay}, log.outcomes())
}

func TestUnwind_RaisedOutsideGuardIsRaisedByFirstGuard(t *testing.T) {
	eng := nativesim.New()
	log := &exitLog{}
	b := elog.New(eng, elog.WithObserver(log.observe))

	raisedEarlier := b.Elog(elog.Error, "raised before any guard")
	err := b.Guard(func() error { return raisedEarlier })

	d, ok := elog.AsDiversion(err)
	require.True(t, ok)
	assert.Equal(t, []elog.Outcome{elog.OutcomeRaise}, log.outcomes())
	assert.Equal(t, log.exits[0].Scope, d.Origin())
}

func TestDiversion_Accessors(t *testing.T) {
	b := elog.New(nativesim.New())
	r, err := b.Begin(elog.Fatal, "a.go", 3)
	require.NoError(t, err)
	require.NoError(t, r.Code(elog.MustSQLState("57P01")))
	err = r.Finish(4)

	d, ok := elog.AsDiversion(err)
	require.True(t, ok)
	assert.Equal(t, 4, d.Flags())
	assert.Equal(t, 0, d.Crossed())
	assert.Equal(t, uint64(0), d.Origin())
	assert.Equal(t, "FATAL raised at a.go:3", d.Error())

	rec := d.Record()
	rec.Message = "mutated"
	assert.Empty(t, d.Record().Message, "Record returns a copy")

	_, ok = elog.AsDiversion(errors.New("plain"))
	assert.False(t, ok)
}

func TestKindAndOutcomeStrings(t *testing.T) {
	assert.Equal(t, "raised", elog.RaisedHere.String())
	assert.Equal(t, "relayed", elog.Relayed.String())
	assert.Equal(t, "unknown", elog.Kind(0).String())
	assert.Equal(t, "return", elog.OutcomeReturn.String())
	assert.Equal(t, "raise", elog.OutcomeRaise.String())
	assert.Equal(t, "relay", elog.OutcomeRelay.String())
}
