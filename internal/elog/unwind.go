package elog

import (
	"errors"
	"fmt"

	"pgbridge/pkg/errx"
)

// Kind tells a diversion that originated in a frame apart from one that is
// being forwarded. It never changes once the diversion exists.
type Kind uint8

const (
	// RaisedHere: a report in host code crossed the error threshold.
	RaisedHere Kind = iota + 1
	// Relayed: the engine jumped to a guard's resume point.
	Relayed
)

func (k Kind) String() string {
	switch k {
	case RaisedHere:
		return "raised"
	case Relayed:
		return "relayed"
	default:
		return "unknown"
	}
}

// Diversion is the structured failure that replaces a non-local jump while it
// travels through host frames.
type Diversion struct {
	kind    Kind
	record  *Record
	flags   int
	origin  uint64
	crossed int
	err     *errx.Error
}

func raised(rec Record, flags int) *Diversion {
	msg := rec.Message
	if msg == "" {
		msg = fmt.Sprintf("%s raised at %s:%d", rec.Level, rec.File, rec.Line)
	}
	ctx := map[string]any{
		"level": rec.Level.String(),
		"file":  rec.File,
		"line":  rec.Line,
	}
	if rec.Has(FieldCode) {
		ctx["sqlstate"] = rec.Code.String()
	}
	return &Diversion{
		kind:   RaisedHere,
		record: &rec,
		flags:  flags,
		err:    newWithSentinel(ErrRaisedHere, msg).WithContextMap(ctx),
	}
}

func relayed(f *Frame) *Diversion {
	return &Diversion{
		kind:   Relayed,
		origin: f.scope,
		err: newWithSentinel(ErrRelayed, "native error relayed").
			WithContext("scope", f.scope),
	}
}

func (d *Diversion) Error() string {
	return d.err.Error()
}

// Unwrap exposes the errx error, which matches ErrRaisedHere or ErrRelayed.
func (d *Diversion) Unwrap() error {
	return d.err
}

// Kind returns whether the diversion was raised in host code or relayed.
func (d *Diversion) Kind() Kind {
	return d.kind
}

// Record returns the committed record of a RaisedHere diversion, nil otherwise.
func (d *Diversion) Record() *Record {
	if d.record == nil {
		return nil
	}
	rec := *d.record
	return &rec
}

// Flags returns the flags passed to Finish.
func (d *Diversion) Flags() int {
	return d.flags
}

// Origin is the scope of the guard the diversion first left: the guard whose
// region raised it, or whose resume point the engine jumped to. Zero until the
// diversion crosses a guard.
func (d *Diversion) Origin() uint64 {
	return d.origin
}

// Crossed counts the guard boundaries the diversion has passed.
func (d *Diversion) Crossed() int {
	return d.crossed
}

// AsDiversion finds a diversion in err's chain.
func AsDiversion(err error) (*Diversion, bool) {
	var d *Diversion
	if errors.As(err, &d) {
		return d, true
	}
	return nil, false
}

// Outcome is the exit a guard took.
type Outcome uint8

const (
	// OutcomeReturn: the protected function returned without diverting.
	OutcomeReturn Outcome = iota
	// OutcomeRaise: a report in this guard's region diverted.
	OutcomeRaise
	// OutcomeRelay: the diversion came from below and is forwarded unchanged.
	OutcomeRelay
)

func (o Outcome) String() string {
	switch o {
	case OutcomeReturn:
		return "return"
	case OutcomeRaise:
		return "raise"
	case OutcomeRelay:
		return "relay"
	default:
		return "unknown"
	}
}

// Exit describes one guard exit, after its frame was restored.
type Exit struct {
	Scope     uint64
	Depth     int
	Outcome   Outcome
	Diversion *Diversion
}

// Observer is told about every guard exit.
type Observer func(Exit)

// unwind picks the single exit of a guarded call. The frame is already
// restored when it runs.
func (b *Bridge) unwind(f *Frame, resumed bool, err error) error {
	if resumed {
		d := relayed(f)
		d.crossed++
		b.observe(f, OutcomeRelay, d)
		return d
	}
	d, ok := AsDiversion(err)
	if !ok {
		b.observe(f, OutcomeReturn, nil)
		return err
	}
	outcome := OutcomeRelay
	if d.crossed == 0 {
		outcome = OutcomeRaise
		d.origin = f.scope
	}
	d.crossed++
	b.observe(f, outcome, d)
	return err
}

func (b *Bridge) observe(f *Frame, outcome Outcome, d *Diversion) {
	if d != nil {
		b.log.V(1).Info("guard exit", "scope", f.scope, "depth", f.depth,
			"outcome", outcome.String(), "kind", d.kind.String(), "crossed", d.crossed)
	} else {
		b.log.V(1).Info("guard exit", "scope", f.scope, "depth", f.depth, "outcome", outcome.String())
	}
	if b.observer != nil {
		b.observer(Exit{Scope: f.scope, Depth: f.depth, Outcome: outcome, Diversion: d})
	}
}

// Boundary is the outermost host frame of a call from the engine. It runs fn
// under a guard and hands any diversion that reaches it to the engine's
// top-level handler: a raised report is finished natively, which lets the
// engine take over, and a relayed error is rethrown. Neither engine call is
// expected to return; if one does, the diversion is returned to the caller.
func (b *Bridge) Boundary(fn func() error) error {
	err := b.Guard(fn)
	d, ok := AsDiversion(err)
	if !ok {
		return err
	}
	if b.Depth() != 0 {
		b.log.V(1).Info("boundary is nested inside another guard; forwarding", "depth", b.Depth())
		return err
	}
	switch d.kind {
	case RaisedHere:
		b.native.ErrFinish(d.flags)
	case Relayed:
		b.native.ReThrow()
	}
	return err
}
