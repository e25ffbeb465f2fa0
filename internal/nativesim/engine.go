// Package nativesim is an in-memory stand-in for the database engine's error
// machinery: the errordata stack behind ErrStart/ErrFinish, the exception stack
// of resume points, the error-context callback chain and the top-level handler
// that catches a jump nobody else claimed.
package nativesim

import (
	"fmt"

	"pgbridge/internal/elog"
)

// Emission is a report as the engine emitted it.
type Emission struct {
	elog.Record
	// Context holds the lines added by error-context callbacks, innermost first.
	Context []string
	Flags   int
}

// NativeError is returned by Call when an error reached the engine's top level.
type NativeError struct {
	Emission Emission
}

func (e *NativeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Emission.Level, e.Emission.Message)
}

type contextCallback struct {
	prev elog.Handle
	text string
}

// Engine implements elog.Native. It is not safe for concurrent use; each
// worker gets its own Engine, as each backend process has its own stacks.
type Engine struct {
	minLevel elog.Level
	encoder  *elog.Encoder

	top     elog.Handle
	ctxHead elog.Handle

	nextHandle elog.Handle
	callbacks  map[elog.Handle]*contextCallback
	errordata  []*elog.Record
	inFlight   *Emission

	emitted       []Emission
	stackWrites   []elog.Handle
	contextWrites []elog.Handle
	finishes      int
	rethrows      int
}

// Option configures an Engine.
type Option func(*Engine)

// WithMinLevel sets the lowest level that is not suppressed. Levels at or above
// ERROR are never suppressed.
func WithMinLevel(level elog.Level) Option {
	return func(e *Engine) { e.minLevel = level }
}

// WithEncoder sets the server encoding used to decode incoming text.
func WithEncoder(enc *elog.Encoder) Option {
	return func(e *Engine) { e.encoder = enc }
}

// New returns an Engine with NOTICE as the visibility threshold.
func New(opts ...Option) *Engine {
	e := &Engine{
		minLevel:  elog.Notice,
		callbacks: make(map[elog.Handle]*contextCallback),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) allocHandle() elog.Handle {
	e.nextHandle++
	return e.nextHandle
}

func (e *Engine) decode(s string) string {
	out, err := e.encoder.Decode(s)
	if err != nil {
		return s
	}
	return out
}

func (e *Engine) current(caller string) *elog.Record {
	if len(e.errordata) == 0 {
		panic(fmt.Sprintf("nativesim: %s called without ErrStart", caller))
	}
	return e.errordata[len(e.errordata)-1]
}

// ErrStart implements elog.Reporter.
func (e *Engine) ErrStart(level elog.Level, filename string, lineno int32, funcname, domain string) bool {
	if !elog.IsDiverting(level) && !elog.IsVisible(level, e.minLevel) {
		return false
	}
	e.errordata = append(e.errordata, &elog.Record{
		Level:    level,
		File:     e.decode(filename),
		Line:     int(lineno),
		FuncName: funcname,
		Domain:   domain,
	})
	return true
}

// ErrMsg implements elog.Reporter.
func (e *Engine) ErrMsg(msg string) {
	rec := e.current("ErrMsg")
	rec.Message = e.decode(msg)
	rec.Fields |= elog.FieldMessage
}

// ErrDetail implements elog.Reporter.
func (e *Engine) ErrDetail(msg string) {
	rec := e.current("ErrDetail")
	rec.Detail = e.decode(msg)
	rec.Fields |= elog.FieldDetail
}

// ErrHint implements elog.Reporter.
func (e *Engine) ErrHint(msg string) {
	rec := e.current("ErrHint")
	rec.Hint = e.decode(msg)
	rec.Fields |= elog.FieldHint
}

// ErrCode implements elog.Reporter.
func (e *Engine) ErrCode(code elog.SQLState) {
	rec := e.current("ErrCode")
	rec.Code = code
	rec.Fields |= elog.FieldCode
}

// ErrFinish implements elog.Reporter. Below ERROR the report is emitted and
// ErrFinish returns; otherwise the engine jumps to the exception stack top.
func (e *Engine) ErrFinish(flags int) {
	rec := e.current("ErrFinish")
	e.errordata = e.errordata[:len(e.errordata)-1]
	e.finishes++
	em := Emission{Record: *rec, Context: e.collectContext(), Flags: flags}
	if !elog.IsDiverting(rec.Level) {
		e.emitted = append(e.emitted, em)
		return
	}
	e.inFlight = &em
	elog.Jump(e.top)
}

// ErrDiscard implements elog.Discarder: it drops the newest errordata entry
// without emitting it.
func (e *Engine) ErrDiscard() {
	e.current("ErrDiscard")
	e.errordata = e.errordata[:len(e.errordata)-1]
}

// ReThrow implements elog.Reporter.
func (e *Engine) ReThrow() {
	if e.inFlight == nil {
		panic("nativesim: ReThrow with no error in flight")
	}
	e.rethrows++
	elog.Jump(e.top)
}

// ExceptionStack implements elog.ExceptionState.
func (e *Engine) ExceptionStack() elog.Handle { return e.top }

// SetExceptionStack implements elog.ExceptionState.
func (e *Engine) SetExceptionStack(h elog.Handle) {
	e.stackWrites = append(e.stackWrites, h)
	e.top = h
}

// ContextStack implements elog.ExceptionState.
func (e *Engine) ContextStack() elog.Handle { return e.ctxHead }

// SetContextStack implements elog.ExceptionState.
func (e *Engine) SetContextStack(h elog.Handle) {
	e.contextWrites = append(e.contextWrites, h)
	e.ctxHead = h
}

// PushContext links a callback that adds text to every report emitted while it
// is on the chain, and returns its handle.
func (e *Engine) PushContext(text string) elog.Handle {
	h := e.allocHandle()
	e.callbacks[h] = &contextCallback{prev: e.ctxHead, text: text}
	e.ctxHead = h
	return h
}

// PopContext unlinks the chain head.
func (e *Engine) PopContext() {
	cb, ok := e.callbacks[e.ctxHead]
	if !ok {
		return
	}
	e.ctxHead = cb.prev
}

func (e *Engine) collectContext() []string {
	var lines []string
	for h := e.ctxHead; h != 0; {
		cb, ok := e.callbacks[h]
		if !ok {
			break
		}
		lines = append(lines, cb.text)
		h = cb.prev
	}
	return lines
}

// Raise reports from engine code: at ERROR and above it jumps and does not
// return.
func (e *Engine) Raise(level elog.Level, code elog.SQLState, format string, args ...any) {
	if !e.ErrStart(level, "nativesim", 0, "", "") {
		return
	}
	e.ErrMsg(fmt.Sprintf(format, args...))
	e.ErrCode(code)
	e.ErrFinish(0)
}

// Call runs fn the way the engine runs an extension function: under its own
// resume point, with a top-level handler that turns an uncaught jump into a
// *NativeError and flushes the error state.
func (e *Engine) Call(fn func() error) (err error) {
	base := e.allocHandle()
	savedTop, savedCtx := e.top, e.ctxHead
	e.top = base
	defer func() {
		r := recover()
		e.top = savedTop
		if r == nil {
			return
		}
		if target, ok := elog.JumpTarget(r); !ok || target != base {
			panic(r)
		}
		e.ctxHead = savedCtx
		err = e.flush()
	}()
	return fn()
}

func (e *Engine) flush() error {
	em := e.inFlight
	e.inFlight = nil
	e.errordata = nil
	if em == nil {
		return &NativeError{Emission: Emission{Record: elog.Record{Level: elog.Error, Message: "jump with no error in flight"}}}
	}
	e.emitted = append(e.emitted, *em)
	return &NativeError{Emission: *em}
}

// Emitted returns every report emitted so far, in order.
func (e *Engine) Emitted() []Emission {
	out := make([]Emission, len(e.emitted))
	copy(out, e.emitted)
	return out
}

// StackWrites returns every value written to the exception stack top.
func (e *Engine) StackWrites() []elog.Handle {
	out := make([]elog.Handle, len(e.stackWrites))
	copy(out, e.stackWrites)
	return out
}

// ContextWrites returns every value written to the context chain head.
func (e *Engine) ContextWrites() []elog.Handle {
	out := make([]elog.Handle, len(e.contextWrites))
	copy(out, e.contextWrites)
	return out
}

// Finishes counts ErrFinish calls.
func (e *Engine) Finishes() int { return e.finishes }

// ReThrows counts ReThrow calls.
func (e *Engine) ReThrows() int { return e.rethrows }

// OpenReports is the depth of the errordata stack.
func (e *Engine) OpenReports() int { return len(e.errordata) }
